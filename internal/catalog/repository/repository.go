package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/repair-manager/internal/catalog/domain"
	"github.com/tair/repair-manager/pkg/apperror"
	"github.com/tair/repair-manager/pkg/database"
)

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

var _ domain.Repository = (*GormRepository)(nil)

func (r *GormRepository) AutoMigrate() error {
	return r.db.AutoMigrate(domain.Models()...)
}

func get[T any](ctx context.Context, db *gorm.DB, resource string, id uint, preloads ...string) (*T, error) {
	var out T
	q := db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	err := q.First(&out, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NewNotFound(resource, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", resource, err)
	}
	return &out, nil
}

func list[T any](ctx context.Context, db *gorm.DB, order string, preloads ...string) ([]T, error) {
	var out []T
	q := db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.Order(order).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list: %w", err)
	}
	return out, nil
}

func (r *GormRepository) create(ctx context.Context, v interface{}) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(v).Error; err != nil {
		return fmt.Errorf("failed to create: %w", err)
	}
	return nil
}

// Manufacturers

func (r *GormRepository) CreateManufacturer(ctx context.Context, m *domain.Manufacturer) error {
	return r.create(ctx, m)
}

func (r *GormRepository) GetManufacturer(ctx context.Context, id uint) (*domain.Manufacturer, error) {
	return get[domain.Manufacturer](ctx, r.db, "manufacturer", id)
}

func (r *GormRepository) ListManufacturers(ctx context.Context) ([]domain.Manufacturer, error) {
	return list[domain.Manufacturer](ctx, r.db, "name")
}

func (r *GormRepository) UpdateManufacturer(ctx context.Context, m *domain.Manufacturer) (bool, error) {
	return database.UpdateByID(ctx, r.db, m.ID, m)
}

func (r *GormRepository) DeleteManufacturer(ctx context.Context, id uint) (bool, error) {
	return database.DeleteByID[domain.Manufacturer](ctx, r.db, id)
}

// Devices

func (r *GormRepository) CreateDevice(ctx context.Context, d *domain.Device) error {
	return r.create(ctx, d)
}

func (r *GormRepository) GetDevice(ctx context.Context, id uint) (*domain.Device, error) {
	return get[domain.Device](ctx, r.db, "device", id, "Manufacturer")
}

func (r *GormRepository) ListDevices(ctx context.Context) ([]domain.Device, error) {
	return list[domain.Device](ctx, r.db, "name", "Manufacturer")
}

func (r *GormRepository) UpdateDevice(ctx context.Context, d *domain.Device) (bool, error) {
	return database.UpdateByID(ctx, r.db, d.ID, d)
}

func (r *GormRepository) DeleteDevice(ctx context.Context, id uint) (bool, error) {
	return database.DeleteByID[domain.Device](ctx, r.db, id)
}

// Parts

func (r *GormRepository) CreatePart(ctx context.Context, p *domain.Part) error {
	return r.create(ctx, p)
}

func (r *GormRepository) GetPart(ctx context.Context, id uint) (*domain.Part, error) {
	return get[domain.Part](ctx, r.db, "part", id, "Manufacturer", "Device")
}

func (r *GormRepository) ListParts(ctx context.Context) ([]domain.Part, error) {
	return list[domain.Part](ctx, r.db, "name", "Manufacturer", "Device")
}

func (r *GormRepository) UpdatePart(ctx context.Context, p *domain.Part) (bool, error) {
	return database.UpdateByID(ctx, r.db, p.ID, p)
}

func (r *GormRepository) DeletePart(ctx context.Context, id uint) (bool, error) {
	return database.DeleteByID[domain.Part](ctx, r.db, id)
}

// Services

func (r *GormRepository) CreateService(ctx context.Context, s *domain.Service) error {
	return r.create(ctx, s)
}

func (r *GormRepository) GetService(ctx context.Context, id uint) (*domain.Service, error) {
	return get[domain.Service](ctx, r.db, "service", id, "Device")
}

func (r *GormRepository) ListServices(ctx context.Context) ([]domain.Service, error) {
	return list[domain.Service](ctx, r.db, "name", "Device")
}

func (r *GormRepository) UpdateService(ctx context.Context, s *domain.Service) (bool, error) {
	return database.UpdateByID(ctx, r.db, s.ID, s)
}

func (r *GormRepository) DeleteService(ctx context.Context, id uint) (bool, error) {
	return database.DeleteByID[domain.Service](ctx, r.db, id)
}

// Groups

func (r *GormRepository) CreateGroup(ctx context.Context, g *domain.Group) error {
	return r.create(ctx, g)
}

func (r *GormRepository) GetGroup(ctx context.Context, id uint) (*domain.Group, error) {
	return get[domain.Group](ctx, r.db, "group", id)
}

func (r *GormRepository) ListGroups(ctx context.Context) ([]domain.Group, error) {
	return list[domain.Group](ctx, r.db, "code")
}

func (r *GormRepository) UpdateGroup(ctx context.Context, g *domain.Group) (bool, error) {
	return database.UpdateByID(ctx, r.db, g.ID, g)
}

func (r *GormRepository) DeleteGroup(ctx context.Context, id uint) (bool, error) {
	return database.DeleteByID[domain.Group](ctx, r.db, id)
}

// Existence checks

func (r *GormRepository) ManufacturerExists(ctx context.Context, id uint) (bool, error) {
	return database.Exists[domain.Manufacturer](ctx, r.db, id)
}

func (r *GormRepository) DeviceExists(ctx context.Context, id uint) (bool, error) {
	return database.Exists[domain.Device](ctx, r.db, id)
}

func (r *GormRepository) PartExists(ctx context.Context, id uint) (bool, error) {
	return database.Exists[domain.Part](ctx, r.db, id)
}

func (r *GormRepository) ServiceExists(ctx context.Context, id uint) (bool, error) {
	return database.Exists[domain.Service](ctx, r.db, id)
}

func (r *GormRepository) GroupExists(ctx context.Context, id uint) (bool, error) {
	return database.Exists[domain.Group](ctx, r.db, id)
}
