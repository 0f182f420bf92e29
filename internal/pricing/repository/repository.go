package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/repair-manager/internal/pricing/domain"
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

func (r *GormRepository) Create(ctx context.Context, p *domain.CatalogPricing) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create pricing: %w", err)
	}
	p.Refresh()
	return nil
}

func (r *GormRepository) GetByID(ctx context.Context, id uint) (*domain.CatalogPricing, error) {
	var p domain.CatalogPricing
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NewNotFound("catalog pricing", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pricing: %w", err)
	}
	return &p, nil
}

func (r *GormRepository) List(ctx context.Context, itemType domain.ItemType) ([]domain.CatalogPricing, error) {
	q := r.db.WithContext(ctx).Order("item_type, effective_date DESC, id DESC")
	if itemType != "" {
		q = q.Where("item_type = ?", itemType)
	}
	var out []domain.CatalogPricing
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list pricing: %w", err)
	}
	return out, nil
}

func (r *GormRepository) Update(ctx context.Context, p *domain.CatalogPricing) (bool, error) {
	found, err := database.UpdateByID(ctx, r.db, p.ID, p)
	if err == nil {
		p.Refresh()
	}
	return found, err
}

func (r *GormRepository) Delete(ctx context.Context, id uint) (bool, error) {
	return database.DeleteByID[domain.CatalogPricing](ctx, r.db, id)
}

// ForItem leaves date filtering to domain.SelectEffective so the window is
// evaluated the same way on every driver.
func (r *GormRepository) ForItem(ctx context.Context, itemType domain.ItemType, itemID uint) ([]domain.CatalogPricing, error) {
	column := map[domain.ItemType]string{
		domain.ItemDevice:  "device_id",
		domain.ItemPart:    "part_id",
		domain.ItemService: "service_id",
	}[itemType]
	if column == "" {
		return nil, apperror.NewValidation(apperror.KindInvalidItemType, "item_type", "must be Device, Part or Service")
	}

	var out []domain.CatalogPricing
	err := r.db.WithContext(ctx).
		Where("item_type = ? AND "+column+" = ?", itemType, itemID).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing for %s %d: %w", itemType, itemID, err)
	}
	return out, nil
}
