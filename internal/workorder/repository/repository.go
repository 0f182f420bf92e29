package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	catalog "github.com/tair/repair-manager/internal/catalog/domain"
	"github.com/tair/repair-manager/internal/workorder/domain"
	workflow "github.com/tair/repair-manager/internal/workflow/domain"
	"github.com/tair/repair-manager/pkg/apperror"
	"github.com/tair/repair-manager/pkg/database"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// GormRepository implements domain.Repository using GORM
type GormRepository struct {
	db     *gorm.DB
	format domain.CodeFormat
}

func NewGormRepository(db *gorm.DB, format domain.CodeFormat) *GormRepository {
	if format.Prefix == "" {
		format.Prefix = domain.DefaultCodeFormat.Prefix
	}
	if format.Digits <= 0 {
		format.Digits = domain.DefaultCodeFormat.Digits
	}
	return &GormRepository{db: db, format: format}
}

var _ domain.Repository = (*GormRepository)(nil)

func (r *GormRepository) Create(ctx context.Context, wo *domain.WorkOrder) error {
	requested := wo.Code
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if wo.Code == "" {
			n, err := database.NextValue(tx, domain.CodeSequence, r.seedFromCodes)
			if err != nil {
				return err
			}
			wo.Code = r.format.Format(n)
		} else if n, ok := r.format.Parse(wo.Code); ok {
			if err := database.AdvanceTo(tx, domain.CodeSequence, n, r.seedFromCodes); err != nil {
				return err
			}
		}
		return tx.Omit(clause.Associations).Create(wo).Error
	})
	if err != nil {
		wo.Code = requested
		return fmt.Errorf("failed to create work order: %w", err)
	}
	return nil
}

// seedFromCodes starts the counter at the highest number among existing codes.
func (r *GormRepository) seedFromCodes(tx *gorm.DB) (int64, error) {
	var codes []string
	err := tx.Model(&domain.WorkOrder{}).
		Where("code LIKE ?", r.format.Prefix+"%").
		Pluck("code", &codes).Error
	if err != nil {
		return 0, fmt.Errorf("failed to scan work order codes: %w", err)
	}
	var highest int64
	for _, c := range codes {
		if n, ok := r.format.Parse(c); ok && n > highest {
			highest = n
		}
	}
	return highest, nil
}

func (r *GormRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Device").
		Preload("Service").
		Preload("RepairProgram").
		Preload("Group")
}

func (r *GormRepository) GetByID(ctx context.Context, id uint) (*domain.WorkOrder, error) {
	var wo domain.WorkOrder
	err := r.preloaded(ctx).First(&wo, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NewNotFound("work order", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get work order: %w", err)
	}
	return &wo, nil
}

func (r *GormRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.WorkOrder, int64, error) {
	filtered := func(q *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			q = q.Where("current_status = ?", filter.Status)
		}
		if filter.GroupID != nil {
			q = q.Where("group_id = ?", *filter.GroupID)
		}
		return q
	}

	var total int64
	if err := filtered(r.db.WithContext(ctx).Model(&domain.WorkOrder{})).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count work orders: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	var out []domain.WorkOrder
	err := filtered(r.preloaded(ctx)).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(filter.Offset).
		Find(&out).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list work orders: %w", err)
	}
	return out, total, nil
}

func (r *GormRepository) Update(ctx context.Context, wo *domain.WorkOrder, expectedVersion int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.WorkOrder{}).
		Where("id = ? AND version = ?", wo.ID, expectedVersion).
		Updates(map[string]interface{}{
			"device_id":         wo.DeviceID,
			"service_id":        wo.ServiceID,
			"repair_program_id": wo.RepairProgramID,
			"group_id":          wo.GroupID,
			"customer_name":     wo.CustomerName,
			"customer_phone":    wo.CustomerPhone,
			"customer_email":    wo.CustomerEmail,
			"issue_description": wo.IssueDescription,
			"current_status":    wo.CurrentStatus,
			"part_ids":          wo.PartIDs,
			"updated_at":        wo.UpdatedAt,
			"version":           gorm.Expr("version + ?", 1),
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to update work order: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepository) UpdateStatus(ctx context.Context, id uint, status string, at time.Time, expectedVersion int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.WorkOrder{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]interface{}{
			"current_status": status,
			"updated_at":     at,
			"version":        gorm.Expr("version + ?", 1),
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to update work order status: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepository) Delete(ctx context.Context, id uint) (bool, error) {
	return database.DeleteByID[domain.WorkOrder](ctx, r.db, id)
}

func (r *GormRepository) Exists(ctx context.Context, id uint) (bool, error) {
	return database.Exists[domain.WorkOrder](ctx, r.db, id)
}

func (r *GormRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.WorkOrder{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count work orders: %w", err)
	}
	return n, nil
}

// GormReferences implements domain.References against the catalog and
// workflow tables.
type GormReferences struct {
	db *gorm.DB
}

func NewGormReferences(db *gorm.DB) *GormReferences {
	return &GormReferences{db: db}
}

var _ domain.References = (*GormReferences)(nil)

func (r *GormReferences) DeviceExists(ctx context.Context, id uint) (bool, error) {
	return database.Exists[catalog.Device](ctx, r.db, id)
}

func (r *GormReferences) ServiceExists(ctx context.Context, id uint) (bool, error) {
	return database.Exists[catalog.Service](ctx, r.db, id)
}

func (r *GormReferences) GroupExists(ctx context.Context, id uint) (bool, error) {
	return database.Exists[catalog.Group](ctx, r.db, id)
}

func (r *GormReferences) ProgramWorkflow(ctx context.Context, programID uint) (*workflow.RepairWorkflow, error) {
	var p workflow.RepairProgram
	err := r.db.WithContext(ctx).Preload("RepairWorkflow").First(&p, programID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NewNotFound("repair program", programID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get repair program: %w", err)
	}
	if p.RepairWorkflow == nil {
		return nil, apperror.NewNotFound("repair workflow", p.RepairWorkflowID)
	}
	return p.RepairWorkflow, nil
}
