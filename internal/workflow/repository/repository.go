package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/repair-manager/internal/workflow/domain"
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

func (r *GormRepository) create(ctx context.Context, v interface{}) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(v).Error; err != nil {
		return fmt.Errorf("failed to create: %w", err)
	}
	return nil
}

func (r *GormRepository) first(ctx context.Context, q *gorm.DB, out interface{}, resource string, id uint) error {
	err := q.WithContext(ctx).First(out, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NewNotFound(resource, id)
	}
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", resource, err)
	}
	return nil
}

// Workflows

func (r *GormRepository) CreateWorkflow(ctx context.Context, w *domain.RepairWorkflow) error {
	return r.create(ctx, w)
}

func (r *GormRepository) GetWorkflow(ctx context.Context, id uint) (*domain.RepairWorkflow, error) {
	var w domain.RepairWorkflow
	if err := r.first(ctx, r.db, &w, "repair workflow", id); err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *GormRepository) ListWorkflows(ctx context.Context) ([]domain.RepairWorkflow, error) {
	var out []domain.RepairWorkflow
	if err := r.db.WithContext(ctx).Order("name").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	return out, nil
}

func (r *GormRepository) UpdateWorkflow(ctx context.Context, w *domain.RepairWorkflow) (bool, error) {
	return database.UpdateByID(ctx, r.db, w.ID, w)
}

func (r *GormRepository) DeleteWorkflow(ctx context.Context, id uint) (bool, error) {
	return database.DeleteByID[domain.RepairWorkflow](ctx, r.db, id)
}

func (r *GormRepository) WorkflowExists(ctx context.Context, id uint) (bool, error) {
	return database.Exists[domain.RepairWorkflow](ctx, r.db, id)
}

func (r *GormRepository) CountProgramsUsingWorkflow(ctx context.Context, workflowID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.RepairProgram{}).
		Where("repair_workflow_id = ?", workflowID).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count programs: %w", err)
	}
	return n, nil
}

// Programs

func (r *GormRepository) CreateProgram(ctx context.Context, p *domain.RepairProgram) error {
	return r.create(ctx, p)
}

func (r *GormRepository) GetProgram(ctx context.Context, id uint) (*domain.RepairProgram, error) {
	var p domain.RepairProgram
	if err := r.first(ctx, r.db.Preload("RepairWorkflow"), &p, "repair program", id); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepository) ListPrograms(ctx context.Context) ([]domain.RepairProgram, error) {
	var out []domain.RepairProgram
	if err := r.db.WithContext(ctx).Preload("RepairWorkflow").Order("name").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list programs: %w", err)
	}
	return out, nil
}

func (r *GormRepository) UpdateProgram(ctx context.Context, p *domain.RepairProgram) (bool, error) {
	return database.UpdateByID(ctx, r.db, p.ID, p)
}

func (r *GormRepository) DeleteProgram(ctx context.Context, id uint) (bool, error) {
	return database.DeleteByID[domain.RepairProgram](ctx, r.db, id)
}

// Status codes

func (r *GormRepository) CreateStatusCode(ctx context.Context, s *domain.StatusCode) error {
	return r.create(ctx, s)
}

func (r *GormRepository) GetStatusCode(ctx context.Context, id uint) (*domain.StatusCode, error) {
	var s domain.StatusCode
	if err := r.first(ctx, r.db, &s, "status code", id); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormRepository) ListStatusCodes(ctx context.Context, activeOnly bool) ([]domain.StatusCode, error) {
	q := r.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var out []domain.StatusCode
	if err := q.Order("sort_order").Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list status codes: %w", err)
	}
	return out, nil
}

func (r *GormRepository) UpdateStatusCode(ctx context.Context, s *domain.StatusCode) (bool, error) {
	return database.UpdateByID(ctx, r.db, s.ID, s)
}

func (r *GormRepository) DeleteStatusCode(ctx context.Context, id uint) (bool, error) {
	return database.DeleteByID[domain.StatusCode](ctx, r.db, id)
}
