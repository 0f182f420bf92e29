package usecase

import (
	"context"
	"strings"

	"github.com/tair/repair-manager/internal/workflow/domain"
	"github.com/tair/repair-manager/pkg/apperror"
	"github.com/tair/repair-manager/pkg/database"
	"github.com/tair/repair-manager/pkg/validation"
)

type WorkflowInput struct {
	Name     string   `json:"name" validate:"required,max=100"`
	Statuses []string `json:"statuses" validate:"required,min=1,dive,max=50"`
}

type ProgramInput struct {
	Name             string `json:"name" validate:"required,max=100"`
	Description      string `json:"description" validate:"max=500"`
	RepairWorkflowID uint   `json:"repair_workflow_id" validate:"required"`
}

type StatusCodeInput struct {
	Code        string `json:"code" validate:"required,max=50"`
	Description string `json:"description" validate:"max=200"`
	IsActive    bool   `json:"is_active"`
	SortOrder   int    `json:"sort_order"`
}

// Service maintains workflows, repair programs and status codes.
type Service struct {
	repo domain.Repository
}

func NewService(repo domain.Repository) *Service {
	return &Service{repo: repo}
}

func notFoundUnless(found bool, err error, resource string, id uint) error {
	if err != nil {
		return err
	}
	if !found {
		return apperror.NewNotFound(resource, id)
	}
	return nil
}

// Workflows

func normalizeStatuses(in []string) ([]string, error) {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, apperror.NewValidation(apperror.KindInvalidInput, "statuses", "status labels must not be blank")
		}
		key := strings.ToLower(s)
		if seen[key] {
			return nil, apperror.NewValidation(apperror.KindInvalidInput, "statuses", "duplicate status label "+s)
		}
		seen[key] = true
		out = append(out, s)
	}
	return out, nil
}

func workflowFromInput(id uint, in WorkflowInput) (*domain.RepairWorkflow, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	statuses, err := normalizeStatuses(in.Statuses)
	if err != nil {
		return nil, err
	}
	return &domain.RepairWorkflow{ID: id, Name: strings.TrimSpace(in.Name), Statuses: statuses}, nil
}

func (s *Service) CreateWorkflow(ctx context.Context, in WorkflowInput) (*domain.RepairWorkflow, error) {
	w, err := workflowFromInput(0, in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateWorkflow(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *Service) GetWorkflow(ctx context.Context, id uint) (*domain.RepairWorkflow, error) {
	return s.repo.GetWorkflow(ctx, id)
}

func (s *Service) ListWorkflows(ctx context.Context) ([]domain.RepairWorkflow, error) {
	return s.repo.ListWorkflows(ctx)
}

func (s *Service) UpdateWorkflow(ctx context.Context, id uint, in WorkflowInput) (*domain.RepairWorkflow, error) {
	w, err := workflowFromInput(id, in)
	if err != nil {
		return nil, err
	}
	found, err := s.repo.UpdateWorkflow(ctx, w)
	if err := notFoundUnless(found, err, "repair workflow", id); err != nil {
		return nil, err
	}
	return w, nil
}

// DeleteWorkflow refuses to remove a workflow still used by a program.
func (s *Service) DeleteWorkflow(ctx context.Context, id uint) error {
	n, err := s.repo.CountProgramsUsingWorkflow(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperror.NewReferentialIntegrity("repair workflow", id, "repair program")
	}
	found, err := s.repo.DeleteWorkflow(ctx, id)
	if database.IsForeignKeyViolation(err) {
		return apperror.NewReferentialIntegrity("repair workflow", id, "repair program")
	}
	return notFoundUnless(found, err, "repair workflow", id)
}

// Programs

func (s *Service) programFromInput(ctx context.Context, id uint, in ProgramInput) (*domain.RepairProgram, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	ok, err := s.repo.WorkflowExists(ctx, in.RepairWorkflowID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.NewValidation(apperror.KindMissingReference, "repair_workflow_id", "repair workflow does not exist")
	}
	return &domain.RepairProgram{
		ID:               id,
		Name:             strings.TrimSpace(in.Name),
		Description:      in.Description,
		RepairWorkflowID: in.RepairWorkflowID,
	}, nil
}

func (s *Service) CreateProgram(ctx context.Context, in ProgramInput) (*domain.RepairProgram, error) {
	p, err := s.programFromInput(ctx, 0, in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateProgram(ctx, p); err != nil {
		return nil, err
	}
	return s.repo.GetProgram(ctx, p.ID)
}

func (s *Service) GetProgram(ctx context.Context, id uint) (*domain.RepairProgram, error) {
	return s.repo.GetProgram(ctx, id)
}

func (s *Service) ListPrograms(ctx context.Context) ([]domain.RepairProgram, error) {
	return s.repo.ListPrograms(ctx)
}

func (s *Service) UpdateProgram(ctx context.Context, id uint, in ProgramInput) (*domain.RepairProgram, error) {
	p, err := s.programFromInput(ctx, id, in)
	if err != nil {
		return nil, err
	}
	found, err := s.repo.UpdateProgram(ctx, p)
	if err := notFoundUnless(found, err, "repair program", id); err != nil {
		return nil, err
	}
	return s.repo.GetProgram(ctx, id)
}

// DeleteProgram relies on the work-order foreign key to block deletes of
// programs still in use.
func (s *Service) DeleteProgram(ctx context.Context, id uint) error {
	found, err := s.repo.DeleteProgram(ctx, id)
	if database.IsForeignKeyViolation(err) {
		return apperror.NewReferentialIntegrity("repair program", id, "work order")
	}
	return notFoundUnless(found, err, "repair program", id)
}

// Status codes

func statusCodeFromInput(id uint, in StatusCodeInput) (*domain.StatusCode, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	return &domain.StatusCode{
		ID:          id,
		Code:        strings.TrimSpace(in.Code),
		Description: in.Description,
		IsActive:    in.IsActive,
		SortOrder:   in.SortOrder,
	}, nil
}

func duplicateCode(err error) error {
	if database.IsUniqueViolation(err) {
		return apperror.NewValidation(apperror.KindDuplicate, "code", "status code already exists")
	}
	return err
}

func (s *Service) CreateStatusCode(ctx context.Context, in StatusCodeInput) (*domain.StatusCode, error) {
	sc, err := statusCodeFromInput(0, in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateStatusCode(ctx, sc); err != nil {
		return nil, duplicateCode(err)
	}
	return sc, nil
}

func (s *Service) GetStatusCode(ctx context.Context, id uint) (*domain.StatusCode, error) {
	return s.repo.GetStatusCode(ctx, id)
}

func (s *Service) ListStatusCodes(ctx context.Context) ([]domain.StatusCode, error) {
	return s.repo.ListStatusCodes(ctx, false)
}

func (s *Service) ListActiveStatusCodes(ctx context.Context) ([]domain.StatusCode, error) {
	return s.repo.ListStatusCodes(ctx, true)
}

func (s *Service) UpdateStatusCode(ctx context.Context, id uint, in StatusCodeInput) (*domain.StatusCode, error) {
	sc, err := statusCodeFromInput(id, in)
	if err != nil {
		return nil, err
	}
	found, err := s.repo.UpdateStatusCode(ctx, sc)
	if err := notFoundUnless(found, duplicateCode(err), "status code", id); err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *Service) DeleteStatusCode(ctx context.Context, id uint) error {
	found, err := s.repo.DeleteStatusCode(ctx, id)
	return notFoundUnless(found, err, "status code", id)
}
