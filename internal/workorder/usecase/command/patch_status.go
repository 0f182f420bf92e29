package command

import (
	"context"
	"strings"
	"time"

	"github.com/tair/repair-manager/internal/workorder/domain"
	"github.com/tair/repair-manager/kafka"
	"github.com/tair/repair-manager/pkg/apperror"
	"github.com/tair/repair-manager/pkg/metrics"
)

// PatchStatusCommand moves a work order to a new status. Notes are not
// stored; they travel with the status event.
type PatchStatusCommand struct {
	ID      uint   `json:"-"`
	Status  string `json:"status"`
	Notes   string `json:"notes"`
	Version int    `json:"version"`
}

type PatchStatusHandler struct {
	repo   domain.Repository
	refs   domain.References
	events eventSink
	opts   Options
	now    func() time.Time
}

func NewPatchStatusHandler(repo domain.Repository, refs domain.References, publisher kafka.EventPublisher, m *metrics.Metrics, opts Options) *PatchStatusHandler {
	return &PatchStatusHandler{
		repo:   repo,
		refs:   refs,
		events: eventSink{publisher: publisher, metrics: m},
		opts:   opts,
		now:    time.Now,
	}
}

func (h *PatchStatusHandler) Handle(ctx context.Context, cmd PatchStatusCommand) (*domain.WorkOrder, error) {
	status := strings.TrimSpace(cmd.Status)
	if status == "" {
		return nil, apperror.NewValidation(apperror.KindInvalidInput, "status", "status is required")
	}
	if len(status) > 50 {
		return nil, apperror.NewValidation(apperror.KindInvalidInput, "status", "status must be at most 50 characters")
	}

	current, err := h.repo.GetByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}

	if h.opts.EnforceWorkflowStatus {
		wf, err := h.refs.ProgramWorkflow(ctx, current.RepairProgramID)
		if err != nil {
			return nil, err
		}
		if err := checkStatus(wf, status, h.opts); err != nil {
			return nil, err
		}
	}

	expected := current.Version
	if cmd.Version != 0 {
		expected = cmd.Version
	}
	ok, err := h.repo.UpdateStatus(ctx, current.ID, status, h.now().UTC(), expected)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, conflictOrGone(ctx, h.repo, current.ID)
	}

	updated, err := h.repo.GetByID(ctx, current.ID)
	if err != nil {
		return nil, err
	}
	h.events.publish(ctx, kafka.EventTypeWorkOrderStatusChanged, updated, current.CurrentStatus, cmd.Notes)
	return updated, nil
}
