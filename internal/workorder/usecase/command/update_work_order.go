package command

import (
	"context"
	"strings"
	"time"

	"github.com/tair/repair-manager/internal/workorder/domain"
	"github.com/tair/repair-manager/kafka"
	"github.com/tair/repair-manager/pkg/apperror"
	"github.com/tair/repair-manager/pkg/metrics"
	"github.com/tair/repair-manager/pkg/validation"
)

// UpdateWorkOrderCommand replaces the editable fields of a work order. The
// stored code is kept whatever Code says. A non-zero Version must match the
// stored one.
type UpdateWorkOrderCommand struct {
	PathID  uint   `json:"-"`
	ID      uint   `json:"id"`
	Code    string `json:"code"`
	Version int    `json:"version"`
	Fields
}

type UpdateWorkOrderHandler struct {
	repo   domain.Repository
	refs   domain.References
	events eventSink
	opts   Options
	now    func() time.Time
}

func NewUpdateWorkOrderHandler(repo domain.Repository, refs domain.References, publisher kafka.EventPublisher, m *metrics.Metrics, opts Options) *UpdateWorkOrderHandler {
	return &UpdateWorkOrderHandler{
		repo:   repo,
		refs:   refs,
		events: eventSink{publisher: publisher, metrics: m},
		opts:   opts,
		now:    time.Now,
	}
}

func (h *UpdateWorkOrderHandler) Handle(ctx context.Context, cmd UpdateWorkOrderCommand) (*domain.WorkOrder, error) {
	if cmd.ID != 0 && cmd.ID != cmd.PathID {
		return nil, apperror.NewValidation(apperror.KindIdentifierMismatch, "id", "id in body does not match id in path")
	}
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	current, err := h.repo.GetByID(ctx, cmd.PathID)
	if err != nil {
		return nil, err
	}

	wf, err := checkReferences(ctx, h.refs, cmd.Fields)
	if err != nil {
		return nil, err
	}

	status := strings.TrimSpace(cmd.CurrentStatus)
	if status == "" {
		status = current.CurrentStatus
	}
	if status != current.CurrentStatus || cmd.RepairProgramID != current.RepairProgramID {
		if err := checkStatus(wf, status, h.opts); err != nil {
			return nil, err
		}
	}

	now := h.now().UTC()
	updated := &domain.WorkOrder{
		ID:            current.ID,
		Code:          current.Code,
		CurrentStatus: status,
		CreatedAt:     current.CreatedAt,
		UpdatedAt:     &now,
	}
	cmd.Fields.apply(updated)

	expected := current.Version
	if cmd.Version != 0 {
		expected = cmd.Version
	}
	ok, err := h.repo.Update(ctx, updated, expected)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, conflictOrGone(ctx, h.repo, current.ID)
	}
	updated.Version = expected + 1

	if status != current.CurrentStatus {
		h.events.publish(ctx, kafka.EventTypeWorkOrderStatusChanged, updated, current.CurrentStatus, "")
	}

	return h.repo.GetByID(ctx, current.ID)
}
