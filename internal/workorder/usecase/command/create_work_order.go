package command

import (
	"context"
	"strings"
	"time"

	"github.com/tair/repair-manager/internal/workorder/domain"
	"github.com/tair/repair-manager/kafka"
	"github.com/tair/repair-manager/pkg/apperror"
	"github.com/tair/repair-manager/pkg/database"
	"github.com/tair/repair-manager/pkg/metrics"
	"github.com/tair/repair-manager/pkg/validation"
)

// CreateWorkOrderCommand opens a work order. Code is normally left empty and
// assigned from the sequence.
type CreateWorkOrderCommand struct {
	Code string `json:"code" validate:"omitempty,max=20"`
	Fields
}

type CreateWorkOrderHandler struct {
	repo   domain.Repository
	refs   domain.References
	events eventSink
	opts   Options
	now    func() time.Time
}

func NewCreateWorkOrderHandler(repo domain.Repository, refs domain.References, publisher kafka.EventPublisher, m *metrics.Metrics, opts Options) *CreateWorkOrderHandler {
	return &CreateWorkOrderHandler{
		repo:   repo,
		refs:   refs,
		events: eventSink{publisher: publisher, metrics: m},
		opts:   opts,
		now:    time.Now,
	}
}

func (h *CreateWorkOrderHandler) Handle(ctx context.Context, cmd CreateWorkOrderCommand) (*domain.WorkOrder, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	wf, err := checkReferences(ctx, h.refs, cmd.Fields)
	if err != nil {
		return nil, err
	}

	status := strings.TrimSpace(cmd.CurrentStatus)
	if status == "" {
		status = wf.InitialStatus()
	} else if err := checkStatus(wf, status, h.opts); err != nil {
		return nil, err
	}

	wo := &domain.WorkOrder{
		Code:          strings.TrimSpace(cmd.Code),
		CurrentStatus: status,
		Version:       1,
		CreatedAt:     h.now().UTC(),
	}
	cmd.Fields.apply(wo)

	if err := h.repo.Create(ctx, wo); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.NewValidation(apperror.KindDuplicate, "code", "work order code already exists")
		}
		return nil, err
	}

	h.events.publish(ctx, kafka.EventTypeWorkOrderCreated, wo, "", "")
	h.events.refreshGauge(ctx, h.repo)

	return h.repo.GetByID(ctx, wo.ID)
}
