package command

import (
	"context"

	"github.com/tair/repair-manager/internal/workorder/domain"
	"github.com/tair/repair-manager/kafka"
	"github.com/tair/repair-manager/pkg/apperror"
	"github.com/tair/repair-manager/pkg/metrics"
)

type DeleteWorkOrderCommand struct {
	ID uint
}

type DeleteWorkOrderHandler struct {
	repo   domain.Repository
	events eventSink
}

func NewDeleteWorkOrderHandler(repo domain.Repository, publisher kafka.EventPublisher, m *metrics.Metrics) *DeleteWorkOrderHandler {
	return &DeleteWorkOrderHandler{repo: repo, events: eventSink{publisher: publisher, metrics: m}}
}

// Handle hard deletes the work order.
func (h *DeleteWorkOrderHandler) Handle(ctx context.Context, cmd DeleteWorkOrderCommand) error {
	current, err := h.repo.GetByID(ctx, cmd.ID)
	if err != nil {
		return err
	}

	found, err := h.repo.Delete(ctx, cmd.ID)
	if err != nil {
		return err
	}
	if !found {
		return apperror.NewNotFound("work order", cmd.ID)
	}

	h.events.publish(ctx, kafka.EventTypeWorkOrderDeleted, current, "", "")
	h.events.refreshGauge(ctx, h.repo)
	return nil
}
