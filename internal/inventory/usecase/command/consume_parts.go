package command

import (
	"context"
	"time"

	"github.com/tair/repair-manager/internal/inventory/domain"
	"github.com/tair/repair-manager/pkg/logger"
)

// ConsumePartsCommand draws the parts of a finished work order from its group's stock.
type ConsumePartsCommand struct {
	WorkOrderCode string
	GroupID       uint
	PartIDs       []uint
}

type ConsumePartsHandler struct {
	repo domain.Repository
}

func NewConsumePartsHandler(repo domain.Repository) *ConsumePartsHandler {
	return &ConsumePartsHandler{repo: repo}
}

// Handle returns the stock lines that fell under their minimum. Repeated
// commands for the same work order leave stock untouched.
func (h *ConsumePartsHandler) Handle(ctx context.Context, cmd ConsumePartsCommand) ([]domain.InventoryItem, error) {
	if cmd.GroupID == 0 || len(cmd.PartIDs) == 0 {
		return nil, nil
	}
	low, applied, err := h.repo.ConsumeParts(ctx, cmd.WorkOrderCode, cmd.GroupID, cmd.PartIDs, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !applied {
		logger.Info(ctx).
			Str("work_order", cmd.WorkOrderCode).
			Msg("parts already consumed, skipping")
		return nil, nil
	}
	logger.Info(ctx).
		Str("work_order", cmd.WorkOrderCode).
		Uint("group_id", cmd.GroupID).
		Int("parts", len(cmd.PartIDs)).
		Int("low_stock", len(low)).
		Msg("parts consumed")
	return low, nil
}
