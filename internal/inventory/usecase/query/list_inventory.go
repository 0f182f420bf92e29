package query

import (
	"context"

	"github.com/tair/repair-manager/internal/inventory/domain"
)

// ListInventoryQuery lists every stock line, or one group's when GroupID is set.
type ListInventoryQuery struct {
	GroupID *uint
}

type ListInventoryHandler struct {
	repo domain.Repository
}

func NewListInventoryHandler(repo domain.Repository) *ListInventoryHandler {
	return &ListInventoryHandler{repo: repo}
}

func (h *ListInventoryHandler) Handle(ctx context.Context, q ListInventoryQuery) ([]domain.InventoryItem, error) {
	items, err := h.repo.List(ctx, q.GroupID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.InventoryItem{}
	}
	return items, nil
}
