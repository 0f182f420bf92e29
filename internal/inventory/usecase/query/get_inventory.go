package query

import (
	"context"

	"github.com/tair/repair-manager/internal/inventory/domain"
)

type GetInventoryQuery struct {
	ID uint
}

type GetInventoryHandler struct {
	repo domain.Repository
}

func NewGetInventoryHandler(repo domain.Repository) *GetInventoryHandler {
	return &GetInventoryHandler{repo: repo}
}

func (h *GetInventoryHandler) Handle(ctx context.Context, q GetInventoryQuery) (*domain.InventoryItem, error) {
	return h.repo.GetByID(ctx, q.ID)
}
