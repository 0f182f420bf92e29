package command

import (
	"context"

	catalog "github.com/tair/repair-manager/internal/catalog/domain"
	"github.com/tair/repair-manager/internal/inventory/domain"
)

type CreateInventoryCommand struct {
	Fields
}

type CreateInventoryHandler struct {
	repo domain.Repository
	refs catalog.Checker
}

func NewCreateInventoryHandler(repo domain.Repository, refs catalog.Checker) *CreateInventoryHandler {
	return &CreateInventoryHandler{repo: repo, refs: refs}
}

func (h *CreateInventoryHandler) Handle(ctx context.Context, cmd CreateInventoryCommand) (*domain.InventoryItem, error) {
	item, err := cmd.build(ctx, h.refs, 0)
	if err != nil {
		return nil, err
	}
	if err := h.repo.Create(ctx, item); err != nil {
		return nil, duplicateItem(err)
	}
	return item, nil
}
