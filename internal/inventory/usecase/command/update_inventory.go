package command

import (
	"context"

	catalog "github.com/tair/repair-manager/internal/catalog/domain"
	"github.com/tair/repair-manager/internal/inventory/domain"
	"github.com/tair/repair-manager/pkg/apperror"
)

// UpdateInventoryCommand replaces an item. ID may be omitted from the body;
// when present it must equal PathID.
type UpdateInventoryCommand struct {
	PathID uint `json:"-"`
	ID     uint `json:"id,omitempty"`
	Fields
}

type UpdateInventoryHandler struct {
	repo domain.Repository
	refs catalog.Checker
}

func NewUpdateInventoryHandler(repo domain.Repository, refs catalog.Checker) *UpdateInventoryHandler {
	return &UpdateInventoryHandler{repo: repo, refs: refs}
}

func (h *UpdateInventoryHandler) Handle(ctx context.Context, cmd UpdateInventoryCommand) (*domain.InventoryItem, error) {
	if cmd.ID != 0 && cmd.ID != cmd.PathID {
		return nil, apperror.NewValidation(apperror.KindIdentifierMismatch, "id", "body id does not match path id")
	}
	item, err := cmd.build(ctx, h.refs, cmd.PathID)
	if err != nil {
		return nil, err
	}
	found, err := h.repo.Update(ctx, item)
	if err != nil {
		return nil, duplicateItem(err)
	}
	if !found {
		return nil, apperror.NewNotFound("inventory item", cmd.PathID)
	}
	return item, nil
}
