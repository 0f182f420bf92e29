package command

import (
	"context"

	"github.com/tair/repair-manager/internal/inventory/domain"
	"github.com/tair/repair-manager/pkg/apperror"
)

type DeleteInventoryCommand struct {
	ID uint
}

type DeleteInventoryHandler struct {
	repo domain.Repository
}

func NewDeleteInventoryHandler(repo domain.Repository) *DeleteInventoryHandler {
	return &DeleteInventoryHandler{repo: repo}
}

func (h *DeleteInventoryHandler) Handle(ctx context.Context, cmd DeleteInventoryCommand) error {
	found, err := h.repo.Delete(ctx, cmd.ID)
	if err != nil {
		return err
	}
	if !found {
		return apperror.NewNotFound("inventory item", cmd.ID)
	}
	return nil
}
