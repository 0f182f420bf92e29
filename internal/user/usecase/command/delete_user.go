package command

import (
	"context"

	"github.com/tair/repair-manager/internal/user/domain"
	"github.com/tair/repair-manager/pkg/apperror"
)

type DeleteUserCommand struct {
	ID uint
	// RequestedBy is the id of the authenticated caller.
	RequestedBy uint
}

type DeleteUserHandler struct {
	repo domain.UserRepository
}

func NewDeleteUserHandler(repo domain.UserRepository) *DeleteUserHandler {
	return &DeleteUserHandler{repo: repo}
}

func (h *DeleteUserHandler) Handle(ctx context.Context, cmd DeleteUserCommand) error {
	if cmd.ID == cmd.RequestedBy {
		return apperror.NewValidation(apperror.KindInvalidInput, "id", "cannot delete your own account")
	}
	found, err := h.repo.Delete(ctx, cmd.ID)
	if err != nil {
		return err
	}
	if !found {
		return apperror.NewNotFound("user", cmd.ID)
	}
	return nil
}
