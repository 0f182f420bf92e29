package command

import (
	"context"

	"github.com/tair/repair-manager/internal/user/domain"
	"github.com/tair/repair-manager/pkg/apperror"
	"github.com/tair/repair-manager/pkg/auth"
	"github.com/tair/repair-manager/pkg/validation"
)

// UpdateUserCommand replaces the profile of a user. An empty password keeps
// the current one.
type UpdateUserCommand struct {
	ID       uint   `json:"-"`
	Password string `json:"password" validate:"omitempty,min=8"`
	FullName string `json:"full_name" validate:"max=100"`
	Email    string `json:"email" validate:"omitempty,email,max=100"`
	RoleID   uint   `json:"role_id" validate:"required"`
	GroupID  *uint  `json:"group_id"`
	IsAdmin  bool   `json:"is_admin"`
	IsActive bool   `json:"is_active"`
}

type UpdateUserHandler struct {
	repo   domain.UserRepository
	groups GroupChecker
}

func NewUpdateUserHandler(repo domain.UserRepository, groups GroupChecker) *UpdateUserHandler {
	return &UpdateUserHandler{repo: repo, groups: groups}
}

func (h *UpdateUserHandler) Handle(ctx context.Context, cmd UpdateUserCommand) (*domain.User, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	user, err := h.repo.FindByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}
	if err := checkRefs(ctx, h.repo, h.groups, cmd.RoleID, cmd.GroupID); err != nil {
		return nil, err
	}

	if cmd.Password != "" {
		hash, err := auth.HashPassword(cmd.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	user.FullName = cmd.FullName
	user.Email = cmd.Email
	user.RoleID = cmd.RoleID
	user.GroupID = cmd.GroupID
	user.IsAdmin = cmd.IsAdmin
	user.IsActive = cmd.IsActive
	user.Role = nil
	user.Group = nil

	found, err := h.repo.Update(ctx, user)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperror.NewNotFound("user", cmd.ID)
	}
	return h.repo.FindByID(ctx, cmd.ID)
}
