package command

import (
	"context"
	"strings"
	"time"

	"github.com/tair/repair-manager/internal/user/domain"
	"github.com/tair/repair-manager/pkg/apperror"
	"github.com/tair/repair-manager/pkg/auth"
	"github.com/tair/repair-manager/pkg/database"
	"github.com/tair/repair-manager/pkg/validation"
)

// GroupChecker reports whether a shop group exists.
type GroupChecker interface {
	GroupExists(ctx context.Context, id uint) (bool, error)
}

type CreateUserCommand struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"max=100"`
	Email    string `json:"email" validate:"omitempty,email,max=100"`
	RoleID   uint   `json:"role_id" validate:"required"`
	GroupID  *uint  `json:"group_id"`
	IsAdmin  bool   `json:"is_admin"`
}

type CreateUserHandler struct {
	repo   domain.UserRepository
	groups GroupChecker
}

func NewCreateUserHandler(repo domain.UserRepository, groups GroupChecker) *CreateUserHandler {
	return &CreateUserHandler{repo: repo, groups: groups}
}

func (h *CreateUserHandler) Handle(ctx context.Context, cmd CreateUserCommand) (*domain.User, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}
	if err := checkRefs(ctx, h.repo, h.groups, cmd.RoleID, cmd.GroupID); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(cmd.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     strings.TrimSpace(cmd.Username),
		PasswordHash: hash,
		FullName:     cmd.FullName,
		Email:        cmd.Email,
		RoleID:       cmd.RoleID,
		GroupID:      cmd.GroupID,
		IsAdmin:      cmd.IsAdmin,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.repo.Create(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.NewValidation(apperror.KindDuplicate, "username", "username already taken")
		}
		return nil, err
	}
	return user, nil
}

func checkRefs(ctx context.Context, repo domain.UserRepository, groups GroupChecker, roleID uint, groupID *uint) error {
	ok, err := repo.RoleExists(ctx, roleID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NewValidation(apperror.KindMissingReference, "role_id", "role does not exist")
	}
	if groupID == nil {
		return nil
	}
	ok, err = groups.GroupExists(ctx, *groupID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NewValidation(apperror.KindMissingReference, "group_id", "group does not exist")
	}
	return nil
}
