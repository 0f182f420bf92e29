package query

import (
	"context"

	"github.com/tair/repair-manager/internal/user/domain"
)

type ListUsersHandler struct {
	repo domain.UserRepository
}

func NewListUsersHandler(repo domain.UserRepository) *ListUsersHandler {
	return &ListUsersHandler{repo: repo}
}

func (h *ListUsersHandler) Handle(ctx context.Context) ([]domain.User, error) {
	return h.repo.FindAll(ctx)
}

type ListRolesHandler struct {
	repo domain.UserRepository
}

func NewListRolesHandler(repo domain.UserRepository) *ListRolesHandler {
	return &ListRolesHandler{repo: repo}
}

func (h *ListRolesHandler) Handle(ctx context.Context) ([]domain.Role, error) {
	return h.repo.ListRoles(ctx)
}
