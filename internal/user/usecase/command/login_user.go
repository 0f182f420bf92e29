package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tair/repair-manager/internal/user/domain"
	"github.com/tair/repair-manager/pkg/auth"
	"github.com/tair/repair-manager/pkg/logger"
)

// ErrInvalidCredentials is returned for unknown users, wrong passwords and
// inactive accounts alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

type LoginUserCommand struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

type LoginUserHandler struct {
	repo   domain.UserRepository
	tokens *auth.TokenManager
	now    func() time.Time
}

func NewLoginUserHandler(repo domain.UserRepository, tokens *auth.TokenManager) *LoginUserHandler {
	return &LoginUserHandler{repo: repo, tokens: tokens, now: time.Now}
}

func (h *LoginUserHandler) Handle(ctx context.Context, cmd LoginUserCommand) (*LoginResponse, error) {
	if cmd.Username == "" || cmd.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := h.repo.FindByUsername(ctx, cmd.Username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive || !auth.CheckPassword(user.PasswordHash, cmd.Password) {
		return nil, ErrInvalidCredentials
	}

	roleName := ""
	if user.Role != nil {
		roleName = user.Role.Name
	}
	token, expiresAt, err := h.tokens.GenerateToken(auth.Claims{
		UserID:      user.ID,
		Username:    user.Username,
		Role:        roleName,
		GroupID:     user.GroupID,
		IsAdmin:     user.IsAdmin,
		Permissions: user.Permissions(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := h.now().UTC()
	if err := h.repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		logger.Warn(ctx).Err(err).Uint("user_id", user.ID).Msg("failed to record last login")
	} else {
		user.LastLoginAt = &now
	}

	return &LoginResponse{Token: token, ExpiresAt: expiresAt, User: user}, nil
}
