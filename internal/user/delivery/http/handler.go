package http

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tair/repair-manager/internal/user/domain"
	"github.com/tair/repair-manager/internal/user/usecase/command"
	"github.com/tair/repair-manager/internal/user/usecase/query"
	"github.com/tair/repair-manager/pkg/auth"
	"github.com/tair/repair-manager/pkg/metrics"
	"github.com/tair/repair-manager/pkg/ratelimit"
	"github.com/tair/repair-manager/pkg/response"
)

// UserHandler handles HTTP requests for users
type UserHandler struct {
	// Command handlers
	loginHandler  *command.LoginUserHandler
	createHandler *command.CreateUserHandler
	updateHandler *command.UpdateUserHandler
	deleteHandler *command.DeleteUserHandler

	// Query handlers
	getUserHandler *query.GetUserHandler
	listHandler    *query.ListUsersHandler
	rolesHandler   *query.ListRolesHandler

	tokens       *auth.TokenManager
	metrics      *metrics.Metrics
	loginLimiter *ratelimit.Limiter
}

// NewUserHandler creates a new user handler
func NewUserHandler(repo domain.UserRepository, groups command.GroupChecker, tokens *auth.TokenManager, m *metrics.Metrics, loginLimiter *ratelimit.Limiter) *UserHandler {
	return &UserHandler{
		loginHandler:   command.NewLoginUserHandler(repo, tokens),
		createHandler:  command.NewCreateUserHandler(repo, groups),
		updateHandler:  command.NewUpdateUserHandler(repo, groups),
		deleteHandler:  command.NewDeleteUserHandler(repo),
		getUserHandler: query.NewGetUserHandler(repo),
		listHandler:    query.NewListUsersHandler(repo),
		rolesHandler:   query.NewListRolesHandler(repo),
		tokens:         tokens,
		metrics:        m,
		loginLimiter:   loginLimiter,
	}
}

func (h *UserHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/auth/login", h.metrics.Instrument("/api/auth/login", h.loginLimiter.Middleware(h.Login))).Methods(http.MethodPost)

	router.HandleFunc("/api/users/me", h.metrics.Instrument("/api/users/me", h.tokens.Authenticate(h.GetProfile))).Methods(http.MethodGet)
	router.HandleFunc("/api/users", h.metrics.Instrument("/api/users", h.tokens.RequirePermission(domain.PermManageUsers, h.ListUsers))).Methods(http.MethodGet)
	router.HandleFunc("/api/users", h.metrics.Instrument("/api/users", h.tokens.RequirePermission(domain.PermManageUsers, h.CreateUser))).Methods(http.MethodPost)
	router.HandleFunc("/api/users/{id}", h.metrics.Instrument("/api/users/{id}", h.tokens.RequirePermission(domain.PermManageUsers, h.GetUser))).Methods(http.MethodGet)
	router.HandleFunc("/api/users/{id}", h.metrics.Instrument("/api/users/{id}", h.tokens.RequirePermission(domain.PermManageUsers, h.UpdateUser))).Methods(http.MethodPut)
	router.HandleFunc("/api/users/{id}", h.metrics.Instrument("/api/users/{id}", h.tokens.RequirePermission(domain.PermManageUsers, h.DeleteUser))).Methods(http.MethodDelete)

	router.HandleFunc("/api/roles", h.metrics.Instrument("/api/roles", h.tokens.Authenticate(h.ListRoles))).Methods(http.MethodGet)
}

// Login godoc
// @Summary User login
// @Description Authenticate user and get JWT token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body command.LoginUserCommand true "Login credentials"
// @Success 200 {object} response.Response{data=command.LoginResponse}
// @Failure 401 {object} response.Response
// @Failure 429 {object} response.Response
// @Router /auth/login [post]
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var cmd command.LoginUserCommand
	if err := response.Decode(r, &cmd); err != nil {
		response.Error(w, r, err)
		return
	}

	resp, err := h.loginHandler.Handle(r.Context(), cmd)
	if err != nil {
		if errors.Is(err, command.ErrInvalidCredentials) {
			response.JSON(w, http.StatusUnauthorized, response.Response{Success: false, Error: err.Error()})
			return
		}
		response.Error(w, r, err)
		return
	}
	response.OK(w, resp)
}

// GetProfile godoc
// @Summary Current user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=domain.User}
// @Router /users/me [get]
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())
	user, err := h.getUserHandler.Handle(r.Context(), query.GetUserQuery{ID: claims.UserID})
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, user)
}

// ListUsers godoc
// @Summary List users
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]domain.User}
// @Router /users [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.listHandler.Handle(r.Context())
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, users)
}

// GetUser godoc
// @Summary Get user by id
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response{data=domain.User}
// @Failure 404 {object} response.Response
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := response.PathID(r, "id")
	if err != nil {
		response.Error(w, r, err)
		return
	}
	user, err := h.getUserHandler.Handle(r.Context(), query.GetUserQuery{ID: id})
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, user)
}

// CreateUser godoc
// @Summary Create user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body command.CreateUserCommand true "User"
// @Success 201 {object} response.Response{data=domain.User}
// @Failure 400 {object} response.Response
// @Router /users [post]
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var cmd command.CreateUserCommand
	if err := response.Decode(r, &cmd); err != nil {
		response.Error(w, r, err)
		return
	}
	user, err := h.createHandler.Handle(r.Context(), cmd)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.Created(w, "User created successfully", user)
}

// UpdateUser godoc
// @Summary Update user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body command.UpdateUserCommand true "User"
// @Success 200 {object} response.Response{data=domain.User}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := response.PathID(r, "id")
	if err != nil {
		response.Error(w, r, err)
		return
	}
	var cmd command.UpdateUserCommand
	if err := response.Decode(r, &cmd); err != nil {
		response.Error(w, r, err)
		return
	}
	cmd.ID = id

	user, err := h.updateHandler.Handle(r.Context(), cmd)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Response{Success: true, Message: "User updated successfully", Data: user})
}

// DeleteUser godoc
// @Summary Delete user
// @Tags Users
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := response.PathID(r, "id")
	if err != nil {
		response.Error(w, r, err)
		return
	}
	claims, _ := auth.ClaimsFromContext(r.Context())
	if err := h.deleteHandler.Handle(r.Context(), command.DeleteUserCommand{ID: id, RequestedBy: claims.UserID}); err != nil {
		response.Error(w, r, err)
		return
	}
	response.Message(w, "User deleted successfully")
}

// ListRoles godoc
// @Summary List roles
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]domain.Role}
// @Router /roles [get]
func (h *UserHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.rolesHandler.Handle(r.Context())
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, roles)
}
