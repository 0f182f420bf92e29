package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	catalog "github.com/tair/repair-manager/internal/catalog/domain"
	"github.com/tair/repair-manager/internal/inventory/domain"
	"github.com/tair/repair-manager/internal/inventory/usecase/command"
	"github.com/tair/repair-manager/internal/inventory/usecase/query"
	userdomain "github.com/tair/repair-manager/internal/user/domain"
	"github.com/tair/repair-manager/pkg/apperror"
	"github.com/tair/repair-manager/pkg/auth"
	"github.com/tair/repair-manager/pkg/metrics"
	"github.com/tair/repair-manager/pkg/response"
)

// InventoryHandler handles HTTP requests for inventory
type InventoryHandler struct {
	createHandler *command.CreateInventoryHandler
	updateHandler *command.UpdateInventoryHandler
	deleteHandler *command.DeleteInventoryHandler
	getHandler    *query.GetInventoryHandler
	listHandler   *query.ListInventoryHandler

	tokens  *auth.TokenManager
	metrics *metrics.Metrics
}

func NewInventoryHandler(repo domain.Repository, refs catalog.Checker, tokens *auth.TokenManager, m *metrics.Metrics) *InventoryHandler {
	return &InventoryHandler{
		createHandler: command.NewCreateInventoryHandler(repo, refs),
		updateHandler: command.NewUpdateInventoryHandler(repo, refs),
		deleteHandler: command.NewDeleteInventoryHandler(repo),
		getHandler:    query.NewGetInventoryHandler(repo),
		listHandler:   query.NewListInventoryHandler(repo),
		tokens:        tokens,
		metrics:       m,
	}
}

// RegisterRoutes registers all inventory routes
func (h *InventoryHandler) RegisterRoutes(router *mux.Router) {
	const (
		base  = "/api/inventory"
		item  = base + "/{id}"
		group = base + "/group/{groupId}"
	)
	manage := func(next http.HandlerFunc) http.HandlerFunc {
		return h.tokens.RequirePermission(userdomain.PermManageInventory, next)
	}

	router.HandleFunc(group, h.metrics.Instrument(group, h.tokens.Authenticate(h.ListByGroup))).Methods(http.MethodGet)
	router.HandleFunc(base, h.metrics.Instrument(base, h.tokens.Authenticate(h.List))).Methods(http.MethodGet)
	router.HandleFunc(base, h.metrics.Instrument(base, manage(h.Create))).Methods(http.MethodPost)
	router.HandleFunc(item, h.metrics.Instrument(item, h.tokens.Authenticate(h.Get))).Methods(http.MethodGet)
	router.HandleFunc(item, h.metrics.Instrument(item, manage(h.Update))).Methods(http.MethodPut)
	router.HandleFunc(item, h.metrics.Instrument(item, manage(h.Delete))).Methods(http.MethodDelete)
}

// List godoc
// @Summary List inventory
// @Tags Inventory
// @Produce json
// @Security BearerAuth
// @Param group_id query int false "Only this group"
// @Success 200 {object} response.Response{data=[]domain.InventoryItem}
// @Router /inventory [get]
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	var q query.ListInventoryQuery
	if raw := r.URL.Query().Get("group_id"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			response.Error(w, r, apperror.NewValidation(apperror.KindInvalidInput, "group_id", "must be a positive integer"))
			return
		}
		id := uint(v)
		q.GroupID = &id
	}
	h.list(w, r, q)
}

// ListByGroup godoc
// @Summary List one group's inventory
// @Tags Inventory
// @Produce json
// @Security BearerAuth
// @Param groupId path int true "Group ID"
// @Success 200 {object} response.Response{data=[]domain.InventoryItem}
// @Router /inventory/group/{groupId} [get]
func (h *InventoryHandler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	id, err := response.PathID(r, "groupId")
	if err != nil {
		response.Error(w, r, err)
		return
	}
	h.list(w, r, query.ListInventoryQuery{GroupID: &id})
}

func (h *InventoryHandler) list(w http.ResponseWriter, r *http.Request, q query.ListInventoryQuery) {
	items, err := h.listHandler.Handle(r.Context(), q)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, items)
}

// Get godoc
// @Summary Get inventory item
// @Tags Inventory
// @Produce json
// @Security BearerAuth
// @Param id path int true "Inventory item ID"
// @Success 200 {object} response.Response{data=domain.InventoryItem}
// @Failure 404 {object} response.Response
// @Router /inventory/{id} [get]
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := response.PathID(r, "id")
	if err != nil {
		response.Error(w, r, err)
		return
	}
	item, err := h.getHandler.Handle(r.Context(), query.GetInventoryQuery{ID: id})
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, item)
}

// Create godoc
// @Summary Create inventory item
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body command.CreateInventoryCommand true "Inventory item"
// @Success 201 {object} response.Response{data=domain.InventoryItem}
// @Failure 400 {object} response.Response
// @Router /inventory [post]
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd command.CreateInventoryCommand
	if err := response.Decode(r, &cmd); err != nil {
		response.Error(w, r, err)
		return
	}
	item, err := h.createHandler.Handle(r.Context(), cmd)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.Created(w, "Inventory item created successfully", item)
}

// Update godoc
// @Summary Replace inventory item
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Inventory item ID"
// @Param request body command.UpdateInventoryCommand true "Inventory item"
// @Success 200 {object} response.Response{data=domain.InventoryItem}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /inventory/{id} [put]
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := response.PathID(r, "id")
	if err != nil {
		response.Error(w, r, err)
		return
	}
	var cmd command.UpdateInventoryCommand
	if err := response.Decode(r, &cmd); err != nil {
		response.Error(w, r, err)
		return
	}
	cmd.PathID = id

	item, err := h.updateHandler.Handle(r.Context(), cmd)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Response{Success: true, Message: "Inventory item updated successfully", Data: item})
}

// Delete godoc
// @Summary Delete inventory item
// @Tags Inventory
// @Security BearerAuth
// @Param id path int true "Inventory item ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /inventory/{id} [delete]
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := response.PathID(r, "id")
	if err != nil {
		response.Error(w, r, err)
		return
	}
	if err := h.deleteHandler.Handle(r.Context(), command.DeleteInventoryCommand{ID: id}); err != nil {
		response.Error(w, r, err)
		return
	}
	response.Message(w, "Inventory item deleted successfully")
}
