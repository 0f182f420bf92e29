package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	userdomain "github.com/tair/repair-manager/internal/user/domain"
	"github.com/tair/repair-manager/internal/workorder/domain"
	"github.com/tair/repair-manager/internal/workorder/usecase/command"
	"github.com/tair/repair-manager/internal/workorder/usecase/query"
	"github.com/tair/repair-manager/kafka"
	"github.com/tair/repair-manager/pkg/apperror"
	"github.com/tair/repair-manager/pkg/auth"
	"github.com/tair/repair-manager/pkg/metrics"
	"github.com/tair/repair-manager/pkg/response"
)

// WorkOrderHandler handles HTTP requests for work orders
type WorkOrderHandler struct {
	// Command handlers
	createHandler *command.CreateWorkOrderHandler
	updateHandler *command.UpdateWorkOrderHandler
	patchHandler  *command.PatchStatusHandler
	deleteHandler *command.DeleteWorkOrderHandler

	// Query handlers
	getHandler    *query.GetWorkOrderHandler
	listHandler   *query.ListWorkOrdersHandler
	exportHandler *query.ExportWorkOrdersHandler

	tokens  *auth.TokenManager
	metrics *metrics.Metrics
}

func NewWorkOrderHandler(
	repo domain.Repository,
	refs domain.References,
	publisher kafka.EventPublisher,
	tokens *auth.TokenManager,
	m *metrics.Metrics,
	opts command.Options,
) *WorkOrderHandler {
	return &WorkOrderHandler{
		createHandler: command.NewCreateWorkOrderHandler(repo, refs, publisher, m, opts),
		updateHandler: command.NewUpdateWorkOrderHandler(repo, refs, publisher, m, opts),
		patchHandler:  command.NewPatchStatusHandler(repo, refs, publisher, m, opts),
		deleteHandler: command.NewDeleteWorkOrderHandler(repo, publisher, m),
		getHandler:    query.NewGetWorkOrderHandler(repo),
		listHandler:   query.NewListWorkOrdersHandler(repo),
		exportHandler: query.NewExportWorkOrdersHandler(repo),
		tokens:        tokens,
		metrics:       m,
	}
}

func (h *WorkOrderHandler) RegisterRoutes(router *mux.Router) {
	const (
		base   = "/api/workorders"
		item   = base + "/{id}"
		export = base + "/export"
		status = item + "/status"
	)
	// export must be registered before {id}.
	router.HandleFunc(export, h.metrics.Instrument(export, h.tokens.Authenticate(h.Export))).Methods(http.MethodGet)
	router.HandleFunc(base, h.metrics.Instrument(base, h.tokens.Authenticate(h.List))).Methods(http.MethodGet)
	router.HandleFunc(base, h.metrics.Instrument(base, h.tokens.RequirePermission(userdomain.PermCreateWorkOrders, h.Create))).Methods(http.MethodPost)
	router.HandleFunc(item, h.metrics.Instrument(item, h.tokens.Authenticate(h.Get))).Methods(http.MethodGet)
	router.HandleFunc(item, h.metrics.Instrument(item, h.tokens.RequirePermission(userdomain.PermEditWorkOrders, h.Update))).Methods(http.MethodPut)
	router.HandleFunc(status, h.metrics.Instrument(status, h.tokens.RequirePermission(userdomain.PermEditWorkOrders, h.PatchStatus))).Methods(http.MethodPatch)
	router.HandleFunc(item, h.metrics.Instrument(item, h.tokens.RequirePermission(userdomain.PermDeleteWorkOrders, h.Delete))).Methods(http.MethodDelete)
}

func listQuery(r *http.Request) (query.ListWorkOrdersQuery, error) {
	q := query.ListWorkOrdersQuery{Status: r.URL.Query().Get("status")}
	ints := []struct {
		name string
		dst  *int
	}{{"limit", &q.Limit}, {"offset", &q.Offset}}
	for _, p := range ints {
		raw := r.URL.Query().Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return q, apperror.NewValidation(apperror.KindInvalidInput, p.name, "must be a non-negative integer")
		}
		*p.dst = v
	}
	if raw := r.URL.Query().Get("group_id"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return q, apperror.NewValidation(apperror.KindInvalidInput, "group_id", "must be a positive integer")
		}
		id := uint(v)
		q.GroupID = &id
	}
	return q, nil
}

// List godoc
// @Summary List work orders
// @Tags WorkOrders
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param group_id query int false "Filter by group"
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Offset"
// @Success 200 {object} response.Response{data=query.ListWorkOrdersResult}
// @Router /workorders [get]
func (h *WorkOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	result, err := h.listHandler.Handle(r.Context(), q)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, result)
}

// Export godoc
// @Summary Export work orders as xlsx
// @Tags WorkOrders
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param group_id query int false "Filter by group"
// @Success 200 {file} file
// @Router /workorders/export [get]
func (h *WorkOrderHandler) Export(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	data, err := h.exportHandler.Handle(r.Context(), q)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	filename := fmt.Sprintf("work-orders-%s.xlsx", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Get godoc
// @Summary Get work order by id
// @Tags WorkOrders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Work order ID"
// @Success 200 {object} response.Response{data=domain.WorkOrder}
// @Failure 404 {object} response.Response
// @Router /workorders/{id} [get]
func (h *WorkOrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := response.PathID(r, "id")
	if err != nil {
		response.Error(w, r, err)
		return
	}
	wo, err := h.getHandler.Handle(r.Context(), query.GetWorkOrderQuery{ID: id})
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, wo)
}

// Create godoc
// @Summary Create work order
// @Tags WorkOrders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body command.CreateWorkOrderCommand true "Work order"
// @Success 201 {object} response.Response{data=domain.WorkOrder}
// @Failure 400 {object} response.Response
// @Router /workorders [post]
func (h *WorkOrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd command.CreateWorkOrderCommand
	if err := response.Decode(r, &cmd); err != nil {
		response.Error(w, r, err)
		return
	}
	wo, err := h.createHandler.Handle(r.Context(), cmd)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.Created(w, "Work order created successfully", wo)
}

// Update godoc
// @Summary Replace work order
// @Tags WorkOrders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Work order ID"
// @Param request body command.UpdateWorkOrderCommand true "Work order"
// @Success 200 {object} response.Response{data=domain.WorkOrder}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /workorders/{id} [put]
func (h *WorkOrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := response.PathID(r, "id")
	if err != nil {
		response.Error(w, r, err)
		return
	}
	var cmd command.UpdateWorkOrderCommand
	if err := response.Decode(r, &cmd); err != nil {
		response.Error(w, r, err)
		return
	}
	cmd.PathID = id

	wo, err := h.updateHandler.Handle(r.Context(), cmd)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Response{Success: true, Message: "Work order updated successfully", Data: wo})
}

// PatchStatus godoc
// @Summary Change work order status
// @Tags WorkOrders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Work order ID"
// @Param request body command.PatchStatusCommand true "New status"
// @Success 200 {object} response.Response{data=domain.WorkOrder}
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /workorders/{id}/status [patch]
func (h *WorkOrderHandler) PatchStatus(w http.ResponseWriter, r *http.Request) {
	id, err := response.PathID(r, "id")
	if err != nil {
		response.Error(w, r, err)
		return
	}
	var cmd command.PatchStatusCommand
	if err := response.Decode(r, &cmd); err != nil {
		response.Error(w, r, err)
		return
	}
	cmd.ID = id

	wo, err := h.patchHandler.Handle(r.Context(), cmd)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Response{Success: true, Message: "Status updated successfully", Data: wo})
}

// Delete godoc
// @Summary Delete work order
// @Tags WorkOrders
// @Security BearerAuth
// @Param id path int true "Work order ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /workorders/{id} [delete]
func (h *WorkOrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := response.PathID(r, "id")
	if err != nil {
		response.Error(w, r, err)
		return
	}
	if err := h.deleteHandler.Handle(r.Context(), command.DeleteWorkOrderCommand{ID: id}); err != nil {
		response.Error(w, r, err)
		return
	}
	response.Message(w, "Work order deleted successfully")
}
