package http

import (
	"net/http"

	"github.com/gorilla/mux"

	userdomain "github.com/tair/repair-manager/internal/user/domain"
	"github.com/tair/repair-manager/internal/workflow/usecase"
	"github.com/tair/repair-manager/pkg/auth"
	"github.com/tair/repair-manager/pkg/crud"
	"github.com/tair/repair-manager/pkg/metrics"
	"github.com/tair/repair-manager/pkg/response"
)

// WorkflowHandler serves workflows, repair programs and status codes.
type WorkflowHandler struct {
	svc     *usecase.Service
	tokens  *auth.TokenManager
	metrics *metrics.Metrics
}

func NewWorkflowHandler(svc *usecase.Service, tokens *auth.TokenManager, m *metrics.Metrics) *WorkflowHandler {
	return &WorkflowHandler{svc: svc, tokens: tokens, metrics: m}
}

func (h *WorkflowHandler) require(perm string) crud.Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return h.tokens.RequirePermission(perm, next)
	}
}

func (h *WorkflowHandler) RegisterRoutes(router *mux.Router) {
	// Registered before the generic routes so "active" is not parsed as an id.
	router.HandleFunc("/api/status-codes/active", h.metrics.Instrument("/api/status-codes/active", h.ListActiveStatusCodes)).Methods(http.MethodGet)

	crud.Register(router, "/api/workflows", h.metrics.Instrument, crud.Public, h.require(userdomain.PermManageWorkflows), crud.Resource[usecase.WorkflowInput]{
		Label:  "Workflow",
		Create: crud.CreateFunc(h.svc.CreateWorkflow),
		Get:    crud.GetFunc(h.svc.GetWorkflow),
		List:   crud.ListFunc(h.svc.ListWorkflows),
		Update: crud.UpdateFunc(h.svc.UpdateWorkflow),
		Delete: h.svc.DeleteWorkflow,
	})
	crud.Register(router, "/api/programs", h.metrics.Instrument, crud.Public, h.require(userdomain.PermManagePrograms), crud.Resource[usecase.ProgramInput]{
		Label:  "Program",
		Create: crud.CreateFunc(h.svc.CreateProgram),
		Get:    crud.GetFunc(h.svc.GetProgram),
		List:   crud.ListFunc(h.svc.ListPrograms),
		Update: crud.UpdateFunc(h.svc.UpdateProgram),
		Delete: h.svc.DeleteProgram,
	})
	crud.Register(router, "/api/status-codes", h.metrics.Instrument, crud.Public, h.require(userdomain.PermManageWorkflows), crud.Resource[usecase.StatusCodeInput]{
		Label:  "Status code",
		Create: crud.CreateFunc(h.svc.CreateStatusCode),
		Get:    crud.GetFunc(h.svc.GetStatusCode),
		List:   crud.ListFunc(h.svc.ListStatusCodes),
		Update: crud.UpdateFunc(h.svc.UpdateStatusCode),
		Delete: h.svc.DeleteStatusCode,
	})
}

// ListActiveStatusCodes godoc
// @Summary List active status codes
// @Tags Workflows
// @Produce json
// @Success 200 {object} response.Response
// @Router /status-codes/active [get]
func (h *WorkflowHandler) ListActiveStatusCodes(w http.ResponseWriter, r *http.Request) {
	codes, err := h.svc.ListActiveStatusCodes(r.Context())
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, codes)
}
