package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/tair/repair-manager/internal/pricing/usecase"
	userdomain "github.com/tair/repair-manager/internal/user/domain"
	"github.com/tair/repair-manager/pkg/apperror"
	"github.com/tair/repair-manager/pkg/auth"
	"github.com/tair/repair-manager/pkg/crud"
	"github.com/tair/repair-manager/pkg/metrics"
	"github.com/tair/repair-manager/pkg/response"
)

type PricingHandler struct {
	svc     *usecase.Service
	tokens  *auth.TokenManager
	metrics *metrics.Metrics
}

func NewPricingHandler(svc *usecase.Service, tokens *auth.TokenManager, m *metrics.Metrics) *PricingHandler {
	return &PricingHandler{svc: svc, tokens: tokens, metrics: m}
}

func (h *PricingHandler) canManage(next http.HandlerFunc) http.HandlerFunc {
	return h.tokens.RequirePermission(userdomain.PermManageCatalog, next)
}

func (h *PricingHandler) RegisterRoutes(router *mux.Router) {
	const (
		base    = "/api/catalog-pricing"
		resolve = base + "/item/{itemType}/{itemId}"
	)
	router.HandleFunc(resolve, h.metrics.Instrument(resolve, h.Resolve)).Methods(http.MethodGet)
	router.HandleFunc(base, h.metrics.Instrument(base, h.List)).Methods(http.MethodGet)

	crud.Register(router, base, h.metrics.Instrument, crud.Public, h.canManage, crud.Resource[usecase.PricingInput]{
		Label:  "Pricing",
		Create: crud.CreateFunc(h.svc.Create),
		Get:    crud.GetFunc(h.svc.Get),
		Update: crud.UpdateFunc(h.svc.Update),
		Delete: h.svc.Delete,
	})
}

// List godoc
// @Summary List catalog pricing
// @Tags Pricing
// @Produce json
// @Param item_type query string false "Device, Part or Service"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /catalog-pricing [get]
func (h *PricingHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context(), r.URL.Query().Get("item_type"))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, items)
}

// Resolve godoc
// @Summary Price in effect for an item
// @Tags Pricing
// @Produce json
// @Param itemType path string true "Device, Part or Service"
// @Param itemId path int true "Item ID"
// @Param as_of query string false "RFC3339 instant, defaults to now"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /catalog-pricing/item/{itemType}/{itemId} [get]
func (h *PricingHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	itemID, err := response.PathID(r, "itemId")
	if err != nil {
		response.Error(w, r, err)
		return
	}

	var asOf *time.Time
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(w, r, apperror.NewValidation(apperror.KindInvalidInput, "as_of", "must be an RFC3339 timestamp"))
			return
		}
		asOf = &t
	}

	p, err := h.svc.Resolve(r.Context(), mux.Vars(r)["itemType"], itemID, asOf)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, p)
}
