package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tair/repair-manager/internal/catalog/usecase"
	"github.com/tair/repair-manager/internal/user/domain"
	"github.com/tair/repair-manager/pkg/auth"
	"github.com/tair/repair-manager/pkg/crud"
	"github.com/tair/repair-manager/pkg/metrics"
)

// CatalogHandler serves manufacturers, devices, parts, services and groups.
type CatalogHandler struct {
	svc     *usecase.Service
	tokens  *auth.TokenManager
	metrics *metrics.Metrics
}

func NewCatalogHandler(svc *usecase.Service, tokens *auth.TokenManager, m *metrics.Metrics) *CatalogHandler {
	return &CatalogHandler{svc: svc, tokens: tokens, metrics: m}
}

func (h *CatalogHandler) canManage(next http.HandlerFunc) http.HandlerFunc {
	return h.tokens.RequirePermission(domain.PermManageCatalog, next)
}

func (h *CatalogHandler) RegisterRoutes(router *mux.Router) {
	crud.Register(router, "/api/manufacturers", h.metrics.Instrument, crud.Public, h.canManage, crud.Resource[usecase.ManufacturerInput]{
		Label:  "Manufacturer",
		Create: crud.CreateFunc(h.svc.CreateManufacturer),
		Get:    crud.GetFunc(h.svc.GetManufacturer),
		List:   crud.ListFunc(h.svc.ListManufacturers),
		Update: crud.UpdateFunc(h.svc.UpdateManufacturer),
		Delete: h.svc.DeleteManufacturer,
	})
	crud.Register(router, "/api/devices", h.metrics.Instrument, crud.Public, h.canManage, crud.Resource[usecase.DeviceInput]{
		Label:  "Device",
		Create: crud.CreateFunc(h.svc.CreateDevice),
		Get:    crud.GetFunc(h.svc.GetDevice),
		List:   crud.ListFunc(h.svc.ListDevices),
		Update: crud.UpdateFunc(h.svc.UpdateDevice),
		Delete: h.svc.DeleteDevice,
	})
	crud.Register(router, "/api/parts", h.metrics.Instrument, crud.Public, h.canManage, crud.Resource[usecase.PartInput]{
		Label:  "Part",
		Create: crud.CreateFunc(h.svc.CreatePart),
		Get:    crud.GetFunc(h.svc.GetPart),
		List:   crud.ListFunc(h.svc.ListParts),
		Update: crud.UpdateFunc(h.svc.UpdatePart),
		Delete: h.svc.DeletePart,
	})
	crud.Register(router, "/api/services", h.metrics.Instrument, crud.Public, h.canManage, crud.Resource[usecase.ServiceInput]{
		Label:  "Service",
		Create: crud.CreateFunc(h.svc.CreateService),
		Get:    crud.GetFunc(h.svc.GetService),
		List:   crud.ListFunc(h.svc.ListServices),
		Update: crud.UpdateFunc(h.svc.UpdateService),
		Delete: h.svc.DeleteService,
	})
	crud.Register(router, "/api/groups", h.metrics.Instrument, crud.Public, h.canManage, crud.Resource[usecase.GroupInput]{
		Label:  "Group",
		Create: crud.CreateFunc(h.svc.CreateGroup),
		Get:    crud.GetFunc(h.svc.GetGroup),
		List:   crud.ListFunc(h.svc.ListGroups),
		Update: crud.UpdateFunc(h.svc.UpdateGroup),
		Delete: h.svc.DeleteGroup,
	})
}
