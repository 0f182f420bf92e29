package query

import (
	"context"

	"github.com/tair/repair-manager/internal/workorder/domain"
)

type GetWorkOrderQuery struct {
	ID uint
}

type GetWorkOrderHandler struct {
	repo domain.Repository
}

func NewGetWorkOrderHandler(repo domain.Repository) *GetWorkOrderHandler {
	return &GetWorkOrderHandler{repo: repo}
}

func (h *GetWorkOrderHandler) Handle(ctx context.Context, q GetWorkOrderQuery) (*domain.WorkOrder, error) {
	return h.repo.GetByID(ctx, q.ID)
}

type ListWorkOrdersQuery struct {
	Status  string
	GroupID *uint
	Limit   int
	Offset  int
}

// ListWorkOrdersResult is one page of work orders plus the unpaged total.
type ListWorkOrdersResult struct {
	Items  []domain.WorkOrder `json:"items"`
	Total  int64              `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

type ListWorkOrdersHandler struct {
	repo domain.Repository
}

func NewListWorkOrdersHandler(repo domain.Repository) *ListWorkOrdersHandler {
	return &ListWorkOrdersHandler{repo: repo}
}

func (h *ListWorkOrdersHandler) Handle(ctx context.Context, q ListWorkOrdersQuery) (*ListWorkOrdersResult, error) {
	items, total, err := h.repo.List(ctx, domain.ListFilter{
		Status:  q.Status,
		GroupID: q.GroupID,
		Limit:   q.Limit,
		Offset:  q.Offset,
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.WorkOrder{}
	}
	return &ListWorkOrdersResult{Items: items, Total: total, Limit: q.Limit, Offset: q.Offset}, nil
}
