package repository

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/repair-manager/internal/inventory/domain"
)

var tracer = otel.Tracer("inventory-repository")

// TracingInventoryRepository wraps a domain.Repository with a span per call.
type TracingInventoryRepository struct {
	next domain.Repository
}

func NewTracingInventoryRepository(next domain.Repository) *TracingInventoryRepository {
	return &TracingInventoryRepository{next: next}
}

var _ domain.Repository = (*TracingInventoryRepository)(nil)

// Helper function to add database error details to span
func addDBErrorToSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

func (r *TracingInventoryRepository) Create(ctx context.Context, item *domain.InventoryItem) error {
	ctx, span := tracer.Start(ctx, "repository.Create",
		trace.WithAttributes(
			attribute.Int("inventory.group_id", int(item.GroupID)),
			attribute.String("inventory.item_type", string(item.CatalogItemType)),
			attribute.Int("inventory.item_id", int(item.CatalogItemID)),
			attribute.Int("inventory.quantity", item.Quantity),
		),
	)
	defer span.End()

	err := r.next.Create(ctx, item)
	addDBErrorToSpan(span, err)
	if err == nil {
		span.SetAttributes(attribute.Int("inventory.id", int(item.ID)))
	}
	return err
}

func (r *TracingInventoryRepository) GetByID(ctx context.Context, id uint) (*domain.InventoryItem, error) {
	ctx, span := tracer.Start(ctx, "repository.GetByID",
		trace.WithAttributes(attribute.Int("inventory.id", int(id))),
	)
	defer span.End()

	item, err := r.next.GetByID(ctx, id)
	addDBErrorToSpan(span, err)
	if err == nil {
		span.SetAttributes(attribute.Int("inventory.quantity", item.Quantity))
	}
	return item, err
}

func (r *TracingInventoryRepository) List(ctx context.Context, groupID *uint) ([]domain.InventoryItem, error) {
	ctx, span := tracer.Start(ctx, "repository.List")
	defer span.End()
	if groupID != nil {
		span.SetAttributes(attribute.Int("inventory.group_id", int(*groupID)))
	}

	items, err := r.next.List(ctx, groupID)
	addDBErrorToSpan(span, err)
	span.SetAttributes(attribute.Int("result.count", len(items)))
	return items, err
}

func (r *TracingInventoryRepository) Update(ctx context.Context, item *domain.InventoryItem) (bool, error) {
	ctx, span := tracer.Start(ctx, "repository.Update",
		trace.WithAttributes(
			attribute.Int("inventory.id", int(item.ID)),
			attribute.Int("inventory.quantity", item.Quantity),
		),
	)
	defer span.End()

	found, err := r.next.Update(ctx, item)
	addDBErrorToSpan(span, err)
	return found, err
}

func (r *TracingInventoryRepository) Delete(ctx context.Context, id uint) (bool, error) {
	ctx, span := tracer.Start(ctx, "repository.Delete",
		trace.WithAttributes(attribute.Int("inventory.id", int(id))),
	)
	defer span.End()

	found, err := r.next.Delete(ctx, id)
	addDBErrorToSpan(span, err)
	return found, err
}

func (r *TracingInventoryRepository) ConsumeParts(ctx context.Context, workOrderCode string, groupID uint, partIDs []uint, at time.Time) ([]domain.InventoryItem, bool, error) {
	ctx, span := tracer.Start(ctx, "repository.ConsumeParts",
		trace.WithAttributes(
			attribute.String("workorder.code", workOrderCode),
			attribute.Int("inventory.group_id", int(groupID)),
			attribute.Int("inventory.parts", len(partIDs)),
		),
	)
	defer span.End()

	low, applied, err := r.next.ConsumeParts(ctx, workOrderCode, groupID, partIDs, at)
	addDBErrorToSpan(span, err)
	span.SetAttributes(
		attribute.Bool("inventory.applied", applied),
		attribute.Int("inventory.low_stock", len(low)),
	)
	return low, applied, err
}
