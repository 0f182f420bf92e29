package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/repair-manager/internal/pricing/domain"
)

var tracer = otel.Tracer("pricing-repository")

type TracingRepository struct {
	next domain.Repository
}

func NewTracingRepository(next domain.Repository) *TracingRepository {
	return &TracingRepository{next: next}
}

var _ domain.Repository = (*TracingRepository)(nil)

func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (r *TracingRepository) Create(ctx context.Context, p *domain.CatalogPricing) (err error) {
	ctx, span := tracer.Start(ctx, "repository.Create",
		trace.WithAttributes(attribute.String("pricing.item_type", string(p.ItemType))),
	)
	defer func() { end(span, err) }()
	return r.next.Create(ctx, p)
}

func (r *TracingRepository) GetByID(ctx context.Context, id uint) (_ *domain.CatalogPricing, err error) {
	ctx, span := tracer.Start(ctx, "repository.GetByID",
		trace.WithAttributes(attribute.Int("pricing.id", int(id))),
	)
	defer func() { end(span, err) }()
	return r.next.GetByID(ctx, id)
}

func (r *TracingRepository) List(ctx context.Context, itemType domain.ItemType) (_ []domain.CatalogPricing, err error) {
	ctx, span := tracer.Start(ctx, "repository.List",
		trace.WithAttributes(attribute.String("pricing.item_type", string(itemType))),
	)
	defer func() { end(span, err) }()
	return r.next.List(ctx, itemType)
}

func (r *TracingRepository) Update(ctx context.Context, p *domain.CatalogPricing) (_ bool, err error) {
	ctx, span := tracer.Start(ctx, "repository.Update",
		trace.WithAttributes(attribute.Int("pricing.id", int(p.ID))),
	)
	defer func() { end(span, err) }()
	return r.next.Update(ctx, p)
}

func (r *TracingRepository) Delete(ctx context.Context, id uint) (_ bool, err error) {
	ctx, span := tracer.Start(ctx, "repository.Delete",
		trace.WithAttributes(attribute.Int("pricing.id", int(id))),
	)
	defer func() { end(span, err) }()
	return r.next.Delete(ctx, id)
}

func (r *TracingRepository) ForItem(ctx context.Context, itemType domain.ItemType, itemID uint) (out []domain.CatalogPricing, err error) {
	ctx, span := tracer.Start(ctx, "repository.ForItem",
		trace.WithAttributes(
			attribute.String("pricing.item_type", string(itemType)),
			attribute.Int("pricing.item_id", int(itemID)),
		),
	)
	defer func() {
		span.SetAttributes(attribute.Int("pricing.candidates", len(out)))
		end(span, err)
	}()
	return r.next.ForItem(ctx, itemType, itemID)
}
