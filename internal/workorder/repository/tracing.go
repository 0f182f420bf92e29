package repository

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/repair-manager/internal/workorder/domain"
)

var tracer = otel.Tracer("workorder-repository")

// TracingRepository wraps a domain.Repository with a span per call.
type TracingRepository struct {
	next domain.Repository
}

func NewTracingRepository(next domain.Repository) *TracingRepository {
	return &TracingRepository{next: next}
}

var _ domain.Repository = (*TracingRepository)(nil)

func recordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

func (r *TracingRepository) Create(ctx context.Context, wo *domain.WorkOrder) error {
	ctx, span := tracer.Start(ctx, "repository.Create",
		trace.WithAttributes(
			attribute.Int("work_order.device_id", int(wo.DeviceID)),
			attribute.Int("work_order.repair_program_id", int(wo.RepairProgramID)),
		),
	)
	defer span.End()

	err := r.next.Create(ctx, wo)
	recordError(span, err)
	if err == nil {
		span.SetAttributes(
			attribute.Int("work_order.id", int(wo.ID)),
			attribute.String("work_order.code", wo.Code),
		)
	}
	return err
}

func (r *TracingRepository) GetByID(ctx context.Context, id uint) (*domain.WorkOrder, error) {
	ctx, span := tracer.Start(ctx, "repository.GetByID",
		trace.WithAttributes(attribute.Int("work_order.id", int(id))),
	)
	defer span.End()

	wo, err := r.next.GetByID(ctx, id)
	recordError(span, err)
	return wo, err
}

func (r *TracingRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.WorkOrder, int64, error) {
	ctx, span := tracer.Start(ctx, "repository.List",
		trace.WithAttributes(
			attribute.String("filter.status", filter.Status),
			attribute.Int("filter.limit", filter.Limit),
			attribute.Int("filter.offset", filter.Offset),
		),
	)
	defer span.End()

	out, total, err := r.next.List(ctx, filter)
	recordError(span, err)
	span.SetAttributes(attribute.Int64("result.total", total))
	return out, total, err
}

func (r *TracingRepository) Update(ctx context.Context, wo *domain.WorkOrder, expectedVersion int) (bool, error) {
	ctx, span := tracer.Start(ctx, "repository.Update",
		trace.WithAttributes(
			attribute.Int("work_order.id", int(wo.ID)),
			attribute.Int("work_order.expected_version", expectedVersion),
		),
	)
	defer span.End()

	ok, err := r.next.Update(ctx, wo, expectedVersion)
	recordError(span, err)
	span.SetAttributes(attribute.Bool("result.matched", ok))
	return ok, err
}

func (r *TracingRepository) UpdateStatus(ctx context.Context, id uint, status string, at time.Time, expectedVersion int) (bool, error) {
	ctx, span := tracer.Start(ctx, "repository.UpdateStatus",
		trace.WithAttributes(
			attribute.Int("work_order.id", int(id)),
			attribute.String("work_order.status", status),
			attribute.Int("work_order.expected_version", expectedVersion),
		),
	)
	defer span.End()

	ok, err := r.next.UpdateStatus(ctx, id, status, at, expectedVersion)
	recordError(span, err)
	span.SetAttributes(attribute.Bool("result.matched", ok))
	return ok, err
}

func (r *TracingRepository) Delete(ctx context.Context, id uint) (bool, error) {
	ctx, span := tracer.Start(ctx, "repository.Delete",
		trace.WithAttributes(attribute.Int("work_order.id", int(id))),
	)
	defer span.End()

	ok, err := r.next.Delete(ctx, id)
	recordError(span, err)
	return ok, err
}

func (r *TracingRepository) Exists(ctx context.Context, id uint) (bool, error) {
	return r.next.Exists(ctx, id)
}

func (r *TracingRepository) Count(ctx context.Context) (int64, error) {
	return r.next.Count(ctx)
}
