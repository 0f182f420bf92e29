package command

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tair/repair-manager/internal/workorder/domain"
	workflow "github.com/tair/repair-manager/internal/workflow/domain"
	"github.com/tair/repair-manager/kafka"
	"github.com/tair/repair-manager/pkg/apperror"
	"github.com/tair/repair-manager/pkg/logger"
	"github.com/tair/repair-manager/pkg/metrics"
)

// Options tune the lifecycle rules.
type Options struct {
	// EnforceWorkflowStatus rejects statuses that are not part of the
	// program's workflow.
	EnforceWorkflowStatus bool
}

// Fields is the editable part of a work order shared by create and update.
type Fields struct {
	DeviceID         uint   `json:"device_id" validate:"required"`
	ServiceID        uint   `json:"service_id" validate:"required"`
	RepairProgramID  uint   `json:"repair_program_id" validate:"required"`
	GroupID          *uint  `json:"group_id"`
	CustomerName     string `json:"customer_name" validate:"max=100"`
	CustomerPhone    string `json:"customer_phone" validate:"max=30"`
	CustomerEmail    string `json:"customer_email" validate:"omitempty,email,max=100"`
	IssueDescription string `json:"issue_description" validate:"max=2000"`
	CurrentStatus    string `json:"current_status" validate:"max=50"`
	PartIDs          []uint `json:"part_ids"`
}

func (f Fields) apply(wo *domain.WorkOrder) {
	wo.DeviceID = f.DeviceID
	wo.ServiceID = f.ServiceID
	wo.RepairProgramID = f.RepairProgramID
	wo.GroupID = f.GroupID
	wo.CustomerName = strings.TrimSpace(f.CustomerName)
	wo.CustomerPhone = strings.TrimSpace(f.CustomerPhone)
	wo.CustomerEmail = strings.TrimSpace(f.CustomerEmail)
	wo.IssueDescription = f.IssueDescription
	wo.PartIDs = f.PartIDs
}

type refCheck struct {
	field  string
	id     uint
	exists func(context.Context, uint) (bool, error)
}

// checkReferences validates every row the fields point at and returns the
// workflow of the referenced program.
func checkReferences(ctx context.Context, refs domain.References, f Fields) (*workflow.RepairWorkflow, error) {
	checks := []refCheck{
		{"device_id", f.DeviceID, refs.DeviceExists},
		{"service_id", f.ServiceID, refs.ServiceExists},
	}
	if f.GroupID != nil {
		checks = append(checks, refCheck{"group_id", *f.GroupID, refs.GroupExists})
	}
	for _, c := range checks {
		ok, err := c.exists(ctx, c.id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperror.NewValidation(apperror.KindMissingReference, c.field, "referenced record does not exist")
		}
	}

	wf, err := refs.ProgramWorkflow(ctx, f.RepairProgramID)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.NewValidation(apperror.KindMissingReference, "repair_program_id", "referenced record does not exist")
	}
	if err != nil {
		return nil, err
	}
	return wf, nil
}

// checkStatus applies the workflow membership rule when it is enabled.
func checkStatus(wf *workflow.RepairWorkflow, status string, opts Options) error {
	if !opts.EnforceWorkflowStatus || wf == nil {
		return nil
	}
	if !wf.HasStatus(status) {
		return apperror.NewValidation(apperror.KindInvalidStatus, "current_status",
			"status "+status+" is not part of workflow "+wf.Name)
	}
	return nil
}

// conflictOrGone turns a write that matched no row into NotFound or
// ConcurrencyConflict depending on whether the row still exists.
func conflictOrGone(ctx context.Context, repo domain.Repository, id uint) error {
	exists, err := repo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return apperror.NewNotFound("work order", id)
	}
	return apperror.NewConcurrencyConflict("work order", id)
}

type eventSink struct {
	publisher kafka.EventPublisher
	metrics   *metrics.Metrics
}

// publish sends an event for a write that is already committed. Failures are
// logged only; the write stands.
func (s eventSink) publish(ctx context.Context, eventType string, wo *domain.WorkOrder, previousStatus, notes string) {
	if eventType == kafka.EventTypeWorkOrderStatusChanged {
		s.metrics.StatusChanged(wo.CurrentStatus)
	}
	if s.publisher == nil {
		return
	}
	event := kafka.WorkOrderEvent{
		EventID:         uuid.NewString(),
		EventType:       eventType,
		WorkOrderID:     wo.ID,
		Code:            wo.Code,
		GroupID:         wo.GroupID,
		RepairProgramID: wo.RepairProgramID,
		PartIDs:         wo.PartIDs,
		PreviousStatus:  previousStatus,
		Status:          wo.CurrentStatus,
		Notes:           notes,
		Timestamp:       time.Now().UTC(),
	}
	if err := s.publisher.PublishWorkOrderEvent(ctx, event); err != nil {
		logger.Error(ctx).Err(err).
			Str("event_type", eventType).
			Str("code", wo.Code).
			Msg("failed to publish work order event")
	}
}

func (s eventSink) refreshGauge(ctx context.Context, repo domain.Repository) {
	if s.metrics == nil {
		return
	}
	n, err := repo.Count(ctx)
	if err != nil {
		logger.Warn(ctx).Err(err).Msg("failed to count work orders")
		return
	}
	s.metrics.SetWorkOrders(n)
}
