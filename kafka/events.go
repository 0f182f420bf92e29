package kafka

import "time"

// WorkOrderEvent is published on every work-order write.
type WorkOrderEvent struct {
	EventID         string    `json:"event_id"`
	EventType       string    `json:"event_type"`
	WorkOrderID     uint      `json:"work_order_id"`
	Code            string    `json:"code"`
	GroupID         *uint     `json:"group_id,omitempty"`
	RepairProgramID uint      `json:"repair_program_id"`
	PartIDs         []uint    `json:"part_ids,omitempty"`
	PreviousStatus  string    `json:"previous_status,omitempty"`
	Status          string    `json:"status"`
	Notes           string    `json:"notes,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeWorkOrderCreated       = "work_order.created"
	EventTypeWorkOrderStatusChanged = "work_order.status_changed"
	EventTypeWorkOrderDeleted       = "work_order.deleted"
)

// DefaultTopic carries every work-order event.
const DefaultTopic = "work-order-events"
