// Package worker applies the side effects of finished work orders: parts are
// drawn from the group's stock and low stock is reported by email.
package worker

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/tair/repair-manager/internal/inventory/domain"
	"github.com/tair/repair-manager/internal/inventory/usecase/command"
	workflow "github.com/tair/repair-manager/internal/workflow/domain"
	"github.com/tair/repair-manager/kafka"
	"github.com/tair/repair-manager/pkg/logger"
	"github.com/tair/repair-manager/pkg/mailer"
)

// WorkflowLookup resolves the workflow a repair program follows.
type WorkflowLookup interface {
	ProgramWorkflow(ctx context.Context, programID uint) (*workflow.RepairWorkflow, error)
}

type CompletionHandler struct {
	workflows WorkflowLookup
	consume   *command.ConsumePartsHandler
	mail      mailer.Sender
	alertTo   []string
}

func NewCompletionHandler(workflows WorkflowLookup, consume *command.ConsumePartsHandler, mail mailer.Sender, alertTo []string) *CompletionHandler {
	return &CompletionHandler{workflows: workflows, consume: consume, mail: mail, alertTo: alertTo}
}

// Register subscribes the handler to status changes.
func (h *CompletionHandler) Register(c *kafka.Consumer) {
	c.RegisterHandler(kafka.EventTypeWorkOrderStatusChanged, h.Handle)
}

func (h *CompletionHandler) Handle(ctx context.Context, event kafka.WorkOrderEvent) error {
	if event.GroupID == nil || len(event.PartIDs) == 0 {
		return nil
	}
	wf, err := h.workflows.ProgramWorkflow(ctx, event.RepairProgramID)
	if err != nil {
		return fmt.Errorf("failed to load workflow for %s: %w", event.Code, err)
	}
	final := wf.FinalStatus()
	if final == "" || !strings.EqualFold(final, event.Status) {
		return nil
	}

	low, err := h.consume.Handle(ctx, command.ConsumePartsCommand{
		WorkOrderCode: event.Code,
		GroupID:       *event.GroupID,
		PartIDs:       event.PartIDs,
	})
	if err != nil {
		return err
	}
	if len(low) == 0 {
		return nil
	}

	body, err := renderLowStock(event.Code, low)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Low stock after work order %s", event.Code)
	if err := h.mail.Send(ctx, h.alertTo, subject, body); err != nil {
		// Stock is already committed.
		logger.Error(ctx).Err(err).Str("code", event.Code).Msg("low stock alert failed")
	}
	return nil
}

var lowStockTemplate = template.Must(template.New("low-stock").Parse(`<p>Work order <b>{{.Code}}</b> was completed and these items are below their minimum:</p>
<table>
<tr><th>Group</th><th>Item</th><th>Quantity</th><th>Minimum</th></tr>
{{range .Items}}<tr><td>{{.GroupCode}}</td><td>{{.CatalogItemName}}</td><td>{{.Quantity}}</td><td>{{.MinimumQuantity}}</td></tr>
{{end}}</table>`))

func renderLowStock(code string, items []domain.InventoryItem) (string, error) {
	var buf bytes.Buffer
	err := lowStockTemplate.Execute(&buf, struct {
		Code  string
		Items []domain.InventoryItem
	}{code, items})
	if err != nil {
		return "", fmt.Errorf("failed to render low stock email: %w", err)
	}
	return buf.String(), nil
}
