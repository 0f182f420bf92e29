package query

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/tair/repair-manager/internal/workorder/domain"
)

const (
	exportSheet    = "Work Orders"
	exportPageSize = 500
)

var exportHeaders = []string{
	"Code", "Status", "Device", "Service", "Program", "Group",
	"Customer", "Phone", "Email", "Issue", "Created", "Updated",
}

// ExportWorkOrdersHandler renders the filtered work orders as an xlsx workbook.
type ExportWorkOrdersHandler struct {
	repo domain.Repository
}

func NewExportWorkOrdersHandler(repo domain.Repository) *ExportWorkOrdersHandler {
	return &ExportWorkOrdersHandler{repo: repo}
}

func (h *ExportWorkOrdersHandler) Handle(ctx context.Context, q ListWorkOrdersQuery) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	for i, title := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, cell, title)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(exportHeaders))
	f.SetCellStyle(exportSheet, "A1", lastCol+"1", headerStyle)
	f.SetColWidth(exportSheet, "A", lastCol, 18)

	row := 2
	filter := domain.ListFilter{Status: q.Status, GroupID: q.GroupID, Limit: exportPageSize}
	for {
		items, total, err := h.repo.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		for _, wo := range items {
			updated := ""
			if wo.UpdatedAt != nil {
				updated = wo.UpdatedAt.Format("2006-01-02 15:04")
			}
			values := []interface{}{
				wo.Code, wo.CurrentStatus, wo.DeviceName, wo.ServiceName, wo.RepairProgramName, wo.GroupName,
				wo.CustomerName, wo.CustomerPhone, wo.CustomerEmail, wo.IssueDescription,
				wo.CreatedAt.Format("2006-01-02 15:04"), updated,
			}
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
				return nil, fmt.Errorf("failed to write row: %w", err)
			}
			row++
		}
		filter.Offset += len(items)
		if len(items) == 0 || int64(filter.Offset) >= total {
			break
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
