package domain

import (
	"context"
	"strings"

	"gorm.io/datatypes"
)

// RepairWorkflow is an ordered list of status labels a work order moves through.
type RepairWorkflow struct {
	ID       uint                        `json:"id" gorm:"primaryKey"`
	Name     string                      `json:"name" gorm:"size:100;not null"`
	Statuses datatypes.JSONSlice[string] `json:"statuses" gorm:"not null"`
}

func (RepairWorkflow) TableName() string { return "repair_workflows" }

// InitialStatus is the status new work orders start in.
func (w *RepairWorkflow) InitialStatus() string {
	if len(w.Statuses) == 0 {
		return ""
	}
	return w.Statuses[0]
}

// FinalStatus marks a work order as completed.
func (w *RepairWorkflow) FinalStatus() string {
	if len(w.Statuses) == 0 {
		return ""
	}
	return w.Statuses[len(w.Statuses)-1]
}

// HasStatus reports whether status is one of the workflow labels, ignoring case.
func (w *RepairWorkflow) HasStatus(status string) bool {
	for _, s := range w.Statuses {
		if strings.EqualFold(s, status) {
			return true
		}
	}
	return false
}

// RepairProgram is a named repair offering bound to one workflow.
type RepairProgram struct {
	ID               uint            `json:"id" gorm:"primaryKey"`
	Name             string          `json:"name" gorm:"size:100;not null"`
	Description      string          `json:"description" gorm:"size:500"`
	RepairWorkflowID uint            `json:"repair_workflow_id" gorm:"not null;index"`
	RepairWorkflow   *RepairWorkflow `json:"repair_workflow,omitempty" gorm:"constraint:OnDelete:RESTRICT"`
}

func (RepairProgram) TableName() string { return "repair_programs" }

// StatusCode is a reusable status label shown in pick lists.
type StatusCode struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Code        string `json:"code" gorm:"size:50;not null;uniqueIndex"`
	Description string `json:"description" gorm:"size:200"`
	IsActive    bool   `json:"is_active"`
	SortOrder   int    `json:"sort_order"`
}

func (StatusCode) TableName() string { return "status_codes" }

// Models lists the tables owned by this module in migration order.
func Models() []interface{} {
	return []interface{}{&RepairWorkflow{}, &RepairProgram{}, &StatusCode{}}
}

type Repository interface {
	CreateWorkflow(ctx context.Context, w *RepairWorkflow) error
	GetWorkflow(ctx context.Context, id uint) (*RepairWorkflow, error)
	ListWorkflows(ctx context.Context) ([]RepairWorkflow, error)
	UpdateWorkflow(ctx context.Context, w *RepairWorkflow) (bool, error)
	DeleteWorkflow(ctx context.Context, id uint) (bool, error)
	WorkflowExists(ctx context.Context, id uint) (bool, error)
	CountProgramsUsingWorkflow(ctx context.Context, workflowID uint) (int64, error)

	CreateProgram(ctx context.Context, p *RepairProgram) error
	// GetProgram loads the program together with its workflow.
	GetProgram(ctx context.Context, id uint) (*RepairProgram, error)
	ListPrograms(ctx context.Context) ([]RepairProgram, error)
	UpdateProgram(ctx context.Context, p *RepairProgram) (bool, error)
	DeleteProgram(ctx context.Context, id uint) (bool, error)

	CreateStatusCode(ctx context.Context, s *StatusCode) error
	GetStatusCode(ctx context.Context, id uint) (*StatusCode, error)
	ListStatusCodes(ctx context.Context, activeOnly bool) ([]StatusCode, error)
	UpdateStatusCode(ctx context.Context, s *StatusCode) (bool, error)
	DeleteStatusCode(ctx context.Context, id uint) (bool, error)
}
