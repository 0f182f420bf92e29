package domain

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	catalog "github.com/tair/repair-manager/internal/catalog/domain"
	workflow "github.com/tair/repair-manager/internal/workflow/domain"
	"github.com/tair/repair-manager/pkg/database"
)

// CodeSequence is the name of the counter that numbers work orders.
const CodeSequence = "work_order_code"

// WorkOrder is a single repair job.
type WorkOrder struct {
	ID               uint                      `json:"id" gorm:"primaryKey"`
	Code             string                    `json:"code" gorm:"size:20;not null;uniqueIndex"`
	DeviceID         uint                      `json:"device_id" gorm:"not null;index"`
	Device           *catalog.Device           `json:"-" gorm:"constraint:OnDelete:RESTRICT"`
	ServiceID        uint                      `json:"service_id" gorm:"not null;index"`
	Service          *catalog.Service          `json:"-" gorm:"constraint:OnDelete:RESTRICT"`
	RepairProgramID  uint                      `json:"repair_program_id" gorm:"not null;index"`
	RepairProgram    *workflow.RepairProgram   `json:"-" gorm:"constraint:OnDelete:RESTRICT"`
	GroupID          *uint                     `json:"group_id" gorm:"index"`
	Group            *catalog.Group            `json:"-" gorm:"constraint:OnDelete:RESTRICT"`
	CustomerName     string                    `json:"customer_name" gorm:"size:100"`
	CustomerPhone    string                    `json:"customer_phone" gorm:"size:30"`
	CustomerEmail    string                    `json:"customer_email" gorm:"size:100"`
	IssueDescription string                    `json:"issue_description" gorm:"size:2000"`
	CurrentStatus    string                    `json:"current_status" gorm:"size:50;index"`
	PartIDs          datatypes.JSONSlice[uint] `json:"part_ids"`
	Version          int                       `json:"version" gorm:"not null;default:1"`
	CreatedAt        time.Time                 `json:"created_at"`
	UpdatedAt        *time.Time                `json:"updated_at" gorm:"autoUpdateTime:false"`

	DeviceName        string `json:"device_name,omitempty" gorm:"-"`
	ServiceName       string `json:"service_name,omitempty" gorm:"-"`
	RepairProgramName string `json:"repair_program_name,omitempty" gorm:"-"`
	GroupName         string `json:"group_name,omitempty" gorm:"-"`
}

func (WorkOrder) TableName() string { return "work_orders" }

// AfterFind copies the names of preloaded associations into the display fields.
func (w *WorkOrder) AfterFind(*gorm.DB) error {
	if w.Device != nil {
		w.DeviceName = w.Device.Name
	}
	if w.Service != nil {
		w.ServiceName = w.Service.Name
	}
	if w.RepairProgram != nil {
		w.RepairProgramName = w.RepairProgram.Name
	}
	if w.Group != nil {
		w.GroupName = w.Group.Code
	}
	return nil
}

// Models lists the tables owned by this module in migration order.
func Models() []interface{} {
	return []interface{}{&database.Sequence{}, &WorkOrder{}}
}

// CodeFormat renders and parses display codes such as WO00042.
type CodeFormat struct {
	Prefix string
	Digits int
}

// DefaultCodeFormat is WO followed by five zero-padded digits.
var DefaultCodeFormat = CodeFormat{Prefix: "WO", Digits: 5}

func (f CodeFormat) Format(n int64) string {
	return fmt.Sprintf("%s%0*d", f.Prefix, f.Digits, n)
}

// Parse returns the numeric part of code, or false when code does not carry
// the prefix followed by digits only.
func (f CodeFormat) Parse(code string) (int64, bool) {
	if !strings.HasPrefix(code, f.Prefix) {
		return 0, false
	}
	digits := code[len(f.Prefix):]
	if digits == "" {
		return 0, false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ListFilter narrows List results. Zero values mean no filter.
type ListFilter struct {
	Status  string
	GroupID *uint
	Limit   int
	Offset  int
}

// Repository defines the contract for work-order persistence.
type Repository interface {
	// Create inserts wo. An empty code is assigned from the storage-owned
	// sequence inside the insert transaction; a supplied code advances the
	// sequence past it.
	Create(ctx context.Context, wo *WorkOrder) error
	GetByID(ctx context.Context, id uint) (*WorkOrder, error)
	List(ctx context.Context, filter ListFilter) ([]WorkOrder, int64, error)
	// Update writes every mutable column when the stored version equals
	// expectedVersion. The bool is false when no row matched.
	Update(ctx context.Context, wo *WorkOrder, expectedVersion int) (bool, error)
	UpdateStatus(ctx context.Context, id uint, status string, at time.Time, expectedVersion int) (bool, error)
	Delete(ctx context.Context, id uint) (bool, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// References resolves the rows a work order points at.
type References interface {
	DeviceExists(ctx context.Context, id uint) (bool, error)
	ServiceExists(ctx context.Context, id uint) (bool, error)
	GroupExists(ctx context.Context, id uint) (bool, error)
	// ProgramWorkflow returns the workflow of a repair program, or NotFound
	// when the program does not exist.
	ProgramWorkflow(ctx context.Context, programID uint) (*workflow.RepairWorkflow, error)
}
