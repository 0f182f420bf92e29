package domain

import (
	"context"
	"strings"
	"time"

	catalog "github.com/tair/repair-manager/internal/catalog/domain"
	"github.com/tair/repair-manager/pkg/apperror"
)

// CatalogItemType says whether a stock line holds parts or devices.
type CatalogItemType string

const (
	ItemPart   CatalogItemType = "Part"
	ItemDevice CatalogItemType = "Device"
)

// ParseItemType accepts Part or Device in any casing.
func ParseItemType(raw string) (CatalogItemType, error) {
	raw = strings.TrimSpace(raw)
	for _, t := range []CatalogItemType{ItemPart, ItemDevice} {
		if strings.EqualFold(raw, string(t)) {
			return t, nil
		}
	}
	return "", apperror.NewValidation(apperror.KindInvalidItemType, "catalog_item_type", "must be Part or Device")
}

// InventoryItem is the stock of one catalog item at one group. The
// (group, type, item) triple is unique.
type InventoryItem struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	GroupID         uint            `json:"group_id" gorm:"not null;uniqueIndex:idx_inventory_identity"`
	Group           *catalog.Group  `json:"-" gorm:"constraint:OnDelete:RESTRICT"`
	CatalogItemType CatalogItemType `json:"catalog_item_type" gorm:"size:10;not null;uniqueIndex:idx_inventory_identity"`
	CatalogItemID   uint            `json:"catalog_item_id" gorm:"not null;uniqueIndex:idx_inventory_identity"`
	Quantity        int             `json:"quantity" gorm:"not null;default:0"`
	MinimumQuantity int             `json:"minimum_quantity" gorm:"not null;default:0"`
	LastUpdated     time.Time       `json:"last_updated"`

	CatalogItemName string `json:"catalog_item_name,omitempty" gorm:"-"`
	GroupCode       string `json:"group_code,omitempty" gorm:"-"`
	LowStock        bool   `json:"low_stock" gorm:"-"`
}

func (InventoryItem) TableName() string { return "inventory_items" }

// IsLowStock reports whether quantity has dropped under the minimum.
func (i *InventoryItem) IsLowStock() bool {
	return i.Quantity < i.MinimumQuantity
}

// PartConsumption marks a work order whose parts have been drawn from stock.
type PartConsumption struct {
	WorkOrderCode string    `gorm:"primaryKey;size:20"`
	GroupID       uint      `gorm:"not null"`
	ConsumedAt    time.Time `gorm:"not null"`
}

func (PartConsumption) TableName() string { return "part_consumptions" }

func Models() []interface{} {
	return []interface{}{&InventoryItem{}, &PartConsumption{}}
}

type Repository interface {
	Create(ctx context.Context, item *InventoryItem) error
	GetByID(ctx context.Context, id uint) (*InventoryItem, error)
	// List returns every stock line, or only those of groupID when it is set.
	List(ctx context.Context, groupID *uint) ([]InventoryItem, error)
	Update(ctx context.Context, item *InventoryItem) (bool, error)
	Delete(ctx context.Context, id uint) (bool, error)
	// ConsumeParts takes one unit per listed part id from the group's stock,
	// never below zero, and returns the touched lines now under minimum. A
	// work order is consumed at most once; later calls report applied false.
	ConsumeParts(ctx context.Context, workOrderCode string, groupID uint, partIDs []uint, at time.Time) (low []InventoryItem, applied bool, err error)
}
