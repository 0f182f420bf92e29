package domain

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	catalog "github.com/tair/repair-manager/internal/catalog/domain"
	"github.com/tair/repair-manager/pkg/apperror"
)

// ItemType discriminates which catalog entity a price belongs to.
type ItemType string

const (
	ItemDevice  ItemType = "Device"
	ItemPart    ItemType = "Part"
	ItemService ItemType = "Service"
)

var itemTypes = []ItemType{ItemDevice, ItemPart, ItemService}

// ParseItemType accepts any casing of Device, Part or Service.
func ParseItemType(raw string) (ItemType, error) {
	raw = strings.TrimSpace(raw)
	for _, t := range itemTypes {
		if strings.EqualFold(raw, string(t)) {
			return t, nil
		}
	}
	return "", apperror.NewValidation(apperror.KindInvalidItemType, "item_type", "must be Device, Part or Service")
}

// CatalogPricing is one dated price for a device, part or service. Only the
// foreign key matching ItemType is set.
type CatalogPricing struct {
	ID                 uint             `json:"id" gorm:"primaryKey"`
	ItemType           ItemType         `json:"item_type" gorm:"size:10;not null;index"`
	DeviceID           *uint            `json:"device_id" gorm:"index"`
	Device             *catalog.Device  `json:"-" gorm:"constraint:OnDelete:RESTRICT"`
	PartID             *uint            `json:"part_id" gorm:"index"`
	Part               *catalog.Part    `json:"-" gorm:"constraint:OnDelete:RESTRICT"`
	ServiceID          *uint            `json:"service_id" gorm:"index"`
	Service            *catalog.Service `json:"-" gorm:"constraint:OnDelete:RESTRICT"`
	BasePrice          decimal.Decimal  `json:"base_price" gorm:"type:decimal(18,2);not null"`
	DiscountAmount     *decimal.Decimal `json:"discount_amount" gorm:"type:decimal(18,2)"`
	DiscountPercentage *int             `json:"discount_percentage"`
	EffectiveDate      time.Time        `json:"effective_date" gorm:"not null"`
	ExpirationDate     *time.Time       `json:"expiration_date"`

	EffectivePrice decimal.Decimal `json:"effective_price" gorm:"-"`
}

func (CatalogPricing) TableName() string { return "catalog_pricing" }

func (p *CatalogPricing) AfterFind(tx *gorm.DB) error {
	p.Refresh()
	return nil
}

// Refresh recomputes the derived effective price.
func (p *CatalogPricing) Refresh() {
	p.EffectivePrice = EffectivePrice(p.BasePrice, p.DiscountAmount, p.DiscountPercentage)
}

// ItemID returns the foreign key selected by ItemType, or 0.
func (p *CatalogPricing) ItemID() uint {
	var id *uint
	switch p.ItemType {
	case ItemDevice:
		id = p.DeviceID
	case ItemPart:
		id = p.PartID
	case ItemService:
		id = p.ServiceID
	}
	if id == nil {
		return 0
	}
	return *id
}

// SetItem points the record at itemID and clears the other foreign keys.
func (p *CatalogPricing) SetItem(t ItemType, itemID uint) {
	p.ItemType = t
	p.DeviceID, p.PartID, p.ServiceID = nil, nil, nil
	id := itemID
	switch t {
	case ItemDevice:
		p.DeviceID = &id
	case ItemPart:
		p.PartID = &id
	case ItemService:
		p.ServiceID = &id
	}
}

// ActiveAt reports whether t falls inside [EffectiveDate, ExpirationDate].
func (p *CatalogPricing) ActiveAt(t time.Time) bool {
	if p.EffectiveDate.After(t) {
		return false
	}
	return p.ExpirationDate == nil || !p.ExpirationDate.Before(t)
}

var hundred = decimal.NewFromInt(100)

// EffectivePrice applies the amount discount if present, the percentage
// otherwise, and never goes below zero.
func EffectivePrice(base decimal.Decimal, amount *decimal.Decimal, percentage *int) decimal.Decimal {
	price := base
	switch {
	case amount != nil:
		price = price.Sub(*amount)
	case percentage != nil:
		price = price.Sub(price.Mul(decimal.NewFromInt(int64(*percentage))).Div(hundred))
	}
	if price.IsNegative() {
		return decimal.Zero
	}
	return price
}

// SelectEffective picks the candidate active at asOf with the latest
// effective date. Equal dates go to the highest id.
func SelectEffective(candidates []CatalogPricing, asOf time.Time) (*CatalogPricing, bool) {
	active := make([]CatalogPricing, 0, len(candidates))
	for _, c := range candidates {
		if c.ActiveAt(asOf) {
			active = append(active, c)
		}
	}
	if len(active) == 0 {
		return nil, false
	}
	sort.Slice(active, func(i, j int) bool {
		if !active[i].EffectiveDate.Equal(active[j].EffectiveDate) {
			return active[i].EffectiveDate.After(active[j].EffectiveDate)
		}
		return active[i].ID > active[j].ID
	})
	best := active[0]
	best.Refresh()
	return &best, true
}

func Models() []interface{} {
	return []interface{}{&CatalogPricing{}}
}

type Repository interface {
	Create(ctx context.Context, p *CatalogPricing) error
	GetByID(ctx context.Context, id uint) (*CatalogPricing, error)
	// List returns every record, or only those of itemType when it is not empty.
	List(ctx context.Context, itemType ItemType) ([]CatalogPricing, error)
	Update(ctx context.Context, p *CatalogPricing) (bool, error)
	Delete(ctx context.Context, id uint) (bool, error)
	// ForItem returns every record for the item regardless of dates.
	ForItem(ctx context.Context, itemType ItemType, itemID uint) ([]CatalogPricing, error)
}
