package command

import (
	"context"
	"time"

	catalog "github.com/tair/repair-manager/internal/catalog/domain"
	"github.com/tair/repair-manager/internal/inventory/domain"
	"github.com/tair/repair-manager/pkg/apperror"
	"github.com/tair/repair-manager/pkg/database"
	"github.com/tair/repair-manager/pkg/validation"
)

// Fields are the writable columns of an inventory item.
type Fields struct {
	GroupID         uint   `json:"group_id" validate:"required"`
	CatalogItemType string `json:"catalog_item_type"`
	CatalogItemID   uint   `json:"catalog_item_id" validate:"required"`
	Quantity        int    `json:"quantity" validate:"gte=0"`
	MinimumQuantity int    `json:"minimum_quantity" validate:"gte=0"`
}

// build validates f against the catalog and returns the item to store.
func (f Fields) build(ctx context.Context, refs catalog.Checker, id uint) (*domain.InventoryItem, error) {
	itemType, err := domain.ParseItemType(f.CatalogItemType)
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(f); err != nil {
		return nil, err
	}

	exists := refs.PartExists
	if itemType == domain.ItemDevice {
		exists = refs.DeviceExists
	}
	ok, err := exists(ctx, f.CatalogItemID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.NewValidation(apperror.KindItemNotFound, "catalog_item_id", "the specified "+string(itemType)+" does not exist")
	}

	ok, err = refs.GroupExists(ctx, f.GroupID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.NewValidation(apperror.KindMissingReference, "group_id", "the specified group does not exist")
	}

	return &domain.InventoryItem{
		ID:              id,
		GroupID:         f.GroupID,
		CatalogItemType: itemType,
		CatalogItemID:   f.CatalogItemID,
		Quantity:        f.Quantity,
		MinimumQuantity: f.MinimumQuantity,
		LastUpdated:     time.Now().UTC(),
	}, nil
}

func duplicateItem(err error) error {
	if database.IsUniqueViolation(err) {
		return apperror.NewValidation(apperror.KindDuplicate, "catalog_item_id", "the group already stocks this item")
	}
	return err
}
