package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	catalog "github.com/tair/repair-manager/internal/catalog/domain"
	"github.com/tair/repair-manager/internal/inventory/domain"
	"github.com/tair/repair-manager/pkg/apperror"
	"github.com/tair/repair-manager/pkg/database"
)

type GormInventoryRepository struct {
	db *gorm.DB
}

func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

var _ domain.Repository = (*GormInventoryRepository)(nil)

func (r *GormInventoryRepository) Create(ctx context.Context, item *domain.InventoryItem) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error; err != nil {
		return fmt.Errorf("failed to create inventory item: %w", err)
	}
	return r.decorate(ctx, []*domain.InventoryItem{item})
}

func (r *GormInventoryRepository) GetByID(ctx context.Context, id uint) (*domain.InventoryItem, error) {
	var item domain.InventoryItem
	err := r.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NewNotFound("inventory item", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory item: %w", err)
	}
	if err := r.decorate(ctx, []*domain.InventoryItem{&item}); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormInventoryRepository) List(ctx context.Context, groupID *uint) ([]domain.InventoryItem, error) {
	q := r.db.WithContext(ctx).Order("group_id, catalog_item_type, catalog_item_id")
	if groupID != nil {
		q = q.Where("group_id = ?", *groupID)
	}
	var items []domain.InventoryItem
	if err := q.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	if err := r.decorate(ctx, pointers(items)); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormInventoryRepository) Update(ctx context.Context, item *domain.InventoryItem) (bool, error) {
	found, err := database.UpdateByID(ctx, r.db, item.ID, item)
	if err != nil || !found {
		return found, err
	}
	return true, r.decorate(ctx, []*domain.InventoryItem{item})
}

func (r *GormInventoryRepository) Delete(ctx context.Context, id uint) (bool, error) {
	return database.DeleteByID[domain.InventoryItem](ctx, r.db, id)
}

func (r *GormInventoryRepository) ConsumeParts(ctx context.Context, workOrderCode string, groupID uint, partIDs []uint, at time.Time) ([]domain.InventoryItem, bool, error) {
	if len(partIDs) == 0 {
		return nil, false, nil
	}

	var (
		low     []domain.InventoryItem
		applied bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		mark := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&domain.PartConsumption{WorkOrderCode: workOrderCode, GroupID: groupID, ConsumedAt: at})
		if mark.Error != nil {
			return fmt.Errorf("failed to record consumption for %s: %w", workOrderCode, mark.Error)
		}
		if mark.RowsAffected == 0 {
			return nil
		}
		applied = true

		for _, partID := range partIDs {
			err := tx.Model(&domain.InventoryItem{}).
				Where("group_id = ? AND catalog_item_type = ? AND catalog_item_id = ? AND quantity > 0", groupID, domain.ItemPart, partID).
				Updates(map[string]interface{}{
					"quantity":     gorm.Expr("quantity - 1"),
					"last_updated": at,
				}).Error
			if err != nil {
				return fmt.Errorf("failed to consume part %d: %w", partID, err)
			}
		}
		return tx.Where("group_id = ? AND catalog_item_type = ? AND catalog_item_id IN ? AND quantity < minimum_quantity",
			groupID, domain.ItemPart, partIDs).
			Order("catalog_item_id").
			Find(&low).Error
	})
	if err != nil {
		return nil, false, err
	}
	if err := r.decorate(ctx, pointers(low)); err != nil {
		return nil, false, err
	}
	return low, applied, nil
}

func pointers(items []domain.InventoryItem) []*domain.InventoryItem {
	out := make([]*domain.InventoryItem, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out
}

type namedRow struct {
	ID   uint
	Name string
}

// decorate fills the display fields of items.
func (r *GormInventoryRepository) decorate(ctx context.Context, items []*domain.InventoryItem) error {
	if len(items) == 0 {
		return nil
	}

	ids := map[domain.CatalogItemType][]uint{}
	var groupIDs []uint
	for _, it := range items {
		ids[it.CatalogItemType] = append(ids[it.CatalogItemType], it.CatalogItemID)
		groupIDs = append(groupIDs, it.GroupID)
	}

	names := map[domain.CatalogItemType]map[uint]string{}
	tables := map[domain.CatalogItemType]interface{}{
		domain.ItemPart:   &catalog.Part{},
		domain.ItemDevice: &catalog.Device{},
	}
	for t, model := range tables {
		if len(ids[t]) == 0 {
			continue
		}
		var rows []namedRow
		if err := r.db.WithContext(ctx).Model(model).Select("id, name").Where("id IN ?", ids[t]).Scan(&rows).Error; err != nil {
			return fmt.Errorf("failed to load %s names: %w", t, err)
		}
		names[t] = make(map[uint]string, len(rows))
		for _, row := range rows {
			names[t][row.ID] = row.Name
		}
	}

	var groups []catalog.Group
	if err := r.db.WithContext(ctx).Select("id, code").Where("id IN ?", groupIDs).Find(&groups).Error; err != nil {
		return fmt.Errorf("failed to load group codes: %w", err)
	}
	codes := make(map[uint]string, len(groups))
	for _, g := range groups {
		codes[g.ID] = g.Code
	}

	for _, it := range items {
		it.CatalogItemName = names[it.CatalogItemType][it.CatalogItemID]
		it.GroupCode = codes[it.GroupID]
		it.LowStock = it.IsLowStock()
	}
	return nil
}
