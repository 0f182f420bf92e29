package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	catalog "github.com/tair/repair-manager/internal/catalog/domain"
	"github.com/tair/repair-manager/internal/inventory/domain"
	"github.com/tair/repair-manager/internal/testutil"
	"github.com/tair/repair-manager/pkg/database"
)

func setupDB(t *testing.T) (*gorm.DB, catalog.Group, []catalog.Part) {
	t.Helper()
	db := testutil.SetupTestDB(t, append(catalog.Models(), domain.Models()...)...)

	group := catalog.Group{Code: "BOS"}
	require.NoError(t, db.Create(&group).Error)
	parts := []catalog.Part{{Name: "Battery"}, {Name: "Screen"}, {Name: "Camera"}}
	require.NoError(t, db.Create(&parts).Error)
	return db, group, parts
}

func TestConsumePartsReportsLowStock(t *testing.T) {
	db, group, parts := setupDB(t)
	repo := NewTracingInventoryRepository(NewGormInventoryRepository(db))
	ctx := context.Background()

	battery := &domain.InventoryItem{GroupID: group.ID, CatalogItemType: domain.ItemPart, CatalogItemID: parts[0].ID, Quantity: 2, MinimumQuantity: 2}
	screen := &domain.InventoryItem{GroupID: group.ID, CatalogItemType: domain.ItemPart, CatalogItemID: parts[1].ID, Quantity: 10, MinimumQuantity: 1}
	empty := &domain.InventoryItem{GroupID: group.ID, CatalogItemType: domain.ItemPart, CatalogItemID: parts[2].ID, Quantity: 0, MinimumQuantity: 1}
	for _, it := range []*domain.InventoryItem{battery, screen, empty} {
		require.NoError(t, repo.Create(ctx, it))
	}

	at := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	low, applied, err := repo.ConsumeParts(ctx, "WO00003", group.ID, []uint{parts[0].ID, parts[0].ID, parts[1].ID, parts[2].ID}, at)
	require.NoError(t, err)
	assert.True(t, applied)

	require.Len(t, low, 2)
	assert.Equal(t, "Battery", low[0].CatalogItemName)
	assert.Equal(t, 0, low[0].Quantity)
	assert.True(t, low[0].LowStock)
	assert.Equal(t, "BOS", low[0].GroupCode)
	assert.Equal(t, 0, low[1].Quantity, "never below zero")

	got, err := repo.GetByID(ctx, screen.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Quantity)
	assert.False(t, got.LowStock)
}

func TestConsumePartsOncePerWorkOrder(t *testing.T) {
	db, group, parts := setupDB(t)
	repo := NewGormInventoryRepository(db)
	ctx := context.Background()

	item := &domain.InventoryItem{GroupID: group.ID, CatalogItemType: domain.ItemPart, CatalogItemID: parts[1].ID, Quantity: 5}
	require.NoError(t, repo.Create(ctx, item))
	at := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	_, applied, err := repo.ConsumeParts(ctx, "WO00004", group.ID, []uint{parts[1].ID}, at)
	require.NoError(t, err)
	assert.True(t, applied)

	_, applied, err = repo.ConsumeParts(ctx, "WO00004", group.ID, []uint{parts[1].ID}, at.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, applied)

	_, applied, err = repo.ConsumeParts(ctx, "WO00005", group.ID, []uint{parts[1].ID}, at)
	require.NoError(t, err)
	assert.True(t, applied)

	got, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)

	var marks int64
	require.NoError(t, db.Model(&domain.PartConsumption{}).Count(&marks).Error)
	assert.Equal(t, int64(2), marks)
}

func TestInventoryIdentityIsUnique(t *testing.T) {
	db, group, parts := setupDB(t)
	repo := NewGormInventoryRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.InventoryItem{GroupID: group.ID, CatalogItemType: domain.ItemPart, CatalogItemID: parts[0].ID}))
	err := repo.Create(ctx, &domain.InventoryItem{GroupID: group.ID, CatalogItemType: domain.ItemPart, CatalogItemID: parts[0].ID})
	assert.True(t, database.IsUniqueViolation(err), "err: %v", err)

	require.NoError(t, repo.Create(ctx, &domain.InventoryItem{GroupID: group.ID, CatalogItemType: domain.ItemDevice, CatalogItemID: parts[0].ID}))

	other := catalog.Group{Code: "NYC"}
	require.NoError(t, db.Create(&other).Error)
	require.NoError(t, repo.Create(ctx, &domain.InventoryItem{GroupID: other.ID, CatalogItemType: domain.ItemPart, CatalogItemID: parts[0].ID}))

	items, err := repo.List(ctx, &group.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	all, err := repo.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
