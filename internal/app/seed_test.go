package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inventory "github.com/tair/repair-manager/internal/inventory/domain"
	pricing "github.com/tair/repair-manager/internal/pricing/domain"
	"github.com/tair/repair-manager/internal/testutil"
	user "github.com/tair/repair-manager/internal/user/domain"
	workorder "github.com/tair/repair-manager/internal/workorder/domain"
	"github.com/tair/repair-manager/pkg/auth"
)

func TestSeedIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t, Models()...)
	ctx := context.Background()
	opts := SeedOptions{AdminPassword: "change-me-now"}

	require.NoError(t, Seed(ctx, db, opts))
	require.NoError(t, Seed(ctx, db, opts))

	counts := map[string]interface{}{
		"roles":     &user.Role{},
		"users":     &user.User{},
		"pricing":   &pricing.CatalogPricing{},
		"inventory": &inventory.InventoryItem{},
		"orders":    &workorder.WorkOrder{},
	}
	want := map[string]int64{"roles": 3, "users": 1, "pricing": 3, "inventory": 3, "orders": 1}
	for name, model := range counts {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		assert.Equal(t, want[name], n, name)
	}

	var wo workorder.WorkOrder
	require.NoError(t, db.First(&wo).Error)
	assert.Equal(t, "WO00001", wo.Code)

	var admin user.User
	require.NoError(t, db.Where("username = ?", "admin").First(&admin).Error)
	assert.True(t, admin.IsAdmin)
	assert.True(t, auth.CheckPassword(admin.PasswordHash, "change-me-now"))
}

func TestSeedRequiresAdminPassword(t *testing.T) {
	db := testutil.SetupTestDB(t, Models()...)
	assert.Error(t, Seed(context.Background(), db, SeedOptions{}))
}
