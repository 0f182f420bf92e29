package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	catalog "github.com/tair/repair-manager/internal/catalog/domain"
	inventory "github.com/tair/repair-manager/internal/inventory/domain"
	pricing "github.com/tair/repair-manager/internal/pricing/domain"
	user "github.com/tair/repair-manager/internal/user/domain"
	workflow "github.com/tair/repair-manager/internal/workflow/domain"
	workorder "github.com/tair/repair-manager/internal/workorder/domain"
	"github.com/tair/repair-manager/pkg/logger"
)

// Models lists every table in dependency order.
func Models() []interface{} {
	var models []interface{}
	for _, group := range [][]interface{}{
		catalog.Models(),
		workflow.Models(),
		user.Models(),
		pricing.Models(),
		inventory.Models(),
		workorder.Models(),
	} {
		models = append(models, group...)
	}
	return models
}

// Migrate creates or updates the schema.
func Migrate(ctx context.Context, db *gorm.DB) error {
	models := Models()
	if err := db.WithContext(ctx).AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info(ctx).Int("tables", len(models)).Msg("database migrated")
	return nil
}
