package repository

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	catalog "github.com/tair/repair-manager/internal/catalog/domain"
	"github.com/tair/repair-manager/internal/config"
	"github.com/tair/repair-manager/internal/workorder/domain"
	workflow "github.com/tair/repair-manager/internal/workflow/domain"
	"github.com/tair/repair-manager/pkg/database"
)

// openPostgres connects to the database named by the DB_* variables. It
// consumes real work-order codes, so point it at a scratch database.
func openPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	if os.Getenv("DB_HOST") == "" {
		t.Skip("DB_HOST not set")
	}
	cfg, err := config.Load("")
	require.NoError(t, err)

	db, err := database.NewGormConnection(database.Config{
		Driver:       cfg.DB.Driver,
		Host:         cfg.DB.Host,
		Port:         cfg.DB.Port,
		User:         cfg.DB.User,
		Password:     cfg.DB.Password,
		DBName:       cfg.DB.Name,
		SSLMode:      cfg.DB.SSLMode,
		MaxOpenConns: 8,
		MaxIdleConns: 8,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	var models []interface{}
	models = append(models, catalog.Models()...)
	models = append(models, workflow.Models()...)
	models = append(models, domain.Models()...)
	require.NoError(t, db.AutoMigrate(models...))
	return db
}

func TestConcurrentCreatesOnPostgres(t *testing.T) {
	db := openPostgres(t)
	ctx := context.Background()

	var r refs
	r.device = catalog.Device{Name: "Concurrency phone"}
	require.NoError(t, db.Create(&r.device).Error)
	r.service = catalog.Service{Name: "Concurrency service"}
	require.NoError(t, db.Create(&r.service).Error)
	wf := workflow.RepairWorkflow{Name: "Concurrency", Statuses: []string{"Received", "Done"}}
	require.NoError(t, db.Create(&wf).Error)
	r.program = workflow.RepairProgram{Name: "Concurrency", RepairWorkflowID: wf.ID}
	require.NoError(t, db.Omit("RepairWorkflow").Create(&r.program).Error)

	const n = 40
	orders := make([]*domain.WorkOrder, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			repo := NewGormRepository(db, domain.DefaultCodeFormat)
			orders[i] = newOrder(r, "")
			errs[i] = repo.Create(ctx, orders[i])
		}(i)
	}
	wg.Wait()

	t.Cleanup(func() {
		db.Where("repair_program_id = ?", r.program.ID).Delete(&domain.WorkOrder{})
		db.Delete(&r.program)
		db.Delete(&wf)
		db.Delete(&r.service)
		db.Delete(&r.device)
	})

	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.False(t, seen[orders[i].Code], "duplicate code %s", orders[i].Code)
		seen[orders[i].Code] = true
	}
}
