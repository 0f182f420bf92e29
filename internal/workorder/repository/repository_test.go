package repository

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	catalog "github.com/tair/repair-manager/internal/catalog/domain"
	"github.com/tair/repair-manager/internal/testutil"
	"github.com/tair/repair-manager/internal/workorder/domain"
	workflow "github.com/tair/repair-manager/internal/workflow/domain"
	"github.com/tair/repair-manager/pkg/apperror"
	"github.com/tair/repair-manager/pkg/database"
)

type refs struct {
	device  catalog.Device
	service catalog.Service
	group   catalog.Group
	program workflow.RepairProgram
}

func setupDB(t *testing.T) (*gorm.DB, refs) {
	t.Helper()
	var models []interface{}
	models = append(models, catalog.Models()...)
	models = append(models, workflow.Models()...)
	models = append(models, domain.Models()...)
	db := testutil.SetupTestDB(t, models...)

	var r refs
	r.device = catalog.Device{Name: "Phone X"}
	require.NoError(t, db.Create(&r.device).Error)
	r.service = catalog.Service{Name: "Screen replacement"}
	require.NoError(t, db.Create(&r.service).Error)
	r.group = catalog.Group{Code: "NORTH"}
	require.NoError(t, db.Create(&r.group).Error)
	wf := workflow.RepairWorkflow{Name: "Standard", Statuses: []string{"Received", "In Repair", "Done"}}
	require.NoError(t, db.Create(&wf).Error)
	r.program = workflow.RepairProgram{Name: "Walk-in", RepairWorkflowID: wf.ID}
	require.NoError(t, db.Omit("RepairWorkflow").Create(&r.program).Error)
	return db, r
}

func newOrder(r refs, code string) *domain.WorkOrder {
	return &domain.WorkOrder{
		Code:            code,
		DeviceID:        r.device.ID,
		ServiceID:       r.service.ID,
		RepairProgramID: r.program.ID,
		CustomerName:    "Ada",
		CurrentStatus:   "Received",
		Version:         1,
		CreatedAt:       time.Now().UTC(),
	}
}

func TestCreateContinuesFromHighestExistingCode(t *testing.T) {
	db, r := setupDB(t)
	ctx := context.Background()

	// Rows inserted behind the repository's back, as by an older release.
	for _, code := range []string{"WO00003", "WO00007", "WO00005"} {
		require.NoError(t, db.Omit("Device", "Service", "RepairProgram", "Group").Create(newOrder(r, code)).Error)
	}

	repo := NewGormRepository(db, domain.DefaultCodeFormat)
	wo := newOrder(r, "")
	require.NoError(t, repo.Create(ctx, wo))
	assert.Equal(t, "WO00008", wo.Code)

	next := newOrder(r, "")
	require.NoError(t, repo.Create(ctx, next))
	assert.Equal(t, "WO00009", next.Code)
}

func TestConcurrentCreatesNeverShareACode(t *testing.T) {
	db, r := setupDB(t)
	ctx := context.Background()

	// Two repositories stand in for two service replicas on one database. The
	// sqlite pool has a single connection, so this checks code assignment
	// under contention rather than the row lock; see the Postgres variant.
	replicas := []*GormRepository{
		NewGormRepository(db, domain.DefaultCodeFormat),
		NewGormRepository(db, domain.DefaultCodeFormat),
	}

	const n = 20
	codes := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			wo := newOrder(r, "")
			errs[i] = replicas[i%2].Create(ctx, wo)
			codes[i] = wo.Code
		}(i)
	}
	wg.Wait()

	pattern := regexp.MustCompile(`^WO\d{5}$`)
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Regexp(t, pattern, codes[i])
		assert.False(t, seen[codes[i]], "duplicate code %s", codes[i])
		seen[codes[i]] = true
	}
	assert.True(t, seen["WO00001"])
	assert.True(t, seen[fmt.Sprintf("WO%05d", n)])
}

func TestCreateWithSuppliedCodeAdvancesCounter(t *testing.T) {
	db, r := setupDB(t)
	ctx := context.Background()
	repo := NewGormRepository(db, domain.DefaultCodeFormat)

	require.NoError(t, repo.Create(ctx, newOrder(r, "WO00040")))

	wo := newOrder(r, "")
	require.NoError(t, repo.Create(ctx, wo))
	assert.Equal(t, "WO00041", wo.Code)

	dup := newOrder(r, "WO00040")
	err := repo.Create(ctx, dup)
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))

	current, err := database.CurrentValue(db, domain.CodeSequence)
	require.NoError(t, err)
	assert.Equal(t, int64(41), current)
}

func TestUpdateIsGuardedByVersion(t *testing.T) {
	db, r := setupDB(t)
	ctx := context.Background()
	repo := NewGormRepository(db, domain.DefaultCodeFormat)

	wo := newOrder(r, "")
	require.NoError(t, repo.Create(ctx, wo))

	now := time.Now().UTC()
	wo.CustomerName = "Grace"
	wo.UpdatedAt = &now

	ok, err := repo.Update(ctx, wo, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	// The first write bumped the version, so a second writer holding 1 loses.
	ok, err = repo.Update(ctx, wo, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.UpdateStatus(ctx, wo.ID, "Done", now, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetByID(ctx, wo.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grace", got.CustomerName)
	assert.Equal(t, "Done", got.CurrentStatus)
	assert.Equal(t, 3, got.Version)
	assert.Equal(t, "Phone X", got.DeviceName)
	assert.Equal(t, "Walk-in", got.RepairProgramName)
	require.NotNil(t, got.UpdatedAt)
}

func TestCreateLeavesUpdatedAtEmpty(t *testing.T) {
	db, r := setupDB(t)
	repo := NewGormRepository(db, domain.DefaultCodeFormat)

	wo := newOrder(r, "")
	require.NoError(t, repo.Create(context.Background(), wo))

	got, err := repo.GetByID(context.Background(), wo.ID)
	require.NoError(t, err)
	assert.Nil(t, got.UpdatedAt)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestListFiltersAndDelete(t *testing.T) {
	db, r := setupDB(t)
	ctx := context.Background()
	repo := NewGormRepository(db, domain.DefaultCodeFormat)

	a := newOrder(r, "")
	a.GroupID = &r.group.ID
	require.NoError(t, repo.Create(ctx, a))
	b := newOrder(r, "")
	b.CurrentStatus = "Done"
	require.NoError(t, repo.Create(ctx, b))

	items, total, err := repo.List(ctx, domain.ListFilter{Status: "Done"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, b.Code, items[0].Code)

	items, total, err = repo.List(ctx, domain.ListFilter{GroupID: &r.group.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "NORTH", items[0].GroupName)

	ok, err := repo.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestProgramWorkflow(t *testing.T) {
	db, r := setupDB(t)
	refsRepo := NewGormReferences(db)
	ctx := context.Background()

	wf, err := refsRepo.ProgramWorkflow(ctx, r.program.ID)
	require.NoError(t, err)
	assert.Equal(t, "Received", wf.InitialStatus())

	_, err = refsRepo.ProgramWorkflow(ctx, 999)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	ok, err := refsRepo.GroupExists(ctx, r.group.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}
