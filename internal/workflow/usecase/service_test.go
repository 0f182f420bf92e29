package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalog "github.com/tair/repair-manager/internal/catalog/domain"
	"github.com/tair/repair-manager/internal/testutil"
	"github.com/tair/repair-manager/internal/workflow/domain"
	"github.com/tair/repair-manager/internal/workflow/repository"
	workorder "github.com/tair/repair-manager/internal/workorder/domain"
	"github.com/tair/repair-manager/pkg/apperror"
)

func newService(t *testing.T) *Service {
	t.Helper()
	db := testutil.SetupTestDB(t, domain.Models()...)
	return NewService(repository.NewGormRepository(db))
}

func TestDeleteWorkflowInUseIsRejected(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	used, err := svc.CreateWorkflow(ctx, WorkflowInput{Name: "Standard", Statuses: []string{"Received", "In Repair", "Done"}})
	require.NoError(t, err)
	unused, err := svc.CreateWorkflow(ctx, WorkflowInput{Name: "Express", Statuses: []string{"Received", "Done"}})
	require.NoError(t, err)

	_, err = svc.CreateProgram(ctx, ProgramInput{Name: "Screen repair", RepairWorkflowID: used.ID})
	require.NoError(t, err)

	err = svc.DeleteWorkflow(ctx, used.ID)
	assert.ErrorIs(t, err, apperror.ErrReferentialIntegrity)

	require.NoError(t, svc.DeleteWorkflow(ctx, unused.ID))
	_, err = svc.GetWorkflow(ctx, unused.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeleteProgramInUseIsRejected(t *testing.T) {
	models := append(catalog.Models(), domain.Models()...)
	db := testutil.SetupTestDB(t, append(models, workorder.Models()...)...)
	svc := NewService(repository.NewGormRepository(db))
	ctx := context.Background()

	device := catalog.Device{Name: "Phone"}
	require.NoError(t, db.Create(&device).Error)
	service := catalog.Service{Name: "Screen swap"}
	require.NoError(t, db.Create(&service).Error)

	w, err := svc.CreateWorkflow(ctx, WorkflowInput{Name: "Standard", Statuses: []string{"Received", "Done"}})
	require.NoError(t, err)
	used, err := svc.CreateProgram(ctx, ProgramInput{Name: "Walk-in", RepairWorkflowID: w.ID})
	require.NoError(t, err)
	unused, err := svc.CreateProgram(ctx, ProgramInput{Name: "Mail-in", RepairWorkflowID: w.ID})
	require.NoError(t, err)

	order := workorder.WorkOrder{
		Code:            "WO00001",
		DeviceID:        device.ID,
		ServiceID:       service.ID,
		RepairProgramID: used.ID,
		CurrentStatus:   "Received",
	}
	require.NoError(t, db.Create(&order).Error)

	err = svc.DeleteProgram(ctx, used.ID)
	assert.ErrorIs(t, err, apperror.ErrReferentialIntegrity)
	_, err = svc.GetProgram(ctx, used.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProgram(ctx, unused.ID))
	_, err = svc.GetProgram(ctx, unused.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCreateWorkflowValidatesStatuses(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.CreateWorkflow(ctx, WorkflowInput{Name: "Empty"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.CreateWorkflow(ctx, WorkflowInput{Name: "Blank", Statuses: []string{"Received", "  "}})
	assert.Equal(t, apperror.KindInvalidInput, apperror.ValidationKind(err))

	_, err = svc.CreateWorkflow(ctx, WorkflowInput{Name: "Dup", Statuses: []string{"Received", "received"}})
	assert.Equal(t, apperror.KindInvalidInput, apperror.ValidationKind(err))

	w, err := svc.CreateWorkflow(ctx, WorkflowInput{Name: " Standard ", Statuses: []string{" Received ", "Done"}})
	require.NoError(t, err)
	assert.Equal(t, "Standard", w.Name)
	assert.Equal(t, "Received", w.InitialStatus())
	assert.Equal(t, "Done", w.FinalStatus())
	assert.True(t, w.HasStatus("done"))
}

func TestProgramRequiresExistingWorkflow(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.CreateProgram(ctx, ProgramInput{Name: "Battery swap", RepairWorkflowID: 42})
	assert.Equal(t, apperror.KindMissingReference, apperror.ValidationKind(err))

	w, err := svc.CreateWorkflow(ctx, WorkflowInput{Name: "Standard", Statuses: []string{"Received", "Done"}})
	require.NoError(t, err)
	p, err := svc.CreateProgram(ctx, ProgramInput{Name: "Battery swap", RepairWorkflowID: w.ID})
	require.NoError(t, err)
	require.NotNil(t, p.RepairWorkflow)
	assert.Equal(t, []string{"Received", "Done"}, []string(p.RepairWorkflow.Statuses))

	_, err = svc.UpdateProgram(ctx, p.ID+100, ProgramInput{Name: "x", RepairWorkflowID: w.ID})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestStatusCodes(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.CreateStatusCode(ctx, StatusCodeInput{Code: "WAITING_PARTS", IsActive: true, SortOrder: 2})
	require.NoError(t, err)
	_, err = svc.CreateStatusCode(ctx, StatusCodeInput{Code: "RECEIVED", IsActive: true, SortOrder: 1})
	require.NoError(t, err)
	_, err = svc.CreateStatusCode(ctx, StatusCodeInput{Code: "LEGACY", IsActive: false, SortOrder: 0})
	require.NoError(t, err)

	_, err = svc.CreateStatusCode(ctx, StatusCodeInput{Code: "RECEIVED"})
	assert.Equal(t, apperror.KindDuplicate, apperror.ValidationKind(err))

	all, err := svc.ListStatusCodes(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "LEGACY", all[0].Code)

	active, err := svc.ListActiveStatusCodes(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "RECEIVED", active[0].Code)
	assert.Equal(t, "WAITING_PARTS", active[1].Code)
}
