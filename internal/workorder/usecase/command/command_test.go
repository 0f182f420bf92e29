package command

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/repair-manager/internal/workorder/domain"
	workflow "github.com/tair/repair-manager/internal/workflow/domain"
	"github.com/tair/repair-manager/kafka"
	"github.com/tair/repair-manager/pkg/apperror"
)

type fakeRepo struct {
	mu     sync.Mutex
	rows   map[uint]domain.WorkOrder
	nextID uint
	seq    int64

	// beforeWrite runs ahead of Update and UpdateStatus to simulate a
	// concurrent writer.
	beforeWrite func()
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: make(map[uint]domain.WorkOrder)}
}

func (r *fakeRepo) Create(_ context.Context, wo *domain.WorkOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if wo.Code == "" {
		r.seq++
		wo.Code = domain.DefaultCodeFormat.Format(r.seq)
	}
	for _, existing := range r.rows {
		if existing.Code == wo.Code {
			return errors.New("UNIQUE constraint failed: work_orders.code")
		}
	}
	r.nextID++
	wo.ID = r.nextID
	r.rows[wo.ID] = *wo
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uint) (*domain.WorkOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wo, ok := r.rows[id]
	if !ok {
		return nil, apperror.NewNotFound("work order", id)
	}
	return &wo, nil
}

func (r *fakeRepo) List(_ context.Context, _ domain.ListFilter) ([]domain.WorkOrder, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.WorkOrder
	for _, wo := range r.rows {
		out = append(out, wo)
	}
	return out, int64(len(out)), nil
}

func (r *fakeRepo) write(id uint, expected int, mutate func(*domain.WorkOrder)) bool {
	if r.beforeWrite != nil {
		r.beforeWrite()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	wo, ok := r.rows[id]
	if !ok || wo.Version != expected {
		return false
	}
	mutate(&wo)
	wo.Version++
	r.rows[id] = wo
	return true
}

func (r *fakeRepo) Update(_ context.Context, wo *domain.WorkOrder, expected int) (bool, error) {
	return r.write(wo.ID, expected, func(stored *domain.WorkOrder) {
		version := stored.Version
		*stored = *wo
		stored.Version = version
	}), nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, id uint, status string, at time.Time, expected int) (bool, error) {
	return r.write(id, expected, func(stored *domain.WorkOrder) {
		stored.CurrentStatus = status
		stored.UpdatedAt = &at
	}), nil
}

func (r *fakeRepo) Delete(_ context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rows[id]
	delete(r.rows, id)
	return ok, nil
}

func (r *fakeRepo) Exists(_ context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rows[id]
	return ok, nil
}

func (r *fakeRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.rows)), nil
}

type fakeRefs struct {
	devices, services, groups map[uint]bool
	programs                  map[uint]*workflow.RepairWorkflow
}

func (f *fakeRefs) DeviceExists(_ context.Context, id uint) (bool, error)  { return f.devices[id], nil }
func (f *fakeRefs) ServiceExists(_ context.Context, id uint) (bool, error) { return f.services[id], nil }
func (f *fakeRefs) GroupExists(_ context.Context, id uint) (bool, error)   { return f.groups[id], nil }

func (f *fakeRefs) ProgramWorkflow(_ context.Context, id uint) (*workflow.RepairWorkflow, error) {
	wf, ok := f.programs[id]
	if !ok {
		return nil, apperror.NewNotFound("repair program", id)
	}
	return wf, nil
}

type recordingPublisher struct {
	events []kafka.WorkOrderEvent
	err    error
}

func (p *recordingPublisher) PublishWorkOrderEvent(_ context.Context, e kafka.WorkOrderEvent) error {
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type fixture struct {
	repo      *fakeRepo
	refs      *fakeRefs
	publisher *recordingPublisher
}

func newFixture() *fixture {
	return &fixture{
		repo: newFakeRepo(),
		refs: &fakeRefs{
			devices:  map[uint]bool{1: true},
			services: map[uint]bool{2: true},
			groups:   map[uint]bool{3: true},
			programs: map[uint]*workflow.RepairWorkflow{
				4: {ID: 9, Name: "Standard", Statuses: []string{"Received", "In Repair", "Done"}},
			},
		},
		publisher: &recordingPublisher{},
	}
}

func (f *fixture) create(opts Options) *CreateWorkOrderHandler {
	return NewCreateWorkOrderHandler(f.repo, f.refs, f.publisher, nil, opts)
}

func validFields() Fields {
	return Fields{DeviceID: 1, ServiceID: 2, RepairProgramID: 4, CustomerName: "Ada Lovelace"}
}

func TestCreateAssignsCodeAndInitialStatus(t *testing.T) {
	f := newFixture()

	wo, err := f.create(Options{}).Handle(context.Background(), CreateWorkOrderCommand{Fields: validFields()})
	require.NoError(t, err)

	assert.Regexp(t, `^WO\d{5}$`, wo.Code)
	assert.Equal(t, "Received", wo.CurrentStatus)
	assert.Equal(t, 1, wo.Version)
	assert.False(t, wo.CreatedAt.IsZero())
	assert.Nil(t, wo.UpdatedAt)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, kafka.EventTypeWorkOrderCreated, f.publisher.events[0].EventType)
	assert.Equal(t, wo.Code, f.publisher.events[0].Code)
}

func TestCreateRejectsMissingReferences(t *testing.T) {
	f := newFixture()
	h := f.create(Options{})
	ctx := context.Background()

	missingGroup := validFields()
	group := uint(77)
	missingGroup.GroupID = &group
	_, err := h.Handle(ctx, CreateWorkOrderCommand{Fields: missingGroup})
	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, apperror.KindMissingReference, apperror.ValidationKind(err))

	missingProgram := validFields()
	missingProgram.RepairProgramID = 40
	_, err = h.Handle(ctx, CreateWorkOrderCommand{Fields: missingProgram})
	assert.Equal(t, apperror.KindMissingReference, apperror.ValidationKind(err))

	missingDevice := validFields()
	missingDevice.DeviceID = 5
	_, err = h.Handle(ctx, CreateWorkOrderCommand{Fields: missingDevice})
	assert.Equal(t, apperror.KindMissingReference, apperror.ValidationKind(err))

	assert.Empty(t, f.publisher.events)
}

func TestCreateStatusMembershipFollowsOption(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	fields := validFields()
	fields.CurrentStatus = "Lost in mail"

	_, err := f.create(Options{EnforceWorkflowStatus: true}).Handle(ctx, CreateWorkOrderCommand{Fields: fields})
	assert.Equal(t, apperror.KindInvalidStatus, apperror.ValidationKind(err))

	wo, err := f.create(Options{}).Handle(ctx, CreateWorkOrderCommand{Fields: fields})
	require.NoError(t, err)
	assert.Equal(t, "Lost in mail", wo.CurrentStatus)
}

func TestCreateDuplicateCode(t *testing.T) {
	f := newFixture()
	h := f.create(Options{})
	ctx := context.Background()

	_, err := h.Handle(ctx, CreateWorkOrderCommand{Code: "WO00100", Fields: validFields()})
	require.NoError(t, err)
	_, err = h.Handle(ctx, CreateWorkOrderCommand{Code: "WO00100", Fields: validFields()})
	assert.Equal(t, apperror.KindDuplicate, apperror.ValidationKind(err))
}

func TestCreateSurvivesPublishFailure(t *testing.T) {
	f := newFixture()
	f.publisher.err = errors.New("broker down")

	wo, err := f.create(Options{}).Handle(context.Background(), CreateWorkOrderCommand{Fields: validFields()})
	require.NoError(t, err)
	assert.NotZero(t, wo.ID)
}

func TestUpdateKeepsStoredCode(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	wo, err := f.create(Options{}).Handle(ctx, CreateWorkOrderCommand{Fields: validFields()})
	require.NoError(t, err)

	fields := validFields()
	fields.CustomerName = "Grace Hopper"
	updated, err := NewUpdateWorkOrderHandler(f.repo, f.refs, f.publisher, nil, Options{}).Handle(ctx, UpdateWorkOrderCommand{
		PathID: wo.ID,
		ID:     wo.ID,
		Code:   "WO99999",
		Fields: fields,
	})
	require.NoError(t, err)
	assert.Equal(t, wo.Code, updated.Code)
	assert.Equal(t, "Grace Hopper", updated.CustomerName)
	assert.Equal(t, "Received", updated.CurrentStatus)
	assert.Equal(t, 2, updated.Version)
	require.NotNil(t, updated.UpdatedAt)
	assert.Equal(t, wo.CreatedAt, updated.CreatedAt)

	// Only the create event; the status did not change.
	assert.Len(t, f.publisher.events, 1)
}

func TestUpdateErrors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	wo, err := f.create(Options{}).Handle(ctx, CreateWorkOrderCommand{Fields: validFields()})
	require.NoError(t, err)
	h := NewUpdateWorkOrderHandler(f.repo, f.refs, f.publisher, nil, Options{})

	_, err = h.Handle(ctx, UpdateWorkOrderCommand{PathID: wo.ID, ID: wo.ID + 1, Fields: validFields()})
	assert.Equal(t, apperror.KindIdentifierMismatch, apperror.ValidationKind(err))

	_, err = h.Handle(ctx, UpdateWorkOrderCommand{PathID: 404, Fields: validFields()})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = h.Handle(ctx, UpdateWorkOrderCommand{PathID: wo.ID, Version: 7, Fields: validFields()})
	assert.ErrorIs(t, err, apperror.ErrConcurrencyConflict)
}

func TestUpdateOfRowDeletedMidwayIsNotFound(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	wo, err := f.create(Options{}).Handle(ctx, CreateWorkOrderCommand{Fields: validFields()})
	require.NoError(t, err)

	f.repo.beforeWrite = func() {
		_, _ = f.repo.Delete(ctx, wo.ID)
	}
	_, err = NewUpdateWorkOrderHandler(f.repo, f.refs, f.publisher, nil, Options{}).Handle(ctx, UpdateWorkOrderCommand{
		PathID: wo.ID,
		Fields: validFields(),
	})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateStatusChangePublishesEvent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	wo, err := f.create(Options{}).Handle(ctx, CreateWorkOrderCommand{Fields: validFields()})
	require.NoError(t, err)

	fields := validFields()
	fields.CurrentStatus = "In Repair"
	_, err = NewUpdateWorkOrderHandler(f.repo, f.refs, f.publisher, nil, Options{EnforceWorkflowStatus: true}).Handle(ctx, UpdateWorkOrderCommand{
		PathID: wo.ID,
		Fields: fields,
	})
	require.NoError(t, err)

	require.Len(t, f.publisher.events, 2)
	e := f.publisher.events[1]
	assert.Equal(t, kafka.EventTypeWorkOrderStatusChanged, e.EventType)
	assert.Equal(t, "Received", e.PreviousStatus)
	assert.Equal(t, "In Repair", e.Status)
}

func TestPatchStatus(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	wo, err := f.create(Options{}).Handle(ctx, CreateWorkOrderCommand{Fields: validFields()})
	require.NoError(t, err)

	h := NewPatchStatusHandler(f.repo, f.refs, f.publisher, nil, Options{})

	_, err = h.Handle(ctx, PatchStatusCommand{ID: 404, Status: "Done"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = h.Handle(ctx, PatchStatusCommand{ID: wo.ID, Status: "  "})
	assert.Equal(t, apperror.KindInvalidInput, apperror.ValidationKind(err))

	patched, err := h.Handle(ctx, PatchStatusCommand{ID: wo.ID, Status: "Done", Notes: "screen replaced"})
	require.NoError(t, err)
	assert.Equal(t, "Done", patched.CurrentStatus)
	assert.NotNil(t, patched.UpdatedAt)

	last := f.publisher.events[len(f.publisher.events)-1]
	assert.Equal(t, kafka.EventTypeWorkOrderStatusChanged, last.EventType)
	assert.Equal(t, "Received", last.PreviousStatus)
	assert.Equal(t, "screen replaced", last.Notes)
}

func TestPatchStatusEnforcedAndStale(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	wo, err := f.create(Options{}).Handle(ctx, CreateWorkOrderCommand{Fields: validFields()})
	require.NoError(t, err)

	enforced := NewPatchStatusHandler(f.repo, f.refs, f.publisher, nil, Options{EnforceWorkflowStatus: true})
	_, err = enforced.Handle(ctx, PatchStatusCommand{ID: wo.ID, Status: "Shipped"})
	assert.Equal(t, apperror.KindInvalidStatus, apperror.ValidationKind(err))

	_, err = enforced.Handle(ctx, PatchStatusCommand{ID: wo.ID, Status: "done"})
	require.NoError(t, err)

	_, err = enforced.Handle(ctx, PatchStatusCommand{ID: wo.ID, Status: "Received", Version: 1})
	assert.ErrorIs(t, err, apperror.ErrConcurrencyConflict)
}

func TestDeleteWorkOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	wo, err := f.create(Options{}).Handle(ctx, CreateWorkOrderCommand{Fields: validFields()})
	require.NoError(t, err)

	h := NewDeleteWorkOrderHandler(f.repo, f.publisher, nil)
	require.NoError(t, h.Handle(ctx, DeleteWorkOrderCommand{ID: wo.ID}))
	assert.ErrorIs(t, h.Handle(ctx, DeleteWorkOrderCommand{ID: wo.ID}), apperror.ErrNotFound)

	last := f.publisher.events[len(f.publisher.events)-1]
	assert.Equal(t, kafka.EventTypeWorkOrderDeleted, last.EventType)
	assert.Equal(t, wo.Code, last.Code)
}
