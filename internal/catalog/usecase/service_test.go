package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/repair-manager/internal/catalog/domain"
	"github.com/tair/repair-manager/internal/catalog/repository"
	"github.com/tair/repair-manager/internal/testutil"
	"github.com/tair/repair-manager/pkg/apperror"
)

func newService(t *testing.T) *Service {
	db := testutil.SetupTestDB(t, domain.Models()...)
	return NewService(repository.NewGormRepository(db))
}

func uintPtr(v uint) *uint { return &v }

func TestDeviceRequiresExistingManufacturer(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.CreateDevice(ctx, DeviceInput{Name: "Pixel 8", ManufacturerID: uintPtr(99)})
	assert.Equal(t, apperror.KindMissingReference, apperror.ValidationKind(err))

	m, err := svc.CreateManufacturer(ctx, ManufacturerInput{Name: "Google"})
	require.NoError(t, err)

	d, err := svc.CreateDevice(ctx, DeviceInput{Name: "Pixel 8", ManufacturerID: &m.ID})
	require.NoError(t, err)

	got, err := svc.GetDevice(ctx, d.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Manufacturer)
	assert.Equal(t, "Google", got.Manufacturer.Name)
}

func TestDeleteReferencedManufacturerIsBlocked(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	m, err := svc.CreateManufacturer(ctx, ManufacturerInput{Name: "Apple"})
	require.NoError(t, err)
	_, err = svc.CreateDevice(ctx, DeviceInput{Name: "iPhone 15", ManufacturerID: &m.ID})
	require.NoError(t, err)

	err = svc.DeleteManufacturer(ctx, m.ID)
	assert.ErrorIs(t, err, apperror.ErrReferentialIntegrity)

	other, err := svc.CreateManufacturer(ctx, ManufacturerInput{Name: "Nokia"})
	require.NoError(t, err)
	assert.NoError(t, svc.DeleteManufacturer(ctx, other.ID))
	assert.ErrorIs(t, svc.DeleteManufacturer(ctx, other.ID), apperror.ErrNotFound)
}

func TestGroupCodeIsUnique(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.CreateGroup(ctx, GroupInput{Code: "NYC", City: "New York"})
	require.NoError(t, err)

	_, err = svc.CreateGroup(ctx, GroupInput{Code: "NYC"})
	assert.Equal(t, apperror.KindDuplicate, apperror.ValidationKind(err))
}

func TestUpdateMissingPart(t *testing.T) {
	svc := newService(t)

	_, err := svc.UpdatePart(context.Background(), 42, PartInput{Name: "Battery"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateServiceKeepsZeroValues(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	dev, err := svc.CreateDevice(ctx, DeviceInput{Name: "Switch"})
	require.NoError(t, err)
	s, err := svc.CreateService(ctx, ServiceInput{Name: "Joy-Con repair", SKU: "JC-1", DeviceID: &dev.ID})
	require.NoError(t, err)

	_, err = svc.UpdateService(ctx, s.ID, ServiceInput{Name: "Joy-Con drift fix"})
	require.NoError(t, err)

	got, err := svc.GetService(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Joy-Con drift fix", got.Name)
	assert.Empty(t, got.SKU)
	assert.Nil(t, got.DeviceID)
}
