package usecase

import (
	"context"
	"strings"

	"github.com/tair/repair-manager/internal/catalog/domain"
	"github.com/tair/repair-manager/pkg/apperror"
	"github.com/tair/repair-manager/pkg/database"
	"github.com/tair/repair-manager/pkg/validation"
)

type ManufacturerInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

type DeviceInput struct {
	Name           string `json:"name" validate:"required,max=100"`
	Description    string `json:"description" validate:"max=500"`
	SKU            string `json:"sku" validate:"max=50"`
	ManufacturerID *uint  `json:"manufacturer_id"`
}

type PartInput struct {
	Name           string `json:"name" validate:"required,max=100"`
	SKU            string `json:"sku" validate:"max=50"`
	Description    string `json:"description" validate:"max=500"`
	ManufacturerID *uint  `json:"manufacturer_id"`
	DeviceID       *uint  `json:"device_id"`
}

type ServiceInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	SKU         string `json:"sku" validate:"max=50"`
	DeviceID    *uint  `json:"device_id"`
}

type GroupInput struct {
	Code        string `json:"code" validate:"required,max=20"`
	Description string `json:"description" validate:"max=200"`
	Address1    string `json:"address1" validate:"max=100"`
	Address2    string `json:"address2" validate:"max=100"`
	Address3    string `json:"address3" validate:"max=100"`
	Address4    string `json:"address4" validate:"max=100"`
	City        string `json:"city" validate:"max=50"`
	State       string `json:"state" validate:"max=50"`
	Zip         string `json:"zip" validate:"max=20"`
	Country     string `json:"country" validate:"max=50"`
}

// Service implements catalog maintenance.
type Service struct {
	repo domain.Repository
}

func NewService(repo domain.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) requireRef(ctx context.Context, field string, id *uint, exists func(context.Context, uint) (bool, error)) error {
	if id == nil {
		return nil
	}
	ok, err := exists(ctx, *id)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NewValidation(apperror.KindMissingReference, field, "referenced record does not exist")
	}
	return nil
}

func notFoundUnless(found bool, err error, resource string, id uint) error {
	if err != nil {
		return err
	}
	if !found {
		return apperror.NewNotFound(resource, id)
	}
	return nil
}

func deleteResult(found bool, err error, resource string, id uint) error {
	if database.IsForeignKeyViolation(err) {
		return apperror.NewReferentialIntegrity(resource, id, "dependent records")
	}
	return notFoundUnless(found, err, resource, id)
}

// Manufacturers

func (s *Service) CreateManufacturer(ctx context.Context, in ManufacturerInput) (*domain.Manufacturer, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	m := &domain.Manufacturer{Name: strings.TrimSpace(in.Name), Description: in.Description}
	if err := s.repo.CreateManufacturer(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) GetManufacturer(ctx context.Context, id uint) (*domain.Manufacturer, error) {
	return s.repo.GetManufacturer(ctx, id)
}

func (s *Service) ListManufacturers(ctx context.Context) ([]domain.Manufacturer, error) {
	return s.repo.ListManufacturers(ctx)
}

func (s *Service) UpdateManufacturer(ctx context.Context, id uint, in ManufacturerInput) (*domain.Manufacturer, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	m := &domain.Manufacturer{ID: id, Name: strings.TrimSpace(in.Name), Description: in.Description}
	found, err := s.repo.UpdateManufacturer(ctx, m)
	if err := notFoundUnless(found, err, "manufacturer", id); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) DeleteManufacturer(ctx context.Context, id uint) error {
	found, err := s.repo.DeleteManufacturer(ctx, id)
	return deleteResult(found, err, "manufacturer", id)
}

// Devices

func (s *Service) validateDevice(ctx context.Context, in DeviceInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	return s.requireRef(ctx, "manufacturer_id", in.ManufacturerID, s.repo.ManufacturerExists)
}

func (s *Service) CreateDevice(ctx context.Context, in DeviceInput) (*domain.Device, error) {
	if err := s.validateDevice(ctx, in); err != nil {
		return nil, err
	}
	d := &domain.Device{Name: strings.TrimSpace(in.Name), Description: in.Description, SKU: in.SKU, ManufacturerID: in.ManufacturerID}
	if err := s.repo.CreateDevice(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) GetDevice(ctx context.Context, id uint) (*domain.Device, error) {
	return s.repo.GetDevice(ctx, id)
}

func (s *Service) ListDevices(ctx context.Context) ([]domain.Device, error) {
	return s.repo.ListDevices(ctx)
}

func (s *Service) UpdateDevice(ctx context.Context, id uint, in DeviceInput) (*domain.Device, error) {
	if err := s.validateDevice(ctx, in); err != nil {
		return nil, err
	}
	d := &domain.Device{ID: id, Name: strings.TrimSpace(in.Name), Description: in.Description, SKU: in.SKU, ManufacturerID: in.ManufacturerID}
	found, err := s.repo.UpdateDevice(ctx, d)
	if err := notFoundUnless(found, err, "device", id); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) DeleteDevice(ctx context.Context, id uint) error {
	found, err := s.repo.DeleteDevice(ctx, id)
	return deleteResult(found, err, "device", id)
}

// Parts

func (s *Service) validatePart(ctx context.Context, in PartInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	if err := s.requireRef(ctx, "manufacturer_id", in.ManufacturerID, s.repo.ManufacturerExists); err != nil {
		return err
	}
	return s.requireRef(ctx, "device_id", in.DeviceID, s.repo.DeviceExists)
}

func (s *Service) CreatePart(ctx context.Context, in PartInput) (*domain.Part, error) {
	if err := s.validatePart(ctx, in); err != nil {
		return nil, err
	}
	p := &domain.Part{Name: strings.TrimSpace(in.Name), SKU: in.SKU, Description: in.Description, ManufacturerID: in.ManufacturerID, DeviceID: in.DeviceID}
	if err := s.repo.CreatePart(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetPart(ctx context.Context, id uint) (*domain.Part, error) {
	return s.repo.GetPart(ctx, id)
}

func (s *Service) ListParts(ctx context.Context) ([]domain.Part, error) {
	return s.repo.ListParts(ctx)
}

func (s *Service) UpdatePart(ctx context.Context, id uint, in PartInput) (*domain.Part, error) {
	if err := s.validatePart(ctx, in); err != nil {
		return nil, err
	}
	p := &domain.Part{ID: id, Name: strings.TrimSpace(in.Name), SKU: in.SKU, Description: in.Description, ManufacturerID: in.ManufacturerID, DeviceID: in.DeviceID}
	found, err := s.repo.UpdatePart(ctx, p)
	if err := notFoundUnless(found, err, "part", id); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) DeletePart(ctx context.Context, id uint) error {
	found, err := s.repo.DeletePart(ctx, id)
	return deleteResult(found, err, "part", id)
}

// Services

func (s *Service) validateService(ctx context.Context, in ServiceInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	return s.requireRef(ctx, "device_id", in.DeviceID, s.repo.DeviceExists)
}

func (s *Service) CreateService(ctx context.Context, in ServiceInput) (*domain.Service, error) {
	if err := s.validateService(ctx, in); err != nil {
		return nil, err
	}
	svc := &domain.Service{Name: strings.TrimSpace(in.Name), Description: in.Description, SKU: in.SKU, DeviceID: in.DeviceID}
	if err := s.repo.CreateService(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *Service) GetService(ctx context.Context, id uint) (*domain.Service, error) {
	return s.repo.GetService(ctx, id)
}

func (s *Service) ListServices(ctx context.Context) ([]domain.Service, error) {
	return s.repo.ListServices(ctx)
}

func (s *Service) UpdateService(ctx context.Context, id uint, in ServiceInput) (*domain.Service, error) {
	if err := s.validateService(ctx, in); err != nil {
		return nil, err
	}
	svc := &domain.Service{ID: id, Name: strings.TrimSpace(in.Name), Description: in.Description, SKU: in.SKU, DeviceID: in.DeviceID}
	found, err := s.repo.UpdateService(ctx, svc)
	if err := notFoundUnless(found, err, "service", id); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *Service) DeleteService(ctx context.Context, id uint) error {
	found, err := s.repo.DeleteService(ctx, id)
	return deleteResult(found, err, "service", id)
}

// Groups

func groupFromInput(id uint, in GroupInput) *domain.Group {
	return &domain.Group{
		ID:          id,
		Code:        strings.TrimSpace(in.Code),
		Description: in.Description,
		Address1:    in.Address1,
		Address2:    in.Address2,
		Address3:    in.Address3,
		Address4:    in.Address4,
		City:        in.City,
		State:       in.State,
		Zip:         in.Zip,
		Country:     in.Country,
	}
}

func duplicateCode(err error) error {
	if database.IsUniqueViolation(err) {
		return apperror.NewValidation(apperror.KindDuplicate, "code", "group code already exists")
	}
	return err
}

func (s *Service) CreateGroup(ctx context.Context, in GroupInput) (*domain.Group, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	g := groupFromInput(0, in)
	if err := s.repo.CreateGroup(ctx, g); err != nil {
		return nil, duplicateCode(err)
	}
	return g, nil
}

func (s *Service) GetGroup(ctx context.Context, id uint) (*domain.Group, error) {
	return s.repo.GetGroup(ctx, id)
}

func (s *Service) ListGroups(ctx context.Context) ([]domain.Group, error) {
	return s.repo.ListGroups(ctx)
}

func (s *Service) UpdateGroup(ctx context.Context, id uint, in GroupInput) (*domain.Group, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	g := groupFromInput(id, in)
	found, err := s.repo.UpdateGroup(ctx, g)
	if err := notFoundUnless(found, duplicateCode(err), "group", id); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Service) DeleteGroup(ctx context.Context, id uint) error {
	found, err := s.repo.DeleteGroup(ctx, id)
	return deleteResult(found, err, "group", id)
}
