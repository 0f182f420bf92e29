package domain

import "context"

type Manufacturer struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"size:100;not null"`
	Description string `json:"description" gorm:"size:500"`
}

func (Manufacturer) TableName() string { return "manufacturers" }

type Device struct {
	ID             uint          `json:"id" gorm:"primaryKey"`
	Name           string        `json:"name" gorm:"size:100;not null"`
	Description    string        `json:"description" gorm:"size:500"`
	SKU            string        `json:"sku" gorm:"size:50;index"`
	ManufacturerID *uint         `json:"manufacturer_id"`
	Manufacturer   *Manufacturer `json:"manufacturer,omitempty" gorm:"constraint:OnDelete:RESTRICT"`
}

func (Device) TableName() string { return "devices" }

type Part struct {
	ID             uint          `json:"id" gorm:"primaryKey"`
	Name           string        `json:"name" gorm:"size:100;not null"`
	SKU            string        `json:"sku" gorm:"size:50;index"`
	Description    string        `json:"description" gorm:"size:500"`
	ManufacturerID *uint         `json:"manufacturer_id"`
	Manufacturer   *Manufacturer `json:"manufacturer,omitempty" gorm:"constraint:OnDelete:RESTRICT"`
	DeviceID       *uint         `json:"device_id"`
	Device         *Device       `json:"device,omitempty" gorm:"constraint:OnDelete:RESTRICT"`
}

func (Part) TableName() string { return "parts" }

type Service struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"size:100;not null"`
	Description string  `json:"description" gorm:"size:500"`
	SKU         string  `json:"sku" gorm:"size:50;index"`
	DeviceID    *uint   `json:"device_id"`
	Device      *Device `json:"device,omitempty" gorm:"constraint:OnDelete:RESTRICT"`
}

func (Service) TableName() string { return "services" }

// Group is a shop location. Work orders, users and inventory belong to one.
type Group struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Code        string `json:"code" gorm:"size:20;not null;uniqueIndex"`
	Description string `json:"description" gorm:"size:200"`
	Address1    string `json:"address1" gorm:"size:100"`
	Address2    string `json:"address2" gorm:"size:100"`
	Address3    string `json:"address3" gorm:"size:100"`
	Address4    string `json:"address4" gorm:"size:100"`
	City        string `json:"city" gorm:"size:50"`
	State       string `json:"state" gorm:"size:50"`
	Zip         string `json:"zip" gorm:"size:20"`
	Country     string `json:"country" gorm:"size:50"`
}

func (Group) TableName() string { return "repair_groups" }

// Models lists every catalog table in migration order.
func Models() []interface{} {
	return []interface{}{&Manufacturer{}, &Device{}, &Part{}, &Service{}, &Group{}}
}

// Repository is the persistence contract for the catalog.
type Repository interface {
	CreateManufacturer(ctx context.Context, m *Manufacturer) error
	GetManufacturer(ctx context.Context, id uint) (*Manufacturer, error)
	ListManufacturers(ctx context.Context) ([]Manufacturer, error)
	UpdateManufacturer(ctx context.Context, m *Manufacturer) (bool, error)
	DeleteManufacturer(ctx context.Context, id uint) (bool, error)

	CreateDevice(ctx context.Context, d *Device) error
	GetDevice(ctx context.Context, id uint) (*Device, error)
	ListDevices(ctx context.Context) ([]Device, error)
	UpdateDevice(ctx context.Context, d *Device) (bool, error)
	DeleteDevice(ctx context.Context, id uint) (bool, error)

	CreatePart(ctx context.Context, p *Part) error
	GetPart(ctx context.Context, id uint) (*Part, error)
	ListParts(ctx context.Context) ([]Part, error)
	UpdatePart(ctx context.Context, p *Part) (bool, error)
	DeletePart(ctx context.Context, id uint) (bool, error)

	CreateService(ctx context.Context, s *Service) error
	GetService(ctx context.Context, id uint) (*Service, error)
	ListServices(ctx context.Context) ([]Service, error)
	UpdateService(ctx context.Context, s *Service) (bool, error)
	DeleteService(ctx context.Context, id uint) (bool, error)

	CreateGroup(ctx context.Context, g *Group) error
	GetGroup(ctx context.Context, id uint) (*Group, error)
	ListGroups(ctx context.Context) ([]Group, error)
	UpdateGroup(ctx context.Context, g *Group) (bool, error)
	DeleteGroup(ctx context.Context, id uint) (bool, error)

	Checker
}

// Checker answers existence questions for other modules.
type Checker interface {
	ManufacturerExists(ctx context.Context, id uint) (bool, error)
	DeviceExists(ctx context.Context, id uint) (bool, error)
	PartExists(ctx context.Context, id uint) (bool, error)
	ServiceExists(ctx context.Context, id uint) (bool, error)
	GroupExists(ctx context.Context, id uint) (bool, error)
}
