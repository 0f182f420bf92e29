package app

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	catalog "github.com/tair/repair-manager/internal/catalog/domain"
	inventory "github.com/tair/repair-manager/internal/inventory/domain"
	pricing "github.com/tair/repair-manager/internal/pricing/domain"
	user "github.com/tair/repair-manager/internal/user/domain"
	workflow "github.com/tair/repair-manager/internal/workflow/domain"
	workorder "github.com/tair/repair-manager/internal/workorder/domain"
	workorderrepo "github.com/tair/repair-manager/internal/workorder/repository"
	"github.com/tair/repair-manager/pkg/auth"
	"github.com/tair/repair-manager/pkg/logger"
)

// SeedOptions controls the demo data.
type SeedOptions struct {
	AdminUsername string
	AdminPassword string
	CodeFormat    workorder.CodeFormat
}

// Seed inserts demo reference data. Rows are matched on their natural keys,
// so running it again changes nothing.
func Seed(ctx context.Context, db *gorm.DB, opts SeedOptions) error {
	if opts.AdminUsername == "" {
		opts.AdminUsername = "admin"
	}
	if opts.CodeFormat.Prefix == "" {
		opts.CodeFormat = workorder.DefaultCodeFormat
	}

	var (
		hq      catalog.Group
		phone   catalog.Device
		screen  catalog.Part
		battery catalog.Part
		repair  catalog.Service
		program workflow.RepairProgram
	)

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admin := user.Role{
			Name: "Administrator", Description: "Full access",
			CanManageUsers: true, CanManageInventory: true, CanManageCatalog: true,
			CanCreateWorkOrders: true, CanEditWorkOrders: true, CanDeleteWorkOrders: true,
			CanManagePrograms: true, CanManageWorkflows: true,
		}
		roles := []*user.Role{
			&admin,
			{Name: "Technician", Description: "Works repairs", CanCreateWorkOrders: true, CanEditWorkOrders: true},
			{Name: "Front Desk", Description: "Books repairs", CanCreateWorkOrders: true},
		}
		for _, r := range roles {
			if err := tx.Where("name = ?", r.Name).FirstOrCreate(r).Error; err != nil {
				return fmt.Errorf("failed to seed role %s: %w", r.Name, err)
			}
		}

		hq = catalog.Group{Code: "HQ", Description: "Main shop", City: "Springfield", Country: "US"}
		north := catalog.Group{Code: "NORTH", Description: "North branch", City: "Shelbyville", Country: "US"}
		for _, g := range []*catalog.Group{&hq, &north} {
			if err := tx.Where("code = ?", g.Code).FirstOrCreate(g).Error; err != nil {
				return fmt.Errorf("failed to seed group %s: %w", g.Code, err)
			}
		}

		var existing int64
		if err := tx.Model(&user.User{}).Where("username = ?", opts.AdminUsername).Count(&existing).Error; err != nil {
			return err
		}
		if existing == 0 {
			if opts.AdminPassword == "" {
				return fmt.Errorf("an admin password is required to create user %s", opts.AdminUsername)
			}
			hash, err := auth.HashPassword(opts.AdminPassword)
			if err != nil {
				return err
			}
			u := user.User{
				Username: opts.AdminUsername, PasswordHash: hash, FullName: "Administrator",
				RoleID: admin.ID, GroupID: &hq.ID, IsAdmin: true, IsActive: true,
			}
			if err := tx.Create(&u).Error; err != nil {
				return fmt.Errorf("failed to seed admin user: %w", err)
			}
		}

		acme := catalog.Manufacturer{Name: "Acme", Description: "Handsets and tablets"}
		if err := tx.Where("name = ?", acme.Name).FirstOrCreate(&acme).Error; err != nil {
			return err
		}
		phone = catalog.Device{Name: "Acme Phone X", SKU: "ACM-PX", ManufacturerID: &acme.ID}
		if err := tx.Where("sku = ?", phone.SKU).FirstOrCreate(&phone).Error; err != nil {
			return err
		}
		screen = catalog.Part{Name: "Phone X screen", SKU: "ACM-PX-SCR", ManufacturerID: &acme.ID, DeviceID: &phone.ID}
		battery = catalog.Part{Name: "Phone X battery", SKU: "ACM-PX-BAT", ManufacturerID: &acme.ID, DeviceID: &phone.ID}
		for _, p := range []*catalog.Part{&screen, &battery} {
			if err := tx.Where("sku = ?", p.SKU).FirstOrCreate(p).Error; err != nil {
				return err
			}
		}
		repair = catalog.Service{Name: "Screen replacement", SKU: "SRV-SCR", DeviceID: &phone.ID}
		if err := tx.Where("sku = ?", repair.SKU).FirstOrCreate(&repair).Error; err != nil {
			return err
		}

		statuses := []string{"Received", "Diagnosing", "Repairing", "Completed"}
		wf := workflow.RepairWorkflow{Name: "Standard repair", Statuses: statuses}
		if err := tx.Where("name = ?", wf.Name).FirstOrCreate(&wf).Error; err != nil {
			return err
		}
		program = workflow.RepairProgram{Name: "Walk-in", Description: "Standard walk-in repair", RepairWorkflowID: wf.ID}
		if err := tx.Where("name = ?", program.Name).FirstOrCreate(&program).Error; err != nil {
			return err
		}
		for i, s := range statuses {
			sc := workflow.StatusCode{Code: s, IsActive: true, SortOrder: i + 1}
			if err := tx.Where("code = ?", sc.Code).FirstOrCreate(&sc).Error; err != nil {
				return err
			}
		}

		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		pct := 10
		prices := []pricing.CatalogPricing{
			{BasePrice: decimal.NewFromInt(120), DiscountPercentage: &pct, EffectiveDate: start},
			{BasePrice: decimal.NewFromInt(80), EffectiveDate: start},
			{BasePrice: decimal.NewFromInt(35), EffectiveDate: start},
		}
		prices[0].SetItem(pricing.ItemService, repair.ID)
		prices[1].SetItem(pricing.ItemPart, screen.ID)
		prices[2].SetItem(pricing.ItemPart, battery.ID)
		itemColumn := map[pricing.ItemType]string{
			pricing.ItemDevice:  "device_id",
			pricing.ItemPart:    "part_id",
			pricing.ItemService: "service_id",
		}
		for i := range prices {
			p := &prices[i]
			err := tx.Where("item_type = ? AND "+itemColumn[p.ItemType]+" = ?", p.ItemType, p.ItemID()).
				FirstOrCreate(p).Error
			if err != nil {
				return fmt.Errorf("failed to seed pricing: %w", err)
			}
		}

		stock := []inventory.InventoryItem{
			{GroupID: hq.ID, CatalogItemType: inventory.ItemPart, CatalogItemID: screen.ID, Quantity: 5, MinimumQuantity: 2},
			{GroupID: hq.ID, CatalogItemType: inventory.ItemPart, CatalogItemID: battery.ID, Quantity: 2, MinimumQuantity: 2},
			{GroupID: north.ID, CatalogItemType: inventory.ItemPart, CatalogItemID: screen.ID, Quantity: 1, MinimumQuantity: 1},
		}
		for i := range stock {
			s := &stock[i]
			s.LastUpdated = time.Now().UTC()
			err := tx.Where("group_id = ? AND catalog_item_type = ? AND catalog_item_id = ?", s.GroupID, s.CatalogItemType, s.CatalogItemID).
				FirstOrCreate(s).Error
			if err != nil {
				return fmt.Errorf("failed to seed inventory: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Work orders take their codes from the sequence, which runs its own transaction.
	var orders int64
	if err := db.WithContext(ctx).Model(&workorder.WorkOrder{}).Count(&orders).Error; err != nil {
		return err
	}
	if orders == 0 {
		repo := workorderrepo.NewGormRepository(db, opts.CodeFormat)
		wo := &workorder.WorkOrder{
			DeviceID:         phone.ID,
			ServiceID:        repair.ID,
			RepairProgramID:  program.ID,
			GroupID:          &hq.ID,
			CustomerName:     "Jane Doe",
			CustomerPhone:    "555-0100",
			IssueDescription: "Cracked screen",
			CurrentStatus:    "Received",
			PartIDs:          []uint{screen.ID},
			Version:          1,
			CreatedAt:        time.Now().UTC(),
		}
		if err := repo.Create(ctx, wo); err != nil {
			return fmt.Errorf("failed to seed work order: %w", err)
		}
	}

	logger.Info(ctx).Msg("demo data seeded")
	return nil
}
