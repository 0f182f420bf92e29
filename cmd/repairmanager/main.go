package main

import (
	_ "github.com/tair/repair-manager/docs"
	"github.com/tair/repair-manager/internal/cmd"
)

// @title Repair Manager API
// @version 1.0
// @description Work orders, repair workflows, catalog pricing and parts inventory for a repair shop.

// @contact.name API Support
// @contact.email support@example.com

// @license.name MIT

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name WorkOrders
// @tag.description Work-order lifecycle
// @tag.name Pricing
// @tag.description Catalog pricing and price resolution
// @tag.name Inventory
// @tag.description Parts and device stock per shop group
func main() {
	cmd.Execute()
}
