package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tair/repair-manager/internal/app"
	workorder "github.com/tair/repair-manager/internal/workorder/domain"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, cleanup, err := app.ProvideDatabase(cfg)
		if err != nil {
			return err
		}
		defer cleanup()
		return app.Migrate(cmd.Context(), db)
	},
}

var (
	adminUsername string
	adminPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Migrate and insert demo data",
	Long: `Migrates the schema, then inserts roles, an admin user, two shop groups,
a small catalog with prices and stock, a standard workflow and one work order.
Existing rows are left untouched, so the command can be re-run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, cleanup, err := app.ProvideDatabase(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := app.Migrate(cmd.Context(), db); err != nil {
			return err
		}
		format := workorder.DefaultCodeFormat
		format.Prefix = cfg.WorkOrders.CodePrefix
		return app.Seed(cmd.Context(), db, app.SeedOptions{
			AdminUsername: adminUsername,
			AdminPassword: adminPassword,
			CodeFormat:    format,
		})
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd, seedCmd)
	seedCmd.Flags().StringVar(&adminUsername, "admin-username", "admin", "username of the seeded administrator")
	seedCmd.Flags().StringVar(&adminPassword, "admin-password", "", "password of the seeded administrator (required on first run)")
}
