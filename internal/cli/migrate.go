package cli

import (
	"github.com/spf13/cobra"

	"github.com/zatekoja/vacationrentals/internal/adapters/database"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations",
		Long:  "Create or update every table and index. Migrations are idempotent and safe to re-run.",
		Args:  cobra.NoArgs,
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer closeDB(client)

	if err := database.Migrate(cmd.Context(), client.DB()); err != nil {
		return err
	}

	return report(cmd.OutOrStdout(), map[string]interface{}{"migrated": true}, "Migrations applied.")
}
