package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zatekoja/vacationrentals/internal/adapters/database"
	"github.com/zatekoja/vacationrentals/internal/adapters/search"
	"github.com/zatekoja/vacationrentals/internal/application/services"
	"github.com/zatekoja/vacationrentals/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/vacationrentals/pkg/validation"
)

func newReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the property search index",
		Long:  "Push every ACTIVE property into the Typesense collection, creating it when missing.",
		Args:  cobra.NoArgs,
		RunE:  runReindex,
	}
}

func runReindex(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer closeDB(client)

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return fmt.Errorf("connecting to typesense: %w", err)
	}
	index := search.NewTypesenseAdapter(tsClient)
	if err := index.InitSchema(cmd.Context()); err != nil {
		return fmt.Errorf("initialising search schema: %w", err)
	}

	propertyService := services.NewPropertyService(
		database.NewPropertyAdapter(client),
		index,
		nil,
		validation.New(),
		cfg.Payments.Currency,
	)

	indexed, err := propertyService.Reindex(cmd.Context())
	if err != nil {
		return fmt.Errorf("reindexed %d properties before failing: %w", indexed, err)
	}

	return report(cmd.OutOrStdout(), map[string]interface{}{"indexed": indexed}, fmt.Sprintf("%d properties indexed.", indexed))
}
