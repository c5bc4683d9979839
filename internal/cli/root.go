// Package cli defines the cobra command tree for rentalctl.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zatekoja/vacationrentals/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/vacationrentals/internal/infrastructure/observability"
	"github.com/zatekoja/vacationrentals/pkg/config"
)

var flagFormat string

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rentalctl",
		Short:         "Maintenance tasks for the vacation rentals backend",
		Long:          "Apply schema migrations, complete ended stays and rebuild the property search index.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flagFormat != "text" && flagFormat != "json" {
				return fmt.Errorf("invalid --format %q (text|json)", flagFormat)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")

	root.AddCommand(
		newMigrateCmd(),
		newCompleteStaysCmd(),
		newReindexCmd(),
	)

	return root
}

// loadConfig reads configuration and sets up the logger for a command run
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	observability.InitLogger("rentalctl", cfg.Logging.Env, cfg.Logging.Level)
	return cfg, nil
}

func openDB(cfg *config.Config) (*postgres.Client, error) {
	client, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return client, nil
}

// closeDB closes the database, logging any error to stderr.
func closeDB(client *postgres.Client) {
	if err := client.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}

// report prints a result as JSON or as the text line
func report(out io.Writer, result map[string]interface{}, text string) error {
	if flagFormat == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	_, err := fmt.Fprintln(out, text)
	return err
}
