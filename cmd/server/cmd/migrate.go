package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/udayana-events/server/internal/storage/postgres"
)

var (
	migrationsPath string
	migrateSteps   int
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down]",
	Short: "Run database schema migrations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}

		switch args[0] {
		case "up":
			if err := postgres.MigrateUp(cfg.Database.URL, migrationsPath); err != nil {
				return err
			}
			fmt.Println("migrations applied")
			return nil
		case "down":
			if err := postgres.MigrateDown(cfg.Database.URL, migrationsPath, migrateSteps); err != nil {
				return err
			}
			fmt.Printf("rolled back %d step(s)\n", migrateSteps)
			return nil
		default:
			return fmt.Errorf("unknown direction %q (want up or down)", args[0])
		}
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrationsPath, "path", postgres.DefaultMigrationsPath, "migrations directory")
	migrateCmd.Flags().IntVar(&migrateSteps, "steps", 1, "steps to roll back (down only)")
}
