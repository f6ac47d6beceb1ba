package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sentryline-systems/sentryline-etl/etl/internal/repository"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply warehouse schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := repository.Migrate(cfg.Postgres.URL); err != nil {
			return err
		}
		fmt.Println("Database migrations completed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
