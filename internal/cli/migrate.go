package cli

import (
	"github.com/spf13/cobra"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/db/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update every table",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
		return migrate.Up(cmd.Context(), e.db, e.log)
	}),
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
