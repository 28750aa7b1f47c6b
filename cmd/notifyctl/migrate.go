package main

import (
	"fmt"

	"github.com/cmlabs-hris/hris-notify/internal/pkg/database"
	"github.com/cmlabs-hris/hris-notify/internal/repository/postgresql"
	"github.com/spf13/cobra"
)

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables and indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.NewPostgreSQLDB(cmd.Context(), c.cfg.DatabaseURL())
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgresql.ApplySchema(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema applied")
			return nil
		},
	}
}
