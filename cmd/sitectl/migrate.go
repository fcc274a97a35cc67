package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"eduvista/site/internal/app/bootstrap"
	"eduvista/site/internal/data/database"
	"eduvista/site/internal/data/migrations"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}

			db, err := bootstrap.OpenDatabase(*cfg)
			if err != nil {
				return eris.Wrap(err, "opening database")
			}
			defer func() {
				if closeErr := database.Close(db); closeErr != nil {
					logger.WithError(closeErr).Error("closing database")
				}
			}()

			if err := migrations.Migrate(cmd.Context(), db, logger); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", cfg.DBDriver)
			return nil
		},
	}
}
