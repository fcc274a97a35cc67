package main

import (
	"encoding/json"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"eduvista/site/internal/app/bootstrap"
	"eduvista/site/internal/domain/scheduler"
)

func newSchedulerCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scheduler",
		Short: "Publish scheduled blog posts, social posts and campaigns",
	}

	var kind string
	runOnce := &cobra.Command{
		Use:   "run-once",
		Short: "Process every due item once and print the reports as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.build(cmd.Context(), func(app bootstrap.Result, logger *logrus.Logger) error {
				var (
					reports []scheduler.Report
					runErr  error
				)
				if kind != "" {
					report, err := app.Services.Scheduler.Process(cmd.Context(), kind)
					reports, runErr = []scheduler.Report{report}, err
				} else {
					reports, runErr = app.Services.Scheduler.RunOnce(cmd.Context())
				}

				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				if err := encoder.Encode(reports); err != nil {
					return err
				}
				if runErr != nil {
					logger.WithError(runErr).Error("scheduler run finished with errors")
				}
				return runErr
			})
		},
	}
	runOnce.Flags().StringVar(&kind, "kind", "", "only process one kind (blog, social or newsletter)")

	cmd.AddCommand(runOnce)
	return cmd
}
