package main

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"eduvista/site/internal/app/bootstrap"
	"eduvista/site/internal/domain/newsletter"
)

func newSubscribersCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscribers",
		Short: "Work with newsletter subscribers",
	}

	var (
		status string
		output string
	)
	export := &cobra.Command{
		Use:   "export",
		Short: "Write subscribers as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			subscriberStatus := newsletter.SubscriberStatus(status)
			if status != "" && !subscriberStatus.Valid() {
				return eris.Errorf("unknown status %q", status)
			}

			return opts.build(cmd.Context(), func(app bootstrap.Result, logger *logrus.Logger) error {
				subscribers, err := app.Services.Newsletter.ExportSubscribers(cmd.Context(), subscriberStatus)
				if err != nil {
					return err
				}

				var w io.Writer = cmd.OutOrStdout()
				if output != "" && output != "-" {
					file, err := os.Create(output)
					if err != nil {
						return eris.Wrapf(err, "creating %s", output)
					}
					defer file.Close()
					w = file
				}

				if err := newsletter.WriteCSV(w, subscribers); err != nil {
					return err
				}
				logger.WithField("count", len(subscribers)).Info("exported subscribers")
				return nil
			})
		},
	}
	export.Flags().StringVar(&status, "status", "", "filter by status (subscribed or unsubscribed)")
	export.Flags().StringVarP(&output, "output", "o", "-", "output file, - for stdout")

	cmd.AddCommand(export)
	return cmd
}
