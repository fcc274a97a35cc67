// Command sitectl runs maintenance tasks against the eduvista database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"eduvista/site/internal/app/bootstrap"
	"eduvista/site/internal/platform/config"
	applog "eduvista/site/internal/platform/log"
)

type rootOptions struct {
	envFile  string
	logLevel string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "sitectl",
		Short:         "Maintenance commands for the eduvista site",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override LOG_LEVEL")

	cmd.AddCommand(
		newMigrateCmd(opts),
		newAdminCmd(opts),
		newSchedulerCmd(opts),
		newSubscribersCmd(opts),
	)
	return cmd
}

func (o *rootOptions) load() (*config.Config, *logrus.Logger, error) {
	if o.envFile != "" {
		_ = godotenv.Load(o.envFile)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, eris.Wrap(err, "loading configuration")
	}

	level := cfg.LogLevel
	if o.logLevel != "" {
		level = o.logLevel
	}
	logger, err := applog.NewLogger(level)
	if err != nil {
		return nil, nil, err
	}
	logger.SetOutput(os.Stderr)
	return cfg, logger, nil
}

// build wires the full application and hands it to fn.
func (o *rootOptions) build(ctx context.Context, fn func(bootstrap.Result, *logrus.Logger) error) error {
	cfg, logger, err := o.load()
	if err != nil {
		return err
	}

	app, err := bootstrap.Build(ctx, bootstrap.Dependencies{Config: *cfg, Logger: logger})
	if err != nil {
		return eris.Wrap(err, "bootstrapping application")
	}
	defer func() {
		if closeErr := app.Cleanup(); closeErr != nil {
			logger.WithError(closeErr).Error("cleaning up application resources")
		}
	}()

	return fn(app, logger)
}
