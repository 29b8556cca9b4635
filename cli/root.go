// Package cli wires the bookminder commands: serve, migrate and seed.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bookminder/app"
	"bookminder/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// runtime holds what PersistentPreRunE resolved for the subcommands.
type runtime struct {
	cfg    config.Config
	logger *zap.Logger
}

func NewRootCommand() *cobra.Command {
	rt := &runtime{}
	v := viper.New()

	root := &cobra.Command{
		Use:           "bookminder",
		Short:         "Book lending service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()
			if err := config.Bind(v, cmd.Flags()); err != nil {
				return err
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			logger, err := app.NewLogger(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			rt.cfg, rt.logger = cfg, logger.With(zap.String("app", "bookminder"))
			return nil
		},
	}
	config.RegisterFlags(root.PersistentFlags())

	serve := newServeCommand(rt)
	root.AddCommand(serve, newMigrateCommand(rt), newSeedCommand(rt))

	// bare "bookminder" behaves like "bookminder serve"
	root.RunE = serve.RunE
	return root
}

// Execute runs the root command until it returns or SIGINT/SIGTERM arrives.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "%s\n", err)
		}
		return 1
	}
	return 0
}

// openApp connects the configured stores.
func openApp(ctx context.Context, rt *runtime) (*app.App, error) {
	a, err := app.New(ctx, rt.cfg, rt.logger)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", rt.cfg.Store, err)
	}
	return a, nil
}
