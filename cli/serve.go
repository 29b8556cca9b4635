package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"bookminder/routes"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, rt)
			if err != nil {
				return err
			}
			defer a.Close()

			if rt.cfg.AutoMigrate {
				if err := a.Migrate(ctx); err != nil {
					return err
				}
			}
			routes.RegisterRoutes(a)

			srv := &http.Server{
				Addr:              ":" + rt.cfg.Port,
				Handler:           a.Router,
				ReadHeaderTimeout: 5 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				rt.logger.Info("listening", zap.String("addr", srv.Addr), zap.String("store", rt.cfg.Store))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			rt.logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
