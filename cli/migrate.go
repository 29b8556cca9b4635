package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables and unique indexes for the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), rt)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Migrate(cmd.Context()); err != nil {
				return err
			}
			rt.logger.Info("migration complete", zap.String("store", rt.cfg.Store))
			return nil
		},
	}
}
