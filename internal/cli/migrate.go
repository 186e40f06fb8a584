package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the patient tables in the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := OpenRepository(cmd.Context(), a.cfg.Storage, a.log, true)
			if err != nil {
				return err
			}
			defer repo.Close()
			n, err := repo.Count(cmd.Context())
			if err != nil {
				return err
			}
			a.log.Info("store ready", zap.String("backend", a.cfg.Storage.Backend), zap.Int("patients", n))
			fmt.Fprintf(cmd.OutOrStdout(), "store ready (%s, %d patients)\n", a.cfg.Storage.Backend, n)
			return nil
		},
	}
}
