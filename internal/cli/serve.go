package cli

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nonibytes/patientstore/internal/api"
	"github.com/nonibytes/patientstore/internal/metrics"
	"github.com/nonibytes/patientstore/internal/telemetry"
)

func newServeCommand(a *app) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the patient HTTP API on the configured address. The store schema is
created on first start. SIGINT or SIGTERM shuts the server down gracefully.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := a.cfg
			if listen != "" {
				cfg.Server.ListenAddress = listen
			}

			shutdownTracing, err := telemetry.Setup(ctx, cfg.Tracing, nil, a.log)
			if err != nil {
				return err
			}
			defer func() {
				if err := shutdownTracing(context.Background()); err != nil {
					a.log.Warn("tracing shutdown", zap.Error(err))
				}
			}()

			repo, err := OpenRepository(ctx, cfg.Storage, a.log, true)
			if err != nil {
				return err
			}
			defer repo.Close()

			var m *metrics.Collector
			if cfg.Metrics.Enabled {
				m = metrics.New()
			}
			srv := api.NewServer(repo, a.log, m, api.Options{
				ServiceName:    cfg.Tracing.ServiceName,
				RequestTimeout: cfg.Server.RequestTimeout,
				MetricsPath:    cfg.Metrics.Path,
			})

			a.log.Info("serving patients",
				zap.String("backend", cfg.Storage.Backend),
				zap.String("addr", cfg.Server.ListenAddress),
				zap.Bool("metrics", cfg.Metrics.Enabled),
			)
			return api.Serve(ctx, cfg.Server, srv.Router(), a.log)
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "override listen address")
	return cmd
}
