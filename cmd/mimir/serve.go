package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/harunnryd/mimir/cmd/mimir/runtime"

	"github.com/harunnryd/mimir/internal/config"
	"github.com/harunnryd/mimir/internal/daemon"
	"github.com/harunnryd/mimir/internal/daemon/components"
	"github.com/harunnryd/mimir/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long:  `Serves /api/chat, /api/mimir, /api/ingest, /api/search and /healthz until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			return fmt.Errorf("config not loaded")
		}
		forceClean, _ := cmd.Flags().GetBool("force-clean-locks")

		d, err := daemon.New(cfg)
		if err != nil {
			return fmt.Errorf("failed to create daemon: %w", err)
		}

		storeComp := components.NewStoreWorkerComponent(cfg.Vector, forceClean)

		var rt *runtime.RuntimeComponents
		factory := func(ctx context.Context) (http.Handler, error) {
			built, err := runtime.NewRuntimeBuilder().
				WithContext(ctx).
				WithConfig(cfg).
				WithStore(storeComp.Worker()).
				Build()
			if err != nil {
				return nil, err
			}
			rt = built

			deps := built.ServerDeps()
			deps.Health = func(ctx context.Context) map[string]error {
				health := d.ComponentHealth(ctx)
				health["Models"] = built.Router.Health(ctx)
				return health
			}
			return server.New(deps).Handler(), nil
		}
		httpComp := components.NewHTTPServerComponent(cfg.Server, factory, components.StoreWorkerName)

		d.AddComponent(storeComp)
		d.AddComponent(httpComp)

		slog.Info("Mimir starting", "port", cfg.Server.Port)
		err = d.Run(cmd.Context())
		if rt != nil {
			rt.Stop()
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("serve failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Int("server.port", config.DefaultServerPort, "HTTP port")
	serveCmd.Flags().Bool("force-clean-locks", false, "remove a stale vector store lock left by a crashed process")
}
