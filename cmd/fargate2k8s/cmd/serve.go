package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrg444/Cygni/pkg/config"
	"github.com/patrg444/Cygni/pkg/migration"
	"github.com/patrg444/Cygni/pkg/operation"
	"github.com/patrg444/Cygni/pkg/stats"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the conversion over HTTP",
	Long: `Start an HTTP server converting task definitions on request.

Endpoints:
- POST /convert   body {"taskDefinition": {...}, "service": {...}}, ?format=yaml|json
- GET  /health    liveness check
- GET  /metrics   Prometheus metrics

The server only transforms documents, it never contacts a cluster.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig(cmd.Flags())
		if err != nil {
			return err
		}

		gin.SetMode(gin.ReleaseMode)
		runner := migration.NewRunner(afero.NewOsFs(), cmd.OutOrStdout(), stats.NewMetricsRecorder(), cfg)
		server := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           operation.NewRouter(runner, runner.Metrics()),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			klog.Infof("🚀 Starting fargate2k8s API on :%s", cfg.Port)
			if cfg.Namespace != "" {
				klog.Infof("   Namespace: %s", cfg.Namespace)
			}
			errCh <- server.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			klog.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String(config.KeyPort, getEnvOrDefault("PORT", "8080"), "HTTP server port")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
