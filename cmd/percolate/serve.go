package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/martinemde/percolate/config"
	"github.com/martinemde/percolate/httpapi"
	"github.com/martinemde/percolate/workflow"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve workflow runs over HTTP",
	Long: `Starts an HTTP server exposing POST /api/runs (server-sent events),
GET /healthz, and GET /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		modelConfigPath, _ := cmd.Flags().GetString("model-config")

		settings, err := config.Load()
		if err != nil {
			return err
		}
		mf, err := config.LoadModelFile(modelConfigPath)
		if err != nil {
			return err
		}
		settings.Merge(mf)
		logger := settings.Logger()

		client, provider, model, err := settings.NewClient()
		if err != nil {
			return err
		}
		defer client.Close()

		factory := func() *workflow.Coordinator {
			return workflow.NewCoordinator(client, settings.WorkflowConfig(provider, model, logger))
		}
		server := httpapi.NewServer(factory, logger)

		srv := &http.Server{
			Addr:              settings.ListenAddr,
			Handler:           server.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("listening", "addr", settings.ListenAddr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
