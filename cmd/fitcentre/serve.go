// ABOUTME: CLI command for serving the JSON API over HTTP.
// ABOUTME: Runs the gin router until interrupted, then shuts down gracefully.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/fitcentre/internal/api"
	"github.com/harperreed/fitcentre/internal/logging"
	"github.com/harperreed/fitcentre/internal/report"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API",
	Long: `Serve the member registry as a JSON API.

ROUTES:

  GET/POST          /api/members
  GET/PUT/DELETE    /api/members/:email
  GET/POST          /api/assessments          ?email=&from=&to=&limit=
  GET/PUT/DELETE    /api/assessments/:email/:date
  GET/POST          /api/conditions           ?email=&q=&severity=
  GET/PUT/DELETE    /api/conditions/:email/:name
  GET               /api/dashboard
  GET               /healthz

EXAMPLES:

  fitcentre serve
  fitcentre serve --addr 127.0.0.1:9000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.GetHTTPAddr()
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}
		if cfg.GetLogLevel() != "debug" {
			gin.SetMode(gin.ReleaseMode)
		}

		srv := &http.Server{
			Addr:              addr,
			Handler:           api.Router(repo, report.WithBins(cfg.GetHistogramBins())),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := logging.WithComponent("api")
		errCh := make(chan error, 1)
		go func() {
			log.WithField("addr", addr).Info("listening")
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default :8080)")
	rootCmd.AddCommand(serveCmd)
}
