package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/khanhnv2901/seca-scan/internal/api"
	"github.com/khanhnv2901/seca-scan/internal/checker"
	"github.com/khanhnv2901/seca-scan/internal/history"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scanner as a REST API service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig.Server
		out := cmd.OutOrStdout()

		httpServer := &http.Server{
			Addr:         cfg.Addr,
			Handler:      newAPIServer(cfg),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 0, // history-stream connections stay open
			IdleTimeout:  120 * time.Second,
		}

		// Channel to listen for errors from the server
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Fprintf(out, "%s API server listening on %s\n", colorInfo("→"), cfg.Addr)
			fmt.Fprintf(out, "%s Press Ctrl+C to gracefully shutdown\n", colorInfo("→"))
			logger.Info("server_started", zap.String("addr", cfg.Addr))
			serverErrors <- httpServer.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
		case sig := <-shutdown:
			fmt.Fprintf(out, "\n%s Received signal %v, initiating graceful shutdown...\n", colorInfo("→"), sig)

			ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()

			if err := httpServer.Shutdown(ctx); err != nil {
				// Force close if graceful shutdown fails
				if closeErr := httpServer.Close(); closeErr != nil {
					return fmt.Errorf("failed to gracefully shutdown server: %w (close error: %v)", err, closeErr)
				}
				return fmt.Errorf("failed to gracefully shutdown server: %w", err)
			}

			logger.Info("server_stopped")
			fmt.Fprintf(out, "%s Server shutdown complete\n", colorInfo("✓"))
		}

		return nil
	},
}

func newAPIServer(cfg ServerConfig) *api.Server {
	return api.NewServer(api.Config{
		Scanner:           checker.NewScanner(newFetcher(), logger),
		History:           history.NewStore(cfg.HistoryLimit),
		Logger:            logger,
		CORSOrigins:       cfg.CORSOrigins,
		ScanRateLimit:     cfg.RateLimit,
		ScanRateBurst:     cfg.RateBurst,
		TrustProxyHeaders: cfg.TrustProxy,
	})
}

func init() {
	flags := serveCmd.Flags()
	flags.StringVar(&appConfig.Server.Addr, "addr", appConfig.Server.Addr, "Address for the API server")
	flags.StringSliceVar(&appConfig.Server.CORSOrigins, "cors-origins", appConfig.Server.CORSOrigins, "Allowed CORS origins (empty = allow all)")
	flags.IntVar(&appConfig.Server.RateLimit, "rate-limit", appConfig.Server.RateLimit, "Scan requests per minute per client (0 = disabled)")
	flags.IntVar(&appConfig.Server.RateBurst, "rate-burst", appConfig.Server.RateBurst, "Scan rate limit burst size")
	flags.BoolVar(&appConfig.Server.TrustProxy, "trust-proxy", appConfig.Server.TrustProxy, "Take the client IP from X-Forwarded-For")
	flags.IntVar(&appConfig.Server.HistoryLimit, "history-limit", appConfig.Server.HistoryLimit, "Maximum scan records kept in memory (0 = unlimited)")
	flags.DurationVar(&appConfig.Server.ShutdownTimeout, "shutdown-timeout", appConfig.Server.ShutdownTimeout, "Graceful shutdown timeout")
}
