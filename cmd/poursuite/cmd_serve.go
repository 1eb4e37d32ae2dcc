package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poursuite/internal/httpapi"
	"poursuite/internal/logging"
	"poursuite/internal/metrics"
	"poursuite/internal/search"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the authenticated HTTP search API",
	Long: `Starts the HTTP server exposing /search, /search/export and /stats,
protected by the X-API-Key header. Every request runs under the configured
wall-clock deadline; truncated responses carry the X-Truncated header.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer func() {
		if err := cat.Close(); err != nil {
			logger.Warn("catalog close", zap.Error(err))
		}
	}()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	engine := search.New(cat, cfg.Search, logger, m)

	server := httpapi.NewServer(engine, cat, cfg, logger,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	audit, err := logging.OpenAuditTrail(cfg.OutputDir)
	if err != nil {
		logger.Warn("audit trail disabled", zap.Error(err))
	} else {
		defer audit.Close()
		server.WithAudit(audit)
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTP.ListenAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTP.ListenAddr))
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Warn("http shutdown", zap.Error(err))
		}
	}
	return nil
}
