package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"lso-service/internal/app"
	"lso-service/internal/config"
	"lso-service/internal/http-server/router"
	"lso-service/pkg/sl"
)

func main() {
	cfg := config.MustLoad()

	log, logFile := app.SetupLogger(cfg.Env, cfg.LogFile)

	log.Info("Starting API", slog.String("env", cfg.Env), slog.String("storage", cfg.Storage.Driver))
	log.Debug("Debug messages are enabled")

	application, err := app.New(context.Background(), cfg, log, logFile)
	if err != nil {
		log.Error("Failed to init application", sl.Err(err))
		os.Exit(1)
	}

	serv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router.New(log, application.Service, cfg.HTTPServer.AllowedOrigins),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErrCh := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", slog.String("addr", cfg.Address))
		if err := serv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			log.Error("HTTP server stopped unexpectedly", sl.Err(err))
		} else {
			log.Info("HTTP server stopped gracefully")
		}
	}

	shutdownTimeout := cfg.HTTPServer.ShutdownTimeout

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server", slog.String("timeout", shutdownTimeout.String()))

	if err := serv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", sl.Err(err))
	} else {
		log.Info("Server shutdown complete")
	}

	log.Info("Shutdown finished, server stopped")

	if err := application.Close(); err != nil {
		log.Error("Failed to close application", sl.Err(err))
	}
}
