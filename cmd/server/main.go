package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/agenthands/orgchart/internal/config"
	"github.com/agenthands/orgchart/internal/core"
	"github.com/agenthands/orgchart/internal/driver"
	"github.com/agenthands/orgchart/internal/logging"
	"github.com/agenthands/orgchart/internal/server"
)

const defaultConfigPath = "config/config.toml"

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, using defaults")
	}

	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to the TOML config file")
	flag.Parse()

	cfg, err := config.Load(resolveConfigPath(*configPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("Server failed")
	}
}

// resolveConfigPath falls back to the default file only when it exists.
func resolveConfigPath(path string) string {
	if path != "" {
		return path
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return defaultConfigPath
	}
	return ""
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := driver.Open(ctx, cfg, log)
	if err != nil {
		return err
	}

	oc := core.NewOrgchart(client, core.Options{
		FanOut:       cfg.Concurrency.FanOut,
		PresidencyID: cfg.Graph.PresidencyID,
	}, log)
	defer func() {
		if err := oc.Close(context.Background()); err != nil {
			log.WithError(err).Warn("Failed to close graph client")
		}
	}()

	srv := server.NewServer(oc, server.OptionsFromConfig(cfg), log)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.SetupRouter(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"port":    cfg.Server.Port,
			"backend": cfg.Graph.Backend,
		}).Info("Starting server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Shutdown())
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("Server exited")
	return nil
}
