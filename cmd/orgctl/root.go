package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/agenthands/orgchart/internal/config"
	"github.com/agenthands/orgchart/internal/core"
	"github.com/agenthands/orgchart/internal/driver"
	"github.com/agenthands/orgchart/internal/logging"
)

type opener func(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (driver.GraphClient, error)

type app struct {
	configPath string
	backend    string
	sqlitePath string

	out  io.Writer
	logw io.Writer
	open opener
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "orgctl",
		Short:         "Query the organisation chart without the HTTP server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to the TOML config file")
	cmd.PersistentFlags().StringVar(&a.backend, "backend", "", "Graph backend (memgraph or sqlite)")
	cmd.PersistentFlags().StringVar(&a.sqlitePath, "sqlite-path", "", "Path to a SQLite export")

	cmd.AddCommand(newPortfoliosCmd(a))
	cmd.AddCommand(newDepartmentsCmd(a))
	cmd.AddCommand(newPrimeMinisterCmd(a))
	cmd.AddCommand(newTimelineCmd(a))
	return cmd
}

// withOrgchart loads configuration, applies flag overrides, and runs fn against a
// connected orgchart.
func (a *app) withOrgchart(ctx context.Context, fn func(*core.Orgchart) error) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return withCode(exitUsage, err)
	}
	if b := strings.TrimSpace(a.backend); b != "" {
		cfg.Graph.Backend = b
	}
	if p := strings.TrimSpace(a.sqlitePath); p != "" {
		cfg.SQLite.Path = p
	}
	if err := cfg.Validate(); err != nil {
		return withCode(exitUsage, err)
	}

	log := logging.NewWithOutput(a.logw, cfg.Log.Level, cfg.Log.Format)
	client, err := a.open(ctx, cfg, log)
	if err != nil {
		return withCode(exitBackend, err)
	}

	oc := core.NewOrgchart(client, core.Options{
		FanOut:       cfg.Concurrency.FanOut,
		PresidencyID: cfg.Graph.PresidencyID,
	}, log)
	defer oc.Close(context.Background())

	return fn(oc)
}

func requireFlag(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return withCode(exitUsage, fmt.Errorf("--%s is required", name))
	}
	return nil
}

func Execute() {
	_ = godotenv.Load()

	a := &app{out: os.Stdout, logw: os.Stderr, open: driver.Open}
	if err := newRootCmd(a).Execute(); err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}
