package driver

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/agenthands/orgchart/internal/config"
)

// Open connects the graph client selected by cfg.Graph.Backend.
func Open(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (GraphClient, error) {
	switch cfg.Graph.Backend {
	case config.BackendMemgraph:
		m := cfg.Memgraph
		d, err := NewMemgraphDriver(ctx, m.URI, m.User, m.Password, PoolOptions{
			MaxConnectionPoolSize:        m.MaxPoolSize,
			ConnectionAcquisitionTimeout: m.Acquisition(),
			SocketConnectTimeout:         m.Connect(),
			MaxConnectionLifetime:        m.Lifetime(),
		}, log)
		if err != nil {
			return nil, err
		}
		if err := prepare(ctx, d, m); err != nil {
			_ = d.Close(ctx)
			return nil, err
		}
		return NewMemgraphClient(d, m.Query()), nil
	case config.BackendSQLite:
		c, err := OpenSQLite(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		log.WithField("path", cfg.SQLite.Path).Info("Opened SQLite export")
		return c, nil
	default:
		return nil, fmt.Errorf("unknown graph backend %q", cfg.Graph.Backend)
	}
}

// prepare runs the optional startup steps on a connected driver.
func prepare(ctx context.Context, d GraphDriver, m config.MemgraphConfig) error {
	if !m.BuildIndices {
		return nil
	}
	if err := d.BuildIndices(ctx); err != nil {
		return fmt.Errorf("building memgraph indices: %w", err)
	}
	return nil
}
