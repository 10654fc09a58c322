package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	neo4jconfig "github.com/neo4j/neo4j-go-driver/v5/neo4j/config"
	"github.com/sirupsen/logrus"
)

// PoolOptions sizes the bolt connection pool shared by every request.
type PoolOptions struct {
	MaxConnectionPoolSize        int
	ConnectionAcquisitionTimeout time.Duration
	SocketConnectTimeout         time.Duration
	MaxConnectionLifetime        time.Duration
}

type MemgraphDriver struct {
	Driver neo4j.DriverWithContext
	log    logrus.FieldLogger
}

func NewMemgraphDriver(ctx context.Context, uri, username, password string, pool PoolOptions, log logrus.FieldLogger) (*MemgraphDriver, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""), func(c *neo4jconfig.Config) {
		if pool.MaxConnectionPoolSize > 0 {
			c.MaxConnectionPoolSize = pool.MaxConnectionPoolSize
		}
		if pool.ConnectionAcquisitionTimeout > 0 {
			c.ConnectionAcquisitionTimeout = pool.ConnectionAcquisitionTimeout
		}
		if pool.SocketConnectTimeout > 0 {
			c.SocketConnectTimeout = pool.SocketConnectTimeout
		}
		if pool.MaxConnectionLifetime > 0 {
			c.MaxConnectionLifetime = pool.MaxConnectionLifetime
		}
	})
	if err != nil {
		return nil, fmt.Errorf("creating memgraph driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("connecting to memgraph: %w", err)
	}

	log.WithFields(logrus.Fields{
		"uri":       uri,
		"pool_size": pool.MaxConnectionPoolSize,
	}).Info("Connected to Memgraph")
	return &MemgraphDriver{Driver: driver, log: log}, nil
}

func (d *MemgraphDriver) Close(ctx context.Context) error {
	return d.Driver.Close(ctx)
}

// ExecuteQuery runs a read query; every query issued by this service is read-only.
func (d *MemgraphDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, d.Driver, query, params, neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithReadersRouting())
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

// BuildIndices creates the lookup indices the read queries rely on. Memgraph rejects an
// index that already exists, so failures are only logged.
func (d *MemgraphDriver) BuildIndices(ctx context.Context) error {
	for _, q := range indexQueries {
		if _, err := neo4j.ExecuteQuery(ctx, d.Driver, q, nil, neo4j.EagerResultTransformer); err != nil {
			d.log.WithError(err).WithField("query", q).Warn("failed to create index")
		}
	}
	return nil
}
