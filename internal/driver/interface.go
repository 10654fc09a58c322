package driver

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/orgchart/internal/core/model"
)

// GraphDriver runs Cypher against a bolt backend.
type GraphDriver interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error)
	BuildIndices(ctx context.Context) error
	Close(ctx context.Context) error
}

// GraphClient is the read API of the entity-relation graph. An unknown entity is an
// empty result, not an error.
type GraphClient interface {
	GetEntities(ctx context.Context, id string) ([]model.Entity, error)
	FetchRelations(ctx context.Context, entityID string, filter model.RelationFilter) ([]model.Relation, error)
	Close(ctx context.Context) error
}
