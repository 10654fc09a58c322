// Package lineage follows RENAMED_TO edges to find every identity an entity has had.
package lineage

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/agenthands/orgchart/internal/core/fanout"
	"github.com/agenthands/orgchart/internal/core/model"
)

// DefaultMaxNodes caps a single resolution. Lineage chains are data, not code, so a
// corrupt chain must not turn into an unbounded walk.
const DefaultMaxNodes = 1000

var ErrTooManyNodes = errors.New("lineage exceeds node limit")

// RelationFetcher is the part of the graph client lineage resolution needs.
type RelationFetcher interface {
	FetchRelations(ctx context.Context, entityID string, filter model.RelationFilter) ([]model.Relation, error)
}

type Resolver struct {
	Client   RelationFetcher
	MaxNodes int
	// Limit bounds the fetches of one BFS level in flight.
	Limit int
}

func NewResolver(client RelationFetcher) *Resolver {
	return &Resolver{Client: client, MaxNodes: DefaultMaxNodes, Limit: fanout.DefaultLimit}
}

// Resolve returns startID and every id reachable from it over outgoing RENAMED_TO
// relations, in discovery order. The walk is breadth first, one level fetched at a time.
// Each id is fetched exactly once; cycles are safe. A failed fetch aborts the walk and
// cancels the rest of its level.
func (r *Resolver) Resolve(ctx context.Context, startID string) ([]string, error) {
	limit := r.MaxNodes
	if limit <= 0 {
		limit = DefaultMaxNodes
	}

	visited := map[string]struct{}{startID: {}}
	order := []string{startID}
	frontier := []string{startID}

	for len(frontier) > 0 {
		tasks := make([]fanout.Task[[]model.Relation], len(frontier))
		for i, id := range frontier {
			tasks[i] = func(ctx context.Context) ([]model.Relation, error) {
				renames, err := r.Client.FetchRelations(ctx, id, model.RelationFilter{Name: model.RenamedTo})
				if err != nil {
					return nil, errors.Wrapf(err, "resolving lineage of %s at %s", startID, id)
				}
				return renames, nil
			}
		}
		level, err := fanout.RunStrict(ctx, r.Limit, tasks)
		if err != nil {
			return nil, err
		}

		var next []string
		for _, renames := range level {
			for _, rel := range renames {
				id := rel.RelatedEntityID
				if id == "" {
					continue
				}
				if _, seen := visited[id]; seen {
					continue
				}
				if len(order) >= limit {
					return nil, errors.Wrapf(ErrTooManyNodes, "lineage of %s, limit %d", startID, limit)
				}
				visited[id] = struct{}{}
				order = append(order, id)
				next = append(next, id)
			}
		}
		frontier = next
	}
	return order, nil
}

// Resolve is a convenience for a one-off resolution with the default limit.
func Resolve(ctx context.Context, client RelationFetcher, startID string) ([]string, error) {
	return NewResolver(client).Resolve(ctx, startID)
}
