// Package batch resolves many entity ids against the graph in one bounded fan-out.
package batch

import (
	"context"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/agenthands/orgchart/internal/core/fanout"
	"github.com/agenthands/orgchart/internal/core/model"
)

type EntityGetter interface {
	GetEntities(ctx context.Context, id string) ([]model.Entity, error)
}

type RelationFetcher interface {
	FetchRelations(ctx context.Context, entityID string, filter model.RelationFilter) ([]model.Relation, error)
}

type Client interface {
	EntityGetter
	RelationFetcher
}

type Mapper struct {
	Exec   fanout.Executor
	Client Client
	Log    logrus.FieldLogger
}

func NewMapper(exec fanout.Executor, client Client, log logrus.FieldLogger) *Mapper {
	return &Mapper{Exec: exec, Client: Bound(client), Log: log}
}

// EntitiesByID fetches the entity for each id. Ids that fail, or that the backend does
// not know, are absent from the result.
func (m *Mapper) EntitiesByID(ctx context.Context, ids []string) map[string]model.Entity {
	ctx = m.Exec.Bind(ctx)
	ids = distinct(ids)
	tasks := make([]fanout.Task[*model.Entity], len(ids))
	for i, id := range ids {
		tasks[i] = func(ctx context.Context) (*model.Entity, error) {
			entities, err := m.Client.GetEntities(ctx, id)
			if err != nil || len(entities) == 0 {
				return nil, err
			}
			return &entities[0], nil
		}
	}

	results := fanout.Run(ctx, m.Exec.Limit, tasks)

	out := make(map[string]model.Entity, len(ids))
	for i, r := range results {
		if !r.OK() {
			m.Log.WithError(r.Err).WithField("entity_id", ids[i]).Warn("entity lookup failed")
			continue
		}
		if r.Value == nil {
			m.Log.WithField("entity_id", ids[i]).Debug("entity not found")
			continue
		}
		out[ids[i]] = *r.Value
	}
	return out
}

// RelationsByEntity fetches the relations matching filter for each id. Every id is
// present in the result; an id whose fetch failed maps to an empty slice, as does the
// empty id, which is never sent to the backend.
func (m *Mapper) RelationsByEntity(ctx context.Context, ids []string, filter model.RelationFilter) map[string][]model.Relation {
	ctx = m.Exec.Bind(ctx)
	hasEmpty := slices.Contains(ids, "")
	ids = distinct(ids)
	tasks := make([]fanout.Task[[]model.Relation], len(ids))
	for i, id := range ids {
		tasks[i] = func(ctx context.Context) ([]model.Relation, error) {
			return m.Client.FetchRelations(ctx, id, filter)
		}
	}

	results := fanout.Run(ctx, m.Exec.Limit, tasks)

	out := make(map[string][]model.Relation, len(ids))
	for i, r := range results {
		if !r.OK() {
			m.Log.WithError(r.Err).WithFields(logrus.Fields{
				"entity_id": ids[i],
				"relation":  filter.Name,
			}).Warn("relation lookup failed")
			out[ids[i]] = []model.Relation{}
			continue
		}
		if r.Value == nil {
			out[ids[i]] = []model.Relation{}
			continue
		}
		out[ids[i]] = r.Value
	}
	if hasEmpty {
		out[""] = []model.Relation{}
	}
	return out
}

// distinct drops duplicates and empty ids, keeping first-seen order.
func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
