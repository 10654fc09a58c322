package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/orgchart/internal/core/model"
)

// DefaultQueryTimeout bounds a single backend round trip.
const DefaultQueryTimeout = 90 * time.Second

// MemgraphClient implements GraphClient with Cypher over a GraphDriver.
type MemgraphClient struct {
	driver       GraphDriver
	queryTimeout time.Duration
}

func NewMemgraphClient(d GraphDriver, queryTimeout time.Duration) *MemgraphClient {
	if queryTimeout <= 0 {
		queryTimeout = DefaultQueryTimeout
	}
	return &MemgraphClient{driver: d, queryTimeout: queryTimeout}
}

func (c *MemgraphClient) GetEntities(ctx context.Context, id string) ([]model.Entity, error) {
	result, err := c.run(ctx, GetEntityQuery, map[string]interface{}{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get entity %s: %w", id, err)
	}

	entities := make([]model.Entity, 0, len(result.Records))
	for _, rec := range result.Records {
		entities = append(entities, model.Entity{
			ID:   stringValue(rec, "id"),
			Name: stringValue(rec, "name"),
			Kind: model.Kind{
				Major: stringValue(rec, "kind_major"),
				Minor: stringValue(rec, "kind_minor"),
			},
		})
	}
	return entities, nil
}

func (c *MemgraphClient) FetchRelations(ctx context.Context, entityID string, filter model.RelationFilter) ([]model.Relation, error) {
	direction := filter.EffectiveDirection()
	query := FetchOutgoingRelationsQuery
	if direction == model.Incoming {
		query = FetchIncomingRelationsQuery
	}

	params := map[string]interface{}{
		"id":        entityID,
		"name":      filter.Name,
		"active_at": nil,
	}
	if filter.ActiveAt != nil {
		params["active_at"] = filter.ActiveAt.UTC().Format(time.RFC3339)
	}

	result, err := c.run(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("fetch %s relations of %s: %w", filter.Name, entityID, err)
	}

	relations := make([]model.Relation, 0, len(result.Records))
	for _, rec := range result.Records {
		start, ok, err := timeValue(rec, "start_time")
		if err != nil {
			return nil, fmt.Errorf("relation of %s: start_time: %w", entityID, err)
		}
		if !ok {
			return nil, fmt.Errorf("relation of %s has no start_time", entityID)
		}
		rel := model.Relation{
			ID:              stringValue(rec, "id"),
			Name:            stringValue(rec, "name"),
			RelatedEntityID: stringValue(rec, "related_id"),
			StartTime:       start,
			Direction:       direction,
		}
		end, ok, err := timeValue(rec, "end_time")
		if err != nil {
			return nil, fmt.Errorf("relation of %s: end_time: %w", entityID, err)
		}
		if ok {
			rel.EndTime = &end
		}
		relations = append(relations, rel)
	}
	return relations, nil
}

func (c *MemgraphClient) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

func (c *MemgraphClient) run(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()
	return c.driver.ExecuteQuery(ctx, query, params)
}

func stringValue(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// timeValue reads a timestamp stored either as an RFC3339 string or as a temporal value.
// ok is false when the property is absent or null.
func timeValue(rec *neo4j.Record, key string) (t time.Time, ok bool, err error) {
	v, found := rec.Get(key)
	if !found || v == nil {
		return time.Time{}, false, nil
	}
	switch tv := v.(type) {
	case string:
		if tv == "" {
			return time.Time{}, false, nil
		}
		parsed, err := time.Parse(time.RFC3339, tv)
		if err != nil {
			return time.Time{}, false, err
		}
		return parsed.UTC(), true, nil
	case time.Time:
		return tv.UTC(), true, nil
	case interface{ Time() time.Time }:
		return tv.Time().UTC(), true, nil
	default:
		return time.Time{}, false, fmt.Errorf("unexpected type %T", v)
	}
}
