// Package graphtest provides an in-memory graph client for tests.
package graphtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agenthands/orgchart/internal/core/model"
)

type edge struct {
	rel  model.Relation
	from string
}

// MockClient is a goroutine-safe in-memory graph. Relations are stored once and served
// in both directions.
type MockClient struct {
	mu            sync.Mutex
	entities      map[string]model.Entity
	edges         []edge
	entityErrs    map[string]error
	relationErrs  map[string]error
	entityCalls   map[string]int
	relationCalls map[string]int
	closed        bool
}

func NewMockClient() *MockClient {
	return &MockClient{
		entities:      map[string]model.Entity{},
		entityErrs:    map[string]error{},
		relationErrs:  map[string]error{},
		entityCalls:   map[string]int{},
		relationCalls: map[string]int{},
	}
}

func (m *MockClient) AddEntity(id, name, kindMinor string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities[id] = model.Entity{ID: id, Name: name, Kind: model.Kind{Major: "Organisation", Minor: kindMinor}}
	return m
}

// AddRelation adds from -[name]-> to over [start, end). An empty end leaves it open.
// Timestamps are YYYY-MM-DD.
func (m *MockClient) AddRelation(from, name, to, start, end string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	rel := model.Relation{
		ID:              fmt.Sprintf("rel_%d", len(m.edges)+1),
		Name:            name,
		RelatedEntityID: to,
		StartTime:       Date(start),
	}
	if end != "" {
		e := Date(end)
		rel.EndTime = &e
	}
	m.edges = append(m.edges, edge{rel: rel, from: from})
	return m
}

// FailEntity makes GetEntities for id return err.
func (m *MockClient) FailEntity(id string, err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entityErrs[id] = err
	return m
}

// FailRelations makes FetchRelations for entityID return err.
func (m *MockClient) FailRelations(entityID string, err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.relationErrs[entityID] = err
	return m
}

func (m *MockClient) GetEntities(ctx context.Context, id string) ([]model.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entityCalls[id]++
	if err := m.entityErrs[id]; err != nil {
		return nil, err
	}
	if e, ok := m.entities[id]; ok {
		return []model.Entity{e}, nil
	}
	return []model.Entity{}, nil
}

func (m *MockClient) FetchRelations(ctx context.Context, entityID string, filter model.RelationFilter) ([]model.Relation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.relationCalls[entityID]++
	if err := m.relationErrs[entityID]; err != nil {
		return nil, err
	}

	direction := filter.EffectiveDirection()
	rels := []model.Relation{}
	for _, e := range m.edges {
		if e.rel.Name != filter.Name {
			continue
		}
		rel := e.rel
		switch direction {
		case model.Outgoing:
			if e.from != entityID {
				continue
			}
		case model.Incoming:
			if rel.RelatedEntityID != entityID {
				continue
			}
			rel.RelatedEntityID = e.from
		}
		if filter.ActiveAt != nil && !rel.ActiveAt(*filter.ActiveAt) {
			continue
		}
		rel.Direction = direction
		rels = append(rels, rel)
	}
	return rels, nil
}

func (m *MockClient) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Calls returns the total number of backend calls made so far.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.entityCalls {
		total += n
	}
	for _, n := range m.relationCalls {
		total += n
	}
	return total
}

func (m *MockClient) RelationCalls(entityID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.relationCalls[entityID]
}

func (m *MockClient) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Date parses YYYY-MM-DD as midnight UTC and panics on malformed input.
func Date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// Hex encodes name the way the backend stores entity names.
func Hex(name string) string {
	return fmt.Sprintf(`{"value": "%x"}`, name)
}
