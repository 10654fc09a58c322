package batch

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/orgchart/internal/core/fanout"
	"github.com/agenthands/orgchart/internal/core/model"
)

type fakeClient struct {
	mu        sync.Mutex
	entities  map[string]model.Entity
	relations map[string][]model.Relation
	failing   map[string]bool
	calls     int
}

func (f *fakeClient) GetEntities(ctx context.Context, id string) ([]model.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failing[id] {
		return nil, errors.New("backend unavailable")
	}
	if e, ok := f.entities[id]; ok {
		return []model.Entity{e}, nil
	}
	return nil, nil
}

func (f *fakeClient) FetchRelations(ctx context.Context, entityID string, filter model.RelationFilter) ([]model.Relation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failing[entityID] {
		return nil, errors.New("backend unavailable")
	}
	return f.relations[entityID], nil
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestEntitiesByID_FailuresAreAbsent(t *testing.T) {
	client := &fakeClient{
		entities: map[string]model.Entity{
			"a": {ID: "a", Name: "Alpha"},
			"c": {ID: "c", Name: "Gamma"},
		},
		failing: map[string]bool{"b": true},
	}
	m := NewMapper(fanout.NewExecutor(2), client, quietLogger())

	got := m.EntitiesByID(context.Background(), []string{"a", "b", "c", "missing", "a", ""})

	require.Len(t, got, 2)
	assert.Equal(t, "Alpha", got["a"].Name)
	assert.Equal(t, "Gamma", got["c"].Name)
	assert.NotContains(t, got, "b")
	assert.NotContains(t, got, "missing")
	// duplicates and empty ids are not fetched
	assert.Equal(t, 4, client.calls)
}

func TestRelationsByEntity_EveryIDPresent(t *testing.T) {
	client := &fakeClient{
		relations: map[string][]model.Relation{
			"a": {{ID: "r1", Name: model.AsAppointed, RelatedEntityID: "p1"}},
		},
		failing: map[string]bool{"b": true},
	}
	m := NewMapper(fanout.NewExecutor(0), client, quietLogger())

	got := m.RelationsByEntity(context.Background(), []string{"a", "b", "c"}, model.RelationFilter{Name: model.AsAppointed})

	require.Len(t, got, 3)
	assert.Len(t, got["a"], 1)
	assert.NotNil(t, got["b"])
	assert.Empty(t, got["b"])
	assert.NotNil(t, got["c"])
	assert.Empty(t, got["c"])
}

func TestMappers_EmptyInput(t *testing.T) {
	client := &fakeClient{}
	m := NewMapper(fanout.NewExecutor(0), client, quietLogger())

	assert.Empty(t, m.EntitiesByID(context.Background(), nil))
	assert.Empty(t, m.RelationsByEntity(context.Background(), nil, model.RelationFilter{Name: model.AsMinister}))
	assert.Zero(t, client.calls)
}

func TestRelationsByEntity_EmptyIDMapsToEmptySlice(t *testing.T) {
	client := &fakeClient{
		relations: map[string][]model.Relation{
			"a": {{ID: "r1", Name: model.AsAppointed, RelatedEntityID: "p1"}},
		},
	}
	m := NewMapper(fanout.NewExecutor(2), client, quietLogger())

	got := m.RelationsByEntity(context.Background(), []string{"a", "", "a"}, model.RelationFilter{Name: model.AsAppointed})

	require.Len(t, got, 2)
	assert.Len(t, got["a"], 1)
	require.Contains(t, got, "")
	assert.NotNil(t, got[""])
	assert.Empty(t, got[""])
	assert.Equal(t, 1, client.calls)
}

func TestBound_IsIdempotent(t *testing.T) {
	client := &fakeClient{}
	once := Bound(client)

	assert.Same(t, once, Bound(once))
}
