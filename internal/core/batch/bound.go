package batch

import (
	"context"

	"github.com/agenthands/orgchart/internal/core/fanout"
	"github.com/agenthands/orgchart/internal/core/model"
)

// bounded takes a slot of the request budget around every backend call.
type bounded struct {
	Client
}

// Bound returns client with each call held to the budget carried by its ctx (see
// fanout.WithBudget). Bounding an already bounded client returns it unchanged.
func Bound(client Client) Client {
	if b, ok := client.(*bounded); ok {
		return b
	}
	return &bounded{Client: client}
}

func (b *bounded) GetEntities(ctx context.Context, id string) ([]model.Entity, error) {
	release, err := fanout.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return b.Client.GetEntities(ctx, id)
}

func (b *bounded) FetchRelations(ctx context.Context, entityID string, filter model.RelationFilter) ([]model.Relation, error) {
	release, err := fanout.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return b.Client.FetchRelations(ctx, entityID, filter)
}
