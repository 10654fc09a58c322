package snapshot

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/agenthands/orgchart/internal/core/common"
	"github.com/agenthands/orgchart/internal/core/model"
)

// PrimeMinister returns the prime minister in office on date, or nil when the post was
// vacant.
func (a *Aggregator) PrimeMinister(ctx context.Context, date string) (*model.PrimeMinister, error) {
	at, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	ctx = a.Exec.Bind(ctx)
	log := a.Log.WithField("date", date)

	rels, err := a.Client.FetchRelations(ctx, a.PresidencyID, model.RelationFilter{
		Name:      model.AsPrimeMinister,
		Direction: model.Outgoing,
		ActiveAt:  &at,
	})
	if err != nil {
		return nil, a.fail(log, "prime minister", errors.Wrap(err, "prime minister relations"))
	}
	if len(rels) == 0 {
		return nil, nil
	}

	rel := rels[0]
	p, err := a.person(ctx, rel.RelatedEntityID, &rel.StartTime, "", at)
	if err != nil {
		return nil, a.fail(log, "prime minister", err)
	}
	return &model.PrimeMinister{
		ID:    p.ID,
		Name:  p.Name,
		IsNew: p.IsNew,
		Term:  common.FormatTerm(rel.StartTime, rel.EndTime, false),
	}, nil
}
