package core

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/agenthands/orgchart/internal/core/batch"
	"github.com/agenthands/orgchart/internal/core/fanout"
	"github.com/agenthands/orgchart/internal/core/model"
	"github.com/agenthands/orgchart/internal/core/snapshot"
	"github.com/agenthands/orgchart/internal/core/timeline"
	"github.com/agenthands/orgchart/internal/driver"
)

type Options struct {
	// FanOut bounds every per-request batch of backend calls.
	FanOut int
	// PresidencyID is the entity that carries AS_PRESIDENT and AS_PRIME_MINISTER.
	PresidencyID string
}

// Orgchart answers organisation structure queries against one graph client. It is safe
// for concurrent use; every call is independent.
type Orgchart struct {
	Client   driver.GraphClient
	Timeline *timeline.Builder
	Snapshot *snapshot.Aggregator
}

func NewOrgchart(client driver.GraphClient, opts Options, log logrus.FieldLogger) *Orgchart {
	exec := fanout.NewExecutor(opts.FanOut)
	mapper := batch.NewMapper(exec, client, log)
	return &Orgchart{
		Client:   client,
		Timeline: timeline.NewBuilder(client, mapper, opts.PresidencyID, log),
		Snapshot: snapshot.NewAggregator(client, exec, opts.PresidencyID, log),
	}
}

func (o *Orgchart) ActivePortfolios(ctx context.Context, presidentID, date string) (*model.PortfolioSnapshot, error) {
	return o.Snapshot.ActivePortfolios(ctx, presidentID, date)
}

func (o *Orgchart) DepartmentsByPortfolio(ctx context.Context, portfolioID, date string) (*model.DepartmentSnapshot, error) {
	return o.Snapshot.DepartmentsByPortfolio(ctx, portfolioID, date)
}

func (o *Orgchart) PrimeMinister(ctx context.Context, date string) (*model.PrimeMinister, error) {
	return o.Snapshot.PrimeMinister(ctx, date)
}

func (o *Orgchart) DepartmentHistory(ctx context.Context, departmentID string) ([]model.TimelineView, error) {
	return o.Timeline.DepartmentHistory(ctx, departmentID)
}

func (o *Orgchart) Close(ctx context.Context) error {
	return o.Client.Close(ctx)
}
