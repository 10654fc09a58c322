package snapshot

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/orgchart/internal/core/common"
	"github.com/agenthands/orgchart/internal/core/errs"
	"github.com/agenthands/orgchart/internal/core/fanout"
	"github.com/agenthands/orgchart/internal/core/model"
)

// ActivePortfolios lists the portfolios held under presidentID on date, with their
// ministers. A portfolio without an appointee is attributed to the president.
func (a *Aggregator) ActivePortfolios(ctx context.Context, presidentID, date string) (*model.PortfolioSnapshot, error) {
	if strings.TrimSpace(presidentID) == "" {
		return nil, errs.BadRequest("President ID is required")
	}
	at, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	ctx = a.Exec.Bind(ctx)
	log := a.Log.WithFields(logrus.Fields{"president_id": presidentID, "date": date})

	rels, err := a.Client.FetchRelations(ctx, presidentID, model.RelationFilter{
		Name:      model.AsMinister,
		Direction: model.Outgoing,
		ActiveAt:  &at,
	})
	if err != nil {
		return nil, a.fail(log, "active portfolios", errors.Wrap(err, "portfolios"))
	}

	tasks := make([]fanout.Task[model.Portfolio], len(rels))
	for i, rel := range rels {
		tasks[i] = func(ctx context.Context) (model.Portfolio, error) {
			return a.portfolio(ctx, rel, presidentID, at, log)
		}
	}
	results := fanout.Run(ctx, a.Exec.Limit, tasks)

	snapshot := &model.PortfolioSnapshot{Portfolios: []model.Portfolio{}}
	failed := 0
	for i, r := range results {
		if !r.OK() {
			failed++
			log.WithError(r.Err).WithField("portfolio_id", rels[i].RelatedEntityID).Error("portfolio enrichment failed")
			continue
		}
		snapshot.Portfolios = append(snapshot.Portfolios, r.Value)
	}
	if len(results) > 0 && failed == len(results) {
		return nil, a.fail(log, "active portfolios", errors.New("every portfolio failed"))
	}

	for _, p := range snapshot.Portfolios {
		if strings.EqualFold(p.Type, stateMinisterKind) {
			snapshot.StateMinistries++
		}
		if p.IsNew {
			snapshot.NewMinistries++
		}
		underPresident := false
		for _, m := range p.Ministers {
			if m.IsNew {
				snapshot.NewMinisters++
			}
			if m.IsPresident {
				underPresident = true
			}
		}
		if underPresident {
			snapshot.MinistriesUnderPresident++
		}
	}
	snapshot.CabinetMinistries = len(snapshot.Portfolios) - snapshot.StateMinistries
	return snapshot, nil
}

// portfolio enriches one AS_MINISTER relation: the portfolio entity and its appointees
// are fetched in parallel.
func (a *Aggregator) portfolio(ctx context.Context, rel model.Relation, presidentID string, at time.Time, log logrus.FieldLogger) (model.Portfolio, error) {
	portfolioID := rel.RelatedEntityID
	appointed, err := a.Client.FetchRelations(ctx, portfolioID, model.RelationFilter{
		Name:      model.AsAppointed,
		Direction: model.Outgoing,
		ActiveAt:  &at,
	})
	if err != nil {
		return model.Portfolio{}, errors.Wrapf(err, "appointees of %s", portfolioID)
	}

	var tasks []fanout.Task[model.Person]
	if len(appointed) == 0 {
		tasks = append(tasks, func(ctx context.Context) (model.Person, error) {
			p, err := a.person(ctx, presidentID, nil, presidentID, at)
			p.IsPresident = true
			return p, err
		})
	}
	for _, appt := range appointed {
		tasks = append(tasks, func(ctx context.Context) (model.Person, error) {
			return a.person(ctx, appt.RelatedEntityID, &appt.StartTime, presidentID, at)
		})
	}

	var (
		entities  []model.Entity
		entityErr error
		people    []fanout.Result[model.Person]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		entities, entityErr = a.Client.GetEntities(gctx, portfolioID)
		return nil
	})
	g.Go(func() error {
		people = fanout.Run(gctx, a.Exec.Limit, tasks)
		return nil
	})
	_ = g.Wait()

	portfolio := model.Portfolio{
		ID:        portfolioID,
		Name:      unknown,
		Type:      unknown,
		Ministers: []model.Person{},
	}
	if entityErr != nil || len(entities) == 0 {
		log.WithError(entityErr).WithField("portfolio_id", portfolioID).Warn("portfolio entity unavailable")
	} else {
		e := entities[0]
		portfolio.ID = e.ID
		portfolio.Name = common.DecodeName(e.Name)
		portfolio.Type = e.Kind.Minor
		portfolio.IsNew = rel.StartsAt(at)
	}

	for i, r := range people {
		if !r.OK() {
			log.WithError(r.Err).WithFields(logrus.Fields{
				"portfolio_id": portfolioID,
				"minister":     i,
			}).Warn("minister enrichment failed")
			continue
		}
		portfolio.Ministers = append(portfolio.Ministers, r.Value)
	}
	return portfolio, nil
}
