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

// DepartmentsByPortfolio lists the departments under portfolioID on date.
func (a *Aggregator) DepartmentsByPortfolio(ctx context.Context, portfolioID, date string) (*model.DepartmentSnapshot, error) {
	if strings.TrimSpace(portfolioID) == "" {
		return nil, errs.BadRequest("Portfolio ID is required")
	}
	at, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	ctx = a.Exec.Bind(ctx)
	log := a.Log.WithFields(logrus.Fields{"portfolio_id": portfolioID, "date": date})

	rels, err := a.Client.FetchRelations(ctx, portfolioID, model.RelationFilter{
		Name:      model.AsDepartment,
		Direction: model.Outgoing,
		ActiveAt:  &at,
	})
	if err != nil {
		return nil, a.fail(log, "departments by portfolio", errors.Wrap(err, "departments"))
	}

	tasks := make([]fanout.Task[model.Department], len(rels))
	for i, rel := range rels {
		tasks[i] = func(ctx context.Context) (model.Department, error) {
			return a.department(ctx, rel, at, log)
		}
	}
	results := fanout.Run(ctx, a.Exec.Limit, tasks)

	snapshot := &model.DepartmentSnapshot{Departments: []model.Department{}}
	failed := 0
	for i, r := range results {
		if !r.OK() {
			failed++
			log.WithError(r.Err).WithField("department_id", rels[i].RelatedEntityID).Error("department enrichment failed")
			continue
		}
		snapshot.Departments = append(snapshot.Departments, r.Value)
		if r.Value.IsNew {
			snapshot.NewDepartments++
		}
	}
	if len(results) > 0 && failed == len(results) {
		return nil, a.fail(log, "departments by portfolio", errors.New("every department failed"))
	}
	snapshot.TotalDepartments = len(snapshot.Departments)
	return snapshot, nil
}

func (a *Aggregator) department(ctx context.Context, rel model.Relation, at time.Time, log logrus.FieldLogger) (model.Department, error) {
	id := rel.RelatedEntityID

	var (
		entities    []model.Entity
		categories  []model.Relation
		categoryErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entities, err = a.Client.GetEntities(gctx, id)
		return err
	})
	g.Go(func() error {
		categories, categoryErr = a.Client.FetchRelations(gctx, id, model.RelationFilter{
			Name:      model.AsCategory,
			Direction: model.Outgoing,
		})
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.Department{}, errors.Wrapf(err, "department %s", id)
	}
	if len(entities) == 0 {
		return model.Department{}, errors.Errorf("department %s not found", id)
	}
	if categoryErr != nil {
		log.WithError(categoryErr).WithField("department_id", id).Warn("category lookup failed")
	}

	return model.Department{
		ID:      id,
		Name:    common.DecodeName(entities[0].Name),
		IsNew:   rel.StartsAt(at),
		HasData: len(categories) > 0,
	}, nil
}
