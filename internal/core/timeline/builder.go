// Package timeline reconstructs who led a department over time.
//
// A department's history is the set of ministries that owned it (tenures, followed across
// renames) intersected with the ministers appointed to those ministries. Uncovered spans
// fall back to the sitting president; whatever no president covers is kept and flagged
// as unfilled.
package timeline

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/orgchart/internal/core/batch"
	"github.com/agenthands/orgchart/internal/core/common"
	"github.com/agenthands/orgchart/internal/core/errs"
	"github.com/agenthands/orgchart/internal/core/lineage"
	"github.com/agenthands/orgchart/internal/core/model"
)

// DefaultPresidencyID is the entity whose AS_PRESIDENT relations list the presidents.
const DefaultPresidencyID = "gov_01"

type Builder struct {
	Client       batch.Client
	Mapper       *batch.Mapper
	Lineage      *lineage.Resolver
	PresidencyID string
	Log          logrus.FieldLogger
}

func NewBuilder(client batch.Client, mapper *batch.Mapper, presidencyID string, log logrus.FieldLogger) *Builder {
	if presidencyID == "" {
		presidencyID = DefaultPresidencyID
	}
	client = batch.Bound(client)
	resolver := lineage.NewResolver(client)
	resolver.Limit = mapper.Exec.Limit
	return &Builder{
		Client:       client,
		Mapper:       mapper,
		Lineage:      resolver,
		PresidencyID: presidencyID,
		Log:          log,
	}
}

// DepartmentHistory returns the department's timeline, newest first. An empty id yields
// no timeline and no error.
func (b *Builder) DepartmentHistory(ctx context.Context, departmentID string) ([]model.TimelineView, error) {
	if departmentID == "" {
		return nil, nil
	}
	ctx = b.Mapper.Exec.Bind(ctx)
	log := b.Log.WithField("department_id", departmentID)

	entries, err := b.entries(ctx, departmentID, log)
	if err != nil {
		if errs.Passthrough(err) {
			return nil, err
		}
		log.WithError(err).Error("building department history failed")
		return nil, errs.Internal("", err)
	}
	return Render(Collapse(entries)), nil
}

func (b *Builder) entries(ctx context.Context, departmentID string, log logrus.FieldLogger) ([]model.TimelineEntry, error) {
	ids, err := b.Lineage.Resolve(ctx, departmentID)
	if err != nil {
		return nil, errors.Wrap(err, "lineage")
	}

	owners := b.Mapper.RelationsByEntity(ctx, ids, model.RelationFilter{
		Name:      model.AsDepartment,
		Direction: model.Incoming,
	})

	var (
		tenures     []model.Relation
		ministryIDs []string
	)
	for _, id := range ids {
		for _, rel := range owners[id] {
			if rel.ZeroLength() {
				continue
			}
			tenures = append(tenures, rel)
			ministryIDs = append(ministryIDs, rel.RelatedEntityID)
		}
	}
	if len(tenures) == 0 {
		return nil, ctx.Err()
	}

	var (
		ministries   map[string]model.Entity
		appointments map[string][]model.Relation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ministries = b.Mapper.EntitiesByID(gctx, ministryIDs)
		return nil
	})
	g.Go(func() error {
		appointments = b.Mapper.RelationsByEntity(gctx, ministryIDs, model.RelationFilter{Name: model.AsAppointed})
		return nil
	})
	_ = g.Wait()

	var personIDs []string
	for _, rels := range appointments {
		for _, rel := range rels {
			personIDs = append(personIDs, rel.RelatedEntityID)
		}
	}
	persons := b.Mapper.EntitiesByID(ctx, personIDs)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entries []model.TimelineEntry
	for _, rel := range tenures {
		ministry, ok := ministries[rel.RelatedEntityID]
		if !ok {
			log.WithField("ministry_id", rel.RelatedEntityID).Warn("skipping tenure of unknown ministry")
			continue
		}
		tenure := Tenure{
			MinistryID:   rel.RelatedEntityID,
			MinistryName: common.DecodeName(ministry.Name),
			Start:        rel.StartTime,
			End:          endOrFarFuture(rel.EndTime),
		}

		var appts []Appointment
		for _, a := range appointments[tenure.MinistryID] {
			person, ok := persons[a.RelatedEntityID]
			if !ok {
				continue
			}
			appts = append(appts, Appointment{
				MinisterID:   person.ID,
				MinisterName: common.DecodeName(person.Name),
				Start:        a.StartTime,
				End:          endOrFarFuture(a.EndTime),
			})
		}

		filled := ClipAppointments(tenure, appts)
		entries = append(entries, FillGaps(tenure, filled)...)
		entries = append(entries, filled...)
	}

	if hasGaps(entries) {
		terms, err := b.presidentTerms(ctx)
		if err != nil {
			return nil, err
		}
		if unfilled := FillFromPresidents(entries, terms); unfilled > 0 {
			log.WithField("unfilled", unfilled).Warn("timeline has spans no minister or president covers")
		}
	}
	return entries, nil
}

func (b *Builder) presidentTerms(ctx context.Context) ([]PresidentTerm, error) {
	rels, err := b.Client.FetchRelations(ctx, b.PresidencyID, model.RelationFilter{Name: model.AsPresident})
	if err != nil {
		return nil, errors.Wrap(err, "presidents")
	}

	ids := make([]string, 0, len(rels))
	for _, rel := range rels {
		ids = append(ids, rel.RelatedEntityID)
	}
	presidents := b.Mapper.EntitiesByID(ctx, ids)

	terms := make([]PresidentTerm, 0, len(rels))
	for _, rel := range rels {
		p, ok := presidents[rel.RelatedEntityID]
		if !ok {
			continue
		}
		terms = append(terms, PresidentTerm{
			PresidentID:   p.ID,
			PresidentName: common.DecodeName(p.Name),
			Start:         rel.StartTime,
			End:           endOrFarFuture(rel.EndTime),
		})
	}
	return terms, nil
}

func hasGaps(entries []model.TimelineEntry) bool {
	for _, e := range entries {
		if !e.Filled() {
			return true
		}
	}
	return false
}
