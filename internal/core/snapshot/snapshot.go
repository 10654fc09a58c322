// Package snapshot answers "what did the organisation look like on date D" queries.
//
// Each query fetches one list of relations active at the date and enriches every item
// in a bounded fan-out. Items that fail are logged and left out; counts cover the items
// that succeeded. Only when every item fails does the query itself fail.
package snapshot

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/agenthands/orgchart/internal/core/batch"
	"github.com/agenthands/orgchart/internal/core/common"
	"github.com/agenthands/orgchart/internal/core/errs"
	"github.com/agenthands/orgchart/internal/core/fanout"
	"github.com/agenthands/orgchart/internal/core/model"
)

const (
	// DefaultPresidencyID is the entity that carries AS_PRESIDENT and AS_PRIME_MINISTER.
	DefaultPresidencyID = "gov_01"

	stateMinisterKind = "stateminister"
	unknown           = "Unknown"
)

// Aggregator holds every backend call of one query to Exec.Limit in flight, however
// deeply its batches nest.
type Aggregator struct {
	Client       batch.Client
	Exec         fanout.Executor
	PresidencyID string
	Log          logrus.FieldLogger
}

func NewAggregator(client batch.Client, exec fanout.Executor, presidencyID string, log logrus.FieldLogger) *Aggregator {
	if presidencyID == "" {
		presidencyID = DefaultPresidencyID
	}
	return &Aggregator{Client: batch.Bound(client), Exec: exec, PresidencyID: presidencyID, Log: log}
}

// parseDate validates a required date argument.
func parseDate(date string) (time.Time, error) {
	if strings.TrimSpace(date) == "" {
		return time.Time{}, errs.BadRequest("Selected date is required")
	}
	at, err := common.NormalizeTimestamp(date)
	if err != nil {
		return time.Time{}, errs.BadRequest(err.Error())
	}
	return at, nil
}

// fail converts err into what a public operation returns.
func (a *Aggregator) fail(log logrus.FieldLogger, op string, err error) error {
	if errs.Passthrough(err) {
		return err
	}
	log.WithError(err).Errorf("%s failed", op)
	return errs.Internal("", err)
}

// person enriches one appointee. A nil start means the person was not appointed
// through a relation and is never new.
func (a *Aggregator) person(ctx context.Context, id string, start *time.Time, presidentID string, at time.Time) (model.Person, error) {
	entities, err := a.Client.GetEntities(ctx, id)
	if err != nil {
		return model.Person{}, errors.Wrapf(err, "person %s", id)
	}
	if len(entities) == 0 {
		return model.Person{}, errors.Errorf("person %s not found", id)
	}
	e := entities[0]
	return model.Person{
		ID:          id,
		Name:        common.DecodeName(e.Name),
		IsNew:       start != nil && start.Equal(at),
		IsPresident: e.ID == presidentID,
	}, nil
}
