package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/orgchart/internal/core/errs"
	"github.com/agenthands/orgchart/internal/core/fanout"
	"github.com/agenthands/orgchart/internal/core/graphtest"
	"github.com/agenthands/orgchart/internal/core/model"
)

var hex = graphtest.Hex

const selectedDate = "2023-10-27"

func newTestAggregator(client *graphtest.MockClient) *Aggregator {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewAggregator(client, fanout.NewExecutor(3), "", log)
}

func cabinet() *graphtest.MockClient {
	return graphtest.NewMockClient().
		AddEntity("pres_01", hex("President X"), "President").
		AddEntity("pers_01", hex("Minister A"), "Person").
		AddEntity("pers_02", hex("Minister B"), "Person").
		AddEntity("min_01", hex("Ministry of Finance"), "CabinetMinister").
		AddEntity("min_02", hex("Ministry of Defence"), "CabinetMinister").
		AddEntity("smin_01", hex("State Ministry of Fisheries"), "StateMinister").
		AddRelation("pres_01", model.AsMinister, "min_01", selectedDate, "").
		AddRelation("pres_01", model.AsMinister, "min_02", "2022-01-01", "").
		AddRelation("pres_01", model.AsMinister, "smin_01", "2022-01-01", "").
		AddRelation("pres_01", model.AsMinister, "min_old", "2015-01-01", "2020-01-01").
		AddRelation("min_01", model.AsAppointed, "pers_01", selectedDate, "").
		AddRelation("smin_01", model.AsAppointed, "pers_02", "2022-05-01", "")
}

func TestActivePortfolios(t *testing.T) {
	client := cabinet()

	got, err := newTestAggregator(client).ActivePortfolios(context.Background(), "pres_01", selectedDate)
	require.NoError(t, err)

	require.Len(t, got.Portfolios, 3)
	assert.Equal(t, 2, got.CabinetMinistries)
	assert.Equal(t, 1, got.StateMinistries)
	assert.Equal(t, 1, got.NewMinistries)
	assert.Equal(t, 1, got.NewMinisters)
	assert.Equal(t, 1, got.MinistriesUnderPresident)

	finance := got.Portfolios[0]
	assert.Equal(t, "min_01", finance.ID)
	assert.Equal(t, "Ministry of Finance", finance.Name)
	assert.Equal(t, "CabinetMinister", finance.Type)
	assert.True(t, finance.IsNew)
	require.Len(t, finance.Ministers, 1)
	assert.Equal(t, model.Person{ID: "pers_01", Name: "Minister A", IsNew: true}, finance.Ministers[0])

	defence := got.Portfolios[1]
	require.Len(t, defence.Ministers, 1)
	assert.Equal(t, model.Person{ID: "pres_01", Name: "President X", IsPresident: true}, defence.Ministers[0])

	assert.Equal(t, "StateMinister", got.Portfolios[2].Type)
}

func TestActivePortfolios_Validation(t *testing.T) {
	tests := []struct {
		name        string
		presidentID string
		date        string
	}{
		{"empty president", "", selectedDate},
		{"blank president", "   ", selectedDate},
		{"empty date", "pres_01", ""},
		{"malformed date", "pres_01", "27-10-2023"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := cabinet()

			_, err := newTestAggregator(client).ActivePortfolios(context.Background(), tt.presidentID, tt.date)

			assert.True(t, errs.IsBadRequest(err))
			assert.Zero(t, client.Calls())
		})
	}
}

func TestActivePortfolios_PartialFailure(t *testing.T) {
	client := cabinet().FailRelations("min_02", errors.New("timeout"))

	got, err := newTestAggregator(client).ActivePortfolios(context.Background(), "pres_01", selectedDate)
	require.NoError(t, err)

	require.Len(t, got.Portfolios, 2)
	assert.Equal(t, 1, got.CabinetMinistries)
	assert.Equal(t, 1, got.StateMinistries)
	assert.Zero(t, got.MinistriesUnderPresident)
}

func TestActivePortfolios_EveryPortfolioFailed(t *testing.T) {
	cause := errors.New("timeout")
	client := cabinet().
		FailRelations("min_01", cause).
		FailRelations("min_02", cause).
		FailRelations("smin_01", cause)

	_, err := newTestAggregator(client).ActivePortfolios(context.Background(), "pres_01", selectedDate)

	require.Error(t, err)
	assert.Equal(t, errs.KindInternal, errs.KindOf(err))
	assert.Equal(t, errs.GenericMessage, err.Error())
}

func TestActivePortfolios_UnknownPortfolioEntity(t *testing.T) {
	client := cabinet().FailEntity("min_01", errors.New("decode error"))

	got, err := newTestAggregator(client).ActivePortfolios(context.Background(), "pres_01", selectedDate)
	require.NoError(t, err)

	unknownPortfolio := got.Portfolios[0]
	assert.Equal(t, "min_01", unknownPortfolio.ID)
	assert.Equal(t, "Unknown", unknownPortfolio.Name)
	assert.Equal(t, "Unknown", unknownPortfolio.Type)
	assert.False(t, unknownPortfolio.IsNew)
	assert.Len(t, unknownPortfolio.Ministers, 1)
	assert.Equal(t, 3, got.CabinetMinistries+got.StateMinistries)
}

func TestActivePortfolios_MinisterFailureIsOmitted(t *testing.T) {
	client := cabinet().FailEntity("pers_01", errors.New("timeout"))

	got, err := newTestAggregator(client).ActivePortfolios(context.Background(), "pres_01", selectedDate)
	require.NoError(t, err)

	assert.Empty(t, got.Portfolios[0].Ministers)
	assert.Zero(t, got.NewMinisters)
}

func TestActivePortfolios_NoPortfolios(t *testing.T) {
	client := cabinet()

	got, err := newTestAggregator(client).ActivePortfolios(context.Background(), "pres_02", selectedDate)
	require.NoError(t, err)

	assert.Empty(t, got.Portfolios)
	assert.NotNil(t, got.Portfolios)
	assert.Zero(t, got.CabinetMinistries)
}

func TestActivePortfolios_BackendFailure(t *testing.T) {
	client := cabinet().FailRelations("pres_01", errors.New("connection refused"))

	_, err := newTestAggregator(client).ActivePortfolios(context.Background(), "pres_01", selectedDate)

	assert.Equal(t, errs.KindInternal, errs.KindOf(err))
	assert.NotContains(t, err.Error(), "connection refused")
}

func departments() *graphtest.MockClient {
	return graphtest.NewMockClient().
		AddEntity("dep_01", hex("Department of Census"), "Department").
		AddEntity("dep_02", hex("Department of Fisheries"), "Department").
		AddRelation("min_01", model.AsDepartment, "dep_01", selectedDate, "").
		AddRelation("min_01", model.AsDepartment, "dep_02", "2020-01-01", "").
		AddRelation("dep_01", model.AsCategory, "cat_01", "2020-01-01", "")
}

func TestDepartmentsByPortfolio(t *testing.T) {
	client := departments()

	got, err := newTestAggregator(client).DepartmentsByPortfolio(context.Background(), "min_01", selectedDate)
	require.NoError(t, err)

	assert.Equal(t, 2, got.TotalDepartments)
	assert.Equal(t, 1, got.NewDepartments)
	assert.Equal(t, []model.Department{
		{ID: "dep_01", Name: "Department of Census", IsNew: true, HasData: true},
		{ID: "dep_02", Name: "Department of Fisheries", IsNew: false, HasData: false},
	}, got.Departments)
}

func TestDepartmentsByPortfolio_Validation(t *testing.T) {
	client := departments()
	agg := newTestAggregator(client)

	_, err := agg.DepartmentsByPortfolio(context.Background(), "", selectedDate)
	assert.True(t, errs.IsBadRequest(err))

	_, err = agg.DepartmentsByPortfolio(context.Background(), "min_01", "")
	assert.True(t, errs.IsBadRequest(err))

	assert.Zero(t, client.Calls())
}

func TestDepartmentsByPortfolio_PartialAndTotalFailure(t *testing.T) {
	t.Run("one department fails", func(t *testing.T) {
		client := departments().FailEntity("dep_02", errors.New("timeout"))

		got, err := newTestAggregator(client).DepartmentsByPortfolio(context.Background(), "min_01", selectedDate)
		require.NoError(t, err)

		assert.Equal(t, 1, got.TotalDepartments)
		assert.Equal(t, "dep_01", got.Departments[0].ID)
	})

	t.Run("every department fails", func(t *testing.T) {
		client := departments().
			FailEntity("dep_01", errors.New("timeout")).
			FailEntity("dep_02", errors.New("timeout"))

		_, err := newTestAggregator(client).DepartmentsByPortfolio(context.Background(), "min_01", selectedDate)
		assert.Equal(t, errs.KindInternal, errs.KindOf(err))
	})

	t.Run("category failure only clears hasData", func(t *testing.T) {
		client := departments().FailRelations("dep_01", errors.New("timeout"))

		got, err := newTestAggregator(client).DepartmentsByPortfolio(context.Background(), "min_01", selectedDate)
		require.NoError(t, err)

		assert.Equal(t, 2, got.TotalDepartments)
		assert.False(t, got.Departments[0].HasData)
	})
}

func TestPrimeMinister(t *testing.T) {
	client := graphtest.NewMockClient().
		AddEntity("pm_01", hex("Dinesh"), "Person").
		AddRelation("gov_01", model.AsPrimeMinister, "pm_01", "2022-07-26", "2024-09-23")
	agg := newTestAggregator(client)

	t.Run("in office", func(t *testing.T) {
		got, err := agg.PrimeMinister(context.Background(), "2023-01-01")
		require.NoError(t, err)
		assert.Equal(t, &model.PrimeMinister{ID: "pm_01", Name: "Dinesh", IsNew: false, Term: "2022 Jul - 2024 Sep"}, got)
	})

	t.Run("first day is new", func(t *testing.T) {
		got, err := agg.PrimeMinister(context.Background(), "2022-07-26")
		require.NoError(t, err)
		assert.True(t, got.IsNew)
	})

	t.Run("vacant", func(t *testing.T) {
		got, err := agg.PrimeMinister(context.Background(), "2025-01-01")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("date required", func(t *testing.T) {
		_, err := agg.PrimeMinister(context.Background(), " ")
		assert.True(t, errs.IsBadRequest(err))
	})
}

func TestPrimeMinister_PersonFailure(t *testing.T) {
	client := graphtest.NewMockClient().
		AddRelation("gov_01", model.AsPrimeMinister, "pm_01", "2022-07-26", "")

	_, err := newTestAggregator(client).PrimeMinister(context.Background(), "2023-01-01")

	assert.Equal(t, errs.KindInternal, errs.KindOf(err))
}

// countingClient records the most backend calls it ever saw in flight at once.
type countingClient struct {
	*graphtest.MockClient
	inFlight atomic.Int64
	peak     atomic.Int64
}

func (c *countingClient) enter() func() {
	n := c.inFlight.Add(1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(2 * time.Millisecond)
	return func() { c.inFlight.Add(-1) }
}

func (c *countingClient) GetEntities(ctx context.Context, id string) ([]model.Entity, error) {
	defer c.enter()()
	return c.MockClient.GetEntities(ctx, id)
}

func (c *countingClient) FetchRelations(ctx context.Context, entityID string, filter model.RelationFilter) ([]model.Relation, error) {
	defer c.enter()()
	return c.MockClient.FetchRelations(ctx, entityID, filter)
}

func TestActivePortfolios_BackendCallsStayWithinLimit(t *testing.T) {
	mock := graphtest.NewMockClient().AddEntity("pres_01", hex("President X"), "President")
	for i := 0; i < 10; i++ {
		portfolioID := fmt.Sprintf("min_%02d", i)
		mock.AddEntity(portfolioID, hex(portfolioID), "CabinetMinister").
			AddRelation("pres_01", model.AsMinister, portfolioID, "2022-01-01", "")
		for j := 0; j < 5; j++ {
			personID := fmt.Sprintf("per_%02d_%d", i, j)
			mock.AddEntity(personID, hex(personID), "Person").
				AddRelation(portfolioID, model.AsAppointed, personID, "2022-01-01", "")
		}
	}
	client := &countingClient{MockClient: mock}

	log := logrus.New()
	log.SetOutput(io.Discard)
	agg := NewAggregator(client, fanout.NewExecutor(2), "", log)

	got, err := agg.ActivePortfolios(context.Background(), "pres_01", selectedDate)
	require.NoError(t, err)

	require.Len(t, got.Portfolios, 10)
	for _, p := range got.Portfolios {
		assert.Len(t, p.Ministers, 5)
	}
	assert.LessOrEqual(t, client.peak.Load(), int64(2))
}
