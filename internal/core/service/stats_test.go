package service

import (
	"testing"
	"time"

	"github.com/just-nibble/service-miner/internal/core/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYearlyDefectDensity(t *testing.T) {
	rows := []entities.BugBin{
		{Service: "api", Date: date(2019, 6, 1), Bugs: 2, LOC: 1000},
		{Service: "api", Date: date(2019, 12, 1), Bugs: 4, LOC: 1000},
		{Service: "api", Date: date(2020, 6, 1), Bugs: 3, LOC: 0},
		{Service: "web", Date: date(2020, 6, 1), Bugs: 1, LOC: 500},
	}

	years := YearlyDefectDensity(rows)
	require.Len(t, years, 2)
	assert.Equal(t, 2019, years[0].Year)
	assert.Equal(t, 6, years[0].Bugs)
	assert.InDelta(t, 3.0, years[0].DefectDensity, 1e-9)
	assert.Equal(t, 2020, years[1].Year)
	assert.InDelta(t, 2.0, years[1].DefectDensity, 1e-9)
}

func TestComputeBugPerLocRatio(t *testing.T) {
	repo := repoWith(
		commit(t, "a", date(2019, 1, 5), "init", 1000, 0),
		commit(t, "b", date(2019, 2, 5), "fix crash", 1, 1),
	)
	svc := serviceWith("api", entities.ServiceRepository{Repository: repo})
	bins := []time.Time{date(2019, 1, 1), date(2019, 2, 1), date(2019, 3, 1)}

	report, err := newTestReconstructor().ComputeBugPerLocRatio([]*entities.Service{svc}, bins)
	require.NoError(t, err)
	require.Len(t, report.Bins, 2)
	assert.Equal(t, entities.BugBin{Service: "api", Date: date(2019, 3, 1), Bugs: 1, LOC: 1000}, report.Bins[1])
	require.Len(t, report.Years, 1)
	assert.InDelta(t, 0.5, report.Years[0].DefectDensity, 1e-9)
}

func TestRepairTimesMedianPerYear(t *testing.T) {
	closedAfter := func(created time.Time, days int) entities.Issue {
		closed := created.Add(time.Duration(days) * day)
		return entities.Issue{CreatedAt: created, ClosedAt: &closed}
	}
	repo := &entities.Repository{Issues: []entities.Issue{
		closedAfter(date(2019, 1, 1), 2),
		closedAfter(date(2019, 2, 1), 10),
		closedAfter(date(2019, 3, 1), 4),
		closedAfter(date(2020, 3, 1), 1),
		{CreatedAt: date(2020, 1, 1)},
	}}
	svc := serviceWith("api", entities.ServiceRepository{Repository: repo})

	times := RepairTimes([]*entities.Service{svc})
	require.Len(t, times, 2)
	assert.Equal(t, entities.RepairTime{Year: 2019, Issues: 3, MedianDays: 4}, times[0])
	assert.Equal(t, entities.RepairTime{Year: 2020, Issues: 1, MedianDays: 1}, times[1])
}

func TestCompareChangesAndDefects(t *testing.T) {
	changes := map[int]int{2018: 100, 2019: 200, 2020: 300, 2021: 50}
	density := []entities.DefectDensity{
		{Year: 2018, DefectDensity: 1},
		{Year: 2019, DefectDensity: 2},
		{Year: 2020, DefectDensity: 3},
	}

	st := CompareChangesAndDefects(changes, density)
	assert.Equal(t, []int{2018, 2019, 2020}, st.Years)
	assert.InDelta(t, 0.01, st.Slope, 1e-9)
	assert.InDelta(t, 0, st.Intercept, 1e-9)
	assert.InDelta(t, 1, st.RSquared, 1e-9)
	assert.InDelta(t, 1, st.Correlation, 1e-9)

	single := CompareChangesAndDefects(changes, density[:1])
	assert.Zero(t, single.Slope)
}

func TestChangesByYear(t *testing.T) {
	bins := []time.Time{date(2019, 11, 1), date(2019, 12, 1), date(2020, 1, 1), date(2020, 2, 1)}
	assert.Equal(t, map[int]int{2019: 5, 2020: 7}, ChangesByYear(bins, []int{5, 3, 4}))
}
