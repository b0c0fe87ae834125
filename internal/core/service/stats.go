package service

import (
	"sort"
	"time"

	"github.com/just-nibble/service-miner/internal/core/domain/entities"
	"gonum.org/v1/gonum/stat"
)

type DefectDensityReport struct {
	Bins  []entities.BugBin        `json:"bins"`
	Years []entities.DefectDensity `json:"years"`
}

// ComputeBugPerLocRatio computes bug counts and LOC per bin for each
// service, then defect density per year over the bins whose LOC is nonzero.
func (r *Reconstructor) ComputeBugPerLocRatio(services []*entities.Service, bins []time.Time) (*DefectDensityReport, error) {
	report := &DefectDensityReport{}
	for _, svc := range services {
		locs, err := r.ComputeLoc(svc, bins)
		if err != nil {
			return nil, err
		}
		bugs, err := r.ComputeBugs(svc, bins)
		if err != nil {
			return nil, err
		}
		for i := range locs {
			report.Bins = append(report.Bins, entities.BugBin{
				Service: svc.Name,
				Date:    bins[i+1],
				Bugs:    bugs[i],
				LOC:     locs[i],
			})
		}
	}

	report.Years = YearlyDefectDensity(report.Bins)
	return report, nil
}

// YearlyDefectDensity sums bugs and LOC per year of the bin end date and
// returns bugs per thousand lines, oldest year first.
func YearlyDefectDensity(rows []entities.BugBin) []entities.DefectDensity {
	byYear := make(map[int]*entities.DefectDensity)
	for _, row := range rows {
		if row.LOC == 0 {
			continue
		}
		y := row.Date.Year()
		agg, ok := byYear[y]
		if !ok {
			agg = &entities.DefectDensity{Year: y}
			byYear[y] = agg
		}
		agg.Bugs += row.Bugs
		agg.LOC += row.LOC
	}

	out := make([]entities.DefectDensity, 0, len(byYear))
	for _, agg := range byYear {
		agg.DefectDensity = float64(agg.Bugs) / (float64(agg.LOC) / 1000)
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// RepairTimes returns the median number of days issues stayed open, per
// year of closing, across every repository of the given services.
func RepairTimes(services []*entities.Service) []entities.RepairTime {
	byYear := make(map[int][]float64)
	for _, svc := range services {
		for _, sr := range svc.Repositories {
			if sr.Repository == nil {
				continue
			}
			for _, issue := range sr.Repository.Issues {
				days, ok := issue.TimeToRepair()
				if !ok {
					continue
				}
				y := issue.ClosedAt.Year()
				byYear[y] = append(byYear[y], days)
			}
		}
	}

	out := make([]entities.RepairTime, 0, len(byYear))
	for y, days := range byYear {
		sort.Float64s(days)
		out = append(out, entities.RepairTime{
			Year:       y,
			Issues:     len(days),
			MedianDays: stat.Quantile(0.5, stat.Empirical, days, nil),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// ChangesByYear folds a per-bin changes series into yearly totals keyed by
// the year of each bin's end.
func ChangesByYear(bins []time.Time, changes []int) map[int]int {
	out := make(map[int]int)
	for i, c := range changes {
		if i+1 >= len(bins) {
			break
		}
		out[bins[i+1].Year()] += c
	}
	return out
}

type ChangeDefectStats struct {
	Years       []int
	Changes     []float64
	Density     []float64
	Slope       float64
	Intercept   float64
	RSquared    float64
	Correlation float64
}

// CompareChangesAndDefects regresses defect density on change volume over
// the years present in both inputs. Fewer than two common years leave the
// statistics at zero.
func CompareChangesAndDefects(changes map[int]int, density []entities.DefectDensity) ChangeDefectStats {
	var st ChangeDefectStats
	for _, d := range density {
		c, ok := changes[d.Year]
		if !ok {
			continue
		}
		st.Years = append(st.Years, d.Year)
		st.Changes = append(st.Changes, float64(c))
		st.Density = append(st.Density, d.DefectDensity)
	}
	if len(st.Years) < 2 {
		return st
	}

	st.Intercept, st.Slope = stat.LinearRegression(st.Changes, st.Density, nil, false)
	st.RSquared = stat.RSquared(st.Changes, st.Density, nil, st.Intercept, st.Slope)
	st.Correlation = stat.Correlation(st.Changes, st.Density, nil)
	return st
}

func sortByDate(commits []*entities.Commit) {
	sort.SliceStable(commits, func(i, j int) bool { return commits[i].Date.Before(commits[j].Date) })
}
