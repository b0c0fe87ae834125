package service

import (
	"math"
	"time"

	"github.com/just-nibble/service-miner/internal/core/domain/entities"
	"github.com/sirupsen/logrus"
)

// Reconstructor rebuilds time series from the mainline commits and issues
// attached to a service. Bin i covers (b[i-1], b[i]]; the first bin also
// includes b[0]. Series hold one value per bin.
type Reconstructor struct {
	bugs      Classifier
	issueRefs Classifier
	log       logrus.FieldLogger
}

func NewReconstructor(bugs, issueRefs Classifier, log logrus.FieldLogger) *Reconstructor {
	return &Reconstructor{bugs: bugs, issueRefs: issueRefs, log: log}
}

type binTotals struct {
	loc     int
	changes int
}

func inBin(t, lo time.Time, loInclusive bool, hi time.Time) bool {
	if t.After(hi) {
		return false
	}
	if loInclusive {
		return !t.Before(lo)
	}
	return t.After(lo)
}

// accumulate walks the bins once. The LOC counter is shared by every
// repository of the service. It starts at the sum of the initial LOC of the
// repositories associated from b[0] on. A repository whose association starts
// later resets it to its own initial LOC in the bin holding that start and
// only counts commits from then on.
func (r *Reconstructor) accumulate(svc *entities.Service, bins []time.Time) ([]binTotals, error) {
	if err := ValidateTimeBins(bins); err != nil {
		return nil, err
	}

	loc := 0
	for _, sr := range svc.Repositories {
		if sr.Repository != nil && sr.InitialLOC != nil && !startsAfter(sr, bins[0]) {
			loc += *sr.InitialLOC
		}
	}

	totals := make([]binTotals, 0, len(bins)-1)
	for i := 1; i < len(bins); i++ {
		prev, cur, first := bins[i-1], bins[i], i == 1
		changes := 0

		for _, sr := range svc.Repositories {
			if sr.Repository == nil {
				continue
			}

			lo, loInclusive := prev, first
			if startsAfter(sr, bins[0]) && inBin(*sr.StartDate, prev, first, cur) {
				lo, loInclusive = *sr.StartDate, true
				if sr.InitialLOC != nil {
					loc = *sr.InitialLOC
				}
			}

			for _, c := range sr.Repository.Commits {
				if !inBin(c.Date, lo, loInclusive, cur) || !sr.Covers(c.Date) {
					continue
				}
				a, d, ch := c.Totals()
				loc += a - d
				changes += ch
			}
		}

		totals = append(totals, binTotals{loc: loc, changes: changes})
	}
	return totals, nil
}

func startsAfter(sr entities.ServiceRepository, t time.Time) bool {
	return sr.StartDate != nil && sr.StartDate.After(t)
}

// ComputeLoc returns the service LOC at the end of each bin. A negative
// running count means the mined deltas are incomplete; it is logged and
// reported as zero.
func (r *Reconstructor) ComputeLoc(svc *entities.Service, bins []time.Time) ([]int, error) {
	totals, err := r.accumulate(svc, bins)
	if err != nil {
		return nil, err
	}

	locs := make([]int, len(totals))
	for i, t := range totals {
		if t.loc < 0 {
			r.log.WithFields(logrus.Fields{
				"service": svc.Name,
				"bin_end": bins[i+1].Format(time.DateOnly),
				"loc":     t.loc,
			}).Warn("negative loc, deltas are missing for this service")
			continue
		}
		locs[i] = t.loc
	}
	return locs, nil
}

// ComputeChanges returns the sum of additions and deletions per bin.
func (r *Reconstructor) ComputeChanges(svc *entities.Service, bins []time.Time) ([]int, error) {
	totals, err := r.accumulate(svc, bins)
	if err != nil {
		return nil, err
	}

	changes := make([]int, len(totals))
	for i, t := range totals {
		changes[i] = t.changes
	}
	return changes, nil
}

// ComputeChangesPerLoc divides each bin's changes by the LOC at its end.
// Bins without LOC yield NaN.
func (r *Reconstructor) ComputeChangesPerLoc(svc *entities.Service, bins []time.Time) ([]float64, error) {
	totals, err := r.accumulate(svc, bins)
	if err != nil {
		return nil, err
	}

	ratios := make([]float64, len(totals))
	for i, t := range totals {
		if t.loc <= 0 {
			ratios[i] = math.NaN()
			continue
		}
		ratios[i] = float64(t.changes) / float64(t.loc)
	}
	return ratios, nil
}

// ComputeLocPerRepository returns the running LOC after each mainline
// commit of repo, oldest first. The count never drops below zero.
func (r *Reconstructor) ComputeLocPerRepository(repo *entities.Repository) []entities.CommitLOC {
	commits := make([]*entities.Commit, len(repo.Commits))
	copy(commits, repo.Commits)
	sortByDate(commits)

	loc := 0
	out := make([]entities.CommitLOC, 0, len(commits))
	for _, c := range commits {
		a, d, _ := c.Totals()
		loc += a - d
		if loc < 0 {
			loc = 0
		}
		out = append(out, entities.CommitLOC{
			SHA:  c.SHA,
			LOC:  loc,
			Date: c.Date.Format("2006-01-02T15:04:05"),
		})
	}
	return out
}

// IsBugFix reports a commit message that fixes a bug without closing an
// issue by reference; referenced issues are already counted on their own.
func (r *Reconstructor) IsBugFix(message string) bool {
	return r.bugs.Match(message) && !r.issueRefs.Match(message)
}

// ComputeBugs counts per bin the issues closed in it plus the bug-fix
// commits that do not close an issue by reference.
func (r *Reconstructor) ComputeBugs(svc *entities.Service, bins []time.Time) ([]int, error) {
	if err := ValidateTimeBins(bins); err != nil {
		return nil, err
	}

	bugs := make([]int, len(bins)-1)
	for i := 1; i < len(bins); i++ {
		prev, cur, first := bins[i-1], bins[i], i == 1

		for _, sr := range svc.Repositories {
			if sr.Repository == nil {
				continue
			}
			for _, issue := range sr.Repository.Issues {
				if issue.ClosedAt != nil && inBin(*issue.ClosedAt, prev, first, cur) {
					bugs[i-1]++
				}
			}
			for _, c := range sr.Repository.Commits {
				if inBin(c.Date, prev, first, cur) && sr.Covers(c.Date) && r.IsBugFix(c.Comment) {
					bugs[i-1]++
				}
			}
		}
	}
	return bugs, nil
}
