package service

import (
	"context"
	"fmt"
	"time"

	"github.com/just-nibble/service-miner/internal/core/domain/entities"
	"github.com/just-nibble/service-miner/pkg/errcodes"
)

type SeriesKind string

const (
	SeriesLoc           SeriesKind = "loc"
	SeriesChanges       SeriesKind = "changes"
	SeriesChangesPerLoc SeriesKind = "changes-per-loc"
	SeriesBugs          SeriesKind = "bugs"
)

var SeriesKinds = []SeriesKind{SeriesLoc, SeriesChanges, SeriesChangesPerLoc, SeriesBugs}

func ParseSeriesKind(s string) (SeriesKind, error) {
	for _, k := range SeriesKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown series %q", s)
}

// ServiceSeries holds one value per bin. Values is used by changes-per-loc,
// Counts by the other kinds.
type ServiceSeries struct {
	Service string
	Counts  []int
	Values  []float64
}

type SeriesResult struct {
	Kind   SeriesKind
	Bins   []time.Time
	Series []ServiceSeries
}

// Analyzer answers the questions asked of the mined data: it bins the
// services' history and runs the reconstructions over it.
type Analyzer struct {
	manager *ServiceManager
	binner  *TimeBinner
	recon   *Reconstructor
}

func NewAnalyzer(manager *ServiceManager, binner *TimeBinner, recon *Reconstructor) *Analyzer {
	return &Analyzer{manager: manager, binner: binner, recon: recon}
}

func (a *Analyzer) load(ctx context.Context, names []string, binDays int, until time.Time, withIssues bool) ([]*entities.Service, []time.Time, error) {
	bins, err := a.binner.GetTimeBins(ctx, names, binDays, until)
	if err != nil {
		return nil, nil, err
	}
	services, err := a.manager.GetServices(ctx, names, withIssues)
	if err != nil {
		return nil, nil, err
	}
	return services, bins, nil
}

// Series computes one series per named service over shared bins.
func (a *Analyzer) Series(ctx context.Context, kind SeriesKind, names []string, binDays int, until time.Time) (*SeriesResult, error) {
	services, bins, err := a.load(ctx, names, binDays, until, kind == SeriesBugs)
	if err != nil {
		return nil, err
	}

	res := &SeriesResult{Kind: kind, Bins: bins}
	for _, svc := range services {
		s := ServiceSeries{Service: svc.Name}
		switch kind {
		case SeriesLoc:
			s.Counts, err = a.recon.ComputeLoc(svc, bins)
		case SeriesChanges:
			s.Counts, err = a.recon.ComputeChanges(svc, bins)
		case SeriesChangesPerLoc:
			s.Values, err = a.recon.ComputeChangesPerLoc(svc, bins)
		case SeriesBugs:
			s.Counts, err = a.recon.ComputeBugs(svc, bins)
		default:
			err = fmt.Errorf("unknown series %q", kind)
		}
		if err != nil {
			return nil, err
		}
		res.Series = append(res.Series, s)
	}
	return res, nil
}

func (a *Analyzer) DefectDensity(ctx context.Context, names []string, binDays int, until time.Time) (*DefectDensityReport, error) {
	services, bins, err := a.load(ctx, names, binDays, until, true)
	if err != nil {
		return nil, err
	}
	return a.recon.ComputeBugPerLocRatio(services, bins)
}

func (a *Analyzer) RepairTimes(ctx context.Context, names []string) ([]entities.RepairTime, error) {
	services, err := a.manager.GetServices(ctx, names, true)
	if err != nil {
		return nil, err
	}
	return RepairTimes(services), nil
}

// ChangesVsDefects relates the yearly change volume of the services to
// their yearly defect density.
func (a *Analyzer) ChangesVsDefects(ctx context.Context, names []string, binDays int, until time.Time) (ChangeDefectStats, error) {
	services, bins, err := a.load(ctx, names, binDays, until, true)
	if err != nil {
		return ChangeDefectStats{}, err
	}

	changes := make(map[int]int)
	for _, svc := range services {
		perBin, err := a.recon.ComputeChanges(svc, bins)
		if err != nil {
			return ChangeDefectStats{}, err
		}
		for y, c := range ChangesByYear(bins, perBin) {
			changes[y] += c
		}
	}

	report, err := a.recon.ComputeBugPerLocRatio(services, bins)
	if err != nil {
		return ChangeDefectStats{}, err
	}
	return CompareChangesAndDefects(changes, report.Years), nil
}

func (a *Analyzer) RepositoryLoc(ctx context.Context, owner, name string) ([]entities.CommitLOC, error) {
	repo, err := a.manager.GetRepositoryHistory(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	if repo == nil {
		return nil, fmt.Errorf("repository %s/%s: %w", owner, name, errcodes.ErrNoRecordFound)
	}
	return a.recon.ComputeLocPerRepository(repo), nil
}
