package service

import (
	"context"
	"fmt"
	"time"

	"github.com/just-nibble/service-miner/internal/adapters/db"
	"github.com/just-nibble/service-miner/pkg/errcodes"
	"github.com/sirupsen/logrus"
)

const day = 24 * time.Hour

type TimeBinner struct {
	services db.ServiceStore
	commits  db.CommitStore
	log      logrus.FieldLogger
}

func NewTimeBinner(services db.ServiceStore, commits db.CommitStore, log logrus.FieldLogger) *TimeBinner {
	return &TimeBinner{services: services, commits: commits, log: log}
}

// GetTimeBins partitions the history of the named services, from their
// earliest commit up to until, into bins roughly approxBinDays wide. Every
// repository of every service must have at least one commit.
func (b *TimeBinner) GetTimeBins(ctx context.Context, serviceNames []string, approxBinDays int, until time.Time) ([]time.Time, error) {
	if len(serviceNames) == 0 {
		return nil, fmt.Errorf("no services given: %w", errcodes.ErrInvalidTimeBins)
	}

	var first time.Time
	for _, name := range serviceNames {
		svc, err := b.services.GetServiceByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if svc == nil {
			return nil, fmt.Errorf("service %q: %w", name, errcodes.ErrNoRecordFound)
		}

		links, err := b.services.GetServiceRepositories(ctx, svc.ID)
		if err != nil {
			return nil, err
		}
		if len(links) == 0 {
			return nil, fmt.Errorf("service %q has no repositories: %w", name, errcodes.ErrEmptyHistory)
		}

		for _, link := range links {
			c, err := b.commits.GetCommitByPosition(ctx, link.RepositoryID, 0)
			if err != nil {
				return nil, err
			}
			if c == nil {
				return nil, fmt.Errorf("service %q repository %d: %w", name, link.RepositoryID, errcodes.ErrEmptyHistory)
			}
			if first.IsZero() || c.Date.Before(first) {
				first = c.Date
			}
		}
	}

	bins, err := BuildTimeBins(first, until.UTC(), approxBinDays)
	if err != nil {
		return nil, err
	}
	b.log.WithFields(logrus.Fields{"services": serviceNames, "bins": len(bins) - 1}).Debug("time bins built")
	return bins, nil
}

// BuildTimeBins returns strictly increasing boundaries b0 = first .. bn = until.
// The bin count is the span in days divided by approxBinDays, rounded up
// when the remainder of one step exceeds half a day. Boundaries are equally
// spaced and the last one is until itself.
func BuildTimeBins(first, until time.Time, approxBinDays int) ([]time.Time, error) {
	if approxBinDays <= 0 {
		return nil, fmt.Errorf("approximate bin width %d: %w", approxBinDays, errcodes.ErrInvalidTimeBins)
	}
	if !until.After(first) {
		return nil, fmt.Errorf("history starts %s, not before %s: %w",
			first.Format(time.RFC3339), until.Format(time.RFC3339), errcodes.ErrInvalidTimeBins)
	}

	span := until.Sub(first)
	step := span / time.Duration(approxBinDays)
	numSteps := int(step / day)
	if step%day > day/2 {
		numSteps++
	}
	if numSteps < 1 {
		numSteps = 1
	}

	stepSize := span / time.Duration(numSteps)
	bins := make([]time.Time, 0, numSteps+1)
	bins = append(bins, first)
	t := first
	for i := 1; i < numSteps; i++ {
		t = t.Add(stepSize)
		bins = append(bins, t)
	}
	bins = append(bins, until)

	if err := ValidateTimeBins(bins); err != nil {
		return nil, err
	}
	return bins, nil
}

// ValidateTimeBins requires at least one bin and strictly increasing boundaries.
func ValidateTimeBins(bins []time.Time) error {
	if len(bins) < 2 {
		return fmt.Errorf("need at least two boundaries, got %d: %w", len(bins), errcodes.ErrInvalidTimeBins)
	}
	for i := 1; i < len(bins); i++ {
		if !bins[i].After(bins[i-1]) {
			return fmt.Errorf("boundary %d (%s) does not follow %s: %w", i,
				bins[i].Format(time.RFC3339), bins[i-1].Format(time.RFC3339), errcodes.ErrInvalidTimeBins)
		}
	}
	return nil
}
