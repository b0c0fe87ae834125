package seeder

import (
	"context"

	"github.com/just-nibble/service-miner/internal/core/service"
	"github.com/sirupsen/logrus"
)

type ServiceLister interface {
	ListServiceNames(ctx context.Context) ([]string, error)
}

type Miner interface {
	MineService(ctx context.Context, target service.ServiceTarget) error
}

// SeedServices mines, in the background, every target whose service is not
// stored yet. It returns a channel closed once those runs finish, and the
// number of services scheduled.
func SeedServices(ctx context.Context, lister ServiceLister, miner Miner, targets []service.ServiceTarget, log logrus.FieldLogger) (<-chan struct{}, int, error) {
	names, err := lister.ListServiceNames(ctx)
	if err != nil {
		return nil, 0, err
	}
	stored := make(map[string]struct{}, len(names))
	for _, n := range names {
		stored[n] = struct{}{}
	}

	var missing []service.ServiceTarget
	for _, t := range targets {
		if _, ok := stored[t.Name]; !ok {
			missing = append(missing, t)
		}
	}

	done := make(chan struct{})
	if len(missing) == 0 {
		close(done)
		return done, 0, nil
	}

	log.WithField("services", len(missing)).Info("seeding database")
	go func() {
		defer close(done)
		for _, t := range missing {
			if err := miner.MineService(ctx, t); err != nil {
				log.WithError(err).WithField("service", t.Name).Error("seeding failed")
				continue
			}
			log.WithField("service", t.Name).Info("service seeded")
		}
	}()
	return done, len(missing), nil
}
