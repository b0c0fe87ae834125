package entities

import (
	"time"

	"github.com/just-nibble/service-miner/pkg/errcodes"
)

// RepositoryLink is the stored association between a service and one of
// its repositories. Nil dates are unbounded.
type RepositoryLink struct {
	RepositoryID uint
	StartDate    *time.Time
	EndDate      *time.Time
	InitialLOC   *int
}

func (l RepositoryLink) Validate(service *Service) error {
	if l.InitialLOC != nil && *l.InitialLOC < 0 {
		return errcodes.Integrity("negative initial loc %d", *l.InitialLOC)
	}
	if l.StartDate != nil && service != nil && l.StartDate.Before(service.StartDate) {
		return errcodes.Integrity("repository start %s precedes service %s start %s",
			l.StartDate.Format(time.DateOnly), service.Name, service.StartDate.Format(time.DateOnly))
	}
	if l.EndDate != nil && service != nil && service.EndDate != nil && l.EndDate.After(*service.EndDate) {
		return errcodes.Integrity("repository end %s follows service %s end %s",
			l.EndDate.Format(time.DateOnly), service.Name, service.EndDate.Format(time.DateOnly))
	}
	if l.StartDate != nil && l.EndDate != nil && l.EndDate.Before(*l.StartDate) {
		return errcodes.Integrity("repository end %s precedes its start %s",
			l.EndDate.Format(time.DateOnly), l.StartDate.Format(time.DateOnly))
	}
	return nil
}

type ServiceRepository struct {
	Repository *Repository
	StartDate  *time.Time
	EndDate    *time.Time
	InitialLOC *int
}

// Covers reports whether t falls inside the association window [start, end).
func (sr ServiceRepository) Covers(t time.Time) bool {
	if sr.StartDate != nil && t.Before(*sr.StartDate) {
		return false
	}
	return sr.EndDate == nil || t.Before(*sr.EndDate)
}

type Service struct {
	ID           uint
	Name         string
	StartDate    time.Time
	EndDate      *time.Time
	Extensions   []string
	Repositories []ServiceRepository
}

func NewService(name string, start time.Time, end *time.Time) (*Service, error) {
	if name == "" {
		return nil, errcodes.Integrity("service without name")
	}
	if end != nil && end.Before(start) {
		return nil, errcodes.Integrity("service %s ends before it starts", name)
	}
	return &Service{Name: name, StartDate: start.UTC(), EndDate: end}, nil
}

func (s *Service) AddRepository(repo *Repository, link RepositoryLink) error {
	if err := link.Validate(s); err != nil {
		return err
	}
	s.Repositories = append(s.Repositories, ServiceRepository{
		Repository: repo,
		StartDate:  link.StartDate,
		EndDate:    link.EndDate,
		InitialLOC: link.InitialLOC,
	})
	return nil
}
