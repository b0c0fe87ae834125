package service

import (
	"context"
	"fmt"
	"time"

	"github.com/just-nibble/service-miner/internal/adapters/db"
	"github.com/just-nibble/service-miner/internal/core/domain/entities"
	"github.com/just-nibble/service-miner/pkg/errcodes"
	"github.com/sirupsen/logrus"
)

// ServiceManager stores services and loads them with their mainline
// histories for analysis.
type ServiceManager struct {
	services  db.ServiceStore
	repos     db.RepositoryStore
	issues    db.IssueStore
	commits   *CommitService
	excluding []string
	log       logrus.FieldLogger
}

// NewServiceManager wires the stores. excluding adds filename patterns
// ignored for every service.
func NewServiceManager(services db.ServiceStore, repos db.RepositoryStore, issues db.IssueStore, commits *CommitService, excluding []string, log logrus.FieldLogger) *ServiceManager {
	return &ServiceManager{
		services:  services,
		repos:     repos,
		issues:    issues,
		commits:   commits,
		excluding: excluding,
		log:       log,
	}
}

// InsertService creates the service or returns the stored one of that name.
// A non-empty extension list replaces the stored one.
func (m *ServiceManager) InsertService(ctx context.Context, name string, start time.Time, end *time.Time, extensions []string) (*entities.Service, error) {
	svc, err := entities.NewService(name, start, end)
	if err != nil {
		return nil, err
	}

	saved, err := m.services.InsertService(ctx, svc)
	if err != nil {
		return nil, err
	}
	if len(extensions) > 0 {
		if err := m.services.SetExtensions(ctx, saved.ID, extensions); err != nil {
			return nil, err
		}
		saved.Extensions = extensions
	}
	return saved, nil
}

func (m *ServiceManager) service(ctx context.Context, name string) (*entities.Service, error) {
	svc, err := m.services.GetServiceByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, fmt.Errorf("service %q: %w", name, errcodes.ErrNoRecordFound)
	}
	return svc, nil
}

// InsertServiceRepository associates a stored repository with a service. The
// association may not start before the service does.
func (m *ServiceManager) InsertServiceRepository(ctx context.Context, serviceName string, link entities.RepositoryLink) error {
	svc, err := m.service(ctx, serviceName)
	if err != nil {
		return err
	}
	if err := link.Validate(svc); err != nil {
		return err
	}
	return m.services.InsertServiceRepository(ctx, svc.ID, link)
}

// AddPatterns records filename filters of a service; repositoryID 0 applies
// them to all its repositories.
func (m *ServiceManager) AddPatterns(ctx context.Context, serviceName string, repositoryID uint, including, excluding []string) error {
	svc, err := m.service(ctx, serviceName)
	if err != nil {
		return err
	}
	for _, p := range including {
		if err := m.services.AddPattern(ctx, svc.ID, repositoryID, db.PatternIncluding, p); err != nil {
			return err
		}
	}
	for _, p := range excluding {
		if err := m.services.AddPattern(ctx, svc.ID, repositoryID, db.PatternExcluding, p); err != nil {
			return err
		}
	}
	return nil
}

// GetService loads a service with, for each repository, its mainline
// commits inside the association window filtered to the service's files.
// Issues are attached when withIssues is set. Unknown names yield nil.
func (m *ServiceManager) GetService(ctx context.Context, name string, withIssues bool) (*entities.Service, error) {
	svc, err := m.services.GetServiceByName(ctx, name)
	if err != nil || svc == nil {
		return nil, err
	}

	exts, err := m.services.GetExtensions(ctx, svc.ID)
	if err != nil {
		return nil, err
	}
	svc.Extensions = exts

	links, err := m.services.GetServiceRepositories(ctx, svc.ID)
	if err != nil {
		return nil, err
	}

	for _, link := range links {
		repo, err := m.repos.GetRepository(ctx, link.RepositoryID)
		if err != nil {
			return nil, err
		}
		if repo == nil {
			m.log.WithFields(logrus.Fields{"service": name, "repository_id": link.RepositoryID}).
				Warn("service references a missing repository")
			continue
		}

		filter, err := m.filterFor(ctx, svc, repo.ID)
		if err != nil {
			return nil, err
		}

		base, err := m.commits.GetBaseCommits(ctx, repo.ID, link.StartDate, link.EndDate)
		if err != nil {
			return nil, err
		}
		repo.SetCommits(applyFilter(base, filter))

		if withIssues {
			issues, err := m.issues.GetIssues(ctx, repo.ID)
			if err != nil {
				return nil, err
			}
			repo.Issues = issues
		}

		svc.Repositories = append(svc.Repositories, entities.ServiceRepository{
			Repository: repo,
			StartDate:  link.StartDate,
			EndDate:    link.EndDate,
			InitialLOC: link.InitialLOC,
		})
	}

	return svc, nil
}

// GetServices loads each named service and fails on an unknown name.
func (m *ServiceManager) GetServices(ctx context.Context, names []string, withIssues bool) ([]*entities.Service, error) {
	out := make([]*entities.Service, 0, len(names))
	for _, name := range names {
		svc, err := m.GetService(ctx, name, withIssues)
		if err != nil {
			return nil, err
		}
		if svc == nil {
			return nil, fmt.Errorf("service %q: %w", name, errcodes.ErrNoRecordFound)
		}
		out = append(out, svc)
	}
	return out, nil
}

func (m *ServiceManager) filterFor(ctx context.Context, svc *entities.Service, repositoryID uint) (FileFilter, error) {
	including, err := m.services.GetPatterns(ctx, svc.ID, repositoryID, db.PatternIncluding)
	if err != nil {
		return FileFilter{}, err
	}
	excluding, err := m.services.GetPatterns(ctx, svc.ID, repositoryID, db.PatternExcluding)
	if err != nil {
		return FileFilter{}, err
	}
	return NewFileFilter(svc.Extensions, including, append(excluding, m.excluding...)), nil
}

func applyFilter(commits []*entities.Commit, filter FileFilter) []*entities.Commit {
	out := make([]*entities.Commit, 0, len(commits))
	for _, c := range commits {
		kept := make([]entities.FileModification, 0, len(c.FileModifications))
		for _, fm := range c.FileModifications {
			if filter.Allow(fm.Filename) {
				kept = append(kept, fm)
			}
		}
		filtered := *c
		filtered.FileModifications = kept
		out = append(out, &filtered)
	}
	return out
}

// UpdateDates sets the service window. A nil start defaults to the first
// commit of any of its repositories; when there is none nothing changes and
// false is returned.
func (m *ServiceManager) UpdateDates(ctx context.Context, name string, start, end *time.Time) (bool, error) {
	svc, err := m.service(ctx, name)
	if err != nil {
		return false, err
	}

	if start == nil {
		links, err := m.services.GetServiceRepositories(ctx, svc.ID)
		if err != nil {
			return false, err
		}
		for _, link := range links {
			oldest, err := m.commits.GetCommitByPosition(ctx, link.RepositoryID, 0)
			if err != nil {
				return false, err
			}
			if oldest != nil && (start == nil || oldest.Date.Before(*start)) {
				d := oldest.Date
				start = &d
			}
		}
	}
	if start == nil {
		return false, nil
	}
	if end != nil && end.Before(*start) {
		return false, errcodes.Integrity("service %s would end %s before it starts %s",
			name, end.Format(time.DateOnly), start.Format(time.DateOnly))
	}

	if err := m.services.UpdateServiceDates(ctx, svc.ID, *start, end); err != nil {
		return false, err
	}
	return true, nil
}

func (m *ServiceManager) ListServiceNames(ctx context.Context) ([]string, error) {
	return m.services.ListServiceNames(ctx)
}

// DeleteService removes a service and every repository it owns, with their
// commits and issues. It reports false for an unknown service.
func (m *ServiceManager) DeleteService(ctx context.Context, name string) (bool, error) {
	svc, err := m.services.GetServiceByName(ctx, name)
	if err != nil {
		return false, err
	}
	if svc == nil {
		return false, nil
	}

	links, err := m.services.GetServiceRepositories(ctx, svc.ID)
	if err != nil {
		return false, err
	}
	for _, link := range links {
		if _, err := m.commits.DeleteCommitsOfRepository(ctx, link.RepositoryID); err != nil {
			return false, err
		}
		if err := m.issues.DeleteIssuesOfRepository(ctx, link.RepositoryID); err != nil {
			return false, err
		}
		if err := m.repos.DeleteRepository(ctx, link.RepositoryID); err != nil {
			return false, err
		}
	}

	if err := m.services.DeleteService(ctx, svc.ID); err != nil {
		return false, err
	}
	m.log.WithField("service", name).Info("service deleted")
	return true, nil
}

// GetRepositoryHistory loads a stored repository with its whole mainline,
// unfiltered. Unknown repositories yield nil.
func (m *ServiceManager) GetRepositoryHistory(ctx context.Context, owner, name string) (*entities.Repository, error) {
	repo, err := m.repos.GetRepositoryByName(ctx, owner, name)
	if err != nil || repo == nil {
		return nil, err
	}
	base, err := m.commits.GetBaseCommits(ctx, repo.ID, nil, nil)
	if err != nil {
		return nil, err
	}
	repo.SetCommits(base)
	return repo, nil
}
