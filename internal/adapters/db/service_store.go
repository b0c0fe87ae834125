package db

import (
	"context"
	"fmt"
	"time"

	"github.com/just-nibble/service-miner/internal/core/domain/entities"
	"gorm.io/gorm"
)

// ServiceStore persists services and their repository associations.
type ServiceStore interface {
	InsertService(ctx context.Context, svc *entities.Service) (*entities.Service, error)
	GetServiceByName(ctx context.Context, name string) (*entities.Service, error)
	ListServiceNames(ctx context.Context) ([]string, error)
	UpdateServiceDates(ctx context.Context, id uint, start time.Time, end *time.Time) error
	DeleteService(ctx context.Context, id uint) error

	InsertServiceRepository(ctx context.Context, serviceID uint, link entities.RepositoryLink) error
	GetServiceRepositories(ctx context.Context, serviceID uint) ([]entities.RepositoryLink, error)

	SetExtensions(ctx context.Context, serviceID uint, extensions []string) error
	GetExtensions(ctx context.Context, serviceID uint) ([]string, error)
	AddPattern(ctx context.Context, serviceID, repositoryID uint, kind, pattern string) error
	GetPatterns(ctx context.Context, serviceID, repositoryID uint, kind string) ([]string, error)
}

// GormServiceStore is a GORM-based implementation of ServiceStore
type GormServiceStore struct {
	db *gorm.DB
}

// NewGormServiceStore initializes a new GormServiceStore
func NewGormServiceStore(db *gorm.DB) *GormServiceStore {
	return &GormServiceStore{db: db}
}

// InsertService returns the stored service of the same name when there is one.
func (s *GormServiceStore) InsertService(ctx context.Context, svc *entities.Service) (*entities.Service, error) {
	row := Service{Name: svc.Name, StartDate: svc.StartDate.UTC(), EndDate: utcPtr(svc.EndDate)}
	if err := s.db.WithContext(ctx).Where("name = ?", svc.Name).FirstOrCreate(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to save service: %w", err)
	}
	return row.ToDomain(), nil
}

func (s *GormServiceStore) GetServiceByName(ctx context.Context, name string) (*entities.Service, error) {
	var row Service
	if err := s.db.WithContext(ctx).Where("name = ?", name).Limit(1).Find(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve service: %w", err)
	}
	if row.ID == 0 {
		return nil, nil
	}
	return row.ToDomain(), nil
}

func (s *GormServiceStore) ListServiceNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := s.db.WithContext(ctx).Model(&Service{}).Order("name").Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return names, nil
}

func (s *GormServiceStore) UpdateServiceDates(ctx context.Context, id uint, start time.Time, end *time.Time) error {
	err := s.db.WithContext(ctx).
		Model(&Service{}).
		Where("id = ?", id).
		Updates(map[string]any{"start_date": start.UTC(), "end_date": utcPtr(end)}).Error
	if err != nil {
		return fmt.Errorf("failed to update service dates: %w", err)
	}
	return nil
}

// DeleteService removes the service with its associations, extensions and
// patterns. Repositories are left alone.
func (s *GormServiceStore) DeleteService(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&ServiceRepository{}, &ServiceExtension{}, &FilenamePattern{}} {
			if err := tx.Where("service_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&Service{}, id).Error
	})
}

// InsertServiceRepository is idempotent on (service, repository); an
// existing association keeps its dates.
func (s *GormServiceStore) InsertServiceRepository(ctx context.Context, serviceID uint, link entities.RepositoryLink) error {
	row := ServiceRepository{
		ServiceID:    serviceID,
		RepositoryID: link.RepositoryID,
		StartDate:    utcPtr(link.StartDate),
		EndDate:      utcPtr(link.EndDate),
		InitialLOC:   link.InitialLOC,
	}
	err := s.db.WithContext(ctx).
		Where("service_id = ? AND repository_id = ?", serviceID, link.RepositoryID).
		FirstOrCreate(&row).Error
	if err != nil {
		return fmt.Errorf("failed to link repository %d to service %d: %w", link.RepositoryID, serviceID, err)
	}
	return nil
}

func (s *GormServiceStore) GetServiceRepositories(ctx context.Context, serviceID uint) ([]entities.RepositoryLink, error) {
	var rows []ServiceRepository
	if err := s.db.WithContext(ctx).Where("service_id = ?", serviceID).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve service repositories: %w", err)
	}

	links := make([]entities.RepositoryLink, 0, len(rows))
	for _, row := range rows {
		links = append(links, row.ToDomain())
	}
	return links, nil
}

// SetExtensions replaces the extension list of a service.
func (s *GormServiceStore) SetExtensions(ctx context.Context, serviceID uint, extensions []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("service_id = ?", serviceID).Delete(&ServiceExtension{}).Error; err != nil {
			return err
		}
		seen := make(map[string]struct{}, len(extensions))
		for _, ext := range extensions {
			if _, ok := seen[ext]; ok {
				continue
			}
			seen[ext] = struct{}{}
			if err := tx.Create(&ServiceExtension{ServiceID: serviceID, Extension: ext}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *GormServiceStore) GetExtensions(ctx context.Context, serviceID uint) ([]string, error) {
	var exts []string
	err := s.db.WithContext(ctx).
		Model(&ServiceExtension{}).
		Where("service_id = ?", serviceID).
		Order("extension").
		Pluck("extension", &exts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve extensions: %w", err)
	}
	return exts, nil
}

func (s *GormServiceStore) AddPattern(ctx context.Context, serviceID, repositoryID uint, kind, pattern string) error {
	row := FilenamePattern{ServiceID: serviceID, RepositoryID: repositoryID, Kind: kind, Pattern: pattern}
	err := s.db.WithContext(ctx).
		Where("service_id = ? AND repository_id = ? AND kind = ? AND pattern = ?", serviceID, repositoryID, kind, pattern).
		FirstOrCreate(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save filename pattern: %w", err)
	}
	return nil
}

// GetPatterns returns the service-wide patterns of a kind plus those bound
// to the given repository.
func (s *GormServiceStore) GetPatterns(ctx context.Context, serviceID, repositoryID uint, kind string) ([]string, error) {
	var patterns []string
	err := s.db.WithContext(ctx).
		Model(&FilenamePattern{}).
		Where("service_id = ? AND kind = ? AND repository_id IN ?", serviceID, kind, []uint{0, repositoryID}).
		Order("id").
		Pluck("pattern", &patterns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve filename patterns: %w", err)
	}
	return patterns, nil
}
