package db

import (
	"context"
	"fmt"

	"github.com/just-nibble/service-miner/internal/core/domain/entities"
	"gorm.io/gorm"
)

// RepositoryStore defines an interface for database operations
type RepositoryStore interface {
	SaveRepository(ctx context.Context, repo *entities.Repository) (*entities.Repository, error)
	GetRepository(ctx context.Context, id uint) (*entities.Repository, error)
	GetRepositoryByName(ctx context.Context, owner, name string) (*entities.Repository, error)
	GetRepositoryByCommit(ctx context.Context, sha string) (*entities.Repository, error)
	GetAllRepositories(ctx context.Context) ([]*entities.Repository, error)
	DeleteRepository(ctx context.Context, id uint) error
}

// GormRepositoryStore is a GORM-based implementation of RepositoryStore
type GormRepositoryStore struct {
	db *gorm.DB
}

// NewGormRepositoryStore initializes a new GormRepositoryStore
func NewGormRepositoryStore(db *gorm.DB) *GormRepositoryStore {
	return &GormRepositoryStore{db: db}
}

// SaveRepository inserts the repository unless one with the same URL exists,
// and returns the stored record either way.
func (s *GormRepositoryStore) SaveRepository(ctx context.Context, repo *entities.Repository) (*entities.Repository, error) {
	row := Repository{Name: repo.Name, Owner: repo.Owner, URL: repo.URL}
	if err := s.db.WithContext(ctx).Where("url = ?", repo.URL).FirstOrCreate(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to save repository: %w", err)
	}
	return row.ToDomain(), nil
}

func (s *GormRepositoryStore) GetRepository(ctx context.Context, id uint) (*entities.Repository, error) {
	return s.find(ctx, "id = ?", id)
}

func (s *GormRepositoryStore) GetRepositoryByName(ctx context.Context, owner, name string) (*entities.Repository, error) {
	return s.find(ctx, "owner = ? AND name = ?", owner, name)
}

func (s *GormRepositoryStore) GetRepositoryByCommit(ctx context.Context, sha string) (*entities.Repository, error) {
	sub := s.db.Model(&Commit{}).Select("repository_id").Where("sha = ?", sha)
	return s.find(ctx, "id IN (?)", sub)
}

func (s *GormRepositoryStore) find(ctx context.Context, query string, args ...any) (*entities.Repository, error) {
	var row Repository
	if err := s.db.WithContext(ctx).Where(query, args...).Limit(1).Find(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve repository: %w", err)
	}
	if row.ID == 0 {
		return nil, nil
	}
	return row.ToDomain(), nil
}

// GetAllRepositories retrieves all repositories from the database
func (s *GormRepositoryStore) GetAllRepositories(ctx context.Context) ([]*entities.Repository, error) {
	var rows []Repository
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve repositories: %w", err)
	}

	repos := make([]*entities.Repository, 0, len(rows))
	for _, row := range rows {
		repos = append(repos, row.ToDomain())
	}
	return repos, nil
}

// DeleteRepository removes the repository record and its service links.
// Commits and issues must be removed first.
func (s *GormRepositoryStore) DeleteRepository(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("repository_id = ?", id).Delete(&ServiceRepository{}).Error; err != nil {
			return err
		}
		if err := tx.Where("repository_id = ?", id).Delete(&FilenamePattern{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Repository{}, id).Error
	})
}
