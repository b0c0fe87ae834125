package mocks

import (
	"context"

	"github.com/just-nibble/service-miner/internal/core/domain/entities"
	"github.com/stretchr/testify/mock"
)

// RepositoryStore mock
type RepositoryStore struct {
	mock.Mock
}

func (m *RepositoryStore) SaveRepository(ctx context.Context, repo *entities.Repository) (*entities.Repository, error) {
	args := m.Called(ctx, repo)
	return repositoryOrNil(args.Get(0)), args.Error(1)
}

func (m *RepositoryStore) GetRepository(ctx context.Context, id uint) (*entities.Repository, error) {
	args := m.Called(ctx, id)
	return repositoryOrNil(args.Get(0)), args.Error(1)
}

func (m *RepositoryStore) GetRepositoryByName(ctx context.Context, owner, name string) (*entities.Repository, error) {
	args := m.Called(ctx, owner, name)
	return repositoryOrNil(args.Get(0)), args.Error(1)
}

func (m *RepositoryStore) GetRepositoryByCommit(ctx context.Context, sha string) (*entities.Repository, error) {
	args := m.Called(ctx, sha)
	return repositoryOrNil(args.Get(0)), args.Error(1)
}

func (m *RepositoryStore) GetAllRepositories(ctx context.Context) ([]*entities.Repository, error) {
	args := m.Called(ctx)
	repos, _ := args.Get(0).([]*entities.Repository)
	return repos, args.Error(1)
}

func (m *RepositoryStore) DeleteRepository(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func repositoryOrNil(v any) *entities.Repository {
	if v == nil {
		return nil
	}
	return v.(*entities.Repository)
}
