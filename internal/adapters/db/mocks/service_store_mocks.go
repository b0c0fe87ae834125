package mocks

import (
	"context"
	"time"

	"github.com/just-nibble/service-miner/internal/core/domain/entities"
	"github.com/stretchr/testify/mock"
)

// ServiceStore mock
type ServiceStore struct {
	mock.Mock
}

func (m *ServiceStore) InsertService(ctx context.Context, svc *entities.Service) (*entities.Service, error) {
	args := m.Called(ctx, svc)
	return serviceOrNil(args.Get(0)), args.Error(1)
}

func (m *ServiceStore) GetServiceByName(ctx context.Context, name string) (*entities.Service, error) {
	args := m.Called(ctx, name)
	return serviceOrNil(args.Get(0)), args.Error(1)
}

func (m *ServiceStore) ListServiceNames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	names, _ := args.Get(0).([]string)
	return names, args.Error(1)
}

func (m *ServiceStore) UpdateServiceDates(ctx context.Context, id uint, start time.Time, end *time.Time) error {
	args := m.Called(ctx, id, start, end)
	return args.Error(0)
}

func (m *ServiceStore) DeleteService(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ServiceStore) InsertServiceRepository(ctx context.Context, serviceID uint, link entities.RepositoryLink) error {
	args := m.Called(ctx, serviceID, link)
	return args.Error(0)
}

func (m *ServiceStore) GetServiceRepositories(ctx context.Context, serviceID uint) ([]entities.RepositoryLink, error) {
	args := m.Called(ctx, serviceID)
	links, _ := args.Get(0).([]entities.RepositoryLink)
	return links, args.Error(1)
}

func (m *ServiceStore) SetExtensions(ctx context.Context, serviceID uint, extensions []string) error {
	args := m.Called(ctx, serviceID, extensions)
	return args.Error(0)
}

func (m *ServiceStore) GetExtensions(ctx context.Context, serviceID uint) ([]string, error) {
	args := m.Called(ctx, serviceID)
	exts, _ := args.Get(0).([]string)
	return exts, args.Error(1)
}

func (m *ServiceStore) AddPattern(ctx context.Context, serviceID, repositoryID uint, kind, pattern string) error {
	args := m.Called(ctx, serviceID, repositoryID, kind, pattern)
	return args.Error(0)
}

func (m *ServiceStore) GetPatterns(ctx context.Context, serviceID, repositoryID uint, kind string) ([]string, error) {
	args := m.Called(ctx, serviceID, repositoryID, kind)
	patterns, _ := args.Get(0).([]string)
	return patterns, args.Error(1)
}

func serviceOrNil(v any) *entities.Service {
	if v == nil {
		return nil
	}
	return v.(*entities.Service)
}
