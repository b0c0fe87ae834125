package service

import (
	"context"
	"testing"

	"github.com/just-nibble/service-miner/internal/adapters/db"
	"github.com/just-nibble/service-miner/internal/adapters/db/mocks"
	"github.com/just-nibble/service-miner/internal/core/domain/entities"
	"github.com/just-nibble/service-miner/pkg/errcodes"
	"github.com/just-nibble/service-miner/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type managerMocks struct {
	services *mocks.ServiceStore
	repos    *mocks.RepositoryStore
	issues   *mocks.IssueStore
	commits  *mocks.CommitStore
}

func newManager() (*ServiceManager, managerMocks) {
	m := managerMocks{
		services: new(mocks.ServiceStore),
		repos:    new(mocks.RepositoryStore),
		issues:   new(mocks.IssueStore),
		commits:  new(mocks.CommitStore),
	}
	commits := NewCommitService(m.commits, log.Discard())
	return NewServiceManager(m.services, m.repos, m.issues, commits, nil, log.Discard()), m
}

func TestGetServiceFiltersFilesAndAttachesIssues(t *testing.T) {
	manager, m := newManager()
	ctx := context.Background()

	c, err := entities.NewCommit("abc", date(2019, 1, 2), entities.User{Login: "dev"}, "init")
	require.NoError(t, err)
	c.ID = 1
	require.NoError(t, c.SetFileModifications([]entities.FileModification{
		fileMod(t, "app/main.py", entities.StatusAdded, 10, 0),
		fileMod(t, "vendor/lib.py", entities.StatusAdded, 50, 0),
		fileMod(t, "README.md", entities.StatusAdded, 5, 0),
	}))
	repo := &entities.Repository{ID: 10, Owner: "acme", Name: "api"}
	issues := []entities.Issue{{Number: 1, CreatedAt: date(2019, 1, 1)}}

	m.services.On("GetServiceByName", mock.Anything, "api").Return(&entities.Service{ID: 1, Name: "api"}, nil)
	m.services.On("GetExtensions", mock.Anything, uint(1)).Return([]string{"py"}, nil)
	m.services.On("GetServiceRepositories", mock.Anything, uint(1)).
		Return([]entities.RepositoryLink{{RepositoryID: 10, InitialLOC: ptr(7)}}, nil)
	m.services.On("GetPatterns", mock.Anything, uint(1), uint(10), db.PatternIncluding).Return(nil, nil)
	m.services.On("GetPatterns", mock.Anything, uint(1), uint(10), db.PatternExcluding).Return([]string{"vendor/"}, nil)
	m.repos.On("GetRepository", mock.Anything, uint(10)).Return(repo, nil)
	m.commits.On("GetCommitsByRepo", mock.Anything, uint(10), mock.Anything, mock.Anything).Return([]*entities.Commit{c}, nil)
	m.commits.On("GetParentSha", mock.Anything, uint(1)).Return("", nil)
	m.issues.On("GetIssues", mock.Anything, uint(10)).Return(issues, nil)

	svc, err := manager.GetService(ctx, "api", true)
	require.NoError(t, err)
	require.Len(t, svc.Repositories, 1)

	sr := svc.Repositories[0]
	assert.Equal(t, 7, *sr.InitialLOC)
	require.Len(t, sr.Repository.Commits, 1)
	fms := sr.Repository.Commits[0].FileModifications
	require.Len(t, fms, 1)
	assert.Equal(t, "app/main.py", fms[0].Filename)
	assert.Len(t, c.FileModifications, 3, "stored commit must not be altered")
	assert.Equal(t, issues, sr.Repository.Issues)
}

func TestGetServiceUnknown(t *testing.T) {
	manager, m := newManager()
	m.services.On("GetServiceByName", mock.Anything, "ghost").Return(nil, nil)

	svc, err := manager.GetService(context.Background(), "ghost", false)
	require.NoError(t, err)
	assert.Nil(t, svc)

	_, err = manager.GetServices(context.Background(), []string{"ghost"}, false)
	assert.ErrorIs(t, err, errcodes.ErrNoRecordFound)
}

func TestInsertServiceRepositoryValidatesStart(t *testing.T) {
	manager, m := newManager()
	m.services.On("GetServiceByName", mock.Anything, "api").
		Return(&entities.Service{ID: 1, Name: "api", StartDate: date(2019, 1, 1)}, nil)

	err := manager.InsertServiceRepository(context.Background(), "api",
		entities.RepositoryLink{RepositoryID: 10, StartDate: ptr(date(2018, 1, 1))})
	assert.ErrorIs(t, err, errcodes.ErrDataIntegrity)
	m.services.AssertNotCalled(t, "InsertServiceRepository", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateDatesDefaultsToFirstCommit(t *testing.T) {
	manager, m := newManager()
	ctx := context.Background()
	end := date(2021, 1, 1)

	m.services.On("GetServiceByName", mock.Anything, "api").Return(&entities.Service{ID: 1, Name: "api"}, nil)
	m.services.On("GetServiceRepositories", mock.Anything, uint(1)).
		Return([]entities.RepositoryLink{{RepositoryID: 10}, {RepositoryID: 11}}, nil)
	m.commits.On("GetCommitByPosition", mock.Anything, uint(10), 0).Return(commit(t, "a", date(2019, 5, 1), "x", 1, 0), nil)
	m.commits.On("GetCommitByPosition", mock.Anything, uint(11), 0).Return(commit(t, "b", date(2019, 2, 1), "x", 1, 0), nil)
	m.services.On("UpdateServiceDates", mock.Anything, uint(1), date(2019, 2, 1), &end).Return(nil)

	ok, err := manager.UpdateDates(ctx, "api", nil, &end)
	require.NoError(t, err)
	assert.True(t, ok)
	m.services.AssertExpectations(t)

	_, err = manager.UpdateDates(ctx, "api", ptr(date(2022, 1, 1)), &end)
	assert.ErrorIs(t, err, errcodes.ErrDataIntegrity)
}

func TestUpdateDatesWithoutCommits(t *testing.T) {
	manager, m := newManager()

	m.services.On("GetServiceByName", mock.Anything, "api").Return(&entities.Service{ID: 1, Name: "api"}, nil)
	m.services.On("GetServiceRepositories", mock.Anything, uint(1)).Return(nil, nil)

	ok, err := manager.UpdateDates(context.Background(), "api", nil, nil)
	require.NoError(t, err)
	assert.False(t, ok)
	m.services.AssertNotCalled(t, "UpdateServiceDates", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteService(t *testing.T) {
	manager, m := newManager()
	ctx := context.Background()

	m.services.On("GetServiceByName", mock.Anything, "api").Return(&entities.Service{ID: 1, Name: "api"}, nil)
	m.services.On("GetServiceByName", mock.Anything, "ghost").Return(nil, nil)
	m.services.On("GetServiceRepositories", mock.Anything, uint(1)).
		Return([]entities.RepositoryLink{{RepositoryID: 10}}, nil)
	m.commits.On("DeleteCommitsOfRepository", mock.Anything, uint(10)).Return(true, nil)
	m.issues.On("DeleteIssuesOfRepository", mock.Anything, uint(10)).Return(nil)
	m.repos.On("DeleteRepository", mock.Anything, uint(10)).Return(nil)
	m.services.On("DeleteService", mock.Anything, uint(1)).Return(nil)

	ok, err := manager.DeleteService(ctx, "api")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = manager.DeleteService(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, ok)

	m.commits.AssertExpectations(t)
	m.issues.AssertExpectations(t)
	m.repos.AssertExpectations(t)
}

func TestGetRepositoryHistory(t *testing.T) {
	manager, m := newManager()
	ctx := context.Background()

	c := commit(t, "abc", date(2019, 1, 2), "init", 3, 0)
	c.ID = 1
	m.repos.On("GetRepositoryByName", mock.Anything, "acme", "api").Return(&entities.Repository{ID: 10, Owner: "acme", Name: "api"}, nil)
	m.repos.On("GetRepositoryByName", mock.Anything, "acme", "ghost").Return(nil, nil)
	m.commits.On("GetCommitsByRepo", mock.Anything, uint(10), mock.Anything, mock.Anything).Return([]*entities.Commit{c}, nil)
	m.commits.On("GetParentSha", mock.Anything, uint(1)).Return("", nil)

	repo, err := manager.GetRepositoryHistory(ctx, "acme", "api")
	require.NoError(t, err)
	require.Len(t, repo.Commits, 1)

	repo, err = manager.GetRepositoryHistory(ctx, "acme", "ghost")
	require.NoError(t, err)
	assert.Nil(t, repo)
}
