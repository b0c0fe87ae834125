package db

import (
	"context"
	"testing"

	"github.com/just-nibble/service-miner/internal/core/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceStoreLifecycle(t *testing.T) {
	conn := newTestDB(t)
	ctx := context.Background()
	services := NewGormServiceStore(conn)
	repos := NewGormRepositoryStore(conn)

	svc, err := services.InsertService(ctx, &entities.Service{Name: "billing", StartDate: day(2019, 1, 1)})
	require.NoError(t, err)
	again, err := services.InsertService(ctx, &entities.Service{Name: "billing", StartDate: day(2021, 1, 1)})
	require.NoError(t, err)
	assert.Equal(t, svc.ID, again.ID)
	assert.True(t, again.StartDate.Equal(day(2019, 1, 1)))

	repo, err := repos.SaveRepository(ctx, &entities.Repository{Owner: "acme", Name: "billing", URL: "https://github.com/acme/billing"})
	require.NoError(t, err)

	start := day(2019, 6, 1)
	loc := 500
	require.NoError(t, services.InsertServiceRepository(ctx, svc.ID, entities.RepositoryLink{RepositoryID: repo.ID, StartDate: &start, InitialLOC: &loc}))
	require.NoError(t, services.InsertServiceRepository(ctx, svc.ID, entities.RepositoryLink{RepositoryID: repo.ID}))

	links, err := services.GetServiceRepositories(ctx, svc.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.NotNil(t, links[0].StartDate)
	assert.True(t, links[0].StartDate.Equal(start))
	assert.Equal(t, 500, *links[0].InitialLOC)

	require.NoError(t, services.SetExtensions(ctx, svc.ID, []string{"py", "go", "py"}))
	exts, err := services.GetExtensions(ctx, svc.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "py"}, exts)

	require.NoError(t, services.AddPattern(ctx, svc.ID, 0, PatternExcluding, "vendor/"))
	require.NoError(t, services.AddPattern(ctx, svc.ID, repo.ID, PatternExcluding, "migrations/"))
	require.NoError(t, services.AddPattern(ctx, svc.ID, repo.ID+1, PatternExcluding, "docs/"))
	patterns, err := services.GetPatterns(ctx, svc.ID, repo.ID, PatternExcluding)
	require.NoError(t, err)
	assert.Equal(t, []string{"vendor/", "migrations/"}, patterns)

	end := day(2020, 12, 31)
	require.NoError(t, services.UpdateServiceDates(ctx, svc.ID, day(2019, 2, 1), &end))
	updated, err := services.GetServiceByName(ctx, "billing")
	require.NoError(t, err)
	assert.True(t, updated.StartDate.Equal(day(2019, 2, 1)))
	require.NotNil(t, updated.EndDate)
	assert.True(t, updated.EndDate.Equal(end))

	names, err := services.ListServiceNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"billing"}, names)

	require.NoError(t, services.DeleteService(ctx, svc.ID))
	gone, err := services.GetServiceByName(ctx, "billing")
	require.NoError(t, err)
	assert.Nil(t, gone)
	links, err = services.GetServiceRepositories(ctx, svc.ID)
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestRepositoryStoreLookups(t *testing.T) {
	f := newFixture(t)
	f.insert(t, "c1", day(2020, 1, 1), nil)

	again, err := f.repos.SaveRepository(f.ctx, &entities.Repository{Owner: "acme", Name: "api", URL: "https://github.com/acme/api"})
	require.NoError(t, err)
	assert.Equal(t, f.repo.ID, again.ID)

	byName, err := f.repos.GetRepositoryByName(f.ctx, "acme", "api")
	require.NoError(t, err)
	assert.Equal(t, f.repo.ID, byName.ID)

	byCommit, err := f.repos.GetRepositoryByCommit(f.ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, byCommit)
	assert.Equal(t, f.repo.ID, byCommit.ID)

	missing, err := f.repos.GetRepositoryByName(f.ctx, "acme", "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, err := f.repos.GetAllRepositories(f.ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUserStoreGetOrCreate(t *testing.T) {
	conn := newTestDB(t)
	ctx := context.Background()
	users := NewGormUserStore(conn)

	created, err := users.GetOrCreateUser(ctx, entities.User{Name: "Bob", Email: "bob@acme.io"})
	require.NoError(t, err)
	again, err := users.GetOrCreateUser(ctx, entities.User{Name: "Bob", Email: "bob@acme.io"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	byLogin, err := users.GetOrCreateUser(ctx, entities.User{Login: "bobby", Name: "Bob", Email: "bob@acme.io"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, byLogin.ID)

	none, err := users.GetUser(ctx, "", "Eve", "eve@acme.io")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestIssueStoreSaveAndGet(t *testing.T) {
	f := newFixture(t)
	issues := NewGormIssueStore(f.commits.db)

	closed := day(2020, 2, 1)
	issue := &entities.Issue{
		Number:    42,
		Title:     "crash on empty input",
		State:     "closed",
		User:      f.author,
		CreatedAt: day(2020, 1, 1),
		ClosedAt:  &closed,
		Labels:    []entities.Label{{Name: "bug"}},
		Assignees: []entities.Assignee{{Login: "ann"}},
	}
	_, err := issues.SaveIssue(f.ctx, f.repo.ID, issue)
	require.NoError(t, err)
	_, err = issues.SaveIssue(f.ctx, f.repo.ID, issue)
	require.NoError(t, err)
	_, err = issues.SaveIssue(f.ctx, f.repo.ID, &entities.Issue{Number: 43, State: "open", CreatedAt: day(2020, 3, 1), Labels: []entities.Label{{Name: "bug"}}})
	require.NoError(t, err)

	got, err := issues.GetIssues(f.ctx, f.repo.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 42, got[0].Number)
	assert.Equal(t, "Ann", got[0].User.Name)
	require.NotNil(t, got[0].ClosedAt)
	assert.True(t, got[0].ClosedAt.Equal(closed))
	assert.Equal(t, "bug", got[0].Labels[0].Name)
	assert.Equal(t, "ann", got[0].Assignees[0].Login)
	assert.Nil(t, got[1].ClosedAt)

	require.NoError(t, issues.DeleteIssuesOfRepository(f.ctx, f.repo.ID))
	got, err = issues.GetIssues(f.ctx, f.repo.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}
