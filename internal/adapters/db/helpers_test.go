package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/just-nibble/service-miner/internal/core/domain/entities"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(Models()...))
	return conn
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

type fixture struct {
	ctx     context.Context
	commits *GormCommitStore
	users   *GormUserStore
	repos   *GormRepositoryStore
	repo    *entities.Repository
	author  entities.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := newTestDB(t)
	ctx := context.Background()

	f := &fixture{
		ctx:     ctx,
		commits: NewGormCommitStore(conn),
		users:   NewGormUserStore(conn),
		repos:   NewGormRepositoryStore(conn),
	}

	repo, err := f.repos.SaveRepository(ctx, &entities.Repository{Owner: "acme", Name: "api", URL: "https://github.com/acme/api"})
	require.NoError(t, err)
	f.repo = repo

	author, err := f.users.GetOrCreateUser(ctx, entities.User{Login: "ann", Name: "Ann", Email: "ann@acme.io"})
	require.NoError(t, err)
	f.author = *author
	return f
}

func (f *fixture) insert(t *testing.T, sha string, date time.Time, parents []entities.ParentRef, fms ...entities.FileModification) *entities.Commit {
	t.Helper()
	return f.insertIn(t, f.repo.ID, sha, date, parents, fms...)
}

func (f *fixture) insertIn(t *testing.T, repositoryID uint, sha string, date time.Time, parents []entities.ParentRef, fms ...entities.FileModification) *entities.Commit {
	t.Helper()
	c, err := entities.NewCommit(sha, date, f.author, "commit "+sha)
	require.NoError(t, err)
	require.NoError(t, c.SetFileModifications(fms))
	c.Parents = parents
	saved, err := f.commits.InsertCommit(f.ctx, repositoryID, c)
	require.NoError(t, err)
	return saved
}

func fm(t *testing.T, name string, status entities.FileStatus, add, del int) entities.FileModification {
	t.Helper()
	m, err := entities.NewFileModification(name, status, add, del)
	require.NoError(t, err)
	return m
}
