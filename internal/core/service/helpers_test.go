package service

import (
	"testing"
	"time"

	"github.com/just-nibble/service-miner/internal/core/domain/entities"
	"github.com/just-nibble/service-miner/pkg/log"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}

func fileMod(t *testing.T, name string, status entities.FileStatus, add, del int) entities.FileModification {
	t.Helper()
	fm, err := entities.NewFileModification(name, status, add, del)
	require.NoError(t, err)
	return fm
}

// commit builds a commit touching one file with the given counts.
func commit(t *testing.T, sha string, date time.Time, msg string, add, del int) *entities.Commit {
	t.Helper()
	c, err := entities.NewCommit(sha, date, entities.User{Login: "dev"}, msg)
	require.NoError(t, err)
	require.NoError(t, c.SetFileModifications([]entities.FileModification{
		fileMod(t, "src/"+sha+".py", entities.StatusModified, add, del),
	}))
	return c
}

func serviceWith(name string, repos ...entities.ServiceRepository) *entities.Service {
	return &entities.Service{Name: name, StartDate: date(2000, 1, 1), Repositories: repos}
}

func newTestReconstructor() *Reconstructor {
	return NewReconstructor(NewBugFixClassifier(), NewIssueReferenceClassifier(), log.Discard())
}
