package mocks

import (
	"context"
	"time"

	"github.com/just-nibble/service-miner/internal/core/domain/entities"
	"github.com/stretchr/testify/mock"
)

// CommitStore mock
type CommitStore struct {
	mock.Mock
}

func (m *CommitStore) InsertCommit(ctx context.Context, repositoryID uint, commit *entities.Commit) (*entities.Commit, error) {
	args := m.Called(ctx, repositoryID, commit)
	return commitOrNil(args.Get(0)), args.Error(1)
}

func (m *CommitStore) GetCommitBySha(ctx context.Context, sha string) (*entities.Commit, error) {
	args := m.Called(ctx, sha)
	return commitOrNil(args.Get(0)), args.Error(1)
}

func (m *CommitStore) GetCommitByRepoSha(ctx context.Context, repositoryID uint, sha string) (*entities.Commit, error) {
	args := m.Called(ctx, repositoryID, sha)
	return commitOrNil(args.Get(0)), args.Error(1)
}

func (m *CommitStore) GetParentSha(ctx context.Context, commitID uint) (string, error) {
	args := m.Called(ctx, commitID)
	return args.String(0), args.Error(1)
}

func (m *CommitStore) GetCommitsByRepo(ctx context.Context, repositoryID uint, start, end *time.Time) ([]*entities.Commit, error) {
	args := m.Called(ctx, repositoryID, start, end)
	return commitsOrNil(args.Get(0)), args.Error(1)
}

func (m *CommitStore) GetCommitByPosition(ctx context.Context, repositoryID uint, position int) (*entities.Commit, error) {
	args := m.Called(ctx, repositoryID, position)
	return commitOrNil(args.Get(0)), args.Error(1)
}

func (m *CommitStore) DeleteCommitsOfRepository(ctx context.Context, repositoryID uint) (bool, error) {
	args := m.Called(ctx, repositoryID)
	return args.Bool(0), args.Error(1)
}

func (m *CommitStore) FindInconsistentCommits(ctx context.Context, repositoryID uint, extensions []string) ([]*entities.Commit, error) {
	args := m.Called(ctx, repositoryID, extensions)
	return commitsOrNil(args.Get(0)), args.Error(1)
}

func (m *CommitStore) UpdateFileModification(ctx context.Context, commitID uint, fm entities.FileModification) error {
	args := m.Called(ctx, commitID, fm)
	return args.Error(0)
}

func commitOrNil(v any) *entities.Commit {
	if v == nil {
		return nil
	}
	return v.(*entities.Commit)
}

func commitsOrNil(v any) []*entities.Commit {
	if v == nil {
		return nil
	}
	return v.([]*entities.Commit)
}
