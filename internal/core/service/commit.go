package service

import (
	"context"
	"time"

	"github.com/just-nibble/service-miner/internal/adapters/db"
	"github.com/just-nibble/service-miner/internal/core/domain/entities"
	"github.com/sirupsen/logrus"
)

type CommitService struct {
	commits db.CommitStore
	log     logrus.FieldLogger
}

func NewCommitService(commits db.CommitStore, log logrus.FieldLogger) *CommitService {
	return &CommitService{commits: commits, log: log}
}

func (s *CommitService) InsertCommit(ctx context.Context, repositoryID uint, commit *entities.Commit) (*entities.Commit, error) {
	saved, err := s.commits.InsertCommit(ctx, repositoryID, commit)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"sha": commit.SHA, "files": len(commit.FileModifications)}).Debug("commit stored")
	return saved, nil
}

func (s *CommitService) GetCommitByRepoSha(ctx context.Context, repositoryID uint, sha string) (*entities.Commit, error) {
	return s.commits.GetCommitByRepoSha(ctx, repositoryID, sha)
}

func (s *CommitService) GetCommitByPosition(ctx context.Context, repositoryID uint, position int) (*entities.Commit, error) {
	return s.commits.GetCommitByPosition(ctx, repositoryID, position)
}

func (s *CommitService) DeleteCommitsOfRepository(ctx context.Context, repositoryID uint) (bool, error) {
	return s.commits.DeleteCommitsOfRepository(ctx, repositoryID)
}

// GetBaseCommits walks the mainline of a repository inside [start, end). It
// starts at the newest commit of the window and follows position-0 parents
// until a root or a parent dated outside the window. Commits are returned
// newest first with their file modifications attached. Side-branch commits
// are never visited.
func (s *CommitService) GetBaseCommits(ctx context.Context, repositoryID uint, start, end *time.Time) ([]*entities.Commit, error) {
	commits, err := s.commits.GetCommitsByRepo(ctx, repositoryID, start, end)
	if err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		return nil, nil
	}

	lo, hi := db.MinDate, db.MaxDate
	if start != nil {
		lo = *start
	}
	if end != nil {
		hi = *end
	}
	inWindow := func(t time.Time) bool {
		return !t.Before(lo) && t.Before(hi)
	}

	var chain []*entities.Commit
	seen := make(map[string]struct{})
	current := commits[len(commits)-1]
	for current != nil && inWindow(current.Date) {
		if _, ok := seen[current.SHA]; ok {
			s.log.WithField("sha", current.SHA).Warn("cycle in mainline history")
			break
		}
		seen[current.SHA] = struct{}{}

		if current.FileModifications == nil {
			full, err := s.commits.GetCommitByRepoSha(ctx, repositoryID, current.SHA)
			if err != nil {
				return nil, err
			}
			if full != nil {
				current = full
			}
		}
		chain = append(chain, current)

		parentSHA, err := s.commits.GetParentSha(ctx, current.ID)
		if err != nil {
			return nil, err
		}
		if parentSHA == "" {
			break
		}

		current, err = s.commits.GetCommitByRepoSha(ctx, repositoryID, parentSHA)
		if err != nil {
			return nil, err
		}
	}

	return chain, nil
}
