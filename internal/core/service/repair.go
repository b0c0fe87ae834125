package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/just-nibble/service-miner/internal/adapters/db"
	"github.com/just-nibble/service-miner/internal/core/domain/entities"
	"github.com/just-nibble/service-miner/pkg/errcodes"
	"github.com/sirupsen/logrus"
)

// RevisionFetcher makes a file revision available on local disk.
type RevisionFetcher interface {
	Fetch(ctx context.Context, repo *entities.Repository, sha, path string) (string, error)
}

type DiffTool interface {
	DiffFiles(olderPath, newerPath string) (added, removed int, err error)
	CountLines(path string) (int, error)
}

type RepairStats struct {
	Commits int
	Files   int
	Skipped int
}

// Repairer recomputes the line counts of file modifications that the
// hosting API reported as zero, by diffing the stored revisions.
type Repairer struct {
	commits      db.CommitStore
	revisions    RevisionFetcher
	diff         DiffTool
	skipSuffixes []string
	log          logrus.FieldLogger
}

func NewRepairer(commits db.CommitStore, revisions RevisionFetcher, diff DiffTool, skipSuffixes []string, log logrus.FieldLogger) *Repairer {
	return &Repairer{
		commits:      commits,
		revisions:    revisions,
		diff:         diff,
		skipSuffixes: skipSuffixes,
		log:          log,
	}
}

func (r *Repairer) FindInconsistentCommits(ctx context.Context, repositoryID uint, extensions []string) ([]*entities.Commit, error) {
	commits, err := r.commits.FindInconsistentCommits(ctx, repositoryID, extensions)
	if err != nil {
		return nil, err
	}
	sortByDate(commits)
	return commits, nil
}

// Repair fixes every inconsistent file modification of repo, oldest commit
// first. The oldest inconsistent commit is left alone. Fetch failures abort
// the run; rerunning is safe since repaired rows no longer match.
func (r *Repairer) Repair(ctx context.Context, repo *entities.Repository, extensions []string) (RepairStats, error) {
	var stats RepairStats

	commits, err := r.FindInconsistentCommits(ctx, repo.ID, extensions)
	if err != nil {
		return stats, err
	}
	log := r.log.WithField("repository", repo.FullName())
	if len(commits) > 0 {
		log.WithField("commits", len(commits)).Info("repairing inconsistent commits")
	}

	for i, c := range commits {
		if i == 0 {
			stats.Skipped += len(c.FileModifications)
			continue
		}
		if err := ctx.Err(); err != nil {
			return stats, errcodes.ErrContextCancelled
		}

		parentSHA, err := r.commits.GetParentSha(ctx, c.ID)
		if err != nil {
			return stats, err
		}
		if parentSHA == "" {
			return stats, fmt.Errorf("commit %s: %w", c.SHA, errcodes.ErrMissingParent)
		}

		for _, fm := range c.FileModifications {
			if r.skipped(fm.Filename) {
				stats.Skipped++
				continue
			}

			fixed, err := r.repairFile(ctx, repo, parentSHA, c.SHA, fm)
			if err != nil {
				return stats, err
			}
			if err := r.commits.UpdateFileModification(ctx, c.ID, fixed); err != nil {
				return stats, err
			}

			log.WithFields(logrus.Fields{
				"sha":       c.SHA,
				"file":      fm.Filename,
				"status":    fm.Status,
				"additions": fixed.Additions,
				"deletions": fixed.Deletions,
			}).Debug("file modification repaired")
			stats.Files++
		}
		stats.Commits++
	}

	return stats, nil
}

func (r *Repairer) skipped(filename string) bool {
	for _, suffix := range r.skipSuffixes {
		if strings.HasSuffix(filename, suffix) {
			return true
		}
	}
	return false
}

func (r *Repairer) repairFile(ctx context.Context, repo *entities.Repository, parentSHA, sha string, fm entities.FileModification) (entities.FileModification, error) {
	switch fm.Status {
	case entities.StatusModified:
		older, err := r.revisions.Fetch(ctx, repo, parentSHA, fm.Filename)
		if err != nil {
			return fm, err
		}
		newer, err := r.revisions.Fetch(ctx, repo, sha, fm.Filename)
		if err != nil {
			return fm, err
		}
		added, removed, err := r.diff.DiffFiles(older, newer)
		if err != nil {
			return fm, err
		}
		return fm.WithCounts(added, removed)

	case entities.StatusRemoved:
		older, err := r.revisions.Fetch(ctx, repo, parentSHA, fm.Filename)
		if err != nil {
			return fm, err
		}
		n, err := r.diff.CountLines(older)
		if err != nil {
			return fm, err
		}
		return fm.WithCounts(fm.Additions, n)

	case entities.StatusAdded:
		newer, err := r.revisions.Fetch(ctx, repo, sha, fm.Filename)
		if err != nil {
			return fm, err
		}
		n, err := r.diff.CountLines(newer)
		if err != nil {
			return fm, err
		}
		return fm.WithCounts(n, fm.Deletions)
	}

	return fm, errcodes.Integrity("cannot repair %s with status %q", fm.Filename, fm.Status)
}
