package db

import (
	"context"
	"fmt"
	"time"

	"github.com/just-nibble/service-miner/internal/core/domain/entities"
	"github.com/just-nibble/service-miner/pkg/errcodes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// MinDate and MaxDate bound commit range queries when no window is given.
	MinDate = time.Date(1000, 1, 1, 0, 0, 0, 0, time.UTC)
	MaxDate = time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)
)

// CommitStore persists the commit graph. Lookups of a single record return
// (nil, nil) when nothing matches.
type CommitStore interface {
	InsertCommit(ctx context.Context, repositoryID uint, commit *entities.Commit) (*entities.Commit, error)
	GetCommitBySha(ctx context.Context, sha string) (*entities.Commit, error)
	GetCommitByRepoSha(ctx context.Context, repositoryID uint, sha string) (*entities.Commit, error)
	GetParentSha(ctx context.Context, commitID uint) (string, error)
	GetCommitsByRepo(ctx context.Context, repositoryID uint, start, end *time.Time) ([]*entities.Commit, error)
	GetCommitByPosition(ctx context.Context, repositoryID uint, position int) (*entities.Commit, error)
	DeleteCommitsOfRepository(ctx context.Context, repositoryID uint) (bool, error)
	FindInconsistentCommits(ctx context.Context, repositoryID uint, extensions []string) ([]*entities.Commit, error)
	UpdateFileModification(ctx context.Context, commitID uint, fm entities.FileModification) error
}

// GormCommitStore is a GORM-based implementation of CommitStore
type GormCommitStore struct {
	db *gorm.DB
}

// NewGormCommitStore initializes a new GormCommitStore
func NewGormCommitStore(db *gorm.DB) *GormCommitStore {
	return &GormCommitStore{db: db}
}

// InsertCommit stores the commit, its file modifications and its parent
// links. Re-inserting a known commit only adds what is missing. The author
// must already be stored.
func (s *GormCommitStore) InsertCommit(ctx context.Context, repositoryID uint, commit *entities.Commit) (*entities.Commit, error) {
	if err := entities.ValidateParents(commit.Parents); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userID, err := resolveUser(tx, commit.Author)
		if err != nil {
			return err
		}

		var row Commit
		if err := tx.Where("repository_id = ? AND sha = ?", repositoryID, commit.SHA).Limit(1).Find(&row).Error; err != nil {
			return fmt.Errorf("failed to retrieve commit: %w", err)
		}
		if row.ID == 0 {
			row = Commit{
				RepositoryID: repositoryID,
				SHA:          commit.SHA,
				Date:         commit.Date.UTC(),
				Comment:      commit.Comment,
				UserID:       userID,
			}
			if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
				return fmt.Errorf("failed to create commit: %w", err)
			}
		}

		for _, fm := range commit.FileModifications {
			fmRow := FileModification{
				CommitID:  row.ID,
				Filename:  fm.Filename,
				Additions: fm.Additions,
				Deletions: fm.Deletions,
				Changes:   fm.Changes,
				Status:    string(fm.Status),
			}
			if err := tx.Where("commit_id = ? AND filename = ?", row.ID, fm.Filename).FirstOrCreate(&fmRow).Error; err != nil {
				return fmt.Errorf("failed to create file modification %s: %w", fm.Filename, err)
			}
		}

		linked, err := parentsOf(tx, row.ID)
		if err != nil {
			return err
		}
		for _, p := range commit.Parents {
			for _, l := range linked {
				if l.Position == p.Position && l.SHA != p.SHA {
					return errcodes.Integrity("commit %s already has parent %s at position %d, got %s",
						commit.SHA, l.SHA, p.Position, p.SHA)
				}
			}
		}

		for _, p := range commit.Parents {
			parent := ParentCommit{SHA: p.SHA, Position: p.Position}
			if err := tx.Where("sha = ? AND position = ?", p.SHA, p.Position).FirstOrCreate(&parent).Error; err != nil {
				return fmt.Errorf("failed to create parent commit: %w", err)
			}
			link := ParentCommitLink{CommitID: row.ID, ParentCommitID: parent.ID}
			if err := tx.Where("commit_id = ? AND parent_commit_id = ?", row.ID, parent.ID).FirstOrCreate(&link).Error; err != nil {
				return fmt.Errorf("failed to link parent commit: %w", err)
			}
		}

		commit.ID = row.ID
		commit.Author.ID = userID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return commit, nil
}

func resolveUser(tx *gorm.DB, u entities.User) (uint, error) {
	q := tx.Model(&User{})
	switch {
	case u.ID != 0:
		q = q.Where("id = ?", u.ID)
	case u.Login != "":
		q = q.Where("login = ?", u.Login)
	default:
		q = q.Where("name = ? AND email = ?", u.Name, u.Email)
	}

	var row User
	if err := q.Limit(1).Find(&row).Error; err != nil {
		return 0, fmt.Errorf("failed to retrieve user: %w", err)
	}
	if row.ID == 0 {
		return 0, errcodes.Integrity("commit user %q <%s> is not stored", u.Name, u.Email)
	}
	return row.ID, nil
}

// GetCommitBySha returns the commit with its file modifications and parents.
// When several repositories share the sha, the first stored one wins; use
// GetCommitByRepoSha inside a single repository.
func (s *GormCommitStore) GetCommitBySha(ctx context.Context, sha string) (*entities.Commit, error) {
	return s.findCommit(ctx, s.db.WithContext(ctx).Where("sha = ?", sha))
}

// GetCommitByRepoSha is GetCommitBySha restricted to one repository.
func (s *GormCommitStore) GetCommitByRepoSha(ctx context.Context, repositoryID uint, sha string) (*entities.Commit, error) {
	return s.findCommit(ctx, s.db.WithContext(ctx).Where("repository_id = ? AND sha = ?", repositoryID, sha))
}

func (s *GormCommitStore) findCommit(ctx context.Context, q *gorm.DB) (*entities.Commit, error) {
	var row Commit
	err := q.
		Preload("User").
		Preload("FileModifications").
		Order("id").
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve commit: %w", err)
	}
	if row.ID == 0 {
		return nil, nil
	}

	commit, err := row.ToDomain(true)
	if err != nil {
		return nil, err
	}

	parents, err := parentsOf(s.db.WithContext(ctx), row.ID)
	if err != nil {
		return nil, err
	}
	if err := commit.SetParents(parents); err != nil {
		return nil, err
	}

	return commit, nil
}

func parentsOf(tx *gorm.DB, commitID uint) ([]entities.ParentRef, error) {
	var rows []ParentCommit
	err := tx.
		Model(&ParentCommit{}).
		Select("parent_commits.*").
		Joins("JOIN parent_commit_links ON parent_commit_links.parent_commit_id = parent_commits.id").
		Where("parent_commit_links.commit_id = ?", commitID).
		Order("parent_commits.position").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve parents: %w", err)
	}

	refs := make([]entities.ParentRef, 0, len(rows))
	for _, r := range rows {
		refs = append(refs, entities.ParentRef{Position: r.Position, SHA: r.SHA})
	}
	return refs, nil
}

// GetParentSha returns the SHA of the position-0 parent, or "" for a root.
func (s *GormCommitStore) GetParentSha(ctx context.Context, commitID uint) (string, error) {
	var shas []string
	err := s.db.WithContext(ctx).
		Table("parent_commit_links").
		Joins("JOIN parent_commits ON parent_commits.id = parent_commit_links.parent_commit_id").
		Where("parent_commit_links.commit_id = ? AND parent_commits.position = ?", commitID, 0).
		Limit(1).
		Pluck("parent_commits.sha", &shas).Error
	if err != nil {
		return "", fmt.Errorf("failed to retrieve parent sha: %w", err)
	}
	if len(shas) == 0 {
		return "", nil
	}
	return shas[0], nil
}

// GetCommitsByRepo returns commits with start <= date < end, oldest first,
// without file modifications.
func (s *GormCommitStore) GetCommitsByRepo(ctx context.Context, repositoryID uint, start, end *time.Time) ([]*entities.Commit, error) {
	lo, hi := MinDate, MaxDate
	if start != nil {
		lo = start.UTC()
	}
	if end != nil {
		hi = end.UTC()
	}

	var rows []Commit
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("repository_id = ? AND committed_at >= ? AND committed_at < ?", repositoryID, lo, hi).
		Order("committed_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve commits: %w", err)
	}

	commits := make([]*entities.Commit, 0, len(rows))
	for _, row := range rows {
		c, err := row.ToDomain(false)
		if err != nil {
			return nil, err
		}
		commits = append(commits, c)
	}
	return commits, nil
}

// GetCommitByPosition indexes the date-ordered history. Negative positions
// count from the newest commit, so -1 is the latest.
func (s *GormCommitStore) GetCommitByPosition(ctx context.Context, repositoryID uint, position int) (*entities.Commit, error) {
	q := s.db.WithContext(ctx).Preload("User").Where("repository_id = ?", repositoryID)
	if position >= 0 {
		q = q.Order("committed_at ASC, id ASC").Offset(position)
	} else {
		q = q.Order("committed_at DESC, id DESC").Offset(-position - 1)
	}

	var row Commit
	if err := q.Limit(1).Find(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve commit: %w", err)
	}
	if row.ID == 0 {
		return nil, nil
	}
	return row.ToDomain(false)
}

// DeleteCommitsOfRepository removes the commits of a repository together
// with their file modifications and parent links. A repository without
// commits is a successful no-op.
func (s *GormCommitStore) DeleteCommitsOfRepository(ctx context.Context, repositoryID uint) (bool, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&Commit{}).Where("repository_id = ?", repositoryID).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		if err := tx.Where("commit_id IN ?", ids).Delete(&FileModification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("commit_id IN ?", ids).Delete(&ParentCommitLink{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", ids).Delete(&Commit{}).Error; err != nil {
			return err
		}
		orphans := tx.Model(&ParentCommitLink{}).Select("parent_commit_id")
		if err := tx.Where("id NOT IN (?)", orphans).Delete(&ParentCommit{}).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete commits of repository %d: %w", repositoryID, err)
	}
	return true, nil
}

type inconsistentRow struct {
	CommitID  uint
	Filename  string
	Additions int
	Deletions int
	Changes   int
	Status    string
}

// FindInconsistentCommits returns commits carrying file modifications whose
// counts contradict their status, oldest first. Only the offending file
// modifications are attached. An empty extension list matches any file.
func (s *GormCommitStore) FindInconsistentCommits(ctx context.Context, repositoryID uint, extensions []string) ([]*entities.Commit, error) {
	q := s.db.WithContext(ctx).
		Table("file_modifications").
		Select("file_modifications.commit_id, file_modifications.filename, file_modifications.additions, " +
			"file_modifications.deletions, file_modifications.changes, file_modifications.status").
		Joins("JOIN commits ON commits.id = file_modifications.commit_id").
		Where("commits.repository_id = ?", repositoryID).
		Where("((file_modifications.status = ? AND file_modifications.changes = 0) OR "+
			"(file_modifications.status = ? AND file_modifications.additions = 0) OR "+
			"(file_modifications.status = ? AND file_modifications.deletions = 0))",
			string(entities.StatusModified), string(entities.StatusAdded), string(entities.StatusRemoved))

	if len(extensions) > 0 {
		byExt := s.db.Where("file_modifications.filename LIKE ?", "%."+extensions[0])
		for _, ext := range extensions[1:] {
			byExt = byExt.Or("file_modifications.filename LIKE ?", "%."+ext)
		}
		q = q.Where(byExt)
	}

	var rows []inconsistentRow
	if err := q.Order("file_modifications.commit_id, file_modifications.filename").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find inconsistent commits: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	byCommit := make(map[uint][]entities.FileModification)
	ids := make([]uint, 0)
	for _, r := range rows {
		fm, err := entities.RestoreFileModification(r.Filename, entities.FileStatus(r.Status), r.Additions, r.Deletions, r.Changes)
		if err != nil {
			return nil, err
		}
		if _, ok := byCommit[r.CommitID]; !ok {
			ids = append(ids, r.CommitID)
		}
		byCommit[r.CommitID] = append(byCommit[r.CommitID], fm)
	}

	var commitRows []Commit
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("id IN ?", ids).
		Order("committed_at ASC, id ASC").
		Find(&commitRows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve commits: %w", err)
	}

	commits := make([]*entities.Commit, 0, len(commitRows))
	for _, row := range commitRows {
		c, err := row.ToDomain(false)
		if err != nil {
			return nil, err
		}
		if err := c.SetFileModifications(byCommit[row.ID]); err != nil {
			return nil, err
		}
		commits = append(commits, c)
	}
	return commits, nil
}

// UpdateFileModification rewrites the line counts of one file of a commit.
// The status is left untouched.
func (s *GormCommitStore) UpdateFileModification(ctx context.Context, commitID uint, fm entities.FileModification) error {
	if _, err := entities.RestoreFileModification(fm.Filename, fm.Status, fm.Additions, fm.Deletions, fm.Changes); err != nil {
		return err
	}

	res := s.db.WithContext(ctx).
		Model(&FileModification{}).
		Where("commit_id = ? AND filename = ?", commitID, fm.Filename).
		Updates(map[string]any{
			"additions": fm.Additions,
			"deletions": fm.Deletions,
			"changes":   fm.Changes,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update file modification: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errcodes.ErrNoRecordFound
	}
	return nil
}
