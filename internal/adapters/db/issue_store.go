package db

import (
	"context"
	"fmt"

	"github.com/just-nibble/service-miner/internal/core/domain/entities"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IssueStore defines an interface for database operations on issues
type IssueStore interface {
	SaveIssue(ctx context.Context, repositoryID uint, issue *entities.Issue) (*entities.Issue, error)
	GetIssues(ctx context.Context, repositoryID uint) ([]entities.Issue, error)
	DeleteIssuesOfRepository(ctx context.Context, repositoryID uint) error
}

// GormIssueStore is a GORM-based implementation of IssueStore
type GormIssueStore struct {
	db *gorm.DB
}

// NewGormIssueStore initializes a new GormIssueStore
func NewGormIssueStore(db *gorm.DB) *GormIssueStore {
	return &GormIssueStore{db: db}
}

// SaveIssue stores an issue keyed by (repository, number) together with its
// labels and assignees. A stored issue only has its state and text
// refreshed. The reporting user must already be stored when set.
func (s *GormIssueStore) SaveIssue(ctx context.Context, repositoryID uint, issue *entities.Issue) (*entities.Issue, error) {
	var saved Issue
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("repository_id = ? AND number = ?", repositoryID, issue.Number).Limit(1).Find(&saved).Error; err != nil {
			return err
		}
		if saved.ID != 0 {
			saved.Title, saved.Body, saved.State = issue.Title, issue.Body, issue.State
			saved.ClosedAt, saved.LastUpdatedAt = utcPtr(issue.ClosedAt), utcPtr(issue.UpdatedAt)
			return tx.Model(&saved).
				Select("title", "body", "state", "closed_at", "last_updated_at").
				Updates(&saved).Error
		}

		labels := make([]Label, 0, len(issue.Labels))
		for _, l := range issue.Labels {
			row := Label{Name: l.Name, Description: l.Description}
			if err := tx.Where("name = ?", l.Name).FirstOrCreate(&row).Error; err != nil {
				return err
			}
			labels = append(labels, row)
		}
		assignees := make([]Assignee, 0, len(issue.Assignees))
		for _, a := range issue.Assignees {
			row := Assignee{Login: a.Login, HTMLURL: a.HTMLURL}
			if err := tx.Where("login = ?", a.Login).FirstOrCreate(&row).Error; err != nil {
				return err
			}
			assignees = append(assignees, row)
		}

		saved = Issue{
			RepositoryID:  repositoryID,
			Number:        issue.Number,
			Title:         issue.Title,
			Body:          issue.Body,
			State:         issue.State,
			UserID:        optionalID(issue.User.ID),
			CreatedAt:     issue.CreatedAt.UTC(),
			ClosedAt:      utcPtr(issue.ClosedAt),
			LastUpdatedAt: utcPtr(issue.UpdatedAt),
		}
		if err := tx.Omit(clause.Associations).Create(&saved).Error; err != nil {
			return err
		}
		if len(labels) > 0 {
			if err := tx.Model(&saved).Association("Labels").Append(labels); err != nil {
				return err
			}
		}
		if len(assignees) > 0 {
			if err := tx.Model(&saved).Association("Assignees").Append(assignees); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save issue #%d: %w", issue.Number, err)
	}

	out := saved.ToDomain()
	return &out, nil
}

func (s *GormIssueStore) GetIssues(ctx context.Context, repositoryID uint) ([]entities.Issue, error) {
	var rows []Issue
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Labels").
		Preload("Assignees").
		Where("repository_id = ?", repositoryID).
		Order("number").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve issues: %w", err)
	}

	issues := make([]entities.Issue, 0, len(rows))
	for _, row := range rows {
		issues = append(issues, row.ToDomain())
	}
	return issues, nil
}

func (s *GormIssueStore) DeleteIssuesOfRepository(ctx context.Context, repositoryID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&Issue{}).Where("repository_id = ?", repositoryID).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Exec("DELETE FROM issue_labels WHERE issue_id IN ?", ids).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM issue_assignees WHERE issue_id IN ?", ids).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&Issue{}).Error
	})
}

func optionalID(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}
