package db

import (
	"time"

	"github.com/just-nibble/service-miner/internal/core/domain/entities"
)

type User struct {
	ID        uint   `gorm:"primaryKey"`
	Login     string `gorm:"index"`
	Name      string `gorm:"index"`
	Email     string `gorm:"index"`
	CreatedAt time.Time
}

func (u User) ToDomain() entities.User {
	return entities.User{ID: u.ID, Login: u.Login, Name: u.Name, Email: u.Email}
}

type Repository struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"index"`
	Owner     string `gorm:"index"`
	URL       string `gorm:"uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r Repository) ToDomain() *entities.Repository {
	return &entities.Repository{ID: r.ID, Name: r.Name, Owner: r.Owner, URL: r.URL}
}

type Commit struct {
	ID                uint      `gorm:"primaryKey"`
	RepositoryID      uint      `gorm:"uniqueIndex:idx_commit_repo_sha"`
	SHA               string    `gorm:"column:sha;size:64;uniqueIndex:idx_commit_repo_sha"`
	Date              time.Time `gorm:"column:committed_at;index"`
	Comment           string
	UserID            uint `gorm:"index"`
	User              User
	FileModifications []FileModification
}

// ToDomain converts the row. File modifications are attached only when
// withFiles is set, so callers can tell "not loaded" from "none".
func (c Commit) ToDomain(withFiles bool) (*entities.Commit, error) {
	commit := &entities.Commit{
		ID:      c.ID,
		SHA:     c.SHA,
		Date:    c.Date.UTC(),
		Author:  c.User.ToDomain(),
		Comment: c.Comment,
	}
	if !withFiles {
		return commit, nil
	}

	fms := make([]entities.FileModification, 0, len(c.FileModifications))
	for _, row := range c.FileModifications {
		fm, err := row.ToDomain()
		if err != nil {
			return nil, err
		}
		fms = append(fms, fm)
	}
	if err := commit.SetFileModifications(fms); err != nil {
		return nil, err
	}
	return commit, nil
}

type FileModification struct {
	ID        uint   `gorm:"primaryKey"`
	CommitID  uint   `gorm:"uniqueIndex:idx_fm_commit_filename"`
	Filename  string `gorm:"uniqueIndex:idx_fm_commit_filename"`
	Additions int
	Deletions int
	Changes   int
	Status    string `gorm:"index"`
}

func (fm FileModification) ToDomain() (entities.FileModification, error) {
	return entities.RestoreFileModification(fm.Filename, entities.FileStatus(fm.Status),
		fm.Additions, fm.Deletions, fm.Changes)
}

type ParentCommit struct {
	ID       uint   `gorm:"primaryKey"`
	SHA      string `gorm:"column:sha;size:64;uniqueIndex:idx_parent_sha_position"`
	Position int    `gorm:"uniqueIndex:idx_parent_sha_position"`
}

type ParentCommitLink struct {
	ID             uint `gorm:"primaryKey"`
	CommitID       uint `gorm:"uniqueIndex:idx_link_commit_parent"`
	ParentCommitID uint `gorm:"uniqueIndex:idx_link_commit_parent"`
}

type Service struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex"`
	StartDate time.Time
	EndDate   *time.Time
}

func (s Service) ToDomain() *entities.Service {
	return &entities.Service{ID: s.ID, Name: s.Name, StartDate: s.StartDate.UTC(), EndDate: utcPtr(s.EndDate)}
}

type ServiceRepository struct {
	ID           uint `gorm:"primaryKey"`
	ServiceID    uint `gorm:"uniqueIndex:idx_service_repository"`
	RepositoryID uint `gorm:"uniqueIndex:idx_service_repository"`
	StartDate    *time.Time
	EndDate      *time.Time
	InitialLOC   *int `gorm:"column:initial_loc"`
}

func (sr ServiceRepository) ToDomain() entities.RepositoryLink {
	return entities.RepositoryLink{
		RepositoryID: sr.RepositoryID,
		StartDate:    utcPtr(sr.StartDate),
		EndDate:      utcPtr(sr.EndDate),
		InitialLOC:   sr.InitialLOC,
	}
}

type ServiceExtension struct {
	ID        uint   `gorm:"primaryKey"`
	ServiceID uint   `gorm:"uniqueIndex:idx_service_extension"`
	Extension string `gorm:"uniqueIndex:idx_service_extension"`
}

const (
	PatternIncluding = "including"
	PatternExcluding = "excluding"
)

// FilenamePattern is a filename substring filter. RepositoryID 0 applies to
// every repository of the service.
type FilenamePattern struct {
	ID           uint `gorm:"primaryKey"`
	ServiceID    uint `gorm:"index"`
	RepositoryID uint
	Pattern      string
	Kind         string
}

type Issue struct {
	ID            uint `gorm:"primaryKey"`
	RepositoryID  uint `gorm:"uniqueIndex:idx_issue_repo_number"`
	Number        int  `gorm:"uniqueIndex:idx_issue_repo_number"`
	Title         string
	Body          string
	State         string
	UserID        *uint
	User          User
	CreatedAt     time.Time
	ClosedAt      *time.Time `gorm:"index"`
	LastUpdatedAt *time.Time
	Labels        []Label    `gorm:"many2many:issue_labels"`
	Assignees     []Assignee `gorm:"many2many:issue_assignees"`
}

func (i Issue) ToDomain() entities.Issue {
	issue := entities.Issue{
		ID:        i.ID,
		Number:    i.Number,
		Title:     i.Title,
		Body:      i.Body,
		State:     i.State,
		User:      i.User.ToDomain(),
		CreatedAt: i.CreatedAt.UTC(),
		UpdatedAt: utcPtr(i.LastUpdatedAt),
		ClosedAt:  utcPtr(i.ClosedAt),
	}
	for _, l := range i.Labels {
		issue.Labels = append(issue.Labels, entities.Label{ID: l.ID, Name: l.Name, Description: l.Description})
	}
	for _, a := range i.Assignees {
		issue.Assignees = append(issue.Assignees, entities.Assignee{ID: a.ID, Login: a.Login, HTMLURL: a.HTMLURL})
	}
	return issue
}

type Label struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"uniqueIndex"`
	Description string
}

type Assignee struct {
	ID      uint   `gorm:"primaryKey"`
	Login   string `gorm:"uniqueIndex"`
	HTMLURL string `gorm:"column:html_url"`
}

// Models lists every table for AutoMigrate.
func Models() []any {
	return []any{
		&User{},
		&Repository{},
		&Commit{},
		&FileModification{},
		&ParentCommit{},
		&ParentCommitLink{},
		&Service{},
		&ServiceRepository{},
		&ServiceExtension{},
		&FilenamePattern{},
		&Label{},
		&Assignee{},
		&Issue{},
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
