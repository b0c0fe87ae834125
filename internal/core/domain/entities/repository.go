package entities

import (
	"fmt"
	"sort"
	"strings"

	"github.com/just-nibble/service-miner/pkg/errcodes"
)

type Repository struct {
	ID    uint
	Name  string
	Owner string
	URL   string
	// sorted by date, oldest first
	Commits []*Commit
	Issues  []Issue
}

func NewRepository(owner, name, url string) (*Repository, error) {
	if owner == "" || name == "" {
		return nil, errcodes.ErrInvalidRepositoryName
	}
	if url == "" {
		url = fmt.Sprintf("https://github.com/%s/%s", owner, name)
	}
	return &Repository{Owner: owner, Name: name, URL: url}, nil
}

// ParseFullName splits "owner/name".
func ParseFullName(full string) (owner, name string, err error) {
	parts := strings.Split(full, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errcodes.ErrInvalidRepositoryName
	}
	return parts[0], parts[1], nil
}

func (r *Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

func (r *Repository) SetCommits(commits []*Commit) {
	sorted := make([]*Commit, len(commits))
	copy(sorted, commits)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	r.Commits = sorted
}
