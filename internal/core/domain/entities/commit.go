package entities

import (
	"sort"
	"strings"
	"time"

	"github.com/just-nibble/service-miner/pkg/errcodes"
)

type FileStatus string

const (
	StatusAdded    FileStatus = "added"
	StatusModified FileStatus = "modified"
	StatusRemoved  FileStatus = "removed"
)

// FileModification is the per-file delta of a commit. Changes is always
// Additions + Deletions; build values through NewFileModification or
// RestoreFileModification.
type FileModification struct {
	Filename  string
	Additions int
	Deletions int
	Changes   int
	Status    FileStatus
}

func NewFileModification(filename string, status FileStatus, additions, deletions int) (FileModification, error) {
	if filename == "" {
		return FileModification{}, errcodes.Integrity("file modification without filename")
	}
	if additions < 0 || deletions < 0 {
		return FileModification{}, errcodes.Integrity("negative line counts for %s", filename)
	}

	return FileModification{
		Filename:  filename,
		Additions: additions,
		Deletions: deletions,
		Changes:   additions + deletions,
		Status:    status,
	}, nil
}

// RestoreFileModification rebuilds a value whose changes count was recorded
// elsewhere and rejects it when the count disagrees with the line deltas.
func RestoreFileModification(filename string, status FileStatus, additions, deletions, changes int) (FileModification, error) {
	fm, err := NewFileModification(filename, status, additions, deletions)
	if err != nil {
		return FileModification{}, err
	}
	if changes != fm.Changes {
		return FileModification{}, errcodes.Integrity("%s: changes %d != additions %d + deletions %d",
			filename, changes, additions, deletions)
	}
	return fm, nil
}

// WithCounts returns a copy with new line counts and the same status.
func (fm FileModification) WithCounts(additions, deletions int) (FileModification, error) {
	return NewFileModification(fm.Filename, fm.Status, additions, deletions)
}

func (fm FileModification) Delta() int {
	return fm.Additions - fm.Deletions
}

// IsInconsistent reports the zero-count shapes that hosting APIs return for
// large or binary diffs.
func (fm FileModification) IsInconsistent() bool {
	switch fm.Status {
	case StatusModified:
		return fm.Changes == 0
	case StatusAdded:
		return fm.Additions == 0
	case StatusRemoved:
		return fm.Deletions == 0
	}
	return false
}

func (fm FileModification) HasExtension(ext string) bool {
	return strings.HasSuffix(fm.Filename, "."+strings.TrimPrefix(ext, "."))
}

// ParentRef points at a parent by SHA. Position 0 is the mainline parent.
type ParentRef struct {
	Position int
	SHA      string
}

func ValidateParents(parents []ParentRef) error {
	seen := make(map[int]struct{}, len(parents))
	for _, p := range parents {
		if p.Position < 0 {
			return errcodes.Integrity("negative parent position %d", p.Position)
		}
		if p.SHA == "" {
			return errcodes.Integrity("parent at position %d has no sha", p.Position)
		}
		if _, ok := seen[p.Position]; ok {
			return errcodes.Integrity("duplicate parent position %d", p.Position)
		}
		seen[p.Position] = struct{}{}
	}
	return nil
}

type Commit struct {
	ID      uint
	SHA     string
	Date    time.Time
	Author  User
	Comment string
	// nil until loaded, sorted by filename once set
	FileModifications []FileModification
	Parents           []ParentRef
}

func NewCommit(sha string, date time.Time, author User, comment string) (*Commit, error) {
	if sha == "" {
		return nil, errcodes.Integrity("commit without sha")
	}
	if date.IsZero() {
		return nil, errcodes.Integrity("commit %s without date", sha)
	}

	return &Commit{
		SHA:     sha,
		Date:    date.UTC(),
		Author:  author,
		Comment: comment,
	}, nil
}

// SetFileModifications attaches fms sorted by filename. A filename may
// appear once per commit.
func (c *Commit) SetFileModifications(fms []FileModification) error {
	sorted := make([]FileModification, len(fms))
	copy(sorted, fms)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Filename < sorted[j].Filename })

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Filename == sorted[i-1].Filename {
			return errcodes.Integrity("commit %s modifies %s twice", c.SHA, sorted[i].Filename)
		}
	}

	c.FileModifications = sorted
	return nil
}

func (c *Commit) SetParents(parents []ParentRef) error {
	if err := ValidateParents(parents); err != nil {
		return err
	}
	sorted := make([]ParentRef, len(parents))
	copy(sorted, parents)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })
	c.Parents = sorted
	return nil
}

func (c *Commit) MainlineParent() (string, bool) {
	for _, p := range c.Parents {
		if p.Position == 0 {
			return p.SHA, true
		}
	}
	return "", false
}

// Totals sums the line counts over every file modification.
func (c *Commit) Totals() (additions, deletions, changes int) {
	for _, fm := range c.FileModifications {
		additions += fm.Additions
		deletions += fm.Deletions
		changes += fm.Changes
	}
	return additions, deletions, changes
}
