package entities

import "time"

type Label struct {
	ID          uint
	Name        string
	Description string
}

type Assignee struct {
	ID      uint
	Login   string
	HTMLURL string
}

type Issue struct {
	ID        uint
	Number    int
	Title     string
	Body      string
	State     string
	User      User
	CreatedAt time.Time
	UpdatedAt *time.Time
	ClosedAt  *time.Time
	Labels    []Label
	Assignees []Assignee
}

func (i Issue) IsClosed() bool {
	return i.ClosedAt != nil
}

// TimeToRepair is the open duration in days of a closed issue.
func (i Issue) TimeToRepair() (float64, bool) {
	if i.ClosedAt == nil || i.CreatedAt.IsZero() {
		return 0, false
	}
	return i.ClosedAt.Sub(i.CreatedAt).Hours() / 24, true
}
