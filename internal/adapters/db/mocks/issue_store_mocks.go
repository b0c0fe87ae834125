package mocks

import (
	"context"

	"github.com/just-nibble/service-miner/internal/core/domain/entities"
	"github.com/stretchr/testify/mock"
)

// IssueStore mock
type IssueStore struct {
	mock.Mock
}

func (m *IssueStore) SaveIssue(ctx context.Context, repositoryID uint, issue *entities.Issue) (*entities.Issue, error) {
	args := m.Called(ctx, repositoryID, issue)
	saved, _ := args.Get(0).(*entities.Issue)
	return saved, args.Error(1)
}

func (m *IssueStore) GetIssues(ctx context.Context, repositoryID uint) ([]entities.Issue, error) {
	args := m.Called(ctx, repositoryID)
	issues, _ := args.Get(0).([]entities.Issue)
	return issues, args.Error(1)
}

func (m *IssueStore) DeleteIssuesOfRepository(ctx context.Context, repositoryID uint) error {
	args := m.Called(ctx, repositoryID)
	return args.Error(0)
}

// UserStore mock
type UserStore struct {
	mock.Mock
}

func (m *UserStore) GetOrCreateUser(ctx context.Context, user entities.User) (*entities.User, error) {
	args := m.Called(ctx, user)
	u, _ := args.Get(0).(*entities.User)
	return u, args.Error(1)
}

func (m *UserStore) GetUser(ctx context.Context, login, name, email string) (*entities.User, error) {
	args := m.Called(ctx, login, name, email)
	u, _ := args.Get(0).(*entities.User)
	return u, args.Error(1)
}
