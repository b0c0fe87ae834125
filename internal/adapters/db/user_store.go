package db

import (
	"context"
	"fmt"

	"github.com/just-nibble/service-miner/internal/core/domain/entities"
	"gorm.io/gorm"
)

// UserStore defines an interface for database operations on users
type UserStore interface {
	GetOrCreateUser(ctx context.Context, user entities.User) (*entities.User, error)
	GetUser(ctx context.Context, login, name, email string) (*entities.User, error)
}

// GormUserStore is a GORM-based implementation of UserStore
type GormUserStore struct {
	db *gorm.DB
}

// NewGormUserStore initializes a new GormUserStore
func NewGormUserStore(db *gorm.DB) *GormUserStore {
	return &GormUserStore{db: db}
}

// GetUser looks a user up by login first, then by name and email.
func (s *GormUserStore) GetUser(ctx context.Context, login, name, email string) (*entities.User, error) {
	var user User
	if login != "" {
		if err := s.db.WithContext(ctx).Where("login = ?", login).Limit(1).Find(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to retrieve user: %w", err)
		}
	}
	if user.ID == 0 && (name != "" || email != "") {
		if err := s.db.WithContext(ctx).Where("name = ? AND email = ?", name, email).Limit(1).Find(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to retrieve user: %w", err)
		}
	}
	if user.ID == 0 {
		return nil, nil
	}

	u := user.ToDomain()
	return &u, nil
}

// GetOrCreateUser retrieves an existing user, or creates a new one if it does not exist.
func (s *GormUserStore) GetOrCreateUser(ctx context.Context, user entities.User) (*entities.User, error) {
	existing, err := s.GetUser(ctx, user.Login, user.Name, user.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	row := User{Login: user.Login, Name: user.Name, Email: user.Email}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	u := row.ToDomain()
	return &u, nil
}
