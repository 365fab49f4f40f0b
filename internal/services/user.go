package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bananagen/bananagen/internal/db/models"
	"github.com/bananagen/bananagen/internal/db/repos"
)

// DemoUserEmail identifies the built-in demo user that submissions fall
// back to when no user is specified.
const DemoUserEmail = "demo@banana.com"

// User handles user lookups and the demo-user fallback
type User struct {
	repo *repos.UserRepository
}

// NewUserService creates a new instance of the user service
func NewUserService(repo *repos.UserRepository) *User {
	return &User{
		repo: repo,
	}
}

// Get retrieves a user by ID
func (s *User) Get(ctx context.Context, id uint) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

// Demo returns the demo user, creating it on first use
func (s *User) Demo(ctx context.Context) (*models.User, error) {
	user, err := s.repo.GetByEmail(ctx, DemoUserEmail)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = &models.User{
		Email:    DemoUserEmail,
		Password: "unusable",
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
