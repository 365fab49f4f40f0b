package services

import (
	"context"

	"github.com/bananagen/bananagen/internal/db/models"
	"github.com/bananagen/bananagen/internal/db/repos"
)

// Account handles provider-account administration
type Account struct {
	repo *repos.AccountRepository
}

// NewAccountService creates a new instance of the account service
func NewAccountService(repo *repos.AccountRepository) *Account {
	return &Account{
		repo: repo,
	}
}

// Create creates a new provider account
func (s *Account) Create(ctx context.Context, account *models.ProviderAccount) error {
	return s.repo.Create(ctx, account)
}

// Get retrieves a provider account by ID
func (s *Account) Get(ctx context.Context, id uint) (*models.ProviderAccount, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves all provider accounts ordered by priority
func (s *Account) List(ctx context.Context, opts *models.ListOptions) ([]models.ProviderAccount, error) {
	return s.repo.List(ctx, opts)
}

// UpdateStatus activates or deactivates a provider account
func (s *Account) UpdateStatus(ctx context.Context, id uint, status models.AccountStatus) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.UpdateStatus(ctx, id, status)
}
