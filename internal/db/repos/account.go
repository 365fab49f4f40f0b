package repos

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/bananagen/bananagen/internal/db/models"
)

// AccountRepository handles database operations for provider accounts
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new instance of AccountRepository
func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{
		db: db,
	}
}

// Create creates a new provider account in the database
func (r *AccountRepository) Create(ctx context.Context, account *models.ProviderAccount) error {
	return r.db.WithContext(ctx).Create(account).Error
}

// GetByID retrieves a provider account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id uint) (*models.ProviderAccount, error) {
	var account models.ProviderAccount
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// List retrieves all provider accounts ordered by priority
func (r *AccountRepository) List(ctx context.Context, opts *models.ListOptions) ([]models.ProviderAccount, error) {
	var accounts []models.ProviderAccount
	query := r.db.WithContext(ctx).Order("priority ASC, id ASC")
	if opts != nil {
		query = query.Limit(opts.Limit).Offset(opts.Offset)
	}
	err := query.Find(&accounts).Error
	return accounts, err
}

// ListActive retrieves the active provider accounts in ascending priority
// order, the order the selector tries them in.
func (r *AccountRepository) ListActive(ctx context.Context) ([]models.ProviderAccount, error) {
	var accounts []models.ProviderAccount
	err := r.db.WithContext(ctx).
		Where(models.ProviderAccount{Status: models.AccountStatusActive}).
		Order("priority ASC, id ASC").
		Find(&accounts).Error
	return accounts, err
}

// UpdateStatus updates the status of a provider account
func (r *AccountRepository) UpdateStatus(ctx context.Context, id uint, status models.AccountStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.ProviderAccount{}).
		Where("id = ?", id).
		Update(models.AccountStatusField, status).Error
}

// IncrementUsage increments the total usage counter of an account
func (r *AccountRepository) IncrementUsage(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.ProviderAccount{}).
		Where("id = ?", id).
		Update("total_usage", gorm.Expr("total_usage + 1")).Error
}

// IncrementError increments the error counter of an account and records
// when the error happened
func (r *AccountRepository) IncrementError(ctx context.Context, id uint) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.ProviderAccount{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"error_count":   gorm.Expr("error_count + 1"),
			"last_error_at": now,
		}).Error
}
