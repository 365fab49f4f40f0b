package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/bananagen/bananagen/internal/db/models"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of UserRepository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// Create creates a new user in the database
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where(models.User{Email: email}).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DeductCredits atomically deducts credits from a user balance. The update
// is guarded on the balance covering the amount; the return value reports
// whether the deduction happened.
func (r *UserRepository) DeductCredits(ctx context.Context, id uint, amount int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND credit_balance >= ?", id, amount).
		Update("credit_balance", gorm.Expr("credit_balance - ?", amount))
	return result.RowsAffected > 0, result.Error
}

// RefundCredits returns credits to a user balance
func (r *UserRepository) RefundCredits(ctx context.Context, id uint, amount int) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("credit_balance", gorm.Expr("credit_balance + ?", amount)).Error
}
