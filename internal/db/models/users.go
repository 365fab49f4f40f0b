package models

import (
	"fmt"

	"gorm.io/gorm"
)

// DefaultCreditBalance is the credit balance granted to new users.
const DefaultCreditBalance = 10000

// User represents an end user with a credit balance. Authentication lives
// outside this service; the dispatcher only checks and adjusts credits.
type User struct {
	gorm.Model
	Email         string `json:"email" gorm:"not null;uniqueIndex"`
	Password      string `json:"-" gorm:"not null"`
	CreditBalance int    `json:"credit_balance" gorm:"not null"`
}

// Validate ensures that the user data is valid
func (u *User) Validate() error {
	if u.Email == "" {
		return fmt.Errorf("user email cannot be empty")
	}
	return nil
}

// BeforeCreate is a GORM hook that runs before creating a new user
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.CreditBalance == 0 {
		u.CreditBalance = DefaultCreditBalance
	}
	return u.Validate()
}
