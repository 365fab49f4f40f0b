package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Field names for the provider account model
const (
	// AccountStatusField is the column name for account status
	AccountStatusField = "status"
	// AccountPriorityField is the column name for account priority
	AccountPriorityField = "priority"
)

// DefaultConcurrencyLimit is the concurrency limit applied to unlimited
// accounts created without one.
const DefaultConcurrencyLimit = 6

// AccountType represents the billing model of a provider account
type AccountType string

// Account type constants
const (
	// AccountTypeUnlimited is flat-rate capacity bounded by a concurrency limit
	AccountTypeUnlimited AccountType = "unlimited"
	// AccountTypePayAsYouGo is metered capacity with no concurrency bound
	AccountTypePayAsYouGo AccountType = "pay_as_you_go"
)

// String returns the string representation of the account type
func (t AccountType) String() string {
	return string(t)
}

// ParseAccountType converts a string to an AccountType
func ParseAccountType(str string) (AccountType, error) {
	switch str {
	case string(AccountTypeUnlimited):
		return AccountTypeUnlimited, nil
	case string(AccountTypePayAsYouGo):
		return AccountTypePayAsYouGo, nil
	default:
		return "", fmt.Errorf("invalid account type: %s", str)
	}
}

// UnmarshalJSON implements json.Unmarshaler for AccountType
func (t *AccountType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	parsed, err := ParseAccountType(str)
	if err != nil {
		return err
	}

	*t = parsed
	return nil
}

// AccountStatus represents whether an account participates in selection
type AccountStatus string

// Account status constants
const (
	// AccountStatusActive makes the account eligible for selection
	AccountStatusActive AccountStatus = "active"
	// AccountStatusInactive removes the account from selection
	AccountStatusInactive AccountStatus = "inactive"
)

// String returns the string representation of the account status
func (s AccountStatus) String() string {
	return string(s)
}

// ParseAccountStatus converts a string to an AccountStatus
func ParseAccountStatus(str string) (AccountStatus, error) {
	switch str {
	case string(AccountStatusActive):
		return AccountStatusActive, nil
	case string(AccountStatusInactive):
		return AccountStatusInactive, nil
	default:
		return "", fmt.Errorf("invalid account status: %s", str)
	}
}

// ProviderAccount represents one credential and capacity unit against the
// upstream generation service. Accounts are created and edited by the admin
// surface; the dispatcher only reads them and increments counters.
type ProviderAccount struct {
	gorm.Model
	Name             string        `json:"name" gorm:"not null"`
	APIKey           string        `json:"-" gorm:"not null"`
	ProxyURL         *string       `json:"proxy_url,omitempty"`
	UserAgent        *string       `json:"user_agent,omitempty"`
	Type             AccountType   `json:"type" gorm:"not null"`
	ConcurrencyLimit int           `json:"concurrency_limit" gorm:"not null"`
	Priority         int           `json:"priority" gorm:"not null;index"`
	Status           AccountStatus `json:"status" gorm:"not null;index"`

	TotalUsage  int64      `json:"total_usage" gorm:"not null;default:0"`
	ErrorCount  int64      `json:"error_count" gorm:"not null;default:0"`
	LastErrorAt *time.Time `json:"last_error_at,omitempty"`
}

// IsUnlimited reports whether the account is flat-rate capacity
func (a *ProviderAccount) IsUnlimited() bool {
	return a.Type == AccountTypeUnlimited
}

// Validate ensures that the account data is valid
func (a *ProviderAccount) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if a.APIKey == "" {
		return fmt.Errorf("account api key cannot be empty")
	}
	if _, err := ParseAccountType(a.Type.String()); err != nil {
		return err
	}
	if a.IsUnlimited() && a.ConcurrencyLimit <= 0 {
		return fmt.Errorf("concurrency limit must be positive for unlimited accounts")
	}
	return nil
}

// BeforeCreate is a GORM hook that runs before creating a new account
func (a *ProviderAccount) BeforeCreate(_ *gorm.DB) error {
	if a.Status == "" {
		a.Status = AccountStatusActive
	}
	if a.ConcurrencyLimit == 0 {
		a.ConcurrencyLimit = DefaultConcurrencyLimit
	}
	return a.Validate()
}
