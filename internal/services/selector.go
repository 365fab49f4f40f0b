// Package services implements the dispatch and reconciliation engine.
package services

import (
	"github.com/bananagen/bananagen/internal/db/models"
)

// SelectAccount picks the provider account that should serve the next
// dispatch, or nil when no account currently has capacity.
//
// Accounts must be the active set in ascending priority order. An unlimited
// account is admitted only while its count of in-flight tasks is below its
// concurrency limit, so flat-rate capacity fills up first. A pay-as-you-go
// account is always admitted and acts as uncapped overflow. The first
// admitted account wins; ties are broken by priority order alone, never by
// load. A nil result is not an error, it signals transient capacity
// exhaustion and the task stays pending.
func SelectAccount(accounts []models.ProviderAccount, processing map[uint]int64) *models.ProviderAccount {
	for i := range accounts {
		account := &accounts[i]
		switch account.Type {
		case models.AccountTypeUnlimited:
			if processing[account.ID] < int64(account.ConcurrencyLimit) {
				return account
			}
		case models.AccountTypePayAsYouGo:
			return account
		}
	}
	return nil
}
