package repos

import (
	"github.com/bananagen/bananagen/internal/db/models"
)

type AccountRepositoryTestSuite struct {
	DBRepositoryTestSuite
}

func (s *AccountRepositoryTestSuite) TestCreateAppliesDefaults() {
	account := &models.ProviderAccount{
		Name:   "primary",
		APIKey: "secret",
		Type:   models.AccountTypeUnlimited,
	}
	s.Require().NoError(s.accountRepo.Create(s.ctx, account))
	s.Require().Equal(models.AccountStatusActive, account.Status)
	s.Require().Equal(models.DefaultConcurrencyLimit, account.ConcurrencyLimit)
}

func (s *AccountRepositoryTestSuite) TestCreateRejectsInvalid() {
	err := s.accountRepo.Create(s.ctx, &models.ProviderAccount{
		Name: "no-key",
		Type: models.AccountTypeUnlimited,
	})
	s.Require().Error(err)

	err = s.accountRepo.Create(s.ctx, &models.ProviderAccount{
		Name:   "bad-type",
		APIKey: "secret",
		Type:   "prepaid",
	})
	s.Require().Error(err)
}

func (s *AccountRepositoryTestSuite) TestListActiveOrdersByPriority() {
	low := s.createTestAccount(5)
	high := s.createTestAccount(1)
	inactive := s.createTestAccount(2)
	s.Require().NoError(s.accountRepo.UpdateStatus(s.ctx, inactive.ID, models.AccountStatusInactive))

	accounts, err := s.accountRepo.ListActive(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(accounts, 2)
	s.Require().Equal(high.ID, accounts[0].ID)
	s.Require().Equal(low.ID, accounts[1].ID)
}

func (s *AccountRepositoryTestSuite) TestCounters() {
	account := s.createTestAccount(1)

	s.Require().NoError(s.accountRepo.IncrementUsage(s.ctx, account.ID))
	s.Require().NoError(s.accountRepo.IncrementUsage(s.ctx, account.ID))
	s.Require().NoError(s.accountRepo.IncrementError(s.ctx, account.ID))

	updated, err := s.accountRepo.GetByID(s.ctx, account.ID)
	s.Require().NoError(err)
	s.Require().Equal(int64(2), updated.TotalUsage)
	s.Require().Equal(int64(1), updated.ErrorCount)
	s.Require().NotNil(updated.LastErrorAt)
}
