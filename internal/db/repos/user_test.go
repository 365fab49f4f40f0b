package repos

import (
	"github.com/bananagen/bananagen/internal/db/models"
)

type UserRepositoryTestSuite struct {
	DBRepositoryTestSuite
}

func (s *UserRepositoryTestSuite) TestCreateGrantsDefaultBalance() {
	user := s.createTestUser()
	s.Require().Equal(models.DefaultCreditBalance, user.CreditBalance)
}

func (s *UserRepositoryTestSuite) TestDeductCreditsGuardsBalance() {
	user := s.createTestUser()

	ok, err := s.userRepo.DeductCredits(s.ctx, user.ID, models.DefaultCostToUser)
	s.Require().NoError(err)
	s.Require().True(ok)

	updated, err := s.userRepo.GetByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Require().Equal(models.DefaultCreditBalance-models.DefaultCostToUser, updated.CreditBalance)

	// Deduction beyond the balance must not go through.
	ok, err = s.userRepo.DeductCredits(s.ctx, user.ID, updated.CreditBalance+1)
	s.Require().NoError(err)
	s.Require().False(ok)

	unchanged, err := s.userRepo.GetByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Require().Equal(updated.CreditBalance, unchanged.CreditBalance)
}

func (s *UserRepositoryTestSuite) TestRefundCredits() {
	user := s.createTestUser()

	ok, err := s.userRepo.DeductCredits(s.ctx, user.ID, models.DefaultCostToUser)
	s.Require().NoError(err)
	s.Require().True(ok)

	s.Require().NoError(s.userRepo.RefundCredits(s.ctx, user.ID, models.DefaultCostToUser))

	updated, err := s.userRepo.GetByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Require().Equal(models.DefaultCreditBalance, updated.CreditBalance)
}
