package repos

import (
	"github.com/bananagen/bananagen/internal/db/models"
)

type TaskRepositoryTestSuite struct {
	DBRepositoryTestSuite
}

func (s *TaskRepositoryTestSuite) TestCreateAppliesDefaults() {
	user := s.createTestUser()
	task := s.createTestTask(user.ID)

	s.Require().NotZero(task.ID)
	s.Require().NotEmpty(task.UUID)
	s.Require().Equal(models.TaskStatusPending, task.Status)
	s.Require().Equal(models.DefaultImageSize, task.Width)
	s.Require().Equal(models.DefaultImageSize, task.Height)
	s.Require().Equal(models.DefaultModelName, task.ModelName)
}

func (s *TaskRepositoryTestSuite) TestCreateRejectsEmptyPrompt() {
	user := s.createTestUser()
	err := s.taskRepo.Create(s.ctx, &models.GenerationTask{UserID: user.ID})
	s.Require().Error(err)
}

func (s *TaskRepositoryTestSuite) TestGetByUUID() {
	user := s.createTestUser()
	task := s.createTestTask(user.ID)

	found, err := s.taskRepo.GetByUUID(s.ctx, task.UUID)
	s.Require().NoError(err)
	s.Require().Equal(task.ID, found.ID)
	s.Require().Equal(task.Prompt, found.Prompt)

	_, err = s.taskRepo.GetByUUID(s.ctx, "no-such-task")
	s.Require().Error(err)
}

func (s *TaskRepositoryTestSuite) TestMarkProcessingGuardsOnStatus() {
	user := s.createTestUser()
	account := s.createTestAccount(1)
	task := s.createTestTask(user.ID)

	moved, err := s.taskRepo.MarkProcessing(s.ctx, task.ID, account.ID, "gommo-1", 0)
	s.Require().NoError(err)
	s.Require().True(moved)

	updated, err := s.taskRepo.GetByID(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Require().Equal(models.TaskStatusProcessing, updated.Status)
	s.Require().NotNil(updated.ProviderAccountID)
	s.Require().Equal(account.ID, *updated.ProviderAccountID)
	s.Require().NotNil(updated.ProviderTaskID)
	s.Require().Equal("gommo-1", *updated.ProviderTaskID)
	s.Require().NotNil(updated.StartedAt)

	// A second claim on the same task must not succeed.
	moved, err = s.taskRepo.MarkProcessing(s.ctx, task.ID, account.ID, "gommo-2", 0)
	s.Require().NoError(err)
	s.Require().False(moved)

	unchanged, err := s.taskRepo.GetByID(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Require().Equal("gommo-1", *unchanged.ProviderTaskID)
}

func (s *TaskRepositoryTestSuite) TestMarkCompletedOnlyFromProcessing() {
	user := s.createTestUser()
	account := s.createTestAccount(1)
	task := s.createTestTask(user.ID)

	// Pending tasks cannot jump straight to completed.
	moved, err := s.taskRepo.MarkCompleted(s.ctx, task.ID, "https://img.example/x.png")
	s.Require().NoError(err)
	s.Require().False(moved)

	moved, err = s.taskRepo.MarkProcessing(s.ctx, task.ID, account.ID, "gommo-1", 0)
	s.Require().NoError(err)
	s.Require().True(moved)

	moved, err = s.taskRepo.MarkCompleted(s.ctx, task.ID, "https://img.example/x.png")
	s.Require().NoError(err)
	s.Require().True(moved)

	completed, err := s.taskRepo.GetByID(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Require().Equal(models.TaskStatusCompleted, completed.Status)
	s.Require().NotNil(completed.ResultURL)
	s.Require().Equal("https://img.example/x.png", *completed.ResultURL)
	s.Require().NotNil(completed.CompletedAt)

	// Terminal tasks are frozen.
	moved, err = s.taskRepo.MarkFailed(s.ctx, task.ID, "late failure")
	s.Require().NoError(err)
	s.Require().False(moved)
}

func (s *TaskRepositoryTestSuite) TestMarkFailed() {
	user := s.createTestUser()
	account := s.createTestAccount(1)
	task := s.createTestTask(user.ID)

	moved, err := s.taskRepo.MarkProcessing(s.ctx, task.ID, account.ID, "gommo-1", 0)
	s.Require().NoError(err)
	s.Require().True(moved)

	moved, err = s.taskRepo.MarkFailed(s.ctx, task.ID, "Upstream provider error")
	s.Require().NoError(err)
	s.Require().True(moved)

	failed, err := s.taskRepo.GetByID(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Require().Equal(models.TaskStatusFailed, failed.Status)
	s.Require().NotNil(failed.ErrorMessage)
	s.Require().Nil(failed.ResultURL)
	s.Require().NotNil(failed.CompletedAt)
}

func (s *TaskRepositoryTestSuite) TestCountProcessingByAccount() {
	user := s.createTestUser()
	accountA := s.createTestAccount(1)
	accountB := s.createTestAccount(2)

	counts, err := s.taskRepo.CountProcessingByAccount(s.ctx)
	s.Require().NoError(err)
	s.Require().Empty(counts)

	for i := 0; i < 2; i++ {
		task := s.createTestTask(user.ID)
		moved, err := s.taskRepo.MarkProcessing(s.ctx, task.ID, accountA.ID, task.UUID, 0)
		s.Require().NoError(err)
		s.Require().True(moved)
	}
	taskOnB := s.createTestTask(user.ID)
	moved, err := s.taskRepo.MarkProcessing(s.ctx, taskOnB.ID, accountB.ID, taskOnB.UUID, 0)
	s.Require().NoError(err)
	s.Require().True(moved)

	// A completed task no longer occupies a slot.
	finished := s.createTestTask(user.ID)
	moved, err = s.taskRepo.MarkProcessing(s.ctx, finished.ID, accountA.ID, finished.UUID, 0)
	s.Require().NoError(err)
	s.Require().True(moved)
	moved, err = s.taskRepo.MarkCompleted(s.ctx, finished.ID, "https://img.example/done.png")
	s.Require().NoError(err)
	s.Require().True(moved)

	counts, err = s.taskRepo.CountProcessingByAccount(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal(int64(2), counts[accountA.ID])
	s.Require().Equal(int64(1), counts[accountB.ID])
}

func (s *TaskRepositoryTestSuite) TestListByUserNewestFirst() {
	user := s.createTestUser()
	other := s.createTestUser()

	first := s.createTestTask(user.ID)
	second := s.createTestTask(user.ID)
	s.createTestTask(other.ID)

	tasks, err := s.taskRepo.ListByUser(s.ctx, user.ID, models.DefaultListOptions())
	s.Require().NoError(err)
	s.Require().Len(tasks, 2)
	ids := []uint{tasks[0].ID, tasks[1].ID}
	s.Require().ElementsMatch([]uint{first.ID, second.ID}, ids)
}
