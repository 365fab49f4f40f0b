package services

import (
	"context"

	"github.com/bananagen/bananagen/internal/db/models"
	"github.com/bananagen/bananagen/internal/db/repos"
)

// Task handles read-side task queries. Lifecycle mutations go through the
// Dispatcher.
type Task struct {
	repo *repos.TaskRepository
}

// NewTaskService creates a new instance of the task service
func NewTaskService(repo *repos.TaskRepository) *Task {
	return &Task{
		repo: repo,
	}
}

// Get retrieves a task by its public identifier
func (s *Task) Get(ctx context.Context, taskUUID string) (*models.GenerationTask, error) {
	return s.repo.GetByUUID(ctx, taskUUID)
}

// ListByUser retrieves a user's tasks, newest first
func (s *Task) ListByUser(ctx context.Context, userID uint, opts *models.ListOptions) ([]models.GenerationTask, error) {
	return s.repo.ListByUser(ctx, userID, opts)
}
