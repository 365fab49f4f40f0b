// Package repos provides the database repositories for the service.
package repos

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/bananagen/bananagen/internal/db/models"
)

// TaskRepository handles database operations for generation tasks
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new instance of TaskRepository
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{
		db: db,
	}
}

// Create creates a new task in the database
func (r *TaskRepository) Create(ctx context.Context, task *models.GenerationTask) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// GetByID retrieves a task by its internal ID
func (r *TaskRepository) GetByID(ctx context.Context, id uint) (*models.GenerationTask, error) {
	var task models.GenerationTask
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// GetByUUID retrieves a task by its public identifier
func (r *TaskRepository) GetByUUID(ctx context.Context, taskUUID string) (*models.GenerationTask, error) {
	var task models.GenerationTask
	err := r.db.WithContext(ctx).
		Where(models.GenerationTask{UUID: taskUUID}).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ListByUser retrieves tasks for a user, newest first, with pagination
func (r *TaskRepository) ListByUser(ctx context.Context, userID uint, opts *models.ListOptions) ([]models.GenerationTask, error) {
	var tasks []models.GenerationTask
	query := r.db.WithContext(ctx).
		Where(models.GenerationTask{UserID: userID}).
		Order("created_at DESC")
	if opts != nil {
		query = query.Limit(opts.Limit).Offset(opts.Offset)
	}
	err := query.Find(&tasks).Error
	return tasks, err
}

// CountProcessingByAccount returns the number of tasks currently dispatched
// to each provider account, keyed by account ID. Accounts with no active
// tasks are absent from the map.
func (r *TaskRepository) CountProcessingByAccount(ctx context.Context) (map[uint]int64, error) {
	type row struct {
		ProviderAccountID uint
		Count             int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.GenerationTask{}).
		Select("provider_account_id, COUNT(*) AS count").
		Where("status = ? AND provider_account_id IS NOT NULL", models.TaskStatusProcessing).
		Group("provider_account_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.ProviderAccountID] = r.Count
	}
	return counts, nil
}

// MarkProcessing transitions a task from pending to processing, recording the
// chosen account, the provider correlation ID and the incurred cost. The
// update is guarded on the current status so a task that already moved on is
// never regressed; the return value reports whether the transition happened.
func (r *TaskRepository) MarkProcessing(ctx context.Context, id uint, accountID uint, providerTaskID string, costIncurred int) (bool, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.GenerationTask{}).
		Where("id = ? AND status = ?", id, models.TaskStatusPending).
		Updates(map[string]interface{}{
			"status":              models.TaskStatusProcessing,
			"provider_account_id": accountID,
			"provider_task_id":    providerTaskID,
			"cost_incurred":       costIncurred,
			"started_at":          now,
		})
	return result.RowsAffected > 0, result.Error
}

// MarkCompleted transitions a task from processing to completed with its
// result URL. Guarded on the current status; no-op for terminal tasks.
func (r *TaskRepository) MarkCompleted(ctx context.Context, id uint, resultURL string) (bool, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.GenerationTask{}).
		Where("id = ? AND status = ?", id, models.TaskStatusProcessing).
		Updates(map[string]interface{}{
			"status":       models.TaskStatusCompleted,
			"result_url":   resultURL,
			"completed_at": now,
		})
	return result.RowsAffected > 0, result.Error
}

// MarkFailed transitions a task from processing to failed with an error
// message. Guarded on the current status; no-op for terminal tasks.
func (r *TaskRepository) MarkFailed(ctx context.Context, id uint, errMsg string) (bool, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.GenerationTask{}).
		Where("id = ? AND status = ?", id, models.TaskStatusProcessing).
		Updates(map[string]interface{}{
			"status":        models.TaskStatusFailed,
			"error_message": errMsg,
			"completed_at":  now,
		})
	return result.RowsAffected > 0, result.Error
}
