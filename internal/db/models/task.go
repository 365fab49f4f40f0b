package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Field names for the generation task model
const (
	// TaskStatusField is the column name for task status
	TaskStatusField = "status"
	// TaskUUIDField is the column name for the public task identifier
	TaskUUIDField = "uuid"
)

// Default generation parameters applied when the request omits them
const (
	// DefaultImageSize is the default width and height in pixels
	DefaultImageSize = 1024
	// DefaultModelName is the model used when the request does not name one
	DefaultModelName = "banana-default"
	// DefaultCostToUser is the flat credit cost charged per generation
	DefaultCostToUser = 500
)

// TaskStatus represents the current state of a generation task
type TaskStatus string

// Task status constants
const (
	// TaskStatusUnknown represents an unknown or invalid task status
	TaskStatusUnknown TaskStatus = "unknown"
	// TaskStatusPending indicates the task is waiting for provider capacity
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusProcessing indicates the task has been dispatched upstream
	TaskStatusProcessing TaskStatus = "processing"
	// TaskStatusCompleted indicates the provider finished the task successfully
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusFailed indicates the provider reported a terminal error
	TaskStatusFailed TaskStatus = "failed"
)

// String returns the string representation of the task status
func (s TaskStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the status is an absorbing state. Terminal
// tasks are never mutated again.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// ParseTaskStatus converts a string to a TaskStatus type
func ParseTaskStatus(str string) (TaskStatus, error) {
	switch str {
	case string(TaskStatusPending):
		return TaskStatusPending, nil
	case string(TaskStatusProcessing):
		return TaskStatusProcessing, nil
	case string(TaskStatusCompleted):
		return TaskStatusCompleted, nil
	case string(TaskStatusFailed):
		return TaskStatusFailed, nil
	default:
		return TaskStatusUnknown, fmt.Errorf("invalid task status: %s", str)
	}
}

// UnmarshalJSON implements json.Unmarshaler for TaskStatus
func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	status, err := ParseTaskStatus(str)
	if err != nil {
		return err
	}

	*s = status
	return nil
}

// MarshalJSON implements json.Marshaler for TaskStatus
func (s *TaskStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// GenerationTask represents one image-generation request and its lifecycle
// record. Prompt, dimensions, model and cost are fixed at creation; only the
// lifecycle fields change afterwards, and never once the task is terminal.
type GenerationTask struct {
	gorm.Model
	UUID       string     `json:"id" gorm:"type:varchar(36);not null;uniqueIndex"`
	UserID     uint       `json:"-" gorm:"not null;index"`
	Prompt     string     `json:"prompt" gorm:"not null;type:text"`
	Width      int        `json:"width" gorm:"not null"`
	Height     int        `json:"height" gorm:"not null"`
	ModelName  string     `json:"model" gorm:"not null"`
	CostToUser int        `json:"cost_to_user" gorm:"not null"`
	Status     TaskStatus `json:"status" gorm:"not null;index"`

	// Set together on the pending -> processing transition, never cleared.
	ProviderAccountID *uint   `json:"-" gorm:"index"`
	ProviderTaskID    *string `json:"-"`

	CostIncurred int        `json:"-"`
	ResultURL    *string    `json:"result_url,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// Validate ensures that the task data is valid
func (t *GenerationTask) Validate() error {
	if t.Prompt == "" {
		return fmt.Errorf("task prompt cannot be empty")
	}
	if t.UserID == 0 {
		return fmt.Errorf("task user id cannot be zero")
	}
	return nil
}

// BeforeCreate is a GORM hook that runs before creating a new task
func (t *GenerationTask) BeforeCreate(_ *gorm.DB) error {
	if t.UUID == "" {
		t.UUID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = TaskStatusPending
	}
	if t.Width == 0 {
		t.Width = DefaultImageSize
	}
	if t.Height == 0 {
		t.Height = DefaultImageSize
	}
	if t.ModelName == "" {
		t.ModelName = DefaultModelName
	}
	return t.Validate()
}
