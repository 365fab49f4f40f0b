package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	fiber "github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/bananagen/bananagen/internal/db/models"
	"github.com/bananagen/bananagen/internal/services"
	"github.com/bananagen/bananagen/internal/types"
)

// TaskHandler handles HTTP requests for generation tasks
type TaskHandler struct {
	dispatcher  *services.Dispatcher
	taskService *services.Task
	userService *services.User
	validate    *validator.Validate
}

// NewTaskHandler creates a new instance of TaskHandler
func NewTaskHandler(dispatcher *services.Dispatcher, taskService *services.Task, userService *services.User) *TaskHandler {
	return &TaskHandler{
		dispatcher:  dispatcher,
		taskService: taskService,
		userService: userService,
		validate:    validator.New(),
	}
}

// Generate handles submitting a new generation request. The task is
// created and dispatched once; the response never waits for completion.
func (h *TaskHandler) Generate(c *fiber.Ctx) error {
	var req types.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(ErrMsgInvalidReqBody))
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(err.Error()))
	}

	userID := req.UserID
	if userID == 0 {
		user, err := h.userService.Demo(c.Context())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(ErrMsgTaskSubmitFailed))
		}
		userID = user.ID
	} else if _, err := h.userService.Get(c.Context(), userID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(types.ErrNotFound(ErrMsgUserNotFound))
	}

	task, err := h.dispatcher.Submit(c.Context(), userID, services.SubmitRequest{
		Prompt: req.Prompt,
		Model:  req.Model,
		Width:  req.Width,
		Height: req.Height,
	})
	if err != nil {
		if errors.Is(err, services.ErrInsufficientCredits) {
			return c.Status(fiber.StatusPaymentRequired).JSON(types.ErrPaymentRequired(ErrMsgInsufficientCredits))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(ErrMsgTaskSubmitFailed))
	}

	return c.JSON(types.Success(task))
}

// GetTask handles polling a task's status. Each poll runs one
// reconciliation pass before the current record is returned.
func (h *TaskHandler) GetTask(c *fiber.Ctx) error {
	taskUUID := c.Params("id")
	if taskUUID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(ErrMsgTaskIDRequired))
	}

	task, err := h.dispatcher.Reconcile(c.Context(), taskUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ErrNotFound(ErrMsgTaskNotFound))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(err.Error()))
	}

	return c.JSON(types.Success(task))
}

// ListTasks handles retrieving a user's tasks with pagination
func (h *TaskHandler) ListTasks(c *fiber.Ctx) error {
	userID := uint(c.QueryInt("user_id", 0))
	if userID == 0 {
		user, err := h.userService.Demo(c.Context())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(ErrMsgTaskListFailed))
		}
		userID = user.ID
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	opts := &models.ListOptions{
		Limit:  models.DefaultLimit,
		Offset: (page - 1) * models.DefaultLimit,
	}

	tasks, err := h.taskService.ListByUser(c.Context(), userID, opts)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(ErrMsgTaskListFailed))
	}

	return c.JSON(types.Success(map[string]interface{}{
		"tasks": tasks,
		"pagination": types.PaginationResponse{
			Total:  len(tasks),
			Page:   page,
			Limit:  opts.Limit,
			Offset: opts.Offset,
		},
	}))
}
