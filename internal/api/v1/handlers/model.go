package handlers

import (
	"errors"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/bananagen/bananagen/internal/services"
	"github.com/bananagen/bananagen/internal/types"
)

// ModelHandler handles HTTP requests for the provider model catalog
type ModelHandler struct {
	dispatcher *services.Dispatcher
}

// NewModelHandler creates a new instance of ModelHandler
func NewModelHandler(dispatcher *services.Dispatcher) *ModelHandler {
	return &ModelHandler{
		dispatcher: dispatcher,
	}
}

// ListModels handles retrieving the provider's image models
func (h *ModelHandler) ListModels(c *fiber.Ctx) error {
	modelsList, err := h.dispatcher.ListModels(c.Context())
	if err != nil {
		if errors.Is(err, services.ErrNoActiveAccounts) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(types.ErrServiceUnavailable(ErrMsgNoActiveAccounts))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(ErrMsgModelListFailed))
	}

	return c.JSON(types.Success(modelsList))
}
