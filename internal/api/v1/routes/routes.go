// Package routes defines the API routes and URL structure
package routes

import (
	"fmt"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/bananagen/bananagen/internal/api/v1/handlers"
)

// API base configuration
const (
	// DefaultPort is the default port for the API
	DefaultPort = "8080"
	// APIv1Prefix is the prefix for all API endpoints
	APIv1Prefix = "/api/v1"
)

// DefaultBaseURL is the default base URL for the API
var DefaultBaseURL = fmt.Sprintf("http://localhost:%s", DefaultPort)

// RegisterRoutes configures all the v1 routes
//
// NOTE: route ordering matters, fiber matches routes in registration order.
func RegisterRoutes(app *fiber.App, taskHandler *handlers.TaskHandler, accountHandler *handlers.AccountHandler, modelHandler *handlers.ModelHandler) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	v1 := app.Group(APIv1Prefix)

	// Generation
	v1.Post("/generate", taskHandler.Generate)
	v1.Get("/tasks", taskHandler.ListTasks)
	v1.Get("/tasks/:id", taskHandler.GetTask)

	// Provider models
	v1.Get("/models", modelHandler.ListModels)

	// Account administration
	v1.Get("/accounts", accountHandler.ListAccounts)
	v1.Post("/accounts", accountHandler.CreateAccount)
	v1.Patch("/accounts/:id/status", accountHandler.UpdateAccountStatus)
}
