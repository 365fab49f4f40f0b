package main

import (
	fiber "github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"github.com/bananagen/bananagen/config"
	"github.com/bananagen/bananagen/internal/api/middleware"
	"github.com/bananagen/bananagen/internal/api/v1/handlers"
	"github.com/bananagen/bananagen/internal/api/v1/routes"
	"github.com/bananagen/bananagen/internal/db"
	"github.com/bananagen/bananagen/internal/db/repos"
	"github.com/bananagen/bananagen/internal/gommo"
	"github.com/bananagen/bananagen/internal/logger"
	"github.com/bananagen/bananagen/internal/services"
)

func main() {
	// .env is optional, real deployments use environment variables.
	_ = godotenv.Load()
	logger.Initialize()

	database, err := db.New(db.Options{
		Host:     config.GetEnv("DB_HOST", ""),
		User:     config.GetEnv("DB_USER", ""),
		Password: config.GetEnv("DB_PASSWORD", ""),
		DBName:   config.GetEnv("DB_NAME", ""),
		Port:     config.GetEnvInt("DB_PORT", 0),
	})
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	taskRepo := repos.NewTaskRepository(database)
	accountRepo := repos.NewAccountRepository(database)
	userRepo := repos.NewUserRepository(database)

	gateway := gommo.NewClientWithBaseURL(config.GetEnv("GOMMO_BASE_URL", gommo.DefaultBaseURL))

	dispatcher := services.NewDispatcher(taskRepo, accountRepo, userRepo, gateway)
	taskService := services.NewTaskService(taskRepo)
	userService := services.NewUserService(userRepo)
	accountService := services.NewAccountService(accountRepo)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})
	app.Use(middleware.RequestLogger())

	routes.RegisterRoutes(app,
		handlers.NewTaskHandler(dispatcher, taskService, userService),
		handlers.NewAccountHandler(accountService),
		handlers.NewModelHandler(dispatcher),
	)

	port := config.GetEnv("PORT", routes.DefaultPort)
	logger.Infof("Starting API server on :%s", port)
	if err := app.Listen(":" + port); err != nil {
		logger.Fatalf("Server stopped: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
