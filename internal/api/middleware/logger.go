// Package middleware provides HTTP middleware for the API server.
package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bananagen/bananagen/internal/logger"
)

// RequestLogger returns a middleware that logs every HTTP request
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		logger.Infof("%s %s -> %d (%s)",
			c.Method(), c.Path(), c.Response().StatusCode(), time.Since(start))

		return err
	}
}
