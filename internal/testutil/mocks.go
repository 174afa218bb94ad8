// Package testutil provides shared test utilities for the copilot API.
package testutil

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/corvidhq/copilot-api/internal/middleware"
)

// TestAPIKeyMiddleware creates a middleware that sets the API key
// locals directly. Use this in tests to simulate key-authenticated
// requests without a verifier.
func TestAPIKeyMiddleware(keyID uuid.UUID, name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.ContextKeyAPIKeyID, keyID)
		c.Locals(middleware.ContextKeyAPIKeyName, name)
		return c.Next()
	}
}

// TestJWTMiddleware creates a middleware that sets the JWT subject in
// context. Use this in tests to simulate internal requests.
func TestJWTMiddleware(subject string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.ContextKeySubject, subject)
		return c.Next()
	}
}
