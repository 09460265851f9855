package jwtware

import (
	"github.com/gofiber/fiber/v2"
)

type RolesConfig struct {
	// ContextKey is where the authentication gate stored the claims
	ContextKey string

	// Roles is the allowed-role set for this route
	Roles []string

	// UnauthenticatedHandler runs when no claims are present, which
	// means the authentication gate did not run before this one
	UnauthenticatedHandler fiber.Handler

	// ForbiddenHandler runs when the claim's role is outside the set
	ForbiddenHandler fiber.Handler
}

// RequireRoles returns the authorization gate. It assumes the
// authentication gate already ran and populated the context; a missing
// claim is reported as "not authenticated", not as "denied".
func RequireRoles(config RolesConfig) fiber.Handler {
	cfg := getDefaultRolesConfig(config)

	return func(c *fiber.Ctx) error {
		claims := ClaimsFromContext(c, cfg.ContextKey)
		if claims == nil {
			return cfg.UnauthenticatedHandler(c)
		}

		if !claims.HasAnyRole(cfg.Roles...) {
			return cfg.ForbiddenHandler(c)
		}

		return c.Next()
	}
}

func getDefaultRolesConfig(cfg RolesConfig) RolesConfig {
	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if len(cfg.Roles) == 0 {
		panic("AUTH: role middleware configuration: at least one allowed role is required.")
	}

	if cfg.UnauthenticatedHandler == nil {
		cfg.UnauthenticatedHandler = func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "not authenticated",
			})
		}
	}

	if cfg.ForbiddenHandler == nil {
		cfg.ForbiddenHandler = func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "access denied",
			})
		}
	}

	return cfg
}
