package usecases

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"

	"github.com/usecaselabs/usecases/middleware/jwtware"
)

// ContextKey is the Locals key the authentication gate stores the
// decoded claims under.
const ContextKey = "user"

// tokenValidatorAdapter bridges a root TokenValidator into the
// middleware package without an import cycle.
type tokenValidatorAdapter struct {
	tv TokenValidator
}

func (a tokenValidatorAdapter) Validate(raw string) (jwtware.AuthClaims, error) {
	claims, err := a.tv.Validate(raw)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// AuthenticateGate builds the authentication stage with the wire
// messages the frontend surfaces verbatim. Any TokenValidator works,
// including a MultiTokenValidator during a key rotation.
func AuthenticateGate(tv TokenValidator) fiber.Handler {
	return jwtware.New(jwtware.Config{
		TokenValidator: tokenValidatorAdapter{tv},
		ContextKey:     ContextKey,
		MissingTokenHandler: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": ErrNotAuthenticated.Message,
			})
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": ErrTokenMalformed.Message,
			})
		},
	})
}

// RequireRoles builds the authorization stage for an allowed-role set.
// It must be registered after AuthenticateGate on the same route.
func RequireRoles(roles ...UserRole) fiber.Handler {
	return jwtware.RequireRoles(jwtware.RolesConfig{
		ContextKey: ContextKey,
		Roles:      roles,
		UnauthenticatedHandler: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Usuário não autenticado.",
			})
		},
		ForbiddenHandler: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": ErrAccessDenied.Message,
			})
		},
	})
}

// SessionClaims returns the claims stored by the authentication gate.
func SessionClaims(c *fiber.Ctx) (AuthClaims, error) {
	claims, ok := c.Locals(ContextKey).(AuthClaims)
	if !ok || claims == nil {
		return nil, ErrNotAuthenticated
	}
	return claims, nil
}

// isError matches a returned error against one of the rich sentinels.
func isError(err error, target *goerrors.Error) bool {
	if err == nil || target == nil {
		return false
	}
	var rich *goerrors.Error
	return goerrors.As(err, &rich) && rich.TextCode == target.TextCode
}

// HTTPErrorHandler is the app-level backstop for errors that escape a
// handler. Controllers render their own responses; anything that still
// bubbles up is mapped here so raw storage errors never reach a client.
func HTTPErrorHandler(c *fiber.Ctx, err error) error {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		status := rich.Code
		if status == 0 {
			status = fiber.StatusInternalServerError
		}
		msg := rich.Message
		if msg == "" {
			msg = "Erro interno do servidor."
		}
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}

	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return c.Status(ferr.Code).JSON(fiber.Map{"error": ferr.Message})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Erro interno do servidor.",
	})
}

// FormatValidationErrors converts an ozzo validation result into the
// field-level message list the frontend expects.
func FormatValidationErrors(err error) []fiber.Map {
	out := []fiber.Map{}

	if fieldErrs, ok := err.(validation.Errors); ok {
		for field, ferr := range fieldErrs {
			out = append(out, fiber.Map{
				"msg":   ferr.Error(),
				"param": field,
			})
		}
		return out
	}

	return append(out, fiber.Map{"msg": err.Error()})
}
