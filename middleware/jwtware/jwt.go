package jwtware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

var ErrJWTMissingOrMalformed = errors.New("missing or malformed JWT")

// TokenValidator interface for validating tokens without import cycles.
// This mirrors the TokenService.Validate method from the usecases package.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// AuthClaims interface for structured claims without import cycles.
// This mirrors the AuthClaims interface from the usecases package.
type AuthClaims interface {
	Subject() string
	UserID() string
	Username() string
	Role() string
	HasAnyRole(roles ...string) bool
}

type Config struct {
	// TokenValidator is required for token validation
	TokenValidator TokenValidator

	// ContextKey is the Locals key claims are stored under on success
	ContextKey string

	// AuthScheme is the expected Authorization header scheme
	AuthScheme string

	// MissingTokenHandler runs when no bearer credential is present
	MissingTokenHandler fiber.Handler

	// ErrorHandler runs when a credential is present but invalid
	ErrorHandler func(c *fiber.Ctx, err error) error

	// SuccessHandler runs after claims have been stored
	SuccessHandler fiber.Handler
}

// New returns the authentication gate: it requires a bearer credential,
// validates it, and exposes the decoded claims to downstream handlers.
// It never inspects roles; that is the authorization gate's job.
func New(config ...Config) fiber.Handler {
	cfg := GetDefaultConfig(config...)

	return func(c *fiber.Ctx) error {
		raw, err := ExtractBearerToken(c, cfg.AuthScheme)
		if err != nil {
			return cfg.MissingTokenHandler(c)
		}

		claims, err := cfg.TokenValidator.Validate(raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		c.Locals(cfg.ContextKey, claims)

		return cfg.SuccessHandler(c)
	}
}

// ExtractBearerToken pulls the raw token out of the Authorization
// header, enforcing the "<scheme> <token>" shape.
func ExtractBearerToken(c *fiber.Ctx, authScheme string) (string, error) {
	auth := c.Get(fiber.HeaderAuthorization)
	if auth == "" {
		return "", ErrJWTMissingOrMalformed
	}

	l := len(authScheme)
	if len(auth) <= l+1 || !strings.EqualFold(auth[:l], authScheme) || auth[l] != ' ' {
		return "", ErrJWTMissingOrMalformed
	}

	token := strings.TrimSpace(auth[l+1:])
	if token == "" {
		return "", ErrJWTMissingOrMalformed
	}

	return token, nil
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.TokenValidator == nil {
		panic("AUTH: JWT middleware configuration: TokenValidator is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.MissingTokenHandler == nil {
		cfg.MissingTokenHandler = func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": ErrJWTMissingOrMalformed.Error(),
			})
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "invalid or expired token",
			})
		}
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	return cfg
}

// ClaimsFromContext returns the claims the authentication gate stored,
// or nil when the gate has not run on this request.
func ClaimsFromContext(c *fiber.Ctx, contextKey string) AuthClaims {
	claims, ok := c.Locals(contextKey).(AuthClaims)
	if !ok {
		return nil
	}
	return claims
}
