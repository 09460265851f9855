package jwtware_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/usecaselabs/usecases/middleware/jwtware"
)

type stubClaims struct {
	subject  string
	username string
	role     string
}

func (s stubClaims) Subject() string  { return s.subject }
func (s stubClaims) UserID() string   { return s.subject }
func (s stubClaims) Username() string { return s.username }
func (s stubClaims) Role() string     { return s.role }

func (s stubClaims) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if r == s.role {
			return true
		}
	}
	return false
}

type stubValidator struct {
	claims jwtware.AuthClaims
	err    error
}

func (v stubValidator) Validate(raw string) (jwtware.AuthClaims, error) {
	return v.claims, v.err
}

func testRequest(t *testing.T, app *fiber.App, authHeader string) (*http.Response, string) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, string(raw)
}

func TestNew(t *testing.T) {
	claims := stubClaims{subject: "user-123", username: "maria", role: "editor"}

	okApp := func(validator jwtware.TokenValidator) *fiber.App {
		app := fiber.New()
		app.Get("/", jwtware.New(jwtware.Config{TokenValidator: validator}), func(c *fiber.Ctx) error {
			stored := jwtware.ClaimsFromContext(c, "user")
			if stored == nil {
				return c.SendStatus(fiber.StatusInternalServerError)
			}
			return c.SendString(stored.Username())
		})
		return app
	}

	t.Run("panics without a validator", func(t *testing.T) {
		assert.Panics(t, func() {
			jwtware.New(jwtware.Config{})
		})
	})

	t.Run("missing header", func(t *testing.T) {
		resp, _ := testRequest(t, okApp(stubValidator{claims: claims}), "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		resp, _ := testRequest(t, okApp(stubValidator{claims: claims}), "Basic abc")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("validator rejects", func(t *testing.T) {
		resp, _ := testRequest(t, okApp(stubValidator{err: errors.New("bad token")}), "Bearer abc")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("valid token stores claims", func(t *testing.T) {
		resp, body := testRequest(t, okApp(stubValidator{claims: claims}), "Bearer abc")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "maria", body)
	})

	t.Run("scheme match is case insensitive", func(t *testing.T) {
		resp, _ := testRequest(t, okApp(stubValidator{claims: claims}), "bearer abc")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestRequireRoles(t *testing.T) {
	claims := stubClaims{subject: "user-123", username: "maria", role: "editor"}

	app := func(gateRoles []string, authenticated bool) *fiber.App {
		a := fiber.New()

		handlers := []fiber.Handler{}
		if authenticated {
			handlers = append(handlers, jwtware.New(jwtware.Config{
				TokenValidator: stubValidator{claims: claims},
			}))
		}
		handlers = append(handlers,
			jwtware.RequireRoles(jwtware.RolesConfig{Roles: gateRoles}),
			func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) },
		)

		a.Get("/", handlers...)
		return a
	}

	t.Run("panics without roles", func(t *testing.T) {
		assert.Panics(t, func() {
			jwtware.RequireRoles(jwtware.RolesConfig{})
		})
	})

	t.Run("no claims means unauthenticated", func(t *testing.T) {
		resp, _ := testRequest(t, app([]string{"admin"}, false), "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("role outside set", func(t *testing.T) {
		resp, _ := testRequest(t, app([]string{"admin"}, true), "Bearer abc")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("role in set", func(t *testing.T) {
		resp, _ := testRequest(t, app([]string{"admin", "editor"}, true), "Bearer abc")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
