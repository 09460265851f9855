package usecases_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/usecaselabs/usecases"
)

type apiHarness struct {
	app    *fiber.App
	repo   usecases.RepositoryManager
	mailer *recordingMailer
	tokens usecases.TokenService
}

// newAPIHarness wires the full HTTP surface the way the server binary
// does, minus SMTP and the real logger.
func newAPIHarness(t *testing.T) *apiHarness {
	t.Helper()

	repo, _ := setupRepo(t)
	mailer := &recordingMailer{}

	cfg := testConfig{key: "api-test-key", expiration: 1, issuer: "usecases"}
	auther := usecases.NewAuthenticator(repo, cfg).WithLogger(nopLogger{})
	tokenService := auther.TokenService()

	authController := usecases.NewAuthController(
		usecases.WithAuthRepo(repo),
		usecases.WithAuthenticator(auther),
		usecases.WithRegisterHandler(usecases.NewRegisterUserHandler(repo, mailer, nopLogger{})),
		usecases.WithActivateHandler(usecases.NewActivateUserHandler(repo)),
		usecases.WithAuthLogger(nopLogger{}),
	)

	useCaseController := usecases.NewUseCaseController(
		usecases.WithUseCaseRepo(repo),
		usecases.WithUseCaseLogger(nopLogger{}),
	)

	userAdminController := usecases.NewUserAdminController(
		usecases.WithUserAdminRepo(repo),
		usecases.WithUserAdminLogger(nopLogger{}),
	)

	app := fiber.New(fiber.Config{ErrorHandler: usecases.HTTPErrorHandler})
	authenticate := usecases.AuthenticateGate(tokenService)

	api := app.Group("/api")
	usecases.RegisterAuthRoutes(api, authController, authenticate)
	usecases.RegisterUseCaseRoutes(api, useCaseController, authenticate)
	usecases.RegisterUserAdminRoutes(api, userAdminController, authenticate)

	return &apiHarness{
		app:    app,
		repo:   repo,
		mailer: mailer,
		tokens: tokenService,
	}
}

func (h *apiHarness) do(t *testing.T, method, path, token string, payload any) (*http.Response, []byte) {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := h.app.Test(req, 5000)
	require.NoError(t, err)

	buf := new(bytes.Buffer)
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	return resp, buf.Bytes()
}

func (h *apiHarness) login(t *testing.T, email, password string) string {
	t.Helper()

	resp, raw := h.do(t, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "login failed: %s", raw)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	require.NotEmpty(t, body.Token)

	return body.Token
}

// seedAccount creates an active account with the given role directly in
// the store, which is how the first admin exists in a real deployment.
func (h *apiHarness) seedAccount(t *testing.T, username, email string, role usecases.UserRole) {
	t.Helper()

	hash, err := usecases.HashPassword("s3cret-pass")
	require.NoError(t, err)

	_, err = h.repo.Users().Register(context.Background(), &usecases.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	})
	require.NoError(t, err)
}

func TestRegistrationAndActivationFlow(t *testing.T) {
	h := newAPIHarness(t)

	t.Run("register validation errors", func(t *testing.T) {
		resp, raw := h.do(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
			"username": "",
			"email":    "not-an-email",
			"password": "123",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body struct {
			Errors []map[string]string `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.NotEmpty(t, body.Errors)
	})

	t.Run("register rejects password beyond the hash limit", func(t *testing.T) {
		resp, raw := h.do(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
			"username": "longpass",
			"email":    "longpass@example.com",
			"password": strings.Repeat("x", 73),
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, string(raw), "senha")
	})

	t.Run("register succeeds", func(t *testing.T) {
		resp, raw := h.do(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
			"username": "maria",
			"email":    "maria@example.com",
			"password": "s3cret-pass",
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Contains(t, string(raw), "Usuário registrado com sucesso!")
	})

	t.Run("duplicate email", func(t *testing.T) {
		resp, raw := h.do(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
			"username": "maria2",
			"email":    "maria@example.com",
			"password": "s3cret-pass",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, string(raw), "Usuário já existe.")
	})

	t.Run("login before activation", func(t *testing.T) {
		resp, raw := h.do(t, http.MethodPost, "/api/auth/login", "", fiber.Map{
			"email":    "maria@example.com",
			"password": "s3cret-pass",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, string(raw), "Usuário não ativado.")
	})

	require.Eventually(t, func() bool {
		return len(h.mailer.sent()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	code := h.mailer.sent()[0].code

	t.Run("wrong activation code", func(t *testing.T) {
		resp, raw := h.do(t, http.MethodPost, "/api/auth/activate", "", fiber.Map{
			"email": "maria@example.com",
			"code":  "zzzzz",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, string(raw), "Código de ativação inválido!")
	})

	t.Run("activation succeeds", func(t *testing.T) {
		resp, raw := h.do(t, http.MethodPost, "/api/auth/activate", "", fiber.Map{
			"email": "maria@example.com",
			"code":  code,
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(raw), "Usuário ativado com sucesso!")
	})

	t.Run("login after activation", func(t *testing.T) {
		token := h.login(t, "maria@example.com", "s3cret-pass")

		claims, err := h.tokens.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "maria", claims.Username())
		assert.Equal(t, usecases.RoleViewer, claims.Role())
	})

	t.Run("wrong password", func(t *testing.T) {
		resp, raw := h.do(t, http.MethodPost, "/api/auth/login", "", fiber.Map{
			"email":    "maria@example.com",
			"password": "wrong-pass",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Contains(t, string(raw), "Senha incorreta.")
	})

	t.Run("unknown email on login", func(t *testing.T) {
		resp, raw := h.do(t, http.MethodPost, "/api/auth/login", "", fiber.Map{
			"email":    "nobody@example.com",
			"password": "s3cret-pass",
		})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, string(raw), "Usuário não encontrado.")
	})
}

func TestUseCaseLifecycle(t *testing.T) {
	h := newAPIHarness(t)

	h.seedAccount(t, "editor-a", "a@example.com", usecases.RoleEditor)
	h.seedAccount(t, "editor-b", "b@example.com", usecases.RoleEditor)
	h.seedAccount(t, "viewer", "v@example.com", usecases.RoleViewer)
	h.seedAccount(t, "chief", "chief@example.com", usecases.RoleAdmin)

	tokenA := h.login(t, "a@example.com", "s3cret-pass")
	tokenB := h.login(t, "b@example.com", "s3cret-pass")
	tokenViewer := h.login(t, "v@example.com", "s3cret-pass")
	tokenAdmin := h.login(t, "chief@example.com", "s3cret-pass")

	payload := fiber.Map{
		"title":             "Cadastrar cliente",
		"description":       "Fluxo de cadastro",
		"actor":             "Atendente",
		"preconditions":     "Cliente não cadastrado",
		"postconditions":    "Cliente cadastrado",
		"main_flow":         "1. Abrir formulário",
		"alternative_flows": "2a. Dados incompletos",
	}

	var useCaseID string

	t.Run("viewer cannot create", func(t *testing.T) {
		resp, raw := h.do(t, http.MethodPost, "/api/use-cases", tokenViewer, payload)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Contains(t, string(raw), "Acesso negado.")
	})

	t.Run("missing title rejected", func(t *testing.T) {
		resp, raw := h.do(t, http.MethodPost, "/api/use-cases", tokenA, fiber.Map{
			"description": "sem título",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, string(raw), "Título e descrição são obrigatórios.")
	})

	t.Run("editor creates", func(t *testing.T) {
		resp, raw := h.do(t, http.MethodPost, "/api/use-cases", tokenA, payload)
		require.Equal(t, http.StatusCreated, resp.StatusCode, "create failed: %s", raw)

		var body struct {
			UseCase struct {
				ID string `json:"id"`
			} `json:"useCase"`
		}
		require.NoError(t, json.Unmarshal(raw, &body))
		require.NotEmpty(t, body.UseCase.ID)
		useCaseID = body.UseCase.ID
	})

	t.Run("viewer can list with creator profile", func(t *testing.T) {
		resp, raw := h.do(t, http.MethodGet, "/api/usecases", tokenViewer, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var list []struct {
			Title   string `json:"title"`
			Creator *struct {
				Username string `json:"username"`
			} `json:"creator"`
		}
		require.NoError(t, json.Unmarshal(raw, &list))
		require.Len(t, list, 1)
		assert.Equal(t, "Cadastrar cliente", list[0].Title)
		require.NotNil(t, list[0].Creator)
		assert.Equal(t, "editor-a", list[0].Creator.Username)
		assert.NotContains(t, string(raw), "password")
	})

	t.Run("list answers only at the unhyphenated path", func(t *testing.T) {
		resp, _ := h.do(t, http.MethodGet, "/api/use-cases", tokenViewer, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("show by id", func(t *testing.T) {
		resp, raw := h.do(t, http.MethodGet, "/api/use-cases/"+useCaseID, tokenViewer, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(raw), "Cadastrar cliente")
	})

	t.Run("other editor cannot update", func(t *testing.T) {
		edit := fiber.Map{"title": "Invadido", "description": "x"}
		resp, raw := h.do(t, http.MethodPut, "/api/use-cases/"+useCaseID, tokenB, edit)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Contains(t, string(raw), "Acesso não autorizado.")
	})

	t.Run("owner updates and history keeps the old values", func(t *testing.T) {
		edit := fiber.Map{
			"title":       "Cadastrar cliente v2",
			"description": "Fluxo revisado",
		}
		resp, raw := h.do(t, http.MethodPut, "/api/use-cases/"+useCaseID, tokenA, edit)
		require.Equal(t, http.StatusOK, resp.StatusCode, "update failed: %s", raw)
		assert.Contains(t, string(raw), "Caso de uso atualizado com sucesso!")

		resp, raw = h.do(t, http.MethodGet, "/api/use-cases/"+useCaseID+"/history", tokenAdmin, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var history []struct {
			Title  string `json:"title"`
			Editor *struct {
				Username string `json:"username"`
			} `json:"editor"`
		}
		require.NoError(t, json.Unmarshal(raw, &history))
		require.Len(t, history, 1)
		assert.Equal(t, "Cadastrar cliente", history[0].Title)
		require.NotNil(t, history[0].Editor)
		assert.Equal(t, "editor-a", history[0].Editor.Username)
	})

	t.Run("admin bypasses ownership on update", func(t *testing.T) {
		edit := fiber.Map{"title": "Ajustado pelo chefe", "description": "ok"}
		resp, _ := h.do(t, http.MethodPut, "/api/use-cases/"+useCaseID, tokenAdmin, edit)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("editor cannot read history", func(t *testing.T) {
		resp, _ := h.do(t, http.MethodGet, "/api/use-cases/"+useCaseID+"/history", tokenA, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("editor cannot delete", func(t *testing.T) {
		resp, _ := h.do(t, http.MethodDelete, "/api/use-cases/"+useCaseID, tokenA, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("admin deletes, history survives", func(t *testing.T) {
		resp, raw := h.do(t, http.MethodDelete, "/api/use-cases/"+useCaseID, tokenAdmin, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(raw), "Caso de uso excluído com sucesso!")

		resp, _ = h.do(t, http.MethodGet, "/api/use-cases/"+useCaseID, tokenViewer, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp, raw = h.do(t, http.MethodGet, "/api/use-cases/"+useCaseID+"/history", tokenAdmin, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var history []map[string]any
		require.NoError(t, json.Unmarshal(raw, &history))
		assert.Len(t, history, 2)
	})

	t.Run("unknown id maps to 404", func(t *testing.T) {
		resp, raw := h.do(t, http.MethodGet, "/api/use-cases/3f7c1f1e-0000-0000-0000-000000000000", tokenViewer, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, string(raw), "Caso de uso não encontrado.")
	})
}

func TestUserAdministration(t *testing.T) {
	h := newAPIHarness(t)

	h.seedAccount(t, "chief", "chief@example.com", usecases.RoleAdmin)
	h.seedAccount(t, "plain", "plain@example.com", usecases.RoleViewer)

	tokenAdmin := h.login(t, "chief@example.com", "s3cret-pass")
	tokenPlain := h.login(t, "plain@example.com", "s3cret-pass")

	var plainID string

	t.Run("admin lists accounts", func(t *testing.T) {
		resp, raw := h.do(t, http.MethodGet, "/api/users", tokenAdmin, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var list []struct {
			ID       string `json:"id"`
			Username string `json:"username"`
			Role     string `json:"role"`
		}
		require.NoError(t, json.Unmarshal(raw, &list))
		require.Len(t, list, 2)
		assert.NotContains(t, string(raw), "password")

		for _, item := range list {
			if item.Username == "plain" {
				plainID = item.ID
			}
		}
		require.NotEmpty(t, plainID)
	})

	t.Run("non admin cannot list accounts", func(t *testing.T) {
		resp, _ := h.do(t, http.MethodGet, "/api/users", tokenPlain, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("invalid role rejected", func(t *testing.T) {
		resp, raw := h.do(t, http.MethodPut, "/api/users/"+plainID+"/role", tokenAdmin, fiber.Map{
			"role": "root",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, string(raw), "Papel inválido.")
	})

	t.Run("admin promotes account", func(t *testing.T) {
		resp, raw := h.do(t, http.MethodPut, "/api/users/"+plainID+"/role", tokenAdmin, fiber.Map{
			"role": "editor",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(raw), "Papel atualizado com sucesso.")

		user, err := h.repo.Users().GetByEmail(context.Background(), "plain@example.com")
		require.NoError(t, err)
		assert.Equal(t, usecases.RoleEditor, user.Role)
	})

	t.Run("unknown account maps to 404", func(t *testing.T) {
		resp, raw := h.do(t, http.MethodPut, "/api/users/3f7c1f1e-0000-0000-0000-000000000000/role", tokenAdmin, fiber.Map{
			"role": "editor",
		})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, string(raw), "Usuário não encontrado.")
	})

	t.Run("admin deletes an account", func(t *testing.T) {
		resp, raw := h.do(t, http.MethodDelete, "/api/auth/delete-user/"+plainID, tokenAdmin, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(raw), "Usuário excluído com sucesso!")
	})

	t.Run("non admin cannot delete accounts", func(t *testing.T) {
		resp, _ := h.do(t, http.MethodDelete, "/api/auth/delete-user/"+plainID, tokenPlain, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}
