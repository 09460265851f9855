package usecases

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-print"
	"github.com/google/uuid"
)

// AuthController serves registration, activation, login, and the
// admin-only account delete.
type AuthController struct {
	Debug    bool
	Logger   Logger
	Repo     RepositoryManager
	Auther   Authenticator
	Register *RegisterUserHandler
	Activate *ActivateUserHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Register == nil {
		panic("Missing RegisterUserHandler in auth controller...")
	}

	if c.Activate == nil {
		panic("Missing ActivateUserHandler in auth controller...")
	}

	return c
}

func WithAuthLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = logger
		return c
	}
}

func WithAuthRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithAuthenticator(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithRegisterHandler(h *RegisterUserHandler) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Register = h
		return c
	}
}

func WithActivateHandler(h *ActivateUserHandler) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Activate = h
		return c
	}
}

// RegisterAuthRoutes mounts the auth endpoints. Register, activate and
// login are public; delete-user sits behind both gates.
func RegisterAuthRoutes(router fiber.Router, c *AuthController, authenticate fiber.Handler) {
	group := router.Group("/auth")

	group.Post("/register", c.RegisterPost)
	group.Post("/login", c.LoginPost)
	group.Post("/activate", c.ActivatePost)

	group.Delete("/delete-user/:id",
		authenticate,
		RequireRoles(RoleAdmin),
		c.DeleteUser,
	)
}

// RegisterPayload is the registration body
type RegisterPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r RegisterPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Username,
			validation.Required.Error("Username é obrigatório."),
		),
		validation.Field(
			&r.Email,
			validation.Required.Error("Email inválido."),
			is.Email.Error("Email inválido."),
		),
		validation.Field(
			&r.Password,
			validation.Required.Error("A senha precisa ter no mínimo 6 caracteres."),
			// bcrypt truncates input at 72 bytes and newer versions
			// reject anything longer outright.
			validation.Length(6, 72).Error("A senha precisa ter no mínimo 6 caracteres."),
		),
	)
}

func (a *AuthController) RegisterPost(c *fiber.Ctx) error {
	payload := new(RegisterPayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("register parse payload", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": []fiber.Map{{"msg": "Corpo da requisição inválido."}},
		})
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Info("register validation failed", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": FormatValidationErrors(err),
		})
	}

	if a.Debug {
		a.Logger.Debug("register payload", "payload", print.MaybePrettyJSON(payload))
	}

	msg := RegisterUserMessage{
		Username: payload.Username,
		Email:    payload.Email,
		Password: payload.Password,
	}

	if err := a.Register.Execute(c.Context(), msg); err != nil {
		if isError(err, ErrDuplicateEmail) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"errors": []fiber.Map{{"msg": ErrDuplicateEmail.Message, "param": "email"}},
			})
		}

		a.Logger.Error("register user error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"errors": []fiber.Map{{"msg": "Erro desconhecido."}},
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Usuário registrado com sucesso! Verifique seu e-mail para ativação.",
	})
}

// LoginPayload is the login body
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginPayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": []fiber.Map{{"msg": "Email e senha são obrigatórios."}},
		})
	}

	if payload.Email == "" || payload.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": []fiber.Map{{"msg": "Email e senha são obrigatórios."}},
		})
	}

	token, err := a.Auther.Login(c.Context(), payload.Email, payload.Password)
	if err != nil {
		switch {
		case isError(err, ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"errors": []fiber.Map{{"msg": ErrUserNotFound.Message, "param": "email"}},
			})
		case isError(err, ErrNotActivated):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"errors": []fiber.Map{{"msg": ErrNotActivated.Message}},
			})
		case isError(err, ErrBadPassword):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"errors": []fiber.Map{{"msg": ErrBadPassword.Message, "param": "password"}},
			})
		default:
			a.Logger.Error("login error", "email", payload.Email, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"errors": []fiber.Map{{"msg": "Erro ao realizar login."}},
			})
		}
	}

	return c.JSON(fiber.Map{
		"message": "Login realizado com sucesso!",
		"token":   token,
	})
}

// ActivatePayload is the activation body
type ActivatePayload struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (a *AuthController) ActivatePost(c *fiber.Ctx) error {
	payload := new(ActivatePayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("activate parse payload", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": []fiber.Map{{"msg": "Corpo da requisição inválido."}},
		})
	}

	msg := ActivateUserMessage{
		Email: payload.Email,
		Code:  payload.Code,
	}

	if err := a.Activate.Execute(c.Context(), msg); err != nil {
		switch {
		case isError(err, ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"errors": []fiber.Map{{"msg": "Usuário não encontrado!"}},
			})
		case isError(err, ErrInvalidActivationCode):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"errors": []fiber.Map{{"msg": ErrInvalidActivationCode.Message}},
			})
		default:
			a.Logger.Error("activate user error", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"errors": []fiber.Map{{"msg": "Erro ao ativar o usuário."}},
			})
		}
	}

	return c.JSON(fiber.Map{
		"message": "Usuário ativado com sucesso!",
	})
}

func (a *AuthController) DeleteUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"errors": []fiber.Map{{"msg": ErrUserNotFound.Message}},
		})
	}

	if err := a.Repo.Users().DeleteAccount(c.Context(), id); err != nil {
		if repository.IsRecordNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"errors": []fiber.Map{{"msg": ErrUserNotFound.Message}},
			})
		}

		a.Logger.Error("delete user error", "id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"errors": []fiber.Map{{"msg": "Erro ao excluir usuário."}},
		})
	}

	return c.JSON(fiber.Map{
		"message": "Usuário excluído com sucesso!",
	})
}
