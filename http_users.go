package usecases

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// UserAdminController serves the admin-only account listing and role
// assignment.
type UserAdminController struct {
	Logger Logger
	Repo   RepositoryManager
}

type UserAdminControllerOption func(*UserAdminController) *UserAdminController

func NewUserAdminController(opts ...UserAdminControllerOption) *UserAdminController {
	c := &UserAdminController{
		Logger: defLogger{},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in user admin controller...")
	}

	return c
}

func WithUserAdminLogger(logger Logger) UserAdminControllerOption {
	return func(c *UserAdminController) *UserAdminController {
		c.Logger = logger
		return c
	}
}

func WithUserAdminRepo(repo RepositoryManager) UserAdminControllerOption {
	return func(c *UserAdminController) *UserAdminController {
		c.Repo = repo
		return c
	}
}

// RegisterUserAdminRoutes mounts the account administration endpoints
// behind the auth gate and the admin role gate.
func RegisterUserAdminRoutes(router fiber.Router, c *UserAdminController, authenticate fiber.Handler) {
	group := router.Group("/users", authenticate, RequireRoles(RoleAdmin))

	group.Get("/", c.ListUsers)
	group.Put("/:id/role", c.UpdateRole)
}

func (u *UserAdminController) ListUsers(c *fiber.Ctx) error {
	accounts, err := u.Repo.Users().ListAccounts(c.Context())
	if err != nil {
		u.Logger.Error("user list error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Erro ao listar usuários.",
		})
	}

	return c.JSON(accounts)
}

// RolePayload is the role assignment body
type RolePayload struct {
	Role string `json:"role"`
}

func (u *UserAdminController) UpdateRole(c *fiber.Ctx) error {
	payload := new(RolePayload)
	if err := c.BodyParser(payload); err != nil {
		u.Logger.Error("user role parse payload", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": ErrInvalidRole.Message,
		})
	}

	role, ok := ParseRole(payload.Role)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": ErrInvalidRole.Message,
		})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": ErrUserNotFound.Message,
		})
	}

	if err := u.Repo.Users().UpdateRole(c.Context(), id, role); err != nil {
		if repository.IsRecordNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": ErrUserNotFound.Message,
			})
		}

		u.Logger.Error("user role update error", "id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Erro ao atualizar papel.",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Papel atualizado com sucesso.",
	})
}
