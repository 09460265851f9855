package usecases

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// UseCaseController serves the use-case CRUD plus the edit history.
// Every route requires an authenticated session; writes are gated to
// editors and admins.
type UseCaseController struct {
	Debug  bool
	Logger Logger
	Repo   RepositoryManager
}

type UseCaseControllerOption func(*UseCaseController) *UseCaseController

func NewUseCaseController(opts ...UseCaseControllerOption) *UseCaseController {
	c := &UseCaseController{
		Logger: defLogger{},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in use case controller...")
	}

	return c
}

func WithUseCaseLogger(logger Logger) UseCaseControllerOption {
	return func(c *UseCaseController) *UseCaseController {
		c.Logger = logger
		return c
	}
}

func WithUseCaseRepo(repo RepositoryManager) UseCaseControllerOption {
	return func(c *UseCaseController) *UseCaseController {
		c.Repo = repo
		return c
	}
}

// RegisterUseCaseRoutes mounts the use-case endpoints. The list lives
// at "/usecases" while the item routes live under "/use-cases", the
// paths the SPA calls. The history route is registered before the show
// route so "/:id" does not swallow "/:id/history".
func RegisterUseCaseRoutes(router fiber.Router, c *UseCaseController, authenticate fiber.Handler) {
	anyRole := RequireRoles(AllRoles()...)
	canWrite := RequireRoles(RoleAdmin, RoleEditor)
	adminOnly := RequireRoles(RoleAdmin)

	router.Get("/usecases", authenticate, anyRole, c.List)

	group := router.Group("/use-cases", authenticate)

	group.Post("/", canWrite, c.Create)
	group.Get("/:id/history", adminOnly, c.History)
	group.Get("/:id", anyRole, c.Show)
	group.Put("/:id", canWrite, c.Update)
	group.Delete("/:id", adminOnly, c.Delete)
}

// UseCasePayload is the create and update body
type UseCasePayload struct {
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	Actor            string  `json:"actor"`
	Preconditions    string  `json:"preconditions"`
	Postconditions   string  `json:"postconditions"`
	MainFlow         string  `json:"main_flow"`
	AlternativeFlows string  `json:"alternative_flows"`
	Exceptions       *string `json:"exceptions"`
}

// Validate will run validation rules
func (p UseCasePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required),
		validation.Field(&p.Description, validation.Required),
	)
}

func (p UseCasePayload) fields() UseCaseFields {
	return UseCaseFields{
		Title:            p.Title,
		Description:      p.Description,
		Actor:            p.Actor,
		Preconditions:    p.Preconditions,
		Postconditions:   p.Postconditions,
		MainFlow:         p.MainFlow,
		AlternativeFlows: p.AlternativeFlows,
		Exceptions:       p.Exceptions,
	}
}

// useCaseResponse shadows the joined creator row with its public
// projection so password hashes and flags never reach the wire.
type useCaseResponse struct {
	*UseCase
	Creator *UserProfile `json:"creator,omitempty"`
}

func renderUseCase(uc *UseCase) useCaseResponse {
	return useCaseResponse{
		UseCase: uc,
		Creator: uc.Creator.Profile(),
	}
}

// historyResponse does the same for the editor join.
type historyResponse struct {
	*UseCaseHistory
	Editor *UserProfile `json:"editor,omitempty"`
}

func (u *UseCaseController) Create(c *fiber.Ctx) error {
	claims, err := SessionClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": ErrNotAuthenticated.Message,
		})
	}

	payload := new(UseCasePayload)
	if err := c.BodyParser(payload); err != nil {
		u.Logger.Error("use case create parse payload", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Título e descrição são obrigatórios.",
		})
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Título e descrição são obrigatórios.",
		})
	}

	creator, err := uuid.Parse(claims.UserID())
	if err != nil {
		u.Logger.Error("use case create bad subject", "subject", claims.UserID(), "error", err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": ErrNotAuthenticated.Message,
		})
	}

	record, err := u.Repo.UseCases().CreateUseCase(c.Context(), creator, payload.fields())
	if err != nil {
		u.Logger.Error("use case create error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Erro ao criar caso de uso.",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Caso de uso criado com sucesso!",
		"useCase": record,
	})
}

func (u *UseCaseController) List(c *fiber.Ctx) error {
	records, err := u.Repo.UseCases().ListWithCreators(c.Context())
	if err != nil {
		u.Logger.Error("use case list error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Erro ao listar casos de uso.",
		})
	}

	out := make([]useCaseResponse, 0, len(records))
	for _, record := range records {
		out = append(out, renderUseCase(record))
	}

	return c.JSON(out)
}

func (u *UseCaseController) Show(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": ErrUseCaseNotFound.Message,
		})
	}

	record, err := u.Repo.UseCases().GetUseCase(c.Context(), id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": ErrUseCaseNotFound.Message,
			})
		}

		u.Logger.Error("use case show error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Erro ao buscar caso de uso.",
		})
	}

	return c.JSON(record)
}

func (u *UseCaseController) Update(c *fiber.Ctx) error {
	claims, err := SessionClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": ErrNotAuthenticated.Message,
		})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": ErrUseCaseNotFound.Message,
		})
	}

	payload := new(UseCasePayload)
	if err := c.BodyParser(payload); err != nil {
		u.Logger.Error("use case update parse payload", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Título e descrição são obrigatórios.",
		})
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Título e descrição são obrigatórios.",
		})
	}

	editor, err := uuid.Parse(claims.UserID())
	if err != nil {
		u.Logger.Error("use case update bad subject", "subject", claims.UserID(), "error", err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": ErrNotAuthenticated.Message,
		})
	}

	isAdmin := claims.HasAnyRole(RoleAdmin)

	updated, err := u.Repo.UseCases().UpdateWithHistory(c.Context(), id, editor, isAdmin, payload.fields())
	if err != nil {
		switch {
		case repository.IsRecordNotFound(err):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": ErrUseCaseNotFound.Message,
			})
		case isError(err, ErrNotOwner):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": ErrNotOwner.Message,
			})
		default:
			u.Logger.Error("use case update error", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Erro ao atualizar caso de uso.",
			})
		}
	}

	return c.JSON(fiber.Map{
		"message": "Caso de uso atualizado com sucesso!",
		"useCase": updated,
	})
}

func (u *UseCaseController) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": ErrUseCaseNotFound.Message,
		})
	}

	if err := u.Repo.UseCases().DeleteUseCase(c.Context(), id); err != nil {
		if repository.IsRecordNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": ErrUseCaseNotFound.Message,
			})
		}

		u.Logger.Error("use case delete error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Erro ao excluir caso de uso.",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Caso de uso excluído com sucesso!",
	})
}

func (u *UseCaseController) History(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": ErrUseCaseNotFound.Message,
		})
	}

	records, err := u.Repo.UseCases().History(c.Context(), id)
	if err != nil {
		u.Logger.Error("use case history error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Erro ao buscar histórico.",
		})
	}

	out := make([]historyResponse, 0, len(records))
	for _, record := range records {
		out = append(out, historyResponse{
			UseCaseHistory: record,
			Editor:         record.Editor.Profile(),
		})
	}

	return c.JSON(out)
}
