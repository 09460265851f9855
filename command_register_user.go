package usecases

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

type RegisterUserMessage struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// RegisterUserHandler creates the account in its pending state together
// with its activation code, then dispatches the activation email.
// Whatever role the caller might have supplied is ignored: accounts are
// always born as visualizador.
type RegisterUserHandler struct {
	repo   RepositoryManager
	mailer Mailer
	logger Logger
}

func NewRegisterUserHandler(repo RepositoryManager, mailer Mailer, logger Logger) *RegisterUserHandler {
	if logger == nil {
		logger = defLogger{}
	}
	return &RegisterUserHandler{
		repo:   repo,
		mailer: mailer,
		logger: logger,
	}
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var code string
	user := &User{}

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := h.repo.Users().GetByEmailTx(ctx, tx, event.Email); err == nil {
			return ErrDuplicateEmail
		} else if !repository.IsRecordNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check existing email")
		}

		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.Username = event.Username
		user.Email = event.Email
		user.PasswordHash = hash
		user.Role = RoleViewer
		user.Active = false
		if id, err := hashid.NewUUID(event.Email); err == nil {
			user.ID = id
		}

		if user, err = h.repo.Users().RegisterTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		if code, err = GenerateActivationCode(); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate activation code")
		}

		if _, err = h.repo.Activations().CreateForUserTx(ctx, tx, user.ID, code); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not persist activation code")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	h.dispatchActivationEmail(user.Email, code)

	return nil
}

// dispatchActivationEmail sends the code from a detached goroutine.
// Delivery failure is logged and never reaches the caller: the account
// is already committed and the response must still report success.
func (h *RegisterUserHandler) dispatchActivationEmail(email, code string) {
	if h.mailer == nil {
		h.logger.Warn("no mailer configured, skipping activation email", "email", email)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
		defer cancel()

		if err := h.mailer.SendActivationEmail(ctx, email, code); err != nil {
			h.logger.Error("failed to send activation email", "email", email, "error", err)
			return
		}

		h.logger.Info("activation email sent", "email", email)
	}()
}
