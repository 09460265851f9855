package usecases

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type ActivateUserMessage struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (e ActivateUserMessage) Type() string { return "user.activate" }

// ActivateUserHandler redeems an activation code. The flip to active
// and the code-row delete share one transaction, so a redeemed code can
// never be replayed: the second attempt finds no row and fails.
type ActivateUserHandler struct {
	repo RepositoryManager
}

func NewActivateUserHandler(repo RepositoryManager) *ActivateUserHandler {
	return &ActivateUserHandler{repo: repo}
}

func (h *ActivateUserHandler) Execute(ctx context.Context, event ActivateUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account activation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ActivateUserHandler) execute(ctx context.Context, event ActivateUserMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user, err := h.repo.Users().GetByEmailTx(ctx, tx, event.Email)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrUserNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load account")
		}

		record, err := h.repo.Activations().GetByUserAndCodeTx(ctx, tx, user.ID, event.Code)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrInvalidActivationCode
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load activation code")
		}

		if err := h.repo.Users().ActivateTx(ctx, tx, user.ID); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to activate account")
		}

		if err := h.repo.Activations().DeleteByIDTx(ctx, tx, record.ID); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to consume activation code")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "account activation transaction failed")
	}

	return nil
}
