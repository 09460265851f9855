package usecases

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	Users() Users
	Activations() Activations
	UseCases() UseCases

	Validate() error
	MustValidate()
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
}

type mngr struct {
	db          *bun.DB
	users       Users
	activations Activations
	useCases    UseCases
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:          db,
		users:       NewUsersRepository(db),
		activations: NewActivationsRepository(db),
		useCases:    NewUseCasesRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.activations == nil {
		return errors.New("repository activations should be initialized")
	}

	if m.useCases == nil {
		return errors.New("repository useCases should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) Activations() Activations {
	return m.activations
}

func (m mngr) UseCases() UseCases {
	return m.useCases
}

// SyncSchema creates any missing tables. The deployed system relied on
// the ORM's sync-on-boot; this keeps that behavior so a fresh database
// file is usable without a migration step.
func SyncSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*User)(nil),
		(*UserActivation)(nil),
		(*UseCase)(nil),
		(*UseCaseHistory)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}
	}

	return nil
}
