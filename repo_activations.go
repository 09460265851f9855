package usecases

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Activations interface {
	repository.Repository[*UserActivation]

	CreateForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, code string) (*UserActivation, error)
	GetByUserAndCodeTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, code string) (*UserActivation, error)
	DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
}

type activations struct {
	repository.Repository[*UserActivation]
	db *bun.DB
}

var _ Activations = (*activations)(nil)

func NewActivationsRepository(db *bun.DB) Activations {
	repo := repository.NewRepository[*UserActivation](db, repository.ModelHandlers[*UserActivation]{
		NewRecord: func() *UserActivation { return &UserActivation{} },
		GetID: func(a *UserActivation) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *UserActivation, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
	})

	return &activations{
		Repository: repo,
		db:         db,
	}
}

func (a *activations) CreateForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, code string) (*UserActivation, error) {
	now := time.Now()
	record := &UserActivation{
		ID:             uuid.New(),
		UserID:         userID,
		ActivationCode: code,
		CreatedAt:      &now,
	}

	return a.Repository.CreateTx(ctx, tx, record)
}

func (a *activations) GetByUserAndCodeTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, code string) (*UserActivation, error) {
	record := &UserActivation{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.activation_code = ?", code).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"user_id": userID.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *activations) DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	_, err := tx.NewDelete().
		Model((*UserActivation)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	return err
}

// GenerateActivationCode produces the short single-use secret mailed to
// a new account: 3 random bytes, hex encoded, truncated to 5 chars.
func GenerateActivationCode() (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	code := hex.EncodeToString(buf)
	return code[:5], nil
}
