package usecases

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type UseCases interface {
	repository.Repository[*UseCase]

	CreateUseCase(ctx context.Context, creator uuid.UUID, fields UseCaseFields) (*UseCase, error)
	GetUseCase(ctx context.Context, id uuid.UUID) (*UseCase, error)
	ListWithCreators(ctx context.Context) ([]*UseCase, error)
	UpdateWithHistory(ctx context.Context, id uuid.UUID, editor uuid.UUID, editorIsAdmin bool, fields UseCaseFields) (*UseCase, error)
	DeleteUseCase(ctx context.Context, id uuid.UUID) error
	History(ctx context.Context, useCaseID uuid.UUID) ([]*UseCaseHistory, error)
}

type useCases struct {
	repository.Repository[*UseCase]
	db *bun.DB
}

var _ UseCases = (*useCases)(nil)

func NewUseCasesRepository(db *bun.DB) UseCases {
	repo := repository.NewRepository[*UseCase](db, repository.ModelHandlers[*UseCase]{
		NewRecord: func() *UseCase { return &UseCase{} },
		GetID: func(u *UseCase) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *UseCase, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
	})

	return &useCases{
		Repository: repo,
		db:         db,
	}
}

func (r *useCases) CreateUseCase(ctx context.Context, creator uuid.UUID, fields UseCaseFields) (*UseCase, error) {
	now := time.Now()
	record := &UseCase{
		ID:        uuid.New(),
		CreatedBy: &creator,
		CreatedAt: &now,
		UpdatedAt: &now,
	}
	record.ApplyFields(fields)

	return r.Repository.Create(ctx, record)
}

func (r *useCases) GetUseCase(ctx context.Context, id uuid.UUID) (*UseCase, error) {
	return r.getUseCaseTx(ctx, r.db, id)
}

func (r *useCases) getUseCaseTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*UseCase, error) {
	record := &UseCase{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"id": id.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

func (r *useCases) ListWithCreators(ctx context.Context) ([]*UseCase, error) {
	records := []*UseCase{}
	err := r.db.NewSelect().
		Model(&records).
		Relation("Creator", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Column("id", "username", "email")
		}).
		Order("uc.created_at DESC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

// UpdateWithHistory applies an edit as one atomic unit: the pre-update
// snapshot is inserted first, then the fields are overwritten. If
// either statement fails the transaction rolls back and neither
// applies. Editors may only edit their own use cases; admins bypass
// the ownership check.
func (r *useCases) UpdateWithHistory(ctx context.Context, id uuid.UUID, editor uuid.UUID, editorIsAdmin bool, fields UseCaseFields) (*UseCase, error) {
	var updated *UseCase

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := r.getUseCaseTx(ctx, tx, id)
		if err != nil {
			return err
		}

		if !editorIsAdmin {
			if record.CreatedBy == nil || *record.CreatedBy != editor {
				return ErrNotOwner
			}
		}

		snapshot := SnapshotOf(record, editor)
		if _, err := tx.NewInsert().
			Model(snapshot).
			Exec(ctx); err != nil {
			return err
		}

		now := time.Now()
		record.ApplyFields(fields)
		record.UpdatedAt = &now

		if _, err := tx.NewUpdate().
			Model(record).
			Column(
				"title", "description", "actor",
				"preconditions", "postconditions",
				"main_flow", "alternative_flows", "exceptions",
				"updated_at",
			).
			Where("id = ?", record.ID).
			Exec(ctx); err != nil {
			return err
		}

		updated = record
		return nil
	})

	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteUseCase removes the row. History rows are left in place on
// purpose: the audit trail outlives the record it describes.
func (r *useCases) DeleteUseCase(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*UseCase)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

func (r *useCases) History(ctx context.Context, useCaseID uuid.UUID) ([]*UseCaseHistory, error) {
	records := []*UseCaseHistory{}
	err := r.db.NewSelect().
		Model(&records).
		Relation("Editor", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Column("id", "username", "email")
		}).
		Where("uch.use_case_id = ?", useCaseID).
		Order("uch.edited_at DESC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}
