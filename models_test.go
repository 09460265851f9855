package usecases_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/usecaselabs/usecases"
)

func TestUseCaseFields(t *testing.T) {
	exceptions := "E1. Sistema fora do ar"
	uc := &usecases.UseCase{
		ID:               uuid.New(),
		Title:            "Cadastrar cliente",
		Description:      "Fluxo de cadastro",
		Actor:            "Atendente",
		Preconditions:    "Cliente não cadastrado",
		Postconditions:   "Cliente cadastrado",
		MainFlow:         "1. Abrir formulário",
		AlternativeFlows: "2a. Dados incompletos",
		Exceptions:       &exceptions,
	}

	t.Run("fields round trip", func(t *testing.T) {
		fields := uc.Fields()

		other := &usecases.UseCase{}
		other.ApplyFields(fields)

		assert.Equal(t, fields, other.Fields())
		assert.Equal(t, uc.Title, other.Title)
		require.NotNil(t, other.Exceptions)
		assert.Equal(t, exceptions, *other.Exceptions)
	})

	t.Run("snapshot copies the current state", func(t *testing.T) {
		editor := uuid.New()
		snapshot := usecases.SnapshotOf(uc, editor)

		assert.NotEqual(t, uuid.Nil, snapshot.ID)
		assert.Equal(t, uc.ID, snapshot.UseCaseID)
		assert.Equal(t, uc.Title, snapshot.Title)
		assert.Equal(t, uc.Description, snapshot.Description)
		assert.Equal(t, editor, snapshot.EditedBy)
		require.NotNil(t, snapshot.EditedAt)
	})
}

func TestUserProfile(t *testing.T) {
	t.Run("projects public attributes only", func(t *testing.T) {
		user := &usecases.User{
			ID:           uuid.New(),
			Username:     "maria",
			Email:        "maria@example.com",
			PasswordHash: "never-on-the-wire",
			Role:         usecases.RoleAdmin,
		}

		profile := user.Profile()
		require.NotNil(t, profile)
		assert.Equal(t, user.ID, profile.ID)
		assert.Equal(t, "maria", profile.Username)
		assert.Equal(t, "maria@example.com", profile.Email)
	})

	t.Run("nil user yields nil profile", func(t *testing.T) {
		var user *usecases.User
		assert.Nil(t, user.Profile())
	})
}
