package usecases_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/usecaselabs/usecases"
)

func TestTokenValidatorFunc(t *testing.T) {
	t.Run("adapts a function", func(t *testing.T) {
		called := false
		fn := usecases.TokenValidatorFunc(func(raw string) (usecases.AuthClaims, error) {
			called = true
			return &usecases.JWTClaims{UID: "user-123"}, nil
		})

		claims, err := fn.Validate("raw-token")
		require.NoError(t, err)
		assert.True(t, called)
		assert.Equal(t, "user-123", claims.UserID())
	})

	t.Run("nil func rejects", func(t *testing.T) {
		var fn usecases.TokenValidatorFunc
		claims, err := fn.Validate("raw-token")
		assert.Nil(t, claims)
		assert.Error(t, err)
	})
}

func TestMultiTokenValidator(t *testing.T) {
	identity := testIdentity{id: "user-123", username: "maria", role: usecases.RoleViewer}

	oldKey := usecases.NewTokenService([]byte("old-key"), 1, "usecases", nopLogger{})
	newKey := usecases.NewTokenService([]byte("new-key"), 1, "usecases", nopLogger{})

	t.Run("accepts tokens from any configured key", func(t *testing.T) {
		multi := usecases.NewMultiTokenValidator(newKey, oldKey)

		oldToken, err := oldKey.Generate(identity)
		require.NoError(t, err)
		newToken, err := newKey.Generate(identity)
		require.NoError(t, err)

		for _, token := range []string{oldToken, newToken} {
			claims, err := multi.Validate(token)
			require.NoError(t, err)
			assert.Equal(t, "user-123", claims.UserID())
		}
	})

	t.Run("rejects a token from an unknown key", func(t *testing.T) {
		multi := usecases.NewMultiTokenValidator(newKey, oldKey)

		foreign := usecases.NewTokenService([]byte("foreign-key"), 1, "usecases", nopLogger{})
		token, err := foreign.Generate(identity)
		require.NoError(t, err)

		claims, err := multi.Validate(token)
		assert.Nil(t, claims)
		assert.Error(t, err)
	})

	t.Run("expired tokens do not fall through to the next key", func(t *testing.T) {
		expired := usecases.NewTokenService([]byte("old-key"), -1, "usecases", nopLogger{})
		multi := usecases.NewMultiTokenValidator(oldKey, newKey)

		token, err := expired.Generate(identity)
		require.NoError(t, err)

		claims, err := multi.Validate(token)
		assert.Nil(t, claims)
		require.Error(t, err)
		assert.True(t, usecases.IsTokenExpiredError(err))
	})

	t.Run("empty validator set rejects", func(t *testing.T) {
		multi := usecases.NewMultiTokenValidator(nil, nil)
		claims, err := multi.Validate("anything")
		assert.Nil(t, claims)
		assert.Error(t, err)
	})
}
