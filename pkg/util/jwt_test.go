package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret"

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(1, "user@example.com", "user", testSecret, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestValidateToken(t *testing.T) {
	t.Run("Valid token", func(t *testing.T) {
		token, err := GenerateToken(42, "user@example.com", "store_owner", testSecret, time.Hour)
		require.NoError(t, err)

		claims, err := ValidateToken(token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.UserID)
		assert.Equal(t, "user@example.com", claims.Email)
		assert.Equal(t, "store_owner", claims.Role)
	})

	t.Run("Wrong secret", func(t *testing.T) {
		token, err := GenerateToken(1, "user@example.com", "user", testSecret, time.Hour)
		require.NoError(t, err)

		claims, err := ValidateToken(token, "some-other-secret")
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Nil(t, claims)
	})

	t.Run("Expired token", func(t *testing.T) {
		token, err := GenerateToken(1, "user@example.com", "user", testSecret, -time.Minute)
		require.NoError(t, err)

		claims, err := ValidateToken(token, testSecret)
		assert.ErrorIs(t, err, ErrExpiredToken)
		assert.Nil(t, claims)
	})

	t.Run("Garbage token", func(t *testing.T) {
		claims, err := ValidateToken("not.a.token", testSecret)
		assert.Error(t, err)
		assert.Nil(t, claims)
	})
}
