package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "recouvro/pkg/domain-errors"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewService("test-signing-key", "recouvro")

	token, err := svc.GenerateAccessToken("Me Kaddour", time.Minute)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "Me Kaddour", claims.BailiffName)
}

func TestValidateTokenFailures(t *testing.T) {
	svc := NewService("test-signing-key", "recouvro")

	t.Run("expired token", func(t *testing.T) {
		token, err := svc.GenerateAccessToken("Me Kaddour", -time.Minute)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("wrong key", func(t *testing.T) {
		other := NewService("another-key", "recouvro")
		token, err := other.GenerateAccessToken("Me Kaddour", time.Minute)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.jwt")
		assert.Error(t, err)
	})

	t.Run("empty bailiff name rejected at issuance", func(t *testing.T) {
		_, err := svc.GenerateAccessToken("", time.Minute)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}
