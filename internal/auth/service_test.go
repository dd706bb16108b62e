package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	service, err := NewService([]byte("test-secret"), time.Hour)
	require.NoError(t, err)
	return service
}

func TestNewServiceRequiresSecret(t *testing.T) {
	_, err := NewService(nil, time.Hour)
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestIssueTokenPair(t *testing.T) {
	service := newTestService(t)

	t.Run("successful issue", func(t *testing.T) {
		tokens, err := service.IssueTokenPair("ops")
		require.NoError(t, err)
		assert.NotEmpty(t, tokens.AccessToken)
		assert.NotEmpty(t, tokens.RefreshToken)
		assert.WithinDuration(t, time.Now().Add(time.Hour), tokens.ExpiresAt, 2*time.Second)

		op, err := service.ValidateToken(tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "ops", op.Subject)
		assert.NotEmpty(t, op.TokenID)
	})

	t.Run("missing subject", func(t *testing.T) {
		_, err := service.IssueTokenPair("")
		assert.Error(t, err)
	})
}

func TestValidateToken(t *testing.T) {
	service := newTestService(t)
	tokens, err := service.IssueTokenPair("ops")
	require.NoError(t, err)

	t.Run("refresh token is not an access token", func(t *testing.T) {
		_, err := service.ValidateToken(tokens.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := service.ValidateToken("invalid-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other secret", func(t *testing.T) {
		other, err := NewService([]byte("other-secret"), time.Hour)
		require.NoError(t, err)
		_, err = other.ValidateToken(tokens.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := newTestService(t)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.ValidateToken(tokens.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
			Type: tokenTypeAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    issuer,
				Subject:   "ops",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = service.ValidateToken(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestRefreshToken(t *testing.T) {
	service := newTestService(t)
	tokens, err := service.IssueTokenPair("ops")
	require.NoError(t, err)

	t.Run("successful refresh", func(t *testing.T) {
		newTokens, err := service.RefreshToken(tokens.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, tokens.AccessToken, newTokens.AccessToken)
		assert.NotEqual(t, tokens.RefreshToken, newTokens.RefreshToken)

		op1, err := service.ValidateToken(tokens.AccessToken)
		require.NoError(t, err)
		op2, err := service.ValidateToken(newTokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, op1.Subject, op2.Subject)
		assert.NotEqual(t, op1.TokenID, op2.TokenID)
	})

	t.Run("access token cannot refresh", func(t *testing.T) {
		_, err := service.RefreshToken(tokens.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("invalid refresh token", func(t *testing.T) {
		_, err := service.RefreshToken("invalid-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
