package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour, "campus-events")

	token, err := manager.Generate("user-123", "made", "user")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.Validate(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.Subject)
	require.Equal(t, "made", claims.Username)
	require.Equal(t, "user", claims.Role)
	require.Equal(t, "campus-events", claims.Issuer)
}

func TestGenerateRequiresIdentity(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour, "campus-events")

	_, err := manager.Generate("", "made", "user")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = manager.Generate("user-123", "made", "")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTManager("secret-a", time.Hour, "campus-events").Generate("user-123", "made", "user")
	require.NoError(t, err)

	_, err = NewJWTManager("secret-b", time.Hour, "campus-events").Validate(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	manager := NewJWTManager("test-secret", -time.Minute, "campus-events")

	token, err := manager.Generate("user-123", "made", "user")
	require.NoError(t, err)

	_, err = manager.Validate(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsGarbage(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour, "campus-events")

	_, err := manager.Validate("")
	require.ErrorIs(t, err, ErrMissingToken)

	_, err = manager.Validate("not.a.jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenFromHeader(t *testing.T) {
	token, err := TokenFromHeader("Bearer abc.def.ghi")
	require.NoError(t, err)
	require.Equal(t, "abc.def.ghi", token)

	token, err = TokenFromHeader("bearer abc.def.ghi")
	require.NoError(t, err)
	require.Equal(t, "abc.def.ghi", token)

	for _, header := range []string{"", "abc.def.ghi", "Basic abc", "Bearer", "Bearer a b"} {
		_, err = TokenFromHeader(header)
		require.ErrorIs(t, err, ErrMissingToken, header)
	}
}
