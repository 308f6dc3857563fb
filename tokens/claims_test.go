package tokens_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/hackboard/go-session-client/tokens"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestPeekClaims(t *testing.T) {
	t.Run("extracts subject, role and expiry", func(t *testing.T) {
		exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
		raw := signedToken(t, jwt.MapClaims{
			"sub":  "user-42",
			"role": "participant",
			"exp":  exp.Unix(),
		})

		claims, err := tokens.PeekClaims(raw)
		require.NoError(t, err)
		require.Equal(t, "user-42", claims.Subject)
		require.Equal(t, "participant", claims.Role)
		require.WithinDuration(t, exp, claims.ExpiresAt, time.Second)
	})

	t.Run("missing optional claims", func(t *testing.T) {
		raw := signedToken(t, jwt.MapClaims{"sub": "user-1"})

		claims, err := tokens.PeekClaims(raw)
		require.NoError(t, err)
		require.Equal(t, "user-1", claims.Subject)
		require.Empty(t, claims.Role)
		require.True(t, claims.ExpiresAt.IsZero())
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := tokens.PeekClaims("not-a-jwt")
		require.Error(t, err)
	})
}
