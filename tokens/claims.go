package tokens

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Claims are the identity hints carried inside an access token. They are
// decoded without signature verification and are advisory only: expiry is
// still discovered reactively from failed requests, never from ExpiresAt.
type Claims struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
}

// PeekClaims decodes the access token's payload without verifying its
// signature. Intended for logging and diagnostics; never use the result for
// an authorization decision.
func PeekClaims(accessToken string) (*Claims, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(accessToken, jwt.MapClaims{})
	if err != nil {
		return nil, errors.Wrap(err, "[PeekClaims] parse access token")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("[PeekClaims] unexpected claims type")
	}

	claims := &Claims{}
	if sub, err := mapClaims.GetSubject(); err == nil {
		claims.Subject = sub
	}
	if role, ok := mapClaims["role"].(string); ok {
		claims.Role = role
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}
