package tokens

import (
	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	apperrors "github.com/hackboard/go-session-client/internal/errors"
)

// TokenSource adapts the Store to golang.org/x/oauth2 so stored credentials
// can drive third-party HTTP clients (oauth2.NewClient and friends). The
// source reads the store on every call, picking up refreshed pairs; it never
// refreshes on its own.
func (s *Store) TokenSource() oauth2.TokenSource {
	return storeTokenSource{store: s}
}

type storeTokenSource struct {
	store *Store
}

func (ts storeTokenSource) Token() (*oauth2.Token, error) {
	pair, ok := ts.store.Get()
	if !ok {
		return nil, errors.Wrap(apperrors.ErrNoCredentials, "[TokenSource]")
	}
	return &oauth2.Token{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
	}, nil
}
