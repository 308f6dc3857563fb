package apiclient

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	apperrors "github.com/hackboard/go-session-client/internal/errors"
	"github.com/hackboard/go-session-client/tokens"
)

// Identity boundary endpoints that create and destroy the credential pair.
const (
	loginPath        = "/auth/login"
	acceptInvitePath = "/auth/accept-invite"
	logoutPath       = "/auth/logout"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type acceptInviteRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
	Username string `json:"username,omitempty"`
}

// authResponse is the boundary's reply to login and invite acceptance: a
// credential pair, accepted in either field casing.
type authResponse struct {
	tokens.WirePair
	Message string `json:"message,omitempty"`
}

// Login exchanges email and password for a credential pair and persists it.
// Issued without auth; a failed login never touches stored credentials.
func (e *Executor) Login(ctx context.Context, email, password string) error {
	var resp authResponse
	err := e.PostJSON(ctx, loginPath, loginRequest{Email: email, Password: password}, &resp, Options{SkipAuth: true})
	if err != nil {
		return errors.Wrap(err, "[Executor.Login]")
	}

	pair, ok := resp.Pair()
	if !ok {
		return errors.Wrap(apperrors.ErrPartialResponse, "[Executor.Login]")
	}
	e.store.Set(pair)
	return nil
}

// AcceptInvite redeems an invite token, setting the new account's password,
// and persists the returned credential pair.
func (e *Executor) AcceptInvite(ctx context.Context, inviteToken, password, username string) error {
	var resp authResponse
	req := acceptInviteRequest{Token: inviteToken, Password: password, Username: username}
	err := e.PostJSON(ctx, acceptInvitePath, req, &resp, Options{SkipAuth: true})
	if err != nil {
		return errors.Wrap(err, "[Executor.AcceptInvite]")
	}

	pair, ok := resp.Pair()
	if !ok {
		return errors.Wrap(apperrors.ErrPartialResponse, "[Executor.AcceptInvite]")
	}
	e.store.Set(pair)
	return nil
}

// Logout tells the boundary to revoke the session, best effort, then clears
// the stored pair. Local credentials are dropped even when the revoke call
// fails.
func (e *Executor) Logout(ctx context.Context) {
	req, err := e.NewRequest(ctx, http.MethodPost, logoutPath, nil)
	if err == nil {
		if resp, doErr := e.Do(req, Options{}); doErr == nil {
			resp.Body.Close()
		}
	}
	e.store.Clear()
}
