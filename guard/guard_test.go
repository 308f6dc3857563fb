package guard_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hackboard/go-session-client/guard"
	"github.com/hackboard/go-session-client/identity"
	"github.com/hackboard/go-session-client/tokens"
	"github.com/hackboard/go-session-client/tokens/storefakes"
)

type fakeLoader struct {
	user   *identity.User
	calls  atomic.Int64
	onLoad func()
}

func (l *fakeLoader) LoadUser(ctx context.Context) *identity.User {
	l.calls.Add(1)
	if l.onLoad != nil {
		l.onLoad()
	}
	return l.user
}

type fakeRedirector struct {
	calls atomic.Int64
}

func (r *fakeRedirector) RedirectToLogin() {
	r.calls.Add(1)
}

func seededStore(t *testing.T) *tokens.Store {
	t.Helper()
	store, err := tokens.NewStore(storefakes.NewFakeStorage())
	require.NoError(t, err)
	store.Set(tokens.CredentialPair{AccessToken: "A1", RefreshToken: "R1"})
	return store
}

func emptyStore(t *testing.T) *tokens.Store {
	t.Helper()
	store, err := tokens.NewStore(storefakes.NewFakeStorage())
	require.NoError(t, err)
	return store
}

func TestGuard_NoCredential(t *testing.T) {
	loader := &fakeLoader{user: &identity.User{ID: "u1", Role: "admin"}}
	redirect := &fakeRedirector{}

	g, err := guard.New(emptyStore(t), loader, redirect)
	require.NoError(t, err)
	require.Equal(t, guard.StateChecking, g.State())

	state := g.Check(context.Background())

	require.Equal(t, guard.StateUnauthenticated, state)
	require.Zero(t, loader.calls.Load(), "session cache must not be consulted")
	require.EqualValues(t, 1, redirect.calls.Load())
	require.False(t, g.ShouldRender())
}

func TestGuard_ValidSession(t *testing.T) {
	var changes []guard.State
	loader := &fakeLoader{user: &identity.User{ID: "u1", Role: "participant"}}
	redirect := &fakeRedirector{}
	store := seededStore(t)

	g, err := guard.New(store, loader, redirect, guard.WithOnChange(func(s guard.State) {
		changes = append(changes, s)
	}))
	require.NoError(t, err)

	state := g.Check(context.Background())

	require.Equal(t, guard.StateAuthenticated, state)
	require.True(t, g.ShouldRender())
	require.Zero(t, redirect.calls.Load())
	require.Equal(t, []guard.State{guard.StateAuthenticated}, changes)

	_, ok := store.Get()
	require.True(t, ok, "credentials stay in place")
}

func TestGuard_InvalidSession(t *testing.T) {
	loader := &fakeLoader{user: nil}
	redirect := &fakeRedirector{}
	store := seededStore(t)

	g, err := guard.New(store, loader, redirect)
	require.NoError(t, err)

	state := g.Check(context.Background())

	require.Equal(t, guard.StateUnauthenticated, state)
	require.EqualValues(t, 1, loader.calls.Load())
	require.EqualValues(t, 1, redirect.calls.Load())
	require.False(t, g.ShouldRender())

	_, ok := store.Get()
	require.False(t, ok, "stored credentials must be cleared")
}

func TestGuard_CancelBeforeResolution(t *testing.T) {
	redirect := &fakeRedirector{}
	store := seededStore(t)

	loader := &fakeLoader{user: &identity.User{ID: "u1", Role: "judge"}}
	g, err := guard.New(store, loader, redirect)
	require.NoError(t, err)

	// The subtree unmounts while the resolve call is in flight.
	loader.onLoad = g.Cancel

	state := g.Check(context.Background())

	require.Equal(t, guard.StateChecking, state, "no transition after cancel")
	require.Zero(t, redirect.calls.Load(), "no redirect after cancel")
	require.False(t, g.ShouldRender())

	_, ok := store.Get()
	require.True(t, ok, "cancel must not clear credentials")
}

func TestGuard_CancelledInvalidSessionKeepsStore(t *testing.T) {
	redirect := &fakeRedirector{}
	store := seededStore(t)

	loader := &fakeLoader{user: nil}
	g, err := guard.New(store, loader, redirect)
	require.NoError(t, err)
	loader.onLoad = g.Cancel

	state := g.Check(context.Background())

	require.Equal(t, guard.StateChecking, state)
	require.Zero(t, redirect.calls.Load())
	_, ok := store.Get()
	require.True(t, ok, "a logout racing the check must not resurrect a clear")
}

func TestGuard_StateIsTerminal(t *testing.T) {
	loader := &fakeLoader{user: &identity.User{ID: "u1", Role: "sponsor"}}
	g, err := guard.New(seededStore(t), loader, &fakeRedirector{})
	require.NoError(t, err)

	require.Equal(t, guard.StateAuthenticated, g.Check(context.Background()))

	// A second check on the same mount does not re-run the machine.
	require.Equal(t, guard.StateAuthenticated, g.Check(context.Background()))
	require.EqualValues(t, 1, loader.calls.Load())
}

func TestState_String(t *testing.T) {
	require.Equal(t, "checking", guard.StateChecking.String())
	require.Equal(t, "authenticated", guard.StateAuthenticated.String())
	require.Equal(t, "unauthenticated", guard.StateUnauthenticated.String())
}
