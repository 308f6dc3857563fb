package guard

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/hackboard/go-session-client/identity"
	"github.com/hackboard/go-session-client/tokens"
)

// State of an access check. A guard starts at StateChecking and settles on
// exactly one of the other two; the settled state is terminal for the guard's
// lifetime. A fresh mount gets a fresh guard.
type State int

const (
	StateChecking State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// SessionLoader resolves the current user. Nil means not authenticated.
type SessionLoader interface {
	LoadUser(ctx context.Context) *identity.User
}

// Redirector returns the user to the login surface.
type Redirector interface {
	RedirectToLogin()
}

// Guard gates a protected subtree. Check resolves the mount's authentication
// state; Cancel marks the subtree unmounted, after which no state transition
// or redirect is applied, even if a pending check resolves later. The
// loading and redirect behavior is fixed policy, not configurable per call
// site.
type Guard struct {
	store    *tokens.Store
	sessions SessionLoader
	redirect Redirector
	onChange func(State)
	log      zerolog.Logger

	lock      sync.Mutex
	state     State
	cancelled bool
}

// Option defines a function type to modify the Guard instance.
type Option func(*Guard)

// WithOnChange registers a callback invoked on every settled state change.
func WithOnChange(fn func(State)) Option {
	return func(g *Guard) {
		g.onChange = fn
	}
}

// WithLogger sets the logger. Logging is off by default.
func WithLogger(log zerolog.Logger) Option {
	return func(g *Guard) {
		g.log = log
	}
}

// New initializes a Guard with required dependencies.
func New(store *tokens.Store, sessions SessionLoader, redirect Redirector, options ...Option) (*Guard, error) {
	if store == nil {
		return nil, errors.New("[guard.New] store is required")
	}
	if sessions == nil {
		return nil, errors.New("[guard.New] session loader is required")
	}
	if redirect == nil {
		return nil, errors.New("[guard.New] redirector is required")
	}

	guard := &Guard{
		store:    store,
		sessions: sessions,
		redirect: redirect,
		log:      zerolog.Nop(),
	}
	for _, opt := range options {
		opt(guard)
	}
	return guard, nil
}

// Check runs the mount-time authentication check and returns the settled
// state. With no stored credential it settles unauthenticated immediately,
// without consulting the session loader. Otherwise the user is resolved; a
// nil identity clears stored credentials before settling unauthenticated.
// When the guard was cancelled before resolution, no transition or redirect
// happens and StateChecking is returned.
func (g *Guard) Check(ctx context.Context) State {
	g.lock.Lock()
	if g.cancelled || g.state != StateChecking {
		current := g.state
		g.lock.Unlock()
		return current
	}
	g.lock.Unlock()

	if _, ok := g.store.Get(); !ok {
		return g.settle(StateUnauthenticated, false)
	}

	user := g.sessions.LoadUser(ctx)

	if user == nil {
		return g.settle(StateUnauthenticated, true)
	}
	return g.settle(StateAuthenticated, false)
}

// settle applies the terminal state unless the guard was cancelled or has
// already settled. clearStore drops credentials on the invalid-session path;
// it is skipped on cancellation so a logout racing the check never resurrects
// a redirect.
func (g *Guard) settle(state State, clearStore bool) State {
	g.lock.Lock()
	if g.cancelled || g.state != StateChecking {
		current := g.state
		g.lock.Unlock()
		return current
	}
	g.state = state
	onChange := g.onChange
	g.lock.Unlock()

	if clearStore {
		g.store.Clear()
	}
	g.log.Debug().Stringer("state", state).Msg("access check settled")
	if onChange != nil {
		onChange(state)
	}
	if state == StateUnauthenticated {
		g.redirect.RedirectToLogin()
	}
	return state
}

// Cancel marks the guarded subtree unmounted. A check still in flight will
// resolve without applying any transition or redirect.
func (g *Guard) Cancel() {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.cancelled = true
}

// State returns the guard's current state.
func (g *Guard) State() State {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.state
}

// ShouldRender reports whether guarded content may be shown. Only the
// authenticated state renders; checking shows a neutral placeholder and
// unauthenticated renders nothing, the redirect handles navigation.
func (g *Guard) ShouldRender() bool {
	return g.State() == StateAuthenticated
}
