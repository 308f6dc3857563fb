package session

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/hackboard/go-session-client/apiclient"
	"github.com/hackboard/go-session-client/identity"
)

// Identity-resolution endpoint on the boundary.
const mePath = "/auth/me"

// Cache holds the resolved identity of the current user in memory. Nothing is
// persisted: the identity is recomputed from scratch on each application load
// and lives until the next load or an explicit Clear.
type Cache struct {
	exec *apiclient.Executor
	log  zerolog.Logger

	lock sync.Mutex
	user *identity.User
}

// CacheOption defines a function type to modify the Cache instance.
type CacheOption func(*Cache)

// WithLogger sets the logger. Logging is off by default.
func WithLogger(log zerolog.Logger) CacheOption {
	return func(c *Cache) {
		c.log = log
	}
}

// NewCache initializes a Cache resolving identities through the executor.
func NewCache(exec *apiclient.Executor, options ...CacheOption) (*Cache, error) {
	if exec == nil {
		return nil, errors.New("[NewCache] executor is required")
	}

	cache := &Cache{
		exec: exec,
		log:  zerolog.Nop(),
	}
	for _, opt := range options {
		opt(cache)
	}
	return cache, nil
}

// meResponse wraps the resolved identity as the boundary returns it.
type meResponse struct {
	User *identity.User `json:"user"`
}

// LoadUser resolves the current user through the boundary and caches the
// result. Any failure, network, non-2xx or decode, caches and returns nil.
// Callers must treat nil as "not authenticated", not as a transient error:
// the cache cannot tell an outage from an invalid session and degrades to
// logged-out in both cases.
func (c *Cache) LoadUser(ctx context.Context) *identity.User {
	var resp meResponse
	err := c.exec.GetJSON(ctx, mePath, &resp, apiclient.Options{})

	c.lock.Lock()
	defer c.lock.Unlock()

	if err != nil || resp.User == nil {
		c.log.Debug().Err(err).Msg("identity resolution failed, treating as not authenticated")
		c.user = nil
		return nil
	}

	if _, ok := resp.User.ParsedRole(); !ok {
		c.log.Warn().Str("role", resp.User.Role).Msg("unknown role on resolved user")
	}

	c.user = resp.User
	return c.user
}

// Reload discards the cached identity and resolves it again.
func (c *Cache) Reload(ctx context.Context) *identity.User {
	c.Clear()
	return c.LoadUser(ctx)
}

// Current returns the cached identity without touching the network. Nil when
// nothing is loaded or the last load failed.
func (c *Cache) Current() *identity.User {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.user
}

// Role returns the validated role of the cached identity.
func (c *Cache) Role() (identity.Role, bool) {
	user := c.Current()
	if user == nil {
		return "", false
	}
	return user.ParsedRole()
}

// Clear drops the cached identity.
func (c *Cache) Clear() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.user = nil
}
