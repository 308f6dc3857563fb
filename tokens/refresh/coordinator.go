package refresh

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/hackboard/go-session-client/internal/config"
	"github.com/hackboard/go-session-client/tokens"
)

// Endpoint path on the identity boundary.
const refreshPath = "/auth/refresh-token"

// Coordinator exchanges the stored refresh credential for a new pair. Once an
// exchange is issued it runs to completion regardless of what the initiating
// caller does, so the stored pair stays consistent no matter which request
// path triggered the refresh. Concurrent callers are not deduplicated: two
// requests observing an expiry at the same time each run their own exchange.
type Coordinator struct {
	store   *tokens.Store
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// CoordinatorOption defines a function type to modify the Coordinator instance.
type CoordinatorOption func(*Coordinator)

// WithHTTPClient overrides the HTTP client used for the exchange request.
func WithHTTPClient(client *http.Client) CoordinatorOption {
	return func(c *Coordinator) {
		c.client = client
	}
}

// WithLogger sets the logger. Logging is off by default.
func WithLogger(log zerolog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		c.log = log
	}
}

// NewCoordinator initializes a Coordinator bound to the identity boundary
// named by the configured API base URL.
func NewCoordinator(store *tokens.Store, cfg config.EnvConfig, options ...CoordinatorOption) (*Coordinator, error) {
	if store == nil {
		return nil, errors.New("[NewCoordinator] store is required")
	}
	if cfg == nil {
		return nil, errors.New("[NewCoordinator] config is required")
	}
	if cfg.GetAPIBaseURL() == "" {
		return nil, errors.New("[NewCoordinator] API base URL is required")
	}

	coordinator := &Coordinator{
		store:   store,
		baseURL: cfg.GetAPIBaseURL(),
		client:  &http.Client{Timeout: time.Duration(cfg.GetHTTPTimeoutSeconds()) * time.Second},
		log:     zerolog.Nop(),
	}

	for _, opt := range options {
		opt(coordinator)
	}

	return coordinator, nil
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh exchanges the stored refresh credential for a new pair and persists
// it. Returns false without a network call when no refresh credential is
// stored. On any non-2xx response, malformed body, or missing field the
// stored pair is left untouched and false is returned.
func (c *Coordinator) Refresh(ctx context.Context) bool {
	refreshToken, ok := c.store.RefreshToken()
	if !ok {
		c.log.Debug().Msg("refresh skipped: no stored refresh token")
		return false
	}

	body, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+refreshPath, bytes.NewReader(body))
	if err != nil {
		c.log.Warn().Err(err).Msg("refresh request build failed")
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Msg("refresh exchange failed")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn().Int("status", resp.StatusCode).Msg("refresh exchange rejected")
		return false
	}

	var wire tokens.WirePair
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		c.log.Warn().Err(err).Msg("refresh response decode failed")
		return false
	}

	pair, ok := wire.Pair()
	if !ok {
		c.log.Warn().Msg("refresh response missing token fields")
		return false
	}

	c.store.Set(pair)
	c.log.Debug().Msg("credentials refreshed")
	return true
}
