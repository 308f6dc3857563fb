package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/hackboard/go-session-client/internal/config"
	apperrors "github.com/hackboard/go-session-client/internal/errors"
	"github.com/hackboard/go-session-client/tokens"
)

// Refresher exchanges the stored refresh credential for a new pair, returning
// true on success.
type Refresher interface {
	Refresh(ctx context.Context) bool
}

// Redirector returns the user to the login surface after an unrecoverable
// auth failure. Implementations must abandon all in-memory session state,
// the equivalent of a full page navigation, not an in-app route change.
type Redirector interface {
	RedirectToLogin()
}

// Options adjust a single Do call.
type Options struct {
	// SkipAuth issues the request without the stored bearer credential and
	// disables the refresh-and-retry path. Used for login, invite acceptance
	// and other unauthenticated endpoints.
	SkipAuth bool
}

// Bodies of error responses are only read up to this limit when classifying
// a 401.
const maxErrorBodyBytes = 64 << 10

// Executor issues authenticated requests against the hackboard API. It
// attaches the stored bearer credential, detects access-token expiry from
// 401 responses, refreshes at most once and retries at most once per call.
// When refresh or the retry fails it clears all credentials and redirects to
// the login surface; that is the single terminal failure mode.
//
// Concurrent calls racing a simultaneous expiry may each trigger their own
// refresh attempt; the executor does not single-flight refreshes.
type Executor struct {
	store      *tokens.Store
	refresher  Refresher
	redirector Redirector
	baseURL    string
	client     *http.Client
	log        zerolog.Logger
}

// ExecutorOption defines a function type to modify the Executor instance.
type ExecutorOption func(*Executor)

// WithHTTPClient overrides the HTTP client used to issue requests.
func WithHTTPClient(client *http.Client) ExecutorOption {
	return func(e *Executor) {
		e.client = client
	}
}

// WithLogger sets the logger. Logging is off by default.
func WithLogger(log zerolog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.log = log
	}
}

// NewExecutor initializes an Executor with required dependencies.
func NewExecutor(
	store *tokens.Store,
	refresher Refresher,
	redirector Redirector,
	cfg config.EnvConfig,
	options ...ExecutorOption,
) (*Executor, error) {
	if store == nil {
		return nil, errors.New("[NewExecutor] store is required")
	}
	if refresher == nil {
		return nil, errors.New("[NewExecutor] refresher is required")
	}
	if redirector == nil {
		return nil, errors.New("[NewExecutor] redirector is required")
	}
	if cfg == nil {
		return nil, errors.New("[NewExecutor] config is required")
	}
	if cfg.GetAPIBaseURL() == "" {
		return nil, errors.Wrap(apperrors.ErrMissingBaseURL, "[NewExecutor]")
	}

	executor := &Executor{
		store:      store,
		refresher:  refresher,
		redirector: redirector,
		baseURL:    cfg.GetAPIBaseURL(),
		client:     &http.Client{Timeout: time.Duration(cfg.GetHTTPTimeoutSeconds()) * time.Second},
		log:        zerolog.Nop(),
	}

	for _, opt := range options {
		opt(executor)
	}

	return executor, nil
}

// NewRequest builds a request against the API base URL. A non-nil body is
// marshalled as JSON; the request stays replayable for the retry path.
func (e *Executor) NewRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "[Executor.NewRequest] marshal body")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, e.baseURL+path, reader)
	if err != nil {
		return nil, errors.Wrap(err, "[Executor.NewRequest] build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// Do issues the request. Unless opts.SkipAuth is set, the stored access
// credential is attached as a bearer header and a 401 whose body indicates
// token expiry triggers one refresh followed by one retry. Any other 401 is
// returned to the caller unchanged. If refresh fails, or the retry is still
// unauthorized, credentials are cleared, the redirector fires, and the failed
// response is returned.
func (e *Executor) Do(req *http.Request, opts Options) (*http.Response, error) {
	if req.Header.Get("X-Request-Id") == "" {
		req.Header.Set("X-Request-Id", uuid.NewString())
	}
	if !opts.SkipAuth {
		if token, ok := e.store.AccessToken(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "[Executor.Do] issue request")
	}
	if opts.SkipAuth || resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	if req.Body != nil && req.GetBody == nil {
		// Not replayable, so not retryable either.
		return resp, nil
	}

	message, err := peekBody(resp)
	if err != nil || !indicatesExpiry(message) {
		// Plain unauthorized (wrong credentials, revoked account, ...) is the
		// caller's problem, not a refresh trigger.
		return resp, nil
	}

	e.log.Debug().Str("path", req.URL.Path).Msg("access token expired, refreshing")

	if e.refresher.Refresh(req.Context()) {
		retry, cloneErr := cloneRequest(req)
		if cloneErr != nil {
			return resp, nil
		}
		if token, ok := e.store.AccessToken(); ok {
			retry.Header.Set("Authorization", "Bearer "+token)
		}
		retryResp, retryErr := e.client.Do(retry)
		if retryErr != nil {
			resp.Body.Close()
			return nil, errors.Wrap(retryErr, "[Executor.Do] retry request")
		}
		resp.Body.Close()
		if retryResp.StatusCode != http.StatusUnauthorized {
			return retryResp, nil
		}
		e.abandonSession()
		return retryResp, nil
	}

	e.abandonSession()
	return resp, nil
}

// DoJSON issues method path with an optional JSON body and decodes a 2xx
// response into out. Error statuses become an *APIError carrying the
// boundary's message.
func (e *Executor) DoJSON(ctx context.Context, method, path string, body, out any, opts Options) error {
	req, err := e.NewRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := e.Do(req, opts)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "[Executor.DoJSON] decode response")
	}
	return nil
}

// GetJSON issues an authenticated GET and decodes the response into out.
func (e *Executor) GetJSON(ctx context.Context, path string, out any, opts Options) error {
	return e.DoJSON(ctx, http.MethodGet, path, nil, out, opts)
}

// PostJSON issues a POST with a JSON body and decodes the response into out.
func (e *Executor) PostJSON(ctx context.Context, path string, body, out any, opts Options) error {
	return e.DoJSON(ctx, http.MethodPost, path, body, out, opts)
}

// abandonSession is the terminal failure mode: all credentials are dropped
// and the user lands back at the login surface. There is no in-app
// "session expired" message.
func (e *Executor) abandonSession() {
	e.store.Clear()
	e.log.Info().Msg("session unrecoverable, redirecting to login")
	e.redirector.RedirectToLogin()
}

// APIError is a non-2xx response from the boundary.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil {
		return apiErr
	}
	apiErr.Message = extractMessage(string(data))
	return apiErr
}

// peekBody reads the response body for classification and restores it so the
// caller still receives a readable response.
func peekBody(resp *http.Response) (string, error) {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// extractMessage pulls the human-readable message out of an error body,
// falling back to the raw body for non-JSON responses.
func extractMessage(body string) string {
	var wire struct {
		Message     string `json:"message"`
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	if err := json.Unmarshal([]byte(body), &wire); err == nil {
		for _, candidate := range []string{wire.Message, wire.Error, wire.Description} {
			if candidate != "" {
				return candidate
			}
		}
	}
	return body
}

// indicatesExpiry reports whether a 401 body textually points at an expired
// or otherwise stale access token, as opposed to plainly wrong credentials.
func indicatesExpiry(body string) bool {
	message := strings.ToLower(extractMessage(body))
	return strings.Contains(message, "expired") || strings.Contains(message, "token")
}

// cloneRequest copies req with a fresh body for the single retry.
func cloneRequest(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.Body == nil || req.GetBody == nil {
		return clone, nil
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	clone.Body = body
	return clone, nil
}
