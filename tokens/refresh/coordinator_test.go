package refresh_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hackboard/go-session-client/internal/config"
	"github.com/hackboard/go-session-client/tokens"
	"github.com/hackboard/go-session-client/tokens/refresh"
	"github.com/hackboard/go-session-client/tokens/storefakes"
)

type testConfig struct {
	config.EnvVars
	baseURL string
}

func (c testConfig) GetAPIBaseURL() string {
	return c.baseURL
}

func newStore(t *testing.T) *tokens.Store {
	t.Helper()
	store, err := tokens.NewStore(storefakes.NewFakeStorage())
	require.NoError(t, err)
	return store
}

func TestCoordinator_Refresh(t *testing.T) {
	t.Run("success with camelCase fields", func(t *testing.T) {
		var calls atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/auth/refresh-token", r.URL.Path)

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "R1", body["refreshToken"])

			json.NewEncoder(w).Encode(map[string]string{"accessToken": "A2", "refreshToken": "R2"})
		}))
		defer srv.Close()

		store := newStore(t)
		store.Set(tokens.CredentialPair{AccessToken: "A1", RefreshToken: "R1"})

		coordinator, err := refresh.NewCoordinator(store, testConfig{baseURL: srv.URL})
		require.NoError(t, err)

		require.True(t, coordinator.Refresh(context.Background()))
		require.EqualValues(t, 1, calls.Load())

		pair, ok := store.Get()
		require.True(t, ok)
		require.Equal(t, tokens.CredentialPair{AccessToken: "A2", RefreshToken: "R2"}, pair)
	})

	t.Run("success with snake_case fields", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"access_token": "A2", "refresh_token": "R2"})
		}))
		defer srv.Close()

		store := newStore(t)
		store.Set(tokens.CredentialPair{AccessToken: "A1", RefreshToken: "R1"})

		coordinator, err := refresh.NewCoordinator(store, testConfig{baseURL: srv.URL})
		require.NoError(t, err)

		require.True(t, coordinator.Refresh(context.Background()))
		pair, _ := store.Get()
		require.Equal(t, "A2", pair.AccessToken)
	})

	t.Run("no stored refresh token skips the network", func(t *testing.T) {
		var calls atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		}))
		defer srv.Close()

		coordinator, err := refresh.NewCoordinator(newStore(t), testConfig{baseURL: srv.URL})
		require.NoError(t, err)

		require.False(t, coordinator.Refresh(context.Background()))
		require.Zero(t, calls.Load())
	})

	t.Run("non-2xx leaves the store untouched", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message":"invalid refresh token"}`, http.StatusUnauthorized)
		}))
		defer srv.Close()

		store := newStore(t)
		store.Set(tokens.CredentialPair{AccessToken: "A1", RefreshToken: "R1"})

		coordinator, err := refresh.NewCoordinator(store, testConfig{baseURL: srv.URL})
		require.NoError(t, err)

		require.False(t, coordinator.Refresh(context.Background()))
		pair, ok := store.Get()
		require.True(t, ok)
		require.Equal(t, tokens.CredentialPair{AccessToken: "A1", RefreshToken: "R1"}, pair)
	})

	t.Run("malformed body leaves the store untouched", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer srv.Close()

		store := newStore(t)
		store.Set(tokens.CredentialPair{AccessToken: "A1", RefreshToken: "R1"})

		coordinator, err := refresh.NewCoordinator(store, testConfig{baseURL: srv.URL})
		require.NoError(t, err)

		require.False(t, coordinator.Refresh(context.Background()))
		pair, _ := store.Get()
		require.Equal(t, "A1", pair.AccessToken)
	})

	t.Run("missing token fields leave the store untouched", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"accessToken": "A2"})
		}))
		defer srv.Close()

		store := newStore(t)
		store.Set(tokens.CredentialPair{AccessToken: "A1", RefreshToken: "R1"})

		coordinator, err := refresh.NewCoordinator(store, testConfig{baseURL: srv.URL})
		require.NoError(t, err)

		require.False(t, coordinator.Refresh(context.Background()))
		pair, _ := store.Get()
		require.Equal(t, "R1", pair.RefreshToken)
	})
}

func TestNewCoordinator_Validation(t *testing.T) {
	t.Run("missing store", func(t *testing.T) {
		_, err := refresh.NewCoordinator(nil, testConfig{baseURL: "http://api"})
		require.Error(t, err)
	})

	t.Run("missing base URL", func(t *testing.T) {
		_, err := refresh.NewCoordinator(newStore(t), testConfig{})
		require.Error(t, err)
	})
}
