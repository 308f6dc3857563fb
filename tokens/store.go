package tokens

import (
	"sync"

	"github.com/pkg/errors"
)

// Storage keys for the persisted credential pair.
const (
	accessTokenKey  = "hackboard.access_token"
	refreshTokenKey = "hackboard.refresh_token"
)

// CredentialPair is the access/refresh token pair issued by the identity
// boundary. The two fields are always read and written together; no expiry
// timestamp is tracked locally, expiry is discovered from failed requests.
type CredentialPair struct {
	AccessToken  string
	RefreshToken string
}

// Storage is the persistence backend behind the Store: a synchronous string
// key/value store scoped to the running client. Implementations report
// failures as errors; the Store degrades them to "absent", they never reach
// callers.
type Storage interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Store owns the persisted credential pair. It is process-wide shared state:
// the refresh path replaces the pair, logout and guard failure clear it,
// everything else only reads. All writes replace the whole pair.
type Store struct {
	lock    sync.Mutex
	storage Storage
}

// NewStore initializes a Store backed by the given storage.
func NewStore(storage Storage) (*Store, error) {
	if storage == nil {
		return nil, errors.New("[NewStore] storage is required")
	}
	return &Store{storage: storage}, nil
}

// Get returns the stored credential pair. The boolean is false when either
// token is missing or the backend fails; a half-present pair is treated as
// absent.
func (s *Store) Get() (CredentialPair, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	access, err := s.storage.Get(accessTokenKey)
	if err != nil || access == "" {
		return CredentialPair{}, false
	}
	refresh, err := s.storage.Get(refreshTokenKey)
	if err != nil || refresh == "" {
		return CredentialPair{}, false
	}
	return CredentialPair{AccessToken: access, RefreshToken: refresh}, true
}

// AccessToken returns just the access token, if a full pair is stored.
func (s *Store) AccessToken() (string, bool) {
	pair, ok := s.Get()
	if !ok {
		return "", false
	}
	return pair.AccessToken, true
}

// RefreshToken returns just the refresh token, if a full pair is stored.
func (s *Store) RefreshToken() (string, bool) {
	pair, ok := s.Get()
	if !ok {
		return "", false
	}
	return pair.RefreshToken, true
}

// Set persists the pair. If the backend fails part-way both entries are
// removed so a partial credential is never left behind. Best-effort: a
// failing backend leaves the store reading as absent.
func (s *Store) Set(pair CredentialPair) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.storage.Set(accessTokenKey, pair.AccessToken); err != nil {
		s.clearLocked()
		return
	}
	if err := s.storage.Set(refreshTokenKey, pair.RefreshToken); err != nil {
		s.clearLocked()
		return
	}
}

// Clear removes both tokens. Safe to call when nothing is stored.
func (s *Store) Clear() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.clearLocked()
}

func (s *Store) clearLocked() {
	_ = s.storage.Delete(accessTokenKey)
	_ = s.storage.Delete(refreshTokenKey)
}
