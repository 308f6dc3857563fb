package storefakes

import (
	"errors"
	"sync"

	"github.com/hackboard/go-session-client/tokens"
)

var _ tokens.Storage = (*FakeStorage)(nil)

// FakeStorage is an in-memory tokens.Storage for tests. Gets, Sets and
// Deletes can be made to fail to exercise the store's degrade-to-absent
// behavior; FailSetsAfter fails only from the nth Set onwards so partial
// write rollback can be tested.
type FakeStorage struct {
	lock   sync.RWMutex
	values map[string]string

	FailGets      bool
	FailSets      bool
	FailSetsAfter int // 0 disables; 1 fails the first Set, 2 the second, ...
	FailDeletes   bool

	setCalls int
}

func NewFakeStorage() *FakeStorage {
	return &FakeStorage{
		values: make(map[string]string),
	}
}

func (f *FakeStorage) Get(key string) (string, error) {
	f.lock.RLock()
	defer f.lock.RUnlock()
	if f.FailGets {
		return "", errors.New("storage unavailable")
	}
	return f.values[key], nil
}

func (f *FakeStorage) Set(key, value string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.setCalls++
	if f.FailSets || (f.FailSetsAfter > 0 && f.setCalls >= f.FailSetsAfter) {
		return errors.New("storage unavailable")
	}
	f.values[key] = value
	return nil
}

func (f *FakeStorage) Delete(key string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.FailDeletes {
		return errors.New("storage unavailable")
	}
	delete(f.values, key)
	return nil
}

// Len returns the number of stored entries.
func (f *FakeStorage) Len() int {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return len(f.values)
}
