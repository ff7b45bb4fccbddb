package testutil

import (
	"fmt"

	"fieldmark/internal/kv"
)

// FailingStore wraps a Store and fails every write once tripped. Reads keep
// working, which is how a quota-exhausted device behaves.
type FailingStore struct {
	kv.Store
	failWrites bool
}

// NewFailingStore wraps inner; writes succeed until FailWrites is called.
func NewFailingStore(inner kv.Store) *FailingStore {
	return &FailingStore{Store: inner}
}

// FailWrites makes all subsequent Put/Delete calls fail.
func (f *FailingStore) FailWrites() { f.failWrites = true }

// RestoreWrites lets writes through again.
func (f *FailingStore) RestoreWrites() { f.failWrites = false }

func (f *FailingStore) Put(key, value string) error {
	if f.failWrites {
		return fmt.Errorf("simulated write failure for %q", key)
	}
	return f.Store.Put(key, value)
}

func (f *FailingStore) Delete(key string) error {
	if f.failWrites {
		return fmt.Errorf("simulated delete failure for %q", key)
	}
	return f.Store.Delete(key)
}
