// Package kv provides the durable key-value store backing the point store,
// identity provider, and UI settings. Keys and values are strings; values
// are typically JSON documents owned by the caller.
package kv

// Store is a string-keyed, string-valued persistent store.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value for key. The second return is false if the key
	// is absent (absence is not an error).
	Get(key string) (string, bool, error)

	// Put stores value under key, replacing any existing value.
	Put(key, value string) error

	// Delete removes key. Deleting an absent key is a no-op.
	Delete(key string) error

	// Keys returns all keys with the given prefix, sorted.
	Keys(prefix string) ([]string, error)

	// Close releases any underlying resources.
	Close() error
}
