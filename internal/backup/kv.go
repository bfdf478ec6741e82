package backup

// KVStore is the key-addressed durable byte store behind local retention.
// Implementations live in internal/store.
type KVStore interface {
	// Set writes value under key, overwriting any existing entry.
	Set(key string, value []byte) error

	// Get returns the value stored under key, or nil if the key is absent.
	Get(key string) ([]byte, error)

	// Delete removes the entry for key. Deleting an absent key is a no-op.
	Delete(key string) error

	// Keys returns all stored keys with the given prefix, sorted ascending.
	Keys(prefix string) ([]string, error)

	// Close releases the underlying storage.
	Close() error
}
