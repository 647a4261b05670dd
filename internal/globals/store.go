package globals

// Store defines persistence for the global answer store.
type Store interface {
	// Upsert creates or updates an entry. A pending upsert never overwrites
	// a recorded answer.
	Upsert(e Entry) error

	// Get retrieves an entry by key. Returns (nil, nil) when absent.
	Get(key string) (*Entry, error)

	// List returns all entries ordered by key.
	List() ([]Entry, error)

	// Pending returns all entries without a recorded answer, ordered by key.
	Pending() ([]Entry, error)

	// Answer records a user answer under the key and marks it answered.
	// The entry is created if it does not exist.
	Answer(key, answer string) error

	// Clear removes an entry. Clearing a missing key is not an error.
	Clear(key string) error

	// Close releases resources held by the store.
	Close() error
}
