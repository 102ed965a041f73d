package session

import "context"

// Store is the persistence contract for session records. Implementations
// live in internal/infrastructure/persistence (JSON file, Postgres).
//
// Message handling is serialized per process, so implementations may use
// a simple load-mutate-persist-whole-state strategy without cross-process
// coordination.
type Store interface {
	// Get returns the record for the key, or shared.ErrNotFound.
	Get(ctx context.Context, key Key) (*Record, error)

	// Put stores the record under the key, overwriting any previous one.
	Put(ctx context.Context, key Key, record *Record) error

	// Delete removes the record for the key. Deleting a missing key is
	// not an error.
	Delete(ctx context.Context, key Key) error

	// Copy duplicates the record at from under to, by value. Returns
	// shared.ErrNotFound if from has no record.
	Copy(ctx context.Context, from, to Key) error

	// Keys returns every identity key with a stored session. Used by the
	// admin broadcast fan-out.
	Keys(ctx context.Context) ([]Key, error)
}
