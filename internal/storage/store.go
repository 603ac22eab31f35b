// Package storage persists the engine's local state snapshots.
//
// The durable layout is two independently-keyed JSON blobs (cart and
// wishlist). Writes happen synchronously after every mutation so a
// restart never observes a partially-applied operation.
package storage

// Snapshot keys used by the engine. Each blob round-trips to JSON
// with no ownership cycles.
const (
	KeyCart     = "cart"
	KeyWishlist = "wishlist"
)

// Store is a small key→blob interface over the durable local state.
type Store interface {
	// Get returns the blob for key. ok is false when the key has
	// never been written.
	Get(key string) (data []byte, ok bool, err error)

	// Put writes the blob for key, replacing any previous value.
	// The write is durable when Put returns.
	Put(key string, data []byte) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(key string) error

	Close() error
}
