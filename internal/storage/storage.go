// Package storage implements the persisted key-value blob substrate shared
// by all stores. Each logical key holds a full JSON snapshot that is
// overwritten on every mutation: there is no append log and no versioning,
// so the last writer wins. A second process sharing the same database can
// silently overwrite this process's writes; single-writer operation is
// assumed and the lost-update hazard is a documented limitation.
package storage

import "context"

// Logical keys for the persisted snapshots.
const (
	KeyCurrentUser = "quantum_current_user"
	KeyUsers       = "quantum_users"
	KeyPosts       = "quantum_posts"
	KeyChats       = "quantum_chats"
	KeyTheme       = "quantum_theme"
)

// Store is the key-value blob substrate.
type Store interface {
	// Load unmarshals the snapshot stored under key into dest. The boolean
	// reports whether the key existed.
	Load(ctx context.Context, key string, dest any) (bool, error)
	// Save overwrites the snapshot stored under key with the JSON encoding of v.
	Save(ctx context.Context, key string, v any) error
	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
