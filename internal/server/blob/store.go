// Package blob abstracts the object storage holding ciphertext media.
package blob

import (
	"context"
	"io"
	"time"
)

// Store is a named-blob key-value store with presigned-URL capability.
// Keys are path-like and namespaced by media kind and owner id, e.g.
// images/<user>/<uuid>.jpg, so prefix checks are meaningful.
type Store interface {
	Put(ctx context.Context, key string, body io.Reader) error
	// Get returns the blob contents; common.ErrNotFound when the key is
	// absent. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete is best-effort at call sites: failures are logged by the
	// caller, not treated as fatal.
	Delete(ctx context.Context, key string) error
	// PresignGet issues a time-bounded, auth-free URL for direct
	// retrieval of the blob.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}
