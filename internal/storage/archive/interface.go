// internal/storage/archive/interface.go
package archive

import "context"

// Storage is the cold-storage backend for finalized documents. The
// engine writes each document once at finalize; reads and listings only
// happen through the docs CLI. Paths are forward-slash relative keys
// (documents/<task_type>/<session_id>.md).
type Storage interface {
	// Write stores one rendered document at the given path
	Write(ctx context.Context, path string, data []byte) error

	// Read retrieves a document by path
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns all document paths under the prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the document at the given path
	Delete(ctx context.Context, path string) error

	// Exists checks whether a document exists at the given path
	Exists(ctx context.Context, path string) (bool, error)
}
