// Package treefs materializes a declared directory/file tree on a storage backend.
//
// A [Tree] is an ordered list of entries, each naming a path segment and one of
// four values: skip, empty file, file content or a nested subtree. [Create] walks
// the tree depth-first and issues one backend operation per effect, stopping at
// the first failure without undoing what was already created.
package treefs

// Backend is the storage capability the interpreter writes through.
// Implementations decide what an existing path means; the interpreter never
// inspects the backend beyond these two calls.
type Backend interface {
	// CreateDir creates the directory at path and any missing ancestors.
	// It must succeed if a directory already exists there.
	CreateDir(path string) error

	// WriteFile writes (overwrites) the full contents of the file at path.
	// If the parent directory is missing it should create it and retry once.
	WriteFile(path string, data []byte) error
}

// TempDir is an owning handle to an ephemeral directory.
// Close removes the directory and everything under it.
type TempDir interface {
	Path() string
	Close() error
}

// TempProvider allocates fresh, empty, uniquely named directories
type TempProvider interface {
	Allocate() (TempDir, error)
}

// TempBackend is a Backend that can also hand out ephemeral roots for [CreateTemp]
type TempBackend interface {
	Backend
	TempProvider
}
