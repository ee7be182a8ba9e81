package diffcore

import (
	"context"
	"errors"
)

// ErrFileNotFound is reported by a Repository when a (path, revision) pair
// does not resolve to file content.
var ErrFileNotFound = errors.New("diffcore: file not found")

// Repository resolves a (path, revision) pair to file content. The engine
// itself performs no I/O; repository access is the caller's collaborator.
type Repository interface {
	// Get returns the raw content of path at revision. The PreCreation
	// revision resolves to empty content. Nonexistent files are reported
	// with an error wrapping ErrFileNotFound.
	Get(ctx context.Context, path, revision string) ([]byte, error)
}
