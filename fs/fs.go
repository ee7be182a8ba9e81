// Package fs provides a filesystem-backed Repository for working-tree
// comparisons, where each revision of a file lives in a directory tree.
package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pmichalik/diffcore"
)

// Compile-time interface verification.
var _ diffcore.Repository = (*Repository)(nil)

// Repository resolves (path, revision) pairs against directory trees.
// Revisions maps a revision name to the directory holding that revision's
// tree; unmapped revisions resolve against Root.
type Repository struct {
	Root      string
	Revisions map[string]string
}

// New creates a Repository rooted at dir.
func New(dir string) *Repository {
	return &Repository{Root: dir}
}

// Get reads the file's content, reporting diffcore.ErrFileNotFound when the
// path does not exist in the revision's tree.
func (r *Repository) Get(ctx context.Context, path, revision string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := r.Root
	if d, ok := r.Revisions[revision]; ok {
		dir = d
	}

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(path)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s@%s: %w", path, revision, diffcore.ErrFileNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s@%s: %w", path, revision, err)
	}
	return data, nil
}
