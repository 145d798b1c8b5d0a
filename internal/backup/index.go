// Package backup resolves logical files of an unencrypted iOS backup to the
// blobs that hold them on disk.
package backup

import (
	"errors"
	"fmt"
	"path/filepath"
)

// ErrNotFound is returned when a (domain, relative path) key is not in the manifest.
var ErrNotFound = errors.New("file not in backup")

// Layout describes how blobs are placed under the backup root.
type Layout int

const (
	// LayoutFlat stores every blob directly under the root (Manifest.mbdb backups).
	LayoutFlat Layout = iota
	// LayoutSharded stores blobs under a two-character prefix directory (Manifest.db backups).
	LayoutSharded
)

// Record is one file entry of a backup manifest.
type Record struct {
	Domain       string
	RelativePath string
	FileID       string
}

type key struct {
	domain string
	path   string
}

// Index maps manifest keys to physical blob paths.
type Index struct {
	root   string
	layout Layout
	files  map[key]string
}

// NewIndex builds an index over records found in the backup at root.
func NewIndex(root string, layout Layout, records []Record) *Index {
	ix := &Index{
		root:   root,
		layout: layout,
		files:  make(map[key]string, len(records)),
	}
	for _, r := range records {
		ix.files[key{r.Domain, r.RelativePath}] = r.FileID
	}
	return ix
}

// Resolve returns the blob path holding relativePath in domain.
func (ix *Index) Resolve(domain, relativePath string) (string, error) {
	id, ok := ix.files[key{domain, relativePath}]
	if !ok {
		return "", fmt.Errorf("%s/%s: %w", domain, relativePath, ErrNotFound)
	}
	if ix.layout == LayoutSharded && len(id) > 2 {
		return filepath.Join(ix.root, id[:2], id), nil
	}
	return filepath.Join(ix.root, id), nil
}

// Len returns the number of indexed files.
func (ix *Index) Len() int {
	return len(ix.files)
}

// Root returns the backup directory the index was built from.
func (ix *Index) Root() string {
	return ix.root
}
