package chatstore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// StoreFileName is the name the staged copy of the message store gets in the output area.
const StoreFileName = "ChatStorage.sqlite"

// Resolver maps a backup domain and relative path to a file on disk.
type Resolver interface {
	Resolve(domain, relativePath string) (string, error)
}

// Stage locates the message store inside the backup and copies it into dir,
// so the backup itself is never opened by SQLite. It returns the copy's path.
func Stage(r Resolver, domain, relativePath, dir string) (string, error) {
	src, err := r.Resolve(domain, relativePath)
	if err != nil {
		return "", fmt.Errorf("could not find WhatsApp chat store %s/%s: %w", domain, relativePath, err)
	}
	dst := filepath.Join(dir, StoreFileName)
	if err := copyFile(src, dst); err != nil {
		return "", fmt.Errorf("stage chat store: %w", err)
	}
	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
