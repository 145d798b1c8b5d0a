package chatstore

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// ErrMissingRecord is returned when a row referenced by another row does not exist.
var ErrMissingRecord = errors.New("missing record")

// DB wraps a read-only connection to a WhatsApp ChatStorage.sqlite file.
type DB struct {
	*sql.DB
}

// Open opens the message store read-only. The file is never written.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro&_query_only=true", path))
	if err != nil {
		return nil, fmt.Errorf("open chat store: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping chat store: %w", err)
	}
	return &DB{db}, nil
}
