package backup

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// ManifestDBName is the file index written by iOS 10 and later.
const ManifestDBName = "Manifest.db"

// fileFlagRegular marks regular files in the Files table; directories are 2, symlinks 4.
const fileFlagRegular = 1

// LoadManifestDB reads the regular-file records of a Manifest.db.
func LoadManifestDB(path string) ([]Record, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer func() { _ = db.Close() }()

	rows, err := db.Query(`SELECT fileID, domain, relativePath FROM Files WHERE flags = ?`, fileFlagRegular)
	if err != nil {
		return nil, fmt.Errorf("query manifest: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.FileID, &r.Domain, &r.RelativePath); err != nil {
			return nil, fmt.Errorf("scan manifest: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
