// Package backuptest writes minimal unencrypted iOS backups for tests.
package backuptest

import (
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Backup is a backup directory in the Manifest.db layout.
type Backup struct {
	t     testing.TB
	Dir   string
	files [][3]string // fileID, domain, relativePath
}

// New creates an empty backup directory named udid under root.
func New(t testing.TB, root, udid string) *Backup {
	t.Helper()
	dir := filepath.Join(root, udid)
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	return &Backup{t: t, Dir: dir}
}

// FileID returns the blob name iOS uses for a file.
func FileID(domain, relativePath string) string {
	sum := sha1.Sum([]byte(domain + "-" + relativePath))
	return hex.EncodeToString(sum[:])
}

// AddFile stores data as the blob of (domain, relativePath).
func (b *Backup) AddFile(domain, relativePath string, data []byte) {
	b.t.Helper()
	id := FileID(domain, relativePath)
	blob := filepath.Join(b.Dir, id[:2], id)
	if err := os.MkdirAll(filepath.Dir(blob), 0700); err != nil {
		b.t.Fatal(err)
	}
	if err := os.WriteFile(blob, data, 0600); err != nil {
		b.t.Fatal(err)
	}
	b.files = append(b.files, [3]string{id, domain, relativePath})
}

// AddFileFrom stores the contents of src as the blob of (domain, relativePath).
func (b *Backup) AddFileFrom(domain, relativePath, src string) {
	b.t.Helper()
	data, err := os.ReadFile(src)
	if err != nil {
		b.t.Fatal(err)
	}
	b.AddFile(domain, relativePath, data)
}

// WriteInfo writes an Info.plist carrying the backup date.
func (b *Backup) WriteInfo(device string, date time.Time) {
	b.t.Helper()
	b.writePlist("Info.plist", fmt.Sprintf(`<key>Device Name</key>
	<string>%s</string>
	<key>Last Backup Date</key>
	<date>%s</date>`, device, date.UTC().Format(time.RFC3339)))
}

// WriteManifestPlist writes a Manifest.plist with the given encryption flag.
func (b *Backup) WriteManifestPlist(encrypted bool) {
	b.t.Helper()
	flag := "<false/>"
	if encrypted {
		flag = "<true/>"
	}
	b.writePlist("Manifest.plist", "<key>IsEncrypted</key>\n\t"+flag)
}

// Finish writes Manifest.db listing every added file.
func (b *Backup) Finish() {
	b.t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(b.Dir, "Manifest.db"))
	if err != nil {
		b.t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(`CREATE TABLE Files (fileID TEXT PRIMARY KEY, domain TEXT, relativePath TEXT, flags INTEGER, file BLOB)`); err != nil {
		b.t.Fatal(err)
	}
	for _, f := range b.files {
		if _, err := db.Exec(`INSERT INTO Files (fileID, domain, relativePath, flags) VALUES (?, ?, ?, 1)`, f[0], f[1], f[2]); err != nil {
			b.t.Fatal(err)
		}
	}
	// Directory entries carry flags = 2 and have no blob.
	if _, err := db.Exec(`INSERT INTO Files (fileID, domain, relativePath, flags) VALUES ('dir', 'AppDomain-dir', 'Library', 2)`); err != nil {
		b.t.Fatal(err)
	}
}

func (b *Backup) writePlist(name, body string) {
	content := `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	` + body + `
</dict>
</plist>
`
	if err := os.WriteFile(filepath.Join(b.Dir, name), []byte(content), 0600); err != nil {
		b.t.Fatal(err)
	}
}
