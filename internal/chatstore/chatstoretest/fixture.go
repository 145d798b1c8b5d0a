// Package chatstoretest builds ChatStorage.sqlite-shaped databases for tests.
package chatstoretest

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/matheus3301/wpphistory/internal/chatstore/chatstoretest/migrations"
	_ "github.com/mattn/go-sqlite3"
)

// Fixture is a writable message store populated by tests.
type Fixture struct {
	t    testing.TB
	db   *sql.DB
	Path string
}

// New creates an empty message store in a temp dir with the WhatsApp schema applied.
func New(t testing.TB) *Fixture {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ChatStorage.sqlite")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		t.Fatalf("migration source: %v", err)
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		t.Fatalf("migration driver: %v", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		t.Fatalf("migration instance: %v", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("migration up: %v", err)
	}
	return &Fixture{t: t, db: db, Path: path}
}

// Message describes a ZWAMESSAGE row. Nil pointers are stored as NULL.
type Message struct {
	From           *string
	To             *string
	Text           *string
	Date           float64
	Type           int
	GroupEventType *int64
	GroupMember    *int64
	MediaItem      *int64
}

// Media describes a ZWAMEDIAITEM row.
type Media struct {
	LocalPath *string
	VCardName *string
	Latitude  *float64
	Longitude *float64
}

// AddSession inserts a chat session and returns its primary key.
func (f *Fixture) AddSession(jid, name string, sessionType int) int64 {
	return f.insert(`INSERT INTO ZWACHATSESSION (ZCONTACTJID, ZPARTNERNAME, ZSESSIONTYPE) VALUES (?, ?, ?)`,
		jid, name, sessionType)
}

// AddMember inserts a group member and returns its primary key.
func (f *Fixture) AddMember(name, jid string) int64 {
	return f.insert(`INSERT INTO ZWAGROUPMEMBER (ZCONTACTNAME, ZMEMBERJID) VALUES (?, ?)`, name, jid)
}

// AddMedia inserts a media item and returns its primary key.
func (f *Fixture) AddMedia(m Media) int64 {
	return f.insert(`INSERT INTO ZWAMEDIAITEM (ZMEDIALOCALPATH, ZVCARDNAME, ZLATITUDE, ZLONGITUDE) VALUES (?, ?, ?, ?)`,
		m.LocalPath, m.VCardName, m.Latitude, m.Longitude)
}

// AddMessage inserts a message and returns its primary key.
func (f *Fixture) AddMessage(m Message) int64 {
	return f.insert(`
		INSERT INTO ZWAMESSAGE (ZFROMJID, ZTOJID, ZTEXT, ZMESSAGEDATE, ZMESSAGETYPE, ZGROUPEVENTTYPE, ZGROUPMEMBER, ZMEDIAITEM)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.From, m.To, m.Text, m.Date, m.Type, m.GroupEventType, m.GroupMember, m.MediaItem)
}

// Close releases the writable handle so the file can be copied or reopened read-only.
func (f *Fixture) Close() {
	_ = f.db.Close()
}

func (f *Fixture) insert(query string, args ...any) int64 {
	f.t.Helper()
	res, err := f.db.Exec(query, args...)
	if err != nil {
		f.t.Fatalf("fixture insert: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		f.t.Fatal(err)
	}
	return id
}

// Str returns a pointer to s.
func Str(s string) *string { return &s }

// Int returns a pointer to n.
func Int(n int64) *int64 { return &n }

// Float returns a pointer to f.
func Float(f float64) *float64 { return &f }
