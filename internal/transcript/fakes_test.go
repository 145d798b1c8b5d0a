package transcript

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/matheus3301/wpphistory/internal/backup"
	"github.com/matheus3301/wpphistory/internal/chatstore"
)

type fakeStore struct {
	convs       []chatstore.Conversation
	messages    map[string][]chatstore.Message
	members     map[int64]string
	media       map[int64]*chatstore.MediaItem
	memberCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		messages: make(map[string][]chatstore.Message),
		members:  make(map[int64]string),
		media:    make(map[int64]*chatstore.MediaItem),
	}
}

func (s *fakeStore) ListConversations() ([]chatstore.Conversation, error) {
	return s.convs, nil
}

func (s *fakeStore) CountMessages(contactJID string) (int, error) {
	return len(s.messages[contactJID]), nil
}

func (s *fakeStore) EachMessage(contactJID string, fn func(chatstore.Message) error) error {
	for _, m := range s.messages[contactJID] {
		if err := fn(m); err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeStore) GroupMemberName(id int64) (string, error) {
	s.memberCalls++
	name, ok := s.members[id]
	if !ok {
		return "", fmt.Errorf("group member %d: %w", id, chatstore.ErrMissingRecord)
	}
	return name, nil
}

func (s *fakeStore) MediaItem(id int64) (*chatstore.MediaItem, error) {
	m, ok := s.media[id]
	if !ok {
		return nil, fmt.Errorf("media item %d: %w", id, chatstore.ErrMissingRecord)
	}
	return m, nil
}

// fakeResolver serves blobs written into a temp dir, keyed by relative path.
type fakeResolver struct {
	t      *testing.T
	dir    string
	domain string
	files  map[string]string
}

func newFakeResolver(t *testing.T) *fakeResolver {
	return &fakeResolver{t: t, dir: t.TempDir(), domain: testDomain, files: make(map[string]string)}
}

func (r *fakeResolver) add(relativePath, content string) {
	r.t.Helper()
	blob := filepath.Join(r.dir, fmt.Sprintf("blob%d", len(r.files)))
	if err := os.WriteFile(blob, []byte(content), 0600); err != nil {
		r.t.Fatal(err)
	}
	r.files[relativePath] = blob
}

func (r *fakeResolver) Resolve(domain, relativePath string) (string, error) {
	if domain != r.domain {
		return "", backup.ErrNotFound
	}
	p, ok := r.files[relativePath]
	if !ok {
		return "", fmt.Errorf("%s: %w", relativePath, backup.ErrNotFound)
	}
	return p, nil
}

const testDomain = "AppDomain-net.whatsapp.WhatsApp"

func str(s string) sql.NullString { return sql.NullString{String: s, Valid: true} }

func num(n int64) sql.NullInt64 { return sql.NullInt64{Int64: n, Valid: true} }

func coord(f float64) sql.NullFloat64 { return sql.NullFloat64{Float64: f, Valid: true} }
