package backup

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matheus3301/wpphistory/internal/backup/backuptest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const domain = "AppDomain-net.whatsapp.WhatsApp"

func TestIndexResolve(t *testing.T) {
	records := []Record{
		{Domain: domain, RelativePath: "Documents/ChatStorage.sqlite", FileID: "abcdef"},
	}

	flat := NewIndex("/b", LayoutFlat, records)
	got, err := flat.Resolve(domain, "Documents/ChatStorage.sqlite")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/b", "abcdef"), got)

	sharded := NewIndex("/b", LayoutSharded, records)
	got, err = sharded.Resolve(domain, "Documents/ChatStorage.sqlite")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/b", "ab", "abcdef"), got)

	_, err = flat.Resolve("HomeDomain", "Documents/ChatStorage.sqlite")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, flat.Len())
}

func TestOpenManifestDB(t *testing.T) {
	b := backuptest.New(t, t.TempDir(), "udid")
	b.AddFile(domain, "Library/Media/a.jpg", []byte("jpeg"))
	b.WriteManifestPlist(false)
	b.Finish()

	ix, err := Open(b.Dir)
	require.NoError(t, err)
	assert.Equal(t, 1, ix.Len(), "directory entries are not indexed")
	assert.Equal(t, b.Dir, ix.Root())

	path, err := ix.Resolve(domain, "Library/Media/a.jpg")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))
}

func TestOpenRejectsEncrypted(t *testing.T) {
	b := backuptest.New(t, t.TempDir(), "udid")
	b.WriteManifestPlist(true)
	b.Finish()

	_, err := Open(b.Dir)
	assert.ErrorIs(t, err, ErrEncrypted)
}

func TestOpenWithoutManifest(t *testing.T) {
	_, err := Open(t.TempDir())
	assert.Error(t, err)
}

type mbdbEntry struct {
	domain, path string
	props        [][2]string
}

func writeMBDBString(buf *bytes.Buffer, s *string) {
	if s == nil {
		_ = binary.Write(buf, binary.BigEndian, uint16(0xFFFF))
		return
	}
	_ = binary.Write(buf, binary.BigEndian, uint16(len(*s)))
	buf.WriteString(*s)
}

func buildMBDB(entries []mbdbEntry) []byte {
	var buf bytes.Buffer
	buf.Write(mbdbMagic)
	for _, e := range entries {
		writeMBDBString(&buf, &e.domain)
		writeMBDBString(&buf, &e.path)
		writeMBDBString(&buf, nil)
		hash := "0123456789abcdef0123"
		writeMBDBString(&buf, &hash)
		writeMBDBString(&buf, nil)
		_ = binary.Write(&buf, binary.BigEndian, mbdbFixed{
			Mode:     0o100644,
			Size:     4,
			NumProps: uint8(len(e.props)),
		})
		for _, p := range e.props {
			writeMBDBString(&buf, &p[0])
			writeMBDBString(&buf, &p[1])
		}
	}
	return buf.Bytes()
}

func TestParseMBDB(t *testing.T) {
	data := buildMBDB([]mbdbEntry{
		{domain: domain, path: "Documents/ChatStorage.sqlite"},
		{domain: "HomeDomain", path: "Library/Prefs.plist", props: [][2]string{{"com.apple.x", "1"}}},
	})

	records, err := ParseMBDB(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, Record{
		Domain:       domain,
		RelativePath: "Documents/ChatStorage.sqlite",
		FileID:       backuptest.FileID(domain, "Documents/ChatStorage.sqlite"),
	}, records[0])
	assert.Equal(t, "Library/Prefs.plist", records[1].RelativePath)
}

func TestParseMBDBErrors(t *testing.T) {
	_, err := ParseMBDB(bytes.NewReader([]byte("mbdx\x05\x00")))
	assert.ErrorIs(t, err, ErrBadManifest)

	data := buildMBDB([]mbdbEntry{{domain: domain, path: "a"}})
	_, err = ParseMBDB(bytes.NewReader(data[:len(data)-3]))
	assert.ErrorIs(t, err, ErrBadManifest)
}

func TestOpenLegacyMBDB(t *testing.T) {
	dir := t.TempDir()
	data := buildMBDB([]mbdbEntry{{domain: domain, path: "Documents/ChatStorage.sqlite"}})
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestMBDBName), data, 0600))

	ix, err := Open(dir)
	require.NoError(t, err)
	path, err := ix.Resolve(domain, "Documents/ChatStorage.sqlite")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, backuptest.FileID(domain, "Documents/ChatStorage.sqlite")), path)
}

func TestLatest(t *testing.T) {
	root := t.TempDir()
	older := backuptest.New(t, root, "older")
	older.WriteInfo("Old Phone", time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC))
	newer := backuptest.New(t, root, "newer")
	newer.WriteInfo("New Phone", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	backuptest.New(t, root, "no-info")
	require.NoError(t, os.WriteFile(filepath.Join(root, "stray.txt"), nil, 0600))

	info, err := Latest(root)
	require.NoError(t, err)
	assert.Equal(t, newer.Dir, info.Dir)
	assert.Equal(t, "New Phone", info.DeviceName)
	assert.True(t, info.Date.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)), "date = %v", info.Date)
}

func TestLatestEmpty(t *testing.T) {
	_, err := Latest(t.TempDir())
	assert.ErrorIs(t, err, ErrNoBackups)

	_, err = Latest(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
