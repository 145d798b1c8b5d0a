package backup

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// ManifestMBDBName is the binary file index written by iOS 5 to 9.
const ManifestMBDBName = "Manifest.mbdb"

var mbdbMagic = []byte{'m', 'b', 'd', 'b', 5, 0}

// ErrBadManifest is returned for a Manifest.mbdb that cannot be parsed.
var ErrBadManifest = errors.New("malformed Manifest.mbdb")

// LoadManifestMBDB reads every record of a Manifest.mbdb file.
func LoadManifestMBDB(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ParseMBDB(f)
}

// ParseMBDB decodes Manifest.mbdb records. Blob names are the SHA-1 of
// "domain-relativePath", which is how the backup stores them on disk.
func ParseMBDB(r io.Reader) ([]Record, error) {
	br := bufio.NewReader(r)
	magic := make([]byte, len(mbdbMagic))
	if _, err := io.ReadFull(br, magic); err != nil || !bytes.Equal(magic, mbdbMagic) {
		return nil, fmt.Errorf("%w: bad header", ErrBadManifest)
	}

	var records []Record
	for {
		if _, err := br.Peek(1); err == io.EOF {
			return records, nil
		}
		rec, err := readMBDBRecord(br)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrBadManifest, len(records), err)
		}
		records = append(records, rec)
	}
}

// mbdbFixed is the fixed-size block between the strings and the properties.
type mbdbFixed struct {
	Mode       uint16
	Inode      uint64
	UID        uint32
	GID        uint32
	MTime      uint32
	ATime      uint32
	CTime      uint32
	Size       uint64
	Protection uint8
	NumProps   uint8
}

func readMBDBRecord(r *bufio.Reader) (Record, error) {
	var rec Record
	var err error
	if rec.Domain, err = readMBDBString(r); err != nil {
		return rec, err
	}
	if rec.RelativePath, err = readMBDBString(r); err != nil {
		return rec, err
	}
	// link target, data hash, encryption key
	for i := 0; i < 3; i++ {
		if _, err := readMBDBString(r); err != nil {
			return rec, err
		}
	}
	var fixed mbdbFixed
	if err := binary.Read(r, binary.BigEndian, &fixed); err != nil {
		return rec, err
	}
	for i := 0; i < int(fixed.NumProps)*2; i++ {
		if _, err := readMBDBString(r); err != nil {
			return rec, err
		}
	}
	sum := sha1.Sum([]byte(rec.Domain + "-" + rec.RelativePath))
	rec.FileID = hex.EncodeToString(sum[:])
	return rec, nil
}

func readMBDBString(r io.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return "", err
	}
	if n == 0xFFFF {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
