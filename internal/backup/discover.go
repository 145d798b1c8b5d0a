package backup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"howett.net/plist"
)

// ErrEncrypted is returned for backups whose files are encrypted.
var ErrEncrypted = errors.New("backup is encrypted")

// ErrNoBackups is returned when a backups root holds no usable backup.
var ErrNoBackups = errors.New("no backups found")

type infoPlist struct {
	LastBackupDate time.Time `plist:"Last Backup Date"`
	DeviceName     string    `plist:"Device Name"`
}

type manifestPlist struct {
	IsEncrypted bool `plist:"IsEncrypted"`
}

// Info describes one backup directory.
type Info struct {
	Dir        string
	DeviceName string
	Date       time.Time
}

// ReadInfo reads the backup date and device name from dir/Info.plist.
func ReadInfo(dir string) (*Info, error) {
	data, err := os.ReadFile(filepath.Join(dir, "Info.plist"))
	if err != nil {
		return nil, err
	}
	var p infoPlist
	if _, err := plist.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse Info.plist in %s: %w", dir, err)
	}
	if p.LastBackupDate.IsZero() {
		return nil, fmt.Errorf("could not find date of backup in %s", dir)
	}
	return &Info{Dir: dir, DeviceName: p.DeviceName, Date: p.LastBackupDate}, nil
}

// Latest returns the most recent backup under root, judged by Info.plist dates.
// Entries without a readable Info.plist are skipped.
func Latest(root string) (*Info, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	var latest *Info
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info, err := ReadInfo(filepath.Join(root, e.Name()))
		if err != nil {
			continue
		}
		if latest == nil || info.Date.After(latest.Date) {
			latest = info
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("%s: %w", root, ErrNoBackups)
	}
	return latest, nil
}

// IsEncrypted reports whether dir/Manifest.plist marks the backup as encrypted.
// Legacy backups without a Manifest.plist are treated as unencrypted.
func IsEncrypted(dir string) (bool, error) {
	data, err := os.ReadFile(filepath.Join(dir, "Manifest.plist"))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	var p manifestPlist
	if _, err := plist.Unmarshal(data, &p); err != nil {
		return false, fmt.Errorf("parse Manifest.plist: %w", err)
	}
	return p.IsEncrypted, nil
}

// Open builds the file index of the backup in dir, preferring Manifest.db
// over the legacy Manifest.mbdb.
func Open(dir string) (*Index, error) {
	encrypted, err := IsEncrypted(dir)
	if err != nil {
		return nil, err
	}
	if encrypted {
		return nil, fmt.Errorf("%s: %w", dir, ErrEncrypted)
	}

	dbPath := filepath.Join(dir, ManifestDBName)
	if _, err := os.Stat(dbPath); err == nil {
		records, err := LoadManifestDB(dbPath)
		if err != nil {
			return nil, err
		}
		return NewIndex(dir, LayoutSharded, records), nil
	}

	records, err := LoadManifestMBDB(filepath.Join(dir, ManifestMBDBName))
	if err != nil {
		return nil, err
	}
	return NewIndex(dir, LayoutFlat, records), nil
}
