// Package paths computes the default locations the exporter reads and writes.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// BaseDir returns ~/.wpphistory.
func BaseDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".wpphistory")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnvPath returns the .env file read before environment overrides are applied.
func EnvPath() string {
	return ".env"
}

// BackupsRoot returns the directory where iTunes/Finder keeps device backups
// on goos. Other platforms have no default and need backups_root configured.
func BackupsRoot(goos string) (string, error) {
	switch goos {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", "MobileSync", "Backup"), nil
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA is not set")
		}
		return filepath.Join(appData, "Apple Computer", "MobileSync", "Backup"), nil
	}
	return "", fmt.Errorf("no default backup location on %s; set backups_root or backup_dir", goos)
}

// RunDirName returns the output directory name of a run started at now.
func RunDirName(now time.Time) string {
	return "output_" + now.Format("2006_01_02")
}

// RunDir returns the output directory of a run under outputRoot.
func RunDir(outputRoot string, now time.Time) string {
	return filepath.Join(outputRoot, RunDirName(now))
}
