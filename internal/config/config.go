package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Defaults for a WhatsApp iOS backup.
const (
	DefaultOwnerName   = "me"
	DefaultAppDomain   = "AppDomain-net.whatsapp.WhatsApp"
	DefaultStorePath   = "Documents/ChatStorage.sqlite"
	DefaultOutputRoot  = "."
	DefaultMediaLayout = "conversation"
)

// EnvPrefix prefixes every environment override, e.g. WPPHISTORY_OWNER_NAME.
const EnvPrefix = "WPPHISTORY_"

// Config represents ~/.wpphistory/config.toml.
type Config struct {
	OwnerName     string `toml:"owner_name"`
	AppDomain     string `toml:"app_domain"`
	StorePath     string `toml:"store_path"`
	BackupDir     string `toml:"backup_dir"`
	BackupsRoot   string `toml:"backups_root"`
	OutputRoot    string `toml:"output_root"`
	MediaLayout   string `toml:"media_layout"`
	EscapeHTML    bool   `toml:"escape_html"`
	Timezone      string `toml:"timezone"`
	KeepStoreCopy bool   `toml:"keep_store_copy"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		OwnerName:   DefaultOwnerName,
		AppDomain:   DefaultAppDomain,
		StorePath:   DefaultStorePath,
		OutputRoot:  DefaultOutputRoot,
		MediaLayout: DefaultMediaLayout,
		EscapeHTML:  true,
	}
}

// Load reads config from the given path on top of Default. Returns error if file missing.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// ErrExists is returned by Init when the config file is already present.
var ErrExists = errors.New("config file already exists")

// Init writes the default configuration to path unless a file is already there.
func Init(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s: %w", path, ErrExists)
	}
	return Save(path, Default())
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// LoadEnvFile loads variables from a .env file into the process environment
// without overriding variables that are already set. A missing file is ignored.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// ApplyEnv overrides fields with WPPHISTORY_* environment variables.
func (c *Config) ApplyEnv() error {
	strs := map[string]*string{
		"OWNER_NAME":   &c.OwnerName,
		"APP_DOMAIN":   &c.AppDomain,
		"STORE_PATH":   &c.StorePath,
		"BACKUP_DIR":   &c.BackupDir,
		"BACKUPS_ROOT": &c.BackupsRoot,
		"OUTPUT_ROOT":  &c.OutputRoot,
		"MEDIA_LAYOUT": &c.MediaLayout,
		"TIMEZONE":     &c.Timezone,
	}
	for name, field := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			*field = v
		}
	}

	bools := map[string]*bool{
		"ESCAPE_HTML":     &c.EscapeHTML,
		"KEEP_STORE_COPY": &c.KeepStoreCopy,
	}
	for name, field := range bools {
		v, ok := os.LookupEnv(EnvPrefix + name)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*field = b
	}
	return nil
}

// Validate checks fields that have a closed set of values.
func (c *Config) Validate() error {
	switch c.MediaLayout {
	case "flat", "conversation":
	default:
		return fmt.Errorf("media_layout must be \"flat\" or \"conversation\", got %q", c.MediaLayout)
	}
	if c.OwnerName == "" {
		return errors.New("owner_name must not be empty")
	}
	if c.AppDomain == "" || c.StorePath == "" {
		return errors.New("app_domain and store_path must not be empty")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location returns the time zone transcripts are rendered in; empty means local time.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}
	return loc, nil
}
