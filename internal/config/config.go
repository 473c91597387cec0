package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Tiliavir/activity-timeline/internal/storage"
)

// Config is the root configuration for tl, stored in ~/.tl/config.json.
// The file supports single-line // comments for documentation purposes.
type Config struct {
	Storage StorageConfig `json:"storage"`
	Log     LogConfig     `json:"log"`
}

// StorageConfig selects where the timeline is persisted.
type StorageConfig struct {
	// Backend is one of "file", "sqlite" or "memory".
	Backend string `json:"backend"`
	// DataDir holds the JSON files of the file backend. Empty = ~/.tl.
	DataDir string `json:"data_dir"`
	// DBPath is the SQLite database file. Empty = <data_dir>/timeline.db.
	DBPath string `json:"db_path"`
	// Key is the storage key of the timeline record.
	Key string `json:"key"`
}

// LogConfig controls diagnostic output on stderr.
type LogConfig struct {
	// Level is one of "debug", "info", "warn" or "error".
	Level string `json:"level"`
}

const (
	DefaultBackend  = "file"
	DefaultKey      = "timeline"
	DefaultLogLevel = "info"
)

func defaultConfig() Config {
	return Config{
		Storage: StorageConfig{Backend: DefaultBackend, Key: DefaultKey},
		Log:     LogConfig{Level: DefaultLogLevel},
	}
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing.
const configTemplate = `// tl configuration – ~/.tl/config.json
//
// All settings are optional. Command-line flags (--backend, --data-dir, --db,
// --verbose) take precedence over the values below.
{
  // ── Storage ─────────────────────────────────────────────────────────────
  "storage": {
    // Where the timeline lives:
    // • "file"   – one JSON document in data_dir (default)
    // • "sqlite" – a key/value table in db_path
    // • "memory" – nothing is kept after the command exits
    "backend": "file",

    // Directory for the file backend. Leave empty for ~/.tl.
    "data_dir": "",

    // SQLite database file. Leave empty for <data_dir>/timeline.db.
    "db_path": "",

    // Storage key of the timeline record.
    "key": "timeline"
  },

  // ── Logging ─────────────────────────────────────────────────────────────
  "log": {
    // debug, info, warn or error. --verbose forces debug.
    "level": "info"
  }
}
`

// DefaultPath returns the path to ~/.tl/config.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".tl", "config.json"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads ~/.tl/config.json, creating it with annotated defaults on first run.
func Load() (Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return defaultConfig(), err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path, writing the annotated template there if
// the file does not exist yet. Zero fields are filled with defaults.
func LoadFrom(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if writeErr := writeDefault(path); writeErr != nil {
			slog.Warn("could not create config file", "path", path, "error", writeErr)
		}
		return defaultConfig(), nil
	}
	if err != nil {
		return defaultConfig(), fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(stripLineComments(data), &cfg); err != nil {
		return defaultConfig(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}

	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = DefaultBackend
	}
	cfg.Storage.Backend = strings.ToLower(cfg.Storage.Backend)
	if cfg.Storage.Key == "" {
		cfg.Storage.Key = DefaultKey
	}
	if err := storage.CheckKey(cfg.Storage.Key); err != nil {
		return defaultConfig(), fmt.Errorf("config file %s: storage.key: %w", path, err)
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	return cfg, nil
}

// LogLevel converts the configured level name, falling back to info.
func (c Config) LogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
