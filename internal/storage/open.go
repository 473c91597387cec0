package storage

import (
	"fmt"
	"path/filepath"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Options selects and locates a backend.
type Options struct {
	Backend string
	// DataDir is the FileStore root and the default parent of DBPath.
	DataDir string
	// DBPath is the SQLite database file. Empty means <DataDir>/timeline.db.
	DBPath string
}

// Open returns the Adapter described by opts. Adapters that hold resources
// (SQLiteStore) also implement io.Closer.
func Open(opts Options) (Adapter, error) {
	dir := opts.DataDir
	if dir == "" {
		base, err := BaseDir()
		if err != nil {
			return nil, err
		}
		dir = base
	}

	switch opts.Backend {
	case "", BackendFile:
		return NewFileStore(dir), nil
	case BackendSQLite:
		path := opts.DBPath
		if path == "" {
			path = filepath.Join(dir, "timeline.db")
		}
		return OpenSQLite(path)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want file, sqlite or memory)", opts.Backend)
	}
}
