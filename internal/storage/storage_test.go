package storage_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/activity-timeline/internal/storage"
)

// adapters returns one of each backend, cleaned up with t.
func adapters(t *testing.T) map[string]storage.Adapter {
	t.Helper()

	sq, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sq.Close() })

	return map[string]storage.Adapter{
		"file":   storage.NewFileStore(t.TempDir()),
		"sqlite": sq,
		"memory": storage.NewMemoryStore(),
	}
}

func TestAdapterContract(t *testing.T) {
	for name, a := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := a.Get("timeline")
			require.NoError(t, err)
			assert.False(t, ok, "missing key should report ok=false")

			require.NoError(t, a.Set("timeline", `{"months":[]}`))
			v, ok, err := a.Get("timeline")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, `{"months":[]}`, v)

			require.NoError(t, a.Set("timeline", `{"months":[1]}`))
			v, _, err = a.Get("timeline")
			require.NoError(t, err)
			assert.Equal(t, `{"months":[1]}`, v, "Set replaces the whole value")

			require.NoError(t, a.Remove("timeline"))
			_, ok, err = a.Get("timeline")
			require.NoError(t, err)
			assert.False(t, ok)

			assert.NoError(t, a.Remove("timeline"), "removing a missing key is not an error")
		})
	}
}

func TestAdapterRejectsBadKeys(t *testing.T) {
	for name, a := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"", "../escape", `a\b`, ".."} {
				err := a.Set(key, "x")
				assert.True(t, errors.Is(err, storage.ErrInvalidKey), "Set(%q) = %v", key, err)
				_, _, err = a.Get(key)
				assert.True(t, errors.Is(err, storage.ErrInvalidKey), "Get(%q) = %v", key, err)
			}
		})
	}
}

func TestFileStoreWritesJSONFile(t *testing.T) {
	base := t.TempDir()
	s := storage.NewFileStore(filepath.Join(base, "nested"))

	require.NoError(t, s.Set("timeline", `{"months":[]}`))

	data, err := os.ReadFile(filepath.Join(base, "nested", "timeline.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"months":[]}`, string(data))

	_, err = os.Stat(filepath.Join(base, "nested", "timeline.json.tmp"))
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "timeline.db")

	s, err := storage.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("timeline", "v1"))
	require.NoError(t, s.Close())

	s, err = storage.OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.Get("timeline")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v1", v)
}

func TestSQLiteStoreInMemory(t *testing.T) {
	s, err := storage.OpenSQLite(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("a", "1"))
	v, ok, err := s.Get("a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestMemoryStoreLen(t *testing.T) {
	s := storage.NewMemoryStore()
	require.NoError(t, s.Set("a", "1"))
	require.NoError(t, s.Set("b", "2"))
	require.NoError(t, s.Remove("a"))
	assert.Equal(t, 1, s.Len())
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	a, err := storage.Open(storage.Options{Backend: storage.BackendFile, DataDir: dir})
	require.NoError(t, err)
	fs, ok := a.(*storage.FileStore)
	require.True(t, ok)
	assert.Equal(t, dir, fs.Dir())

	a, err = storage.Open(storage.Options{Backend: storage.BackendSQLite, DataDir: dir})
	require.NoError(t, err)
	closer, ok := a.(io.Closer)
	require.True(t, ok, "sqlite adapter must be closable")
	require.NoError(t, closer.Close())
	_, err = os.Stat(filepath.Join(dir, "timeline.db"))
	assert.NoError(t, err)

	a, err = storage.Open(storage.Options{Backend: storage.BackendMemory, DataDir: dir})
	require.NoError(t, err)
	assert.IsType(t, &storage.MemoryStore{}, a)

	_, err = storage.Open(storage.Options{Backend: "redis", DataDir: dir})
	assert.Error(t, err)
}
