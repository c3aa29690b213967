package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unreachableAddr is a local port nothing listens on.
const unreachableAddr = "127.0.0.1:1"

// ---------------------------------------------------------------------------
// Shared KV behaviour
// ---------------------------------------------------------------------------

func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, found, err := kv.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found, "missing key should not be found")

	require.NoError(t, kv.Set(ctx, "salahme-location-cache", `{"cityName":"Karachi"}`))
	v, found, err := kv.Get(ctx, "salahme-location-cache")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"cityName":"Karachi"}`, v)

	require.NoError(t, kv.Set(ctx, "salahme-location-cache", "second"))
	v, _, err = kv.Get(ctx, "salahme-location-cache")
	require.NoError(t, err)
	assert.Equal(t, "second", v, "Set should overwrite")
}

func TestMemoryStore(t *testing.T) {
	exerciseKV(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	exerciseKV(t, s)
}

// ---------------------------------------------------------------------------
// FileStore specifics
// ---------------------------------------------------------------------------

func TestNewFileStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "subdir", "cache")
	_, err := NewFileStore(dir)
	require.NoError(t, err)

	_, err = os.Stat(dir)
	assert.False(t, os.IsNotExist(err), "directory %q was not created", dir)
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "k", "v"))

	second, err := NewFileStore(dir)
	require.NoError(t, err)
	v, found, err := second.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", v)
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o644))

	_, _, err = s.Get(ctx, "k")
	assert.Error(t, err, "corrupt file should surface an error")

	// Writes recover the file.
	require.NoError(t, s.Set(ctx, "k", "v"))
	v, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", v)
}

// ---------------------------------------------------------------------------
// Network backends
// ---------------------------------------------------------------------------

func TestRedisStore_Unreachable(t *testing.T) {
	s := NewRedisStore(unreachableAddr)
	defer s.Close()

	_, found, err := s.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.False(t, found)

	assert.Error(t, s.Set(context.Background(), "k", "v"))
}

func TestValkeyStore_Unreachable(t *testing.T) {
	_, err := NewValkeyStore(unreachableAddr)
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// New
// ---------------------------------------------------------------------------

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		want    any
		wantErr bool
	}{
		{"default is file", Options{Dir: t.TempDir()}, &FileStore{}, false},
		{"file", Options{Backend: BackendFile, Dir: t.TempDir()}, &FileStore{}, false},
		{"memory", Options{Backend: BackendMemory}, &MemoryStore{}, false},
		{"redis", Options{Backend: BackendRedis, Addr: unreachableAddr}, &RedisStore{}, false},
		{"valkey unreachable", Options{Backend: BackendValkey, Addr: unreachableAddr}, nil, true},
		{"unknown", Options{Backend: "etcd"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv, err := New(tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, kv)
			assert.NoError(t, Close(kv))
		})
	}
}
