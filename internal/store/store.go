// Package store provides the small key-value persistence used for the
// location cache. Backends: a JSON file on disk, Redis, Valkey and memory.
package store

import (
	"context"
	"fmt"
	"time"
)

// Backend names accepted by New.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendValkey = "valkey"
	BackendMemory = "memory"
)

// ValidBackends lists the accepted backend names.
var ValidBackends = []string{BackendFile, BackendRedis, BackendValkey, BackendMemory}

// dialTimeout bounds how long a network backend may block a lookup.
const dialTimeout = 2 * time.Second

// KV is a string key-value store. Get reports found=false for a missing key.
type KV interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Closer is implemented by backends holding network connections.
type Closer interface {
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend string // one of ValidBackends, empty means file
	Addr    string // host:port for redis and valkey
	Dir     string // directory for the file backend
}

// New builds the backend named in opts.
func New(opts Options) (KV, error) {
	switch opts.Backend {
	case "", BackendFile:
		return NewFileStore(opts.Dir)
	case BackendRedis:
		return NewRedisStore(opts.Addr), nil
	case BackendValkey:
		return NewValkeyStore(opts.Addr)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q (valid: %v)", opts.Backend, ValidBackends)
	}
}

// Close releases kv when it holds resources.
func Close(kv KV) error {
	if c, ok := kv.(Closer); ok {
		return c.Close()
	}
	return nil
}
