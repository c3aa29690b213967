// Package cache persists the last resolved location so a restart can show
// prayer times without any network call.
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/salahme/internal/location"
	"github.com/smokyabdulrahman/salahme/internal/store"
)

// Key is the single store key holding the cached location.
const Key = "salahme-location-cache"

// LocationCache reads and writes the cached location record.
type LocationCache struct {
	kv  store.KV
	log zerolog.Logger
}

// New creates a LocationCache over kv.
func New(kv store.KV, log zerolog.Logger) *LocationCache {
	return &LocationCache{kv: kv, log: log.With().Str("component", "cache").Logger()}
}

// Load returns the cached record. Any problem reading it, including a
// corrupt payload or unusable coordinates, is treated as no cache.
func (c *LocationCache) Load(ctx context.Context) (*location.Record, bool) {
	raw, found, err := c.kv.Get(ctx, Key)
	if err != nil {
		c.log.Warn().Err(err).Msg("location cache unavailable")
		return nil, false
	}
	if !found || raw == "" {
		return nil, false
	}

	var rec location.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		c.log.Warn().Err(err).Msg("discarding corrupt location cache")
		return nil, false
	}
	if err := rec.Validate(); err != nil {
		c.log.Warn().Err(err).Msg("discarding cached location")
		return nil, false
	}

	return &rec, true
}

// Save writes rec to the store.
func (c *LocationCache) Save(ctx context.Context, rec location.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal location: %w", err)
	}
	if err := c.kv.Set(ctx, Key, string(data)); err != nil {
		return fmt.Errorf("failed to write location cache: %w", err)
	}
	return nil
}
