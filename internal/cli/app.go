package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salahme/internal/cache"
	"github.com/smokyabdulrahman/salahme/internal/calc"
	"github.com/smokyabdulrahman/salahme/internal/config"
	"github.com/smokyabdulrahman/salahme/internal/geo"
	"github.com/smokyabdulrahman/salahme/internal/geocode"
	"github.com/smokyabdulrahman/salahme/internal/location"
	"github.com/smokyabdulrahman/salahme/internal/logging"
	"github.com/smokyabdulrahman/salahme/internal/orchestrator"
	"github.com/smokyabdulrahman/salahme/internal/prayer"
	"github.com/smokyabdulrahman/salahme/internal/store"
)

// app is the wired object graph behind every command.
type app struct {
	cfg     config.Config
	log     zerolog.Logger
	kv      store.KV
	cache   *cache.LocationCache
	orch    *orchestrator.Orchestrator
	filter  []prayer.Key
	params  calc.Parameters
	tz      *time.Location
	clock12 bool

	logCloser io.Closer
}

// newApp builds the app from the effective config. onChange may be nil.
func newApp(cmd *cobra.Command, onChange func(orchestrator.State)) (*app, error) {
	cfg, err := effectiveConfig(cmd)
	if err != nil {
		return nil, err
	}

	filter, err := parsePrayers(cfg.Prayers)
	if err != nil {
		return nil, err
	}

	logger, logCloser, err := logging.New(logging.Options{
		Level: cfg.LogLevel,
		File:  cfg.LogFile,
		Out:   cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}

	kv, err := store.New(store.Options{
		Backend: cfg.Store,
		Addr:    cfg.StoreAddr,
		Dir:     cfg.CacheDir,
	})
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store, err)
	}

	gc := geocode.NewClient()
	if cfg.GeocoderURL != "" {
		gc.BaseURL = strings.TrimRight(cfg.GeocoderURL, "/")
	}

	a := &app{
		cfg:       cfg,
		log:       logger,
		kv:        kv,
		cache:     cache.New(kv, logger),
		filter:    filter,
		params:    calc.DefaultParameters(),
		tz:        time.Local,
		clock12:   cfg.TimeFormat != "24h",
		logCloser: logCloser,
	}
	var lc orchestrator.LocationCache = a.cache
	if cfg.HasCoordinates() {
		// Fixed coordinates must not be shadowed by an older cached city.
		lc = writeOnlyCache{a.cache}
	}
	a.orch = orchestrator.New(orchestrator.Options{
		Geocoder:        gc,
		Locator:         locatorFor(cfg),
		Cache:           lc,
		Params:          a.params,
		TimeZone:        a.tz,
		Clock12:         a.clock12,
		DefaultCity:     cfg.DefaultCity,
		RefreshInterval: cfg.RefreshEvery(orchestrator.DefaultRefreshInterval),
		Logger:          logger,
		OnChange:        onChange,
	})
	return a, nil
}

// Close stops the orchestrator and releases the store and log file.
func (a *app) Close() {
	a.orch.Stop()
	if err := store.Close(a.kv); err != nil {
		a.log.Warn().Err(err).Msg("failed to close store")
	}
	a.logCloser.Close()
}

// prayers applies the configured prayer filter to entries.
func (a *app) prayers(entries []prayer.Entry) []prayer.Entry {
	if len(a.filter) == 0 {
		return entries
	}
	out := make([]prayer.Entry, 0, len(a.filter))
	for _, e := range entries {
		for _, k := range a.filter {
			if e.Key == k {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// writeOnlyCache saves resolved locations but never restores one.
type writeOnlyCache struct {
	*cache.LocationCache
}

func (writeOnlyCache) Load(context.Context) (*location.Record, bool) { return nil, false }

// locatorFor picks the position source: fixed coordinates win, then the
// geolocation setting.
func locatorFor(cfg config.Config) geo.Locator {
	if cfg.HasCoordinates() {
		return geo.StaticLocator{Coordinates: calc.Coordinates{
			Latitude:  *cfg.Latitude,
			Longitude: *cfg.Longitude,
		}}
	}
	if cfg.Geolocation == config.GeolocationOff {
		return geo.DisabledLocator{}
	}
	return geo.NewIPLocator()
}

// parsePrayers parses a comma-separated prayer list. Empty means all.
func parsePrayers(list string) ([]prayer.Key, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}
	var keys []prayer.Key
	for _, n := range strings.Split(list, ",") {
		k, err := prayer.ParseKey(n)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}
