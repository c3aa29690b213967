// Package orchestrator owns the current location and prayer list, decides
// where the location comes from on first run, and keeps the list fresh as
// the day passes.
package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/salahme/internal/calc"
	"github.com/smokyabdulrahman/salahme/internal/geo"
	"github.com/smokyabdulrahman/salahme/internal/geocode"
	"github.com/smokyabdulrahman/salahme/internal/location"
	"github.com/smokyabdulrahman/salahme/internal/prayer"
)

const (
	DefaultCity            = "Karachi"
	DefaultRefreshInterval = time.Minute

	minQueryLength = 2
)

// Geocoder names places and finds coordinates for city queries.
type Geocoder interface {
	Search(ctx context.Context, query string) (*geocode.Result, error)
	Reverse(ctx context.Context, lat, lon float64) (*geocode.Result, error)
}

// LocationCache persists the last resolved location.
type LocationCache interface {
	Load(ctx context.Context) (*location.Record, bool)
	Save(ctx context.Context, rec location.Record) error
}

// Clock abstracts time so refreshes can be tested deterministically.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Options configures an Orchestrator. Geocoder, Locator and Cache are
// required.
type Options struct {
	Geocoder Geocoder
	Locator  geo.Locator
	Cache    LocationCache
	Clock    Clock

	Params          calc.Parameters
	TimeZone        *time.Location // display zone, time.Local when nil
	Clock12         bool
	DefaultCity     string
	RefreshInterval time.Duration
	GeoTimeout      time.Duration

	Logger zerolog.Logger
	// OnChange receives a snapshot after every applied transition.
	// Snapshots are delivered in order; stale ones are dropped.
	OnChange func(State)
}

// Orchestrator is safe for concurrent use.
type Orchestrator struct {
	opts Options
	log  zerolog.Logger

	mu      sync.Mutex
	state   State
	gen     uint64 // latest resolution request
	version uint64 // bumped on every state change
	started bool
	stopped bool

	ctx        context.Context
	cancel     context.CancelFunc
	tickCancel context.CancelFunc
	wg         sync.WaitGroup

	notifyMu     sync.Mutex
	lastNotified uint64

	saveMu  sync.Mutex
	saveGen uint64 // newest generation handed to the cache
	saving  bool
	pending *pendingSave
}

type pendingSave struct {
	ctx context.Context
	rec location.Record
	log zerolog.Logger
}

// New creates an Orchestrator in the init phase. Nothing runs until Start
// or Search is called.
func New(opts Options) *Orchestrator {
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.TimeZone == nil {
		opts.TimeZone = time.Local
	}
	if opts.Params.Method.Name == "" {
		opts.Params = calc.DefaultParameters()
	}
	if strings.TrimSpace(opts.DefaultCity) == "" {
		opts.DefaultCity = DefaultCity
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	if opts.GeoTimeout <= 0 {
		opts.GeoTimeout = geo.DefaultTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		opts:   opts,
		log:    opts.Logger.With().Str("component", "orchestrator").Logger(),
		state:  State{Phase: PhaseInit},
		ctx:    ctx,
		cancel: cancel,
	}
}

// State returns a snapshot of the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.clone()
}

// Start runs first activation: cached location, then device position, then
// the default city. Later calls are no-ops.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		return nil
	}
	o.started = true
	o.mu.Unlock()

	reqID := uuid.NewString()
	log := o.log.With().Str("request_id", reqID).Logger()

	if rec, ok := o.opts.Cache.Load(ctx); ok {
		gen := o.begin()
		log.Debug().Str("city", rec.CityName).Msg("restoring cached location")
		return o.settle(ctx, gen, *rec, false, log)
	}

	// The device position is not a network resolution; loading starts once
	// a fix is in hand or the default city is looked up.
	gen := o.begin()
	coords, err := o.locate(ctx)
	if err == nil {
		log.Debug().Stringer("coordinates", coords).Msg("device position acquired")
		if !o.load(gen) {
			return ErrSuperseded
		}
		rec := o.name(ctx, coords, log)
		return o.settle(ctx, gen, rec, true, log)
	}
	log.Info().Err(err).Str("city", o.opts.DefaultCity).Msg("geolocation unavailable, using default city")

	if !o.load(gen) {
		return ErrSuperseded
	}
	return o.search(ctx, gen, o.opts.DefaultCity, log)
}

// Search resolves query and, on success, makes it the current location.
func (o *Orchestrator) Search(ctx context.Context, query string) error {
	q := strings.TrimSpace(query)
	if len([]rune(q)) < minQueryLength {
		o.mutate(func(s *State) { s.Error = msgInvalidQuery })
		return &ValidationError{Msg: msgInvalidQuery}
	}

	log := o.log.With().Str("request_id", uuid.NewString()).Logger()
	gen := o.begin()
	o.load(gen)
	return o.search(ctx, gen, q, log)
}

// Refresh recomputes prayers for the current location and clock without
// touching anything else. It does nothing before a location exists.
func (o *Orchestrator) Refresh() {
	o.mu.Lock()
	if o.state.Location == nil {
		o.mu.Unlock()
		return
	}
	prayers, err := o.prayersFor(o.state.Location.Coordinates)
	if err != nil {
		o.mu.Unlock()
		o.log.Error().Err(err).Msg("refresh failed")
		return
	}
	o.state.Prayers = prayers
	snap, v := o.commitLocked()
	o.mu.Unlock()

	o.notify(snap, v)
}

// DismissError clears the error message.
func (o *Orchestrator) DismissError() {
	o.mutate(func(s *State) { s.Error = "" })
}

// Stop ends the refresh task and waits for it to exit.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	o.stopped = true
	o.cancel()
	o.mu.Unlock()

	o.wg.Wait()
}

func (o *Orchestrator) search(ctx context.Context, gen uint64, query string, log zerolog.Logger) error {
	res, err := o.opts.Geocoder.Search(ctx, query)
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("search failed")
		return o.fail(gen, "search", err)
	}

	rec := location.Record{
		CityName:    res.CityName,
		DisplayName: res.DisplayName,
		Coordinates: res.Coordinates(),
		State:       res.State,
		StateCode:   res.StateCode,
		Country:     res.Country,
	}
	if rec.DisplayName == "" {
		rec.DisplayName = rec.CityName
	}
	return o.settle(ctx, gen, rec, true, log)
}

// locate asks the device for a position within the geolocation timeout.
func (o *Orchestrator) locate(ctx context.Context) (calc.Coordinates, error) {
	if o.opts.Locator == nil {
		return calc.Coordinates{}, geo.ErrUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, o.opts.GeoTimeout)
	defer cancel()

	c, err := o.opts.Locator.Locate(ctx)
	if err != nil {
		return calc.Coordinates{}, err
	}
	return c, c.Validate()
}

// name reverse geocodes coords. A failed lookup still yields a usable record.
func (o *Orchestrator) name(ctx context.Context, coords calc.Coordinates, log zerolog.Logger) location.Record {
	res, err := o.opts.Geocoder.Reverse(ctx, coords.Latitude, coords.Longitude)
	if err != nil {
		log.Warn().Err(err).Msg("reverse geocoding failed")
		return location.Unnamed(coords)
	}

	rec := location.Record{
		CityName:    res.CityName,
		DisplayName: res.DisplayName,
		Coordinates: coords,
		State:       res.State,
		StateCode:   res.StateCode,
		Country:     res.Country,
	}
	if rec.CityName == "" {
		rec.CityName = location.CurrentLocationName
	}
	return rec
}

// settle computes prayers for rec and applies both if gen is still current.
// persist mirrors the record into the cache afterwards.
func (o *Orchestrator) settle(ctx context.Context, gen uint64, rec location.Record, persist bool, log zerolog.Logger) error {
	o.mu.Lock()
	if gen != o.gen {
		o.mu.Unlock()
		log.Debug().Str("city", rec.CityName).Msg("discarding superseded result")
		return ErrSuperseded
	}

	prayers, err := o.prayersFor(rec.Coordinates)
	if err != nil {
		o.state.IsLoading = false
		o.state.Error = msgComputeFailed
		o.settlePhaseLocked()
		snap, v := o.commitLocked()
		o.mu.Unlock()
		o.notify(snap, v)
		log.Error().Err(err).Stringer("coordinates", rec.Coordinates).Msg("prayer computation failed")
		return &CollaboratorError{Op: "compute", Err: err}
	}

	o.state.Location = &rec
	o.state.Prayers = prayers
	o.state.IsLoading = false
	o.state.Error = ""
	o.state.Phase = PhaseReady
	o.restartRefreshLocked()
	snap, v := o.commitLocked()
	o.mu.Unlock()

	o.notify(snap, v)
	log.Info().Str("city", rec.CityName).Stringer("coordinates", rec.Coordinates).Msg("location applied")

	if persist {
		o.save(ctx, gen, rec, log)
	}
	return nil
}

// save writes rec to the cache for gen. Writes never overlap: while one is
// in flight, later records queue and only the newest is written next. A
// record older than one already handed over is dropped, so a slow write
// for an earlier location cannot end up as the cached one.
func (o *Orchestrator) save(ctx context.Context, gen uint64, rec location.Record, log zerolog.Logger) {
	o.saveMu.Lock()
	if gen < o.saveGen {
		o.saveMu.Unlock()
		log.Debug().Str("city", rec.CityName).Msg("skipping stale cache write")
		return
	}
	o.saveGen = gen
	// The caller may return before a queued write runs.
	o.pending = &pendingSave{ctx: context.WithoutCancel(ctx), rec: rec, log: log}
	if o.saving {
		o.saveMu.Unlock()
		return
	}

	o.saving = true
	for o.pending != nil {
		p := o.pending
		o.pending = nil
		o.saveMu.Unlock()

		if err := o.opts.Cache.Save(p.ctx, p.rec); err != nil {
			p.log.Warn().Err(err).Msg("failed to cache location")
		}

		o.saveMu.Lock()
	}
	o.saving = false
	o.saveMu.Unlock()
}

// fail records a collaborator failure for gen.
func (o *Orchestrator) fail(gen uint64, op string, err error) error {
	o.mu.Lock()
	if gen != o.gen {
		o.mu.Unlock()
		return ErrSuperseded
	}
	o.state.IsLoading = false
	o.state.Error = userMessage(err)
	o.settlePhaseLocked()
	snap, v := o.commitLocked()
	o.mu.Unlock()

	o.notify(snap, v)
	return &CollaboratorError{Op: op, Err: err}
}

// begin registers a new resolution and returns its generation. Any
// resolution still in flight is superseded.
func (o *Orchestrator) begin() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.gen++
	return o.gen
}

// load marks gen's network lookup as in flight. It reports false, and
// changes nothing, when a newer resolution has taken over.
func (o *Orchestrator) load(gen uint64) bool {
	o.mu.Lock()
	if gen != o.gen {
		o.mu.Unlock()
		return false
	}
	o.state.IsLoading = true
	o.state.Error = ""
	if o.state.Location == nil {
		o.state.Phase = PhaseResolving
	}
	snap, v := o.commitLocked()
	o.mu.Unlock()

	o.notify(snap, v)
	return true
}

// mutate applies fn as one transition.
func (o *Orchestrator) mutate(fn func(*State)) {
	o.mu.Lock()
	fn(&o.state)
	snap, v := o.commitLocked()
	o.mu.Unlock()

	o.notify(snap, v)
}

func (o *Orchestrator) settlePhaseLocked() {
	if o.state.Location == nil {
		o.state.Phase = PhaseUnresolved
	}
}

func (o *Orchestrator) commitLocked() (State, uint64) {
	o.version++
	return o.state.clone(), o.version
}

func (o *Orchestrator) notify(s State, v uint64) {
	if o.opts.OnChange == nil {
		return
	}
	o.notifyMu.Lock()
	defer o.notifyMu.Unlock()
	if v <= o.lastNotified {
		return
	}
	o.lastNotified = v
	o.opts.OnChange(s)
}

func (o *Orchestrator) prayersFor(c calc.Coordinates) ([]prayer.Entry, error) {
	now := o.opts.Clock.Now().In(o.opts.TimeZone)
	times, err := calc.Compute(c, now, o.opts.Params)
	if err != nil {
		return nil, err
	}
	return prayer.Build(times, o.opts.TimeZone, o.opts.Clock12), nil
}

// userMessage extracts a message fit for display from a collaborator error.
func userMessage(err error) string {
	var gerr *geocode.Error
	if errors.As(err, &gerr) {
		return gerr.Msg
	}
	return msgUnexpectedError
}
