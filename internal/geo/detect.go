// Package geo supplies the device position used when no location has been
// chosen yet.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/smokyabdulrahman/salahme/internal/calc"
)

const (
	// DefaultTimeout bounds a single position lookup.
	DefaultTimeout = 10 * time.Second
	// DefaultMaxAge is how long a previous fix may be reused.
	DefaultMaxAge = 5 * time.Minute
)

// ErrUnavailable is returned when no position can be obtained.
var ErrUnavailable = errors.New("geolocation unavailable")

// Locator returns the current device position.
type Locator interface {
	Locate(ctx context.Context) (calc.Coordinates, error)
}

// ipAPIResponse maps the response from ip-api.com.
type ipAPIResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// geoAPIURL is the geolocation API endpoint. It is a variable (not a constant)
// so that tests can override it with an httptest server URL.
var geoAPIURL = "http://ip-api.com/json/?fields=status,message,lat,lon"

// IPLocator estimates the position from the public IP address using
// ip-api.com, a free service that requires no API key.
type IPLocator struct {
	httpClient *http.Client
	Timeout    time.Duration
	MaxAge     time.Duration

	now func() time.Time

	mu      sync.Mutex
	last    calc.Coordinates
	lastAt  time.Time
	hasLast bool
}

// NewIPLocator creates an IPLocator with the default timeout and fix age.
func NewIPLocator() *IPLocator {
	return &IPLocator{
		httpClient: &http.Client{},
		Timeout:    DefaultTimeout,
		MaxAge:     DefaultMaxAge,
		now:        time.Now,
	}
}

// Locate returns a recent fix when one exists, otherwise queries ip-api.com.
func (l *IPLocator) Locate(ctx context.Context) (calc.Coordinates, error) {
	l.mu.Lock()
	if l.hasLast && l.now().Sub(l.lastAt) <= l.MaxAge {
		c := l.last
		l.mu.Unlock()
		return c, nil
	}
	l.mu.Unlock()

	c, err := l.fetch(ctx)
	if err != nil {
		return calc.Coordinates{}, err
	}

	l.mu.Lock()
	l.last, l.lastAt, l.hasLast = c, l.now(), true
	l.mu.Unlock()
	return c, nil
}

func (l *IPLocator) fetch(ctx context.Context) (calc.Coordinates, error) {
	ctx, cancel := context.WithTimeout(ctx, l.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, geoAPIURL, nil)
	if err != nil {
		return calc.Coordinates{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return calc.Coordinates{}, fmt.Errorf("%w: request failed: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return calc.Coordinates{}, fmt.Errorf("%w: API returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var result ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return calc.Coordinates{}, fmt.Errorf("%w: failed to decode response: %v", ErrUnavailable, err)
	}

	if result.Status != "success" {
		return calc.Coordinates{}, fmt.Errorf("%w: %s", ErrUnavailable, result.Message)
	}

	c := calc.Coordinates{Latitude: result.Lat, Longitude: result.Lon}
	if err := c.Validate(); err != nil {
		return calc.Coordinates{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return c, nil
}

// StaticLocator always reports a configured position.
type StaticLocator struct {
	Coordinates calc.Coordinates
}

func (s StaticLocator) Locate(context.Context) (calc.Coordinates, error) {
	if err := s.Coordinates.Validate(); err != nil {
		return calc.Coordinates{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return s.Coordinates, nil
}

// DisabledLocator is used when geolocation is turned off.
type DisabledLocator struct{}

func (DisabledLocator) Locate(context.Context) (calc.Coordinates, error) {
	return calc.Coordinates{}, fmt.Errorf("%w: disabled", ErrUnavailable)
}
