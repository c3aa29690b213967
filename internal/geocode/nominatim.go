// Package geocode resolves city names to coordinates and coordinates to
// place names using the OpenStreetMap Nominatim API.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/smokyabdulrahman/salahme/internal/calc"
)

const (
	DefaultBaseURL   = "https://nominatim.openstreetmap.org"
	DefaultUserAgent = "salahme/1.0 (prayer times CLI)"

	// minQueryLength is the shortest search accepted.
	minQueryLength = 2
)

// Result is a geocoded place.
type Result struct {
	Latitude    float64
	Longitude   float64
	DisplayName string
	CityName    string
	State       string
	StateCode   string
	Country     string
}

// Coordinates returns the result's position.
func (r Result) Coordinates() calc.Coordinates {
	return calc.Coordinates{Latitude: r.Latitude, Longitude: r.Longitude}
}

// address is the subset of Nominatim's addressdetails we read.
type address struct {
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	Hamlet       string `json:"hamlet"`
	Municipality string `json:"municipality"`
	State        string `json:"state"`
	ISOLevel4    string `json:"ISO3166-2-lvl4"`
	Country      string `json:"country"`
}

type place struct {
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	DisplayName string  `json:"display_name"`
	Address     address `json:"address"`
}

// Client talks to a Nominatim server.
type Client struct {
	httpClient *http.Client
	// BaseURL is the server root. Defaults to the public OSM instance.
	// Exported for testing with httptest.
	BaseURL   string
	UserAgent string
	// Limiter spaces requests. The public instance allows one per second.
	Limiter *rate.Limiter
}

// NewClient creates a client for the public Nominatim instance.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		BaseURL:   DefaultBaseURL,
		UserAgent: DefaultUserAgent,
		Limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Search resolves a free-text city query to its best match.
func (c *Client) Search(ctx context.Context, query string) (*Result, error) {
	q := strings.TrimSpace(query)
	if len([]rune(q)) < minQueryLength {
		return nil, newError(ErrInvalidQuery, nil, "Please enter a valid city name")
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("addressdetails", "1")

	var places []place
	if err := c.get(ctx, "/search", params, &places); err != nil {
		return nil, newError(ErrUnavailable, err, "Failed to connect to geocoding service.")
	}
	if len(places) == 0 {
		return nil, newError(ErrNotFound, nil, "Location %q not found.", q)
	}

	p := places[0]
	lat, errLat := strconv.ParseFloat(p.Lat, 64)
	lon, errLon := strconv.ParseFloat(p.Lon, 64)
	if errLat != nil || errLon != nil {
		return nil, newError(ErrInvalidCoordinates, nil, "Invalid coordinates from geocoding service.")
	}
	if err := (calc.Coordinates{Latitude: lat, Longitude: lon}).Validate(); err != nil {
		return nil, newError(ErrInvalidCoordinates, err, "Invalid coordinates from geocoding service.")
	}

	r := parseAddress(p.Address, q)
	r.Latitude, r.Longitude = lat, lon
	r.DisplayName = p.DisplayName
	return &r, nil
}

// Reverse names the place at the given coordinates. The returned result
// keeps the requested coordinates.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (*Result, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("format", "json")
	params.Set("addressdetails", "1")

	var p place
	if err := c.get(ctx, "/reverse", params, &p); err != nil {
		return nil, newError(ErrUnavailable, err, "Failed to get location name.")
	}
	if p.DisplayName == "" {
		return nil, newError(ErrNotFound, nil, "Could not determine location.")
	}

	first, _, _ := strings.Cut(p.DisplayName, ",")
	r := parseAddress(p.Address, strings.TrimSpace(first))
	r.Latitude, r.Longitude = lat, lon
	r.DisplayName = p.DisplayName
	return &r, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	reqURL := fmt.Sprintf("%s%s?%s", strings.TrimRight(c.BaseURL, "/"), path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("geocoding API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode geocoding response: %w", err)
	}
	return nil
}

// parseAddress picks the most specific settlement name and shortens the
// ISO 3166-2 code, e.g. "PK-SD" to "SD".
func parseAddress(a address, fallbackCity string) Result {
	city := firstNonEmpty(a.City, a.Town, a.Village, a.Hamlet, a.Municipality, fallbackCity)

	code := a.ISOLevel4
	if _, after, ok := strings.Cut(code, "-"); ok {
		code = after
	}

	return Result{
		CityName:  city,
		State:     a.State,
		StateCode: code,
		Country:   a.Country,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
