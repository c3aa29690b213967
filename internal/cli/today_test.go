package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smokyabdulrahman/salahme/internal/calc"
	"github.com/smokyabdulrahman/salahme/internal/config"
	"github.com/smokyabdulrahman/salahme/internal/display"
	"github.com/smokyabdulrahman/salahme/internal/geo"
	"github.com/smokyabdulrahman/salahme/internal/location"
	"github.com/smokyabdulrahman/salahme/internal/orchestrator"
	"github.com/smokyabdulrahman/salahme/internal/prayer"
)

var karachi = calc.Coordinates{Latitude: 24.8607, Longitude: 67.0011}

func sampleEntries(t *testing.T) []prayer.Entry {
	t.Helper()
	times, err := calc.Compute(karachi, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), calc.DefaultParameters())
	require.NoError(t, err)
	return prayer.Build(times, time.UTC, true)
}

func TestParsePrayers(t *testing.T) {
	tests := []struct {
		in      string
		want    []prayer.Key
		wantErr bool
	}{
		{"", nil, false},
		{"   ", nil, false},
		{"fajr", []prayer.Key{prayer.Fajr}, false},
		{"Fajr, Isha ,QIYAM", []prayer.Key{prayer.Fajr, prayer.Isha, prayer.Qiyam}, false},
		{"fajr,tahajjud", nil, true},
		{"fajr,", nil, true},
	}
	for _, tt := range tests {
		got, err := parsePrayers(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "parsePrayers(%q)", tt.in)
			continue
		}
		require.NoError(t, err, "parsePrayers(%q)", tt.in)
		assert.Equal(t, tt.want, got, "parsePrayers(%q)", tt.in)
	}
}

func TestAppPrayers_Filter(t *testing.T) {
	entries := sampleEntries(t)

	all := (&app{}).prayers(entries)
	assert.Len(t, all, len(prayer.Order))

	// Output follows the day's order, not the filter's.
	a := &app{filter: []prayer.Key{prayer.Isha, prayer.Fajr}}
	got := a.prayers(entries)
	require.Len(t, got, 2)
	assert.Equal(t, prayer.Fajr, got[0].Key)
	assert.Equal(t, prayer.Isha, got[1].Key)
}

func TestLocatorFor(t *testing.T) {
	lat, lon := 31.5204, 74.3587

	tests := []struct {
		name string
		cfg  config.Config
		want any
	}{
		{"coordinates", config.Config{Latitude: &lat, Longitude: &lon, Geolocation: config.GeolocationOff}, geo.StaticLocator{}},
		{"latitude only", config.Config{Latitude: &lat, Geolocation: config.GeolocationOff}, geo.DisabledLocator{}},
		{"off", config.Config{Geolocation: config.GeolocationOff}, geo.DisabledLocator{}},
		{"ip", config.Config{Geolocation: config.GeolocationIP}, &geo.IPLocator{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.IsType(t, tt.want, locatorFor(tt.cfg))
		})
	}

	static := locatorFor(config.Config{Latitude: &lat, Longitude: &lon}).(geo.StaticLocator)
	assert.Equal(t, calc.Coordinates{Latitude: lat, Longitude: lon}, static.Coordinates)
}

func TestFirstTomorrow(t *testing.T) {
	a := &app{
		params:  calc.DefaultParameters(),
		tz:      time.UTC,
		clock12: true,
		filter:  []prayer.Key{prayer.Fajr},
	}
	now := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)

	e, err := a.firstTomorrow(karachi, now)
	require.NoError(t, err)
	assert.Equal(t, prayer.Fajr, e.Key)
	assert.True(t, e.Time.After(now), "tomorrow's fajr %v should be after %v", e.Time, now)
	assert.Less(t, e.Time.Sub(now), 36*time.Hour)
	assert.NotEmpty(t, e.Meridiem)
}

func TestFirstTomorrow_InvalidCoordinates(t *testing.T) {
	a := &app{params: calc.DefaultParameters(), tz: time.UTC}

	_, err := a.firstTomorrow(calc.Coordinates{Latitude: 95}, time.Now())
	assert.Error(t, err)
}

func TestUnresolved(t *testing.T) {
	cause := errors.New("search: boom")
	err := unresolved(orchestrator.State{}, cause)
	assert.ErrorIs(t, err, cause)

	err = unresolved(orchestrator.State{Error: "An unexpected error occurred."}, nil)
	assert.EqualError(t, err, "could not resolve a location: An unexpected error occurred.")
}

func TestRenderState_Text(t *testing.T) {
	display.SetEnabled(false)
	FlagJSON, FlagYAML = false, false

	entries := sampleEntries(t)
	a := &app{filter: []prayer.Key{prayer.Fajr, prayer.Dhuhr}}
	s := orchestrator.State{
		Location: &location.Record{CityName: "Karachi", DisplayName: "Karachi, Sindh, Pakistan", StateCode: "SD", Coordinates: karachi},
		Prayers:  entries,
		Error:    "Location \"Atlantis\" not found.",
		Phase:    orchestrator.PhaseReady,
	}

	var buf bytes.Buffer
	require.NoError(t, a.renderState(&buf, s, entries[0].Time.Add(-time.Hour)))
	out := buf.String()

	assert.Contains(t, out, "KARACHI, SD")
	assert.Contains(t, out, "Karachi, Sindh, Pakistan")
	assert.Contains(t, out, `Location "Atlantis" not found.`)
	assert.Contains(t, out, "Fajr")
	assert.Contains(t, out, "Dhuhr")
	assert.NotContains(t, out, "Maghrib")
	assert.NotContains(t, out, "(resolving...)")
}

func TestRenderState_NoLocation(t *testing.T) {
	display.SetEnabled(false)
	FlagJSON, FlagYAML = false, false

	var buf bytes.Buffer
	require.NoError(t, (&app{}).renderState(&buf, orchestrator.State{IsLoading: true, Phase: orchestrator.PhaseResolving}, time.Now()))

	out := buf.String()
	assert.Contains(t, out, "SELECT LOCATION (resolving...)")
	assert.NotContains(t, out, "Prayer")
}

func TestHandleLine_Quit(t *testing.T) {
	assert.True(t, handleLine(context.Background(), nil, " :quit "))
	assert.False(t, handleLine(context.Background(), nil, "   "))
}

func TestReadLines(t *testing.T) {
	ch := readLines(context.Background(), strings.NewReader("a\n\nb"))

	var got []string
	for l := range ch {
		got = append(got, l)
	}
	assert.Equal(t, []string{"a", "", "b"}, got)
}
