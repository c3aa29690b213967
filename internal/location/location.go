// Package location holds the resolved location record shared by the cache,
// the geocoder and the orchestrator.
package location

import (
	"fmt"
	"strings"

	"github.com/smokyabdulrahman/salahme/internal/calc"
)

// CurrentLocationName is the city name used when a device fix cannot be
// named by reverse geocoding.
const CurrentLocationName = "Current Location"

// Record is a resolved, named location.
type Record struct {
	CityName    string           `json:"cityName" yaml:"cityName"`
	DisplayName string           `json:"displayName" yaml:"displayName"`
	Coordinates calc.Coordinates `json:"coordinates" yaml:"coordinates"`
	State       string           `json:"state,omitempty" yaml:"state,omitempty"`
	StateCode   string           `json:"stateCode,omitempty" yaml:"stateCode,omitempty"`
	Country     string           `json:"country,omitempty" yaml:"country,omitempty"`
}

// Unnamed builds the fallback record for a fix that could not be reverse
// geocoded. The display name is the coordinates to two decimals.
func Unnamed(c calc.Coordinates) Record {
	return Record{
		CityName:    CurrentLocationName,
		DisplayName: fmt.Sprintf("%.2f, %.2f", c.Latitude, c.Longitude),
		Coordinates: c,
	}
}

// ShortName returns a compact label such as "Jaipur, RJ".
//
// With a city name the most specific qualifier wins: state code, then state,
// then country. Without one, the first two segments of the display name are
// used.
func (r Record) ShortName() string {
	if r.CityName != "" {
		switch {
		case r.StateCode != "":
			return r.CityName + ", " + r.StateCode
		case r.State != "":
			return r.CityName + ", " + r.State
		case r.Country != "":
			return r.CityName + ", " + r.Country
		}
		return r.CityName
	}

	parts := strings.Split(r.DisplayName, ",")
	if len(parts) >= 2 {
		return strings.TrimSpace(parts[0]) + ", " + strings.TrimSpace(parts[1])
	}
	return r.DisplayName
}

// Validate checks the record carries usable coordinates.
func (r Record) Validate() error {
	if err := r.Coordinates.Validate(); err != nil {
		return fmt.Errorf("location %q: %w", r.CityName, err)
	}
	return nil
}
