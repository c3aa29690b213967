// Package calc computes daily prayer times from solar position.
//
// Compute is a pure function of its arguments: it never reads the wall
// clock, and identical inputs always produce identical instants.
package calc

import (
	"math"
	"time"

	"github.com/sj14/astral/pkg/astral"
)

// Times holds one day's prayer instants in UTC.
type Times struct {
	Fajr    time.Time
	Sunrise time.Time
	Dhuhr   time.Time
	Asr     time.Time
	Maghrib time.Time
	Isha    time.Time
	// Qiyam is the start of the last third of the night following Isha.
	Qiyam time.Time
}

// latitudeStep is how far the nearest-latitude fallback moves toward the
// equator on each attempt.
const latitudeStep = 0.5

// Compute returns the prayer times at c for the civil day of date in
// date's location. The time of day on date is ignored.
//
// At latitudes where the sun does not rise, set, or reach the Asr altitude
// on that day, or where the results would not be strictly increasing, the
// times are taken from the nearest latitude toward the equator where they
// are. Fajr and Isha are additionally bounded by params.HighLatitudeRule.
func Compute(c Coordinates, date time.Time, params Parameters) (Times, error) {
	if err := c.Validate(); err != nil {
		return Times{}, err
	}

	y, m, d := date.Date()
	loc := date.Location()
	today := civilDay(c, time.Date(y, m, d, 0, 0, 0, 0, time.UTC), loc, params)
	next := civilDay(c, time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC), loc, params)

	today.Qiyam = round(qiyam(today.Isha, next.Fajr), params.Rounding)
	return today, nil
}

// qiyam returns the point two thirds of the way from isha to fajr.
func qiyam(isha, fajr time.Time) time.Time {
	if !fajr.After(isha) {
		fajr = fajr.Add(24 * time.Hour)
	}
	return isha.Add(fajr.Sub(isha) * 2 / 3)
}

// civilDay solves the day whose Dhuhr falls on want's date in loc. The
// solar day is first taken as the UTC day of want; near the date line the
// zone's offset can move that noon onto a neighbouring civil day, in which
// case the UTC day is shifted back by the difference.
func civilDay(c Coordinates, want time.Time, loc *time.Location, params Parameters) Times {
	t := computeDay(c, want, params)
	if t.Dhuhr.IsZero() {
		return t
	}
	if shift := daysBetween(want, t.Dhuhr.In(loc)); shift != 0 {
		t = computeDay(c, want.AddDate(0, 0, -shift), params)
	}
	return t
}

// daysBetween returns the whole civil days from want to got's calendar date.
func daysBetween(want, got time.Time) int {
	gy, gm, gd := got.Date()
	g := time.Date(gy, gm, gd, 0, 0, 0, 0, time.UTC)
	return int(math.Round(g.Sub(want).Hours() / 24))
}

func computeDay(c Coordinates, day time.Time, params Parameters) Times {
	lat := c.Latitude
	for {
		obs := astral.Observer{Latitude: lat, Longitude: c.Longitude}
		t, ok := solveDay(obs, day, params)
		if ok || lat == 0 {
			return t
		}
		lat = towardEquator(lat)
	}
}

func towardEquator(lat float64) float64 {
	if math.Abs(lat) <= latitudeStep {
		return 0
	}
	if lat > 0 {
		return lat - latitudeStep
	}
	return lat + latitudeStep
}

// solveDay computes the six daily times for one observer on the UTC day
// starting at day. ok is false when any time is undefined or the sequence
// is not strictly increasing.
func solveDay(obs astral.Observer, day time.Time, params Parameters) (Times, bool) {
	noon := astral.Noon(obs, day)
	sunrise, err := astral.Sunrise(obs, day)
	if err != nil {
		return Times{}, false
	}
	sunset, err := astral.Sunset(obs, day)
	if err != nil {
		return Times{}, false
	}
	nextSunrise, err := astral.Sunrise(obs, day.AddDate(0, 0, 1))
	if err != nil {
		return Times{}, false
	}
	// Near the polar circles the hour-angle solution can land on the wrong
	// side of noon or a full day away from it.
	if !sunrise.Before(noon) || !sunset.After(noon) ||
		noon.Sub(sunrise) >= 12*time.Hour || sunset.Sub(noon) >= 12*time.Hour {
		return Times{}, false
	}

	elevation, ok := asrElevation(astral.Zenith(obs, noon, false), params.shadowLength())
	if !ok {
		return Times{}, false
	}
	asr, err := astral.TimeAtElevation(obs, elevation, day, astral.SunDirectionSetting)
	if err != nil || !asr.After(noon) {
		return Times{}, false
	}

	night := nextSunrise.Sub(sunset)
	if night <= 0 {
		return Times{}, false
	}
	fajrPortion, ishaPortion := params.nightPortions()

	safeFajr := sunrise.Add(-portion(night, fajrPortion))
	fajr, err := astral.Dawn(obs, day, params.Method.FajrAngle)
	if err != nil || safeFajr.After(fajr) {
		fajr = safeFajr
	}

	var isha time.Time
	if params.Method.IshaInterval > 0 {
		isha = sunset.Add(time.Duration(params.Method.IshaInterval) * time.Minute)
	} else {
		safeIsha := sunset.Add(portion(night, ishaPortion))
		isha, err = astral.Dusk(obs, day, params.Method.IshaAngle)
		if err != nil || safeIsha.Before(isha) {
			isha = safeIsha
		}
	}

	adj := params.Method.Adjustments
	t := Times{
		Fajr:    instant(fajr, adj.Fajr, params.Rounding),
		Sunrise: instant(sunrise, adj.Sunrise, params.Rounding),
		Dhuhr:   instant(noon, adj.Dhuhr, params.Rounding),
		Asr:     instant(asr, adj.Asr, params.Rounding),
		Maghrib: instant(sunset, adj.Maghrib, params.Rounding),
		Isha:    instant(isha, adj.Isha, params.Rounding),
	}
	return t, increasing(t.Fajr, t.Sunrise, t.Dhuhr, t.Asr, t.Maghrib, t.Isha)
}

// asrElevation returns the sun's elevation, in degrees, at which an
// object's shadow equals shadowLength times its height plus its noon
// shadow. noonZenith is the sun's zenith angle at transit.
func asrElevation(noonZenith, shadowLength float64) (float64, bool) {
	if math.IsNaN(noonZenith) || noonZenith >= 90 {
		return 0, false
	}
	inverse := shadowLength + math.Tan(noonZenith*math.Pi/180)
	return math.Atan(1/inverse) * 180 / math.Pi, true
}

func portion(night time.Duration, fraction float64) time.Duration {
	return time.Duration(float64(night) * fraction)
}

// instant applies a minute adjustment and rounds.
func instant(t time.Time, adjustMinutes int, r Rounding) time.Time {
	t = t.UTC().Add(time.Duration(adjustMinutes) * time.Minute)
	return round(t, r)
}

func round(t time.Time, r Rounding) time.Time {
	if r == RoundNearest {
		return t.Round(time.Minute)
	}
	return t.Truncate(time.Second)
}

func increasing(ts ...time.Time) bool {
	for i := 1; i < len(ts); i++ {
		if !ts[i].After(ts[i-1]) {
			return false
		}
	}
	return true
}
