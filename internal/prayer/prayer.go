package prayer

import (
	"fmt"
	"strings"
	"time"

	"github.com/smokyabdulrahman/salahme/internal/calc"
)

// Key identifies a prayer.
type Key string

// Prayer keys in display order.
const (
	Fajr    Key = "fajr"
	Sunrise Key = "sunrise"
	Dhuhr   Key = "dhuhr"
	Asr     Key = "asr"
	Maghrib Key = "maghrib"
	Isha    Key = "isha"
	Qiyam   Key = "qiyam"
)

// Order is the fixed display order of a prayer list.
var Order = []Key{Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha, Qiyam}

// DisplayNames maps keys to the names shown to users.
var DisplayNames = map[Key]string{
	Fajr:    "Fajr",
	Sunrise: "Sunrise",
	Dhuhr:   "Dhuhr",
	Asr:     "Asr",
	Maghrib: "Maghrib",
	Isha:    "Isha",
	Qiyam:   "Qiyam",
}

// ShortNames maps keys to single-character abbreviations.
var ShortNames = map[Key]string{
	Fajr:    "F",
	Sunrise: "S",
	Dhuhr:   "D",
	Asr:     "A",
	Maghrib: "M",
	Isha:    "I",
	Qiyam:   "Q",
}

// IsSpecial reports whether k is a non-obligatory time shown with distinct styling.
func IsSpecial(k Key) bool {
	return k == Sunrise || k == Qiyam
}

// Entry is one display-ready prayer.
type Entry struct {
	Key         Key       `json:"key" yaml:"key"`
	DisplayName string    `json:"displayName" yaml:"displayName"`
	Numeral     string    `json:"numeral" yaml:"numeral"`
	Meridiem    string    `json:"meridiem" yaml:"meridiem"`
	IsSpecial   bool      `json:"isSpecial" yaml:"isSpecial"`
	Time        time.Time `json:"time" yaml:"time"`
}

// Clock returns the displayed time, e.g. "5:30 AM" or "17:30".
func (e Entry) Clock() string {
	if e.Meridiem == "" {
		return e.Numeral
	}
	return e.Numeral + " " + e.Meridiem
}

// Build turns computed times into the ordered prayer list, formatted in loc.
// clock12 selects the 12-hour clock with a meridiem.
func Build(t calc.Times, loc *time.Location, clock12 bool) []Entry {
	instants := map[Key]time.Time{
		Fajr:    t.Fajr,
		Sunrise: t.Sunrise,
		Dhuhr:   t.Dhuhr,
		Asr:     t.Asr,
		Maghrib: t.Maghrib,
		Isha:    t.Isha,
		Qiyam:   t.Qiyam,
	}

	entries := make([]Entry, 0, len(Order))
	for _, k := range Order {
		at := instants[k]
		numeral, meridiem := FormatClock(at, loc, clock12)
		entries = append(entries, Entry{
			Key:         k,
			DisplayName: DisplayNames[k],
			Numeral:     numeral,
			Meridiem:    meridiem,
			IsSpecial:   IsSpecial(k),
			Time:        at,
		})
	}
	return entries
}

// NextPrayer finds the next upcoming entry relative to now.
// It returns nil when every entry has passed.
func NextPrayer(entries []Entry, now time.Time) *Entry {
	for i := range entries {
		if entries[i].Time.After(now) {
			return &entries[i]
		}
	}
	return nil
}

// CurrentPrayer returns the most recent entry at or before now, or nil.
func CurrentPrayer(entries []Entry, now time.Time) *Entry {
	var cur *Entry
	for i := range entries {
		if !entries[i].Time.After(now) {
			cur = &entries[i]
		}
	}
	return cur
}

// TimeRemaining returns the duration until the given entry.
func TimeRemaining(e Entry, now time.Time) time.Duration {
	return e.Time.Sub(now)
}

// FormatRemaining formats a duration as "Xh Ym" or "Ym" if less than an hour.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		return "0m"
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60

	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// ParseKey resolves a prayer name case-insensitively.
func ParseKey(name string) (Key, error) {
	k := Key(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := DisplayNames[k]; !ok {
		return "", fmt.Errorf("unknown prayer name: %s", name)
	}
	return k, nil
}
