package prayer

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// Go layouts for the two clock styles.
const (
	Layout12h = "3:04 PM"
	Layout24h = "15:04"
)

// FormatClock renders t in loc and splits it into numeral and meridiem,
// e.g. ("5:30", "AM"). With clock12 false the meridiem is empty.
func FormatClock(t time.Time, loc *time.Location, clock12 bool) (numeral, meridiem string) {
	if loc == nil {
		loc = time.Local
	}
	if !clock12 {
		return t.In(loc).Format(Layout24h), ""
	}
	s := t.In(loc).Format(Layout12h)
	if idx := strings.Index(s, " "); idx != -1 {
		return s[:idx], s[idx+1:]
	}
	return s, ""
}

// ParseClock parses a displayed numeral and meridiem back into a time on
// the given day in loc. An empty meridiem means a 24-hour numeral.
func ParseClock(numeral, meridiem string, day time.Time, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	layout, value := Layout24h, strings.TrimSpace(numeral)
	if meridiem != "" {
		layout, value = Layout12h, value+" "+strings.ToUpper(strings.TrimSpace(meridiem))
	}

	clock, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time format %q: %w", value, err)
	}

	y, m, d := day.In(loc).Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, loc), nil
}

// Format constants for display modes.
const (
	FormatTimeRemaining      = "time-remaining"
	FormatNextPrayerTime     = "next-prayer-time"
	FormatNameAndTime        = "name-and-time"
	FormatNameAndRemaining   = "name-and-remaining"
	FormatShortNameAndTime   = "short-name-and-time"
	FormatShortNameAndRemain = "short-name-and-remaining"
	FormatFull               = "full"
)

// FormatData is the data passed to custom Go templates.
type FormatData struct {
	Name      string // Display name, e.g. "Asr"
	ShortName string // Abbreviated name, e.g. "A"
	Time      string // Displayed time, e.g. "3:02 PM"
	Remaining string // Time remaining, e.g. "2h 15m"
	Hours     int    // Whole hours remaining
	Minutes   int    // Remaining minutes after hours
	Special   bool   // Sunrise or Qiyam
}

// FormatOutput formats an entry for single-line display according to mode.
//
// If mode contains "{{", it is treated as a custom Go template string.
// Available template fields: .Name, .ShortName, .Time, .Remaining, .Hours, .Minutes, .Special
//
// Example: "{{.Name}} in {{.Remaining}}" -> "Asr in 2h 15m"
func FormatOutput(e Entry, now time.Time, mode string) string {
	d := TimeRemaining(e, now)
	remaining := FormatRemaining(d)
	timeStr := e.Clock()
	short := ShortNames[e.Key]

	if strings.Contains(mode, "{{") {
		return formatCustom(mode, FormatData{
			Name:      e.DisplayName,
			ShortName: short,
			Time:      timeStr,
			Remaining: remaining,
			Hours:     int(d.Hours()),
			Minutes:   int(d.Minutes()) % 60,
			Special:   e.IsSpecial,
		})
	}

	switch mode {
	case FormatTimeRemaining:
		return remaining
	case FormatNextPrayerTime:
		return timeStr
	case FormatNameAndRemaining:
		return fmt.Sprintf("%s %s", e.DisplayName, remaining)
	case FormatShortNameAndTime:
		return fmt.Sprintf("%s %s", short, timeStr)
	case FormatShortNameAndRemain:
		return fmt.Sprintf("%s %s", short, remaining)
	case FormatFull:
		return fmt.Sprintf("%s %s (%s)", e.DisplayName, timeStr, remaining)
	default:
		return fmt.Sprintf("%s %s", e.DisplayName, timeStr)
	}
}

// formatCustom executes a user-provided Go template string against the FormatData.
func formatCustom(tmpl string, data FormatData) string {
	t, err := template.New("custom").Parse(tmpl)
	if err != nil {
		return fmt.Sprintf("template-err: %v", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Sprintf("template-err: %v", err)
	}

	return buf.String()
}
