package prayer

import (
	"strings"
	"testing"
	"time"
)

// helper: a fixed entry and "now" time for format tests.
func formatTestEntry() (Entry, time.Time) {
	at := time.Date(2026, 2, 28, 15, 2, 0, 0, time.UTC)
	now := time.Date(2026, 2, 28, 12, 47, 0, 0, time.UTC)
	return Entry{Key: Asr, DisplayName: "Asr", Numeral: "3:02", Meridiem: "PM", Time: at}, now
}

// ---------------------------------------------------------------------------
// FormatClock / ParseClock
// ---------------------------------------------------------------------------

func TestFormatClock(t *testing.T) {
	tests := []struct {
		name     string
		hour     int
		min      int
		clock12  bool
		numeral  string
		meridiem string
	}{
		{"morning", 5, 30, true, "5:30", "AM"},
		{"noon", 12, 0, true, "12:00", "PM"},
		{"midnight", 0, 5, true, "12:05", "AM"},
		{"evening", 19, 45, true, "7:45", "PM"},
		{"24h evening", 19, 45, false, "19:45", ""},
		{"24h morning", 5, 3, false, "05:03", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := time.Date(2026, 2, 28, tt.hour, tt.min, 0, 0, time.UTC)
			n, m := FormatClock(at, time.UTC, tt.clock12)
			if n != tt.numeral || m != tt.meridiem {
				t.Errorf("FormatClock = %q %q, want %q %q", n, m, tt.numeral, tt.meridiem)
			}
		})
	}
}

func TestFormatClock_RoundTrip(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	day := time.Date(2026, 6, 15, 0, 0, 0, 0, loc)

	for _, clock12 := range []bool{true, false} {
		for mins := 0; mins < 24*60; mins += 7 {
			src := day.Add(time.Duration(mins) * time.Minute)
			n, m := FormatClock(src, loc, clock12)

			got, err := ParseClock(n, m, day, loc)
			if err != nil {
				t.Fatalf("ParseClock(%q, %q): %v", n, m, err)
			}
			if got.Hour() != src.Hour() || got.Minute() != src.Minute() {
				t.Errorf("round trip %s -> %q %q -> %s", src.Format("15:04"), n, m, got.Format("15:04"))
			}
			if got.Location() != loc {
				t.Errorf("expected location %v, got %v", loc, got.Location())
			}
		}
	}
}

func TestParseClock_Invalid(t *testing.T) {
	day := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		numeral  string
		meridiem string
	}{
		{"empty", "", ""},
		{"bad numeral", "ab:cd", "AM"},
		{"missing minute", "15:", ""},
		{"bad meridiem", "5:30", "XM"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseClock(tt.numeral, tt.meridiem, day, time.UTC); err == nil {
				t.Fatalf("ParseClock(%q, %q) expected error, got nil", tt.numeral, tt.meridiem)
			}
		})
	}
}

func TestParseClock_LowercaseMeridiem(t *testing.T) {
	day := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	got, err := ParseClock("7:10", "pm", day, time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Hour() != 19 || got.Minute() != 10 {
		t.Errorf("ParseClock = %s, want 19:10", got.Format("15:04"))
	}
}

// ---------------------------------------------------------------------------
// FormatOutput
// ---------------------------------------------------------------------------

func TestFormatOutput_AllBuiltinModes(t *testing.T) {
	e, now := formatTestEntry()

	tests := []struct {
		mode string
		want string
	}{
		{FormatTimeRemaining, "2h 15m"},
		{FormatNextPrayerTime, "3:02 PM"},
		{FormatNameAndTime, "Asr 3:02 PM"},
		{FormatNameAndRemaining, "Asr 2h 15m"},
		{FormatShortNameAndTime, "A 3:02 PM"},
		{FormatShortNameAndRemain, "A 2h 15m"},
		{FormatFull, "Asr 3:02 PM (2h 15m)"},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			got := FormatOutput(e, now, tt.mode)
			if got != tt.want {
				t.Errorf("FormatOutput(%q) = %q, want %q", tt.mode, got, tt.want)
			}
		})
	}
}

func TestFormatOutput_UnknownModeDefaultsToNameAndTime(t *testing.T) {
	e, now := formatTestEntry()

	got := FormatOutput(e, now, "nonexistent-format")
	if got != "Asr 3:02 PM" {
		t.Errorf("unknown mode = %q, want %q", got, "Asr 3:02 PM")
	}
}

func TestFormatOutput_CustomTemplate(t *testing.T) {
	e, now := formatTestEntry()

	tests := []struct {
		name string
		tmpl string
		want string
	}{
		{"name and remaining", "{{.Name}} in {{.Remaining}}", "Asr in 2h 15m"},
		{"short name and time", "{{.ShortName}} @ {{.Time}}", "A @ 3:02 PM"},
		{"hours and minutes fields", "{{.Hours}}h {{.Minutes}}m until {{.Name}}", "2h 15m until Asr"},
		{"special flag", "{{if .Special}}*{{end}}{{.Name}}", "Asr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatOutput(e, now, tt.tmpl)
			if got != tt.want {
				t.Errorf("custom template %q = %q, want %q", tt.tmpl, got, tt.want)
			}
		})
	}
}

func TestFormatOutput_InvalidTemplate(t *testing.T) {
	e, now := formatTestEntry()

	got := FormatOutput(e, now, "{{.Invalid")
	if !strings.HasPrefix(got, "template-err:") {
		t.Errorf("invalid template should return 'template-err:...', got %q", got)
	}
}

func TestFormatOutput_TemplateBadField(t *testing.T) {
	e, now := formatTestEntry()

	got := FormatOutput(e, now, "{{.NonExistent}}")
	if !strings.HasPrefix(got, "template-err:") {
		t.Errorf("bad field template should return 'template-err:...', got %q", got)
	}
}

func TestFormatOutput_ZeroRemaining(t *testing.T) {
	e, _ := formatTestEntry()

	got := FormatOutput(e, e.Time, FormatTimeRemaining)
	if got != "0m" {
		t.Errorf("zero remaining = %q, want %q", got, "0m")
	}
}
