package display

import (
	"strings"
	"time"

	"github.com/smokyabdulrahman/salahme/internal/location"
	"github.com/smokyabdulrahman/salahme/internal/prayer"
)

// Prayers renders entries as a table. The next entry after now is accented
// and carries a countdown; sunrise and qiyam are muted.
func Prayers(entries []prayer.Entry, now time.Time) string {
	tbl := NewTable([]string{"Prayer", "Time", "In"})
	next := prayer.NextPrayer(entries, now)

	for _, e := range entries {
		style, remaining := StylePlain, ""
		if e.IsSpecial {
			style = StyleMuted
		}
		if next != nil && next.Key == e.Key {
			style = StyleAccent
			remaining = prayer.FormatRemaining(prayer.TimeRemaining(e, now))
		}
		tbl.AddStyledRow([]string{e.DisplayName, e.Clock(), remaining}, style)
	}
	return tbl.Render()
}

// Header renders the location line.
func Header(rec *location.Record, loading bool) string {
	name := "SELECT LOCATION"
	if rec != nil {
		name = strings.ToUpper(rec.ShortName())
	}

	line := "  " + Boldf("%s", name)
	if loading {
		line += " " + Yellow("(resolving...)")
	}
	return line + "\n"
}

// Status renders an error message, or nothing when msg is empty.
func Status(msg string) string {
	if msg == "" {
		return ""
	}
	return "  " + Red(msg) + "\n"
}
