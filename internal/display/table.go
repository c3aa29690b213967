package display

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Style selects how a table row is rendered.
type Style int

const (
	StylePlain Style = iota
	StyleMuted       // dimmed, for sunrise and qiyam
	StyleAccent      // highlighted, for the next prayer
)

// Table renders an aligned text table with optional color support.
type Table struct {
	headers []string
	rows    [][]string
	styles  []Style
}

// NewTable creates a new table with the given column headers.
func NewTable(headers []string) *Table {
	return &Table{headers: headers}
}

// AddRow appends a plain row. The number of values should match the number of headers.
func (t *Table) AddRow(values []string) {
	t.AddStyledRow(values, StylePlain)
}

// AddStyledRow appends a row rendered with style.
func (t *Table) AddStyledRow(values []string, style Style) {
	t.rows = append(t.rows, values)
	t.styles = append(t.styles, style)
}

// Render produces the formatted table string with leading indent.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if n := runewidth.StringWidth(cell); i < len(widths) && n > widths[i] {
				widths[i] = n
			}
		}
	}

	var sb strings.Builder

	sb.WriteString("  " + Bold(formatRow(t.headers, widths)) + "\n")

	// Separator row using Unicode box-drawing dashes.
	sepParts := make([]string, len(widths))
	for i, w := range widths {
		sepParts[i] = strings.Repeat("─", w)
	}
	sb.WriteString(Dim("  "+strings.Join(sepParts, "  ")) + "\n")

	for i, row := range t.rows {
		line := formatRow(row, widths)
		switch t.styles[i] {
		case StyleAccent:
			line = Accent(line)
		case StyleMuted:
			line = Gray(line)
		}
		sb.WriteString("  " + line + "\n")
	}

	return sb.String()
}

// formatRow pads each cell to its column's display width, so wide
// characters such as CJK place names still align.
func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		pad := w - runewidth.StringWidth(cell)
		if pad < 0 {
			pad = 0
		}
		parts[i] = cell + strings.Repeat(" ", pad)
	}
	return strings.Join(parts, "  ")
}

// Boldf formats and bolds a string.
func Boldf(format string, a ...any) string {
	return Bold(fmt.Sprintf(format, a...))
}
