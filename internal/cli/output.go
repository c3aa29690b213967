package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/smokyabdulrahman/salahme/internal/display"
	"github.com/smokyabdulrahman/salahme/internal/orchestrator"
)

// structured reports whether --json or --yaml was requested.
func structured() bool {
	return FlagJSON || FlagYAML
}

// writeStructured encodes v as JSON or YAML depending on the output flags.
func writeStructured(w io.Writer, v any) error {
	if FlagYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return enc.Close()
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// renderState writes s in the requested output format.
func (a *app) renderState(w io.Writer, s orchestrator.State, now time.Time) error {
	s.Prayers = a.prayers(s.Prayers)
	if structured() {
		return writeStructured(w, s)
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(display.Header(s.Location, s.IsLoading))
	if s.Location != nil {
		b.WriteString("  " + display.Dim(s.Location.DisplayName) + "\n")
	}
	b.WriteString(display.Status(s.Error))
	b.WriteString("\n")
	if len(s.Prayers) > 0 {
		b.WriteString(display.Prayers(s.Prayers, now))
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
