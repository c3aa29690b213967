package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salahme/internal/calc"
	"github.com/smokyabdulrahman/salahme/internal/location"
	"github.com/smokyabdulrahman/salahme/internal/prayer"
)

var (
	flagFormat  string
	flagPrayers string
)

func newNextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the next prayer with countdown",
		Long:  "Display the next upcoming prayer time with a countdown.\nThe single-line output suits status bars such as tmux.",
		Args:  cobra.NoArgs,
		RunE:  runNext,
	}

	cmd.Flags().StringVar(&flagFormat, "format", prayer.FormatFull, "Display format: time-remaining, next-prayer-time, name-and-time, name-and-remaining, short-name-and-time, short-name-and-remaining, full, or a custom Go template")
	cmd.Flags().StringVar(&flagPrayers, "prayers", "", "Comma-separated list of prayers to track (overrides config)")

	return cmd
}

// nextJSON is the structured output of the next command.
type nextJSON struct {
	Prayer    string    `json:"prayer" yaml:"prayer"`
	Time      string    `json:"time" yaml:"time"`
	At        time.Time `json:"at" yaml:"at"`
	Remaining string    `json:"remaining" yaml:"remaining"`
	Location  string    `json:"location" yaml:"location"`
}

func runNext(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	// Priority: --prayers flag > config > all.
	if cmd.Flags().Changed("prayers") {
		if a.filter, err = parsePrayers(flagPrayers); err != nil {
			return err
		}
	}

	startErr := a.orch.Start(cmd.Context())
	s := a.orch.State()
	if s.Location == nil {
		return unresolved(s, startErr)
	}

	now := time.Now()
	next := prayer.NextPrayer(a.prayers(s.Prayers), now)

	// Past the last prayer of the day: roll over to tomorrow's first.
	if next == nil {
		next, err = a.firstTomorrow(s.Location.Coordinates, now)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if structured() {
		return writeStructured(out, nextJSON{
			Prayer:    string(next.Key),
			Time:      next.Clock(),
			At:        next.Time,
			Remaining: prayer.FormatRemaining(prayer.TimeRemaining(*next, now)),
			Location:  shortName(s.Location),
		})
	}

	fmt.Fprint(out, prayer.FormatOutput(*next, now, flagFormat))
	return nil
}

// firstTomorrow computes the first tracked prayer of the day after now.
func (a *app) firstTomorrow(c calc.Coordinates, now time.Time) (*prayer.Entry, error) {
	times, err := calc.Compute(c, now.In(a.tz).AddDate(0, 0, 1), a.params)
	if err != nil {
		return nil, fmt.Errorf("failed to compute tomorrow's times: %w", err)
	}
	entries := a.prayers(prayer.Build(times, a.tz, a.clock12))
	if len(entries) == 0 {
		return nil, fmt.Errorf("could not determine next prayer")
	}
	return &entries[0], nil
}

func shortName(rec *location.Record) string {
	if rec == nil {
		return ""
	}
	return rec.ShortName()
}
