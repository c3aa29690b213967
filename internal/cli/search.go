package cli

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <city>",
		Short: "Find a city and make it the current location",
		Long:  "Look up a city by name, save it as the current location and show today's schedule there.",
		Example: `  salahme search Lahore
  salahme search "New York"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearch,
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.orch.Search(cmd.Context(), strings.Join(args, " ")); err != nil {
		// The state carries the message meant for the user.
		if msg := a.orch.State().Error; msg != "" {
			return errors.New(msg)
		}
		return err
	}

	return a.renderState(cmd.OutOrStdout(), a.orch.State(), time.Now())
}
