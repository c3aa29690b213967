package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salahme/internal/orchestrator"
)

func runToday(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	// Cached location first, then the device position, then the default city.
	startErr := a.orch.Start(cmd.Context())
	s := a.orch.State()

	if err := a.renderState(cmd.OutOrStdout(), s, time.Now()); err != nil {
		return err
	}
	if s.Location == nil {
		return unresolved(s, startErr)
	}
	return nil
}

// unresolved reports why no location could be applied.
func unresolved(s orchestrator.State, err error) error {
	if err == nil {
		err = errors.New(s.Error)
	}
	return fmt.Errorf("could not resolve a location: %w", err)
}
