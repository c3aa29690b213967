package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLocationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "location",
		Short: "Show the saved location",
		Args:  cobra.NoArgs,
		RunE:  runLocation,
	}
}

func runLocation(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	rec, ok := a.cache.Load(cmd.Context())
	if !ok {
		if structured() {
			return writeStructured(out, nil)
		}
		fmt.Fprintln(out, "No saved location. Use 'salahme search <city>' to set one.")
		return nil
	}

	if structured() {
		return writeStructured(out, rec)
	}

	fmt.Fprintf(out, "  %-14s %s\n", "name", rec.ShortName())
	fmt.Fprintf(out, "  %-14s %s\n", "display", rec.DisplayName)
	fmt.Fprintf(out, "  %-14s %s\n", "coordinates", rec.Coordinates)
	if rec.State != "" {
		fmt.Fprintf(out, "  %-14s %s\n", "state", rec.State)
	}
	if rec.Country != "" {
		fmt.Fprintf(out, "  %-14s %s\n", "country", rec.Country)
	}
	return nil
}
