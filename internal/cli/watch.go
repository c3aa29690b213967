package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salahme/internal/display"
	"github.com/smokyabdulrahman/salahme/internal/orchestrator"
)

// Commands understood on stdin by watch. Any other line is a city search.
const (
	cmdDismiss = ":dismiss"
	cmdRefresh = ":refresh"
	cmdQuit    = ":quit"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep today's schedule on screen and up to date",
		Long: `Show today's schedule and redraw it whenever it changes. The list is
recomputed on the refresh interval, so the countdown and the day roll over.

Type a city name and press enter to switch location. Other input:
  :dismiss   clear the error message
  :refresh   recompute now
  :quit      exit (as does Ctrl-D or Ctrl-C)`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
}

// screen serialises redraws coming from the orchestrator.
type screen struct {
	mu    sync.Mutex
	w     io.Writer
	clear bool
	app   *app
}

func (s *screen) draw(st orchestrator.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.clear {
		io.WriteString(s.w, "\033[H\033[2J")
	}
	if err := s.app.renderState(s.w, st, time.Now()); err != nil {
		s.app.log.Error().Err(err).Msg("render failed")
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scr := &screen{
		w:     cmd.OutOrStdout(),
		clear: display.Enabled() && !structured(),
	}
	a, err := newApp(cmd, scr.draw)
	if err != nil {
		return err
	}
	scr.app = a
	defer a.Close()

	if err := a.orch.Start(ctx); err != nil && !errors.Is(err, orchestrator.ErrSuperseded) {
		a.log.Warn().Err(err).Msg("initial resolution failed")
	}

	lines := readLines(ctx, cmd.InOrStdin())
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := handleLine(ctx, a, line); quit {
				return nil
			}
		}
	}
}

// handleLine applies one line of input and reports whether to exit.
func handleLine(ctx context.Context, a *app, line string) bool {
	switch line = strings.TrimSpace(line); line {
	case "":
	case cmdQuit:
		return true
	case cmdDismiss:
		a.orch.DismissError()
	case cmdRefresh:
		a.orch.Refresh()
	default:
		// Failures are already in the state and on screen.
		if err := a.orch.Search(ctx, line); err != nil {
			a.log.Debug().Err(err).Str("query", line).Msg("search failed")
		}
	}
	return false
}

// readLines streams lines from r until EOF or ctx ends.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case ch <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := sc.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: reading input: %v\n", err)
		}
	}()
	return ch
}
