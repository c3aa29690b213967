// Package logging sets up zerolog for the CLI: human-readable output on
// stderr, or JSON lines in a rotated file.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// DefaultLevel keeps the terminal quiet unless something goes wrong.
const DefaultLevel = "warn"

// Options selects level and destination.
type Options struct {
	Level string    // trace, debug, info, warn, error, disabled
	File  string    // rotate JSON logs here when set
	Out   io.Writer // console destination, stderr when nil
}

// New builds a logger and installs it as the global zerolog logger.
// The returned closer releases the log file, if any.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	lvlName := strings.ToLower(strings.TrimSpace(opts.Level))
	if lvlName == "" {
		lvlName = DefaultLevel
	}
	level, err := zerolog.ParseLevel(lvlName)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	var (
		w      io.Writer
		closer io.Closer = nopCloser{}
	)
	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		}
		w, closer = lj, lj
	} else {
		out := opts.Out
		if out == nil {
			out = os.Stderr
		}
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Logger()
	log.Logger = logger
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
