// Package logger builds the *slog.Logger inicfg writes its diagnostics to.
//
// Diagnostics always go to stderr so that they never mix with the values
// printed on stdout. On a terminal they are rendered by charmbracelet/log;
// otherwise slog's text handler is used.
package logger

import (
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

type config struct {
	level  slog.Level
	writer io.Writer
	pretty bool
	source bool
}

// New returns a logger configured by opts. Without options it logs warnings
// and errors to os.Stderr using slog's text handler.
func New(opts ...Option) *slog.Logger {
	c := &config{
		level:  slog.LevelWarn,
		writer: os.Stderr,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.pretty {
		return slog.New(charmlog.NewWithOptions(c.writer, charmlog.Options{
			Level:        charmlog.Level(c.level),
			Prefix:       "inicfg",
			ReportCaller: c.source,
		}))
	}

	return slog.New(slog.NewTextHandler(c.writer, &slog.HandlerOptions{
		Level:     c.level,
		AddSource: c.source,
	}))
}
