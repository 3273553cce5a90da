// Package dispatch turns an inicfg command line into an operation run
// against an INI document and maps the outcome to an exit code.
package dispatch

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/redhatinsights/inicfg/internal/command"
	"github.com/redhatinsights/inicfg/internal/document"
	"github.com/redhatinsights/inicfg/internal/result"
)

const (
	// ExitSuccess is returned when the operation succeeded.
	ExitSuccess = 0
	// ExitNoResult is returned for the debug echo and for absent values.
	ExitNoResult = 1
	// ExitFatal is returned by the entry point when Run fails.
	ExitFatal = 2
)

// Dispatcher runs a single invocation.
type Dispatcher struct {
	Registry *command.Registry
	Options  document.Options
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
}

// New returns a Dispatcher over the default registry writing to the
// process' standard streams.
func New(opts document.Options) *Dispatcher {
	return &Dispatcher{
		Registry: command.Default(),
		Options:  opts,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Logger:   slog.Default(),
	}
}

// Run parses argv, executes the selected operation and returns the exit
// code. A non-nil error is fatal: the command line was malformed, the
// arguments did not fit the operation or the document could not be read or
// written.
func (d *Dispatcher) Run(argv []string) (int, error) {
	inv, err := Parse(argv, d.Registry)
	if err != nil {
		return ExitFatal, err
	}

	if inv.Debug {
		fmt.Fprintf(d.Stderr, "ARGS: %s %q\n", inv, inv.Args)
		return ExitNoResult, nil
	}

	op, err := d.Registry.Lookup(inv.Command)
	if err != nil {
		return ExitFatal, err
	}

	args, err := op.Params.Bind(inv.Args)
	if err != nil {
		return ExitFatal, fmt.Errorf("%s: %w", op.Name, err)
	}

	res, err := d.execute(inv, op, args)
	if err != nil {
		return ExitFatal, err
	}

	if err := result.Write(d.Stdout, res); err != nil {
		return ExitFatal, fmt.Errorf("failed to write output: %w", err)
	}
	if !result.Found(res) {
		return ExitNoResult, nil
	}
	return ExitSuccess, nil
}

func (d *Dispatcher) execute(inv Invocation, op *command.Operation, args command.Args) (result.Result, error) {
	logger := d.logger().With("command", op.Name)

	if op.Mode == command.Standalone {
		return op.Run(nil, args)
	}

	path := inv.Files[0]
	if len(inv.Files) > 1 {
		logger.Debug("only the first file is used", "file", path, "ignored", inv.Files[1:])
	}

	doc, err := document.Load(path, d.Options)
	if err != nil {
		return nil, err
	}
	if op.Mode == command.Query && !doc.Exists() {
		return nil, &fs.PathError{Op: op.Name, Path: path, Err: fs.ErrNotExist}
	}

	res, err := op.Run(doc, args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op.Name, err)
	}

	if op.Mode == command.Mutate {
		if err := doc.Save(); err != nil {
			return nil, err
		}
		logger.Debug("document updated", "file", path)
	}

	return res, nil
}

func (d *Dispatcher) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}
