package dispatch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/redhatinsights/inicfg/internal/command"
)

// ErrUsage is returned when the command line cannot be parsed at all.
var ErrUsage = errors.New("usage error")

// Invocation is the parsed command line of one run.
type Invocation struct {
	Files   []string
	Debug   bool
	Command string
	Args    []string
}

// String renders the invocation for the debug echo.
func (inv Invocation) String() string {
	files := make([]string, len(inv.Files))
	for i, f := range inv.Files {
		files[i] = fmt.Sprintf("%q", f)
	}
	return fmt.Sprintf("Invocation(command=%q, debug=%t, files=[%s])",
		inv.Command, inv.Debug, strings.Join(files, ", "))
}

// Parse turns argv (without the program name) into an Invocation.
//
// "-d" and "--debug" are recognised anywhere before a bare "--"; everything
// after "--" is passed through untouched. The first remaining token is the
// comma-separated file list, or "help". The next token names the command,
// which defaults to cat.
func Parse(argv []string, registry *command.Registry) (Invocation, error) {
	var inv Invocation
	tokens := make([]string, 0, len(argv))
	for i, tok := range argv {
		if tok == "--" {
			tokens = append(tokens, argv[i+1:]...)
			break
		}
		if tok == "-d" || tok == "--debug" {
			inv.Debug = true
			continue
		}
		tokens = append(tokens, tok)
	}

	if len(tokens) == 0 {
		return Invocation{}, fmt.Errorf("%w: missing file name", ErrUsage)
	}

	if tokens[0] == command.HelpCommand {
		inv.Command = command.HelpCommand
		inv.Args = tokens[1:]
		return inv, nil
	}

	for _, f := range strings.Split(tokens[0], ",") {
		if f = strings.TrimSpace(f); f != "" {
			inv.Files = append(inv.Files, f)
		}
	}
	if len(inv.Files) == 0 {
		return Invocation{}, fmt.Errorf("%w: missing file name", ErrUsage)
	}

	inv.Command = command.DefaultCommand
	inv.Args = []string{}
	if len(tokens) > 1 {
		inv.Command = tokens[1]
		inv.Args = tokens[2:]
	}
	if !registry.Has(inv.Command) {
		return Invocation{}, fmt.Errorf("%w: %q (valid commands: %s)",
			command.ErrUnknownCommand, inv.Command, strings.Join(registry.Names(), ", "))
	}

	return inv, nil
}
