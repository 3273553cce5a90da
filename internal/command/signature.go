package command

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingArgument is returned when a required argument is absent.
	ErrMissingArgument = errors.New("missing argument")
	// ErrTooManyArguments is returned when tokens are left after binding.
	ErrTooManyArguments = errors.New("too many arguments")
)

// Kind is the binding behaviour of a parameter.
type Kind int

const (
	// Required parameters are filled left to right and must be present.
	Required Kind = iota
	// Optional parameters follow the required ones and may be absent.
	Optional
	// Variadic consumes every remaining token, joined by a single space.
	Variadic
	// Keywords collects inline "key:=value" assignments.
	Keywords
)

func (k Kind) String() string {
	switch k {
	case Required:
		return "required"
	case Optional:
		return "optional"
	case Variadic:
		return "variadic"
	case Keywords:
		return "keywords"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Param describes one parameter of an operation.
type Param struct {
	Name string
	Kind Kind
}

// Signature is the ordered parameter list of an operation.
type Signature []Param

// Validate checks that required parameters come first, then optional ones,
// then at most one trailing variadic or keywords parameter.
func (s Signature) Validate() error {
	last := Required
	for i, p := range s {
		if p.Name == "" {
			return fmt.Errorf("parameter %d has no name", i)
		}
		if p.Kind < last {
			return fmt.Errorf("%s parameter %q follows a %s parameter", p.Kind, p.Name, last)
		}
		if (p.Kind == Variadic || p.Kind == Keywords) && i != len(s)-1 {
			return fmt.Errorf("%s parameter %q must be last", p.Kind, p.Name)
		}
		last = p.Kind
	}
	return nil
}

// Usage renders the signature, e.g. "<section> [<key>] [<name:=value>...]".
func (s Signature) Usage() string {
	parts := make([]string, 0, len(s))
	for _, p := range s {
		switch p.Kind {
		case Required:
			parts = append(parts, "<"+p.Name+">")
		case Optional:
			parts = append(parts, "[<"+p.Name+">]")
		case Variadic:
			parts = append(parts, "<"+p.Name+">...")
		case Keywords:
			parts = append(parts, "[<name:=value>...]")
		}
	}
	return strings.Join(parts, " ")
}

func (s Signature) keywords() bool {
	return len(s) > 0 && s[len(s)-1].Kind == Keywords
}

func (s Signature) required() int {
	n := 0
	for _, p := range s {
		if p.Kind == Required {
			n++
		}
	}
	return n
}

// Assignment is an inline "name:=value" argument.
type Assignment struct {
	Key   string
	Value string
}

// Args are the arguments bound to a signature.
type Args struct {
	values      map[string]string
	Assignments []Assignment
}

// Get returns the bound value of the named parameter.
func (a Args) Get(name string) (string, bool) {
	v, ok := a.values[name]
	return v, ok
}

// String returns the bound value of the named parameter or "".
func (a Args) String(name string) string {
	return a.values[name]
}

// Bind assigns raw tokens to the parameters of s.
//
// When s ends in a Keywords parameter, tokens of the form "name:=value",
// "--name:=value" and "--name=value" are assignments wherever they appear.
// A plain "name=value" is an assignment only when it sits right after the
// required parameters, before any optional one has been filled.
func (s Signature) Bind(tokens []string) (Args, error) {
	args := Args{values: make(map[string]string)}
	positional := s
	if s.keywords() {
		positional = s[:len(s)-1]
	}
	required := s.required()

	var rest []string
	pos := 0
	for _, tok := range tokens {
		if s.keywords() {
			if a, ok := parseAssignment(tok, pos == required); ok {
				args.Assignments = append(args.Assignments, a)
				continue
			}
		}
		if pos < len(positional) && positional[pos].Kind != Variadic {
			args.values[positional[pos].Name] = tok
			pos++
			continue
		}
		rest = append(rest, tok)
	}

	if pos < required {
		return Args{}, fmt.Errorf("%w: %s", ErrMissingArgument, positional[pos].Name)
	}

	if pos < len(positional) && positional[pos].Kind == Variadic {
		args.values[positional[pos].Name] = strings.Join(rest, " ")
		rest = nil
	}
	if len(rest) > 0 {
		return Args{}, fmt.Errorf("%w: %s", ErrTooManyArguments, strings.Join(rest, " "))
	}

	return args, nil
}

// parseAssignment recognises inline assignments. Plain "name=value" is
// only accepted when plain is true.
func parseAssignment(tok string, plain bool) (Assignment, bool) {
	body, dashed := strings.CutPrefix(tok, "--")

	if key, value, ok := strings.Cut(body, ":="); ok && key != "" {
		return Assignment{Key: key, Value: value}, true
	}
	if !dashed && !plain {
		return Assignment{}, false
	}
	if key, value, ok := strings.Cut(body, "="); ok && key != "" {
		return Assignment{Key: key, Value: value}, true
	}
	return Assignment{}, false
}
