package command

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/redhatinsights/inicfg/internal/document"
	"github.com/redhatinsights/inicfg/internal/l10n"
	"github.com/redhatinsights/inicfg/internal/result"
)

// DefaultCommand runs when no operation is named on the command line.
const DefaultCommand = "cat"

// HelpCommand is the reserved name of the help operation.
const HelpCommand = "help"

// Default returns the registry holding every inicfg operation.
func Default() *Registry {
	r := NewRegistry()

	r.Register(Operation{
		Name: "get",
		Doc:  "Print the value of key in section.",
		Params: Signature{
			{Name: "section", Kind: Required},
			{Name: "key", Kind: Required},
		},
		Mode: Query,
		Run:  get,
	})
	r.Register(Operation{
		Name: "set",
		Doc: "Set key in section to value, creating the section if needed. " +
			"Inline assignments of the form key:=value may be given instead of a key and value.",
		Params: Signature{
			{Name: "section", Kind: Required},
			{Name: "key", Kind: Optional},
			{Name: "value", Kind: Optional},
			{Name: "assignments", Kind: Keywords},
		},
		Mode: Mutate,
		Run:  set,
	})
	r.Register(Operation{
		Name: "setlist",
		Doc:  "Set key in section to all remaining arguments joined by a single space.",
		Params: Signature{
			{Name: "section", Kind: Required},
			{Name: "key", Kind: Required},
			{Name: "values", Kind: Variadic},
		},
		Mode: Mutate,
		Run:  setList,
	})
	r.Register(Operation{
		Name:   "add_section",
		Doc:    "Add section to the file. Adding an existing section does nothing.",
		Params: Signature{{Name: "section", Kind: Required}},
		Mode:   Mutate,
		Run:    addSection,
	})
	r.Register(Operation{
		Name:   "items",
		Doc:    "List the keys of section, or of every section when none is given.",
		Params: Signature{{Name: "section", Kind: Optional}},
		Mode:   Query,
		Run: func(doc *document.Document, args Args) (result.Result, error) {
			return sectionPairs(doc, args, result.KeysOnly), nil
		},
	})
	r.Register(Operation{
		Name:   "values",
		Doc:    "List the keys and values of section as key => value, or of every section when none is given.",
		Params: Signature{{Name: "section", Kind: Optional}},
		Mode:   Query,
		Run: func(doc *document.Document, args Args) (result.Result, error) {
			return sectionPairs(doc, args, result.Arrow), nil
		},
	})
	r.Register(Operation{
		Name: "dos",
		Doc:  `Print every key as a Windows set "KEY=value" statement, with forward slashes turned into backslashes.`,
		Mode: Query,
		Run: func(doc *document.Document, _ Args) (result.Result, error) {
			return exports(doc, func(key, value string) string {
				return fmt.Sprintf(`set "%s=%s"`, key, strings.ReplaceAll(value, "/", `\`))
			}), nil
		},
	})
	r.Register(Operation{
		Name: "bash",
		Doc:  `Print every key as a shell export KEY="value" statement.`,
		Mode: Query,
		Run: func(doc *document.Document, _ Args) (result.Result, error) {
			return exports(doc, func(key, value string) string {
				return fmt.Sprintf(`export %s="%s"`, key, value)
			}), nil
		},
	})
	r.Register(Operation{
		Name: "cat",
		Doc:  "Print the whole file.",
		Mode: Query,
		Run:  cat,
	})
	r.Register(Operation{
		Name: "write",
		Doc:  "Write the file, creating it if it does not exist.",
		Mode: Mutate,
		Run: func(*document.Document, Args) (result.Result, error) {
			return result.None{}, nil
		},
	})
	r.Register(Operation{
		Name:   HelpCommand,
		Doc:    "List all commands, or print the documentation of one command.",
		Params: Signature{{Name: "command", Kind: Optional}},
		Mode:   Standalone,
		Run: func(_ *document.Document, args Args) (result.Result, error) {
			return help(r, args)
		},
	})

	return r
}

func get(doc *document.Document, args Args) (result.Result, error) {
	value, ok := doc.Get(args.String("section"), args.String("key"))
	if !ok {
		return result.Missing{}, nil
	}
	return result.Scalar{Value: value}, nil
}

func set(doc *document.Document, args Args) (result.Result, error) {
	section := args.String("section")
	key, hasKey := args.Get("key")
	value, hasValue := args.Get("value")

	switch {
	case hasKey && !hasValue:
		return nil, fmt.Errorf("%w: value", ErrMissingArgument)
	case !hasKey && len(args.Assignments) == 0:
		return nil, fmt.Errorf("%w: key", ErrMissingArgument)
	case hasKey && len(args.Assignments) > 0:
		slog.Warn("positional key combined with inline assignments", "section", section, "key", key)
	}

	if hasKey {
		if err := doc.Set(section, key, value); err != nil {
			return nil, err
		}
	}
	for _, a := range args.Assignments {
		if err := doc.Set(section, a.Key, a.Value); err != nil {
			return nil, err
		}
	}

	return result.None{}, nil
}

func setList(doc *document.Document, args Args) (result.Result, error) {
	if err := doc.Set(args.String("section"), args.String("key"), args.String("values")); err != nil {
		return nil, err
	}
	return result.None{}, nil
}

func addSection(doc *document.Document, args Args) (result.Result, error) {
	if err := doc.AddSection(args.String("section")); err != nil {
		return nil, err
	}
	return result.None{}, nil
}

func sectionPairs(doc *document.Document, args Args, style result.PairStyle) result.Result {
	sections := doc.Sections()
	if name, ok := args.Get("section"); ok {
		if !doc.HasSection(name) {
			return result.Missing{}
		}
		sections = []string{name}
	}

	pairs := result.Pairs{Style: style}
	for _, name := range sections {
		items, _ := doc.Items(name)
		for _, item := range items {
			pairs.Items = append(pairs.Items, result.Pair{Key: item.Key, Value: item.Value})
		}
	}
	return pairs
}

// exports renders every key of every section with the key upper-cased.
func exports(doc *document.Document, render func(key, value string) string) result.Result {
	var lines result.Lines
	for _, name := range doc.Sections() {
		items, _ := doc.Items(name)
		for _, item := range items {
			lines = append(lines, render(strings.ToUpper(item.Key), item.Value))
		}
	}
	return lines
}

func cat(doc *document.Document, _ Args) (result.Result, error) {
	text := doc.String()
	if strings.TrimSpace(text) == "" {
		return result.None{}, nil
	}
	return result.Scalar{Value: text}, nil
}

func help(r *Registry, args Args) (result.Result, error) {
	if name, ok := args.Get("command"); ok {
		op, err := r.Lookup(name)
		if err != nil {
			return nil, err
		}
		return result.Scalar{Value: l10n.T(op.Doc)}, nil
	}

	names := r.Names()
	width := 0
	for _, name := range names {
		width = max(width, len(name))
	}

	lines := make(result.Lines, 0, len(names)+2)
	lines = append(lines, l10n.T("Usage: inicfg <file>[,<file>...] [-d|--debug] [<command> [<args>...]]"), "")
	for _, name := range names {
		op, _ := r.Lookup(name)
		line := fmt.Sprintf("  %-*s  %s", width, name, op.Params.Usage())
		lines = append(lines, strings.TrimRight(line, " "))
	}
	return lines, nil
}
