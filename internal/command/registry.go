// Package command provides the catalogue of operations inicfg can run
// against an INI document, together with their parameter signatures.
package command

import (
	"errors"
	"fmt"
	"sort"

	"github.com/redhatinsights/inicfg/internal/document"
	"github.com/redhatinsights/inicfg/internal/result"
)

// ErrUnknownCommand is returned when a name is not in the registry.
var ErrUnknownCommand = errors.New("unknown command")

// Mode describes how an operation uses the document.
type Mode int

const (
	// Query operations read an existing document.
	Query Mode = iota
	// Mutate operations may create the document and always save it.
	Mutate
	// Standalone operations do not touch any document.
	Standalone
)

// Func is the body of an operation. doc is nil for Standalone operations.
type Func func(doc *document.Document, args Args) (result.Result, error)

// Operation is a named unit of work with a fixed signature.
type Operation struct {
	Name   string
	Doc    string
	Params Signature
	Mode   Mode
	Run    Func
}

// Registry maps operation names to operations. It is built once and only
// read afterwards.
type Registry struct {
	ops map[string]*Operation
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]*Operation)}
}

// Register adds op to the registry. It panics on a duplicate name or a
// malformed signature; both are wiring mistakes.
func (r *Registry) Register(op Operation) {
	if op.Name == "" || op.Run == nil {
		panic("command: operation needs a name and a body")
	}
	if _, exists := r.ops[op.Name]; exists {
		panic(fmt.Sprintf("command: operation %q registered twice", op.Name))
	}
	if err := op.Params.Validate(); err != nil {
		panic(fmt.Sprintf("command: operation %q: %v", op.Name, err))
	}
	r.ops[op.Name] = &op
}

// Lookup returns the operation registered under name.
func (r *Registry) Lookup(name string) (*Operation, error) {
	op, ok := r.ops[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return op, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.ops[name]
	return ok
}

// Names returns all operation names in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
