// Package result holds the values returned by inicfg operations and renders
// them for standard output.
package result

import (
	"fmt"
	"io"
	"strings"
)

// Result is the value returned by an operation. The set of implementations
// is closed: None, Missing, Scalar, Lines and Pairs.
type Result interface {
	isResult()
}

// None is a successful operation with nothing to print.
type None struct{}

// Missing reports that the requested value does not exist. Nothing is
// printed and the process exits with status 1.
type Missing struct{}

// Scalar is a single value printed on its own line.
type Scalar struct {
	Value any
}

// Lines is a sequence of pre-rendered lines.
type Lines []string

// PairStyle selects how Pairs are rendered.
type PairStyle int

const (
	// KeysOnly prints the key of every pair.
	KeysOnly PairStyle = iota
	// Arrow prints every pair as "key => value".
	Arrow
)

// Pair is a single key/value entry.
type Pair struct {
	Key   string
	Value string
}

// Pairs is a sequence of key/value entries and the style they are printed in.
type Pairs struct {
	Style PairStyle
	Items []Pair
}

func (None) isResult()    {}
func (Missing) isResult() {}
func (Scalar) isResult()  {}
func (Lines) isResult()   {}
func (Pairs) isResult()   {}

// Found reports whether r carries a value, i.e. it is anything but Missing.
func Found(r Result) bool {
	_, missing := r.(Missing)
	return !missing
}

// Write renders r to w, one item per line.
func Write(w io.Writer, r Result) error {
	switch v := r.(type) {
	case nil, None, Missing:
		return nil
	case Scalar:
		return writeLine(w, fmt.Sprint(v.Value))
	case Lines:
		for _, line := range v {
			if err := writeLine(w, line); err != nil {
				return err
			}
		}
		return nil
	case Pairs:
		for _, p := range v.Items {
			line := p.Key
			if v.Style == Arrow {
				line = p.Key + " => " + p.Value
			}
			if err := writeLine(w, line); err != nil {
				return err
			}
		}
		return nil
	default:
		panic(fmt.Sprintf("result: unhandled result type %T", r))
	}
}

func writeLine(w io.Writer, s string) error {
	_, err := io.WriteString(w, strings.TrimRight(s, "\r\n")+"\n")
	return err
}
