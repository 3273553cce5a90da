// Package document loads, edits and saves INI files.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"syscall"

	"gopkg.in/ini.v1"
)

// DefaultFileMode is used for files created by Save when Options.FileMode
// is zero.
const DefaultFileMode fs.FileMode = 0o644

// Options control how a Document is written back to disk.
type Options struct {
	// PrettyFormat aligns the "=" sign of all keys in a section.
	PrettyFormat bool
	// FileMode is applied to files that do not exist yet.
	FileMode fs.FileMode
}

// Item is a single key/value entry of a section.
type Item struct {
	Key   string
	Value string
}

// Document is an INI file held in memory.
type Document struct {
	path    string
	exists  bool
	file    *ini.File
	options Options
}

// ErrUnrepresentable is returned by Save when a value would not read back
// unchanged from the rendered file.
var ErrUnrepresentable = errors.New("value cannot be stored in an INI file")

var loadOptions = ini.LoadOptions{
	// Values such as "c:/path#1" or a directory ending in a backslash
	// must survive a round trip untouched.
	IgnoreInlineComment: true,
	IgnoreContinuation:  true,
}

// Load reads the INI file at path. A path that does not exist yields an
// empty document; any other I/O or parse error is returned.
func Load(path string, opts Options) (*Document, error) {
	doc := &Document{path: path, options: opts}

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		slog.Debug("document does not exist, starting empty", "path", path)
		doc.file = ini.Empty(loadOptions)
		return doc, nil
	case err != nil:
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	case info.IsDir():
		return nil, &fs.PathError{Op: "read", Path: path, Err: syscall.EISDIR}
	}

	file, err := ini.LoadSources(loadOptions, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	doc.file = file
	doc.exists = true
	slog.Debug("document loaded", "path", path, "sections", len(doc.Sections()))

	return doc, nil
}

// Exists reports whether the document was read from an existing file.
func (d *Document) Exists() bool {
	return d.exists
}

// Get returns the value of key in section.
func (d *Document) Get(section, key string) (string, bool) {
	sec, err := d.file.GetSection(section)
	if err != nil {
		return "", false
	}
	if !sec.HasKey(key) {
		return "", false
	}
	return sec.Key(key).Value(), true
}

// Set writes key in section, creating the section if needed.
func (d *Document) Set(section, key, value string) error {
	sec, err := d.file.NewSection(section)
	if err != nil {
		return fmt.Errorf("cannot create section %q: %w", section, err)
	}
	if sec.HasKey(key) {
		sec.Key(key).SetValue(value)
		return nil
	}
	if _, err := sec.NewKey(key, value); err != nil {
		return fmt.Errorf("cannot set %s.%s: %w", section, key, err)
	}
	return nil
}

// AddSection creates section. Adding an existing section is a no-op.
func (d *Document) AddSection(section string) error {
	if _, err := d.file.NewSection(section); err != nil {
		return fmt.Errorf("cannot create section %q: %w", section, err)
	}
	return nil
}

// HasSection reports whether section exists.
func (d *Document) HasSection(section string) bool {
	return d.file.HasSection(section)
}

// Sections returns section names in file order. The unnamed top-level
// section is only listed when it holds keys.
func (d *Document) Sections() []string {
	var names []string
	for _, sec := range d.file.Sections() {
		if sec.Name() == ini.DefaultSection && len(sec.Keys()) == 0 {
			continue
		}
		names = append(names, sec.Name())
	}
	return names
}

// Items returns the entries of section in file order.
func (d *Document) Items(section string) ([]Item, bool) {
	sec, err := d.file.GetSection(section)
	if err != nil {
		return nil, false
	}
	keys := sec.Keys()
	items := make([]Item, 0, len(keys))
	for _, k := range keys {
		items = append(items, Item{Key: k.Name(), Value: k.Value()})
	}
	return items, true
}

// WriteTo writes the textual INI form of the document to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	// ini keeps its formatting switches in package state.
	ini.PrettyFormat = d.options.PrettyFormat
	ini.PrettyEqual = true
	return d.file.WriteTo(w)
}

// String returns the textual INI form of the document.
func (d *Document) String() string {
	var buf bytes.Buffer
	_, _ = d.WriteTo(&buf)
	return buf.String()
}

// Save writes the document back to the path it was loaded from.
func (d *Document) Save() error {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return fmt.Errorf("failed to render %s: %w", d.path, err)
	}
	if err := d.verify(buf.Bytes()); err != nil {
		return fmt.Errorf("refusing to save %s: %w", d.path, err)
	}

	mode := d.options.FileMode
	if mode == 0 {
		mode = DefaultFileMode
	}
	if err := os.WriteFile(d.path, buf.Bytes(), mode); err != nil {
		return fmt.Errorf("failed to save %s: %w", d.path, err)
	}
	d.exists = true
	slog.Debug("document saved", "path", d.path)

	return nil
}

// verify parses rendered the way Load would and checks that every key reads
// back with the value held in memory.
func (d *Document) verify(rendered []byte) error {
	parsed, err := ini.LoadSources(loadOptions, rendered)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnrepresentable, err)
	}

	for _, sec := range d.file.Sections() {
		for _, key := range sec.Keys() {
			got, ok := "", false
			if psec, err := parsed.GetSection(sec.Name()); err == nil && psec.HasKey(key.Name()) {
				got, ok = psec.Key(key.Name()).Value(), true
			}
			if !ok || got != key.Value() {
				return fmt.Errorf("%w: %s.%s = %q", ErrUnrepresentable, sec.Name(), key.Name(), key.Value())
			}
		}
	}
	return nil
}
