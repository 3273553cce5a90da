package conf

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultPath is the main configuration file.
	DefaultPath = "/etc/inicfg/config.toml"
	// DefaultDropInDir holds drop-in files applied on top of DefaultPath.
	DefaultDropInDir = "/etc/inicfg/config.toml.d/"
)

func init() {
	sources := &ConfigSource{
		Path:      DefaultPath,
		DropInDir: DefaultDropInDir,
	}
	config, err := sources.Read()
	if err != nil {
		// Fall back to the compiled-in defaults; the caller reports Err.
		config = Defaults()
		Err = err
	}
	Configuration = config
}

// defaultConfig is the base layer applied before the main file and drop-ins.
//
//go:embed default.toml
var defaultConfig string

// Configuration is the global immutable state.
var Configuration Config

// Err holds the error encountered while loading Configuration, if any.
var Err error

// Config represents the immutable public configuration object.
type Config struct {
	LogLevel     slog.Level
	PrettyFormat bool
	FileMode     fs.FileMode
}

// Defaults returns the configuration described by the embedded defaults.
func Defaults() Config {
	dto, err := parseConfigDTO(defaultConfig)
	if err != nil {
		panic(fmt.Sprintf("failed to parse embedded defaults: %v", err))
	}
	var config Config
	config.Update(dto)
	return config
}

// Update applies non-nil values from a configDTO. Values that cannot be
// interpreted are logged and leave the current setting untouched.
func (c *Config) Update(dto configDTO) {
	if dto.LogLevel != nil {
		var level slog.Level
		if err := level.UnmarshalText([]byte(strings.ToUpper(*dto.LogLevel))); err != nil {
			slog.Warn("ignoring invalid log-level", "value", *dto.LogLevel)
		} else {
			c.LogLevel = level
		}
	}
	if dto.PrettyFormat != nil {
		c.PrettyFormat = *dto.PrettyFormat
	}
	if dto.FileMode != nil {
		mode, err := parseFileMode(*dto.FileMode)
		if err != nil {
			slog.Warn("ignoring invalid file-mode", "value", *dto.FileMode, "error", err)
		} else {
			c.FileMode = mode
		}
	}
}

// parseFileMode parses permission bits written in octal, e.g. "0600".
func parseFileMode(s string) (fs.FileMode, error) {
	bits, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, err
	}
	if bits&^uint64(fs.ModePerm) != 0 {
		return 0, fmt.Errorf("%s is not a permission mode", s)
	}
	return fs.FileMode(bits), nil
}

// ConfigSource orchestrates loading configuration from multiple sources.
// See the Read method.
type ConfigSource struct {
	Path      string
	DropInDir string
}

// Read loads and returns the complete Config by merging all layers:
// 1. Embedded defaults
// 2. Main configuration file
// 3. Drop-in files
func (cs *ConfigSource) Read() (Config, error) {
	resolved := Defaults()

	data, err := os.ReadFile(cs.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		slog.Debug("configuration file not found", "path", cs.Path)
	case err != nil:
		return resolved, fmt.Errorf("failed to load %s: %w", cs.Path, err)
	default:
		mainDTO, err := parseConfigDTO(string(data))
		if err != nil {
			// Existing but malformed file should result in failure.
			return resolved, fmt.Errorf("failed to parse %s: %w", cs.Path, err)
		}
		resolved.Update(mainDTO)
	}

	dropInDTOs, err := cs.parseDropInFiles()
	if err != nil {
		return resolved, err
	}
	for _, dropInDTO := range dropInDTOs {
		resolved.Update(dropInDTO)
	}

	return resolved, nil
}

type configDTO struct {
	LogLevel     *string `toml:"log-level"`
	PrettyFormat *bool   `toml:"pretty-format"`
	FileMode     *string `toml:"file-mode"`
}

// parseConfigDTO parses a TOML string into a configDTO.
func parseConfigDTO(data string) (configDTO, error) {
	var dto configDTO

	md, err := toml.Decode(data, &dto)
	if err != nil {
		return dto, fmt.Errorf("failed to parse TOML: %w", err)
	}
	for _, key := range md.Undecoded() {
		slog.Warn("ignoring unknown configuration key", "key", key.String())
	}

	return dto, nil
}

// findDropInFiles returns the sorted paths of drop-in files, or nil when the
// drop-in directory doesn't exist.
func (cs *ConfigSource) findDropInFiles() ([]string, error) {
	entries, err := os.ReadDir(cs.DropInDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read drop-in directory %s: %w", cs.DropInDir, err)
	}

	var filenames []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		filenames = append(filenames, filepath.Join(cs.DropInDir, entry.Name()))
	}
	sort.Strings(filenames)

	return filenames, nil
}

func (cs *ConfigSource) parseDropInFiles() ([]configDTO, error) {
	paths, err := cs.findDropInFiles()
	if err != nil {
		return nil, err
	}

	var dtos []configDTO
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		dto, err := parseConfigDTO(string(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		slog.Debug("applying drop-in file", "path", path)

		dtos = append(dtos, dto)
	}

	return dtos, nil
}
