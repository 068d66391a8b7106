// Package config loads analyzer's optional rc-file: default queue size,
// default stage list, log level, and the synthesize-end policy. CLI flags
// parsed in cmd/analyzer override whatever a config file sets.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/outpostlabs/analyzer/internal/util"
)

// LogLevel is one of the zap level names accepted in a config file or on
// the command line.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

func (l *LogLevel) unmarshal(s string) error {
	switch LogLevel(s) {
	case "", LogLevelInfo:
		*l = LogLevelInfo
	case LogLevelDebug, LogLevelWarn, LogLevelError:
		*l = LogLevel(s)
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", s)
	}
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler (used by JSON/YAML decoders).
func (l *LogLevel) UnmarshalText(b []byte) error {
	return l.unmarshal(string(b))
}

// UnmarshalFlag implements go-flags' Unmarshaler (used by CLI flag parsing).
func (l *LogLevel) UnmarshalFlag(s string) error {
	return l.unmarshal(s)
}

// DefaultQueueSize is used when neither the config file nor --queue-size
// supplies one.
const DefaultQueueSize = 5

// Config holds the data that can be set in analyzer's rc-file.
type Config struct {
	QueueSize     int      `json:"QueueSize" yaml:"QueueSize"`
	Stages        []string `json:"Stages" yaml:"Stages"`
	LogLevel      LogLevel `json:"LogLevel" yaml:"LogLevel"`
	SynthesizeEnd bool     `json:"SynthesizeEnd" yaml:"SynthesizeEnd"`
}

// Init sets the defaults applied before a config file is read.
func (c *Config) Init() error {
	c.QueueSize = DefaultQueueSize
	c.LogLevel = LogLevelInfo
	return nil
}

// ReadFilename reads the config from the given file, dispatching on its
// extension between YAML and JSON.
func (c *Config) ReadFilename(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer f.Close()

	switch ext := filepath.Ext(filename); ext {
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(f).Decode(c); err != nil {
			return fmt.Errorf("failed to decode YAML: %w", err)
		}
	default:
		if err := json.NewDecoder(f).Decode(c); err != nil {
			return fmt.Errorf("failed to decode JSON: %w", err)
		}
	}

	if c.QueueSize < 0 {
		return fmt.Errorf("invalid queue size: %d", c.QueueSize)
	}

	return nil
}

// Locator locates a config file in a given directory.
type Locator interface {
	Locate(string) (string, error)
}

// LocatorFunc is a function that implements Locator.
type LocatorFunc func(string) (string, error)

// Locate calls the underlying function.
func (f LocatorFunc) Locate(dir string) (string, error) {
	return f(dir)
}

var configFilenames = []string{"config.yaml", "config.yml", "config.json"}

// DefaultConfigLocator searches for a config file with one of the known
// filenames in the given directory.
var DefaultConfigLocator = LocatorFunc(func(dir string) (string, error) {
	for _, basename := range configFilenames {
		file := filepath.Join(dir, basename)
		if _, err := os.Stat(file); err == nil {
			return file, nil
		}
	}
	return "", fmt.Errorf("config file not found in %s", dir)
})

var homedirFunc = util.Homedir

// LocateRcfile attempts to find the config file in various locations,
// following the XDG base directory spec.
func LocateRcfile(locater Locator) (string, error) {
	// http://standards.freedesktop.org/basedir-spec/basedir-spec-latest.html
	//
	// Try in this order:
	//	  $XDG_CONFIG_HOME/analyzer/config.{yaml,yml,json}
	//    $XDG_CONFIG_DIR/analyzer/config.{yaml,yml,json} (XDG_CONFIG_DIR from $XDG_CONFIG_DIRS)
	//	  ~/.analyzer/config.{yaml,yml,json}

	home, uErr := homedirFunc()

	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		if file, err := locater.Locate(filepath.Join(dir, "analyzer")); err == nil {
			return file, nil
		}
	} else if uErr == nil {
		if file, err := locater.Locate(filepath.Join(home, ".config", "analyzer")); err == nil {
			return file, nil
		}
	}

	if dirs := os.Getenv("XDG_CONFIG_DIRS"); dirs != "" {
		for dir := range strings.SplitSeq(dirs, fmt.Sprintf("%c", filepath.ListSeparator)) {
			if file, err := locater.Locate(filepath.Join(dir, "analyzer")); err == nil {
				return file, nil
			}
		}
	}

	if uErr == nil {
		if file, err := locater.Locate(filepath.Join(home, ".analyzer")); err == nil {
			return file, nil
		}
	}

	return "", errors.New("config file not found")
}
