// Package config loads heapctl settings from YAML, with command-line
// overrides layered on top.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ErrInvalid indicates a configuration value that cannot be used.
var ErrInvalid = errors.New("config: invalid value")

// Config is the full heapctl configuration.
type Config struct {
	Heap Heap `yaml:"heap" mapstructure:"heap"`
	Log  Log  `yaml:"log" mapstructure:"log"`
}

// Heap configures the allocator and its region.
type Heap struct {
	File       string `yaml:"file" mapstructure:"file"`               // backing file; empty = in memory
	Limit      string `yaml:"limit" mapstructure:"limit"`             // region cap, e.g. "64MiB"; empty = unlimited
	Strict     bool   `yaml:"strict" mapstructure:"strict"`           // report frees of unknown pointers
	InPlace    bool   `yaml:"in_place" mapstructure:"in_place"`       // in-place Realloc
	VerifyEach bool   `yaml:"verify_each" mapstructure:"verify_each"` // check invariants after every trace op
}

// Log configures internal/logger.
type Log struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Dir     string `yaml:"dir" mapstructure:"dir"`
	Level   string `yaml:"level" mapstructure:"level"`
	Stderr  bool   `yaml:"stderr" mapstructure:"stderr"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{Log: Log{Level: "info"}}
}

// Load reads a YAML file on top of Default. Unknown keys are an error.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cfg, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads YAML from r on top of Default.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	if err := d.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Set applies "section.key=value" overrides, e.g. "heap.limit=1MiB".
// Values are converted to the field type (strings to bools and so on).
func (c *Config) Set(overrides []string) error {
	if len(overrides) == 0 {
		return nil
	}
	tree := map[string]any{}
	for _, kv := range overrides {
		key, val, ok := strings.Cut(kv, "=")
		section, field, dotted := strings.Cut(key, ".")
		if !ok || !dotted || section == "" || field == "" {
			return fmt.Errorf("%w: override %q, want section.key=value", ErrInvalid, kv)
		}
		sub, _ := tree[section].(map[string]any)
		if sub == nil {
			sub = map[string]any{}
			tree[section] = sub
		}
		sub[field] = val
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           c,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(tree); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return c.Validate()
}

// Validate checks values that are stored as text.
func (c *Config) Validate() error {
	if _, err := c.Heap.LimitBytes(); err != nil {
		return err
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// LimitBytes parses Limit. Empty means 0 (unlimited).
func (h Heap) LimitBytes() (int64, error) {
	if strings.TrimSpace(h.Limit) == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(h.Limit)
	if err != nil {
		return 0, fmt.Errorf("%w: heap.limit %q: %w", ErrInvalid, h.Limit, err)
	}
	if n > 1<<62 {
		return 0, fmt.Errorf("%w: heap.limit %q too large", ErrInvalid, h.Limit)
	}
	return int64(n), nil
}

// SlogLevel parses Level ("debug", "info", "warn", "error"). Empty is info.
func (l Log) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("%w: log.level %q", ErrInvalid, l.Level)
	}
	return lvl, nil
}
