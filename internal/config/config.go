package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"

	"github.com/dshills/splicerope/internal/rope"
)

// Allocator names accepted by RopeConfig.Allocator.
const (
	AllocatorHeap  = "heap"
	AllocatorArena = "arena"
)

// Log formats accepted by LogConfig.Format.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// DefaultScriptTimeout bounds a single script run.
const DefaultScriptTimeout = 5 * time.Second

// Config holds all settings.
type Config struct {
	Rope   RopeConfig   `toml:"rope" yaml:"rope"`
	Log    LogConfig    `toml:"log" yaml:"log"`
	Script ScriptConfig `toml:"script" yaml:"script"`
}

// RopeConfig shapes every rope the tools build.
type RopeConfig struct {
	LeafCapacity  int    `toml:"leaf_capacity" yaml:"leaf_capacity"`
	StackDepth    int    `toml:"stack_depth" yaml:"stack_depth"`
	GrowableStack bool   `toml:"growable_stack" yaml:"growable_stack"`
	Allocator     string `toml:"allocator" yaml:"allocator"`
	// MaxNodes caps live nodes; 0 means unlimited.
	MaxNodes int `toml:"max_nodes" yaml:"max_nodes"`
	// PageSize is the arena page size in nodes.
	PageSize int `toml:"page_size" yaml:"page_size"`
}

// LogConfig configures the logrus logger.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// ScriptConfig configures the script host.
type ScriptConfig struct {
	Timeout Duration `toml:"timeout" yaml:"timeout"`
}

// Duration is a time.Duration written as a Go duration string ("5s").
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Rope: RopeConfig{
			LeafCapacity: rope.DefaultLeafCapacity,
			StackDepth:   rope.DefaultStackDepth,
			Allocator:    AllocatorHeap,
			PageSize:     rope.DefaultPageSize,
		},
		Log: LogConfig{
			Level:  "info",
			Format: FormatText,
		},
		Script: ScriptConfig{
			Timeout: Duration(DefaultScriptTimeout),
		},
	}
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	rc := c.Rope
	if rc.LeafCapacity <= 0 {
		return errors.Wrapf(ErrInvalid, "rope.leaf_capacity must be positive, got %d", rc.LeafCapacity)
	}
	if rc.StackDepth <= 0 && !rc.GrowableStack {
		return errors.Wrapf(ErrInvalid, "rope.stack_depth must be positive, got %d", rc.StackDepth)
	}
	if rc.MaxNodes < 0 {
		return errors.Wrapf(ErrInvalid, "rope.max_nodes must not be negative, got %d", rc.MaxNodes)
	}
	switch strings.ToLower(rc.Allocator) {
	case AllocatorHeap:
	case AllocatorArena:
		if rc.PageSize <= 0 {
			return errors.Wrapf(ErrInvalid, "rope.page_size must be positive, got %d", rc.PageSize)
		}
	default:
		return errors.Wrapf(ErrInvalid, "rope.allocator %q is not one of heap, arena", rc.Allocator)
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrapf(ErrInvalid, "log.level: %v", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case FormatText, FormatJSON:
	default:
		return errors.Wrapf(ErrInvalid, "log.format %q is not one of text, json", c.Log.Format)
	}

	if c.Script.Timeout < 0 {
		return errors.Wrapf(ErrInvalid, "script.timeout must not be negative, got %s", c.Script.Timeout.Std())
	}
	return nil
}

// NewAllocator returns a fresh allocator of the configured kind.
func (c *Config) NewAllocator() rope.Allocator {
	if strings.ToLower(c.Rope.Allocator) == AllocatorArena {
		return rope.NewArena(c.Rope.PageSize, c.Rope.MaxNodes)
	}
	return rope.NewHeapAllocator(c.Rope.MaxNodes)
}

// RopeOptions converts the rope settings into construction options.
// Each call creates a new allocator.
func (c *Config) RopeOptions() []rope.Option {
	opts := []rope.Option{
		rope.WithLeafCapacity(c.Rope.LeafCapacity),
		rope.WithStackDepth(c.Rope.StackDepth),
		rope.WithAllocator(c.NewAllocator()),
	}
	if c.Rope.GrowableStack {
		opts = append(opts, rope.WithGrowableStack())
	}
	return opts
}
