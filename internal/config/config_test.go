package config

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/splicerope/internal/rope"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, rope.DefaultLeafCapacity, cfg.Rope.LeafCapacity)
	assert.Equal(t, rope.DefaultStackDepth, cfg.Rope.StackDepth)
	assert.Equal(t, AllocatorHeap, cfg.Rope.Allocator)
	assert.Equal(t, DefaultScriptTimeout, cfg.Script.Timeout.Std())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		valid  bool
	}{
		{"zero leaf capacity", func(c *Config) { c.Rope.LeafCapacity = 0 }, false},
		{"zero stack depth", func(c *Config) { c.Rope.StackDepth = 0 }, false},
		{"zero stack depth growable", func(c *Config) {
			c.Rope.StackDepth = 0
			c.Rope.GrowableStack = true
		}, true},
		{"negative max nodes", func(c *Config) { c.Rope.MaxNodes = -1 }, false},
		{"unknown allocator", func(c *Config) { c.Rope.Allocator = "slab" }, false},
		{"arena allocator", func(c *Config) { c.Rope.Allocator = "Arena" }, true},
		{"arena without pages", func(c *Config) {
			c.Rope.Allocator = AllocatorArena
			c.Rope.PageSize = 0
		}, false},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, false},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, false},
		{"json log format", func(c *Config) { c.Log.Format = FormatJSON }, true},
		{"negative timeout", func(c *Config) { c.Script.Timeout = Duration(-time.Second) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrInvalid), "got %v", err)
			}
		})
	}
}

func TestRopeOptions(t *testing.T) {
	cfg := Default()
	cfg.Rope.LeafCapacity = 4
	cfg.Rope.Allocator = AllocatorArena
	cfg.Rope.PageSize = 2

	r, err := rope.FromString("hello world", cfg.RopeOptions()...)
	require.NoError(t, err)
	require.NoError(t, r.Validate())
	assert.Equal(t, 4, r.LeafCapacity())
	assert.Equal(t, 7, r.Stats().AllocatorLive)
	_, ok := cfg.NewAllocator().(*rope.Arena)
	assert.True(t, ok)
}

func TestRopeOptionsNodeLimit(t *testing.T) {
	cfg := Default()
	cfg.Rope.LeafCapacity = 4
	cfg.Rope.MaxNodes = 6

	_, err := rope.FromString("hello world", cfg.RopeOptions()...)
	assert.True(t, errors.Is(err, rope.ErrAllocatorExhausted), "got %v", err)
}

func TestRopeOptionsStackDepth(t *testing.T) {
	cfg := Default()
	cfg.Rope.LeafCapacity = 1
	cfg.Rope.StackDepth = 2

	r, err := rope.FromString("abcdefgh", cfg.RopeOptions()...)
	require.NoError(t, err)
	_, err = r.Slice(0, 1)
	assert.True(t, errors.Is(err, rope.ErrStackOverflow), "got %v", err)

	cfg.Rope.GrowableStack = true
	r, err = rope.FromString("abcdefgh", cfg.RopeOptions()...)
	require.NoError(t, err)
	got, err := r.Slice(0, 1)
	require.NoError(t, err)
	assert.Equal(t, "a", string(got))
}
