package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SPLICEROPE_"

// EnvLoader applies environment variable overrides.
type EnvLoader struct {
	prefix string
	lookup func(string) (string, bool)
}

// NewEnvLoader creates a loader reading the process environment.
// The prefix should include the trailing underscore.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{prefix: prefix, lookup: os.LookupEnv}
}

// NewEnvLoaderWithLookup creates a loader reading variables through
// lookup instead of the process environment.
func NewEnvLoaderWithLookup(prefix string, lookup func(string) (string, bool)) *EnvLoader {
	return &EnvLoader{prefix: prefix, lookup: lookup}
}

// envSetting binds one variable suffix to a Config field.
type envSetting struct {
	name string
	set  func(c *Config, v string) error
}

var envSettings = []envSetting{
	{"LEAF_CAPACITY", intSetter(func(c *Config) *int { return &c.Rope.LeafCapacity })},
	{"STACK_DEPTH", intSetter(func(c *Config) *int { return &c.Rope.StackDepth })},
	{"GROWABLE_STACK", func(c *Config, v string) error {
		b, err := parseBool(v)
		c.Rope.GrowableStack = b
		return err
	}},
	{"ALLOCATOR", func(c *Config, v string) error {
		c.Rope.Allocator = strings.ToLower(v)
		return nil
	}},
	{"MAX_NODES", intSetter(func(c *Config) *int { return &c.Rope.MaxNodes })},
	{"PAGE_SIZE", intSetter(func(c *Config) *int { return &c.Rope.PageSize })},
	{"LOG_LEVEL", func(c *Config, v string) error {
		c.Log.Level = strings.ToLower(v)
		return nil
	}},
	{"LOG_FORMAT", func(c *Config, v string) error {
		c.Log.Format = strings.ToLower(v)
		return nil
	}},
	{"SCRIPT_TIMEOUT", func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		c.Script.Timeout = Duration(d)
		return err
	}},
}

// Apply overrides cfg with every variable that is set. Empty values
// count as set.
func (l *EnvLoader) Apply(cfg *Config) error {
	for _, s := range envSettings {
		name := l.prefix + s.name
		v, ok := l.lookup(name)
		if !ok {
			continue
		}
		if err := s.set(cfg, strings.TrimSpace(v)); err != nil {
			return &ParseError{Path: name, Message: err.Error(), Err: err}
		}
	}
	return nil
}

func intSetter(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		i, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = i
		return nil
	}
}

// parseBool accepts the spellings strconv.ParseBool does plus yes/no
// and on/off.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	return strconv.ParseBool(s)
}
