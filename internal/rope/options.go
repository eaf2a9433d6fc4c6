package rope

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Default configuration values.
const (
	DefaultLeafCapacity = 64
	DefaultStackDepth   = 64
)

// Option configures a Rope during creation.
type Option func(*Rope)

// WithLeafCapacity sets the byte capacity of every leaf.
func WithLeafCapacity(n int) Option {
	return func(r *Rope) {
		r.leafCap = n
	}
}

// WithAllocator sets the node allocation strategy.
func WithAllocator(a Allocator) Option {
	return func(r *Rope) {
		if a != nil {
			r.alloc = a
		}
	}
}

// WithStackDepth sets the capacity of the traversal stack.
// Operations on a tree deeper than the stack allows fail with
// ErrStackOverflow.
func WithStackDepth(n int) Option {
	return func(r *Rope) {
		r.stackDepth = n
	}
}

// WithGrowableStack lets the traversal stack grow without bound.
func WithGrowableStack() Option {
	return func(r *Rope) {
		r.growable = true
	}
}

// WithLogger sets the logger used for structural debug events.
func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Rope) {
		if l != nil {
			r.log = l
		}
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
