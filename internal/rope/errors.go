package rope

import "github.com/cockroachdb/errors"

// Errors returned by rope operations.
var (
	// ErrOutOfRange indicates a position or length outside [0, Size()].
	ErrOutOfRange = errors.New("rope: range out of bounds")

	// ErrAllocatorExhausted indicates the allocator cannot supply more nodes.
	ErrAllocatorExhausted = errors.New("rope: allocator exhausted")

	// ErrStackOverflow indicates the tree is deeper than the traversal stack.
	ErrStackOverflow = errors.New("rope: traversal stack overflow")

	// ErrAttached indicates a subtree that already has a parent was
	// passed to concatenation.
	ErrAttached = errors.New("rope: subtree already attached")

	// ErrInvalidConfig indicates an invalid option value.
	ErrInvalidConfig = errors.New("rope: invalid configuration")

	// ErrClosed indicates an operation on a rope that was closed.
	ErrClosed = errors.New("rope: closed")

	// ErrCorrupt indicates a structural invariant does not hold.
	ErrCorrupt = errors.New("rope: corrupt tree")
)
