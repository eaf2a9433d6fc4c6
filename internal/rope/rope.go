package rope

import (
	"bytes"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// Rope is a mutable byte sequence stored as a binary tree of
// fixed-capacity leaf buffers.
//
// A Rope is not safe for concurrent use; callers serialize access.
type Rope struct {
	alloc      Allocator
	root       NodeID
	leafCap    int
	stackDepth int
	growable   bool
	depthBound int // upper bound on tree depth in edges
	closed     bool
	log        logrus.FieldLogger
}

// New creates a rope holding a copy of s.
func New(s []byte, opts ...Option) (*Rope, error) {
	r := &Rope{
		root:       nilNode,
		leafCap:    DefaultLeafCapacity,
		stackDepth: DefaultStackDepth,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.alloc == nil {
		r.alloc = NewHeapAllocator(0)
	}
	if r.log == nil {
		r.log = discardLogger()
	}

	if r.leafCap <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "leaf capacity %d", r.leafCap)
	}
	if !r.growable && r.stackDepth <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "stack depth %d", r.stackDepth)
	}

	if need := nodesFor(len(s), r.leafCap); !r.alloc.CanAllocate(need) {
		return nil, errors.Wrapf(ErrAllocatorExhausted, "construction of %d bytes needs %d nodes", len(s), need)
	}
	root, err := r.build(s)
	if err != nil {
		return nil, err
	}
	r.root = root
	r.depthBound = heightFor(len(s), r.leafCap)
	return r, nil
}

// FromString creates a rope holding s.
func FromString(s string, opts ...Option) (*Rope, error) {
	return New([]byte(s), opts...)
}

// FromReader creates a rope from everything rd yields.
func FromReader(rd io.Reader, opts ...Option) (*Rope, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(rd); err != nil {
		return nil, errors.Wrap(err, "reading rope content")
	}
	return New(buf.Bytes(), opts...)
}

// build constructs an unparented subtree over s by halving the range
// until each piece fits in one leaf.
func (r *Rope) build(s []byte) (NodeID, error) {
	if len(s) <= r.leafCap {
		id, n, err := r.allocLeaf()
		if err != nil {
			return nilNode, err
		}
		n.count = copy(n.buf, s)
		return id, nil
	}

	half := len(s) / 2
	left, err := r.build(s[:half])
	if err != nil {
		return nilNode, err
	}
	right, err := r.build(s[half:])
	if err != nil {
		r.free(left)
		return nilNode, err
	}
	id, err := r.allocInternal(left, right)
	if err != nil {
		r.free(left)
		r.free(right)
		return nilNode, err
	}
	return id, nil
}

// concat joins two unparented subtrees under a new internal node.
func (r *Rope) concat(a, b NodeID) (NodeID, error) {
	if p := r.node(a).parent; p != nilNode {
		return nilNode, errors.Wrapf(ErrAttached, "left operand %d has parent %d", a, p)
	}
	if p := r.node(b).parent; p != nilNode {
		return nilNode, errors.Wrapf(ErrAttached, "right operand %d has parent %d", b, p)
	}
	return r.allocInternal(a, b)
}

// Size returns the number of bytes in the rope.
func (r *Rope) Size() int {
	if r.closed {
		return 0
	}
	return r.node(r.root).count
}

// LeafCapacity returns the byte capacity of each leaf.
func (r *Rope) LeafCapacity() int {
	return r.leafCap
}

// Slice returns a copy of the n bytes starting at pos.
func (r *Rope) Slice(pos, n int) ([]byte, error) {
	if err := r.checkRange(pos, n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	if err := r.slice(out, pos); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadAt implements io.ReaderAt.
func (r *Rope) ReadAt(p []byte, off int64) (int, error) {
	if r.closed {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, errors.Wrapf(ErrOutOfRange, "negative offset %d", off)
	}
	size := int64(r.Size())
	if off >= size {
		return 0, io.EOF
	}
	n := int64(len(p))
	if n > size-off {
		n = size - off
	}
	if err := r.slice(p[:n], int(off)); err != nil {
		return 0, err
	}
	if int(n) < len(p) {
		return int(n), io.EOF
	}
	return int(n), nil
}

// slice fills dst from the bytes starting at pos. The range must
// already be checked.
func (r *Rope) slice(dst []byte, pos int) error {
	if len(dst) == 0 {
		return nil
	}
	if err := r.checkDepth(); err != nil {
		return err
	}

	c := r.newCursor()
	leaf, traversed, err := c.seek(pos, 0)
	if err != nil {
		return err
	}
	idx := pos - traversed
	copied := 0
	for {
		if leaf == nilNode {
			return errors.Wrapf(ErrCorrupt, "ran out of leaves after %d of %d bytes", copied, len(dst))
		}
		n := r.node(leaf)
		copied += copy(dst[copied:], n.buf[idx:n.count])
		if copied == len(dst) {
			return nil
		}
		idx = 0
		if leaf, err = c.next(); err != nil {
			return err
		}
	}
}

// Bytes returns a copy of the whole content.
func (r *Rope) Bytes() []byte {
	if r.closed {
		return nil
	}
	out := make([]byte, 0, r.Size())
	return r.appendTo(out, r.root)
}

// String returns the whole content as a string.
func (r *Rope) String() string {
	return string(r.Bytes())
}

// appendTo appends the subtree's bytes to dst in order.
func (r *Rope) appendTo(dst []byte, id NodeID) []byte {
	n := r.node(id)
	if n.IsLeaf() {
		return append(dst, n.buf[:n.count]...)
	}
	dst = r.appendTo(dst, n.left)
	return r.appendTo(dst, n.right)
}

// WriteTo implements io.WriterTo, writing the content leaf by leaf.
func (r *Rope) WriteTo(w io.Writer) (int64, error) {
	if r.closed {
		return 0, ErrClosed
	}
	var total int64
	it := r.Leaves()
	for it.Next() {
		n, err := w.Write(it.Bytes())
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, it.Err()
}

// Close releases every node. The rope cannot be used afterwards.
func (r *Rope) Close() error {
	if r.closed {
		return ErrClosed
	}
	r.free(r.root)
	r.root = nilNode
	r.closed = true
	return nil
}

// checkRange validates that [pos, pos+n) lies within the rope.
func (r *Rope) checkRange(pos, n int) error {
	if r.closed {
		return ErrClosed
	}
	size := r.Size()
	if pos < 0 || n < 0 || pos > size || n > size-pos {
		return errors.Wrapf(ErrOutOfRange, "pos %d n %d size %d", pos, n, size)
	}
	return nil
}

// checkDepth fails when the tree may be deeper than the traversal stack.
// The exact depth is only measured when the cached bound is too high.
func (r *Rope) checkDepth() error {
	if r.growable || r.depthBound+1 <= r.stackDepth {
		return nil
	}
	r.depthBound = r.measureDepth(r.root)
	if r.depthBound+1 <= r.stackDepth {
		return nil
	}
	return errors.Wrapf(ErrStackOverflow, "tree depth %d exceeds stack capacity %d", r.depthBound, r.stackDepth)
}

// measureDepth returns the subtree height in edges.
func (r *Rope) measureDepth(id NodeID) int {
	n := r.node(id)
	if n.IsLeaf() {
		return 0
	}
	return 1 + max(r.measureDepth(n.left), r.measureDepth(n.right))
}
