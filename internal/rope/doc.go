// Package rope provides a mutable rope: a byte sequence stored as a
// binary tree whose leaves are fixed-capacity buffers.
//
// Internal nodes carry the byte count of their subtree, which lets reads
// and writes find the leaf holding any offset in time proportional to the
// tree depth. Edits change leaf buffers in place and then restore the
// counts on the path to the root, so nothing is shifted across the whole
// sequence.
//
// Key features:
//   - one splice primitive, SetSlice, covering insert, delete, replace and append
//   - pluggable node allocation (HeapAllocator, pooled Arena)
//   - bounded traversal stack with a defined overflow error
//   - Validate for checking every structural invariant
//
// Basic usage:
//
//	r, _ := rope.FromString("hello world", rope.WithLeafCapacity(4))
//	_ = r.SetSliceString("HI", 0, 5) // "HI world"
//	_ = r.SetSliceString("!", r.Size(), 0) // "HI world!"
//	b, _ := r.Slice(3, 5)                  // "world"
//
// The tree is balanced when built and never rebalanced afterwards, so
// repeated edits in one region can deepen it. Stats reports the depth.
//
// A Rope is not safe for concurrent use.
package rope
