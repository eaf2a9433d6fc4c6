package rope

import "github.com/cockroachdb/errors"

// Validate checks the structural invariants of the tree:
//   - every node has either two children or none
//   - an internal node's count is the sum of its children's counts
//   - no leaf holds more than LeafCapacity bytes
//   - parent links mirror child links and the root has no parent
//   - every node is live in the allocator and reachable exactly once
//
// It returns an error wrapping ErrCorrupt for the first violation found.
func (r *Rope) Validate() error {
	if r.closed {
		return ErrClosed
	}
	root := r.node(r.root)
	if root == nil {
		return errors.Wrapf(ErrCorrupt, "root %d is not allocated", r.root)
	}
	if root.parent != nilNode {
		return errors.Wrapf(ErrCorrupt, "root %d has parent %d", r.root, root.parent)
	}
	seen := make(map[NodeID]bool)
	return r.validateNode(r.root, seen)
}

func (r *Rope) validateNode(id NodeID, seen map[NodeID]bool) error {
	if seen[id] {
		return errors.Wrapf(ErrCorrupt, "node %d reachable twice", id)
	}
	seen[id] = true

	n := r.node(id)
	if n.IsLeaf() {
		if n.count < 0 || n.count > r.leafCap {
			return errors.Wrapf(ErrCorrupt, "leaf %d count %d outside [0, %d]", id, n.count, r.leafCap)
		}
		if len(n.buf) < n.count {
			return errors.Wrapf(ErrCorrupt, "leaf %d buffer %d shorter than count %d", id, len(n.buf), n.count)
		}
		return nil
	}
	if n.left == nilNode || n.right == nilNode {
		return errors.Wrapf(ErrCorrupt, "node %d has a single child", id)
	}

	for _, child := range [2]NodeID{n.left, n.right} {
		cn := r.node(child)
		if cn == nil {
			return errors.Wrapf(ErrCorrupt, "node %d child %d is not allocated", id, child)
		}
		if cn.parent != id {
			return errors.Wrapf(ErrCorrupt, "node %d child %d points to parent %d", id, child, cn.parent)
		}
		if err := r.validateNode(child, seen); err != nil {
			return err
		}
	}

	if sum := r.node(n.left).count + r.node(n.right).count; n.count != sum {
		return errors.Wrapf(ErrCorrupt, "node %d count %d, children sum %d", id, n.count, sum)
	}
	return nil
}
