package rope

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// SetSlice replaces the n bytes starting at pos with str.
//
// With len(str) == 0 this deletes, with n == 0 it inserts, and with
// pos == Size() it appends. On error the rope is left unchanged.
func (r *Rope) SetSlice(str []byte, pos, n int) error {
	if err := r.checkRange(pos, n); err != nil {
		return err
	}
	if err := r.checkDepth(); err != nil {
		return err
	}

	switch size := len(str); {
	case pos == r.Size():
		return r.appendBytes(str)
	case size == n:
		return r.overwrite(str, pos)
	case size < n:
		return r.shrink(str, pos, n)
	default:
		return r.grow(str, pos, n)
	}
}

// SetSliceString is SetSlice for string input.
func (r *Rope) SetSliceString(str string, pos, n int) error {
	return r.SetSlice([]byte(str), pos, n)
}

// appendBytes packs str into the free room of the last leaf and hangs
// whatever does not fit off a new root.
func (r *Rope) appendBytes(str []byte) error {
	if len(str) == 0 {
		return nil
	}
	last, err := r.lastLeaf()
	if err != nil {
		return err
	}
	fit := min(r.leafCap-r.node(last).count, len(str))
	rest := str[fit:]

	if len(rest) > 0 {
		if need := nodesFor(len(rest), r.leafCap) + 1; !r.alloc.CanAllocate(need) {
			return errors.Wrapf(ErrAllocatorExhausted, "append of %d bytes needs %d nodes", len(rest), need)
		}
		sub, err := r.build(rest)
		if err != nil {
			return err
		}
		root, err := r.concat(r.root, sub)
		if err != nil {
			r.free(sub)
			return err
		}
		r.root = root
		r.depthBound = 1 + max(r.depthBound, heightFor(len(rest), r.leafCap))
		r.log.WithFields(logrus.Fields{
			"appended": len(rest),
			"size":     r.Size(),
		}).Debug("rope re-rooted")
	}

	if fit > 0 {
		ln := r.node(last)
		copy(ln.buf[ln.count:], str[:fit])
		ln.count += fit
		r.fixParentCount(last)
	}
	return nil
}

// lastLeaf returns the leaf holding the final byte, or the rightmost
// leaf of an empty rope.
func (r *Rope) lastLeaf() (NodeID, error) {
	if size := r.Size(); size > 0 {
		leaf, _, err := r.newCursor().seek(size-1, 0)
		if err != nil {
			return nilNode, err
		}
		if leaf == nilNode {
			return nilNode, errors.Wrapf(ErrCorrupt, "no leaf holds offset %d", size-1)
		}
		return leaf, nil
	}
	id := r.root
	for n := r.node(id); !n.IsLeaf(); n = r.node(id) {
		id = n.right
	}
	return id, nil
}

// boundary returns the leaf holding offset p and p's index inside it.
// At the end of the rope it returns the leaf holding the last byte with
// the index just past its content.
func (r *Rope) boundary(p int) (NodeID, int, error) {
	if p < r.Size() {
		leaf, traversed, err := r.newCursor().seek(p, 0)
		if err != nil {
			return nilNode, 0, err
		}
		if leaf == nilNode {
			return nilNode, 0, errors.Wrapf(ErrCorrupt, "no leaf holds offset %d", p)
		}
		return leaf, p - traversed, nil
	}
	leaf, err := r.lastLeaf()
	if err != nil {
		return nilNode, 0, err
	}
	return leaf, r.node(leaf).count, nil
}

// writeThrough overwrites len(str) bytes starting at pos in place and
// returns the leaf holding pos+len(str) with its prefix length.
// Counts do not change.
func (r *Rope) writeThrough(c *cursor, str []byte, pos int) (NodeID, int, error) {
	leaf, traversed, err := c.seek(pos, 0)
	for written := 0; ; {
		if err != nil {
			return nilNode, 0, err
		}
		if written == len(str) {
			return leaf, traversed, nil
		}
		if leaf == nilNode {
			return nilNode, 0, errors.Wrapf(ErrCorrupt, "no leaf holds offset %d", pos)
		}
		n := r.node(leaf)
		k := copy(n.buf[pos-traversed:n.count], str[written:])
		written += k
		pos += k
		leaf, traversed, err = c.seek(pos, traversed)
	}
}

// overwrite handles len(str) == n.
func (r *Rope) overwrite(str []byte, pos int) error {
	_, _, err := r.writeThrough(r.newCursor(), str, pos)
	return err
}

// shrink handles len(str) < n: overwrite, then cut the surplus out of
// the following leaves.
func (r *Rope) shrink(str []byte, pos, n int) error {
	c := r.newCursor()
	leaf, traversed, err := r.writeThrough(c, str, pos)
	if err != nil {
		return err
	}
	pos += len(str)
	n -= len(str)

	var touched []NodeID
	for n > 0 {
		if leaf == nilNode {
			return errors.Wrapf(ErrCorrupt, "%d bytes left to remove past the last leaf", n)
		}
		touched = append(touched, leaf)
		ln := r.node(leaf)
		idx := pos - traversed

		switch {
		case idx > 0 && idx+n >= ln.count:
			// trailing trim
			n -= ln.count - idx
			ln.count = idx
		case idx > 0:
			// interior gap
			copy(ln.buf[idx:], ln.buf[idx+n:ln.count])
			ln.count -= n
			n = 0
		case n >= ln.count:
			// whole leaf
			n -= ln.count
			ln.count = 0
		default:
			// leading trim
			copy(ln.buf, ln.buf[n:ln.count])
			ln.count -= n
			n = 0
		}
		if n == 0 {
			break
		}
		// the next leaf starts exactly at pos now
		traversed += ln.count
		if leaf, err = c.next(); err != nil {
			return err
		}
	}

	for _, id := range touched {
		r.fixParentCount(id)
	}
	r.pruneEmpty(touched)
	return nil
}

// pruneEmpty releases emptied leaves that have a parent. The sibling
// takes the parent's place; ancestor counts are already correct since
// the leaf held nothing.
func (r *Rope) pruneEmpty(leaves []NodeID) {
	for _, id := range leaves {
		ln := r.node(id)
		if ln.count > 0 || ln.parent == nilNode {
			continue
		}
		parent := ln.parent
		sib := r.sibling(id)
		grand := r.node(parent).parent

		r.node(sib).parent = grand
		if grand == nilNode {
			r.root = sib
		} else if g := r.node(grand); g.left == parent {
			g.left = sib
		} else {
			g.right = sib
		}

		pn := r.node(parent)
		pn.left, pn.right, pn.parent = nilNode, nilNode, nilNode
		ln.parent = nilNode
		r.alloc.Deallocate(id)
		r.alloc.Deallocate(parent)
		r.log.WithField("leaf", id).Debug("rope pruned empty leaf")
	}
}

// grow handles len(str) > n: overwrite n bytes, then fit the rest into
// the boundary leaf, splitting it when it overflows.
func (r *Rope) grow(str []byte, pos, n int) error {
	leaf, idx, err := r.boundary(pos + n)
	if err != nil {
		return err
	}
	bn := r.node(leaf)

	// the bytes after the insertion point are saved before being overwritten
	rest := make([]byte, 0, len(str)-n+bn.count-idx)
	rest = append(rest, str[n:]...)
	rest = append(rest, bn.buf[idx:bn.count]...)

	// allocate everything up front so a failure leaves the tree untouched
	room := r.leafCap - idx
	left, right := nilNode, nilNode
	if len(rest) > room {
		over := len(rest) - room
		if need := 1 + nodesFor(over, r.leafCap); !r.alloc.CanAllocate(need) {
			return errors.Wrapf(ErrAllocatorExhausted, "leaf split needs %d nodes", need)
		}
		if right, err = r.build(rest[room:]); err != nil {
			return err
		}
		if left, _, err = r.allocLeaf(); err != nil {
			r.free(right)
			return err
		}
		rest = rest[:room]
	}

	if _, _, err := r.writeThrough(r.newCursor(), str[:n], pos); err != nil {
		r.free(left)
		r.free(right)
		return err
	}

	copy(bn.buf[idx:], rest)
	bn.count = idx + len(rest)

	if left != nilNode {
		ln := r.node(left)
		ln.count = copy(ln.buf, bn.buf[:bn.count])
		r.link(leaf, left, right)
		depth := r.depthOf(leaf) + 1 + r.measureDepth(right)
		r.depthBound = max(r.depthBound, depth)
		r.log.WithFields(logrus.Fields{
			"leaf":  leaf,
			"depth": depth,
		}).Debug("rope split leaf")
	}
	r.fixParentCount(leaf)
	return nil
}
