package rope

// LeafIterator walks the leaves of a rope in document order.
//
// The rope must not be modified while an iterator is in use.
type LeafIterator struct {
	r    *Rope
	c    *cursor
	leaf NodeID
	err  error
}

// Leaves returns an iterator over the rope's leaves.
func (r *Rope) Leaves() *LeafIterator {
	it := &LeafIterator{r: r, leaf: nilNode}
	if r.closed {
		it.err = ErrClosed
		return it
	}
	if it.err = r.checkDepth(); it.err == nil {
		it.c = r.newCursor()
	}
	return it
}

// Next advances to the next leaf.
// Returns false when iteration is complete or failed; check Err.
func (it *LeafIterator) Next() bool {
	if it.err != nil || it.c == nil {
		return false
	}
	it.leaf, it.err = it.c.next()
	return it.err == nil && it.leaf != nilNode
}

// Bytes returns the current leaf's content. The slice aliases the leaf
// buffer and is only valid until the rope is modified.
func (it *LeafIterator) Bytes() []byte {
	if it.leaf == nilNode {
		return nil
	}
	n := it.r.node(it.leaf)
	return n.buf[:n.count:n.count]
}

// Err returns the error that stopped iteration, if any.
func (it *LeafIterator) Err() error {
	return it.err
}
