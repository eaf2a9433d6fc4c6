package rope

import "github.com/cockroachdb/errors"

// cursor walks the tree in preorder with an explicit stack.
// The right child is pushed before the left, so leaves come out in
// document order.
type cursor struct {
	r       *Rope
	stack   []NodeID
	limit   int    // stack capacity, 0 when growable
	current NodeID // last leaf returned
}

// newCursor creates a cursor positioned before the first leaf.
func (r *Rope) newCursor() *cursor {
	c := &cursor{r: r, current: nilNode}
	if r.growable {
		c.stack = make([]NodeID, 0, 16)
	} else {
		c.limit = r.stackDepth
		c.stack = make([]NodeID, 0, r.stackDepth)
	}
	c.stack = append(c.stack, r.root)
	return c
}

func (c *cursor) push(id NodeID) error {
	if c.limit > 0 && len(c.stack) >= c.limit {
		return errors.Wrapf(ErrStackOverflow, "stack capacity %d", c.limit)
	}
	c.stack = append(c.stack, id)
	return nil
}

func (c *cursor) pop() NodeID {
	id := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	return id
}

func (c *cursor) pushChildren(n *Node) error {
	if n.right != nilNode {
		if err := c.push(n.right); err != nil {
			return err
		}
	}
	if n.left != nilNode {
		if err := c.push(n.left); err != nil {
			return err
		}
	}
	return nil
}

// seek returns the leaf whose range holds global offset pos, together
// with the number of bytes that precede it. traversed is the prefix
// length already consumed by earlier calls on the same cursor.
// Subtrees lying entirely before pos are skipped without descending.
// It returns nilNode when pos is at or past the end.
func (c *cursor) seek(pos, traversed int) (NodeID, int, error) {
	if c.current != nilNode {
		n := c.r.node(c.current)
		if pos-traversed < n.count {
			return c.current, traversed, nil
		}
		traversed += n.count
	}

	for len(c.stack) > 0 {
		id := c.pop()
		n := c.r.node(id)
		if pos < traversed || pos >= traversed+n.count {
			traversed += n.count
			continue
		}
		if err := c.pushChildren(n); err != nil {
			return nilNode, traversed, err
		}
		if n.IsLeaf() {
			c.current = id
			return id, traversed, nil
		}
	}
	c.current = nilNode
	return nilNode, traversed, nil
}

// next returns the next leaf in document order, or nilNode when the
// walk is finished.
func (c *cursor) next() (NodeID, error) {
	for len(c.stack) > 0 {
		id := c.pop()
		n := c.r.node(id)
		if err := c.pushChildren(n); err != nil {
			return nilNode, err
		}
		if n.IsLeaf() {
			c.current = id
			return id, nil
		}
	}
	c.current = nilNode
	return nilNode, nil
}
