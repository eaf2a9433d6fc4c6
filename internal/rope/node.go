package rope

// NodeID addresses a node inside an Allocator.
type NodeID int32

// nilNode marks an absent child or parent.
const nilNode NodeID = -1

// Node is a rope tree node.
// A leaf has no children and holds up to LeafCapacity bytes in buf.
// An internal node has exactly two children and count equal to their sum.
type Node struct {
	count  int    // valid bytes in this subtree
	left   NodeID // owning child link
	right  NodeID // owning child link
	parent NodeID // back-reference for count propagation only
	buf    []byte // leaf storage, len == leaf capacity
}

// IsLeaf returns true if the node has no children.
func (n *Node) IsLeaf() bool {
	return n.left == nilNode && n.right == nilNode
}

// Count returns the number of bytes in this node's subtree.
func (n *Node) Count() int {
	return n.count
}

// reset detaches the node and clears its count.
// The leaf buffer is kept so pooled allocators can reuse it.
func (n *Node) reset() {
	n.count = 0
	n.left = nilNode
	n.right = nilNode
	n.parent = nilNode
}

// nodesFor returns how many nodes build allocates for m bytes.
func nodesFor(m, capacity int) int {
	if m <= capacity {
		return 1
	}
	half := m / 2
	return 1 + nodesFor(half, capacity) + nodesFor(m-half, capacity)
}

// heightFor returns the height of the subtree build produces for m bytes.
// A single leaf has height 0.
func heightFor(m, capacity int) int {
	h := 0
	for m > capacity {
		m -= m / 2
		h++
	}
	return h
}

// node returns the node stored under id.
func (r *Rope) node(id NodeID) *Node {
	return r.alloc.Node(id)
}

// allocLeaf allocates an empty, unparented leaf.
func (r *Rope) allocLeaf() (NodeID, *Node, error) {
	id, err := r.alloc.Allocate()
	if err != nil {
		return nilNode, nil, err
	}
	n := r.alloc.Node(id)
	n.reset()
	if cap(n.buf) < r.leafCap {
		n.buf = make([]byte, r.leafCap)
	} else {
		n.buf = n.buf[:r.leafCap]
	}
	return id, n, nil
}

// allocInternal allocates an unparented internal node over left and right.
func (r *Rope) allocInternal(left, right NodeID) (NodeID, error) {
	id, err := r.alloc.Allocate()
	if err != nil {
		return nilNode, err
	}
	n := r.alloc.Node(id)
	n.reset()
	r.link(id, left, right)
	return id, nil
}

// link makes left and right the children of id and sets its count.
func (r *Rope) link(id, left, right NodeID) {
	n := r.node(id)
	l, rt := r.node(left), r.node(right)
	n.left, n.right = left, right
	l.parent, rt.parent = id, id
	n.count = l.count + rt.count
}

// fixParentCount walks from id to the root, restoring
// count == left.count + right.count on every ancestor.
func (r *Rope) fixParentCount(id NodeID) {
	for p := r.node(id).parent; p != nilNode; p = r.node(p).parent {
		pn := r.node(p)
		pn.count = r.node(pn.left).count + r.node(pn.right).count
	}
}

// depthOf returns the number of edges between id and the root.
func (r *Rope) depthOf(id NodeID) int {
	d := 0
	for p := r.node(id).parent; p != nilNode; p = r.node(p).parent {
		d++
	}
	return d
}

// sibling returns the other child of id's parent.
func (r *Rope) sibling(id NodeID) NodeID {
	p := r.node(r.node(id).parent)
	if p.left == id {
		return p.right
	}
	return p.left
}

// free releases the subtree rooted at id. The parent-side link is
// cleared before descending, so nothing references a released node.
func (r *Rope) free(id NodeID) {
	if id == nilNode {
		return
	}
	n := r.node(id)
	if n.parent != nilNode {
		p := r.node(n.parent)
		if p.left == id {
			p.left = nilNode
		}
		if p.right == id {
			p.right = nilNode
		}
		n.parent = nilNode
	}
	r.free(n.left)
	r.free(n.right)
	r.alloc.Deallocate(id)
}
