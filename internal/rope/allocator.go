package rope

import "github.com/cockroachdb/errors"

// Allocator supplies node storage to a Rope.
//
// Nodes are addressed by NodeID so the tree never holds raw pointers
// between nodes. Node must return a pointer that stays valid until the
// id is deallocated, and nil for an id that is not live.
//
// An Allocator is not safe for concurrent use. Several ropes may share
// one allocator when they are driven from the same goroutine.
type Allocator interface {
	// Allocate reserves a node and returns its id.
	Allocate() (NodeID, error)

	// Deallocate releases a node. The id may be handed out again.
	Deallocate(id NodeID)

	// Node returns the node for id, or nil if id is not live.
	Node(id NodeID) *Node

	// CanAllocate reports whether n more nodes can be allocated.
	CanAllocate(n int) bool

	// Live returns the number of allocated nodes.
	Live() int
}

// HeapAllocator allocates every node separately and drops released
// nodes, leaf buffers included. Slots in the id table are recycled.
type HeapAllocator struct {
	nodes    []*Node
	free     []NodeID
	maxNodes int
	live     int
}

// NewHeapAllocator creates a heap allocator.
// maxNodes limits live nodes; zero means unlimited.
func NewHeapAllocator(maxNodes int) *HeapAllocator {
	return &HeapAllocator{maxNodes: maxNodes}
}

// Allocate reserves a fresh node.
func (a *HeapAllocator) Allocate() (NodeID, error) {
	if !a.CanAllocate(1) {
		return nilNode, errors.Wrapf(ErrAllocatorExhausted, "heap limit %d reached", a.maxNodes)
	}
	n := &Node{left: nilNode, right: nilNode, parent: nilNode}
	a.live++
	if k := len(a.free); k > 0 {
		id := a.free[k-1]
		a.free = a.free[:k-1]
		a.nodes[id] = n
		return id, nil
	}
	a.nodes = append(a.nodes, n)
	return NodeID(len(a.nodes) - 1), nil
}

// Deallocate releases id.
func (a *HeapAllocator) Deallocate(id NodeID) {
	if a.Node(id) == nil {
		return
	}
	a.nodes[id] = nil
	a.free = append(a.free, id)
	a.live--
}

// Node returns the node for id.
func (a *HeapAllocator) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(a.nodes) {
		return nil
	}
	return a.nodes[id]
}

// CanAllocate reports whether n more nodes fit under the limit.
func (a *HeapAllocator) CanAllocate(n int) bool {
	return a.maxNodes <= 0 || a.live+n <= a.maxNodes
}

// Live returns the number of allocated nodes.
func (a *HeapAllocator) Live() int {
	return a.live
}

// DefaultPageSize is the number of nodes per Arena page.
const DefaultPageSize = 256

// Arena is a pooled allocator. Nodes are carved from fixed-size pages,
// released nodes go on a free list, and their leaf buffers are kept
// for the next allocation. Pages are never moved, so node pointers stay
// stable while the arena grows.
type Arena struct {
	pages    [][]Node
	inUse    []bool
	free     []NodeID
	pageSize int
	maxNodes int
	live     int
}

// NewArena creates an arena with pageSize nodes per page.
// maxNodes limits live nodes; zero means unlimited.
func NewArena(pageSize, maxNodes int) *Arena {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Arena{
		pageSize: pageSize,
		maxNodes: maxNodes,
	}
}

// Allocate reserves a node, reusing a released one when possible.
func (a *Arena) Allocate() (NodeID, error) {
	if !a.CanAllocate(1) {
		return nilNode, errors.Wrapf(ErrAllocatorExhausted, "arena limit %d reached", a.maxNodes)
	}
	var id NodeID
	if k := len(a.free); k > 0 {
		id = a.free[k-1]
		a.free = a.free[:k-1]
	} else {
		if len(a.inUse)%a.pageSize == 0 {
			a.pages = append(a.pages, make([]Node, a.pageSize))
		}
		id = NodeID(len(a.inUse))
		a.inUse = append(a.inUse, false)
	}
	a.inUse[id] = true
	a.live++
	a.slot(id).reset()
	return id, nil
}

// Deallocate returns id to the free list.
func (a *Arena) Deallocate(id NodeID) {
	if a.Node(id) == nil {
		return
	}
	a.inUse[id] = false
	a.free = append(a.free, id)
	a.live--
}

// Node returns the node for id.
func (a *Arena) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(a.inUse) || !a.inUse[id] {
		return nil
	}
	return a.slot(id)
}

func (a *Arena) slot(id NodeID) *Node {
	return &a.pages[int(id)/a.pageSize][int(id)%a.pageSize]
}

// CanAllocate reports whether n more nodes fit under the limit.
func (a *Arena) CanAllocate(n int) bool {
	return a.maxNodes <= 0 || a.live+n <= a.maxNodes
}

// Live returns the number of allocated nodes.
func (a *Arena) Live() int {
	return a.live
}

// Pages returns the number of pages the arena has grown to.
func (a *Arena) Pages() int {
	return len(a.pages)
}
