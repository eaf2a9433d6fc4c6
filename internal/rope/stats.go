package rope

// Stats describes the shape of a rope's tree.
type Stats struct {
	Size          int // bytes held
	Depth         int // edges from the root to the deepest leaf
	Leaves        int
	Internal      int
	EmptyLeaves   int
	LeafCapacity  int
	AllocatorLive int // live nodes in the allocator, shared ropes included
}

// Stats walks the tree and reports its shape. The measured depth also
// refreshes the bound used for traversal stack checks.
func (r *Rope) Stats() Stats {
	s := Stats{LeafCapacity: r.leafCap, AllocatorLive: r.alloc.Live()}
	if r.closed {
		return s
	}
	s.Size = r.Size()
	s.Depth = r.collect(r.root, &s)
	r.depthBound = s.Depth
	return s
}

func (r *Rope) collect(id NodeID, s *Stats) int {
	n := r.node(id)
	if n.IsLeaf() {
		s.Leaves++
		if n.count == 0 {
			s.EmptyLeaves++
		}
		return 0
	}
	s.Internal++
	return 1 + max(r.collect(n.left, s), r.collect(n.right, s))
}
