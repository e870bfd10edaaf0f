package sprig

// flushReorder brings the atlas back into draw order after ZIndex changes.
// A single reordered subtree is moved as one block; more than one rebuilds
// each affected parent.
func (b *SpriteBatch) flushReorder() {
	switch len(b.pending) {
	case 0:
		return
	case 1:
		b.moveSubtree(b.pending[0])
	default:
		for _, p := range b.reorderRoots() {
			b.RebuildOrder(p)
		}
	}
	clear(b.pending)
	b.pending = b.pending[:0]
}

// moveSubtree moves n's contiguous block of slots to where its new ZIndex
// puts it among its siblings.
func (b *SpriteBatch) moveSubtree(n *Node) {
	if n.Parent == nil || n.batch != b {
		return
	}
	lo, ok := b.LowestAtlasIndexUnder(n)
	if !ok {
		// Nothing drawn; the sibling order alone changed.
		return
	}
	hi, _ := b.HighestAtlasIndexUnder(n)
	if hi-lo+1 != countTracked(n) {
		b.RebuildOrder(n.Parent)
		return
	}
	target := b.insertionSlot(n.Parent, n)
	switch {
	case target > hi+1:
		b.rotate(lo, hi+1, target)
	case target < lo:
		b.rotate(target, lo, hi+1)
	}
}

// reorderRoots returns the parents of the pending nodes, dropping any parent
// that lies below another one in the set.
func (b *SpriteBatch) reorderRoots() []*Node {
	var roots []*Node
	for _, n := range b.pending {
		p := n.Parent
		if p == nil || p.batch != b {
			continue
		}
		dup := false
		for _, r := range roots {
			if r == p {
				dup = true
				break
			}
		}
		if !dup {
			roots = append(roots, p)
		}
	}
	kept := roots[:0]
	for _, p := range roots {
		covered := false
		for _, q := range roots {
			if q != p && isAncestor(q, p) {
				covered = true
				break
			}
		}
		if !covered {
			kept = append(kept, p)
		}
	}
	return kept
}

// dropPending forgets pending reorders for n and anything below it.
func (b *SpriteBatch) dropPending(n *Node) {
	kept := b.pending[:0]
	for _, p := range b.pending {
		if !isAncestor(n, p) {
			kept = append(kept, p)
		}
	}
	clear(b.pending[len(kept):])
	b.pending = kept
}

// RebuildOrder re-sorts the slots held by parent's subtree into draw order by
// swapping quads in place. Returns the index just past the rebuilt range, so
// callers can continue a larger rebuild from there. For a parent with nothing
// tracked below it, the range is empty and the slot where its children would
// go is returned.
func (b *SpriteBatch) RebuildOrder(parent *Node) int {
	if parent == nil || parent.batch != b {
		return unassignedIndex
	}
	start := 0
	if parent != b.node {
		lo, ok := b.LowestAtlasIndexUnder(parent)
		if !ok {
			return b.childrenStart(parent)
		}
		start = lo
	}
	return b.rebuildIndexInOrder(parent, start)
}

// rebuildIndexInOrder places n (when tracked) at index and its children after
// it in draw order. Returns the next free index.
func (b *SpriteBatch) rebuildIndexInOrder(n *Node, index int) int {
	if n != b.node && n.tracked() {
		b.swap(n.atlasIndex, index)
		index++
	}
	for _, c := range orderedChildren(n) {
		index = b.rebuildIndexInOrder(c, index)
	}
	return index
}
