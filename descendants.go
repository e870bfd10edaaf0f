package sprig

import "math"

// HighestAtlasIndexUnder returns the largest atlas index held by n or any node
// below it. ok is false when nothing in the subtree holds a slot.
func (b *SpriteBatch) HighestAtlasIndexUnder(n *Node) (index int, ok bool) {
	index = unassignedIndex
	if n != b.node && n.tracked() {
		index = n.atlasIndex
	}
	for _, c := range n.children {
		if hi, found := b.HighestAtlasIndexUnder(c); found && hi > index {
			index = hi
		}
	}
	return index, index != unassignedIndex
}

// LowestAtlasIndexUnder returns the smallest atlas index held by n or any node
// below it. ok is false when nothing in the subtree holds a slot.
func (b *SpriteBatch) LowestAtlasIndexUnder(n *Node) (index int, ok bool) {
	if n != b.node && n.tracked() {
		// A tracked node precedes its whole subtree.
		return n.atlasIndex, true
	}
	index = math.MaxInt
	for _, c := range n.children {
		if lo, found := b.LowestAtlasIndexUnder(c); found && lo < index {
			index = lo
		}
	}
	if index == math.MaxInt {
		return unassignedIndex, false
	}
	return index, true
}

// AtlasIndexForChild returns the slot a new sprite with ZIndex z would take
// when added under parent: after every sibling that orders before it,
// including siblings with the same z, and after parent itself.
//
// A parent that holds no slot itself (a container added with
// AddSpriteWithoutQuad) does not place its first child at 0: the child goes
// where the parent's own range would start among its siblings, so every
// subtree stays contiguous in draw order.
func (b *SpriteBatch) AtlasIndexForChild(parent *Node, z int) int {
	return b.slotFor(parent, nil, z, math.MaxUint64)
}

// insertionSlot returns the slot n belongs at among parent's children. The
// slots of n's own subtree are ignored.
func (b *SpriteBatch) insertionSlot(parent, n *Node) int {
	return b.slotFor(parent, n, n.ZIndex, n.arrival)
}

// slotFor returns the slot just after the last sibling ordered before
// (z, arrival) that holds any slot, or where parent's children start when
// there is none. Siblings are scanned from the back, so appends are O(1).
func (b *SpriteBatch) slotFor(parent, skip *Node, z int, arrival uint64) int {
	sibs := orderedChildren(parent)
	for i := len(sibs) - 1; i >= 0; i-- {
		sib := sibs[i]
		if sib == skip || sib.ZIndex > z || (sib.ZIndex == z && sib.arrival > arrival) {
			continue
		}
		if hi, ok := b.HighestAtlasIndexUnder(sib); ok {
			return hi + 1
		}
	}
	return b.childrenStart(parent)
}

// childrenStart returns the slot where parent's first child would go: right
// after a tracked parent, or where parent's own range starts among its
// siblings when parent holds no slot.
func (b *SpriteBatch) childrenStart(parent *Node) int {
	if parent == b.node {
		return 0
	}
	if parent.tracked() {
		return parent.atlasIndex + 1
	}
	if parent.Parent == nil {
		return 0
	}
	return b.slotFor(parent.Parent, parent, parent.ZIndex, parent.arrival)
}

// countTracked returns how many nodes in n's subtree hold a slot.
func countTracked(n *Node) int {
	count := 0
	if n.Type != NodeTypeBatch && n.tracked() {
		count++
	}
	for _, c := range n.children {
		count += countTracked(c)
	}
	return count
}

// collectTracked appends every node in n's subtree that holds a slot to buf.
func collectTracked(n *Node, buf []*Node) []*Node {
	if n.Type != NodeTypeBatch && n.tracked() {
		buf = append(buf, n)
	}
	for _, c := range n.children {
		buf = collectTracked(c, buf)
	}
	return buf
}
