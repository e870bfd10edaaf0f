package sprig

import (
	"fmt"
	"log"
	"slices"
)

// DefaultBatchCapacity is the number of quads a SpriteBatch reserves when
// BatchConfig.Capacity is not set.
const DefaultBatchCapacity = 29

// BatchConfig configures a SpriteBatch.
type BatchConfig struct {
	// Capacity is the initial number of quad slots. Values <= 0 select
	// DefaultBatchCapacity. The atlas grows by a third whenever it fills up.
	Capacity int

	// Blend is the blend mode of the single draw call.
	Blend BlendMode
}

// SpriteBatch draws a tree of sprites that share one texture with a single
// draw call per frame.
//
// The batch keeps a flat list of its tracked sprites (the descendants) in draw
// order, index-aligned with a QuadBuffer: descendants[i].AtlasIndex() == i at
// all times between calls. Draw order is a pre-order walk of the subtree with
// siblings sorted by ZIndex, ties broken by arrival, so every sprite's subtree
// occupies one contiguous range starting at the sprite's own slot.
//
// All mutations of the subtree must go through the batch, either directly or
// through the Node tree API, which routes here for batch-owned nodes.
// Insertion and removal shift the atlas and cost O(n); avoid them in per-frame
// code paths.
type SpriteBatch struct {
	node        *Node
	texture     *Texture
	atlas       *QuadBuffer
	descendants []*Node
	blend       BlendMode

	// pending holds nodes whose ZIndex changed since the last flush.
	pending []*Node
	// detached counts tracked sprites that are not part of the tree
	// (InsertQuadFromSprite).
	detached int

	scratch  []*Node
	disposed bool
}

// NewSpriteBatch creates a batch drawing from tex. The batch retains tex until
// it is disposed. Add the batch to a scene with scene.Root().AddChild(b.Node()).
func NewSpriteBatch(name string, tex *Texture, cfg BatchConfig) *SpriteBatch {
	if tex == nil {
		panic("sprig: sprite batch needs a texture")
	}
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = DefaultBatchCapacity
	}
	n := &Node{Name: name, Type: NodeTypeBatch}
	nodeDefaults(n)
	b := &SpriteBatch{
		node:        n,
		texture:     tex.Retain(),
		atlas:       NewQuadBuffer(capacity),
		descendants: make([]*Node, 0, capacity),
		blend:       cfg.Blend,
	}
	n.batch = b
	return b
}

// Node returns the scene graph node representing the batch.
func (b *SpriteBatch) Node() *Node { return b.node }

// Texture returns the batch texture.
func (b *SpriteBatch) Texture() *Texture { return b.texture }

// Atlas returns the batch's quad buffer. Callers must treat it as read-only.
func (b *SpriteBatch) Atlas() *QuadBuffer { return b.atlas }

// Descendants returns the tracked sprites in draw order. The returned slice
// MUST NOT be mutated by the caller.
func (b *SpriteBatch) Descendants() []*Node { return b.descendants }

// Len returns the number of tracked sprites.
func (b *SpriteBatch) Len() int { return len(b.descendants) }

// Capacity returns the number of quads the atlas holds before growing.
func (b *SpriteBatch) Capacity() int { return b.atlas.Cap() }

// BlendMode returns the blend mode of the batch draw call.
func (b *SpriteBatch) BlendMode() BlendMode { return b.blend }

// SetBlendMode sets the blend mode of the batch draw call.
func (b *SpriteBatch) SetBlendMode(m BlendMode) { b.blend = m }

// IsDisposed reports whether the batch has been disposed.
func (b *SpriteBatch) IsDisposed() bool { return b.disposed }

// SetTexture swaps the batch texture, retaining tex and releasing the old one.
// Every tracked quad is rewritten on the next draw.
func (b *SpriteBatch) SetTexture(tex *Texture) {
	if tex == nil {
		panic("sprig: sprite batch needs a texture")
	}
	if tex == b.texture || b.disposed {
		return
	}
	tex.Retain()
	b.texture.Release()
	b.texture = tex
	markSubtreeDirty(b.node)
	for _, d := range b.descendants {
		d.transformDirty = true
	}
}

// String describes the batch for logs.
func (b *SpriteBatch) String() string {
	texName := ""
	if b.texture != nil {
		texName = b.texture.Name()
	}
	return fmt.Sprintf("<SpriteBatch | name = %q | quads = %d | capacity = %d | texture = %q>",
		b.node.Name, b.atlas.Len(), b.atlas.Cap(), texName)
}

// --- Tree mutations ---

// AddChild adds child (and its subtree) as a direct child of the batch and
// gives every sprite in it a slot. Returns ErrNotSprite or ErrTextureMismatch
// without changing anything if the subtree cannot be batched.
func (b *SpriteBatch) AddChild(child *Node) error {
	return b.addChild(b.node, child)
}

// addChild attaches child under parent, which is the batch node or a node in
// the batch subtree, and tracks the child's subtree.
func (b *SpriteBatch) addChild(parent, child *Node) error {
	if child == nil {
		panic("sprig: cannot add nil child")
	}
	if b.disposed {
		return fmt.Errorf("sprig: add %q to batch %q: %w", child.Name, b.node.Name, ErrDisposed)
	}
	if err := b.checkSubtree(child, false); err != nil {
		return err
	}
	if child.batch != nil && child.Parent == nil {
		return fmt.Errorf("sprig: add %q to batch %q: %w", child.Name, b.node.Name, ErrAlreadyTracked)
	}
	if parent != b.node && parent.Parent == nil {
		return fmt.Errorf("sprig: add %q under %q in batch %q: %w", child.Name, parent.Name, b.node.Name, ErrDetached)
	}
	if isAncestor(child, parent) {
		return fmt.Errorf("sprig: add %q to batch %q: %w", child.Name, b.node.Name, ErrCycle)
	}

	child.RemoveFromParent()
	b.flushReorder()
	attachChild(parent, child)
	setBatch(child, b)
	if err := b.appendSubtree(child); err != nil {
		return err
	}
	if globalDebug {
		debugCheckAttach(parent, child)
	}
	b.debugValidate("AddChild")
	return nil
}

// AppendChild gives a slot to a sprite that is already a member of the batch
// tree but holds none, for example after RemoveSpriteFromAtlas. Untracked
// sprites below it are appended as well.
func (b *SpriteBatch) AppendChild(sprite *Node) error {
	if sprite == nil {
		panic("sprig: cannot append nil sprite")
	}
	if b.disposed {
		return fmt.Errorf("sprig: append %q to batch %q: %w", sprite.Name, b.node.Name, ErrDisposed)
	}
	if sprite.batch != b || sprite.Type == NodeTypeBatch || sprite.Parent == nil {
		return fmt.Errorf("sprig: append %q: not in batch %q: %w", sprite.Name, b.node.Name, ErrNotTracked)
	}
	if sprite.tracked() {
		return fmt.Errorf("sprig: append %q to batch %q: %w", sprite.Name, b.node.Name, ErrAlreadyTracked)
	}
	if err := b.checkSubtree(sprite, false); err != nil {
		return err
	}
	b.flushReorder()
	if err := b.appendSubtree(sprite); err != nil {
		return err
	}
	b.debugValidate("AppendChild")
	return nil
}

// AddSpriteWithoutQuad adds child under the batch with the given ZIndex but
// gives it no slot. Used for pure containers, and for bulk setups that place
// quads with InsertQuadFromSprite. The caller keeps the tree and the atlas
// consistent afterwards; nothing reconciles them automatically.
func (b *SpriteBatch) AddSpriteWithoutQuad(child *Node, z int) error {
	if child == nil {
		panic("sprig: cannot add nil child")
	}
	if b.disposed {
		return fmt.Errorf("sprig: add %q to batch %q: %w", child.Name, b.node.Name, ErrDisposed)
	}
	if err := b.checkSubtree(child, true); err != nil {
		return err
	}
	if child.batch != nil && child.Parent == nil {
		return fmt.Errorf("sprig: add %q to batch %q: %w", child.Name, b.node.Name, ErrAlreadyTracked)
	}
	if isAncestor(child, b.node) {
		return fmt.Errorf("sprig: add %q to batch %q: %w", child.Name, b.node.Name, ErrCycle)
	}

	child.RemoveFromParent()
	b.flushReorder()
	child.ZIndex = z
	attachChild(b.node, child)
	setBatch(child, b)
	return nil
}

// InsertQuadFromSprite puts sprite's quad at atlas index without adding the
// sprite to the tree. Meant for very large, mostly static sprite sets such as
// tile maps. The sprite is positioned relative to the batch node.
//
// A sprite already placed in the batch tree with AddSpriteWithoutQuad may also
// be given its slot this way. The caller is responsible for choosing an index
// consistent with the draw order.
func (b *SpriteBatch) InsertQuadFromSprite(sprite *Node, index int) error {
	if sprite == nil {
		panic("sprig: cannot insert nil sprite")
	}
	if b.disposed {
		return fmt.Errorf("sprig: insert %q into batch %q: %w", sprite.Name, b.node.Name, ErrDisposed)
	}
	if err := b.checkSprite(sprite, false); err != nil {
		return err
	}
	member := sprite.batch == b && sprite.Parent != nil && !sprite.tracked()
	if !member && (sprite.batch != nil || sprite.Parent != nil) {
		return fmt.Errorf("sprig: insert %q into batch %q: %w", sprite.Name, b.node.Name, ErrAlreadyTracked)
	}
	if !member && len(sprite.children) > 0 {
		return fmt.Errorf("sprig: insert %q into batch %q: has %d children: %w", sprite.Name, b.node.Name, len(sprite.children), ErrDetached)
	}

	b.flushReorder()
	if index < 0 || index > len(b.descendants) {
		return fmt.Errorf("sprig: insert %q at %d (len %d): %w", sprite.Name, index, len(b.descendants), ErrIndexOutOfRange)
	}
	if !member {
		sprite.batch = b
		b.detached++
	}
	if err := b.insertTracked(sprite, index); err != nil {
		return err
	}
	b.writeQuad(sprite)
	return nil
}

// UpdateQuadFromSprite recomputes the quad of the sprite at atlas index right
// away, without waiting for the next draw.
func (b *SpriteBatch) UpdateQuadFromSprite(sprite *Node, index int) error {
	if index < 0 || index >= len(b.descendants) {
		return fmt.Errorf("sprig: update quad at %d (len %d): %w", index, len(b.descendants), ErrIndexOutOfRange)
	}
	if b.descendants[index] != sprite {
		return fmt.Errorf("sprig: update quad at %d: %s does not hold the slot: %w", index, nodeName(sprite), ErrNotTracked)
	}
	b.writeQuad(sprite)
	return nil
}

// RemoveChild removes child and its subtree from the batch tree and reclaims
// every slot in it. With cleanup, tweens running on the subtree are stopped.
// Returns ErrNotTracked (and changes nothing) when child is not in the batch
// tree.
func (b *SpriteBatch) RemoveChild(child *Node, cleanup bool) error {
	if b.disposed {
		return fmt.Errorf("sprig: remove %s from batch %q: %w", nodeName(child), b.node.Name, ErrDisposed)
	}
	if child == nil || child.batch != b || child.Type == NodeTypeBatch || child.Parent == nil {
		return fmt.Errorf("sprig: remove %s from batch %q: %w", nodeName(child), b.node.Name, ErrNotTracked)
	}
	if err := b.removeSubtree(child); err != nil {
		return err
	}
	b.dropPending(child)
	if cleanup {
		stopSubtreeTweens(child)
	}
	detachChild(child.Parent, child)
	clearBatch(child)
	b.debugValidate("RemoveChild")
	return nil
}

// RemoveChildAtIndex removes the batch's direct child at position index of
// Node().Children(). The position is a scene-tree index, not an atlas index.
// Removal is slow: it is O(subtree) plus an O(n) shift of the atlas.
func (b *SpriteBatch) RemoveChildAtIndex(index int, cleanup bool) error {
	children := b.node.children
	if index < 0 || index >= len(children) {
		return fmt.Errorf("sprig: remove child %d of batch %q (%d children): %w", index, b.node.Name, len(children), ErrIndexOutOfRange)
	}
	return b.RemoveChild(children[index], cleanup)
}

// RemoveAllChildren empties the batch tree, the descendants and the atlas.
// Capacity is kept.
func (b *SpriteBatch) RemoveAllChildren(cleanup bool) {
	for _, d := range b.descendants {
		d.atlasIndex = unassignedIndex
		if d.Parent == nil {
			d.batch = nil
		}
	}
	clear(b.descendants)
	b.descendants = b.descendants[:0]
	b.detached = 0
	b.atlas.Clear()

	for i, c := range b.node.children {
		if cleanup {
			stopSubtreeTweens(c)
		}
		c.Parent = nil
		clearBatch(c)
		markSubtreeDirty(c)
		b.node.children[i] = nil
	}
	b.node.children = b.node.children[:0]
	b.node.childrenSorted = false
	clear(b.pending)
	b.pending = b.pending[:0]
}

// RemoveSpriteFromAtlas reclaims the slots of sprite and its subtree without
// touching the tree. A tree member stays in the tree untracked and can be
// re-added with AppendChild; a sprite placed with InsertQuadFromSprite leaves
// the batch. Returns ErrNotTracked when nothing held a slot.
func (b *SpriteBatch) RemoveSpriteFromAtlas(sprite *Node) error {
	if sprite == nil || sprite.batch != b || sprite.Type == NodeTypeBatch {
		return fmt.Errorf("sprig: remove %s from atlas of %q: %w", nodeName(sprite), b.node.Name, ErrNotTracked)
	}
	if err := b.removeSubtree(sprite); err != nil {
		return err
	}
	if sprite.Parent == nil {
		sprite.batch = nil
		b.detached--
	}
	b.debugValidate("RemoveSpriteFromAtlas")
	return nil
}

// ReorderChild changes child's ZIndex. The atlas is brought back into draw
// order lazily, before the next draw or structural change, so many reorders in
// one frame cost one pass.
func (b *SpriteBatch) ReorderChild(child *Node, z int) error {
	if b.disposed {
		return fmt.Errorf("sprig: reorder %s in batch %q: %w", nodeName(child), b.node.Name, ErrDisposed)
	}
	if child == nil || child.batch != b || child.Type == NodeTypeBatch || child.Parent == nil {
		return fmt.Errorf("sprig: reorder %s in batch %q: %w", nodeName(child), b.node.Name, ErrNotTracked)
	}
	if child.ZIndex == z {
		return nil
	}
	child.ZIndex = z
	child.arrival = nextArrival()
	child.Parent.childrenSorted = false
	if !slices.Contains(b.pending, child) {
		b.pending = append(b.pending, child)
	}
	return nil
}

// SortAllChildren applies pending reorders now.
func (b *SpriteBatch) SortAllChildren() {
	b.flushReorder()
	b.debugValidate("SortAllChildren")
}

// IncreaseAtlasCapacity grows the atlas by a third, as happens automatically
// when it fills up.
func (b *SpriteBatch) IncreaseAtlasCapacity() {
	before := b.atlas.Cap()
	b.atlas.Grow()
	b.logGrowth(before)
}

// ShrinkToFit releases unused atlas capacity.
func (b *SpriteBatch) ShrinkToFit() {
	b.atlas.ShrinkToFit()
}

// Dispose removes the batch from its parent, disposes its subtree and releases
// the texture.
func (b *SpriteBatch) Dispose() {
	if b.disposed {
		return
	}
	b.node.Dispose()
}

// release drops every slot and the texture reference. Called when the batch
// node is disposed.
func (b *SpriteBatch) release() {
	if b.disposed {
		return
	}
	for _, d := range b.descendants {
		d.atlasIndex = unassignedIndex
		if d.Parent == nil {
			d.batch = nil
		}
	}
	for _, c := range b.node.children {
		clearBatch(c)
	}
	b.descendants = nil
	b.detached = 0
	b.pending = nil
	b.atlas.Clear()
	if b.texture != nil {
		b.texture.Release()
		b.texture = nil
	}
	b.disposed = true
}

// --- Drawing ---

// Draw refreshes dirty quads and submits the whole atlas to sink in one call.
// Nothing is submitted for an empty or hidden batch. Scene.Draw calls this for
// every batch in the tree; call it directly when driving a batch by hand.
func (b *SpriteBatch) Draw(sink RenderSink) {
	if b.disposed || !b.node.Visible {
		return
	}
	w, a := resolveWorld(b.node)
	recompute := b.node.transformDirty || w != b.node.worldTransform || a != b.node.worldAlpha
	b.node.worldTransform = w
	b.node.worldAlpha = a
	b.node.transformDirty = false
	b.draw(sink, recompute)
}

// draw runs after the batch node's world transform is current.
func (b *SpriteBatch) draw(sink RenderSink, recomputed bool) {
	if b.disposed {
		return
	}
	b.flushReorder()
	b.refresh(b.node, recomputed, true)
	if b.detached > 0 {
		b.refreshDetached(recomputed)
	}
	n := b.atlas.Len()
	if n == 0 {
		return
	}
	sink.Submit(DrawBatch{
		Texture:  b.texture,
		Vertices: b.atlas.Vertices(),
		Indices:  b.atlas.Indices(),
		Quads:    n,
		Blend:    b.blend,
	})
}

// refresh walks the subtree below parent, updating world transforms and
// rewriting the quads of tracked sprites that changed.
func (b *SpriteBatch) refresh(parent *Node, parentRecomputed, parentVisible bool) {
	for _, c := range parent.children {
		recompute := refreshWorld(c, parent.worldTransform, parent.worldAlpha, parentRecomputed)
		visible := parentVisible && c.Visible
		if recompute && c.tracked() {
			b.putQuad(c, spriteQuad(c, b.texture, visible))
		}
		b.refresh(c, recompute, visible)
	}
}

// refreshDetached rewrites quads of sprites placed with InsertQuadFromSprite.
func (b *SpriteBatch) refreshDetached(recomputed bool) {
	for _, d := range b.descendants {
		if d.Parent != nil {
			continue
		}
		if refreshWorld(d, b.node.worldTransform, b.node.worldAlpha, recomputed) {
			b.putQuad(d, spriteQuad(d, b.texture, d.Visible))
		}
	}
}

// writeQuad computes sprite's quad from its current transform and stores it.
func (b *SpriteBatch) writeQuad(sprite *Node) {
	visible := sprite.Visible
	if sprite.Parent == nil {
		bw, ba := resolveWorld(b.node)
		sprite.worldTransform = multiplyAffine(bw, computeLocalTransform(sprite))
		sprite.worldAlpha = ba * sprite.Alpha
	} else {
		sprite.worldTransform, sprite.worldAlpha = resolveWorld(sprite)
		for p := sprite.Parent; p != nil && visible; p = p.Parent {
			visible = p.Visible
		}
	}
	sprite.transformDirty = false
	b.putQuad(sprite, spriteQuad(sprite, b.texture, visible))
}

// putQuad stores q in sprite's slot. A slot outside the atlas means the index
// is corrupt; debug mode logs it.
func (b *SpriteBatch) putQuad(sprite *Node, q Quad) {
	if err := b.atlas.UpdateAt(sprite.atlasIndex, q); err != nil && globalDebug {
		log.Printf("sprig: batch %q: write quad of %q: %v", b.node.Name, sprite.Name, err)
	}
}

// --- Slot bookkeeping ---

// appendSubtree gives n and every untracked sprite below it a slot in draw
// order. The atlas must already be in draw order.
func (b *SpriteBatch) appendSubtree(n *Node) error {
	if !n.tracked() && n.Type == NodeTypeSprite {
		slot, ok := b.LowestAtlasIndexUnder(n)
		if !ok {
			slot = b.insertionSlot(n.Parent, n)
		}
		if err := b.insertTracked(n, slot); err != nil {
			return err
		}
	}
	for _, c := range orderedChildren(n) {
		if err := b.appendSubtree(c); err != nil {
			return err
		}
	}
	return nil
}

// insertTracked inserts n into the descendants and the atlas at slot and
// shifts every later slot up by one. The quad is written on the next draw.
func (b *SpriteBatch) insertTracked(n *Node, slot int) error {
	before := b.atlas.Cap()
	if err := b.atlas.InsertAt(slot, Quad{}); err != nil {
		return err
	}
	b.logGrowth(before)
	b.descendants = append(b.descendants, nil)
	copy(b.descendants[slot+1:], b.descendants[slot:])
	b.descendants[slot] = n
	b.reindex(slot, len(b.descendants))
	n.transformDirty = true
	return nil
}

// removeSubtree reclaims the slots of n and every tracked node below it.
// Contiguous subtrees go in one shift; anything else one slot at a time.
func (b *SpriteBatch) removeSubtree(n *Node) error {
	nodes := collectTracked(n, b.scratch[:0])
	defer func() {
		clear(nodes)
		b.scratch = nodes[:0]
	}()
	if len(nodes) == 0 {
		if n.Parent == nil {
			return fmt.Errorf("sprig: %s holds no slot in batch %q: %w", nodeName(n), b.node.Name, ErrNotTracked)
		}
		return nil
	}

	lo, hi := nodes[0].atlasIndex, nodes[0].atlasIndex
	for _, t := range nodes[1:] {
		lo = min(lo, t.atlasIndex)
		hi = max(hi, t.atlasIndex)
	}
	if hi-lo+1 == len(nodes) {
		return b.removeRange(lo, len(nodes))
	}

	slices.SortFunc(nodes, func(x, y *Node) int { return y.atlasIndex - x.atlasIndex })
	for _, t := range nodes {
		if err := b.removeRange(t.atlasIndex, 1); err != nil {
			return err
		}
	}
	return nil
}

// removeRange drops count slots starting at lo from both the atlas and the
// descendants.
func (b *SpriteBatch) removeRange(lo, count int) error {
	if err := b.atlas.RemoveRange(lo, count); err != nil {
		return err
	}
	for _, d := range b.descendants[lo : lo+count] {
		d.atlasIndex = unassignedIndex
	}
	n := len(b.descendants)
	copy(b.descendants[lo:], b.descendants[lo+count:])
	clear(b.descendants[n-count:])
	b.descendants = b.descendants[:n-count]
	b.reindex(lo, len(b.descendants))
	return nil
}

// swap exchanges slots i and j in both the atlas and the descendants.
func (b *SpriteBatch) swap(i, j int) {
	if i == j {
		return
	}
	_ = b.atlas.Swap(i, j)
	b.descendants[i], b.descendants[j] = b.descendants[j], b.descendants[i]
	b.descendants[i].atlasIndex = i
	b.descendants[j].atlasIndex = j
}

// rotate moves the slots [middle, last) in front of [first, middle).
func (b *SpriteBatch) rotate(first, middle, last int) {
	_ = b.atlas.Rotate(first, middle, last)
	rotateRange(b.descendants[first:last], middle-first)
	b.reindex(first, last)
}

// reindex rewrites the atlas index of every descendant in [from, to).
func (b *SpriteBatch) reindex(from, to int) {
	for i := from; i < to; i++ {
		b.descendants[i].atlasIndex = i
	}
}

func (b *SpriteBatch) logGrowth(before int) {
	if globalDebug && b.atlas.Cap() != before {
		log.Printf("sprig: batch %q atlas grew %d -> %d quads", b.node.Name, before, b.atlas.Cap())
	}
}

// --- Validation ---

// checkSubtree verifies that every node under n can live in this batch.
// Containers are accepted only when allowContainers is set.
func (b *SpriteBatch) checkSubtree(n *Node, allowContainers bool) error {
	if err := b.checkSprite(n, allowContainers); err != nil {
		return err
	}
	for _, c := range n.children {
		if err := b.checkSubtree(c, allowContainers); err != nil {
			return err
		}
	}
	return nil
}

func (b *SpriteBatch) checkSprite(n *Node, allowContainer bool) error {
	if n.disposed {
		return fmt.Errorf("sprig: %q in batch %q: %w", n.Name, b.node.Name, ErrDisposed)
	}
	switch n.Type {
	case NodeTypeSprite:
		if n.Texture != nil && n.Texture != b.texture {
			return fmt.Errorf("sprig: sprite %q uses %q, batch %q uses %q: %w",
				n.Name, n.Texture.Name(), b.node.Name, b.texture.Name(), ErrTextureMismatch)
		}
		return nil
	case NodeTypeContainer:
		if allowContainer {
			return nil
		}
	}
	return fmt.Errorf("sprig: %q is a %s, batch %q accepts sprites only: %w", n.Name, n.Type, b.node.Name, ErrNotSprite)
}

// Validate checks the batch invariants: the atlas and the descendants have
// the same length, descendants[i].AtlasIndex() == i, every tracked tree
// sprite's subtree occupies one contiguous range starting at its own slot,
// and (with no reorder pending) slots follow draw order. Returns
// ErrCorruptIndex describing the first violation.
func (b *SpriteBatch) Validate() error {
	if b.atlas.Len() != len(b.descendants) {
		return fmt.Errorf("sprig: batch %q has %d quads for %d descendants: %w",
			b.node.Name, b.atlas.Len(), len(b.descendants), ErrCorruptIndex)
	}
	detached := 0
	for i, d := range b.descendants {
		if d.atlasIndex != i || d.batch != b {
			return fmt.Errorf("sprig: batch %q slot %d holds %q with atlas index %d: %w",
				b.node.Name, i, d.Name, d.atlasIndex, ErrCorruptIndex)
		}
		if d.Parent == nil {
			detached++
		}
	}
	if detached != b.detached {
		return fmt.Errorf("sprig: batch %q holds %d detached slots but counts %d: %w",
			b.node.Name, detached, b.detached, ErrCorruptIndex)
	}
	if err := b.validateContiguity(b.node); err != nil {
		return err
	}
	if len(b.pending) == 0 {
		last := -1
		return b.validateOrder(b.node, &last)
	}
	return nil
}

func (b *SpriteBatch) validateContiguity(n *Node) error {
	for _, c := range n.children {
		if c.tracked() {
			hi, _ := b.HighestAtlasIndexUnder(c)
			if lo, _ := b.LowestAtlasIndexUnder(c); lo != c.atlasIndex || hi-lo+1 != countTracked(c) {
				return fmt.Errorf("sprig: batch %q subtree of %q is not contiguous from slot %d: %w",
					b.node.Name, c.Name, c.atlasIndex, ErrCorruptIndex)
			}
		}
		if err := b.validateContiguity(c); err != nil {
			return err
		}
	}
	return nil
}

func (b *SpriteBatch) validateOrder(n *Node, last *int) error {
	if n != b.node && n.tracked() {
		if n.atlasIndex <= *last {
			return fmt.Errorf("sprig: batch %q slot %d of %q is out of draw order: %w",
				b.node.Name, n.atlasIndex, n.Name, ErrCorruptIndex)
		}
		*last = n.atlasIndex
	}
	for _, c := range orderedChildren(n) {
		if err := b.validateOrder(c, last); err != nil {
			return err
		}
	}
	return nil
}

// debugValidate panics on a broken invariant when debug mode is on.
func (b *SpriteBatch) debugValidate(op string) {
	if !globalDebug {
		return
	}
	if err := b.Validate(); err != nil {
		panic(fmt.Sprintf("sprig debug: %s: %v", op, err))
	}
}

// --- Helpers ---

// setBatch marks n's subtree as owned by b, with no slots yet.
func setBatch(n *Node, b *SpriteBatch) {
	n.batch = b
	n.atlasIndex = unassignedIndex
	for _, c := range n.children {
		setBatch(c, b)
	}
}

// clearBatch releases n's subtree from its batch.
func clearBatch(n *Node) {
	n.batch = nil
	n.atlasIndex = unassignedIndex
	for _, c := range n.children {
		clearBatch(c)
	}
}

func nodeName(n *Node) string {
	if n == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%q", n.Name)
}
