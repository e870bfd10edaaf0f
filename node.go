package sprig

// --- ID and arrival counters ---

// nodeIDCounter hands out node IDs. Not safe for concurrent use.
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// arrivalCounter orders siblings that share a ZIndex. Every attach and every
// z-order change takes a fresh value, so the most recent one draws last.
var arrivalCounter uint64

func nextArrival() uint64 {
	arrivalCounter++
	return arrivalCounter
}

// unassignedIndex is the atlas index of a node that holds no batch slot.
const unassignedIndex = -1

// --- Node ---

// Node is the fundamental scene graph element. A single flat struct is used for
// all node types to avoid interface dispatch on the hot path.
type Node struct {
	// Identity
	ID   uint32
	Name string
	Type NodeType

	// Hierarchy
	Parent   *Node
	children []*Node

	// Transform (local)
	X, Y         float64
	ScaleX       float64
	ScaleY       float64
	Rotation     float64
	SkewX, SkewY float64
	PivotX       float64
	PivotY       float64

	// Computed during traversal
	worldTransform [6]float64
	worldAlpha     float64
	transformDirty bool

	// Visibility
	Alpha   float64
	Visible bool

	// ZIndex orders siblings. Inside a SpriteBatch it must be changed through
	// SetZIndex so the batch can move the node's atlas slot.
	ZIndex int

	// Metadata
	UserData any

	// Sprite fields (NodeTypeSprite)
	TextureRegion TextureRegion
	Texture       *Texture // nil inside a batch means the batch texture
	Color         Color
	BlendMode     BlendMode // stand-alone sprites only; a batch has one blend mode

	// Batch membership. For NodeTypeBatch nodes batch is the batch the node
	// represents; for every other node it is the batch that owns it, or nil.
	batch      *SpriteBatch
	atlasIndex int
	arrival    uint64

	// Callbacks
	OnUpdate func(dt float64) // called every Scene.Update, parents before children

	// Tweens started with RunTween, advanced by Scene.Update.
	tweens []*TweenGroup

	// Internal
	disposed       bool
	childrenSorted bool
	sortedChildren []*Node // reused buffer for z-ordered traversal
}

// nodeDefaults sets the common default field values shared by all constructors.
func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.ScaleX = 1
	n.ScaleY = 1
	n.Alpha = 1
	n.Color = Color{1, 1, 1, 1}
	n.Visible = true
	n.transformDirty = true
	n.childrenSorted = true
	n.atlasIndex = unassignedIndex
	n.arrival = nextArrival()
}

// NewContainer creates a container node with no visual representation.
func NewContainer(name string) *Node {
	n := &Node{Name: name, Type: NodeTypeContainer}
	nodeDefaults(n)
	return n
}

// NewSprite creates a sprite node that renders region of tex. A nil tex draws
// a white quad when the sprite is stand-alone, and uses the batch texture when
// the sprite is added to a SpriteBatch. A zero region covers the whole texture.
func NewSprite(name string, tex *Texture, region TextureRegion) *Node {
	n := &Node{Name: name, Type: NodeTypeSprite, Texture: tex, TextureRegion: region}
	nodeDefaults(n)
	return n
}

// AtlasIndex returns the node's slot in its batch's draw order, or -1 when
// the node holds no slot.
func (n *Node) AtlasIndex() int {
	return n.atlasIndex
}

// Batch returns the SpriteBatch that owns this node, or nil. For a batch's
// own node it returns that batch.
func (n *Node) Batch() *SpriteBatch {
	return n.batch
}

// tracked reports whether the node currently holds an atlas slot.
func (n *Node) tracked() bool {
	return n.atlasIndex != unassignedIndex
}

// inBatch reports whether the node is a member of a batch subtree (as opposed
// to being a batch root or a free node).
func (n *Node) inBatch() bool {
	return n.batch != nil && n.Type != NodeTypeBatch
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
//
// When this node is a SpriteBatch or belongs to one, the call is routed through
// the batch, and any error the batch reports (for example ErrNotSprite) panics.
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("sprig: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChild (parent)")
		debugCheckDisposed(child, "AddChild (child)")
	}
	if isAncestor(child, n) {
		panic("sprig: adding child would create a cycle")
	}
	if child.inBatch() && child.Parent == nil {
		panic("sprig: sprite placed with InsertQuadFromSprite cannot join a tree; call RemoveSpriteFromAtlas first")
	}
	if n.batch != nil {
		if err := n.batch.addChild(n, child); err != nil {
			panic(err)
		}
		return
	}
	child.RemoveFromParent()
	attachChild(n, child)
	if globalDebug {
		debugCheckAttach(n, child)
	}
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if globalDebug {
		debugCheckDisposed(n, "RemoveChild (parent)")
		debugCheckDisposed(child, "RemoveChild (child)")
	}
	if child.Parent != n {
		panic("sprig: child's parent is not this node")
	}
	if n.batch != nil {
		if err := n.batch.RemoveChild(child, false); err != nil {
			panic(err)
		}
		return
	}
	detachChild(n, child)
}

// RemoveChildAt removes and returns the child at the given index.
func (n *Node) RemoveChildAt(index int) *Node {
	if globalDebug {
		debugCheckDisposed(n, "RemoveChildAt")
	}
	if index < 0 || index >= len(n.children) {
		panic("sprig: child index out of range")
	}
	child := n.children[index]
	n.RemoveChild(child)
	return child
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// RemoveChildren detaches all children from this node.
// Children are NOT disposed.
func (n *Node) RemoveChildren() {
	if n.Type == NodeTypeBatch && n.batch != nil {
		n.batch.RemoveAllChildren(false)
		return
	}
	for len(n.children) > 0 {
		n.RemoveChild(n.children[len(n.children)-1])
	}
	n.childrenSorted = true
}

// Children returns the child list in the order children were added. The
// returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// SetZIndex sets the node's ZIndex. The node is ordered after any sibling that
// already has the same ZIndex. Inside a SpriteBatch the atlas slot is moved
// before the next draw.
func (n *Node) SetZIndex(z int) {
	if n.ZIndex == z {
		return
	}
	if n.inBatch() && n.Parent != nil {
		if err := n.batch.ReorderChild(n, z); err != nil {
			panic(err)
		}
		return
	}
	n.ZIndex = z
	n.arrival = nextArrival()
	if n.Parent != nil {
		n.Parent.childrenSorted = false
	}
}

// SetVisible shows or hides the node. Hidden sprites inside a batch keep their
// slot but their quad collapses to zero area.
func (n *Node) SetVisible(v bool) {
	if n.Visible == v {
		return
	}
	n.Visible = v
	n.transformDirty = true
}

// SetColor sets the sprite tint and marks the node dirty.
func (n *Node) SetColor(c Color) {
	n.Color = c
	n.transformDirty = true
}

// SetTextureRegion sets the sprite's source rectangle and marks it dirty.
func (n *Node) SetTextureRegion(r TextureRegion) {
	n.TextureRegion = r
	n.transformDirty = true
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed,
// and recursively disposes all descendants. Disposing a SpriteBatch node
// releases the batch's texture reference. A sprite placed with
// InsertQuadFromSprite gives its slot back first.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	if n.inBatch() && n.Parent == nil && n.tracked() {
		_ = n.batch.RemoveSpriteFromAtlas(n)
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	if n.Type == NodeTypeBatch && n.batch != nil {
		n.batch.release()
	}
	n.disposed = true
	n.ID = 0
	stopTweens(n)
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.sortedChildren = nil
	n.Parent = nil
	n.batch = nil
	n.atlasIndex = unassignedIndex
	n.Texture = nil
	n.UserData = nil
	n.OnUpdate = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// attachChild links child under parent without any batch bookkeeping.
func attachChild(parent, child *Node) {
	child.Parent = parent
	child.arrival = nextArrival()
	parent.children = append(parent.children, child)
	parent.childrenSorted = false
	markSubtreeDirty(child)
}

// detachChild unlinks child from parent without any batch bookkeeping.
func detachChild(parent, child *Node) {
	parent.removeChildByPtr(child)
	child.Parent = nil
	parent.childrenSorted = false
	markSubtreeDirty(child)
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// markSubtreeDirty sets transformDirty on node and all its descendants.
func markSubtreeDirty(node *Node) {
	node.transformDirty = true
	for _, child := range node.children {
		markSubtreeDirty(child)
	}
}

// childOrderLess orders siblings by ZIndex, then by arrival.
func childOrderLess(a, b *Node) bool {
	if a.ZIndex != b.ZIndex {
		return a.ZIndex < b.ZIndex
	}
	return a.arrival < b.arrival
}

// orderedChildren returns n's children in draw order, rebuilding the cached
// order when it is stale. Uses insertion sort: zero allocations, stable, and
// O(n) for the common case of children that are already in order.
func orderedChildren(n *Node) []*Node {
	if n.childrenSorted && len(n.sortedChildren) == len(n.children) {
		return n.sortedChildren
	}
	nc := len(n.children)
	if cap(n.sortedChildren) < nc {
		n.sortedChildren = make([]*Node, nc)
	}
	n.sortedChildren = n.sortedChildren[:nc]
	copy(n.sortedChildren, n.children)
	for i := 1; i < nc; i++ {
		key := n.sortedChildren[i]
		j := i - 1
		for j >= 0 && childOrderLess(key, n.sortedChildren[j]) {
			n.sortedChildren[j+1] = n.sortedChildren[j]
			j--
		}
		n.sortedChildren[j+1] = key
	}
	n.childrenSorted = true
	return n.sortedChildren
}
