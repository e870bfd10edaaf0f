package sprig

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Scene is the top-level object that owns the node tree and drives tweens,
// transforms and drawing.
type Scene struct {
	root  *Node
	debug bool

	// ClearColor fills the screen before each Draw. The zero value leaves the
	// screen untouched.
	ClearColor Color

	updateFunc func() error

	// Render state
	screenSink ImageSink
	spriteQuad Quad
	stats      debugStats
}

// NewScene creates a new scene with a pre-created root container.
func NewScene() *Scene {
	return &Scene{root: NewContainer("root")}
}

// Root returns the scene's root container node.
func (s *Scene) Root() *Node {
	return s.root
}

// SetUpdateFunc registers a callback run at the start of every Update. A
// returned error is passed back from Update, which ends a game started with
// Run.
func (s *Scene) SetUpdateFunc(fn func() error) {
	s.updateFunc = fn
}

// Update runs the update callback, then every node's OnUpdate and tweens, for
// one tick.
func (s *Scene) Update() error {
	return s.update(float32(1.0 / float64(ebiten.TPS())))
}

func (s *Scene) update(dt float32) error {
	if s.updateFunc != nil {
		if err := s.updateFunc(); err != nil {
			return err
		}
	}
	updateNodes(s.root, dt)
	return nil
}

// Draw clears the screen to ClearColor and draws the scene onto it.
func (s *Scene) Draw(screen *ebiten.Image) {
	if s.ClearColor.A > 0 {
		screen.Fill(s.ClearColor.toRGBA())
	}
	s.screenSink.Target = screen
	s.DrawTo(&s.screenSink)
	s.screenSink.Target = nil
}

// DrawTo traverses the scene and submits every draw to sink. Each SpriteBatch
// in the tree results in exactly one submission.
func (s *Scene) DrawTo(sink RenderSink) {
	if !s.debug {
		s.traverse(s.root, identityTransform, 1.0, false, sink)
		return
	}

	s.stats = debugStats{}
	counter := countingSink{next: sink}
	t0 := time.Now()
	s.traverse(s.root, identityTransform, 1.0, false, &counter)
	s.stats.traverseTime = time.Since(t0)
	s.stats.drawCalls = counter.drawCalls
	s.stats.quads = counter.quads
	s.debugLog(s.stats)
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics, batch invariants are checked after every mutation, tree depth
// and child count warnings are printed, and per-frame stats are logged to
// stderr.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
}

// globalDebug mirrors the most recently set Scene debug flag so that node and
// batch operations (which lack a Scene pointer) can check it cheaply. Only
// valid with a single Scene; multiple Scenes with differing debug modes will
// reflect whichever called SetDebugMode last.
var globalDebug bool
