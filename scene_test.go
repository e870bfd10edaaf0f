package sprig

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestNewScene(t *testing.T) {
	s := NewScene()
	if s.root == nil {
		t.Fatal("root should not be nil")
	}
	if s.root.Name != "root" {
		t.Errorf("root.Name = %q, want %q", s.root.Name, "root")
	}
	if s.root.Type != NodeTypeContainer {
		t.Errorf("root.Type = %d, want NodeTypeContainer", s.root.Type)
	}
}

func TestSceneRoot(t *testing.T) {
	s := NewScene()
	if s.Root() != s.root {
		t.Error("Root() should return the internal root node")
	}
}

func TestSceneSetDebugMode(t *testing.T) {
	s := NewScene()
	s.SetDebugMode(true)
	if !s.debug || !globalDebug {
		t.Error("debug should be true")
	}
	s.SetDebugMode(false)
	if s.debug || globalDebug {
		t.Error("debug should be false")
	}
}

func TestSceneDrawOneSubmitPerBatch(t *testing.T) {
	s := NewScene()
	ships := newTestBatch(t, 8)
	bullets := newTestBatch(t, 8)
	s.Root().AddChild(ships.Node())
	s.Root().AddChild(bullets.Node())
	for i := 0; i < 20; i++ {
		addZ(t, ships, "ship", i%4)
		addZ(t, bullets, "bullet", 0)
	}
	s.Root().AddChild(NewSprite("cursor", nil, TextureRegion{}))

	var sink recordingSink
	s.DrawTo(&sink)
	if len(sink.batches) != 3 {
		t.Fatalf("submits = %d, want 3 (two batches and a stand-alone sprite)", len(sink.batches))
	}
	if sink.batches[0].Quads != 20 || sink.batches[1].Quads != 20 || sink.batches[2].Quads != 1 {
		t.Errorf("quads = %d %d %d", sink.batches[0].Quads, sink.batches[1].Quads, sink.batches[2].Quads)
	}
}

func TestSceneDrawFollowsMovedAncestor(t *testing.T) {
	s := NewScene()
	layer := NewContainer("layer")
	s.Root().AddChild(layer)
	b := newTestBatch(t, 2)
	layer.AddChild(b.Node())
	sp := NewSprite("s", nil, TextureRegion{Width: 4, Height: 4})
	sp.SetPosition(1, 2)
	if err := b.AddChild(sp); err != nil {
		t.Fatal(err)
	}

	var sink recordingSink
	s.DrawTo(&sink)
	layer.SetPosition(10, 20)
	s.DrawTo(&sink)

	v := sink.vertices[1][0]
	if v.DstX != 11 || v.DstY != 22 {
		t.Errorf("TL = (%v,%v), want (11,22)", v.DstX, v.DstY)
	}
}

func TestSceneDrawFillsClearColor(t *testing.T) {
	s := NewScene()
	s.ClearColor = Color{R: 1, G: 0, B: 0, A: 1}
	screen := ebiten.NewImage(4, 4)
	s.Draw(screen)
	if s.screenSink.Target != nil {
		t.Error("screen sink should not keep the screen between frames")
	}
}
