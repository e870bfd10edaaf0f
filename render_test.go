package sprig

import (
	"math"
	"testing"
)

func drawScene(s *Scene) *recordingSink {
	sink := &recordingSink{}
	s.DrawTo(sink)
	return sink
}

func TestSingleSpriteSubmitsOneQuad(t *testing.T) {
	s := NewScene()
	s.Root().AddChild(NewSprite("sprite", nil, TextureRegion{Width: 32, Height: 32}))

	sink := drawScene(s)
	if len(sink.batches) != 1 {
		t.Fatalf("submits = %d, want 1", len(sink.batches))
	}
	got := sink.batches[0]
	if got.Quads != 1 || len(got.Vertices) != 4 || len(got.Indices) != 6 {
		t.Errorf("quads = %d verts = %d inds = %d", got.Quads, len(got.Vertices), len(got.Indices))
	}
	if got.Texture == nil {
		t.Error("untextured sprite should draw with the white texture")
	}
}

func TestInvisibleNodeNoSubmit(t *testing.T) {
	s := NewScene()
	sprite := NewSprite("sprite", nil, TextureRegion{})
	sprite.Visible = false
	s.Root().AddChild(sprite)

	if sink := drawScene(s); len(sink.batches) != 0 {
		t.Errorf("submits = %d, want 0", len(sink.batches))
	}
}

func TestInvisibleSubtreeSkipped(t *testing.T) {
	s := NewScene()
	parent := NewContainer("parent")
	parent.Visible = false
	parent.AddChild(NewSprite("child", nil, TextureRegion{}))
	b := newTestBatch(t, 2)
	addZ(t, b, "batched", 0)
	parent.AddChild(b.Node())
	s.Root().AddChild(parent)

	if sink := drawScene(s); len(sink.batches) != 0 {
		t.Errorf("submits = %d, want 0", len(sink.batches))
	}
}

func TestContainerNoSubmit(t *testing.T) {
	s := NewScene()
	s.Root().AddChild(NewContainer("empty"))
	if sink := drawScene(s); len(sink.batches) != 0 {
		t.Errorf("submits = %d, want 0", len(sink.batches))
	}
}

func TestWorldAlphaInQuadColor(t *testing.T) {
	s := NewScene()
	parent := NewContainer("parent")
	parent.Alpha = 0.5
	sprite := NewSprite("sprite", nil, TextureRegion{})
	sprite.Alpha = 0.8
	parent.AddChild(sprite)
	s.Root().AddChild(parent)

	sink := drawScene(s)
	if len(sink.vertices) != 1 {
		t.Fatalf("submits = %d, want 1", len(sink.vertices))
	}
	if got := sink.vertices[0][0].ColorA; math.Abs(float64(got)-0.4) > 1e-6 {
		t.Errorf("ColorA = %v, want 0.4", got)
	}
}

func TestZIndexOrdersStandaloneSprites(t *testing.T) {
	s := NewScene()
	names := []string{"top", "bottom", "middle"}
	zs := []int{10, -1, 3}
	for i, name := range names {
		sp := NewSprite(name, nil, TextureRegion{Width: 1, Height: 1})
		sp.ZIndex = zs[i]
		sp.X = float64(zs[i])
		s.Root().AddChild(sp)
	}

	sink := drawScene(s)
	want := []float32{-1, 3, 10}
	for i, v := range sink.vertices {
		if v[0].DstX != want[i] {
			t.Errorf("submit %d DstX = %v, want %v", i, v[0].DstX, want[i])
		}
	}
}

func TestBatchDrawsInTreeOrderAmongSiblings(t *testing.T) {
	s := NewScene()
	below := NewSprite("below", nil, TextureRegion{})
	above := NewSprite("above", nil, TextureRegion{})
	above.ZIndex = 2
	b := newTestBatch(t, 2)
	b.Node().ZIndex = 1
	addZ(t, b, "a", 0)
	s.Root().AddChild(above)
	s.Root().AddChild(b.Node())
	s.Root().AddChild(below)

	sink := drawScene(s)
	if len(sink.batches) != 3 {
		t.Fatalf("submits = %d, want 3", len(sink.batches))
	}
	if sink.batches[1].Texture != b.Texture() {
		t.Error("batch should draw between the stand-alone sprites")
	}
}

func TestDisposedBatchSkipped(t *testing.T) {
	s := NewScene()
	b := newTestBatch(t, 2)
	addZ(t, b, "a", 0)
	s.Root().AddChild(b.Node())
	b.Dispose()
	if sink := drawScene(s); len(sink.batches) != 0 {
		t.Errorf("submits = %d, want 0", len(sink.batches))
	}
}

// --- Benchmarks ---

func buildSpriteScene(count int) *Scene {
	s := NewScene()
	for i := 0; i < count; i++ {
		sp := NewSprite("s", nil, TextureRegion{Width: 32, Height: 32})
		sp.X = float64(i % 100 * 10)
		sp.Y = float64(i / 100 * 10)
		s.Root().AddChild(sp)
	}
	return s
}

func BenchmarkTraverseStandalone1000(b *testing.B) {
	s := buildSpriteScene(1000)
	var sink countingSink
	sink.next = discardSink{}
	b.ReportAllocs()
	for b.Loop() {
		s.DrawTo(&sink)
	}
}

type discardSink struct{}

func (discardSink) Submit(DrawBatch) {}
