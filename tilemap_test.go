package sprig

import (
	"math"
	"testing"
)

const testTile = 16

func testRegions() []TextureRegion {
	regions := make([]TextureRegion, 4)
	for gid := 1; gid < len(regions); gid++ {
		regions[gid] = TextureRegion{
			X: uint16((gid - 1) * testTile), Width: testTile, Height: testTile,
			OriginalW: testTile, OriginalH: testTile,
		}
	}
	return regions
}

func newTestLayer(t *testing.T, cols, rows int, data []uint32) *TileLayer {
	t.Helper()
	tex := newTestTexture("tiles", 3*testTile, testTile)
	l, err := NewTileLayer("ground", tex, testTile, testTile, cols, rows, data, testRegions())
	tex.Release()
	if err != nil {
		t.Fatalf("NewTileLayer: %v", err)
	}
	return l
}

// tileTL returns the top-left vertex position of the quad at slot i.
func tileTL(l *TileLayer, i int) (float32, float32) {
	q := l.Batch().Atlas().At(i)
	return q[0].DstX, q[0].DstY
}

func near(a float32, b float64) bool {
	return math.Abs(float64(a)-b) < 1e-4
}

func TestNewTileLayerInvalid(t *testing.T) {
	tex := newTestTexture("tiles", 16, 16)
	if _, err := NewTileLayer("bad", tex, 16, 16, 0, 2, nil, nil); err == nil {
		t.Error("expected error for empty map")
	}
	if _, err := NewTileLayer("bad", tex, 16, 16, 2, 2, make([]uint32, 3), nil); err == nil {
		t.Error("expected error for data length mismatch")
	}
	if tex.RefCount() != 1 {
		t.Errorf("RefCount = %d, failed layers must not keep the texture", tex.RefCount())
	}
}

func TestTileLayerInsertsRowMajor(t *testing.T) {
	l := newTestLayer(t, 3, 2, []uint32{
		1, 0, 2,
		0, 3, 9, // 9 has no region
	})
	b := l.Batch()
	if b.Len() != 3 {
		t.Fatalf("Len = %d, want 3", b.Len())
	}
	if l.Node().NumChildren() != 0 {
		t.Error("tiles must not be tree nodes")
	}
	assertBatchInvariants(t, b)

	want := [][2]float64{{0, 0}, {32, 0}, {16, 16}}
	for i, w := range want {
		x, y := tileTL(l, i)
		if !near(x, w[0]) || !near(y, w[1]) {
			t.Errorf("tile %d TL = (%v,%v), want (%v,%v)", i, x, y, w[0], w[1])
		}
	}
	if got := b.Atlas().At(1)[0].SrcX; got != testTile {
		t.Errorf("tile 1 SrcX = %v, want %d", got, testTile)
	}

	cols, rows := l.Size()
	if cols != 3 || rows != 2 || l.TileAt(2, 0) != 2 || l.TileAt(5, 5) != 0 {
		t.Error("Size/TileAt mismatch")
	}
}

func TestTileLayerSetTile(t *testing.T) {
	l := newTestLayer(t, 3, 1, []uint32{1, 0, 3})
	b := l.Batch()

	// Fill the gap; row-major order is kept.
	if err := l.SetTile(1, 0, 2); err != nil {
		t.Fatal(err)
	}
	if b.Len() != 3 {
		t.Fatalf("Len = %d, want 3", b.Len())
	}
	for i := 0; i < 3; i++ {
		if x, _ := tileTL(l, i); !near(x, float64(i*testTile)) {
			t.Errorf("tile %d x = %v, want %d", i, x, i*testTile)
		}
	}

	// Replace in place.
	if err := l.SetTile(0, 0, 3); err != nil {
		t.Fatal(err)
	}
	if got := b.Atlas().At(0)[0].SrcX; got != 2*testTile {
		t.Errorf("replaced SrcX = %v, want %d", got, 2*testTile)
	}

	// Clear.
	if err := l.SetTile(1, 0, 0); err != nil {
		t.Fatal(err)
	}
	if b.Len() != 2 || l.TileAt(1, 0) != 0 {
		t.Errorf("Len = %d after clear, want 2", b.Len())
	}
	assertBatchInvariants(t, b)

	if err := l.SetTile(7, 7, 1); err != nil {
		t.Errorf("out of range SetTile err = %v, want nil", err)
	}
}

func TestTileLayerFlipFlags(t *testing.T) {
	l := newTestLayer(t, 1, 1, []uint32{1 | tileFlipH})
	// Mirrored horizontally: the top-left vertex lands on the right edge.
	if x, y := tileTL(l, 0); !near(x, testTile) || !near(y, 0) {
		t.Errorf("flipH TL = (%v,%v), want (16,0)", x, y)
	}

	if err := l.SetTile(0, 0, 1|tileFlipV); err != nil {
		t.Fatal(err)
	}
	if x, y := tileTL(l, 0); !near(x, 0) || !near(y, testTile) {
		t.Errorf("flipV TL = (%v,%v), want (0,16)", x, y)
	}

	// Transpose swaps the axes: top-right maps to bottom-left.
	if err := l.SetTile(0, 0, 1|tileFlipD); err != nil {
		t.Fatal(err)
	}
	q := l.Batch().Atlas().At(0)
	if !near(q[0].DstX, 0) || !near(q[0].DstY, 0) || !near(q[1].DstX, 0) || !near(q[1].DstY, testTile) {
		t.Errorf("flipD TL = (%v,%v) TR = (%v,%v)", q[0].DstX, q[0].DstY, q[1].DstX, q[1].DstY)
	}
}

func TestTileLayerFollowsNode(t *testing.T) {
	l := newTestLayer(t, 2, 1, []uint32{1, 2})
	s := NewScene()
	s.Root().AddChild(l.Node())
	l.Node().SetPosition(100, 50)

	sink := drawScene(s)
	if len(sink.batches) != 1 || sink.batches[0].Quads != 2 {
		t.Fatalf("submits = %d, want one with 2 quads", len(sink.batches))
	}
	if v := sink.vertices[0][4]; !near(v.DstX, 116) || !near(v.DstY, 50) {
		t.Errorf("second tile TL = (%v,%v), want (116,50)", v.DstX, v.DstY)
	}
}

func TestTileLayerAnimations(t *testing.T) {
	l := newTestLayer(t, 2, 1, []uint32{1, 3})
	l.SetAnimations(map[uint32][]AnimFrame{
		1: {{GID: 1, Duration: 100}, {GID: 2, Duration: 100}},
	})
	s := NewScene()
	s.Root().AddChild(l.Node())
	regions := testRegions()

	if err := s.update(0.15); err != nil {
		t.Fatal(err)
	}
	if l.tiles[0].TextureRegion != regions[2] {
		t.Error("animated tile should show its second frame")
	}
	if l.tiles[1].TextureRegion != regions[3] {
		t.Error("tiles without animation keep their region")
	}

	sink := drawScene(s)
	if got := sink.vertices[0][0].SrcX; got != testTile {
		t.Errorf("animated SrcX = %v, want %d", got, testTile)
	}

	if err := s.update(0.1); err != nil {
		t.Fatal(err)
	}
	if l.tiles[0].TextureRegion != regions[1] {
		t.Error("animation should loop back to the first frame")
	}
}

func TestTileLayerDispose(t *testing.T) {
	tex := newTestTexture("tiles", 3*testTile, testTile)
	l, err := NewTileLayer("ground", tex, testTile, testTile, 1, 1, []uint32{1}, testRegions())
	if err != nil {
		t.Fatal(err)
	}
	l.Dispose()
	if !l.Batch().IsDisposed() || tex.RefCount() != 1 {
		t.Errorf("disposed = %v refs = %d", l.Batch().IsDisposed(), tex.RefCount())
	}
}
