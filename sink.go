package sprig

import "github.com/hajimehoshi/ebiten/v2"

// DrawBatch is one draw submission: a run of quads that share a texture and
// blend mode. Vertices and Indices alias the submitter's buffers and are only
// valid for the duration of Submit.
type DrawBatch struct {
	Texture  *Texture
	Vertices []ebiten.Vertex // 4 per quad
	Indices  []uint32        // 6 per quad
	Quads    int
	Blend    BlendMode
}

// RenderSink receives draw submissions. A SpriteBatch submits exactly once per
// frame for its whole subtree; a stand-alone sprite submits once per sprite.
type RenderSink interface {
	Submit(batch DrawBatch)
}

// ImageSink draws submissions onto an ebiten image with DrawTriangles32.
type ImageSink struct {
	Target *ebiten.Image
}

// NewImageSink creates a sink drawing onto target.
func NewImageSink(target *ebiten.Image) *ImageSink {
	return &ImageSink{Target: target}
}

// Submit draws the batch as a single DrawTriangles32 call. Empty batches and
// released textures are skipped.
func (s *ImageSink) Submit(batch DrawBatch) {
	if s.Target == nil || batch.Quads == 0 || batch.Texture == nil {
		return
	}
	img := batch.Texture.Image()
	if img == nil {
		return
	}
	var op ebiten.DrawTrianglesOptions
	op.Blend = batch.Blend.EbitenBlend()
	op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	s.Target.DrawTriangles32(batch.Vertices, batch.Indices, img, &op)
}

// countingSink forwards to another sink and counts submissions and quads.
type countingSink struct {
	next      RenderSink
	drawCalls int
	quads     int
}

func (c *countingSink) Submit(batch DrawBatch) {
	c.drawCalls++
	c.quads += batch.Quads
	c.next.Submit(batch)
}
