package sprig

// traverse walks the node tree depth-first in draw order, updating world
// transforms and submitting draws. A stand-alone sprite submits one quad; a
// SpriteBatch takes over its whole subtree and submits once.
func (s *Scene) traverse(n *Node, parentTransform [6]float64, parentAlpha float64, parentRecomputed bool, sink RenderSink) {
	if !n.Visible {
		return
	}

	recompute := refreshWorld(n, parentTransform, parentAlpha, parentRecomputed)

	switch n.Type {
	case NodeTypeBatch:
		if n.batch != nil {
			if s.debug {
				s.stats.batches++
				s.stats.slotsUsed += n.batch.atlas.Len()
				s.stats.slots += n.batch.atlas.Cap()
				s.stats.atlasBytes += n.batch.atlas.SizeBytes()
			}
			n.batch.draw(sink, recompute)
		}
		return
	case NodeTypeSprite:
		s.drawSprite(n, sink)
	}

	if len(n.children) == 0 {
		return
	}
	for _, child := range orderedChildren(n) {
		s.traverse(child, n.worldTransform, n.worldAlpha, recompute, sink)
	}
}

// drawSprite submits a stand-alone sprite as a one-quad draw. Sprites without
// a texture draw a white pixel scaled by ScaleX/ScaleY.
func (s *Scene) drawSprite(n *Node, sink RenderSink) {
	tex := n.Texture
	if tex == nil || tex.Released() {
		tex = ensureWhiteTexture()
	}
	s.spriteQuad = spriteQuad(n, tex, true)
	sink.Submit(DrawBatch{
		Texture:  tex,
		Vertices: s.spriteQuad[:],
		Indices:  singleQuadIndices,
		Quads:    1,
		Blend:    n.BlendMode,
	})
}
