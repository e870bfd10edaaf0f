package sprig

import "github.com/hajimehoshi/ebiten/v2"

// spriteQuad builds the screen-space quad for a sprite from its world
// transform, region and tint. A hidden sprite yields a zero-area quad so it
// keeps its slot without drawing.
func spriteQuad(n *Node, tex *Texture, visible bool) Quad {
	var q Quad
	if !visible {
		return q
	}

	r := n.TextureRegion
	if r.IsZero() && tex != nil {
		r = fullRegion(tex)
	}
	t := &n.worldTransform // [a, b, c, d, tx, ty]

	// Local quad corners before world transform. Trim offset shifts the
	// local origin; rotated regions keep their authored Width x Height.
	ox := float64(r.OffsetX)
	oy := float64(r.OffsetY)
	w := float64(r.Width)
	h := float64(r.Height)

	// TL, TR, BL, BR
	lx := [4]float64{ox, ox + w, ox, ox + w}
	ly := [4]float64{oy, oy, oy + h, oy + h}

	a, b, c, d, tx, ty := t[0], t[1], t[2], t[3], t[4], t[5]

	// Source coordinates in texture pixels.
	var sx, sy [4]float32
	rx := float32(r.X)
	ry := float32(r.Y)
	if r.Rotated {
		// Stored 90 degrees clockwise: the stored rect is Height wide and
		// Width tall. Visual TL maps to the stored top-right corner.
		rh := float32(r.Height)
		rw := float32(r.Width)
		sx = [4]float32{rx + rh, rx + rh, rx, rx}
		sy = [4]float32{ry, ry + rw, ry, ry + rw}
	} else {
		rw := float32(r.Width)
		rh := float32(r.Height)
		sx = [4]float32{rx, rx + rw, rx, rx + rw}
		sy = [4]float32{ry, ry, ry + rh, ry + rh}
	}

	// Premultiplied RGBA.
	ca := float32(n.Color.A * n.worldAlpha)
	cr := float32(n.Color.R) * ca
	cg := float32(n.Color.G) * ca
	cb := float32(n.Color.B) * ca

	for i := 0; i < 4; i++ {
		q[i] = ebiten.Vertex{
			DstX:   float32(a*lx[i] + c*ly[i] + tx),
			DstY:   float32(b*lx[i] + d*ly[i] + ty),
			SrcX:   sx[i],
			SrcY:   sy[i],
			ColorR: cr,
			ColorG: cg,
			ColorB: cb,
			ColorA: ca,
		}
	}
	return q
}

// singleQuadIndices draws one quad from vertices 0..3.
var singleQuadIndices = []uint32{0, 1, 2, 1, 3, 2}
