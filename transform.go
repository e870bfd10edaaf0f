package sprig

import "math"

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// computeLocalTransform returns the node's local matrix [a, b, c, d, tx, ty]:
// Translate(X, Y) * Rotate * Skew * Scale * Translate(-PivotX, -PivotY).
func computeLocalTransform(n *Node) [6]float64 {
	var kx, ky float64
	if n.SkewX != 0 {
		kx = math.Tan(n.SkewX)
	}
	if n.SkewY != 0 {
		ky = math.Tan(n.SkewY)
	}
	sin, cos := math.Sincos(n.Rotation)

	m := multiplyAffine(
		[6]float64{cos, sin, -sin, cos, n.X, n.Y},
		[6]float64{n.ScaleX, ky * n.ScaleX, kx * n.ScaleY, n.ScaleY, 0, 0},
	)
	m[4] -= m[0]*n.PivotX + m[2]*n.PivotY
	m[5] -= m[1]*n.PivotX + m[3]*n.PivotY
	return m
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// refreshWorld recomputes n's world transform and alpha when n is dirty or its
// parent was recomputed this frame. Reports whether it recomputed.
func refreshWorld(n *Node, parentTransform [6]float64, parentAlpha float64, parentRecomputed bool) bool {
	if !n.transformDirty && !parentRecomputed {
		return false
	}
	n.worldTransform = multiplyAffine(parentTransform, computeLocalTransform(n))
	n.worldAlpha = parentAlpha * n.Alpha
	n.transformDirty = false
	return true
}

// resolveWorld computes n's world transform and alpha from its ancestor chain
// without relying on a prior traversal.
func resolveWorld(n *Node) ([6]float64, float64) {
	if n.Parent == nil {
		return computeLocalTransform(n), n.Alpha
	}
	pt, pa := resolveWorld(n.Parent)
	return multiplyAffine(pt, computeLocalTransform(n)), pa * n.Alpha
}

// --- Transform property setters ---

// SetPosition sets the node's local X and Y and marks it dirty.
func (n *Node) SetPosition(x, y float64) {
	n.X = x
	n.Y = y
	n.transformDirty = true
}

// SetScale sets the node's ScaleX and ScaleY and marks it dirty.
func (n *Node) SetScale(sx, sy float64) {
	n.ScaleX = sx
	n.ScaleY = sy
	n.transformDirty = true
}

// SetRotation sets the node's rotation (in radians) and marks it dirty.
func (n *Node) SetRotation(r float64) {
	n.Rotation = r
	n.transformDirty = true
}

// SetPivot sets the node's PivotX and PivotY and marks it dirty.
func (n *Node) SetPivot(px, py float64) {
	n.PivotX = px
	n.PivotY = py
	n.transformDirty = true
}

// SetAlpha sets the node's alpha and marks it dirty.
func (n *Node) SetAlpha(a float64) {
	n.Alpha = a
	n.transformDirty = true
}

// MarkDirty flags the node for recomputation on the next draw. Inside a batch
// this also rewrites the node's quad. Call it after setting fields directly.
func (n *Node) MarkDirty() {
	n.transformDirty = true
}

// LocalToWorld converts a local-space point to world-space using the
// transform computed by the last draw.
func (n *Node) LocalToWorld(lx, ly float64) (wx, wy float64) {
	return transformPoint(n.worldTransform, lx, ly)
}
