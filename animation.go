package sprig

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup eases one or more float64 fields of a Node together. Build one
// with TweenPosition, TweenScale, TweenColor, TweenAlpha or TweenRotation,
// then either call Update(dt) every frame or pass it to Node.RunTween so
// Scene.Update drives it.
//
// Every step writes the fields and marks the node dirty; a batched sprite gets
// its quad rewritten on the next draw. A group whose node has been disposed
// finishes without writing.
type TweenGroup struct {
	tracks []tweenTrack
	target *Node
	Done   bool
}

type tweenTrack struct {
	tween *gween.Tween
	field *float64
}

// newTweenGroup eases each field to the matching value in to.
func newTweenGroup(node *Node, duration float32, fn ease.TweenFunc, fields []*float64, to []float64) *TweenGroup {
	g := &TweenGroup{target: node, tracks: make([]tweenTrack, len(fields))}
	for i, f := range fields {
		g.tracks[i] = tweenTrack{
			tween: gween.New(float32(*f), float32(to[i]), duration, fn),
			field: f,
		}
	}
	return g
}

// Update advances the group by dt seconds.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.target != nil && g.target.IsDisposed() {
		g.Done = true
		return
	}

	done := true
	for _, tr := range g.tracks {
		v, finished := tr.tween.Update(dt)
		*tr.field = float64(v)
		done = done && finished
	}
	g.Done = done

	if g.target != nil {
		g.target.MarkDirty()
	}
}

// Stop ends the group without applying further values.
func (g *TweenGroup) Stop() {
	g.Done = true
}

// TweenPosition eases node.X and node.Y to (toX, toY).
func TweenPosition(node *Node, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(node, duration, fn,
		[]*float64{&node.X, &node.Y}, []float64{toX, toY})
}

// TweenScale eases node.ScaleX and node.ScaleY to (toSX, toSY).
func TweenScale(node *Node, toSX, toSY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(node, duration, fn,
		[]*float64{&node.ScaleX, &node.ScaleY}, []float64{toSX, toSY})
}

// TweenColor eases every component of node.Color to to.
func TweenColor(node *Node, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	c := &node.Color
	return newTweenGroup(node, duration, fn,
		[]*float64{&c.R, &c.G, &c.B, &c.A}, []float64{to.R, to.G, to.B, to.A})
}

// TweenAlpha eases node.Alpha to to.
func TweenAlpha(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(node, duration, fn, []*float64{&node.Alpha}, []float64{to})
}

// TweenRotation eases node.Rotation (radians) to to.
func TweenRotation(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(node, duration, fn, []*float64{&node.Rotation}, []float64{to})
}

// --- Scene-driven tweens ---

// RunTween attaches g to the node so Scene.Update advances it. Finished
// groups are dropped automatically.
func (n *Node) RunTween(g *TweenGroup) {
	if g == nil || g.Done {
		return
	}
	n.tweens = append(n.tweens, g)
}

// NumTweens returns the number of running tweens attached with RunTween.
func (n *Node) NumTweens() int {
	return len(n.tweens)
}

// StopTweens stops every tween attached to the node with RunTween.
func (n *Node) StopTweens() {
	stopTweens(n)
}

func stopTweens(n *Node) {
	for i, g := range n.tweens {
		g.Stop()
		n.tweens[i] = nil
	}
	n.tweens = n.tweens[:0]
}

// stopSubtreeTweens stops the tweens of n and everything below it.
func stopSubtreeTweens(n *Node) {
	stopTweens(n)
	for _, c := range n.children {
		stopSubtreeTweens(c)
	}
}

// updateNodes runs OnUpdate callbacks and steps every attached tween in n's
// subtree by dt, dropping the finished ones.
func updateNodes(n *Node, dt float32) {
	if n.OnUpdate != nil {
		n.OnUpdate(float64(dt))
	}
	if len(n.tweens) > 0 {
		kept := n.tweens[:0]
		for _, g := range n.tweens {
			g.Update(dt)
			if !g.Done {
				kept = append(kept, g)
			}
		}
		clear(n.tweens[len(kept):])
		n.tweens = kept
	}
	// OnUpdate may remove c or its siblings; only advance while c stays put.
	for i := 0; i < len(n.children); {
		c := n.children[i]
		if !c.disposed {
			updateNodes(c, dt)
		}
		if i < len(n.children) && n.children[i] == c {
			i++
		}
	}
}
