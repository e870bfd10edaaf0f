package sprig

import (
	"fmt"
	"math"
)

// GID flag bits (same convention as Tiled TMX format).
const (
	tileFlipH    uint32 = 1 << 31 // horizontal flip
	tileFlipV    uint32 = 1 << 30 // vertical flip
	tileFlipD    uint32 = 1 << 29 // diagonal flip (transpose)
	tileFlagMask uint32 = tileFlipH | tileFlipV | tileFlipD
)

// AnimFrame describes a single frame in a tile animation sequence.
type AnimFrame struct {
	GID      uint32 // tile GID for this frame (no flag bits)
	Duration int    // milliseconds
}

// TileLayer draws a grid of tiles from one texture through a SpriteBatch.
// Tiles are not scene graph nodes: each one is inserted straight into the
// batch's quad buffer in row-major order with InsertQuadFromSprite, so a
// large map costs no tree traversal. Tiles are positioned relative to the
// layer node.
type TileLayer struct {
	batch *SpriteBatch

	TileWidth  int
	TileHeight int

	cols, rows int
	data       []uint32        // row-major tile GIDs, len = cols * rows
	regions    []TextureRegion // indexed by GID (after masking flags)
	tiles      []*Node         // per cell, nil when empty

	anims       map[uint32][]AnimFrame // base GID -> frames (nil if no animations)
	animElapsed int                    // milliseconds
}

// NewTileLayer creates a layer of cols x rows tiles. data holds one GID per
// cell in row-major order, 0 for empty cells; regions maps a GID (without
// flip flags) to its region on tex. GIDs without a region are skipped.
func NewTileLayer(name string, tex *Texture, tileW, tileH, cols, rows int, data []uint32, regions []TextureRegion) (*TileLayer, error) {
	if cols <= 0 || rows <= 0 || tileW <= 0 || tileH <= 0 {
		return nil, fmt.Errorf("sprig: tile layer %q: invalid size %dx%d tiles of %dx%d", name, cols, rows, tileW, tileH)
	}
	if len(data) != cols*rows {
		return nil, fmt.Errorf("sprig: tile layer %q: %d tiles for a %dx%d map", name, len(data), cols, rows)
	}

	filled := 0
	for _, gid := range data {
		if gid != 0 {
			filled++
		}
	}
	l := &TileLayer{
		batch:      NewSpriteBatch(name, tex, BatchConfig{Capacity: max(filled, 1)}),
		TileWidth:  tileW,
		TileHeight: tileH,
		cols:       cols,
		rows:       rows,
		data:       data,
		regions:    regions,
		tiles:      make([]*Node, cols*rows),
	}
	l.batch.node.OnUpdate = l.update

	for i, gid := range data {
		if gid == 0 {
			continue
		}
		t := l.newTile(i, gid)
		if t == nil {
			continue
		}
		if err := l.batch.InsertQuadFromSprite(t, l.batch.Len()); err != nil {
			l.batch.Dispose()
			return nil, err
		}
		l.tiles[i] = t
	}
	return l, nil
}

// Node returns the layer's scene graph node.
func (l *TileLayer) Node() *Node { return l.batch.node }

// Batch returns the SpriteBatch drawing the layer.
func (l *TileLayer) Batch() *SpriteBatch { return l.batch }

// Size returns the map size in tiles.
func (l *TileLayer) Size() (cols, rows int) { return l.cols, l.rows }

// TileAt returns the GID at the given cell, or 0 outside the map.
func (l *TileLayer) TileAt(col, row int) uint32 {
	if col < 0 || col >= l.cols || row < 0 || row >= l.rows {
		return 0
	}
	return l.data[row*l.cols+col]
}

// SetTile replaces the tile at the given cell. Setting 0 clears the cell.
// Out-of-range cells are ignored.
func (l *TileLayer) SetTile(col, row int, gid uint32) error {
	if col < 0 || col >= l.cols || row < 0 || row >= l.rows {
		return nil
	}
	i := row*l.cols + col
	l.data[i] = gid
	cur := l.tiles[i]

	if cur != nil && (gid == 0 || int(gid&^tileFlagMask) >= len(l.regions)) {
		l.tiles[i] = nil
		return l.batch.RemoveSpriteFromAtlas(cur)
	}
	if gid == 0 {
		return nil
	}
	if cur != nil {
		l.configureTile(cur, i, gid)
		return l.batch.UpdateQuadFromSprite(cur, cur.AtlasIndex())
	}

	t := l.newTile(i, gid)
	if t == nil {
		return nil
	}
	if err := l.batch.InsertQuadFromSprite(t, l.slotAfter(i)); err != nil {
		return err
	}
	l.tiles[i] = t
	return nil
}

// SetAnimations sets the animation definitions for this layer.
// The map is keyed by base GID (no flag bits).
func (l *TileLayer) SetAnimations(anims map[uint32][]AnimFrame) {
	l.anims = anims
}

// Dispose releases the layer's batch and texture reference.
func (l *TileLayer) Dispose() {
	l.batch.Dispose()
}

// slotAfter returns the atlas index a new tile at cell i takes: just before
// the next filled cell in row-major order.
func (l *TileLayer) slotAfter(i int) int {
	for _, t := range l.tiles[i+1:] {
		if t != nil {
			return t.AtlasIndex()
		}
	}
	return l.batch.Len()
}

func (l *TileLayer) newTile(i int, gid uint32) *Node {
	if int(gid&^tileFlagMask) >= len(l.regions) {
		return nil // invalid GID
	}
	t := NewSprite("tile", nil, TextureRegion{})
	l.configureTile(t, i, gid)
	return t
}

// configureTile sets a tile's region and places it centered in its cell,
// applying the flip flags as scale and rotation.
func (l *TileLayer) configureTile(t *Node, i int, gid uint32) {
	flags := gid & tileFlagMask
	r := l.regions[gid&^tileFlagMask]
	t.TextureRegion = r

	col, row := i%l.cols, i/l.cols
	t.PivotX = float64(r.Width) / 2
	t.PivotY = float64(r.Height) / 2
	t.X = float64(col*l.TileWidth) + float64(l.TileWidth)/2
	t.Y = float64(row*l.TileHeight) + float64(l.TileHeight)/2

	// Transpose is a quarter turn of a vertically mirrored tile. Mirroring
	// on top of a rotation negates the angle.
	rot, sx, sy := 0.0, 1.0, 1.0
	if flags&tileFlipD != 0 {
		rot, sy = math.Pi/2, -1
	}
	if flags&tileFlipH != 0 {
		rot, sx = -rot, -sx
	}
	if flags&tileFlipV != 0 {
		rot, sy = -rot, -sy
	}
	t.Rotation = rot
	t.ScaleX = sx
	t.ScaleY = sy
	t.transformDirty = true
}

// update advances tile animations; registered as the layer node's OnUpdate.
func (l *TileLayer) update(dt float64) {
	if l.anims == nil || !l.batch.node.Visible {
		return
	}
	dtMs := int(dt * 1000)
	if dtMs <= 0 {
		return
	}
	l.animElapsed += dtMs

	for i, t := range l.tiles {
		if t == nil {
			continue
		}
		baseGID := l.data[i] &^ tileFlagMask
		frames, ok := l.anims[baseGID]
		if !ok || len(frames) == 0 {
			continue
		}

		totalDuration := 0
		for _, f := range frames {
			totalDuration += f.Duration
		}
		if totalDuration == 0 {
			continue
		}

		elapsed := l.animElapsed % totalDuration
		currentGID := frames[0].GID
		acc := 0
		for _, f := range frames {
			acc += f.Duration
			if elapsed < acc {
				currentGID = f.GID
				break
			}
		}

		if int(currentGID) < len(l.regions) && l.regions[currentGID] != t.TextureRegion {
			t.SetTextureRegion(l.regions[currentGID])
		}
	}
}
