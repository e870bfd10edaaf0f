package sprig

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/hajimehoshi/ebiten/v2"
)

// Quad is one textured quad: four vertices in TL, TR, BL, BR order, drawn as
// the triangles TL-TR-BL and TR-BR-BL.
type Quad [4]ebiten.Vertex

// quadGrowthFactor is how much a full QuadBuffer grows on insert.
const quadGrowthFactor = 1.33

// QuadBuffer is a growable, contiguous array of quads plus the matching index
// buffer. It is the texture atlas of a SpriteBatch: the vertex and index views
// are handed to the render sink as-is, so the whole buffer draws in one call.
//
// Insert and remove shift every later quad and cost O(Len). They are meant
// for scene edits, not for per-frame use; per-frame geometry goes through
// UpdateAt.
type QuadBuffer struct {
	vertices []ebiten.Vertex // 4 per quad, len == 4*Len
	indices  []uint32        // 6 per quad, len == 6*Cap
	capacity int
}

// NewQuadBuffer creates an empty buffer with room for capacity quads.
func NewQuadBuffer(capacity int) *QuadBuffer {
	if capacity < 0 {
		capacity = 0
	}
	q := &QuadBuffer{}
	q.realloc(capacity)
	return q
}

// Len returns the number of quads.
func (q *QuadBuffer) Len() int {
	return len(q.vertices) / 4
}

// Cap returns the number of quads the buffer holds before it must grow.
func (q *QuadBuffer) Cap() int {
	return q.capacity
}

// At returns the quad at index. Panics if index is out of range.
func (q *QuadBuffer) At(index int) Quad {
	var quad Quad
	copy(quad[:], q.vertices[index*4:index*4+4])
	return quad
}

// InsertAt inserts quad at index, shifting quads at index..Len-1 up by one.
// Grows the buffer first when it is full.
func (q *QuadBuffer) InsertAt(index int, quad Quad) error {
	n := q.Len()
	if index < 0 || index > n {
		return fmt.Errorf("sprig: quad insert at %d (len %d): %w", index, n, ErrIndexOutOfRange)
	}
	if n == q.capacity {
		q.Grow()
	}
	q.vertices = q.vertices[:(n+1)*4]
	copy(q.vertices[(index+1)*4:], q.vertices[index*4:n*4])
	copy(q.vertices[index*4:], quad[:])
	return nil
}

// UpdateAt overwrites the quad at index in place.
func (q *QuadBuffer) UpdateAt(index int, quad Quad) error {
	if n := q.Len(); index < 0 || index >= n {
		return fmt.Errorf("sprig: quad update at %d (len %d): %w", index, n, ErrIndexOutOfRange)
	}
	copy(q.vertices[index*4:], quad[:])
	return nil
}

// RemoveAt removes the quad at index, shifting later quads down by one.
func (q *QuadBuffer) RemoveAt(index int) error {
	return q.RemoveRange(index, 1)
}

// RemoveRange removes count quads starting at index in a single shift.
func (q *QuadBuffer) RemoveRange(index, count int) error {
	n := q.Len()
	if index < 0 || count < 0 || index+count > n {
		return fmt.Errorf("sprig: quad remove [%d, %d) (len %d): %w", index, index+count, n, ErrIndexOutOfRange)
	}
	if count == 0 {
		return nil
	}
	copy(q.vertices[index*4:], q.vertices[(index+count)*4:])
	q.vertices = q.vertices[:(n-count)*4]
	return nil
}

// Swap exchanges the quads at i and j.
func (q *QuadBuffer) Swap(i, j int) error {
	n := q.Len()
	if i < 0 || i >= n || j < 0 || j >= n {
		return fmt.Errorf("sprig: quad swap %d <-> %d (len %d): %w", i, j, n, ErrIndexOutOfRange)
	}
	if i == j {
		return nil
	}
	for k := 0; k < 4; k++ {
		q.vertices[i*4+k], q.vertices[j*4+k] = q.vertices[j*4+k], q.vertices[i*4+k]
	}
	return nil
}

// Rotate rotates the quads in [first, last) so the quad at middle moves to
// first. Quads outside the range are untouched.
func (q *QuadBuffer) Rotate(first, middle, last int) error {
	if first < 0 || first > middle || middle > last || last > q.Len() {
		return fmt.Errorf("sprig: quad rotate [%d, %d, %d) (len %d): %w", first, middle, last, q.Len(), ErrIndexOutOfRange)
	}
	rotateRange(q.vertices[first*4:last*4], (middle-first)*4)
	return nil
}

// Clear removes all quads. Capacity is kept.
func (q *QuadBuffer) Clear() {
	q.vertices = q.vertices[:0]
}

// Grow raises capacity by the growth factor, rounding up, by at least one.
func (q *QuadBuffer) Grow() {
	next := int(math.Ceil(float64(q.capacity) * quadGrowthFactor))
	if next <= q.capacity {
		next = q.capacity + 1
	}
	q.realloc(next)
}

// Reserve grows capacity to at least n quads.
func (q *QuadBuffer) Reserve(n int) {
	if n > q.capacity {
		q.realloc(n)
	}
}

// ShrinkToFit reallocates storage to exactly Len quads. The buffer never
// shrinks on its own.
func (q *QuadBuffer) ShrinkToFit() {
	if q.capacity != q.Len() {
		q.realloc(q.Len())
	}
}

// Vertices returns the vertex view of the live quads, 4 per quad. The slice
// aliases the buffer and is only valid until the next mutation.
func (q *QuadBuffer) Vertices() []ebiten.Vertex {
	return q.vertices
}

// Indices returns the index view for the live quads, 6 per quad.
func (q *QuadBuffer) Indices() []uint32 {
	return q.indices[:q.Len()*6]
}

// SizeBytes returns the memory reserved by the vertex and index storage.
func (q *QuadBuffer) SizeBytes() uint64 {
	v := uint64(unsafe.Sizeof(ebiten.Vertex{}))
	return uint64(q.capacity) * (4*v + 6*4)
}

// realloc moves the live quads into storage sized for capacity quads and
// regenerates the index buffer.
func (q *QuadBuffer) realloc(capacity int) {
	verts := make([]ebiten.Vertex, len(q.vertices), capacity*4)
	copy(verts, q.vertices)
	q.vertices = verts

	q.indices = make([]uint32, capacity*6)
	for i := 0; i < capacity; i++ {
		base := uint32(i * 4)
		q.indices[i*6+0] = base + 0
		q.indices[i*6+1] = base + 1
		q.indices[i*6+2] = base + 2
		q.indices[i*6+3] = base + 1
		q.indices[i*6+4] = base + 3
		q.indices[i*6+5] = base + 2
	}
	q.capacity = capacity
}

// rotateRange rotates s left by k using three reversals.
func rotateRange[T any](s []T, k int) {
	if k == 0 || k == len(s) {
		return
	}
	reverseRange(s[:k])
	reverseRange(s[k:])
	reverseRange(s)
}

func reverseRange[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
