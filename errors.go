package sprig

import "errors"

var (
	// ErrNotSprite is returned when a node that does not render as a
	// textured quad is added under a SpriteBatch.
	ErrNotSprite = errors.New("node is not a sprite")

	// ErrTextureMismatch is returned when a sprite's texture differs from the
	// texture of the batch it is added to.
	ErrTextureMismatch = errors.New("sprite texture does not match batch texture")

	// ErrIndexOutOfRange is returned for a caller-supplied index outside the
	// valid range of the addressed sequence.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrNotTracked reports that a sprite holds no slot in the batch. Removal
	// of an untracked sprite is a no-op that returns this status.
	ErrNotTracked = errors.New("sprite is not tracked by this batch")

	// ErrAlreadyTracked is returned when a sprite that already holds a slot,
	// or belongs to another tree, is inserted again.
	ErrAlreadyTracked = errors.New("sprite already holds a slot")

	// ErrDetached is returned when a sprite placed with InsertQuadFromSprite
	// is used as a tree parent, or a sprite with children is placed that way.
	ErrDetached = errors.New("sprite is placed by index and has no tree")

	// ErrCycle is returned when adding a node under one of its own
	// descendants.
	ErrCycle = errors.New("adding child would create a cycle")

	// ErrDisposed is returned when a disposed batch or node is used.
	ErrDisposed = errors.New("use of disposed object")

	// ErrCorruptIndex is returned by SpriteBatch.Validate when the atlas and
	// the descendants disagree.
	ErrCorruptIndex = errors.New("batch index is corrupt")
)
