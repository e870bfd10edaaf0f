package sprig

import (
	"fmt"
	_ "image/png" // PNG is the common atlas page format for LoadReader
	"io"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Texture is a reference-counted GPU image shared between the TextureCache
// that loaded it and every SpriteBatch or sprite drawing from it. The image is
// deallocated when the last reference is released.
type Texture struct {
	name          string
	image         *ebiten.Image
	width, height int
	refs          int
	cache         *TextureCache
}

// NewTexture wraps img in a Texture holding one reference, owned by the caller.
func NewTexture(name string, img *ebiten.Image) *Texture {
	if img == nil {
		panic("sprig: cannot create texture from nil image")
	}
	b := img.Bounds()
	return &Texture{
		name:   name,
		image:  img,
		width:  b.Dx(),
		height: b.Dy(),
		refs:   1,
	}
}

// Name returns the name the texture was created or cached under.
func (t *Texture) Name() string { return t.name }

// Image returns the underlying image, or nil once the texture is released.
func (t *Texture) Image() *ebiten.Image { return t.image }

// Size returns the texture's pixel dimensions.
func (t *Texture) Size() (w, h int) { return t.width, t.height }

// RefCount returns the number of live references.
func (t *Texture) RefCount() int { return t.refs }

// Released reports whether the last reference has been dropped.
func (t *Texture) Released() bool { return t.refs == 0 }

// Retain adds a reference and returns t for chaining.
func (t *Texture) Retain() *Texture {
	if t.refs == 0 {
		panic(fmt.Sprintf("sprig: retain of released texture %q", t.name))
	}
	t.refs++
	return t
}

// Release drops a reference. The last release deallocates the image and
// evicts the texture from its cache.
func (t *Texture) Release() {
	if t.refs == 0 {
		panic(fmt.Sprintf("sprig: texture %q released too many times", t.name))
	}
	t.refs--
	if t.refs > 0 {
		return
	}
	if t.cache != nil {
		t.cache.forget(t)
		t.cache = nil
	}
	if t.image != nil {
		t.image.Deallocate()
		t.image = nil
	}
	if globalDebug {
		log.Printf("sprig: texture %q deallocated", t.name)
	}
}

// whiteTexture backs stand-alone sprites that have no texture.
// Not safe for concurrent use.
var whiteTexture *Texture

func ensureWhiteTexture() *Texture {
	if whiteTexture == nil || whiteTexture.Released() {
		img := ebiten.NewImage(1, 1)
		img.Fill(ColorWhite.toRGBA())
		whiteTexture = NewTexture("white", img)
	}
	return whiteTexture
}

// --- Resource cache ---

// TextureCache is the resource cache that loads textures by name. The cache
// holds one reference to every texture it stores; Remove drops it, so a
// texture lives until both the cache and every batch using it let go.
type TextureCache struct {
	textures map[string]*Texture
}

// NewTextureCache creates an empty cache.
func NewTextureCache() *TextureCache {
	return &TextureCache{textures: make(map[string]*Texture)}
}

// Add stores img under name and returns the cached texture. If name is already
// cached the existing texture is returned and img is ignored.
func (c *TextureCache) Add(name string, img *ebiten.Image) *Texture {
	if t, ok := c.textures[name]; ok {
		return t
	}
	t := NewTexture(name, img)
	t.cache = c
	c.textures[name] = t
	return t
}

// Get returns the texture cached under name.
func (c *TextureCache) Get(name string) (*Texture, bool) {
	t, ok := c.textures[name]
	return t, ok
}

// LoadReader decodes an image from r and caches it under name. A texture
// already cached under name is returned without reading r. PNG, BMP and WebP
// are registered; other formats must be registered by the caller.
func (c *TextureCache) LoadReader(name string, r io.Reader) (*Texture, error) {
	if t, ok := c.textures[name]; ok {
		return t, nil
	}
	img, _, err := ebitenutil.NewImageFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("sprig: failed to load texture %q: %w", name, err)
	}
	return c.Add(name, img), nil
}

// Remove drops the cache's reference to the named texture. The texture stays
// alive while any batch still retains it. Unknown names are ignored.
func (c *TextureCache) Remove(name string) {
	t, ok := c.textures[name]
	if !ok {
		return
	}
	delete(c.textures, name)
	t.cache = nil
	t.Release()
}

// Clear drops the cache's reference to every texture.
func (c *TextureCache) Clear() {
	for name := range c.textures {
		c.Remove(name)
	}
}

// Len returns the number of cached textures.
func (c *TextureCache) Len() int {
	return len(c.textures)
}

// forget removes t from the map without touching its reference count.
func (c *TextureCache) forget(t *Texture) {
	if cur, ok := c.textures[t.name]; ok && cur == t {
		delete(c.textures, t.name)
	}
}
