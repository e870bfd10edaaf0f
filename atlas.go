package sprig

import (
	"encoding/json"
	"fmt"
	"log"
)

// TextureRegion describes a sub-rectangle within a texture.
// Value type stored directly on Node, no pointer. A zero region stands for the
// whole texture.
type TextureRegion struct {
	X, Y      uint16 // top-left corner of the sub-image rect within the texture
	Width     uint16 // width of the sub-image rect (may differ from OriginalW if trimmed)
	Height    uint16 // height of the sub-image rect (may differ from OriginalH if trimmed)
	OriginalW uint16 // untrimmed sprite width as authored
	OriginalH uint16 // untrimmed sprite height as authored
	OffsetX   int16  // horizontal trim offset from TexturePacker
	OffsetY   int16  // vertical trim offset from TexturePacker
	Rotated   bool   // true if the region is stored 90 degrees clockwise in the texture
}

// IsZero reports whether r is the zero region.
func (r TextureRegion) IsZero() bool {
	return r == TextureRegion{}
}

// fullRegion returns a region covering all of tex.
func fullRegion(tex *Texture) TextureRegion {
	w, h := tex.Size()
	return TextureRegion{
		Width:     uint16(w),
		Height:    uint16(h),
		OriginalW: uint16(w),
		OriginalH: uint16(h),
	}
}

type atlasEntry struct {
	region TextureRegion
	page   int
}

// Atlas maps TexturePacker frame names to regions on one or more textures.
// Each page is usually the texture of one SpriteBatch.
type Atlas struct {
	pages   []*Texture
	regions map[string]atlasEntry
}

// Pages returns the atlas page textures indexed by page number.
func (a *Atlas) Pages() []*Texture {
	return a.pages
}

// Region returns the TextureRegion for the given name and the texture it lives
// on. If the name doesn't exist, it logs a warning (debug only) and returns an
// empty 0x0 region on the first page, which draws nothing.
func (a *Atlas) Region(name string) (TextureRegion, *Texture) {
	if e, ok := a.regions[name]; ok {
		return e.region, a.pageTexture(e.page)
	}
	if globalDebug {
		log.Printf("sprig: atlas region %q not found", name)
	}
	return TextureRegion{OriginalW: 1, OriginalH: 1}, a.pageTexture(0)
}

// Has reports whether the atlas defines a region called name.
func (a *Atlas) Has(name string) bool {
	_, ok := a.regions[name]
	return ok
}

// NewSprite creates a sprite node for the named region, bound to the page
// texture that holds it.
func (a *Atlas) NewSprite(name string) *Node {
	r, tex := a.Region(name)
	return NewSprite(name, tex, r)
}

func (a *Atlas) pageTexture(page int) *Texture {
	if page < 0 || page >= len(a.pages) {
		return nil
	}
	return a.pages[page]
}

// LoadAtlas parses TexturePacker JSON data and associates the given page
// textures. Supports both the hash format (single "frames" object) and the
// array format ("textures" array with per-page frame lists).
func LoadAtlas(jsonData []byte, pages ...*Texture) (*Atlas, error) {
	var probe struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
	}
	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("sprig: failed to parse atlas JSON: %w", err)
	}

	atlas := &Atlas{
		pages:   pages,
		regions: make(map[string]atlasEntry),
	}

	switch {
	case probe.Textures != nil:
		if err := parseArrayFormat(probe.Textures, atlas); err != nil {
			return nil, err
		}
	case probe.Frames != nil:
		if err := parseHashFrames(probe.Frames, 0, atlas); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("sprig: atlas JSON has neither \"frames\" nor \"textures\" key")
	}
	return atlas, nil
}

// --- JSON structure types ---

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame            jsonRect `json:"frame"`
	Rotated          bool     `json:"rotated"`
	Trimmed          bool     `json:"trimmed"`
	SpriteSourceSize jsonRect `json:"spriteSourceSize"`
	SourceSize       jsonSize `json:"sourceSize"`
}

type jsonTexturePage struct {
	Image  string               `json:"image"`
	Frames map[string]jsonFrame `json:"frames"`
}

// parseHashFrames parses the hash format: {"name": {frame...}, ...}
func parseHashFrames(raw json.RawMessage, page int, atlas *Atlas) error {
	var frames map[string]jsonFrame
	if err := json.Unmarshal(raw, &frames); err != nil {
		return fmt.Errorf("sprig: failed to parse atlas frames: %w", err)
	}
	for name, f := range frames {
		atlas.regions[name] = atlasEntry{region: frameToRegion(f), page: page}
	}
	return nil
}

// parseArrayFormat parses the array format: [{"image":"...", "frames":{...}}, ...]
func parseArrayFormat(raw json.RawMessage, atlas *Atlas) error {
	var textures []jsonTexturePage
	if err := json.Unmarshal(raw, &textures); err != nil {
		return fmt.Errorf("sprig: failed to parse atlas textures array: %w", err)
	}
	if len(textures) > len(atlas.pages) {
		return fmt.Errorf("sprig: atlas JSON lists %d pages, got %d textures", len(textures), len(atlas.pages))
	}
	for i, tex := range textures {
		for name, f := range tex.Frames {
			atlas.regions[name] = atlasEntry{region: frameToRegion(f), page: i}
		}
	}
	return nil
}

func frameToRegion(f jsonFrame) TextureRegion {
	return TextureRegion{
		X:         uint16(f.Frame.X),
		Y:         uint16(f.Frame.Y),
		Width:     uint16(f.Frame.W),
		Height:    uint16(f.Frame.H),
		OriginalW: uint16(f.SourceSize.W),
		OriginalH: uint16(f.SourceSize.H),
		OffsetX:   int16(f.SpriteSourceSize.X),
		OffsetY:   int16(f.SpriteSourceSize.Y),
		Rotated:   f.Rotated,
	}
}
