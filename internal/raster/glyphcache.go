package raster

import (
	"image"
	"image/draw"
	"sync"

	"golang.org/x/image/math/fixed"

	"github.com/katharostech/cast2gif/internal/term"
)

// placeholderRune stands in for characters the font cannot render.
const placeholderRune = '�'

// Glyph is one rendered character mask. Offset positions the mask relative
// to the cell origin. A nil Mask means the glyph has no visible pixels.
type Glyph struct {
	Mask   *image.Alpha
	Offset image.Point
}

// glyphKey identifies a cache entry. Only the bold and italic bits select a
// different rendering; underline and reverse are applied by the compositor.
type glyphKey struct {
	r     rune
	style term.Style
}

// GlyphCache lazily renders and memoizes glyph masks. It is read-mostly and
// shared across all rasterization workers; population is serialized so a
// concurrent first use of the same key renders once and writes atomically.
type GlyphCache struct {
	fonts *FontSet

	mu     sync.RWMutex
	glyphs map[glyphKey]*Glyph
}

// NewGlyphCache creates an empty cache over the given fonts.
func NewGlyphCache(fonts *FontSet) *GlyphCache {
	return &GlyphCache{
		fonts:  fonts,
		glyphs: make(map[glyphKey]*Glyph),
	}
}

// Lookup returns the mask for (r, style), rendering it on first use.
// Unknown runes fall back to the placeholder glyph, then to an empty mask;
// a lookup never fails a frame.
func (c *GlyphCache) Lookup(r rune, style term.Style) *Glyph {
	key := glyphKey{r: r, style: style & (term.StyleBold | term.StyleItalic)}

	c.mu.RLock()
	g, ok := c.glyphs[key]
	c.mu.RUnlock()
	if ok {
		return g
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Double-check: another worker may have populated the key while we
	// waited for the write lock.
	if g, ok := c.glyphs[key]; ok {
		return g
	}
	g = c.render(key)
	c.glyphs[key] = g
	return g
}

// Len returns the number of cached glyphs.
func (c *GlyphCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.glyphs)
}

// render rasterizes one glyph with the dot on the cell baseline. Callers
// hold the write lock: font.Face is not goroutine-safe.
func (c *GlyphCache) render(key glyphKey) *Glyph {
	face := c.fonts.face(key.style)
	dot := fixed.P(0, c.fonts.Ascent())

	dr, mask, maskp, _, ok := face.Glyph(dot, key.r)
	if !ok && key.r != placeholderRune {
		dr, mask, maskp, _, ok = face.Glyph(dot, placeholderRune)
	}
	if !ok || dr.Empty() {
		return &Glyph{}
	}

	// The face reuses its mask buffer between calls; copy it out.
	m := image.NewAlpha(image.Rect(0, 0, dr.Dx(), dr.Dy()))
	draw.DrawMask(m, m.Bounds(), image.Opaque, image.Point{}, mask, maskp, draw.Src)
	return &Glyph{Mask: m, Offset: dr.Min}
}
