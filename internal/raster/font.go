// Package raster turns screen snapshots into pixel frames.
//
// Glyphs come from a shared, lazily populated cache over a fixed set of
// monospace font faces; colors are resolved through the run's palette. A
// Renderer is safe for concurrent use across worker goroutines.
package raster

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/opentype"

	"github.com/katharostech/cast2gif/internal/term"
)

const referenceGlyph = 'M'

// FontSet holds the style variants of the rendering font plus the derived
// cell pixel geometry. Face access is not goroutine-safe; the glyph cache
// serializes it.
type FontSet struct {
	faces  [4]font.Face
	cellW  int
	cellH  int
	ascent int
}

// LoadFontSet builds the font set at the given point size. With an empty
// path the embedded Go Mono family is used, including true bold and italic
// variants; a custom TTF/OTF file serves all styles.
func LoadFontSet(path string, size float64) (*FontSet, error) {
	opts := &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}

	fs := &FontSet{}
	if path == "" {
		sources := [4][]byte{gomono.TTF, gomonobold.TTF, gomonoitalic.TTF, gomonobolditalic.TTF}
		for i, src := range sources {
			face, err := newFace(src, opts)
			if err != nil {
				return nil, fmt.Errorf("failed to load embedded font: %w", err)
			}
			fs.faces[i] = face
		}
	} else {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read font file: %w", err)
		}
		face, err := newFace(raw, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to load font %s: %w", path, err)
		}
		for i := range fs.faces {
			fs.faces[i] = face
		}
	}

	metrics := fs.faces[0].Metrics()
	fs.cellH = metrics.Height.Ceil()
	fs.ascent = metrics.Ascent.Ceil()

	advance, ok := fs.faces[0].GlyphAdvance(referenceGlyph)
	if !ok {
		return nil, fmt.Errorf("font has no %q glyph to derive cell width from", referenceGlyph)
	}
	fs.cellW = advance.Ceil()
	if fs.cellW <= 0 || fs.cellH <= 0 {
		return nil, fmt.Errorf("font produced degenerate cell size %dx%d", fs.cellW, fs.cellH)
	}
	return fs, nil
}

func newFace(src []byte, opts *opentype.FaceOptions) (font.Face, error) {
	parsed, err := opentype.Parse(src)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(parsed, opts)
}

// CellSize returns one cell's pixel dimensions.
func (fs *FontSet) CellSize() (w, h int) {
	return fs.cellW, fs.cellH
}

// Ascent returns the baseline offset from the cell top, in pixels.
func (fs *FontSet) Ascent() int {
	return fs.ascent
}

// face picks the style variant for the given cell style.
func (fs *FontSet) face(style term.Style) font.Face {
	i := 0
	if style&term.StyleBold != 0 {
		i |= 1
	}
	if style&term.StyleItalic != 0 {
		i |= 2
	}
	return fs.faces[i]
}
