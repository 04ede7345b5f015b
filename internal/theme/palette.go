package theme

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/katharostech/cast2gif/internal/term"
)

// ErrColorResolution indicates a cell color that cannot be mapped to RGB.
// Unresolved colors are a fatal data error; they are never silently
// defaulted.
var ErrColorResolution = errors.New("color resolution failed")

// Palette is the immutable index-to-RGB mapping for one conversion run. It
// is shared read-only across all rasterization workers and requires no
// synchronization.
type Palette struct {
	fg     color.NRGBA
	bg     color.NRGBA
	cursor color.NRGBA
	table  [256]color.NRGBA
}

// NewPalette builds the full 256-entry mapping from a theme: the theme's 16
// ANSI colors, the 6x6x6 xterm color cube, and the 24-step grayscale ramp.
func NewPalette(t *Theme) *Palette {
	p := &Palette{fg: t.Foreground, bg: t.Background, cursor: t.Cursor}
	copy(p.table[:16], t.ANSI[:])

	// 16..231: color cube, levels 0 and 55+40*n.
	for i := 16; i < 232; i++ {
		n := i - 16
		p.table[i] = color.NRGBA{
			R: cubeLevel(n / 36),
			G: cubeLevel(n / 6 % 6),
			B: cubeLevel(n % 6),
			A: 0xff,
		}
	}
	// 232..255: grayscale from 8 to 238 in steps of 10.
	for i := 232; i < 256; i++ {
		v := uint8(8 + 10*(i-232))
		p.table[i] = color.NRGBA{R: v, G: v, B: v, A: 0xff}
	}
	return p
}

func cubeLevel(v int) uint8 {
	if v == 0 {
		return 0
	}
	return uint8(55 + 40*v)
}

// Foreground returns the default foreground color.
func (p *Palette) Foreground() color.NRGBA { return p.fg }

// Background returns the default background color.
func (p *Palette) Background() color.NRGBA { return p.bg }

// Cursor returns the cursor block color.
func (p *Palette) Cursor() color.NRGBA { return p.cursor }

// Index returns palette entry i.
func (p *Palette) Index(i int) color.NRGBA { return p.table[i] }

// ResolveFG resolves a foreground cell color to RGB.
func (p *Palette) ResolveFG(c term.Color) (color.NRGBA, error) {
	return p.resolve(c, p.fg)
}

// ResolveBG resolves a background cell color to RGB.
func (p *Palette) ResolveBG(c term.Color) (color.NRGBA, error) {
	return p.resolve(c, p.bg)
}

func (p *Palette) resolve(c term.Color, def color.NRGBA) (color.NRGBA, error) {
	switch c.Mode {
	case term.ColorDefault:
		return def, nil
	case term.ColorIndexed:
		if c.Value > 255 {
			return color.NRGBA{}, fmt.Errorf("%w: palette index %d out of range", ErrColorResolution, c.Value)
		}
		return p.table[c.Value], nil
	case term.ColorRGB:
		r, g, b := c.RGB()
		return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
	default:
		return color.NRGBA{}, fmt.Errorf("%w: unknown color mode %d", ErrColorResolution, c.Mode)
	}
}

// ValidateSnapshot checks that every cell color in the snapshot resolves.
// It runs before a snapshot is dispatched for rasterization so that an
// unresolvable color aborts the run instead of producing a wrong frame.
func (p *Palette) ValidateSnapshot(s *term.Snapshot) error {
	for i := range s.Cells {
		cell := &s.Cells[i]
		if _, err := p.ResolveFG(cell.FG); err != nil {
			return fmt.Errorf("cell %d,%d: %w", i/s.Cols, i%s.Cols, err)
		}
		if _, err := p.ResolveBG(cell.BG); err != nil {
			return fmt.Errorf("cell %d,%d: %w", i/s.Cols, i%s.Cols, err)
		}
	}
	return nil
}
