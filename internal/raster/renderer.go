package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/katharostech/cast2gif/internal/term"
	"github.com/katharostech/cast2gif/internal/theme"
)

// ErrRender indicates an unrecoverable rasterization failure. Per-glyph
// problems never surface here; they degrade to the placeholder glyph.
var ErrRender = errors.New("render failed")

// Frame is one rasterized image, tagged with its originating sample index.
// It is produced once and consumed exactly once by the encoder sink.
type Frame struct {
	Index int
	Time  float64
	Image *image.RGBA
}

// Renderer converts screen snapshots into pixel frames. It holds only
// immutable configuration and the shared glyph cache, so a single Renderer
// is safely callable from many workers on different snapshots.
type Renderer struct {
	palette    *theme.Palette
	cache      *GlyphCache
	fonts      *FontSet
	rows, cols int
	cellW      int
	cellH      int
	showCursor bool
}

// NewRenderer creates a renderer for a fixed rows x cols grid. Snapshots
// with other dimensions (mid-session resizes) are clipped or padded to it so
// every frame of a run has identical pixel dimensions.
func NewRenderer(p *theme.Palette, cache *GlyphCache, fonts *FontSet, rows, cols int, showCursor bool) *Renderer {
	w, h := fonts.CellSize()
	return &Renderer{
		palette:    p,
		cache:      cache,
		fonts:      fonts,
		rows:       rows,
		cols:       cols,
		cellW:      w,
		cellH:      h,
		showCursor: showCursor,
	}
}

// Size returns the pixel dimensions of every produced frame.
func (r *Renderer) Size() (w, h int) {
	return r.cols * r.cellW, r.rows * r.cellH
}

// Render rasterizes one snapshot. Rendering the same snapshot against the
// same palette twice yields byte-identical frames.
func (r *Renderer) Render(snap *term.Snapshot) (*Frame, error) {
	w, h := r.Size()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(r.palette.Background()), image.Point{}, draw.Src)

	rows := min(r.rows, snap.Rows)
	cols := min(r.cols, snap.Cols)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			if err := r.renderCell(img, snap, row, col); err != nil {
				return nil, fmt.Errorf("%w: frame %d cell %d,%d: %v", ErrRender, snap.Index, row, col, err)
			}
		}
	}

	if r.showCursor && snap.CursorVisible {
		r.renderCursor(img, snap)
	}

	return &Frame{Index: snap.Index, Time: snap.Time, Image: img}, nil
}

func (r *Renderer) renderCell(img *image.RGBA, snap *term.Snapshot, row, col int) error {
	cell := snap.Cell(row, col)
	fg, bg, err := r.cellColors(cell)
	if err != nil {
		return err
	}

	x0 := col * r.cellW
	y0 := row * r.cellH
	cellRect := image.Rect(x0, y0, x0+r.cellW, y0+r.cellH)
	if bg != r.palette.Background() {
		draw.Draw(img, cellRect, image.NewUniform(bg), image.Point{}, draw.Src)
	}

	r.drawGlyph(img, cell.Rune, cell.Style, fg, x0, y0)

	if cell.Style&term.StyleUnderline != 0 {
		y := y0 + r.fonts.Ascent() + 1
		if y >= y0+r.cellH {
			y = y0 + r.cellH - 1
		}
		line := image.Rect(x0, y, x0+r.cellW, y+1)
		draw.Draw(img, line, image.NewUniform(fg), image.Point{}, draw.Src)
	}
	return nil
}

// cellColors resolves the cell's colors, applying reverse video and the
// bold-brightens-basic-colors convention before resolution.
func (r *Renderer) cellColors(cell term.Cell) (fg, bg color.NRGBA, err error) {
	fgc, bgc := cell.FG, cell.BG
	if cell.Style&term.StyleReverse != 0 {
		fgc, bgc = bgc, fgc
	}
	if cell.Style&term.StyleBold != 0 && fgc.Mode == term.ColorIndexed && fgc.Value < 8 {
		fgc = term.IndexedColor(fgc.Value + 8)
	}

	if cell.Style&term.StyleReverse != 0 {
		// Swapped positions resolve against the opposite default.
		fg, err = r.palette.ResolveBG(fgc)
		if err != nil {
			return fg, bg, err
		}
		bg, err = r.palette.ResolveFG(bgc)
		return fg, bg, err
	}
	fg, err = r.palette.ResolveFG(fgc)
	if err != nil {
		return fg, bg, err
	}
	bg, err = r.palette.ResolveBG(bgc)
	return fg, bg, err
}

func (r *Renderer) drawGlyph(img *image.RGBA, ch rune, style term.Style, fg color.NRGBA, x0, y0 int) {
	if ch == 0 || ch == ' ' {
		return
	}
	g := r.cache.Lookup(ch, style)
	if g.Mask == nil {
		return
	}
	dst := g.Mask.Bounds().Add(image.Point{X: x0, Y: y0}).Add(g.Offset)
	draw.DrawMask(img, dst, image.NewUniform(fg), image.Point{}, g.Mask, image.Point{}, draw.Over)
}

// renderCursor paints a reverse-video block at the cursor cell.
func (r *Renderer) renderCursor(img *image.RGBA, snap *term.Snapshot) {
	row, col := snap.CursorY, snap.CursorX
	if row < 0 || row >= min(r.rows, snap.Rows) || col < 0 || col >= min(r.cols, snap.Cols) {
		return
	}

	x0 := col * r.cellW
	y0 := row * r.cellH
	cellRect := image.Rect(x0, y0, x0+r.cellW, y0+r.cellH)
	draw.Draw(img, cellRect, image.NewUniform(r.palette.Cursor()), image.Point{}, draw.Src)

	cell := snap.Cell(row, col)
	r.drawGlyph(img, cell.Rune, cell.Style, r.palette.Background(), x0, y0)
}
