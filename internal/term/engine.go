package term

import (
	"github.com/hinshun/vt10x"
)

// Attribute bit layout of vt10x glyph modes. The emulator does not export
// these, but the layout is part of its stable glyph representation.
const (
	vtAttrReverse   = 1 << 0
	vtAttrUnderline = 1 << 1
	vtAttrBold      = 1 << 2
	vtAttrItalic    = 1 << 4
)

// Engine sequentially replays recorded terminal output against a single
// mutable vt10x screen buffer. It is strictly single-goroutine: one logical
// replay stream exists per conversion run.
type Engine struct {
	vt   vt10x.Terminal
	rows int
	cols int
}

// NewEngine creates an engine for a rows x cols screen.
func NewEngine(rows, cols int) *Engine {
	return &Engine{
		vt:   vt10x.New(vt10x.WithSize(cols, rows)),
		rows: rows,
		cols: cols,
	}
}

// Advance feeds one chunk of raw terminal output into the emulator.
// Malformed escape sequences are tolerated; recovery is the emulator's own
// policy and is not second-guessed here.
func (e *Engine) Advance(data []byte) {
	_, _ = e.vt.Write(data)
}

// Resize changes the screen dimensions mid-replay (asciicast "r" events).
func (e *Engine) Resize(rows, cols int) {
	e.vt.Resize(cols, rows)
	e.rows = rows
	e.cols = cols
}

// Size returns the current screen dimensions.
func (e *Engine) Size() (rows, cols int) {
	return e.rows, e.cols
}

// Snapshot copies the current screen contents out of the emulator. The
// returned snapshot shares no state with the live buffer and is safe to hand
// to concurrent consumers.
func (e *Engine) Snapshot() *Snapshot {
	e.vt.Lock()
	defer e.vt.Unlock()

	snap := &Snapshot{
		Rows:  e.rows,
		Cols:  e.cols,
		Cells: make([]Cell, e.rows*e.cols),
	}
	for row := 0; row < e.rows; row++ {
		for col := 0; col < e.cols; col++ {
			g := e.vt.Cell(col, row)
			cell := Cell{
				Rune: g.Char,
				FG:   convertColor(g.FG),
				BG:   convertColor(g.BG),
			}
			if g.Mode&vtAttrBold != 0 {
				cell.Style |= StyleBold
			}
			if g.Mode&vtAttrItalic != 0 {
				cell.Style |= StyleItalic
			}
			if g.Mode&vtAttrUnderline != 0 {
				cell.Style |= StyleUnderline
			}
			if g.Mode&vtAttrReverse != 0 {
				cell.Style |= StyleReverse
			}
			snap.Cells[row*e.cols+col] = cell
		}
	}

	cur := e.vt.Cursor()
	snap.CursorX = cur.X
	snap.CursorY = cur.Y
	snap.CursorVisible = e.vt.CursorVisible()
	return snap
}

// convertColor maps a vt10x color to the screen data model. Values below
// 256 are palette indices; the sentinel defaults map to the theme defaults;
// anything else carries a packed 24-bit true color.
func convertColor(c vt10x.Color) Color {
	switch c {
	case vt10x.DefaultFG, vt10x.DefaultBG, vt10x.DefaultCursor:
		return Color{Mode: ColorDefault}
	}
	if c < 256 {
		return IndexedColor(uint32(c))
	}
	return Color{Mode: ColorRGB, Value: uint32(c) & 0xffffff}
}
