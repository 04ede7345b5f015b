// Package term reconstructs terminal screen state from recorded output.
//
// Escape-sequence interpretation is delegated to the vt10x emulator; this
// package wraps it behind a replay/snapshot contract and samples the replay
// at fixed intervals.
package term

// ColorMode says how a Color value should be interpreted.
type ColorMode uint8

const (
	// ColorDefault is the theme's default foreground or background.
	ColorDefault ColorMode = iota
	// ColorIndexed is a palette index (0-255).
	ColorIndexed
	// ColorRGB is a 24-bit true color packed as 0xRRGGBB.
	ColorRGB
)

// Color is either a palette index or a packed 24-bit RGB value. It is
// resolved to concrete RGB at rasterization time.
type Color struct {
	Mode  ColorMode
	Value uint32
}

// IndexedColor returns a palette-index color.
func IndexedColor(idx uint32) Color {
	return Color{Mode: ColorIndexed, Value: idx}
}

// RGBColor returns a 24-bit true color.
func RGBColor(r, g, b uint8) Color {
	return Color{Mode: ColorRGB, Value: uint32(r)<<16 | uint32(g)<<8 | uint32(b)}
}

// RGB unpacks a ColorRGB value.
func (c Color) RGB() (r, g, b uint8) {
	return uint8(c.Value >> 16), uint8(c.Value >> 8), uint8(c.Value)
}

// Style holds cell attribute flags.
type Style uint8

const (
	StyleBold Style = 1 << iota
	StyleItalic
	StyleUnderline
	StyleReverse
)

// Cell is one character cell of the screen grid.
type Cell struct {
	Rune  rune
	FG    Color
	BG    Color
	Style Style
}

// Snapshot is an immutable copy of the full screen grid at one sample tick.
// It shares no memory with the live emulator buffer; ownership transfers to
// whichever pipeline stage holds it.
type Snapshot struct {
	Index         int
	Time          float64
	Rows, Cols    int
	Cells         []Cell
	CursorX       int
	CursorY       int
	CursorVisible bool
}

// Cell returns the cell at the given row and column.
func (s *Snapshot) Cell(row, col int) Cell {
	return s.Cells[row*s.Cols+col]
}
