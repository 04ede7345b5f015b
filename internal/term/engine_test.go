package term

import (
	"strings"
	"testing"
)

// snapshotText flattens a snapshot into newline-separated trimmed rows.
func snapshotText(s *Snapshot) string {
	var b strings.Builder
	for row := 0; row < s.Rows; row++ {
		var line strings.Builder
		for col := 0; col < s.Cols; col++ {
			r := s.Cell(row, col).Rune
			if r == 0 {
				r = ' '
			}
			line.WriteRune(r)
		}
		b.WriteString(strings.TrimRight(line.String(), " "))
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func TestEngine_AdvanceAndSnapshot(t *testing.T) {
	e := NewEngine(4, 10)
	e.Advance([]byte("hi"))

	snap := e.Snapshot()
	if snap.Rows != 4 || snap.Cols != 10 {
		t.Fatalf("Snapshot() size = %dx%d, want 4x10", snap.Rows, snap.Cols)
	}
	if got := snapshotText(snap); got != "hi" {
		t.Errorf("Snapshot() text = %q, want %q", got, "hi")
	}
	if snap.CursorX != 2 || snap.CursorY != 0 {
		t.Errorf("Snapshot() cursor = %d,%d, want 2,0", snap.CursorX, snap.CursorY)
	}
}

func TestEngine_SnapshotIsolation(t *testing.T) {
	e := NewEngine(2, 10)
	e.Advance([]byte("one"))
	first := e.Snapshot()

	e.Advance([]byte("\r\ntwo"))
	second := e.Snapshot()

	if got := snapshotText(first); got != "one" {
		t.Errorf("first snapshot changed after later Advance: %q", got)
	}
	if got := snapshotText(second); got != "one\ntwo" {
		t.Errorf("second snapshot text = %q, want %q", got, "one\ntwo")
	}
}

func TestEngine_Colors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Color
	}{
		{
			name:  "default foreground",
			input: "X",
			want:  Color{Mode: ColorDefault},
		},
		{
			name:  "basic ansi color",
			input: "\x1b[31mX",
			want:  IndexedColor(1),
		},
		{
			name:  "256 color",
			input: "\x1b[38;5;208mX",
			want:  IndexedColor(208),
		},
		{
			name:  "true color",
			input: "\x1b[38;2;10;20;30mX",
			want:  RGBColor(10, 20, 30),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(2, 10)
			e.Advance([]byte(tt.input))
			got := e.Snapshot().Cell(0, 0).FG
			if got != tt.want {
				t.Errorf("cell FG = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEngine_Styles(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Style
	}{
		{name: "plain", input: "X", want: 0},
		{name: "bold", input: "\x1b[1mX", want: StyleBold},
		{name: "italic", input: "\x1b[3mX", want: StyleItalic},
		{name: "underline", input: "\x1b[4mX", want: StyleUnderline},
		{name: "reverse", input: "\x1b[7mX", want: StyleReverse},
		{name: "bold underline", input: "\x1b[1;4mX", want: StyleBold | StyleUnderline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(2, 10)
			e.Advance([]byte(tt.input))
			got := e.Snapshot().Cell(0, 0).Style
			if got != tt.want {
				t.Errorf("cell style = %b, want %b", got, tt.want)
			}
		})
	}
}

func TestEngine_Resize(t *testing.T) {
	e := NewEngine(4, 10)
	e.Resize(6, 20)

	rows, cols := e.Size()
	if rows != 6 || cols != 20 {
		t.Fatalf("Size() = %dx%d, want 6x20", rows, cols)
	}
	snap := e.Snapshot()
	if snap.Rows != 6 || snap.Cols != 20 {
		t.Errorf("Snapshot() size = %dx%d, want 6x20", snap.Rows, snap.Cols)
	}
	if len(snap.Cells) != 6*20 {
		t.Errorf("Snapshot() cells = %d, want %d", len(snap.Cells), 6*20)
	}
}

func TestEngine_MalformedEscapeTolerated(t *testing.T) {
	e := NewEngine(2, 10)
	// A truncated CSI followed by normal output must not wedge the replay.
	e.Advance([]byte("\x1b["))
	e.Advance([]byte("ok"))

	if got := snapshotText(e.Snapshot()); !strings.Contains(got, "k") {
		t.Errorf("engine did not recover from malformed escape, screen = %q", got)
	}
}
