// Package testutil provides cast-file and screen-snapshot fixtures for
// tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/katharostech/cast2gif/internal/term"
)

// CastEvent is one event line of a cast fixture.
type CastEvent struct {
	Time float64
	Code string
	Data string
}

// Output is shorthand for an output event.
func Output(time float64, data string) CastEvent {
	return CastEvent{Time: time, Code: "o", Data: data}
}

// CastFileContent builds the raw asciicast v2 content for the given
// terminal size and events.
func CastFileContent(t *testing.T, width, height int, events []CastEvent) string {
	t.Helper()

	header := map[string]interface{}{
		"version": 2,
		"width":   width,
		"height":  height,
	}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		t.Fatalf("Failed to marshal cast header: %v", err)
	}

	var b strings.Builder
	b.Write(headerJSON)
	b.WriteByte('\n')
	for _, ev := range events {
		line, err := json.Marshal([]interface{}{ev.Time, ev.Code, ev.Data})
		if err != nil {
			t.Fatalf("Failed to marshal cast event: %v", err)
		}
		b.Write(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// CreateCastFixture writes a cast file into dir and returns its path.
func CreateCastFixture(t *testing.T, dir string, width, height int, events []CastEvent) string {
	t.Helper()
	path := filepath.Join(dir, "fixture.cast")
	content := CastFileContent(t, width, height, events)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write cast fixture: %v", err)
	}
	return path
}

// CreateSnapshot builds a snapshot with default colors from screen lines.
// Lines shorter than cols are padded with spaces.
func CreateSnapshot(index int, rows, cols int, lines ...string) *term.Snapshot {
	snap := &term.Snapshot{
		Index: index,
		Rows:  rows,
		Cols:  cols,
		Cells: make([]term.Cell, rows*cols),
	}
	for i := range snap.Cells {
		snap.Cells[i].Rune = ' '
	}
	for row, line := range lines {
		if row >= rows {
			break
		}
		for col, r := range []rune(line) {
			if col >= cols {
				break
			}
			snap.Cells[row*cols+col].Rune = r
		}
	}
	return snap
}
