package encode

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/katharostech/cast2gif/internal/raster"
)

// PNGDir writes each frame as a numbered PNG file into a directory. Unlike
// the GIF sink it is fully streaming: a frame is on disk as soon as Submit
// returns.
type PNGDir struct {
	dir  string
	next int
}

// NewPNGDir creates a PNG sequence sink.
func NewPNGDir(dir string) *PNGDir {
	return &PNGDir{dir: dir}
}

// Submit writes one frame as frame-NNNNN.png.
func (p *PNGDir) Submit(frame *raster.Frame) error {
	if frame.Index != p.next {
		return fmt.Errorf("frame %d submitted out of order, want %d", frame.Index, p.next)
	}
	if p.next == 0 {
		if err := os.MkdirAll(p.dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	path := filepath.Join(p.dir, fmt.Sprintf("frame-%05d.png", frame.Index))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, frame.Image); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	p.next++
	return nil
}

// Finish is a no-op; every frame is already on disk.
func (p *PNGDir) Finish() error {
	return nil
}
