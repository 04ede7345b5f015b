// Package encode writes rendered frames into an output container.
//
// Sinks consume frames strictly in index order from a single goroutine;
// the pipeline's sequencer guarantees that contract.
package encode

import (
	"fmt"
	"io"

	"github.com/katharostech/cast2gif/internal/raster"
)

// Sink is a streaming frame consumer. Submit must be called with strictly
// increasing frame indices starting at 0; Finish flushes and closes the
// container.
type Sink interface {
	Submit(*raster.Frame) error
	Finish() error
}

// Options carries the sink-specific targets.
type Options struct {
	// Writer receives the container bytes (gif).
	Writer io.Writer
	// Dir receives one image file per frame (png).
	Dir string
	// DelayCS is the per-frame delay in centiseconds (gif).
	DelayCS int
}

// New creates a sink for the given output format.
func New(format string, opts Options) (Sink, error) {
	switch format {
	case "gif":
		if opts.Writer == nil {
			return nil, fmt.Errorf("gif output needs a writer")
		}
		return NewGIF(opts.Writer, opts.DelayCS), nil
	case "png":
		if opts.Dir == "" {
			return nil, fmt.Errorf("png output needs a directory")
		}
		return NewPNGDir(opts.Dir), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (supported: gif, png)", format)
	}
}
