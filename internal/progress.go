package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

// RenderProgress tracks the three pipeline stages of a conversion run:
// frames sampled from the replay, frames rasterized by the workers, and
// frames delivered to the encoder. Counter updates are safe from any
// goroutine.
type RenderProgress struct {
	total    int64
	sampled  atomic.Int64
	rendered atomic.Int64
	encoded  atomic.Int64

	out      io.Writer
	interval time.Duration

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewRenderProgress creates a progress tracker for an expected number of
// frames. Pass total <= 0 when the frame count is not known up front.
func NewRenderProgress(total int) *RenderProgress {
	return &RenderProgress{
		total:    int64(total),
		out:      os.Stderr,
		interval: 100 * time.Millisecond,
	}
}

// FrameSampled records one snapshot handed to the render queue.
func (p *RenderProgress) FrameSampled() { p.sampled.Add(1) }

// FrameRendered records one rasterized frame.
func (p *RenderProgress) FrameRendered() { p.rendered.Add(1) }

// FrameEncoded records one frame delivered to the encoder sink.
func (p *RenderProgress) FrameEncoded() { p.encoded.Add(1) }

// Counts returns the current stage counters.
func (p *RenderProgress) Counts() (sampled, rendered, encoded int64) {
	return p.sampled.Load(), p.rendered.Load(), p.encoded.Load()
}

// Start begins redrawing a status line until the context is cancelled or
// Finish is called. Without a terminal on stderr it does nothing; the
// counters still work.
func (p *RenderProgress) Start(ctx context.Context) {
	if !isTerminal(os.Stderr) {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	p.started = true

	go func() {
		defer close(p.done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.draw()
			}
		}
	}()
}

// Finish stops the status line and prints a final result marker.
func (p *RenderProgress) Finish(err error) {
	p.mu.Lock()
	if p.started {
		p.cancel()
		<-p.done
		p.started = false
		fmt.Fprint(p.out, "\r\033[K")
	}
	p.mu.Unlock()

	_, _, encoded := p.Counts()
	if err != nil {
		fmt.Fprintf(p.out, "%s rendering failed after %d frame(s)\n", errorStyle.Render("✗"), encoded)
		return
	}
	if isTerminal(os.Stderr) {
		fmt.Fprintf(p.out, "%s encoded %d frame(s)\n", successStyle.Render("✓"), encoded)
	}
}

func (p *RenderProgress) draw() {
	sampled, rendered, encoded := p.Counts()
	var line string
	if p.total > 0 {
		line = fmt.Sprintf("rendering %d/%d, encoding %d/%d", rendered, p.total, encoded, p.total)
	} else {
		line = fmt.Sprintf("sampled %d, rendered %d, encoded %d", sampled, rendered, encoded)
	}
	fmt.Fprintf(p.out, "\r\033[K%s %s", progressStyle.Render("⠿"), line)
}

// isTerminal checks if the writer is a terminal
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}
