// Package pipeline fans snapshot rasterization out to a bounded worker pool
// and fans completed frames back in, in strict frame-index order, under
// bounded memory.
//
// The stages are: a single feeder goroutine (the sampler's replay path), N
// rendering workers, and a single sequencer that reorders completions and
// drives the encoder sink. An in-flight window semaphore caps how far the
// feeder may run ahead of the sink, which bounds every queue and the reorder
// buffer and gives the whole pipe its backpressure: when rendering or
// encoding lags, the feeder blocks, and transitively so does the terminal
// replay.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/katharostech/cast2gif/internal/raster"
	"github.com/katharostech/cast2gif/internal/term"
)

// windowSlack is the extra in-flight allowance beyond the queues and the
// worker pool.
const windowSlack = 2

// FeedFunc produces snapshots in strictly increasing index order, calling
// submit once per frame. submit blocks for backpressure; it returns the
// context error once the run is cancelled, at which point the feeder must
// stop.
type FeedFunc func(ctx context.Context, submit func(*term.Snapshot) error) error

// Renderer rasterizes one snapshot. Implementations must be safe for
// concurrent calls on different snapshots.
type Renderer interface {
	Render(*term.Snapshot) (*raster.Frame, error)
}

// Sink consumes finished frames. Submit is called with strictly increasing
// frame indices from a single goroutine; Finish flushes the container.
type Sink interface {
	Submit(*raster.Frame) error
	Finish() error
}

// Progress receives stage counters. All methods may be called concurrently.
type Progress interface {
	FrameSampled()
	FrameRendered()
	FrameEncoded()
}

type noopProgress struct{}

func (noopProgress) FrameSampled()  {}
func (noopProgress) FrameRendered() {}
func (noopProgress) FrameEncoded()  {}

// Config sizes the pipeline.
type Config struct {
	// Workers is the rasterization pool size. Must be at least 1.
	Workers int
	// QueueDepth bounds the snapshot queue between feeder and workers.
	// Defaults to Workers.
	QueueDepth int
}

func (c Config) queueDepth() int {
	if c.QueueDepth > 0 {
		return c.QueueDepth
	}
	return c.Workers
}

// windowSize is the in-flight frame cap: one per queue slot on either side
// of the pool, one per worker, plus slack. The reorder buffer can never
// hold more frames than this.
func (c Config) windowSize() int {
	return c.queueDepth() + 2*c.Workers + windowSlack
}

// Run executes one conversion pipeline to completion. Frames reach sink in
// index order 0,1,2,... with no gaps or duplicates regardless of worker
// completion order. The first fatal error from any stage cancels the rest,
// no further snapshots are submitted, and that error is returned; sink.Finish
// is called only after a fully successful run.
func Run(ctx context.Context, cfg Config, feed FeedFunc, renderer Renderer, sink Sink, progress Progress) error {
	if cfg.Workers < 1 {
		return fmt.Errorf("pipeline needs at least 1 worker, got %d", cfg.Workers)
	}
	if progress == nil {
		progress = noopProgress{}
	}

	g, ctx := errgroup.WithContext(ctx)

	jobs := make(chan *term.Snapshot, cfg.queueDepth())
	results := make(chan *raster.Frame, cfg.Workers)
	window := make(chan struct{}, cfg.windowSize())

	// Feeder: replays the session and submits snapshots. The window
	// acquire is the backpressure point.
	g.Go(func() error {
		defer close(jobs)
		return feed(ctx, func(snap *term.Snapshot) error {
			select {
			case window <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}
			select {
			case jobs <- snap:
			case <-ctx.Done():
				return ctx.Err()
			}
			progress.FrameSampled()
			return nil
		})
	})

	// Workers: rasterize independently; completion order is unconstrained.
	// renderFailed is set before a worker returns its error, so the
	// sequencer can tell a lost frame apart from an aborted run.
	var renderFailed atomic.Bool
	var workers sync.WaitGroup
	workers.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		g.Go(func() error {
			defer workers.Done()
			for snap := range jobs {
				frame, err := renderer.Render(snap)
				if err != nil {
					renderFailed.Store(true)
					return err
				}
				select {
				case results <- frame:
				case <-ctx.Done():
					return ctx.Err()
				}
				progress.FrameRendered()
			}
			return nil
		})
	}

	// Closer: results has no more producers once every worker returned.
	// Workers always return (jobs closes or the context fires), so this
	// cannot block forever.
	g.Go(func() error {
		workers.Wait()
		close(results)
		return nil
	})

	// Sequencer: reorders completions and feeds the sink in index order.
	g.Go(func() error {
		next := 0
		pending := make(map[int]*raster.Frame, cfg.windowSize())
		for {
			if frame, ok := pending[next]; ok {
				delete(pending, next)
				if err := sink.Submit(frame); err != nil {
					return fmt.Errorf("failed to encode frame %d: %w", frame.Index, err)
				}
				progress.FrameEncoded()
				next++
				<-window
				continue
			}

			select {
			case frame, ok := <-results:
				if !ok {
					if len(pending) == 0 {
						return nil
					}
					if renderFailed.Load() {
						// A worker aborted; its error is the one to report.
						return ctx.Err()
					}
					return fmt.Errorf("frame %d never completed but %d later frames did", next, len(pending))
				}
				pending[frame.Index] = frame
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	if err := g.Wait(); err != nil {
		return err
	}
	if err := sink.Finish(); err != nil {
		return fmt.Errorf("failed to finalize output: %w", err)
	}
	return nil
}
