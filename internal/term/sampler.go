package term

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/katharostech/cast2gif/internal"
	"github.com/katharostech/cast2gif/internal/cast"
)

// tickEpsilon absorbs float rounding when comparing event timestamps
// against tick boundaries, relative to the sampling interval.
const tickEpsilon = 1e-6

// EventSource yields recorded events in timestamp order.
type EventSource interface {
	Next() (cast.Event, bool, error)
}

// Sampler walks event time alongside a fixed sampling interval and emits one
// screen snapshot per tick. Frame i represents the state visible during its
// display window [i*dt, (i+1)*dt): it reflects every event with a timestamp
// strictly before the window's end. An event exactly on a tick boundary
// belongs to the frame starting at that boundary.
type Sampler struct {
	engine   *Engine
	interval float64
}

// NewSampler creates a sampler over an engine. The interval must be
// positive; that is validated at configuration time.
func NewSampler(engine *Engine, interval float64) *Sampler {
	return &Sampler{engine: engine, interval: interval}
}

// Run replays all events from src and calls emit once per sample tick with
// an increasing frame index, starting at 0. For a session of duration D it
// emits exactly floor(D/dt)+1 snapshots; a session with no events emits
// none. emit may block; this is the pipeline's backpressure path. An error
// from src or emit aborts the run.
func (s *Sampler) Run(src EventSource, emit func(*Snapshot) error) error {
	index := 0
	sawEvent := false
	lastTime := 0.0

	for {
		ev, ok, err := src.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		// Close every frame whose display window ends at or before this
		// event: their state cannot change anymore.
		for ev.Time >= s.boundary(index+1)-tickEpsilon*s.interval {
			if err := s.emitSnapshot(index, emit); err != nil {
				return err
			}
			index++
		}

		s.apply(ev)
		sawEvent = true
		lastTime = ev.Time
	}

	if !sawEvent {
		return nil
	}

	// The remaining owed ticks, through floor(D/dt), all show the final
	// screen state.
	last := int((lastTime + tickEpsilon*s.interval) / s.interval)
	for index <= last {
		if err := s.emitSnapshot(index, emit); err != nil {
			return err
		}
		index++
	}
	return nil
}

func (s *Sampler) boundary(index int) float64 {
	return float64(index) * s.interval
}

func (s *Sampler) emitSnapshot(index int, emit func(*Snapshot) error) error {
	snap := s.engine.Snapshot()
	snap.Index = index
	snap.Time = s.boundary(index)
	return emit(snap)
}

// apply feeds one event into the engine. Output is replayed, resizes are
// applied, everything else (input, markers) has no effect on screen state.
func (s *Sampler) apply(ev cast.Event) {
	switch ev.Code {
	case cast.EventOutput:
		s.engine.Advance([]byte(ev.Data))
	case cast.EventResize:
		if cols, rows, err := parseResize(ev.Data); err != nil {
			internal.LogDebug("Ignoring bad resize event at %g: %v", ev.Time, err)
		} else {
			s.engine.Resize(rows, cols)
		}
	default:
		internal.LogDebug("Skipping %q event at %g", ev.Code, ev.Time)
	}
}

// parseResize parses asciicast resize payloads of the form "COLSxROWS".
func parseResize(data string) (cols, rows int, err error) {
	parts := strings.SplitN(data, "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid resize payload %q", data)
	}
	cols, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid resize width %q", parts[0])
	}
	rows, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid resize height %q", parts[1])
	}
	if cols <= 0 || rows <= 0 {
		return 0, 0, fmt.Errorf("invalid resize size %dx%d", cols, rows)
	}
	return cols, rows, nil
}

// FrameCount returns the number of frames a session of the given duration
// produces at the given interval: floor(D/dt)+1, or 0 for an empty session.
func FrameCount(duration, interval float64, events int) int {
	if events == 0 {
		return 0
	}
	return int((duration+tickEpsilon*interval)/interval) + 1
}
