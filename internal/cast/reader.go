// Package cast reads asciinema v2 cast recordings.
//
// A cast file is JSON lines: a header object on the first line, then one
// JSON array per event: [time, code, data]. Only the header and output
// events matter for rendering; see https://docs.asciinema.org/manual/asciicast/v2/
package cast

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrMalformedSession indicates an unreadable or corrupt cast file. It is
// fatal for the whole conversion; no output is produced.
var ErrMalformedSession = errors.New("malformed cast session")

// Event codes defined by the asciicast v2 format.
const (
	EventOutput = "o"
	EventInput  = "i"
	EventMarker = "m"
	EventResize = "r"
)

// Header is the metadata record on the first line of a cast file.
type Header struct {
	Version   int               `json:"version"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Timestamp int64             `json:"timestamp,omitempty"`
	Duration  float64           `json:"duration,omitempty"`
	Title     string            `json:"title,omitempty"`
	Command   string            `json:"command,omitempty"`
	Env       map[string]string `json:"env,omitempty"`
}

// Event is a single timestamped record from the recording. Data holds the
// raw terminal output bytes for output events, or the event payload verbatim
// for other codes. Events are immutable once produced.
type Event struct {
	Time float64
	Code string
	Data string
}

// Reader lazily yields the events of one cast stream in recorded order.
type Reader struct {
	header   Header
	scanner  *bufio.Scanner
	line     int
	lastTime float64
}

// NewReader parses and validates the header line and prepares to stream
// events. The reader consumes r incrementally; it never buffers the whole
// session.
func NewReader(r io.Reader) (*Reader, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("%w: reading header: %v", ErrMalformedSession, err)
		}
		return nil, fmt.Errorf("%w: missing header line", ErrMalformedSession)
	}

	var header Header
	if err := json.Unmarshal(scanner.Bytes(), &header); err != nil {
		return nil, fmt.Errorf("%w: parsing header: %v", ErrMalformedSession, err)
	}
	if header.Version != 2 {
		return nil, fmt.Errorf("%w: unsupported cast version %d (only version 2 is supported)", ErrMalformedSession, header.Version)
	}
	if header.Width <= 0 || header.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid terminal size %dx%d", ErrMalformedSession, header.Width, header.Height)
	}

	return &Reader{
		header:  header,
		scanner: scanner,
		line:    1,
	}, nil
}

// Open opens a cast file and parses its header.
func Open(path string) (*Reader, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open cast file: %w", err)
	}
	r, err := NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return r, f.Close, nil
}

// Header returns the parsed cast metadata.
func (r *Reader) Header() Header {
	return r.header
}

// Next returns the next event in recorded order. It returns ok=false once
// the stream is exhausted. Structurally invalid records and timestamp
// regressions are malformed-session errors.
func (r *Reader) Next() (Event, bool, error) {
	for r.scanner.Scan() {
		r.line++
		raw := r.scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var rec []json.RawMessage
		if err := json.Unmarshal(raw, &rec); err != nil {
			return Event{}, false, fmt.Errorf("%w: line %d: %v", ErrMalformedSession, r.line, err)
		}
		if len(rec) != 3 {
			return Event{}, false, fmt.Errorf("%w: line %d: event record has %d elements, want 3", ErrMalformedSession, r.line, len(rec))
		}

		var ev Event
		if err := json.Unmarshal(rec[0], &ev.Time); err != nil {
			return Event{}, false, fmt.Errorf("%w: line %d: event time: %v", ErrMalformedSession, r.line, err)
		}
		if err := json.Unmarshal(rec[1], &ev.Code); err != nil {
			return Event{}, false, fmt.Errorf("%w: line %d: event code: %v", ErrMalformedSession, r.line, err)
		}
		if err := json.Unmarshal(rec[2], &ev.Data); err != nil {
			return Event{}, false, fmt.Errorf("%w: line %d: event data: %v", ErrMalformedSession, r.line, err)
		}

		if ev.Time < r.lastTime {
			return Event{}, false, fmt.Errorf("%w: line %d: timestamp %g goes backwards (previous %g)", ErrMalformedSession, r.line, ev.Time, r.lastTime)
		}
		r.lastTime = ev.Time

		return ev, true, nil
	}
	if err := r.scanner.Err(); err != nil {
		return Event{}, false, fmt.Errorf("%w: line %d: %v", ErrMalformedSession, r.line, err)
	}
	return Event{}, false, nil
}

// ReadInfo scans a whole cast file and returns its header, event count and
// duration. Used by the info command.
func ReadInfo(path string) (Header, int, float64, error) {
	r, closeFn, err := Open(path)
	if err != nil {
		return Header{}, 0, 0, err
	}
	defer func() { _ = closeFn() }()

	count := 0
	duration := 0.0
	for {
		ev, ok, err := r.Next()
		if err != nil {
			return Header{}, 0, 0, err
		}
		if !ok {
			break
		}
		count++
		duration = ev.Time
	}
	return r.Header(), count, duration, nil
}
