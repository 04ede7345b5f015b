package internal

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestRenderProgress_Counts(t *testing.T) {
	p := NewRenderProgress(10)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				p.FrameSampled()
				p.FrameRendered()
				if i%5 == 0 {
					p.FrameEncoded()
				}
			}
		}()
	}
	wg.Wait()

	sampled, rendered, encoded := p.Counts()
	if sampled != 100 || rendered != 100 || encoded != 20 {
		t.Errorf("Counts() = %d, %d, %d, want 100, 100, 20", sampled, rendered, encoded)
	}
}

func TestRenderProgress_FinishReportsFailure(t *testing.T) {
	p := NewRenderProgress(5)
	buf := new(bytes.Buffer)
	p.out = buf

	p.FrameEncoded()
	p.FrameEncoded()
	p.Finish(errors.New("disk full"))

	out := buf.String()
	if !strings.Contains(out, "failed") || !strings.Contains(out, "2") {
		t.Errorf("failure line = %q, want mention of failure after 2 frames", out)
	}
}

func TestRenderProgress_StartWithoutTerminal(t *testing.T) {
	p := NewRenderProgress(5)
	buf := new(bytes.Buffer)
	p.out = buf

	// Under the test runner stderr is not a terminal; Start must be a
	// no-op and Finish must not hang waiting for a drawer goroutine.
	p.Start(context.Background())
	p.Finish(nil)

	if strings.Contains(buf.String(), "⠿") {
		t.Errorf("progress drew a status line without a terminal: %q", buf.String())
	}
}
