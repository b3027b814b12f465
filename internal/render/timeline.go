package render

import (
	"io"
	"sync"
	"time"

	"github.com/eleven-am/streamplay/internal/shared"
)

// timeline is the pull side of the speaker: the device reads from it
// continuously and receives silence whenever nothing is scheduled, so byte
// position doubles as the output clock.
type timeline struct {
	sampleRate int

	mu       sync.Mutex
	pending  []byte
	consumed int64
	closed   bool
}

func newTimeline(sampleRate int) *timeline {
	return &timeline{sampleRate: sampleRate}
}

func (t *timeline) bytesPerSecond() int64 {
	return int64(t.sampleRate) * shared.BytesPerSample
}

func (t *timeline) offsetFor(at time.Duration) int64 {
	off := int64(at) * t.bytesPerSecond() / int64(time.Second)
	return off &^ 1
}

func (t *timeline) durationFor(bytes int64) time.Duration {
	if bytes <= 0 {
		return 0
	}
	return time.Duration(bytes * int64(time.Second) / t.bytesPerSecond())
}

func (t *timeline) Read(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0, io.EOF
	}

	n := copy(p, t.pending)
	t.pending = t.pending[n:]
	clear(p[n:])
	t.consumed += int64(len(p))
	return len(p), nil
}

// schedule places pcm at the given clock offset, padding any gap with silence.
// Data scheduled before the current write head is appended at the head.
func (t *timeline) schedule(pcm []byte, at time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return shared.ErrClosed
	}

	head := t.consumed + int64(len(t.pending))
	if target := t.offsetFor(at); target > head {
		t.pending = append(t.pending, make([]byte, target-head)...)
	}
	t.pending = append(t.pending, pcm...)
	return nil
}

// position reports the clock, discounting bytes the device has pulled but not
// yet played.
func (t *timeline) position(buffered int) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.durationFor(t.consumed - int64(buffered))
}

func (t *timeline) pendingDuration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.durationFor(int64(len(t.pending)))
}

func (t *timeline) close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.pending = nil
}
