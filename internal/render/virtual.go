package render

import (
	"sync"
	"time"

	"github.com/eleven-am/streamplay/internal/shared"
)

const maxVirtualHistory = 256

type ScheduledBuffer struct {
	At       time.Duration
	Duration time.Duration
	Frames   int
}

// Virtual is a headless backend: its clock is wall time since creation and
// scheduled buffers are only recorded.
type Virtual struct {
	now   func() time.Time
	start time.Time

	mu        sync.Mutex
	scheduled []ScheduledBuffer
	end       time.Duration
	total     int
	closed    bool
}

func NewVirtual() *Virtual {
	return NewVirtualWithClock(time.Now)
}

func NewVirtualWithClock(now func() time.Time) *Virtual {
	return &Virtual{
		now:   now,
		start: now(),
	}
}

func NewVirtualFactory() Factory {
	return func() (Backend, error) {
		return NewVirtual(), nil
	}
}

func (v *Virtual) CurrentTime() time.Duration {
	return v.now().Sub(v.start)
}

func (v *Virtual) Schedule(buf *Buffer, at time.Duration) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return shared.ErrClosed
	}

	entry := ScheduledBuffer{
		At:       at,
		Duration: buf.Duration(),
		Frames:   buf.Frames(),
	}
	v.scheduled = append(v.scheduled, entry)
	if len(v.scheduled) > maxVirtualHistory {
		v.scheduled = v.scheduled[len(v.scheduled)-maxVirtualHistory:]
	}
	if end := at + entry.Duration; end > v.end {
		v.end = end
	}
	v.total++
	return nil
}

func (v *Virtual) Scheduled() []ScheduledBuffer {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]ScheduledBuffer, len(v.scheduled))
	copy(out, v.scheduled)
	return out
}

func (v *Virtual) scheduledEnd() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.end
}

func (v *Virtual) totalScheduled() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.total
}

func (v *Virtual) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	return nil
}
