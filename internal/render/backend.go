package render

import (
	"time"

	"github.com/eleven-am/streamplay/internal/shared"
)

// Backend is an audio output with its own monotonically advancing clock.
// Buffers are scheduled against that clock and play without further calls.
type Backend interface {
	CurrentTime() time.Duration
	Schedule(buf *Buffer, at time.Duration) error
	Close() error
}

type Factory func() (Backend, error)

// Buffer is a mono block of normalized samples at a fixed rate.
type Buffer struct {
	samples    []float32
	sampleRate int
}

func NewBuffer(samples []float32) *Buffer {
	return &Buffer{
		samples:    samples,
		sampleRate: shared.SampleRate,
	}
}

func (b *Buffer) Samples() []float32 {
	return b.samples
}

func (b *Buffer) Frames() int {
	return len(b.samples)
}

func (b *Buffer) SampleRate() int {
	return b.sampleRate
}

func (b *Buffer) Duration() time.Duration {
	return FramesToDuration(len(b.samples), b.sampleRate)
}

func FramesToDuration(frames, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}
