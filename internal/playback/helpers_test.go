package playback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/eleven-am/streamplay/internal/archive"
	"github.com/eleven-am/streamplay/internal/metrics"
	"github.com/eleven-am/streamplay/internal/render"
	"github.com/eleven-am/streamplay/internal/transport"
)

var endOfTurn = []byte{0, 0, 0}

func pcmChunk(samples int) []byte {
	b := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		b[2*i] = byte(i)
		b[2*i+1] = 0x10
	}
	return b
}

type fakeBackend struct {
	mu        sync.Mutex
	now       time.Duration
	scheduled []render.ScheduledBuffer
	err       error
	closed    bool
}

func (b *fakeBackend) CurrentTime() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.now
}

func (b *fakeBackend) Schedule(buf *render.Buffer, at time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.scheduled = append(b.scheduled, render.ScheduledBuffer{
		At:       at,
		Duration: buf.Duration(),
		Frames:   buf.Frames(),
	})
	return nil
}

func (b *fakeBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *fakeBackend) setNow(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = d
}

func (b *fakeBackend) setErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}

func (b *fakeBackend) calls() []render.ScheduledBuffer {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]render.ScheduledBuffer, len(b.scheduled))
	copy(out, b.scheduled)
	return out
}

func (b *fakeBackend) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

type fakeFactory struct {
	mu       sync.Mutex
	backends []*fakeBackend
	err      error
}

func (f *fakeFactory) New() (render.Backend, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	b := &fakeBackend{}
	f.backends = append(f.backends, b)
	return b, nil
}

func (f *fakeFactory) current() *fakeBackend {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.backends[len(f.backends)-1]
}

func (f *fakeFactory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.backends)
}

type recordingSink struct {
	mu    sync.Mutex
	msgs  []*transport.ControlMessage
	times []time.Time
	err   error
}

func (s *recordingSink) Send(_ context.Context, msg *transport.ControlMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.msgs = append(s.msgs, msg)
	s.times = append(s.times, time.Now())
	return nil
}

func (s *recordingSink) sentAt() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Time, len(s.times))
	copy(out, s.times)
	return out
}

func (s *recordingSink) messages() []*transport.ControlMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*transport.ControlMessage, len(s.msgs))
	copy(out, s.msgs)
	return out
}

func (s *recordingSink) actions() []transport.Action {
	var out []transport.Action
	for _, m := range s.messages() {
		out = append(out, m.Header.Action)
	}
	return out
}

type archiveCall struct {
	chunks [][]byte
}

type recordingArchiver struct {
	mu    sync.Mutex
	calls []archiveCall
	err   error
}

func (a *recordingArchiver) Archive(_ context.Context, chunks [][]byte) (archive.Reference, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return archive.Reference{}, a.err
	}
	a.calls = append(a.calls, archiveCall{chunks: chunks})
	id := fmt.Sprintf("arc_%d", len(a.calls))
	return archive.Reference{
		ID:     id,
		URL:    "http://localhost:8080/v1/archives/" + id + ".wav",
		Format: archive.FormatWAV,
	}, nil
}

func (a *recordingArchiver) recorded() []archiveCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]archiveCall, len(a.calls))
	copy(out, a.calls)
	return out
}

type testPlayer struct {
	*Player
	factory  *fakeFactory
	archiver *recordingArchiver
	sink     *recordingSink
	metrics  *metrics.Metrics
}

func newTestPlayer(t *testing.T) *testPlayer {
	t.Helper()
	return newTestPlayerWithLookahead(t, 5*time.Millisecond)
}

func newTestPlayerWithLookahead(t *testing.T, lookahead time.Duration) *testPlayer {
	t.Helper()

	factory := &fakeFactory{}
	archiver := &recordingArchiver{}
	sink := &recordingSink{}
	m := metrics.NewForTest()

	p, err := New(Config{
		Backend:   factory.New,
		Archiver:  archiver,
		History:   archive.NewHistory(),
		Metrics:   m,
		Lookahead: lookahead,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	p.SetSink(sink)

	return &testPlayer{
		Player:   p,
		factory:  factory,
		archiver: archiver,
		sink:     sink,
		metrics:  m,
	}
}

// feed runs every queued chunk through the scheduler synchronously.
func (tp *testPlayer) feed(t *testing.T, chunks ...[]byte) {
	t.Helper()
	ctx := context.Background()
	for _, c := range chunks {
		tp.Enqueue(c)
	}
	for {
		tp.mu.Lock()
		chunk, ok := tp.queue.pop()
		tp.mu.Unlock()
		if !ok {
			return
		}
		tp.process(ctx, chunk)
	}
}

func eventually(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v: %s", timeout, msg)
}

var errBoom = errors.New("boom")
