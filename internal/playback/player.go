package playback

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/eleven-am/streamplay/internal/archive"
	"github.com/eleven-am/streamplay/internal/audio"
	"github.com/eleven-am/streamplay/internal/metrics"
	"github.com/eleven-am/streamplay/internal/render"
	"github.com/eleven-am/streamplay/internal/transport"
)

const (
	DefaultTaskID    = "task-1"
	DefaultLookahead = 20 * time.Millisecond
)

type Config struct {
	Backend   render.Factory
	Archiver  archive.Archiver
	History   *archive.History
	Metrics   *metrics.Metrics
	TaskID    string
	Lookahead time.Duration
}

// CaptureSource delivers locally captured microphone samples.
type CaptureSource interface {
	Samples() <-chan []int16
}

// Player owns the chunk queue, the turn lifecycle and the render backend.
// One mutex guards all of them so that interruption and rendering never
// interleave.
type Player struct {
	factory   render.Factory
	archiver  archive.Archiver
	history   *archive.History
	metrics   *metrics.Metrics
	lookahead time.Duration
	log       *slog.Logger

	mu       sync.Mutex
	backend  render.Backend
	queue    chunkQueue
	turn     TurnContext
	state    PlaybackState
	received [][]byte
	recorded [][]byte
	closed   bool

	notify   chan struct{}
	progress *progressReporter
}

type Status struct {
	Turn         int
	Played       int
	State        TurnState
	Cursor       time.Duration
	QueueLength  int
	Playing      bool
	Interrupted  bool
	SinkAttached bool
}

func New(cfg Config, log *slog.Logger) (*Player, error) {
	if log == nil {
		log = slog.Default()
	}
	if cfg.Backend == nil {
		return nil, errors.New("render backend factory is required")
	}
	if cfg.Archiver == nil {
		return nil, errors.New("archiver is required")
	}
	if cfg.History == nil {
		cfg.History = archive.NewHistory()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewForTest()
	}
	if cfg.TaskID == "" {
		cfg.TaskID = DefaultTaskID
	}
	if cfg.Lookahead <= 0 {
		cfg.Lookahead = DefaultLookahead
	}

	backend, err := cfg.Backend()
	if err != nil {
		return nil, fmt.Errorf("create render backend: %w", err)
	}

	log = log.With("component", "playback")

	return &Player{
		factory:   cfg.Backend,
		archiver:  cfg.Archiver,
		history:   cfg.History,
		metrics:   cfg.Metrics,
		lookahead: cfg.Lookahead,
		log:       log,
		backend:   backend,
		notify:    make(chan struct{}, 1),
		progress:  newProgressReporter(cfg.TaskID, cfg.Lookahead, cfg.Metrics, log),
	}, nil
}

// Enqueue appends a chunk to the playback queue. Chunks arriving while the
// player is interrupted are dropped and false is returned.
func (p *Player) Enqueue(data []byte) bool {
	chunk := Chunk(bytes.Clone(data))

	p.mu.Lock()
	if p.state.Interrupted || p.closed {
		p.mu.Unlock()
		p.metrics.ChunksDropped.Inc()
		p.log.Debug("chunk dropped while interrupted", "bytes", len(chunk))
		return false
	}
	if !chunk.IsEndOfTurn() {
		p.received = append(p.received, chunk)
	}
	p.queue.push(chunk)
	depth := p.queue.len()
	p.mu.Unlock()

	p.metrics.ChunksEnqueued.Inc()
	p.metrics.QueueDepth.Set(float64(depth))
	p.wake()
	return true
}

func (p *Player) wake() {
	select {
	case p.notify <- struct{}{}:
	default:
	}
}

// RecordPCM appends little-endian 16-bit microphone audio to the current
// turn's recording.
func (p *Player) RecordPCM(pcm []byte) {
	if len(pcm) == 0 {
		return
	}
	data := bytes.Clone(pcm)

	p.mu.Lock()
	p.recorded = append(p.recorded, data)
	p.mu.Unlock()

	p.metrics.CapturedBytes.Add(float64(len(data)))
}

func (p *Player) RecordSamples(samples []int16) {
	p.RecordPCM(audio.Int16ToPCMBytes(samples))
}

// AttachCapture pumps src into the recording until its channel closes or ctx
// is done.
func (p *Player) AttachCapture(ctx context.Context, src CaptureSource) {
	samples := src.Samples()
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-samples:
			if !ok {
				return
			}
			p.RecordSamples(s)
		}
	}
}

// SetSink routes control messages to sink until the returned func is called
// or another sink replaces it.
func (p *Player) SetSink(sink transport.Sink) (detach func()) {
	return p.progress.attach(sink)
}

func (p *Player) History() *archive.History {
	return p.history
}

func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Status{
		Turn:         p.turn.Turn,
		Played:       p.turn.Played,
		State:        p.turn.State,
		Cursor:       p.turn.Cursor,
		QueueLength:  p.queue.len(),
		Playing:      p.state.Playing,
		Interrupted:  p.state.Interrupted,
		SinkAttached: p.progress.attached(),
	}
}

// Close releases the render backend. Run must have returned first.
func (p *Player) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.queue.clear()
	backend := p.backend
	p.mu.Unlock()

	p.progress.close()
	return backend.Close()
}
