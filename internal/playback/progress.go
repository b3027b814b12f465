package playback

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/eleven-am/streamplay/internal/archive"
	"github.com/eleven-am/streamplay/internal/metrics"
	"github.com/eleven-am/streamplay/internal/shared"
	"github.com/eleven-am/streamplay/internal/transport"
)

const sendTimeout = 5 * time.Second

type delayedMessage struct {
	due time.Time
	msg *transport.ControlMessage
}

// progressReporter delivers control messages from a single goroutine so
// playing-progress reaches the sink in the order chunks were rendered.
type progressReporter struct {
	taskID  string
	delay   time.Duration
	metrics *metrics.Metrics
	log     *slog.Logger

	mu   sync.Mutex
	sink transport.Sink
	gen  uint64

	queueMu sync.Mutex
	queued  []delayedMessage
	stopped bool
	wake    chan struct{}
	done    chan struct{}
	once    sync.Once

	pending sync.WaitGroup
}

func newProgressReporter(taskID string, delay time.Duration, m *metrics.Metrics, log *slog.Logger) *progressReporter {
	r := &progressReporter{
		taskID:  taskID,
		delay:   delay,
		metrics: m,
		log:     log,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

// attach replaces the current sink. The returned func detaches it unless a
// newer sink has been attached since.
func (r *progressReporter) attach(sink transport.Sink) func() {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.sink = sink
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.gen == gen {
			r.sink = nil
		}
	}
}

func (r *progressReporter) attached() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sink != nil
}

// played emits playing-progress once the chunk has had time to reach the
// output.
func (r *progressReporter) played(turn, played int) {
	msg := transport.NewAction(transport.ActionPlayingProgress, r.taskID, map[string]any{
		"turn":   turn,
		"played": played,
	}, nil)

	r.queueMu.Lock()
	if r.stopped {
		r.queueMu.Unlock()
		return
	}
	r.pending.Add(1)
	r.queued = append(r.queued, delayedMessage{due: time.Now().Add(r.delay), msg: msg})
	r.queueMu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *progressReporter) run() {
	for {
		r.queueMu.Lock()
		if len(r.queued) == 0 {
			r.queueMu.Unlock()
			select {
			case <-r.wake:
				continue
			case <-r.done:
				return
			}
		}
		next := r.queued[0]
		r.queued[0] = delayedMessage{}
		r.queued = r.queued[1:]
		r.queueMu.Unlock()

		if wait := time.Until(next.due); wait > 0 {
			time.Sleep(wait)
		}
		r.send(next.msg)
		r.pending.Done()
	}
}

func (r *progressReporter) finished(entry archive.Entry) {
	r.send(transport.NewAction(transport.ActionFinishPlaying, r.taskID, map[string]any{
		"turn":           entry.Turn,
		"received_audio": entry.Received.URL,
		"recorded_audio": entry.Recorded.URL,
		"status":         string(entry.Status),
	}, map[string]any{
		"format":      "wav",
		"sample_rate": shared.SampleRate,
	}))
}

// flush blocks until every scheduled progress message has been sent.
func (r *progressReporter) flush() {
	r.pending.Wait()
}

// close delivers what is already queued, then stops the sender.
func (r *progressReporter) close() {
	r.once.Do(func() {
		r.queueMu.Lock()
		r.stopped = true
		r.queueMu.Unlock()

		r.pending.Wait()
		close(r.done)
	})
}

func (r *progressReporter) send(msg *transport.ControlMessage) {
	action := string(msg.Header.Action)

	r.mu.Lock()
	sink := r.sink
	r.mu.Unlock()

	if sink == nil {
		r.metrics.ControlMessages.WithLabelValues(action, "no_sink").Inc()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := sink.Send(ctx, msg); err != nil {
		r.metrics.ControlMessages.WithLabelValues(action, "error").Inc()
		r.log.Debug("control message not delivered", "action", action, "error", err)
		return
	}
	r.metrics.ControlMessages.WithLabelValues(action, "sent").Inc()
}
