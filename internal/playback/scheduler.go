package playback

import (
	"context"
	"errors"
	"time"

	"github.com/eleven-am/streamplay/internal/audio"
	"github.com/eleven-am/streamplay/internal/render"
)

var errInterrupted = errors.New("playback interrupted")

type rendered struct {
	turn   int
	played int
	at     time.Duration
}

// Run drains the queue until ctx is cancelled. A failing chunk is logged and
// skipped; it never stops the loop.
func (p *Player) Run(ctx context.Context) error {
	p.log.Info("playback loop started", "lookahead", p.lookahead)
	defer p.log.Info("playback loop stopped")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		chunk, ok := p.next(ctx)
		if !ok {
			return ctx.Err()
		}
		p.process(ctx, chunk)
	}
}

func (p *Player) next(ctx context.Context) (Chunk, bool) {
	for {
		p.mu.Lock()
		chunk, ok := p.queue.pop()
		depth := p.queue.len()
		p.mu.Unlock()

		if ok {
			p.metrics.QueueDepth.Set(float64(depth))
			return chunk, true
		}

		select {
		case <-ctx.Done():
			return nil, false
		case <-p.notify:
		}
	}
}

func (p *Player) process(ctx context.Context, chunk Chunk) {
	if chunk.IsEndOfTurn() {
		if _, err := p.CompleteTurn(ctx); err != nil {
			p.log.Error("failed to complete turn", "error", err)
		}
		return
	}

	samples := audio.DecodePCM16(chunk)
	if len(samples) == 0 {
		p.metrics.ChunksSkipped.Inc()
		p.log.Debug("skipping empty chunk", "bytes", len(chunk))
		return
	}

	buf := render.NewBuffer(samples)
	r, err := p.render(buf)
	if err != nil {
		p.metrics.ChunksSkipped.Inc()
		if errors.Is(err, errInterrupted) {
			p.log.Debug("skipping chunk after interrupt", "frames", buf.Frames())
		} else {
			p.log.Warn("failed to schedule chunk", "error", err, "frames", buf.Frames())
		}
		return
	}

	if wait := buf.Duration() - p.lookahead; wait > 0 {
		if !sleep(ctx, wait) {
			return
		}
	}

	// A Clear during the wait moves the counter on, but the chunk was still
	// rendered in r.turn and is reported there.
	p.mu.Lock()
	played := r.played
	if p.turn.Turn == r.turn {
		p.turn.Played++
		played = p.turn.Played
	}
	p.mu.Unlock()

	p.progress.played(r.turn, played)
}

// render schedules buf at the turn cursor. The interrupt flag is checked
// under the same lock so nothing is scheduled once Interrupt returns.
func (p *Player) render(buf *render.Buffer) (rendered, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.Interrupted {
		return rendered{}, errInterrupted
	}

	now := p.backend.CurrentTime()
	switch {
	case p.turn.State == TurnIdle:
		p.turn.anchor(now)
	case p.turn.Cursor < now:
		p.metrics.Underruns.Inc()
		p.log.Debug("playback underrun", "behind", now-p.turn.Cursor, "turn", p.turn.Turn)
		p.turn.Cursor = now
	}

	at := p.turn.Cursor
	if err := p.backend.Schedule(buf, at); err != nil {
		return rendered{}, err
	}

	p.turn.Cursor += buf.Duration()
	p.state.Playing = true
	p.metrics.ChunksRendered.Inc()
	p.metrics.ScheduleLead.Observe((at - now).Seconds())

	return rendered{turn: p.turn.Turn, played: p.turn.Played + 1, at: at}, nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
