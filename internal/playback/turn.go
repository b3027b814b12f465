package playback

import (
	"context"
	"fmt"
	"time"

	"github.com/eleven-am/streamplay/internal/archive"
	"github.com/eleven-am/streamplay/internal/shared"
)

type TurnState int

const (
	TurnIdle TurnState = iota
	TurnPlaying
)

func (s TurnState) String() string {
	switch s {
	case TurnPlaying:
		return "playing"
	default:
		return "idle"
	}
}

// TurnContext tracks the turn currently being rendered. Cursor and BeganAt
// are positions on the render backend clock.
type TurnContext struct {
	Turn    int
	Played  int
	Cursor  time.Duration
	BeganAt time.Duration
	State   TurnState
}

func (t *TurnContext) anchor(now time.Duration) {
	t.Cursor = now
	t.BeganAt = now
	t.State = TurnPlaying
}

func (t *TurnContext) advance() {
	t.Turn++
	t.Played = 0
	t.Cursor = 0
	t.BeganAt = 0
	t.State = TurnIdle
}

type PlaybackState struct {
	Playing     bool
	Interrupted bool
}

// CompleteTurn closes the current turn: both accumulators are archived
// (recorded first), a history entry is appended and finish-playing is sent.
// The turn counter moves on even when archiving fails.
func (p *Player) CompleteTurn(ctx context.Context) (archive.Entry, error) {
	p.progress.flush()

	p.mu.Lock()
	turn := p.turn.Turn
	received, recorded := p.received, p.recorded
	p.received, p.recorded = nil, nil
	p.turn.advance()
	p.state.Playing = false
	p.mu.Unlock()

	log := p.log.With("turn", turn)

	recordedRef, err := p.archiver.Archive(ctx, recorded)
	if err != nil {
		p.metrics.ArchiveFailures.Inc()
		return archive.Entry{}, fmt.Errorf("archive recorded audio for turn %d: %w", turn, err)
	}

	receivedRef, err := p.archiver.Archive(ctx, received)
	if err != nil {
		p.metrics.ArchiveFailures.Inc()
		return archive.Entry{}, fmt.Errorf("archive received audio for turn %d: %w", turn, err)
	}

	entry := archive.Entry{
		ID:        shared.NewID("turn_"),
		Turn:      turn,
		Received:  receivedRef,
		Recorded:  recordedRef,
		Status:    archive.StatusPlayed,
		CreatedAt: time.Now(),
	}
	p.history.Append(entry)
	p.metrics.TurnsCompleted.Inc()

	log.Info("turn completed",
		"received_chunks", len(received),
		"recorded_chunks", len(recorded),
		"received_audio", receivedRef.URL,
		"recorded_audio", recordedRef.URL)

	p.progress.finished(entry)
	return entry, nil
}
