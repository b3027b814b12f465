package playback

import "fmt"

// Interrupt stops accepting and rendering audio and discards everything
// still queued. It returns the number of discarded chunks.
func (p *Player) Interrupt() int {
	p.mu.Lock()
	p.state.Interrupted = true
	discarded := p.queue.clear()
	turn := p.turn.Turn
	p.mu.Unlock()

	p.metrics.Interruptions.Inc()
	p.metrics.ChunksDropped.Add(float64(discarded))
	p.metrics.QueueDepth.Set(0)
	p.log.Info("playback interrupted", "turn", turn, "discarded", discarded)
	return discarded
}

func (p *Player) Interrupted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Interrupted
}

// Clear resets the player for a new turn on a fresh render backend and lifts
// a pending interruption.
func (p *Player) Clear() error {
	next, err := p.factory()
	if err != nil {
		return fmt.Errorf("create render backend: %w", err)
	}

	p.mu.Lock()
	old := p.backend
	p.backend = next
	p.state = PlaybackState{}
	discarded := p.queue.clear()
	p.turn.advance()
	turn := p.turn.Turn
	p.mu.Unlock()

	p.metrics.QueueDepth.Set(0)

	if err := old.Close(); err != nil {
		p.log.Warn("failed to close render backend", "error", err)
	}

	p.log.Info("playback cleared", "turn", turn, "discarded", discarded)
	return nil
}
