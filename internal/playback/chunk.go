package playback

import "github.com/eleven-am/streamplay/internal/transport"

// Chunk is one binary frame received from the stream sender.
type Chunk []byte

func (c Chunk) IsEndOfTurn() bool {
	return len(c) == transport.EndOfTurnSize
}

// chunkQueue is an unbounded FIFO. Callers hold Player.mu.
type chunkQueue struct {
	items []Chunk
}

func (q *chunkQueue) push(c Chunk) {
	q.items = append(q.items, c)
}

func (q *chunkQueue) pop() (Chunk, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	c := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return c, true
}

func (q *chunkQueue) clear() int {
	n := len(q.items)
	q.items = nil
	return n
}

func (q *chunkQueue) len() int {
	return len(q.items)
}
