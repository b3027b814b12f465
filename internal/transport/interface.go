package transport

import "context"

// Sink delivers outbound control messages to the sender of the audio stream.
type Sink interface {
	Send(ctx context.Context, msg *ControlMessage) error
}

type SinkFunc func(ctx context.Context, msg *ControlMessage) error

func (f SinkFunc) Send(ctx context.Context, msg *ControlMessage) error {
	return f(ctx, msg)
}
