package render

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/eleven-am/streamplay/internal/audio"
	"github.com/eleven-am/streamplay/internal/shared"
)

const speakerBufferSize = 40 * time.Millisecond

// oto allows a single context per process.
var device struct {
	once sync.Once
	ctx  *oto.Context
	err  error
}

func openDevice(sampleRate int) (*oto.Context, error) {
	device.once.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   speakerBufferSize,
		})
		if err != nil {
			device.err = fmt.Errorf("open audio device: %w", err)
			return
		}
		<-ready
		device.ctx = ctx
	})
	return device.ctx, device.err
}

// Speaker renders to the system audio device through oto.
type Speaker struct {
	timeline *timeline
	player   *oto.Player
	log      *slog.Logger

	closeOnce sync.Once
}

func NewSpeaker(log *slog.Logger) (*Speaker, error) {
	if log == nil {
		log = slog.Default()
	}

	ctx, err := openDevice(shared.SampleRate)
	if err != nil {
		return nil, err
	}

	tl := newTimeline(shared.SampleRate)
	player := ctx.NewPlayer(tl)
	player.Play()

	log.Debug("speaker backend opened", "sample_rate", shared.SampleRate)
	return &Speaker{
		timeline: tl,
		player:   player,
		log:      log,
	}, nil
}

func NewSpeakerFactory(log *slog.Logger) Factory {
	return func() (Backend, error) {
		return NewSpeaker(log)
	}
}

func (s *Speaker) CurrentTime() time.Duration {
	return s.timeline.position(s.player.BufferedSize())
}

func (s *Speaker) Schedule(buf *Buffer, at time.Duration) error {
	pcm := audio.Int16ToPCMBytes(audio.Float32ToInt16(buf.Samples()))
	return s.timeline.schedule(pcm, at)
}

func (s *Speaker) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.timeline.close()
		err = s.player.Close()
		s.log.Debug("speaker backend closed")
	})
	return err
}
