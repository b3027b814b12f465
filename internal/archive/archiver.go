package archive

import (
	"context"
	"fmt"
	"strings"

	"github.com/eleven-am/streamplay/internal/audio"
	"github.com/eleven-am/streamplay/internal/shared"
)

// Archiver turns the raw chunks accumulated during a turn into a shareable
// reference.
type Archiver interface {
	Archive(ctx context.Context, chunks [][]byte) (Reference, error)
}

type WAVArchiver struct {
	store      BlobStore
	baseURL    string
	sampleRate int
}

func NewWAVArchiver(store BlobStore, baseURL string) *WAVArchiver {
	return &WAVArchiver{
		store:      store,
		baseURL:    strings.TrimRight(baseURL, "/"),
		sampleRate: shared.SampleRate,
	}
}

func (a *WAVArchiver) Archive(ctx context.Context, chunks [][]byte) (Reference, error) {
	wav, err := audio.EncodeWAV(audio.Concatenate(chunks), a.sampleRate)
	if err != nil {
		return Reference{}, err
	}

	id := shared.NewID("arc_")
	if err := a.store.Put(ctx, id, wav); err != nil {
		return Reference{}, fmt.Errorf("store archive blob: %w", err)
	}

	return Reference{
		ID:     id,
		URL:    a.URLFor(id),
		Format: FormatWAV,
		Size:   len(wav),
	}, nil
}

func (a *WAVArchiver) URLFor(id string) string {
	return a.baseURL + "/v1/archives/" + id + ".wav"
}
