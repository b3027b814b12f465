package archive

import (
	"strings"
	"time"

	"github.com/eleven-am/streamplay/internal/audio"
)

type Status string

const (
	StatusPlayed Status = "played"
)

const FormatWAV = audio.WAVMimeType

type Reference struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Format string `json:"format"`
	Size   int    `json:"size"`
}

type Entry struct {
	ID        string    `json:"id"`
	Turn      int       `json:"turn"`
	Received  Reference `json:"received"`
	Recorded  Reference `json:"recorded"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func BlobKey(id string) string {
	return "archive:" + id
}

// TrimExtension maps "<id>.wav" path segments back to blob ids.
func TrimExtension(id string) string {
	return strings.TrimSuffix(id, ".wav")
}
