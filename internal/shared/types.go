package shared

import (
	"strings"

	"github.com/google/uuid"
)

const (
	SampleRate     = 16000
	BytesPerSample = 2
)

func NewID(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}
