package model

import (
	"strings"

	"github.com/google/uuid"
)

// IDFunc generates an opaque identifier with the given prefix
type IDFunc func(prefix string) string

// Prefixes for generated identifiers
const (
	SegmentIDPrefix = "S"
	ChunkIDPrefix   = "C"
)

// NewID returns prefix + "-" + the first five hex characters of a random UUID
func NewID(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "-" + id[:5]
}
