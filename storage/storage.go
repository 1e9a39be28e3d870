package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrInvalidPath is returned when a document id or chunk key would escape
// the configured root
var ErrInvalidPath = errors.New("invalid storage path")

// Config holds the storage roots
type Config struct {
	// ChunksPath is the root under which chunk files are written
	ChunksPath string `yaml:"chunks_path"`

	// ResourcesPath is the directory source documents are archived into
	ResourcesPath string `yaml:"resources_path"`
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		ChunksPath:    "data/chunks",
		ResourcesPath: "data/resources",
	}
}

// pathElement rejects names that are empty or would leave their directory
func pathElement(kind, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty %s", ErrInvalidPath, kind)
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %s %q", ErrInvalidPath, kind, name)
	}
	return filepath.Clean(name), nil
}
