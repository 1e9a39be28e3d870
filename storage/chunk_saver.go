package storage

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/tsawler/layoutseq/internal/logger"
	"github.com/tsawler/layoutseq/rag"
)

// Saved lists the files written for one document
type Saved struct {
	ChunkFiles    []string
	MetadataFiles []string
}

// ChunkSaver writes chunk content and metadata files
type ChunkSaver struct {
	fs     afero.Fs
	config Config
	log    logger.Logger
}

// NewChunkSaver creates a saver writing to fs
func NewChunkSaver(fs afero.Fs, config Config, log logger.Logger) *ChunkSaver {
	return &ChunkSaver{
		fs:     fs,
		config: config,
		log:    logger.OrNop(log),
	}
}

// Dir returns the directory chunks of documentID are written into
func (s *ChunkSaver) Dir(documentID string) string {
	return filepath.Join(s.config.ChunksPath, documentID, "chunks")
}

// Save writes every chunk of set. An empty set writes nothing and is not an
// error. The first write failure aborts the save.
func (s *ChunkSaver) Save(set *rag.ChunkSet) (Saved, error) {
	var saved Saved
	if set == nil || set.Count() == 0 {
		s.log.Warn("no chunks to save")
		return saved, nil
	}

	docID, err := pathElement("document id", set.DocumentID)
	if err != nil {
		return saved, err
	}
	dir := s.Dir(docID)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return saved, fmt.Errorf("creating %s: %w", dir, err)
	}

	for _, c := range set.Chunks {
		key, err := pathElement("chunk key", c.Key)
		if err != nil {
			return saved, err
		}

		textPath := filepath.Join(dir, key+".txt")
		if err := afero.WriteFile(s.fs, textPath, []byte(c.Content), 0o644); err != nil {
			return saved, fmt.Errorf("writing chunk %s: %w", textPath, err)
		}
		saved.ChunkFiles = append(saved.ChunkFiles, textPath)

		meta := rag.NewChunkMetadata(c)
		data, err := meta.ToJSONIndent()
		if err != nil {
			return saved, fmt.Errorf("encoding metadata of %s: %w", key, err)
		}
		metaPath := filepath.Join(dir, key+rag.MetadataSuffix+".json")
		if err := afero.WriteFile(s.fs, metaPath, data, 0o644); err != nil {
			return saved, fmt.Errorf("writing metadata %s: %w", metaPath, err)
		}
		saved.MetadataFiles = append(saved.MetadataFiles, metaPath)

		s.log.Debug("chunk written", "path", textPath)
	}

	s.log.Info("chunks saved", "document_id", set.DocumentID, "count", len(saved.ChunkFiles))
	return saved, nil
}
