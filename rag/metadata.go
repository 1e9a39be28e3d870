package rag

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/tsawler/layoutseq/model"
)

// MetadataSuffix is appended to a chunk key to form its metadata key
const MetadataSuffix = ".txt_metadata"

// ChunkMetadata is the metadata record stored next to every chunk
type ChunkMetadata struct {
	ChunkID        string           `json:"chunk_id"`
	PageNo         int              `json:"page_no"`
	SequenceNo     int              `json:"sequence_no"`
	BBoxFormat     string           `json:"bbox_format"`
	BBox           *model.BBox      `json:"bbox"`
	DocName        string           `json:"doc_name"`
	DocumentID     string           `json:"document_id"`
	ChunkingMethod string           `json:"chunking_method"`
	CharCount      int              `json:"char_count"`
	Resources      []model.Resource `json:"resources"`
}

// NewChunkMetadata builds the metadata record of c
func NewChunkMetadata(c model.Chunk) ChunkMetadata {
	var bbox *model.BBox
	if c.BBox != nil {
		b := *c.BBox
		bbox = &b
	}
	return ChunkMetadata{
		ChunkID:        c.ID,
		PageNo:         c.PageNo,
		SequenceNo:     c.SequenceNo,
		BBoxFormat:     model.BBoxFormat,
		BBox:           bbox,
		DocName:        c.DocName,
		DocumentID:     c.DocumentID,
		ChunkingMethod: c.ChunkingMethod,
		CharCount:      c.CharCount,
		Resources:      model.CloneResources(c.Resources),
	}
}

// ToJSON converts metadata to JSON
func (m *ChunkMetadata) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ToJSONIndent converts metadata to indented JSON
func (m *ChunkMetadata) ToJSONIndent() ([]byte, error) {
	return json.MarshalIndent(m, "", "    ")
}

// ChunkSet holds the chunks generated for one document, in generation order
type ChunkSet struct {
	DocumentID string
	Chunks     []model.Chunk
}

// Keys returns the chunk keys in generation order
func (cs *ChunkSet) Keys() []string {
	keys := make([]string, len(cs.Chunks))
	for i, c := range cs.Chunks {
		keys[i] = c.Key
	}
	return keys
}

// ChunkMap maps chunk keys to chunk content
func (cs *ChunkSet) ChunkMap() map[string]string {
	m := make(map[string]string, len(cs.Chunks))
	for _, c := range cs.Chunks {
		m[c.Key] = c.Content
	}
	return m
}

// MetadataMap maps "{key}.txt_metadata" to the chunk's metadata
func (cs *ChunkSet) MetadataMap() map[string]ChunkMetadata {
	m := make(map[string]ChunkMetadata, len(cs.Chunks))
	for _, c := range cs.Chunks {
		m[c.Key+MetadataSuffix] = NewChunkMetadata(c)
	}
	return m
}

// Count returns the number of chunks in the set
func (cs *ChunkSet) Count() int {
	return len(cs.Chunks)
}

// Get returns the chunk stored under key
func (cs *ChunkSet) Get(key string) (model.Chunk, bool) {
	for _, c := range cs.Chunks {
		if c.Key == key {
			return c, true
		}
	}
	return model.Chunk{}, false
}

// Filter returns chunks matching a predicate
func (cs *ChunkSet) Filter(predicate func(model.Chunk) bool) *ChunkSet {
	var filtered []model.Chunk
	for _, c := range cs.Chunks {
		if predicate(c) {
			filtered = append(filtered, c)
		}
	}
	return &ChunkSet{DocumentID: cs.DocumentID, Chunks: filtered}
}

// FilterByPage returns chunks on a specific page
func (cs *ChunkSet) FilterByPage(page int) *ChunkSet {
	return cs.Filter(func(c model.Chunk) bool {
		return c.PageNo == page
	})
}

// FilterByMethod returns chunks whose chunking method starts with prefix
func (cs *ChunkSet) FilterByMethod(prefix string) *ChunkSet {
	return cs.Filter(func(c model.Chunk) bool {
		return strings.HasPrefix(c.ChunkingMethod, prefix)
	})
}

// Search returns chunks containing a keyword (case-insensitive)
func (cs *ChunkSet) Search(keyword string) *ChunkSet {
	keyword = strings.ToLower(keyword)
	return cs.Filter(func(c model.Chunk) bool {
		return strings.Contains(strings.ToLower(c.Content), keyword)
	})
}

// Pages returns the ascending page numbers covered by the set
func (cs *ChunkSet) Pages() []int {
	seen := make(map[int]bool)
	var pages []int
	for _, c := range cs.Chunks {
		if !seen[c.PageNo] {
			seen[c.PageNo] = true
			pages = append(pages, c.PageNo)
		}
	}
	sort.Ints(pages)
	return pages
}
