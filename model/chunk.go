package model

// BBoxFormat documents the coordinate order used in chunk metadata
const BBoxFormat = "X1,Y1,X2,Y2"

// Resource references an externally archived source artifact
type Resource struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

// Chunk is a downstream-consumable grouping of sequenced segments.
// A chunk never aliases the segments it was built from.
type Chunk struct {
	ID             string     `json:"chunk_id"`
	Key            string     `json:"-"`
	PageNo         int        `json:"page_no"`
	SequenceNo     int        `json:"sequence_no"`
	BBox           *BBox      `json:"bbox"`
	Content        string     `json:"-"`
	ChunkingMethod string     `json:"chunking_method"`
	CharCount      int        `json:"char_count"`
	DocName        string     `json:"doc_name"`
	DocumentID     string     `json:"document_id"`
	Resources      []Resource `json:"resources"`
}

// CloneResources returns an independent copy of resources
func CloneResources(resources []Resource) []Resource {
	out := make([]Resource, len(resources))
	copy(out, resources)
	return out
}
