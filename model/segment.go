package model

import (
	"encoding/json"
	"sort"
)

// ContentType identifies what a segment holds
type ContentType string

const (
	ContentLine      ContentType = "line"
	ContentHeader    ContentType = "header"
	ContentFooter    ContentType = "footer"
	ContentTable     ContentType = "table"
	ContentImageText ContentType = "image_text"
	ContentColumn    ContentType = "column"
	ContentOther     ContentType = "other"
)

// Valid reports whether ct is one of the known content types
func (ct ContentType) Valid() bool {
	switch ct {
	case ContentLine, ContentHeader, ContentFooter, ContentTable,
		ContentImageText, ContentColumn, ContentOther:
		return true
	}
	return false
}

// Technique tags that carry meaning across stages
const (
	// TechniqueText marks segments from plain-text sources. They have no
	// geometry and bypass classification, column detection and merging.
	TechniqueText = "text"

	// TechniqueColumnPrefix marks derived column streams
	TechniqueColumnPrefix = "column_"
)

// Unsequenced is the Sequence value before the sequencer runs
const Unsequenced = -1

// Segment is a geometrically bounded unit of extracted content.
// Segments are values: stages copy them and return new slices.
type Segment struct {
	ID          string      `json:"segment_id,omitempty"`
	Page        int         `json:"page"`
	BBox        BBox        `json:"content_bbox"`
	ContentType ContentType `json:"content_type"`
	Content     string      `json:"content"`
	Sequence    int         `json:"sequence"`
	Technique   string      `json:"technique,omitempty"`
	DocName     string      `json:"doc_name,omitempty"`
	DocumentID  string      `json:"document_id,omitempty"`
}

// NewSegment creates an unsequenced segment
func NewSegment(page int, bbox BBox, contentType ContentType, content string) Segment {
	return Segment{
		Page:        page,
		BBox:        bbox,
		ContentType: contentType,
		Content:     content,
		Sequence:    Unsequenced,
	}
}

// UnmarshalJSON decodes a segment. A missing "sequence" key leaves the
// segment unsequenced.
func (s *Segment) UnmarshalJSON(data []byte) error {
	type plain Segment
	p := plain{Sequence: Unsequenced}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Segment(p)
	return nil
}

// HasBBox reports whether the segment carries geometry
func (s Segment) HasBBox() bool {
	return !s.BBox.IsZero()
}

// Stream is one named per-technique list of segments
type Stream struct {
	Technique string    `json:"technique"`
	Segments  []Segment `json:"segments"`
}

// PageSize holds page dimensions in pixels
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CloneSegments returns a copy of the slice
func CloneSegments(segments []Segment) []Segment {
	if segments == nil {
		return nil
	}
	out := make([]Segment, len(segments))
	copy(out, segments)
	return out
}

// GroupByPage splits segments by page, preserving order within each page.
// The returned page list is ascending.
func GroupByPage(segments []Segment) ([]int, map[int][]Segment) {
	byPage := make(map[int][]Segment)
	for _, s := range segments {
		byPage[s.Page] = append(byPage[s.Page], s)
	}
	pages := make([]int, 0, len(byPage))
	for p := range byPage {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages, byPage
}

// Pages returns the ascending set of page numbers present in segments
func Pages(segments []Segment) []int {
	pages, _ := GroupByPage(segments)
	return pages
}
