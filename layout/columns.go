package layout

import (
	"sort"

	"github.com/tsawler/layoutseq/internal/logger"
	"github.com/tsawler/layoutseq/model"
)

// Column represents a detected vertical column region on a page
type Column struct {
	// Page the column belongs to (1-based)
	Page int

	// Index of the column (0-based, left to right)
	Index int

	// BBox is the envelope of all members
	BBox model.BBox

	// Members in sweep order (sorted by x1, then y1)
	Members []model.Segment
}

// ColumnLayout represents the detected column structure of a page
type ColumnLayout struct {
	// Page number (1-based)
	Page int

	// Detected columns (sorted left to right)
	Columns []Column
}

// ColumnCount returns the number of detected columns
func (l *ColumnLayout) ColumnCount() int {
	if l == nil {
		return 0
	}
	return len(l.Columns)
}

// IsSingleColumn reports whether the page should be read as a single column.
// A page with no columns at all counts as single-column.
func (l *ColumnLayout) IsSingleColumn() bool {
	return l.ColumnCount() <= 1
}

// ColumnConfig holds configuration for column detection
type ColumnConfig struct {
	// Exclude lists content types that never take part in the column sweep.
	// Running headers and footers usually span the page and would otherwise
	// fuse every column into one.
	Exclude []model.ContentType `yaml:"exclude" validate:"dive,oneof=line header footer table image_text column other"`
}

// DefaultColumnConfig returns the default configuration
func DefaultColumnConfig() ColumnConfig {
	return ColumnConfig{}
}

// ColumnDetector groups a page's segments into vertical column regions
type ColumnDetector struct {
	config ColumnConfig
	log    logger.Logger
}

// NewColumnDetector creates a new column detector with default configuration
func NewColumnDetector() *ColumnDetector {
	return NewColumnDetectorWithConfig(DefaultColumnConfig(), nil)
}

// NewColumnDetectorWithConfig creates a column detector with custom configuration
func NewColumnDetectorWithConfig(config ColumnConfig, log logger.Logger) *ColumnDetector {
	return &ColumnDetector{
		config: config,
		log:    logger.OrNop(log),
	}
}

// Detect sweeps the segments of a single page into columns.
//
// Segments are sorted by (x1, y1). The current column keeps growing while the
// next segment starts at or left of the running maximum x2; otherwise the
// column is closed and a new one starts. Segments without geometry are
// ignored. An empty page yields a layout with zero columns.
func (d *ColumnDetector) Detect(segments []model.Segment) *ColumnLayout {
	candidates := d.candidates(segments)
	layout := &ColumnLayout{}
	if len(candidates) == 0 {
		if len(segments) > 0 {
			layout.Page = segments[0].Page
		}
		return layout
	}
	layout.Page = candidates[0].Page

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i].BBox, candidates[j].BBox
		if a.X1 != b.X1 {
			return a.X1 < b.X1
		}
		return a.Y1 < b.Y1
	})

	current := []model.Segment{candidates[0]}
	maxX2 := candidates[0].BBox.X2
	for _, seg := range candidates[1:] {
		if seg.BBox.X1 <= maxX2 {
			current = append(current, seg)
			if seg.BBox.X2 > maxX2 {
				maxX2 = seg.BBox.X2
			}
			continue
		}
		layout.Columns = append(layout.Columns, newColumn(layout.Page, len(layout.Columns), current))
		current = []model.Segment{seg}
		maxX2 = seg.BBox.X2
	}
	layout.Columns = append(layout.Columns, newColumn(layout.Page, len(layout.Columns), current))

	d.log.Debug("columns detected", "page", layout.Page, "columns", len(layout.Columns), "segments", len(candidates))
	return layout
}

// DetectAll groups segments by page and detects columns on each page
func (d *ColumnDetector) DetectAll(segments []model.Segment) map[int]*ColumnLayout {
	pages, byPage := model.GroupByPage(segments)
	result := make(map[int]*ColumnLayout, len(pages))
	for _, p := range pages {
		layout := d.Detect(byPage[p])
		layout.Page = p
		for i := range layout.Columns {
			layout.Columns[i].Page = p
		}
		result[p] = layout
	}
	return result
}

func (d *ColumnDetector) candidates(segments []model.Segment) []model.Segment {
	out := make([]model.Segment, 0, len(segments))
	for _, seg := range segments {
		if !seg.HasBBox() || d.excluded(seg.ContentType) {
			continue
		}
		out = append(out, seg)
	}
	return out
}

func (d *ColumnDetector) excluded(ct model.ContentType) bool {
	for _, ex := range d.config.Exclude {
		if ex == ct {
			return true
		}
	}
	return false
}

func newColumn(page, index int, members []model.Segment) Column {
	boxes := make([]model.BBox, len(members))
	for i, m := range members {
		boxes[i] = m.BBox
	}
	env, _ := model.Envelope(boxes...)
	return Column{
		Page:    page,
		Index:   index,
		BBox:    env,
		Members: members,
	}
}
