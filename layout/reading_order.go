package layout

import (
	"fmt"
	"sort"

	"github.com/tsawler/layoutseq/internal/logger"
	"github.com/tsawler/layoutseq/model"
)

// Page layouts
const (
	LayoutSingleColumn = "single-column"
	LayoutMultiColumn  = "multi-column"
)

// Sequencing patterns
const (
	// PatternSequenceOrder ranks segments top to bottom, then left to right
	PatternSequenceOrder = "sequence-order"

	// PatternZigZag reads column 1 fully top to bottom, then column 2, and
	// so on. The traversal is column-major despite the name; consumers rely
	// on this ordering so the name is kept as is.
	PatternZigZag = "zig-zag"

	// PatternLeftRight ranks by (y1, x1) across the whole page, ignoring
	// column boundaries
	PatternLeftRight = "left-right"
)

// unassignedColumn is the column index of a segment no column claims.
// It sorts before the first column.
const unassignedColumn = -1

// PatternConfig selects the sequencing pattern per page layout
type PatternConfig struct {
	SingleColumn string `yaml:"single-column" validate:"omitempty,oneof=sequence-order left-right"`
	MultiColumn  string `yaml:"multi-column" validate:"omitempty,oneof=zig-zag left-right sequence-order"`
}

// SequencerConfig holds configuration for reading-order assignment
type SequencerConfig struct {
	Pattern PatternConfig `yaml:"pattern"`

	// SubColumnThreshold is the largest x1 step, in pixels, between
	// consecutive segments of the same sub-column.
	// Default: 50
	SubColumnThreshold float64 `yaml:"sub_column_threshold" validate:"gte=0"`
}

// DefaultSequencerConfig returns sensible default configuration
func DefaultSequencerConfig() SequencerConfig {
	return SequencerConfig{
		Pattern: PatternConfig{
			SingleColumn: PatternSequenceOrder,
			MultiColumn:  PatternZigZag,
		},
		SubColumnThreshold: 50,
	}
}

// Sequencer assigns per-page reading-order numbers to merged segments
type Sequencer struct {
	config SequencerConfig
	newID  model.IDFunc
	log    logger.Logger
}

// NewSequencer creates a sequencer with default configuration
func NewSequencer() *Sequencer {
	return NewSequencerWithConfig(DefaultSequencerConfig(), nil)
}

// NewSequencerWithConfig creates a sequencer with custom configuration
func NewSequencerWithConfig(config SequencerConfig, log logger.Logger) *Sequencer {
	return &Sequencer{
		config: config,
		newID:  model.NewID,
		log:    logger.OrNop(log),
	}
}

// WithIDFunc replaces the segment id generator
func (s *Sequencer) WithIDFunc(fn model.IDFunc) *Sequencer {
	if fn != nil {
		s.newID = fn
	}
	return s
}

// Sequence returns a copy of segments ordered by (page, sequence), where
// sequence restarts at 1 on every page and each segment carries a fresh id.
//
// A page is multi-column when its layout holds more than one column. Pages
// with segments that lack geometry fall back to sequence-order, which keeps
// their input order.
func (s *Sequencer) Sequence(segments []model.Segment, layouts map[int]*ColumnLayout) ([]model.Segment, error) {
	pages, byPage := model.GroupByPage(segments)
	out := make([]model.Segment, 0, len(segments))

	for _, page := range pages {
		pageSegs := model.CloneSegments(byPage[page])
		layout := layouts[page]

		pageLayout := LayoutSingleColumn
		pattern := s.patternOr(s.config.Pattern.SingleColumn, PatternSequenceOrder)
		if !layout.IsSingleColumn() {
			pageLayout = LayoutMultiColumn
			pattern = s.patternOr(s.config.Pattern.MultiColumn, PatternZigZag)
		}
		if pattern != PatternSequenceOrder && missingGeometry(pageSegs) {
			s.log.Warn("segments without bbox, falling back to sequence order", "page", page, "pattern", pattern)
			pattern = PatternSequenceOrder
		}

		var ordered []model.Segment
		switch pattern {
		case PatternSequenceOrder, PatternLeftRight:
			ordered = sortTopLeft(pageSegs)
		case PatternZigZag:
			ordered = s.zigZag(pageSegs, layout.Columns)
		default:
			return nil, &model.StageError{
				Stage: "segment_sequencer",
				Page:  page,
				Err: &model.ConfigurationError{
					Key:    "segment_sequencer.pattern." + pageLayout,
					Value:  pattern,
					Reason: "unknown sequencing pattern",
				},
			}
		}

		for i := range ordered {
			ordered[i].Sequence = i + 1
			ordered[i].ID = s.newID(model.SegmentIDPrefix)
		}
		s.log.Debug("page sequenced", "page", page, "layout", pageLayout, "pattern", pattern, "segments", len(ordered))
		out = append(out, ordered...)
	}

	return out, nil
}

func (s *Sequencer) patternOr(p, fallback string) string {
	if p == "" {
		return fallback
	}
	return p
}

func missingGeometry(segs []model.Segment) bool {
	for _, seg := range segs {
		if !seg.HasBBox() {
			return true
		}
	}
	return false
}

// sortTopLeft stable-sorts by (y1, x1)
func sortTopLeft(segs []model.Segment) []model.Segment {
	sort.SliceStable(segs, func(i, j int) bool {
		a, b := segs[i].BBox, segs[j].BBox
		if a.Y1 != b.Y1 {
			return a.Y1 < b.Y1
		}
		return a.X1 < b.X1
	})
	return segs
}

// columnOf returns the index of the first column whose x-range contains x1
func columnOf(seg model.Segment, columns []Column) int {
	for _, col := range columns {
		if col.BBox.X1 <= seg.BBox.X1 && seg.BBox.X1 < col.BBox.X2 {
			return col.Index
		}
	}
	return unassignedColumn
}

func (s *Sequencer) zigZag(segs []model.Segment, columns []Column) []model.Segment {
	// Column assignment lives only in this side table
	byColumn := make(map[int][]model.Segment)
	for _, seg := range segs {
		idx := columnOf(seg, columns)
		byColumn[idx] = append(byColumn[idx], seg)
	}

	keys := make([]int, 0, len(byColumn))
	for k := range byColumn {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	out := make([]model.Segment, 0, len(segs))
	for _, k := range keys {
		for _, sub := range s.subColumns(byColumn[k]) {
			out = append(out, sub...)
		}
	}
	return out
}

// subColumns buckets a column's members into x-aligned runs. A new run
// starts when x1 jumps by more than the threshold from the previous member.
// Each run is sorted by y1 and runs are returned left to right.
func (s *Sequencer) subColumns(members []model.Segment) [][]model.Segment {
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].BBox.X1 < members[j].BBox.X1
	})

	var runs [][]model.Segment
	var current []model.Segment
	for i, seg := range members {
		if i > 0 && seg.BBox.X1-members[i-1].BBox.X1 > s.config.SubColumnThreshold {
			runs = append(runs, current)
			current = nil
		}
		current = append(current, seg)
	}
	if len(current) > 0 {
		runs = append(runs, current)
	}

	for _, run := range runs {
		sort.SliceStable(run, func(i, j int) bool {
			return run[i].BBox.Y1 < run[j].BBox.Y1
		})
	}
	return runs
}

// String implements fmt.Stringer for debugging output
func (c Column) String() string {
	return fmt.Sprintf("column %d page %d %s (%d members)", c.Index, c.Page, c.BBox, len(c.Members))
}
