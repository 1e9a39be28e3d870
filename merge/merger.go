package merge

import (
	"sort"
	"strings"

	"github.com/tsawler/layoutseq/internal/logger"
	"github.com/tsawler/layoutseq/model"
)

// DropReason explains why the merger discarded a segment
type DropReason string

const (
	// DropEmptyContent marks segments whose content is blank
	DropEmptyContent DropReason = "empty_content"

	// DropFullPageArtifact marks segments at least MaxSegmentHeight tall
	DropFullPageArtifact DropReason = "full_page_artifact"

	// DropDuplicate marks candidates that overlap an accepted segment
	DropDuplicate DropReason = "duplicate"

	// DropSuperseded marks accepted segments replaced by a larger candidate
	DropSuperseded DropReason = "superseded"
)

// Dropped records a discarded segment
type Dropped struct {
	Segment model.Segment
	Reason  DropReason
}

// Result holds the output of a merge
type Result struct {
	// Segments is the final list, after the optional adjacency pass
	Segments []model.Segment

	// Accepted is the output of the insertion pass
	Accepted []model.Segment

	// Dropped lists every segment the insertion pass discarded
	Dropped []Dropped

	// NoSegments is set when every input list was empty
	NoSegments bool
}

// AdjacencyConfig controls the optional pass fusing adjacent segments
type AdjacencyConfig struct {
	Enabled bool `yaml:"enabled"`

	// VerticalGap is the largest vertical distance, in pixels, between
	// horizontally intersecting segments of one group
	VerticalGap float64 `yaml:"vertical_adjacent_segments_max_gap_in_pixel" validate:"gte=0"`

	// HorizontalGap is the largest horizontal distance, in pixels, between
	// vertically intersecting segments of one group
	HorizontalGap float64 `yaml:"horizontal_adjacent_segments_max_gap_in_pixel" validate:"gte=0"`

	// IsolateContentTypes are never fused with a neighbour
	IsolateContentTypes []model.ContentType `yaml:"isolate_content_types" validate:"dive,oneof=line header footer table image_text column other"`
}

// Config holds configuration for the segment merger
type Config struct {
	// PreferLargerSegments lets a candidate replace the accepted segments it
	// overlaps when its area is strictly larger than each of theirs
	PreferLargerSegments bool `yaml:"prefer_larger_segments"`

	// MaxSegmentHeight is the height, in pixels, at which a segment is
	// treated as a full-page false positive.
	// Default: 1500
	MaxSegmentHeight float64 `yaml:"max_segment_height" validate:"gte=0"`

	Merge AdjacencyConfig `yaml:"merge"`
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		PreferLargerSegments: true,
		MaxSegmentHeight:     1500,
		Merge: AdjacencyConfig{
			Enabled:       false,
			VerticalGap:   10,
			HorizontalGap: 10,
		},
	}
}

// Merger fuses parallel segment lists into one de-duplicated list
type Merger struct {
	config Config
	log    logger.Logger
}

// NewMerger creates a merger with default configuration
func NewMerger() *Merger {
	return NewMergerWithConfig(DefaultConfig(), nil)
}

// NewMergerWithConfig creates a merger with custom configuration
func NewMergerWithConfig(config Config, log logger.Logger) *Merger {
	return &Merger{
		config: config,
		log:    logger.OrNop(log),
	}
}

// Merge fuses the given lists. All lists empty is not an error: the result
// has NoSegments set. When exactly one list has segments it is accepted as
// is; the adjacency pass still applies.
func (m *Merger) Merge(lists ...[]model.Segment) Result {
	var nonEmpty [][]model.Segment
	total := 0
	for _, l := range lists {
		if len(l) > 0 {
			nonEmpty = append(nonEmpty, l)
			total += len(l)
		}
	}

	var res Result
	switch len(nonEmpty) {
	case 0:
		m.log.Debug("nothing to merge")
		return Result{NoSegments: true}
	case 1:
		res.Accepted = model.CloneSegments(nonEmpty[0])
	default:
		res.Accepted, res.Dropped = m.insert(nonEmpty)
	}

	res.Segments = res.Accepted
	if m.config.Merge.Enabled {
		res.Segments = m.groupAdjacent(res.Accepted)
	}

	m.log.Debug("segments merged",
		"lists", len(nonEmpty),
		"input", total,
		"accepted", len(res.Accepted),
		"dropped", len(res.Dropped),
		"output", len(res.Segments))
	return res
}

// insert runs the insertion pass over the concatenation of lists
func (m *Merger) insert(lists [][]model.Segment) ([]model.Segment, []Dropped) {
	var all []model.Segment
	for _, l := range lists {
		all = append(all, l...)
	}
	// Page only: detection order within a page is kept
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Page < all[j].Page
	})

	var dropped []Dropped
	accepted := make(map[int][]model.Segment)
	var pages []int

	for _, cand := range all {
		if strings.TrimSpace(cand.Content) == "" {
			dropped = append(dropped, Dropped{Segment: cand, Reason: DropEmptyContent})
			continue
		}
		if m.config.MaxSegmentHeight > 0 && cand.BBox.Height() >= m.config.MaxSegmentHeight {
			dropped = append(dropped, Dropped{Segment: cand, Reason: DropFullPageArtifact})
			continue
		}

		if _, seen := accepted[cand.Page]; !seen {
			pages = append(pages, cand.Page)
		}
		current := accepted[cand.Page]

		var overlapping []int
		for i, acc := range current {
			if cand.BBox.Overlaps(acc.BBox) {
				overlapping = append(overlapping, i)
			}
		}

		switch {
		case len(overlapping) == 0:
			accepted[cand.Page] = append(current, cand)
		case m.config.PreferLargerSegments && largerThanAll(cand, current, overlapping):
			kept := make([]model.Segment, 0, len(current)-len(overlapping)+1)
			next := 0
			for i, acc := range current {
				if next < len(overlapping) && overlapping[next] == i {
					dropped = append(dropped, Dropped{Segment: acc, Reason: DropSuperseded})
					next++
					continue
				}
				kept = append(kept, acc)
			}
			accepted[cand.Page] = append(kept, cand)
		default:
			dropped = append(dropped, Dropped{Segment: cand, Reason: DropDuplicate})
		}
	}

	var out []model.Segment
	for _, p := range pages {
		out = append(out, accepted[p]...)
	}
	return out, dropped
}

// largerThanAll reports whether cand's area strictly exceeds that of every
// overlapping accepted segment. Degenerate candidates never win.
func largerThanAll(cand model.Segment, current []model.Segment, overlapping []int) bool {
	if cand.BBox.IsDegenerate() {
		return false
	}
	area := cand.BBox.Area()
	for _, i := range overlapping {
		if area <= current[i].BBox.Area() {
			return false
		}
	}
	return true
}
