package merge

import (
	"strings"

	"github.com/tsawler/layoutseq/internal/logger"
	"github.com/tsawler/layoutseq/model"
)

// Consolidated is the outcome of splitting technique streams
type Consolidated struct {
	// Text holds every segment from streams tagged "text", in stream order
	Text []model.Segment

	// Groups holds one list per remaining stream, ready for the merger
	Groups [][]model.Segment

	// Skipped counts segments from derived column_* streams
	Skipped int
}

// Total returns the number of segments represented, skipped ones included
func (c Consolidated) Total() int {
	n := len(c.Text) + c.Skipped
	for _, g := range c.Groups {
		n += len(g)
	}
	return n
}

// Consolidator routes per-technique streams towards the merger
type Consolidator struct {
	log logger.Logger
}

// NewConsolidator creates a consolidator that does not log
func NewConsolidator() *Consolidator {
	return NewConsolidatorWithLogger(nil)
}

// NewConsolidatorWithLogger creates a consolidator reporting to log
func NewConsolidatorWithLogger(log logger.Logger) *Consolidator {
	return &Consolidator{log: logger.OrNop(log)}
}

// Consolidate flattens "text" streams, skips "column_" streams and keeps
// every other stream as one group. Segments are tagged with the technique of
// the stream that carried them when they have none of their own.
func (c *Consolidator) Consolidate(streams []model.Stream) Consolidated {
	var out Consolidated
	for _, st := range streams {
		switch {
		case st.Technique == model.TechniqueText:
			out.Text = append(out.Text, tagged(st)...)
		case strings.HasPrefix(st.Technique, model.TechniqueColumnPrefix):
			out.Skipped += len(st.Segments)
		default:
			if len(st.Segments) == 0 {
				// An empty stream still counts as an input list
				out.Groups = append(out.Groups, nil)
				continue
			}
			out.Groups = append(out.Groups, tagged(st))
		}
	}
	c.log.Debug("streams consolidated", "streams", len(streams), "text", len(out.Text), "groups", len(out.Groups), "skipped", out.Skipped)
	return out
}

func tagged(st model.Stream) []model.Segment {
	segs := model.CloneSegments(st.Segments)
	for i := range segs {
		if segs[i].Technique == "" {
			segs[i].Technique = st.Technique
		}
	}
	return segs
}
