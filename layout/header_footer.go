package layout

import (
	"fmt"

	"github.com/tsawler/layoutseq/internal/logger"
	"github.com/tsawler/layoutseq/model"
)

// Zone detection policies
const (
	// PolicyManual tags segments that fall inside a configured band of the
	// page, expressed as percentages of page height
	PolicyManual = "manually_detect"

	// PolicyAuto tags isolated segments in the top or bottom tenth of the page
	PolicyAuto = "auto_detect"
)

const (
	// autoZoneRatio is the fraction of page height searched at the top and bottom
	autoZoneRatio = 0.1

	// autoGapThreshold is the vertical window, in pixels, used to decide
	// whether a candidate stands apart from body text
	autoGapThreshold = 75.0
)

// ZoneRule configures one of the header or footer zones
type ZoneRule struct {
	Enabled bool `yaml:"enabled"`

	// Name is the detection policy: manually_detect or auto_detect
	Name string `yaml:"name" validate:"omitempty,oneof=manually_detect auto_detect"`

	// MinHeightPercent and MaxHeightPercent bound the band used by
	// manually_detect. Headers are tested against y2, footers against y1.
	MinHeightPercent float64 `yaml:"min_height_percent" validate:"gte=0,lte=100"`
	MaxHeightPercent float64 `yaml:"max_height_percent" validate:"gte=0,lte=100,gtefield=MinHeightPercent"`
}

// HeaderFooterConfig holds configuration for header/footer classification
type HeaderFooterConfig struct {
	Header ZoneRule `yaml:"header"`
	Footer ZoneRule `yaml:"footer"`
}

// DefaultHeaderFooterConfig returns a configuration with both zones disabled
func DefaultHeaderFooterConfig() HeaderFooterConfig {
	return HeaderFooterConfig{
		Header: ZoneRule{Name: PolicyManual, MinHeightPercent: 0, MaxHeightPercent: 10},
		Footer: ZoneRule{Name: PolicyManual, MinHeightPercent: 90, MaxHeightPercent: 100},
	}
}

// Policy returns the single policy shared by the enabled zones, or "" when
// neither zone is enabled. Enabled zones must agree on the policy.
func (c HeaderFooterConfig) Policy() (string, error) {
	switch {
	case c.Header.Enabled && c.Footer.Enabled:
		if c.Header.Name != c.Footer.Name {
			return "", &model.ConfigurationError{
				Key:    "segment_classifier",
				Value:  c.Header.Name + "/" + c.Footer.Name,
				Reason: "header and footer must use the same detection policy",
			}
		}
		return c.Header.Name, nil
	case c.Header.Enabled:
		return c.Header.Name, nil
	case c.Footer.Enabled:
		return c.Footer.Name, nil
	}
	return "", nil
}

// HeaderFooterClassifier tags segments that sit in the header or footer zone
// of an image-derived page
type HeaderFooterClassifier struct {
	config HeaderFooterConfig
	log    logger.Logger
}

// NewHeaderFooterClassifier creates a classifier with default configuration
func NewHeaderFooterClassifier() *HeaderFooterClassifier {
	return NewHeaderFooterClassifierWithConfig(DefaultHeaderFooterConfig(), nil)
}

// NewHeaderFooterClassifierWithConfig creates a classifier with custom configuration
func NewHeaderFooterClassifierWithConfig(config HeaderFooterConfig, log logger.Logger) *HeaderFooterClassifier {
	return &HeaderFooterClassifier{
		config: config,
		log:    logger.OrNop(log),
	}
}

// Classify returns a copy of segments with ContentType set to header or
// footer where the configured policy matches. Segments without geometry,
// segments tagged with the "text" technique and pages without a known size
// are returned unchanged.
func (c *HeaderFooterClassifier) Classify(segments []model.Segment, pageSizes map[int]model.PageSize) ([]model.Segment, error) {
	policy, err := c.config.Policy()
	if err != nil {
		return nil, err
	}

	out := model.CloneSegments(segments)
	if policy == "" || len(out) == 0 {
		return out, nil
	}

	// Work on indices so the output keeps input order
	byPage := make(map[int][]int)
	for i, seg := range out {
		if !seg.HasBBox() || seg.Technique == model.TechniqueText {
			continue
		}
		byPage[seg.Page] = append(byPage[seg.Page], i)
	}

	tagged := 0
	for page, idx := range byPage {
		size, ok := pageSizes[page]
		if !ok || size.Height <= 0 {
			c.log.Debug("page size unknown, skipping classification", "page", page)
			continue
		}
		switch policy {
		case PolicyManual:
			tagged += c.manual(out, idx, size.Height)
		case PolicyAuto:
			tagged += c.auto(out, idx, size.Height)
		default:
			return nil, &model.ConfigurationError{
				Key:    "segment_classifier.name",
				Value:  policy,
				Reason: fmt.Sprintf("expected %s or %s", PolicyManual, PolicyAuto),
			}
		}
	}

	c.log.Debug("segments classified", "policy", policy, "tagged", tagged)
	return out, nil
}

func (c *HeaderFooterClassifier) manual(segs []model.Segment, idx []int, height float64) int {
	tagged := 0
	for _, i := range idx {
		b := segs[i].BBox
		if c.config.Header.Enabled && inBand(b.Y2/height*100, c.config.Header) {
			segs[i].ContentType = model.ContentHeader
			tagged++
			continue
		}
		if c.config.Footer.Enabled && inBand(b.Y1/height*100, c.config.Footer) {
			segs[i].ContentType = model.ContentFooter
			tagged++
		}
	}
	return tagged
}

func inBand(percent float64, rule ZoneRule) bool {
	return percent >= rule.MinHeightPercent && percent <= rule.MaxHeightPercent
}

func (c *HeaderFooterClassifier) auto(segs []model.Segment, idx []int, height float64) int {
	top := height * autoZoneRatio
	bottom := height * (1 - autoZoneRatio)

	var headers, footers []int
	for _, i := range idx {
		b := segs[i].BBox
		if b.Y1 <= top {
			headers = append(headers, i)
		} else if b.Y2 >= bottom {
			footers = append(footers, i)
		}
	}

	// Decide on the original geometry before any tag is written
	var hits []int
	var types []model.ContentType
	if c.config.Header.Enabled {
		for _, i := range headers {
			if isolated(segs, idx, segs[i].BBox) {
				hits = append(hits, i)
				types = append(types, model.ContentHeader)
			}
		}
	}
	if c.config.Footer.Enabled {
		for _, i := range footers {
			if isolated(segs, idx, segs[i].BBox) {
				hits = append(hits, i)
				types = append(types, model.ContentFooter)
			}
		}
	}
	for k, i := range hits {
		segs[i].ContentType = types[k]
	}
	return len(hits)
}

// isolated reports whether b has neighbours within the gap window on at most
// one side, no more than two of them, and with gaps of similar size
func isolated(segs []model.Segment, idx []int, b model.BBox) bool {
	var above, below []float64
	for _, i := range idx {
		o := segs[i].BBox
		if gap := b.Y1 - o.Y2; gap > 0 && gap <= autoGapThreshold {
			above = append(above, gap)
		}
		if gap := o.Y1 - b.Y2; gap > 0 && gap <= autoGapThreshold {
			below = append(below, gap)
		}
	}

	oneSided := (len(above) <= 2 && len(below) == 0) || (len(below) <= 2 && len(above) == 0)
	if !oneSided {
		return false
	}
	return spread(above) <= autoGapThreshold && spread(below) <= autoGapThreshold
}

func spread(gaps []float64) float64 {
	if len(gaps) < 2 {
		return 0
	}
	lo, hi := gaps[0], gaps[0]
	for _, g := range gaps[1:] {
		lo = min(lo, g)
		hi = max(hi, g)
	}
	return hi - lo
}
