package rag

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/layoutseq/model"
)

// ReplaceRule rewrites every occurrence of Find with Replace
type ReplaceRule struct {
	Find    string `yaml:"find" json:"find" validate:"required"`
	Replace string `yaml:"replace" json:"replace"`
}

// Cleaner prepares segment content for chunking
type Cleaner struct {
	rules     []ReplaceRule
	delimiter string
}

// NewCleaner creates a cleaner applying rules in order, then appending delimiter
func NewCleaner(rules []ReplaceRule, delimiter string) *Cleaner {
	return &Cleaner{rules: rules, delimiter: delimiter}
}

// Clean trims s, normalizes it to NFC, applies the replace rules and appends
// the delimiter
func (c *Cleaner) Clean(s string) string {
	s = norm.NFC.String(strings.TrimSpace(s))
	for _, r := range c.rules {
		if r.Find == "" {
			continue
		}
		s = strings.ReplaceAll(s, r.Find, r.Replace)
	}
	return s + c.delimiter
}

// CleanSegments returns a copy of segments with cleaned content
func (c *Cleaner) CleanSegments(segments []model.Segment) []model.Segment {
	out := model.CloneSegments(segments)
	for i := range out {
		out[i].Content = c.Clean(out[i].Content)
	}
	return out
}
