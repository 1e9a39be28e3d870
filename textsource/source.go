package textsource

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/tsawler/layoutseq/internal/logger"
	"github.com/tsawler/layoutseq/model"
)

// NavigationMode controls how navigation, headers, and footers are filtered
// out of HTML documents
type NavigationMode string

const (
	// NavigationNone includes all content without filtering
	NavigationNone NavigationMode = "none"

	// NavigationExplicit skips <nav>, <aside>, ARIA navigation roles and
	// top-level <header>/<footer> elements
	NavigationExplicit NavigationMode = "explicit"

	// NavigationStandard adds class/id pattern matching such as "navbar",
	// "sidebar" or "site-footer"
	NavigationStandard NavigationMode = "standard"

	// NavigationAggressive adds link-density heuristics. Link-heavy content
	// sections may be dropped too.
	NavigationAggressive NavigationMode = "aggressive"
)

func (m NavigationMode) level() int {
	switch m {
	case NavigationExplicit:
		return 1
	case NavigationStandard:
		return 2
	case NavigationAggressive:
		return 3
	}
	return 0
}

// Config holds configuration for text sources
type Config struct {
	// Navigation is the HTML boilerplate filter.
	// Default: standard
	Navigation NavigationMode `yaml:"navigation" validate:"omitempty,oneof=none explicit standard aggressive"`
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{Navigation: NavigationStandard}
}

// Source converts plain-text and HTML documents into a "text" stream
type Source struct {
	config Config
	log    logger.Logger
	newID  model.IDFunc
}

// NewSource creates a source with default configuration
func NewSource() *Source {
	return NewSourceWithConfig(DefaultConfig(), nil)
}

// NewSourceWithConfig creates a source with custom configuration
func NewSourceWithConfig(config Config, log logger.Logger) *Source {
	if config.Navigation == "" {
		config.Navigation = NavigationStandard
	}
	return &Source{
		config: config,
		log:    logger.OrNop(log),
		newID:  model.NewID,
	}
}

// WithIDFunc replaces the segment id generator
func (s *Source) WithIDFunc(fn model.IDFunc) *Source {
	if fn != nil {
		s.newID = fn
	}
	return s
}

// IsHTML reports whether path names an HTML document
func IsHTML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return false
}

// IsMarkdown reports whether path names a Markdown document
func IsMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// ReadFile reads the document at path, choosing the HTML or Markdown reader
// by extension
func (s *Source) ReadFile(fs afero.Fs, path string) (model.Stream, error) {
	f, err := fs.Open(path)
	if err != nil {
		return model.Stream{}, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	switch {
	case IsHTML(path):
		return s.ReadHTML(f)
	case IsMarkdown(path):
		return s.ReadMarkdown(f)
	}
	return s.ReadText(f)
}

// ReadText splits plain text into segments
func (s *Source) ReadText(r io.Reader) (model.Stream, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return model.Stream{}, fmt.Errorf("reading text: %w", err)
	}
	blocks := splitPlain(string(data))
	s.log.Debug("plain text read", "segments", len(blocks))
	return s.stream(blocks), nil
}

// ReadMarkdown extracts content blocks from a Markdown document. Headings,
// emphasis and link markup are stripped; pipe tables become table segments.
func (s *Source) ReadMarkdown(r io.Reader) (model.Stream, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return model.Stream{}, fmt.Errorf("reading markdown: %w", err)
	}
	blocks := parseMarkdown(data)
	s.log.Debug("markdown read", "segments", len(blocks))
	return s.stream(blocks), nil
}

// ReadHTML extracts content blocks from an HTML document
func (s *Source) ReadHTML(r io.Reader) (model.Stream, error) {
	blocks, err := parseHTML(r, s.config.Navigation)
	if err != nil {
		return model.Stream{}, err
	}
	s.log.Debug("html read", "segments", len(blocks))
	return s.stream(blocks), nil
}

func (s *Source) stream(blocks []block) model.Stream {
	st := model.Stream{Technique: model.TechniqueText}
	for _, b := range blocks {
		seg := model.NewSegment(b.page, model.BBox{}, b.contentType, b.text)
		seg.ID = s.newID(model.SegmentIDPrefix)
		seg.Technique = model.TechniqueText
		st.Segments = append(st.Segments, seg)
	}
	return st
}

// block is one extracted unit of text
type block struct {
	page        int
	contentType model.ContentType
	text        string
}
