package layoutseq

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/tsawler/layoutseq/config"
	"github.com/tsawler/layoutseq/internal/logger"
	"github.com/tsawler/layoutseq/model"
	"github.com/tsawler/layoutseq/pages"
	"github.com/tsawler/layoutseq/rag"
)

// Extractor provides a fluent interface over the processing pipeline.
// Each configuration method returns a new Extractor instance, making it
// safe for concurrent use and allowing method chaining.
type Extractor struct {
	// Source
	filename string
	doc      *Document
	fs       afero.Fs

	// Configuration
	config  *config.Config
	log     logger.Logger
	idFunc  model.IDFunc
	options ExtractOptions
}

// Open returns an Extractor for the JSON document at filename. The file is
// read when a terminal operation runs.
//
// Example:
//
//	chunks, warnings, err := layoutseq.Open("document.json").Chunks()
func Open(filename string) *Extractor {
	return &Extractor{
		filename: filename,
		fs:       afero.NewOsFs(),
		config:   config.Default(),
		options:  defaultOptions(),
	}
}

// FromDocument returns an Extractor over an already-decoded document
func FromDocument(doc *Document) *Extractor {
	return &Extractor{
		doc:     doc,
		fs:      afero.NewOsFs(),
		config:  config.Default(),
		options: defaultOptions(),
	}
}

// clone creates a shallow copy of the Extractor with a deep copy of options.
// This ensures immutability - each chain method returns a new instance.
func (e *Extractor) clone() *Extractor {
	newExt := *e
	newExt.options = e.options.clone()
	return &newExt
}

// ============================================================================
// Configuration Methods (return new Extractor instance)
// ============================================================================

// WithFs reads the document, sources and page images from fs
func (e *Extractor) WithFs(fs afero.Fs) *Extractor {
	newExt := e.clone()
	newExt.fs = fs
	return newExt
}

// WithConfig replaces the base configuration. Fluent options still apply
// on top of it.
func (e *Extractor) WithConfig(cfg *config.Config) *Extractor {
	newExt := e.clone()
	newExt.config = cfg
	return newExt
}

// WithLogger reports pipeline progress to log
func (e *Extractor) WithLogger(log logger.Logger) *Extractor {
	newExt := e.clone()
	newExt.log = log
	return newExt
}

// WithIDFunc replaces the segment and chunk id generator
func (e *Extractor) WithIDFunc(fn model.IDFunc) *Extractor {
	newExt := e.clone()
	newExt.idFunc = fn
	return newExt
}

// Pages restricts chunking to the given pages (1-indexed).
// Multiple calls are cumulative.
//
// Example:
//
//	chunks, _, err := layoutseq.Open("doc.json").Pages(1, 3, 5).Chunks()
func (e *Extractor) Pages(pageNums ...int) *Extractor {
	newExt := e.clone()
	for _, p := range pageNums {
		newExt.options.pages = append(newExt.options.pages, pages.Int(p))
	}
	return newExt
}

// PageRange restricts chunking to a range of pages (1-indexed, inclusive).
// Negative values count from the last page.
func (e *Extractor) PageRange(start, end int) *Extractor {
	newExt := e.clone()
	newExt.options.pages = append(newExt.options.pages, pages.Selector(fmt.Sprintf("%d:%d", start, end)))
	return newExt
}

// ExcludeHeaders enables header detection and drops header segments from
// column detection and chunking
func (e *Extractor) ExcludeHeaders() *Extractor {
	newExt := e.clone()
	newExt.options.excludeHeaders = true
	return newExt
}

// ExcludeFooters enables footer detection and drops footer segments from
// column detection and chunking
func (e *Extractor) ExcludeFooters() *Extractor {
	newExt := e.clone()
	newExt.options.excludeFooters = true
	return newExt
}

// ExcludeHeadersAndFooters is a convenience method to exclude both
func (e *Extractor) ExcludeHeadersAndFooters() *Extractor {
	newExt := e.clone()
	newExt.options.excludeHeaders = true
	newExt.options.excludeFooters = true
	return newExt
}

// ChunkBy selects the chunking method: rag.MethodPageAndSegmentType,
// rag.MethodPage or rag.MethodSegment
func (e *Extractor) ChunkBy(method string) *Extractor {
	newExt := e.clone()
	newExt.options.chunkingMethod = method
	return newExt
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Process runs the pipeline and returns the full result
func (e *Extractor) Process() (*Result, error) {
	doc, err := e.document()
	if err != nil {
		return nil, err
	}

	base := e.config
	if base == nil {
		base = config.Default()
	}
	cfg := e.options.apply(base)
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	p := NewProcessorWithConfig(cfg, e.log).WithFs(e.fs)
	if e.idFunc != nil {
		p.WithIDFunc(e.idFunc)
	}
	return p.Process(doc)
}

// Segments returns the merged segments in reading order
func (e *Extractor) Segments() ([]model.Segment, []Warning, error) {
	res, err := e.Process()
	if err != nil {
		return nil, nil, err
	}
	return res.Segments, res.Warnings, nil
}

// Chunks returns the generated chunks.
//
// Example:
//
//	chunks, warnings, err := layoutseq.Open("document.json").
//	    ExcludeHeadersAndFooters().
//	    Chunks()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, key := range chunks.Keys() {
//	    c, _ := chunks.Get(key)
//	    fmt.Printf("[%s] %s\n", key, c.Content)
//	}
func (e *Extractor) Chunks() (*rag.ChunkSet, []Warning, error) {
	res, err := e.Process()
	if err != nil {
		return nil, nil, err
	}
	return res.Chunks, res.Warnings, nil
}

// PageCount returns the number of pages that carry segments
func (e *Extractor) PageCount() (int, error) {
	doc, err := e.document()
	if err != nil {
		return 0, err
	}
	seen := make(map[int]bool)
	for _, st := range doc.Streams {
		for _, seg := range st.Segments {
			seen[seg.Page] = true
		}
	}
	return len(seen), nil
}

// document returns the decoded document, loading it on first use
func (e *Extractor) document() (*Document, error) {
	if e.doc != nil {
		return e.doc, nil
	}
	if e.filename == "" {
		return nil, fmt.Errorf("no filename specified")
	}
	return LoadDocument(e.fs, e.filename)
}
