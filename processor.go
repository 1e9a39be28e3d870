package layoutseq

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/tsawler/layoutseq/annotate"
	"github.com/tsawler/layoutseq/config"
	"github.com/tsawler/layoutseq/internal/logger"
	"github.com/tsawler/layoutseq/layout"
	"github.com/tsawler/layoutseq/merge"
	"github.com/tsawler/layoutseq/model"
	"github.com/tsawler/layoutseq/ocr"
	"github.com/tsawler/layoutseq/rag"
	"github.com/tsawler/layoutseq/storage"
	"github.com/tsawler/layoutseq/textsource"
)

// Overlay stage names
const (
	StageMerged    = "merged"
	StageSequenced = "sequenced"
)

// Result is the outcome of processing one document
type Result struct {
	DocumentID string

	// Segments are the sequenced segments, in (page, sequence) order
	Segments []model.Segment

	// Chunks is never nil on success
	Chunks *rag.ChunkSet

	// Columns holds the detected column layout per page
	Columns map[int]*layout.ColumnLayout

	// Dropped lists segments the merger discarded and why
	Dropped []merge.Dropped

	// Saved lists the chunk files written, when a saver is configured
	Saved storage.Saved

	// Overlays lists the debug images written
	Overlays []string

	Warnings []Warning

	// NoSegments is set when the document carried nothing to process
	NoSegments bool
}

// Processor runs the full pipeline over one document at a time. It holds no
// mutable state once built and is safe for concurrent use. OCR calls are
// serialized through one recognizer; an IDFunc passed to WithIDFunc must
// be safe for concurrent use when documents are processed in parallel.
type Processor struct {
	config config.Config
	log    logger.Logger
	fs     afero.Fs

	classifier   *layout.HeaderFooterClassifier
	detector     *layout.ColumnDetector
	consolidator *merge.Consolidator
	merger       *merge.Merger
	sequencer    *layout.Sequencer
	chunker      *rag.Chunker
	text         *textsource.Source

	ocr       *ocr.Provider
	saver     *storage.ChunkSaver
	archiver  *storage.ResourceArchiver
	annotator *annotate.Annotator
}

// NewProcessor creates a processor with default configuration
func NewProcessor() *Processor {
	return NewProcessorWithConfig(config.Default(), nil)
}

// NewProcessorWithConfig creates a processor with custom configuration. The
// configuration is copied; later changes to cfg have no effect.
func NewProcessorWithConfig(cfg *config.Config, log logger.Logger) *Processor {
	if cfg == nil {
		cfg = config.Default()
	}
	log = logger.OrNop(log)

	p := &Processor{
		config:       *cfg,
		log:          log,
		fs:           afero.NewOsFs(),
		classifier:   layout.NewHeaderFooterClassifierWithConfig(cfg.SegmentClassifier, log.With("stage", "segment_classifier")),
		detector:     layout.NewColumnDetectorWithConfig(cfg.ColumnDetector, log.With("stage", "column_detector")),
		consolidator: merge.NewConsolidatorWithLogger(log.With("stage", "segment_consolidator")),
		merger:       merge.NewMergerWithConfig(cfg.SegmentMerger, log.With("stage", "segment_merger")),
		sequencer:    layout.NewSequencerWithConfig(cfg.SegmentSequencer, log.With("stage", "segment_sequencer")),
		chunker:      rag.NewChunkerWithConfig(cfg.ChunkGenerator, log.With("stage", "chunk_generator")),
		text:         textsource.NewSourceWithConfig(cfg.TextSource, log.With("stage", "text_source")),
	}
	p.annotator = annotate.NewAnnotator(p.fs, cfg.Debug, log.With("stage", "annotate"))
	return p
}

// WithFs replaces the filesystem used to read sources and page images and
// to write debug overlays
func (p *Processor) WithFs(fs afero.Fs) *Processor {
	p.fs = fs
	p.annotator = annotate.NewAnnotator(fs, p.config.Debug, p.log.With("stage", "annotate"))
	return p
}

// WithStorage enables chunk persistence and resource archival on fs
func (p *Processor) WithStorage(fs afero.Fs) *Processor {
	p.saver = storage.NewChunkSaver(fs, p.config.Storage, p.log.With("stage", "chunk_saver"))
	p.archiver = storage.NewResourceArchiver(fs, p.config.Storage, p.log.With("stage", "resource_archiver"))
	return p
}

// WithOCR recognizes page images with rec and adds the result as an
// ocr_tesseract stream
func (p *Processor) WithOCR(rec ocr.Recognizer) *Processor {
	p.ocr = ocr.NewProvider(rec, p.config.OCR, p.log.With("stage", "ocr"))
	return p
}

// WithIDFunc replaces the identifier generator of every stage
func (p *Processor) WithIDFunc(fn model.IDFunc) *Processor {
	p.sequencer.WithIDFunc(fn)
	p.chunker.WithIDFunc(fn)
	p.text.WithIDFunc(fn)
	if p.ocr != nil {
		p.ocr.WithIDFunc(fn)
	}
	return p
}

// Config returns a copy of the processor configuration
func (p *Processor) Config() config.Config {
	return p.config
}

// Process runs every stage over doc. A document without segments yields a
// result with NoSegments set and an empty chunk set. The first stage failure
// aborts the document; no partial result is returned.
func (p *Processor) Process(doc *Document) (*Result, error) {
	if doc == nil {
		return nil, errors.New("nil document")
	}
	log := p.log.With("document_id", doc.DocumentID)
	log.Debug("processing document", "segments", doc.SegmentCount(), "techniques", doc.Techniques())

	res, err := p.process(doc, log)
	if err != nil {
		return nil, fmt.Errorf("processing %s: %w", doc.DocumentID, err)
	}
	log.Info("document processed",
		"segments", len(res.Segments),
		"chunks", res.Chunks.Count(),
		"dropped", len(res.Dropped),
		"warnings", len(res.Warnings))
	return res, nil
}

func (p *Processor) process(doc *Document, log logger.Logger) (*Result, error) {
	res := &Result{
		DocumentID: doc.DocumentID,
		Chunks:     &rag.ChunkSet{DocumentID: doc.DocumentID},
	}

	sizes, err := doc.PageSizes()
	if err != nil {
		return nil, err
	}
	images, err := doc.PageImagePaths()
	if err != nil {
		return nil, err
	}

	streams, err := p.gather(doc, images, log)
	if err != nil {
		return nil, err
	}

	classified, err := p.classify(streams, sizes)
	if err != nil {
		return nil, err
	}
	res.Warnings = append(res.Warnings, missingSizes(classified, sizes, p.config.SegmentClassifier)...)

	res.Columns = p.detector.DetectAll(layoutCandidates(classified))

	consolidated := p.consolidator.Consolidate(classified)
	merged := p.merger.Merge(consolidated.Groups...)
	res.Dropped = merged.Dropped
	for _, d := range merged.Dropped {
		if d.Reason == merge.DropFullPageArtifact {
			res.Warnings = append(res.Warnings, Warning{
				Stage:   "segment_merger",
				Page:    d.Segment.Page,
				Message: fmt.Sprintf("segment of height %.0f dropped as full-page artifact", d.Segment.BBox.Height()),
			})
		}
	}

	combined := make([]model.Segment, 0, len(consolidated.Text)+len(merged.Segments))
	combined = append(combined, consolidated.Text...)
	combined = append(combined, merged.Segments...)
	if len(combined) == 0 {
		log.Warn("no segments to process")
		res.NoSegments = true
		return res, nil
	}
	for i := range combined {
		combined[i].DocName = doc.DocName
		combined[i].DocumentID = doc.DocumentID
	}

	sequenced, err := p.sequencer.Sequence(combined, res.Columns)
	if err != nil {
		return nil, err
	}
	res.Segments = sequenced

	if p.annotator.Enabled() {
		res.Overlays = append(res.Overlays, p.annotator.Annotate(doc.DocumentID, StageMerged, images, merged.Segments)...)
		res.Overlays = append(res.Overlays, p.annotator.Annotate(doc.DocumentID, StageSequenced, images, sequenced)...)
	}

	info := rag.DocumentInfo{DocName: doc.DocName, DocumentID: doc.DocumentID}
	if p.archiver != nil && doc.SourcePath != "" {
		resource, err := p.archiver.Archive(doc.DocumentID, doc.SourcePath)
		if err != nil {
			return nil, &model.StageError{Stage: "resource_archiver", Err: err}
		}
		info.Resources = []model.Resource{resource}
	}

	chunks, err := p.chunker.Generate(sequenced, info)
	if err != nil {
		return nil, err
	}
	res.Chunks = chunks

	if p.saver != nil {
		saved, err := p.saver.Save(chunks)
		if err != nil {
			return nil, &model.StageError{Stage: "chunk_saver", Err: err}
		}
		res.Saved = saved
	}
	return res, nil
}

// gather returns the document streams plus the ones produced by the OCR
// provider and the text source
func (p *Processor) gather(doc *Document, images map[int]string, log logger.Logger) ([]model.Stream, error) {
	streams := make([]model.Stream, 0, len(doc.Streams)+2)
	hasText := false
	for _, st := range doc.Streams {
		if st.Technique == model.TechniqueText {
			hasText = true
		}
		streams = append(streams, model.Stream{Technique: st.Technique, Segments: model.CloneSegments(st.Segments)})
	}

	if p.ocr != nil && len(images) > 0 {
		data := make(map[int][]byte, len(images))
		for page, path := range images {
			b, err := afero.ReadFile(p.fs, path)
			if err != nil {
				return nil, &model.StageError{Stage: "ocr", Page: page, Err: err}
			}
			data[page] = b
		}
		st, err := p.ocr.Stream(data)
		if err != nil {
			return nil, err
		}
		streams = append(streams, st)
	}

	if !hasText && isTextSource(doc.SourcePath) {
		st, err := p.text.ReadFile(p.fs, doc.SourcePath)
		if err != nil {
			return nil, &model.StageError{Stage: "text_source", Err: err}
		}
		log.Debug("text source read", "path", doc.SourcePath, "segments", len(st.Segments))
		streams = append(streams, st)
	}
	return streams, nil
}

func isTextSource(path string) bool {
	if path == "" {
		return false
	}
	if textsource.IsHTML(path) || textsource.IsMarkdown(path) {
		return true
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".text":
		return true
	}
	return false
}

// classify tags headers and footers on image-derived streams
func (p *Processor) classify(streams []model.Stream, sizes map[int]model.PageSize) ([]model.Stream, error) {
	out := make([]model.Stream, len(streams))
	for i, st := range streams {
		out[i] = st
		if !imageDerived(st.Technique) {
			continue
		}
		segs, err := p.classifier.Classify(st.Segments, sizes)
		if err != nil {
			return nil, &model.StageError{Stage: "segment_classifier", Err: err}
		}
		out[i].Segments = segs
	}
	return out, nil
}

func imageDerived(technique string) bool {
	return technique != model.TechniqueText && !strings.HasPrefix(technique, model.TechniqueColumnPrefix)
}

// layoutCandidates returns the union of image-derived segments
func layoutCandidates(streams []model.Stream) []model.Segment {
	var out []model.Segment
	for _, st := range streams {
		if imageDerived(st.Technique) {
			out = append(out, st.Segments...)
		}
	}
	return out
}

// missingSizes warns once per page that classification had to skip
func missingSizes(streams []model.Stream, sizes map[int]model.PageSize, cfg layout.HeaderFooterConfig) []Warning {
	if !cfg.Header.Enabled && !cfg.Footer.Enabled {
		return nil
	}
	pages, _ := model.GroupByPage(layoutCandidates(streams))
	var out []Warning
	for _, page := range pages {
		if size, ok := sizes[page]; !ok || size.Height <= 0 {
			out = append(out, Warning{
				Stage:   "segment_classifier",
				Page:    page,
				Message: "page size unknown, header/footer detection skipped",
			})
		}
	}
	return out
}
