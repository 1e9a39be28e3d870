// Package config loads and validates the pipeline configuration.
//
// Configuration is YAML with one section per stage. Unknown keys are
// rejected, defaults are applied once at load time and the result is
// validated before any document is processed:
//
//	cfg, err := config.Load(afero.NewOsFs(), "layoutseq.yaml")
//	if errors.Is(err, model.ErrConfiguration) { ... }
package config

import (
	"github.com/tsawler/layoutseq/annotate"
	"github.com/tsawler/layoutseq/layout"
	"github.com/tsawler/layoutseq/merge"
	"github.com/tsawler/layoutseq/ocr"
	"github.com/tsawler/layoutseq/rag"
	"github.com/tsawler/layoutseq/storage"
	"github.com/tsawler/layoutseq/textsource"
)

// Config is the complete, typed pipeline configuration
type Config struct {
	ColumnDetector    layout.ColumnConfig       `yaml:"column_detector"`
	SegmentClassifier layout.HeaderFooterConfig `yaml:"segment_classifier"`
	SegmentMerger     merge.Config              `yaml:"segment_merger"`
	SegmentSequencer  layout.SequencerConfig    `yaml:"segment_sequencer"`
	ChunkGenerator    rag.ChunkerConfig         `yaml:"chunk_generator"`
	OCR               ocr.Config                `yaml:"ocr"`
	TextSource        textsource.Config         `yaml:"text_source"`
	Debug             annotate.Config           `yaml:"debug"`
	Storage           storage.Config            `yaml:"storage"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		ColumnDetector:    layout.DefaultColumnConfig(),
		SegmentClassifier: layout.DefaultHeaderFooterConfig(),
		SegmentMerger:     merge.DefaultConfig(),
		SegmentSequencer:  layout.DefaultSequencerConfig(),
		ChunkGenerator:    rag.DefaultChunkerConfig(),
		OCR:               ocr.DefaultConfig(),
		TextSource:        textsource.DefaultConfig(),
		Debug:             annotate.DefaultConfig(),
		Storage:           storage.DefaultConfig(),
	}
}

// applyDefaults fills enum and path fields an explicit empty value left blank.
// A zero max_segment_height is kept and disables the artifact check.
func (c *Config) applyDefaults() {
	def := Default()

	if c.SegmentClassifier.Header.Name == "" {
		c.SegmentClassifier.Header.Name = def.SegmentClassifier.Header.Name
	}
	if c.SegmentClassifier.Footer.Name == "" {
		c.SegmentClassifier.Footer.Name = def.SegmentClassifier.Footer.Name
	}
	if c.SegmentSequencer.Pattern.SingleColumn == "" {
		c.SegmentSequencer.Pattern.SingleColumn = def.SegmentSequencer.Pattern.SingleColumn
	}
	if c.SegmentSequencer.Pattern.MultiColumn == "" {
		c.SegmentSequencer.Pattern.MultiColumn = def.SegmentSequencer.Pattern.MultiColumn
	}
	if c.ChunkGenerator.ChunkingMethod == "" {
		c.ChunkGenerator.ChunkingMethod = def.ChunkGenerator.ChunkingMethod
	}
	if c.OCR.Language == "" {
		c.OCR.Language = def.OCR.Language
	}
	if c.TextSource.Navigation == "" {
		c.TextSource.Navigation = def.TextSource.Navigation
	}
	if c.Debug.OutputDir == "" {
		c.Debug.OutputDir = def.Debug.OutputDir
	}
	if c.Storage.ChunksPath == "" {
		c.Storage.ChunksPath = def.Storage.ChunksPath
	}
	if c.Storage.ResourcesPath == "" {
		c.Storage.ResourcesPath = def.Storage.ResourcesPath
	}
}
