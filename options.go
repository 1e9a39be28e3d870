package layoutseq

import (
	"slices"

	"github.com/tsawler/layoutseq/config"
	"github.com/tsawler/layoutseq/layout"
	"github.com/tsawler/layoutseq/model"
	"github.com/tsawler/layoutseq/pages"
)

// ExtractOptions holds the fluent overrides applied on top of a configuration
type ExtractOptions struct {
	// Page selection, in selector syntax
	pages []pages.Selector

	// Layout filtering
	excludeHeaders bool
	excludeFooters bool

	// Chunking
	chunkingMethod string
}

// defaultOptions returns options that leave the configuration untouched
func defaultOptions() ExtractOptions {
	return ExtractOptions{}
}

// clone creates a deep copy of ExtractOptions.
func (o ExtractOptions) clone() ExtractOptions {
	newOpts := o
	if o.pages != nil {
		newOpts.pages = slices.Clone(o.pages)
	}
	return newOpts
}

// apply returns a copy of cfg with the options layered on top
func (o ExtractOptions) apply(cfg *config.Config) *config.Config {
	out := *cfg
	out.ColumnDetector.Exclude = slices.Clone(cfg.ColumnDetector.Exclude)
	out.ChunkGenerator.Exclude = slices.Clone(cfg.ChunkGenerator.Exclude)
	out.ChunkGenerator.PageNum = slices.Clone(cfg.ChunkGenerator.PageNum)

	if len(o.pages) > 0 {
		out.ChunkGenerator.PageNum = append(out.ChunkGenerator.PageNum, o.pages...)
	}
	if o.chunkingMethod != "" {
		out.ChunkGenerator.ChunkingMethod = o.chunkingMethod
	}

	exclude := func(ct model.ContentType) {
		if !slices.Contains(out.ColumnDetector.Exclude, ct) {
			out.ColumnDetector.Exclude = append(out.ColumnDetector.Exclude, ct)
		}
		if !slices.Contains(out.ChunkGenerator.Exclude, ct) {
			out.ChunkGenerator.Exclude = append(out.ChunkGenerator.Exclude, ct)
		}
	}
	if o.excludeHeaders {
		out.SegmentClassifier.Header.Enabled = true
		exclude(model.ContentHeader)
	}
	if o.excludeFooters {
		out.SegmentClassifier.Footer.Enabled = true
		exclude(model.ContentFooter)
	}
	// A zone switched on here follows the policy of the other zone
	if o.excludeHeaders != o.excludeFooters {
		hdr, ftr := &out.SegmentClassifier.Header, &out.SegmentClassifier.Footer
		if hdr.Enabled && ftr.Enabled && hdr.Name != ftr.Name {
			if o.excludeHeaders {
				hdr.Name = ftr.Name
			} else {
				ftr.Name = hdr.Name
			}
		}
	}
	if out.SegmentClassifier.Header.Name == "" {
		out.SegmentClassifier.Header.Name = layout.PolicyManual
	}
	if out.SegmentClassifier.Footer.Name == "" {
		out.SegmentClassifier.Footer.Name = layout.PolicyManual
	}
	return &out
}
