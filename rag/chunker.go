package rag

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/tsawler/layoutseq/internal/logger"
	"github.com/tsawler/layoutseq/model"
	"github.com/tsawler/layoutseq/pages"
)

// Chunking methods
const (
	MethodPageAndSegmentType = "page_and_segment_type"
	MethodPage               = "page"
	MethodSegment            = "segment"
)

// Content buckets used by page_and_segment_type
const (
	BucketText  = "text"
	BucketTable = "table"
	BucketImage = "image"
)

// stageName identifies the chunker in stage errors
const stageName = "chunk_generator"

// BucketFlags enables individual content buckets
type BucketFlags struct {
	Text  bool `yaml:"text"`
	Table bool `yaml:"table"`
	Image bool `yaml:"image"`
}

// Any reports whether at least one bucket is enabled
func (f BucketFlags) Any() bool {
	return f.Text || f.Table || f.Image
}

// Enabled reports whether bucket is enabled
func (f BucketFlags) Enabled(bucket string) bool {
	switch bucket {
	case BucketText:
		return f.Text
	case BucketTable:
		return f.Table
	case BucketImage:
		return f.Image
	}
	return false
}

// Suffix joins the enabled bucket names with "_" in text, table, image order
func (f BucketFlags) Suffix() string {
	var parts []string
	for _, b := range []string{BucketText, BucketTable, BucketImage} {
		if f.Enabled(b) {
			parts = append(parts, b)
		}
	}
	return strings.Join(parts, "_")
}

// ChunkerConfig holds configuration for chunk generation
type ChunkerConfig struct {
	// PageNum selects the pages to chunk. Empty selects every page.
	PageNum []pages.Selector `yaml:"page_num" validate:"dive,page_selector"`

	// Exclude lists content types dropped before grouping
	Exclude []model.ContentType `yaml:"exclude" validate:"dive,oneof=line header footer table image_text column other"`

	// ChunkingMethod is page_and_segment_type, page or segment.
	// Default: page_and_segment_type
	ChunkingMethod string `yaml:"chunking_method" validate:"omitempty,oneof=page_and_segment_type page segment"`

	// KeepTogether concatenates the enabled buckets of a page into one chunk
	KeepTogether BucketFlags `yaml:"keep_together"`

	// KeepSeperate gives every enabled bucket its own chunks
	KeepSeperate BucketFlags `yaml:"keep_seperate"`

	// Replace rules applied to segment content, in order
	Replace []ReplaceRule `yaml:"replace" validate:"dive"`

	// SegmentDelimiter is appended to every segment's content
	SegmentDelimiter string `yaml:"segment_delimiter"`
}

// DefaultChunkerConfig returns sensible default configuration. With no
// keep_together or keep_seperate flag set, page_and_segment_type behaves as
// keep_seperate with every bucket enabled.
func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{
		ChunkingMethod: MethodPageAndSegmentType,
	}
}

// DocumentInfo carries the per-document values copied onto every chunk
type DocumentInfo struct {
	DocName    string
	DocumentID string
	Resources  []model.Resource
}

// Chunker groups sequenced segments into chunks
type Chunker struct {
	config ChunkerConfig
	clean  *Cleaner
	newID  model.IDFunc
	log    logger.Logger
}

// NewChunker creates a chunker with default configuration
func NewChunker() *Chunker {
	return NewChunkerWithConfig(DefaultChunkerConfig(), nil)
}

// NewChunkerWithConfig creates a chunker with custom configuration
func NewChunkerWithConfig(config ChunkerConfig, log logger.Logger) *Chunker {
	if config.ChunkingMethod == "" {
		config.ChunkingMethod = MethodPageAndSegmentType
	}
	if config.ChunkingMethod == MethodPageAndSegmentType && !config.KeepTogether.Any() && !config.KeepSeperate.Any() {
		config.KeepSeperate = BucketFlags{Text: true, Table: true, Image: true}
	}
	return &Chunker{
		config: config,
		clean:  NewCleaner(config.Replace, config.SegmentDelimiter),
		newID:  model.NewID,
		log:    logger.OrNop(log),
	}
}

// WithIDFunc replaces the chunk id generator
func (c *Chunker) WithIDFunc(fn model.IDFunc) *Chunker {
	if fn != nil {
		c.newID = fn
	}
	return c
}

// Generate builds the chunk set for one document. Segments are expected in
// (page, sequence) order; they are re-sorted stably to be safe. Zero chunks
// is a valid result.
func (c *Chunker) Generate(segments []model.Segment, info DocumentInfo) (*ChunkSet, error) {
	set := &ChunkSet{DocumentID: info.DocumentID}

	selected, err := pages.Resolve(c.config.PageNum, model.Pages(segments))
	if err != nil {
		return nil, &model.StageError{Stage: stageName, Err: err}
	}
	keep := make(map[int]bool, len(selected))
	for _, p := range selected {
		keep[p] = true
	}

	cleaned := c.clean.CleanSegments(segments)
	filtered := cleaned[:0]
	for _, seg := range cleaned {
		if keep[seg.Page] && !c.excluded(seg.ContentType) {
			filtered = append(filtered, seg)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].Page != filtered[j].Page {
			return filtered[i].Page < filtered[j].Page
		}
		return filtered[i].Sequence < filtered[j].Sequence
	})

	pageList, byPage := model.GroupByPage(filtered)
	for _, page := range pageList {
		var builders []*chunkBuilder
		switch c.config.ChunkingMethod {
		case MethodPageAndSegmentType:
			builders = c.byPageAndType(page, byPage[page])
		case MethodPage:
			builders = c.byPage(page, byPage[page])
		case MethodSegment:
			builders = c.bySegment(page, byPage[page])
		default:
			return nil, &model.StageError{
				Stage: stageName,
				Page:  page,
				Err: &model.ConfigurationError{
					Key:    "chunking_method",
					Value:  c.config.ChunkingMethod,
					Reason: fmt.Sprintf("expected %s, %s or %s", MethodPageAndSegmentType, MethodPage, MethodSegment),
				},
			}
		}
		for _, b := range builders {
			set.Chunks = append(set.Chunks, b.build(c.newID(model.ChunkIDPrefix), info))
		}
	}

	c.log.Debug("chunks generated",
		"document_id", info.DocumentID,
		"method", c.config.ChunkingMethod,
		"pages", len(pageList),
		"chunks", len(set.Chunks))
	return set, nil
}

func (c *Chunker) excluded(ct model.ContentType) bool {
	for _, ex := range c.config.Exclude {
		if ex == ct {
			return true
		}
	}
	return false
}

// bucketOf maps a content type to its page_and_segment_type bucket
func bucketOf(ct model.ContentType) string {
	switch ct {
	case model.ContentLine:
		return BucketText
	case model.ContentTable:
		return BucketTable
	case model.ContentImageText:
		return BucketImage
	}
	return ""
}

func (c *Chunker) byPageAndType(page int, segs []model.Segment) []*chunkBuilder {
	base := fmt.Sprintf("%d_page_segment_type", page)
	var out []*chunkBuilder
	index := make(map[string]*chunkBuilder)

	get := func(key, method string, seq int) *chunkBuilder {
		if b, ok := index[key]; ok {
			return b
		}
		b := &chunkBuilder{key: key, page: page, seq: seq, method: method}
		index[key] = b
		out = append(out, b)
		return b
	}

	together := c.config.KeepTogether
	togetherKey := ""
	if together.Any() {
		suffix := together.Suffix()
		togetherKey = fmt.Sprintf("%s_%s_1", base, suffix)
		for _, seg := range segs {
			if together.Enabled(bucketOf(seg.ContentType)) {
				get(togetherKey, MethodPageAndSegmentType+"_"+suffix, 1).add(seg)
			}
		}
	}

	separate := c.config.KeepSeperate
	if separate.Any() {
		counts := map[string]int{}
		for _, seg := range segs {
			bucket := bucketOf(seg.ContentType)
			if !separate.Enabled(bucket) {
				continue
			}
			seq := 1
			if bucket != BucketText {
				counts[bucket]++
				seq = counts[bucket]
			}
			key := fmt.Sprintf("%s_%s_%d", base, bucket, seq)
			if key == togetherKey {
				c.log.Warn("chunk key already produced by keep_together, skipping", "key", key)
				continue
			}
			get(key, MethodPageAndSegmentType+"_"+bucket, seq).add(seg)
		}
	}
	return out
}

func (c *Chunker) byPage(page int, segs []model.Segment) []*chunkBuilder {
	b := &chunkBuilder{key: fmt.Sprintf("%d_page", page), page: page, seq: 1, method: MethodPage}
	for _, seg := range segs {
		b.add(seg)
	}
	return []*chunkBuilder{b}
}

func (c *Chunker) bySegment(page int, segs []model.Segment) []*chunkBuilder {
	out := make([]*chunkBuilder, 0, len(segs))
	for i, seg := range segs {
		b := &chunkBuilder{key: fmt.Sprintf("%d_segment_%d", page, i+1), page: page, seq: i + 1, method: MethodSegment}
		b.add(seg)
		out = append(out, b)
	}
	return out
}

// chunkBuilder accumulates the members of one chunk
type chunkBuilder struct {
	key    string
	page   int
	seq    int
	method string
	parts  []string
	boxes  []model.BBox
}

func (b *chunkBuilder) add(seg model.Segment) {
	b.parts = append(b.parts, seg.Content)
	if seg.HasBBox() {
		b.boxes = append(b.boxes, seg.BBox)
	}
}

func (b *chunkBuilder) build(id string, info DocumentInfo) model.Chunk {
	content := strings.Join(b.parts, "\n")
	var bbox *model.BBox
	if env, ok := model.Envelope(b.boxes...); ok {
		bbox = &env
	}
	return model.Chunk{
		ID:             id,
		Key:            b.key,
		PageNo:         b.page,
		SequenceNo:     b.seq,
		BBox:           bbox,
		Content:        content,
		ChunkingMethod: b.method,
		CharCount:      utf8.RuneCountInString(content),
		DocName:        info.DocName,
		DocumentID:     info.DocumentID,
		Resources:      model.CloneResources(info.Resources),
	}
}
