package ocr

import (
	"errors"
	"fmt"
	"image"
	"sort"
	"sync"

	"github.com/tsawler/layoutseq/internal/logger"
	"github.com/tsawler/layoutseq/model"
)

// Technique names the stream produced from Tesseract tokens
const Technique = "ocr_tesseract"

// ErrOCRNotEnabled is returned when OCR functions are called but OCR support
// was not compiled in. Rebuild with -tags ocr to enable OCR support.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// PageSegMode represents page segmentation modes for OCR.
// These control how Tesseract analyzes the page layout.
type PageSegMode int

// Page segmentation modes (matching Tesseract's numbering).
const (
	PSM_AUTO            PageSegMode = 3  // Fully automatic (default)
	PSM_SINGLE_COLUMN   PageSegMode = 4  // Single column of variable sizes
	PSM_SINGLE_BLOCK    PageSegMode = 6  // Single uniform block of text
	PSM_SPARSE_TEXT     PageSegMode = 11 // Find as much text as possible
	PSM_SPARSE_TEXT_OSD PageSegMode = 12 // Sparse text with OSD
)

// Token is one recognized text line in image pixel coordinates
type Token struct {
	Text       string
	Box        image.Rectangle
	Confidence float64
}

// Recognizer produces line tokens for one page image. *Client satisfies it.
type Recognizer interface {
	RecognizeLines(imageData []byte) ([]Token, error)
}

// Engine is the tunable side of an OCR backend. *Client satisfies it.
type Engine interface {
	SetLanguage(lang string) error
	SetPageSegMode(mode PageSegMode) error
}

// Config controls the engine and token filtering
type Config struct {
	// MinConfidence drops tokens Tesseract scored below it (0-100)
	MinConfidence float64 `yaml:"min_confidence" validate:"gte=0,lte=100"`

	// Language is passed to Tesseract, e.g. "eng" or "eng+fra"
	Language string `yaml:"language"`

	// PageSegMode is Tesseract's layout analysis mode. 0 keeps the
	// engine default.
	PageSegMode PageSegMode `yaml:"page_seg_mode" validate:"omitempty,oneof=3 4 6 11 12"`
}

// DefaultConfig keeps every non-blank token, recognizes English and lets
// Tesseract analyze the layout automatically
func DefaultConfig() Config {
	return Config{Language: "eng", PageSegMode: PSM_AUTO}
}

// Configure applies the language and page segmentation mode of cfg to e
func Configure(e Engine, cfg Config) error {
	if cfg.Language != "" {
		if err := e.SetLanguage(cfg.Language); err != nil {
			return fmt.Errorf("setting language %q: %w", cfg.Language, err)
		}
	}
	if cfg.PageSegMode != 0 {
		if err := e.SetPageSegMode(cfg.PageSegMode); err != nil {
			return fmt.Errorf("setting page segmentation mode %d: %w", cfg.PageSegMode, err)
		}
	}
	return nil
}

// Provider converts page images into the ocr_tesseract segment stream.
// Calls into the Recognizer are serialized, so one provider can serve
// several documents at once even when the recognizer keeps per-image state.
type Provider struct {
	mu     sync.Mutex
	rec    Recognizer
	config Config
	log    logger.Logger
	newID  model.IDFunc
}

// NewProvider creates a provider backed by rec
func NewProvider(rec Recognizer, config Config, log logger.Logger) *Provider {
	return &Provider{
		rec:    rec,
		config: config,
		log:    logger.OrNop(log),
		newID:  model.NewID,
	}
}

// WithIDFunc replaces the segment id generator
func (p *Provider) WithIDFunc(fn model.IDFunc) *Provider {
	if fn != nil {
		p.newID = fn
	}
	return p
}

// Stream recognizes every page image, in page order, and returns the tokens
// as line segments. Blank and low-confidence tokens are skipped.
func (p *Provider) Stream(pageImages map[int][]byte) (model.Stream, error) {
	stream := model.Stream{Technique: Technique}

	pages := make([]int, 0, len(pageImages))
	for page := range pageImages {
		pages = append(pages, page)
	}
	sort.Ints(pages)

	for _, page := range pages {
		tokens, err := p.recognize(pageImages[page])
		if err != nil {
			return model.Stream{}, &model.StageError{
				Stage: "ocr",
				Page:  page,
				Err:   fmt.Errorf("recognizing page image: %w", err),
			}
		}
		before := len(stream.Segments)
		stream.Segments = append(stream.Segments, p.segments(page, tokens)...)
		p.log.Debug("page recognized", "page", page, "tokens", len(tokens), "kept", len(stream.Segments)-before)
	}
	return stream, nil
}

func (p *Provider) recognize(data []byte) ([]Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rec.RecognizeLines(data)
}

func (p *Provider) segments(page int, tokens []Token) []model.Segment {
	var out []model.Segment
	for _, tok := range tokens {
		if tok.Text == "" || tok.Box.Empty() {
			continue
		}
		if tok.Confidence < p.config.MinConfidence {
			continue
		}
		seg := model.NewSegment(page, rectToBBox(tok.Box), model.ContentLine, tok.Text)
		seg.ID = p.newID(model.SegmentIDPrefix)
		seg.Technique = Technique
		out = append(out, seg)
	}
	return out
}

func rectToBBox(r image.Rectangle) model.BBox {
	return model.NewBBox(float64(r.Min.X), float64(r.Min.Y), float64(r.Max.X), float64(r.Max.Y))
}
