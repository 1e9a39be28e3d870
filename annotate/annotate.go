// Package annotate draws segment boxes over page images for debugging.
//
// Each call writes one PNG per page image, named
// {document id}_{image name}_{stage}_bbox.png, into the configured output
// directory.
// Every box is labelled "idx: (x1,y1),(x2,y2)". Annotation is write-only and
// best effort: failures are logged and never abort the pipeline.
package annotate

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/tiff"

	"github.com/tsawler/layoutseq/internal/logger"
	"github.com/tsawler/layoutseq/model"
)

// Config holds configuration for debug overlays
type Config struct {
	Enabled bool `yaml:"enabled"`

	// OutputDir receives the annotated images.
	// Default: debug
	OutputDir string `yaml:"output_dir_path"`
}

// DefaultConfig returns a disabled configuration
func DefaultConfig() Config {
	return Config{OutputDir: "debug"}
}

var (
	boxColor   = color.RGBA{R: 220, G: 20, B: 60, A: 255}
	labelColor = color.RGBA{R: 0, G: 0, B: 255, A: 255}
)

// Annotator renders segment overlays
type Annotator struct {
	fs     afero.Fs
	config Config
	log    logger.Logger
}

// NewAnnotator creates an annotator reading and writing through fs
func NewAnnotator(fs afero.Fs, config Config, log logger.Logger) *Annotator {
	return &Annotator{
		fs:     fs,
		config: config,
		log:    logger.OrNop(log),
	}
}

// Enabled reports whether overlays are written
func (a *Annotator) Enabled() bool {
	return a != nil && a.config.Enabled
}

// OutputName returns the overlay file name for the page image at path.
// Path separators in documentID are replaced so the name stays inside the
// output directory.
func OutputName(documentID, path, stage string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if documentID == "" {
		return fmt.Sprintf("%s_%s_bbox.png", stem, stage)
	}
	documentID = strings.NewReplacer("/", "_", `\`, "_").Replace(documentID)
	return fmt.Sprintf("%s_%s_%s_bbox.png", documentID, stem, stage)
}

// Annotate draws segs over their page images and returns the files written.
// Pages without an image and images that fail to load are logged and
// skipped.
func (a *Annotator) Annotate(documentID, stage string, pageImages map[int]string, segs []model.Segment) []string {
	if !a.Enabled() {
		return nil
	}

	pages, byPage := model.GroupByPage(segs)

	var written []string
	for _, page := range pages {
		path, ok := pageImages[page]
		if !ok {
			a.log.Debug("no page image", "stage", stage, "page", page)
			continue
		}
		out, err := a.annotatePage(documentID, stage, path, byPage[page])
		if err != nil {
			a.log.Warn("annotation failed", "stage", stage, "page", page, "err", err)
			continue
		}
		written = append(written, out)
	}
	return written
}

func (a *Annotator) annotatePage(documentID, stage, path string, segs []model.Segment) (string, error) {
	data, err := afero.ReadFile(a.fs, path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", path, err)
	}

	canvas := image.NewRGBA(src.Bounds())
	xdraw.Copy(canvas, canvas.Bounds().Min, src, src.Bounds(), xdraw.Src, nil)

	for i, seg := range segs {
		if !seg.HasBBox() {
			continue
		}
		r := toRect(seg.BBox)
		strokeRect(canvas, r, boxColor)
		drawLabel(canvas, r.Min.X, r.Min.Y-2, label(i, seg.BBox))
	}

	if err := a.fs.MkdirAll(a.config.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", a.config.OutputDir, err)
	}
	out := filepath.Join(a.config.OutputDir, OutputName(documentID, path, stage))

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return "", fmt.Errorf("encoding %s: %w", out, err)
	}
	if err := afero.WriteFile(a.fs, out, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", out, err)
	}
	a.log.Debug("overlay written", "path", out, "boxes", len(segs))
	return out, nil
}

func label(idx int, b model.BBox) string {
	return fmt.Sprintf("%d: (%d,%d),(%d,%d)", idx, int(b.X1), int(b.Y1), int(b.X2), int(b.Y2))
}

func toRect(b model.BBox) image.Rectangle {
	return image.Rect(int(b.X1), int(b.Y1), int(b.X2), int(b.Y2))
}

// strokeRect draws a two pixel outline of r clipped to img
func strokeRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for t := 0; t < 2; t++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Set(x, r.Min.Y+t, c)
			img.Set(x, r.Max.Y-1-t, c)
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			img.Set(r.Min.X+t, y, c)
			img.Set(r.Max.X-1-t, y, c)
		}
	}
}

func drawLabel(img *image.RGBA, x, y int, text string) {
	face := basicfont.Face7x13
	if y < face.Ascent {
		y = face.Ascent
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(labelColor),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
