package layoutseq

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/tsawler/layoutseq/config"
	"github.com/tsawler/layoutseq/layout"
	"github.com/tsawler/layoutseq/merge"
	"github.com/tsawler/layoutseq/model"
	"github.com/tsawler/layoutseq/ocr"
	"github.com/tsawler/layoutseq/rag"
)

func counterIDs() model.IDFunc {
	n := 0
	return func(prefix string) string {
		n++
		return fmt.Sprintf("%s-%05d", prefix, n)
	}
}

func line(x1, y1, x2, y2 float64, content string) model.Segment {
	return model.NewSegment(1, model.NewBBox(x1, y1, x2, y2), model.ContentLine, content)
}

// twoColumnDoc has a running header, two columns of two lines each and a
// duplicate of the first line detected by a second technique
func twoColumnDoc() *Document {
	return &Document{
		DocumentID: "a1b2c3-0001",
		DocName:    "report.pdf",
		Pages:      map[string]model.PageSize{"1": {Width: 1000, Height: 1000}},
		Streams: []model.Stream{
			{Technique: "ocr_tesseract", Segments: []model.Segment{
				line(50, 10, 950, 40, "Running head"),
				line(50, 100, 450, 150, "Left top"),
				line(550, 100, 950, 150, "Right top"),
				line(50, 200, 450, 250, "Left bottom"),
				line(550, 200, 950, 250, "Right bottom"),
			}},
			{Technique: "yolox", Segments: []model.Segment{
				line(60, 110, 440, 140, "Left top again"),
			}},
		},
	}
}

func contents(segs []model.Segment) []string {
	out := make([]string, len(segs))
	for i, s := range segs {
		out[i] = s.Content
	}
	return out
}

func TestProcessSingleColumnWithRunningHead(t *testing.T) {
	res, err := NewProcessor().WithIDFunc(counterIDs()).Process(twoColumnDoc())
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}

	// The page-wide header fuses both columns into one
	if got := res.Columns[1].ColumnCount(); got != 1 {
		t.Errorf("expected 1 column, got %d", got)
	}

	want := []string{"Running head", "Left top", "Right top", "Left bottom", "Right bottom"}
	if got := contents(res.Segments); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("unexpected order: %v", got)
	}
	for i, seg := range res.Segments {
		if seg.Sequence != i+1 {
			t.Errorf("segment %d has sequence %d", i, seg.Sequence)
		}
		if seg.DocumentID != "a1b2c3-0001" || seg.DocName != "report.pdf" {
			t.Errorf("segment %d missing document fields", i)
		}
	}

	if len(res.Dropped) != 1 || res.Dropped[0].Reason != merge.DropDuplicate {
		t.Errorf("expected one duplicate drop, got %+v", res.Dropped)
	}

	if res.Chunks.Count() != 1 {
		t.Fatalf("expected 1 chunk, got %d", res.Chunks.Count())
	}
	c, ok := res.Chunks.Get("1_page_segment_type_text_1")
	if !ok {
		t.Fatalf("missing text chunk, keys %v", res.Chunks.Keys())
	}
	if c.Content != strings.Join(want, "\n") {
		t.Errorf("unexpected chunk content %q", c.Content)
	}
	if c.BBox == nil || c.BBox.Array() != [4]float64{50, 10, 950, 250} {
		t.Errorf("unexpected chunk bbox %v", c.BBox)
	}
}

func TestExtractorExcludeHeadersAndFooters(t *testing.T) {
	chunks, warnings, err := FromDocument(twoColumnDoc()).
		WithIDFunc(counterIDs()).
		ExcludeHeadersAndFooters().
		Chunks()
	if err != nil {
		t.Fatalf("chunks failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %s", FormatWarnings(warnings))
	}

	c, ok := chunks.Get("1_page_segment_type_text_1")
	if !ok {
		t.Fatalf("missing text chunk, keys %v", chunks.Keys())
	}
	// With the header out of the sweep the page reads column by column
	want := "Left top\nLeft bottom\nRight top\nRight bottom"
	if c.Content != want {
		t.Errorf("expected %q, got %q", want, c.Content)
	}
}

func TestExtractorSegmentsZigZag(t *testing.T) {
	segs, _, err := FromDocument(twoColumnDoc()).ExcludeHeaders().Segments()
	if err != nil {
		t.Fatalf("segments failed: %v", err)
	}
	want := []string{"Running head", "Left top", "Left bottom", "Right top", "Right bottom"}
	if got := contents(segs); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("unexpected order: %v", got)
	}
	if segs[0].ContentType != model.ContentHeader {
		t.Errorf("expected header, got %s", segs[0].ContentType)
	}
}

func TestExtractorChunkByPage(t *testing.T) {
	chunks, _, err := FromDocument(twoColumnDoc()).ChunkBy(rag.MethodPage).Chunks()
	if err != nil {
		t.Fatalf("chunks failed: %v", err)
	}
	if _, ok := chunks.Get("1_page"); !ok {
		t.Errorf("expected 1_page chunk, got %v", chunks.Keys())
	}
}

func TestExtractorPagesOutOfRange(t *testing.T) {
	chunks, _, err := FromDocument(twoColumnDoc()).Pages(2).Chunks()
	if err != nil {
		t.Fatalf("chunks failed: %v", err)
	}
	if chunks.Count() != 0 {
		t.Errorf("expected no chunks, got %d", chunks.Count())
	}
}

func TestExtractorInvalidConfig(t *testing.T) {
	_, _, err := FromDocument(twoColumnDoc()).ChunkBy("paragraph").Chunks()
	if !errors.Is(err, model.ErrConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}

	_, _, err = FromDocument(twoColumnDoc()).PageRange(1, 0).Chunks()
	if !errors.Is(err, model.ErrConfiguration) {
		t.Errorf("expected configuration error for 1:0, got %v", err)
	}
}

func TestChainImmutability(t *testing.T) {
	base := FromDocument(twoColumnDoc())
	withPage1 := base.Pages(1)
	withPage2 := base.Pages(2)

	if len(base.options.pages) != 0 {
		t.Error("base extractor should have no pages set")
	}
	if len(withPage1.options.pages) != 1 || withPage1.options.pages[0] != "1" {
		t.Error("withPage1 should have page 1")
	}
	if len(withPage2.options.pages) != 1 || withPage2.options.pages[0] != "2" {
		t.Error("withPage2 should have page 2")
	}
}

func TestOpen(t *testing.T) {
	_, _, err := Open("nonexistent.json").Chunks()
	if err == nil {
		t.Error("expected error for non-existent file")
	}

	fs := afero.NewMemMapFs()
	doc := `{"document_id":"d-1","doc_name":"d.pdf","pages":{"1":{"width":100,"height":100}},
	"streams":[{"technique":"ocr_tesseract","segments":[
		{"page":1,"content_bbox":[0,0,50,10],"content_type":"line","content":"hello","sequence":-1}]}]}`
	if err := afero.WriteFile(fs, "/in/d.json", []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	ext := Open("/in/d.json").WithFs(fs)
	n, err := ext.PageCount()
	if err != nil || n != 1 {
		t.Fatalf("expected 1 page, got %d (%v)", n, err)
	}
	chunks := MustChunks(ext.Chunks())
	if c, ok := chunks.Get("1_page_segment_type_text_1"); !ok || c.Content != "hello" {
		t.Errorf("unexpected chunks %v", chunks.ChunkMap())
	}
}

func TestParseDocument(t *testing.T) {
	raw := `{"document_id":"d-2","pages":{"1":{"width":10,"height":10}},"streams":[
		{"technique":"tesseract","segments":[{"page":1,"content":"a"},{"page":1,"content":"b","sequence":7}]},
		{"technique":"easyocr","segments":[{"page":1,"content":"c"}]},
		{"technique":"tesseract","segments":[]}]}`

	doc, err := ParseDocument(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if n := doc.SegmentCount(); n != 3 {
		t.Errorf("expected 3 segments, got %d", n)
	}
	if got := doc.Techniques(); len(got) != 2 || got[0] != "easyocr" || got[1] != "tesseract" {
		t.Errorf("unexpected techniques %v", got)
	}

	segs := doc.Streams[0].Segments
	if segs[0].Sequence != model.Unsequenced {
		t.Errorf("missing sequence should decode as %d, got %d", model.Unsequenced, segs[0].Sequence)
	}
	if segs[1].Sequence != 7 {
		t.Errorf("expected explicit sequence 7, got %d", segs[1].Sequence)
	}

	if _, err := ParseDocument(strings.NewReader("{")); err == nil {
		t.Error("expected error for truncated JSON")
	}
}

func TestProcessTextSourceWithStorage(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/docs/notes.txt", []byte("Para one\n\nPara two\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Storage.ChunksPath = "/out/chunks"
	cfg.Storage.ResourcesPath = "/out/resources"

	p := NewProcessorWithConfig(cfg, nil).WithFs(fs).WithStorage(fs)
	res, err := p.Process(&Document{DocumentID: "abc-1", DocName: "notes.txt", SourcePath: "/docs/notes.txt"})
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}

	c, ok := res.Chunks.Get("1_page_segment_type_text_1")
	if !ok || c.Content != "Para one\nPara two" {
		t.Fatalf("unexpected chunks %v", res.Chunks.ChunkMap())
	}
	if c.BBox != nil {
		t.Errorf("text chunk should have no bbox, got %v", c.BBox)
	}
	if len(c.Resources) != 1 || c.Resources[0].Type != "local" || !strings.HasPrefix(c.Resources[0].Path, "/out/resources/abc-") {
		t.Errorf("unexpected resources %+v", c.Resources)
	}

	if len(res.Saved.ChunkFiles) != 1 || len(res.Saved.MetadataFiles) != 1 {
		t.Fatalf("expected one chunk and one metadata file, got %+v", res.Saved)
	}
	data, err := afero.ReadFile(fs, "/out/chunks/abc-1/chunks/1_page_segment_type_text_1.txt")
	if err != nil || string(data) != "Para one\nPara two" {
		t.Errorf("unexpected chunk file %q (%v)", data, err)
	}
	if ok, _ := afero.Exists(fs, "/out/chunks/abc-1/chunks/1_page_segment_type_text_1.txt_metadata.json"); !ok {
		t.Error("metadata file not written")
	}
}

func TestProcessMarkdownSource(t *testing.T) {
	fs := afero.NewMemMapFs()
	md := "# Title\n\nBody *text*\n\n| A | B |\n|---|---|\n| 1 | 2 |\n"
	if err := afero.WriteFile(fs, "/docs/readme.md", []byte(md), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := NewProcessor().WithFs(fs).Process(&Document{DocumentID: "md-1", SourcePath: "/docs/readme.md"})
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}

	text, ok := res.Chunks.Get("1_page_segment_type_text_1")
	if !ok || text.Content != "Title\nBody text" {
		t.Errorf("unexpected text chunk %v", res.Chunks.ChunkMap())
	}
	table, ok := res.Chunks.Get("1_page_segment_type_table_1")
	if !ok || !strings.HasPrefix(table.Content, "| A | B |") {
		t.Errorf("unexpected table chunk %v", res.Chunks.ChunkMap())
	}
}

func TestProcessEmptyDocument(t *testing.T) {
	res, err := NewProcessor().Process(&Document{DocumentID: "empty"})
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if !res.NoSegments {
		t.Error("expected NoSegments")
	}
	if res.Chunks == nil || res.Chunks.Count() != 0 {
		t.Error("expected an empty chunk set")
	}
}

func TestProcessFullPageArtifactWarning(t *testing.T) {
	doc := &Document{
		DocumentID: "tall",
		Pages:      map[string]model.PageSize{"1": {Width: 1000, Height: 2000}},
		Streams: []model.Stream{
			{Technique: "ocr_tesseract", Segments: []model.Segment{line(10, 10, 200, 40, "keep")}},
			{Technique: "yolox", Segments: []model.Segment{line(0, 0, 1000, 1600, "whole page")}},
		},
	}
	res, err := NewProcessor().Process(doc)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Stage != "segment_merger" {
		t.Fatalf("expected one merger warning, got %v", res.Warnings)
	}
	if got := contents(res.Segments); len(got) != 1 || got[0] != "keep" {
		t.Errorf("unexpected segments %v", got)
	}
}

func TestProcessMissingPageSizeWarning(t *testing.T) {
	cfg := config.Default()
	cfg.SegmentClassifier.Header.Enabled = true

	doc := twoColumnDoc()
	doc.Pages = nil
	res, err := NewProcessorWithConfig(cfg, nil).Process(doc)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Page != 1 {
		t.Errorf("expected one page-size warning, got %v", res.Warnings)
	}
}

func TestProcessMismatchedPolicies(t *testing.T) {
	cfg := config.Default()
	cfg.SegmentClassifier.Header = layout.ZoneRule{Enabled: true, Name: layout.PolicyAuto, MaxHeightPercent: 10}
	cfg.SegmentClassifier.Footer = layout.ZoneRule{Enabled: true, Name: layout.PolicyManual, MinHeightPercent: 90, MaxHeightPercent: 100}

	_, err := NewProcessorWithConfig(cfg, nil).Process(twoColumnDoc())
	var stageErr *model.StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != "segment_classifier" {
		t.Fatalf("expected classifier stage error, got %v", err)
	}
	if !errors.Is(err, model.ErrConfiguration) {
		t.Error("expected configuration error in chain")
	}
}

func TestProcessBadPageKey(t *testing.T) {
	doc := twoColumnDoc()
	doc.Pages = map[string]model.PageSize{"first": {Width: 1, Height: 1}}
	if _, err := NewProcessor().Process(doc); err == nil {
		t.Error("expected error for invalid page key")
	}
}

func TestProcessAll(t *testing.T) {
	bad := twoColumnDoc()
	bad.DocumentID = "bad"
	bad.Pages = map[string]model.PageSize{"x": {}}

	docs := []*Document{twoColumnDoc(), bad, {DocumentID: "empty"}}
	results, err := ProcessAll(context.Background(), NewProcessor(), docs, 2)
	if err == nil {
		t.Fatal("expected joined error")
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Err != nil || results[0].Result.Chunks.Count() != 1 {
		t.Errorf("first document should succeed: %v", results[0].Err)
	}
	if results[1].Err == nil || results[1].Result != nil {
		t.Error("second document should fail")
	}
	if results[2].Err != nil || !results[2].Result.NoSegments {
		t.Error("third document should succeed with no segments")
	}
	if results[1].Document != bad {
		t.Error("results must keep input order")
	}
}

// imageEchoEngine keeps the current image between setting it and reading
// its lines, like Tesseract does
type imageEchoEngine struct {
	current []byte
}

func (e *imageEchoEngine) RecognizeLines(data []byte) ([]ocr.Token, error) {
	e.current = data
	runtime.Gosched()
	return []ocr.Token{{Text: string(e.current), Box: image.Rect(10, 10, 200, 40), Confidence: 90}}, nil
}

func TestProcessAllSharedOCREngine(t *testing.T) {
	fs := afero.NewMemMapFs()
	var docs []*Document
	for i := 0; i < 6; i++ {
		path := fmt.Sprintf("/img/d%d.png", i)
		if err := afero.WriteFile(fs, path, []byte(fmt.Sprintf("scan of d%d", i)), 0o644); err != nil {
			t.Fatal(err)
		}
		docs = append(docs, &Document{
			DocumentID: fmt.Sprintf("d%d", i),
			PageImages: map[string]string{"1": path},
		})
	}

	p := NewProcessor().WithFs(fs).WithOCR(&imageEchoEngine{})
	results, err := ProcessAll(context.Background(), p, docs, 4)
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}

	for i, r := range results {
		c, ok := r.Result.Chunks.Get("1_page_segment_type_text_1")
		want := fmt.Sprintf("scan of d%d", i)
		if !ok || c.Content != want {
			t.Errorf("document %d: expected %q, got %v", i, want, r.Result.Chunks.ChunkMap())
		}
	}
}

func TestProcessAllCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := ProcessAll(ctx, NewProcessor(), []*Document{twoColumnDoc()}, 0)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if results[0].Result != nil {
		t.Error("canceled document must not be processed")
	}

	results, err = ProcessAll(context.Background(), NewProcessor(), nil, 4)
	if err != nil || len(results) != 0 {
		t.Errorf("empty batch: %v %v", results, err)
	}
}

func TestMust(t *testing.T) {
	if got := Must("hello", nil); got != "hello" {
		t.Errorf("expected 'hello', got %q", got)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected Must to panic on error")
		}
	}()
	Must("", os.ErrNotExist)
}

func TestFormatWarnings(t *testing.T) {
	got := FormatWarnings([]Warning{
		{Stage: "segment_merger", Page: 2, Message: "dropped"},
		{Stage: "ocr", Message: "slow"},
	})
	want := "segment_merger (page 2): dropped\nocr: slow"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
