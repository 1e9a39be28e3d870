package layoutseq

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/spf13/afero"

	"github.com/tsawler/layoutseq/model"
)

// Document is the pipeline input: per-technique segment streams plus the
// page metadata the stages need
type Document struct {
	DocumentID string `json:"document_id"`
	DocName    string `json:"doc_name"`

	// SourcePath is the original file. Plain-text and HTML sources are read
	// into a "text" stream; any source can be archived as a chunk resource.
	SourcePath string `json:"source_path,omitempty"`

	// Pages maps a page number to its size in pixels
	Pages map[string]model.PageSize `json:"pages"`

	Streams []model.Stream `json:"streams"`

	// PageImages maps a page number to a rendered page image, used for OCR
	// and debug overlays
	PageImages map[string]string `json:"page_images,omitempty"`
}

// ParseDocument decodes a JSON document from r
func ParseDocument(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	return &doc, nil
}

// LoadDocument reads a JSON document from fs
func LoadDocument(fs afero.Fs, path string) (*Document, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening document: %w", err)
	}
	defer f.Close()

	doc, err := ParseDocument(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// PageSizes returns the page sizes keyed by page number
func (d *Document) PageSizes() (map[int]model.PageSize, error) {
	out := make(map[int]model.PageSize, len(d.Pages))
	for key, size := range d.Pages {
		page, err := pageKey(key)
		if err != nil {
			return nil, err
		}
		out[page] = size
	}
	return out, nil
}

// PageImagePaths returns the page images keyed by page number
func (d *Document) PageImagePaths() (map[int]string, error) {
	out := make(map[int]string, len(d.PageImages))
	for key, path := range d.PageImages {
		page, err := pageKey(key)
		if err != nil {
			return nil, err
		}
		out[page] = path
	}
	return out, nil
}

// SegmentCount returns the number of segments over all streams
func (d *Document) SegmentCount() int {
	n := 0
	for _, st := range d.Streams {
		n += len(st.Segments)
	}
	return n
}

// Techniques returns the sorted technique names of the document's streams
func (d *Document) Techniques() []string {
	seen := make(map[string]bool)
	var out []string
	for _, st := range d.Streams {
		if !seen[st.Technique] {
			seen[st.Technique] = true
			out = append(out, st.Technique)
		}
	}
	sort.Strings(out)
	return out
}

func pageKey(key string) (int, error) {
	page, err := strconv.Atoi(key)
	if err != nil || page < 1 {
		return 0, fmt.Errorf("invalid page number %q", key)
	}
	return page, nil
}
