// Package layoutseq turns geometrically unordered OCR segments into ordered,
// de-duplicated chunks ready for embedding or indexing.
//
// Basic usage:
//
//	chunks, warnings, err := layoutseq.Open("document.json").Chunks()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", layoutseq.FormatWarnings(warnings))
//	}
//
// With options:
//
//	chunks, _, err := layoutseq.Open("report.json").
//	    Pages(1, 2, 3).
//	    ExcludeHeadersAndFooters().
//	    ChunkBy(rag.MethodPage).
//	    Chunks()
//
// A document runs through header/footer classification, column detection,
// consolidation, merging, reading-order sequencing and chunking. The
// [Processor] wires those stages from a [config.Config] and the optional
// I/O collaborators (OCR, chunk storage, resource archival, debug overlays).
// [ProcessAll] fans out over many documents.
package layoutseq

import (
	"fmt"
	"strings"
)

// Warning is a non-fatal issue met while processing a document
type Warning struct {
	Stage   string
	Page    int
	Message string
}

func (w Warning) String() string {
	if w.Page > 0 {
		return fmt.Sprintf("%s (page %d): %s", w.Stage, w.Page, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Stage, w.Message)
}

// FormatWarnings joins warnings into one line each
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	res := layoutseq.Must(layoutseq.NewProcessor().Process(doc))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustChunks is a helper that wraps a call to Segments() or Chunks() and
// panics if the error is non-nil. It discards warnings and returns just the
// value.
//
// Example:
//
//	chunks := layoutseq.MustChunks(layoutseq.Open("document.json").Chunks())
func MustChunks[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
