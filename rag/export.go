package rag

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/afero"
)

// ExportFormat defines the available export formats
type ExportFormat int

const (
	// ExportFormatJSONL exports as JSON Lines (one JSON object per line)
	ExportFormatJSONL ExportFormat = iota
	// ExportFormatJSON exports as a JSON array
	ExportFormatJSON
	// ExportFormatCSV exports as comma-separated values
	ExportFormatCSV
)

// String returns a human-readable representation of the export format
func (ef ExportFormat) String() string {
	switch ef {
	case ExportFormatJSONL:
		return "jsonl"
	case ExportFormatJSON:
		return "json"
	case ExportFormatCSV:
		return "csv"
	default:
		return "unknown"
	}
}

// FileExtension returns the typical file extension for this format
func (ef ExportFormat) FileExtension() string {
	switch ef {
	case ExportFormatJSONL:
		return ".jsonl"
	case ExportFormatJSON:
		return ".json"
	case ExportFormatCSV:
		return ".csv"
	default:
		return ".txt"
	}
}

// ParseExportFormat maps a format name onto an ExportFormat
func ParseExportFormat(name string) (ExportFormat, error) {
	switch name {
	case "jsonl", "":
		return ExportFormatJSONL, nil
	case "json":
		return ExportFormatJSON, nil
	case "csv":
		return ExportFormatCSV, nil
	}
	return 0, fmt.Errorf("unsupported export format: %q", name)
}

// ExportConfig holds configuration options for export
type ExportConfig struct {
	// Format specifies the export format
	Format ExportFormat

	// IncludeText includes the chunk content
	IncludeText bool
}

// DefaultExportConfig returns JSON Lines with content included
func DefaultExportConfig() ExportConfig {
	return ExportConfig{
		Format:      ExportFormatJSONL,
		IncludeText: true,
	}
}

// Exporter writes chunk sets in a serialized format
type Exporter struct {
	config ExportConfig
}

// NewExporter creates a new exporter with default configuration
func NewExporter() *Exporter {
	return &Exporter{
		config: DefaultExportConfig(),
	}
}

// NewExporterWithConfig creates an exporter with custom configuration
func NewExporterWithConfig(config ExportConfig) *Exporter {
	return &Exporter{
		config: config,
	}
}

// ExportedChunk is one exported record: the key, the content and the
// metadata stored alongside it
type ExportedChunk struct {
	Key      string        `json:"key"`
	Text     string        `json:"text,omitempty"`
	Metadata ChunkMetadata `json:"metadata"`
}

// Export writes the chunk set to w
func (e *Exporter) Export(set *ChunkSet, w io.Writer) error {
	records := e.prepare(set)
	switch e.config.Format {
	case ExportFormatJSONL:
		return e.exportJSONL(records, w)
	case ExportFormatJSON:
		return e.exportJSON(records, w)
	case ExportFormatCSV:
		return e.exportCSV(records, w)
	default:
		return fmt.Errorf("unsupported export format: %v", e.config.Format)
	}
}

// ExportToFile writes the chunk set to filename on fs
func (e *Exporter) ExportToFile(fs afero.Fs, set *ChunkSet, filename string) error {
	f, err := fs.Create(filename)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	return e.Export(set, f)
}

// ExportToString exports the chunk set to a string
func (e *Exporter) ExportToString(set *ChunkSet) (string, error) {
	var buf bytes.Buffer
	if err := e.Export(set, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (e *Exporter) prepare(set *ChunkSet) []ExportedChunk {
	if set == nil {
		return nil
	}
	records := make([]ExportedChunk, 0, len(set.Chunks))
	for _, c := range set.Chunks {
		rec := ExportedChunk{Key: c.Key, Metadata: NewChunkMetadata(c)}
		if e.config.IncludeText {
			rec.Text = c.Content
		}
		records = append(records, rec)
	}
	return records
}

func (e *Exporter) exportJSONL(records []ExportedChunk, w io.Writer) error {
	enc := json.NewEncoder(w)
	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encoding chunk %d: %w", i, err)
		}
	}
	return nil
}

func (e *Exporter) exportJSON(records []ExportedChunk, w io.Writer) error {
	if records == nil {
		records = []ExportedChunk{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encoding chunks: %w", err)
	}
	return nil
}

var csvHeader = []string{
	"key", "chunk_id", "page_no", "sequence_no", "bbox", "chunking_method",
	"char_count", "doc_name", "document_id", "text",
}

func (e *Exporter) exportCSV(records []ExportedChunk, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, rec := range records {
		m := rec.Metadata
		bbox := ""
		if m.BBox != nil {
			bbox = m.BBox.String()
		}
		row := []string{
			rec.Key,
			m.ChunkID,
			strconv.Itoa(m.PageNo),
			strconv.Itoa(m.SequenceNo),
			bbox,
			m.ChunkingMethod,
			strconv.Itoa(m.CharCount),
			m.DocName,
			m.DocumentID,
			rec.Text,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row %s: %w", rec.Key, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
