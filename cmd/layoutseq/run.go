package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/tsawler/layoutseq"
	"github.com/tsawler/layoutseq/ocr"
	"github.com/tsawler/layoutseq/rag"
)

// RunCmd processes documents and exports or saves their chunks
func RunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [flags] [DOCUMENT.json...]",
		Short: "Process documents into chunks",
		RunE:  runDocuments,
	}

	cmd.Flags().StringSlice("input", nil, "document to process; repeatable, combined with positional arguments")
	cmd.Flags().String("out", "", "directory for exported chunk files; stdout when empty")
	cmd.Flags().String("format", rag.ExportFormatJSONL.String(), "export format: jsonl, json or csv")
	cmd.Flags().Bool("save", false, "write chunk and metadata files under storage.chunks_path")
	cmd.Flags().Bool("ocr", false, "recognize page images with Tesseract (needs -tags ocr)")
	cmd.Flags().Int("concurrency", 4, "documents processed in parallel")
	return cmd
}

func runDocuments(cmd *cobra.Command, args []string) error {
	fs := afero.NewOsFs()

	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, fs)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	inputs, _ := flags.GetStringSlice("input")
	inputs = append(inputs, args...)
	if len(inputs) == 0 {
		return errors.New("no input documents")
	}

	outDir, _ := flags.GetString("out")
	formatName, _ := flags.GetString("format")
	save, _ := flags.GetBool("save")
	useOCR, _ := flags.GetBool("ocr")
	concurrency, _ := flags.GetInt("concurrency")

	format, err := rag.ParseExportFormat(formatName)
	if err != nil {
		return err
	}

	p := layoutseq.NewProcessorWithConfig(cfg, log).WithFs(fs)
	if save {
		p.WithStorage(fs)
	}
	if useOCR {
		client, err := ocr.New()
		if err != nil {
			return err
		}
		defer client.Close()
		if err := ocr.Configure(client, cfg.OCR); err != nil {
			return fmt.Errorf("configuring OCR: %w", err)
		}
		p.WithOCR(client)
	}

	docs := make([]*layoutseq.Document, 0, len(inputs))
	for _, path := range inputs {
		doc, err := layoutseq.LoadDocument(fs, path)
		if err != nil {
			return err
		}
		log.Info("document loaded",
			"path", path,
			"document_id", doc.DocumentID,
			"segments", doc.SegmentCount(),
			"techniques", doc.Techniques())
		docs = append(docs, doc)
	}

	results, batchErr := layoutseq.ProcessAll(cmd.Context(), p, docs, concurrency)

	exporter := rag.NewExporterWithConfig(rag.ExportConfig{Format: format, IncludeText: true})
	for _, r := range results {
		if r.Err != nil {
			log.Error("document failed", "document_id", r.Document.DocumentID, "err", r.Err)
			continue
		}
		for _, w := range r.Result.Warnings {
			log.Warn(w.Message, "document_id", r.Document.DocumentID, "stage", w.Stage, "page", w.Page)
		}
		if err := export(exporter, format, fs, cmd, outDir, r.Result); err != nil {
			return err
		}
	}
	return batchErr
}

func export(exporter *rag.Exporter, format rag.ExportFormat, fs afero.Fs, cmd *cobra.Command, outDir string, res *layoutseq.Result) error {
	if outDir == "" {
		return exporter.Export(res.Chunks, cmd.OutOrStdout())
	}
	if err := fs.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", outDir, err)
	}
	id := res.DocumentID
	if id == "" {
		id = "chunks"
	}
	name := filepath.Join(outDir, id+format.FileExtension())
	return exporter.ExportToFile(fs, res.Chunks, name)
}
