package layoutseq_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/afero"

	"github.com/tsawler/layoutseq"
	"github.com/tsawler/layoutseq/config"
	"github.com/tsawler/layoutseq/rag"
)

// These examples verify the README code samples compile correctly.
// They are not meant to be run as actual tests since they require files.

func Example_chunks() {
	chunks, warnings, err := layoutseq.Open("document.json").Chunks()
	if err != nil {
		log.Fatal(err)
	}

	for _, key := range chunks.Keys() {
		c, _ := chunks.Get(key)
		fmt.Printf("[%s] %s\n", key, c.Content)
	}

	for _, w := range warnings {
		fmt.Println("Warning:", w.Message)
	}
}

func Example_withOptions() {
	chunks, warnings, err := layoutseq.Open("document.json").
		Pages(1, 2, 3).             // Only chunk these pages
		ExcludeHeadersAndFooters(). // Detect running headers/footers and drop them
		ChunkBy(rag.MethodPage).    // One chunk per page
		Chunks()
	_ = chunks
	_ = warnings
	_ = err
}

func Example_processor() {
	cfg, err := config.Load(afero.NewOsFs(), "layoutseq.yaml")
	if err != nil {
		log.Fatal(err)
	}

	p := layoutseq.NewProcessorWithConfig(cfg, nil).WithStorage(afero.NewOsFs())

	doc, err := layoutseq.LoadDocument(afero.NewOsFs(), "document.json")
	if err != nil {
		log.Fatal(err)
	}

	res, err := p.Process(doc)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(len(res.Saved.ChunkFiles), "chunks written")
}

func Example_batch() {
	var docs []*layoutseq.Document
	for _, path := range os.Args[1:] {
		docs = append(docs, layoutseq.Must(layoutseq.LoadDocument(afero.NewOsFs(), path)))
	}

	results, err := layoutseq.ProcessAll(context.Background(), layoutseq.NewProcessor(), docs, 4)
	if err != nil {
		log.Println("some documents failed:", err)
	}
	for _, r := range results {
		if r.Err == nil {
			fmt.Println(r.Document.DocumentID, r.Result.Chunks.Count())
		}
	}
}

func Example_export() {
	chunks := layoutseq.MustChunks(layoutseq.Open("document.json").Chunks())

	out, err := rag.NewExporter().ExportToString(chunks)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(out)
}
