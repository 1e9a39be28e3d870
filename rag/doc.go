// Package rag groups sequenced segments into chunks ready for embedding and
// indexing.
//
// # Chunking
//
// The [Chunker] turns the output of the sequencer into a [ChunkSet]:
//
//	chunker := rag.NewChunker()
//	set, err := chunker.Generate(segments, rag.DocumentInfo{
//	    DocName:    "report.pdf",
//	    DocumentID: "a1b2c3d4-...",
//	})
//
// Three methods are supported:
//
//   - page_and_segment_type - group by page and content bucket (text, table, image)
//   - page - one chunk per page
//   - segment - one chunk per segment
//
// With page_and_segment_type, keep_together concatenates every enabled bucket
// of a page into one chunk, while keep_seperate gives each bucket its own
// chunks: all text of a page forms one chunk and every table or image block
// forms its own.
//
// # Page Selection
//
// ChunkerConfig.PageNum restricts chunking to the pages selected with the
// selector language of package pages. An invalid selector aborts the run
// with a configuration error.
//
// # Cleaning
//
// Segment content is trimmed, normalized to Unicode NFC, rewritten with the
// configured find/replace rules and suffixed with the segment delimiter
// before grouping.
//
// # Output
//
// [ChunkSet.ChunkMap] maps chunk keys to content and [ChunkSet.MetadataMap]
// maps "{key}.txt_metadata" to [ChunkMetadata]. The [Exporter] writes chunk
// sets as JSON Lines, JSON or CSV.
package rag
