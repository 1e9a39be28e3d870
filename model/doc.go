// Package model provides the data types shared by every stage of the
// segmentation pipeline.
//
// # Segments
//
// A [Segment] is a geometrically bounded unit of extracted content: a text
// line, a table, a block of text found inside an image. Segments are values;
// every stage returns a new slice and never mutates its input.
//
//	seg := model.NewSegment(1, model.NewBBox(10, 20, 300, 40), model.ContentLine, "Hello")
//
// Segments arrive in named per-technique [Stream] values (one per OCR pass or
// detector). The "text" technique marks plain-text sources without geometry.
//
// # Geometry
//
// [BBox] is an axis-aligned box in the canonical [x1,y1,x2,y2] form with Y
// growing downward. The primitives used for spatial reasoning are:
//
//   - [BBox.Overlaps] - strict interior overlap, touching edges excluded
//   - [IsAdjacent] - vertical or horizontal proximity within pixel gaps
//   - [Envelope] - componentwise min/max over any number of boxes
//
// # Chunks
//
// A [Chunk] groups sequenced segments for embedding/indexing. Chunks hold
// independent copies of content and geometry.
//
// # Errors
//
// [ConfigurationError] and [StageError] form the error taxonomy surfaced by
// the pipeline. Empty input is never an error.
package model
