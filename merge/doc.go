// Package merge fuses parallel per-technique segment streams into a single
// de-duplicated list.
//
// The [Consolidator] splits incoming streams into plain-text segments, which
// bypass merging, and opaque groups handed to the [Merger]. The merger keeps
// one segment per overlapping region and can optionally fuse spatially
// adjacent segments into blocks.
//
//	cons := merge.NewConsolidator().Consolidate(streams)
//	res := merge.NewMerger().Merge(cons.Groups...)
//	if res.NoSegments { ... }
//
// Every input segment is accounted for: it ends up in Result.Accepted or in
// Result.Dropped together with the reason it was discarded.
package merge
