// Package layout provides the spatial stages of the segmentation pipeline:
// column detection, header/footer classification and reading-order
// assignment.
//
// # Column Detection
//
// The [ColumnDetector] sweeps a page's segments left to right and groups
// those whose horizontal extents chain together:
//
//	detector := layout.NewColumnDetector()
//	layouts := detector.DetectAll(segments)
//	if layouts[1].IsSingleColumn() { ... }
//
// # Header/Footer Classification
//
// The [HeaderFooterClassifier] retags segments in the header or footer zone
// of image-derived pages. Two policies exist: manually_detect uses a
// configured percentage band, auto_detect looks for isolated segments in the
// top and bottom tenth of the page.
//
// # Reading Order
//
// The [Sequencer] assigns per-page sequence numbers starting at 1:
//
//	seq := layout.NewSequencer()
//	ordered, err := seq.Sequence(merged, layouts)
//
// Single-column pages are read top to bottom. Multi-column pages default to
// the zig-zag pattern, which reads each column fully before the next.
package layout
