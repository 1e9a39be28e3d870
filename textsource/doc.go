// Package textsource reads documents that carry no geometry.
//
// Plain-text, Markdown and HTML files become a single stream with technique
// "text".
// Their segments have no bounding box, so the pipeline skips header/footer
// classification and column detection for them and sequences them in
// document order.
//
// Plain text is split into pages on form feeds and into segments on blank
// lines. HTML is walked block by block; navigation and boilerplate are
// dropped according to the configured [NavigationMode], and tables become
// markdown table segments. Markdown is parsed with goldmark and walked the
// same way, with pipe tables kept as table segments.
package textsource
