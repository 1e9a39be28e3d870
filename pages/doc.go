// Package pages implements the page-range selector language used to pick
// the pages a stage works on.
//
// # Selectors
//
// A [Selector] is either an integer or a range string:
//
//	3       page 3
//	-1      the last page
//	"2:4"   pages 2, 3 and 4
//	"3:"    page 3 to the last page
//	":2"    pages 1 and 2
//	"-2:"   the last two pages
//
// Negative numbers count from the end, so -1 is the highest available page.
// Ranges are inclusive. When both endpoints have the same sign they may be
// given in either order; a range mixing signs is taken literally and is
// empty when it runs backwards.
//
// # Resolution
//
// [Resolve] intersects the selected pages with the pages that actually
// exist and returns them sorted without duplicates:
//
//	sel := []pages.Selector{"1:3", "-1"}
//	got, err := pages.Resolve(sel, []int{1, 2, 3, 4, 5}) // [1 2 3 5]
//
// An empty selector list selects every available page. A selector that does
// not match the grammar yields a configuration error.
package pages
