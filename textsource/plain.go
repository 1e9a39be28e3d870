package textsource

import (
	"strings"

	"github.com/tsawler/layoutseq/model"
)

// splitPlain returns one block per paragraph. Form feeds start a new page;
// blank lines end a paragraph. Lines of a paragraph are joined with a space.
func splitPlain(text string) []block {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var blocks []block
	for i, pageText := range strings.Split(text, "\f") {
		var para []string
		flush := func() {
			if len(para) > 0 {
				blocks = append(blocks, block{
					page:        i + 1,
					contentType: model.ContentLine,
					text:        strings.Join(para, " "),
				})
				para = nil
			}
		}

		for _, line := range strings.Split(pageText, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				flush()
				continue
			}
			para = append(para, line)
		}
		flush()
	}
	return blocks
}
