package textsource

import (
	"strings"

	"golang.org/x/net/html"
)

// parsedTable represents a table extracted from HTML
type parsedTable struct {
	Rows      [][]string
	HasHeader bool
}

func parseTable(tableNode *html.Node) parsedTable {
	var t parsedTable
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "thead", "tbody", "tfoot":
				visit(c)
			case "tr":
				row, header := parseRow(c)
				if len(row) == 0 {
					continue
				}
				if len(t.Rows) == 0 && header {
					t.HasHeader = true
				}
				t.Rows = append(t.Rows, row)
			}
		}
	}
	visit(tableNode)
	return t
}

// parseRow returns the cell texts of tr and whether every cell is a <th>
func parseRow(tr *html.Node) ([]string, bool) {
	var cells []string
	allHeader := true
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
			continue
		}
		if c.Data == "td" {
			allHeader = false
		}
		cells = append(cells, textContent(c))
	}
	return cells, allHeader && len(cells) > 0
}

// ToMarkdown converts the table to markdown format. A table without a
// header row gets an empty one so that every data row survives.
func (t parsedTable) ToMarkdown() string {
	if len(t.Rows) == 0 {
		return ""
	}

	width := 0
	for _, row := range t.Rows {
		width = max(width, len(row))
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("|")
		for i := 0; i < width; i++ {
			cell := ""
			if i < len(cells) {
				cell = escapeMarkdown(cells[i])
			}
			b.WriteString(" " + cell + " |")
		}
		b.WriteString("\n")
	}

	rows := t.Rows
	if t.HasHeader {
		writeRow(rows[0])
		rows = rows[1:]
	} else {
		writeRow(nil)
	}
	b.WriteString("|" + strings.Repeat(" --- |", width) + "\n")
	for _, row := range rows {
		writeRow(row)
	}
	return b.String()
}

// escapeMarkdown escapes pipes and drops line breaks inside a cell
func escapeMarkdown(text string) string {
	r := strings.NewReplacer("|", `\|`, "\n", " ", "\r", "")
	return r.Replace(text)
}
