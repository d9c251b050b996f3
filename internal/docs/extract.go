package docs

import (
	"strings"

	docs "google.golang.org/api/docs/v1"
)

// ExtractText flattens a document to plain text. Paragraph text is joined
// as-is; table cells are joined with tabs, one table row per line. Tabbed
// documents are flattened tab by tab with a title separator.
func ExtractText(doc *docs.Document) string {
	if doc == nil {
		return ""
	}
	var sb strings.Builder

	if len(doc.Tabs) > 0 {
		for i, tab := range doc.Tabs {
			writeTab(&sb, tab, i)
		}
		return sb.String()
	}
	if doc.Body != nil {
		writeContent(&sb, doc.Body.Content)
	}
	return sb.String()
}

func writeTab(sb *strings.Builder, tab *docs.Tab, index int) {
	title := ""
	if tab.TabProperties != nil {
		title = tab.TabProperties.Title
	}
	if title != "" {
		sb.WriteString("=== " + title + " ===\n")
	} else if index > 0 {
		sb.WriteString("===\n")
	}
	if tab.DocumentTab != nil && tab.DocumentTab.Body != nil {
		writeContent(sb, tab.DocumentTab.Body.Content)
	}
	for i, child := range tab.ChildTabs {
		writeTab(sb, child, i)
	}
}

func writeContent(sb *strings.Builder, content []*docs.StructuralElement) {
	for _, element := range content {
		switch {
		case element.Paragraph != nil:
			writeParagraph(sb, element.Paragraph)
		case element.Table != nil:
			writeTable(sb, element.Table)
		}
	}
}

func writeParagraph(sb *strings.Builder, para *docs.Paragraph) {
	for _, elem := range para.Elements {
		if elem.TextRun != nil {
			sb.WriteString(elem.TextRun.Content)
		}
	}
}

func writeTable(sb *strings.Builder, table *docs.Table) {
	for _, row := range table.TableRows {
		cells := make([]string, 0, len(row.TableCells))
		for _, cell := range row.TableCells {
			var cellText strings.Builder
			writeContent(&cellText, cell.Content)
			cells = append(cells, strings.TrimRight(cellText.String(), "\n"))
		}
		sb.WriteString(strings.Join(cells, "\t"))
		sb.WriteString("\n")
	}
}
