// ABOUTME: Plain-text renderer producing markdown-style output
// ABOUTME: Used for every channel without rich block support

package render

import (
	"strings"

	"github.com/relaykit/genie-relay/internal/answer"
)

// noData is the fixed placeholder for payloads with no renderable content.
const noData = "No data available."

// Plain renders a payload as markdown-style text. Tabular payloads become a
// markdown table with an optional description header; message payloads are
// emitted verbatim with a trailing blank line. Anything else renders as the
// placeholder line.
func Plain(p answer.Payload) string {
	var b strings.Builder

	switch p.Kind {
	case answer.KindTabular:
		if p.Description != "" {
			b.WriteString("## Query Description\n\n")
			b.WriteString(p.Description)
			b.WriteString("\n\n")
		}
		b.WriteString("## Query Results\n\n")
		writeMarkdownTable(&b, p)

	case answer.KindMessage:
		b.WriteString(p.Text)
		b.WriteString("\n\n")

	default:
		b.WriteString(noData)
		b.WriteString("\n\n")
	}

	return b.String()
}

// writeMarkdownTable emits a header row, separator row, and one row per data
// row, with cells formatted by the canonical scalar rules.
func writeMarkdownTable(b *strings.Builder, p answer.Payload) {
	names := make([]string, len(p.Columns))
	for i, col := range p.Columns {
		names[i] = col.Name
	}
	b.WriteString("| " + strings.Join(names, " | ") + " |\n")

	seps := make([]string, len(p.Columns))
	for i := range seps {
		seps[i] = "---"
	}
	b.WriteString("|" + strings.Join(seps, "|") + "|\n")

	for _, row := range p.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			typeName := ""
			if i < len(p.Columns) {
				typeName = p.Columns[i].TypeName
			}
			cells[i] = answer.FormatValue(v, typeName)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
}
