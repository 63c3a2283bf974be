// ABOUTME: Block renderer producing a Block-Kit-style layout for rich channels
// ABOUTME: Fixed-width table in a code fence, hard-capped at the transport limit

package render

import (
	"strings"
	"unicode/utf8"

	"github.com/relaykit/genie-relay/internal/answer"
)

// maxTableChars is the transport's ceiling for a single text field. The
// rendered table is truncated to this many characters before fencing; the
// limit is a payload-size constraint of the channel, not a tunable.
const maxTableChars = 2950

// Block is one element of a rich reply layout.
type Block struct {
	Type string      `json:"type"`
	Text *TextObject `json:"text,omitempty"`
}

// TextObject carries the mrkdwn text of a section block.
type TextObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Section builds a section block with mrkdwn text.
func Section(text string) Block {
	return Block{Type: "section", Text: &TextObject{Type: "mrkdwn", Text: text}}
}

// Divider builds a divider block.
func Divider() Block {
	return Block{Type: "divider"}
}

// Blocks renders a payload as a block sequence. Tabular payloads become an
// optional description section plus divider, a results heading, and a
// fixed-width table wrapped in a code fence. Message payloads become a single
// section; anything else renders as the placeholder section.
func Blocks(p answer.Payload) []Block {
	var blocks []Block

	switch p.Kind {
	case answer.KindTabular:
		if p.Description != "" {
			blocks = append(blocks, Section("*Query Description:*\n"+p.Description))
			blocks = append(blocks, Divider())
		}
		blocks = append(blocks, Section("*Query Results:*"))
		blocks = append(blocks, Section("```"+truncateTable(fixedWidthTable(p))+"```"))

	case answer.KindMessage:
		blocks = append(blocks, Section(p.Text))

	default:
		blocks = append(blocks, Section(noData))
	}

	return blocks
}

// fixedWidthTable renders the rows with each column padded to the width of its
// widest formatted cell (or its header, whichever is wider).
func fixedWidthTable(p answer.Payload) string {
	widths := make([]int, len(p.Columns))
	names := make([]string, len(p.Columns))
	for i, col := range p.Columns {
		names[i] = col.Name
		widths[i] = len(col.Name)
	}

	formatted := make([][]string, len(p.Rows))
	for r, row := range p.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			typeName := ""
			if i < len(p.Columns) {
				typeName = p.Columns[i].TypeName
			}
			cells[i] = answer.FormatValue(v, typeName)
			if i < len(widths) && len(cells[i]) > widths[i] {
				widths[i] = len(cells[i])
			}
		}
		formatted[r] = cells
	}

	var b strings.Builder
	writePaddedRow(&b, names, widths)

	seps := make([]string, len(widths))
	for i, w := range widths {
		seps[i] = strings.Repeat("-", w)
	}
	b.WriteString(strings.Join(seps, "-+-"))
	b.WriteByte('\n')

	for _, row := range formatted {
		writePaddedRow(&b, row, widths)
	}
	return b.String()
}

func writePaddedRow(b *strings.Builder, cells []string, widths []int) {
	padded := make([]string, len(cells))
	for i, c := range cells {
		w := len(c)
		if i < len(widths) {
			w = widths[i]
		}
		padded[i] = c + strings.Repeat(" ", max(0, w-len(c)))
	}
	b.WriteString(strings.Join(padded, " | "))
	b.WriteByte('\n')
}

// truncateTable caps the table text at maxTableChars characters, marking
// truncation with an ellipsis. The cut falls on a rune boundary so a multibyte
// character is never split.
func truncateTable(s string) string {
	if utf8.RuneCountInString(s) <= maxTableChars {
		return s
	}
	return string([]rune(s)[:maxTableChars]) + "..."
}
