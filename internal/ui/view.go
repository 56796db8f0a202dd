package ui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tessella-notes/tessella/internal/mirror"
	"github.com/tessella-notes/tessella/internal/model"
)

// Row is one rendered line: a block plus its display depth.
type Row struct {
	Block *model.Block
	Depth int
}

// Flatten turns the tree into display rows, descending open containers and
// column slots in order.
func Flatten(blocks []*model.Block) []Row {
	var rows []Row
	flattenInto(&rows, blocks, 0)
	return rows
}

func flattenInto(rows *[]Row, blocks []*model.Block, depth int) {
	for _, b := range blocks {
		*rows = append(*rows, Row{Block: b, Depth: depth})
		if b.IsOpen {
			flattenInto(rows, b.Children, depth+1)
		}
		for _, col := range b.Columns {
			flattenInto(rows, col, depth+1)
		}
	}
}

var markupRe = regexp.MustCompile(`</?[a-z]+(\s[^>]*)?>`)

// Line renders one row as text: indentation, a type marker, and the content
// with markup stripped. Mirrors render their resolved target's content, or a
// broken-link marker.
func Line(tree []*model.Block, r Row) string {
	b := r.Block
	content := markupRe.ReplaceAllString(b.Content, "")

	marker := ""
	switch b.Type {
	case model.Heading1:
		marker = "# "
	case model.Heading2:
		marker = "## "
	case model.Heading3:
		marker = "### "
	case model.Bullet:
		marker = "• "
	case model.Numbered:
		marker = "1. "
	case model.Todo:
		if b.Checked {
			marker = "[x] "
		} else {
			marker = "[ ] "
		}
	case model.Toggle:
		if b.IsOpen {
			marker = "▾ "
		} else {
			marker = "▸ "
		}
	case model.Quote, model.CollapsibleQuote:
		marker = "> "
	case model.Code:
		marker = "{} "
		content = strings.ReplaceAll(b.Content, "\n", "⏎")
	case model.Divider:
		content = strings.Repeat("─", 20)
	case model.Columns2, model.Columns3:
		content = "columns"
		marker = "│ "
	case model.Synced:
		target, err := mirror.Resolve(tree, b)
		if err != nil {
			return fmt.Sprintf("%s⟲ (broken reference)", strings.Repeat("  ", r.Depth))
		}
		marker = "⟲ "
		content = markupRe.ReplaceAllString(target.Content, "")
	case model.AIText, model.AISummary, model.AIActionItems:
		marker = "✦ "
		if content == "" {
			content = "(generating…)"
		}
	}

	return strings.Repeat("  ", r.Depth) + marker + content
}
