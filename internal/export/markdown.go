// Package export renders a block tree back to markdown text.
package export

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tessella-notes/tessella/internal/model"
)

var tagRe = regexp.MustCompile(`</?(b|i|s|code|a)(\s[^>]*)?>`)

// Markdown renders the tree as markdown. Nested children indent two spaces
// per level; column slots render sequentially left to right.
func Markdown(blocks []*model.Block) string {
	var sb strings.Builder
	writeBlocks(&sb, blocks, 0)
	return sb.String()
}

func writeBlocks(sb *strings.Builder, blocks []*model.Block, depth int) {
	ordinal := 0
	for _, b := range blocks {
		if b.Type == model.Numbered {
			ordinal++
		} else {
			ordinal = 0
		}
		writeBlock(sb, b, depth, ordinal)
	}
}

func writeBlock(sb *strings.Builder, b *model.Block, depth, ordinal int) {
	indent := strings.Repeat("  ", depth)

	switch b.Type {
	case model.Heading1, model.ToggleHeading1:
		fmt.Fprintf(sb, "%s# %s\n", indent, plain(b.Content))
	case model.Heading2, model.ToggleHeading2:
		fmt.Fprintf(sb, "%s## %s\n", indent, plain(b.Content))
	case model.Heading3, model.ToggleHeading3:
		fmt.Fprintf(sb, "%s### %s\n", indent, plain(b.Content))
	case model.Bullet, model.Toggle:
		fmt.Fprintf(sb, "%s- %s\n", indent, plain(b.Content))
	case model.Numbered:
		fmt.Fprintf(sb, "%s%d. %s\n", indent, ordinal, plain(b.Content))
	case model.Todo:
		mark := " "
		if b.Checked {
			mark = "x"
		}
		fmt.Fprintf(sb, "%s- [%s] %s\n", indent, mark, plain(b.Content))
	case model.Quote, model.Callout:
		fmt.Fprintf(sb, "%s> %s\n", indent, plain(b.Content))
	case model.CollapsibleQuote:
		fmt.Fprintf(sb, "%s>! %s\n", indent, plain(b.Content))
	case model.Code:
		fmt.Fprintf(sb, "%s```%s\n", indent, b.Language)
		for _, line := range strings.Split(b.Content, "\n") {
			fmt.Fprintf(sb, "%s%s\n", indent, line)
		}
		fmt.Fprintf(sb, "%s```\n", indent)
	case model.Divider:
		fmt.Fprintf(sb, "%s---\n", indent)
	case model.Columns2, model.Columns3:
		for _, col := range b.Columns {
			writeBlocks(sb, col, depth)
		}
		return
	case model.Synced:
		// Mirrors own no content; the host resolves them before export.
		return
	default:
		if strings.TrimSpace(b.Content) == "" && len(b.Children) == 0 {
			return
		}
		fmt.Fprintf(sb, "%s%s\n", indent, plain(b.Content))
	}

	writeBlocks(sb, b.Children, depth+1)
}

// plain rewrites the sanitized markup back to markdown emphasis.
func plain(s string) string {
	s = strings.ReplaceAll(s, "<b>", "**")
	s = strings.ReplaceAll(s, "</b>", "**")
	s = strings.ReplaceAll(s, "<i>", "*")
	s = strings.ReplaceAll(s, "</i>", "*")
	s = strings.ReplaceAll(s, "<s>", "~~")
	s = strings.ReplaceAll(s, "</s>", "~~")
	s = strings.ReplaceAll(s, "<code>", "`")
	s = strings.ReplaceAll(s, "</code>", "`")
	// Anything left over (links and unexpected tags) is stripped.
	s = tagRe.ReplaceAllString(s, "")
	return s
}
