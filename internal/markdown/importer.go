// Package markdown converts pasted plain text into block sequences.
//
// The importer is line-oriented and single-pass. Line forms are checked in a
// fixed precedence order; anything unrecognized falls back to a paragraph,
// never an error.
package markdown

import (
	"bufio"
	"regexp"
	"strings"

	"github.com/tessella-notes/tessella/internal/model"
)

var (
	fenceRe    = regexp.MustCompile("^```\\s*(\\S*)\\s*$")
	headingRe  = regexp.MustCompile(`^(#{1,4})\s+(.*)$`)
	todoRe     = regexp.MustCompile(`^\s*-\s+\[([ xX])\]\s+(.*)$`)
	bulletRe   = regexp.MustCompile(`^\s*[-*]\s+(.*)$`)
	numberedRe = regexp.MustCompile(`^\s*\d+\.\s+(.*)$`)
	breakRe    = regexp.MustCompile(`^\s*(-{3,}|\*{3,}|_{3,})\s*$`)

	boldRe   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicRe = regexp.MustCompile(`\*([^*]+)\*`)
	codeRe   = regexp.MustCompile("`([^`]+)`")
	linkRe   = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	strikeRe = regexp.MustCompile(`~~(.+?)~~`)
)

// Parse converts pasted text into an ordered block sequence. Inline
// emphasis is rewritten within each parsed line; fence content is exempt.
func Parse(text string) []*model.Block {
	var blocks []*model.Block
	var listRun []*model.Block

	inFence := false
	var fenceLang string
	var fenceBody []string

	flushRun := func() {
		blocks = append(blocks, listRun...)
		listRun = nil
	}
	flushFence := func() {
		code := model.NewText(model.Code, strings.Join(fenceBody, "\n"))
		code.Language = fenceLang
		blocks = append(blocks, code)
		inFence = false
		fenceLang = ""
		fenceBody = nil
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if inFence {
			if fenceRe.MatchString(line) {
				flushFence()
				continue
			}
			// Fence content passes through verbatim, markup untouched.
			fenceBody = append(fenceBody, line)
			continue
		}

		if m := fenceRe.FindStringSubmatch(line); m != nil {
			flushRun()
			inFence = true
			fenceLang = m[1]
			continue
		}

		if m := headingRe.FindStringSubmatch(line); m != nil {
			flushRun()
			level := len(m[1])
			if level > 3 {
				level = 3 // #### folds into the deepest heading
			}
			types := []model.Type{model.Heading1, model.Heading2, model.Heading3}
			blocks = append(blocks, model.NewText(types[level-1], inline(m[2])))
			continue
		}

		if m := todoRe.FindStringSubmatch(line); m != nil {
			flushRun()
			b := model.NewText(model.Todo, inline(m[2]))
			b.Checked = m[1] != " "
			blocks = append(blocks, b)
			continue
		}

		// Thematic break outranks the bullet pattern for lines like "---".
		if breakRe.MatchString(line) {
			flushRun()
			blocks = append(blocks, model.New(model.Divider))
			continue
		}

		if m := bulletRe.FindStringSubmatch(line); m != nil {
			listRun = append(listRun, model.NewText(model.Bullet, inline(m[1])))
			continue
		}

		if m := numberedRe.FindStringSubmatch(line); m != nil {
			listRun = append(listRun, model.NewText(model.Numbered, inline(m[1])))
			continue
		}

		if rest, ok := strings.CutPrefix(line, ">!"); ok {
			flushRun()
			b := model.NewText(model.CollapsibleQuote, inline(strings.TrimSpace(rest)))
			blocks = append(blocks, b)
			continue
		}

		if rest, ok := strings.CutPrefix(line, ">"); ok {
			flushRun()
			blocks = append(blocks, model.NewText(model.Quote, inline(strings.TrimSpace(rest))))
			continue
		}

		if strings.TrimSpace(line) == "" {
			flushRun()
			continue
		}

		flushRun()
		blocks = append(blocks, model.NewText(model.Paragraph, inline(line)))
	}

	flushRun()
	if inFence {
		// Unterminated fence at end of input still becomes a code block.
		flushFence()
	}
	return blocks
}

// inline rewrites markdown emphasis to the sanitized markup the rich-text
// payload uses. Bold runs before italic so ** is not eaten pairwise by *.
func inline(s string) string {
	s = codeRe.ReplaceAllString(s, "<code>$1</code>")
	s = boldRe.ReplaceAllString(s, "<b>$1</b>")
	s = italicRe.ReplaceAllString(s, "<i>$1</i>")
	s = strikeRe.ReplaceAllString(s, "<s>$1</s>")
	s = linkRe.ReplaceAllString(s, `<a href="$2">$1</a>`)
	return s
}
