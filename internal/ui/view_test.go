package ui

import (
	"strings"
	"testing"

	"github.com/tessella-notes/tessella/internal/model"
)

func TestFlattenSkipsClosedChildren(t *testing.T) {
	open := model.NewText(model.Toggle, "open")
	open.IsOpen = true
	open.Children = []*model.Block{model.NewText(model.Paragraph, "inside open")}

	closed := model.NewText(model.Toggle, "closed")
	closed.Children = []*model.Block{model.NewText(model.Paragraph, "hidden")}

	rows := Flatten([]*model.Block{open, closed})
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[1].Depth != 1 {
		t.Errorf("child of open toggle should render at depth 1, got %d", rows[1].Depth)
	}
	if rows[2].Block.ID != closed.ID {
		t.Errorf("closed toggle's child leaked into the rows")
	}
}

func TestFlattenDescendsColumns(t *testing.T) {
	cols := model.New(model.Columns2)
	cols.Columns = [][]*model.Block{
		{model.NewText(model.Paragraph, "left")},
		{model.NewText(model.Paragraph, "right")},
	}

	rows := Flatten([]*model.Block{cols})
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[1].Block.Content != "left" || rows[2].Block.Content != "right" {
		t.Errorf("column slots out of order: %q then %q", rows[1].Block.Content, rows[2].Block.Content)
	}
}

func TestLineStripsMarkup(t *testing.T) {
	b := model.NewText(model.Paragraph, `some <b>bold</b> and a <a href="https://example.com">link</a>`)
	got := Line([]*model.Block{b}, Row{Block: b})
	want := "some bold and a link"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLineMirrorRendersTargetOrBrokenMarker(t *testing.T) {
	src := model.NewText(model.Paragraph, "the original")
	m := model.New(model.Synced)
	m.SetMeta(model.MetaOriginalBlockID, src.ID)

	line := Line([]*model.Block{src, m}, Row{Block: m})
	if !strings.Contains(line, "the original") {
		t.Errorf("mirror should render target content, got %q", line)
	}

	line = Line([]*model.Block{m}, Row{Block: m})
	if !strings.Contains(line, "broken reference") {
		t.Errorf("orphaned mirror should render a broken marker, got %q", line)
	}
}

func TestLineGeneratingPlaceholder(t *testing.T) {
	b := model.New(model.AIText)
	line := Line([]*model.Block{b}, Row{Block: b})
	if !strings.Contains(line, "generating") {
		t.Errorf("empty AI block should show a placeholder, got %q", line)
	}
}
