// Package tree holds the pure operations over a block tree.
//
// Every operation takes the whole root sequence and returns a new one; the
// input is never mutated. Nodes untouched by an operation are shared between
// input and output, so the host can detect change by pointer comparison.
// Operations are total over "not found": a missing id degrades to a no-op
// because UI-driven calls routinely race against deletions.
package tree

import (
	"strings"

	"github.com/tessella-notes/tessella/internal/model"
)

// Find returns the block with the given id, searching depth-first through
// children and column slots. Ids are unique, so the first match is the only
// one. Returns nil when the id is absent.
func Find(blocks []*model.Block, id string) *model.Block {
	var found *model.Block
	model.Walk(blocks, func(b *model.Block) bool {
		if b.ID == id {
			found = b
			return false
		}
		return true
	})
	return found
}

// Patch describes a partial update to a block. Nil fields are left alone.
// Metadata entries are merged into the existing bag.
type Patch struct {
	Type            *model.Type
	Content         *string
	IsOpen          *bool
	Checked         *bool
	CalloutType     *string
	Language        *string
	TextColor       *string
	BackgroundColor *string
	Metadata        map[string]any
	Comments        []model.Comment // appended
}

func (p Patch) apply(b *model.Block) *model.Block {
	c := b.Clone()
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.Content != nil {
		c.Content = *p.Content
	}
	if p.IsOpen != nil {
		c.IsOpen = *p.IsOpen
	}
	if p.Checked != nil {
		c.Checked = *p.Checked
	}
	if p.CalloutType != nil {
		c.CalloutType = *p.CalloutType
	}
	if p.Language != nil {
		c.Language = *p.Language
	}
	if p.TextColor != nil {
		c.TextColor = *p.TextColor
	}
	if p.BackgroundColor != nil {
		c.BackgroundColor = *p.BackgroundColor
	}
	for k, v := range p.Metadata {
		c.SetMeta(k, v)
	}
	c.Comments = append(c.Comments, p.Comments...)
	return c
}

// Update merges patch into the block with the given id. Every other node is
// returned untouched. The second result reports whether the id was found.
func Update(blocks []*model.Block, id string, patch Patch) ([]*model.Block, bool) {
	return mapBlocks(blocks, id, func(b *model.Block) *model.Block {
		return patch.apply(b)
	})
}

// SetContent is the common single-field update.
func SetContent(blocks []*model.Block, id, content string) ([]*model.Block, bool) {
	return Update(blocks, id, Patch{Content: &content})
}

// mapBlocks replaces the block with the given id by fn(b), copying only the
// path from the root down to it.
func mapBlocks(blocks []*model.Block, id string, fn func(*model.Block) *model.Block) ([]*model.Block, bool) {
	for i, b := range blocks {
		if b.ID == id {
			out := copyWith(blocks, i, fn(b))
			return out, true
		}
		if kids, ok := mapBlocks(b.Children, id, fn); ok {
			c := shallow(b)
			c.Children = kids
			return copyWith(blocks, i, c), true
		}
		for ci, col := range b.Columns {
			if slot, ok := mapBlocks(col, id, fn); ok {
				c := shallow(b)
				c.Columns = copyColumns(b.Columns, ci, slot)
				return copyWith(blocks, i, c), true
			}
		}
	}
	return blocks, false
}

// shallow copies a block so its slices can be swapped without touching the
// original. Descendants stay shared.
func shallow(b *model.Block) *model.Block {
	c := *b
	return &c
}

func copyWith(blocks []*model.Block, i int, b *model.Block) []*model.Block {
	out := make([]*model.Block, len(blocks))
	copy(out, blocks)
	out[i] = b
	return out
}

func copyColumns(cols [][]*model.Block, i int, slot []*model.Block) [][]*model.Block {
	out := make([][]*model.Block, len(cols))
	copy(out, cols)
	out[i] = slot
	return out
}

func removeAt(blocks []*model.Block, i int) []*model.Block {
	out := make([]*model.Block, 0, len(blocks)-1)
	out = append(out, blocks[:i]...)
	return append(out, blocks[i+1:]...)
}

func insertAt(blocks []*model.Block, i int, b *model.Block) []*model.Block {
	out := make([]*model.Block, 0, len(blocks)+1)
	out = append(out, blocks[:i]...)
	out = append(out, b)
	return append(out, blocks[i:]...)
}

// Delete removes the block with the given id from wherever it sits. Callers
// that need a non-empty document reseed a placeholder; that policy lives at
// the UI boundary.
func Delete(blocks []*model.Block, id string) ([]*model.Block, bool) {
	out, removed := Detach(blocks, id)
	return out, removed != nil
}

// Detach removes the block with the given id and returns it with its whole
// subtree intact. The drag engine uses this before reinsertion so identity
// survives a move.
func Detach(blocks []*model.Block, id string) ([]*model.Block, *model.Block) {
	for i, b := range blocks {
		if b.ID == id {
			return removeAt(blocks, i), b
		}
		if kids, removed := Detach(b.Children, id); removed != nil {
			c := shallow(b)
			c.Children = kids
			return copyWith(blocks, i, c), removed
		}
		for ci, col := range b.Columns {
			if slot, removed := Detach(col, id); removed != nil {
				c := shallow(b)
				c.Columns = copyColumns(b.Columns, ci, slot)
				return copyWith(blocks, i, c), removed
			}
		}
	}
	return blocks, nil
}

// InsertAfter inserts newBlock immediately following the anchor in the
// anchor's own container. A missing anchor is a no-op, not an error.
func InsertAfter(blocks []*model.Block, anchorID string, newBlock *model.Block) ([]*model.Block, bool) {
	return insertNear(blocks, anchorID, newBlock, 1)
}

// InsertBefore inserts newBlock immediately preceding the anchor.
func InsertBefore(blocks []*model.Block, anchorID string, newBlock *model.Block) ([]*model.Block, bool) {
	return insertNear(blocks, anchorID, newBlock, 0)
}

func insertNear(blocks []*model.Block, anchorID string, newBlock *model.Block, offset int) ([]*model.Block, bool) {
	for i, b := range blocks {
		if b.ID == anchorID {
			return insertAt(blocks, i+offset, newBlock), true
		}
		if kids, ok := insertNear(b.Children, anchorID, newBlock, offset); ok {
			c := shallow(b)
			c.Children = kids
			return copyWith(blocks, i, c), true
		}
		for ci, col := range b.Columns {
			if slot, ok := insertNear(col, anchorID, newBlock, offset); ok {
				c := shallow(b)
				c.Columns = copyColumns(b.Columns, ci, slot)
				return copyWith(blocks, i, c), true
			}
		}
	}
	return blocks, false
}

// Duplicate deep-clones the subtree rooted at id, giving the clone and every
// descendant a freshly generated id, and inserts it immediately after the
// source in the same container. Returns the clone's id.
func Duplicate(blocks []*model.Block, id string) ([]*model.Block, string, bool) {
	src := Find(blocks, id)
	if src == nil {
		return blocks, "", false
	}
	clone := src.CloneFresh()
	out, _ := InsertAfter(blocks, id, clone)
	return out, clone.ID, true
}

// Indent moves the block under its immediately preceding sibling, appending
// it to that sibling's children and forcing the sibling open. No-op when the
// block is the first sibling of its container or the sibling's type cannot
// own children.
func Indent(blocks []*model.Block, id string) ([]*model.Block, bool) {
	for i, b := range blocks {
		if b.ID == id {
			if i == 0 || !blocks[i-1].Type.Nests() {
				return blocks, false
			}
			prev := shallow(blocks[i-1])
			prev.Children = append(append([]*model.Block{}, blocks[i-1].Children...), b)
			prev.IsOpen = true
			out := removeAt(blocks, i)
			out[i-1] = prev
			return out, true
		}
		if kids, ok := Indent(b.Children, id); ok {
			c := shallow(b)
			c.Children = kids
			return copyWith(blocks, i, c), true
		}
		for ci, col := range b.Columns {
			if slot, ok := Indent(col, id); ok {
				c := shallow(b)
				c.Columns = copyColumns(b.Columns, ci, slot)
				return copyWith(blocks, i, c), true
			}
		}
	}
	return blocks, false
}

// Outdent removes the block from its parent's children and reinserts it as a
// sibling immediately after the parent. No-op for top-level blocks.
func Outdent(blocks []*model.Block, id string) ([]*model.Block, bool) {
	for i, b := range blocks {
		for ki, kid := range b.Children {
			if kid.ID == id {
				c := shallow(b)
				c.Children = removeAt(b.Children, ki)
				out := copyWith(blocks, i, c)
				return insertAt(out, i+1, kid), true
			}
		}
		if kids, ok := Outdent(b.Children, id); ok {
			c := shallow(b)
			c.Children = kids
			return copyWith(blocks, i, c), true
		}
		for ci, col := range b.Columns {
			if slot, ok := Outdent(col, id); ok {
				c := shallow(b)
				c.Columns = copyColumns(b.Columns, ci, slot)
				return copyWith(blocks, i, c), true
			}
		}
	}
	return blocks, false
}

// MergeWithPrevious concatenates the block's content onto its previous
// sibling (space-joined) and removes the block. Unchanged when the block has
// no previous sibling.
func MergeWithPrevious(blocks []*model.Block, id string) ([]*model.Block, bool) {
	for i, b := range blocks {
		if b.ID == id {
			if i == 0 {
				return blocks, false
			}
			prev := blocks[i-1].Clone()
			switch {
			case b.Content == "":
			case prev.Content == "":
				prev.Content = b.Content
			default:
				prev.Content = strings.TrimRight(prev.Content, " ") + " " + b.Content
			}
			out := removeAt(blocks, i)
			out[i-1] = prev
			return out, true
		}
		if kids, ok := MergeWithPrevious(b.Children, id); ok {
			c := shallow(b)
			c.Children = kids
			return copyWith(blocks, i, c), true
		}
		for ci, col := range b.Columns {
			if slot, ok := MergeWithPrevious(col, id); ok {
				c := shallow(b)
				c.Columns = copyColumns(b.Columns, ci, slot)
				return copyWith(blocks, i, c), true
			}
		}
	}
	return blocks, false
}
