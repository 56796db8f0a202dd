// Package mirror implements synced blocks: containers that render another
// block's subtree by reference instead of owning content.
package mirror

import (
	"errors"

	"github.com/tessella-notes/tessella/internal/model"
	"github.com/tessella-notes/tessella/internal/tree"
)

// ErrBrokenReference marks a mirror whose target id no longer resolves. The
// host renders a broken-link affordance for it; it is never a crash.
var ErrBrokenReference = errors.New("mirror: referenced block no longer exists")

// ErrNotMirror marks a resolve call on a block that is not a synced
// container.
var ErrNotMirror = errors.New("mirror: block is not a synced container")

// New creates a synced container referencing the given source id.
func New(originalID string) *model.Block {
	b := model.New(model.Synced)
	b.SetMeta(model.MetaOriginalBlockID, originalID)
	return b
}

// TargetID returns the id a mirror points at, or "".
func TargetID(b *model.Block) string {
	if b == nil || b.Type != model.Synced {
		return ""
	}
	return b.MetaString(model.MetaOriginalBlockID)
}

// Resolve looks up the mirror's target live in the tree. Edits made through
// a rendered mirror must be routed to the resolved block's id — the mirror
// owns no content of its own.
func Resolve(blocks []*model.Block, b *model.Block) (*model.Block, error) {
	if b == nil || b.Type != model.Synced {
		return nil, ErrNotMirror
	}
	id := b.MetaString(model.MetaOriginalBlockID)
	if id == "" {
		return nil, ErrBrokenReference
	}
	target := tree.Find(blocks, id)
	if target == nil {
		return nil, ErrBrokenReference
	}
	return target, nil
}

// Clipboard is the process-wide single-slot cell behind "copy as synced
// block". Copy stores a source id; Peek reads it and leaves it in place; it
// never expires. The cell is outside the tree's structural invariants — a
// stale id simply resolves to ErrBrokenReference later.
type Clipboard struct {
	id string
}

// Copy stores the source id, replacing any previous one.
func (c *Clipboard) Copy(id string) { c.id = id }

// Peek returns the stored id without clearing it.
func (c *Clipboard) Peek() string { return c.id }

// Empty reports whether nothing has been copied yet.
func (c *Clipboard) Empty() bool { return c.id == "" }

// Paste creates a new mirror referencing the stored id and inserts it after
// the anchor. A missing anchor or an empty cell is a no-op.
func (c *Clipboard) Paste(blocks []*model.Block, anchorID string) ([]*model.Block, bool) {
	if c.id == "" {
		return blocks, false
	}
	return tree.InsertAfter(blocks, anchorID, New(c.id))
}
