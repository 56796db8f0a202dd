package tree

import "github.com/tessella-notes/tessella/internal/model"

// Placement says where a block lands relative to an anchor.
type Placement int

const (
	// Before and After are sibling insertions at the anchor's level.
	Before Placement = iota
	After
	// FirstChild and LastChild nest under the anchor, forcing it open.
	FirstChild
	LastChild
	// ColumnLeft and ColumnRight replace the anchor with a two-column
	// container holding {block, anchor} or {anchor, block}.
	ColumnLeft
	ColumnRight
)

// Position is the single descriptor both keyboard reparenting and the drag
// engine use, so the two paths cannot drift apart.
type Position struct {
	AnchorID  string
	Placement Placement
}

// InsertAt places block at the described position. A missing anchor is a
// no-op, as is a child placement under an anchor whose type cannot own
// children. The caller is responsible for having detached block first;
// InsertAt never removes anything except the anchor in the column
// placements, where the anchor moves into the new container.
func InsertAt(blocks []*model.Block, block *model.Block, pos Position) ([]*model.Block, bool) {
	switch pos.Placement {
	case Before:
		return InsertBefore(blocks, pos.AnchorID, block)
	case After:
		return InsertAfter(blocks, pos.AnchorID, block)
	case FirstChild, LastChild:
		if anchor := Find(blocks, pos.AnchorID); anchor == nil || !anchor.Type.Nests() {
			return blocks, false
		}
		return mapBlocks(blocks, pos.AnchorID, func(anchor *model.Block) *model.Block {
			c := shallow(anchor)
			if pos.Placement == FirstChild {
				c.Children = append([]*model.Block{block}, anchor.Children...)
			} else {
				c.Children = append(append([]*model.Block{}, anchor.Children...), block)
			}
			c.IsOpen = true
			return c
		})
	case ColumnLeft, ColumnRight:
		return mapBlocks(blocks, pos.AnchorID, func(anchor *model.Block) *model.Block {
			container := model.New(model.Columns2)
			if pos.Placement == ColumnLeft {
				container.Columns = [][]*model.Block{{block}, {anchor}}
			} else {
				container.Columns = [][]*model.Block{{anchor}, {block}}
			}
			return container
		})
	}
	return blocks, false
}
