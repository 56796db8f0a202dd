// Package drag implements reparenting by pointer gesture.
//
// The gesture runs Idle -> Dragging -> Hover -> Idle. Hover classification
// is advisory state only; nothing moves until Drop, which detaches the
// dragged subtree and reinserts it through tree.InsertAt. The same node
// moves (never a copy), so its id and subtree survive a reorder.
package drag

import (
	"github.com/tessella-notes/tessella/internal/model"
	"github.com/tessella-notes/tessella/internal/tree"
)

// Zone classifies the pointer position relative to a hovered block.
type Zone int

const (
	ZoneNone Zone = iota
	ZoneTop
	ZoneBottom
	// ZoneInside signals nest-as-child intent: the pointer sits in the
	// middle vertical band and is indented past the threshold.
	ZoneInside
	// ZoneLeft and ZoneRight signal a column split.
	ZoneLeft
	ZoneRight
)

func (z Zone) String() string {
	switch z {
	case ZoneTop:
		return "top"
	case ZoneBottom:
		return "bottom"
	case ZoneInside:
		return "inside"
	case ZoneLeft:
		return "left"
	case ZoneRight:
		return "right"
	}
	return "none"
}

// Point is a pointer location.
type Point struct {
	X, Y float64
}

// Rect is a hovered block's bounding box.
type Rect struct {
	X, Y, W, H float64
}

// Options tunes classification.
type Options struct {
	// IndentThreshold is how far past the box's left edge the pointer must
	// sit for the middle band to mean "inside" rather than a sibling drop.
	IndentThreshold float64
	// Columns enables the left/right edge zones.
	Columns bool
	// EdgeRatio is the horizontal fraction of the box treated as a column
	// edge when Columns is set. Zero means a tenth of the width.
	EdgeRatio float64
}

// Classify maps a pointer position inside a bounding box to exactly one zone.
func Classify(p Point, box Rect, opt Options) Zone {
	if box.W <= 0 || box.H <= 0 {
		return ZoneNone
	}
	if opt.Columns {
		edge := opt.EdgeRatio
		if edge == 0 {
			edge = 0.1
		}
		if p.X < box.X+box.W*edge {
			return ZoneLeft
		}
		if p.X > box.X+box.W*(1-edge) {
			return ZoneRight
		}
	}
	// Middle vertical band plus horizontal indent means nesting.
	top := box.Y + box.H/4
	bottom := box.Y + box.H*3/4
	if p.Y >= top && p.Y <= bottom && p.X > box.X+opt.IndentThreshold {
		return ZoneInside
	}
	if p.Y < box.Y+box.H/2 {
		return ZoneTop
	}
	return ZoneBottom
}

// Gesture tracks one drag from start to drop.
type Gesture struct {
	activeID string
	overID   string
	zone     Zone
}

// Start begins a drag for the given block id.
func (g *Gesture) Start(id string) {
	g.activeID = id
	g.overID = ""
	g.zone = ZoneNone
}

// Hover records the current candidate target and its classification.
func (g *Gesture) Hover(overID string, zone Zone) {
	g.overID = overID
	g.zone = zone
}

// Active returns the dragged id, or "" when idle.
func (g *Gesture) Active() string { return g.activeID }

// Over returns the hovered target and zone.
func (g *Gesture) Over() (string, Zone) { return g.overID, g.zone }

// Drop performs the reparenting captured by the gesture and resets it to
// idle. Dropping on the drag source, with no hover, or with an unknown id is
// a no-op and returns the tree unchanged.
func (g *Gesture) Drop(blocks []*model.Block) ([]*model.Block, bool) {
	activeID, overID, zone := g.activeID, g.overID, g.zone
	g.activeID, g.overID, g.zone = "", "", ZoneNone

	if activeID == "" || overID == "" || activeID == overID || zone == ZoneNone {
		return blocks, false
	}

	detached, node := tree.Detach(blocks, activeID)
	if node == nil {
		return blocks, false
	}
	pos := Position(overID, zone)
	out, ok := tree.InsertAt(detached, node, pos)
	if !ok {
		// Target vanished mid-gesture, or the zone cannot apply to it;
		// leave the original tree intact.
		return blocks, false
	}
	return out, true
}

// Position translates a hover classification into the shared insertion
// descriptor. Keyboard indent and drag drops both funnel through
// tree.InsertAt so the two reparenting paths cannot diverge.
func Position(anchorID string, zone Zone) tree.Position {
	pos := tree.Position{AnchorID: anchorID}
	switch zone {
	case ZoneTop:
		pos.Placement = tree.Before
	case ZoneBottom:
		pos.Placement = tree.After
	case ZoneInside:
		pos.Placement = tree.LastChild
	case ZoneLeft:
		pos.Placement = tree.ColumnLeft
	case ZoneRight:
		pos.Placement = tree.ColumnRight
	}
	return pos
}
