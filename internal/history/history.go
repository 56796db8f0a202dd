// Package history keeps a bounded, linear undo/redo stack of whole-tree
// snapshots.
package history

import "github.com/tessella-notes/tessella/internal/model"

// DefaultDepth caps the stack when the caller passes no limit.
const DefaultDepth = 100

// Stack is the snapshot history. The index always points at the snapshot
// matching the currently published tree. Snapshots are deep clones in both
// directions, so callers can never alias stack state.
type Stack struct {
	snapshots [][]*model.Block
	index     int
	max       int
}

// New creates a stack capped at max snapshots. max < 2 falls back to
// DefaultDepth.
func New(max int) *Stack {
	if max < 2 {
		max = DefaultDepth
	}
	return &Stack{index: -1, max: max}
}

// Record appends a snapshot of the tree. Snapshots after the current index
// are discarded first (a new edit kills the redo branch). The oldest
// snapshot is evicted when the stack is full.
func (s *Stack) Record(blocks []*model.Block) {
	if s.index < len(s.snapshots)-1 {
		s.snapshots = s.snapshots[:s.index+1]
	}
	s.snapshots = append(s.snapshots, model.CloneTree(blocks))
	if len(s.snapshots) > s.max {
		s.snapshots = s.snapshots[1:]
	}
	s.index = len(s.snapshots) - 1
}

// Undo steps back one snapshot. The second result is false at the oldest
// entry (or on an empty stack).
func (s *Stack) Undo() ([]*model.Block, bool) {
	if s.index <= 0 {
		return nil, false
	}
	s.index--
	return model.CloneTree(s.snapshots[s.index]), true
}

// Redo steps forward one snapshot. The second result is false at the newest
// entry.
func (s *Stack) Redo() ([]*model.Block, bool) {
	if s.index < 0 || s.index >= len(s.snapshots)-1 {
		return nil, false
	}
	s.index++
	return model.CloneTree(s.snapshots[s.index]), true
}

// CanUndo reports whether a step back is possible.
func (s *Stack) CanUndo() bool { return s.index > 0 }

// CanRedo reports whether a step forward is possible.
func (s *Stack) CanRedo() bool { return s.index >= 0 && s.index < len(s.snapshots)-1 }

// Len returns the number of stored snapshots.
func (s *Stack) Len() int { return len(s.snapshots) }
