// Package selection tracks the set of selected top-level blocks and the
// click semantics over it.
package selection

import "github.com/tessella-notes/tessella/internal/model"

// Manager holds the selected top-level ids plus the anchor for range
// selection.
type Manager struct {
	selected map[string]bool
	last     string
}

// NewManager creates an empty selection.
func NewManager() *Manager {
	return &Manager{selected: make(map[string]bool)}
}

// Click replaces the selection with the clicked id and anchors on it.
func (m *Manager) Click(id string) {
	m.selected = map[string]bool{id: true}
	m.last = id
}

// CtrlClick toggles membership of the clicked id. When the id is added it
// becomes the anchor.
func (m *Manager) CtrlClick(id string) {
	if m.selected[id] {
		delete(m.selected, id)
		return
	}
	m.selected[id] = true
	m.last = id
}

// ShiftClick unions the contiguous top-level range between the anchor and
// the clicked id (inclusive, order-independent) into the selection. With no
// anchor, or when either end is not at top level, it behaves like Click.
func (m *Manager) ShiftClick(topLevel []*model.Block, id string) {
	from := indexOf(topLevel, m.last)
	to := indexOf(topLevel, id)
	if from < 0 || to < 0 {
		m.Click(id)
		return
	}
	if from > to {
		from, to = to, from
	}
	for i := from; i <= to; i++ {
		m.selected[topLevel[i].ID] = true
	}
}

func indexOf(blocks []*model.Block, id string) int {
	for i, b := range blocks {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// Selected reports whether the id is in the selection.
func (m *Manager) Selected(id string) bool { return m.selected[id] }

// IDs returns a snapshot of the selection ordered by top-level position.
// Bulk operations act on this snapshot, not on live state.
func (m *Manager) IDs(topLevel []*model.Block) []string {
	ids := make([]string, 0, len(m.selected))
	for _, b := range topLevel {
		if m.selected[b.ID] {
			ids = append(ids, b.ID)
		}
	}
	return ids
}

// Len returns the selection size.
func (m *Manager) Len() int { return len(m.selected) }

// Clear empties the selection and the anchor.
func (m *Manager) Clear() {
	m.selected = make(map[string]bool)
	m.last = ""
}

// Prune drops selected ids that are no longer at top level, e.g. after a
// delete or an external reload.
func (m *Manager) Prune(topLevel []*model.Block) {
	live := make(map[string]bool, len(topLevel))
	for _, b := range topLevel {
		live[b.ID] = true
	}
	for id := range m.selected {
		if !live[id] {
			delete(m.selected, id)
		}
	}
	if !live[m.last] {
		m.last = ""
	}
}
