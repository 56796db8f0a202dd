package history

import (
	"fmt"
	"testing"

	"github.com/tessella-notes/tessella/internal/model"
)

func snapshot(content string) []*model.Block {
	return []*model.Block{{ID: "b", Type: model.Paragraph, Content: content}}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	s := New(10)
	var last []*model.Block
	for i := range 5 {
		last = snapshot(fmt.Sprintf("v%d", i))
		s.Record(last)
	}

	for k := 1; k < 5; k++ {
		for range k {
			if _, ok := s.Undo(); !ok {
				t.Fatalf("undo %d failed", k)
			}
		}
		var got []*model.Block
		var ok bool
		for range k {
			if got, ok = s.Redo(); !ok {
				t.Fatalf("redo %d failed", k)
			}
		}
		if !model.Equal(got, last) {
			t.Errorf("after %d undos and redos tree is %q, want %q",
				k, got[0].Content, last[0].Content)
		}
	}
}

func TestUndoBoundaries(t *testing.T) {
	s := New(10)
	if _, ok := s.Undo(); ok {
		t.Error("undo on empty stack must fail")
	}
	if _, ok := s.Redo(); ok {
		t.Error("redo on empty stack must fail")
	}

	s.Record(snapshot("only"))
	if _, ok := s.Undo(); ok {
		t.Error("undo at index 0 must be a no-op")
	}
	if _, ok := s.Redo(); ok {
		t.Error("redo at the last index must be a no-op")
	}
}

func TestRecordTruncatesRedoBranch(t *testing.T) {
	s := New(10)
	s.Record(snapshot("v0"))
	s.Record(snapshot("v1"))
	s.Record(snapshot("v2"))

	s.Undo()
	s.Undo()
	s.Record(snapshot("fork"))

	if s.CanRedo() {
		t.Error("redo branch must be discarded by a new record")
	}
	got, ok := s.Undo()
	if !ok || got[0].Content != "v0" {
		t.Errorf("undo after fork gave %v", got)
	}
	got, _ = s.Redo()
	if got[0].Content != "fork" {
		t.Errorf("redo after fork gave %q, want fork", got[0].Content)
	}
}

func TestEvictionShiftsIndex(t *testing.T) {
	s := New(3)
	for i := range 5 {
		s.Record(snapshot(fmt.Sprintf("v%d", i)))
	}
	if s.Len() != 3 {
		t.Fatalf("stack holds %d snapshots, want 3", s.Len())
	}
	// Oldest surviving snapshot is v2.
	s.Undo()
	got, ok := s.Undo()
	if !ok || got[0].Content != "v2" {
		t.Errorf("oldest snapshot is %v, want v2", got)
	}
	if _, ok := s.Undo(); ok {
		t.Error("undo past the evicted horizon must fail")
	}
}

func TestSnapshotsDoNotAlias(t *testing.T) {
	s := New(10)
	live := snapshot("original")
	s.Record(live)
	live[0].Content = "mutated after record"

	s.Record(snapshot("second"))
	got, _ := s.Undo()
	if got[0].Content != "original" {
		t.Errorf("snapshot aliased live tree: %q", got[0].Content)
	}

	// Mutating an undo result must not corrupt the stack either.
	got[0].Content = "mutated after undo"
	redone, _ := s.Redo()
	again, _ := s.Undo()
	_ = redone
	if again[0].Content != "original" {
		t.Errorf("undo result aliased stack state: %q", again[0].Content)
	}
}
