package tree

import (
	"testing"

	"github.com/tessella-notes/tessella/internal/model"
)

func para(id, content string) *model.Block {
	return &model.Block{ID: id, Type: model.Paragraph, Content: content}
}

func sampleTree() []*model.Block {
	// a
	//   a1
	//   a2
	// b
	// c (columns2: [c1] [c2])
	a := para("a", "alpha")
	a.Children = []*model.Block{para("a1", "alpha one"), para("a2", "alpha two")}
	c := &model.Block{ID: "c", Type: model.Columns2, Columns: [][]*model.Block{
		{para("c1", "left")},
		{para("c2", "right")},
	}}
	return []*model.Block{a, para("b", "beta"), c}
}

func TestFind(t *testing.T) {
	blocks := sampleTree()

	tests := []struct {
		id   string
		want bool
	}{
		{"a", true},
		{"a2", true},
		{"c1", true}, // inside a column slot
		{"c2", true},
		{"missing", false},
	}
	for _, tc := range tests {
		got := Find(blocks, tc.id)
		if (got != nil) != tc.want {
			t.Errorf("Find(%q) = %v, want found=%v", tc.id, got, tc.want)
		}
		if got != nil && got.ID != tc.id {
			t.Errorf("Find(%q) returned block %q", tc.id, got.ID)
		}
	}
}

func TestUpdateSharesUntouchedNodes(t *testing.T) {
	blocks := sampleTree()

	out, ok := SetContent(blocks, "a1", "changed")
	if !ok {
		t.Fatal("update a1 reported not found")
	}
	if Find(out, "a1").Content != "changed" {
		t.Errorf("content not updated: %q", Find(out, "a1").Content)
	}
	if Find(blocks, "a1").Content != "alpha one" {
		t.Error("input tree was mutated")
	}
	// Nodes off the update path keep pointer identity.
	if out[1] != blocks[1] {
		t.Error("sibling b was copied")
	}
	if out[2] != blocks[2] {
		t.Error("columns container was copied")
	}
	if out[0] == blocks[0] {
		t.Error("parent a should have been copied along the path")
	}
}

func TestUpdateInColumnSlot(t *testing.T) {
	blocks := sampleTree()

	out, ok := SetContent(blocks, "c2", "changed")
	if !ok {
		t.Fatal("update c2 reported not found")
	}
	if Find(out, "c2").Content != "changed" {
		t.Error("column slot content not updated")
	}
	if Find(blocks, "c2").Content != "right" {
		t.Error("input tree was mutated")
	}
}

func TestUpdatePatchFields(t *testing.T) {
	blocks := []*model.Block{para("x", "text")}
	checked := true
	typ := model.Todo

	out, ok := Update(blocks, "x", Patch{
		Type:     &typ,
		Checked:  &checked,
		Metadata: map[string]any{"indentHint": 2},
	})
	if !ok {
		t.Fatal("patch not applied")
	}
	got := Find(out, "x")
	if got.Type != model.Todo || !got.Checked {
		t.Errorf("patch fields not applied: %+v", got)
	}
	if got.Meta("indentHint") != 2 {
		t.Error("metadata not merged")
	}
	if got.Content != "text" {
		t.Error("nil patch field overwrote content")
	}
}

func TestDelete(t *testing.T) {
	blocks := sampleTree()

	out, ok := Delete(blocks, "a1")
	if !ok {
		t.Fatal("delete a1 reported not found")
	}
	if Find(out, "a1") != nil {
		t.Error("a1 still present after delete")
	}
	if len(Find(out, "a").Children) != 1 {
		t.Error("parent child list not patched")
	}
	if Find(blocks, "a1") == nil {
		t.Error("input tree was mutated")
	}
}

func TestDeleteEntireTree(t *testing.T) {
	blocks := []*model.Block{para("only", "x")}
	out, ok := Delete(blocks, "only")
	if !ok || len(out) != 0 {
		t.Errorf("expected empty tree, got %d blocks", len(out))
	}
}

func TestInsertAfter(t *testing.T) {
	blocks := sampleTree()

	out, ok := InsertAfter(blocks, "a1", para("new", "inserted"))
	if !ok {
		t.Fatal("insert after a1 failed")
	}
	kids := Find(out, "a").Children
	if len(kids) != 3 || kids[1].ID != "new" {
		t.Errorf("new block not in position: %v", model.CollectIDs(kids))
	}
}

func TestDuplicateFreshIDs(t *testing.T) {
	blocks := sampleTree()
	before := model.Count(blocks)

	out, cloneID, ok := Duplicate(blocks, "a")
	if !ok {
		t.Fatal("duplicate a failed")
	}
	if model.Count(out) != before+3 {
		t.Errorf("unexpected block count %d", model.Count(out))
	}
	if err := model.Validate(out); err != nil {
		t.Fatalf("duplicate broke invariants: %v", err)
	}
	clone := Find(out, cloneID)
	if clone == nil || clone.Content != "alpha" || len(clone.Children) != 2 {
		t.Fatalf("clone content mismatch: %+v", clone)
	}
	if out[1].ID != cloneID {
		t.Error("clone not inserted immediately after source")
	}

	// Twice more: three content-equal subtrees, disjoint id sets.
	out2, cloneID2, _ := Duplicate(out, "a")
	if cloneID2 == cloneID {
		t.Error("duplicate reused a generated id")
	}
	if err := model.Validate(out2); err != nil {
		t.Fatalf("second duplicate broke invariants: %v", err)
	}
}

func TestIndentOutdentInverse(t *testing.T) {
	blocks := sampleTree()

	indented, ok := Indent(blocks, "b")
	if !ok {
		t.Fatal("indent b failed")
	}
	a := Find(indented, "a")
	if len(a.Children) != 3 || a.Children[2].ID != "b" {
		t.Fatalf("b not appended under a: %v", model.CollectIDs(a.Children))
	}
	if !a.IsOpen {
		t.Error("indent must force the new parent open")
	}

	restored, ok := Outdent(indented, "b")
	if !ok {
		t.Fatal("outdent b failed")
	}
	if restored[1].ID != "b" {
		t.Errorf("sibling order not restored: %v", model.CollectIDs(restored))
	}
	if len(Find(restored, "a").Children) != 2 {
		t.Error("b still nested under a")
	}
}

func TestIndentFirstSiblingNoOp(t *testing.T) {
	blocks := sampleTree()
	out, ok := Indent(blocks, "a")
	if ok {
		t.Error("indenting the first sibling must be a no-op")
	}
	if !model.Equal(out, blocks) {
		t.Error("tree changed on no-op indent")
	}
}

func TestIndentNested(t *testing.T) {
	blocks := sampleTree()
	out, ok := Indent(blocks, "a2")
	if !ok {
		t.Fatal("indent a2 failed")
	}
	a1 := Find(out, "a1")
	if len(a1.Children) != 1 || a1.Children[0].ID != "a2" {
		t.Error("a2 not nested under a1")
	}
}

func TestIndentUnderNonNestingSibling(t *testing.T) {
	mirror := model.New(model.Synced)
	mirror.SetMeta(model.MetaOriginalBlockID, "src")
	blocks := []*model.Block{para("src", "original"), mirror, para("b", "beta")}

	out, ok := Indent(blocks, "b")
	if ok {
		t.Error("indenting under a synced block must be a no-op")
	}
	if !model.Equal(out, blocks) {
		t.Error("tree changed on refused indent")
	}
	if err := model.Validate(out); err != nil {
		t.Fatalf("invariants broken: %v", err)
	}

	blocks = []*model.Block{{ID: "d", Type: model.Divider}, para("b", "beta")}
	if _, ok := Indent(blocks, "b"); ok {
		t.Error("indenting under a divider must be a no-op")
	}
}

func TestInsertAtRefusesChildOfNonNestingAnchor(t *testing.T) {
	blocks := []*model.Block{{ID: "d", Type: model.Divider}, para("b", "beta")}

	detached, node := Detach(blocks, "b")
	out, ok := InsertAt(detached, node, Position{AnchorID: "d", Placement: LastChild})
	if ok {
		t.Error("child placement on a divider must be refused")
	}
	if len(out) != 1 || len(out[0].Children) != 0 {
		t.Errorf("divider grew children: %v", model.CollectIDs(out))
	}

	mirror := model.New(model.Synced)
	blocks = []*model.Block{mirror, para("b", "beta")}
	detached, node = Detach(blocks, "b")
	if _, ok := InsertAt(detached, node, Position{AnchorID: mirror.ID, Placement: FirstChild}); ok {
		t.Error("child placement on a synced block must be refused")
	}
}

func TestOutdentTopLevelNoOp(t *testing.T) {
	blocks := sampleTree()
	_, ok := Outdent(blocks, "b")
	if ok {
		t.Error("outdenting a top-level block must be a no-op")
	}
}

func TestMergeWithPrevious(t *testing.T) {
	blocks := []*model.Block{para("h", "Hello"), para("w", "World")}

	out, ok := MergeWithPrevious(blocks, "w")
	if !ok {
		t.Fatal("merge failed")
	}
	if len(out) != 1 || out[0].Content != "Hello World" {
		t.Errorf("got %d blocks, content %q", len(out), out[0].Content)
	}
}

func TestMergeEmptyContentAddsNoSpace(t *testing.T) {
	blocks := []*model.Block{para("h", "Hello"), para("e", "")}
	out, ok := MergeWithPrevious(blocks, "e")
	if !ok {
		t.Fatal("merge failed")
	}
	if out[0].Content != "Hello" {
		t.Errorf("merging empty content gave %q, want %q", out[0].Content, "Hello")
	}

	blocks = []*model.Block{para("e", ""), para("w", "World")}
	out, _ = MergeWithPrevious(blocks, "w")
	if out[0].Content != "World" {
		t.Errorf("merging into empty content gave %q, want %q", out[0].Content, "World")
	}
}

func TestMergeFirstSiblingUnchanged(t *testing.T) {
	blocks := []*model.Block{para("h", "Hello"), para("w", "World")}
	out, ok := MergeWithPrevious(blocks, "h")
	if ok {
		t.Error("merging the first sibling must return unchanged")
	}
	if !model.Equal(out, blocks) {
		t.Error("tree changed")
	}
}

func TestNoOpSafetyOnMissingID(t *testing.T) {
	blocks := sampleTree()

	checks := map[string]func() ([]*model.Block, bool){
		"update": func() ([]*model.Block, bool) { return SetContent(blocks, "nope", "x") },
		"delete": func() ([]*model.Block, bool) { return Delete(blocks, "nope") },
		"insertAfter": func() ([]*model.Block, bool) {
			return InsertAfter(blocks, "nope", para("n", ""))
		},
		"indent":  func() ([]*model.Block, bool) { return Indent(blocks, "nope") },
		"outdent": func() ([]*model.Block, bool) { return Outdent(blocks, "nope") },
		"merge":   func() ([]*model.Block, bool) { return MergeWithPrevious(blocks, "nope") },
	}
	for name, op := range checks {
		out, ok := op()
		if ok {
			t.Errorf("%s with missing id reported a change", name)
		}
		if !model.Equal(out, blocks) {
			t.Errorf("%s with missing id altered the tree", name)
		}
	}

	if _, _, ok := Duplicate(blocks, "nope"); ok {
		t.Error("duplicate with missing id reported a change")
	}
}

func TestDetachKeepsSubtree(t *testing.T) {
	blocks := sampleTree()

	out, removed := Detach(blocks, "a")
	if removed == nil || removed.ID != "a" {
		t.Fatal("detach did not return the node")
	}
	if len(removed.Children) != 2 {
		t.Error("detached subtree lost its children")
	}
	if Find(out, "a1") != nil {
		t.Error("descendants still in tree after detach")
	}
}

func TestInsertAtChildPlacements(t *testing.T) {
	blocks := []*model.Block{para("a", "A"), para("b", "B")}

	out, removed := Detach(blocks, "a")
	out, ok := InsertAt(out, removed, Position{AnchorID: "b", Placement: LastChild})
	if !ok {
		t.Fatal("insert inside failed")
	}
	if len(out) != 1 || out[0].ID != "b" {
		t.Fatalf("unexpected top level: %v", model.CollectIDs(out))
	}
	b := out[0]
	if len(b.Children) != 1 || b.Children[0].ID != "a" || !b.IsOpen {
		t.Errorf("a not nested open under b: %+v", b)
	}
}

func TestInsertAtColumnSplit(t *testing.T) {
	blocks := []*model.Block{para("a", "A"), para("b", "B")}

	out, removed := Detach(blocks, "a")
	out, ok := InsertAt(out, removed, Position{AnchorID: "b", Placement: ColumnLeft})
	if !ok {
		t.Fatal("column split failed")
	}
	if len(out) != 1 || out[0].Type != model.Columns2 {
		t.Fatalf("expected a single columns2 container, got %v", model.CollectIDs(out))
	}
	cols := out[0].Columns
	if len(cols) != 2 || cols[0][0].ID != "a" || cols[1][0].ID != "b" {
		t.Errorf("column slots wrong: %v / %v", model.CollectIDs(cols[0]), model.CollectIDs(cols[1]))
	}
	if err := model.Validate(out); err != nil {
		t.Fatalf("column split broke invariants: %v", err)
	}
}

func TestUniquenessUnderOperationSequence(t *testing.T) {
	blocks := sampleTree()

	var err error
	blocks, _, _ = Duplicate(blocks, "a")
	blocks, _ = Indent(blocks, "b")
	blocks, _ = InsertAfter(blocks, "c1", para("d", "delta"))
	blocks, _ = Outdent(blocks, "a2")
	blocks, _, _ = Duplicate(blocks, "c")
	if err = model.Validate(blocks); err != nil {
		t.Fatalf("invariants violated after operation sequence: %v", err)
	}
}
