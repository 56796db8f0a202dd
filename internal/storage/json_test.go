package storage

import (
	"path/filepath"
	"testing"

	"github.com/tessella-notes/tessella/internal/model"
)

func TestLoadMissingFile(t *testing.T) {
	store := NewJSONStore(filepath.Join(t.TempDir(), "nope.json"))
	page, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if page.Title != "Untitled" || len(page.Blocks) != 0 {
		t.Errorf("missing file gave %+v", page)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "page.json")
	store := NewJSONStore(path)

	root := model.NewText(model.Toggle, "root")
	root.Children = []*model.Block{model.NewText(model.Todo, "task")}
	mirror := model.New(model.Synced)
	mirror.SetMeta(model.MetaOriginalBlockID, root.ID)
	page := &Page{Title: "Test", Blocks: []*model.Block{root, mirror}}

	if err := store.Save(page); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !store.FileExists() {
		t.Fatal("file not created")
	}

	back, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.Title != "Test" || !model.Equal(back.Blocks, page.Blocks) {
		t.Error("page did not survive the round trip")
	}
}

func TestLoadRejectsCorruptTree(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	store := NewJSONStore(path)

	dup := model.NewText(model.Paragraph, "a")
	dup2 := dup.Clone()
	if err := store.Save(&Page{Blocks: []*model.Block{dup, dup2}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := store.Load(); err == nil {
		t.Error("load accepted a tree with duplicate ids")
	}
}
