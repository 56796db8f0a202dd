// Package storage persists pages as JSON documents.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tessella-notes/tessella/internal/model"
)

// Page is the persisted document shape: a title plus the block tree. Blocks
// serialize to a plain nested record tree with no cycles; mirrors carry only
// their originalBlockId string.
type Page struct {
	Title  string         `json:"title"`
	Blocks []*model.Block `json:"blocks"`
}

// JSONStore handles JSON file persistence for one page.
type JSONStore struct {
	FilePath string
}

// NewJSONStore creates a store for the given file path.
func NewJSONStore(filePath string) *JSONStore {
	return &JSONStore{FilePath: filePath}
}

// Load reads the page. A missing file yields an empty untitled page.
func (s *JSONStore) Load() (*Page, error) {
	data, err := os.ReadFile(s.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Page{Title: "Untitled"}, nil
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var page Page
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if err := model.Validate(page.Blocks); err != nil {
		return nil, fmt.Errorf("invalid page: %w", err)
	}
	return &page, nil
}

// Save writes the page, creating parent directories as needed.
func (s *JSONStore) Save(page *Page) error {
	dir := filepath.Dir(s.FilePath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if err := os.WriteFile(s.FilePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// FileExists checks if the page file exists.
func (s *JSONStore) FileExists() bool {
	_, err := os.Stat(s.FilePath)
	return err == nil
}
