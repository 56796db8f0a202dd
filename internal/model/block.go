// Package model contains the block document tree and its invariants.
package model

import (
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// Type identifies a block variant. The set is closed: operations switch
// over these constants and Valid rejects anything else.
type Type string

const (
	Paragraph        Type = "paragraph"
	Heading1         Type = "heading1"
	Heading2         Type = "heading2"
	Heading3         Type = "heading3"
	ToggleHeading1   Type = "toggleHeading1"
	ToggleHeading2   Type = "toggleHeading2"
	ToggleHeading3   Type = "toggleHeading3"
	Bullet           Type = "bullet"
	Numbered         Type = "numbered"
	Todo             Type = "todo"
	Toggle           Type = "toggle"
	Quote            Type = "quote"
	CollapsibleQuote Type = "collapsibleQuote"
	Callout          Type = "callout"
	Code             Type = "code"
	Math             Type = "math"
	Image            Type = "image"
	Link             Type = "link"
	Table            Type = "table"
	DatabaseView     Type = "databaseView"
	Bookmark         Type = "bookmark"
	File             Type = "file"
	Divider          Type = "divider"
	Diagram          Type = "diagram"
	Columns2         Type = "columns2"
	Columns3         Type = "columns3"
	Synced           Type = "synced"

	// AI pseudo-types resolve into Paragraph once generation completes.
	AIText        Type = "aiText"
	AISummary     Type = "aiSummary"
	AIActionItems Type = "aiActionItems"
)

// Metadata keys used by the engine itself. Anything else in the bag is
// opaque view configuration owned by the host.
const (
	MetaOriginalBlockID = "originalBlockId"
	MetaAIPrompt        = "aiPrompt"
	MetaIndentHint      = "indentHint"
)

// Valid reports whether t is one of the known block types.
func (t Type) Valid() bool {
	switch t {
	case Paragraph, Heading1, Heading2, Heading3,
		ToggleHeading1, ToggleHeading2, ToggleHeading3,
		Bullet, Numbered, Todo, Toggle, Quote, CollapsibleQuote,
		Callout, Code, Math, Image, Link, Table, DatabaseView,
		Bookmark, File, Divider, Diagram, Columns2, Columns3, Synced,
		AIText, AISummary, AIActionItems:
		return true
	}
	return false
}

// Nests reports whether blocks of this type may own Children.
// Synced blocks never own children; their content is resolved by reference.
func (t Type) Nests() bool {
	switch t {
	case Divider, Columns2, Columns3, Synced:
		return false
	}
	return true
}

// Columnar reports whether the type carries column slots instead of content.
func (t Type) Columnar() bool {
	return t == Columns2 || t == Columns3
}

// AI reports whether the type is a generation trigger pseudo-type.
func (t Type) AI() bool {
	return t == AIText || t == AISummary || t == AIActionItems
}

// Comment is a note attached to a block. Comments are append-only from the
// engine's point of view.
type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// Block is a single node in the document tree.
//
// Children and Columns are owned exclusively by this block: a block appears
// in exactly one container at a time. A Synced block is the exception — it
// holds only Metadata[MetaOriginalBlockID] and never owns the referenced
// subtree.
type Block struct {
	ID              string         `json:"id"`
	Type            Type           `json:"type"`
	Content         string         `json:"content,omitempty"`
	Children        []*Block       `json:"children,omitempty"`
	Columns         [][]*Block     `json:"columns,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	IsOpen          bool           `json:"isOpen,omitempty"`
	Checked         bool           `json:"checked,omitempty"`
	CalloutType     string         `json:"calloutType,omitempty"`
	Language        string         `json:"language,omitempty"`
	TextColor       string         `json:"textColor,omitempty"`
	BackgroundColor string         `json:"backgroundColor,omitempty"`
	Comments        []Comment      `json:"comments,omitempty"`
}

// NewID returns a fresh block identifier.
func NewID() string {
	return uuid.NewString()
}

// New creates a block of the given type with a generated id.
func New(t Type) *Block {
	return &Block{
		ID:     NewID(),
		Type:   t,
		IsOpen: true,
	}
}

// NewText creates a text-bearing block with the given content.
func NewText(t Type, content string) *Block {
	b := New(t)
	b.Content = content
	return b
}

// Meta returns the metadata value for key, or nil.
func (b *Block) Meta(key string) any {
	if b.Metadata == nil {
		return nil
	}
	return b.Metadata[key]
}

// MetaString returns the metadata value for key as a string, or "".
func (b *Block) MetaString(key string) string {
	if s, ok := b.Meta(key).(string); ok {
		return s
	}
	return ""
}

// SetMeta sets a metadata value, allocating the bag on first use.
func (b *Block) SetMeta(key string, value any) {
	if b.Metadata == nil {
		b.Metadata = make(map[string]any)
	}
	b.Metadata[key] = value
}

// Clone returns a deep copy of the block preserving every id. History
// snapshots use this so that mutation never aliases across snapshots.
func (b *Block) Clone() *Block {
	return b.clone(false)
}

// CloneFresh returns a deep copy with a freshly generated id on the clone
// and on every descendant. Duplication uses this so that source ids are
// never reused.
func (b *Block) CloneFresh() *Block {
	return b.clone(true)
}

func (b *Block) clone(fresh bool) *Block {
	if b == nil {
		return nil
	}
	c := *b
	if fresh {
		c.ID = NewID()
	}
	if b.Children != nil {
		c.Children = CloneAll(b.Children, fresh)
	}
	if b.Columns != nil {
		c.Columns = make([][]*Block, len(b.Columns))
		for i, col := range b.Columns {
			c.Columns[i] = CloneAll(col, fresh)
		}
	}
	if b.Metadata != nil {
		c.Metadata = make(map[string]any, len(b.Metadata))
		for k, v := range b.Metadata {
			c.Metadata[k] = v
		}
	}
	if b.Comments != nil {
		c.Comments = make([]Comment, len(b.Comments))
		copy(c.Comments, b.Comments)
	}
	return &c
}

// CloneAll deep-copies a block sequence. fresh regenerates every id.
func CloneAll(blocks []*Block, fresh bool) []*Block {
	out := make([]*Block, len(blocks))
	for i, b := range blocks {
		out[i] = b.clone(fresh)
	}
	return out
}

// CloneTree is shorthand for an id-preserving deep copy of a whole tree.
func CloneTree(blocks []*Block) []*Block {
	return CloneAll(blocks, false)
}

// Walk calls fn for every block in depth-first order, descending through
// children and column slots. fn returning false stops the walk.
func Walk(blocks []*Block, fn func(*Block) bool) bool {
	for _, b := range blocks {
		if !fn(b) {
			return false
		}
		if !Walk(b.Children, fn) {
			return false
		}
		for _, col := range b.Columns {
			if !Walk(col, fn) {
				return false
			}
		}
	}
	return true
}

// CollectIDs returns every id in the tree in depth-first order.
func CollectIDs(blocks []*Block) []string {
	var ids []string
	Walk(blocks, func(b *Block) bool {
		ids = append(ids, b.ID)
		return true
	})
	return ids
}

// Count returns the total number of blocks in the tree.
func Count(blocks []*Block) int {
	n := 0
	Walk(blocks, func(*Block) bool {
		n++
		return true
	})
	return n
}

// Validate checks the structural invariants: every id unique and non-empty,
// every type known, children only on nesting types, and column slots only on
// columnar types.
func Validate(blocks []*Block) error {
	seen := make(map[string]bool)
	var err error
	Walk(blocks, func(b *Block) bool {
		switch {
		case b.ID == "":
			err = fmt.Errorf("block without id (type %s)", b.Type)
		case seen[b.ID]:
			err = fmt.Errorf("duplicate block id %s", b.ID)
		case !b.Type.Valid():
			err = fmt.Errorf("block %s has unknown type %q", b.ID, b.Type)
		case len(b.Children) > 0 && !b.Type.Nests():
			err = fmt.Errorf("block %s of type %s owns children", b.ID, b.Type)
		case len(b.Columns) > 0 && !b.Type.Columnar():
			err = fmt.Errorf("block %s has columns but type %s", b.ID, b.Type)
		}
		if err != nil {
			return false
		}
		seen[b.ID] = true
		return true
	})
	return err
}

// Equal reports structural equality of two trees, ids included.
func Equal(a, b []*Block) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].equal(b[i]) {
			return false
		}
	}
	return true
}

func (b *Block) equal(o *Block) bool {
	if b == nil || o == nil {
		return b == o
	}
	if b.ID != o.ID || b.Type != o.Type || b.Content != o.Content ||
		b.IsOpen != o.IsOpen || b.Checked != o.Checked ||
		b.CalloutType != o.CalloutType || b.Language != o.Language ||
		b.TextColor != o.TextColor || b.BackgroundColor != o.BackgroundColor {
		return false
	}
	if !Equal(b.Children, o.Children) {
		return false
	}
	if len(b.Columns) != len(o.Columns) {
		return false
	}
	for i := range b.Columns {
		if !Equal(b.Columns[i], o.Columns[i]) {
			return false
		}
	}
	// Metadata may hold nested view configuration, so compare deeply.
	if len(b.Metadata) != len(o.Metadata) {
		return false
	}
	if len(b.Metadata) > 0 && !reflect.DeepEqual(b.Metadata, o.Metadata) {
		return false
	}
	if len(b.Comments) != len(o.Comments) {
		return false
	}
	for i := range b.Comments {
		if b.Comments[i] != o.Comments[i] {
			return false
		}
	}
	return true
}
