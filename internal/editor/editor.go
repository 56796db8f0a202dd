// Package editor wires the block tree, history, selection, and generation
// into the engine the host talks to.
//
// Every mutating call computes a new tree through the pure operations in
// internal/tree, records it, and publishes it through a single onChange
// callback. The host may hand back a fresh tree at any time via SetBlocks.
package editor

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tessella-notes/tessella/internal/drag"
	"github.com/tessella-notes/tessella/internal/generate"
	"github.com/tessella-notes/tessella/internal/history"
	"github.com/tessella-notes/tessella/internal/markdown"
	"github.com/tessella-notes/tessella/internal/mirror"
	"github.com/tessella-notes/tessella/internal/model"
	"github.com/tessella-notes/tessella/internal/selection"
	"github.com/tessella-notes/tessella/internal/tree"
)

// Options configures a new Editor.
type Options struct {
	// OnChange is called with the new tree after every logical edit.
	OnChange func([]*model.Block)
	// HistoryDepth caps the undo stack; zero means the default.
	HistoryDepth int
	// Completer backs Generate. Nil disables generation.
	Completer generate.Completer
	Logger    zerolog.Logger
}

// Editor owns the current tree and the state around it. The mutex
// serializes host events against generation chunks arriving from a stream
// goroutine; there is never more than one writer inside at a time.
type Editor struct {
	mu        sync.Mutex
	blocks    []*model.Block
	hist      *history.Stack
	sel       *selection.Manager
	clip      mirror.Clipboard
	onChange  func([]*model.Block)
	completer generate.Completer
	log       zerolog.Logger

	// replaying suppresses history recording while an undo/redo publish is
	// in flight, so replays never record themselves.
	replaying bool

	// streams tracks the cancel function of each in-flight generation,
	// keyed by target block id.
	streams map[string]context.CancelFunc
}

// New creates an editor over the given tree.
func New(blocks []*model.Block, opts Options) *Editor {
	e := &Editor{
		blocks:    blocks,
		hist:      history.New(opts.HistoryDepth),
		sel:       selection.NewManager(),
		onChange:  opts.OnChange,
		completer: opts.Completer,
		log:       opts.Logger,
		streams:   make(map[string]context.CancelFunc),
	}
	e.hist.Record(blocks)
	return e
}

// Blocks returns the current tree.
func (e *Editor) Blocks() []*model.Block {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.blocks
}

// SetBlocks replaces the tree with one supplied by the host, e.g. after an
// external reload. The new tree starts a fresh history entry.
func (e *Editor) SetBlocks(blocks []*model.Block) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.blocks = blocks
	e.hist.Record(blocks)
	e.sel.Prune(blocks)
	e.publish()
}

// Selection exposes the selection manager.
func (e *Editor) Selection() *selection.Manager { return e.sel }

// publish pushes the current tree to the host. Callers hold the mutex.
func (e *Editor) publish() {
	if e.onChange != nil {
		e.onChange(e.blocks)
	}
}

// commit installs a new tree, records it, and publishes. Callers hold the
// mutex. Returns changed unchanged for convenient chaining.
func (e *Editor) commit(blocks []*model.Block, changed bool, op string) bool {
	if !changed {
		return false
	}
	e.blocks = blocks
	if !e.replaying {
		e.hist.Record(blocks)
	}
	e.log.Debug().Str("op", op).Int("blocks", model.Count(blocks)).Msg("edit")
	e.publish()
	return true
}

// UpdateBlock merges a patch into the block. Edits addressed at a synced
// mirror are routed to the original block, since the mirror owns no content.
func (e *Editor) UpdateBlock(id string, patch tree.Patch) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	id = e.routeThroughMirror(id)
	out, ok := tree.Update(e.blocks, id, patch)
	return e.commit(out, ok, "update")
}

// SetContent replaces a block's content, routing through mirrors.
func (e *Editor) SetContent(id, content string) bool {
	return e.UpdateBlock(id, tree.Patch{Content: &content})
}

// routeThroughMirror maps a mirror id to its original id. Broken mirrors
// route nowhere: the update degrades to a no-op. Callers hold the mutex.
func (e *Editor) routeThroughMirror(id string) string {
	b := tree.Find(e.blocks, id)
	if b == nil || b.Type != model.Synced {
		return id
	}
	target, err := mirror.Resolve(e.blocks, b)
	if err != nil {
		return ""
	}
	return target.ID
}

// Resolve returns the live target of a mirror for rendering.
func (e *Editor) Resolve(b *model.Block) (*model.Block, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return mirror.Resolve(e.blocks, b)
}

// InsertAfter inserts a block after the anchor.
func (e *Editor) InsertAfter(anchorID string, b *model.Block) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	out, ok := tree.InsertAfter(e.blocks, anchorID, b)
	return e.commit(out, ok, "insert")
}

// Delete removes a block and cancels any generation stream targeting it.
// Deleting an empty tree's last block is allowed; reseeding a placeholder is
// the host's policy.
func (e *Editor) Delete(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	out, ok := tree.Delete(e.blocks, id)
	if !ok {
		return false
	}
	e.cancelStreamsWithoutTarget(out)
	e.sel.Prune(out)
	return e.commit(out, true, "delete")
}

// Duplicate clones a subtree with fresh ids and returns the clone's id.
func (e *Editor) Duplicate(id string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	out, cloneID, ok := tree.Duplicate(e.blocks, id)
	return cloneID, e.commit(out, ok, "duplicate")
}

// Indent nests the block under its preceding sibling.
func (e *Editor) Indent(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	out, ok := tree.Indent(e.blocks, id)
	return e.commit(out, ok, "indent")
}

// Outdent lifts the block to its parent's level.
func (e *Editor) Outdent(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	out, ok := tree.Outdent(e.blocks, id)
	return e.commit(out, ok, "outdent")
}

// MergeWithPrevious joins the block's content onto its previous sibling.
func (e *Editor) MergeWithPrevious(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	out, ok := tree.MergeWithPrevious(e.blocks, id)
	return e.commit(out, ok, "merge")
}

// Drop completes a drag gesture.
func (e *Editor) Drop(g *drag.Gesture) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	out, ok := g.Drop(e.blocks)
	return e.commit(out, ok, "drop")
}

// Undo steps history back and publishes the snapshot.
func (e *Editor) Undo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap, ok := e.hist.Undo()
	if !ok {
		return false
	}
	e.replaying = true
	e.blocks = snap
	e.sel.Prune(snap)
	e.publish()
	e.replaying = false
	return true
}

// Redo steps history forward and publishes the snapshot.
func (e *Editor) Redo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap, ok := e.hist.Redo()
	if !ok {
		return false
	}
	e.replaying = true
	e.blocks = snap
	e.sel.Prune(snap)
	e.publish()
	e.replaying = false
	return true
}

// DeleteSelected removes every selected top-level block, acting on the
// selection snapshot taken at invocation.
func (e *Editor) DeleteSelected() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := e.sel.IDs(e.blocks)
	out := e.blocks
	n := 0
	for _, id := range ids {
		var ok bool
		if out, ok = tree.Delete(out, id); ok {
			n++
		}
	}
	if n > 0 {
		e.cancelStreamsWithoutTarget(out)
		e.sel.Clear()
		e.commit(out, true, "delete-selected")
	}
	return n
}

// DuplicateSelected clones every selected top-level block with fresh ids.
func (e *Editor) DuplicateSelected() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := e.sel.IDs(e.blocks)
	out := e.blocks
	n := 0
	for _, id := range ids {
		var ok bool
		if out, _, ok = tree.Duplicate(out, id); ok {
			n++
		}
	}
	if n > 0 {
		e.commit(out, true, "duplicate-selected")
	}
	return n
}

// CopyAsSynced stores the block id in the mirror clipboard cell.
func (e *Editor) CopyAsSynced(id string) {
	e.clip.Copy(id)
}

// PasteSynced inserts a new mirror referencing the last-copied id after the
// anchor. The cell keeps its value; a stale id shows up later as a broken
// reference, not an error here.
func (e *Editor) PasteSynced(anchorID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	out, ok := e.clip.Paste(e.blocks, anchorID)
	return e.commit(out, ok, "paste-synced")
}

// PasteMarkdown imports pasted text and inserts the resulting blocks after
// the anchor, preserving their order.
func (e *Editor) PasteMarkdown(anchorID, text string) int {
	parsed := markdown.Parse(text)
	if len(parsed) == 0 {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.blocks
	anchor := anchorID
	inserted := 0
	for _, b := range parsed {
		var ok bool
		if out, ok = tree.InsertAfter(out, anchor, b); !ok {
			break
		}
		anchor = b.ID
		inserted++
	}
	e.commit(out, inserted > 0, "paste-markdown")
	return inserted
}

// Generate streams completion text into the target block. The target id is
// fixed at start; each chunk lands as a plain content update. Deleting the
// target cancels the stream — and even without the explicit cancel, updates
// against a vanished id are no-ops. On success the AI pseudo-type resolves
// to a paragraph; on failure the block receives the terminal failure text.
//
// Blocking: hosts run it in its own goroutine.
func (e *Editor) Generate(ctx context.Context, targetID string) error {
	if e.completer == nil {
		return nil
	}

	e.mu.Lock()
	target := tree.Find(e.blocks, targetID)
	if target == nil {
		e.mu.Unlock()
		return nil
	}
	msgs := promptFor(target)
	ctx, cancel := context.WithCancel(ctx)
	e.streams[targetID] = cancel
	e.mu.Unlock()
	defer func() {
		cancel()
		e.mu.Lock()
		delete(e.streams, targetID)
		e.mu.Unlock()
	}()

	var buf strings.Builder
	err := e.completer.Stream(ctx, msgs, func(chunk string) error {
		buf.WriteString(chunk)
		if !e.streamUpdate(targetID, buf.String()) {
			cancel()
			return context.Canceled
		}
		return nil
	})
	if err != nil {
		e.log.Debug().Err(err).Str("block", targetID).Msg("generation failed")
		e.finishGeneration(targetID, generate.FailureContent)
		return err
	}
	e.finishGeneration(targetID, buf.String())
	return nil
}

// streamUpdate applies an intermediate chunk without recording history;
// only the finished generation is one undo step. Reports whether the target
// still exists.
func (e *Editor) streamUpdate(id, content string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	out, ok := tree.SetContent(e.blocks, id, content)
	if !ok {
		return false
	}
	e.blocks = out
	e.publish()
	return true
}

// finishGeneration writes the terminal content and resolves the AI
// pseudo-type into a paragraph. A deleted target makes this a no-op.
func (e *Editor) finishGeneration(id, content string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b := tree.Find(e.blocks, id)
	if b == nil {
		return
	}
	patch := tree.Patch{Content: &content}
	if b.Type.AI() {
		para := model.Paragraph
		patch.Type = &para
	}
	out, ok := tree.Update(e.blocks, id, patch)
	e.commit(out, ok, "generate")
}

// cancelStreamsWithoutTarget cancels generations whose target vanished from
// the tree. Callers hold the mutex.
func (e *Editor) cancelStreamsWithoutTarget(blocks []*model.Block) {
	for id, cancel := range e.streams {
		if tree.Find(blocks, id) == nil {
			cancel()
		}
	}
}

// promptFor builds the role-tagged message list for a generation block.
func promptFor(b *model.Block) []generate.Message {
	prompt := b.MetaString(model.MetaAIPrompt)
	if prompt == "" {
		prompt = b.Content
	}
	system := "You are a writing assistant inside a block-based note editor. Respond with plain text only."
	switch b.Type {
	case model.AISummary:
		system = "Summarize the given text concisely. Respond with plain text only."
	case model.AIActionItems:
		system = "Extract action items from the given text, one per line. Respond with plain text only."
	}
	return []generate.Message{
		{Role: generate.RoleSystem, Content: system},
		{Role: generate.RoleUser, Content: prompt},
	}
}
