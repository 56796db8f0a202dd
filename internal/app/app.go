// Package app is the interactive host: it owns the terminal loop and feeds
// key events into the engine.
package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/tessella-notes/tessella/internal/config"
	"github.com/tessella-notes/tessella/internal/editor"
	"github.com/tessella-notes/tessella/internal/export"
	"github.com/tessella-notes/tessella/internal/generate"
	"github.com/tessella-notes/tessella/internal/model"
	"github.com/tessella-notes/tessella/internal/search"
	"github.com/tessella-notes/tessella/internal/storage"
	"github.com/tessella-notes/tessella/internal/ui"
)

// App is the host controller.
type App struct {
	screen  *ui.Screen
	editor  *editor.Editor
	store   *storage.JSONStore
	cfg     *config.Config
	log     zerolog.Logger
	page    *storage.Page
	rows    []ui.Row
	cursor  int
	command string
	inCmd   bool

	statusMsg  string
	statusTime time.Time
	dirty      atomic.Bool
	saveTime   time.Time
	quit       bool

	// redraw wakes the render loop when a generation chunk lands.
	redraw chan struct{}
}

// NewApp loads the page and builds the host around it.
func NewApp(filePath string, log zerolog.Logger) (*App, error) {
	screen, err := ui.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		screen.Close()
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	store := storage.NewJSONStore(filePath)
	page, err := store.Load()
	if err != nil {
		screen.Close()
		return nil, fmt.Errorf("failed to load page: %w", err)
	}
	if len(page.Blocks) == 0 {
		page.Blocks = []*model.Block{model.NewText(model.Paragraph, "Welcome to tessella")}
	}

	a := &App{
		screen:     screen,
		store:      store,
		cfg:        cfg,
		log:        log,
		page:       page,
		statusMsg:  "Ready",
		statusTime: time.Now(),
		saveTime:   time.Now(),
		redraw:     make(chan struct{}, 1),
	}
	a.editor = editor.New(page.Blocks, editor.Options{
		OnChange:     a.onChange,
		HistoryDepth: cfg.HistoryDepth,
		Completer:    generate.NewAnthropic(cfg.GenerationModel, log),
		Logger:       log,
	})
	a.rows = ui.Flatten(page.Blocks)
	return a, nil
}

// onChange is the engine's publish callback. It may fire from the generation
// stream goroutine, so it only marks state and wakes the loop; the loop pulls
// the published tree from the editor itself.
func (a *App) onChange([]*model.Block) {
	a.dirty.Store(true)
	select {
	case a.redraw <- struct{}{}:
	default:
	}
}

// Run starts the event loop.
func (a *App) Run() error {
	defer a.Close()

	eventChan := make(chan tcell.Event)
	go func() {
		for {
			event := a.screen.PollEvent()
			eventChan <- event
			if event == nil {
				break
			}
		}
	}()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for !a.quit {
		select {
		case ev := <-eventChan:
			if keyEv, ok := ev.(*tcell.EventKey); ok {
				a.handleKey(keyEv)
			}
		case <-a.redraw:
		case <-ticker.C:
			if a.cfg.AutosaveSeconds > 0 && a.dirty.Load() &&
				time.Since(a.saveTime) > time.Duration(a.cfg.AutosaveSeconds)*time.Second {
				if err := a.save(); err != nil {
					a.setStatus("Failed to save: " + err.Error())
				} else {
					a.setStatus("Saved")
				}
			}
		}
		a.reseedIfEmpty()
		a.page.Blocks = a.editor.Blocks()
		a.rows = ui.Flatten(a.page.Blocks)
		if a.cursor >= len(a.rows) {
			a.cursor = len(a.rows) - 1
		}
		if a.cursor < 0 {
			a.cursor = 0
		}
		a.render()
	}
	return nil
}

// reseedIfEmpty applies the host-side policy: a page never renders with zero
// blocks.
func (a *App) reseedIfEmpty() {
	if len(a.editor.Blocks()) == 0 {
		a.editor.SetBlocks([]*model.Block{model.NewText(model.Paragraph, "")})
	}
}

// Close releases the terminal.
func (a *App) Close() error {
	if a.screen != nil {
		return a.screen.Close()
	}
	return nil
}

func (a *App) render() {
	a.screen.Clear()
	width, height := a.screen.Size()

	header := fmt.Sprintf(" %s ", a.page.Title)
	a.screen.DrawString(0, 0, header, ui.StyleBold())

	visible := height - 2
	start := 0
	if a.cursor >= visible {
		start = a.cursor - visible + 1
	}
	for i := start; i < len(a.rows) && i-start < visible; i++ {
		style := ui.DefaultStyle()
		if i == a.cursor {
			style = ui.StyleReverse()
		} else if a.editor.Selection().Selected(a.rows[i].Block.ID) {
			style = ui.StyleBold()
		}
		a.screen.DrawString(0, 1+i-start, ui.Line(a.page.Blocks, a.rows[i]), style)
	}

	statusLine := ""
	if a.inCmd {
		statusLine = ":" + a.command
	} else {
		if time.Since(a.statusTime) <= 3*time.Second {
			statusLine = a.statusMsg
		}
		if a.dirty.Load() {
			statusLine += " (modified)"
		}
	}
	if len(statusLine) > width {
		statusLine = statusLine[:width]
	}
	a.screen.DrawString(0, height-1, statusLine, ui.StyleDim())
	a.screen.Show()
}

func (a *App) current() *model.Block {
	if a.cursor < 0 || a.cursor >= len(a.rows) {
		return nil
	}
	return a.rows[a.cursor].Block
}

func (a *App) handleKey(ev *tcell.EventKey) {
	if a.inCmd {
		a.handleCommandKey(ev)
		return
	}

	cur := a.current()

	switch ev.Key() {
	case tcell.KeyDown:
		if a.cursor < len(a.rows)-1 {
			a.cursor++
		}
		return
	case tcell.KeyUp:
		if a.cursor > 0 {
			a.cursor--
		}
		return
	case tcell.KeyTab:
		if cur != nil && a.editor.Indent(cur.ID) {
			a.setStatus("Indented")
		}
		return
	case tcell.KeyBacktab:
		if cur != nil && a.editor.Outdent(cur.ID) {
			a.setStatus("Outdented")
		}
		return
	case tcell.KeyEnter:
		if cur != nil {
			a.editor.InsertAfter(cur.ID, model.New(model.Paragraph))
			a.cursor++
		}
		return
	case tcell.KeyCtrlR:
		if a.editor.Redo() {
			a.setStatus("Redone")
		}
		return
	case tcell.KeyCtrlS:
		if err := a.save(); err != nil {
			a.setStatus("Failed to save: " + err.Error())
		} else {
			a.setStatus("Saved")
		}
		return
	}

	switch ev.Rune() {
	case 'j':
		if a.cursor < len(a.rows)-1 {
			a.cursor++
		}
	case 'k':
		if a.cursor > 0 {
			a.cursor--
		}
	case 'u':
		if a.editor.Undo() {
			a.setStatus("Undone")
		}
	case 'd':
		if cur != nil && a.editor.Delete(cur.ID) {
			a.setStatus("Deleted block")
		}
	case 'y':
		if cur != nil {
			if _, ok := a.editor.Duplicate(cur.ID); ok {
				a.setStatus("Duplicated")
			}
		}
	case 'm':
		if cur != nil && a.editor.MergeWithPrevious(cur.ID) {
			a.setStatus("Merged with previous")
		}
	case ' ':
		if cur != nil {
			a.editor.Selection().CtrlClick(cur.ID)
		}
	case 'D':
		if n := a.editor.DeleteSelected(); n > 0 {
			a.setStatus(fmt.Sprintf("Deleted %d blocks", n))
		}
	case 'Y':
		if n := a.editor.DuplicateSelected(); n > 0 {
			a.setStatus(fmt.Sprintf("Duplicated %d blocks", n))
		}
	case 'c':
		if cur != nil {
			a.editor.CopyAsSynced(cur.ID)
			a.setStatus("Copied as synced block")
		}
	case 'v':
		if cur != nil && a.editor.PasteSynced(cur.ID) {
			a.setStatus("Pasted synced block")
		}
	case 'g':
		if cur != nil && cur.Type.AI() {
			// Generate blocks until the stream ends; failures surface as
			// terminal content in the block itself.
			go func(id string) {
				_ = a.editor.Generate(context.Background(), id)
			}(cur.ID)
			a.setStatus("Generating…")
		}
	case ':':
		a.inCmd = true
		a.command = ""
	}
}

func (a *App) handleCommandKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		a.inCmd = false
	case tcell.KeyEnter:
		a.inCmd = false
		a.runCommand(a.command)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(a.command) > 0 {
			a.command = a.command[:len(a.command)-1]
		}
	default:
		if r := ev.Rune(); r != 0 {
			a.command += string(r)
		}
	}
}

func (a *App) runCommand(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}
	switch parts[0] {
	case "q", "quit":
		if a.dirty.Load() {
			a.setStatus("Unsaved changes! Use :q! or :w first")
		} else {
			a.quit = true
		}
	case "q!", "quit!":
		a.quit = true
	case "w", "write":
		if err := a.save(); err != nil {
			a.setStatus("Failed to save: " + err.Error())
		} else {
			a.setStatus("Saved")
		}
	case "wq":
		if err := a.save(); err != nil {
			a.setStatus("Failed to save: " + err.Error())
		} else {
			a.quit = true
		}
	case "find":
		if len(parts) > 1 {
			a.jumpTo(strings.Join(parts[1:], " "))
		}
	case "export":
		if len(parts) > 1 {
			md := export.Markdown(a.page.Blocks)
			if err := os.WriteFile(parts[1], []byte(md), 0644); err != nil {
				a.setStatus("Export failed: " + err.Error())
			} else {
				a.setStatus("Exported to " + parts[1])
			}
		}
	case "paste":
		// Imports a markdown file below the cursor, standing in for a
		// clipboard paste in a terminal host.
		if cur := a.current(); cur != nil && len(parts) > 1 {
			data, err := os.ReadFile(parts[1])
			if err != nil {
				a.setStatus("Paste failed: " + err.Error())
				return
			}
			n := a.editor.PasteMarkdown(cur.ID, string(data))
			a.setStatus(fmt.Sprintf("Imported %d blocks", n))
		}
	case "dump":
		path := "tessella-dump.txt"
		if err := os.WriteFile(path, []byte(spew.Sdump(a.page.Blocks)), 0644); err != nil {
			a.setStatus("Dump failed: " + err.Error())
		} else {
			a.setStatus("Tree dumped to " + path)
		}
	default:
		a.setStatus("Unknown command: " + parts[0])
	}
}

// jumpTo moves the cursor to the best fuzzy match.
func (a *App) jumpTo(query string) {
	matches := search.Find(a.page.Blocks, query)
	if len(matches) == 0 {
		a.setStatus("No match for " + query)
		return
	}
	for i, row := range a.rows {
		if row.Block.ID == matches[0].ID {
			a.cursor = i
			a.setStatus(fmt.Sprintf("%d matches", len(matches)))
			return
		}
	}
	a.setStatus("Match is hidden inside a closed block")
}

func (a *App) save() error {
	if err := a.store.Save(a.page); err != nil {
		return err
	}
	a.dirty.Store(false)
	a.saveTime = time.Now()
	return nil
}

func (a *App) setStatus(msg string) {
	a.statusMsg = msg
	a.statusTime = time.Now()
}
