// Package ui is the thin terminal host around the engine. It renders the
// block tree and forwards key events; all document logic lives in the
// engine packages.
package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Screen wraps the tcell screen.
type Screen struct {
	tcellScreen tcell.Screen
	width       int
	height      int
}

// NewScreen creates and initializes a Screen.
func NewScreen() (*Screen, error) {
	tcellScreen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}
	if err := tcellScreen.Init(); err != nil {
		return nil, fmt.Errorf("failed to init screen: %w", err)
	}

	width, height := tcellScreen.Size()
	return &Screen{
		tcellScreen: tcellScreen,
		width:       width,
		height:      height,
	}, nil
}

// Close releases the terminal.
func (s *Screen) Close() error {
	s.tcellScreen.Fini()
	return nil
}

// Clear clears the entire screen.
func (s *Screen) Clear() {
	s.tcellScreen.Clear()
}

// DrawString draws text at the given position, Unicode-width aware.
func (s *Screen) DrawString(x, y int, text string, style tcell.Style) {
	col := x
	for _, r := range text {
		if col >= s.width {
			break
		}
		s.tcellScreen.SetContent(col, y, r, nil, style)
		w := runewidth.RuneWidth(r)
		if w < 1 {
			w = 1
		}
		col += w
	}
}

// PollEvent blocks for the next event.
func (s *Screen) PollEvent() tcell.Event {
	return s.tcellScreen.PollEvent()
}

// Show flushes pending draws.
func (s *Screen) Show() {
	s.tcellScreen.Show()
}

// Size returns the current width and height.
func (s *Screen) Size() (int, int) {
	s.width, s.height = s.tcellScreen.Size()
	return s.width, s.height
}

// DefaultStyle returns the default terminal style.
func DefaultStyle() tcell.Style {
	return tcell.StyleDefault
}

// StyleBold returns a bold style.
func StyleBold() tcell.Style {
	return tcell.StyleDefault.Bold(true)
}

// StyleReverse returns a reverse video style.
func StyleReverse() tcell.Style {
	return tcell.StyleDefault.Reverse(true)
}

// StyleDim returns a dim style.
func StyleDim() tcell.Style {
	return tcell.StyleDefault.Dim(true)
}
