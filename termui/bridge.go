// Package termui renders a running Z-machine session to a terminal with
// bubbletea, the same front-end stack the rest of this module's TUI uses.
package termui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/oliverhutch/goz/zmachine"
)

// lineResult is what the render loop hands back once the player has
// finished typing a line of input.
type lineResult struct {
	text       string
	terminator zmachine.InputCode
	err        error
}

// Bridge implements zmachine.Interface on behalf of a bubbletea program.
// The interpreter runs on its own goroutine (spec.md S5's "host scheduling
// convenience"); every non-blocking call here is forwarded to the program
// with Send, and the two blocking calls (ReadLine, ReadChar) park on a
// channel until the Update loop supplies an answer.
type Bridge struct {
	program *tea.Program

	lines chan lineResult
	chars chan zmachine.InputCode

	done chan struct{}
}

// NewBridge returns a Bridge with no program attached yet; call Attach once
// the tea.Program exists, since the program and the model that owns this
// Bridge are constructed together.
func NewBridge() *Bridge {
	return &Bridge{
		lines: make(chan lineResult),
		chars: make(chan zmachine.InputCode),
		done:  make(chan struct{}),
	}
}

func (b *Bridge) Attach(p *tea.Program) {
	b.program = p
}

func (b *Bridge) Print(text string) {
	b.program.Send(textMsg{text: text, lower: true})
}

func (b *Bridge) PrintChar(r rune) {
	b.program.Send(textMsg{text: string(r), lower: true})
}

func (b *Bridge) Clear() {
	b.program.Send(clearMsg{})
}

func (b *Bridge) Done() {
	b.program.Send(doneMsg{})
}

func (b *Bridge) Quit() {
	b.program.Send(quitMsg{})
}

func (b *Bridge) SetTextStyle(style zmachine.TextStyle) {
	b.program.Send(styleMsg(style))
}

// ReadLine blocks until the render loop delivers a submitted line, or the
// program is torn down underneath it.
func (b *Bridge) ReadLine(terminators []uint8) (string, zmachine.InputCode, error) {
	b.program.Send(readLineRequestMsg{terminators: terminators})
	select {
	case res := <-b.lines:
		return res.text, res.terminator, res.err
	case <-b.done:
		return "", 0, errors.New("interface closed while waiting for input")
	}
}

func (b *Bridge) ReadChar() (zmachine.InputCode, error) {
	b.program.Send(readCharRequestMsg{})
	select {
	case code := <-b.chars:
		return code, nil
	case <-b.done:
		return 0, errors.New("interface closed while waiting for a keypress")
	}
}

func (b *Bridge) SplitWindow(lines int) {
	b.program.Send(splitMsg(lines))
}

func (b *Bridge) SetActiveWindow(lower bool) {
	b.program.Send(activeWindowMsg(lower))
}

func (b *Bridge) EraseWindow(which int) {
	b.program.Send(eraseWindowMsg(which))
}

func (b *Bridge) EraseLine() {
	b.program.Send(eraseLineMsg{})
}

func (b *Bridge) SetCursor(line, col int) {
	b.program.Send(cursorMsg{line: line, col: col})
}

func (b *Bridge) UpdateStatusBar(bar zmachine.StatusBar) {
	b.program.Send(statusMsg(bar))
}

func (b *Bridge) SoundEffect(number, effect, volume, repeats int) {
	b.program.Send(soundMsg{number: number, effect: effect, volume: volume, repeats: repeats})
}

// submitLine and submitChar are called from the Update loop (the UI
// goroutine) to wake up whichever interpreter goroutine is parked in
// ReadLine/ReadChar.
func (b *Bridge) submitLine(text string, terminator zmachine.InputCode) {
	b.lines <- lineResult{text: text, terminator: terminator}
}

func (b *Bridge) submitChar(code zmachine.InputCode) {
	b.chars <- code
}

func (b *Bridge) close() {
	close(b.done)
}

var _ zmachine.Interface = (*Bridge)(nil)
