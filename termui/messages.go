package termui

import "github.com/oliverhutch/goz/zmachine"

// Every method on Bridge that the running interpreter calls from its own
// goroutine is translated into one of these tea.Msg values and handed to
// the bubbletea program, instead of mutating UI state directly - the
// interpreter and the render loop never touch the same memory.
type textMsg struct {
	text  string
	lower bool
}

type styleMsg zmachine.TextStyle

type clearMsg struct{}

type doneMsg struct{}

type quitMsg struct{}

type splitMsg int

type activeWindowMsg bool

type eraseWindowMsg int

type eraseLineMsg struct{}

type cursorMsg struct{ line, col int }

type statusMsg zmachine.StatusBar

type soundMsg struct{ number, effect, volume, repeats int }

type readLineRequestMsg struct{ terminators []uint8 }

type readCharRequestMsg struct{}

type runtimeDoneMsg struct{}

// runtimeErrorMsg carries a fatal zmachine.RuntimeError across the
// goroutine boundary once Run returns one, so the Update loop can render
// it and the caller can tell success apart from a fatal exit.
type runtimeErrorMsg string
