package termui

import (
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/oliverhutch/goz/zmachine"
)

type inputKind int

const (
	inputNone inputKind = iota
	inputLine
	inputChar
)

// storyModel is the running-game screen: a scroll-back lower window plus an
// optional fixed upper window, matching the v1-v3 status line / v4+ split
// window behaviour the interpreter drives through Bridge.
type storyModel struct {
	bridge *Bridge
	z      *zmachine.ZMachine
	title  string

	width, height int

	upperHeight int
	upperLines  []string
	lowerText   strings.Builder

	activeLower bool
	style       lipgloss.Style

	statusBar zmachine.StatusBar

	waiting    inputKind
	validTerms []uint8
	input      textinput.Model

	runtimeErr string
	quit       bool
}

// NewStoryModel builds the bubbletea model for a loaded story, bound to
// bridge for all interpreter I/O. z.Run() is started from Init, once the
// bubbletea program is actually listening for the Sends Bridge will make.
func NewStoryModel(bridge *Bridge, z *zmachine.ZMachine, title string) tea.Model {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 255
	ti.Prompt = ""

	return storyModel{
		bridge: bridge,
		z:      z,
		title:  title,
		input:  ti,
		style:  lipgloss.NewStyle(),
	}
}

// Err reports the fatal zmachine.RuntimeError that ended the session, if
// any; callers use this to distinguish a normal quit from a story bug
// once the bubbletea program has returned.
func (m storyModel) Err() error {
	if m.runtimeErr == "" {
		return nil
	}
	return zmachine.RuntimeError(m.runtimeErr)
}

func (m storyModel) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle(m.title),
		tea.WindowSize(),
		runInterpreter(m.z),
	)
}

func (m storyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.bridge.close()
			return m, tea.Quit
		}
		switch m.waiting {
		case inputChar:
			m.waiting = inputNone
			code := keyToInputCode(msg)
			go m.bridge.submitChar(code)
		case inputLine:
			terminator := zmachine.InputCode(13)
			code := keyToInputCode(msg)
			if msg.Type != tea.KeyEnter && isTerminator(code, m.validTerms) {
				terminator = code
			} else if msg.Type != tea.KeyEnter {
				break
			}
			m.waiting = inputNone
			text := m.input.Value()
			m.lowerText.WriteString(text + "\n")
			m.input.SetValue("")
			go m.bridge.submitLine(text, terminator)
		}

	case textMsg:
		if msg.lower || !m.activeLower && m.upperHeight == 0 {
			m.lowerText.WriteString(msg.text)
		} else {
			m.writeUpper(msg.text)
		}

	case clearMsg:
		m.lowerText.Reset()
		m.upperLines = nil

	case splitMsg:
		m.upperHeight = int(msg)
		m.resizeUpper()

	case activeWindowMsg:
		m.activeLower = bool(msg)

	case eraseWindowMsg:
		switch int(msg) {
		case -2, -1:
			m.lowerText.Reset()
			m.upperLines = nil
			if int(msg) == -1 {
				m.upperHeight = 0
			}
		case 0:
			m.lowerText.Reset()
		case 1:
			for i := range m.upperLines {
				m.upperLines[i] = strings.Repeat(" ", m.width)
			}
		}

	case eraseLineMsg:
		// No cursor-addressed erase in the scroll-back lower window; only
		// meaningful with a tracked cursor position in the upper window,
		// which this simplified renderer does not maintain per-column.

	case cursorMsg:
		// Cursor positioning only matters for the upper window; text is
		// placed at the write point given in textMsg, so there is nothing
		// further to track here.

	case statusMsg:
		m.statusBar = zmachine.StatusBar(msg)

	case styleMsg:
		m.style = styleFromFlags(zmachine.TextStyle(msg))

	case soundMsg:
		if msg.number == 1 || msg.number == 2 {
			fmt.Print("\a")
		}

	case doneMsg:
		// The story finished its final output flush; nothing further to
		// render until Quit arrives.

	case quitMsg:
		m.bridge.close()
		m.quit = true
		return m, tea.Quit

	case runtimeDoneMsg:
		return m, tea.Quit

	case runtimeErrorMsg:
		m.runtimeErr = string(msg)
		return m, tea.Quit

	case readLineRequestMsg:
		m.waiting = inputLine
		m.validTerms = msg.terminators

	case readCharRequestMsg:
		m.waiting = inputChar
	}

	if m.waiting == inputLine {
		m.input, cmd = m.input.Update(msg)
	}

	return m, cmd
}

func (m *storyModel) resizeUpper() {
	if m.width == 0 {
		return
	}
	for len(m.upperLines) < m.upperHeight {
		m.upperLines = append(m.upperLines, strings.Repeat(" ", m.width))
	}
	if len(m.upperLines) > m.upperHeight {
		m.upperLines = m.upperLines[:m.upperHeight]
	}
}

func (m *storyModel) writeUpper(text string) {
	m.resizeUpper()
	if len(m.upperLines) == 0 {
		return
	}
	m.upperLines[0] = text
}

func (m storyModel) View() string {
	if m.runtimeErr != "" {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f5f")).Bold(true).Render("z-machine error: "+m.runtimeErr) + "\n"
	}
	if m.width == 0 {
		return "loading..."
	}

	var b strings.Builder

	if m.statusBar.PlaceName != "" {
		b.WriteString(lipgloss.NewStyle().Reverse(true).Width(m.width).Render(statusLine(m.width, m.statusBar)))
		b.WriteByte('\n')
	}
	for _, row := range m.upperLines {
		b.WriteString(row)
		b.WriteByte('\n')
	}

	wrapped := wordwrap.String(m.lowerText.String(), max(m.width, 1))
	lines := strings.Split(wrapped, "\n")
	budget := m.height - strings.Count(b.String(), "\n") - 1
	if budget > 0 && len(lines) > budget {
		lines = lines[len(lines)-budget:]
	}
	b.WriteString(strings.Join(lines, "\n"))

	if m.waiting == inputLine {
		b.WriteString(m.input.View())
	}

	return b.String()
}

func statusLine(width int, bar zmachine.StatusBar) string {
	right := fmt.Sprintf("Score: %d  Moves: %d", bar.Score, bar.Moves)
	if bar.IsTimeBased {
		right = fmt.Sprintf("Time: %d:%02d", bar.Score, bar.Moves)
	}
	if len(right)+1 >= width {
		return right
	}
	pad := width - len(bar.PlaceName) - len(right)
	if pad < 1 {
		pad = 1
	}
	return bar.PlaceName + strings.Repeat(" ", pad) + right
}

func styleFromFlags(style zmachine.TextStyle) lipgloss.Style {
	s := lipgloss.NewStyle()
	if style&zmachine.StyleReverseVideo != 0 {
		s = s.Reverse(true)
	}
	if style&zmachine.StyleBold != 0 {
		s = s.Bold(true)
	}
	if style&zmachine.StyleItalic != 0 {
		s = s.Italic(true)
	}
	return s
}

// keyToInputCode maps a bubbletea key event to the Z-machine input-code
// space (spec.md S5 terminating-character table): cursor keys, function
// keys, and keypad digits occupy 129-154, mouse clicks 253-254.
func keyToInputCode(msg tea.KeyMsg) zmachine.InputCode {
	switch msg.Type {
	case tea.KeyUp:
		return zmachine.InputCursorUp
	case tea.KeyDown:
		return zmachine.InputCursorDn
	case tea.KeyLeft:
		return zmachine.InputCursorL
	case tea.KeyRight:
		return zmachine.InputCursorR
	case tea.KeyEnter:
		return zmachine.InputNewline
	case tea.KeyEscape:
		return zmachine.InputEscape
	case tea.KeyDelete, tea.KeyBackspace:
		return zmachine.InputDelete
	case tea.KeyF1, tea.KeyF2, tea.KeyF3, tea.KeyF4, tea.KeyF5, tea.KeyF6,
		tea.KeyF7, tea.KeyF8, tea.KeyF9, tea.KeyF10, tea.KeyF11, tea.KeyF12:
		return zmachine.InputF1 + zmachine.InputCode(msg.Type-tea.KeyF1)
	default:
		if len(msg.Runes) > 0 {
			return zmachine.InputCode(msg.Runes[0])
		}
		return 0
	}
}

func isTerminator(code zmachine.InputCode, valid []uint8) bool {
	for _, t := range valid {
		if zmachine.InputCode(t) == code {
			return true
		}
	}
	return false
}

// runInterpreter drives z.Run() to completion on bubbletea's command
// goroutine (not the Update goroutine), returning runtimeDoneMsg once the
// story quits. Every call z makes into Bridge crosses back over Send, so
// no interpreter state is ever touched from Update directly.
func runInterpreter(z *zmachine.ZMachine) tea.Cmd {
	return func() tea.Msg {
		if err := z.Run(); err != nil {
			return runtimeErrorMsg(err.Error())
		}
		return runtimeDoneMsg{}
	}
}

// NewGameModel loads a story file and returns its bubbletea model along
// with the Bridge the caller must Attach to the *tea.Program once one
// exists - construction and attachment are split because the program
// needs the model to exist before it can be created, and the Bridge needs
// the program to exist before the interpreter goroutine starts calling it.
func NewGameModel(story []uint8, title string, logger *log.Logger) (tea.Model, *Bridge, error) {
	bridge := NewBridge()
	z, err := zmachine.Load(story, bridge, logger)
	if err != nil {
		return nil, nil, err
	}
	return NewStoryModel(bridge, z, title), bridge, nil
}

// Run loads a story file and blocks until the session ends, rendering it
// with a bubbletea program bound to a fresh Bridge.
func Run(story []uint8, title string, logger *log.Logger) error {
	model, bridge, err := NewGameModel(story, title, logger)
	if err != nil {
		return err
	}

	program := tea.NewProgram(model)
	bridge.Attach(program)

	finalModel, err := program.Run()
	if err != nil {
		return err
	}
	if sm, ok := finalModel.(storyModel); ok {
		return sm.Err()
	}
	return nil
}
