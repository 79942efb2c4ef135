// Package selectstoryui is the launch screen shown when goz is started
// without a story file on the command line: a scrollable list of story
// files found in a local directory, handed off to the caller's model
// factory once one is picked.
package selectstoryui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var docStyle = lipgloss.NewStyle().Margin(1, 2)

// storyExtensions are the story-file suffixes spec.md §4.1 recognizes
// (versions 1-5, 7-8; v6 is rejected once loaded, but its file is still
// listed so the player sees a clear version-six error rather than the
// file silently not appearing).
var storyExtensions = map[string]bool{
	".z1": true, ".z2": true, ".z3": true, ".z4": true, ".z5": true,
	".z6": true, ".z7": true, ".z8": true, ".zblorb": true, ".zcode": true,
}

type story struct {
	name string
	path string
}

func (s story) Title() string       { return s.name }
func (s story) Description() string { return s.path }
func (s story) FilterValue() string { return s.name }

type selectStoryState int

const (
	scanningDirectory selectStoryState = iota
	choosingStory
	noStoriesFound
)

type storiesFoundMsg []list.Item

type errMsg struct{ error }

func (e errMsg) Error() string { return e.error.Error() }

// CreateAppModel builds the model that takes over once a story file's
// bytes and display name are known.
type CreateAppModel func(storyBytes []byte, name string) (tea.Model, error)

type selectStoryModel struct {
	state     selectStoryState
	storyList list.Model
	err       error
	createApp CreateAppModel
	storyDir  string
}

// NewUIModel returns the launch-screen model, scanning storyDir (or the
// current working directory if empty) for recognized story files.
func NewUIModel(createApp CreateAppModel, storyDir string) tea.Model {
	if storyDir == "" {
		storyDir = "."
	}
	return selectStoryModel{
		state:     scanningDirectory,
		storyList: list.New(make([]list.Item, 0), list.NewDefaultDelegate(), 0, 0),
		createApp: createApp,
		storyDir:  storyDir,
	}
}

func (m selectStoryModel) Init() tea.Cmd {
	m.storyList.SetShowTitle(false)
	return scanDirectory(m.storyDir)
}

func (m selectStoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			if m.state != choosingStory {
				break
			}
			s, ok := m.storyList.SelectedItem().(story)
			if !ok {
				break
			}
			data, err := os.ReadFile(s.path)
			if err != nil {
				m.err = err
				return m, nil
			}
			newModel, err := m.createApp(data, s.name)
			if err != nil {
				m.err = err
				return m, nil
			}
			return newModel, newModel.Init()
		}

	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.storyList.SetSize(msg.Width-h, msg.Height-v)

	case storiesFoundMsg:
		if len(msg) == 0 {
			m.state = noStoriesFound
			return m, nil
		}
		m.state = choosingStory
		m.storyList.SetShowStatusBar(false)
		m.storyList.SetShowTitle(false)
		return m, m.storyList.SetItems([]list.Item(msg))

	case errMsg:
		m.err = msg
		return m, nil
	}

	var cmd tea.Cmd
	m.storyList, cmd = m.storyList.Update(msg)
	return m, cmd
}

func (m selectStoryModel) View() string {
	if m.err != nil {
		return docStyle.Render(m.err.Error())
	}
	switch m.state {
	case scanningDirectory:
		return "\n\n   scanning for story files...\n\n"
	case noStoriesFound:
		return docStyle.Render(fmt.Sprintf("no story files (%s) found under %s\n", extensionList(), m.storyDir))
	case choosingStory:
		return docStyle.Render(m.storyList.View())
	default:
		return ""
	}
}

func extensionList() string {
	exts := make([]string, 0, len(storyExtensions))
	for e := range storyExtensions {
		exts = append(exts, e)
	}
	return strings.Join(exts, ", ")
}

func scanDirectory(dir string) tea.Cmd {
	return func() tea.Msg {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return errMsg{err}
		}

		var items []list.Item
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := strings.ToLower(filepath.Ext(entry.Name()))
			if !storyExtensions[ext] {
				continue
			}
			items = append(items, story{
				name: entry.Name(),
				path: filepath.Join(dir, entry.Name()),
			})
		}

		return storiesFoundMsg(items)
	}
}
