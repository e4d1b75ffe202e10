// Package tui renders a game session in the terminal. It owns presentation
// only: key events become state machine calls, and every frame re-renders
// from the session snapshot the machine exposes.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tatianab/gamebook/internal/game"
	"github.com/tatianab/gamebook/internal/player"
)

const overlayDuration = 1500 * time.Millisecond

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)

	storyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true)

	lockedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#555555")).
			Strikethrough(true)

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC"))

	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	overlayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#FFA500")).
			Padding(0, 1)

	flashStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#AA0000")).
			Bold(true).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	endStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)
)

var menuOptions = []string{"NEW GAME", "LOAD GAME", "QUIT"}

type clearOverlayMsg struct{ seq int }

type model struct {
	machine    *game.Machine
	nameInput  textinput.Model
	story      viewport.Model
	menuIndex  int
	cursor     int
	width      int
	height     int
	overlaySeq int
}

// NewModel wires a machine into a fresh TUI model.
func NewModel(m *game.Machine) model {
	ti := textinput.New()
	ti.Placeholder = player.DefaultName
	ti.CharLimit = 18
	ti.Width = 24

	return model{
		machine:   m,
		nameInput: ti,
		story:     viewport.New(60, 12),
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.story.Width = storyWidth(msg.Width)
		m.story.Height = max(4, msg.Height-10)
		m.syncStory()
		return m, nil

	case clearOverlayMsg:
		if msg.seq == m.overlaySeq {
			m.machine.ClearOverlay()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	if m.machine.Session.Screen == game.ScreenNameEntry {
		m.nameInput, cmd = m.nameInput.Update(msg)
	}
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch m.machine.Session.Screen {
	case game.ScreenMenu:
		return m.handleMenuKey(msg)
	case game.ScreenNameEntry:
		return m.handleNameKey(msg)
	case game.ScreenGameplay:
		return m.handleGameplayKey(msg)
	case game.ScreenJournal:
		return m.handleJournalKey(msg)
	default: // gameover, victory, data_error
		switch msg.String() {
		case "enter", " ", "esc":
			m.machine.Restart()
		case "l":
			if m.machine.Session.Screen == game.ScreenDataError {
				return m.loadGame()
			}
		}
		return m, nil
	}
}

func (m model) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.menuIndex = (m.menuIndex + len(menuOptions) - 1) % len(menuOptions)
	case "down", "j":
		m.menuIndex = (m.menuIndex + 1) % len(menuOptions)
	case "l":
		return m.loadGame()
	case "enter":
		switch m.menuIndex {
		case 0:
			m.machine.NewGame()
			m.nameInput.Reset()
			m.nameInput.Focus()
		case 1:
			return m.loadGame()
		default:
			return m, tea.Quit
		}
	case "esc", "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m model) loadGame() (tea.Model, tea.Cmd) {
	m.machine.LoadGame()
	m.cursor = 0
	m.syncStory()
	cmd := m.scheduleOverlayClear()
	return m, cmd
}

func (m model) handleNameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.machine.CancelNameEntry()
		return m, nil
	case tea.KeyEnter:
		m.machine.ConfirmName(strings.TrimSpace(m.nameInput.Value()))
		m.cursor = m.firstUnlocked()
		m.syncStory()
		cmd := m.scheduleOverlayClear()
		return m, cmd
	}
	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

func (m model) handleGameplayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		return m, tea.Quit
	case "j":
		m.machine.ToggleJournal()
		return m, nil
	case "s":
		m.machine.SaveGame()
		cmd := m.scheduleOverlayClear()
		return m, cmd
	case "up", "k":
		m.cursor = m.moveCursor(-1)
		return m, nil
	case "down":
		m.cursor = m.moveCursor(1)
		return m, nil
	case "1", "2", "3", "4":
		return m.activate(int(msg.String()[0] - '1'))
	case "enter", " ":
		if len(m.machine.ChoiceViews()) > 0 {
			return m.activate(m.cursor)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.story, cmd = m.story.Update(msg)
	return m, cmd
}

func (m model) activate(idx int) (tea.Model, tea.Cmd) {
	m.machine.ActivateChoice(idx)
	m.cursor = m.firstUnlocked()
	m.syncStory()
	cmd := m.scheduleOverlayClear()
	return m, cmd
}

func (m model) handleJournalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "j":
		m.machine.ToggleJournal()
	case "up", "k":
		m.machine.ScrollJournal(-1, m.journalVisible())
	case "down":
		m.machine.ScrollJournal(1, m.journalVisible())
	}
	return m, nil
}

// scheduleOverlayClear arms a timer for the current overlay, if any. The
// sequence number keeps a stale timer from clearing a newer message.
func (m *model) scheduleOverlayClear() tea.Cmd {
	if m.machine.Session.EventText == "" {
		return nil
	}
	m.overlaySeq++
	seq := m.overlaySeq
	return tea.Tick(overlayDuration, func(time.Time) tea.Msg {
		return clearOverlayMsg{seq: seq}
	})
}

func (m *model) syncStory() {
	node := m.machine.Session.Current
	if node == nil {
		m.story.SetContent("")
		return
	}
	text := node.Text
	if node.Art != "" {
		text = node.Art + "\n\n" + text
	}
	m.story.SetContent(storyStyle.Width(m.story.Width).Render(text))
	m.story.GotoTop()
}

func (m model) firstUnlocked() int {
	for i, v := range m.machine.ChoiceViews() {
		if !v.Locked {
			return i
		}
	}
	return 0
}

// moveCursor steps the selection, skipping locked rows and staying put when
// every row is locked.
func (m model) moveCursor(delta int) int {
	views := m.machine.ChoiceViews()
	total := len(views)
	if total == 0 {
		return 0
	}
	idx := m.cursor
	for i := 0; i < total; i++ {
		idx = (idx + delta + total) % total
		if !views[idx].Locked {
			return idx
		}
	}
	return m.cursor
}

func (m model) journalVisible() int {
	return max(1, m.height-6)
}

func (m model) View() string {
	s := m.machine.Session
	switch s.Screen {
	case game.ScreenMenu:
		return m.viewMenu()
	case game.ScreenNameEntry:
		return m.viewNameEntry()
	case game.ScreenGameplay:
		return m.viewGameplay()
	case game.ScreenJournal:
		return m.viewJournal()
	case game.ScreenGameOver:
		return m.viewEnding("GAME OVER", s.EndText, "enter: back to menu")
	case game.ScreenVictory:
		return m.viewEnding("VICTORY", s.VictorySummary, "enter: back to menu")
	case game.ScreenDataError:
		return m.viewEnding("DATA ERROR", s.EndText, "enter: back to menu  l: load save")
	}
	return ""
}

func (m model) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n" + titleStyle.Render("GAMEBOOK") + "\n\n")
	for i, opt := range menuOptions {
		if i == m.menuIndex {
			b.WriteString(cursorStyle.Render("> "+opt) + "\n")
		} else {
			b.WriteString(choiceStyle.Render("  "+opt) + "\n")
		}
	}
	b.WriteString("\n" + helpStyle.Render("arrows: move  enter: select  l: load  q: quit"))
	b.WriteString("\n" + m.overlay())
	return b.String()
}

func (m model) viewNameEntry() string {
	return fmt.Sprintf(
		"\n%s\n\nWhat is your name, traveler?\n\n%s\n\n%s\n",
		titleStyle.Render("NEW GAME"),
		m.nameInput.View(),
		helpStyle.Render("enter: begin  esc: back"),
	)
}

func (m model) viewGameplay() string {
	s := m.machine.Session
	node := s.Current

	header := titleStyle.Render(node.Title)
	body := m.story.View()

	var choices strings.Builder
	for i, v := range m.machine.ChoiceViews() {
		line := fmt.Sprintf("%d. %s", i+1, v.Label)
		switch {
		case v.Locked:
			choices.WriteString(lockedStyle.Render(line) + "\n")
		case i == m.cursor:
			choices.WriteString(cursorStyle.Render("> "+line) + "\n")
		default:
			choices.WriteString(choiceStyle.Render("  "+line) + "\n")
		}
	}

	main := lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", choices.String())
	panel := lipgloss.JoinHorizontal(lipgloss.Top, main, m.viewSidebar())

	help := helpStyle.Render("1-4/enter: choose  j: journal  s: save  q: quit")
	return "\n" + lipgloss.JoinVertical(lipgloss.Left, panel, help, m.overlay()) + "\n"
}

func (m model) viewSidebar() string {
	p := m.machine.Session.Player
	var b strings.Builder
	b.WriteString(titleStyle.Render(strings.ToUpper(p.Name)) + "\n\n")
	b.WriteString(fmt.Sprintf("Health %3d\n", p.Health))
	b.WriteString(fmt.Sprintf("Food   %3d\n", p.Food))
	b.WriteString(fmt.Sprintf("Gold   %3d\n", p.Gold))
	b.WriteString(fmt.Sprintf("Morale %3d\n", p.Morale))
	return sidebarStyle.Render(b.String())
}

func (m model) viewJournal() string {
	s := m.machine.Session
	entries := s.Journal.Items()
	visible := m.journalVisible()

	start := s.JournalScroll
	if start > len(entries) {
		start = len(entries)
	}
	end := min(len(entries), start+visible)

	var b strings.Builder
	b.WriteString("\n" + titleStyle.Render("JOURNAL") + "\n\n")
	if len(entries) == 0 {
		b.WriteString(helpStyle.Render("(no entries yet)") + "\n")
	}
	for _, line := range entries[start:end] {
		b.WriteString(choiceStyle.Render(line) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render(fmt.Sprintf("%d entries  arrows: scroll  j/esc: back", len(entries))))
	return b.String()
}

func (m model) viewEnding(title, text, help string) string {
	return fmt.Sprintf(
		"\n%s\n\n%s\n\n%s\n",
		endStyle.Render(title),
		storyStyle.Render(text),
		helpStyle.Render(help),
	)
}

func (m model) overlay() string {
	s := m.machine.Session
	if s.EventText == "" {
		return ""
	}
	if s.EventFlash {
		return flashStyle.Render(s.EventText)
	}
	return overlayStyle.Render(s.EventText)
}

func storyWidth(total int) int {
	w := int(float64(total) * 0.7)
	if w < 20 {
		w = 20
	}
	return w
}

// Run starts the TUI over the given machine and blocks until exit.
func Run(m *game.Machine) error {
	p := tea.NewProgram(NewModel(m), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
