// Package game drives a session through the story graph: screen routing,
// choice activation, stat upkeep, random events, bounded history, and
// save/load at the boundary.
//
// A single Machine owns a single Session and processes one input to
// completion at a time; nothing here is safe for concurrent use and nothing
// needs to be. The loaded story graph is read-only and shared by reference.
package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/tatianab/gamebook/internal/player"
	"github.com/tatianab/gamebook/internal/save"
	"github.com/tatianab/gamebook/internal/story"
)

// Screen identifies which view the frontend should render.
type Screen string

const (
	ScreenMenu      Screen = "menu"
	ScreenNameEntry Screen = "name_entry"
	ScreenGameplay  Screen = "gameplay"
	ScreenJournal   Screen = "journal"
	ScreenGameOver  Screen = "gameover"
	ScreenVictory   Screen = "victory"
	ScreenDataError Screen = "data_error"
)

// HistoryLimit caps the visit history and journal rings.
const HistoryLimit = 500

// victoryPathLen is how many trailing visits the victory summary shows.
const victoryPathLen = 8

// Session is the complete mutable state of one playthrough. It is owned
// and mutated exclusively by the Machine; frontends read it to render.
type Session struct {
	Screen         Screen
	Player         player.State
	CurrentID      string
	Current        *story.Node
	Visited        *Ring
	Journal        *Ring
	JournalScroll  int
	EventText      string // transient overlay message
	EventFlash     bool   // overlay marks a failure, frontend flashes it
	EndText        string
	VictorySummary string
}

// Config tunes a Machine. Zero values select the defaults.
type Config struct {
	Upkeep      player.UpkeepConfig
	EventChance float64
	Audio       AudioSink
	Rand        *rand.Rand
	SavePath    string
}

// Machine orchestrates the session against a loaded story graph.
type Machine struct {
	graph    *story.Graph
	upkeep   player.UpkeepConfig
	events   Injector
	audio    AudioSink
	rng      *rand.Rand
	savePath string

	Session Session
}

// New returns a machine on the menu screen.
func New(graph *story.Graph, cfg Config) *Machine {
	if cfg.Upkeep == (player.UpkeepConfig{}) {
		cfg.Upkeep = player.DefaultUpkeep()
	}
	if cfg.EventChance == 0 {
		cfg.EventChance = DefaultEventChance
	}
	if cfg.Audio == nil {
		cfg.Audio = NopAudio{}
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Machine{
		graph:    graph,
		upkeep:   cfg.Upkeep,
		events:   Injector{Chance: cfg.EventChance},
		audio:    cfg.Audio,
		rng:      cfg.Rand,
		savePath: cfg.SavePath,
		Session: Session{
			Screen:  ScreenMenu,
			Visited: NewRing(HistoryLimit),
			Journal: NewRing(HistoryLimit),
		},
	}
}

// Graph exposes the loaded story graph for read-only use.
func (m *Machine) Graph() *story.Graph { return m.graph }

// ChoiceViews returns the current node's choices with lock flags, in
// declaration order. Empty outside gameplay.
func (m *Machine) ChoiceViews() []story.ChoiceView {
	if m.Session.Current == nil {
		return nil
	}
	return m.graph.ChoicesFor(m.Session.Current, m.Session.Player)
}

// NewGame routes menu -> name_entry.
func (m *Machine) NewGame() {
	if m.Session.Screen != ScreenMenu {
		return
	}
	m.Session.Screen = ScreenNameEntry
}

// CancelNameEntry routes name_entry -> menu.
func (m *Machine) CancelNameEntry() {
	if m.Session.Screen == ScreenNameEntry {
		m.Session.Screen = ScreenMenu
	}
}

// ConfirmName starts a fresh session at the entry node.
func (m *Machine) ConfirmName(name string) {
	if m.Session.Screen != ScreenNameEntry {
		return
	}
	s := &m.Session
	s.Player = player.New(name)
	s.Visited.Reset()
	s.Journal.Reset()
	s.JournalScroll = 0
	s.EventText = ""
	s.EventFlash = false
	s.EndText = ""
	s.VictorySummary = ""
	s.Screen = ScreenGameplay
	m.audio.Play(TriggerAmbientStart)

	entry := m.graph.EntryID()
	if !m.enterNode(entry, true, true) {
		m.enterDataError(fmt.Sprintf("Story data error: missing entry node %q.", entry))
	}
}

// LoadGame restores a session from the save path. On any failure the
// current screen is kept and an overlay message is set; no partial state
// is ever adopted.
func (m *Machine) LoadGame() bool {
	if m.Session.Screen != ScreenMenu && m.Session.Screen != ScreenDataError {
		return false
	}
	snap, err := save.Read(m.savePath)
	if err != nil {
		m.setOverlay("No valid save found.", false)
		return false
	}
	if !m.graph.NodeExists(snap.CurrentNodeID) {
		m.setOverlay("No valid save found.", false)
		return false
	}

	s := &m.Session
	s.Player = snap.Player
	s.Visited.Fill(snap.VisitedNodes)
	s.Journal.Fill(snap.Journal)
	s.JournalScroll = 0
	s.EndText = ""
	s.VictorySummary = ""
	s.Screen = ScreenGameplay
	m.audio.Play(TriggerAmbientStart)

	// Restoring must not re-apply arrival effects or re-record the visit.
	if !m.enterNode(snap.CurrentNodeID, false, false) {
		m.enterDataError(fmt.Sprintf("Story data error: missing node %q.", snap.CurrentNodeID))
		return false
	}
	m.setOverlay("Save loaded.", false)
	return true
}

// SaveGame writes the session snapshot. Failures surface as overlay text;
// the prior save on disk stays intact either way.
func (m *Machine) SaveGame() {
	if m.Session.Screen != ScreenGameplay {
		return
	}
	snap := save.Snapshot{
		Player:        m.Session.Player,
		CurrentNodeID: m.Session.CurrentID,
		VisitedNodes:  m.Session.Visited.Items(),
		Journal:       m.Session.Journal.Items(),
	}
	if err := save.Write(m.savePath, snap); err != nil {
		m.setOverlay("Save failed.", true)
		return
	}
	m.setOverlay("Game saved.", false)
}

// ToggleJournal flips between gameplay and the journal view.
func (m *Machine) ToggleJournal() {
	switch m.Session.Screen {
	case ScreenGameplay:
		m.Session.Screen = ScreenJournal
	case ScreenJournal:
		m.Session.Screen = ScreenGameplay
	}
}

// ScrollJournal moves the scroll offset by delta and clamps it to
// [0, max(0, total-visible)] so the window never runs past the last entry.
func (m *Machine) ScrollJournal(delta, visible int) {
	s := &m.Session
	s.JournalScroll += delta
	maxScroll := s.Journal.Len() - visible
	if maxScroll < 0 {
		maxScroll = 0
	}
	if s.JournalScroll > maxScroll {
		s.JournalScroll = maxScroll
	}
	if s.JournalScroll < 0 {
		s.JournalScroll = 0
	}
}

// Restart leaves a terminal screen for the menu.
func (m *Machine) Restart() {
	switch m.Session.Screen {
	case ScreenGameOver, ScreenVictory, ScreenDataError:
		m.Session.Screen = ScreenMenu
		m.Session.EndText = ""
		m.Session.VictorySummary = ""
	}
}

// ClearOverlay drops the transient event text once the frontend has shown it.
func (m *Machine) ClearOverlay() {
	m.Session.EventText = ""
	m.Session.EventFlash = false
}

// ActivateChoice runs the choice activation protocol for the selected
// index. Out-of-range or locked selections are rejected without mutation.
// An invalid destination sets an error overlay and leaves stats and the
// current node untouched: validation is strictly ordered before mutation.
func (m *Machine) ActivateChoice(idx int) {
	s := &m.Session
	if s.Screen != ScreenGameplay || s.Current == nil {
		return
	}
	views := m.graph.ChoicesFor(s.Current, s.Player)
	if idx < 0 || idx >= len(views) {
		return
	}
	view := views[idx]
	if view.Locked {
		return
	}

	dest := view.To
	destNode, ok := m.graph.Node(dest)
	if !ok {
		m.setOverlay("Invalid story link.", true)
		return
	}

	s.Player = s.Player.ApplyEffect(view.Effects.Player())
	s.Player = s.Player.ApplyUpkeep(m.upkeep)
	if !s.Player.IsAlive() {
		// Dying to upkeep ends the run before the move completes, no
		// matter what the destination node would have done.
		m.enterGameOver("You collapse from your wounds before you can continue.")
		return
	}

	m.appendVisit(destNode)
	m.audio.Play(TriggerConfirm)

	if event, fired := m.events.MaybeFire(m.rng, destNode.Events); fired {
		s.Player = s.Player.ApplyEffect(event.Effects.Player())
		m.setOverlay(event.Text, false)
		m.appendJournal("* " + event.Text)
		if event.Effects.Harmful() {
			m.audio.Play(TriggerDanger)
		}
	}

	if !m.enterNode(dest, true, false) {
		// NodeExists held above, so this only trips on a graph defect.
		m.enterDataError(fmt.Sprintf("Story data error: missing destination %q.", dest))
	}
}

// enterNode makes id the current node, optionally recording the visit and
// applying the node's arrival effects, then resolves terminal status.
// Returns false when the node cannot be resolved.
func (m *Machine) enterNode(id string, applyEffects, record bool) bool {
	node, ok := m.graph.Node(id)
	if !ok {
		return false
	}
	s := &m.Session
	s.Current = node
	s.CurrentID = id

	if record {
		m.appendVisit(node)
	}
	if applyEffects && len(node.Effects) > 0 {
		s.Player = s.Player.ApplyEffect(node.Effects.Player())
	}

	m.audio.Play(TriggerClick)
	if s.Player.Health < 20 {
		m.audio.Play(TriggerDanger)
	}

	m.resolveArrival()
	return true
}

// resolveArrival settles the session after the current node changes:
// death by stats, then node-type endings, then the locked-out defense.
func (m *Machine) resolveArrival() {
	s := &m.Session
	if !s.Player.IsAlive() {
		m.enterGameOver("You collapse from your wounds before you can continue.")
		return
	}
	switch s.Current.Type {
	case story.TypeEndingDeath:
		m.enterGameOver(s.Current.Text)
		return
	case story.TypeEndingWin, story.TypeEndingNeutral:
		m.enterVictory(s.Current.Text)
		return
	}
	// Normalization removes empty normal nodes, but every choice may still
	// be requirement-locked at runtime. Resolve as a neutral ending rather
	// than stranding the player with no input.
	if len(m.graph.Available(s.Current, s.Player)) == 0 {
		m.enterVictory("Your journey ends here, with no road left to take.")
	}
}

func (m *Machine) enterGameOver(text string) {
	if text == "" {
		text = "Your journey ends here."
	}
	m.audio.Play(TriggerAmbientStop)
	m.audio.Play(TriggerDeath)
	m.Session.Screen = ScreenGameOver
	m.Session.EndText = text
}

func (m *Machine) enterVictory(text string) {
	if text == "" {
		text = "Your adventure ends here."
	}
	m.audio.Play(TriggerAmbientStop)
	m.audio.Play(TriggerVictory)
	s := &m.Session
	s.Screen = ScreenVictory
	path := s.Visited.Last(victoryPathLen)
	s.VictorySummary = text
	if len(path) > 0 {
		s.VictorySummary = fmt.Sprintf("%s\n\nPath: %s", text, joinArrow(path))
	}
}

func (m *Machine) enterDataError(text string) {
	m.audio.Play(TriggerAmbientStop)
	m.Session.Screen = ScreenDataError
	m.Session.EndText = text
}

func (m *Machine) appendVisit(node *story.Node) {
	s := &m.Session
	s.Visited.Append(node.ID)
	m.appendJournal(fmt.Sprintf("%03d | §%d | %s", s.Visited.Len(), node.Section, node.Title))
}

// appendJournal records a line and keeps the scroll offset anchored to the
// same entries when the ring evicts, clamped so it never turns negative.
func (m *Machine) appendJournal(line string) {
	s := &m.Session
	if evicted := s.Journal.Append(line); evicted > 0 {
		s.JournalScroll -= evicted
		if s.JournalScroll < 0 {
			s.JournalScroll = 0
		}
	}
}

func (m *Machine) setOverlay(text string, flash bool) {
	m.Session.EventText = text
	m.Session.EventFlash = flash
}

func joinArrow(ids []string) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += " -> "
		}
		out += id
	}
	return out
}
