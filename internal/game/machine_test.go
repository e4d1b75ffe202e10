package game

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tatianab/gamebook/internal/player"
	"github.com/tatianab/gamebook/internal/save"
	"github.com/tatianab/gamebook/internal/story"
)

const testDoc = `
entry: start
nodes:
  start:
    section: 1
    title: The Gate
    text: A door bars the way.
    choices:
      - label: open door
        to: hall
        requires: {gold: 10}
      - label: walk on
        to: road
      - label: leap into the void
        to: nonexistent_node
  hall:
    section: 2
    title: The Hall
    text: Dust motes hang in the light.
    choices:
      - label: rest
        to: good_end
  road:
    section: 3
    title: The Road
    text: The road stretches on.
    choices:
      - label: keep going
        to: road
      - label: give up
        to: sad_end
  locked_room:
    section: 4
    title: Locked Room
    text: Every exit is barred.
    choices:
      - label: golden key
        to: hall
        requires: {gold: 100}
  good_end:
    section: 5
    title: Triumph
    text: You made it out.
    type: ending_win
  sad_end:
    section: 6
    title: The Fall
    text: Darkness takes you.
    type: ending_death
`

// noEvents disables the random event roll entirely.
const noEvents = -1

func testGraph(t *testing.T) *story.Graph {
	t.Helper()
	g, err := story.Load(strings.NewReader(testDoc))
	require.NoError(t, err)
	return g
}

func testMachine(t *testing.T, cfg Config) *Machine {
	t.Helper()
	if cfg.EventChance == 0 {
		cfg.EventChance = noEvents
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(1))
	}
	if cfg.SavePath == "" {
		cfg.SavePath = filepath.Join(t.TempDir(), "save.json")
	}
	return New(testGraph(t), cfg)
}

func startGame(t *testing.T, m *Machine, name string) {
	t.Helper()
	m.NewGame()
	m.ConfirmName(name)
	require.Equal(t, ScreenGameplay, m.Session.Screen)
}

type triggerRecorder struct {
	got []Trigger
}

func (r *triggerRecorder) Play(tr Trigger) { r.got = append(r.got, tr) }

func (r *triggerRecorder) has(tr Trigger) bool {
	for _, g := range r.got {
		if g == tr {
			return true
		}
	}
	return false
}

func TestInitialScreenIsMenu(t *testing.T) {
	m := testMachine(t, Config{})
	assert.Equal(t, ScreenMenu, m.Session.Screen)
}

func TestNewGameFlow(t *testing.T) {
	m := testMachine(t, Config{})
	m.NewGame()
	assert.Equal(t, ScreenNameEntry, m.Session.Screen)

	m.ConfirmName("Rin")
	assert.Equal(t, ScreenGameplay, m.Session.Screen)
	assert.Equal(t, "start", m.Session.CurrentID)
	assert.Equal(t, "Rin", m.Session.Player.Name)
	assert.Equal(t, 1, m.Session.Visited.Len(), "entry visit is recorded")
	assert.Equal(t, 1, m.Session.Journal.Len())
}

func TestConfirmNameDefaultsEmpty(t *testing.T) {
	m := testMachine(t, Config{})
	m.NewGame()
	m.ConfirmName("")
	assert.Equal(t, player.DefaultName, m.Session.Player.Name)
}

func TestCancelNameEntry(t *testing.T) {
	m := testMachine(t, Config{})
	m.NewGame()
	m.CancelNameEntry()
	assert.Equal(t, ScreenMenu, m.Session.Screen)
}

func TestLockedChoiceIsFlaggedAndRejected(t *testing.T) {
	m := testMachine(t, Config{})
	startGame(t, m, "Rin")
	m.Session.Player.Gold = 5

	views := m.ChoiceViews()
	require.Len(t, views, 3)
	assert.True(t, views[0].Locked, "gold 5 < required 10: shown but locked")
	assert.False(t, views[1].Locked)

	before := m.Session.Player
	m.ActivateChoice(0)
	assert.Equal(t, "start", m.Session.CurrentID, "locked activation must not move")
	assert.Equal(t, before, m.Session.Player, "locked activation must not mutate stats")
}

func TestOutOfRangeChoiceRejected(t *testing.T) {
	m := testMachine(t, Config{})
	startGame(t, m, "Rin")
	before := m.Session.Player
	m.ActivateChoice(7)
	m.ActivateChoice(-1)
	assert.Equal(t, "start", m.Session.CurrentID)
	assert.Equal(t, before, m.Session.Player)
}

func TestActivationSucceedsWithSufficientGold(t *testing.T) {
	m := testMachine(t, Config{})
	startGame(t, m, "Rin")
	m.Session.Player.Gold = 15

	m.ActivateChoice(0)
	assert.Equal(t, "hall", m.Session.CurrentID)
	assert.Equal(t, ScreenGameplay, m.Session.Screen)
	assert.Equal(t, 15, m.Session.Player.Gold, "a requirement is a gate, not a cost")
	assert.Equal(t, 99, m.Session.Player.Food, "upkeep ran once")
	assert.Equal(t, 2, m.Session.Visited.Len())
	assert.Equal(t, []string{"start", "hall"}, m.Session.Visited.Items())
}

func TestInvalidDestinationBlocksWithoutMutation(t *testing.T) {
	m := testMachine(t, Config{})
	startGame(t, m, "Rin")
	before := m.Session.Player
	visits := m.Session.Visited.Len()

	m.ActivateChoice(2) // leap into the void -> nonexistent_node
	assert.Equal(t, "start", m.Session.CurrentID)
	assert.Equal(t, before, m.Session.Player, "no effects, no upkeep before validation")
	assert.Equal(t, visits, m.Session.Visited.Len(), "no visit recorded")
	assert.Equal(t, "Invalid story link.", m.Session.EventText)
	assert.True(t, m.Session.EventFlash)
	assert.Equal(t, ScreenGameplay, m.Session.Screen, "session continues")
}

func TestChoiceEffectsApplyBeforeUpkeep(t *testing.T) {
	doc := `
entry: start
nodes:
  start:
    title: Start
    choices:
      - label: feast
        to: next
        effects: {food: 10, gold: 3}
  next:
    title: Next
    choices:
      - {label: on, to: start}
`
	g, err := story.Load(strings.NewReader(doc))
	require.NoError(t, err)
	m := New(g, Config{EventChance: noEvents, Rand: rand.New(rand.NewSource(1))})
	startGame(t, m, "Rin")
	m.Session.Player.Food = 50

	m.ActivateChoice(0)
	assert.Equal(t, 59, m.Session.Player.Food, "+10 effect, -1 upkeep")
	assert.Equal(t, 3, m.Session.Player.Gold)
}

func TestNodeArrivalEffectsApply(t *testing.T) {
	doc := `
entry: start
nodes:
  start:
    title: Start
    choices:
      - {label: on, to: trap}
  trap:
    title: Trap
    effects: {health: -30}
    choices:
      - {label: out, to: start}
`
	g, err := story.Load(strings.NewReader(doc))
	require.NoError(t, err)
	m := New(g, Config{EventChance: noEvents, Rand: rand.New(rand.NewSource(1))})
	startGame(t, m, "Rin")

	m.ActivateChoice(0)
	assert.Equal(t, 70, m.Session.Player.Health)
}

func TestUpkeepDeathEntersGameOver(t *testing.T) {
	m := testMachine(t, Config{})
	startGame(t, m, "Rin")
	m.Session.Player.Health = 5
	m.Session.Player.Food = 0

	m.ActivateChoice(1)
	assert.Equal(t, ScreenGameOver, m.Session.Screen)
	assert.Equal(t, "start", m.Session.CurrentID, "death resolves before the move completes")
}

func TestDeathEndingEntersGameOver(t *testing.T) {
	rec := &triggerRecorder{}
	m := testMachine(t, Config{Audio: rec})
	startGame(t, m, "Rin")

	m.ActivateChoice(1) // road
	m.ActivateChoice(1) // give up -> sad_end
	assert.Equal(t, ScreenGameOver, m.Session.Screen)
	assert.Equal(t, "Darkness takes you.", m.Session.EndText)
	assert.True(t, rec.has(TriggerDeath))
}

func TestWinEndingEntersVictory(t *testing.T) {
	rec := &triggerRecorder{}
	m := testMachine(t, Config{Audio: rec})
	startGame(t, m, "Rin")
	m.Session.Player.Gold = 50

	m.ActivateChoice(0) // hall
	m.ActivateChoice(0) // rest -> good_end
	assert.Equal(t, ScreenVictory, m.Session.Screen)
	assert.Contains(t, m.Session.VictorySummary, "You made it out.")
	assert.Contains(t, m.Session.VictorySummary, "Path: start -> hall -> good_end")
	assert.True(t, rec.has(TriggerVictory))
}

func TestAllChoicesLockedResolvesAsNeutralEnding(t *testing.T) {
	doc := `
entry: start
nodes:
  start:
    title: Start
    choices:
      - {label: in, to: locked_room}
  locked_room:
    title: Locked Room
    choices:
      - label: golden key
        to: start
        requires: {gold: 100}
`
	g, err := story.Load(strings.NewReader(doc))
	require.NoError(t, err)
	m := New(g, Config{EventChance: noEvents, Rand: rand.New(rand.NewSource(1))})
	startGame(t, m, "Rin")

	m.ActivateChoice(0)
	assert.Equal(t, ScreenVictory, m.Session.Screen, "a dead end resolves neutrally instead of stranding the player")
}

func TestJournalAndHistoryCapped(t *testing.T) {
	m := testMachine(t, Config{})
	startGame(t, m, "Rin")
	m.ActivateChoice(1) // onto the road, which loops back to itself

	for i := 0; i < HistoryLimit+100; i++ {
		m.Session.Player.Food = 100 // hold off starvation for a long walk
		m.Session.Player.Health = 100
		m.ActivateChoice(0) // keep going
		if m.Session.Screen != ScreenGameplay {
			t.Fatalf("run ended early on screen %q", m.Session.Screen)
		}
	}
	assert.Equal(t, HistoryLimit, m.Session.Visited.Len())
	assert.Equal(t, HistoryLimit, m.Session.Journal.Len())
}

func TestEventAppendKeepsScrollClampedAtCapacity(t *testing.T) {
	m := testMachine(t, Config{EventChance: 1.0, Rand: rand.New(rand.NewSource(7))})
	startGame(t, m, "Rin")
	for m.Session.Journal.Len() < HistoryLimit {
		m.Session.Journal.Append("filler")
	}
	m.Session.JournalScroll = 0
	m.Session.Player.Food = 100
	m.Session.Player.Health = 100

	m.ActivateChoice(1) // visit plus a guaranteed event, both evicting
	require.Equal(t, ScreenGameplay, m.Session.Screen)
	assert.GreaterOrEqual(t, m.Session.JournalScroll, 0, "eviction must never drive the scroll negative")
	assert.Equal(t, HistoryLimit, m.Session.Journal.Len())
}

func TestJournalScrollClamping(t *testing.T) {
	m := testMachine(t, Config{})
	startGame(t, m, "Rin")
	for i := 0; i < 20; i++ {
		m.Session.Journal.Append(fmt.Sprintf("entry %d", i))
	}
	total := m.Session.Journal.Len()
	visible := 5

	m.ScrollJournal(1000, visible)
	assert.Equal(t, total-visible, m.Session.JournalScroll, "clamped to total minus window, not total")

	m.ScrollJournal(-1000, visible)
	assert.Equal(t, 0, m.Session.JournalScroll)

	m.ScrollJournal(3, total+10)
	assert.Equal(t, 0, m.Session.JournalScroll, "window larger than history pins to zero")
}

func TestToggleJournal(t *testing.T) {
	m := testMachine(t, Config{})
	startGame(t, m, "Rin")
	m.ToggleJournal()
	assert.Equal(t, ScreenJournal, m.Session.Screen)
	m.ToggleJournal()
	assert.Equal(t, ScreenGameplay, m.Session.Screen)
}

func TestRandomEventAppliesAndJournals(t *testing.T) {
	m := testMachine(t, Config{EventChance: 1.0, Rand: rand.New(rand.NewSource(7))})
	startGame(t, m, "Rin")
	before := m.Session.Player

	m.ActivateChoice(1)
	require.Equal(t, ScreenGameplay, m.Session.Screen)
	assert.NotEmpty(t, m.Session.EventText, "event description surfaces as overlay")

	found := false
	for _, line := range m.Session.Journal.Items() {
		if strings.HasPrefix(line, "* ") {
			found = true
		}
	}
	assert.True(t, found, "event description is journaled")
	assert.NotEqual(t, before, m.Session.Player)
}

func TestRandomEventDeterministicWithFixedSeed(t *testing.T) {
	run := func() ([]string, player.State) {
		m := testMachine(t, Config{EventChance: 1.0, Rand: rand.New(rand.NewSource(42))})
		startGame(t, m, "Rin")
		for i := 0; i < 5 && m.Session.Screen == ScreenGameplay; i++ {
			m.ActivateChoice(1)
		}
		return m.Session.Journal.Items(), m.Session.Player
	}
	j1, p1 := run()
	j2, p2 := run()
	assert.Equal(t, j1, j2)
	assert.Equal(t, p1, p2)
}

func TestNodeEventPoolPreferred(t *testing.T) {
	doc := `
entry: start
nodes:
  start:
    title: Start
    choices:
      - {label: on, to: shrine}
  shrine:
    title: Shrine
    random_events:
      - text: The shrine hums with warmth.
        effects: {morale: 3}
    choices:
      - {label: out, to: start}
`
	g, err := story.Load(strings.NewReader(doc))
	require.NoError(t, err)
	m := New(g, Config{EventChance: 1.0, Rand: rand.New(rand.NewSource(1))})
	startGame(t, m, "Rin")

	m.ActivateChoice(0)
	assert.Equal(t, "The shrine hums with warmth.", m.Session.EventText)
}

func TestSaveThenLoadRestoresSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "save.json")
	m := testMachine(t, Config{SavePath: path})
	startGame(t, m, "Rin")
	m.Session.Player.Gold = 15
	m.ActivateChoice(0) // hall

	m.SaveGame()
	assert.Equal(t, "Game saved.", m.Session.EventText)
	wantPlayer := m.Session.Player
	wantVisited := m.Session.Visited.Items()

	m2 := New(testGraph(t), Config{EventChance: noEvents, SavePath: path, Rand: rand.New(rand.NewSource(1))})
	require.True(t, m2.LoadGame())
	assert.Equal(t, ScreenGameplay, m2.Session.Screen)
	assert.Equal(t, "hall", m2.Session.CurrentID)
	assert.Equal(t, wantPlayer, m2.Session.Player)
	assert.Equal(t, wantVisited, m2.Session.Visited.Items())
	assert.Equal(t, "Save loaded.", m2.Session.EventText)
}

func TestLoadFailureKeepsMenu(t *testing.T) {
	m := testMachine(t, Config{SavePath: filepath.Join(t.TempDir(), "absent.json")})
	assert.False(t, m.LoadGame())
	assert.Equal(t, ScreenMenu, m.Session.Screen)
	assert.Equal(t, "No valid save found.", m.Session.EventText)
}

func TestLoadRejectsSaveForUnknownNode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "save.json")
	snap := save.Snapshot{
		Player:        player.New("Rin"),
		CurrentNodeID: "not_in_this_story",
		VisitedNodes:  []string{"start"},
		Journal:       []string{"001 | §1 | The Gate"},
	}
	require.NoError(t, save.Write(path, snap))

	m := testMachine(t, Config{SavePath: path})
	assert.False(t, m.LoadGame())
	assert.Equal(t, ScreenMenu, m.Session.Screen, "tampered save falls back to the menu")
}

func TestRestartFromTerminalScreens(t *testing.T) {
	for _, screen := range []Screen{ScreenGameOver, ScreenVictory, ScreenDataError} {
		m := testMachine(t, Config{})
		m.Session.Screen = screen
		m.Session.EndText = "something"
		m.Restart()
		assert.Equal(t, ScreenMenu, m.Session.Screen)
		assert.Empty(t, m.Session.EndText)
	}
}

func TestRestartIgnoredMidGame(t *testing.T) {
	m := testMachine(t, Config{})
	startGame(t, m, "Rin")
	m.Restart()
	assert.Equal(t, ScreenGameplay, m.Session.Screen)
}

func TestDataErrorScreenAllowsLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "save.json")
	m := testMachine(t, Config{SavePath: path})
	startGame(t, m, "Rin")
	m.SaveGame()

	m.Session.Screen = ScreenDataError
	assert.True(t, m.LoadGame(), "explicit load recovers from a data error")
	assert.Equal(t, ScreenGameplay, m.Session.Screen)
}

func TestSaveIgnoredOutsideGameplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "save.json")
	m := testMachine(t, Config{SavePath: path})
	m.SaveGame()
	assert.False(t, save.Exists(path))
}

func TestInjectorNeverFiresAtZeroChance(t *testing.T) {
	in := Injector{Chance: 0}
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		_, fired := in.MaybeFire(rng, nil)
		assert.False(t, fired)
	}
}

func TestInjectorAlwaysFiresAtFullChance(t *testing.T) {
	in := Injector{Chance: 1.0}
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 20; i++ {
		ev, fired := in.MaybeFire(rng, nil)
		require.True(t, fired)
		assert.NotEmpty(t, ev.Text)
	}
}
