package game

import (
	"math/rand"

	"github.com/tatianab/gamebook/internal/story"
)

// DefaultEventChance is the per-transition probability of a random event.
const DefaultEventChance = 0.10

// defaultEvents fires when the destination node carries no pool of its own.
var defaultEvents = []story.Event{
	{Text: "A traveler shares spare rations.", Effects: story.Effect{"food": 6, "morale": 2}},
	{Text: "Cold rain soaks your gear and chills you.", Effects: story.Effect{"health": -5, "morale": -3}},
	{Text: "You find a purse dropped on the trail.", Effects: story.Effect{"gold": 8}},
	{Text: "A hard climb leaves you exhausted.", Effects: story.Effect{"food": -6, "health": -3}},
	{Text: "A moment of luck renews your resolve.", Effects: story.Effect{"morale": 5}},
}

// Injector decides whether a random event perturbs the player's stats on a
// transition. It is stateless: all randomness comes from the rng argument,
// so a seeded source reproduces the same run.
type Injector struct {
	Chance float64
}

// MaybeFire rolls the event chance and, on a hit, picks uniformly from the
// destination node's pool, falling back to the default pool.
func (in Injector) MaybeFire(rng *rand.Rand, pool []story.Event) (story.Event, bool) {
	if rng.Float64() >= in.Chance {
		return story.Event{}, false
	}
	if len(pool) == 0 {
		pool = defaultEvents
	}
	return pool[rng.Intn(len(pool))], true
}
