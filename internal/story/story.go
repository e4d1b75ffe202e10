// Package story loads and validates the node graph a game session walks.
//
// A story document is YAML (or JSON, which YAML subsumes) with an entry node
// identifier and a mapping of node id to node. Documents are validated and
// normalized once at load time; the resulting Graph is immutable and safe to
// share by reference. Destination links are deliberately not resolved at
// load: source documents may be malformed, so destination validity is
// checked at activation time via NodeExists.
package story

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/tatianab/gamebook/internal/player"
	"gopkg.in/yaml.v3"
)

// NodeType classifies how a node resolves the session.
type NodeType string

const (
	TypeNormal        NodeType = "normal"
	TypeEndingWin     NodeType = "ending_win"
	TypeEndingDeath   NodeType = "ending_death"
	TypeEndingNeutral NodeType = "ending_neutral"
)

// DefaultEntryID is assumed when a document names no entry node.
const DefaultEntryID = "section_1"

// maxChoicesPerNode bounds the choice list; the UI renders four slots.
const maxChoicesPerNode = 4

func validType(t NodeType) bool {
	switch t {
	case TypeNormal, TypeEndingWin, TypeEndingDeath, TypeEndingNeutral:
		return true
	}
	return false
}

// Terminal reports whether the type ends the session.
func (t NodeType) Terminal() bool { return t != TypeNormal }

// Choice is an outgoing edge from a node. The destination is not guaranteed
// to exist in the graph; callers must consult Graph.NodeExists before
// following it.
type Choice struct {
	Label    string      `yaml:"label"`
	To       string      `yaml:"to"`
	Requires Requirement `yaml:"requires"`
	Effects  Effect      `yaml:"effects"`
}

// Event is one entry of a node's random event pool.
type Event struct {
	Text    string `yaml:"text"`
	Effects Effect `yaml:"effects"`
}

// Node is a single narrative beat.
type Node struct {
	ID      string   `yaml:"-"`
	Section int      `yaml:"section"`
	Title   string   `yaml:"title"`
	Text    string   `yaml:"text"`
	Art     string   `yaml:"art"` // opaque asset reference, not interpreted here
	Type    NodeType `yaml:"type"`
	Choices []Choice `yaml:"choices"`
	Effects Effect   `yaml:"effects"`
	Events  []Event  `yaml:"random_events"`
}

// ChoiceView pairs a choice with its availability for display filtering.
// Locked choices stay in the list so the UI can render them disabled.
type ChoiceView struct {
	Choice
	Locked bool
}

// Graph is the immutable result of loading a story document.
type Graph struct {
	entry string
	nodes map[string]*Node
	order []string // node ids sorted by (section, id) for deterministic walks
}

type document struct {
	Entry string           `yaml:"entry"`
	Nodes map[string]*Node `yaml:"nodes"`
}

// Load parses, validates, and normalizes a story document. It either
// returns a fully constructed graph or a *LoadError; no partial graphs.
func Load(r io.Reader) (*Graph, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, &LoadError{Reason: "malformed story document", Err: err}
	}
	if len(doc.Nodes) == 0 {
		return nil, &LoadError{Reason: "story document has no nodes"}
	}

	g := &Graph{
		entry: doc.Entry,
		nodes: make(map[string]*Node, len(doc.Nodes)),
	}
	if g.entry == "" {
		g.entry = DefaultEntryID
	}

	for id, node := range doc.Nodes {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, &LoadError{Reason: "node with empty identifier"}
		}
		if node == nil {
			node = &Node{}
		}
		node.ID = id
		if err := normalizeNode(node); err != nil {
			return nil, err
		}
		g.nodes[id] = node
	}

	if _, ok := g.nodes[g.entry]; !ok {
		return nil, &LoadError{NodeID: g.entry, Reason: "entry node not found"}
	}

	g.order = make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		g.order = append(g.order, id)
	}
	sort.Slice(g.order, func(i, j int) bool {
		a, b := g.nodes[g.order[i]], g.nodes[g.order[j]]
		if a.Section != b.Section {
			return a.Section < b.Section
		}
		return a.ID < b.ID
	})

	return g, nil
}

var labelNorm = regexp.MustCompile(`[^a-z0-9]+`)

// normalizeNode applies the mandatory load-time normalization pass.
func normalizeNode(n *Node) error {
	if n.Title == "" {
		n.Title = "Untitled Scene"
	}

	kept := n.Choices[:0]
	seen := make(map[[2]string]bool, len(n.Choices))
	for _, c := range n.Choices {
		c.To = strings.TrimSpace(c.To)
		if c.To == "" {
			return &LoadError{NodeID: n.ID, Reason: fmt.Sprintf("choice %q has no destination", c.Label)}
		}
		if c.Label == "" {
			c.Label = "Continue"
		}
		key := [2]string{labelNorm.ReplaceAllString(strings.ToLower(c.Label), " "), c.To}
		key[0] = strings.TrimSpace(key[0])
		if seen[key] {
			continue // duplicate (label, destination) pairs collapse to one
		}
		seen[key] = true
		kept = append(kept, c)
	}
	n.Choices = kept
	if len(n.Choices) > maxChoicesPerNode {
		n.Choices = n.Choices[:maxChoicesPerNode]
	}

	switch {
	case n.Type == "":
		if len(n.Choices) > 0 {
			n.Type = TypeNormal
		} else {
			n.Type = TypeEndingNeutral
		}
	case !validType(n.Type):
		return &LoadError{NodeID: n.ID, Reason: fmt.Sprintf("unknown node type %q", n.Type)}
	}

	// Endings carry no outgoing edges; a normal node without edges would
	// strand the player, so it becomes a neutral ending.
	if n.Type.Terminal() {
		n.Choices = nil
	} else if len(n.Choices) == 0 {
		n.Type = TypeEndingNeutral
	}
	return nil
}

// EntryID returns the designated entry node identifier.
func (g *Graph) EntryID() string { return g.entry }

// EntryNode returns the designated start node. Load guarantees it exists.
func (g *Graph) EntryNode() *Node { return g.nodes[g.entry] }

// Node returns the node with the given id, if present.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// NodeExists is the single source of truth for destination validity.
func (g *Graph) NodeExists(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int { return len(g.nodes) }

// NodeIDs returns all node ids in deterministic (section, id) order.
func (g *Graph) NodeIDs() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// ChoicesFor filters a node's choices for display: declaration order is
// preserved and locked choices are flagged rather than removed.
func (g *Graph) ChoicesFor(n *Node, stats player.State) []ChoiceView {
	if n == nil || len(n.Choices) == 0 {
		return nil
	}
	out := make([]ChoiceView, 0, len(n.Choices))
	for _, c := range n.Choices {
		out = append(out, ChoiceView{Choice: c, Locked: !c.Requires.Satisfied(stats)})
	}
	return out
}

// Available filters a node's choices for availability, dropping locked ones.
func (g *Graph) Available(n *Node, stats player.State) []Choice {
	if n == nil {
		return nil
	}
	var out []Choice
	for _, c := range n.Choices {
		if c.Requires.Satisfied(stats) {
			out = append(out, c)
		}
	}
	return out
}
