package story

import (
	"fmt"
	"sort"
	"strings"
)

// Summary describes the shape of a loaded graph. It backs the validate
// command's report and is handy in tests.
type Summary struct {
	Entry        string
	TotalNodes   int
	TotalChoices int
	WinEndings   int
	DeathEndings int
	NeutralEnds  int
	MaxDepth     int
	Unreachable  []string
	BrokenLinks  []string // choice destinations that resolve to no node
}

// Summarize walks the graph from its entry node.
func (g *Graph) Summarize() Summary {
	s := Summary{Entry: g.entry, TotalNodes: len(g.nodes)}

	for _, id := range g.order {
		n := g.nodes[id]
		s.TotalChoices += len(n.Choices)
		switch n.Type {
		case TypeEndingWin:
			s.WinEndings++
		case TypeEndingDeath:
			s.DeathEndings++
		case TypeEndingNeutral:
			s.NeutralEnds++
		}
		for _, c := range n.Choices {
			if !g.NodeExists(c.To) {
				s.BrokenLinks = append(s.BrokenLinks, fmt.Sprintf("%s -> %s", id, c.To))
			}
		}
	}
	sort.Strings(s.BrokenLinks)

	reached := map[string]int{g.entry: 0}
	queue := []string{g.entry}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		depth := reached[id]
		if depth > s.MaxDepth {
			s.MaxDepth = depth
		}
		for _, c := range g.nodes[id].Choices {
			if _, seen := reached[c.To]; seen || !g.NodeExists(c.To) {
				continue
			}
			reached[c.To] = depth + 1
			queue = append(queue, c.To)
		}
	}

	for _, id := range g.order {
		if _, ok := reached[id]; !ok {
			s.Unreachable = append(s.Unreachable, id)
		}
	}
	sort.Strings(s.Unreachable)
	return s
}

// String renders the summary as the validate command prints it.
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Entry node: %s\n", s.Entry)
	fmt.Fprintf(&b, "Total nodes: %d\n", s.TotalNodes)
	fmt.Fprintf(&b, "Total choices: %d\n", s.TotalChoices)
	fmt.Fprintf(&b, "Ending counts -> win: %d, death: %d, neutral: %d\n", s.WinEndings, s.DeathEndings, s.NeutralEnds)
	fmt.Fprintf(&b, "Deepest reachable path length from entry: %d\n", s.MaxDepth)
	fmt.Fprintf(&b, "Unreachable nodes: %s\n", listOrNone(s.Unreachable))
	fmt.Fprintf(&b, "Broken links: %s\n", listOrNone(s.BrokenLinks))
	return b.String()
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
