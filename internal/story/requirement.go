package story

import (
	"fmt"

	"github.com/tatianab/gamebook/internal/player"
	"gopkg.in/yaml.v3"
)

// Op is a comparison operator in a requirement rule.
type Op string

const (
	OpGTE Op = ">="
	OpLTE Op = "<="
	OpEQ  Op = "=="
	OpNE  Op = "!="
	OpGT  Op = ">"
	OpLT  Op = "<"
)

// opAliases maps accepted spellings from story documents to canonical
// operators. Shorthand keys like {min: 10} predate the operator form.
var opAliases = map[string]Op{
	">=": OpGTE, "gte": OpGTE, "min": OpGTE,
	"<=": OpLTE, "lte": OpLTE, "max": OpLTE,
	"==": OpEQ, "eq": OpEQ,
	"!=": OpNE, "ne": OpNE,
	">": OpGT, "gt": OpGT,
	"<": OpLT, "lt": OpLT,
}

// Rule is one normalized comparison against a single stat.
type Rule struct {
	Op    Op
	Value int
}

// Requirement gates a choice on player stats. All rules must hold (AND).
// A nil or empty requirement is always satisfied. Requirements are fully
// normalized and validated at load time, so Satisfied never fails.
type Requirement map[string]Rule

// Satisfied evaluates the requirement against a stat snapshot.
func (r Requirement) Satisfied(stats player.State) bool {
	for stat, rule := range r {
		current := stats.Stat(stat)
		if !rule.holds(current) {
			return false
		}
	}
	return true
}

func (r Rule) holds(current int) bool {
	switch r.Op {
	case OpGTE:
		return current >= r.Value
	case OpLTE:
		return current <= r.Value
	case OpEQ:
		return current == r.Value
	case OpNE:
		return current != r.Value
	case OpGT:
		return current > r.Value
	case OpLT:
		return current < r.Value
	}
	return false
}

// UnmarshalYAML accepts both the shorthand form (stat: minimum) and the
// operator form (stat: {op: ">=", value: N} or alias keys like gte/min).
func (r *Requirement) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("requirement must be a mapping, got %s", kindName(value.Kind))
	}
	out := make(Requirement, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		keyNode, valNode := value.Content[i], value.Content[i+1]
		stat := keyNode.Value
		if !player.KnownStat(stat) {
			return fmt.Errorf("unknown stat %q in requirement", stat)
		}
		rule, err := decodeRule(valNode)
		if err != nil {
			return fmt.Errorf("stat %q: %w", stat, err)
		}
		out[stat] = rule
	}
	*r = out
	return nil
}

func decodeRule(node *yaml.Node) (Rule, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		// Shorthand: bare number means minimum required value.
		var min int
		if err := node.Decode(&min); err != nil {
			return Rule{}, fmt.Errorf("shorthand minimum must be an integer: %w", err)
		}
		return Rule{Op: OpGTE, Value: min}, nil
	case yaml.MappingNode:
		return decodeOperatorRule(node)
	}
	return Rule{}, fmt.Errorf("rule must be a number or an operator mapping, got %s", kindName(node.Kind))
}

func decodeOperatorRule(node *yaml.Node) (Rule, error) {
	var raw map[string]yaml.Node
	if err := node.Decode(&raw); err != nil {
		return Rule{}, err
	}

	// Explicit {op, value} pair.
	if opNode, ok := raw["op"]; ok {
		op, known := opAliases[opNode.Value]
		if !known {
			return Rule{}, fmt.Errorf("unknown operator %q", opNode.Value)
		}
		valNode, ok := raw["value"]
		if !ok {
			return Rule{}, fmt.Errorf("operator %q is missing a value", opNode.Value)
		}
		var v int
		if err := valNode.Decode(&v); err != nil {
			return Rule{}, fmt.Errorf("operator %q value must be an integer: %w", opNode.Value, err)
		}
		return Rule{Op: op, Value: v}, nil
	}

	// Alias form: exactly one {gte: 10}-style key.
	if len(raw) != 1 {
		return Rule{}, fmt.Errorf("operator mapping must hold exactly one rule, got %d", len(raw))
	}
	for key, valNode := range raw {
		op, known := opAliases[key]
		if !known {
			return Rule{}, fmt.Errorf("unknown operator %q", key)
		}
		var v int
		if err := valNode.Decode(&v); err != nil {
			return Rule{}, fmt.Errorf("operator %q value must be an integer: %w", key, err)
		}
		return Rule{Op: op, Value: v}, nil
	}
	return Rule{}, fmt.Errorf("empty operator mapping")
}

// Effect maps stat names to signed deltas applied on activation or arrival.
type Effect map[string]int

// UnmarshalYAML rejects unknown stat names and non-numeric deltas so the
// runtime never sees a malformed effect.
func (e *Effect) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("effect must be a mapping, got %s", kindName(value.Kind))
	}
	out := make(Effect, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		keyNode, valNode := value.Content[i], value.Content[i+1]
		stat := keyNode.Value
		if !player.KnownStat(stat) {
			return fmt.Errorf("unknown stat %q in effect", stat)
		}
		var delta int
		if err := valNode.Decode(&delta); err != nil {
			return fmt.Errorf("stat %q delta must be an integer: %w", stat, err)
		}
		out[stat] = delta
	}
	*e = out
	return nil
}

// Player converts the effect into the stat model's representation.
func (e Effect) Player() player.Effect {
	if len(e) == 0 {
		return nil
	}
	out := make(player.Effect, len(e))
	for stat, delta := range e {
		out[stat] = delta
	}
	return out
}

// Harmful reports whether any delta is negative. Used for danger triggers.
func (e Effect) Harmful() bool {
	for _, delta := range e {
		if delta < 0 {
			return true
		}
	}
	return false
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}
