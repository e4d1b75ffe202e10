// Package save persists a session snapshot to disk.
//
// The on-disk format is a closed-schema JSON document. Writes go through a
// temporary sibling file, are fsynced, and then atomically replace the
// canonical path, so a failed or interrupted save never destroys the prior
// one. Loads decode into a validation-only struct with unknown fields
// rejected; domain values are constructed only after every field passes
// structural and range checks.
package save

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tatianab/gamebook/internal/player"
)

// HistoryLimit bounds the visited and journal lists in a save document.
// It matches the session's in-memory ring capacity.
const HistoryLimit = 500

// Snapshot is the serializable subset of a session: exactly these fields
// and nothing else.
type Snapshot struct {
	Player        player.State
	CurrentNodeID string
	VisitedNodes  []string
	Journal       []string
}

type playerDoc struct {
	Name   string `json:"name"`
	Health *int   `json:"health"`
	Food   *int   `json:"food"`
	Gold   *int   `json:"gold"`
	Morale *int   `json:"morale"`
}

type saveDoc struct {
	Player        *playerDoc `json:"player"`
	CurrentNodeID *string    `json:"current_node_id"`
	VisitedNodes  *[]string  `json:"visited_node_ids"`
	Journal       *[]string  `json:"journal_entries"`
}

// ValidationError reports a save document that failed schema validation.
// The caller keeps its prior state; nothing partial is ever adopted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid save: %s: %s", e.Field, e.Reason)
	}
	return "invalid save: " + e.Reason
}

// Write serializes the snapshot to path via an atomic replace.
func Write(path string, snap Snapshot) error {
	doc := saveDoc{
		Player: &playerDoc{
			Name:   snap.Player.Name,
			Health: ptr(snap.Player.Health),
			Food:   ptr(snap.Player.Food),
			Gold:   ptr(snap.Player.Gold),
			Morale: ptr(snap.Player.Morale),
		},
		CurrentNodeID: ptr(snap.CurrentNodeID),
		VisitedNodes:  ptr(tail(snap.VisitedNodes, HistoryLimit)),
		Journal:       ptr(tail(snap.Journal, HistoryLimit)),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode save: %w", err)
	}

	tmp := path + ".tmp"
	if err := writeSync(tmp, data); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace save: %w", err)
	}
	return nil
}

func writeSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("write save: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write save: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync save: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close save: %w", err)
	}
	return nil
}

// Read loads and validates the save document at path. Any schema violation
// returns a *ValidationError and no snapshot.
func Read(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var doc saveDoc
	if err := dec.Decode(&doc); err != nil {
		return Snapshot{}, &ValidationError{Reason: err.Error()}
	}
	// A second document in the file counts as trailing garbage.
	if dec.More() {
		return Snapshot{}, &ValidationError{Reason: "trailing data after save document"}
	}

	return validate(doc)
}

func validate(doc saveDoc) (Snapshot, error) {
	if doc.Player == nil {
		return Snapshot{}, &ValidationError{Field: "player", Reason: "missing"}
	}
	if doc.CurrentNodeID == nil {
		return Snapshot{}, &ValidationError{Field: "current_node_id", Reason: "missing"}
	}
	if *doc.CurrentNodeID == "" {
		return Snapshot{}, &ValidationError{Field: "current_node_id", Reason: "must be a non-empty string"}
	}
	if doc.VisitedNodes == nil {
		return Snapshot{}, &ValidationError{Field: "visited_node_ids", Reason: "missing"}
	}
	if doc.Journal == nil {
		return Snapshot{}, &ValidationError{Field: "journal_entries", Reason: "missing"}
	}

	stats := map[string]*int{
		"player.health": doc.Player.Health,
		"player.food":   doc.Player.Food,
		"player.gold":   doc.Player.Gold,
		"player.morale": doc.Player.Morale,
	}
	for field, v := range stats {
		if v == nil {
			return Snapshot{}, &ValidationError{Field: field, Reason: "missing"}
		}
		if *v < player.StatMin || *v > player.StatMax {
			return Snapshot{}, &ValidationError{
				Field:  field,
				Reason: fmt.Sprintf("value %d outside [%d, %d]", *v, player.StatMin, player.StatMax),
			}
		}
	}

	name := doc.Player.Name
	if name == "" {
		name = player.DefaultName
	}

	return Snapshot{
		Player: player.State{
			Name:   name,
			Health: *doc.Player.Health,
			Food:   *doc.Player.Food,
			Gold:   *doc.Player.Gold,
			Morale: *doc.Player.Morale,
		},
		CurrentNodeID: *doc.CurrentNodeID,
		VisitedNodes:  tail(*doc.VisitedNodes, HistoryLimit),
		Journal:       tail(*doc.Journal, HistoryLimit),
	}, nil
}

// Exists reports whether a save document is present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// DefaultPath returns the canonical save location inside dir.
func DefaultPath(dir string) string {
	return filepath.Join(dir, "save.json")
}

func ptr[T any](v T) *T { return &v }

func tail(items []string, limit int) []string {
	if len(items) > limit {
		items = items[len(items)-limit:]
	}
	out := make([]string, len(items))
	copy(out, items)
	return out
}
