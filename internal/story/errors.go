package story

import "fmt"

// LoadError reports a structurally invalid story document. A load that
// returns one constructs no graph at all.
type LoadError struct {
	// NodeID identifies the offending node, when known.
	NodeID string

	// Reason is a human-readable description of the defect.
	Reason string

	// Err is the underlying decode error, if any.
	Err error
}

func (e *LoadError) Error() string {
	msg := e.Reason
	if e.NodeID != "" {
		msg = fmt.Sprintf("node %q: %s", e.NodeID, e.Reason)
	}
	if e.Err != nil {
		return fmt.Sprintf("story load: %s: %v", msg, e.Err)
	}
	return "story load: " + msg
}

func (e *LoadError) Unwrap() error { return e.Err }
