package game

// Ring is a fixed-capacity FIFO of strings. Appending beyond capacity
// evicts the oldest entries, so the bound is structural rather than a
// pruning pass callers can forget.
type Ring struct {
	cap   int
	items []string
}

// NewRing returns an empty ring holding at most capacity entries.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{cap: capacity}
}

// Append adds an entry and returns how many old entries were evicted.
func (r *Ring) Append(entry string) int {
	r.items = append(r.items, entry)
	evicted := len(r.items) - r.cap
	if evicted <= 0 {
		return 0
	}
	r.items = r.items[evicted:]
	return evicted
}

// Fill replaces the contents with the last cap entries of items.
func (r *Ring) Fill(items []string) {
	if len(items) > r.cap {
		items = items[len(items)-r.cap:]
	}
	r.items = append(r.items[:0], items...)
}

// Reset drops all entries.
func (r *Ring) Reset() { r.items = r.items[:0] }

// Len returns the number of stored entries.
func (r *Ring) Len() int { return len(r.items) }

// Items returns a copy of the stored entries, oldest first.
func (r *Ring) Items() []string {
	out := make([]string, len(r.items))
	copy(out, r.items)
	return out
}

// Last returns up to n of the newest entries, oldest first.
func (r *Ring) Last(n int) []string {
	if n > len(r.items) {
		n = len(r.items)
	}
	out := make([]string, n)
	copy(out, r.items[len(r.items)-n:])
	return out
}
