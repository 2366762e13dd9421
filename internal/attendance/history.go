package attendance

import "sync"

// History is a bounded ring buffer of processed scans for the activity
// feed. Every outcome lands here, including rejected ones, so the feed
// doubles as an audit trail. Oldest entries are evicted first.
type History struct {
	mu      sync.RWMutex
	records []Record
	next    int
	full    bool
}

// NewHistory creates a buffer holding at most capacity records.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 50
	}
	return &History{records: make([]Record, capacity)}
}

// Append adds a record, evicting the oldest when full.
func (h *History) Append(rec Record) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records[h.next] = rec
	h.next++
	if h.next == len(h.records) {
		h.next = 0
		h.full = true
	}
}

// Len returns the number of records currently held.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.full {
		return len(h.records)
	}
	return h.next
}

// Recent returns up to n records, newest first.
func (h *History) Recent(n int) []Record {
	h.mu.RLock()
	defer h.mu.RUnlock()
	held := h.next
	if h.full {
		held = len(h.records)
	}
	if n <= 0 || n > held {
		n = held
	}
	out := make([]Record, 0, n)
	for i := 1; i <= n; i++ {
		idx := (h.next - i + len(h.records)) % len(h.records)
		out = append(out, h.records[idx])
	}
	return out
}
