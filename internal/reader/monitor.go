package reader

import (
	"context"
	"log"
	"sync"
	"time"
)

// Health is the current connectivity view of one reader. LastChange is
// the instant of the most recent Connected/Disconnected flip; no
// further history is kept.
type Health struct {
	ReaderID      string    `json:"reader_id"`
	Connected     bool      `json:"connected"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
	LastChange    time.Time `json:"last_change"`
}

// Monitor tracks reader liveness with a deterministic timeout: a reader
// is Connected while heartbeats keep arriving within the window and
// flips to Disconnected once the window passes with none. A heartbeat
// always flips it back.
type Monitor struct {
	mu       sync.RWMutex
	timeout  time.Duration
	readers  map[string]*Health
	now      func() time.Time
	onChange func(readerID string, connected bool)
}

// DefaultTimeout is the heartbeat window used when none is configured.
const DefaultTimeout = 15 * time.Second

// NewMonitor creates a monitor with the given heartbeat window.
func NewMonitor(timeout time.Duration) *Monitor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Monitor{
		timeout: timeout,
		readers: make(map[string]*Health),
		now:     time.Now,
	}
}

// OnChange registers a callback fired on every connectivity flip. Must
// be set before the monitor is shared between goroutines.
func (m *Monitor) OnChange(fn func(readerID string, connected bool)) {
	m.onChange = fn
}

// Heartbeat records a liveness signal from a reader. An unknown reader
// is registered on its first heartbeat. A zero ts means "now".
func (m *Monitor) Heartbeat(readerID string, ts time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ts.IsZero() {
		ts = m.now()
	}
	h, ok := m.readers[readerID]
	if !ok {
		h = &Health{ReaderID: readerID, LastChange: ts}
		m.readers[readerID] = h
	}
	h.LastHeartbeat = ts
	if !h.Connected {
		h.Connected = true
		h.LastChange = ts
		if m.onChange != nil {
			m.onChange(readerID, true)
		}
	}
}

// Sweep marks every reader whose last heartbeat is older than the
// window as Disconnected. Called periodically by Run; exposed so tests
// can drive it with a fixed clock.
func (m *Monitor) Sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for id, h := range m.readers {
		if h.Connected && now.Sub(h.LastHeartbeat) > m.timeout {
			h.Connected = false
			h.LastChange = now
			log.Printf("reader %s disconnected, last heartbeat %s", id, h.LastHeartbeat.Format(time.RFC3339))
			if m.onChange != nil {
				m.onChange(id, false)
			}
		}
	}
}

// Run sweeps on the given interval until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.Sweep()
		case <-ctx.Done():
			return
		}
	}
}

// Health returns the current view of one reader.
func (m *Monitor) Health(readerID string) (Health, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.readers[readerID]
	if !ok {
		return Health{}, false
	}
	return *h, true
}

// Snapshot returns the current view of every known reader.
func (m *Monitor) Snapshot() []Health {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Health, 0, len(m.readers))
	for _, h := range m.readers {
		out = append(out, *h)
	}
	return out
}
