package attendance

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"rfidattend/internal/registry"
)

// Processor turns raw scans into ledger mutations. A reader tap carries
// no direction, so the decision is toggle-on-session-presence: no
// session today means login, an open session means logout, a closed one
// means the tap is a duplicate. Process calls serialize on an internal
// mutex so two concurrent scans for one tag can never both create a
// session.
type Processor struct {
	mu       sync.Mutex
	registry *registry.Registry
	ledger   *Ledger
	history  *History
	now      func() time.Time
}

// NewProcessor wires a processor to its registry, ledger, and feed.
func NewProcessor(reg *registry.Registry, ledger *Ledger, history *History) *Processor {
	return &Processor{
		registry: reg,
		ledger:   ledger,
		history:  history,
		now:      time.Now,
	}
}

// Process applies one scan and returns what it meant. Malformed or
// out-of-order input yields an outcome, never an error: the engine must
// stay up no matter what a reader sends.
func (p *Processor) Process(evt ScanEvent) Record {
	p.mu.Lock()
	defer p.mu.Unlock()

	ts := evt.Timestamp
	if ts.IsZero() {
		ts = p.now()
	}
	ts = ts.UTC()

	rec := Record{
		ID:       uuid.NewString(),
		TagID:    evt.TagID,
		ReaderID: evt.ReaderID,
		At:       ts,
	}

	id, ok := p.registry.Get(evt.TagID)
	if !ok {
		rec.Outcome = OutcomeUnknownTag
		p.history.Append(rec)
		return rec
	}
	rec.Name = id.Name

	if !id.Active {
		rec.Outcome = OutcomeInactiveUser
		p.history.Append(rec)
		return rec
	}

	session, created := p.ledger.OpenSession(id, ts)
	switch {
	case created:
		rec.Outcome = OutcomeLogin
	case session.State == StateOpen:
		if _, err := p.ledger.CloseSession(id.TagID, session.Date, ts); err != nil {
			// Only ErrBeforeLogin is reachable here: the session was
			// open a moment ago and nothing else closes it.
			log.Printf("scan for %s rejected: %v", id.TagID, err)
			rec.Outcome = OutcomeInvalidOrdering
		} else {
			rec.Outcome = OutcomeLogout
		}
	default:
		rec.Outcome = OutcomeAlreadyLogged
	}

	p.history.Append(rec)
	return rec
}
