package attendance

import (
	"time"

	"rfidattend/internal/registry"
)

// Service is the engine boundary the transport layer talks to. It owns
// the ledger, the activity history, and the scan pipeline; the registry
// is shared with the administration side, which is the only writer to
// it.
type Service struct {
	ledger     *Ledger
	history    *History
	processor  *Processor
	aggregator *Aggregator
	now        func() time.Time
}

// NewService builds an engine around a registry. historySize bounds the
// activity feed buffer.
func NewService(reg *registry.Registry, historySize int) *Service {
	ledger := NewLedger()
	history := NewHistory(historySize)
	return &Service{
		ledger:     ledger,
		history:    history,
		processor:  NewProcessor(reg, ledger, history),
		aggregator: NewAggregator(reg, ledger),
		now:        time.Now,
	}
}

// SubmitScan runs one scan through the pipeline and returns the typed
// outcome.
func (s *Service) SubmitScan(evt ScanEvent) Record {
	return s.processor.Process(evt)
}

// Sessions lists attendance sessions in login order, optionally
// filtered by exact calendar day, exact tag, and a name-or-tag
// substring.
func (s *Service) Sessions(date, tagID, search string) []Session {
	return s.ledger.Sessions(date, tagID, search)
}

// Summary recomputes the dashboard counters for date, defaulting to the
// current UTC day.
func (s *Service) Summary(date string) Summary {
	if date == "" {
		date = DayOf(s.now())
	}
	return s.aggregator.Summarize(date)
}

// RecentActivity returns up to n processed scans, newest first.
func (s *Service) RecentActivity(n int) []Record {
	return s.history.Recent(n)
}
