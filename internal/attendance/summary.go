package attendance

import "rfidattend/internal/registry"

// Summary holds the dashboard counters for one calendar day.
type Summary struct {
	Date            string `json:"date"`
	TotalUsers      int    `json:"total_users"`
	LoginsToday     int    `json:"logins_today"`
	LogoutsToday    int    `json:"logouts_today"`
	CurrentlyInside int    `json:"currently_inside"`
}

// Aggregator derives dashboard counters from the ledger on demand.
// Nothing is cached: every call recounts the day's sessions, so the
// numbers can never go stale across mutations.
type Aggregator struct {
	registry *registry.Registry
	ledger   *Ledger
}

// NewAggregator creates the read-side over a ledger and registry.
func NewAggregator(reg *registry.Registry, ledger *Ledger) *Aggregator {
	return &Aggregator{registry: reg, ledger: ledger}
}

// Summarize recounts the counters for date (DateLayout).
func (a *Aggregator) Summarize(date string) Summary {
	sum := Summary{Date: date, TotalUsers: a.registry.Count()}
	for _, s := range a.ledger.Sessions(date, "", "") {
		sum.LoginsToday++
		if s.State == StateClosed {
			sum.LogoutsToday++
		} else {
			sum.CurrentlyInside++
		}
	}
	return sum
}
