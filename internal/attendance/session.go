package attendance

import (
	"time"

	"rfidattend/internal/registry"
)

// DateLayout is the calendar-day key format for sessions.
const DateLayout = "2006-01-02"

// SessionState tracks whether an attendance session is still open.
type SessionState string

const (
	StateOpen   SessionState = "open"
	StateClosed SessionState = "closed"
)

// Session is one day's attendance record for an identity: opened by the
// first scan of the day, closed by the second. Timestamps are full
// instants; the Date key is the UTC calendar day of the login.
type Session struct {
	ID       string        `json:"id"`
	TagID    string        `json:"tag_id"`
	Name     string        `json:"name"`
	Role     registry.Role `json:"role"`
	Date     string        `json:"date"`
	LoginAt  time.Time     `json:"login_at"`
	LogoutAt *time.Time    `json:"logout_at,omitempty"`
	State    SessionState  `json:"state"`
}

// Duration returns the elapsed time between login and logout. The
// second return is false while the session is open.
func (s Session) Duration() (time.Duration, bool) {
	if s.State != StateClosed || s.LogoutAt == nil {
		return 0, false
	}
	return s.LogoutAt.Sub(s.LoginAt), true
}

// DayOf returns the session date key for an instant.
func DayOf(ts time.Time) string {
	return ts.UTC().Format(DateLayout)
}

// ScanEvent is a single raw tag read from a reader. ActionHint is
// whatever direction the hardware claims, if any; the processor records
// it but never trusts it for the login/logout decision.
type ScanEvent struct {
	TagID      string    `json:"tag_id"`
	ReaderID   string    `json:"reader_id"`
	Timestamp  time.Time `json:"timestamp"`
	ActionHint string    `json:"action_hint,omitempty"`
}

// Outcome is the typed result of processing one scan.
type Outcome string

const (
	OutcomeLogin           Outcome = "login"
	OutcomeLogout          Outcome = "logout"
	OutcomeAlreadyLogged   Outcome = "already_logged"
	OutcomeUnknownTag      Outcome = "unknown_tag"
	OutcomeInactiveUser    Outcome = "inactive_user"
	OutcomeInvalidOrdering Outcome = "invalid_ordering"
)

// Record is a processed scan as it appears in the activity feed.
type Record struct {
	ID       string    `json:"id"`
	TagID    string    `json:"tag_id"`
	Name     string    `json:"name,omitempty"`
	ReaderID string    `json:"reader_id,omitempty"`
	Outcome  Outcome   `json:"outcome"`
	At       time.Time `json:"at"`
}
