package attendance

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"rfidattend/internal/registry"
)

var (
	// ErrNoOpenSession signals a close against a session that does not
	// exist or is already closed. The processor checks before closing,
	// so reaching it means a caller bug.
	ErrNoOpenSession = errors.New("no open session")

	// ErrBeforeLogin signals a logout timestamp earlier than the login.
	ErrBeforeLogin = errors.New("logout before login")
)

type ledgerKey struct {
	tagID string
	date  string
}

// Ledger is the sole owner of session state. All mutation goes through
// OpenSession and CloseSession under the write lock; reads copy out so
// callers never alias internal state.
type Ledger struct {
	mu       sync.RWMutex
	index    map[ledgerKey]int
	sessions []Session
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{index: make(map[ledgerKey]int)}
}

// OpenSession returns the session for the identity on the calendar day
// of ts, creating an open one when none exists. The created flag tells
// the caller whether this scan started the session.
func (l *Ledger) OpenSession(id registry.Identity, ts time.Time) (Session, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := ledgerKey{tagID: id.TagID, date: DayOf(ts)}
	if i, ok := l.index[key]; ok {
		return l.sessions[i], false
	}
	s := Session{
		ID:      uuid.NewString(),
		TagID:   id.TagID,
		Name:    id.Name,
		Role:    id.Role,
		Date:    key.date,
		LoginAt: ts,
		State:   StateOpen,
	}
	l.index[key] = len(l.sessions)
	l.sessions = append(l.sessions, s)
	return s, true
}

// CloseSession closes the open session for tagID on date with the given
// logout instant. A logout earlier than the login is rejected with
// ErrBeforeLogin and leaves the session open.
func (l *Ledger) CloseSession(tagID, date string, ts time.Time) (Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i, ok := l.index[ledgerKey{tagID: tagID, date: date}]
	if !ok || l.sessions[i].State != StateOpen {
		return Session{}, ErrNoOpenSession
	}
	if ts.Before(l.sessions[i].LoginAt) {
		return Session{}, ErrBeforeLogin
	}
	logout := ts
	l.sessions[i].LogoutAt = &logout
	l.sessions[i].State = StateClosed
	return l.sessions[i], nil
}

// Lookup returns a copy of the session for (tagID, date), if any.
func (l *Ledger) Lookup(tagID, date string) (Session, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i, ok := l.index[ledgerKey{tagID: tagID, date: date}]
	if !ok {
		return Session{}, false
	}
	return l.sessions[i], true
}

// Sessions returns sessions in login order. A non-empty date keeps only
// that exact calendar day; a non-empty tagID keeps one identity; a
// non-empty search matches case-insensitively as a substring of display
// name or tag id. Filters compose with AND.
func (l *Ledger) Sessions(date, tagID, search string) []Session {
	l.mu.RLock()
	defer l.mu.RUnlock()
	needle := strings.ToLower(search)
	out := make([]Session, 0, len(l.sessions))
	for _, s := range l.sessions {
		if date != "" && s.Date != date {
			continue
		}
		if tagID != "" && s.TagID != tagID {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(s.Name), needle) &&
			!strings.Contains(strings.ToLower(s.TagID), needle) {
			continue
		}
		out = append(out, s)
	}
	return out
}
