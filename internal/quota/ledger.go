// Package quota tracks per-account daily action counters against fixed caps.
//
// The ledger only advises: callers must check CanPerform before any
// externally visible action and call Record once the action succeeded.
// Every mutation is persisted immediately. A crash between the visible
// action and Record under-counts that action for the day.
package quota

import (
	"errors"
	"time"

	"github.com/yourusername/linkedin-outreach/internal/logger"
)

// DateLayout is the calendar-day format of persisted ledgers
const DateLayout = "2006-01-02"

// ErrNoState is returned by a Store that holds no ledger for an account
var ErrNoState = errors.New("no ledger state stored")

// Store persists one ledger record per account, overwritten wholesale
type Store interface {
	LoadState(account string) (State, error)
	SaveState(account string, state State) error
}

// Ledger is the in-memory daily counter set of one account
type Ledger struct {
	account  string
	limits   Limits
	store    Store
	now      func() time.Time
	state    State
	degraded bool
}

// Option customizes a Ledger
type Option func(*Ledger)

// WithClock overrides the time source used to decide "today"
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// Open loads the persisted ledger of an account and resets it when the
// stored day is not today. A nil store or a failing load leaves the ledger
// in memory-only mode; after a failing load nothing is written back.
func Open(account string, limits Limits, store Store, opts ...Option) *Ledger {
	l := &Ledger{
		account: account,
		limits:  limits.clone(),
		store:   store,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	if store == nil {
		logger.Warn("No ledger store configured, counters will not survive restarts", "account", account)
		l.degraded = true
	} else {
		state, err := store.LoadState(account)
		switch {
		case err == nil:
			l.state = state
			logger.Info("Daily ledger loaded", "account", account, "date", state.Date,
				"connections", state.Connections, "messages", state.Messages)
		case errors.Is(err, ErrNoState):
			logger.Debug("No stored ledger, starting fresh", "account", account)
		default:
			logger.Error("Failed to load daily ledger, continuing in memory", "account", account, "error", err)
			l.degraded = true
			// the stored record is unknown, never overwrite it
			l.store = nil
		}
	}

	l.ResetIfNewDay()
	return l
}

// ResetIfNewDay zeroes every counter when the ledger date is not today.
// It reports whether a reset happened.
func (l *Ledger) ResetIfNewDay() bool {
	today := l.now().Format(DateLayout)
	if l.state.Date == today {
		return false
	}

	if l.state.Date != "" {
		logger.Info("New day, resetting daily ledger", "account", l.account, "previous", l.state.Date, "today", today)
	}
	l.state = State{Date: today}
	l.persist()
	return true
}

// CanPerform reports whether one more action of the category fits under its cap
func (l *Ledger) CanPerform(c Category) bool {
	count, limit := l.state.Count(c), l.limits[c]
	if count >= limit {
		logger.Warn("Daily limit reached", "account", l.account, "category", c, "count", count, "limit", limit)
		return false
	}
	return true
}

// Record counts one performed action and persists the ledger
func (l *Ledger) Record(c Category) {
	l.state.increment(c)
	l.persist()
}

// Count returns today's counter for the category
func (l *Ledger) Count(c Category) int {
	return l.state.Count(c)
}

// Limit returns the configured cap for the category
func (l *Ledger) Limit(c Category) int {
	return l.limits[c]
}

// Remaining returns how many more actions of the category fit today
func (l *Ledger) Remaining(c Category) int {
	if r := l.limits[c] - l.state.Count(c); r > 0 {
		return r
	}
	return 0
}

// Snapshot returns a copy of the current ledger record
func (l *Ledger) Snapshot() State {
	return l.state
}

// Account returns the identity the ledger belongs to
func (l *Ledger) Account() string {
	return l.account
}

// Degraded reports whether durability was lost for this session
func (l *Ledger) Degraded() bool {
	return l.degraded
}

func (l *Ledger) persist() {
	if l.store == nil {
		return
	}
	if err := l.store.SaveState(l.account, l.state); err != nil {
		if !l.degraded {
			logger.Error("Failed to persist daily ledger, continuing in memory", "account", l.account, "error", err)
		}
		l.degraded = true
	}
}
