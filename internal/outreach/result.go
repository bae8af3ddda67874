package outreach

import (
	"time"

	"github.com/yourusername/linkedin-outreach/internal/quota"
)

// Status is the terminal outcome of one executor operation
type Status string

const (
	StatusSent         Status = "sent"
	StatusAlreadyDone  Status = "already_done"
	StatusNotFound     Status = "not_found"
	StatusLimitReached Status = "limit_reached"
	StatusFailed       Status = "failed"
)

// Action names an executor operation
type Action string

const (
	ActionSearch  Action = "search"
	ActionVisit   Action = "visit_profile"
	ActionConnect Action = "connect"
	ActionMessage Action = "message"
)

// engagement actions are the ones written to the action log
func (a Action) engagement() bool {
	return a == ActionConnect || a == ActionMessage
}

// Result is returned by every executor operation. Exactly one status is
// set; limit_reached means no browser interaction happened.
type Result struct {
	Status    Status    `json:"status"`
	Target    string    `json:"target"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// OK reports whether the action went through
func (r Result) OK() bool {
	return r.Status == StatusSent
}

// Event is one line of the append-only action log
type Event struct {
	Timestamp time.Time   `json:"timestamp"`
	SessionID string      `json:"session_id"`
	Account   string      `json:"account"`
	Action    Action      `json:"action"`
	Target    string      `json:"target"`
	Outcome   Status      `json:"outcome"`
	Detail    string      `json:"detail,omitempty"`
	Ledger    quota.State `json:"ledger"`
}

// ProfileInfo is what a profile visit extracts
type ProfileInfo struct {
	URL       string    `json:"url"`
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	Location  string    `json:"location"`
	VisitedAt time.Time `json:"visited_at"`
}

// Journal durably records what the executor did
type Journal interface {
	AppendEvent(e Event) error
	SaveProfile(p ProfileInfo) error
}
