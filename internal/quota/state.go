package quota

import "sync"

// Category is an independently capped daily action type
type Category string

const (
	Connections   Category = "connections"
	Messages      Category = "messages"
	ProfileVisits Category = "profile_visits"
	Searches      Category = "searches"
	Withdrawals   Category = "withdrawals"
)

// Categories lists every category in display order
var Categories = []Category{Connections, Messages, ProfileVisits, Searches, Withdrawals}

// Limits maps each category to its daily cap. A missing category has a cap of 0.
type Limits map[Category]int

// DefaultLimits are kept well below the platform's own ceilings
func DefaultLimits() Limits {
	return Limits{
		Connections:   40,
		Messages:      20,
		ProfileVisits: 150,
		Searches:      100,
		Withdrawals:   5,
	}
}

func (l Limits) clone() Limits {
	out := make(Limits, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// State is the persisted daily ledger record of one account
type State struct {
	Date        string `json:"date"`
	Connections int    `json:"connections"`
	Messages    int    `json:"messages"`
	Profiles    int    `json:"profiles"`
	Searches    int    `json:"searches"`
	Withdrawals int    `json:"withdrawals"`
}

// Count returns the counter of a category
func (s State) Count(c Category) int {
	if p := s.field(c); p != nil {
		return *p
	}
	return 0
}

func (s *State) increment(c Category) {
	if p := s.field(c); p != nil {
		*p++
	}
}

func (s *State) field(c Category) *int {
	switch c {
	case Connections:
		return &s.Connections
	case Messages:
		return &s.Messages
	case ProfileVisits:
		return &s.Profiles
	case Searches:
		return &s.Searches
	case Withdrawals:
		return &s.Withdrawals
	}
	return nil
}

// MemoryStore keeps ledgers in process memory
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]State
}

// NewMemoryStore returns an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]State)}
}

func (m *MemoryStore) LoadState(account string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.states[account]
	if !ok {
		return State{}, ErrNoState
	}
	return state, nil
}

func (m *MemoryStore) SaveState(account string, state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[account] = state
	return nil
}
