// Package storage persists daily ledgers, the engagement action log,
// visited profiles and session summaries in a local SQLite database.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/yourusername/linkedin-outreach/internal/outreach"
	"github.com/yourusername/linkedin-outreach/internal/quota"
)

// Store is a SQLite-backed ledger store and action journal. One process
// per account at a time is assumed; there is no cross-process locking.
type Store struct {
	db *sql.DB
}

// Open opens (and creates when missing) the database at path
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps :memory: shared
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS daily_ledger (
		account TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		connections INTEGER NOT NULL DEFAULT 0,
		messages INTEGER NOT NULL DEFAULT 0,
		profiles INTEGER NOT NULL DEFAULT 0,
		searches INTEGER NOT NULL DEFAULT 0,
		withdrawals INTEGER NOT NULL DEFAULT 0,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS profiles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		profile_url TEXT UNIQUE NOT NULL,
		name TEXT,
		headline TEXT,
		location TEXT,
		visited_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS action_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT,
		account TEXT NOT NULL,
		action TEXT NOT NULL,
		profile_url TEXT NOT NULL,
		outcome TEXT NOT NULL,
		detail TEXT,
		ledger TEXT,
		timestamp TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS session_summaries (
		id TEXT PRIMARY KEY,
		account TEXT NOT NULL,
		started_at TIMESTAMP NOT NULL,
		ended_at TIMESTAMP NOT NULL,
		duration_minutes REAL NOT NULL,
		connections INTEGER NOT NULL DEFAULT 0,
		messages INTEGER NOT NULL DEFAULT 0,
		profiles INTEGER NOT NULL DEFAULT 0,
		searches INTEGER NOT NULL DEFAULT 0,
		daily_stats TEXT,
		fault TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_profile_url ON profiles(profile_url);
	CREATE INDEX IF NOT EXISTS idx_action_events_target ON action_events(account, profile_url);
	CREATE INDEX IF NOT EXISTS idx_action_events_timestamp ON action_events(timestamp);
	CREATE INDEX IF NOT EXISTS idx_session_summaries_account ON session_summaries(account, started_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// LoadState returns the persisted ledger of an account, or quota.ErrNoState
func (s *Store) LoadState(account string) (quota.State, error) {
	query := `
		SELECT date, connections, messages, profiles, searches, withdrawals
		FROM daily_ledger WHERE account = ?
	`

	var st quota.State
	err := s.db.QueryRow(query, account).Scan(&st.Date, &st.Connections, &st.Messages, &st.Profiles, &st.Searches, &st.Withdrawals)
	if errors.Is(err, sql.ErrNoRows) {
		return quota.State{}, quota.ErrNoState
	}
	if err != nil {
		return quota.State{}, fmt.Errorf("failed to load ledger: %w", err)
	}
	return st, nil
}

// SaveState overwrites the ledger record of an account
func (s *Store) SaveState(account string, st quota.State) error {
	query := `
		INSERT INTO daily_ledger (account, date, connections, messages, profiles, searches, withdrawals, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(account) DO UPDATE SET
			date = excluded.date,
			connections = excluded.connections,
			messages = excluded.messages,
			profiles = excluded.profiles,
			searches = excluded.searches,
			withdrawals = excluded.withdrawals,
			updated_at = excluded.updated_at
	`

	_, err := s.db.Exec(query, account, st.Date, st.Connections, st.Messages, st.Profiles, st.Searches, st.Withdrawals)
	if err != nil {
		return fmt.Errorf("failed to save ledger: %w", err)
	}
	return nil
}

// Ledgers returns every persisted ledger keyed by account
func (s *Store) Ledgers() (map[string]quota.State, error) {
	rows, err := s.db.Query(`
		SELECT account, date, connections, messages, profiles, searches, withdrawals
		FROM daily_ledger ORDER BY account
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledgers: %w", err)
	}
	defer rows.Close()

	out := make(map[string]quota.State)
	for rows.Next() {
		var account string
		var st quota.State
		if err := rows.Scan(&account, &st.Date, &st.Connections, &st.Messages, &st.Profiles, &st.Searches, &st.Withdrawals); err != nil {
			return nil, fmt.Errorf("failed to scan ledger: %w", err)
		}
		out[account] = st
	}
	return out, rows.Err()
}

// SaveProfile stores or refreshes a visited profile
func (s *Store) SaveProfile(p outreach.ProfileInfo) error {
	query := `
		INSERT INTO profiles (profile_url, name, headline, location, visited_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(profile_url) DO UPDATE SET
			name = excluded.name,
			headline = excluded.headline,
			location = excluded.location,
			visited_at = excluded.visited_at
	`

	_, err := s.db.Exec(query, p.URL, p.Name, p.Title, p.Location, p.VisitedAt)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// ProfileExists checks if a profile URL was visited before
func (s *Store) ProfileExists(profileURL string) (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM profiles WHERE profile_url = ?", profileURL).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check profile existence: %w", err)
	}
	return count > 0, nil
}

// Profiles returns visited profiles, most recent first
func (s *Store) Profiles() ([]outreach.ProfileInfo, error) {
	rows, err := s.db.Query(`
		SELECT profile_url, name, headline, location, visited_at
		FROM profiles ORDER BY visited_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	var out []outreach.ProfileInfo
	for rows.Next() {
		var p outreach.ProfileInfo
		var name, headline, location sql.NullString
		if err := rows.Scan(&p.URL, &name, &headline, &location, &p.VisitedAt); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		p.Name, p.Title, p.Location = name.String, headline.String, location.String
		out = append(out, p)
	}
	return out, rows.Err()
}

// AppendEvent adds one line to the engagement action log
func (s *Store) AppendEvent(e outreach.Event) error {
	ledger, err := json.Marshal(e.Ledger)
	if err != nil {
		return fmt.Errorf("failed to encode ledger snapshot: %w", err)
	}

	query := `
		INSERT INTO action_events (session_id, account, action, profile_url, outcome, detail, ledger, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.Exec(query, e.SessionID, e.Account, string(e.Action), e.Target, string(e.Outcome), e.Detail, string(ledger), e.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to record action: %w", err)
	}
	return nil
}

// Events returns the action log of an account (every account when empty)
// in chronological order
func (s *Store) Events(account string) ([]outreach.Event, error) {
	query := `
		SELECT session_id, account, action, profile_url, outcome, detail, ledger, timestamp
		FROM action_events
		WHERE (? = '' OR account = ?)
		ORDER BY timestamp, id
	`

	rows, err := s.db.Query(query, account, account)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}
	defer rows.Close()

	var events []outreach.Event
	for rows.Next() {
		var e outreach.Event
		var sessionID, detail, ledger sql.NullString
		var action, outcome string
		if err := rows.Scan(&sessionID, &e.Account, &action, &e.Target, &outcome, &detail, &ledger, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}
		e.SessionID = sessionID.String
		e.Detail = detail.String
		e.Action = outreach.Action(action)
		e.Outcome = outreach.Status(outcome)
		if ledger.Valid && ledger.String != "" {
			if err := json.Unmarshal([]byte(ledger.String), &e.Ledger); err != nil {
				return nil, fmt.Errorf("failed to decode ledger snapshot: %w", err)
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// HasContacted reports whether the account already sent a connection
// request to the profile or found it already connected
func (s *Store) HasContacted(account, profileURL string) (bool, error) {
	query := `
		SELECT COUNT(*) FROM action_events
		WHERE account = ? AND profile_url = ? AND action = ? AND outcome IN (?, ?)
	`

	var count int
	err := s.db.QueryRow(query, account, profileURL,
		string(outreach.ActionConnect), string(outreach.StatusSent), string(outreach.StatusAlreadyDone),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check contact history: %w", err)
	}
	return count > 0, nil
}

// History is the contact history of one account
type History struct {
	store   *Store
	account string
}

// History scopes HasContacted to one account
func (s *Store) History(account string) History {
	return History{store: s, account: account}
}

// HasContacted reports whether the account already engaged the profile
func (h History) HasContacted(profileURL string) (bool, error) {
	return h.store.HasContacted(h.account, profileURL)
}

// Stats returns totals from the action log and profiles table for an
// account (every account when empty)
func (s *Store) Stats(account string) (map[string]int, error) {
	stats := make(map[string]int)

	var totalProfiles int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM profiles").Scan(&totalProfiles); err != nil {
		return nil, fmt.Errorf("failed to count profiles: %w", err)
	}
	stats["total_profiles"] = totalProfiles

	rows, err := s.db.Query(`
		SELECT action, outcome, COUNT(*) FROM action_events
		WHERE (? = '' OR account = ?)
		GROUP BY action, outcome
	`, account, account)
	if err != nil {
		return nil, fmt.Errorf("failed to count actions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var action, outcome string
		var count int
		if err := rows.Scan(&action, &outcome, &count); err != nil {
			return nil, fmt.Errorf("failed to scan action count: %w", err)
		}
		stats[action+"_"+outcome] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var sessions int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM session_summaries WHERE (? = '' OR account = ?)", account, account).Scan(&sessions); err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}
	stats["sessions"] = sessions

	return stats, nil
}

// Summary is written once when a session ends
type Summary struct {
	ID          string
	Account     string
	StartedAt   time.Time
	EndedAt     time.Time
	Connections int
	Messages    int
	Profiles    int
	Searches    int
	Daily       quota.State
	// Fault is set when the session ended on a session fault
	Fault string
}

// Duration is the wall time of the session
func (s Summary) Duration() time.Duration {
	return s.EndedAt.Sub(s.StartedAt)
}

// SaveSummary appends a session summary
func (s *Store) SaveSummary(sum Summary) error {
	daily, err := json.Marshal(sum.Daily)
	if err != nil {
		return fmt.Errorf("failed to encode daily stats: %w", err)
	}

	query := `
		INSERT INTO session_summaries
			(id, account, started_at, ended_at, duration_minutes, connections, messages, profiles, searches, daily_stats, fault)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.Exec(query, sum.ID, sum.Account, sum.StartedAt, sum.EndedAt, sum.Duration().Minutes(),
		sum.Connections, sum.Messages, sum.Profiles, sum.Searches, string(daily), sum.Fault)
	if err != nil {
		return fmt.Errorf("failed to save session summary: %w", err)
	}
	return nil
}

// RecentSummaries returns up to limit summaries of an account (every
// account when empty), newest first
func (s *Store) RecentSummaries(account string, limit int) ([]Summary, error) {
	query := `
		SELECT id, account, started_at, ended_at, connections, messages, profiles, searches, daily_stats, fault
		FROM session_summaries
		WHERE (? = '' OR account = ?)
		ORDER BY started_at DESC
		LIMIT ?
	`

	rows, err := s.db.Query(query, account, account, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query session summaries: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var daily, fault sql.NullString
		if err := rows.Scan(&sum.ID, &sum.Account, &sum.StartedAt, &sum.EndedAt,
			&sum.Connections, &sum.Messages, &sum.Profiles, &sum.Searches, &daily, &fault); err != nil {
			return nil, fmt.Errorf("failed to scan session summary: %w", err)
		}
		if daily.Valid && daily.String != "" {
			if err := json.Unmarshal([]byte(daily.String), &sum.Daily); err != nil {
				return nil, fmt.Errorf("failed to decode daily stats: %w", err)
			}
		}
		sum.Fault = fault.String
		out = append(out, sum)
	}
	return out, rows.Err()
}

var (
	_ quota.Store      = (*Store)(nil)
	_ outreach.Journal = (*Store)(nil)
)
