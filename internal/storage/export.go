package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/yourusername/linkedin-outreach/internal/outreach"
)

const exportStamp = "20060102_150405"

var (
	eventHeader   = []string{"timestamp", "session_id", "account", "action", "profile_url", "outcome", "detail", "connections", "messages", "profiles", "searches"}
	profileHeader = []string{"profile_url", "name", "title", "location", "visited_at"}
)

// WriteEventsCSV writes the action log as CSV
func WriteEventsCSV(w io.Writer, events []outreach.Event) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(eventHeader); err != nil {
		return err
	}
	for _, e := range events {
		row := []string{
			e.Timestamp.Format(time.RFC3339),
			e.SessionID,
			e.Account,
			string(e.Action),
			e.Target,
			string(e.Outcome),
			e.Detail,
			strconv.Itoa(e.Ledger.Connections),
			strconv.Itoa(e.Ledger.Messages),
			strconv.Itoa(e.Ledger.Profiles),
			strconv.Itoa(e.Ledger.Searches),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteProfilesCSV writes visited profiles as CSV
func WriteProfilesCSV(w io.Writer, profiles []outreach.ProfileInfo) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(profileHeader); err != nil {
		return err
	}
	for _, p := range profiles {
		visited := ""
		if !p.VisitedAt.IsZero() {
			visited = p.VisitedAt.Format(time.RFC3339)
		}
		if err := cw.Write([]string{p.URL, p.Name, p.Title, p.Location, visited}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveProfilesCSV writes profiles to dir/profiles_<stamp>.csv
func SaveProfilesCSV(dir string, profiles []outreach.ProfileInfo, now time.Time) (string, error) {
	path := filepath.Join(dir, "profiles_"+now.Format(exportStamp)+".csv")
	return path, writeFile(path, func(w io.Writer) error {
		return WriteProfilesCSV(w, profiles)
	})
}

// Export writes the action log of an account (every account when empty)
// and all visited profiles to dir, returning the created files
func (s *Store) Export(dir, account string, now time.Time) ([]string, error) {
	events, err := s.Events(account)
	if err != nil {
		return nil, err
	}
	profiles, err := s.Profiles()
	if err != nil {
		return nil, err
	}

	scope := account
	if scope == "" {
		scope = "all"
	}
	eventsPath := filepath.Join(dir, fmt.Sprintf("actions_%s_%s.csv", scope, now.Format(exportStamp)))
	if err := writeFile(eventsPath, func(w io.Writer) error {
		return WriteEventsCSV(w, events)
	}); err != nil {
		return nil, err
	}

	profilesPath, err := SaveProfilesCSV(dir, profiles, now)
	if err != nil {
		return []string{eventsPath}, err
	}
	return []string{eventsPath, profilesPath}, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
