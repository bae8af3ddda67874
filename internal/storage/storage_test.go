package storage

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/linkedin-outreach/internal/outreach"
	"github.com/yourusername/linkedin-outreach/internal/quota"
)

var day = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "outreach.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func event(account, target string, action outreach.Action, outcome outreach.Status, at time.Time) outreach.Event {
	return outreach.Event{
		Timestamp: at,
		SessionID: "s-1",
		Account:   account,
		Action:    action,
		Target:    target,
		Outcome:   outcome,
		Detail:    "detail, with comma",
		Ledger:    quota.State{Date: "2026-10-19", Connections: 3, Messages: 1},
	}
}

func TestLedgerRoundTrip(t *testing.T) {
	s := openTestStore(t)

	_, err := s.LoadState("main")
	assert.ErrorIs(t, err, quota.ErrNoState)

	st := quota.State{Date: "2026-10-19", Connections: 4, Messages: 2, Profiles: 30, Searches: 5, Withdrawals: 1}
	require.NoError(t, s.SaveState("main", st))

	got, err := s.LoadState("main")
	require.NoError(t, err)
	assert.Equal(t, st, got)

	st.Connections = 5
	require.NoError(t, s.SaveState("main", st))
	got, err = s.LoadState("main")
	require.NoError(t, err)
	assert.Equal(t, 5, got.Connections, "records are overwritten wholesale")

	ledgers, err := s.Ledgers()
	require.NoError(t, err)
	assert.Len(t, ledgers, 1)
}

func TestLedgerSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outreach.db")

	s, err := Open(path)
	require.NoError(t, err)
	ledger := quota.Open("main", quota.DefaultLimits(), s, quota.WithClock(func() time.Time { return day }))
	ledger.Record(quota.Connections)
	ledger.Record(quota.Connections)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	reopened := quota.Open("main", quota.DefaultLimits(), s, quota.WithClock(func() time.Time { return day }))
	assert.Equal(t, 2, reopened.Count(quota.Connections))

	nextDay := quota.Open("main", quota.DefaultLimits(), s, quota.WithClock(func() time.Time { return day.Add(24 * time.Hour) }))
	assert.Zero(t, nextDay.Count(quota.Connections))
}

func TestProfiles(t *testing.T) {
	s := openTestStore(t)

	p := outreach.ProfileInfo{URL: "https://www.linkedin.com/in/ana", Name: "Ana", Title: "Engineer", VisitedAt: day}
	require.NoError(t, s.SaveProfile(p))
	p.Location = "Madrid"
	require.NoError(t, s.SaveProfile(p))

	exists, err := s.ProfileExists(p.URL)
	require.NoError(t, err)
	assert.True(t, exists)

	profiles, err := s.Profiles()
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Madrid", profiles[0].Location)
	assert.True(t, day.Equal(profiles[0].VisitedAt))
}

func TestEventsAndHistory(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.AppendEvent(event("main", "https://x/in/a", outreach.ActionConnect, outreach.StatusSent, day)))
	require.NoError(t, s.AppendEvent(event("main", "https://x/in/b", outreach.ActionConnect, outreach.StatusFailed, day.Add(time.Minute))))
	require.NoError(t, s.AppendEvent(event("main", "https://x/in/c", outreach.ActionConnect, outreach.StatusAlreadyDone, day.Add(2*time.Minute))))
	require.NoError(t, s.AppendEvent(event("other", "https://x/in/d", outreach.ActionConnect, outreach.StatusSent, day.Add(3*time.Minute))))

	events, err := s.Events("main")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, outreach.StatusSent, events[0].Outcome)
	assert.Equal(t, 3, events[0].Ledger.Connections)
	assert.Equal(t, "s-1", events[0].SessionID)

	all, err := s.Events("")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	history := s.History("main")
	for url, want := range map[string]bool{
		"https://x/in/a": true,
		"https://x/in/b": false,
		"https://x/in/c": true,
		"https://x/in/d": false,
	} {
		got, err := history.HasContacted(url)
		require.NoError(t, err)
		assert.Equal(t, want, got, url)
	}
}

func TestStats(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.AppendEvent(event("main", "a", outreach.ActionConnect, outreach.StatusSent, day)))
	require.NoError(t, s.AppendEvent(event("main", "b", outreach.ActionConnect, outreach.StatusSent, day)))
	require.NoError(t, s.AppendEvent(event("main", "b", outreach.ActionMessage, outreach.StatusSent, day)))
	require.NoError(t, s.AppendEvent(event("other", "c", outreach.ActionConnect, outreach.StatusSent, day)))
	require.NoError(t, s.SaveSummary(Summary{ID: "x", Account: "main", StartedAt: day, EndedAt: day}))

	stats, err := s.Stats("main")
	require.NoError(t, err)
	assert.Equal(t, 2, stats["connect_sent"])
	assert.Equal(t, 1, stats["message_sent"])
	assert.Equal(t, 1, stats["sessions"])

	stats, err = s.Stats("")
	require.NoError(t, err)
	assert.Equal(t, 3, stats["connect_sent"])
}

func TestSummaries(t *testing.T) {
	s := openTestStore(t)

	first := Summary{
		ID:          "first",
		Account:     "main",
		StartedAt:   day,
		EndedAt:     day.Add(90 * time.Minute),
		Connections: 12,
		Messages:    2,
		Profiles:    20,
		Searches:    3,
		Daily:       quota.State{Date: "2026-10-19", Connections: 12},
	}
	second := first
	second.ID = "second"
	second.StartedAt = day.Add(3 * time.Hour)
	second.EndedAt = second.StartedAt.Add(time.Minute)
	second.Fault = "session fault: login failed"

	require.NoError(t, s.SaveSummary(first))
	require.NoError(t, s.SaveSummary(second))

	assert.Equal(t, 90*time.Minute, first.Duration())

	got, err := s.RecentSummaries("main", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "second", got[0].ID)
	assert.Equal(t, "session fault: login failed", got[0].Fault)
	assert.Equal(t, 12, got[1].Daily.Connections)
}

func TestWriteEventsCSV(t *testing.T) {
	var buf bytes.Buffer
	events := []outreach.Event{event("main", "https://x/in/a", outreach.ActionConnect, outreach.StatusSent, day)}

	require.NoError(t, WriteEventsCSV(&buf, events))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, eventHeader, records[0])
	assert.Equal(t, "detail, with comma", records[1][6])
	assert.Equal(t, "3", records[1][7])
}

func TestExport(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.AppendEvent(event("main", "https://x/in/a", outreach.ActionConnect, outreach.StatusSent, day)))
	require.NoError(t, s.SaveProfile(outreach.ProfileInfo{URL: "https://x/in/a", Name: "Ana", VisitedAt: day}))

	dir := filepath.Join(t.TempDir(), "exports")
	paths, err := s.Export(dir, "main", day)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "actions_main_20261019_093000.csv"), paths[0])
	assert.Equal(t, filepath.Join(dir, "profiles_20261019_093000.csv"), paths[1])

	data, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Contains(t, string(data), "https://x/in/a,Ana,")
}
