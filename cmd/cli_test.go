package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/linkedin-outreach/internal/auth"
	"github.com/yourusername/linkedin-outreach/internal/browser"
	"github.com/yourusername/linkedin-outreach/internal/browser/browsertest"
	"github.com/yourusername/linkedin-outreach/internal/config"
	"github.com/yourusername/linkedin-outreach/internal/outreach"
	"github.com/yourusername/linkedin-outreach/internal/quota"
	"github.com/yourusername/linkedin-outreach/internal/session"
	"github.com/yourusername/linkedin-outreach/internal/stealth"
)

func executeCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stdout)
	root.SetIn(bytes.NewReader(nil))
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), err
}

// writeConfigFixture writes a two-account config whose state lives under dir
func writeConfigFixture(t *testing.T, dir string) string {
	t.Helper()

	cfg := fmt.Sprintf(`accounts:
  - name: main
    email: main@example.com
    password: secret
  - name: alt
    email: alt@example.com
    password: secret

campaigns:
  - name: gophers
    keywords: ["golang"]
    daily_connection_goal: 5
  - name: rustaceans
    keywords: ["rust"]

browser:
  sessions_dir: %[1]s/sessions
  profiles_dir: %[1]s/profiles
  screenshots_dir: ""

database:
  path: %[1]s/data/outreach.db

logging:
  level: error
  to_file: false
`, dir)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0644))
	return path
}

func TestHelpListsCommands(t *testing.T) {
	out, err := executeCLI(t, "--help")
	require.NoError(t, err)
	for _, name := range []string{"interactive", "auto", "init-config", "stats", "export", "version"} {
		assert.Contains(t, out, name)
	}
}

func TestVersion(t *testing.T) {
	out, err := executeCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, AppVersion)
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	out, err := executeCLI(t, "init-config", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.Template, string(data))

	_, err = executeCLI(t, "init-config", path)
	require.ErrorIs(t, err, config.ErrConfigExists)

	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))
	_, err = executeCLI(t, "init-config", "--force", path)
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.Template, string(data))
}

func TestInitConfigUsesConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "from-flag.yaml")

	_, err := executeCLI(t, "--config", path, "init-config")
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestStats(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFixture(t, dir)

	out, err := executeCLI(t, "--config", path, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "main")
	assert.Contains(t, out, "alt")
	assert.Contains(t, out, "0/40 (0.0%)")
	assert.Contains(t, out, "total_profiles")
	assert.Contains(t, out, "sessions")
}

func TestStatsMissingConfig(t *testing.T) {
	_, err := executeCLI(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "stats")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFixture(t, dir)
	exportDir := filepath.Join(dir, "out")

	out, err := executeCLI(t, "--config", path, "export", "--account", "main", "--dir", exportDir)
	require.NoError(t, err)
	assert.Contains(t, out, "actions_main_")

	files, err := filepath.Glob(filepath.Join(exportDir, "*.csv"))
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestUsageHelpers(t *testing.T) {
	assert.Equal(t, "10/40 (25.0%)", usage(10, 40))
	assert.Equal(t, "3", usage(3, 0))
	assert.Equal(t, colorDanger, usageStyle(40, 40).GetForeground())
	assert.Equal(t, colorWarning, usageStyle(33, 40).GetForeground())
	assert.Equal(t, colorSuccess, usageStyle(1, 40).GetForeground())
}

func TestRenderResult(t *testing.T) {
	line := renderResult(outreach.Result{Status: outreach.StatusFailed, Target: "https://www.linkedin.com/in/ana", Detail: "click"})
	assert.Contains(t, line, "failed")
	assert.Contains(t, line, "/in/ana")
	assert.Contains(t, line, "click")
}

func TestWarningBannerCountdown(t *testing.T) {
	var out bytes.Buffer
	var slept time.Duration
	displayWarningBanner(&out, true, func(d time.Duration) { slept += d })

	assert.Contains(t, out.String(), "EDUCATIONAL USE ONLY")
	assert.Equal(t, 5*time.Second, slept)

	slept = 0
	displayWarningBanner(&out, false, func(d time.Duration) { slept += d })
	assert.Zero(t, slept)
}

// autoApp loads the fixture config and swaps in a fake browser. Accounts
// listed in broken fail to launch.
func autoApp(t *testing.T, broken ...string) (*app, *[]time.Duration) {
	t.Helper()

	dir := t.TempDir()
	a, err := loadApp(&rootOptions{configPath: writeConfigFixture(t, dir)}, &bytes.Buffer{}, "")
	require.NoError(t, err)
	t.Cleanup(a.close)

	a.cfg.Selectors.LoggedIn = []string{"#global-nav"}
	a.now = func() time.Time { return time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC) }

	var waits []time.Duration
	a.wait = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	a.launch = func(cfg *config.Config) session.Launcher {
		return func(acct config.Account) (browser.SessionDriver, error) {
			for _, name := range broken {
				if name == acct.Name {
					return nil, errors.New("chrome not found")
				}
			}
			d := browsertest.New()
			d.SeedCookies(auth.SessionPath(cfg.Browser.SessionsDir, acct.Name))
			d.Set("#global-nav", browsertest.NewElement("nav"))
			return d, nil
		}
	}

	human := stealth.New(a.cfg.TimingProfile(),
		stealth.WithSleeper(func(time.Duration) {}),
		stealth.WithRand(rand.New(rand.NewSource(7))),
	)
	a.sessionOpts = []session.Option{session.WithHumanizer(human), session.WithClock(a.now)}
	return a, &waits
}

func TestRunAutoContinuesAfterSessionFault(t *testing.T) {
	a, waits := autoApp(t, "main")

	err := runAuto(context.Background(), a, a.cfg.Accounts, a.cfg.Campaigns)
	require.NoError(t, err)

	failed, err := a.store.RecentSummaries("main", 5)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].Fault, "chrome not found")

	ok, err := a.store.RecentSummaries("alt", 5)
	require.NoError(t, err)
	require.Len(t, ok, 1)
	assert.Empty(t, ok[0].Fault)
	assert.Equal(t, 2, ok[0].Searches, "one search per campaign")

	// one pause between the accounts, one between alt's two campaigns
	assert.Len(t, *waits, 2)
}

func TestRunAutoFailsWhenEveryAccountFails(t *testing.T) {
	a, _ := autoApp(t, "main", "alt")

	err := runAuto(context.Background(), a, a.cfg.Accounts, a.cfg.Campaigns)
	require.Error(t, err)
}

func TestRunAutoStopsWhenCancelled(t *testing.T) {
	a, _ := autoApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, runAuto(ctx, a, a.cfg.Accounts, a.cfg.Campaigns))

	summaries, err := a.store.RecentSummaries("", 5)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestRunAutoStopsAtDailyLimit(t *testing.T) {
	a, _ := autoApp(t)
	require.NoError(t, a.store.SaveState("main", quota.State{Date: "2026-10-19", Searches: a.cfg.Limits.Searches}))

	require.NoError(t, runAuto(context.Background(), a, a.cfg.Accounts[:1], a.cfg.Campaigns))

	summaries, err := a.store.RecentSummaries("main", 5)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Zero(t, summaries[0].Searches)
}

func TestSelectCampaigns(t *testing.T) {
	cfg := config.Default()
	cfg.Campaigns = []config.Campaign{{Name: "a"}, {Name: "b"}}

	got, err := selectCampaigns(&cfg, []string{"b"})
	require.NoError(t, err)
	assert.Equal(t, "b", got[0].Name)

	_, err = selectCampaigns(&cfg, []string{"c"})
	assert.Error(t, err)

	cfg.Campaigns = nil
	_, err = selectCampaigns(&cfg, nil)
	assert.Error(t, err)
}

func TestSleepCtx(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepCtx(ctx, time.Hour), context.Canceled)
	assert.NoError(t, sleepCtx(context.Background(), time.Millisecond))
}

func menuWithInput(cfg *config.Config, input string) (*menu, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &menu{app: &app{cfg: cfg}, in: bufio.NewScanner(strings.NewReader(input)), out: out}, out
}

func TestCustomCampaign(t *testing.T) {
	cfg := config.Default()

	m, _ := menuWithInput(&cfg, "golang, rust ,\nMadrid, Lisbon\n5\n2\n\n")
	c, ok := m.customCampaign()
	require.True(t, ok)
	assert.Equal(t, []string{"golang", "rust"}, c.Keywords)
	assert.Equal(t, []string{"Madrid", "Lisbon"}, c.Locations)
	assert.Equal(t, 5, c.DailyConnectionGoal)
	assert.Equal(t, 2, c.DailyMessageGoal)
	assert.Equal(t, cfg.Outreach.DefaultFollowUp, c.FollowUpMessage)
}

func TestCustomCampaignDefaults(t *testing.T) {
	cfg := config.Default()

	m, _ := menuWithInput(&cfg, "golang\n\n\n\n")
	c, ok := m.customCampaign()
	require.True(t, ok)
	assert.Empty(t, c.Locations)
	assert.Equal(t, cfg.Limits.Connections, c.DailyConnectionGoal, "connection goal defaults to the daily limit")
	assert.Zero(t, c.DailyMessageGoal)
	assert.Empty(t, c.FollowUpMessage)

	m, _ = menuWithInput(&cfg, "golang\n\n0\n")
	c, ok = m.customCampaign()
	require.True(t, ok)
	assert.Zero(t, c.DailyConnectionGoal)
}

func TestCustomCampaignRequiresKeywords(t *testing.T) {
	cfg := config.Default()

	m, out := menuWithInput(&cfg, " , \n")
	_, ok := m.customCampaign()
	assert.False(t, ok)
	assert.Contains(t, out.String(), "Keywords are required")
}

func TestRunCampaignRejectsUnknownChoice(t *testing.T) {
	cfg := config.Default()
	cfg.Campaigns = []config.Campaign{{Name: "gophers", Keywords: []string{"golang"}}}

	m, out := menuWithInput(&cfg, "7\n")
	m.runCampaign(context.Background())
	assert.Contains(t, out.String(), "1) gophers")
	assert.Contains(t, out.String(), "c) Custom campaign")
	assert.Contains(t, out.String(), "No such campaign")
}
