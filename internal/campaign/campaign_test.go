package campaign

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/yourusername/linkedin-outreach/internal/config"
	"github.com/yourusername/linkedin-outreach/internal/outreach"
	"github.com/yourusername/linkedin-outreach/internal/quota"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeActions struct {
	results     map[string][]string
	searchLimit bool
	statuses    map[string]outreach.Status
	connectCap  int

	searches    []string
	connections []string
	messages    []string

	onConnect func()
}

func newFakeActions() *fakeActions {
	return &fakeActions{
		results:    map[string][]string{},
		statuses:   map[string]outreach.Status{},
		connectCap: -1,
	}
}

func (f *fakeActions) SearchPeople(keyword, location string, limit int) ([]string, outreach.Result) {
	key := keyword + "|" + location
	if f.searchLimit {
		return nil, outreach.Result{Status: outreach.StatusLimitReached}
	}
	f.searches = append(f.searches, key)
	profiles := f.results[key]
	if len(profiles) > limit {
		profiles = profiles[:limit]
	}
	if len(profiles) == 0 {
		return nil, outreach.Result{Status: outreach.StatusNotFound}
	}
	return profiles, outreach.Result{Status: outreach.StatusSent}
}

func (f *fakeActions) SendConnection(profileURL, note string) outreach.Result {
	if f.onConnect != nil {
		f.onConnect()
	}
	if f.connectCap >= 0 && len(f.connections) >= f.connectCap {
		return outreach.Result{Status: outreach.StatusLimitReached, Target: profileURL}
	}
	f.connections = append(f.connections, profileURL)
	status, ok := f.statuses[profileURL]
	if !ok {
		status = outreach.StatusSent
	}
	return outreach.Result{Status: status, Target: profileURL}
}

func (f *fakeActions) SendMessage(profileURL, text string) outreach.Result {
	f.messages = append(f.messages, profileURL+": "+text)
	return outreach.Result{Status: outreach.StatusSent, Target: profileURL}
}

type fakePacer struct {
	roll       float64
	breakEvery int
	delays     []time.Duration
	breakCalls []int
}

func (p *fakePacer) Delay(min, max time.Duration) time.Duration {
	p.delays = append(p.delays, min)
	return min
}

func (p *fakePacer) MaybeBreak(actionCount int) (time.Duration, bool) {
	p.breakCalls = append(p.breakCalls, actionCount)
	if p.breakEvery > 0 && actionCount%p.breakEvery == 0 {
		return time.Minute, true
	}
	return 0, false
}

func (p *fakePacer) Float64() float64 { return p.roll }

type fakeLimits quota.Limits

func (l fakeLimits) Limit(c quota.Category) int { return l[c] }

type fakeHistory map[string]bool

func (h fakeHistory) HasContacted(url string) (bool, error) {
	if url == "broken" {
		return false, errors.New("database is locked")
	}
	return h[url], nil
}

func profiles(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("https://www.linkedin.com/in/%s-%d", prefix, i)
	}
	return out
}

func baseSpec() Spec {
	return Spec{
		Name:             "test",
		Keywords:         []string{"golang"},
		ConnectionGoal:   40,
		FetchPerSearch:   20,
		FollowUpMessage:  "Thanks!",
		FollowUpRate:     0.1,
		BetweenProfiles:  outreach.Span{Min: 5 * time.Second, Max: 15 * time.Second},
		BetweenLocations: outreach.Span{Min: 10 * time.Second, Max: 30 * time.Second},
	}
}

func TestRunStopsAtConnectionGoal(t *testing.T) {
	actions := newFakeActions()
	actions.results["golang|"] = profiles("go", 10)
	pacer := &fakePacer{roll: 0.9}

	spec := baseSpec()
	spec.ConnectionGoal = 3

	totals := NewRunner(actions, pacer, fakeLimits(quota.DefaultLimits())).Run(context.Background(), spec)

	assert.Equal(t, StopGoalReached, totals.Stop)
	assert.Equal(t, 3, totals.Connections)
	assert.Len(t, actions.connections, 3)
	assert.Equal(t, 1, totals.Searches)
	assert.Empty(t, actions.messages)
}

func TestRunGoalIsBoundedByLimit(t *testing.T) {
	actions := newFakeActions()
	actions.results["golang|"] = profiles("go", 10)
	limits := quota.DefaultLimits()
	limits[quota.Connections] = 2

	spec := baseSpec()
	spec.ConnectionGoal = 50

	totals := NewRunner(actions, &fakePacer{roll: 1}, fakeLimits(limits)).Run(context.Background(), spec)

	assert.Equal(t, 2, totals.Connections)
	assert.Equal(t, StopGoalReached, totals.Stop)
}

func TestRunIteratesKeywordsAndLocations(t *testing.T) {
	actions := newFakeActions()
	actions.results["golang|Madrid"] = profiles("mad", 2)
	actions.results["golang|Barcelona"] = profiles("bcn", 1)
	actions.results["rust|Madrid"] = profiles("rs", 1)
	pacer := &fakePacer{roll: 1}

	spec := baseSpec()
	spec.Keywords = []string{"golang", "rust"}
	spec.Locations = []string{"Madrid", "Barcelona"}

	totals := NewRunner(actions, pacer, fakeLimits(quota.DefaultLimits())).Run(context.Background(), spec)

	assert.Equal(t, []string{"golang|Madrid", "golang|Barcelona", "rust|Madrid", "rust|Barcelona"}, actions.searches)
	assert.Equal(t, StopCompleted, totals.Stop)
	assert.Equal(t, 4, totals.Connections)
	assert.Equal(t, 4, totals.Searches)

	var locationPauses int
	for _, d := range pacer.delays {
		if d == spec.BetweenLocations.Min {
			locationPauses++
		}
	}
	assert.Equal(t, 4, locationPauses)
	assert.Len(t, pacer.delays, 8, "one pause per profile and one per location")
}

func TestRunWithoutLocationsSkipsLocationPause(t *testing.T) {
	actions := newFakeActions()
	actions.results["golang|"] = profiles("go", 2)
	pacer := &fakePacer{roll: 1}

	NewRunner(actions, pacer, fakeLimits(quota.DefaultLimits())).Run(context.Background(), baseSpec())

	assert.Equal(t, []string{"golang|"}, actions.searches)
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, pacer.delays)
}

func TestRunStopsOnConnectionLimit(t *testing.T) {
	actions := newFakeActions()
	actions.results["golang|"] = profiles("go", 5)
	actions.connectCap = 1

	totals := NewRunner(actions, &fakePacer{roll: 1}, fakeLimits(quota.DefaultLimits())).Run(context.Background(), baseSpec())

	assert.Equal(t, StopLimitReached, totals.Stop)
	assert.Equal(t, 1, totals.Connections)
	assert.Equal(t, 2, totals.Profiles)
}

func TestRunStopsOnSearchLimit(t *testing.T) {
	actions := newFakeActions()
	actions.searchLimit = true

	totals := NewRunner(actions, &fakePacer{roll: 1}, fakeLimits(quota.DefaultLimits())).Run(context.Background(), baseSpec())

	assert.Equal(t, StopLimitReached, totals.Stop)
	assert.Zero(t, totals.Searches)
	assert.Empty(t, actions.connections)
}

func TestRunCountsOutcomes(t *testing.T) {
	actions := newFakeActions()
	urls := profiles("go", 4)
	actions.results["golang|"] = urls
	actions.statuses[urls[0]] = outreach.StatusAlreadyDone
	actions.statuses[urls[1]] = outreach.StatusNotFound
	actions.statuses[urls[2]] = outreach.StatusFailed

	totals := NewRunner(actions, &fakePacer{roll: 1}, fakeLimits(quota.DefaultLimits())).Run(context.Background(), baseSpec())

	assert.Equal(t, 1, totals.AlreadyDone)
	assert.Equal(t, 1, totals.NotFound)
	assert.Equal(t, 1, totals.Failed)
	assert.Equal(t, 1, totals.Connections)
	assert.Equal(t, 4, totals.Profiles)
	assert.Equal(t, StopCompleted, totals.Stop)
}

func TestRunFollowUpMessages(t *testing.T) {
	actions := newFakeActions()
	actions.results["golang|"] = profiles("go", 5)

	spec := baseSpec()
	spec.MessageGoal = 2

	totals := NewRunner(actions, &fakePacer{roll: 0.05}, fakeLimits(quota.DefaultLimits())).Run(context.Background(), spec)

	assert.Equal(t, 5, totals.Connections)
	assert.Equal(t, 2, totals.Messages, "follow-ups stop at the message goal")
	require.Len(t, actions.messages, 2)
	assert.Equal(t, "https://www.linkedin.com/in/go-0: Thanks!", actions.messages[0])
}

func TestRunBreaksResetTheActionCounter(t *testing.T) {
	actions := newFakeActions()
	actions.results["golang|"] = profiles("go", 7)
	pacer := &fakePacer{roll: 1, breakEvery: 3}

	totals := NewRunner(actions, pacer, fakeLimits(quota.DefaultLimits())).Run(context.Background(), baseSpec())

	assert.Equal(t, 2, totals.Breaks)
	assert.Equal(t, []int{1, 2, 3, 1, 2, 3, 1}, pacer.breakCalls)
}

func TestRunSkipsContactedProfiles(t *testing.T) {
	actions := newFakeActions()
	urls := profiles("go", 3)
	actions.results["golang|"] = append(urls, "broken")
	history := fakeHistory{urls[1]: true}

	totals := NewRunner(actions, &fakePacer{roll: 1}, fakeLimits(quota.DefaultLimits()), WithHistory(history)).
		Run(context.Background(), baseSpec())

	assert.Equal(t, 1, totals.Skipped)
	assert.Equal(t, []string{urls[0], urls[2], "broken"}, actions.connections, "lookup errors do not skip")
}

func TestRunObservesCancellationBetweenProfiles(t *testing.T) {
	actions := newFakeActions()
	actions.results["golang|"] = profiles("go", 10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	actions.onConnect = func() {
		if len(actions.connections) == 1 {
			cancel()
		}
	}

	totals := NewRunner(actions, &fakePacer{roll: 1}, fakeLimits(quota.DefaultLimits())).Run(ctx, baseSpec())

	assert.Equal(t, StopInterrupted, totals.Stop)
	assert.Equal(t, 2, totals.Connections, "the action in flight completes")
}

func TestRunAlreadyCancelled(t *testing.T) {
	actions := newFakeActions()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	totals := NewRunner(actions, &fakePacer{}, fakeLimits(quota.DefaultLimits())).Run(ctx, baseSpec())

	assert.Equal(t, StopInterrupted, totals.Stop)
	assert.Empty(t, actions.searches)
}

func TestGoal(t *testing.T) {
	assert.Equal(t, 0, goal(0, 40))
	assert.Equal(t, 0, goal(-1, 40))
	assert.Equal(t, 10, goal(10, 40))
	assert.Equal(t, 40, goal(100, 40))
}

func TestRunZeroMessageGoalSendsNoFollowUps(t *testing.T) {
	actions := newFakeActions()
	actions.results["golang|"] = profiles("go", 5)

	spec := baseSpec()
	spec.MessageGoal = 0

	totals := NewRunner(actions, &fakePacer{roll: 0}, fakeLimits(quota.DefaultLimits())).Run(context.Background(), spec)

	assert.Equal(t, 5, totals.Connections)
	assert.Zero(t, totals.Messages)
	assert.Empty(t, actions.messages)
}

func TestRunZeroConnectionGoalDoesNothing(t *testing.T) {
	actions := newFakeActions()
	actions.results["golang|"] = profiles("go", 5)

	spec := baseSpec()
	spec.ConnectionGoal = 0
	spec.MessageGoal = 0

	totals := NewRunner(actions, &fakePacer{roll: 0}, fakeLimits(quota.DefaultLimits())).Run(context.Background(), spec)

	assert.Equal(t, StopGoalReached, totals.Stop)
	assert.Empty(t, actions.searches)
	assert.Empty(t, actions.connections)
	assert.Empty(t, actions.messages)
}

func TestSpecFromConfig(t *testing.T) {
	cfg := config.Default()
	camp := config.Campaign{
		Name:                "recruiters",
		Keywords:            []string{"recruiter"},
		Locations:           []string{"Madrid"},
		DailyConnectionGoal: 15,
		DailyMessageGoal:    5,
		FollowUpMessage:     "hola",
	}

	spec := SpecFromConfig(camp, &cfg)

	assert.Equal(t, "recruiters", spec.Name)
	assert.Equal(t, 15, spec.ConnectionGoal)
	assert.Equal(t, cfg.Outreach.FetchPerSearch, spec.FetchPerSearch)
	assert.Equal(t, cfg.Outreach.FollowUpRate, spec.FollowUpRate)
	assert.Equal(t, outreach.SpanOf(cfg.Timing.BetweenProfiles), spec.BetweenProfiles)
}
