// Package campaign drives keyword × location outreach runs: search, then
// connect with every harvested profile until the day's goal is met.
package campaign

import (
	"context"
	"time"

	"github.com/yourusername/linkedin-outreach/internal/config"
	"github.com/yourusername/linkedin-outreach/internal/logger"
	"github.com/yourusername/linkedin-outreach/internal/outreach"
	"github.com/yourusername/linkedin-outreach/internal/quota"
)

// Actions are the outreach operations a campaign needs
type Actions interface {
	SearchPeople(keyword, location string, limit int) ([]string, outreach.Result)
	SendConnection(profileURL, note string) outreach.Result
	SendMessage(profileURL, text string) outreach.Result
}

// Pacer sleeps between actions and decides on breaks
type Pacer interface {
	Delay(min, max time.Duration) time.Duration
	MaybeBreak(actionCount int) (time.Duration, bool)
	Float64() float64
}

// Limits exposes the daily caps goals are bounded by
type Limits interface {
	Limit(c quota.Category) int
}

// History reports profiles an earlier run already dealt with
type History interface {
	HasContacted(profileURL string) (bool, error)
}

// Spec is one campaign, read-only for the duration of a run
type Spec struct {
	Name      string
	Keywords  []string
	Locations []string

	// zero means "as many as the daily limit allows"
	ConnectionGoal int
	MessageGoal    int

	FollowUpMessage string
	FollowUpRate    float64
	FetchPerSearch  int

	BetweenProfiles  outreach.Span
	BetweenLocations outreach.Span
}

// SpecFromConfig combines a configured campaign with the global settings
func SpecFromConfig(c config.Campaign, cfg *config.Config) Spec {
	return Spec{
		Name:             c.Name,
		Keywords:         c.Keywords,
		Locations:        c.Locations,
		ConnectionGoal:   c.DailyConnectionGoal,
		MessageGoal:      c.DailyMessageGoal,
		FollowUpMessage:  c.FollowUpMessage,
		FollowUpRate:     cfg.Outreach.FollowUpRate,
		FetchPerSearch:   cfg.Outreach.FetchPerSearch,
		BetweenProfiles:  outreach.SpanOf(cfg.Timing.BetweenProfiles),
		BetweenLocations: outreach.SpanOf(cfg.Timing.BetweenLocations),
	}
}

// StopReason explains why a run ended
type StopReason string

const (
	StopCompleted    StopReason = "completed"
	StopGoalReached  StopReason = "goal_reached"
	StopLimitReached StopReason = "limit_reached"
	StopInterrupted  StopReason = "interrupted"
)

// Totals are the running counts of one invocation
type Totals struct {
	Campaign    string
	Searches    int
	Profiles    int
	Connections int
	Messages    int
	AlreadyDone int
	NotFound    int
	Failed      int
	Skipped     int
	Breaks      int
	Stop        StopReason
}

const defaultFetchPerSearch = 20

// Runner sequences the outreach actions of a campaign
type Runner struct {
	actions Actions
	pacer   Pacer
	limits  Limits
	history History
}

// Option customizes a Runner
type Option func(*Runner)

// WithHistory skips profiles that history reports as already contacted
func WithHistory(h History) Option {
	return func(r *Runner) {
		r.history = h
	}
}

// NewRunner creates a Runner
func NewRunner(actions Actions, pacer Pacer, limits Limits, opts ...Option) *Runner {
	r := &Runner{
		actions: actions,
		pacer:   pacer,
		limits:  limits,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// run holds the mutable state of one invocation
type run struct {
	*Runner
	spec           Spec
	totals         Totals
	actionCount    int
	connectionGoal int
	messageGoal    int
}

// Run executes the campaign until its goal is met, a daily limit is hit,
// the search space is exhausted or ctx is cancelled. Cancellation is only
// observed between profiles; an action in flight always completes.
func (r *Runner) Run(ctx context.Context, spec Spec) Totals {
	st := &run{
		Runner:         r,
		spec:           spec,
		totals:         Totals{Campaign: spec.Name},
		connectionGoal: goal(spec.ConnectionGoal, r.limits.Limit(quota.Connections)),
		messageGoal:    goal(spec.MessageGoal, r.limits.Limit(quota.Messages)),
	}
	if st.spec.FetchPerSearch <= 0 {
		st.spec.FetchPerSearch = defaultFetchPerSearch
	}

	logger.Info("Starting campaign",
		"campaign", spec.Name,
		"keywords", spec.Keywords,
		"locations", spec.Locations,
		"connection_goal", st.connectionGoal,
		"message_goal", st.messageGoal,
	)

	st.totals.Stop = st.loop(ctx)

	t := st.totals
	logger.Info("Campaign finished",
		"campaign", t.Campaign,
		"stop", t.Stop,
		"searches", t.Searches,
		"profiles", t.Profiles,
		"connections", t.Connections,
		"messages", t.Messages,
		"already_connected", t.AlreadyDone,
		"failed", t.Failed,
		"skipped", t.Skipped,
	)
	return t
}

func (st *run) loop(ctx context.Context) StopReason {
	locations := st.spec.Locations
	if len(locations) == 0 {
		locations = []string{""}
	}

	for _, keyword := range st.spec.Keywords {
		for _, location := range locations {
			if ctx.Err() != nil {
				return StopInterrupted
			}
			if st.totals.Connections >= st.connectionGoal {
				return StopGoalReached
			}

			if stop, done := st.searchAndConnect(ctx, keyword, location); done {
				return stop
			}

			if location != "" {
				st.pacer.Delay(st.spec.BetweenLocations.Min, st.spec.BetweenLocations.Max)
			}
		}
	}

	if st.totals.Connections >= st.connectionGoal {
		return StopGoalReached
	}
	return StopCompleted
}

// searchAndConnect works through one keyword/location pair. done is true
// when the whole run has to stop.
func (st *run) searchAndConnect(ctx context.Context, keyword, location string) (StopReason, bool) {
	profiles, res := st.actions.SearchPeople(keyword, location, st.spec.FetchPerSearch)
	if res.Status == outreach.StatusLimitReached {
		return StopLimitReached, true
	}
	st.totals.Searches++

	if len(profiles) == 0 {
		logger.Warn("No profiles found", "keywords", keyword, "location", location, "status", res.Status)
		return "", false
	}

	for _, profileURL := range profiles {
		if ctx.Err() != nil {
			return StopInterrupted, true
		}
		if st.totals.Connections >= st.connectionGoal {
			return StopGoalReached, true
		}
		if st.contacted(profileURL) {
			st.totals.Skipped++
			continue
		}

		res := st.actions.SendConnection(profileURL, "")
		st.totals.Profiles++
		st.actionCount++

		switch res.Status {
		case outreach.StatusSent:
			st.totals.Connections++
			st.maybeFollowUp(profileURL)
		case outreach.StatusAlreadyDone:
			st.totals.AlreadyDone++
		case outreach.StatusNotFound:
			st.totals.NotFound++
		case outreach.StatusFailed:
			st.totals.Failed++
		case outreach.StatusLimitReached:
			return StopLimitReached, true
		}

		if _, took := st.pacer.MaybeBreak(st.actionCount); took {
			st.totals.Breaks++
			st.actionCount = 0
		}
		st.pacer.Delay(st.spec.BetweenProfiles.Min, st.spec.BetweenProfiles.Max)
	}
	return "", false
}

// maybeFollowUp occasionally sends the campaign message right after a
// connection request went out
func (st *run) maybeFollowUp(profileURL string) {
	if st.spec.FollowUpMessage == "" || st.totals.Messages >= st.messageGoal {
		return
	}
	if st.pacer.Float64() >= st.spec.FollowUpRate {
		return
	}

	res := st.actions.SendMessage(profileURL, st.spec.FollowUpMessage)
	if res.Status == outreach.StatusSent {
		st.totals.Messages++
	}
}

func (st *run) contacted(profileURL string) bool {
	if st.history == nil {
		return false
	}
	done, err := st.history.HasContacted(profileURL)
	if err != nil {
		logger.Debug("History lookup failed", "profile_url", profileURL, "error", err)
		return false
	}
	if done {
		logger.Debug("Skipping already contacted profile", "profile_url", profileURL)
	}
	return done
}

// goal bounds the requested goal by the daily limit. A zero request means
// no actions of that kind.
func goal(requested, limit int) int {
	return max(min(requested, limit), 0)
}
