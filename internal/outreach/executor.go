// Package outreach performs single LinkedIn actions: people search, profile
// visits, connection requests and messages.
//
// Every operation checks the daily quota before touching the browser,
// resolves controls through selector chains, paces itself with the
// humanizer and records the quota only once the action went through.
// Faults never escape as errors: each operation ends in a Result.
package outreach

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/yourusername/linkedin-outreach/internal/browser"
	"github.com/yourusername/linkedin-outreach/internal/config"
	"github.com/yourusername/linkedin-outreach/internal/locator"
	"github.com/yourusername/linkedin-outreach/internal/logger"
	"github.com/yourusername/linkedin-outreach/internal/quota"
	"github.com/yourusername/linkedin-outreach/internal/stealth"
)

// Span is a delay range handed to the humanizer
type Span struct {
	Min time.Duration
	Max time.Duration
}

// SpanOf converts a configured range
func SpanOf(r config.Range) Span {
	min, max := r.Durations()
	return Span{Min: min, Max: max}
}

// Step delays inside an operation
var (
	searchLoadDelay   = Span{4 * time.Second, 8 * time.Second}
	filterDelay       = Span{2 * time.Second, 4 * time.Second}
	pageReadDelay     = Span{2 * time.Second, 4 * time.Second}
	nextPageDelay     = Span{3 * time.Second, 6 * time.Second}
	profileLoadDelay  = Span{4 * time.Second, 7 * time.Second}
	profileReadDelay  = Span{2 * time.Second, 5 * time.Second}
	beforeActionDelay = Span{3 * time.Second, 6 * time.Second}
	modalDelay        = Span{1 * time.Second, 2 * time.Second}
	noteButtonDelay   = Span{500 * time.Millisecond, 1500 * time.Millisecond}
	afterTypingDelay  = Span{1 * time.Second, 2 * time.Second}
	confirmDelay      = Span{2 * time.Second, 4 * time.Second}
	messageOpenDelay  = Span{2 * time.Second, 4 * time.Second}
)

// scroll distance range in pixels
const (
	scrollMin = 100
	scrollMax = 500
)

// Options tune an Executor
type Options struct {
	SessionID string
	Account   string

	SearchPages  int
	AfterConnect Span
	AfterMessage Span

	NoteTemplates       []string
	PersonalizationRate float64

	// ScreenshotDir receives a capture of every failed action when set
	ScreenshotDir string

	Now func() time.Time
}

// OptionsFromConfig builds Options for one account session
func OptionsFromConfig(cfg *config.Config, account, sessionID string) Options {
	return Options{
		SessionID:           sessionID,
		Account:             account,
		SearchPages:         cfg.Outreach.SearchPages,
		AfterConnect:        SpanOf(cfg.Timing.AfterConnect),
		AfterMessage:        SpanOf(cfg.Timing.AfterMessage),
		NoteTemplates:       cfg.Outreach.NoteTemplates,
		PersonalizationRate: cfg.Outreach.PersonalizationRate,
		ScreenshotDir:       cfg.Browser.ScreenshotsDir,
	}
}

// Executor runs outreach actions against one browser page
type Executor struct {
	driver  browser.Driver
	loc     *locator.Locator
	human   *stealth.Humanizer
	ledger  *quota.Ledger
	journal Journal
	sel     config.Selectors
	opts    Options

	// profiles seen this session, used to personalize messages
	profiles map[string]ProfileInfo
}

// New creates an Executor. journal may be nil.
func New(driver browser.Driver, human *stealth.Humanizer, ledger *quota.Ledger, journal Journal, sel config.Selectors, opts Options) *Executor {
	if opts.SearchPages <= 0 {
		opts.SearchPages = 3
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Executor{
		driver:   driver,
		loc:      locator.New(driver),
		human:    human,
		ledger:   ledger,
		journal:  journal,
		sel:      sel,
		opts:     opts,
		profiles: make(map[string]ProfileInfo),
	}
}

// Ledger returns the quota ledger the executor checks against
func (e *Executor) Ledger() *quota.Ledger {
	return e.ledger
}

// Profile returns what was extracted the last time url was visited
func (e *Executor) Profile(url string) (ProfileInfo, bool) {
	p, ok := e.profiles[cleanProfileURL(url)]
	return p, ok
}

func (e *Executor) pause(s Span) {
	e.human.Delay(s.Min, s.Max)
}

// scroll nudges the page like someone skimming it. Failures are ignored.
func (e *Executor) scroll() {
	amount := scrollMin + e.human.Intn(scrollMax-scrollMin+1)
	if err := e.driver.Scroll(amount); err != nil {
		logger.Debug("Scroll failed", "error", err)
	}
}

// typeText replays a humanized typing plan into el
func (e *Executor) typeText(el browser.Element, text string) error {
	plan := e.human.TypingPlan(text)
	return e.human.Type(plan, func(key string) error {
		return e.driver.Type(el, key)
	})
}

// finish builds the Result, logs it and journals engagement actions
func (e *Executor) finish(action Action, target string, status Status, detail string) Result {
	res := Result{
		Status:    status,
		Target:    target,
		Detail:    detail,
		Timestamp: e.opts.Now(),
	}

	fields := []interface{}{
		"action", action,
		"target", target,
		"status", status,
		"account", e.opts.Account,
	}
	if detail != "" {
		fields = append(fields, "detail", detail)
	}
	switch status {
	case StatusSent, StatusAlreadyDone:
		logger.Info("Action completed", fields...)
	default:
		logger.Warn("Action did not complete", fields...)
	}

	if action.engagement() && e.journal != nil {
		event := Event{
			Timestamp: res.Timestamp,
			SessionID: e.opts.SessionID,
			Account:   e.opts.Account,
			Action:    action,
			Target:    target,
			Outcome:   status,
			Detail:    detail,
			Ledger:    e.ledger.Snapshot(),
		}
		if err := e.journal.AppendEvent(event); err != nil {
			logger.Error("Failed to append action log", "error", err, "action", action, "target", target)
		}
	}

	return res
}

// fail captures a screenshot when configured and finishes as failed
func (e *Executor) fail(action Action, target, step string, err error) Result {
	detail := step
	if err != nil {
		detail = fmt.Sprintf("%s: %v", step, err)
	}

	if e.opts.ScreenshotDir != "" {
		name := fmt.Sprintf("%s_%s_%s.png", safeName(e.opts.Account), action, e.opts.Now().Format("20060102_150405"))
		path := filepath.Join(e.opts.ScreenshotDir, name)
		if serr := e.driver.Screenshot(path); serr != nil {
			logger.Debug("Failed to capture screenshot", "error", serr)
		} else {
			detail += " (screenshot " + path + ")"
		}
	}

	return e.finish(action, target, StatusFailed, detail)
}

func safeName(s string) string {
	if s == "" {
		return "default"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '@', ' ':
			return '_'
		}
		return r
	}, s)
}
