// Package session owns one account's run: it opens the daily ledger,
// launches and signs in the browser, wires the outreach executor and
// campaign runner, and always tears down with a summary.
package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yourusername/linkedin-outreach/internal/auth"
	"github.com/yourusername/linkedin-outreach/internal/browser"
	"github.com/yourusername/linkedin-outreach/internal/campaign"
	"github.com/yourusername/linkedin-outreach/internal/config"
	"github.com/yourusername/linkedin-outreach/internal/logger"
	"github.com/yourusername/linkedin-outreach/internal/outreach"
	"github.com/yourusername/linkedin-outreach/internal/quota"
	"github.com/yourusername/linkedin-outreach/internal/stealth"
	"github.com/yourusername/linkedin-outreach/internal/storage"
)

// ErrSessionFault marks a failure to launch the browser or sign in. It is
// fatal to the account's run.
var ErrSessionFault = errors.New("session fault")

// Launcher starts the browser of an account
type Launcher func(acct config.Account) (browser.SessionDriver, error)

// RodLauncher launches Chrome with a per-account profile directory
func RodLauncher(cfg *config.Config) Launcher {
	return func(acct config.Account) (browser.SessionDriver, error) {
		driver, err := browser.Launch(browser.LaunchOptions{
			Headless:    cfg.Browser.Headless,
			UserDataDir: filepath.Join(cfg.Browser.ProfilesDir, acct.Name),
			Bin:         cfg.Browser.Bin,
			FindTimeout: cfg.FindTimeout(),
		})
		if err != nil {
			return nil, err
		}
		return driver, nil
	}
}

// Session is one account's exclusively owned browser, ledger and executor
type Session struct {
	id      string
	account config.Account
	cfg     *config.Config
	store   *storage.Store

	driver   browser.SessionDriver
	human    *stealth.Humanizer
	ledger   *quota.Ledger
	executor *outreach.Executor
	runner   *campaign.Runner

	log       *zap.SugaredLogger
	now       func() time.Time
	startedAt time.Time
	baseline  quota.State
	closed    bool
	summary   storage.Summary
}

// Option customizes a Session
type Option func(*Session)

// WithClock overrides the time source of the ledger and summary
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// WithHumanizer replaces the humanizer built from the timing config
func WithHumanizer(h *stealth.Humanizer) Option {
	return func(s *Session) {
		s.human = h
	}
}

// Open bootstraps a session. store may be nil, in which case counters live
// in memory only. On a session fault the partial session is torn down
// before Open returns an error wrapping ErrSessionFault.
func Open(cfg *config.Config, acct config.Account, store *storage.Store, launch Launcher, opts ...Option) (*Session, error) {
	s := &Session{
		id:      uuid.NewString(),
		account: acct,
		cfg:     cfg,
		store:   store,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.human == nil {
		s.human = stealth.New(cfg.TimingProfile())
	}
	s.startedAt = s.now()
	s.log = logger.With("session_id", s.id, "account", acct.Name)

	s.log.Infow("Opening session")

	var ledgerStore quota.Store
	var journal outreach.Journal
	if store != nil {
		ledgerStore = store
		journal = store
	}
	s.ledger = quota.Open(acct.Name, cfg.QuotaLimits(), ledgerStore, quota.WithClock(s.now))
	s.baseline = s.ledger.Snapshot()

	driver, err := launch(acct)
	if err != nil {
		return nil, s.fault(fmt.Errorf("failed to launch browser: %w", err))
	}
	s.driver = driver

	authenticator := auth.New(driver, s.human, cfg.Selectors, auth.OptionsFromConfig(cfg))
	if err := authenticator.Login(acct); err != nil {
		return nil, s.fault(err)
	}

	execOpts := outreach.OptionsFromConfig(cfg, acct.Name, s.id)
	execOpts.Now = s.now
	s.executor = outreach.New(driver, s.human, s.ledger, journal, cfg.Selectors, execOpts)

	var runnerOpts []campaign.Option
	if store != nil {
		runnerOpts = append(runnerOpts, campaign.WithHistory(store.History(acct.Name)))
	}
	s.runner = campaign.NewRunner(s.executor, s.human, s.ledger, runnerOpts...)

	s.log.Infow("Session ready",
		"connections_left", s.ledger.Remaining(quota.Connections),
		"messages_left", s.ledger.Remaining(quota.Messages))
	return s, nil
}

// fault tears the partial session down and wraps err
func (s *Session) fault(err error) error {
	err = fmt.Errorf("%w: %s: %w", ErrSessionFault, s.account.Name, err)
	s.log.Errorw("Session fault", "error", err)
	s.teardown(err.Error())
	return err
}

// ID is the session identifier stored with every action log line
func (s *Session) ID() string { return s.id }

// Account is the account this session runs as
func (s *Session) Account() config.Account { return s.account }

// Ledger is the account's daily ledger
func (s *Session) Ledger() *quota.Ledger { return s.ledger }

// Executor runs single outreach actions
func (s *Session) Executor() *outreach.Executor { return s.executor }

// Humanizer paces the session
func (s *Session) Humanizer() *stealth.Humanizer { return s.human }

// RunCampaign runs one configured campaign
func (s *Session) RunCampaign(ctx context.Context, c config.Campaign) campaign.Totals {
	return s.runner.Run(ctx, campaign.SpecFromConfig(c, s.cfg))
}

// Close closes the browser and saves the session summary. It is safe to
// call more than once; later calls return the first summary.
func (s *Session) Close() storage.Summary {
	s.teardown("")
	return s.summary
}

func (s *Session) teardown(fault string) {
	if s.closed {
		return
	}
	s.closed = true

	if s.driver != nil {
		if err := s.driver.Close(); err != nil {
			s.log.Warnw("Failed to close browser", "error", err)
		}
	}

	end := s.now()
	daily := s.ledger.Snapshot()
	sent := sessionCounts(s.baseline, daily)

	s.summary = storage.Summary{
		ID:          s.id,
		Account:     s.account.Name,
		StartedAt:   s.startedAt,
		EndedAt:     end,
		Connections: sent.Connections,
		Messages:    sent.Messages,
		Profiles:    sent.Profiles,
		Searches:    sent.Searches,
		Daily:       daily,
		Fault:       fault,
	}

	s.log.Infow("Session summary",
		"duration_minutes", fmt.Sprintf("%.1f", s.summary.Duration().Minutes()),
		"connections", sent.Connections,
		"messages", sent.Messages,
		"profiles", sent.Profiles,
		"searches", sent.Searches,
		"daily_connections", daily.Connections,
		"daily_messages", daily.Messages,
	)

	if s.store != nil {
		if err := s.store.SaveSummary(s.summary); err != nil {
			s.log.Errorw("Failed to save session summary", "error", err)
		}
	}
}

// sessionCounts is what this session added to the daily ledger. After a
// day rollover the whole new day belongs to the session.
func sessionCounts(start, end quota.State) quota.State {
	if start.Date != end.Date {
		return end
	}
	return quota.State{
		Date:        end.Date,
		Connections: end.Connections - start.Connections,
		Messages:    end.Messages - start.Messages,
		Profiles:    end.Profiles - start.Profiles,
		Searches:    end.Searches - start.Searches,
		Withdrawals: end.Withdrawals - start.Withdrawals,
	}
}
