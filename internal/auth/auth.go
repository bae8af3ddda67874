// Package auth signs an account into LinkedIn, reusing saved cookies when
// the session is still valid.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yourusername/linkedin-outreach/internal/browser"
	"github.com/yourusername/linkedin-outreach/internal/config"
	"github.com/yourusername/linkedin-outreach/internal/locator"
	"github.com/yourusername/linkedin-outreach/internal/logger"
	"github.com/yourusername/linkedin-outreach/internal/stealth"
)

const (
	LinkedInLoginURL  = "https://www.linkedin.com/login"
	LinkedInFeedURL   = "https://www.linkedin.com/feed/"
	DefaultSessionDir = "./sessions"
	MaxLoginRetries   = 3
)

// ErrLoginFailed is returned when every login attempt failed
var ErrLoginFailed = errors.New("login failed")

// ChallengeType represents the type of security challenge detected
type ChallengeType string

const (
	ChallengeNone       ChallengeType = "none"
	ChallengeCheckpoint ChallengeType = "checkpoint"
	Challenge2FA        ChallengeType = "2fa"
	ChallengeVerify     ChallengeType = "verification"
)

var verificationKeywords = []string{
	"unusual activity",
	"confirm your identity",
	"actividad inusual",
	"verifica tu identidad",
}

// Options tune the login flow
type Options struct {
	SessionDir       string
	Retries          int
	VerificationWait time.Duration
}

// OptionsFromConfig reads the browser section
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		SessionDir:       cfg.Browser.SessionsDir,
		Retries:          cfg.Browser.LoginRetries,
		VerificationWait: cfg.VerificationWait(),
	}
}

// Authenticator logs one account in on one browser
type Authenticator struct {
	driver browser.SessionDriver
	loc    *locator.Locator
	human  *stealth.Humanizer
	sel    config.Selectors
	opts   Options
}

// New creates an Authenticator
func New(driver browser.SessionDriver, human *stealth.Humanizer, sel config.Selectors, opts Options) *Authenticator {
	if opts.SessionDir == "" {
		opts.SessionDir = DefaultSessionDir
	}
	if opts.Retries <= 0 {
		opts.Retries = MaxLoginRetries
	}
	return &Authenticator{
		driver: driver,
		loc:    locator.New(driver),
		human:  human,
		sel:    sel,
		opts:   opts,
	}
}

// SessionPath is where the cookies of an account are kept
func SessionPath(dir, account string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, account)
	return filepath.Join(dir, name+".json")
}

// Login signs in with the account credentials, trying the saved session
// first
func (a *Authenticator) Login(acct config.Account) error {
	logger.Info("Starting LinkedIn login", "account", acct.Name, "email", acct.Email)
	sessionPath := SessionPath(a.opts.SessionDir, acct.Name)

	if err := a.driver.LoadCookies(sessionPath); err == nil {
		logger.Info("Loaded existing session, verifying it")

		if a.resumeSession() {
			logger.Info("Session is valid")
			return nil
		}

		logger.Warn("Session expired, proceeding with fresh login")
		if err := ClearSession(sessionPath); err != nil {
			logger.Debug("Failed to clear expired session", "error", err)
		}
	}

	var lastErr error
	for attempt := 1; attempt <= a.opts.Retries; attempt++ {
		logger.Info("Login attempt", "attempt", attempt, "max_retries", a.opts.Retries)

		err := a.performLogin(acct.Email, acct.Password)
		if err == nil {
			logger.Info("Login successful", "account", acct.Name)
			if err := a.driver.SaveCookies(sessionPath); err != nil {
				logger.Warn("Failed to save session", "error", err)
			} else {
				logger.Info("Session saved successfully", "path", sessionPath)
			}
			return nil
		}

		lastErr = err
		logger.Warn("Login attempt failed", "attempt", attempt, "error", err)

		if attempt < a.opts.Retries {
			// Exponential backoff
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			logger.Info("Retrying after backoff", "duration", backoff)
			a.human.Pause(backoff)
		}
	}

	return fmt.Errorf("%w after %d attempts: %v", ErrLoginFailed, a.opts.Retries, lastErr)
}

// resumeSession opens the feed with restored cookies and checks whether
// LinkedIn still considers us signed in
func (a *Authenticator) resumeSession() bool {
	if err := a.driver.Navigate(LinkedInFeedURL); err != nil {
		logger.Debug("Failed to open feed", "error", err)
		return false
	}
	a.human.Delay(2*time.Second, 4*time.Second)
	return a.isLoggedIn()
}

// performLogin executes the login flow
func (a *Authenticator) performLogin(email, password string) error {
	logger.Debug("Navigating to LinkedIn login page")
	if err := a.driver.Navigate(LinkedInLoginURL); err != nil {
		return fmt.Errorf("failed to navigate to login page: %w", err)
	}
	a.human.Delay(1*time.Second, 3*time.Second)

	logger.Debug("Filling email field")
	if err := a.fill(locator.Chain(a.sel.LoginEmail), email); err != nil {
		return fmt.Errorf("email field: %w", err)
	}

	// Think before moving to the password
	a.human.Delay(500*time.Millisecond, 1500*time.Millisecond)

	logger.Debug("Filling password field")
	if err := a.fill(locator.Chain(a.sel.LoginPassword), password); err != nil {
		return fmt.Errorf("password field: %w", err)
	}

	a.human.Delay(1*time.Second, 2*time.Second)

	logger.Debug("Clicking sign in button")
	submit, ok := a.loc.Resolve(locator.Chain(a.sel.LoginSubmit))
	if !ok {
		return errors.New("sign in button not found")
	}
	if err := a.driver.Click(submit); err != nil {
		return fmt.Errorf("failed to click sign in button: %w", err)
	}

	logger.Debug("Waiting for post-login navigation")
	a.human.Delay(4*time.Second, 6*time.Second)

	if challenge, detected := a.DetectSecurityChallenge(); detected {
		if err := a.awaitVerification(challenge); err != nil {
			return err
		}
	}

	if !a.isLoggedIn() {
		return errors.New("not redirected to feed")
	}
	return nil
}

func (a *Authenticator) fill(chain locator.Chain, text string) error {
	field, ok := a.loc.Resolve(chain)
	if !ok {
		return errors.New("not found")
	}
	if err := a.driver.Click(field); err != nil {
		return fmt.Errorf("failed to click: %w", err)
	}
	a.human.Delay(100*time.Millisecond, 300*time.Millisecond)

	plan := a.human.TypingPlan(text)
	if err := a.human.Type(plan, func(key string) error {
		return a.driver.Type(field, key)
	}); err != nil {
		return fmt.Errorf("failed to type: %w", err)
	}
	return nil
}

// DetectSecurityChallenge checks if a security challenge is present
func (a *Authenticator) DetectSecurityChallenge() (ChallengeType, bool) {
	if url, err := a.driver.CurrentLocation(); err == nil {
		lower := strings.ToLower(url)
		if strings.Contains(lower, "checkpoint") || strings.Contains(lower, "security") {
			return ChallengeCheckpoint, true
		}
	}

	if _, ok := a.loc.ResolveAny(locator.Chain(a.sel.Challenge)); ok {
		return Challenge2FA, true
	}

	if hasVerificationText(a.driver) {
		return ChallengeVerify, true
	}

	return ChallengeNone, false
}

// awaitVerification gives the operator time to solve the challenge by hand
func (a *Authenticator) awaitVerification(challenge ChallengeType) error {
	logger.Warn("Security challenge detected - manual intervention required", "type", challenge)
	logger.Info("Please complete the verification in the browser", "wait", a.opts.VerificationWait)
	a.human.Pause(a.opts.VerificationWait)

	if still, detected := a.DetectSecurityChallenge(); detected {
		return fmt.Errorf("%s challenge not resolved", still)
	}
	return nil
}

func hasVerificationText(driver browser.Driver) bool {
	text, err := driver.ExecuteScript(`() => document.body ? document.body.innerText : ""`)
	if err != nil {
		return false
	}
	text = strings.ToLower(text)
	for _, keyword := range verificationKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// isLoggedIn checks if the user is logged in
func (a *Authenticator) isLoggedIn() bool {
	if a.loc.Present(locator.Chain(a.sel.LoggedIn)) {
		return true
	}

	url, err := a.driver.CurrentLocation()
	if err != nil {
		return false
	}
	return strings.Contains(url, "/feed") || strings.Contains(url, "/mynetwork")
}

// ClearSession removes saved session data
func ClearSession(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cookies file: %w", err)
	}
	logger.Info("Session cleared successfully", "path", path)
	return nil
}
