package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yourusername/linkedin-outreach/internal/quota"
	"github.com/yourusername/linkedin-outreach/internal/stealth"
)

// DefaultPath is used when neither a flag nor CONFIG_PATH names a file
const DefaultPath = "./config/config.yaml"

// Config represents the application configuration
type Config struct {
	Accounts  []Account      `yaml:"accounts"`
	Campaigns []Campaign     `yaml:"campaigns"`
	Limits    LimitsConfig   `yaml:"limits"`
	Timing    TimingConfig   `yaml:"timing"`
	Outreach  OutreachConfig `yaml:"outreach"`
	Browser   BrowserConfig  `yaml:"browser"`
	Schedule  ScheduleConfig `yaml:"schedule"`
	Database  DatabaseConfig `yaml:"database"`
	Logging   LoggingConfig  `yaml:"logging"`
	Selectors Selectors      `yaml:"selectors"`
}

// Account is one LinkedIn identity. Name keys the ledger, the browser
// profile and the saved session.
type Account struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// Campaign is one unattended outreach run
type Campaign struct {
	Name                string   `yaml:"name"`
	Keywords            []string `yaml:"keywords"`
	Locations           []string `yaml:"locations"`
	DailyConnectionGoal int      `yaml:"daily_connection_goal"`
	DailyMessageGoal    int      `yaml:"daily_message_goal"`
	FollowUpMessage     string   `yaml:"follow_up_message"`
}

// unsetGoal marks a goal key missing from the file until normalize fills it
const unsetGoal = -1

// UnmarshalYAML decodes a campaign, marking omitted goals so they default
// to the daily limit. An explicit 0 stays 0.
func (c *Campaign) UnmarshalYAML(value *yaml.Node) error {
	type plain Campaign
	p := plain{DailyConnectionGoal: unsetGoal, DailyMessageGoal: unsetGoal}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*c = Campaign(p)
	return nil
}

// LimitsConfig holds the daily caps per action category
type LimitsConfig struct {
	Connections   int `yaml:"connections"`
	Messages      int `yaml:"messages"`
	ProfileVisits int `yaml:"profile_visits"`
	Searches      int `yaml:"searches"`
	Withdrawals   int `yaml:"withdrawals"`
}

// Range is a closed interval in seconds
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Durations converts the range to durations
func (r Range) Durations() (time.Duration, time.Duration) {
	return seconds(r.Min), seconds(r.Max)
}

func (r Range) validate(name string) error {
	if r.Min < 0 {
		return fmt.Errorf("%s.min must be non-negative", name)
	}
	if r.Max < r.Min {
		return fmt.Errorf("%s.max must be >= %s.min", name, name)
	}
	return nil
}

// TimingConfig contains the pacing settings
type TimingConfig struct {
	ActionDelay             Range   `yaml:"action_delay"`
	BreakEvery              int     `yaml:"break_every"`
	BreakDuration           Range   `yaml:"break_duration"`
	TypoRate                float64 `yaml:"typo_rate"`
	AfterConnect            Range   `yaml:"after_connect"`
	AfterMessage            Range   `yaml:"after_message"`
	BetweenProfiles         Range   `yaml:"between_profiles"`
	BetweenLocations        Range   `yaml:"between_locations"`
	BetweenCampaignsSeconds int     `yaml:"between_campaigns_seconds"`
}

// OutreachConfig contains search and note settings
type OutreachConfig struct {
	SearchPages         int      `yaml:"search_pages"`
	FetchPerSearch      int      `yaml:"fetch_per_search"`
	FollowUpRate        float64  `yaml:"follow_up_rate"`
	PersonalizationRate float64  `yaml:"personalization_rate"`
	NoteTemplates       []string `yaml:"note_templates"`
	DefaultFollowUp     string   `yaml:"default_follow_up"`
}

// BrowserConfig contains browser and session storage settings
type BrowserConfig struct {
	Headless                bool    `yaml:"headless"`
	Bin                     string  `yaml:"bin"`
	ProfilesDir             string  `yaml:"profiles_dir"`
	SessionsDir             string  `yaml:"sessions_dir"`
	ScreenshotsDir          string  `yaml:"screenshots_dir"`
	FindTimeoutSeconds      float64 `yaml:"find_timeout_seconds"`
	VerificationWaitSeconds int     `yaml:"verification_wait_seconds"`
	LoginRetries            int     `yaml:"login_retries"`
}

// ScheduleConfig defines when automatic mode may run
type ScheduleConfig struct {
	BusinessHoursOnly bool          `yaml:"business_hours_only"`
	BusinessHours     BusinessHours `yaml:"business_hours"`
	WorkDays          []string      `yaml:"work_days"`
}

// BusinessHours defines the operating hours
type BusinessHours struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level    string `yaml:"level"`
	ToFile   bool   `yaml:"to_file"`
	FilePath string `yaml:"file_path"`
}

// Default returns the configuration used for every key the file omits
func Default() Config {
	return Config{
		Limits: LimitsConfig{
			Connections:   40,
			Messages:      20,
			ProfileVisits: 150,
			Searches:      100,
			Withdrawals:   5,
		},
		Timing: TimingConfig{
			ActionDelay:             Range{Min: 2.5, Max: 8.0},
			BreakEvery:              10,
			BreakDuration:           Range{Min: 30, Max: 180},
			TypoRate:                0.05,
			AfterConnect:            Range{Min: 15, Max: 45},
			AfterMessage:            Range{Min: 30, Max: 90},
			BetweenProfiles:         Range{Min: 5, Max: 15},
			BetweenLocations:        Range{Min: 10, Max: 30},
			BetweenCampaignsSeconds: 300,
		},
		Outreach: OutreachConfig{
			SearchPages:         3,
			FetchPerSearch:      20,
			FollowUpRate:        0.1,
			PersonalizationRate: 1.0,
			NoteTemplates:       DefaultNoteTemplates(),
			DefaultFollowUp:     "Thanks for connecting, {{name}}! Looking forward to keeping in touch.",
		},
		Browser: BrowserConfig{
			Headless:                false,
			ProfilesDir:             "./profiles",
			SessionsDir:             "./sessions",
			ScreenshotsDir:          "./screenshots",
			FindTimeoutSeconds:      3,
			VerificationWaitSeconds: 60,
			LoginRetries:            3,
		},
		Schedule: ScheduleConfig{
			BusinessHoursOnly: false,
			BusinessHours:     BusinessHours{Start: 9, End: 18},
			WorkDays:          []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
		},
		Database: DatabaseConfig{Path: "./data/outreach.db"},
		Logging: LoggingConfig{
			Level:    "info",
			ToFile:   true,
			FilePath: "./logs/{account}_{date}.log",
		},
		Selectors: DefaultSelectors(),
	}
}

// DefaultNoteTemplates are the connection notes picked at random when the
// caller supplies none
func DefaultNoteTemplates() []string {
	return []string{
		"Hola {{name}}, me encantaría conectar y ampliar nuestra red profesional. Saludos!",
		"Hola {{name}}, vi tu perfil y me pareció interesante conectar. Saludos!",
		"Hola {{name}}, busco expandir mi red profesional con personas del sector. ¿Te gustaría conectar?",
		"Hola {{name}}, veo que trabajas en {{company}}. Me gustaría conectar para intercambiar ideas.",
		"Hola {{name}}, me gustaría añadirte a mi red profesional. Saludos cordiales!",
		"Hi {{name}}, I'd like to connect and expand our professional network. Best regards!",
		"Hello {{name}}, I came across your profile and found it interesting to connect. Best!",
		"Hi {{name}}, I'm looking to expand my professional network in the industry. Would you like to connect?",
		"Hello {{name}}, I see you work in {{company}}. I'd like to connect to exchange ideas.",
		"Hi {{name}}, I'd like to add you to my professional network. Best regards!",
	}
}

// ResolvePath picks the config file: the explicit path, then CONFIG_PATH,
// then DefaultPath
func ResolvePath(path string) string {
	if path != "" {
		return path
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return DefaultPath
}

// Load loads configuration from a YAML file and environment variables.
// Keys missing from the file keep their Default values.
func Load(path string) (*Config, error) {
	// Load .env file if it exists (ignore errors if not present)
	_ = godotenv.Load()

	path = ResolvePath(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse expands environment references in raw YAML, decodes it over the
// defaults and validates the result
func Parse(data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	for i := range c.Accounts {
		c.Accounts[i].Email = strings.TrimSpace(c.Accounts[i].Email)
		if c.Accounts[i].Name == "" {
			c.Accounts[i].Name = c.Accounts[i].Email
		}
	}
	for i := range c.Campaigns {
		if c.Campaigns[i].Name == "" {
			c.Campaigns[i].Name = fmt.Sprintf("campaign-%d", i+1)
		}
		if c.Campaigns[i].DailyConnectionGoal == unsetGoal {
			c.Campaigns[i].DailyConnectionGoal = c.Limits.Connections
		}
		if c.Campaigns[i].DailyMessageGoal == unsetGoal {
			c.Campaigns[i].DailyMessageGoal = c.Limits.Messages
		}
		if c.Campaigns[i].FollowUpMessage == "" {
			c.Campaigns[i].FollowUpMessage = c.Outreach.DefaultFollowUp
		}
	}
	c.Logging.Level = strings.ToLower(c.Logging.Level)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if len(c.Accounts) == 0 {
		return errors.New("at least one account is required")
	}
	seen := make(map[string]bool, len(c.Accounts))
	for i, acct := range c.Accounts {
		if acct.Email == "" {
			return fmt.Errorf("accounts[%d]: email is required", i)
		}
		if acct.Password == "" {
			return fmt.Errorf("accounts[%d]: password is required", i)
		}
		if seen[acct.Name] {
			return fmt.Errorf("accounts[%d]: duplicate account name %q", i, acct.Name)
		}
		seen[acct.Name] = true
	}

	for i, camp := range c.Campaigns {
		if len(camp.Keywords) == 0 {
			return fmt.Errorf("campaigns[%d]: at least one keyword is required", i)
		}
		if camp.DailyConnectionGoal < 0 || camp.DailyMessageGoal < 0 {
			return fmt.Errorf("campaigns[%d]: daily goals must be non-negative", i)
		}
	}

	limits := map[string]int{
		"connections":    c.Limits.Connections,
		"messages":       c.Limits.Messages,
		"profile_visits": c.Limits.ProfileVisits,
		"searches":       c.Limits.Searches,
		"withdrawals":    c.Limits.Withdrawals,
	}
	for name, v := range limits {
		if v <= 0 {
			return fmt.Errorf("limits.%s must be positive", name)
		}
	}

	ranges := map[string]Range{
		"timing.action_delay":      c.Timing.ActionDelay,
		"timing.break_duration":    c.Timing.BreakDuration,
		"timing.after_connect":     c.Timing.AfterConnect,
		"timing.after_message":     c.Timing.AfterMessage,
		"timing.between_profiles":  c.Timing.BetweenProfiles,
		"timing.between_locations": c.Timing.BetweenLocations,
	}
	for name, r := range ranges {
		if err := r.validate(name); err != nil {
			return err
		}
	}
	if c.Timing.TypoRate < 0 || c.Timing.TypoRate > 1 {
		return errors.New("timing.typo_rate must be between 0 and 1")
	}

	if c.Outreach.SearchPages <= 0 {
		return errors.New("outreach.search_pages must be positive")
	}
	if c.Outreach.FetchPerSearch <= 0 {
		return errors.New("outreach.fetch_per_search must be positive")
	}
	if c.Outreach.FollowUpRate < 0 || c.Outreach.FollowUpRate > 1 {
		return errors.New("outreach.follow_up_rate must be between 0 and 1")
	}
	if c.Outreach.PersonalizationRate < 0 || c.Outreach.PersonalizationRate > 1 {
		return errors.New("outreach.personalization_rate must be between 0 and 1")
	}

	// Validate schedule
	if c.Schedule.BusinessHours.Start < 0 || c.Schedule.BusinessHours.Start > 23 {
		return errors.New("business hours start must be between 0 and 23")
	}
	if c.Schedule.BusinessHours.End < 1 || c.Schedule.BusinessHours.End > 24 {
		return errors.New("business hours end must be between 1 and 24")
	}
	if c.Schedule.BusinessHours.End <= c.Schedule.BusinessHours.Start {
		return errors.New("business hours end must be after start")
	}

	// Validate logging config
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	if c.Database.Path == "" {
		return errors.New("database.path is required")
	}

	return nil
}

// Account returns the account with the given name
func (c *Config) Account(name string) (Account, bool) {
	for _, acct := range c.Accounts {
		if acct.Name == name {
			return acct, true
		}
	}
	return Account{}, false
}

// QuotaLimits returns the daily caps for the quota ledger
func (c *Config) QuotaLimits() quota.Limits {
	return quota.Limits{
		quota.Connections:   c.Limits.Connections,
		quota.Messages:      c.Limits.Messages,
		quota.ProfileVisits: c.Limits.ProfileVisits,
		quota.Searches:      c.Limits.Searches,
		quota.Withdrawals:   c.Limits.Withdrawals,
	}
}

// TimingProfile returns the pacing profile for the humanizer
func (c *Config) TimingProfile() stealth.Profile {
	minDelay, maxDelay := c.Timing.ActionDelay.Durations()
	breakMin, breakMax := c.Timing.BreakDuration.Durations()
	return stealth.Profile{
		MinActionDelay: minDelay,
		MaxActionDelay: maxDelay,
		BreakEvery:     c.Timing.BreakEvery,
		BreakMin:       breakMin,
		BreakMax:       breakMax,
		TypoRate:       c.Timing.TypoRate,
	}
}

// WorkSchedule returns the business-hours window
func (c *Config) WorkSchedule() stealth.Schedule {
	return stealth.Schedule{
		Enabled:  c.Schedule.BusinessHoursOnly,
		Start:    c.Schedule.BusinessHours.Start,
		End:      c.Schedule.BusinessHours.End,
		WorkDays: stealth.ParseWeekdays(c.Schedule.WorkDays),
	}
}

// BetweenCampaigns returns the pause between campaigns in automatic mode
func (c *Config) BetweenCampaigns() time.Duration {
	return time.Duration(c.Timing.BetweenCampaignsSeconds) * time.Second
}

// FindTimeout returns how long the browser waits for a selector
func (c *Config) FindTimeout() time.Duration {
	return seconds(c.Browser.FindTimeoutSeconds)
}

// VerificationWait returns how long login waits for a manual checkpoint
func (c *Config) VerificationWait() time.Duration {
	return time.Duration(c.Browser.VerificationWaitSeconds) * time.Second
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}
func expandEnvVars(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := envPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultValue := ""
		if len(parts) > 2 {
			defaultValue = parts[2]
		}

		value := os.Getenv(varName)
		if value == "" {
			return defaultValue
		}
		return value
	})
}

// ParseTemplate replaces template variables with actual values
func ParseTemplate(template string, vars map[string]string) string {
	result := template
	for key, value := range vars {
		placeholder := "{{" + key + "}}"
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}
