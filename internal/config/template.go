package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrConfigExists is returned when WriteTemplate would overwrite a file
var ErrConfigExists = errors.New("config file already exists")

// Template is the starter configuration written by init-config.
// Credentials come from the environment or a .env file.
const Template = `# LinkedIn outreach configuration
# Values like ${VAR} or ${VAR:default} are read from the environment (.env is loaded first).

accounts:
  - name: main
    email: ${LINKEDIN_EMAIL}
    password: ${LINKEDIN_PASSWORD}

campaigns:
  - name: tech-recruiters
    keywords: ["technical recruiter", "talent acquisition"]
    locations: ["Madrid", "Barcelona"]
    daily_connection_goal: 25
    daily_message_goal: 10
    follow_up_message: "Thanks for connecting, {{name}}! Looking forward to keeping in touch."

limits:
  connections: 40
  messages: 20
  profile_visits: 150
  searches: 100
  withdrawals: 5

timing:
  action_delay: {min: 2.5, max: 8.0}
  break_every: 10
  break_duration: {min: 30, max: 180}
  typo_rate: 0.05
  after_connect: {min: 15, max: 45}
  after_message: {min: 30, max: 90}
  between_profiles: {min: 5, max: 15}
  between_locations: {min: 10, max: 30}
  between_campaigns_seconds: 300

outreach:
  search_pages: 3
  fetch_per_search: 20
  follow_up_rate: 0.1
  personalization_rate: 1.0

browser:
  headless: ${HEADLESS:false}
  profiles_dir: ./profiles
  sessions_dir: ./sessions
  screenshots_dir: ./screenshots
  find_timeout_seconds: 3
  verification_wait_seconds: 60
  login_retries: 3

schedule:
  business_hours_only: false
  business_hours: {start: 9, end: 18}
  work_days: [Monday, Tuesday, Wednesday, Thursday, Friday]

database:
  path: ./data/outreach.db

logging:
  level: ${LOG_LEVEL:info}
  to_file: true
  file_path: ./logs/{account}_{date}.log
`

// WriteTemplate writes Template to path, creating parent directories.
// It refuses to replace an existing file unless overwrite is set.
func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(Template), 0644); err != nil {
		return fmt.Errorf("failed to write config template: %w", err)
	}
	return nil
}
