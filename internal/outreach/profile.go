package outreach

import (
	"strings"

	"github.com/yourusername/linkedin-outreach/internal/locator"
	"github.com/yourusername/linkedin-outreach/internal/logger"
	"github.com/yourusername/linkedin-outreach/internal/quota"
)

// texts longer than this are page sections, not a location line
const maxLocationLength = 100

// VisitProfile opens a profile, reads it like a person would and extracts
// name, headline and location
func (e *Executor) VisitProfile(profileURL string) (ProfileInfo, Result) {
	profileURL = cleanProfileURL(profileURL)

	if !e.ledger.CanPerform(quota.ProfileVisits) {
		return ProfileInfo{URL: profileURL}, e.finish(ActionVisit, profileURL, StatusLimitReached, "daily profile visit limit reached")
	}

	info, err := e.visit(profileURL)
	if err != nil {
		return info, e.fail(ActionVisit, profileURL, "navigate to profile", err)
	}
	return info, e.finish(ActionVisit, profileURL, StatusSent, info.Name)
}

// visit navigates to the profile and records the visit without checking
// the visit quota
func (e *Executor) visit(profileURL string) (ProfileInfo, error) {
	info := ProfileInfo{URL: profileURL}

	if err := e.driver.Navigate(profileURL); err != nil {
		return info, err
	}
	e.pause(profileLoadDelay)

	e.scroll()
	e.pause(profileReadDelay)

	info.Name = e.firstText(locator.Chain(e.sel.ProfileName), 0)
	info.Title = e.firstText(locator.Chain(e.sel.ProfileTitle), 0)
	info.Location = e.firstText(locator.Chain(e.sel.ProfileLocation), maxLocationLength)
	info.VisitedAt = e.opts.Now()

	if info.Name == "" {
		logger.Warn("Could not extract profile name", "url", profileURL)
	}

	e.ledger.Record(quota.ProfileVisits)
	e.profiles[profileURL] = info

	if e.journal != nil {
		if err := e.journal.SaveProfile(info); err != nil {
			logger.Error("Failed to save profile", "url", profileURL, "error", err)
		}
	}

	logger.Debug("Profile extracted", "url", profileURL, "name", info.Name, "title", info.Title, "location", info.Location)
	return info, nil
}

// firstText returns the first non-empty text found by any candidate,
// skipping texts of maxLen or more when maxLen is positive
func (e *Executor) firstText(chain locator.Chain, maxLen int) string {
	for _, selector := range chain {
		for _, el := range e.loc.All(locator.Chain{selector}) {
			text, err := el.Text()
			if err != nil {
				continue
			}
			text = strings.TrimSpace(text)
			if text != "" && (maxLen <= 0 || len(text) < maxLen) {
				return text
			}
		}
	}
	return ""
}
