package outreach

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/yourusername/linkedin-outreach/internal/locator"
	"github.com/yourusername/linkedin-outreach/internal/logger"
	"github.com/yourusername/linkedin-outreach/internal/quota"
)

const (
	searchBaseURL = "https://www.linkedin.com/search/results/people/"
	linkedInHost  = "https://www.linkedin.com"
)

// SearchPeople searches people by keyword and optional location and
// harvests up to limit profile URLs across the configured number of result
// pages, in first-seen order without duplicates. A limit of zero or less
// keeps everything harvested.
func (e *Executor) SearchPeople(keyword, location string, limit int) ([]string, Result) {
	target := buildSearchURL(keyword, location)

	if !e.ledger.CanPerform(quota.Searches) {
		return nil, e.finish(ActionSearch, target, StatusLimitReached, "daily search limit reached")
	}

	where := location
	if where == "" {
		where = "anywhere"
	}
	logger.Info("Searching people", "keywords", keyword, "location", where, "limit", limit)

	if err := e.driver.Navigate(target); err != nil {
		return nil, e.fail(ActionSearch, target, "navigate to search", err)
	}
	e.pause(searchLoadDelay)

	e.applyPeopleFilter()

	var profiles []string
	seen := make(map[string]bool)

	for page := 1; page <= e.opts.SearchPages; page++ {
		e.scroll()
		e.pause(pageReadDelay)

		for _, link := range e.loc.All(locator.Chain(e.sel.ProfileLinks)) {
			href, err := link.Attribute("href")
			if err != nil || !strings.Contains(href, "/in/") {
				continue
			}
			profileURL := cleanProfileURL(href)
			if seen[profileURL] {
				continue
			}
			seen[profileURL] = true
			profiles = append(profiles, profileURL)
		}

		logger.Info("Search page harvested", "page", page, "profiles", len(profiles))

		if limit > 0 && len(profiles) >= limit {
			break
		}
		if page == e.opts.SearchPages {
			break
		}

		next, ok := e.loc.Resolve(locator.Chain(e.sel.NextPage))
		if !ok {
			logger.Debug("No next page control, stopping search")
			break
		}
		if err := e.driver.Click(next); err != nil {
			logger.Warn("Failed to open next results page", "error", err)
			break
		}
		e.pause(nextPageDelay)
	}

	e.ledger.Record(quota.Searches)

	if limit > 0 && len(profiles) > limit {
		profiles = profiles[:limit]
	}

	if len(profiles) == 0 {
		return nil, e.finish(ActionSearch, target, StatusNotFound, "no profiles found")
	}
	return profiles, e.finish(ActionSearch, target, StatusSent, fmt.Sprintf("%d profiles", len(profiles)))
}

// applyPeopleFilter narrows results to people when the filter is offered
// and not yet active
func (e *Executor) applyPeopleFilter() {
	filter, ok := e.loc.Resolve(locator.Chain(e.sel.PeopleFilter))
	if !ok {
		return
	}
	class, _ := filter.Attribute("class")
	if strings.Contains(class, "selected") {
		return
	}
	if err := e.driver.Click(filter); err != nil {
		logger.Debug("Failed to apply people filter", "error", err)
		return
	}
	e.pause(filterDelay)
}

// buildSearchURL constructs a LinkedIn people search URL
func buildSearchURL(keyword, location string) string {
	params := url.Values{}
	params.Add("keywords", keyword)
	if location != "" {
		params.Add("location", location)
	}
	params.Add("origin", "GLOBAL_SEARCH_HEADER")

	return searchBaseURL + "?" + params.Encode()
}

// cleanProfileURL removes query parameters and normalizes profile URL
// LinkedIn appends garbage query params like miniProfileUrn that must be stripped
func cleanProfileURL(rawURL string) string {
	if i := strings.IndexAny(rawURL, "?#"); i != -1 {
		rawURL = rawURL[:i]
	}
	if strings.HasPrefix(rawURL, "/") {
		rawURL = linkedInHost + rawURL
	}
	// Remove trailing slashes for consistency
	return strings.TrimRight(rawURL, "/")
}
