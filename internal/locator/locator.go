// Package locator resolves ordered selector chains against the current page.
//
// A chain lists candidates from most specific to most generic. Resolution
// never fails with an error: a candidate that errors or matches nothing
// usable is skipped, and only exhausting the chain is reported, as a
// false second return value.
package locator

import (
	"github.com/yourusername/linkedin-outreach/internal/browser"
	"github.com/yourusername/linkedin-outreach/internal/logger"
)

// Chain is an ordered list of selector descriptors
type Chain []string

// Locator resolves chains through a driver. Nothing is cached, since
// handles do not survive navigation.
type Locator struct {
	driver browser.Driver
}

// New creates a Locator bound to a driver
func New(driver browser.Driver) *Locator {
	return &Locator{driver: driver}
}

// Resolve returns the first visible and enabled element matched by any
// candidate of the chain, in chain order
func (l *Locator) Resolve(chain Chain) (browser.Element, bool) {
	return l.resolve(chain, true)
}

// ResolveAny returns the first element matched by any candidate, without
// checking visibility or interactivity
func (l *Locator) ResolveAny(chain Chain) (browser.Element, bool) {
	return l.resolve(chain, false)
}

// Present reports whether any candidate resolves to a visible and enabled element
func (l *Locator) Present(chain Chain) bool {
	_, ok := l.Resolve(chain)
	return ok
}

// All returns every element matched by the first candidate that matches
// anything
func (l *Locator) All(chain Chain) []browser.Element {
	for _, selector := range chain {
		els, err := l.driver.FindAll(selector)
		if err != nil || len(els) == 0 {
			continue
		}
		return els
	}
	return nil
}

func (l *Locator) resolve(chain Chain, requireUsable bool) (browser.Element, bool) {
	for i, selector := range chain {
		els, err := l.driver.FindAll(selector)
		if err != nil {
			logger.Debug("Selector candidate failed", "candidate", i, "selector", selector, "error", err)
			continue
		}

		for _, el := range els {
			if !requireUsable || usable(el) {
				if i > 0 {
					logger.Debug("Resolved through fallback selector", "candidate", i, "selector", selector)
				}
				return el, true
			}
		}
	}
	return nil, false
}

// usable reports whether an element is visible and enabled, treating any
// error as unusable
func usable(el browser.Element) bool {
	visible, err := el.Visible()
	if err != nil || !visible {
		return false
	}
	enabled, err := el.Enabled()
	return err == nil && enabled
}
