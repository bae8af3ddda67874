// Package browser defines the page-automation capability the outreach core
// drives, and its go-rod implementation.
package browser

import "errors"

// ErrNotFound is returned when a selector matches nothing before the find timeout
var ErrNotFound = errors.New("element not found")

// KeyBackspace erases the last typed character
const KeyBackspace = "\b"

// Element is a handle to a node on the current page. Handles go stale on
// navigation and must not be kept across page loads.
type Element interface {
	Visible() (bool, error)
	Enabled() (bool, error)
	Attribute(name string) (string, error)
	Text() (string, error)
}

// Driver is one exclusively owned browser page.
//
// Selectors are opaque strings: implementations decide how to interpret
// them (CSS or XPath).
type Driver interface {
	Navigate(url string) error
	Find(selector string) (Element, error)
	FindAll(selector string) ([]Element, error)
	Click(el Element) error
	// Type sends a single key to the element
	Type(el Element, key string) error
	CurrentLocation() (string, error)
	// ExecuteScript evaluates a JavaScript function expression and returns
	// its result as a string
	ExecuteScript(js string) (string, error)
	Scroll(deltaY int) error
	Screenshot(path string) error
	Close() error
}

// CookieJar persists the authenticated session between runs
type CookieJar interface {
	SaveCookies(path string) error
	LoadCookies(path string) error
}

// SessionDriver is a Driver that can also persist its cookies
type SessionDriver interface {
	Driver
	CookieJar
}
