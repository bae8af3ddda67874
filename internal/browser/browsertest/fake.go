// Package browsertest provides a scripted in-memory browser.Driver that
// records every interaction.
package browsertest

import (
	"fmt"
	"strings"
	"sync"

	"github.com/yourusername/linkedin-outreach/internal/browser"
)

// Element is a scripted page node
type Element struct {
	Name      string
	Hidden    bool
	Disabled  bool
	Attrs     map[string]string
	TextValue string

	// VisibleErr simulates a stale handle
	VisibleErr error
	ClickErr   error
	TypeErr    error
	// OnClick runs after a successful click, e.g. to swap the page content
	OnClick func()

	Clicks int
	typed  []rune
}

// NewElement returns a visible, enabled element
func NewElement(name string) *Element {
	return &Element{Name: name, Attrs: map[string]string{}}
}

// WithHref sets the href attribute
func (e *Element) WithHref(href string) *Element {
	e.Attrs["href"] = href
	return e
}

// WithText sets the visible text
func (e *Element) WithText(text string) *Element {
	e.TextValue = text
	return e
}

func (e *Element) Visible() (bool, error) {
	if e.VisibleErr != nil {
		return false, e.VisibleErr
	}
	return !e.Hidden, nil
}

func (e *Element) Enabled() (bool, error) {
	return !e.Disabled, nil
}

func (e *Element) Attribute(name string) (string, error) {
	return e.Attrs[name], nil
}

func (e *Element) Text() (string, error) {
	return e.TextValue, nil
}

// Typed returns what ended up in the element after backspaces
func (e *Element) Typed() string {
	return string(e.typed)
}

// Driver is a fake browser page keyed by selector
type Driver struct {
	mu       sync.Mutex
	elements map[string][]*Element
	calls    []string
	cookies  map[string]bool

	Location string
	// Redirects maps a navigated URL to the location the page ends up at
	Redirects   map[string]string
	NavigateErr error
	FindErr     error
	ScriptValue string
	Screenshots []string
	Navigations []string
	Closed      bool
}

// New returns an empty page
func New() *Driver {
	return &Driver{
		elements: map[string][]*Element{},
		cookies:  map[string]bool{},
	}
}

// Set replaces the elements matched by a selector
func (d *Driver) Set(selector string, els ...*Element) *Driver {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.elements[selector] = els
	return d
}

// Remove makes a selector match nothing
func (d *Driver) Remove(selector string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.elements, selector)
}

// Calls returns every recorded call as "Method arg"
func (d *Driver) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.calls))
	copy(out, d.calls)
	return out
}

// CallCount returns the number of recorded calls
func (d *Driver) CallCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

// Reset forgets the recorded calls
func (d *Driver) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = nil
}

// Called reports whether a call with the given prefix was recorded
func (d *Driver) Called(prefix string) bool {
	for _, c := range d.Calls() {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

func (d *Driver) record(format string, args ...interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
}

func (d *Driver) Navigate(url string) error {
	d.record("Navigate %s", url)
	if d.NavigateErr != nil {
		return d.NavigateErr
	}
	d.mu.Lock()
	d.Location = url
	if to, ok := d.Redirects[url]; ok {
		d.Location = to
	}
	d.Navigations = append(d.Navigations, url)
	d.mu.Unlock()
	return nil
}

func (d *Driver) Find(selector string) (browser.Element, error) {
	d.record("Find %s", selector)
	els, err := d.lookup(selector)
	if err != nil {
		return nil, err
	}
	return els[0], nil
}

func (d *Driver) FindAll(selector string) ([]browser.Element, error) {
	d.record("FindAll %s", selector)
	els, err := d.lookup(selector)
	if err != nil {
		return nil, err
	}
	out := make([]browser.Element, len(els))
	for i, el := range els {
		out[i] = el
	}
	return out, nil
}

func (d *Driver) lookup(selector string) ([]*Element, error) {
	if d.FindErr != nil {
		return nil, d.FindErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	els := d.elements[selector]
	if len(els) == 0 {
		return nil, fmt.Errorf("%w: %s", browser.ErrNotFound, selector)
	}
	return els, nil
}

func (d *Driver) Click(el browser.Element) error {
	fe := el.(*Element)
	d.record("Click %s", fe.Name)
	if fe.ClickErr != nil {
		return fe.ClickErr
	}
	fe.Clicks++
	if fe.OnClick != nil {
		fe.OnClick()
	}
	return nil
}

func (d *Driver) Type(el browser.Element, key string) error {
	fe := el.(*Element)
	d.record("Type %s", fe.Name)
	if fe.TypeErr != nil {
		return fe.TypeErr
	}
	if key == browser.KeyBackspace {
		if len(fe.typed) > 0 {
			fe.typed = fe.typed[:len(fe.typed)-1]
		}
		return nil
	}
	fe.typed = append(fe.typed, []rune(key)...)
	return nil
}

func (d *Driver) CurrentLocation() (string, error) {
	d.record("CurrentLocation")
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Location, nil
}

func (d *Driver) ExecuteScript(js string) (string, error) {
	d.record("ExecuteScript")
	return d.ScriptValue, nil
}

func (d *Driver) Scroll(deltaY int) error {
	d.record("Scroll %d", deltaY)
	return nil
}

func (d *Driver) Screenshot(path string) error {
	d.record("Screenshot %s", path)
	d.mu.Lock()
	d.Screenshots = append(d.Screenshots, path)
	d.mu.Unlock()
	return nil
}

func (d *Driver) Close() error {
	d.record("Close")
	d.mu.Lock()
	d.Closed = true
	d.mu.Unlock()
	return nil
}

// SaveCookies remembers that a session was saved at path
func (d *Driver) SaveCookies(path string) error {
	d.record("SaveCookies %s", path)
	d.mu.Lock()
	d.cookies[path] = true
	d.mu.Unlock()
	return nil
}

// LoadCookies fails unless SaveCookies or SeedCookies ran for path
func (d *Driver) LoadCookies(path string) error {
	d.record("LoadCookies %s", path)
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.cookies[path] {
		return fmt.Errorf("no saved session found: %s", path)
	}
	return nil
}

// SeedCookies pretends a session was saved at path by an earlier run
func (d *Driver) SeedCookies(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cookies[path] = true
}

var _ browser.SessionDriver = (*Driver)(nil)
