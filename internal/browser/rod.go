package browser

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"

	"github.com/yourusername/linkedin-outreach/internal/logger"
)

// RodDriver drives a single stealth page of a go-rod browser
type RodDriver struct {
	browser     *rod.Browser
	page        *rod.Page
	mouse       *mouse
	findTimeout time.Duration
	cleanup     func()
}

type rodElement struct {
	el *rod.Element
}

func (e *rodElement) Visible() (bool, error) {
	return e.el.Visible()
}

func (e *rodElement) Enabled() (bool, error) {
	disabled, err := e.el.Property("disabled")
	if err != nil {
		return false, err
	}
	return !disabled.Bool(), nil
}

func (e *rodElement) Attribute(name string) (string, error) {
	attr, err := e.el.Attribute(name)
	if err != nil {
		return "", err
	}
	if attr != nil {
		return *attr, nil
	}

	// Some values (href on anchors built by scripts) only exist as properties
	prop, err := e.el.Property(name)
	if err != nil || prop.Nil() {
		return "", err
	}
	return prop.Str(), nil
}

func (e *rodElement) Text() (string, error) {
	return e.el.Text()
}

// isXPath reports whether a selector should be evaluated as XPath
func isXPath(selector string) bool {
	return strings.HasPrefix(selector, "/") || strings.HasPrefix(selector, "(")
}

// Navigate loads a URL and waits for the load event
func (d *RodDriver) Navigate(url string) error {
	if err := d.page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := d.page.WaitLoad(); err != nil {
		return fmt.Errorf("failed to wait for page load: %w", err)
	}
	return nil
}

// Find waits up to the find timeout for the first match of a selector
func (d *RodDriver) Find(selector string) (Element, error) {
	page := d.page.Timeout(d.findTimeout)
	defer page.CancelTimeout()

	var (
		el  *rod.Element
		err error
	)
	if isXPath(selector) {
		el, err = page.ElementX(selector)
	} else {
		el, err = page.Element(selector)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, selector, err)
	}
	return &rodElement{el: el}, nil
}

// FindAll waits for at least one match, then returns every match
func (d *RodDriver) FindAll(selector string) ([]Element, error) {
	if _, err := d.Find(selector); err != nil {
		return nil, err
	}

	var (
		els rod.Elements
		err error
	)
	if isXPath(selector) {
		els, err = d.page.ElementsX(selector)
	} else {
		els, err = d.page.Elements(selector)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", selector, err)
	}

	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, &rodElement{el: el})
	}
	return out, nil
}

// Click moves the cursor to the element along a curved path, then clicks it
func (d *RodDriver) Click(el Element) error {
	re, ok := el.(*rodElement)
	if !ok {
		return fmt.Errorf("foreign element type %T", el)
	}

	if err := re.el.ScrollIntoView(); err != nil {
		return fmt.Errorf("failed to scroll element into view: %w", err)
	}

	if shape, err := re.el.Shape(); err == nil {
		box := shape.Box()
		d.mouse.moveTo(box.X+box.Width/2, box.Y+box.Height/2)
	}

	if err := re.el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to click element: %w", err)
	}
	return nil
}

// Type sends one key to the element
func (d *RodDriver) Type(el Element, key string) error {
	re, ok := el.(*rodElement)
	if !ok {
		return fmt.Errorf("foreign element type %T", el)
	}

	if key == KeyBackspace {
		return d.page.Keyboard.Press(input.Backspace)
	}
	return re.el.Input(key)
}

// CurrentLocation returns the URL of the page
func (d *RodDriver) CurrentLocation() (string, error) {
	info, err := d.page.Info()
	if err != nil {
		return "", fmt.Errorf("failed to get page info: %w", err)
	}
	return info.URL, nil
}

// ExecuteScript evaluates a function expression on the page
func (d *RodDriver) ExecuteScript(js string) (string, error) {
	res, err := d.page.Eval(js)
	if err != nil {
		return "", fmt.Errorf("failed to evaluate script: %w", err)
	}
	return res.Value.String(), nil
}

// Scroll scrolls the window vertically in a few uneven steps
func (d *RodDriver) Scroll(deltaY int) error {
	steps := 1 + d.mouse.rng.Intn(3)
	stepAmount := deltaY / steps

	for i := 0; i < steps; i++ {
		if _, err := d.page.Eval(fmt.Sprintf(`() => window.scrollBy(0, %d)`, stepAmount)); err != nil {
			return fmt.Errorf("failed to scroll: %w", err)
		}
		time.Sleep(time.Duration(50+d.mouse.rng.Intn(100)) * time.Millisecond)
	}

	// Occasionally scroll back slightly
	if d.mouse.rng.Float64() < 0.15 {
		correction := d.mouse.rng.Intn(30)
		_, _ = d.page.Eval(fmt.Sprintf(`() => window.scrollBy(0, %d)`, -correction))
	}
	return nil
}

// Screenshot writes a PNG of the viewport to path
func (d *RodDriver) Screenshot(path string) error {
	data, err := d.page.Screenshot(false, nil)
	if err != nil {
		return fmt.Errorf("failed to capture screenshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create screenshot directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write screenshot: %w", err)
	}
	return nil
}

// Close shuts the browser down and releases the launcher
func (d *RodDriver) Close() error {
	logger.Info("Closing browser...")
	err := d.browser.Close()
	if d.cleanup != nil {
		d.cleanup()
	}
	if err != nil {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}

// SaveCookies writes the page's cookies to a JSON file
func (d *RodDriver) SaveCookies(path string) error {
	cookies, err := d.page.Cookies([]string{})
	if err != nil {
		return fmt.Errorf("failed to get cookies: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cookies: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write cookies file: %w", err)
	}

	logger.Info("Session saved successfully", "path", path, "cookie_count", len(cookies))
	return nil
}

// LoadCookies restores cookies saved by SaveCookies
func (d *RodDriver) LoadCookies(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("no saved session found: %w", err)
	}
	if err != nil {
		return fmt.Errorf("failed to read cookies file: %w", err)
	}

	var cookies []*proto.NetworkCookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return fmt.Errorf("failed to unmarshal cookies: %w", err)
	}

	params := make([]*proto.NetworkCookieParam, len(cookies))
	for i, cookie := range cookies {
		params[i] = &proto.NetworkCookieParam{
			Name:     cookie.Name,
			Value:    cookie.Value,
			Domain:   cookie.Domain,
			Path:     cookie.Path,
			Secure:   cookie.Secure,
			HTTPOnly: cookie.HTTPOnly,
			SameSite: cookie.SameSite,
		}
	}

	if err := d.page.SetCookies(params); err != nil {
		return fmt.Errorf("failed to set cookies: %w", err)
	}

	logger.Info("Session loaded successfully", "cookie_count", len(cookies))
	return nil
}
