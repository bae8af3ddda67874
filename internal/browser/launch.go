package browser

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/yourusername/linkedin-outreach/internal/logger"
)

// LaunchOptions configures a new browser
type LaunchOptions struct {
	Headless bool
	// UserDataDir keeps one browser profile per account
	UserDataDir string
	// Bin overrides browser discovery
	Bin         string
	FindTimeout time.Duration
}

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

var viewports = []struct{ Width, Height int }{
	{1920, 1080},
	{1366, 768},
	{1536, 864},
	{1440, 900},
	{1280, 720},
}

// hides the usual automation giveaways before any page script runs
const maskAutomationJS = `(() => {
	Object.defineProperty(navigator, 'webdriver', { get: () => false });

	const originalQuery = window.navigator.permissions.query;
	window.navigator.permissions.query = (parameters) => (
		parameters.name === 'notifications' ?
			Promise.resolve({ state: Notification.permission }) :
			originalQuery(parameters)
	);

	window.chrome = { runtime: {} };
})();`

// Launch starts a browser with stealth evasions and returns a driver bound
// to its single automation page
func Launch(opts LaunchOptions) (*RodDriver, error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	l := launcher.New()
	switch {
	case opts.Bin != "":
		l = l.Bin(opts.Bin)
	default:
		// Prefer a local Chrome installation over a download
		if path, exists := launcher.LookPath(); exists {
			logger.Info("Using system Chrome browser", "path", path)
			l = l.Bin(path)
		} else {
			logger.Info("System Chrome not found, using downloaded browser")
		}
	}

	userAgent := userAgents[rng.Intn(len(userAgents))]
	l = l.Headless(opts.Headless).
		Devtools(false).
		Leakless(false).
		Set("user-agent", userAgent)
	if opts.UserDataDir != "" {
		l = l.UserDataDir(opts.UserDataDir)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := stealth.Page(browser)
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("failed to apply stealth: %w", err)
	}

	if _, err := page.EvalOnNewDocument(maskAutomationJS); err != nil {
		logger.Warn("Failed to mask automation properties", "error", err)
	}

	viewport := viewports[rng.Intn(len(viewports))]
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  viewport.Width,
		Height: viewport.Height,
	}); err != nil {
		logger.Warn("Failed to set viewport", "error", err)
	}

	findTimeout := opts.FindTimeout
	if findTimeout <= 0 {
		findTimeout = 3 * time.Second
	}

	logger.Info("Browser launched successfully",
		"headless", opts.Headless,
		"user_agent", userAgent,
		"profile_dir", opts.UserDataDir,
	)

	return &RodDriver{
		browser:     browser,
		page:        page,
		mouse:       newMouse(page, rng),
		findTimeout: findTimeout,
		cleanup:     l.Kill,
	}, nil
}
