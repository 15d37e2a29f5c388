package fetcher

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"community-crawler/internal/config"
	"community-crawler/internal/types"
)

// Session owns one headless browser instance and one prepared page for the
// lifetime of a single site crawl. Acquiring a session that cannot launch is
// fatal to the run.
type Session struct {
	launch     *launcher.Launcher
	browser    *rod.Browser
	page       *rod.Page
	cfg        *config.BrowserConfig
	stealthCfg *StealthConfig
	timeout    time.Duration
	delay      time.Duration
	logger     *slog.Logger
}

// SessionOption configures the Session.
type SessionOption func(*Session)

// WithStealth sets the fingerprint-spoofing configuration. The default
// stealth config is applied when this option is absent.
func WithStealth(sc *StealthConfig) SessionOption {
	return func(s *Session) { s.stealthCfg = sc }
}

// NewSession launches a browser and prepares a page with the configured
// locale, viewport, user agent, and anti-detection overrides.
func NewSession(cfg *config.Config, logger *slog.Logger, opts ...SessionOption) (*Session, error) {
	s := &Session{
		cfg:        &cfg.Browser,
		stealthCfg: DefaultStealthConfig(),
		timeout:    cfg.Browser.Timeout(),
		delay:      cfg.Browser.StepDelay(),
		logger:     logger.With("component", "browser_session"),
	}
	for _, opt := range opts {
		opt(s)
	}

	l := launcher.New().
		Headless(cfg.Browser.Headless).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-blink-features", "AutomationControlled")

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	s.launch = l

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	s.browser = browser

	page, err := stealth.Page(browser)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("stealth page: %w", err)
	}
	s.page = page

	if err := s.preparePage(); err != nil {
		s.Close()
		return nil, fmt.Errorf("prepare page: %w", err)
	}

	s.logger.Info("browser session ready",
		"headless", cfg.Browser.Headless,
		"timeout", s.timeout,
	)
	return s, nil
}

// preparePage applies fingerprint overrides, user agent, viewport, locale,
// timezone, and the browser-like header set to the session page.
func (s *Session) preparePage() error {
	if s.stealthCfg != nil {
		_, err := proto.PageAddScriptToEvaluateOnNewDocument{
			Source: s.stealthCfg.FingerprintJS(),
		}.Call(s.page)
		if err != nil {
			return fmt.Errorf("inject fingerprint script: %w", err)
		}
	}

	platform := ""
	if s.stealthCfg != nil {
		platform = s.stealthCfg.Platform
	}
	err := s.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      s.cfg.UserAgent,
		AcceptLanguage: "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7",
		Platform:       platform,
	})
	if err != nil {
		return fmt.Errorf("set user agent: %w", err)
	}

	err = s.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             s.cfg.ViewportWidth,
		Height:            s.cfg.ViewportHeight,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		return fmt.Errorf("set viewport: %w", err)
	}

	if s.cfg.Timezone != "" {
		err = proto.EmulationSetTimezoneOverride{TimezoneID: s.cfg.Timezone}.Call(s.page)
		if err != nil {
			s.logger.Warn("timezone override failed", "timezone", s.cfg.Timezone, "error", err)
		}
	}
	if s.cfg.Locale != "" {
		err = proto.EmulationSetLocaleOverride{Locale: s.cfg.Locale}.Call(s.page)
		if err != nil {
			s.logger.Warn("locale override failed", "locale", s.cfg.Locale, "error", err)
		}
	}

	_, _ = s.page.SetExtraHeaders(browserHeaders)
	return nil
}

// Page exposes the underlying rod page for site-specific automation.
func (s *Session) Page() *rod.Page { return s.page }

// Navigate loads a URL on the session page and waits for it to settle.
func (s *Session) Navigate(url string) error {
	if err := s.page.Timeout(s.timeout).Navigate(url); err != nil {
		return &types.FetchError{URL: url, Err: err, Retryable: true}
	}
	if err := s.page.Timeout(s.timeout).WaitStable(300 * time.Millisecond); err != nil {
		s.logger.Warn("page stability timeout, continuing", "url", url, "error", err)
	}
	return nil
}

// CurrentURL returns the page's URL after any redirects, or "" if the page
// is unreachable.
func (s *Session) CurrentURL() string {
	info, err := s.page.Info()
	if err != nil || info == nil {
		return ""
	}
	return info.URL
}

// HTML returns the current page's rendered HTML.
func (s *Session) HTML() (string, error) {
	return s.page.HTML()
}

// Visible reports whether a selector resolves to a visible element within
// the given wait budget.
func (s *Session) Visible(selector string, wait time.Duration) bool {
	el, err := s.page.Timeout(wait).Element(selector)
	if err != nil {
		return false
	}
	visible, err := el.Visible()
	return err == nil && visible
}

// Click clicks the first element matching selector, waiting up to 5s for it
// to appear, then pauses the configured step delay. Returns false when the
// element is absent or the click fails.
func (s *Session) Click(selector string) bool {
	el, err := s.page.Timeout(5 * time.Second).Element(selector)
	if err != nil {
		return false
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		s.logger.Debug("click failed", "selector", selector, "error", err)
		return false
	}
	s.Pause(s.delay)
	return true
}

// ClickText clicks the first element matching selector whose text matches
// the regular expression.
func (s *Session) ClickText(selector, textRegex string) bool {
	el, err := s.page.Timeout(5 * time.Second).ElementR(selector, textRegex)
	if err != nil {
		return false
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return false
	}
	s.Pause(s.delay)
	return true
}

// Text returns the trimmed inner text of the first element matching
// selector, or "" when absent.
func (s *Session) Text(selector string) string {
	el, err := s.page.Timeout(3 * time.Second).Element(selector)
	if err != nil {
		return ""
	}
	text, err := el.Text()
	if err != nil {
		return ""
	}
	return text
}

// Attr returns an attribute of the first element matching selector, or ""
// when the element or attribute is absent.
func (s *Session) Attr(selector, attribute string) string {
	el, err := s.page.Timeout(3 * time.Second).Element(selector)
	if err != nil {
		return ""
	}
	val, err := el.Attribute(attribute)
	if err != nil || val == nil {
		return ""
	}
	return *val
}

// Eval runs JavaScript on the session page.
func (s *Session) Eval(js string, args ...any) error {
	_, err := s.page.Eval(js, args...)
	return err
}

// Screenshot writes a full-page screenshot to path, for login/captcha
// diagnostics.
func (s *Session) Screenshot(path string) error {
	data, err := s.page.Screenshot(true, nil)
	if err != nil {
		return fmt.Errorf("capture screenshot: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Cookies harvests all cookies from the browser context as a name→value map.
func (s *Session) Cookies() (map[string]string, error) {
	cookies, err := s.browser.GetCookies()
	if err != nil {
		return nil, fmt.Errorf("harvest cookies: %w", err)
	}
	out := make(map[string]string, len(cookies))
	for _, c := range cookies {
		out[c.Name] = c.Value
	}
	return out, nil
}

// Pause sleeps for d; used to let dynamic content settle between steps.
func (s *Session) Pause(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

// StepDelay returns the configured inter-step pause.
func (s *Session) StepDelay() time.Duration { return s.delay }

// Close shuts down the page, browser, and launcher in that order, tolerating
// steps that are already closed.
func (s *Session) Close() error {
	if s.page != nil {
		_ = s.page.Close()
		s.page = nil
	}
	var err error
	if s.browser != nil {
		err = s.browser.Close()
		s.browser = nil
	}
	if s.launch != nil {
		s.launch.Kill()
		s.launch = nil
	}
	return err
}
