package fetcher

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"community-crawler/internal/config"
	"community-crawler/internal/types"
)

const loginErrorScreenshot = "login_error.png"

// ParseCookieString splits a raw "name=value; name2=value2" cookie header
// into a map. Entries without '=' are skipped. An input that yields no
// cookies at all is a configuration error.
func ParseCookieString(raw string) (map[string]string, error) {
	cookies := make(map[string]string)
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		cookies[name] = strings.TrimSpace(value)
	}
	if len(cookies) == 0 {
		return nil, types.ErrEmptyCookie
	}
	return cookies, nil
}

// LoginNaver performs an interactive credential login on the session page
// and returns the harvested session cookies. The id/pw fields are filled by
// JS value injection rather than keystrokes, which sidesteps the keyboard
// anti-automation hooks on the login form.
func LoginNaver(s *Session, cfg *config.NaverConfig, logger *slog.Logger) (map[string]string, error) {
	log := logger.With("component", "naver_login")

	if cfg.ID == "" || cfg.Password == "" {
		return nil, types.ErrNoCredentials
	}

	log.Info("navigating to login page", "url", cfg.LoginURL)
	if err := s.Navigate(cfg.LoginURL); err != nil {
		return nil, fmt.Errorf("open login page: %w", err)
	}
	s.Pause(s.StepDelay())

	if !s.Visible("#id", 10*time.Second) || !s.Visible("#pw", 5*time.Second) {
		return nil, types.ErrLoginFieldsHidden
	}

	if err := s.Eval(`(v) => { document.getElementById('id').value = v; }`, cfg.ID); err != nil {
		return nil, fmt.Errorf("fill id field: %w", err)
	}
	s.Pause(s.StepDelay())
	if err := s.Eval(`(v) => { document.getElementById('pw').value = v; }`, cfg.Password); err != nil {
		return nil, fmt.Errorf("fill password field: %w", err)
	}
	s.Pause(s.StepDelay())

	submit := `#log\.login`
	if !s.Visible(submit, 5*time.Second) {
		return nil, types.ErrLoginSubmitMissing
	}
	if s.Attr(submit, "disabled") != "" {
		return nil, types.ErrLoginSubmitDisabled
	}
	if !s.Click(submit) {
		return nil, types.ErrLoginSubmitMissing
	}

	// Redirect away from the login host is the success signal.
	s.Pause(3 * time.Second)
	current := s.CurrentURL()
	if strings.Contains(current, "nid.naver.com") {
		if err := s.Screenshot(loginErrorScreenshot); err != nil {
			log.Warn("failed to capture login screenshot", "error", err)
		} else {
			log.Info("saved login failure screenshot", "path", loginErrorScreenshot)
		}
		return nil, types.ErrLoginRejected
	}

	cookies, err := s.Cookies()
	if err != nil {
		return nil, err
	}
	log.Info("login succeeded", "cookies", len(cookies))
	return cookies, nil
}

// Authenticate resolves a cookie map for authenticated cafe access. A
// pre-supplied cookie string wins over interactive login; when neither is
// configured the caller proceeds unauthenticated.
func Authenticate(s *Session, cfg *config.NaverConfig, logger *slog.Logger) (map[string]string, error) {
	if cfg.Cookie != "" {
		cookies, err := ParseCookieString(cfg.Cookie)
		if err != nil {
			return nil, err
		}
		logger.Info("using pre-supplied session cookies", "count", len(cookies))
		return cookies, nil
	}
	if cfg.ID != "" && cfg.Password != "" {
		return LoginNaver(s, cfg, logger)
	}
	logger.Warn("no cookie or credentials configured, proceeding unauthenticated")
	return nil, nil
}
