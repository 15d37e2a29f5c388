package config

import (
	"fmt"
	"net/url"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Browser.TimeoutMS <= 0 {
		return fmt.Errorf("browser.timeout_ms must be > 0, got %d", cfg.Browser.TimeoutMS)
	}
	if cfg.Browser.DelayMS < 0 {
		return fmt.Errorf("browser.delay_ms must be >= 0, got %d", cfg.Browser.DelayMS)
	}
	if cfg.Browser.ViewportWidth <= 0 || cfg.Browser.ViewportHeight <= 0 {
		return fmt.Errorf("browser viewport must be positive, got %dx%d",
			cfg.Browser.ViewportWidth, cfg.Browser.ViewportHeight)
	}

	if cfg.Crawl.WindowDays < 1 {
		return fmt.Errorf("crawl.window_days must be >= 1, got %d", cfg.Crawl.WindowDays)
	}
	if cfg.Crawl.MaxPages < 1 {
		return fmt.Errorf("crawl.max_pages must be >= 1, got %d", cfg.Crawl.MaxPages)
	}
	if cfg.Crawl.MaxPosts < 0 {
		return fmt.Errorf("crawl.max_posts must be >= 0, got %d", cfg.Crawl.MaxPosts)
	}
	if cfg.Crawl.RetryAttempts < 1 {
		return fmt.Errorf("crawl.retry_attempts must be >= 1, got %d", cfg.Crawl.RetryAttempts)
	}
	if cfg.Crawl.RetryDelay < 0 {
		return fmt.Errorf("crawl.retry_delay must be >= 0")
	}

	if err := ValidateURL(cfg.Naver.LoginURL); err != nil {
		return fmt.Errorf("naver.login_url: %w", err)
	}
	if err := ValidateURL(cfg.Naver.CafeURL); err != nil {
		return fmt.Errorf("naver.cafe_url: %w", err)
	}

	if cfg.Storage.OutputDir == "" {
		return fmt.Errorf("storage.output_dir must not be empty")
	}
	if cfg.Storage.CSVPath == "" {
		return fmt.Errorf("storage.csv_path must not be empty")
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", cfg.Server.Port)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	return nil
}

// ValidateURL checks if a URL string is usable for crawling.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
