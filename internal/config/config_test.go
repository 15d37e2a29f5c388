package config

import (
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestDefaultWindow(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.Crawl.Window(); got != 7*24*time.Hour {
		t.Errorf("window = %s, want 168h", got)
	}
}

func TestBrowserDurations(t *testing.T) {
	b := BrowserConfig{TimeoutMS: 30000, DelayMS: 1500}
	if b.Timeout() != 30*time.Second {
		t.Errorf("timeout = %s", b.Timeout())
	}
	if b.StepDelay() != 1500*time.Millisecond {
		t.Errorf("delay = %s", b.StepDelay())
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	mutate := []func(*Config){
		func(c *Config) { c.Browser.TimeoutMS = 0 },
		func(c *Config) { c.Browser.ViewportWidth = -1 },
		func(c *Config) { c.Crawl.WindowDays = 0 },
		func(c *Config) { c.Crawl.MaxPages = 0 },
		func(c *Config) { c.Crawl.MaxPosts = -1 },
		func(c *Config) { c.Crawl.RetryAttempts = 0 },
		func(c *Config) { c.Naver.CafeURL = "not-a-url" },
		func(c *Config) { c.Storage.OutputDir = "" },
		func(c *Config) { c.Storage.CSVPath = "" },
		func(c *Config) { c.Server.Port = 0 },
		func(c *Config) { c.Logging.Level = "loud" },
		func(c *Config) { c.Logging.Format = "xml" },
	}
	for i, m := range mutate {
		cfg := DefaultConfig()
		m(cfg)
		if err := Validate(cfg); err == nil {
			t.Errorf("mutation %d should fail validation", i)
		}
	}
}

func TestValidateURL(t *testing.T) {
	if err := ValidateURL("https://cafe.naver.com/f-e/cafes/29434212/popular"); err != nil {
		t.Errorf("valid URL rejected: %v", err)
	}
	for _, bad := range []string{"ftp://x", "://", "https://"} {
		if err := ValidateURL(bad); err == nil {
			t.Errorf("ValidateURL(%q) should fail", bad)
		}
	}
}
