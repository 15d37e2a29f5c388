package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for the community crawlers.
type Config struct {
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Crawl   CrawlConfig   `mapstructure:"crawl"   yaml:"crawl"`
	Naver   NaverConfig   `mapstructure:"naver"   yaml:"naver"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Server  ServerConfig  `mapstructure:"server"  yaml:"server"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// BrowserConfig controls the headless browser session.
// Timeout and delay are kept in milliseconds to match the BROWSER_TIMEOUT
// and BROWSER_DELAY environment variables.
type BrowserConfig struct {
	Headless       bool   `mapstructure:"headless"        yaml:"headless"`
	TimeoutMS      int    `mapstructure:"timeout_ms"      yaml:"timeout_ms"`
	DelayMS        int    `mapstructure:"delay_ms"        yaml:"delay_ms"`
	UserAgent      string `mapstructure:"user_agent"      yaml:"user_agent"`
	ViewportWidth  int    `mapstructure:"viewport_width"  yaml:"viewport_width"`
	ViewportHeight int    `mapstructure:"viewport_height" yaml:"viewport_height"`
	Locale         string `mapstructure:"locale"          yaml:"locale"`
	Timezone       string `mapstructure:"timezone"        yaml:"timezone"`
}

// Timeout returns the default per-operation browser timeout.
func (b BrowserConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutMS) * time.Millisecond
}

// StepDelay returns the fixed pause used between automation steps and
// between per-post detail fetches.
func (b BrowserConfig) StepDelay() time.Duration {
	return time.Duration(b.DelayMS) * time.Millisecond
}

// CrawlConfig controls the popular-post collection loop.
type CrawlConfig struct {
	WindowDays    int           `mapstructure:"window_days"    yaml:"window_days"`
	MaxPages      int           `mapstructure:"max_pages"      yaml:"max_pages"`
	MaxPosts      int           `mapstructure:"max_posts"      yaml:"max_posts"`
	RetryAttempts int           `mapstructure:"retry_attempts" yaml:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"    yaml:"retry_delay"`
	BrandKeyword  string        `mapstructure:"brand_keyword"  yaml:"brand_keyword"`
}

// Window returns the trailing collection window as a duration.
func (c CrawlConfig) Window() time.Duration {
	return time.Duration(c.WindowDays) * 24 * time.Hour
}

// NaverConfig holds the authentication inputs for the cafe crawler.
// Cookie, when set, bypasses interactive login entirely.
type NaverConfig struct {
	Cookie   string `mapstructure:"cookie"    yaml:"cookie"`
	ID       string `mapstructure:"id"        yaml:"id"`
	Password string `mapstructure:"password"  yaml:"password"`
	LoginURL string `mapstructure:"login_url" yaml:"login_url"`
	CafeURL  string `mapstructure:"cafe_url"  yaml:"cafe_url"`
}

// StorageConfig controls the output sinks.
type StorageConfig struct {
	OutputDir       string `mapstructure:"output_dir"       yaml:"output_dir"`
	CSVPath         string `mapstructure:"csv_path"         yaml:"csv_path"`
	MongoURI        string `mapstructure:"mongo_uri"        yaml:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"   yaml:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection" yaml:"mongo_collection"`
}

// ServerConfig controls the tool-invocation server.
type ServerConfig struct {
	Port int `mapstructure:"port" yaml:"port"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Browser: BrowserConfig{
			Headless:       true,
			TimeoutMS:      30000,
			DelayMS:        1000,
			UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
			ViewportWidth:  1920,
			ViewportHeight: 1080,
			Locale:         "ko-KR",
			Timezone:       "Asia/Seoul",
		},
		Crawl: CrawlConfig{
			WindowDays:    7,
			MaxPages:      50,
			MaxPosts:      0, // unbounded: collect the whole window
			RetryAttempts: 3,
			RetryDelay:    2 * time.Second,
			BrandKeyword:  "롯데온",
		},
		Naver: NaverConfig{
			LoginURL: "https://nid.naver.com/nidlogin.login",
			CafeURL:  "https://cafe.naver.com/f-e/cafes/29434212/popular",
		},
		Storage: StorageConfig{
			OutputDir:       "outputs",
			CSVPath:         "community_data.csv",
			MongoDatabase:   "community",
			MongoCollection: "posts",
		},
		Server: ServerConfig{
			Port: 8787,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
