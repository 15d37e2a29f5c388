package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envBindings maps config keys to the environment variables the original
// deployment scripts already export.
var envBindings = map[string]string{
	"browser.headless":   "BROWSER_HEADLESS",
	"browser.timeout_ms": "BROWSER_TIMEOUT",
	"browser.delay_ms":   "BROWSER_DELAY",
	"crawl.max_posts":    "MAX_POSTS",
	"naver.cookie":       "NAVER_COOKIE",
	"naver.id":           "NAVER_ID",
	"naver.password":     "NAVER_PASSWORD",
	"naver.cafe_url":     "NAVER_CAFE_URL",
	"storage.mongo_uri":  "MONGO_URI",
}

// Load reads configuration from .env, a config file, and environment
// variables. Priority (highest to lowest): env vars > config file > defaults.
func Load(configPath string) (*Config, error) {
	// A missing .env file is fine; it only seeds the process environment.
	_ = godotenv.Load()

	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, cfg)

	v.SetEnvPrefix("CRAWLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("communitycrawl")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if not explicitly specified
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("browser.headless", cfg.Browser.Headless)
	v.SetDefault("browser.timeout_ms", cfg.Browser.TimeoutMS)
	v.SetDefault("browser.delay_ms", cfg.Browser.DelayMS)
	v.SetDefault("browser.user_agent", cfg.Browser.UserAgent)
	v.SetDefault("browser.viewport_width", cfg.Browser.ViewportWidth)
	v.SetDefault("browser.viewport_height", cfg.Browser.ViewportHeight)
	v.SetDefault("browser.locale", cfg.Browser.Locale)
	v.SetDefault("browser.timezone", cfg.Browser.Timezone)

	v.SetDefault("crawl.window_days", cfg.Crawl.WindowDays)
	v.SetDefault("crawl.max_pages", cfg.Crawl.MaxPages)
	v.SetDefault("crawl.max_posts", cfg.Crawl.MaxPosts)
	v.SetDefault("crawl.retry_attempts", cfg.Crawl.RetryAttempts)
	v.SetDefault("crawl.retry_delay", cfg.Crawl.RetryDelay)
	v.SetDefault("crawl.brand_keyword", cfg.Crawl.BrandKeyword)

	v.SetDefault("naver.login_url", cfg.Naver.LoginURL)
	v.SetDefault("naver.cafe_url", cfg.Naver.CafeURL)

	v.SetDefault("storage.output_dir", cfg.Storage.OutputDir)
	v.SetDefault("storage.csv_path", cfg.Storage.CSVPath)
	v.SetDefault("storage.mongo_database", cfg.Storage.MongoDatabase)
	v.SetDefault("storage.mongo_collection", cfg.Storage.MongoCollection)

	v.SetDefault("server.port", cfg.Server.Port)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
}
