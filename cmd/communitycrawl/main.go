package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"community-crawler/internal/config"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "communitycrawl",
		Short: "Popular-post crawlers for Korean community forums",
		Long: `communitycrawl collects popular posts from community forums,
normalizes them into a common record shape, and persists them as
timestamped JSON run files plus an append-only CSV ledger.

Supported communities:
  • fmkorea  — FM Korea hotdeal board
  • ppomppu  — Ppomppu hot-deal board
  • mamibebe — Mamibebe Naver cafe (requires login or a session cookie)`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(crawlCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(convertCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("communitycrawl %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("Browser:\n")
			fmt.Printf("  Headless:        %v\n", cfg.Browser.Headless)
			fmt.Printf("  Timeout:         %s\n", cfg.Browser.Timeout())
			fmt.Printf("  Step Delay:      %s\n", cfg.Browser.StepDelay())
			fmt.Printf("  Viewport:        %dx%d\n", cfg.Browser.ViewportWidth, cfg.Browser.ViewportHeight)
			fmt.Printf("  Locale:          %s (%s)\n", cfg.Browser.Locale, cfg.Browser.Timezone)
			fmt.Printf("\nCrawl:\n")
			fmt.Printf("  Window:          %d days\n", cfg.Crawl.WindowDays)
			fmt.Printf("  Max Pages:       %d\n", cfg.Crawl.MaxPages)
			fmt.Printf("  Max Posts:       %d (0 = unbounded)\n", cfg.Crawl.MaxPosts)
			fmt.Printf("  Retries:         %d × %s\n", cfg.Crawl.RetryAttempts, cfg.Crawl.RetryDelay)
			fmt.Printf("  Brand Keyword:   %s\n", cfg.Crawl.BrandKeyword)
			fmt.Printf("\nNaver:\n")
			fmt.Printf("  Cafe URL:        %s\n", cfg.Naver.CafeURL)
			fmt.Printf("  Cookie Set:      %v\n", cfg.Naver.Cookie != "")
			fmt.Printf("  Credentials Set: %v\n", cfg.Naver.ID != "" && cfg.Naver.Password != "")
			fmt.Printf("\nStorage:\n")
			fmt.Printf("  Output Dir:      %s\n", cfg.Storage.OutputDir)
			fmt.Printf("  CSV Ledger:      %s\n", cfg.Storage.CSVPath)
			fmt.Printf("  Mongo Mirror:    %v\n", cfg.Storage.MongoURI != "")
			fmt.Printf("\nServer:\n")
			fmt.Printf("  Port:            %d\n", cfg.Server.Port)
			return nil
		},
	}
}

// loadConfig loads and validates configuration for a command run.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setupLogger creates a structured logger.
func setupLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
