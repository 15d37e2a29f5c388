package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"community-crawler/internal/config"
	"community-crawler/internal/crawler"
	"community-crawler/internal/storage"
	"community-crawler/internal/types"
)

var (
	crawlMaxPosts int
	crawlToCSV    bool
)

// crawlCmd creates the "crawl" subcommand.
func crawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [site|all]",
		Short: "Collect popular posts from one community or all of them",
		Long: `Collect popular posts from the trailing week of one community's
popular board, write them to a timestamped JSON file under the outputs
directory, and optionally append them to the CSV ledger.`,
		Args: cobra.ExactArgs(1),
		RunE: runCrawl,
	}

	cmd.Flags().IntVarP(&crawlMaxPosts, "max-posts", "m", -1, "maximum posts to collect (-1 = use config, 0 = unbounded)")
	cmd.Flags().BoolVar(&crawlToCSV, "csv", false, "also append results to the CSV ledger")

	return cmd
}

func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg)

	maxPosts := cfg.Crawl.MaxPosts
	if crawlMaxPosts >= 0 {
		maxPosts = crawlMaxPosts
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := crawler.NewRunner(cfg, logger)
	target := strings.ToLower(args[0])

	if target == "all" {
		results := runner.CrawlAll(ctx, maxPosts)
		failures := 0
		for _, result := range results {
			if result.Err != nil {
				logger.Error("site failed", "site", result.Site, "error", result.Err)
				failures++
				continue
			}
			if err := persist(ctx, cfg, logger, result.Site, result.Posts); err != nil {
				return err
			}
		}
		if failures == len(results) {
			return fmt.Errorf("all %d sites failed", failures)
		}
		return nil
	}

	posts, err := runner.Crawl(ctx, target, maxPosts)
	if err != nil {
		if errors.Is(err, types.ErrUnknownTool) {
			return fmt.Errorf("unknown site %q (expected one of: %s, all)",
				target, strings.Join(runner.Sites(), ", "))
		}
		return err
	}
	return persist(ctx, cfg, logger, target, posts)
}

// persist writes one site's posts through the configured sinks: always the
// JSON run file, optionally the CSV ledger and the Mongo mirror.
func persist(ctx context.Context, cfg *config.Config, logger *slog.Logger, site string, posts []types.Post) error {
	sinks := []storage.Sink{storage.NewRunWriter(cfg.Storage.OutputDir, site)}

	if crawlToCSV {
		sinks = append(sinks, storage.NewLedger(cfg.Storage.CSVPath, logger))
	}
	if cfg.Storage.MongoURI != "" {
		mirror, err := storage.NewMongoMirror(ctx, cfg.Storage.MongoURI,
			cfg.Storage.MongoDatabase, cfg.Storage.MongoCollection, logger)
		if err != nil {
			logger.Warn("mongo mirror unavailable", "error", err)
		} else {
			sinks = append(sinks, mirror)
		}
	}

	multi := storage.NewMulti(sinks...)
	defer multi.Close(ctx)

	stored, err := multi.Append(ctx, posts)
	if err != nil {
		return fmt.Errorf("persist %s results: %w", site, err)
	}
	logger.Info("results persisted", "site", site, "posts", len(posts), "stored", stored)
	return nil
}
