package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"community-crawler/internal/storage"
)

var (
	convertOutputsDir string
	convertCSVPath    string
	convertNew        bool
)

// convertCmd creates the "convert" subcommand.
func convertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Merge JSON run files into the CSV ledger",
		Long: `Load every JSON run file under the outputs directory and append the
combined posts to the CSV ledger, de-duplicated by URL, with ids
continuing from the highest existing one.`,
		RunE: runConvert,
	}

	cmd.Flags().StringVar(&convertOutputsDir, "outputs-dir", "", "JSON outputs directory (default: config)")
	cmd.Flags().StringVar(&convertCSVPath, "csv-path", "", "CSV ledger path (default: config)")
	cmd.Flags().BoolVar(&convertNew, "new", false, "overwrite the ledger instead of appending")

	return cmd
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg)

	outputsDir := cfg.Storage.OutputDir
	if convertOutputsDir != "" {
		outputsDir = convertOutputsDir
	}
	csvPath := cfg.Storage.CSVPath
	if convertCSVPath != "" {
		csvPath = convertCSVPath
	}

	if convertNew {
		if err := os.Remove(csvPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove existing ledger: %w", err)
		}
		logger.Info("starting fresh ledger", "path", csvPath)
	}

	ledger := storage.NewLedger(csvPath, logger)
	added, err := ledger.MergeOutputs(context.Background(), outputsDir)
	if err != nil {
		return err
	}

	fmt.Printf("Merged %d new posts into %s\n", added, csvPath)
	return nil
}
