package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mfenderov/newstrack/internal/feed"
	"github.com/mfenderov/newstrack/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	runFile   string
	runDryRun bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one fetch-and-update pass",
	Long: `Fetch news for every configured keyword, merge new articles into the
document's news section, and write the document back when it changed.

Examples:
  # Update the configured document
  newstrack run

  # Update a specific file
  newstrack run --file docs/NEWS.md

  # Show what would change without writing
  newstrack run --dry-run`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runFile, "file", "", "document to update (overrides config)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "report the outcome without writing the document")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	path := cfg.Document
	if runFile != "" {
		path = runFile
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read document %s: %w", path, err)
	}

	p := pipeline.New(pipeline.Config{
		Keywords:    cfg.Keywords,
		MaxEntries:  cfg.MaxEntries,
		Concurrency: cfg.Concurrency,
		Feed: feed.Config{
			Endpoint:  cfg.Feed.Endpoint,
			Timeout:   cfg.Feed.Timeout,
			UserAgent: cfg.Feed.UserAgent,
			Limit:     cfg.Feed.Limit,
		},
		Retry: feed.RetryConfig{
			MaxRetries:      cfg.Retry.MaxRetries,
			InitialInterval: cfg.Retry.InitialInterval,
			MaxInterval:     cfg.Retry.MaxInterval,
		},
	})

	slog.Debug("starting run", "document", path, "keywords", len(cfg.Keywords))
	result := p.Run(ctx, string(raw), time.Now())

	for _, runErr := range result.Errors {
		if runErr.Keyword != "" {
			fmt.Printf("Warning: [%s] %s: %s\n", runErr.Kind, runErr.Keyword, runErr.Message)
		} else {
			fmt.Printf("Warning: [%s] %s\n", runErr.Kind, runErr.Message)
		}
	}

	switch result.Outcome {
	case pipeline.OutcomeFailed:
		return fmt.Errorf("run failed: document %s has no readable news section", path)

	case pipeline.OutcomeUnchanged:
		fmt.Println("No new articles found.")
		return nil

	default:
		if runDryRun {
			fmt.Printf("Would add %d new article(s) to %s (dry run).\n", result.NewEntries, path)
			return nil
		}
		if err := os.WriteFile(path, []byte(result.UpdatedDocument), 0o644); err != nil {
			return fmt.Errorf("failed to write document %s: %w", path, err)
		}
		fmt.Printf("Added %d new article(s) to %s.\n", result.NewEntries, path)
		return nil
	}
}
