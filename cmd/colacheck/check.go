package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"colacheck/internal/config"
	"colacheck/internal/dispatch"
	"colacheck/internal/home"
	"colacheck/internal/ingest"
	"colacheck/internal/pipeline"
	"colacheck/internal/records"
	"colacheck/internal/report"
)

var (
	checkWorkers int
	checkCSVPath string
	checkVerbose bool
)

var checkCmd = &cobra.Command{
	Use:   "check <directory>",
	Short: "Verify a directory of labels and applications in one shot",
	Long: `Check runs the full verification pipeline over a directory of
label images and application PDFs without starting a server.

Every supported file in the directory is submitted for extraction, labels
are matched to applications, and each pair is verified field by field.

Examples:
  colacheck check ./batch                 # Verify a batch
  colacheck check ./batch --csv out.csv   # Also write a CSV report
  colacheck check ./batch --workers 8     # Raise extraction concurrency`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		level := slog.LevelWarn
		if checkVerbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		h, err := home.New(homeDir)
		if err != nil {
			return err
		}

		path := cfgFile
		if path == "" && h.ConfigExists() {
			path = h.ConfigPath()
		}
		cfgMgr, err := config.NewManager(path)
		if err != nil {
			return err
		}
		cfg := cfgMgr.Get()

		extractor, err := newExtractor(cfg, logger)
		if err != nil {
			return err
		}
		if err := extractor.HealthCheck(ctx); err != nil {
			return fmt.Errorf("extraction service not reachable: %w", err)
		}

		recs, err := ingest.Dir(args[0], logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Submitting %d documents for extraction...\n", len(recs))

		store := records.NewStore()
		workers := checkWorkers
		if workers == 0 {
			workers = cfg.Dispatcher.Workers
		}
		d := dispatch.New(store, extractor, dispatch.Config{
			Workers:   workers,
			QueueSize: len(recs),
			Timeout:   time.Duration(cfg.Dispatcher.TimeoutSeconds) * time.Second,
			Logger:    logger,
		})

		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		d.Start(runCtx)

		for _, rec := range recs {
			if err := d.Submit(rec); err != nil {
				return fmt.Errorf("submitting %s: %w", rec.FileName, err)
			}
		}
		if err := d.WaitResolved(ctx); err != nil {
			return err
		}

		snapshot := store.Snapshot()
		printExtractionFailures(cmd, snapshot)

		pairs := pipeline.Run(snapshot, logger)
		printResults(cmd, pairs)

		if checkCSVPath != "" {
			f, err := os.Create(checkCSVPath)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := report.WriteCSV(f, pairs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nCSV report written to %s\n", checkCSVPath)
		}

		return nil
	},
}

func printExtractionFailures(cmd *cobra.Command, recs []records.DocumentRecord) {
	for _, rec := range recs {
		if rec.Status == records.StatusFailed {
			fmt.Fprintf(cmd.ErrOrStderr(), "extraction failed: %s (%s): %s\n", rec.FileName, rec.ErrorCategory, rec.Error)
		}
	}
}

func printResults(cmd *cobra.Command, pairs []pipeline.MatchedPair) {
	rows := make([][]string, 0, len(pairs))
	for _, pair := range pairs {
		labelFile := "(none)"
		if pair.Label != nil {
			labelFile = pair.Label.FileName
		}
		appFile := "(none)"
		if pair.Application != nil {
			appFile = pair.Application.FileName
		}
		rows = append(rows, []string{
			labelFile,
			appFile,
			fmt.Sprintf("%.2f", pair.MatchConfidence),
			string(pair.PairStatus),
			fmt.Sprintf("%d", pair.IssueCount),
			fmt.Sprintf("%d", pair.ReviewCount),
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(
		[]string{"Label", "Application", "Confidence", "Status", "Mismatches", "Needs Review"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignRight},
	))

	s := pipeline.Summarize(pairs)
	fmt.Fprintf(out, "\n%d pairs: %d pass, %d needs review, %d fail, %d unmatched\n",
		s.Total, s.Pass, s.NeedsReview, s.Fail, s.Unmatched)
}

func init() {
	checkCmd.Flags().IntVar(&checkWorkers, "workers", 0, "concurrent extraction requests (default from config)")
	checkCmd.Flags().StringVar(&checkCSVPath, "csv", "", "write results to a CSV file")
	checkCmd.Flags().BoolVarP(&checkVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(checkCmd)
}
