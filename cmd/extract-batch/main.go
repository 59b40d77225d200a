// Command extract-batch walks a directory tree, extracts every supported
// document, writes per-file JSON results, and records runs in a SQLite
// catalog when one is configured.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/doc-extract/internal/common"
	"github.com/joseph-ayodele/doc-extract/internal/extract"
	"github.com/joseph-ayodele/doc-extract/internal/labels"
	"github.com/joseph-ayodele/doc-extract/internal/ocr"
	"github.com/joseph-ayodele/doc-extract/internal/pipeline"
	"github.com/joseph-ayodele/doc-extract/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir       = flag.String("dir", "", "directory to process (required)")
		out       = flag.String("out", "", "output directory for result JSON (defaults to <dir>/../extracted)")
		cfgPath   = flag.String("config", "", "optional YAML config file")
		labelFile = flag.String("labels", "", "optional label table JSON file")
		workers   = flag.Int("workers", 0, "worker count (overrides config when > 0)")
		dsn       = flag.String("catalog", "", "SQLite DSN for the run catalog (overrides config)")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*dir), "extracted")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := common.LoadConfig(*cfgPath)
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}
	if *workers > 0 {
		cfg.Batch.Workers = *workers
	}
	if *dsn != "" {
		cfg.Catalog.DSN = *dsn
	}
	if *labelFile != "" {
		cfg.Batch.LabelFile = *labelFile
	}

	ctx := context.Background()

	engine := ocr.NewEngine(cfg.OCR, logger)
	registry := extract.DefaultRegistry(cfg.Extract, engine, logger)

	proc := pipeline.NewProcessor(registry, *out, logger)
	proc.Workers = cfg.Batch.Workers

	if cfg.Catalog.DSN != "" {
		catalog, cerr := repository.Open(cfg.Catalog.DSN, logger)
		if cerr != nil {
			logger.Error("open catalog", "dsn", cfg.Catalog.DSN, "error", cerr)
			os.Exit(1)
		}
		defer func() {
			if cerr := catalog.Close(); cerr != nil {
				logger.Error("close catalog", "error", cerr)
			}
		}()
		proc.Catalog = catalog
	}

	if cfg.Batch.LabelFile != "" {
		table, lerr := labels.LoadTable(cfg.Batch.LabelFile, logger)
		if lerr != nil {
			logger.Error("load label table", "path", cfg.Batch.LabelFile, "error", lerr)
			os.Exit(1)
		}
		proc.Labels = table
	}

	start := time.Now()
	sum, err := proc.ProcessDirectory(ctx, *dir)
	dur := time.Since(start)
	if err != nil {
		logger.Error("batch aborted", "error", err, "duration_ms", dur.Milliseconds())
		os.Exit(1)
	}

	logger.Info("batch summary",
		"batch_id", sum.BatchID,
		"scanned", sum.Scanned,
		"skipped", sum.Skipped,
		"succeeded", sum.Succeeded,
		"failed", sum.Failed,
		"duration_ms", dur.Milliseconds())
	for reason, n := range sum.FailureReasons {
		logger.Info("failure reason", "reason", reason, "count", n)
	}
	if sum.Failed > 0 {
		os.Exit(1)
	}
}
