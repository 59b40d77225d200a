// Command extract runs text extraction on a single document and writes the
// result JSON next to it (or to --out).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/doc-extract/internal/common"
	"github.com/joseph-ayodele/doc-extract/internal/extract"
	"github.com/joseph-ayodele/doc-extract/internal/labels"
	"github.com/joseph-ayodele/doc-extract/internal/ocr"
	"github.com/joseph-ayodele/doc-extract/internal/pipeline"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		out       = flag.String("out", "", "output JSON path (defaults to <file>.json next to the input)")
		cfgPath   = flag.String("config", "", "optional YAML config file")
		labelFile = flag.String("labels", "", "optional label table JSON file")
		noOCR     = flag.Bool("no-ocr", false, "disable the OCR fallback")
		timeout   = flag.Duration("timeout", 10*time.Minute, "overall extraction budget")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		printError("usage: extract [flags] <file>\n")
		flag.PrintDefaults()
		os.Exit(2)
	}
	path := flag.Arg(0)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := common.LoadConfig(*cfgPath)
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}
	if *noOCR {
		cfg.Extract.PDF.OCREnabled = false
		cfg.Extract.Docx.OCREnabled = false
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	engine := ocr.NewEngine(cfg.OCR, logger)
	registry := extract.DefaultRegistry(cfg.Extract, engine, logger)

	extractor := registry.Create(path)
	if extractor == nil {
		logger.Error("unsupported file type",
			"path", path, "supported", registry.SupportedExtensions())
		os.Exit(2)
	}

	var lbls *labels.Labels
	if *labelFile != "" {
		table, lerr := labels.LoadTable(*labelFile, logger)
		if lerr != nil {
			logger.Error("load label table", "error", lerr)
			os.Exit(1)
		}
		lbls = table.FromPath(path)
	}

	start := time.Now()
	res := extractor.Extract(ctx, path)
	dur := time.Since(start)

	if !res.Success {
		logger.Error("extraction failed",
			"file", res.SourceFile, "error", res.ErrorMessage,
			"duration_ms", dur.Milliseconds())
		os.Exit(1)
	}

	outputPath := *out
	if outputPath == "" {
		base := filepath.Base(path)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		outputPath = filepath.Join(filepath.Dir(path), stem+".json")
	}
	if err := pipeline.WriteResult(outputPath, res, lbls); err != nil {
		logger.Error("write result", "path", outputPath, "error", err)
		os.Exit(1)
	}

	logger.Info("extraction OK",
		"file", res.SourceFile,
		"content_length", len(res.Content),
		"output", outputPath,
		"duration_ms", dur.Milliseconds())
}
