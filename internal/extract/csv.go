package extract

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// CSVExtractor extracts text from CSV files, one line per non-empty row.
// Oversized content is sampled by cumulative character budget split evenly
// between head and tail rather than by row count. No OCR: there is nothing
// to render.
type CSVExtractor struct {
	cfg    CSVConfig
	logger *slog.Logger
}

// NewCSVExtractor creates a CSV extractor.
func NewCSVExtractor(cfg Config, logger *slog.Logger) *CSVExtractor {
	cfg.Defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVExtractor{cfg: cfg.CSV, logger: logger}
}

func (x *CSVExtractor) Extract(ctx context.Context, path string) ExtractionResult {
	sourceFile := filepath.Base(path)

	if msg := validateFile(path, ".csv"); msg != "" {
		return errorResult(x.logger, sourceFile, msg)
	}

	lines, err := readCSVLines(ctx, path)
	if err != nil {
		return errorResult(x.logger, sourceFile, fmt.Sprintf("csv extraction: %v", err))
	}

	full := strings.Join(lines, "\n")
	if len(full) > x.cfg.CharBudget {
		x.logger.Info("sampling oversized csv",
			"source_file", sourceFile, "rows", len(lines), "chars", len(full), "budget", x.cfg.CharBudget)
		full = strings.Join(sampleByBudget(lines, x.cfg.CharBudget, rowOmissionMarker), "\n")
	}

	x.logger.Info("csv extracted", "source_file", sourceFile, "rows", len(lines), "chars", len(full))
	return successResult(sourceFile, full)
}

// readCSVLines reads all records leniently (ragged rows and stray quotes
// tolerated) and joins each row's cells with a single space, skipping rows
// with no content.
func readCSVLines(ctx context.Context, path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var lines []string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line := strings.TrimSpace(strings.Join(record, " "))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}
