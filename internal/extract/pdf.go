package extract

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/doc-extract/internal/quality"
)

// PDFExtractor extracts text from PDF documents page by page, sampling
// oversized documents and falling back to OCR when the native text layer is
// judged insufficient.
type PDFExtractor struct {
	cfg      PDFConfig
	analyzer *quality.Analyzer
	engine   Recognizer
	logger   *slog.Logger
}

// NewPDFExtractor creates a PDF extractor. engine may be nil when OCR is
// disabled or unavailable; extraction then proceeds native-only.
func NewPDFExtractor(cfg Config, engine Recognizer, logger *slog.Logger) *PDFExtractor {
	cfg.Defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFExtractor{
		cfg:      cfg.PDF,
		analyzer: quality.NewAnalyzer(cfg.Quality, logger),
		engine:   engine,
		logger:   logger,
	}
}

func (x *PDFExtractor) Extract(ctx context.Context, path string) ExtractionResult {
	sourceFile := filepath.Base(path)

	if msg := validateFile(path, ".pdf"); msg != "" {
		return errorResult(x.logger, sourceFile, msg)
	}

	pages, totalPages, hasImages, err := readPDFPages(ctx, path)
	if err != nil {
		return errorResult(x.logger, sourceFile, fmt.Sprintf("pdf extraction: %v", err))
	}

	if totalPages > x.cfg.SampleThreshold {
		x.logger.Info("sampling oversized pdf",
			"source_file", sourceFile, "pages", totalPages, "keep", x.cfg.SampleKeep)
	}
	units := sampleUnits(pages, x.cfg.SampleThreshold, x.cfg.SampleKeep, pdfOmissionMarker)
	native := strings.Join(units, "\n\n")

	final := x.maybeOCR(ctx, path, sourceFile, native, hasImages)

	x.logger.Info("pdf extracted",
		"source_file", sourceFile, "pages", totalPages, "chars", len(final))
	return successResult(sourceFile, final)
}

// maybeOCR runs the quality gate and, when it trips, the OCR fallback.
// The replacement policy keeps whichever text is longer after trimming.
func (x *PDFExtractor) maybeOCR(ctx context.Context, path, sourceFile, native string, hasImages bool) string {
	if !x.cfg.OCREnabled || x.engine == nil {
		return native
	}

	if native != "" {
		report := x.analyzer.Analyze(native)
		if !report.NeedsOCR {
			return native
		}
		x.logger.Info("quality gate tripped, attempting OCR",
			"source_file", sourceFile, "reason", report.Reason,
			"score", report.Score, "has_image_streams", hasImages)
	} else {
		x.logger.Info("no native text, attempting OCR",
			"source_file", sourceFile, "has_image_streams", hasImages)
	}

	res := x.engine.Recognize(ctx, path, x.cfg.OCRMaxPages)
	if !res.Success {
		x.logger.Warn("OCR could not improve result, keeping native text",
			"source_file", sourceFile, "error", res.ErrorMessage)
		return native
	}
	if trimmedLen(res.Text) > trimmedLen(native) {
		x.logger.Info("OCR output accepted",
			"source_file", sourceFile, "pages_processed", res.PagesProcessed,
			"ocr_chars", len(res.Text), "native_chars", len(native))
		return res.Text
	}
	x.logger.Info("OCR output shorter than native text, keeping native",
		"source_file", sourceFile, "pages_processed", res.PagesProcessed)
	return native
}
