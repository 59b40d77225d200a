// Package extract turns documents of heterogeneous formats into plain text,
// upgrading to OCR when the native text layer is judged insufficient.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/doc-extract/internal/ocr"
)

// Extractor is the uniform contract every format extractor satisfies.
// Extract never returns a Go error: every failure at or below this boundary
// is folded into the result. Cancellation is honored between content units.
type Extractor interface {
	Extract(ctx context.Context, path string) ExtractionResult
}

// Recognizer is the OCR capability an extractor consults when the quality
// gate trips. *ocr.Engine satisfies it; tests substitute stubs.
type Recognizer interface {
	IsAvailable() bool
	Recognize(ctx context.Context, path string, maxPages int) ocr.Result
	RecognizeImages(ctx context.Context, paths []string, maxPages int) ocr.Result
}

// ExtractionResult is the immutable outcome of one extraction attempt.
type ExtractionResult struct {
	SourceFile   string `json:"source_file"`
	Content      string `json:"content,omitempty"`
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// successResult builds a success result, normalizing the invalid
// success-with-empty-content combination to a failure.
func successResult(sourceFile, content string) ExtractionResult {
	if content == "" {
		return ExtractionResult{
			SourceFile:   sourceFile,
			Success:      false,
			ErrorMessage: "empty content despite success status",
		}
	}
	return ExtractionResult{SourceFile: sourceFile, Content: content, Success: true}
}

func errorResult(logger *slog.Logger, sourceFile, message string) ExtractionResult {
	logger.Error("extraction failed", "source_file", sourceFile, "error", message)
	return ExtractionResult{SourceFile: sourceFile, Success: false, ErrorMessage: message}
}

// validateFile runs the shared preconditions: the file exists, carries one
// of the expected suffixes (case-insensitive), and is non-empty. Returns ""
// when valid, otherwise a descriptive message.
func validateFile(path string, expectedExts ...string) string {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Sprintf("file not found: %s", path)
	}
	if err != nil {
		return fmt.Sprintf("stat %s: %v", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	found := false
	for _, want := range expectedExts {
		if ext == strings.ToLower(want) {
			found = true
			break
		}
	}
	if !found {
		return fmt.Sprintf("file is not %s: %s", strings.Join(expectedExts, "/"), ext)
	}

	if info.Size() == 0 {
		return fmt.Sprintf("file is empty: %s", path)
	}
	return ""
}
