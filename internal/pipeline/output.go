package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/doc-extract/internal/extract"
	"github.com/joseph-ayodele/doc-extract/internal/labels"
)

// extractionInfo carries the metadata block of a persisted result.
type extractionInfo struct {
	Success       bool           `json:"success"`
	ContentLength int            `json:"content_length"`
	Labels        *labels.Labels `json:"labels,omitempty"`
}

// resultDocument is the on-disk JSON shape of one extraction.
type resultDocument struct {
	SourceFile     string         `json:"source_file"`
	Content        string         `json:"content"`
	ExtractionInfo extractionInfo `json:"extraction_info"`
}

// WriteResult persists a successful extraction as pretty-printed JSON.
// Failure results are never written; callers record those in the catalog
// instead.
func WriteResult(outputPath string, res extract.ExtractionResult, lbls *labels.Labels) error {
	if !res.Success {
		return fmt.Errorf("cannot save failed result for %q: %s", res.SourceFile, res.ErrorMessage)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	doc := resultDocument{
		SourceFile: res.SourceFile,
		Content:    res.Content,
		ExtractionInfo: extractionInfo{
			Success:       res.Success,
			ContentLength: len(res.Content),
			Labels:        lbls,
		},
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}
