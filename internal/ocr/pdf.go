package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Recognize renders the PDF at path page by page and OCRs each bitmap.
// Processing stops after maxPages; pages beyond the cap are not attempted
// and the truncation shows up in the log and in PagesProcessed. A single
// page failing to render or recognize excludes that page, not the document.
func (e *Engine) Recognize(ctx context.Context, path string, maxPages int) Result {
	if !e.IsAvailable() {
		return unavailableResult()
	}
	if maxPages <= 0 || maxPages > e.cfg.MaxPages {
		maxPages = e.cfg.MaxPages
	}

	tmpDir, err := os.MkdirTemp("", "pdf-ocr-*")
	if err != nil {
		return Result{Success: false, ErrorMessage: fmt.Sprintf("create temp dir: %v", err)}
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			e.logger.Warn("failed to remove OCR temp dir", "dir", tmpDir, "error", rmErr)
		}
	}()

	dpi := int(150 * e.cfg.RenderScale)

	var b strings.Builder
	processed := 0
	rendered := 0
	truncated := false

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return Result{Text: b.String(), Success: processed > 0, PagesProcessed: processed, ErrorMessage: err.Error()}
		}
		if page > maxPages {
			truncated = true
			break
		}

		img, renderErr := e.renderPage(ctx, path, tmpDir, page, dpi)
		if renderErr != nil {
			e.logger.Warn("page render failed, skipping", "page", page, "error", renderErr)
			processed++
			continue
		}
		if img == "" {
			// Past the last page: pdftoppm produced no output.
			break
		}
		rendered++

		text, ocrErr := e.RecognizeImage(ctx, img)
		if rmErr := os.Remove(img); rmErr != nil {
			e.logger.Warn("failed to remove page bitmap", "image", img, "error", rmErr)
		}
		processed++
		if ocrErr != nil {
			e.logger.Warn("page recognition failed, skipping", "page", page, "error", ocrErr)
			continue
		}
		if strings.TrimSpace(text) == "" {
			e.logger.Debug("page produced no text", "page", page)
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n") // keep a clear page break marker
		}
		b.WriteString(text)
	}

	if truncated {
		e.logger.Warn("OCR page cap reached, remaining pages not attempted",
			"path", path, "max_pages", maxPages)
	}
	if rendered == 0 {
		return Result{Success: false, PagesProcessed: processed, ErrorMessage: "no pages rendered"}
	}
	return Result{Text: b.String(), Success: true, PagesProcessed: processed}
}

// renderPage rasterizes one PDF page to a PNG under dir and returns its
// path, or "" when the page does not exist.
func (e *Engine) renderPage(ctx context.Context, path, dir string, page, dpi int) (string, error) {
	prefix := filepath.Join(dir, "page")
	pageStr := strconv.Itoa(page)

	// pdftoppm -r <dpi> -f N -l N -png <in.pdf> <dir/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm,
		"-r", strconv.Itoa(dpi), "-f", pageStr, "-l", pageStr, "-png", path, prefix)
	if err != nil {
		return "", fmt.Errorf("pdftoppm: %w (%s)", err, truncate(string(errb), 512))
	}

	// pdftoppm zero-pads the page suffix depending on total page count, so
	// glob rather than guess the exact name.
	matches, _ := filepath.Glob(prefix + "-*.png")
	if len(matches) == 0 {
		return "", nil
	}
	if len(matches) > 1 {
		// Should not happen with -f/-l pinned to one page; keep the first.
		for _, extra := range matches[1:] {
			_ = os.Remove(extra)
		}
	}
	return matches[0], nil
}
