// Package ocr runs optical character recognition against rendered page and
// image bitmaps using external poppler/tesseract binaries.
//
// The engine is deliberately dumb about document semantics: callers hand it
// a file, it renders pages (or takes images as-is), recognizes each one under
// a per-page timeout, and concatenates what it accepted. A page that fails to
// recognize is skipped, never fatal for the document.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Config configures the OCR engine. Zero values fall back to defaults.
type Config struct {
	Pdftoppm  string `mapstructure:"pdftoppm"`  // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string `mapstructure:"tesseract"` // binary name or absolute path; if empty -> "tesseract"

	Languages []string `mapstructure:"languages"` // tesseract language set, default ["eng","por"]

	// RenderScale multiplies the 150 DPI base when rasterizing PDF pages.
	// The default 2.0 approximates 300 DPI.
	RenderScale float64 `mapstructure:"render_scale"`

	PageTimeout time.Duration `mapstructure:"page_timeout"` // per-page recognition budget, default 30s
	MaxPages    int           `mapstructure:"max_pages"`    // hard cap on pages attempted, default 20

	// MinConfidence discards recognized words below this threshold (0..1)
	// when TSV confidence output is enabled. Without TSV all fragments are
	// accepted, since plain tesseract output carries no confidence.
	MinConfidence       float32 `mapstructure:"min_confidence"`
	EnableTSVConfidence bool    `mapstructure:"enable_tsv_confidence"`

	TessdataDir string `mapstructure:"tessdata_dir"`
	PSM         int    `mapstructure:"psm"` // e.g. 6 for a uniform block of text
	OEM         int    `mapstructure:"oem"` // 1 = LSTM; 0 = engine default
}

func (c *Config) defaults() {
	if c.Pdftoppm == "" {
		c.Pdftoppm = "pdftoppm"
	}
	if c.Tesseract == "" {
		c.Tesseract = "tesseract"
	}
	if len(c.Languages) == 0 {
		c.Languages = []string{"eng", "por"}
	}
	if c.RenderScale <= 0 {
		c.RenderScale = 2.0
	}
	if c.PageTimeout <= 0 {
		c.PageTimeout = 30 * time.Second
	}
	if c.MaxPages <= 0 {
		c.MaxPages = 20
	}
	if c.MinConfidence <= 0 {
		c.MinConfidence = 0.5
	}
}

// Result is the outcome of one OCR run over a document or image set.
type Result struct {
	Text           string
	Success        bool
	PagesProcessed int
	ErrorMessage   string
}

// Engine renders and recognizes. Safe for reuse across documents; the
// underlying recognizer invocation is serialized with a mutex because
// tesseract handles are not safe for concurrent use.
type Engine struct {
	cfg    Config
	runner Runner
	logger *slog.Logger

	availOnce sync.Once
	available bool

	recognizeMu sync.Mutex
}

// NewEngine creates an OCR engine with the given configuration.
func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cfg: cfg, runner: execRunner{}, logger: logger}
}

// IsAvailable reports whether the tesseract binary can actually be invoked.
// Probed lazily on first call and cached for this engine instance.
func (e *Engine) IsAvailable() bool {
	e.availOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, _, err := e.runner.Run(ctx, e.cfg.Tesseract, "--version")
		e.available = err == nil
		if err != nil {
			e.logger.Warn("tesseract not available, OCR disabled", "binary", e.cfg.Tesseract, "error", err)
		}
	})
	return e.available
}

// lang joins the configured language set the way tesseract expects.
func (e *Engine) lang() string {
	return strings.Join(e.cfg.Languages, "+")
}

func unavailableResult() Result {
	return Result{
		Success:      false,
		ErrorMessage: "OCR not available: tesseract binary not found",
	}
}

// RecognizeImages runs OCR over a list of image files, treating each image
// as one page. The MaxPages cap and per-page failure semantics match
// Recognize.
func (e *Engine) RecognizeImages(ctx context.Context, paths []string, maxPages int) Result {
	if !e.IsAvailable() {
		return unavailableResult()
	}
	if maxPages <= 0 || maxPages > e.cfg.MaxPages {
		maxPages = e.cfg.MaxPages
	}
	if len(paths) > maxPages {
		e.logger.Warn("image set exceeds OCR page cap, truncating",
			"images", len(paths), "max_pages", maxPages)
		paths = paths[:maxPages]
	}

	var b strings.Builder
	processed := 0
	for i, p := range paths {
		if err := ctx.Err(); err != nil {
			return Result{Success: false, PagesProcessed: processed, ErrorMessage: err.Error()}
		}
		text, err := e.RecognizeImage(ctx, p)
		processed++
		if err != nil {
			e.logger.Warn("image recognition failed, skipping", "image", p, "index", i+1, "error", err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(text)
	}
	return Result{Text: b.String(), Success: true, PagesProcessed: processed}
}

// RecognizeImage runs tesseract against a single bitmap and returns the
// accepted text, normalized.
func (e *Engine) RecognizeImage(ctx context.Context, path string) (string, error) {
	if !e.IsAvailable() {
		return "", fmt.Errorf("OCR not available: tesseract binary not found")
	}

	pageCtx, cancel := context.WithTimeout(ctx, e.cfg.PageTimeout)
	defer cancel()

	e.recognizeMu.Lock()
	defer e.recognizeMu.Unlock()

	if e.cfg.EnableTSVConfidence {
		text, err := e.recognizeTSV(pageCtx, path)
		if err == nil {
			return Normalize(text), nil
		}
		e.logger.Warn("TSV recognition failed, falling back to plain output", "image", path, "error", err)
	}

	text, err := e.recognizePlain(pageCtx, path)
	if err != nil {
		return "", err
	}
	return Normalize(text), nil
}

func (e *Engine) baseArgs(path string) []string {
	args := []string{path, "stdout", "-l", e.lang()}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", fmt.Sprintf("%d", e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	return args
}

func (e *Engine) recognizePlain(ctx context.Context, path string) (string, error) {
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, e.baseArgs(path)...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w (%s)", err, truncate(string(errb), 512))
	}
	return string(out), nil
}
