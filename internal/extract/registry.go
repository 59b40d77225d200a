package extract

import (
	"log/slog"
	"path/filepath"
	"sort"
	"sync"

	"github.com/joseph-ayodele/doc-extract/constants"
)

// Factory builds one extractor instance. A factory returning an error marks
// that format unavailable without affecting other registrations.
type Factory func() (Extractor, error)

// Registry maps file extensions to extractor factories and dispatches files
// to the right one. Extension matching is case-insensitive.
type Registry struct {
	logger *slog.Logger

	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger, factories: make(map[string]Factory)}
}

// Register binds an extension (with or without leading dot) to a factory.
func (r *Registry) Register(ext string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[constants.NormalizeExt(ext)] = factory
	r.logger.Debug("registered extractor", "extension", constants.NormalizeExt(ext))
}

// Create returns an extractor for the file's extension, or nil when the
// extension is unsupported or the factory fails. Factory failure is logged,
// never propagated: one broken format must not fail dispatch for others.
func (r *Registry) Create(path string) Extractor {
	ext := constants.NormalizeExt(filepath.Ext(path))

	r.mu.RLock()
	factory, ok := r.factories[ext]
	r.mu.RUnlock()
	if !ok {
		r.logger.Debug("no extractor for extension", "extension", ext, "path", path)
		return nil
	}

	ex, err := factory()
	if err != nil {
		r.logger.Error("extractor factory failed", "extension", ext, "error", err)
		return nil
	}
	return ex
}

// IsSupported reports whether some extractor is registered for the file's
// extension.
func (r *Registry) IsSupported(path string) bool {
	ext := constants.NormalizeExt(filepath.Ext(path))
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[ext]
	return ok
}

// SupportedExtensions returns the registered extensions, sorted, without
// leading dots.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.factories))
	for ext := range r.factories {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// DefaultRegistry builds the static registration table: PDF, DOCX, CSV, and
// the Excel family (.xlsx/.xlsm/.xls share one extractor). Each entry is
// offered independently so one extractor's missing capability cannot block
// the others.
func DefaultRegistry(cfg Config, engine Recognizer, logger *slog.Logger) *Registry {
	cfg.Defaults()
	r := NewRegistry(logger)

	r.Register("pdf", func() (Extractor, error) {
		return NewPDFExtractor(cfg, engine, logger), nil
	})
	r.Register("docx", func() (Extractor, error) {
		return NewDocxExtractor(cfg, engine, logger), nil
	})
	r.Register("csv", func() (Extractor, error) {
		return NewCSVExtractor(cfg, logger), nil
	})
	excelFactory := func() (Extractor, error) {
		return NewXLSXExtractor(cfg, logger), nil
	}
	r.Register("xlsx", excelFactory)
	r.Register("xlsm", excelFactory)
	r.Register("xls", excelFactory)

	return r
}
