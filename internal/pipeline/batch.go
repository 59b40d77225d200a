// Package pipeline runs extraction over whole directory trees, bounded by a
// worker pool, and persists per-file JSON results plus catalog records.
package pipeline

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/doc-extract/internal/extract"
	"github.com/joseph-ayodele/doc-extract/internal/labels"
	"github.com/joseph-ayodele/doc-extract/internal/repository"
)

// Summary aggregates one batch run. FailureReasons counts failures by their
// leading message token so a batch report can show dominant failure modes.
type Summary struct {
	BatchID        uuid.UUID
	Scanned        int
	Skipped        int
	Processed      int
	Succeeded      int
	Failed         int
	FailureReasons map[string]int
}

// Processor walks directories and extracts every supported file. One bad
// file never aborts the batch.
type Processor struct {
	Registry  *extract.Registry
	Catalog   *repository.Catalog // optional
	Labels    *labels.Table       // optional
	OutputDir string
	Workers   int
	Logger    *slog.Logger
}

// NewProcessor creates a batch processor with sane defaults.
func NewProcessor(registry *extract.Registry, outputDir string, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		Registry:  registry,
		OutputDir: outputDir,
		Workers:   4,
		Logger:    logger,
	}
}

// ProcessDirectory extracts every supported file under root. Files whose
// extension has no registered extractor are skipped (expected, not failed).
// Supported files run through worker slots; each worker drives its own
// extractor instance, so no extraction state is shared.
func (p *Processor) ProcessDirectory(ctx context.Context, root string) (Summary, error) {
	sum := Summary{
		BatchID:        uuid.New(),
		FailureReasons: make(map[string]int),
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			p.Logger.Warn("walk error, skipping entry", "path", path, "error", walkErr)
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		sum.Scanned++
		if !p.Registry.IsSupported(path) {
			sum.Skipped++
			p.Logger.Debug("unsupported extension, skipping", "path", path)
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return sum, err
	}
	sort.Strings(files)

	workers := p.Workers
	if workers <= 0 {
		workers = 1
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := p.processFile(gctx, sum.BatchID, path)

			mu.Lock()
			defer mu.Unlock()
			sum.Processed++
			if res.Success {
				sum.Succeeded++
			} else {
				sum.Failed++
				sum.FailureReasons[reasonKey(res.ErrorMessage)]++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return sum, err
	}

	p.Logger.Info("batch complete",
		"batch_id", sum.BatchID,
		"scanned", sum.Scanned, "skipped", sum.Skipped,
		"succeeded", sum.Succeeded, "failed", sum.Failed)
	return sum, nil
}

// processFile extracts one file, writes its JSON output on success, and
// records the outcome in the catalog when one is attached.
func (p *Processor) processFile(ctx context.Context, batchID uuid.UUID, path string) extract.ExtractionResult {
	extractor := p.Registry.Create(path)
	if extractor == nil {
		res := extract.ExtractionResult{
			SourceFile:   filepath.Base(path),
			Success:      false,
			ErrorMessage: "no extractor available for " + filepath.Ext(path),
		}
		p.record(ctx, batchID, path, "", res)
		return res
	}

	res := extractor.Extract(ctx, path)

	outputPath := ""
	if res.Success {
		var lbls *labels.Labels
		if p.Labels != nil {
			lbls = p.Labels.FromPath(path)
		}
		outputPath = p.outputPathFor(path)
		if err := WriteResult(outputPath, res, lbls); err != nil {
			p.Logger.Error("failed to persist result", "path", path, "error", err)
			res = extract.ExtractionResult{
				SourceFile:   res.SourceFile,
				Success:      false,
				ErrorMessage: "persist result: " + err.Error(),
			}
			outputPath = ""
		}
	}

	p.record(ctx, batchID, path, outputPath, res)
	return res
}

func (p *Processor) record(ctx context.Context, batchID uuid.UUID, path, outputPath string, res extract.ExtractionResult) {
	if p.Catalog == nil {
		return
	}
	_, err := p.Catalog.Record(ctx, repository.RunRecord{
		BatchID:       batchID,
		SourcePath:    path,
		SourceFile:    res.SourceFile,
		OutputPath:    outputPath,
		Success:       res.Success,
		ContentLength: len(res.Content),
		ErrorMessage:  res.ErrorMessage,
	})
	if err != nil {
		p.Logger.Error("failed to record run", "path", path, "error", err)
	}
}

func (p *Processor) outputPathFor(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(p.OutputDir, stem+".json")
}

// reasonKey reduces an error message to a stable grouping key: its first
// colon-separated segment.
func reasonKey(msg string) string {
	if i := strings.IndexByte(msg, ':'); i > 0 {
		return strings.TrimSpace(msg[:i])
	}
	if msg == "" {
		return "unknown"
	}
	return msg
}
