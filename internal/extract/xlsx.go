package extract

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXExtractor extracts text from Excel workbooks (.xlsx/.xlsm; legacy
// .xls routes here too and surfaces the library's error). All sheets are
// iterated; each non-empty row becomes one line labeled with its 1-based
// row index, and multi-sheet files prefix each sheet's content with a sheet
// marker. Oversized workbooks use row-count head/tail sampling with the
// first row always retained.
type XLSXExtractor struct {
	cfg    SheetConfig
	logger *slog.Logger
}

// NewXLSXExtractor creates an Excel extractor.
func NewXLSXExtractor(cfg Config, logger *slog.Logger) *XLSXExtractor {
	cfg.Defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXExtractor{cfg: cfg.Sheet, logger: logger}
}

func (x *XLSXExtractor) Extract(ctx context.Context, path string) ExtractionResult {
	sourceFile := filepath.Base(path)

	if msg := validateFile(path, ".xlsx", ".xlsm", ".xls"); msg != "" {
		return errorResult(x.logger, sourceFile, msg)
	}

	units, err := readWorkbookRows(ctx, path)
	if err != nil {
		return errorResult(x.logger, sourceFile, fmt.Sprintf("xlsx extraction: %v", err))
	}

	if len(units) > x.cfg.RowThreshold {
		x.logger.Info("sampling oversized workbook",
			"source_file", sourceFile, "rows", len(units), "keep", x.cfg.RowKeep)
		// The header row sits inside the head set, so it survives sampling.
		units = sampleUnits(units, x.cfg.RowThreshold, x.cfg.RowKeep, rowOmissionMarker)
	}
	content := strings.Join(units, "\n")

	x.logger.Info("workbook extracted", "source_file", sourceFile, "chars", len(content))
	return successResult(sourceFile, content)
}

// readWorkbookRows returns one labeled line per non-empty row across all
// sheets. Row labels carry the 1-based row index for traceability.
func readWorkbookRows(ctx context.Context, path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	multiSheet := len(sheets) > 1

	var units []string
	for _, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", sheet, err)
		}

		var sheetUnits []string
		for i, row := range rows {
			var cells []string
			for _, cell := range row {
				if c := strings.TrimSpace(cell); c != "" {
					cells = append(cells, c)
				}
			}
			if len(cells) == 0 {
				continue
			}
			sheetUnits = append(sheetUnits, fmt.Sprintf("%d: %s", i+1, strings.Join(cells, " ")))
		}
		if len(sheetUnits) == 0 {
			continue
		}
		if multiSheet {
			units = append(units, fmt.Sprintf("[Sheet: %s]", sheet))
		}
		units = append(units, sheetUnits...)
	}
	return units, nil
}
