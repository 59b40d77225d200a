package extract

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/doc-extract/constants"
	"github.com/joseph-ayodele/doc-extract/internal/quality"
)

// DocxExtractor extracts text from Microsoft Word documents by reading
// word/document.xml from the ZIP archive. Body paragraphs are the sampling
// unit; table cell text is appended only when not sampling. OCR input is the
// set of images embedded under word/media, not page renders.
type DocxExtractor struct {
	cfg      DocxConfig
	analyzer *quality.Analyzer
	engine   Recognizer
	logger   *slog.Logger
}

// NewDocxExtractor creates a DOCX extractor. engine may be nil.
func NewDocxExtractor(cfg Config, engine Recognizer, logger *slog.Logger) *DocxExtractor {
	cfg.Defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &DocxExtractor{
		cfg:      cfg.Docx,
		analyzer: quality.NewAnalyzer(cfg.Quality, logger),
		engine:   engine,
		logger:   logger,
	}
}

func (x *DocxExtractor) Extract(ctx context.Context, path string) ExtractionResult {
	sourceFile := filepath.Base(path)

	if msg := validateFile(path, ".docx"); msg != "" {
		return errorResult(x.logger, sourceFile, msg)
	}

	content, err := readDocx(ctx, path)
	if err != nil {
		return errorResult(x.logger, sourceFile, fmt.Sprintf("docx extraction: %v", err))
	}

	var units []string
	if len(content.paragraphs) > x.cfg.SampleThreshold {
		x.logger.Info("sampling oversized docx",
			"source_file", sourceFile, "paragraphs", len(content.paragraphs), "keep", x.cfg.SampleKeep)
		units = sampleUnits(content.paragraphs, x.cfg.SampleThreshold, x.cfg.SampleKeep, docxOmissionMarker)
	} else {
		units = dropEmpty(content.paragraphs)
		units = append(units, dropEmpty(content.tableCells)...)
	}
	native := strings.Join(units, "\n\n")

	final := x.maybeOCR(ctx, path, sourceFile, native, content.images)

	x.logger.Info("docx extracted",
		"source_file", sourceFile, "paragraphs", len(content.paragraphs),
		"table_cells", len(content.tableCells), "chars", len(final))
	return successResult(sourceFile, final)
}

func (x *DocxExtractor) maybeOCR(ctx context.Context, path, sourceFile, native string, images []string) string {
	if !x.cfg.OCREnabled || x.engine == nil || len(images) == 0 {
		return native
	}
	if native != "" && !x.analyzer.NeedsOCR(native) {
		return native
	}
	x.logger.Info("running OCR over embedded images",
		"source_file", sourceFile, "images", len(images))

	paths, cleanup, err := extractArchiveImages(path, images, x.cfg.OCRMaxPages)
	if err != nil {
		x.logger.Warn("could not extract embedded images for OCR",
			"source_file", sourceFile, "error", err)
		return native
	}
	defer cleanup()

	res := x.engine.RecognizeImages(ctx, paths, x.cfg.OCRMaxPages)
	if !res.Success {
		x.logger.Warn("OCR could not improve result, keeping native text",
			"source_file", sourceFile, "error", res.ErrorMessage)
		return native
	}
	if trimmedLen(res.Text) > trimmedLen(native) {
		x.logger.Info("OCR output accepted",
			"source_file", sourceFile, "pages_processed", res.PagesProcessed)
		return res.Text
	}
	return native
}

// docxContent is the parsed native representation of one document.
type docxContent struct {
	paragraphs []string // body paragraphs, outside any table
	tableCells []string // text of non-empty table cells
	images     []string // archive member names under word/media
}

// readDocx streams word/document.xml, splitting paragraph text by table
// membership, and lists embedded image members.
func readDocx(ctx context.Context, path string) (docxContent, error) {
	var content docxContent

	r, err := zip.OpenReader(path)
	if err != nil {
		return content, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
		}
		if strings.HasPrefix(f.Name, "word/media/") && isImageMember(f.Name) {
			content.images = append(content.images, f.Name)
		}
	}
	if docFile == nil {
		return content, fmt.Errorf("word/document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return content, fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var currentText strings.Builder
	inParagraph := false
	inTextRun := false
	tableDepth := 0

	for {
		if err := ctx.Err(); err != nil {
			return content, err
		}
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return content, fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
			case "p":
				inParagraph = true
				currentText.Reset()
			case "t":
				inTextRun = inParagraph
			case "tab":
				if inParagraph {
					currentText.WriteByte('\t')
				}
			case "br":
				if inParagraph {
					currentText.WriteByte('\n')
				}
			}

		case xml.CharData:
			if inTextRun {
				currentText.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				if tableDepth > 0 {
					tableDepth--
				}
			case "t":
				inTextRun = false
			case "p":
				if !inParagraph {
					continue
				}
				inParagraph = false
				text := strings.TrimSpace(currentText.String())
				if tableDepth > 0 {
					if text != "" {
						content.tableCells = append(content.tableCells, text)
					}
				} else {
					// Keep empty body paragraphs: the sampling threshold
					// counts document paragraphs, not just non-empty ones.
					content.paragraphs = append(content.paragraphs, text)
				}
			}
		}
	}

	return content, nil
}

func isImageMember(name string) bool {
	// Vector formats (emf/wmf) are skipped: they are not OCR-able bitmaps.
	return constants.IsImageExt(filepath.Ext(name))
}

// extractArchiveImages copies up to max image members to temp files and
// returns their paths plus a cleanup that always removes them.
func extractArchiveImages(path string, members []string, max int) ([]string, func(), error) {
	if max > 0 && len(members) > max {
		members = members[:max]
	}

	tmpDir, err := os.MkdirTemp("", "docx-media-*")
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }

	r, err := zip.OpenReader(path)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	defer r.Close()

	byName := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		byName[f.Name] = f
	}

	var paths []string
	for i, name := range members {
		f, ok := byName[name]
		if !ok {
			continue
		}
		out := filepath.Join(tmpDir, fmt.Sprintf("img-%d%s", i, strings.ToLower(filepath.Ext(name))))
		if err := copyZipMember(f, out); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("extract %s: %w", name, err)
		}
		paths = append(paths, out)
	}
	return paths, cleanup, nil
}

func copyZipMember(f *zip.File, dst string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	w, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer w.Close()

	_, err = io.Copy(w, rc)
	return err
}
