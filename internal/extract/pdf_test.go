package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/doc-extract/internal/ocr"
)

const cleanSentence = "The annual audit confirmed that every regional office reported " +
	"complete and accurate figures for the period under review without material exceptions"

func writePDF(t *testing.T, name string, texts ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, buildPDF(texts...), 0o644))
	return path
}

func TestPDFExtract_Simple(t *testing.T) {
	path := writePDF(t, "simple.pdf", cleanSentence)

	x := NewPDFExtractor(Config{}, nil, nil)
	res := x.Extract(context.Background(), path)

	require.True(t, res.Success, "error: %s", res.ErrorMessage)
	assert.Equal(t, "simple.pdf", res.SourceFile)
	assert.Contains(t, res.Content, "annual audit")
}

func TestPDFExtract_SamplingOverThreshold(t *testing.T) {
	// 15 pages with a 10-page threshold: pages 1-5 and 11-15 survive with a
	// single omission marker between them.
	texts := make([]string, 15)
	for i := range texts {
		texts[i] = fmt.Sprintf("Page %d begins here. %s", i+1, cleanSentence)
	}
	path := writePDF(t, "large.pdf", texts...)

	x := NewPDFExtractor(Config{}, nil, nil)
	res := x.Extract(context.Background(), path)

	require.True(t, res.Success, "error: %s", res.ErrorMessage)
	assert.Contains(t, res.Content, "Page 1 begins")
	assert.Contains(t, res.Content, "Page 5 begins")
	assert.Contains(t, res.Content, "Page 11 begins")
	assert.Contains(t, res.Content, "Page 15 begins")
	assert.NotContains(t, res.Content, "Page 8 begins")
	assert.Equal(t, 1, strings.Count(res.Content, pdfOmissionMarker))
}

func TestPDFExtract_AtThresholdKeepsAll(t *testing.T) {
	texts := make([]string, 10)
	for i := range texts {
		texts[i] = fmt.Sprintf("Page %d. %s", i+1, cleanSentence)
	}
	path := writePDF(t, "exact.pdf", texts...)

	x := NewPDFExtractor(Config{}, nil, nil)
	res := x.Extract(context.Background(), path)

	require.True(t, res.Success)
	assert.Contains(t, res.Content, "Page 8.")
	assert.NotContains(t, res.Content, pdfOmissionMarker)
}

func TestPDFExtract_EmptyTextTriggersOCR(t *testing.T) {
	// Pages without text operators produce no native text; with OCR enabled
	// the engine is consulted and its output becomes the content.
	path := writePDF(t, "scan.pdf", "", "")

	fake := &fakeRecognizer{
		available: true,
		result:    ocr.Result{Text: "recovered scanned text", Success: true, PagesProcessed: 2},
	}
	cfg := Config{PDF: PDFConfig{OCREnabled: true, OCRMaxPages: 7}}
	x := NewPDFExtractor(cfg, fake, nil)
	res := x.Extract(context.Background(), path)

	require.True(t, res.Success, "error: %s", res.ErrorMessage)
	assert.Equal(t, "recovered scanned text", res.Content)
	assert.Equal(t, 1, fake.recognizeCalls)
	assert.Equal(t, 7, fake.lastMaxPages)
}

func TestPDFExtract_EmptyTextNoOCRFails(t *testing.T) {
	// No text and no OCR path: success-with-empty-content normalizes to a
	// failure, never an empty success.
	path := writePDF(t, "scan.pdf", "")

	x := NewPDFExtractor(Config{}, nil, nil)
	res := x.Extract(context.Background(), path)

	assert.False(t, res.Success)
	assert.Contains(t, res.ErrorMessage, "empty content")
}

func TestPDFExtract_OCRFailureKeepsNative(t *testing.T) {
	path := writePDF(t, "doc.pdf", "short garbled")

	fake := &fakeRecognizer{
		available: true,
		result:    ocr.Result{Success: false, ErrorMessage: "no pages rendered"},
	}
	cfg := Config{PDF: PDFConfig{OCREnabled: true}}
	x := NewPDFExtractor(cfg, fake, nil)
	res := x.Extract(context.Background(), path)

	require.True(t, res.Success)
	assert.Equal(t, "short garbled", res.Content)
}

func TestPDFMaybeOCR_ReplacementPolicy(t *testing.T) {
	// OCR output replaces native text only when strictly longer after
	// trimming.
	cases := []struct {
		name    string
		native  string
		ocrText string
		want    string
	}{
		{"ocr longer wins", "ab", "a much longer recovered text", "a much longer recovered text"},
		{"ocr shorter loses", "ab cd ef", "x", "ab cd ef"},
		{"equal length loses", "abc", "xyz", "abc"},
		{"ocr whitespace only loses", "ab", "        ", "ab"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			fake := &fakeRecognizer{
				available: true,
				result:    ocr.Result{Text: c.ocrText, Success: true, PagesProcessed: 1},
			}
			cfg := Config{PDF: PDFConfig{OCREnabled: true}}
			x := NewPDFExtractor(cfg, fake, nil)

			got := x.maybeOCR(context.Background(), "in.pdf", "in.pdf", c.native, false)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestPDFMaybeOCR_GoodQualitySkipsEngine(t *testing.T) {
	fake := &fakeRecognizer{available: true, result: ocr.Result{Text: "x", Success: true}}
	cfg := Config{PDF: PDFConfig{OCREnabled: true}}
	x := NewPDFExtractor(cfg, fake, nil)

	native := strings.Repeat(cleanSentence+" ", 3)
	got := x.maybeOCR(context.Background(), "in.pdf", "in.pdf", native, false)

	assert.Equal(t, native, got)
	assert.Zero(t, fake.recognizeCalls, "good native text must not reach the engine")
}

func TestPDFExtract_Validation(t *testing.T) {
	dir := t.TempDir()
	x := NewPDFExtractor(Config{}, nil, nil)

	res := x.Extract(context.Background(), filepath.Join(dir, "missing.pdf"))
	assert.False(t, res.Success)
	assert.Contains(t, res.ErrorMessage, "file not found")

	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hello"), 0o644))
	res = x.Extract(context.Background(), txt)
	assert.False(t, res.Success)
	assert.Contains(t, res.ErrorMessage, "not .pdf")

	empty := filepath.Join(dir, "empty.pdf")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	res = x.Extract(context.Background(), empty)
	assert.False(t, res.Success)
	assert.Contains(t, res.ErrorMessage, "file is empty")
}

func TestPDFExtract_Cancelled(t *testing.T) {
	path := writePDF(t, "doc.pdf", cleanSentence)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	x := NewPDFExtractor(Config{}, nil, nil)
	res := x.Extract(ctx, path)
	assert.False(t, res.Success)
}
