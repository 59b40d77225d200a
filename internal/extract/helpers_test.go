package extract

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joseph-ayodele/doc-extract/internal/ocr"
)

// fakeRecognizer stands in for the OCR engine in extractor tests.
type fakeRecognizer struct {
	mu        sync.Mutex
	available bool
	result    ocr.Result

	recognizeCalls int
	imageCalls     int
	lastMaxPages   int
	lastImages     []string
	imagesExisted  bool
}

func (f *fakeRecognizer) IsAvailable() bool { return f.available }

func (f *fakeRecognizer) Recognize(_ context.Context, _ string, maxPages int) ocr.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recognizeCalls++
	f.lastMaxPages = maxPages
	return f.result
}

func (f *fakeRecognizer) RecognizeImages(_ context.Context, paths []string, maxPages int) ocr.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imageCalls++
	f.lastMaxPages = maxPages
	f.lastImages = append([]string(nil), paths...)
	f.imagesExisted = len(paths) > 0
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			f.imagesExisted = false
		}
	}
	return f.result
}

// buildPDF creates a valid multi-page PDF with proper xref offsets; each
// entry in texts becomes one page's content. An empty string yields a page
// with no text operators.
func buildPDF(texts ...string) []byte {
	n := len(texts)

	var kids []string
	for i := 0; i < n; i++ {
		kids = append(kids, fmt.Sprintf("%d 0 R", 3+2*i))
	}
	fontObj := 3 + 2*n
	size := fontObj + 1

	var b strings.Builder
	offsets := make([]int, size)

	b.WriteString("%PDF-1.4\n")

	offsets[1] = b.Len()
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	offsets[2] = b.Len()
	fmt.Fprintf(&b, "2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n",
		strings.Join(kids, " "), n)

	for i, text := range texts {
		pageObj := 3 + 2*i
		contentObj := pageObj + 1

		offsets[pageObj] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents %d 0 R /Resources << /Font << /F1 %d 0 R >> >> >>\nendobj\n",
			pageObj, contentObj, fontObj)

		stream := "BT\nET"
		if text != "" {
			escaped := strings.ReplaceAll(text, `\`, `\\`)
			escaped = strings.ReplaceAll(escaped, "(", `\(`)
			escaped = strings.ReplaceAll(escaped, ")", `\)`)
			stream = "BT\n/F1 12 Tf\n72 720 Td\n(" + escaped + ") Tj\nET"
		}

		offsets[contentObj] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n",
			contentObj, len(stream), stream)
	}

	offsets[fontObj] = b.Len()
	fmt.Fprintf(&b, "%d 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n", fontObj)

	xrefOffset := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", size)
	b.WriteString("0000000000 65535 f \n")
	for i := 1; i < size; i++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", size, xrefOffset)

	return []byte(b.String())
}
