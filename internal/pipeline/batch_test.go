package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/doc-extract/internal/extract"
	"github.com/joseph-ayodele/doc-extract/internal/repository"
)

// stubExtractor returns a scripted result regardless of input.
type stubExtractor struct {
	succeed bool
	errMsg  string
}

func (s stubExtractor) Extract(_ context.Context, path string) extract.ExtractionResult {
	if !s.succeed {
		return extract.ExtractionResult{
			SourceFile:   filepath.Base(path),
			Success:      false,
			ErrorMessage: s.errMsg,
		}
	}
	return extract.ExtractionResult{
		SourceFile: filepath.Base(path),
		Content:    "content of " + filepath.Base(path),
		Success:    true,
	}
}

func stubRegistry() *extract.Registry {
	r := extract.NewRegistry(nil)
	r.Register("csv", func() (extract.Extractor, error) {
		return stubExtractor{succeed: true}, nil
	})
	r.Register("pdf", func() (extract.Extractor, error) {
		return stubExtractor{succeed: false, errMsg: "pdf extraction: unreadable"}, nil
	})
	return r
}

func seedTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
	}
}

func TestProcessDirectory_MixedOutcomes(t *testing.T) {
	root := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "out")
	seedTree(t, root,
		"a.csv",
		"sub/b.csv",
		"broken.pdf",
		"notes.txt",   // unsupported: skipped, not failed
		"README",      // no extension
		".git/config", // hidden dir pruned
	)

	p := NewProcessor(stubRegistry(), outDir, nil)
	p.Workers = 2

	sum, err := p.ProcessDirectory(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 5, sum.Scanned, "hidden dirs are pruned before scanning")
	assert.Equal(t, 2, sum.Skipped)
	assert.Equal(t, 3, sum.Processed)
	assert.Equal(t, 2, sum.Succeeded)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 1, sum.FailureReasons["pdf extraction"])

	// Successful extractions landed as JSON, the failure did not.
	for _, want := range []string{"a.json", "b.json"} {
		_, statErr := os.Stat(filepath.Join(outDir, want))
		assert.NoError(t, statErr, "expected output %s", want)
	}
	_, statErr := os.Stat(filepath.Join(outDir, "broken.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestProcessDirectory_RecordsToCatalog(t *testing.T) {
	root := t.TempDir()
	seedTree(t, root, "a.csv", "broken.pdf")

	catalog, err := repository.Open(":memory:", nil)
	require.NoError(t, err)
	defer catalog.Close()

	p := NewProcessor(stubRegistry(), filepath.Join(t.TempDir(), "out"), nil)
	p.Catalog = catalog

	sum, err := p.ProcessDirectory(context.Background(), root)
	require.NoError(t, err)

	dbSum, err := catalog.Summarize(context.Background(), sum.BatchID)
	require.NoError(t, err)
	assert.Equal(t, repository.BatchSummary{Total: 2, Succeeded: 1, Failed: 1}, dbSum)

	failures, err := catalog.Failures(context.Background(), sum.BatchID)
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, "broken.pdf", failures[0].SourceFile)
}

func TestProcessDirectory_EmptyTree(t *testing.T) {
	p := NewProcessor(stubRegistry(), filepath.Join(t.TempDir(), "out"), nil)

	sum, err := p.ProcessDirectory(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Zero(t, sum.Scanned)
	assert.Zero(t, sum.Processed)
}

func TestProcessDirectory_OneBadFileDoesNotAbort(t *testing.T) {
	root := t.TempDir()
	seedTree(t, root, "1.csv", "2.pdf", "3.csv", "4.pdf", "5.csv")

	p := NewProcessor(stubRegistry(), filepath.Join(t.TempDir(), "out"), nil)
	p.Workers = 3

	sum, err := p.ProcessDirectory(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 5, sum.Processed)
	assert.Equal(t, 3, sum.Succeeded)
	assert.Equal(t, 2, sum.Failed)
}

func TestReasonKey(t *testing.T) {
	assert.Equal(t, "pdf extraction", reasonKey("pdf extraction: pdfcpu read: broken xref"))
	assert.Equal(t, "file not found", reasonKey("file not found"))
	assert.Equal(t, "unknown", reasonKey(""))
}
