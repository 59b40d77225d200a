package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopExtractor struct{ id string }

func (n nopExtractor) Extract(context.Context, string) ExtractionResult {
	return ExtractionResult{SourceFile: n.id, Success: true, Content: n.id}
}

func TestRegistry_CaseInsensitiveDispatch(t *testing.T) {
	r := NewRegistry(nil)
	r.Register("pdf", func() (Extractor, error) { return nopExtractor{id: "pdf"}, nil })

	for _, path := range []string{"a.pdf", "b.PDF", "/tmp/c.Pdf"} {
		ex := r.Create(path)
		require.NotNil(t, ex, "path %s", path)
		assert.Equal(t, "pdf", ex.(nopExtractor).id)
		assert.True(t, r.IsSupported(path))
	}
}

func TestRegistry_UnknownExtension(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(".csv", func() (Extractor, error) { return nopExtractor{}, nil })

	assert.Nil(t, r.Create("notes.txt"))
	assert.Nil(t, r.Create("no-extension"))
	assert.False(t, r.IsSupported("image.png"))
}

func TestRegistry_FactoryFailureIsIsolated(t *testing.T) {
	r := NewRegistry(nil)
	r.Register("pdf", func() (Extractor, error) { return nil, errors.New("binary missing") })
	r.Register("csv", func() (Extractor, error) { return nopExtractor{id: "csv"}, nil })

	assert.Nil(t, r.Create("doc.pdf"), "failing factory yields nil, not a panic")
	assert.NotNil(t, r.Create("data.csv"), "other registrations keep working")
}

func TestRegistry_RegisterNormalizesDot(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(".XLSX", func() (Extractor, error) { return nopExtractor{}, nil })
	assert.True(t, r.IsSupported("report.xlsx"))
}

func TestRegistry_SupportedExtensionsSorted(t *testing.T) {
	r := NewRegistry(nil)
	for _, ext := range []string{"xlsx", "pdf", "csv", "docx"} {
		r.Register(ext, func() (Extractor, error) { return nopExtractor{}, nil })
	}
	assert.Equal(t, []string{"csv", "docx", "pdf", "xlsx"}, r.SupportedExtensions())
}

func TestDefaultRegistry_Coverage(t *testing.T) {
	r := DefaultRegistry(Config{}, nil, nil)

	for _, path := range []string{"a.pdf", "a.docx", "a.csv", "a.xlsx", "a.xlsm", "a.xls"} {
		assert.True(t, r.IsSupported(path), "path %s", path)
		assert.NotNil(t, r.Create(path), "path %s", path)
	}
	assert.False(t, r.IsSupported("a.txt"))

	// The Excel family shares one extractor type.
	assert.IsType(t, &XLSXExtractor{}, r.Create("a.xls"))
	assert.IsType(t, &XLSXExtractor{}, r.Create("a.xlsm"))
}
