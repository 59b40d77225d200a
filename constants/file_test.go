package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeExt(t *testing.T) {
	assert.Equal(t, "pdf", NormalizeExt(".PDF"))
	assert.Equal(t, "pdf", NormalizeExt("pdf"))
	assert.Equal(t, "xlsx", NormalizeExt(".xlsx"))
	assert.Equal(t, "", NormalizeExt(""))
}

func TestMapExtToFormat(t *testing.T) {
	assert.Equal(t, PDF, MapExtToFormat(".pdf"))
	assert.Equal(t, DOCX, MapExtToFormat("DOCX"))
	// The Excel family shares one format.
	assert.Equal(t, XLSX, MapExtToFormat(".xlsx"))
	assert.Equal(t, XLSX, MapExtToFormat(".xlsm"))
	assert.Equal(t, XLSX, MapExtToFormat(".xls"))
	assert.Equal(t, "", MapExtToFormat(".txt"))
}

func TestIsImageExt(t *testing.T) {
	assert.True(t, IsImageExt(".png"))
	assert.True(t, IsImageExt("JPEG"))
	assert.False(t, IsImageExt(".emf"), "vector formats are not OCR-able bitmaps")
	assert.False(t, IsImageExt(".pdf"))
}
