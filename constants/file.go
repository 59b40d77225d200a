package constants

import "strings"

// Format identifies a supported document family.
const (
	PDF  = "PDF"
	DOCX = "DOCX"
	CSV  = "CSV"
	XLSX = "XLSX"
)

// Formats holds the allowed format values recorded for extraction runs.
var Formats = []string{PDF, DOCX, CSV, XLSX}

// extToFormat maps normalized extensions to a document format.
// .xlsm and legacy .xls route to the XLSX extractor.
var extToFormat = map[string]string{
	"pdf":  PDF,
	"docx": DOCX,
	"csv":  CSV,
	"xlsx": XLSX,
	"xlsm": XLSX,
	"xls":  XLSX,
}

// imageExts holds extensions of archive members treated as OCR-able images.
var imageExts = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
	"bmp":  {},
	"tif":  {},
	"tiff": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns the document format for an extension, or "" if
// the extension is not supported.
func MapExtToFormat(ext string) string {
	return extToFormat[NormalizeExt(ext)]
}

// IsImageExt reports whether the extension names an image type.
func IsImageExt(ext string) bool {
	_, ok := imageExts[NormalizeExt(ext)]
	return ok
}
