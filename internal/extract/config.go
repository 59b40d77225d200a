package extract

import "github.com/joseph-ayodele/doc-extract/internal/quality"

// PDFConfig configures the PDF extractor.
type PDFConfig struct {
	// SampleThreshold is the page count above which head/tail sampling
	// activates; SampleKeep pages are retained from each end.
	SampleThreshold int  `mapstructure:"sample_threshold"`
	SampleKeep      int  `mapstructure:"sample_keep"`
	OCREnabled      bool `mapstructure:"ocr_enabled"`
	OCRMaxPages     int  `mapstructure:"ocr_max_pages"`
}

// DocxConfig configures the DOCX extractor. Sampling counts body
// paragraphs; embedded archive images are the OCR input.
type DocxConfig struct {
	SampleThreshold int  `mapstructure:"sample_threshold"`
	SampleKeep      int  `mapstructure:"sample_keep"`
	OCREnabled      bool `mapstructure:"ocr_enabled"`
	OCRMaxPages     int  `mapstructure:"ocr_max_pages"`
}

// SheetConfig configures the XLSX extractor: row-count sampling with the
// header row always retained.
type SheetConfig struct {
	RowThreshold int `mapstructure:"row_threshold"`
	RowKeep      int `mapstructure:"row_keep"`
}

// CSVConfig configures the CSV extractor: cumulative character-budget
// sampling split evenly between head and tail.
type CSVConfig struct {
	CharBudget int `mapstructure:"char_budget"`
}

// Config bundles the per-format extractor profiles plus the shared quality
// thresholds. Resolved once at process start; a single extraction call uses
// exactly one resolved configuration.
type Config struct {
	PDF     PDFConfig          `mapstructure:"pdf"`
	Docx    DocxConfig         `mapstructure:"docx"`
	Sheet   SheetConfig        `mapstructure:"sheet"`
	CSV     CSVConfig          `mapstructure:"csv"`
	Quality quality.Thresholds `mapstructure:"quality"`
}

// Defaults fills zero fields with the standard profile.
func (c *Config) Defaults() {
	if c.PDF.SampleThreshold <= 0 {
		c.PDF.SampleThreshold = 10
	}
	if c.PDF.SampleKeep <= 0 {
		c.PDF.SampleKeep = 5
	}
	if c.PDF.OCRMaxPages <= 0 {
		c.PDF.OCRMaxPages = 20
	}
	if c.Docx.SampleThreshold <= 0 {
		c.Docx.SampleThreshold = 180
	}
	if c.Docx.SampleKeep <= 0 {
		c.Docx.SampleKeep = 90
	}
	if c.Docx.OCRMaxPages <= 0 {
		c.Docx.OCRMaxPages = 20
	}
	if c.Sheet.RowThreshold <= 0 {
		c.Sheet.RowThreshold = 1000
	}
	if c.Sheet.RowKeep <= 0 {
		c.Sheet.RowKeep = 500
	}
	if c.CSV.CharBudget <= 0 {
		c.CSV.CharBudget = 30000
	}
}
