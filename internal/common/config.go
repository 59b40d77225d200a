package common

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/joseph-ayodele/doc-extract/internal/extract"
	"github.com/joseph-ayodele/doc-extract/internal/ocr"
)

// Config holds all application configuration.
type Config struct {
	Extract extract.Config `mapstructure:"extract"`
	OCR     ocr.Config     `mapstructure:"ocr"`
	Catalog CatalogConfig  `mapstructure:"catalog"`
	Batch   BatchConfig    `mapstructure:"batch"`
	Log     LogConfig      `mapstructure:"log"`
}

// CatalogConfig holds run-catalog settings. An empty DSN disables the catalog.
type CatalogConfig struct {
	DSN string `mapstructure:"dsn"`
}

// BatchConfig holds directory-processing settings.
type BatchConfig struct {
	Workers   int    `mapstructure:"workers"`
	OutputDir string `mapstructure:"output_dir"`
	LabelFile string `mapstructure:"label_file"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration with defaults, an optional YAML file, and
// environment overrides with the DOCEXTRACT_ prefix. Pass an empty path to
// skip the file.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DOCEXTRACT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Extraction defaults
	v.SetDefault("extract.pdf.sample_threshold", 10)
	v.SetDefault("extract.pdf.sample_keep", 5)
	v.SetDefault("extract.pdf.ocr_enabled", true)
	v.SetDefault("extract.pdf.ocr_max_pages", 20)
	v.SetDefault("extract.docx.sample_threshold", 180)
	v.SetDefault("extract.docx.sample_keep", 90)
	v.SetDefault("extract.docx.ocr_enabled", true)
	v.SetDefault("extract.docx.ocr_max_pages", 20)
	v.SetDefault("extract.sheet.row_threshold", 1000)
	v.SetDefault("extract.sheet.row_keep", 500)
	v.SetDefault("extract.csv.char_budget", 30000)

	// Quality defaults
	v.SetDefault("extract.quality.min_text_length", 50)
	v.SetDefault("extract.quality.max_replacement_chars", 5)
	v.SetDefault("extract.quality.min_word_count", 10)
	v.SetDefault("extract.quality.max_replacement_ratio", 0.01)
	v.SetDefault("extract.quality.min_ascii_ratio", 0.8)
	v.SetDefault("extract.quality.ocr_trigger_score", 60)

	// OCR defaults
	v.SetDefault("ocr.pdftoppm", "pdftoppm")
	v.SetDefault("ocr.tesseract", "tesseract")
	v.SetDefault("ocr.languages", []string{"eng", "por"})
	v.SetDefault("ocr.render_scale", 2.0)
	v.SetDefault("ocr.page_timeout", "30s")
	v.SetDefault("ocr.max_pages", 20)
	v.SetDefault("ocr.min_confidence", 0.5)
	v.SetDefault("ocr.enable_tsv_confidence", false)
	v.SetDefault("ocr.tessdata_dir", "")
	v.SetDefault("ocr.psm", 0)
	v.SetDefault("ocr.oem", 0)

	// Catalog and batch defaults
	v.SetDefault("catalog.dsn", "")
	v.SetDefault("batch.workers", 4)
	v.SetDefault("batch.output_dir", "./output")
	v.SetDefault("batch.label_file", "")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, WrapError(err, "read config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, WrapError(err, "unmarshal config")
	}
	return &cfg, cfg.Validate()
}

// Validate checks the loaded configuration for values the pipeline cannot
// recover from at runtime.
func (c *Config) Validate() error {
	// Head and tail windows must not overlap, or sampling duplicates the
	// middle of the document.
	if 2*c.Extract.PDF.SampleKeep > c.Extract.PDF.SampleThreshold {
		return NewAppError("CONFIG_ERROR", "pdf sample_keep must not exceed half of sample_threshold", ErrInvalidInput)
	}
	if 2*c.Extract.Docx.SampleKeep > c.Extract.Docx.SampleThreshold {
		return NewAppError("CONFIG_ERROR", "docx sample_keep must not exceed half of sample_threshold", ErrInvalidInput)
	}
	if 2*c.Extract.Sheet.RowKeep > c.Extract.Sheet.RowThreshold {
		return NewAppError("CONFIG_ERROR", "sheet row_keep must not exceed half of row_threshold", ErrInvalidInput)
	}
	if c.Extract.CSV.CharBudget <= 0 {
		return NewAppError("CONFIG_ERROR", "csv char_budget must be positive", ErrInvalidInput)
	}
	if c.Batch.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "batch workers must be positive", ErrInvalidInput)
	}
	return nil
}
