// Package labels infers domain/category labels for a document from its
// parent and grandparent path segments, validated against a configured
// domain table.
package labels

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// tableSchema constrains the domain table file: an object mapping domain
// names to non-empty category lists.
const tableSchema = `{
	"type": "object",
	"minProperties": 1,
	"additionalProperties": {
		"type": "array",
		"minItems": 1,
		"items": {"type": "string", "minLength": 1}
	}
}`

// Labels are the path-inferred classification attached to a result.
type Labels struct {
	Domain   string `json:"domain"`
	Category string `json:"category"`
}

// Table holds the validated domain -> categories mapping.
type Table struct {
	domains map[string]map[string]struct{}
	logger  *slog.Logger
}

// LoadTable reads and validates a domain table JSON file. The file layout
// is {"domain": ["category", ...], ...}; anything else is rejected before
// any lookup can happen.
func LoadTable(path string, logger *slog.Logger) (*Table, error) {
	if logger == nil {
		logger = slog.Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read label table: %w", err)
	}
	if err := validateTable(data); err != nil {
		return nil, fmt.Errorf("label table %s: %w", path, err)
	}

	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse label table: %w", err)
	}

	t := &Table{domains: make(map[string]map[string]struct{}, len(raw)), logger: logger}
	for domain, categories := range raw {
		set := make(map[string]struct{}, len(categories))
		for _, c := range categories {
			set[c] = struct{}{}
		}
		t.domains[domain] = set
	}
	return t, nil
}

func validateTable(data []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("labels-schema.json", bytes.NewReader([]byte(tableSchema))); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("labels-schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal table: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("table does not match schema: %w", err)
	}
	return nil
}

// FromPath derives labels from the file's parent (category) and grandparent
// (domain) directories. Returns nil when the structure does not line up
// with the table; inference is best-effort, never an error.
func (t *Table) FromPath(path string) *Labels {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	parent := filepath.Dir(abs)
	grandparent := filepath.Dir(parent)

	category := filepath.Base(parent)
	domain := filepath.Base(grandparent)
	if category == "." || category == string(filepath.Separator) ||
		domain == "." || domain == string(filepath.Separator) {
		return nil
	}

	categories, ok := t.domains[domain]
	if !ok {
		t.logger.Debug("unknown label domain", "domain", domain, "path", path)
		return nil
	}
	if _, ok := categories[category]; !ok {
		t.logger.Debug("unknown label category", "domain", domain, "category", category, "path", path)
		return nil
	}
	return &Labels{Domain: domain, Category: category}
}
