package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kiwiproto/kiwi-go/pkg/schema"
)

// Extractor extracts Kiwi schemas from Go packages.
type Extractor struct {
	loader   *PackageLoader
	warnings []string
}

// NewExtractor creates a schema extractor.
func NewExtractor() *Extractor {
	return &Extractor{loader: NewPackageLoader()}
}

// ExtractorConfig configures the extraction process.
type ExtractorConfig struct {
	Config     *Config  // Type collector configuration
	Patterns   []string // Go package patterns to load
	OutputPath string   // Output file path (empty for stdout)
}

// Warnings returns the warnings generated by the last Extract call.
func (e *Extractor) Warnings() []string { return e.warnings }

// Extract loads the Go packages named by cfg.Patterns, collects annotated
// types, and builds a validated Kiwi schema from them.
func (e *Extractor) Extract(cfg *ExtractorConfig) (*schema.Schema, error) {
	pkgs, err := e.loader.Load(cfg.Patterns)
	if err != nil {
		return nil, err
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("extract: no packages matched patterns: %v", cfg.Patterns)
	}

	collectorCfg := cfg.Config
	if collectorCfg == nil {
		collectorCfg = DefaultConfig()
	}
	collector := NewTypeCollector(pkgs, collectorCfg)
	if err := collector.Collect(); err != nil {
		return nil, err
	}

	builder := NewSchemaBuilder(collector.Types(), collector.Enums())
	s, err := builder.Build()
	e.warnings = builder.Warnings()
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ExtractAndWrite extracts a schema and writes it as .kiwi text to
// cfg.OutputPath, or stdout when the path is empty.
func (e *Extractor) ExtractAndWrite(cfg *ExtractorConfig) error {
	s, err := e.Extract(cfg)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if cfg.OutputPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.OutputPath), 0o755); err != nil {
			return fmt.Errorf("extract: create output directory: %w", err)
		}
		f, err := os.Create(cfg.OutputPath)
		if err != nil {
			return fmt.Errorf("extract: create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	return schema.NewWriter().WriteSchema(out, s)
}

// ExtractToString extracts a schema and returns it as .kiwi source text.
func ExtractToString(patterns []string, config *Config) (string, error) {
	extractor := NewExtractor()
	s, err := extractor.Extract(&ExtractorConfig{Config: config, Patterns: patterns})
	if err != nil {
		return "", err
	}
	return schema.FormatSchema(s), nil
}
