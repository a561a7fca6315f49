// Package pipeline runs a score document through parse → layout → export.
//
// The CLI and the HTTP server both go through a Runner so that caching,
// validation and instrumentation behave the same everywhere.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: decode a score document and build measures from the symbol registry
//  2. Layout: lay out every line with the engine, justification included
//  3. Export: encode the positioned elements as JSON or YAML
//
// Each stage can be run on its own. The runner caches the laid-out document
// under the hash of the input bytes, and each encoding of it separately.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, data, pipeline.Options{
//	    InputFormat:  scorefile.FormatYAML,
//	    OutputFormat: export.FormatJSON,
//	})
//	if err != nil {
//	    return err
//	}
//	os.Stdout.Write(result.Output)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/engraver/pkg/cache"
	"github.com/matzehuels/engraver/pkg/export"
	"github.com/matzehuels/engraver/pkg/scorefile"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// Font sources.
const (
	// FontsBuiltin measures text with the bundled Go fonts.
	FontsBuiltin = "builtin"

	// FontsEstimate skips font loading and estimates every text box.
	FontsEstimate = "estimate"
)

const (
	// DefaultFonts is the default font source.
	DefaultFonts = FontsBuiltin

	// DefaultOutputFormat is the default export encoding.
	DefaultOutputFormat = export.FormatJSON

	// Version is folded into layout cache keys. Bump it when layout output
	// changes for the same input.
	Version = "1"
)

// ValidFonts is the set of supported font sources.
var ValidFonts = map[string]bool{
	FontsBuiltin:  true,
	FontsEstimate: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Parse options
	InputFormat scorefile.Format `json:"input_format"`

	// Layout options
	JustifyFinalLine bool   `json:"justify_final_line,omitempty"`
	Fonts            string `json:"fonts,omitempty"`

	// Export options
	OutputFormat export.Format `json:"output_format,omitempty"`

	// Refresh skips cache reads. Results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// ScoreHash is the content hash of the input document.
	ScoreHash string

	// Layout is the exported layout document.
	Layout *export.Layout

	// Output is Layout encoded in the requested format.
	Output []byte

	// Approximate is set when some text was measured without its font.
	// Approximate results from FontsBuiltin are not cached.
	Approximate bool

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Measures   int
	Lines      int
	Elements   int
	ParseTime  time.Duration
	LayoutTime time.Duration
	ExportTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout document came from cache
	ExportHit bool // Whether the encoded output came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFonts checks that a font source is valid.
func ValidateFonts(fonts string) error {
	if !ValidFonts[fonts] {
		return fmt.Errorf("invalid fonts: %q (must be one of: builtin, estimate)", fonts)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForExport(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks the input format.
func (o *Options) ValidateForParse() error {
	if o.InputFormat == "" {
		return fmt.Errorf("input_format is required")
	}
	f, err := scorefile.ParseFormat(string(o.InputFormat))
	if err != nil {
		return err
	}
	o.InputFormat = f
	o.setLogger()
	return nil
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	if o.Fonts == "" {
		o.Fonts = DefaultFonts
	}
	o.setLogger()
	return ValidateFonts(o.Fonts)
}

// ValidateForExport validates and sets defaults for export.
func (o *Options) ValidateForExport() error {
	f, err := export.ParseFormat(string(o.OutputFormat))
	if err != nil {
		return err
	}
	o.OutputFormat = f
	o.setLogger()
	return nil
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		JustifyFinalLine: o.JustifyFinalLine,
		Fonts:            o.Fonts,
		Version:          Version,
	}
}

// ExportKeyOpts returns cache key options for an encoding.
func (o *Options) ExportKeyOpts() cache.ExportKeyOpts {
	return cache.ExportKeyOpts{Format: string(o.OutputFormat)}
}
