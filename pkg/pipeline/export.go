package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/matzehuels/engraver/pkg/export"
	"github.com/matzehuels/engraver/pkg/observability"
)

// =============================================================================
// Export
// =============================================================================

// Encode writes l in the output format.
func Encode(ctx context.Context, l *export.Layout, opts Options) ([]byte, error) {
	if err := opts.ValidateForExport(); err != nil {
		return nil, err
	}
	format := string(opts.OutputFormat)
	hooks := observability.Pipeline()
	hooks.OnExportStart(ctx, format)
	start := time.Now()

	var buf bytes.Buffer
	err := export.Write(&buf, l, opts.OutputFormat)

	hooks.OnExportComplete(ctx, format, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// marshalLayout is the cached form of a layout document.
func marshalLayout(l *export.Layout) ([]byte, error) {
	var buf bytes.Buffer
	if err := export.Write(&buf, l, export.FormatJSON); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func unmarshalLayout(data []byte) (*export.Layout, error) {
	return export.Read(bytes.NewReader(data), export.FormatJSON)
}
