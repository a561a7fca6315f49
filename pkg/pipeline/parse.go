package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/matzehuels/engraver/pkg/engine/registry"
	"github.com/matzehuels/engraver/pkg/observability"
	"github.com/matzehuels/engraver/pkg/score"
	"github.com/matzehuels/engraver/pkg/scorefile"
)

// Parse decodes a score document and builds its measures.
func Parse(ctx context.Context, data []byte, reg *registry.Registry, opts Options) (*score.Score, error) {
	if err := opts.ValidateForParse(); err != nil {
		return nil, err
	}
	format := string(opts.InputFormat)
	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, format)
	start := time.Now()

	s, err := scorefile.Read(bytes.NewReader(data), opts.InputFormat, reg)

	measures := 0
	if s != nil {
		measures = len(s.Measures)
	}
	hooks.OnParseComplete(ctx, format, measures, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("parsed score", "format", format, "measures", measures, "parts", len(s.Header.PartList))
	return s, nil
}
