package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/engraver/pkg/engine"
	"github.com/matzehuels/engraver/pkg/engine/model"
	"github.com/matzehuels/engraver/pkg/errors"
	"github.com/matzehuels/engraver/pkg/observability"
	"github.com/matzehuels/engraver/pkg/score"
)

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout lays out every line of s. metrics may be nil, in which case
// every text box is estimated.
func GenerateLayout(ctx context.Context, s *score.Score, metrics model.TextMetrics, opts Options) (*engine.Result, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	if opts.Fonts == FontsEstimate {
		metrics = nil
	}

	hooks := observability.Pipeline()
	measures := 0
	if s != nil {
		measures = len(s.Measures)
	}
	hooks.OnLayoutStart(ctx, measures)
	start := time.Now()

	e := engine.New(engine.Options{
		Metrics:          metrics,
		JustifyFinalLine: opts.JustifyFinalLine,
		Logger:           opts.Logger,
	})
	res, err := e.Layout(ctx, s)

	lines := 0
	if res != nil {
		lines = len(res.Lines)
	}
	hooks.OnLayoutComplete(ctx, lines, time.Since(start), err)
	if err != nil {
		if errors.IsFatal(err) {
			opts.Logger.Error("layout aborted", "code", errors.GetCode(err), "err", err)
		}
		return nil, err
	}
	return res, nil
}
