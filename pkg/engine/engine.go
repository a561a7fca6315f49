// Package engine lays out whole scores.
//
// An Engine owns the layout memo, so laying out the same score again only
// recomputes measures whose version changed and lines that contain them. It
// is safe for concurrent use; passes are serialized.
//
// # Usage
//
//	eng := engine.New(engine.Options{Metrics: fonts})
//	res, err := eng.Layout(ctx, sc)
//	if err != nil {
//	    return err
//	}
//	for _, l := range res.Lines {
//	    // hand l.Measures to the renderer
//	}
//
// When text was measured before its font finished loading, the result is
// marked Approximate and the engine drops its memo once the fonts are ready,
// so the next pass measures again.
package engine

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/engraver/pkg/engine/justify"
	"github.com/matzehuels/engraver/pkg/engine/line"
	"github.com/matzehuels/engraver/pkg/engine/model"
	"github.com/matzehuels/engraver/pkg/errors"
	"github.com/matzehuels/engraver/pkg/header"
	"github.com/matzehuels/engraver/pkg/observability"
	"github.com/matzehuels/engraver/pkg/score"
)

// Readiness is implemented by text metrics that load fonts asynchronously.
type Readiness interface {
	Ready() bool
	WhenReady(cb func())
}

// Options configures an Engine.
type Options struct {
	// Metrics measures text. Nil estimates every text box.
	Metrics model.TextMetrics

	// Postprocessors run on every line. Nil means justification only.
	Postprocessors []line.Postprocessor

	// JustifyFinalLine stretches the final line like the others.
	JustifyFinalLine bool

	Logger *log.Logger
}

// Result is a laid-out score.
type Result struct {
	Header      *header.Header
	Bounds      line.Bounds
	Lines       []*line.LineLayout
	Stats       line.Stats
	Approximate bool
	Duration    time.Duration
}

// Engine lays out scores and caches what it can between passes.
type Engine struct {
	mu      sync.Mutex
	memo    *line.Memo
	opts    Options
	logger  *log.Logger
	waiting atomic.Bool
}

// New returns an engine with an empty memo.
func New(opts Options) *Engine {
	if opts.Postprocessors == nil {
		opts.Postprocessors = []line.Postprocessor{justify.Justify}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{memo: line.NewMemo(), opts: opts, logger: logger}
}

// Layout lays out every line of s. Measures are reused from earlier passes
// while their version is unchanged.
func (e *Engine) Layout(ctx context.Context, s *score.Score) (*Result, error) {
	if s == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no score")
	}
	h := s.Header
	if h == nil {
		h = header.Default()
	}
	start := time.Now()
	hooks := observability.Engine()
	fonts, async := e.opts.Metrics.(Readiness)
	loading := async && !fonts.Ready()

	res, err := func() (*Result, error) {
		e.mu.Lock()
		defer e.mu.Unlock()

		res := &Result{Header: h, Bounds: line.CalculateBounds(h)}
		e.memo.Reset(-(h.Page.Margins.Top + h.System.TopSystemDistance))

		lines := s.LineMeasures()
		var attrs map[string]*model.Attributes
		for i, measures := range lines {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			lineStart := time.Now()
			hitsBefore := e.memo.Stats().LineHits
			var next *score.Measure
			if i+1 < len(lines) && len(lines[i+1]) > 0 {
				next = lines[i+1][0]
			}
			ll, err := line.Layout(&line.Options{
				Header:           h,
				Measures:         measures,
				Attributes:       attrs,
				Line:             i,
				Lines:            len(lines),
				Next:             next,
				Metrics:          e.opts.Metrics,
				Postprocessors:   e.opts.Postprocessors,
				JustifyFinalLine: e.opts.JustifyFinalLine,
				Logger:           e.logger,
			}, e.memo)
			if err != nil {
				return nil, err
			}
			cached := e.memo.Stats().LineHits > hitsBefore
			hooks.OnLine(ctx, i, len(measures), cached, time.Since(lineStart))

			attrs = ll.Attributes
			res.Lines = append(res.Lines, ll)
			res.Approximate = res.Approximate || ll.Approximate
		}
		res.Stats = e.memo.Stats()
		return res, nil
	}()
	if err != nil {
		return nil, err
	}
	res.Duration = time.Since(start)

	// Text estimated while loads were pending is measured again once they
	// settle. With nothing pending the missing fonts are not coming.
	if res.Approximate && async && (loading || !fonts.Ready()) {
		e.refreshWhenReady(fonts)
	}
	e.logger.Debug("score laid out", "lines", len(res.Lines), "measures", len(s.Measures), "approximate", res.Approximate, "duration", res.Duration)
	return res, nil
}

// refreshWhenReady drops the memo once pending fonts have loaded, or now if
// they finished during the pass. It must not be called with e.mu held.
func (e *Engine) refreshWhenReady(r Readiness) {
	if r.Ready() {
		e.clear("fonts ready")
		return
	}
	if !e.waiting.CompareAndSwap(false, true) {
		return
	}
	r.WhenReady(func() {
		e.waiting.Store(false)
		e.clear("fonts ready")
	})
}

// Invalidate drops the cached layout of one measure.
func (e *Engine) Invalidate(id uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.memo.Invalidate(id)
}

// Reset drops every cached layout.
func (e *Engine) Reset() {
	e.clear("reset")
}

func (e *Engine) clear(reason string) {
	e.mu.Lock()
	e.memo.Clear()
	e.mu.Unlock()
	observability.Engine().OnMemoCleared(reason)
	e.logger.Debug("layout memo cleared", "reason", reason)
}

// Stats returns memo lookup counts.
func (e *Engine) Stats() line.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.memo.Stats()
}

// Cached reports how many measures and lines are cached.
func (e *Engine) Cached() (measures, lines int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.memo.Len()
}
