// Package line lays out one line of measures: it reuses or computes each
// measure's natural layout, stacks the staves of every part vertically,
// places the measures left to right and hands the result to the
// postprocessors (justification, typically).
//
// # Usage
//
//	memo := line.NewMemo()
//	memo.Reset(bounds.TopSystemDistance)
//	ll, err := line.Layout(&line.Options{
//	    Header:         h,
//	    Measures:       measures,
//	    Line:           0,
//	    Lines:          1,
//	    Postprocessors: []line.Postprocessor{justify.Justify},
//	}, memo)
//
// Calling Layout again with an unchanged memo and unchanged measures returns
// the same *LineLayout.
package line

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/engraver/pkg/engine/measure"
	"github.com/matzehuels/engraver/pkg/engine/model"
	"github.com/matzehuels/engraver/pkg/errors"
	"github.com/matzehuels/engraver/pkg/header"
	"github.com/matzehuels/engraver/pkg/score"
)

// StaffSeparation is the distance between the top lines of two adjacent
// staves, before padding.
const StaffSeparation = 100.0

// Bounds are the horizontal limits of a line and the vertical spacing
// between lines.
type Bounds struct {
	Left              float64 `json:"left" yaml:"left"`
	Right             float64 `json:"right" yaml:"right"`
	SystemDistance    float64 `json:"system_distance" yaml:"system_distance"`
	TopSystemDistance float64 `json:"top_system_distance" yaml:"top_system_distance"`
}

// Width is the space available to measures.
func (b Bounds) Width() float64 { return b.Right - b.Left }

// CalculateBounds derives line bounds from the page and system margins.
func CalculateBounds(h *header.Header) Bounds {
	return Bounds{
		Left:              h.Page.Margins.Left + h.System.Margins.Left,
		Right:             h.Page.Width - h.Page.Margins.Right - h.System.Margins.Right,
		SystemDistance:    h.System.SystemDistance,
		TopSystemDistance: h.System.TopSystemDistance,
	}
}

// Postprocessor transforms the measures of a finished line. It receives
// layouts it may modify freely and returns the layouts to keep.
type Postprocessor func(opts *Options, bounds Bounds, layouts []*measure.MeasureLayout) ([]*measure.MeasureLayout, error)

// Options configures one line.
type Options struct {
	Header   *header.Header
	Measures []*score.Measure

	// Attributes is the per-part snapshot in effect before the first
	// measure; nil means defaults.
	Attributes map[string]*model.Attributes

	Page  int
	Line  int
	Lines int

	// Next is the first measure of the following line, if any.
	Next *score.Measure

	Metrics        model.TextMetrics
	Postprocessors []Postprocessor

	// JustifyFinalLine stretches the final line to full width too.
	JustifyFinalLine bool

	Logger *log.Logger
}

// LineLayout is a finished line.
type LineLayout struct {
	Page     int                      `json:"page"`
	Line     int                      `json:"line"`
	Measures []*measure.MeasureLayout `json:"measures"`
	Bounds   Bounds                   `json:"bounds"`

	// Top is the y the line started at; Bottom is the y below its last
	// staff, before the system distance.
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Width  float64 `json:"width"`

	// Attributes is the snapshot after the last measure, for the next line.
	Attributes map[string]*model.Attributes `json:"-"`

	Approximate bool `json:"approximate,omitempty"`
}

// Layout lays out opts.Measures as one line and moves memo.Y below it.
func Layout(opts *Options, memo *Memo) (*LineLayout, error) {
	if memo == nil {
		memo = NewMemo()
	}
	h := opts.Header
	if h == nil {
		h = header.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	bounds := CalculateBounds(h)
	top := memo.Y

	if len(opts.Measures) == 0 {
		return &LineLayout{
			Page:       opts.Page,
			Line:       opts.Line,
			Bounds:     bounds,
			Top:        top,
			Bottom:     top,
			Attributes: opts.Attributes,
		}, nil
	}

	layouts, attrs, err := layoutMeasures(opts, h, memo, logger)
	if err != nil {
		return nil, err
	}

	// ========================================================================
	// Vertical stacking
	// ========================================================================

	y := memo.Y
	staffIdx := 0
	tops := make(map[string][]float64, len(h.PartList))
	for _, id := range h.PartIDs() {
		a := attrs[id]
		if a == nil || a.Staves < 1 {
			staves := 0
			if a != nil {
				staves = a.Staves
			}
			return nil, errors.Invariant("part %q has %d staves, expected at least 1", id, staves)
		}
		tops[id] = make([]float64, a.Staves+1)
		for s := 1; s <= a.Staves; s++ {
			staffIdx++
			if staffIdx > 1 {
				y -= StaffSeparation
			}
			var padTop, padBottom float64
			for _, ml := range layouts {
				padTop = max(padTop, at(ml.PaddingTop[id], s))
				padBottom = max(padBottom, at(ml.PaddingBottom[id], s))
			}
			t := y - padTop
			y = t - padBottom
			tops[id][s] = t
		}
	}
	bottom := y
	memo.Y = y - bounds.SystemDistance

	key := lineKey{page: opts.Page, line: opts.Line}
	post := postprocessing(opts)
	if cached := memo.lookupLine(key, top, bounds, opts.Lines, layouts, post); cached != nil {
		return cached, nil
	}

	// ========================================================================
	// Horizontal placement and postprocessing
	// ========================================================================

	detached := make([]*measure.MeasureLayout, len(layouts))
	left := bounds.Left
	for i, ml := range layouts {
		d := ml.Detach()
		d.OriginX = left
		d.OriginY = make(map[string][]float64, len(tops))
		for id, ys := range tops {
			d.OriginY[id] = append([]float64(nil), ys...)
		}
		left += d.Width
		detached[i] = d
	}

	result := detached
	for _, pp := range opts.Postprocessors {
		if result, err = pp(opts, bounds, result); err != nil {
			return nil, fmt.Errorf("line %d: %w", opts.Line, err)
		}
	}

	out := &LineLayout{
		Page:       opts.Page,
		Line:       opts.Line,
		Measures:   result,
		Bounds:     bounds,
		Top:        top,
		Bottom:     bottom,
		Attributes: attrs,
	}
	for _, ml := range result {
		out.Width += ml.Width
		out.Approximate = out.Approximate || ml.Approximate
	}
	memo.reduced[key] = &reducedEntry{
		top:     top,
		bounds:  bounds,
		lines:   opts.Lines,
		sources: layouts,
		post:    post,
		result:  out,
	}
	logger.Debug("line laid out", "page", opts.Page, "line", opts.Line, "measures", len(result), "width", out.Width)
	return out, nil
}

// layoutMeasures returns the clean layout of every measure on the line,
// chaining attributes from one measure to the next.
func layoutMeasures(opts *Options, h *header.Header, memo *Memo, logger *log.Logger) ([]*measure.MeasureLayout, map[string]*model.Attributes, error) {
	attrs := opts.Attributes
	layouts := make([]*measure.MeasureLayout, len(opts.Measures))
	for i, m := range opts.Measures {
		ctx := model.LineContext{
			Line:       opts.Line,
			Lines:      opts.Lines,
			BarOnLine:  i,
			BarsOnLine: len(opts.Measures),
		}
		var next *score.Measure
		if i == len(opts.Measures)-1 {
			next = opts.Next
		}
		ml := memo.lookupMeasure(m, ctx, attrs, next)
		if ml == nil {
			var err error
			ml, err = measure.Layout(measure.Options{
				Measure:    m,
				Header:     h,
				Attributes: attrs,
				Line:       ctx,
				Metrics:    opts.Metrics,
				Logger:     logger,
				Next:       next,
			})
			if err != nil {
				return nil, nil, fmt.Errorf("layout measure %s: %w", m.Number, err)
			}
			memo.storeMeasure(ml, ctx, attrs, next)
		}
		layouts[i] = ml
		attrs = ml.Attributes
	}
	return layouts, attrs, nil
}

func at(v []float64, i int) float64 {
	if i < len(v) {
		return v[i]
	}
	return 0
}
