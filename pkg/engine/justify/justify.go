// Package justify stretches a line of measures to the full width between
// its bounds.
//
// Extra space is shared among expandable gaps: the space after every column
// whose layouts request ExpandAfter, up to the next column or the end of the
// measure. Every such gap is scaled by the same factor, so longer notes keep
// proportionally more room. Layouts at the same division move together and
// bounding boxes are never resized.
package justify

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/engraver/pkg/engine/line"
	"github.com/matzehuels/engraver/pkg/engine/measure"
	"github.com/matzehuels/engraver/pkg/engine/model"
)

// MinStretch is the smallest factor an overfull line is compressed by.
const MinStretch = 0.5

var _ line.Postprocessor = Justify

// Justify returns copies of layouts stretched to bounds. The final line keeps
// its natural spacing unless opts.JustifyFinalLine is set or it does not fit.
func Justify(opts *line.Options, bounds line.Bounds, layouts []*measure.MeasureLayout) ([]*measure.MeasureLayout, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	out := make([]*measure.MeasureLayout, len(layouts))
	natural := 0.0
	for i, ml := range layouts {
		out[i] = ml.Detach()
		natural += ml.Width
	}
	if len(out) == 0 {
		return out, nil
	}

	extra := bounds.Width() - natural
	final := opts.Line+1 == opts.Lines
	switch {
	case extra == 0:
	case final && extra > 0 && !opts.JustifyFinalLine:
	default:
		stretchable := 0.0
		for _, ml := range out {
			stretchable += expandable(ml)
		}
		if stretchable == 0 {
			if extra > 0 {
				per := extra / float64(len(out))
				for _, ml := range out {
					ml.Width += per
				}
			} else {
				logger.Warn("line overfull with nothing to compress", "line", opts.Line, "overflow", -extra)
			}
			break
		}
		f := 1 + extra/stretchable
		if f < MinStretch {
			logger.Warn("line overfull", "line", opts.Line, "overflow", -extra, "factor", f)
			f = MinStretch
		}
		for _, ml := range out {
			stretch(ml, f)
		}
	}

	left := bounds.Left
	for _, ml := range out {
		ml.OriginX = left
		left += ml.Width
	}
	return out, nil
}

// expandable sums the gaps of ml that may stretch.
func expandable(ml *measure.MeasureLayout) float64 {
	total := 0.0
	for i, e := range ml.Combined {
		if e.Expand {
			total += gapAfter(ml, i)
		}
	}
	return total
}

func gapAfter(ml *measure.MeasureLayout, i int) float64 {
	end := ml.Width
	if i+1 < len(ml.Combined) {
		end = ml.Combined[i+1].X
	}
	return max(end-ml.Combined[i].X, 0)
}

// stretch scales every expandable gap of ml by f.
func stretch(ml *measure.MeasureLayout, f float64) {
	n := len(ml.Combined)
	shifts := make([]float64, n)
	shift := 0.0
	for i := range ml.Combined {
		shifts[i] = shift
		if ml.Combined[i].Expand {
			shift += (f - 1) * gapAfter(ml, i)
		}
	}

	for _, seg := range ml.Elements {
		for j := range seg {
			seg[j].X += shiftAt(ml.Combined, shifts, seg[j].Division)
		}
	}
	for i := range ml.Combined {
		ml.Combined[i].X += shifts[i]
	}
	ml.Width += shift
}

// shiftAt is the shift of the last column at or before division.
func shiftAt(combined model.CombinedLayout, shifts []float64, division int) float64 {
	if i := combined.Index(division); i >= 0 {
		return shifts[i]
	}
	return 0
}
