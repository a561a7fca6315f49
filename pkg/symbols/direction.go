package symbols

import (
	"github.com/matzehuels/engraver/pkg/engine/model"
	"github.com/matzehuels/engraver/pkg/engine/registry"
	"github.com/matzehuels/engraver/pkg/errors"
)

const TagDirection = "direction"

// Placements.
const (
	PlacementAbove = "above"
	PlacementBelow = "below"
)

// Direction defaults.
const (
	DirectionAboveY  = 60.0
	DirectionBelowY  = -60.0
	DefaultFontSize  = 12.0
	DefaultFontStyle = "normal"
	DefaultFont      = "Go"
	textPadding      = 1.1
)

var segnoBox = model.BoundingBox{Left: -10, Right: 32, Top: 40, Bottom: -10}

// Words is a run of text in a direction.
type Words struct {
	Text       string  `json:"text" yaml:"text" mapstructure:"text"`
	FontFamily string  `json:"font_family,omitempty" yaml:"font_family,omitempty" mapstructure:"font_family"`
	FontSize   float64 `json:"font_size,omitempty" yaml:"font_size,omitempty" mapstructure:"font_size"`
	FontStyle  string  `json:"font_style,omitempty" yaml:"font_style,omitempty" mapstructure:"font_style"`
}

// Direction is text, a dynamic marking or a segno attached to a point in
// time. It occupies no horizontal space of its own.
type Direction struct {
	model.Base `mapstructure:",squash"`
	Placement  string  `mapstructure:"placement"`
	Words      []Words `mapstructure:"words"`
	Dynamics   string  `mapstructure:"dynamics"`
	Segno      bool    `mapstructure:"segno"`
}

// DirectionDetail holds the resolved placement.
type DirectionDetail struct {
	Placement string  `json:"placement" yaml:"placement"`
	Words     []Words `json:"words,omitempty" yaml:"words,omitempty"`
}

// NewDirection builds a direction from its spec.
func NewDirection(spec registry.Spec) (model.Symbol, error) {
	d := &Direction{Base: model.Base{Frozen: model.FrozenWarm}}
	if err := registry.Decode(spec, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Direction) Class() model.RenderClass { return model.ClassDirection }

// Validate places dynamics below the staff unless told otherwise.
func (d *Direction) Validate(c *model.Cursor) error {
	if d.Staff == 0 {
		d.Staff = 1
	}
	if d.Dynamics != "" && d.Placement == "" {
		d.Placement = PlacementBelow
	}
	return nil
}

func (d *Direction) Layout(c *model.Cursor) (model.Layout, error) {
	l := model.NewLayout(d, c)
	l.MergePolicy = model.MergeNone
	l.ExpandPolicy = model.ExpandNone

	switch d.Placement {
	case PlacementBelow:
		l.Y = DirectionBelowY
	case PlacementAbove, "":
		l.Y = DirectionAboveY
	default:
		return l, errors.Invariant("direction placement %q not implemented", d.Placement)
	}

	detail := &DirectionDetail{Placement: d.Placement}
	for _, w := range d.Words {
		w = withTextDefaults(w)
		detail.Words = append(detail.Words, w)
		l.BoundingBoxes = append(l.BoundingBoxes, textBox(c, w.FontFamily, w.Text, w.FontSize, w.FontStyle))
	}
	if d.Dynamics != "" {
		l.BoundingBoxes = append(l.BoundingBoxes, model.BoundingBox{Left: -10, Right: 30, Top: 10, Bottom: -30})
	}
	if d.Segno {
		l.BoundingBoxes = append(l.BoundingBoxes, segnoBox)
	}
	l.Detail = detail
	return l, nil
}

func withTextDefaults(w Words) Words {
	if w.FontFamily == "" {
		w.FontFamily = DefaultFont
	}
	if w.FontSize <= 0 {
		w.FontSize = DefaultFontSize
	}
	if w.FontStyle == "" {
		w.FontStyle = DefaultFontStyle
	}
	return w
}

// textBox measures text in points and converts it to a padded box in tenths.
func textBox(c *model.Cursor, family, text string, size float64, style string) model.BoundingBox {
	tb := c.MeasureText(family, text, size, style)
	conv := func(pt float64) float64 { return pt }
	if c.Header != nil {
		conv = c.Header.Scaling.PointsToTenths
	}
	return model.BoundingBox{
		Left:   conv(tb.Left) * textPadding,
		Right:  conv(tb.Right) * textPadding,
		Top:    conv(tb.Top) * textPadding,
		Bottom: conv(tb.Bottom) * textPadding,
	}
}
