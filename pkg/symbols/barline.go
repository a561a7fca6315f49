package symbols

import (
	"github.com/matzehuels/engraver/pkg/engine/model"
	"github.com/matzehuels/engraver/pkg/engine/registry"
	"github.com/matzehuels/engraver/pkg/errors"
)

const TagBarline = "barline"

// BarlineSeparation is the gap between the lines of a double barline.
const BarlineSeparation = 4.0

// Bar styles.
const (
	StyleRegular    = "regular"
	StyleDotted     = "dotted"
	StyleDashed     = "dashed"
	StyleHeavy      = "heavy"
	StyleLightLight = "light-light"
	StyleLightHeavy = "light-heavy"
	StyleHeavyLight = "heavy-light"
	StyleHeavyHeavy = "heavy-heavy"
	StyleTick       = "tick"
	StyleShort      = "short"
	StyleNone       = "none"
)

type lineWeight int

const (
	light lineWeight = iota
	heavy
)

var barStyles = map[string][]lineWeight{
	StyleRegular:    {light},
	StyleDotted:     {light},
	StyleDashed:     {light},
	StyleTick:       {light},
	StyleShort:      {light},
	StyleHeavy:      {heavy},
	StyleLightLight: {light, light},
	StyleLightHeavy: {light, heavy},
	StyleHeavyLight: {heavy, light},
	StyleHeavyHeavy: {heavy, heavy},
	StyleNone:       {},
}

// Barline ends (or splits) a measure. An empty Style is resolved at layout
// time: light-heavy for the final barline of the score, regular otherwise.
type Barline struct {
	model.Base `mapstructure:",squash"`
	Style      string `mapstructure:"style"`
	Color      string `mapstructure:"color"`
}

// BarlineDetail is what the renderer needs to draw a barline.
type BarlineDetail struct {
	Style      string    `json:"style" yaml:"style"`
	Color      string    `json:"color" yaml:"color"`
	LineStarts []float64 `json:"line_starts" yaml:"line_starts"`
	LineWidths []float64 `json:"line_widths" yaml:"line_widths"`

	// Warning lists the cautionary attributes shown at the end of a line
	// when the next line changes clef, key or time; WarningAttributes is
	// what they show.
	Warning           *AttributesDetail `json:"warning,omitempty" yaml:"warning,omitempty"`
	WarningAttributes *model.Attributes `json:"warning_attributes,omitempty" yaml:"warning_attributes,omitempty"`
}

// NewBarline builds a barline from its spec.
func NewBarline(spec registry.Spec) (model.Symbol, error) {
	b := &Barline{Base: model.Base{Frozen: model.FrozenWarm}}
	if err := registry.Decode(spec, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Barline) Class() model.RenderClass { return model.ClassBarline }

// Validate defaults the color. The style is left empty on purpose: it depends
// on where the measure ends up.
func (b *Barline) Validate(c *model.Cursor) error {
	if b.Color == "" {
		b.Color = "black"
	}
	if b.Staff == 0 {
		b.Staff = 1
	}
	return nil
}

func (b *Barline) Layout(c *model.Cursor) (model.Layout, error) {
	l := model.NewLayout(b, c)
	l.MergePolicy = model.MergeMax
	l.ExpandPolicy = model.ExpandNone

	style := b.Style
	if style == "" {
		style = StyleRegular
		if c.Line.LastBarOfScore() && c.Remaining(model.ClassBarline) == 0 {
			style = StyleLightHeavy
		}
	}
	lines, ok := barStyles[style]
	if !ok {
		return l, errors.Invariant("barline style %q not implemented", style)
	}

	lightWidth, heavyWidth := 1.6, 5.0
	if c.Header != nil {
		lightWidth = c.Header.Appearance.LightBarline
		heavyWidth = c.Header.Appearance.HeavyBarline
	}

	detail := &BarlineDetail{Style: style, Color: b.Color}
	x := 0.0

	// At the end of a line, a clef change of the next line is shown before
	// the barline and a key or time change after it.
	cur := c.PartAttributes()
	next := b.upcoming(c)
	if next != nil {
		detail.Warning = &AttributesDetail{}
		detail.WarningAttributes = next
		if !sameClef(cur.Clef(b.Staff), next.Clef(b.Staff)) {
			detail.Warning.ShowClef = true
			l.BoundingBoxes = append(l.BoundingBoxes, model.BoundingBox{Left: 0, Right: ClefWidth, Top: 10, Bottom: -StaffHeight - 10})
			x = ClefWidth
		}
	}

	start := x
	for i, w := range lines {
		if i > 0 {
			x += BarlineSeparation
		}
		width := lightWidth
		if w == heavy {
			width = heavyWidth
		}
		detail.LineStarts = append(detail.LineStarts, x)
		detail.LineWidths = append(detail.LineWidths, width)
		x += width
	}
	if x > start {
		l.BoundingBoxes = append(l.BoundingBoxes, model.BoundingBox{Left: start, Right: x, Top: 0, Bottom: -StaffHeight})
	}

	if next != nil {
		if next.Fifths != cur.Fifths {
			n := max(abs(next.Fifths), abs(cur.Fifths))
			w := float64(n) * KeyAccidentalStep
			detail.Warning.ShowKey, detail.Warning.KeyX = true, x
			l.BoundingBoxes = append(l.BoundingBoxes, model.BoundingBox{Left: x, Right: x + w, Top: 5, Bottom: -StaffHeight})
			x += w
		}
		if next.Beats != cur.Beats || next.BeatType != cur.BeatType {
			detail.Warning.ShowTime, detail.Warning.TimeX = true, x
			l.BoundingBoxes = append(l.BoundingBoxes, model.BoundingBox{Left: x, Right: x + TimeWidth, Top: 0, Bottom: -StaffHeight})
			x += TimeWidth
		}
	}
	l.Detail = detail
	c.X += x
	return l, nil
}

// upcoming returns the attributes the next line opens with on this staff, if
// this is the last barline of the line and they change clef, key or time.
func (b *Barline) upcoming(c *model.Cursor) *model.Attributes {
	if c.Line.BarsOnLine == 0 || c.Line.BarOnLine != c.Line.BarsOnLine-1 || c.Remaining(model.ClassBarline) > 0 {
		return nil
	}
	next := c.UpcomingAttributes(b.Staff)
	if next == nil {
		return nil
	}
	cur := c.PartAttributes()
	if sameClef(cur.Clef(b.Staff), next.Clef(b.Staff)) && cur.Fifths == next.Fifths &&
		cur.Beats == next.Beats && cur.BeatType == next.BeatType {
		return nil
	}
	return next
}

func sameClef(a, b model.Clef) bool {
	norm := func(c model.Clef) model.Clef {
		if c.Sign == "" {
			c.Sign = model.TrebleClef.Sign
		}
		if c.Line == 0 {
			c.Line = defaultClefLine(c.Sign)
		}
		return c
	}
	return norm(a) == norm(b)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
