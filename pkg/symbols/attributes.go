package symbols

import (
	"github.com/matzehuels/engraver/pkg/engine/model"
	"github.com/matzehuels/engraver/pkg/engine/registry"
	"github.com/matzehuels/engraver/pkg/errors"
)

const TagAttributes = "attributes"

// Attribute glyph widths.
const (
	ClefWidth         = 24.0
	KeyAccidentalStep = 10.0
	TimeWidth         = 28.0
	AttributesPadding = 12.0
)

var _ model.AttributesSource = (*Attributes)(nil)

var clefSigns = map[string]bool{"G": true, "F": true, "C": true, "percussion": true, "TAB": true, "none": true}

// Time is a meter.
type Time struct {
	Beats    int `mapstructure:"beats"`
	BeatType int `mapstructure:"beat_type"`
}

// Attributes changes a part's musical context. Nil fields leave the running
// value unchanged.
type Attributes struct {
	model.Base `mapstructure:",squash"`
	Division   int          `mapstructure:"divisions"`
	Fifths     *int         `mapstructure:"fifths"`
	Time       *Time        `mapstructure:"time"`
	Staves     *int         `mapstructure:"staves"`
	Clefs      []model.Clef `mapstructure:"clefs"`
}

// AttributesDetail lists what an attributes layout shows, left to right.
type AttributesDetail struct {
	ClefX    float64 `json:"clef_x" yaml:"clef_x"`
	KeyX     float64 `json:"key_x" yaml:"key_x"`
	TimeX    float64 `json:"time_x" yaml:"time_x"`
	ShowClef bool    `json:"show_clef" yaml:"show_clef"`
	ShowKey  bool    `json:"show_key" yaml:"show_key"`
	ShowTime bool    `json:"show_time" yaml:"show_time"`
}

// NewAttributes builds attributes from their spec.
func NewAttributes(spec registry.Spec) (model.Symbol, error) {
	a := &Attributes{Base: model.Base{Frozen: model.FrozenWarm}}
	if err := registry.Decode(spec, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Attributes) Class() model.RenderClass { return model.ClassAttributes }

// Divisions implements model.DivisionsCarrier.
func (a *Attributes) Divisions() int { return a.Division }

// SetDivisions implements model.DivisionsCarrier.
func (a *Attributes) SetDivisions(d int) { a.Division = d }

func (a *Attributes) Validate(c *model.Cursor) error {
	if a.Staff == 0 {
		a.Staff = 1
	}
	// Zero staves is left for the line processor to report.
	if a.Staves != nil && *a.Staves > 0 {
		if err := errors.ValidateStaves(*a.Staves); err != nil {
			return err
		}
	}
	for i := range a.Clefs {
		if a.Clefs[i].Sign == "" {
			a.Clefs[i] = model.TrebleClef
		}
		if a.Clefs[i].Line == 0 {
			a.Clefs[i].Line = defaultClefLine(a.Clefs[i].Sign)
		}
	}
	if a.Time != nil && (a.Time.Beats <= 0 || a.Time.BeatType <= 0) {
		a.Time = &Time{Beats: 4, BeatType: 4}
	}
	return nil
}

func defaultClefLine(sign string) int {
	switch sign {
	case "F":
		return 4
	case "C":
		return 3
	}
	return 2
}

// Apply returns prev updated with the fields a sets.
func (a *Attributes) Apply(prev *model.Attributes) *model.Attributes {
	next := prev.Clone()
	if next == nil {
		next = model.DefaultAttributes()
	}
	if a.Division > 0 {
		next.Divisions = a.Division
	}
	if a.Fifths != nil {
		next.Fifths = *a.Fifths
	}
	if a.Time != nil {
		next.Beats, next.BeatType = a.Time.Beats, a.Time.BeatType
	}
	if a.Staves != nil {
		next.Staves = *a.Staves
	}
	if len(a.Clefs) > 0 {
		next.Clefs = append([]model.Clef(nil), a.Clefs...)
	}
	for len(next.Clefs) < next.Staves {
		next.Clefs = append(next.Clefs, model.TrebleClef)
	}
	return next
}

func (a *Attributes) Layout(c *model.Cursor) (model.Layout, error) {
	l := model.NewLayout(a, c)
	l.MergePolicy = model.MergeMax
	l.ExpandPolicy = model.ExpandNone

	for _, clef := range a.Clefs {
		if !clefSigns[clef.Sign] {
			return l, errors.Invariant("clef sign %q not implemented", clef.Sign)
		}
	}
	l.Attributes = a.Apply(c.PartAttributes())

	d := &AttributesDetail{}
	x := 0.0
	if len(a.Clefs) > 0 {
		d.ShowClef, d.ClefX = true, x
		l.BoundingBoxes = append(l.BoundingBoxes, model.BoundingBox{Left: x, Right: x + ClefWidth, Top: 10, Bottom: -StaffHeight - 10})
		x += ClefWidth
	}
	if a.Fifths != nil && *a.Fifths != 0 {
		n := *a.Fifths
		if n < 0 {
			n = -n
		}
		w := float64(n) * KeyAccidentalStep
		d.ShowKey, d.KeyX = true, x
		l.BoundingBoxes = append(l.BoundingBoxes, model.BoundingBox{Left: x, Right: x + w, Top: 5, Bottom: -StaffHeight})
		x += w
	}
	if a.Time != nil {
		d.ShowTime, d.TimeX = true, x
		l.BoundingBoxes = append(l.BoundingBoxes, model.BoundingBox{Left: x, Right: x + TimeWidth, Top: 0, Bottom: -StaffHeight})
		x += TimeWidth
	}
	if x > 0 {
		x += AttributesPadding
	}
	l.Detail = d
	c.X += x
	return l, nil
}
