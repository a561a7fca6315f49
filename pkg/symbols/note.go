package symbols

import (
	"math"

	"github.com/matzehuels/engraver/pkg/engine/model"
	"github.com/matzehuels/engraver/pkg/engine/registry"
	"github.com/matzehuels/engraver/pkg/errors"
)

const TagNote = "note"

// Note geometry.
const (
	NoteheadWidth   = 11.8
	AccidentalWidth = 12.0
	DotWidth        = 6.0
	StemLength      = 35.0
	MinNoteSpace    = 12.0
	DurationSpace   = 20.0
)

var steps = map[string]int{"C": 0, "D": 1, "E": 2, "F": 3, "G": 4, "A": 5, "B": 6}

var accidentals = map[string]bool{
	"sharp": true, "flat": true, "natural": true,
	"double-sharp": true, "flat-flat": true,
}

// Pitch is a diatonic step and octave. Alter is informational; the
// displayed sign comes from Note.Accidental.
type Pitch struct {
	Step   string `mapstructure:"step"`
	Octave int    `mapstructure:"octave"`
	Alter  int    `mapstructure:"alter"`
}

// Note is a chord of one or more pitches, or a rest when Rest is set.
type Note struct {
	model.Base `mapstructure:",squash"`
	Pitches    []Pitch `mapstructure:"pitches"`
	Rest       bool    `mapstructure:"rest"`
	Dots       int     `mapstructure:"dots"`
	Accidental string  `mapstructure:"accidental"`
}

// NoteDetail holds the resolved vertical positions of the noteheads.
type NoteDetail struct {
	HeadY []float64 `json:"head_y" yaml:"head_y"`
	Stem  bool      `json:"stem" yaml:"stem"`
}

// NewNote builds a note from its spec.
func NewNote(spec registry.Spec) (model.Symbol, error) {
	n := &Note{}
	if err := registry.Decode(spec, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *Note) Class() model.RenderClass { return model.ClassChord }

func (n *Note) Validate(c *model.Cursor) error {
	if n.Staff == 0 {
		n.Staff = 1
	}
	if n.Dots < 0 {
		n.Dots = 0
	}
	if len(n.Pitches) == 0 {
		n.Rest = true
	}
	return nil
}

// NoteSpace is the natural distance claimed by a note lasting quarters
// quarter notes, excluding the notehead.
func NoteSpace(quarters float64) float64 {
	return MinNoteSpace + DurationSpace*math.Log2(1+quarters)
}

func (n *Note) Layout(c *model.Cursor) (model.Layout, error) {
	if n.Accidental != "" {
		if !accidentals[n.Accidental] {
			return model.Layout{}, errors.Invariant("accidental %q not implemented", n.Accidental)
		}
		c.X += AccidentalWidth
	}
	l := model.NewLayout(n, c)
	l.MergePolicy = model.MergeMax
	l.ExpandPolicy = model.ExpandAfter

	attrs := c.PartAttributes()
	detail := &NoteDetail{}
	if n.Rest {
		l.BoundingBoxes = append(l.BoundingBoxes, model.BoundingBox{Left: 0, Right: NoteheadWidth, Top: -5, Bottom: -35})
	} else {
		clef := attrs.Clef(n.Staff)
		for _, p := range n.Pitches {
			y, err := staffY(p, clef)
			if err != nil {
				return l, err
			}
			detail.HeadY = append(detail.HeadY, y)
			l.BoundingBoxes = append(l.BoundingBoxes, model.BoundingBox{Left: 0, Right: NoteheadWidth, Top: y + 5, Bottom: y - 5})
		}
	}
	if n.Accidental != "" {
		l.BoundingBoxes = append(l.BoundingBoxes, model.BoundingBox{Left: -AccidentalWidth, Right: 0, Top: -5, Bottom: -35})
	}

	divisions := c.Segment.Divisions
	if divisions <= 0 {
		divisions = attrs.Divisions
	}
	quarters := float64(n.DivCount()) / float64(max(divisions, 1))
	if !n.Rest && quarters < 4 && len(detail.HeadY) > 0 {
		detail.Stem = true
		top, bottom := detail.HeadY[0], detail.HeadY[0]
		for _, y := range detail.HeadY {
			top, bottom = max(top, y), min(bottom, y)
		}
		if bottom < -StaffHeight/2 {
			l.BoundingBoxes = append(l.BoundingBoxes, model.BoundingBox{Left: NoteheadWidth - 1, Right: NoteheadWidth, Top: top + StemLength, Bottom: bottom})
		} else {
			l.BoundingBoxes = append(l.BoundingBoxes, model.BoundingBox{Left: 0, Right: 1, Top: top, Bottom: bottom - StemLength})
		}
	}

	advance := NoteheadWidth + float64(n.Dots)*DotWidth + NoteSpace(quarters)
	if n.Dots > 0 {
		l.BoundingBoxes = append(l.BoundingBoxes, model.BoundingBox{Left: NoteheadWidth, Right: NoteheadWidth + float64(n.Dots)*DotWidth, Top: -15, Bottom: -25})
	}
	l.Detail = detail
	c.X += advance
	return l, nil
}

// staffY returns the y of a pitch's notehead under clef.
func staffY(p Pitch, clef model.Clef) (float64, error) {
	s, ok := steps[p.Step]
	if !ok {
		return 0, errors.Invariant("pitch step %q not implemented", p.Step)
	}
	var ref int
	switch clef.Sign {
	case "G", "percussion", "TAB", "none":
		ref = 4*7 + steps["G"]
	case "F":
		ref = 3*7 + steps["F"]
	case "C":
		ref = 4*7 + steps["C"]
	default:
		return 0, errors.Invariant("clef sign %q not implemented", clef.Sign)
	}
	lineY := -StaffHeight + float64(clef.Line-1)*10
	return lineY + float64(p.Octave*7+s-ref)*5, nil
}
