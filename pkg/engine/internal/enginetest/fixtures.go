// Package enginetest provides fake symbols and score fixtures with simple,
// predictable geometry for layout tests.
package enginetest

import (
	"github.com/matzehuels/engraver/pkg/engine/model"
	"github.com/matzehuels/engraver/pkg/header"
	"github.com/matzehuels/engraver/pkg/score"
)

// ClefWidth is the advance of a fake clef.
const ClefWidth = 15.0

// NoteSpace is the advance of a fake note per division.
const NoteSpace = 10.0

// Clef is an attributes-class symbol of fixed width.
type Clef struct {
	model.Base
	Lays int
}

func (c *Clef) Class() model.RenderClass { return model.ClassAttributes }

func (c *Clef) Validate(*model.Cursor) error { return nil }

func (c *Clef) Layout(cur *model.Cursor) (model.Layout, error) {
	c.Lays++
	l := model.NewLayout(c, cur)
	l.MergePolicy = model.MergeMax
	l.BoundingBoxes = []model.BoundingBox{{Left: 0, Right: ClefWidth, Top: 5, Bottom: -45}}
	cur.X += ClefWidth
	return l, nil
}

// Note advances NoteSpace per division it lasts.
type Note struct {
	model.Base
	Lays int
}

func (n *Note) Class() model.RenderClass { return model.ClassChord }

func (n *Note) Validate(*model.Cursor) error { return nil }

func (n *Note) Layout(cur *model.Cursor) (model.Layout, error) {
	n.Lays++
	l := model.NewLayout(n, cur)
	l.MergePolicy = model.MergeMax
	l.ExpandPolicy = model.ExpandAfter
	l.BoundingBoxes = []model.BoundingBox{{Left: 0, Right: 10, Top: -15, Bottom: -25}}
	cur.X += NoteSpace * float64(n.DivCount())
	return l, nil
}

// Failing returns err from Layout.
type Failing struct {
	model.Base
	Err error
}

func (f *Failing) Class() model.RenderClass { return model.ClassChord }

func (f *Failing) Validate(*model.Cursor) error { return nil }

func (f *Failing) Layout(cur *model.Cursor) (model.Layout, error) {
	return model.Layout{}, f.Err
}

// Notes returns fake notes lasting the given division counts.
func Notes(counts ...int) []model.Symbol {
	out := make([]model.Symbol, len(counts))
	for i, c := range counts {
		out[i] = &Note{Base: model.Base{Divs: c}}
	}
	return out
}

// Segment builds a segment of part P1.
func Segment(t model.OwnerType, owner, divisions int, syms ...model.Symbol) *score.Segment {
	return &score.Segment{Part: "P1", Owner: owner, OwnerType: t, Divisions: divisions, Symbols: syms}
}

// Header returns a one-part header on a 1000-wide page with 12-tenth margins.
func Header() *header.Header {
	h := &header.Header{
		PartList: []header.ScorePart{{ID: "P1"}},
		Page: header.PageLayout{
			Width:   1000,
			Height:  1000,
			Margins: header.Margins{Left: 12, Right: 12, Top: 12, Bottom: 12},
		},
	}
	h.SetDefaults()
	return h
}

// Measure wraps a part into a new measure.
func Measure(index int, part *score.MeasurePart) *score.Measure {
	m := score.NewMeasure(index, "")
	m.Parts["P1"] = part
	return m
}

// TwoVoiceMeasures are two 4/4 measures (four divisions per quarter, one
// quarter long) whose voices split the measure as 2+6 / 1+7 and 1+7 / 2+6,
// with a clef on the staff.
func TwoVoiceMeasures() []*score.Measure {
	build := func(idx int, v1, v2 []int) *score.Measure {
		return Measure(idx, &score.MeasurePart{
			Voices: []*score.Segment{
				nil,
				Segment(model.OwnerVoice, 1, 4, Notes(v1...)...),
				Segment(model.OwnerVoice, 2, 4, Notes(v2...)...),
			},
			Staves: []*score.Segment{
				nil,
				Segment(model.OwnerStaff, 1, 4, &Clef{}),
			},
		})
	}
	return []*score.Measure{
		build(0, []int{2, 6}, []int{1, 7}),
		build(1, []int{1, 7}, []int{2, 6}),
	}
}

// EmptyMeasure has one empty voice and one empty staff.
func EmptyMeasure(index int) *score.Measure {
	return Measure(index, &score.MeasurePart{
		Voices: []*score.Segment{nil, Segment(model.OwnerVoice, 1, 1)},
		Staves: []*score.Segment{nil, Segment(model.OwnerStaff, 1, 1)},
	})
}
