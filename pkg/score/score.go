// Package score holds the document-side data the layout engine walks:
// segments of symbols grouped into measures, and the score that orders them.
//
// Measures are owned by whoever edits the document. The engine reads them
// and relies on two fields for caching: UUID (stable identity) and Version,
// which must be bumped by Touch on every change that alters rendered output.
package score

import (
	"github.com/google/uuid"

	"github.com/matzehuels/engraver/pkg/engine/model"
	"github.com/matzehuels/engraver/pkg/header"
)

// Segment is an ordered run of symbols for one voice or one staff.
type Segment struct {
	Owner     int
	OwnerType model.OwnerType
	Part      string
	Divisions int
	Symbols   []model.Symbol
}

// Duration sums the DivCount of every symbol.
func (s *Segment) Duration() int {
	n := 0
	for _, sym := range s.Symbols {
		if sym != nil {
			n += sym.DivCount()
		}
	}
	return n
}

// MeasurePart holds the segments of one part. Index 0 of both slices is
// conventionally unused (voices and staves are 1-based) and may be nil.
type MeasurePart struct {
	Voices []*Segment
	Staves []*Segment
}

// Segments returns the non-nil segments, voices before staves.
func (p *MeasurePart) Segments() []*Segment {
	if p == nil {
		return nil
	}
	out := make([]*Segment, 0, len(p.Voices)+len(p.Staves))
	for _, s := range p.Voices {
		if s != nil {
			out = append(out, s)
		}
	}
	for _, s := range p.Staves {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// StaffCount is the number of staves, ignoring the unused index 0.
func (p *MeasurePart) StaffCount() int {
	if p == nil || len(p.Staves) == 0 {
		return 0
	}
	return len(p.Staves) - 1
}

// Measure is one bar across all parts.
type Measure struct {
	UUID    uuid.UUID
	Index   int
	Number  string
	Version int
	Parts   map[string]*MeasurePart
}

// NewMeasure returns an empty measure with a fresh identity.
func NewMeasure(index int, number string) *Measure {
	return &Measure{
		UUID:   uuid.New(),
		Index:  index,
		Number: number,
		Parts:  make(map[string]*MeasurePart),
	}
}

// Touch records a change that affects rendering.
func (m *Measure) Touch() {
	m.Version++
}

// Segments returns all segments in part-list order, voices before staves
// within each part.
func (m *Measure) Segments(h *header.Header) []*Segment {
	var out []*Segment
	for _, id := range h.PartIDs() {
		out = append(out, m.Parts[id].Segments()...)
	}
	return out
}

// Context describes the measure for a cursor.
func (m *Measure) Context() model.MeasureContext {
	return model.MeasureContext{UUID: m.UUID, Index: m.Index, Number: m.Number, Version: m.Version}
}

// Score is a header and its measures, already broken into lines.
type Score struct {
	Header   *header.Header
	Measures []*Measure

	// Lines lists how many measures each line holds, in order. Line-breaking
	// is decided upstream; an empty slice puts every measure on one line.
	Lines []int
}

// LineMeasures splits Measures according to Lines.
func (s *Score) LineMeasures() [][]*Measure {
	if len(s.Lines) == 0 {
		if len(s.Measures) == 0 {
			return nil
		}
		return [][]*Measure{s.Measures}
	}
	out := make([][]*Measure, 0, len(s.Lines))
	i := 0
	for _, n := range s.Lines {
		end := min(i+n, len(s.Measures))
		out = append(out, s.Measures[i:end])
		i = end
	}
	if i < len(s.Measures) {
		out = append(out, s.Measures[i:])
	}
	return out
}

// Measure returns the measure with the given identity.
func (s *Score) Measure(id uuid.UUID) (*Measure, bool) {
	for _, m := range s.Measures {
		if m.UUID == id {
			return m, true
		}
	}
	return nil, false
}
