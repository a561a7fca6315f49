package model

import (
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/engraver/pkg/header"
)

// OwnerType tells whether a segment belongs to a voice or to a staff.
type OwnerType int

const (
	OwnerVoice OwnerType = iota
	OwnerStaff
)

func (o OwnerType) String() string {
	if o == OwnerStaff {
		return "staff"
	}
	return "voice"
}

// TextBox is a text extent in tenths relative to the text origin.
type TextBox struct {
	Left, Right, Top, Bottom float64
}

// TextMetrics measures rendered text. ok is false when the font is not loaded
// yet and the box is an estimate.
type TextMetrics interface {
	BoundingBox(family, text string, size float64, style string) (box TextBox, ok bool)
}

// LineContext locates the current measure within the score's lines.
type LineContext struct {
	Line       int
	Lines      int
	BarOnLine  int
	BarsOnLine int
}

// LastBarOfScore reports whether the measure ends the final line.
func (l LineContext) LastBarOfScore() bool {
	return l.Lines > 0 && l.Line == l.Lines-1 && l.BarOnLine == l.BarsOnLine-1
}

// MeasureContext identifies the measure being laid out.
type MeasureContext struct {
	UUID    uuid.UUID
	Index   int
	Number  string
	Version int
}

// SegmentView is a read-only view of the segment being walked.
type SegmentView struct {
	Part      string
	Owner     int
	OwnerType OwnerType
	Divisions int
	Symbols   []Symbol
}

// Cursor is the state of one measure pass.
//
// Layout implementations may change X (and nothing else). Division is the
// time offset of the symbol being laid out; it is advanced by the measure
// processor from DivCount. Every other field is context and must be treated
// as read-only. A cursor belongs to one measure pass and is not retained.
type Cursor struct {
	X        float64
	Division int

	Header     *header.Header
	Line       LineContext
	Measure    MeasureContext
	Segment    SegmentView
	Index      int
	Attributes map[string]*Attributes
	Metrics    TextMetrics
	Logger     *log.Logger

	// Upcoming holds, per part and 1-based staff, the attributes symbol the
	// next measure opens with. It is only set for the last measure on a line.
	Upcoming map[string][]AttributesSource

	// Approximate is set when a symbol had to use estimated text metrics.
	Approximate bool
}

// PartAttributes returns the snapshot of the current segment's part.
func (c *Cursor) PartAttributes() *Attributes {
	if a, ok := c.Attributes[c.Segment.Part]; ok && a != nil {
		return a
	}
	return DefaultAttributes()
}

// UpcomingAttributes returns the snapshot the next measure starts staff of
// the current part with, or nil if it opens without attributes.
func (c *Cursor) UpcomingAttributes(staff int) *Attributes {
	srcs := c.Upcoming[c.Segment.Part]
	if staff < 1 || staff >= len(srcs) || srcs[staff] == nil {
		return nil
	}
	return srcs[staff].Apply(c.PartAttributes())
}

// Remaining counts symbols of class rc after the current one in the segment.
func (c *Cursor) Remaining(rc RenderClass) int {
	n := 0
	if c.Index+1 >= len(c.Segment.Symbols) {
		return 0
	}
	for _, s := range c.Segment.Symbols[c.Index+1:] {
		if s != nil && s.Class() == rc {
			n++
		}
	}
	return n
}

// MeasureText measures text through the cursor's metrics service, falling
// back to an estimate when no service is attached.
func (c *Cursor) MeasureText(family, text string, size float64, style string) TextBox {
	if c.Metrics == nil {
		c.Approximate = true
		return TextBox{Left: 0, Right: EstimateTextWidth(text, size), Top: size, Bottom: 0}
	}
	box, ok := c.Metrics.BoundingBox(family, text, size, style)
	if !ok {
		c.Approximate = true
	}
	return box
}

// EstimateTextWidth approximates the advance of text at size using an
// average glyph width of 0.55 em.
func EstimateTextWidth(text string, size float64) float64 {
	return float64(len([]rune(text))) * size * 0.55
}
