package model

import "fmt"

// RenderClass identifies a symbol variant for the rendering collaborator.
// Its numeric order is the processing priority of symbols that share a
// division: attributes lay out before the chords they govern, barlines last.
type RenderClass int

const (
	ClassPrint RenderClass = iota
	ClassAttributes
	ClassDirection
	ClassHarmony
	ClassChord
	ClassSpacer
	ClassBarline
)

var classNames = map[RenderClass]string{
	ClassPrint:      "print",
	ClassAttributes: "attributes",
	ClassDirection:  "direction",
	ClassHarmony:    "harmony",
	ClassChord:      "chord",
	ClassSpacer:     "spacer",
	ClassBarline:    "barline",
}

func (c RenderClass) String() string {
	if s, ok := classNames[c]; ok {
		return s
	}
	return fmt.Sprintf("class(%d)", int(c))
}

// MarshalText renders the class name in serialized layouts.
func (c RenderClass) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses a class name.
func (c *RenderClass) UnmarshalText(b []byte) error {
	for k, v := range classNames {
		if v == string(b) {
			*c = k
			return nil
		}
	}
	return fmt.Errorf("unknown render class %q", b)
}

// Frozenness is how much of a symbol's layout is stable across passes.
type Frozenness int

const (
	// FrozenNone layouts are recomputed and copied on every detach.
	FrozenNone Frozenness = iota
	// FrozenWarm layouts are cached per measure version but copied on detach.
	FrozenWarm
	// FrozenFrozen layouts never change; detached copies share their boxes.
	FrozenFrozen
)

// MergePolicy reconciles layouts of different segments at the same division.
type MergePolicy int

const (
	// MergeNone keeps the layout where the cursor put it.
	MergeNone MergePolicy = iota
	// MergeMax moves every MergeMax layout of a column to the rightmost one.
	MergeMax
)

// ExpandPolicy controls whether justification may widen the gap after a layout.
type ExpandPolicy int

const (
	ExpandNone ExpandPolicy = iota
	ExpandAfter
)

// Symbol is anything a segment can hold.
//
// Validate may repair the symbol in place. Layout must not modify the symbol;
// it reads the cursor, may advance Cursor.X to claim horizontal space, and
// returns a Layout describing where the symbol goes. Division bookkeeping is
// done by the caller from DivCount.
type Symbol interface {
	Class() RenderClass
	DivCount() int
	SetDivCount(n int)
	StaffIndex() int
	Frozenness() Frozenness
	Validate(c *Cursor) error
	Layout(c *Cursor) (Layout, error)
}

// DivisionsCarrier is implemented by symbols that carry their own time grid,
// so normalization can rescale them along with the segment.
type DivisionsCarrier interface {
	Divisions() int
	SetDivisions(d int)
}

// AttributesSource is implemented by symbols that change a part's
// attributes. Apply must not modify prev.
type AttributesSource interface {
	Apply(prev *Attributes) *Attributes
}

// Base holds the fields every symbol variant shares.
type Base struct {
	Divs   int        `json:"div_count,omitempty" yaml:"div_count,omitempty" mapstructure:"div_count"`
	Staff  int        `json:"staff,omitempty" yaml:"staff,omitempty" mapstructure:"staff"`
	Frozen Frozenness `json:"-" yaml:"-" mapstructure:"-"`
}

// DivCount returns the divisions the symbol consumes.
func (b *Base) DivCount() int { return b.Divs }

// SetDivCount is used by normalization.
func (b *Base) SetDivCount(n int) { b.Divs = n }

// StaffIndex returns the 1-based staff, or 0 if unset.
func (b *Base) StaffIndex() int { return b.Staff }

// Frozenness returns the caching tier.
func (b *Base) Frozenness() Frozenness { return b.Frozen }
