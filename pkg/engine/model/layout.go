package model

// BoundingBox is an axis-aligned box relative to its layout's anchor
// (X, Y). Y grows upward, so Top > Bottom for a non-empty box.
type BoundingBox struct {
	Left   float64 `json:"left" yaml:"left"`
	Right  float64 `json:"right" yaml:"right"`
	Top    float64 `json:"top" yaml:"top"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
}

// Width returns the horizontal extent.
func (b BoundingBox) Width() float64 { return b.Right - b.Left }

// Height returns the vertical extent.
func (b BoundingBox) Height() float64 { return b.Top - b.Bottom }

// Layout is the outcome of one symbol's layout step. It holds only what
// differs from the stored symbol: where it goes and how it may move.
type Layout struct {
	Symbol        Symbol
	X             float64
	Y             float64
	Division      int
	Staff         int
	BoundingBoxes []BoundingBox
	MergePolicy   MergePolicy
	ExpandPolicy  ExpandPolicy
	RenderClass   RenderClass

	// Attributes is set by symbols that change the running attributes
	// snapshot of their part.
	Attributes *Attributes

	// Detail carries variant-specific overrides resolved at layout time
	// (a defaulted barline style, measured text), leaving Symbol untouched.
	Detail any
}

// NewLayout starts a layout for s at the cursor's position.
func NewLayout(s Symbol, c *Cursor) Layout {
	return Layout{
		Symbol:      s,
		X:           c.X,
		Division:    c.Division,
		Staff:       s.StaffIndex(),
		RenderClass: s.Class(),
	}
}

// Clone returns a copy that can be moved without affecting l. Bounding boxes
// of frozen symbols are shared.
func (l Layout) Clone() Layout {
	if l.Symbol != nil && l.Symbol.Frozenness() >= FrozenFrozen {
		return l
	}
	if l.BoundingBoxes != nil {
		boxes := make([]BoundingBox, len(l.BoundingBoxes))
		copy(boxes, l.BoundingBoxes)
		l.BoundingBoxes = boxes
	}
	return l
}

// Extent returns the union of l's boxes in measure coordinates.
func (l Layout) Extent() (BoundingBox, bool) {
	if len(l.BoundingBoxes) == 0 {
		return BoundingBox{}, false
	}
	b := l.BoundingBoxes[0]
	out := BoundingBox{Left: b.Left, Right: b.Right, Top: b.Top, Bottom: b.Bottom}
	for _, b := range l.BoundingBoxes[1:] {
		out.Left = min(out.Left, b.Left)
		out.Right = max(out.Right, b.Right)
		out.Top = max(out.Top, b.Top)
		out.Bottom = min(out.Bottom, b.Bottom)
	}
	out.Left += l.X
	out.Right += l.X
	out.Top += l.Y
	out.Bottom += l.Y
	return out, true
}
