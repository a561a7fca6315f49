package model

import (
	"testing"
)

type stubSymbol struct {
	Base
	class RenderClass
}

func (s *stubSymbol) Class() RenderClass { return s.class }

func (s *stubSymbol) Validate(*Cursor) error { return nil }

func (s *stubSymbol) Layout(c *Cursor) (Layout, error) {
	return NewLayout(s, c), nil
}

func TestLayoutClone(t *testing.T) {
	warm := &stubSymbol{Base: Base{Frozen: FrozenWarm}}
	l := Layout{Symbol: warm, BoundingBoxes: []BoundingBox{{Left: 0, Right: 10, Top: 5, Bottom: -5}}}

	c := l.Clone()
	c.BoundingBoxes[0].Left = -3
	if l.BoundingBoxes[0].Left != 0 {
		t.Error("Clone() shared boxes of a warm symbol")
	}

	frozen := &stubSymbol{Base: Base{Frozen: FrozenFrozen}}
	l = Layout{Symbol: frozen, BoundingBoxes: []BoundingBox{{Right: 1}}}
	c = l.Clone()
	if &c.BoundingBoxes[0] != &l.BoundingBoxes[0] {
		t.Error("Clone() copied boxes of a frozen symbol")
	}
}

func TestLayoutExtent(t *testing.T) {
	l := Layout{
		X: 100,
		Y: 10,
		BoundingBoxes: []BoundingBox{
			{Left: -5, Right: 5, Top: 20, Bottom: 0},
			{Left: 0, Right: 12, Top: 4, Bottom: -8},
		},
	}
	got, ok := l.Extent()
	if !ok {
		t.Fatal("Extent() ok = false, want true")
	}
	want := BoundingBox{Left: 95, Right: 112, Top: 30, Bottom: 2}
	if got != want {
		t.Errorf("Extent() = %+v, want %+v", got, want)
	}
	if got.Width() != 17 || got.Height() != 28 {
		t.Errorf("Width/Height = %v/%v, want 17/28", got.Width(), got.Height())
	}

	if _, ok := (Layout{}).Extent(); ok {
		t.Error("Extent() of empty layout ok = true, want false")
	}
}

func TestNewLayout(t *testing.T) {
	s := &stubSymbol{Base: Base{Staff: 2}, class: ClassBarline}
	c := &Cursor{X: 42, Division: 8}
	l, _ := s.Layout(c)

	if l.X != 42 || l.Division != 8 || l.Staff != 2 || l.RenderClass != ClassBarline {
		t.Errorf("NewLayout() = %+v", l)
	}
}

func TestRenderClassText(t *testing.T) {
	for c := ClassPrint; c <= ClassBarline; c++ {
		b, err := c.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d) error: %v", c, err)
		}
		var back RenderClass
		if err := back.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText(%s) error: %v", b, err)
		}
		if back != c {
			t.Errorf("round trip %v -> %v", c, back)
		}
	}
	var c RenderClass
	if err := c.UnmarshalText([]byte("glissando")); err == nil {
		t.Error("UnmarshalText(glissando) = nil, want error")
	}
}
