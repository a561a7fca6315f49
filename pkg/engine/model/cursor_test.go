package model

import "testing"

func TestCursorRemaining(t *testing.T) {
	bar := &stubSymbol{class: ClassBarline}
	note := &stubSymbol{class: ClassChord}
	c := &Cursor{Segment: SegmentView{Symbols: []Symbol{note, bar, note, bar}}}

	tests := []struct {
		index int
		want  int
	}{
		{0, 2},
		{1, 1},
		{3, 0},
		{7, 0},
	}
	for _, tt := range tests {
		c.Index = tt.index
		if got := c.Remaining(ClassBarline); got != tt.want {
			t.Errorf("Remaining() at %d = %d, want %d", tt.index, got, tt.want)
		}
	}
}

func TestLineContextLastBar(t *testing.T) {
	tests := []struct {
		name string
		ctx  LineContext
		want bool
	}{
		{"last bar of last line", LineContext{Line: 2, Lines: 3, BarOnLine: 3, BarsOnLine: 4}, true},
		{"earlier bar", LineContext{Line: 2, Lines: 3, BarOnLine: 2, BarsOnLine: 4}, false},
		{"earlier line", LineContext{Line: 1, Lines: 3, BarOnLine: 3, BarsOnLine: 4}, false},
		{"no line info", LineContext{}, false},
	}
	for _, tt := range tests {
		if got := tt.ctx.LastBarOfScore(); got != tt.want {
			t.Errorf("%s: LastBarOfScore() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCursorMeasureTextWithoutMetrics(t *testing.T) {
	c := &Cursor{}
	box := c.MeasureText("Serif", "cresc.", 10, "")
	if !c.Approximate {
		t.Error("Approximate = false, want true")
	}
	if box.Right != EstimateTextWidth("cresc.", 10) {
		t.Errorf("Right = %v, want estimate", box.Right)
	}
}

func TestPartAttributes(t *testing.T) {
	c := &Cursor{Segment: SegmentView{Part: "P2"}}
	if got := c.PartAttributes(); got.Divisions != 1 || got.Clef(1) != TrebleClef {
		t.Errorf("PartAttributes() default = %+v", got)
	}

	c.Attributes = map[string]*Attributes{"P2": {Divisions: 8, Clefs: []Clef{{Sign: "F", Line: 4}}}}
	if got := c.PartAttributes(); got.Divisions != 8 || got.Clef(1).Sign != "F" {
		t.Errorf("PartAttributes() = %+v", got)
	}
}

func TestAttributesClone(t *testing.T) {
	a := &Attributes{Divisions: 4, Beats: 3, BeatType: 4, Clefs: []Clef{TrebleClef}}
	b := a.Clone()
	b.Clefs[0].Sign = "C"
	if a.Clefs[0].Sign != "G" {
		t.Error("Clone() shared clefs")
	}
	if a.MeasureDivisions() != 12 {
		t.Errorf("MeasureDivisions() = %d, want 12", a.MeasureDivisions())
	}
	if (*Attributes)(nil).Clone() != nil {
		t.Error("nil Clone() != nil")
	}
}
