package header

import (
	"math"
	"testing"
)

func TestDefault(t *testing.T) {
	h := Default()

	if got := h.PartIDs(); len(got) != 1 || got[0] != "P1" {
		t.Errorf("PartIDs() = %v, want [P1]", got)
	}
	if h.Scaling.Tenths != DefaultTenths {
		t.Errorf("Scaling.Tenths = %v, want %v", h.Scaling.Tenths, DefaultTenths)
	}
	if h.Appearance.HeavyBarline != DefaultHeavyBarline {
		t.Errorf("HeavyBarline = %v, want %v", h.Appearance.HeavyBarline, DefaultHeavyBarline)
	}
}

func TestSetDefaultsKeepsExplicitValues(t *testing.T) {
	h := &Header{Page: PageLayout{Width: 1000, Margins: Margins{Left: 12, Right: 12, Top: 12, Bottom: 12}}}
	h.SetDefaults()

	if h.Page.Width != 1000 {
		t.Errorf("Page.Width = %v, want 1000", h.Page.Width)
	}
	if h.Page.Margins.Left != 12 {
		t.Errorf("Page.Margins.Left = %v, want 12", h.Page.Margins.Left)
	}
	if h.Page.Height != DefaultPageHeight {
		t.Errorf("Page.Height = %v, want %v", h.Page.Height, DefaultPageHeight)
	}
}

func TestScaling(t *testing.T) {
	s := Scaling{Millimeters: 7, Tenths: 40}

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"7mm is a staff height", s.MMToTenths(7), 40},
		{"zero", s.MMToTenths(0), 0},
		{"points", s.PointsToTenths(PointsPerMM * 7), 40},
	}
	for _, tt := range tests {
		if math.Abs(tt.got-tt.want) > 1e-9 {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	if got := (Scaling{}).MMToTenths(3); got != 3 {
		t.Errorf("zero scaling MMToTenths(3) = %v, want 3", got)
	}
}

func TestHasPart(t *testing.T) {
	h := &Header{PartList: []ScorePart{{ID: "P1"}, {ID: "P2"}}}
	if !h.HasPart("P2") {
		t.Error("HasPart(P2) = false, want true")
	}
	if h.HasPart("P3") {
		t.Error("HasPart(P3) = true, want false")
	}
}
