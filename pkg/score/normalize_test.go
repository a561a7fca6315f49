package score

import (
	"testing"

	"github.com/matzehuels/engraver/pkg/engine/model"
	"github.com/matzehuels/engraver/pkg/errors"
)

type fakeNote struct{ model.Base }

func (n *fakeNote) Class() model.RenderClass { return model.ClassChord }

func (n *fakeNote) Validate(*model.Cursor) error { return nil }

func (n *fakeNote) Layout(c *model.Cursor) (model.Layout, error) {
	return model.NewLayout(n, c), nil
}

type fakeAttributes struct {
	fakeNote
	divisions int
}

func (a *fakeAttributes) Divisions() int     { return a.divisions }
func (a *fakeAttributes) SetDivisions(d int) { a.divisions = d }

func segment(divisions int, counts ...int) *Segment {
	s := &Segment{Divisions: divisions, Part: "P1"}
	for _, c := range counts {
		s.Symbols = append(s.Symbols, &fakeNote{Base: model.Base{Divs: c}})
	}
	return s
}

func counts(s *Segment) []int {
	out := make([]int, len(s.Symbols))
	for i, sym := range s.Symbols {
		out[i] = sym.DivCount()
	}
	return out
}

func TestNormalizeDivisions(t *testing.T) {
	tests := []struct {
		name   string
		segs   []*Segment
		factor int
		want   int
	}{
		{"triplets and eighths", []*Segment{segment(3, 1, 1, 1), segment(2, 1, 1)}, 0, 6},
		{"already shared", []*Segment{segment(4, 4), segment(4, 2, 2)}, 0, 4},
		{"with nil", []*Segment{nil, segment(5, 5), nil}, 0, 5},
		{"factor seeds grid", []*Segment{segment(3, 3)}, 4, 12},
		{"negative factor", []*Segment{segment(3, 3)}, -2, 3},
		{"no segments", nil, 0, 1},
		{"no segments with factor", nil, 8, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			originals := make([]int, len(tt.segs))
			for i, s := range tt.segs {
				if s != nil {
					originals[i] = s.Divisions
				}
			}

			got, err := NormalizeDivisions(tt.segs, tt.factor)
			if err != nil {
				t.Fatalf("NormalizeDivisions() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("NormalizeDivisions() = %d, want %d", got, tt.want)
			}
			for i, s := range tt.segs {
				if s == nil {
					continue
				}
				if s.Divisions != got {
					t.Errorf("segment %d divisions = %d, want %d", i, s.Divisions, got)
				}
				if got%originals[i] != 0 {
					t.Errorf("grid %d not a multiple of original %d", got, originals[i])
				}
			}
		})
	}
}

func TestNormalizeDivisionsRescales(t *testing.T) {
	a := segment(3, 1, 1, 1)
	b := segment(2, 1, 1)

	if _, err := NormalizeDivisions([]*Segment{a, b}, 0); err != nil {
		t.Fatal(err)
	}
	if got := counts(a); got[0] != 2 || got[1] != 2 || got[2] != 2 {
		t.Errorf("triplet counts = %v, want [2 2 2]", got)
	}
	if got := counts(b); got[0] != 3 || got[1] != 3 {
		t.Errorf("eighth counts = %v, want [3 3]", got)
	}
	if a.Duration() != b.Duration() {
		t.Errorf("durations differ: %d vs %d", a.Duration(), b.Duration())
	}
}

func TestNormalizeDivisionsIdempotent(t *testing.T) {
	segs := []*Segment{segment(3, 1, 2), segment(4, 4), segment(6, 3, 3)}

	first, err := NormalizeDivisions(segs, 0)
	if err != nil {
		t.Fatal(err)
	}
	before := make([][]int, len(segs))
	for i, s := range segs {
		before[i] = counts(s)
	}

	second, err := NormalizeDivisions(segs, 0)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("second pass grid = %d, want %d", second, first)
	}
	for i, s := range segs {
		after := counts(s)
		for j := range after {
			if after[j] != before[i][j] {
				t.Errorf("segment %d symbol %d: %d -> %d", i, j, before[i][j], after[j])
			}
		}
	}
}

func TestNormalizeDivisionsCarrier(t *testing.T) {
	attrs := &fakeAttributes{divisions: 2}
	s := &Segment{Divisions: 2, Symbols: []model.Symbol{attrs, nil, &fakeNote{Base: model.Base{Divs: 2}}}}

	if _, err := NormalizeDivisions([]*Segment{s, segment(3, 3)}, 0); err != nil {
		t.Fatal(err)
	}
	if attrs.divisions != 6 {
		t.Errorf("carrier divisions = %d, want 6", attrs.divisions)
	}
}

func TestNormalizeDivisionsInvalid(t *testing.T) {
	_, err := NormalizeDivisions([]*Segment{segment(4, 4), segment(0)}, 0)
	if !errors.Is(err, errors.ErrCodeInvariant) {
		t.Errorf("error = %v, want invariant", err)
	}
}

func TestLCM(t *testing.T) {
	tests := []struct{ a, b, want int }{
		{1, 1, 1},
		{2, 3, 6},
		{4, 6, 12},
		{480, 3, 480},
	}
	for _, tt := range tests {
		if got := lcm(tt.a, tt.b); got != tt.want {
			t.Errorf("lcm(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
