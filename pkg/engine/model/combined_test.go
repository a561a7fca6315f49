package model

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

// fakeLayouts returns n attributes layouts 100 apart, four divisions apart,
// with every entry but the first moved offset divisions later.
func fakeLayouts(n, offset int) []Layout {
	out := make([]Layout, n)
	for i := range out {
		d := i * 4
		if i > 0 {
			d += offset
		}
		out[i] = Layout{X: float64(i * 100), Division: d, RenderClass: ClassAttributes, MergePolicy: MergeMax}
	}
	return out
}

func TestMergeMultipleSegments(t *testing.T) {
	log3 := 10 * math.Log2(3)
	layout1 := fakeLayouts(5, 0)
	layout2 := fakeLayouts(5, 2)

	combined := Merge(layout1, layout2, layout1, layout2)

	want := CombinedLayout{
		{X: 0, Division: 0},
		{X: 100, Division: 4},
		{X: 100 + log3, Division: 6},
		{X: 200, Division: 8},
		{X: 200 + log3, Division: 10},
		{X: 300, Division: 12},
		{X: 300 + log3, Division: 14},
		{X: 400, Division: 16},
		{X: 400 + log3, Division: 18},
	}
	for i := range want {
		want[i].RenderClass = ClassAttributes
	}
	if diff := cmp.Diff(want, combined, approx); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeIdempotent(t *testing.T) {
	layout1 := fakeLayouts(5, 0)
	layout2 := fakeLayouts(5, 2)

	once := Merge(layout1, layout2)
	if diff := cmp.Diff(once, Merge(once.Layouts()), approx); diff != "" {
		t.Errorf("re-merging skyline changed it (-once +twice):\n%s", diff)
	}
	if diff := cmp.Diff(once, Merge(once.Layouts(), layout1, layout2), approx); diff != "" {
		t.Errorf("merging skyline with its segments changed it (-once +twice):\n%s", diff)
	}
}

// chordLayouts builds MergeMax chord layouts from (x, division) pairs.
func chordLayouts(pairs ...[2]float64) []Layout {
	out := make([]Layout, len(pairs))
	for i, p := range pairs {
		out[i] = Layout{X: p[0], Division: int(p[1]), RenderClass: ClassChord, MergePolicy: MergeMax}
	}
	return out
}

// permutations returns every ordering of segs.
func permutations(segs [][]Layout) [][][]Layout {
	if len(segs) <= 1 {
		return [][][]Layout{segs}
	}
	var out [][][]Layout
	for i := range segs {
		rest := make([][]Layout, 0, len(segs)-1)
		rest = append(rest, segs[:i]...)
		rest = append(rest, segs[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([][]Layout{segs[i]}, p...))
		}
	}
	return out
}

func TestMergeOrderIndependent(t *testing.T) {
	tests := []struct {
		name     string
		segments [][]Layout
	}{
		{
			name: "three voices sharing divisions",
			segments: [][]Layout{
				chordLayouts([2]float64{0, 0}, [2]float64{36, 1}, [2]float64{78, 3}, [2]float64{83, 4}, [2]float64{125, 8}),
				chordLayouts([2]float64{0, 0}, [2]float64{34, 2}, [2]float64{78, 6}, [2]float64{83, 9}, [2]float64{108, 12}),
				chordLayouts([2]float64{0, 0}, [2]float64{8, 4}, [2]float64{43, 6}, [2]float64{77, 9}),
			},
		},
		{
			name: "four offset segments",
			segments: [][]Layout{
				fakeLayouts(4, 0),
				fakeLayouts(6, 1),
				fakeLayouts(3, 3),
				fakeLayouts(5, 2),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := Merge(tt.segments...)
			for _, p := range permutations(tt.segments) {
				if diff := cmp.Diff(want, Merge(p...), approx); diff != "" {
					t.Fatalf("merge order changed skyline (-first +permuted):\n%s", diff)
				}
			}
		})
	}
}

func TestMergeSharedDivisionPushedByEarlierColumn(t *testing.T) {
	a := chordLayouts([2]float64{0, 0}, [2]float64{50, 2})
	b := chordLayouts([2]float64{0, 0}, [2]float64{10, 1}, [2]float64{20, 2})

	got := Merge(a, b)
	// a's wider first note decides the shared column.
	if e, _ := got.Find(2); math.Abs(e.X-50) > 1e-9 {
		t.Errorf("x at division 2 = %v, want 50", e.X)
	}
	if got2 := Merge(b, a); cmp.Diff(got, got2, approx) != "" {
		t.Errorf("Merge(b, a) = %+v, want %+v", got2, got)
	}
}

func TestMergeMonotonic(t *testing.T) {
	combined := Merge(fakeLayouts(4, 0), fakeLayouts(6, 1), fakeLayouts(3, 3))
	if !combined.Monotonic() {
		t.Fatalf("combined layout not strictly increasing: %+v", combined)
	}
	for i := 1; i < len(combined); i++ {
		if combined[i].X < combined[i-1].X {
			t.Errorf("x decreased at %d: %v < %v", i, combined[i].X, combined[i-1].X)
		}
	}
}

func TestMergeSameDivisionTakesMax(t *testing.T) {
	layouts := []Layout{
		{X: 10, Division: 0, RenderClass: ClassChord, ExpandPolicy: ExpandAfter},
		{X: 30, Division: 0, RenderClass: ClassAttributes},
		{X: 50, Division: 2, RenderClass: ClassBarline},
	}
	got := Merge(layouts)
	want := CombinedLayout{
		{X: 30, Division: 0, RenderClass: ClassChord, Expand: true},
		{X: 50, Division: 2, RenderClass: ClassBarline},
	}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeEmpty(t *testing.T) {
	if got := Merge(); len(got) != 0 {
		t.Errorf("Merge() = %v, want empty", got)
	}
	if got := Merge(nil, nil); len(got) != 0 {
		t.Errorf("Merge(nil, nil) = %v, want empty", got)
	}
}

func TestSpacing(t *testing.T) {
	tests := []struct {
		gap  int
		want float64
	}{
		{0, 0},
		{-3, 0},
		{1, 10},
		{3, 20},
		{7, 30},
	}
	for _, tt := range tests {
		if got := Spacing(tt.gap); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Spacing(%d) = %v, want %v", tt.gap, got, tt.want)
		}
	}

	q := QuarterSpacing(4)
	if got := q(4); math.Abs(got-10) > 1e-9 {
		t.Errorf("QuarterSpacing(4)(4) = %v, want 10", got)
	}
	if got := QuarterSpacing(0)(1); math.Abs(got-10) > 1e-9 {
		t.Errorf("QuarterSpacing(0)(1) = %v, want 10", got)
	}
}

func TestCombinedIndexAndFind(t *testing.T) {
	c := CombinedLayout{{X: 0, Division: 0}, {X: 20, Division: 4}, {X: 35, Division: 8}}

	tests := []struct {
		division  int
		wantIndex int
		wantFound bool
	}{
		{-1, -1, false},
		{0, 0, true},
		{3, 0, false},
		{4, 1, true},
		{9, 2, false},
	}
	for _, tt := range tests {
		if got := c.Index(tt.division); got != tt.wantIndex {
			t.Errorf("Index(%d) = %d, want %d", tt.division, got, tt.wantIndex)
		}
		if _, ok := c.Find(tt.division); ok != tt.wantFound {
			t.Errorf("Find(%d) found = %v, want %v", tt.division, ok, tt.wantFound)
		}
	}
}
