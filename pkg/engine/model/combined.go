package model

import (
	"math"
	"sort"
)

// MinSpace scales the minimum horizontal distance between two divisions.
const MinSpace = 10.0

// CombinedEntry is one column of a measure's skyline.
type CombinedEntry struct {
	X           float64     `json:"x"`
	Division    int         `json:"division"`
	RenderClass RenderClass `json:"render_class"`
	Expand      bool        `json:"expand,omitempty"`
}

// CombinedLayout is the merged skyline of all segments of a measure,
// strictly increasing by division.
type CombinedLayout []CombinedEntry

// GapFunc returns the minimum distance between columns gap divisions apart.
type GapFunc func(gap int) float64

// Spacing is the default GapFunc: MinSpace·log2(1+gap). Doubling a gap adds
// a constant distance instead of doubling it.
func Spacing(gap int) float64 {
	if gap <= 0 {
		return 0
	}
	return MinSpace * math.Log2(1+float64(gap))
}

// QuarterSpacing returns a GapFunc measuring gaps in quarter notes for a
// time grid of divisions per quarter, so the floor does not depend on the
// grid resolution.
func QuarterSpacing(divisions int) GapFunc {
	if divisions <= 0 {
		divisions = 1
	}
	return func(gap int) float64 {
		if gap <= 0 {
			return 0
		}
		return MinSpace * math.Log2(1+float64(gap)/float64(divisions))
	}
}

// Merge reduces segments to one skyline using Spacing.
func Merge(segments ...[]Layout) CombinedLayout {
	return MergeAll(segments, Spacing)
}

// MergeAll reduces all segments of a measure to one skyline in a single pass
// over their divisions.
//
// Each segment keeps a shift: how far its entries have been pushed right so
// far. A column's x is the largest shifted x among the segments present at
// that division, but never closer to the previous column than gap allows.
// The result does not depend on the order of segments, and merging a
// skyline with itself or with segments already in it changes nothing.
func MergeAll(segments [][]Layout, gap GapFunc) CombinedLayout {
	cols := make([]CombinedLayout, 0, len(segments))
	total := 0
	for _, s := range segments {
		if c := collapse(s); len(c) > 0 {
			cols = append(cols, c)
			total += len(c)
		}
	}
	out := make(CombinedLayout, 0, total)
	pos := make([]int, len(cols))
	shift := make([]float64, len(cols))

	for {
		d, found := 0, false
		for k, c := range cols {
			if pos[k] < len(c) && (!found || c[pos[k]].Division < d) {
				d, found = c[pos[k]].Division, true
			}
		}
		if !found {
			return out
		}

		entry := CombinedEntry{Division: d}
		x := math.Inf(-1)
		for k, c := range cols {
			if pos[k] == len(c) || c[pos[k]].Division != d {
				continue
			}
			e := c[pos[k]]
			x = max(x, e.X+shift[k])
			entry.RenderClass = max(entry.RenderClass, e.RenderClass)
			entry.Expand = entry.Expand || e.Expand
		}
		if n := len(out); n > 0 {
			x = max(x, out[n-1].X+gap(d-out[n-1].Division))
		}
		for k, c := range cols {
			if pos[k] < len(c) && c[pos[k]].Division == d {
				shift[k] = x - c[pos[k]].X
				pos[k]++
			}
		}
		entry.X = x
		out = append(out, entry)
	}
}

// Layouts returns the skyline as a single segment, so it can be merged again.
func (c CombinedLayout) Layouts() []Layout {
	out := make([]Layout, len(c))
	for i, e := range c {
		out[i] = Layout{X: e.X, Division: e.Division, RenderClass: e.RenderClass, MergePolicy: MergeMax}
		if e.Expand {
			out[i].ExpandPolicy = ExpandAfter
		}
	}
	return out
}

// collapse reduces layouts to one entry per division.
func collapse(layouts []Layout) CombinedLayout {
	sorted := make([]Layout, len(layouts))
	copy(sorted, layouts)
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].Division < sorted[b].Division })

	var out CombinedLayout
	for _, l := range sorted {
		expand := l.ExpandPolicy == ExpandAfter
		if n := len(out); n > 0 && out[n-1].Division == l.Division {
			last := &out[n-1]
			last.X = max(last.X, l.X)
			last.RenderClass = max(last.RenderClass, l.RenderClass)
			last.Expand = last.Expand || expand
			continue
		}
		out = append(out, CombinedEntry{X: l.X, Division: l.Division, RenderClass: l.RenderClass, Expand: expand})
	}
	return out
}

// Index returns the position of the last entry with Division <= division,
// or -1 if there is none.
func (c CombinedLayout) Index(division int) int {
	return sort.Search(len(c), func(i int) bool { return c[i].Division > division }) - 1
}

// Find returns the entry at exactly division.
func (c CombinedLayout) Find(division int) (CombinedEntry, bool) {
	i := c.Index(division)
	if i < 0 || c[i].Division != division {
		return CombinedEntry{}, false
	}
	return c[i], true
}

// Monotonic reports whether divisions strictly increase.
func (c CombinedLayout) Monotonic() bool {
	for i := 1; i < len(c); i++ {
		if c[i].Division <= c[i-1].Division {
			return false
		}
	}
	return true
}
