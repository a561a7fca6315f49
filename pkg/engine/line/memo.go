package line

import (
	"reflect"
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/engraver/pkg/engine/measure"
	"github.com/matzehuels/engraver/pkg/engine/model"
	"github.com/matzehuels/engraver/pkg/score"
)

// Memo carries state across the lines of one layout pass and caches results
// across passes.
//
// Two levels are kept. The clean cache maps a measure's UUID to its natural
// layout; an entry is reused while the measure's version, its place on the
// line and the attributes it starts with are unchanged. The reduced cache
// maps (page, line) to the final, postprocessed line; it is reused while the
// line starts at the same y, has the same bounds, line count and
// postprocessors, and is made of the very same clean layouts.
//
// A Memo is not safe for concurrent use.
type Memo struct {
	// Y is where the next line starts. Layout moves it down.
	Y float64

	clean   map[uuid.UUID]*cleanEntry
	reduced map[lineKey]*reducedEntry
	stats   Stats
}

// Stats counts cache lookups.
type Stats struct {
	MeasureHits   int `json:"measure_hits"`
	MeasureMisses int `json:"measure_misses"`
	LineHits      int `json:"line_hits"`
	LineMisses    int `json:"line_misses"`
}

type cleanEntry struct {
	layout *measure.MeasureLayout
	line   model.LineContext
	attrs  map[string]*model.Attributes
	next   measureRef
}

// measureRef pins a measure at a version. The zero value means none.
type measureRef struct {
	id      uuid.UUID
	version int
}

func refOf(ms *score.Measure) measureRef {
	if ms == nil {
		return measureRef{}
	}
	return measureRef{id: ms.UUID, version: ms.Version}
}

type lineKey struct {
	page, line int
}

type reducedEntry struct {
	top     float64
	bounds  Bounds
	lines   int
	sources []*measure.MeasureLayout
	post    postKey
	result  *LineLayout
}

// postKey identifies the postprocessing a line went through. Closures built
// from the same function literal share an entry point and are not told
// apart.
type postKey struct {
	funcs            []uintptr
	justifyFinalLine bool
}

func postprocessing(opts *Options) postKey {
	k := postKey{justifyFinalLine: opts.JustifyFinalLine}
	for _, pp := range opts.Postprocessors {
		k.funcs = append(k.funcs, reflect.ValueOf(pp).Pointer())
	}
	return k
}

func (k postKey) equal(o postKey) bool {
	return k.justifyFinalLine == o.justifyFinalLine && slices.Equal(k.funcs, o.funcs)
}

// NewMemo returns an empty memo.
func NewMemo() *Memo {
	return &Memo{
		clean:   make(map[uuid.UUID]*cleanEntry),
		reduced: make(map[lineKey]*reducedEntry),
	}
}

// Reset starts a new pass at y = top. Cached layouts are kept.
func (m *Memo) Reset(top float64) {
	m.Y = top
}

// Invalidate drops the cached layout of one measure and every line built
// from it.
func (m *Memo) Invalidate(id uuid.UUID) {
	e, ok := m.clean[id]
	if !ok {
		return
	}
	delete(m.clean, id)
	for k, r := range m.reduced {
		for _, s := range r.sources {
			if s == e.layout {
				delete(m.reduced, k)
				break
			}
		}
	}
}

// Clear drops everything.
func (m *Memo) Clear() {
	clear(m.clean)
	clear(m.reduced)
}

// Cached returns the clean layout of ms if one exists for its current
// version.
func (m *Memo) Cached(ms *score.Measure) (*measure.MeasureLayout, bool) {
	e, ok := m.clean[ms.UUID]
	if !ok || e.layout.Version() != ms.Version {
		return nil, false
	}
	return e.layout, true
}

// Stats returns lookup counts since the memo was created.
func (m *Memo) Stats() Stats { return m.stats }

// Len returns the number of cached measures and lines.
func (m *Memo) Len() (measures, lines int) {
	return len(m.clean), len(m.reduced)
}

func (m *Memo) lookupMeasure(ms *score.Measure, ctx model.LineContext, attrs map[string]*model.Attributes, next *score.Measure) *measure.MeasureLayout {
	e, ok := m.clean[ms.UUID]
	if ok && e.layout.Version() == ms.Version && e.line == ctx && e.next == refOf(next) && reflect.DeepEqual(e.attrs, attrs) {
		m.stats.MeasureHits++
		return e.layout
	}
	m.stats.MeasureMisses++
	return nil
}

func (m *Memo) storeMeasure(ml *measure.MeasureLayout, ctx model.LineContext, attrs map[string]*model.Attributes, next *score.Measure) {
	m.clean[ml.UUID] = &cleanEntry{layout: ml, line: ctx, attrs: model.CloneAttributes(attrs), next: refOf(next)}
}

func (m *Memo) lookupLine(k lineKey, top float64, bounds Bounds, lines int, sources []*measure.MeasureLayout, post postKey) *LineLayout {
	r, ok := m.reduced[k]
	if ok && r.top == top && r.bounds == bounds && r.lines == lines && r.post.equal(post) && sameLayouts(r.sources, sources) {
		m.stats.LineHits++
		return r.result
	}
	m.stats.LineMisses++
	return nil
}

func sameLayouts(a, b []*measure.MeasureLayout) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
