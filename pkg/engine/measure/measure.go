// Package measure lays out one measure: it walks every voice and staff
// segment in lock-step by division, lets each symbol place itself with a
// shared cursor, and reconciles simultaneous symbols into one skyline.
//
// # Algorithm
//
// Segments are put on a common time grid first. The walk then repeatedly
// takes the earliest pending (division, render class) pair as the next
// column. A column starts at the rightmost point reached by any segment that
// is already at or before its division, so a symbol never overlaps what
// precedes it in time. Every participating symbol is laid out at that x; the
// MergeMax layouts of the column then move to their rightmost member and
// push their segment along. Finally the segments are folded into a
// CombinedLayout, which may push columns further apart to honour the minimum
// logarithmic spacing, and every layout is moved onto its column.
package measure

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/engraver/pkg/engine/model"
	"github.com/matzehuels/engraver/pkg/errors"
	"github.com/matzehuels/engraver/pkg/header"
	"github.com/matzehuels/engraver/pkg/score"
)

// StaffHeight is the distance between the outer lines of a staff; boxes
// inside [−StaffHeight, 0] need no padding.
const StaffHeight = 40.0

// Options configures one measure pass.
type Options struct {
	Measure *score.Measure
	Header  *header.Header

	// Attributes is the per-part snapshot in effect when the measure starts,
	// normally the previous measure's MeasureLayout.Attributes.
	Attributes map[string]*model.Attributes

	Line    model.LineContext
	X       float64
	Metrics model.TextMetrics
	Logger  *log.Logger

	// Next is the measure that follows on the next line, when this one ends
	// its line. Barlines use it to show upcoming clef and key changes.
	Next *score.Measure
}

// SegmentKey identifies a segment within a measure.
type SegmentKey struct {
	Part      string          `json:"part"`
	OwnerType model.OwnerType `json:"owner_type"`
	Owner     int             `json:"owner"`
}

func (k SegmentKey) String() string {
	return fmt.Sprintf("%s/%s%d", k.Part, k.OwnerType, k.Owner)
}

// MeasureLayout is the laid-out measure. Once cached it is shared; callers
// that need to move things call Detach first.
type MeasureLayout struct {
	UUID   uuid.UUID
	Number string

	// Segments and Elements are parallel: Elements[i] holds the layouts of
	// Segments[i] in segment order.
	Segments []SegmentKey
	Elements [][]model.Layout

	Combined     model.CombinedLayout
	Width        float64
	MaxDivisions int
	Divisions    int

	// Attributes is the snapshot in effect at the end of the measure.
	Attributes map[string]*model.Attributes

	OriginX       float64
	OriginY       map[string][]float64
	PaddingTop    map[string][]float64
	PaddingBottom map[string][]float64

	// Approximate is set when some text was measured without its font.
	Approximate bool

	version int
}

// Version is the measure version this layout was computed at.
func (m *MeasureLayout) Version() int { return m.version }

// Detach returns a copy whose coordinates can be changed without touching m.
func (m *MeasureLayout) Detach() *MeasureLayout {
	out := *m
	out.Segments = append([]SegmentKey(nil), m.Segments...)
	out.Elements = make([][]model.Layout, len(m.Elements))
	for i, seg := range m.Elements {
		out.Elements[i] = make([]model.Layout, len(seg))
		for j, l := range seg {
			out.Elements[i][j] = l.Clone()
		}
	}
	out.Combined = append(model.CombinedLayout(nil), m.Combined...)
	out.Attributes = model.CloneAttributes(m.Attributes)
	out.OriginY = cloneStaffMap(m.OriginY)
	out.PaddingTop = cloneStaffMap(m.PaddingTop)
	out.PaddingBottom = cloneStaffMap(m.PaddingBottom)
	return &out
}

// BoundingBoxes counts every box of every layout.
func (m *MeasureLayout) BoundingBoxes() int {
	n := 0
	for _, seg := range m.Elements {
		for _, l := range seg {
			n += len(l.BoundingBoxes)
		}
	}
	return n
}

func cloneStaffMap(in map[string][]float64) map[string][]float64 {
	if in == nil {
		return nil
	}
	out := make(map[string][]float64, len(in))
	for k, v := range in {
		out[k] = append([]float64(nil), v...)
	}
	return out
}

// walker is the per-segment state of the lock-step walk.
type walker struct {
	key      SegmentKey
	seg      *score.Segment
	idx      int
	division int
	pendingX float64
	layouts  []model.Layout
}

func (w *walker) skipNil() {
	for w.idx < len(w.seg.Symbols) && w.seg.Symbols[w.idx] == nil {
		w.idx++
	}
}

func (w *walker) done() bool {
	w.skipNil()
	return w.idx >= len(w.seg.Symbols)
}

func (w *walker) next() model.Symbol { return w.seg.Symbols[w.idx] }

// Layout lays out opts.Measure.
func Layout(opts Options) (*MeasureLayout, error) {
	m := opts.Measure
	if m == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no measure to lay out")
	}
	h := opts.Header
	if h == nil {
		h = header.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	for id := range m.Parts {
		if !h.HasPart(id) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "measure %s has part %q missing from the part list", m.Number, id)
		}
	}

	var walkers []*walker
	var segments []*score.Segment
	for _, id := range h.PartIDs() {
		part := m.Parts[id]
		if part == nil {
			continue
		}
		add := func(segs []*score.Segment, t model.OwnerType) {
			for owner, s := range segs {
				if s == nil {
					continue
				}
				walkers = append(walkers, &walker{
					key:      SegmentKey{Part: id, OwnerType: t, Owner: owner},
					seg:      s,
					division: 0,
					pendingX: opts.X,
				})
				segments = append(segments, s)
			}
		}
		add(part.Voices, model.OwnerVoice)
		add(part.Staves, model.OwnerStaff)
	}

	divisions, err := score.NormalizeDivisions(segments, 0)
	if err != nil {
		return nil, fmt.Errorf("measure %s: %w", m.Number, err)
	}

	attrs := model.CloneAttributes(opts.Attributes)
	if attrs == nil {
		attrs = make(map[string]*model.Attributes)
	}
	for _, id := range h.PartIDs() {
		if attrs[id] == nil {
			attrs[id] = model.DefaultAttributes()
		}
	}

	cursor := &model.Cursor{
		Header:     h,
		Line:       opts.Line,
		Measure:    m.Context(),
		Attributes: attrs,
		Metrics:    opts.Metrics,
		Logger:     logger,
		Upcoming:   upcoming(opts.Next),
	}
	approximate := false
	lastColumnX := opts.X

	for {
		// Pick the next column: earliest division, then render class.
		var (
			found    bool
			division int
			class    model.RenderClass
		)
		for _, w := range walkers {
			if w.done() {
				continue
			}
			c := w.next().Class()
			if !found || w.division < division || (w.division == division && c < class) {
				found, division, class = true, w.division, c
			}
		}
		if !found {
			break
		}

		columnX := lastColumnX
		for _, w := range walkers {
			if w.division <= division {
				columnX = max(columnX, w.pendingX)
			}
		}

		var column []*walker
		for _, w := range walkers {
			if !w.done() && w.division == division && w.next().Class() == class {
				column = append(column, w)
			}
		}

		for _, w := range column {
			sym := w.next()
			cursor.X = columnX
			cursor.Division = division
			cursor.Index = w.idx
			cursor.Segment = model.SegmentView{
				Part:      w.key.Part,
				Owner:     w.key.Owner,
				OwnerType: w.key.OwnerType,
				Divisions: w.seg.Divisions,
				Symbols:   w.seg.Symbols,
			}
			cursor.Approximate = false

			if err := sym.Validate(cursor); err != nil {
				return nil, fmt.Errorf("measure %s %s symbol %d: validate: %w", m.Number, w.key, w.idx, err)
			}
			cursor.X = columnX
			l, err := sym.Layout(cursor)
			if err != nil {
				return nil, fmt.Errorf("measure %s %s symbol %d: %w", m.Number, w.key, w.idx, err)
			}
			l.Symbol = sym
			l.Division = division
			if l.Staff == 0 {
				l.Staff = 1
				if w.key.OwnerType == model.OwnerStaff {
					l.Staff = w.key.Owner
				}
			}
			if l.Attributes != nil {
				attrs[w.key.Part] = l.Attributes
			}
			approximate = approximate || cursor.Approximate
			w.pendingX = cursor.X
			w.layouts = append(w.layouts, l)
		}

		// Reconcile MergeMax layouts of the column.
		maxX := columnX
		for _, w := range column {
			l := w.layouts[len(w.layouts)-1]
			if l.MergePolicy == model.MergeMax {
				maxX = max(maxX, l.X)
			}
		}
		for _, w := range column {
			l := &w.layouts[len(w.layouts)-1]
			if l.MergePolicy == model.MergeMax && l.X < maxX {
				w.pendingX += maxX - l.X
				l.X = maxX
			}
			lastColumnX = max(lastColumnX, l.X)
		}

		for _, w := range column {
			w.division += w.next().DivCount()
			w.idx++
		}
	}

	out := &MeasureLayout{
		UUID:          m.UUID,
		Number:        m.Number,
		Divisions:     divisions,
		Attributes:    attrs,
		PaddingTop:    make(map[string][]float64),
		PaddingBottom: make(map[string][]float64),
		Approximate:   approximate,
		version:       m.Version,
	}

	segLayouts := make([][]model.Layout, len(walkers))
	for i, w := range walkers {
		segLayouts[i] = w.layouts
		out.MaxDivisions = max(out.MaxDivisions, w.division)
	}
	out.Combined = model.MergeAll(segLayouts, model.QuarterSpacing(divisions))
	align(out.Combined, walkers)

	end := opts.X
	for _, w := range walkers {
		end = max(end, w.pendingX)
		out.Segments = append(out.Segments, w.key)
		out.Elements = append(out.Elements, w.layouts)
	}
	if n := len(out.Combined); n > 0 {
		end = max(end, out.Combined[n-1].X)
	}
	out.Width = end - opts.X

	computePadding(out, h)
	logger.Debug("measure laid out", "measure", m.Number, "width", out.Width, "divisions", divisions, "segments", len(walkers))
	return out, nil
}

// upcoming collects the attributes symbol each staff of next opens with:
// the first one before any symbol that takes time.
func upcoming(next *score.Measure) map[string][]model.AttributesSource {
	if next == nil {
		return nil
	}
	out := make(map[string][]model.AttributesSource)
	for id, part := range next.Parts {
		if part == nil {
			continue
		}
		srcs := make([]model.AttributesSource, len(part.Staves))
		found := false
		for n, seg := range part.Staves {
			if seg == nil {
				continue
			}
			for _, sym := range seg.Symbols {
				if sym == nil {
					continue
				}
				if src, ok := sym.(model.AttributesSource); ok {
					srcs[n], found = src, true
					break
				}
				if sym.DivCount() > 0 {
					break
				}
			}
		}
		if found {
			out[id] = srcs
		}
	}
	return out
}

// align moves every layout onto its combined column. Segment ends move with
// their last column.
func align(combined model.CombinedLayout, walkers []*walker) {
	natural := make(map[int]float64)
	for _, w := range walkers {
		for _, l := range w.layouts {
			if x, ok := natural[l.Division]; !ok || l.X > x {
				natural[l.Division] = l.X
			}
		}
	}
	delta := func(d int) float64 {
		e, ok := combined.Find(d)
		if !ok {
			return 0
		}
		return e.X - natural[d]
	}
	for _, w := range walkers {
		for i := range w.layouts {
			w.layouts[i].X += delta(w.layouts[i].Division)
		}
		if n := len(w.layouts); n > 0 {
			w.pendingX += delta(w.layouts[n-1].Division)
		}
	}
}

// computePadding records, per part and staff, how far boxes reach above the
// top line and below the bottom line.
func computePadding(out *MeasureLayout, h *header.Header) {
	for _, id := range h.PartIDs() {
		staves := 1
		if a := out.Attributes[id]; a != nil && a.Staves > staves {
			staves = a.Staves
		}
		out.PaddingTop[id] = make([]float64, staves+1)
		out.PaddingBottom[id] = make([]float64, staves+1)
	}
	for i, seg := range out.Elements {
		part := out.Segments[i].Part
		top, bottom := out.PaddingTop[part], out.PaddingBottom[part]
		for _, l := range seg {
			if l.Staff < 1 || l.Staff >= len(top) {
				continue
			}
			for _, b := range l.BoundingBoxes {
				top[l.Staff] = max(top[l.Staff], l.Y+b.Top)
				bottom[l.Staff] = max(bottom[l.Staff], -StaffHeight-(l.Y+b.Bottom))
			}
		}
	}
}
