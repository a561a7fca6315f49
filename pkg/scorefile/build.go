package scorefile

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/matzehuels/engraver/pkg/engine/model"
	"github.com/matzehuels/engraver/pkg/engine/registry"
	"github.com/matzehuels/engraver/pkg/errors"
	"github.com/matzehuels/engraver/pkg/score"
	"github.com/matzehuels/engraver/pkg/symbols"
)

// TypeKey names the symbol type in a symbol spec.
const TypeKey = "type"

// running is what the builder remembers about a part between measures.
type running struct {
	divisions int
	staves    int
}

// Build turns a decoded document into a score.
func Build(doc *Document, reg *registry.Registry) (*score.Score, error) {
	if reg == nil {
		reg = symbols.NewRegistry()
	}
	h := doc.Header
	h.SetDefaults()
	if len(h.PartList) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "part list is empty")
	}
	state := make(map[string]*running, len(h.PartList))
	for _, p := range h.PartList {
		if err := errors.ValidatePartID(p.ID); err != nil {
			return nil, err
		}
		if state[p.ID] != nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate part %q", p.ID)
		}
		state[p.ID] = &running{divisions: 1, staves: 1}
	}

	sc := &score.Score{Header: &h, Lines: doc.Lines}
	total := 0
	for _, n := range doc.Lines {
		if n < 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "negative measure count in lines")
		}
		total += n
	}
	if len(doc.Lines) > 0 && total != len(doc.Measures) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "lines hold %d measures, document has %d", total, len(doc.Measures))
	}

	for i, md := range doc.Measures {
		number := md.Number
		if number == "" {
			number = fmt.Sprint(i + 1)
		}
		for id := range md.Parts {
			if !h.HasPart(id) {
				return nil, errors.New(errors.ErrCodeInvalidInput, "measure %s has part %q missing from the part list", number, id)
			}
		}
		m := score.NewMeasure(i, number)
		if md.UUID != "" {
			id, err := uuid.Parse(md.UUID)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "measure %s: invalid uuid", number)
			}
			m.UUID = id
		}
		for _, id := range h.PartIDs() {
			part, err := buildPart(md.Parts[id], id, state[id], reg)
			if err != nil {
				return nil, fmt.Errorf("measure %s part %s: %w", number, id, err)
			}
			m.Parts[id] = part
		}
		sc.Measures = append(sc.Measures, m)
	}
	return sc, nil
}

func buildPart(pd PartDoc, id string, st *running, reg *registry.Registry) (*score.MeasurePart, error) {
	if pd.Divisions > 0 {
		st.divisions = pd.Divisions
	}

	// Staves first: their attributes may change the staff count and the
	// divisions the voices of this measure use.
	staves, err := buildSegments(pd.Staves, id, model.OwnerStaff, st, reg)
	if err != nil {
		return nil, err
	}
	voices, err := buildSegments(pd.Voices, id, model.OwnerVoice, st, reg)
	if err != nil {
		return nil, err
	}

	for len(staves) <= st.staves {
		staves = append(staves, nil)
	}
	for n := 1; n <= st.staves; n++ {
		if staves[n] == nil {
			staves[n] = &score.Segment{Owner: n, OwnerType: model.OwnerStaff, Part: id, Divisions: st.divisions}
		}
	}
	return &score.MeasurePart{Voices: voices, Staves: staves}, nil
}

func buildSegments(docs []SegmentDoc, part string, t model.OwnerType, st *running, reg *registry.Registry) ([]*score.Segment, error) {
	var out []*score.Segment
	for _, sd := range docs {
		if err := errors.ValidateSegmentNumber(t.String(), sd.Number); err != nil {
			return nil, err
		}
		seg := &score.Segment{Owner: sd.Number, OwnerType: t, Part: part, Divisions: sd.Divisions}
		for i, spec := range sd.Symbols {
			sym, err := buildSymbol(spec, reg)
			if err != nil {
				return nil, fmt.Errorf("%s %d symbol %d: %w", t, sd.Number, i, err)
			}
			if a, ok := sym.(*symbols.Attributes); ok {
				if a.Staves != nil && *a.Staves > 0 {
					if err := errors.ValidateStaves(*a.Staves); err != nil {
						return nil, fmt.Errorf("%s %d symbol %d: %w", t, sd.Number, i, err)
					}
					st.staves = *a.Staves
				}
				if a.Division > 0 {
					st.divisions = a.Division
					if seg.Divisions == 0 {
						seg.Divisions = a.Division
					}
				}
			}
			seg.Symbols = append(seg.Symbols, sym)
		}
		if seg.Divisions == 0 {
			seg.Divisions = st.divisions
		}
		if err := errors.ValidateDivisions(seg.Divisions); err != nil {
			return nil, fmt.Errorf("%s %d: %w", t, sd.Number, err)
		}

		for len(out) <= sd.Number {
			out = append(out, nil)
		}
		if out[sd.Number] != nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate %s %d", t, sd.Number)
		}
		out[sd.Number] = seg
	}
	return out, nil
}

func buildSymbol(spec map[string]any, reg *registry.Registry) (model.Symbol, error) {
	tag, ok := spec[TypeKey].(string)
	if !ok || tag == "" {
		return nil, errors.New(errors.ErrCodeInvalidSymbol, "symbol has no %q", TypeKey)
	}
	rest := make(registry.Spec, len(spec)-1)
	for k, v := range spec {
		if k != TypeKey {
			rest[k] = v
		}
	}
	return reg.Create(tag, rest)
}
