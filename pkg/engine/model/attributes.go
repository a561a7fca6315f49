package model

// Clef is a clef sign and the staff line it sits on.
type Clef struct {
	Sign string `json:"sign" yaml:"sign" mapstructure:"sign"`
	Line int    `json:"line" yaml:"line" mapstructure:"line"`
}

// TrebleClef is assumed when a staff has no clef.
var TrebleClef = Clef{Sign: "G", Line: 2}

// Attributes is the running snapshot of a part's musical context: time grid,
// key, meter, staff count and clefs. Measures hand their final snapshot to
// the next measure.
type Attributes struct {
	Divisions int    `json:"divisions"`
	Fifths    int    `json:"fifths"`
	Beats     int    `json:"beats"`
	BeatType  int    `json:"beat_type"`
	Staves    int    `json:"staves"`
	Clefs     []Clef `json:"clefs,omitempty"`
}

// DefaultAttributes is the context of a part before any attributes symbol.
func DefaultAttributes() *Attributes {
	return &Attributes{
		Divisions: 1,
		Beats:     4,
		BeatType:  4,
		Staves:    1,
		Clefs:     []Clef{TrebleClef},
	}
}

// Clone returns a deep copy. A nil receiver clones to nil.
func (a *Attributes) Clone() *Attributes {
	if a == nil {
		return nil
	}
	out := *a
	out.Clefs = append([]Clef(nil), a.Clefs...)
	return &out
}

// Clef returns the clef of a 1-based staff index.
func (a *Attributes) Clef(staff int) Clef {
	if a == nil || staff < 1 || staff > len(a.Clefs) {
		return TrebleClef
	}
	return a.Clefs[staff-1]
}

// MeasureDivisions is the length of a full measure in divisions.
func (a *Attributes) MeasureDivisions() int {
	if a == nil || a.BeatType == 0 {
		return 0
	}
	return a.Divisions * a.Beats * 4 / a.BeatType
}

// CloneAttributes deep-copies a per-part snapshot map.
func CloneAttributes(m map[string]*Attributes) map[string]*Attributes {
	if m == nil {
		return nil
	}
	out := make(map[string]*Attributes, len(m))
	for k, v := range m {
		out[k] = v.Clone()
	}
	return out
}
