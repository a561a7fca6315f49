package scorefile

import (
	"github.com/matzehuels/engraver/pkg/header"
)

// Document is the serialized form of a score.
type Document struct {
	Header   header.Header `json:"header" yaml:"header" toml:"header"`
	Lines    []int         `json:"lines,omitempty" yaml:"lines,omitempty" toml:"lines,omitempty"`
	Measures []MeasureDoc  `json:"measures" yaml:"measures" toml:"measures"`
}

// MeasureDoc is one measure.
type MeasureDoc struct {
	UUID   string             `json:"uuid,omitempty" yaml:"uuid,omitempty" toml:"uuid,omitempty"`
	Number string             `json:"number,omitempty" yaml:"number,omitempty" toml:"number,omitempty"`
	Parts  map[string]PartDoc `json:"parts" yaml:"parts" toml:"parts"`
}

// PartDoc is one part of a measure.
type PartDoc struct {
	Divisions int          `json:"divisions,omitempty" yaml:"divisions,omitempty" toml:"divisions,omitempty"`
	Voices    []SegmentDoc `json:"voices,omitempty" yaml:"voices,omitempty" toml:"voices,omitempty"`
	Staves    []SegmentDoc `json:"staves,omitempty" yaml:"staves,omitempty" toml:"staves,omitempty"`
}

// SegmentDoc is one voice or staff of a part.
type SegmentDoc struct {
	Number    int              `json:"number" yaml:"number" toml:"number"`
	Divisions int              `json:"divisions,omitempty" yaml:"divisions,omitempty" toml:"divisions,omitempty"`
	Symbols   []map[string]any `json:"symbols" yaml:"symbols" toml:"symbols"`
}
