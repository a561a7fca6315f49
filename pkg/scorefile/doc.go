// Package scorefile reads score documents in JSON, YAML or TOML.
//
// # Document Format
//
// A document has a header, an optional line plan and a list of measures.
// Every symbol names its type with the "type" key; the remaining keys are
// passed to the registry constructor for that type:
//
//	header:
//	  title: Minuet
//	  parts:
//	    - {id: P1, name: Piano}
//	lines: [2, 2]
//	measures:
//	  - number: "1"
//	    parts:
//	      P1:
//	        divisions: 2
//	        staves:
//	          - number: 1
//	            symbols:
//	              - {type: attributes, divisions: 2, clefs: [{sign: G}], time: {beats: 3, beat_type: 4}}
//	        voices:
//	          - number: 1
//	            symbols:
//	              - {type: note, div_count: 2, pitches: [{step: D, octave: 5}]}
//	              - {type: barline}
//
// Segment divisions default to the part's divisions in that measure, then to
// the divisions of an attributes symbol in the segment, then to the last
// divisions seen for the part, then to 1. Every staff up
// to the part's current staff count gets a segment, even when the document
// lists none.
//
// # Reading
//
// Use [Import] to read a file, choosing the format from its extension, or
// [Read] with an explicit [Format]:
//
//	sc, err := scorefile.Import("minuet.yaml", symbols.NewRegistry())
//
// A measure may carry a "uuid"; it is kept so that layouts of re-read
// documents stay cacheable by identity.
package scorefile
