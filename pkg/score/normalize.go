package score

import (
	"github.com/matzehuels/engraver/pkg/engine/model"
	"github.com/matzehuels/engraver/pkg/errors"
)

// NormalizeDivisions puts segments on a common time grid and returns it.
//
// The grid is the least common multiple of every segment's Divisions, seeded
// with factor (values below 1 seed 1). Each symbol's DivCount, each
// DivisionsCarrier and each segment's Divisions are scaled by new/old. Nil
// segments are skipped. Applying it twice is a no-op.
func NormalizeDivisions(segments []*Segment, factor int) (int, error) {
	d := max(factor, 1)
	for _, s := range segments {
		if s == nil {
			continue
		}
		if s.Divisions <= 0 {
			return 0, errors.Invariant("segment %s %d of part %q has divisions %d", s.OwnerType, s.Owner, s.Part, s.Divisions)
		}
		d = lcm(d, s.Divisions)
	}

	for _, s := range segments {
		if s == nil || s.Divisions == d {
			continue
		}
		ratio := d / s.Divisions
		for _, sym := range s.Symbols {
			if sym == nil {
				continue
			}
			sym.SetDivCount(sym.DivCount() * ratio)
			if c, ok := sym.(model.DivisionsCarrier); ok && c.Divisions() > 0 {
				c.SetDivisions(c.Divisions() * ratio)
			}
		}
		s.Divisions = d
	}
	return d, nil
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int) int {
	return a / gcd(a, b) * b
}
