// Package symbols implements the built-in notation symbols: attributes,
// barlines, directions, harmonies, notes and spacers.
//
// Each variant is a plain struct with mapstructure tags, built from a
// registry.Spec by its New* constructor and registered under a lowercase tag
// by Register. Validate fills defaults in place; Layout never modifies the
// symbol and reports variant-specific results through model.Layout.Detail.
//
// Vertical coordinates are in tenths relative to the top line of the staff,
// positive upward, so a five-line staff spans 0 to -StaffHeight.
package symbols

import (
	"github.com/matzehuels/engraver/pkg/engine/model"
	"github.com/matzehuels/engraver/pkg/engine/registry"
)

// StaffHeight is the distance between the outer lines of a five-line staff.
const StaffHeight = 40.0

// Register adds every built-in symbol to r.
func Register(r *registry.Registry) error {
	builtins := []struct {
		tag  string
		ctor registry.Constructor
	}{
		{TagAttributes, NewAttributes},
		{TagBarline, NewBarline},
		{TagDirection, NewDirection},
		{TagHarmony, NewHarmony},
		{TagNote, NewNote},
		{TagSpacer, NewSpacer},
	}
	for _, b := range builtins {
		if err := r.Register(b.tag, b.ctor); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding the built-in symbols.
func NewRegistry() *registry.Registry {
	r := registry.New()
	if err := Register(r); err != nil {
		panic(err)
	}
	return r
}

// TagOf returns the registry tag of a built-in symbol, or "" for others.
func TagOf(s model.Symbol) string {
	switch s.(type) {
	case *Attributes:
		return TagAttributes
	case *Barline:
		return TagBarline
	case *Direction:
		return TagDirection
	case *Harmony:
		return TagHarmony
	case *Note:
		return TagNote
	case *Spacer:
		return TagSpacer
	}
	return ""
}
