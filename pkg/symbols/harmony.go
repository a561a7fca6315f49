package symbols

import (
	"github.com/matzehuels/engraver/pkg/engine/model"
	"github.com/matzehuels/engraver/pkg/engine/registry"
)

const TagHarmony = "harmony"

// HarmonyY is the default height of chord symbols above the staff.
const HarmonyY = 50.0

var kindSuffixes = map[string]string{
	"major":            "",
	"minor":            "m",
	"augmented":        "+",
	"diminished":       "°",
	"dominant":         "7",
	"major-seventh":    "maj7",
	"minor-seventh":    "m7",
	"half-diminished":  "ø7",
	"suspended-fourth": "sus4",
}

// Harmony is a chord symbol.
type Harmony struct {
	model.Base `mapstructure:",squash"`
	Root       string  `mapstructure:"root"`
	Kind       string  `mapstructure:"kind"`
	Text       string  `mapstructure:"text"`
	FontFamily string  `mapstructure:"font_family"`
	FontSize   float64 `mapstructure:"font_size"`
}

// NewHarmony builds a chord symbol from its spec.
func NewHarmony(spec registry.Spec) (model.Symbol, error) {
	h := &Harmony{Base: model.Base{Frozen: model.FrozenWarm}}
	if err := registry.Decode(spec, h); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Harmony) Class() model.RenderClass { return model.ClassHarmony }

func (h *Harmony) Validate(c *model.Cursor) error {
	if h.Staff == 0 {
		h.Staff = 1
	}
	if h.Kind == "" {
		h.Kind = "major"
	}
	return nil
}

// Label is the displayed text. An explicit Text wins; unknown kinds are
// spelled out.
func (h *Harmony) Label() string {
	if h.Text != "" {
		return h.Text
	}
	suffix, ok := kindSuffixes[h.Kind]
	if !ok {
		suffix = h.Kind
	}
	return h.Root + suffix
}

func (h *Harmony) Layout(c *model.Cursor) (model.Layout, error) {
	l := model.NewLayout(h, c)
	l.MergePolicy = model.MergeNone
	l.ExpandPolicy = model.ExpandNone
	l.Y = HarmonyY

	w := withTextDefaults(Words{Text: h.Label(), FontFamily: h.FontFamily, FontSize: h.FontSize})
	l.BoundingBoxes = []model.BoundingBox{textBox(c, w.FontFamily, w.Text, w.FontSize, w.FontStyle)}
	l.Detail = w
	return l, nil
}
