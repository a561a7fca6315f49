package symbols

import (
	"github.com/matzehuels/engraver/pkg/engine/model"
	"github.com/matzehuels/engraver/pkg/engine/registry"
)

const TagSpacer = "spacer"

// Spacer consumes time without drawing anything, like a forward in a voice.
type Spacer struct {
	model.Base `mapstructure:",squash"`
}

// NewSpacer builds a spacer from its spec.
func NewSpacer(spec registry.Spec) (model.Symbol, error) {
	s := &Spacer{Base: model.Base{Frozen: model.FrozenFrozen}}
	if err := registry.Decode(spec, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Spacer) Class() model.RenderClass { return model.ClassSpacer }

func (s *Spacer) Validate(*model.Cursor) error { return nil }

func (s *Spacer) Layout(c *model.Cursor) (model.Layout, error) {
	l := model.NewLayout(s, c)
	l.MergePolicy = model.MergeNone
	l.ExpandPolicy = model.ExpandAfter
	return l, nil
}
