// Package model is the leaf contract of the layout engine.
//
// It defines what a notation symbol must do to take part in layout (Symbol),
// the mutable state threaded through a measure pass (Cursor), what a symbol's
// layout step produces (Layout), and how layouts from parallel voices and
// staves reduce into one per-division skyline (CombinedLayout, Merge).
//
// Segments, measures and concrete symbol variants live in packages that
// import this one; nothing here imports them.
//
// # Usage
//
// A symbol variant embeds Base and implements Validate and Layout:
//
//	type Clef struct{ model.Base }
//
//	func (c *Clef) Class() model.RenderClass { return model.ClassAttributes }
//	func (c *Clef) Validate(*model.Cursor) error { return nil }
//	func (c *Clef) Layout(cur *model.Cursor) (model.Layout, error) {
//	    l := model.NewLayout(c, cur)
//	    cur.X += 24
//	    return l, nil
//	}
package model
