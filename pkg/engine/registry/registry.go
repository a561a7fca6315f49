// Package registry maps symbol type tags to constructors, so documents can
// name symbols by tag and callers can extend the vocabulary without touching
// the layout engine.
//
// # Usage
//
//	r := registry.New()
//	r.MustRegister("barline", func(spec registry.Spec) (model.Symbol, error) {
//	    b := &Barline{}
//	    return b, registry.Decode(spec, b)
//	})
//
//	sym, err := r.Create("barline", registry.Spec{"style": "light-heavy"})
package registry

import (
	"sort"
	"sync"

	"github.com/mitchellh/mapstructure"

	"github.com/matzehuels/engraver/pkg/engine/model"
	"github.com/matzehuels/engraver/pkg/errors"
)

// Spec is the untyped description of one symbol, as read from a document.
type Spec map[string]any

// Constructor builds a symbol from its spec.
type Constructor func(spec Spec) (model.Symbol, error)

// Registry is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

// Register adds a constructor. Registering a tag twice is an error.
func (r *Registry) Register(tag string, ctor Constructor) error {
	if err := errors.ValidateSymbolTag(tag); err != nil {
		return err
	}
	if ctor == nil {
		return errors.New(errors.ErrCodeInvalidSymbol, "nil constructor for %q", tag)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ctors[tag]; ok {
		return errors.New(errors.ErrCodeInvalidSymbol, "symbol %q already registered", tag)
	}
	r.ctors[tag] = ctor
	return nil
}

// MustRegister is like Register but panics on error. Use it for built-ins.
func (r *Registry) MustRegister(tag string, ctor Constructor) {
	if err := r.Register(tag, ctor); err != nil {
		panic(err)
	}
}

// Create builds a symbol of the given tag.
func (r *Registry) Create(tag string, spec Spec) (model.Symbol, error) {
	r.mu.RLock()
	ctor, ok := r.ctors[tag]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeSymbolNotFound, "no symbol registered for %q", tag)
	}
	sym, err := ctor(spec)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSymbol, err, "create %s", tag)
	}
	return sym, nil
}

// Has reports whether tag is registered.
func (r *Registry) Has(tag string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ctors[tag]
	return ok
}

// Tags returns the registered tags, sorted.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.ctors))
	for t := range r.ctors {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// Decode copies spec into out, a pointer to a struct with mapstructure tags.
// Unknown keys are rejected so typos in documents surface as errors.
// Embedded structs are squashed, so model.Base fields sit at the top level.
func Decode(spec Spec, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Squash:           true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(map[string]any(spec)); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSymbol, err, "decode spec")
	}
	return nil
}
