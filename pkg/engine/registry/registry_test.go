package registry

import (
	"sync"
	"testing"

	"github.com/matzehuels/engraver/pkg/engine/model"
	"github.com/matzehuels/engraver/pkg/errors"
)

type testSymbol struct {
	model.Base
	Style string `mapstructure:"style"`
	Dots  int    `mapstructure:"dots"`
}

func (s *testSymbol) Class() model.RenderClass { return model.ClassBarline }

func (s *testSymbol) Validate(*model.Cursor) error { return nil }

func (s *testSymbol) Layout(c *model.Cursor) (model.Layout, error) {
	return model.NewLayout(s, c), nil
}

func newTestSymbol(spec Spec) (model.Symbol, error) {
	s := &testSymbol{}
	if err := Decode(spec, s); err != nil {
		return nil, err
	}
	return s, nil
}

func TestRegisterAndCreate(t *testing.T) {
	r := New()
	if err := r.Register("test", newTestSymbol); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	sym, err := r.Create("test", Spec{"style": "dashed", "dots": "2", "div_count": 4, "staff": 2})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	s := sym.(*testSymbol)
	if s.Style != "dashed" || s.Dots != 2 {
		t.Errorf("decoded = %+v", s)
	}
	if s.DivCount() != 4 || s.StaffIndex() != 2 {
		t.Errorf("base fields = %d/%d, want 4/2", s.DivCount(), s.StaffIndex())
	}
}

func TestRegisterErrors(t *testing.T) {
	r := New()
	r.MustRegister("test", newTestSymbol)

	tests := []struct {
		name string
		tag  string
		ctor Constructor
	}{
		{"duplicate", "test", newTestSymbol},
		{"bad tag", "Test Symbol", newTestSymbol},
		{"nil ctor", "other", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Register(tt.tag, tt.ctor)
			if !errors.Is(err, errors.ErrCodeInvalidSymbol) {
				t.Errorf("Register() error = %v, want %s", err, errors.ErrCodeInvalidSymbol)
			}
		})
	}
}

func TestMustRegisterPanics(t *testing.T) {
	r := New()
	r.MustRegister("test", newTestSymbol)
	defer func() {
		if recover() == nil {
			t.Error("MustRegister() duplicate did not panic")
		}
	}()
	r.MustRegister("test", newTestSymbol)
}

func TestCreateErrors(t *testing.T) {
	r := New()
	r.MustRegister("test", newTestSymbol)

	if _, err := r.Create("missing", nil); !errors.Is(err, errors.ErrCodeSymbolNotFound) {
		t.Errorf("Create(missing) error = %v, want not found", err)
	}
	if _, err := r.Create("test", Spec{"colour": "red"}); !errors.Is(err, errors.ErrCodeInvalidSymbol) {
		t.Errorf("Create() with unknown key error = %v, want invalid symbol", err)
	}
}

func TestTags(t *testing.T) {
	r := New()
	for _, tag := range []string{"note", "barline", "harmony"} {
		r.MustRegister(tag, newTestSymbol)
	}
	got := r.Tags()
	want := []string{"barline", "harmony", "note"}
	if len(got) != len(want) {
		t.Fatalf("Tags() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Tags()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if !r.Has("note") || r.Has("rest") {
		t.Error("Has() mismatch")
	}
}

func TestConcurrentCreate(t *testing.T) {
	r := New()
	r.MustRegister("test", newTestSymbol)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Create("test", Spec{"dots": 1}); err != nil {
				t.Errorf("Create() error: %v", err)
			}
		}()
	}
	wg.Wait()
}
