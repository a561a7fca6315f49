package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeInvalidFormat, cause, "failed to decode")

	if err.Code != ErrCodeInvalidFormat {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidFormat)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{"matching code", New(ErrCodeInvalidInput, "test"), ErrCodeInvalidInput, true},
		{"different code", New(ErrCodeInvalidInput, "test"), ErrCodeInvariant, false},
		{"wrapped by fmt", wrapStd(Invariant("zero staves")), ErrCodeInvariant, true},
		{"plain error", errors.New("plain"), ErrCodeInvalidInput, false},
		{"nil error", nil, ErrCodeInvalidInput, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCodeAndUserMessage(t *testing.T) {
	err := wrapStd(New(ErrCodeSymbolNotFound, "no symbol %q", "glissando"))
	if got := GetCode(err); got != ErrCodeSymbolNotFound {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeSymbolNotFound)
	}
	if got := UserMessage(err); got != `no symbol "glissando"` {
		t.Errorf("UserMessage() = %v", got)
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage(plain) = %v, want plain", got)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %v, want empty", got)
	}
}

func TestIsFatal(t *testing.T) {
	if !IsFatal(Invariant("bad")) {
		t.Error("IsFatal(invariant) = false, want true")
	}
	if !IsFatal(New(ErrCodeUnsupported, "style")) {
		t.Error("IsFatal(unsupported) = false, want true")
	}
	if IsFatal(New(ErrCodeInvalidInput, "bad part")) {
		t.Error("IsFatal(invalid input) = true, want false")
	}
}

type stdWrapper struct{ err error }

func (w stdWrapper) Error() string { return "outer: " + w.err.Error() }
func (w stdWrapper) Unwrap() error { return w.err }

func wrapStd(err error) error { return stdWrapper{err} }
