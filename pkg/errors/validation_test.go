package errors

import (
	"testing"
)

func TestValidatePartID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "P1", false},
		{"with dash", "violin-2", false},
		{"with dot", "pno.rh", false},

		{"empty", "", true},
		{"leading digit", "1P", true},
		{"space", "P 1", true},
		{"too long", "P" + string(make([]byte, 80)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePartID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePartID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSymbolTag(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"barline", false},
		{"x-custom", false},
		{"", true},
		{"Barline", true},
		{"bar line", true},
	}

	for _, tt := range tests {
		err := ValidateSymbolTag(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateSymbolTag(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if err != nil && !Is(err, ErrCodeInvalidSymbol) {
			t.Errorf("ValidateSymbolTag(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidSymbol)
		}
	}
}

func TestValidateDivisions(t *testing.T) {
	for _, d := range []int{0, -4} {
		if err := ValidateDivisions(d); err == nil {
			t.Errorf("ValidateDivisions(%d) = nil, want error", d)
		}
	}
	if err := ValidateDivisions(480); err != nil {
		t.Errorf("ValidateDivisions(480) = %v, want nil", err)
	}
}

func TestValidateSegmentNumber(t *testing.T) {
	tests := []struct {
		n       int
		wantErr bool
	}{
		{0, true},
		{-1, true},
		{1, false},
		{MaxSegmentNumber, false},
		{MaxSegmentNumber + 1, true},
		{30000000, true},
	}
	for _, tt := range tests {
		err := ValidateSegmentNumber("voice", tt.n)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateSegmentNumber(%d) error = %v, wantErr %v", tt.n, err, tt.wantErr)
		}
		if err != nil && !Is(err, ErrCodeInvalidInput) {
			t.Errorf("ValidateSegmentNumber(%d) code = %s, want %s", tt.n, GetCode(err), ErrCodeInvalidInput)
		}
	}
}

func TestValidateStaves(t *testing.T) {
	for _, n := range []int{0, MaxSegmentNumber + 1} {
		if err := ValidateStaves(n); err == nil {
			t.Errorf("ValidateStaves(%d) = nil, want error", n)
		}
	}
	if err := ValidateStaves(2); err != nil {
		t.Errorf("ValidateStaves(2) = %v, want nil", err)
	}
}
