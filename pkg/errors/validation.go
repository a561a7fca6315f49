package errors

import "regexp"

// partIDRegex matches part identifiers as used in part lists ("P1", "violin-2").
var partIDRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.-]*$`)

// ValidatePartID validates a part identifier from a score document.
func ValidatePartID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "part id cannot be empty")
	}
	if len(id) > 64 {
		return New(ErrCodeInvalidInput, "part id too long (max 64 characters)")
	}
	if !partIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid part id: %q", id)
	}
	return nil
}

// symbolTagRegex matches registry tags ("barline", "direction", "x-custom").
var symbolTagRegex = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// ValidateSymbolTag validates a symbol type tag before registration or lookup.
func ValidateSymbolTag(tag string) error {
	if tag == "" {
		return New(ErrCodeInvalidSymbol, "symbol tag cannot be empty")
	}
	if !symbolTagRegex.MatchString(tag) {
		return New(ErrCodeInvalidSymbol, "invalid symbol tag: %q", tag)
	}
	return nil
}

// ValidateDivisions validates a time-grid denominator.
func ValidateDivisions(divisions int) error {
	if divisions <= 0 {
		return New(ErrCodeInvalidInput, "divisions must be positive, got %d", divisions)
	}
	return nil
}

// MaxSegmentNumber bounds voice and staff numbers and staff counts.
const MaxSegmentNumber = 64

// ValidateSegmentNumber validates a voice or staff number. kind names it in
// the message.
func ValidateSegmentNumber(kind string, n int) error {
	if n < 1 || n > MaxSegmentNumber {
		return New(ErrCodeInvalidInput, "%s number must be between 1 and %d, got %d", kind, MaxSegmentNumber, n)
	}
	return nil
}

// ValidateStaves validates the number of staves of a part.
func ValidateStaves(staves int) error {
	if staves < 1 || staves > MaxSegmentNumber {
		return New(ErrCodeInvalidInput, "staves must be between 1 and %d, got %d", MaxSegmentNumber, staves)
	}
	return nil
}
