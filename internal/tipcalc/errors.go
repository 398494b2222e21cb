package tipcalc

import "errors"

var (
	// ErrNegativePercent is returned when a host selects a preset below zero.
	ErrNegativePercent = errors.New("tip percentage must not be negative")

	// ErrPresetIndex is returned for a preset index outside the configured list.
	ErrPresetIndex = errors.New("preset index out of range")

	// ErrOutOfRange is returned for a number too large to calculate with.
	ErrOutOfRange = errors.New("number out of range")

	errNotNumeric = errors.New("not a number")
)
