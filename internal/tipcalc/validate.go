package tipcalc

import (
	"fmt"
	"math"
	"strings"

	"github.com/govalues/decimal"
)

// Messages surfaced next to each field.
const (
	MsgBillInvalid   = "Please enter a valid bill amount"
	MsgBillTooLarge  = "Bill amount is too large"
	MsgTipInvalid    = "Please enter a valid tip percentage"
	MsgTipHigh       = "Tip percentage seems high. Are you sure?"
	MsgPeopleInvalid = "Number of people must be at least 1"
	MsgPeopleMany    = "That's a lot of people! Are you sure?"

	// MsgNotCalculated explains a skipped pass when no field is invalid,
	// such as a tip too large to compute with.
	MsgNotCalculated = "These values are too large to calculate"
)

// Severity classifies a validation outcome.
type Severity int

const (
	Valid Severity = iota
	Warning
	Invalid
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Invalid:
		return "invalid"
	default:
		return "valid"
	}
}

// Outcome is the result of validating one field.
type Outcome struct {
	Severity Severity
	Message  string
}

// Blocks reports whether the outcome is a hard Invalid.
func (o Outcome) Blocks() bool { return o.Severity == Invalid }

func invalid(msg string) Outcome { return Outcome{Severity: Invalid, Message: msg} }
func warning(msg string) Outcome { return Outcome{Severity: Warning, Message: msg} }

// Limits bound the accepted inputs.
type Limits struct {
	MaxBill    decimal.Decimal
	TipWarn    decimal.Decimal
	PeopleWarn int
}

// DefaultLimits returns the limits used when the host configures none.
func DefaultLimits() Limits {
	return Limits{
		MaxBill:    decimal.MustNew(999999, 0),
		TipWarn:    decimal.MustNew(100, 0),
		PeopleWarn: 100,
	}
}

// ValidateBill parses the bill text. Empty input is a valid zero.
func ValidateBill(raw string, lim Limits) (decimal.Decimal, Outcome) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, Outcome{}
	}

	bill, err := parseDecimal(s)
	if err != nil {
		if oversized(s) {
			return decimal.Zero, invalid(MsgBillTooLarge)
		}
		return decimal.Zero, invalid(MsgBillInvalid)
	}
	if bill.IsNeg() {
		return decimal.Zero, invalid(MsgBillInvalid)
	}
	if bill.Cmp(lim.MaxBill) > 0 {
		return decimal.Zero, invalid(MsgBillTooLarge)
	}
	return bill, Outcome{}
}

// ValidateCustomTip parses the custom tip text. A high percentage is a
// Warning and the parsed value is still returned. Invalid input yields zero.
//
// A number with more digits than a Decimal holds is still a high tip: the
// outcome is the Warning and the error wraps ErrOutOfRange, since there is no
// percentage to compute with.
func ValidateCustomTip(raw string, lim Limits) (decimal.Decimal, Outcome, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, Outcome{}, nil
	}

	tip, err := parseDecimal(s)
	if err != nil {
		if oversized(s) {
			return decimal.Zero, warning(MsgTipHigh), fmt.Errorf("custom tip %q: %w", s, ErrOutOfRange)
		}
		return decimal.Zero, invalid(MsgTipInvalid), nil
	}
	if tip.IsNeg() {
		return decimal.Zero, invalid(MsgTipInvalid), nil
	}
	if tip.Cmp(lim.TipWarn) > 0 {
		return tip, warning(MsgTipHigh), nil
	}
	return tip, Outcome{}, nil
}

// ValidatePeople parses the people count. Anything unusable is reported as
// Invalid and the returned count is normalized to 1; callers must write that
// value back to the field.
func ValidatePeople(raw string, lim Limits) (int, Outcome) {
	n, ok := parsePeople(raw)
	if !ok || n < 1 {
		return 1, invalid(MsgPeopleInvalid)
	}
	if n > lim.PeopleWarn {
		return n, warning(MsgPeopleMany)
	}
	return n, Outcome{}
}

// parsePeople reads the integer part of raw. Counts beyond int saturate at
// math.MaxInt.
func parsePeople(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	d, err := parseDecimal(s)
	if err != nil {
		if oversized(s) {
			return math.MaxInt, true
		}
		return 0, false
	}
	if d.IsNeg() {
		return 0, false
	}
	whole, _, ok := d.Trunc(0).Int64(0)
	if !ok || whole > math.MaxInt {
		return math.MaxInt, true
	}
	return int(whole), true
}

// oversized reports whether s is a plain non-negative number of at least 1
// that parseDecimal rejected for having too many digits.
func oversized(s string) bool {
	s = strings.TrimPrefix(s, "+")
	intPart, frac, _ := strings.Cut(s, ".")
	if intPart == "" || !allDigits(intPart) || !allDigits(frac) {
		return false
	}
	return strings.TrimLeft(intPart, "0") != ""
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// parseDecimal accepts the forms a numeric form field produces: an optional
// sign, and a leading or trailing decimal point.
func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimPrefix(s, "+")
	if s == "." || s == "-." {
		return decimal.Decimal{}, errNotNumeric
	}
	switch {
	case strings.HasPrefix(s, "-."):
		s = "-0" + s[1:]
	case strings.HasPrefix(s, "."):
		s = "0" + s
	}
	s = strings.TrimSuffix(s, ".")
	return decimal.Parse(s)
}
