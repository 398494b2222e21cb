package tipcalc

import (
	"fmt"

	"github.com/govalues/decimal"
)

var (
	hundred  = decimal.MustNew(100, 0)
	halfCent = decimal.MustNew(5, 3)
)

// Breakdown holds the derived monetary values for one calculation pass.
type Breakdown struct {
	TipAmount      decimal.Decimal
	TipPerPerson   decimal.Decimal
	BillPerPerson  decimal.Decimal
	TotalPerPerson decimal.Decimal
}

// Compute derives the split from validated inputs. people must be >= 1.
func Compute(bill, tipPercent decimal.Decimal, people int) (Breakdown, error) {
	if people < 1 {
		return Breakdown{}, fmt.Errorf("compute split: people %d < 1", people)
	}
	n := decimal.MustNew(int64(people), 0)

	tip, err := bill.Mul(tipPercent)
	if err != nil {
		return Breakdown{}, fmt.Errorf("compute tip: %w", err)
	}
	if tip, err = tip.Quo(hundred); err != nil {
		return Breakdown{}, fmt.Errorf("compute tip: %w", err)
	}

	total, err := bill.Add(tip)
	if err != nil {
		return Breakdown{}, fmt.Errorf("compute total: %w", err)
	}

	var b Breakdown
	b.TipAmount = tip
	if b.TipPerPerson, err = tip.Quo(n); err != nil {
		return Breakdown{}, fmt.Errorf("split tip: %w", err)
	}
	if b.BillPerPerson, err = bill.Quo(n); err != nil {
		return Breakdown{}, fmt.Errorf("split bill: %w", err)
	}
	if b.TotalPerPerson, err = total.Quo(n); err != nil {
		return Breakdown{}, fmt.Errorf("split total: %w", err)
	}
	return b, nil
}

// HasMeaningfulInput reports whether anything differs from the defaults
// enough to make a reset worthwhile.
func HasMeaningfulInput(bill, tipPercent decimal.Decimal, people int) bool {
	return bill.IsPos() || tipPercent.IsPos() || people > 1
}

// Money formats amounts for display with a currency symbol.
type Money struct {
	Symbol string
}

// Round2 rounds a non-negative amount half-up to cents.
func Round2(d decimal.Decimal) decimal.Decimal {
	if d.IsNeg() {
		return d.Round(2).Pad(2)
	}
	up, err := d.Add(halfCent)
	if err != nil {
		return d.Round(2).Pad(2)
	}
	return up.Trunc(2).Pad(2)
}

// Format renders d as e.g. "$12.34".
func (m Money) Format(d decimal.Decimal) string {
	return m.Symbol + Round2(d).String()
}
