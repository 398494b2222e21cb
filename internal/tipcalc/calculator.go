// Package tipcalc holds the tip-splitting state machine: field validation,
// tip selection, and the per-person split. It has no knowledge of the host
// rendering it; every mutating call returns a Result for display.
package tipcalc

import (
	"fmt"
	"math"
	"strconv"

	"github.com/govalues/decimal"
)

// Phase is the coarse state of a calculator.
type Phase int

const (
	// PhaseEmpty is the state after construction and after Reset.
	PhaseEmpty Phase = iota
	// PhaseEditing is entered by any edit and left only via Reset.
	PhaseEditing
)

func (p Phase) String() string {
	if p == PhaseEditing {
		return "editing"
	}
	return "empty"
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(b []byte) error {
	switch string(b) {
	case "empty":
		*p = PhaseEmpty
	case "editing":
		*p = PhaseEditing
	default:
		return fmt.Errorf("unknown phase %q", b)
	}
	return nil
}

// Options configure a Calculator.
type Options struct {
	Presets []decimal.Decimal
	Limits  Limits
	Money   Money
}

// DefaultPresets are the quick-select tip percentages.
func DefaultPresets() []decimal.Decimal {
	return []decimal.Decimal{
		decimal.MustNew(5, 0),
		decimal.MustNew(10, 0),
		decimal.MustNew(15, 0),
		decimal.MustNew(25, 0),
		decimal.MustNew(50, 0),
	}
}

// DefaultOptions returns five presets, the standard limits and dollars.
func DefaultOptions() Options {
	return Options{
		Presets: DefaultPresets(),
		Limits:  DefaultLimits(),
		Money:   Money{Symbol: "$"},
	}
}

// Result is what a host renders after each call.
type Result struct {
	TipPerPerson   string `json:"tip_per_person"`
	TotalPerPerson string `json:"total_per_person"`
	TipAmount      string `json:"tip_amount"`
	BillPerPerson  string `json:"bill_per_person"`

	BillError     string `json:"bill_error,omitempty"`
	TipError      string `json:"tip_error,omitempty"`
	PeopleError   string `json:"people_error,omitempty"`
	TipWarning    bool   `json:"tip_warning,omitempty"`
	PeopleWarning bool   `json:"people_warning,omitempty"`

	ResetEnabled bool  `json:"reset_enabled"`
	Phase        Phase `json:"phase"`

	// Calculated is false when the last pass was gated and the display
	// values are carried over from an earlier pass.
	Calculated bool `json:"calculated"`
}

// State is a read-only view of the calculator's inputs.
type State struct {
	Bill         string  `json:"bill"`
	CustomTip    string  `json:"custom_tip"`
	People       string  `json:"people"`
	PeopleCount  int     `json:"people_count"`
	Mode         TipMode `json:"tip_mode"`
	ActivePreset int     `json:"active_preset"`
	Phase        Phase   `json:"phase"`
}

type display struct {
	tipPerPerson   string
	totalPerPerson string
	tipAmount      string
	billPerPerson  string
}

// Calculator is the tip-splitting state machine. It is not safe for
// concurrent use.
type Calculator struct {
	opts Options

	bill      string
	customTip string
	people    string
	mode      TipMode
	phase     Phase
	// tipUnusable is set while the custom tip is numeric but out of range.
	tipUnusable bool

	billMsg   Outcome
	tipMsg    Outcome
	peopleMsg Outcome

	shown        display
	resetEnabled bool
	calculated   bool
	breakdown    Breakdown
}

// New returns a calculator in its default state.
func New(opts Options) *Calculator {
	if opts.Limits == (Limits{}) {
		opts.Limits = DefaultLimits()
	}
	if opts.Money.Symbol == "" {
		opts.Money.Symbol = "$"
	}
	opts.Presets = append([]decimal.Decimal(nil), opts.Presets...)

	c := &Calculator{opts: opts}
	c.Reset()
	return c
}

// Presets returns a copy of the configured preset percentages.
func (c *Calculator) Presets() []decimal.Decimal {
	return append([]decimal.Decimal(nil), c.opts.Presets...)
}

// SetBill records the raw bill text and recalculates.
func (c *Calculator) SetBill(raw string) Result {
	c.bill = raw
	c.touch()
	c.recalculate()
	return c.Result()
}

// SetCustomTip switches to a custom tip. Unusable text counts as 0%, but
// only the bill gates the calculation.
func (c *Calculator) SetCustomTip(raw string) Result {
	c.setCustomTip(raw)
	c.touch()
	c.recalculate()
	return c.Result()
}

func (c *Calculator) setCustomTip(raw string) {
	c.customTip = raw
	pct, out, err := ValidateCustomTip(raw, c.opts.Limits)
	c.tipMsg = out
	c.tipUnusable = err != nil
	c.mode = CustomTip(pct)
}

// SetPeople records the raw people text and recalculates.
func (c *Calculator) SetPeople(raw string) Result {
	c.people = raw
	c.touch()
	c.recalculate()
	return c.Result()
}

// Edits carries raw field text from a host that batches keystrokes. Nil
// fields are left untouched.
type Edits struct {
	Bill      *string `json:"bill,omitempty"`
	CustomTip *string `json:"custom_tip,omitempty"`
	People    *string `json:"people,omitempty"`
}

// Apply records every non-nil field and recalculates once. It is the
// equivalent of the Set calls in field order, without the intermediate
// passes.
func (c *Calculator) Apply(e Edits) Result {
	if e.Bill == nil && e.CustomTip == nil && e.People == nil {
		return c.Result()
	}
	if e.Bill != nil {
		c.bill = *e.Bill
	}
	if e.CustomTip != nil {
		c.setCustomTip(*e.CustomTip)
	}
	if e.People != nil {
		c.people = *e.People
	}
	c.touch()
	c.recalculate()
	return c.Result()
}

// SelectPreset activates a preset percentage, clearing the custom field.
func (c *Calculator) SelectPreset(percent decimal.Decimal) (Result, error) {
	if percent.IsNeg() {
		return c.Result(), fmt.Errorf("select preset %s: %w", percent, ErrNegativePercent)
	}
	c.mode = PresetTip(percent)
	c.customTip = ""
	c.tipMsg = Outcome{}
	c.tipUnusable = false
	c.touch()
	c.recalculate()
	return c.Result(), nil
}

// SelectPresetIndex activates the i-th configured preset (zero based).
func (c *Calculator) SelectPresetIndex(i int) (Result, error) {
	if i < 0 || i >= len(c.opts.Presets) {
		return c.Result(), fmt.Errorf("select preset %d of %d: %w", i, len(c.opts.Presets), ErrPresetIndex)
	}
	return c.SelectPreset(c.opts.Presets[i])
}

// AdjustPeople steps the people count by delta, never below 1.
func (c *Calculator) AdjustPeople(delta int) Result {
	current, ok := parsePeople(c.people)
	if !ok || current < 1 {
		current = 1
	}
	next := current + delta
	if delta > 0 && current > math.MaxInt-delta {
		next = math.MaxInt
	}
	c.people = strconv.Itoa(max(1, next))
	c.touch()
	c.recalculate()
	return c.Result()
}

// Reset returns every field to its default and clears all messages.
func (c *Calculator) Reset() Result {
	c.bill = ""
	c.customTip = ""
	c.people = "1"
	c.mode = NoTip()
	c.tipUnusable = false
	c.phase = PhaseEmpty
	c.billMsg, c.tipMsg, c.peopleMsg = Outcome{}, Outcome{}, Outcome{}

	zero := c.opts.Money.Format(decimal.Zero)
	c.shown = display{tipPerPerson: zero, totalPerPerson: zero, tipAmount: zero, billPerPerson: zero}
	c.breakdown = Breakdown{}
	c.resetEnabled = false
	c.calculated = true
	return c.Result()
}

// Result returns the current display state without recalculating.
func (c *Calculator) Result() Result {
	return Result{
		TipPerPerson:   c.shown.tipPerPerson,
		TotalPerPerson: c.shown.totalPerPerson,
		TipAmount:      c.shown.tipAmount,
		BillPerPerson:  c.shown.billPerPerson,
		BillError:      c.billMsg.Message,
		TipError:       c.tipMsg.Message,
		PeopleError:    c.peopleMsg.Message,
		TipWarning:     c.tipMsg.Severity == Warning,
		PeopleWarning:  c.peopleMsg.Severity == Warning,
		ResetEnabled:   c.resetEnabled,
		Phase:          c.phase,
		Calculated:     c.calculated,
	}
}

// Breakdown returns the unrounded values from the last completed pass.
func (c *Calculator) Breakdown() Breakdown { return c.breakdown }

// Snapshot returns the current inputs.
func (c *Calculator) Snapshot() State {
	n, ok := parsePeople(c.people)
	if !ok || n < 1 {
		n = 1
	}
	return State{
		Bill:         c.bill,
		CustomTip:    c.customTip,
		People:       c.people,
		PeopleCount:  n,
		Mode:         c.mode,
		ActivePreset: c.ActivePreset(),
		Phase:        c.phase,
	}
}

// ActivePreset returns the index of the selected preset, or -1.
func (c *Calculator) ActivePreset() int {
	if c.mode.Kind() != ModePreset {
		return -1
	}
	for i, p := range c.opts.Presets {
		if p.Cmp(c.mode.Percent()) == 0 {
			return i
		}
	}
	return -1
}

func (c *Calculator) touch() { c.phase = PhaseEditing }

// recalculate runs one validate-then-compute pass over the current inputs.
// A bill error or an out-of-range custom tip keeps the previous display. An invalid people count is
// rewritten to 1 first, so it never gates the pass.
func (c *Calculator) recalculate() {
	bill, billOut := ValidateBill(c.bill, c.opts.Limits)
	c.billMsg = billOut

	people, peopleOut := ValidatePeople(c.people, c.opts.Limits)
	c.peopleMsg = peopleOut
	if peopleOut.Blocks() {
		c.people = strconv.Itoa(people)
	}

	if billOut.Blocks() || c.tipUnusable {
		c.calculated = false
		return
	}

	pct := c.mode.Percent()
	b, err := Compute(bill, pct, people)
	if err != nil {
		c.calculated = false
		return
	}

	c.breakdown = b
	c.shown = display{
		tipPerPerson:   c.opts.Money.Format(b.TipPerPerson),
		totalPerPerson: c.opts.Money.Format(b.TotalPerPerson),
		tipAmount:      c.opts.Money.Format(b.TipAmount),
		billPerPerson:  c.opts.Money.Format(b.BillPerPerson),
	}
	c.resetEnabled = HasMeaningfulInput(bill, pct, people)
	c.calculated = true
}
