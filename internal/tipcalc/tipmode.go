package tipcalc

import (
	"encoding/json"
	"fmt"

	"github.com/govalues/decimal"
)

// ModeKind identifies which tip source is active.
type ModeKind int

const (
	ModeNone ModeKind = iota
	ModePreset
	ModeCustom
)

func (k ModeKind) String() string {
	switch k {
	case ModePreset:
		return "preset"
	case ModeCustom:
		return "custom"
	default:
		return "none"
	}
}

// TipMode is the active tip selection. A preset and a custom percentage can
// never be active together: switching builds a new TipMode.
type TipMode struct {
	kind    ModeKind
	percent decimal.Decimal
}

// NoTip is the default mode; the effective percentage is zero.
func NoTip() TipMode {
	return TipMode{kind: ModeNone}
}

// PresetTip selects one of the host's preset percentages.
func PresetTip(percent decimal.Decimal) TipMode {
	return TipMode{kind: ModePreset, percent: percent}
}

// CustomTip selects a user-typed percentage.
func CustomTip(percent decimal.Decimal) TipMode {
	return TipMode{kind: ModeCustom, percent: percent}
}

func (m TipMode) Kind() ModeKind { return m.kind }

// Percent returns the effective tip percentage.
func (m TipMode) Percent() decimal.Decimal {
	if m.kind == ModeNone {
		return decimal.Zero
	}
	return m.percent
}

func (m TipMode) String() string {
	if m.kind == ModeNone {
		return "none"
	}
	return fmt.Sprintf("%s(%s%%)", m.kind, m.percent)
}

type tipModeJSON struct {
	Kind    string `json:"kind"`
	Percent string `json:"percent,omitempty"`
}

func (m TipMode) MarshalJSON() ([]byte, error) {
	out := tipModeJSON{Kind: m.kind.String()}
	if m.kind != ModeNone {
		out.Percent = m.percent.String()
	}
	return json.Marshal(out)
}

func (m *TipMode) UnmarshalJSON(b []byte) error {
	var in tipModeJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}

	var pct decimal.Decimal
	if in.Percent != "" {
		var err error
		if pct, err = decimal.Parse(in.Percent); err != nil {
			return fmt.Errorf("tip mode percent: %w", err)
		}
	}

	switch in.Kind {
	case "none", "":
		*m = NoTip()
	case "preset":
		*m = PresetTip(pct)
	case "custom":
		*m = CustomTip(pct)
	default:
		return fmt.Errorf("unknown tip mode %q", in.Kind)
	}
	return nil
}
