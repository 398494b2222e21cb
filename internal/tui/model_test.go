package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tip-calculator/internal/tipcalc"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	calc := tipcalc.New(tipcalc.DefaultOptions())
	return NewModel(calc, tipcalc.NewDebouncer(time.Hour), nil)
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("expected tui.Model, got %T", next)
	}
	return out
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// settle delivers the pending debounce tick.
func settle(t *testing.T, m Model) Model {
	t.Helper()
	return send(t, m, recalcMsg{token: m.pending})
}

func TestTypingIsDebounced(t *testing.T) {
	m := newTestModel(t)

	m = typeText(t, m, "100")
	if m.result.Phase != tipcalc.PhaseEmpty {
		t.Fatal("expected no recalculation before the debounce tick")
	}

	stale := m.pending - 1
	m = send(t, m, recalcMsg{token: stale})
	if m.calc.Snapshot().Bill != "" {
		t.Fatal("expected stale tick to be ignored")
	}

	m = settle(t, m)
	if got := m.calc.Snapshot().Bill; got != "100" {
		t.Fatalf("expected bill 100 after flush, got %q", got)
	}
	if !m.result.ResetEnabled {
		t.Fatal("expected reset enabled after a bill was entered")
	}
}

func TestPresetKeysSelectTip(t *testing.T) {
	m := newTestModel(t)
	m = settle(t, typeText(t, m, "100"))

	m = send(t, m, key(tea.KeyTab))
	if m.focus != FocusPresets {
		t.Fatalf("expected preset focus, got %d", m.focus)
	}

	m = send(t, m, runes("3"))
	if got := m.calc.ActivePreset(); got != 2 {
		t.Fatalf("expected preset index 2 active, got %d", got)
	}
	if m.result.TipPerPerson != "$15.00" || m.result.TotalPerPerson != "$115.00" {
		t.Fatalf("expected $15.00 / $115.00, got %s / %s", m.result.TipPerPerson, m.result.TotalPerPerson)
	}

	m = send(t, m, key(tea.KeyRight))
	m = send(t, m, key(tea.KeyEnter))
	if got := m.calc.ActivePreset(); got != 3 {
		t.Fatalf("expected preset index 3 after moving right, got %d", got)
	}

	m = send(t, m, runes("9"))
	if got := m.calc.ActivePreset(); got != 3 {
		t.Fatalf("expected out-of-range key to be ignored, got %d", got)
	}
}

func TestCustomTipClearsPreset(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, key(tea.KeyTab))
	m = send(t, m, runes("2"))
	if m.calc.ActivePreset() != 1 {
		t.Fatal("expected preset selected")
	}

	m = send(t, m, key(tea.KeyTab))
	if m.focus != FocusCustom {
		t.Fatalf("expected custom focus, got %d", m.focus)
	}
	m = settle(t, typeText(t, m, "12"))

	st := m.calc.Snapshot()
	if st.ActivePreset != -1 || st.Mode.Kind() != tipcalc.ModeCustom {
		t.Fatalf("expected custom mode with no preset, got %+v", st)
	}
}

func TestSelectingPresetClearsCustomInput(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, key(tea.KeyShiftTab))
	m = send(t, m, key(tea.KeyShiftTab))
	if m.focus != FocusCustom {
		t.Fatalf("expected custom focus, got %d", m.focus)
	}
	m = typeText(t, m, "7")

	m = send(t, m, key(tea.KeyShiftTab))
	m = send(t, m, runes("1"))
	if m.custom.Value() != "" {
		t.Fatalf("expected custom input cleared, got %q", m.custom.Value())
	}

	// The custom edit was superseded and must not resurface.
	m = settle(t, m)
	if m.calc.Snapshot().Mode.Kind() != tipcalc.ModePreset {
		t.Fatal("expected preset mode to survive the pending tick")
	}
}

func TestPeopleStepper(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, key(tea.KeyShiftTab))
	if m.focus != FocusPeople {
		t.Fatalf("expected people focus, got %d", m.focus)
	}

	m = send(t, m, key(tea.KeyUp))
	m = send(t, m, key(tea.KeyUp))
	if m.people.Value() != "3" {
		t.Fatalf("expected 3 people, got %q", m.people.Value())
	}

	for range 5 {
		m = send(t, m, key(tea.KeyDown))
	}
	if m.people.Value() != "1" {
		t.Fatalf("expected people clamped to 1, got %q", m.people.Value())
	}
}

func TestStepperUsesTypedPeople(t *testing.T) {
	m := newTestModel(t)
	m = settle(t, typeText(t, m, "100"))
	m = send(t, m, key(tea.KeyShiftTab))
	m = send(t, m, key(tea.KeyBackspace))
	m = typeText(t, m, "5")

	// No debounce tick yet: the stepper must still start from 5.
	m = send(t, m, key(tea.KeyUp))

	if m.people.Value() != "6" {
		t.Fatalf("expected 6 people, got %q", m.people.Value())
	}
	if got := m.calc.Snapshot().PeopleCount; got != 6 {
		t.Fatalf("expected calculator at 6 people, got %d", got)
	}

	m = settle(t, m)
	if got := m.calc.Snapshot().PeopleCount; got != 6 {
		t.Fatalf("expected late tick to leave 6 people, got %d", got)
	}
}

func TestPendingEditsFlushTogether(t *testing.T) {
	m := newTestModel(t)
	m = typeText(t, m, "100")
	m = send(t, m, key(tea.KeyShiftTab))
	m = send(t, m, key(tea.KeyShiftTab))
	m = typeText(t, m, "20")

	m = settle(t, m)

	st := m.calc.Snapshot()
	if st.Bill != "100" || st.CustomTip != "20" {
		t.Fatalf("expected bill and custom tip both applied, got %+v", st)
	}
	if m.result.TotalPerPerson != "$120.00" {
		t.Fatalf("expected $120.00, got %s", m.result.TotalPerPerson)
	}
}

func TestInvalidPeopleIsNormalized(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, key(tea.KeyShiftTab))
	m = send(t, m, key(tea.KeyBackspace))
	m = settle(t, typeText(t, m, "0"))

	if m.people.Value() != "1" {
		t.Fatalf("expected people input rewritten to 1, got %q", m.people.Value())
	}
	if m.result.PeopleError != tipcalc.MsgPeopleInvalid {
		t.Fatalf("expected %q, got %q", tipcalc.MsgPeopleInvalid, m.result.PeopleError)
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	m := newTestModel(t)
	m = settle(t, typeText(t, m, "80"))
	m = send(t, m, key(tea.KeyTab))
	m = send(t, m, runes("5"))
	m = send(t, m, key(tea.KeyTab))
	m = send(t, m, key(tea.KeyTab))
	m = send(t, m, key(tea.KeyUp))

	m = send(t, m, key(tea.KeyCtrlR))

	if m.focus != FocusBill || !m.bill.Focused() {
		t.Fatal("expected bill focused after reset")
	}
	if m.bill.Value() != "" || m.custom.Value() != "" || m.people.Value() != "1" {
		t.Fatalf("expected cleared inputs, got %q %q %q", m.bill.Value(), m.custom.Value(), m.people.Value())
	}
	if m.result.TotalPerPerson != "$0.00" || m.result.ResetEnabled || m.result.Phase != tipcalc.PhaseEmpty {
		t.Fatalf("expected default result, got %+v", m.result)
	}
	if m.calc.ActivePreset() != -1 {
		t.Fatal("expected no preset after reset")
	}
}

func TestResetDropsPendingEdits(t *testing.T) {
	m := newTestModel(t)
	m = typeText(t, m, "42")
	pending := m.pending

	m = send(t, m, key(tea.KeyCtrlR))
	m = send(t, m, recalcMsg{token: pending})

	if m.calc.Snapshot().Bill != "" || m.result.Phase != tipcalc.PhaseEmpty {
		t.Fatal("expected pending edit dropped by reset")
	}
}

func TestQuitKeys(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(key(tea.KeyCtrlC))
	if cmd == nil {
		t.Fatal("expected quit command on ctrl+c")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}

	// q is text while an input has focus.
	m = send(t, m, runes("q"))
	if m.bill.Value() != "q" {
		t.Fatalf("expected q typed into bill, got %q", m.bill.Value())
	}
}

func TestViewShowsResultAndMessages(t *testing.T) {
	m := newTestModel(t)
	m = settle(t, typeText(t, m, "-5"))

	view := m.View()
	for _, want := range []string{"Tip Amount", "Total", tipcalc.MsgBillInvalid, "$0.00"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}
