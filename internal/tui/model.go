package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"tip-calculator/internal/tipcalc"
)

// Focus is the widget receiving keyboard input.
type Focus int

const (
	FocusBill Focus = iota
	FocusPresets
	FocusCustom
	FocusPeople
	focusCount
)

// field marks a text input whose edits are waiting for the debounce.
type field int

const (
	fieldBill field = 1 << iota
	fieldCustom
	fieldPeople
)

// recalcMsg fires when a debounce delay ends. It is dropped unless its token
// is still the latest one.
type recalcMsg struct {
	token tipcalc.Token
}

// Model is the root bubbletea model for the calculator.
type Model struct {
	calc   *tipcalc.Calculator
	deb    *tipcalc.Debouncer
	logger *zap.Logger

	bill   textinput.Model
	custom textinput.Model
	people textinput.Model

	focus        Focus
	presetCursor int
	dirty        field
	pending      tipcalc.Token

	result tipcalc.Result
	width  int
}

// NewModel creates a model driving calc. A nil logger disables logging.
func NewModel(calc *tipcalc.Calculator, deb *tipcalc.Debouncer, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}

	bill := newInput("0.00", 10)
	custom := newInput("Custom", 6)
	people := newInput("1", 4)
	people.SetValue(calc.Snapshot().People)

	m := Model{
		calc:   calc,
		deb:    deb,
		logger: logger,
		bill:   bill,
		custom: custom,
		people: people,
		result: calc.Result(),
	}
	m.bill.Focus()
	return m
}

func newInput(placeholder string, width int) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = 12
	ti.Width = width
	return ti
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case recalcMsg:
		if !m.deb.Latest(msg.token) {
			return m, nil
		}
		m.flush()
		return m, nil
	}

	return m.updateFocusedInput(msg)
}

// handleKey routes keyboard input: global shortcuts first, then the focused
// widget.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		if m.focus == FocusPresets {
			return m, tea.Quit
		}
	case "ctrl+r":
		m = m.reset()
		cmd := m.bill.Focus()
		return m, cmd
	case "tab":
		return m.setFocus((m.focus + 1) % focusCount)
	case "shift+tab":
		return m.setFocus((m.focus + focusCount - 1) % focusCount)
	}

	switch m.focus {
	case FocusPresets:
		return m.handlePresetKey(msg)
	case FocusPeople:
		switch msg.String() {
		case "up", "+":
			return m.adjustPeople(1), nil
		case "down", "-":
			return m.adjustPeople(-1), nil
		}
	}

	return m.updateFocusedInput(msg)
}

func (m Model) handlePresetKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.calc.Presets())
	if n == 0 {
		return m, nil
	}

	key := msg.String()
	switch key {
	case "left", "up", "h":
		m.presetCursor = (m.presetCursor + n - 1) % n
	case "right", "down", "l":
		m.presetCursor = (m.presetCursor + 1) % n
	case "enter", " ":
		return m.selectPreset(m.presetCursor), nil
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if i := int(key[0] - '1'); i < n {
				m.presetCursor = i
				return m.selectPreset(i), nil
			}
		}
	}
	return m, nil
}

// updateFocusedInput forwards msg to the focused text input and, when its
// value changed, schedules a debounced recalculation.
func (m Model) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		ti  *textinput.Model
		f   field
		cmd tea.Cmd
	)
	switch m.focus {
	case FocusBill:
		ti, f = &m.bill, fieldBill
	case FocusCustom:
		ti, f = &m.custom, fieldCustom
	case FocusPeople:
		ti, f = &m.people, fieldPeople
	default:
		return m, nil
	}

	before := ti.Value()
	*ti, cmd = ti.Update(msg)
	if ti.Value() == before {
		return m, cmd
	}

	m.dirty |= f
	m.pending = m.deb.Next()
	return m, tea.Batch(cmd, m.scheduleRecalc(m.pending))
}

func (m Model) scheduleRecalc(t tipcalc.Token) tea.Cmd {
	return tea.Tick(m.deb.Delay(), func(time.Time) tea.Msg {
		return recalcMsg{token: t}
	})
}

// flush pushes every edited field into the calculator in one pass.
func (m *Model) flush() {
	if m.dirty == 0 {
		return
	}
	var e tipcalc.Edits
	if m.dirty&fieldBill != 0 {
		e.Bill = ptr(m.bill.Value())
	}
	if m.dirty&fieldCustom != 0 {
		e.CustomTip = ptr(m.custom.Value())
	}
	if m.dirty&fieldPeople != 0 {
		e.People = ptr(m.people.Value())
	}
	m.result = m.calc.Apply(e)
	m.dirty = 0
	m.syncFromState()
	m.logResult("recalculated")
}

func ptr(s string) *string { return &s }

func (m Model) selectPreset(i int) Model {
	res, err := m.calc.SelectPresetIndex(i)
	if err != nil {
		m.logger.Warn("preset selection rejected", zap.Int("index", i), zap.Error(err))
		return m
	}
	m.result = res
	m.dirty &^= fieldCustom
	m.custom.SetValue("")
	m.syncFromState()
	m.logResult("preset selected")
	return m
}

// adjustPeople steps from what is on screen, so pending edits land first.
func (m Model) adjustPeople(delta int) Model {
	m.flush()
	m.result = m.calc.AdjustPeople(delta)
	m.syncFromState()
	m.logResult("people adjusted")
	return m
}

func (m Model) reset() Model {
	m.deb.Stop()
	m.dirty = 0
	m.result = m.calc.Reset()
	m.bill.SetValue("")
	m.custom.SetValue("")
	m.presetCursor = 0
	m.syncFromState()
	m.bill.Blur()
	m.custom.Blur()
	m.people.Blur()
	m.focus = FocusBill
	m.logResult("reset")
	return m
}

func (m Model) setFocus(f Focus) (tea.Model, tea.Cmd) {
	m.bill.Blur()
	m.custom.Blur()
	m.people.Blur()
	m.focus = f

	var cmd tea.Cmd
	switch f {
	case FocusBill:
		cmd = m.bill.Focus()
	case FocusCustom:
		cmd = m.custom.Focus()
	case FocusPeople:
		cmd = m.people.Focus()
	case FocusPresets:
		if active := m.calc.ActivePreset(); active >= 0 {
			m.presetCursor = active
		}
	}
	return m, cmd
}

// syncFromState copies normalized values back into the inputs.
func (m *Model) syncFromState() {
	st := m.calc.Snapshot()
	if m.people.Value() != st.People {
		m.people.SetValue(st.People)
	}
	if st.ActivePreset >= 0 {
		m.presetCursor = st.ActivePreset
	}
}

func (m Model) logResult(event string) {
	m.logger.Debug(event,
		zap.String("tip_per_person", m.result.TipPerPerson),
		zap.String("total_per_person", m.result.TotalPerPerson),
		zap.Bool("calculated", m.result.Calculated),
		zap.String("phase", m.result.Phase.String()),
	)
}
