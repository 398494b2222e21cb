package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("SPLITTER"))
	b.WriteString("\n\n")

	b.WriteString(m.renderField("Bill", m.focus == FocusBill, m.bill.View(), m.result.BillError, false))
	b.WriteString(m.renderPresets())
	b.WriteString(m.renderField("Custom tip %", m.focus == FocusCustom, m.custom.View(), m.result.TipError, m.result.TipWarning))
	b.WriteString(m.renderField("Number of people", m.focus == FocusPeople, m.people.View(), m.result.PeopleError, m.result.PeopleWarning))

	b.WriteString(m.renderResult())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab next field • 1-5 preset • ↑/↓ people • ctrl+r reset • ctrl+c quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderField(label string, focused bool, input, msg string, warn bool) string {
	ls, box := labelStyle, inputBoxStyle
	if focused {
		ls, box = focusedLabelStyle, focusedInputBoxStyle
	}

	line := ls.Render(label)
	if msg != "" {
		ms := errorStyle
		if warn {
			ms = warningStyle
		}
		line += "  " + ms.Render(msg)
	}
	return line + "\n" + box.Render(input) + "\n"
}

func (m Model) renderPresets() string {
	focused := m.focus == FocusPresets
	ls := labelStyle
	if focused {
		ls = focusedLabelStyle
	}

	active := m.calc.ActivePreset()
	chips := make([]string, 0, len(m.calc.Presets()))
	for i, p := range m.calc.Presets() {
		text := fmt.Sprintf("%d) %s%%", i+1, p)
		switch {
		case i == active:
			chips = append(chips, activePresetStyle.Render(text))
		case focused && i == m.presetCursor:
			chips = append(chips, cursorPresetStyle.Render(text))
		default:
			chips = append(chips, presetStyle.Render(text))
		}
	}
	return ls.Render("Select tip %") + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, chips...) + "\n\n"
}

func (m Model) renderResult() string {
	row := func(label, amount string) string {
		return lipgloss.JoinVertical(lipgloss.Left,
			label,
			labelStyle.Render("/ person"),
			amountStyle.Render(amount),
		)
	}

	reset := disabledStyle.Render("RESET")
	if m.result.ResetEnabled {
		reset = amountStyle.Render("RESET")
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		row("Tip Amount", m.result.TipPerPerson),
		"",
		row("Total", m.result.TotalPerPerson),
		"",
		reset,
	)
	return resultPanelStyle.Render(body) + "\n"
}
