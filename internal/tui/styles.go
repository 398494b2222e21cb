package tui

import "github.com/charmbracelet/lipgloss"

// Colors
var (
	colorAccent  = lipgloss.Color("#26C2A5")
	colorText    = lipgloss.Color("#FFFFFF")
	colorDim     = lipgloss.Color("#6B7280")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorPanel   = lipgloss.Color("#00474B")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	focusedLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorText)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)

	focusedInputBoxStyle = inputBoxStyle.
				BorderForeground(colorAccent)

	presetStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorPanel).
			Padding(0, 1).
			MarginRight(1)

	activePresetStyle = presetStyle.
				Bold(true).
				Foreground(colorPanel).
				Background(colorAccent)

	cursorPresetStyle = presetStyle.
				Underline(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	resultPanelStyle = lipgloss.NewStyle().
				Background(colorPanel).
				Foreground(colorText).
				Padding(1, 2)

	amountStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	disabledStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Strikethrough(true)
)
