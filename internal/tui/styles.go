package tui

import "github.com/charmbracelet/lipgloss"

var (
	brandStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0B0B0B")).
			Background(lipgloss.Color("#7FDBFF")).
			Bold(true).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8F8F2")).
			Bold(true).
			MarginTop(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6ADC8"))

	videoStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7FDBFF")).
			Padding(0, 1)

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EAEAEA")).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#585B70")).
			Padding(0, 2)

	focusedButtonStyle = buttonStyle.
				Foreground(lipgloss.Color("#0B0B0B")).
				Background(lipgloss.Color("#00F5D4")).
				BorderForeground(lipgloss.Color("#00F5D4")).
				Bold(true)

	busyButtonStyle = buttonStyle.
			Foreground(lipgloss.Color("#6C7086")).
			Faint(true)

	affiliateStyle = buttonStyle.
			Foreground(lipgloss.Color("#FFD166")).
			BorderForeground(lipgloss.Color("#FFB703")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B9A")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FF3B30")).
			Padding(0, 1)

	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D27A"))
	faintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")).Faint(true)
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7FDBFF"))
)
