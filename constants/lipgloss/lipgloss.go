package lipgloss

import "github.com/charmbracelet/lipgloss"

var (
	Red     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
	Green   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F"))
	Yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD75F"))
	BlueSky = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFFF")).Bold(true)
	Gray    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8A8A8A"))
	Info    = lipgloss.NewStyle().Foreground(lipgloss.Color("#87D7FF")).Bold(true)
	Bold    = lipgloss.NewStyle().Bold(true)

	// BoxStyle frames help texts and token summaries.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5FAFFF")).
			Padding(0, 1)
)
