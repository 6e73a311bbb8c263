package ui

import "github.com/charmbracelet/lipgloss"

var (
	wpBlue = lipgloss.Color("#21759B")

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#444444")).
			PaddingLeft(1)

	focusedPaneStyle = paneStyle.
				BorderForeground(wpBlue)

	placeholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Italic(true)
)
