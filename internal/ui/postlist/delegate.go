package postlist

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var (
	accent = lipgloss.Color("#21759B")

	titleStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	selectedTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	descStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("#828282"))
	selectedDescStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
	excerptStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")).Italic(true)
	indexStyle         = lipgloss.NewStyle().Foreground(accent).Width(4).Align(lipgloss.Right)
)

// Delegate renders a post as title, byline and a one-line excerpt.
type Delegate struct{}

func (d Delegate) Height() int                             { return 3 }
func (d Delegate) Spacing() int                            { return 1 }
func (d Delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d Delegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(PostItem)
	if !ok {
		return
	}

	width := m.Width() - 6
	if width < 10 {
		width = 10
	}
	idx := indexStyle.Render(fmt.Sprintf("%d.", item.Index+1))
	title := ansi.Truncate(item.Title(), width, "…")
	desc := ansi.Truncate(item.Description(), width, "…")
	excerpt := ansi.Truncate(item.Excerpt, width, "…")

	if index == m.Index() {
		title = selectedTitleStyle.Render(title)
		desc = selectedDescStyle.Render(desc)
	} else {
		title = titleStyle.Render(title)
		desc = descStyle.Render(desc)
	}

	fmt.Fprintf(w, "%s %s\n     %s\n     %s", idx, title, desc, excerptStyle.Render(excerpt))
}
