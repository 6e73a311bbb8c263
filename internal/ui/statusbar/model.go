package statusbar

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/wpnews/internal/news"
)

var (
	barStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#333333")).
			Foreground(lipgloss.Color("#FFFFFF"))

	siteStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#21759B")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 1)

	layoutStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#555555")).
			Foreground(lipgloss.Color("#CCCCCC")).
			Padding(0, 1)

	userStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#333333")).
			Foreground(lipgloss.Color("#00FF00")).
			Padding(0, 1)

	statusTextStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#333333")).
			Foreground(lipgloss.Color("#AAAAAA")).
			Padding(0, 1)

	errorTextStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#8B0000")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 1)
)

// Model is the status bar at the bottom of the screen.
type Model struct {
	width      int
	site       string
	layout     news.LayoutMode
	username   string
	statusText string
	isError    bool
	loading    bool
	spinner    spinner.Model
}

// New creates a new status bar.
func New(site string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{site: site, spinner: sp}
}

// SetSize sets the width.
func (m *Model) SetSize(w int) {
	m.width = w
}

func (m *Model) SetLayout(mode news.LayoutMode) {
	m.layout = mode
}

// SetUser sets the logged-in username.
func (m *Model) SetUser(username string) {
	m.username = username
}

// SetStatus sets a temporary status message.
func (m *Model) SetStatus(text string, isError bool) {
	m.statusText = text
	m.isError = isError
}

func (m Model) Status() string {
	return m.statusText
}

// SetLoading shows or hides the spinner. It returns the tick command to
// start it.
func (m *Model) SetLoading(loading bool) tea.Cmd {
	start := loading && !m.loading
	m.loading = loading
	if start {
		return m.spinner.Tick
	}
	return nil
}

// Update advances the spinner.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if _, ok := msg.(spinner.TickMsg); ok && m.loading {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the status bar.
func (m Model) View() string {
	left := siteStyle.Render(m.site) + layoutStyle.Render(m.layout.String())
	if m.loading {
		left += statusTextStyle.Render(m.spinner.View())
	}

	var right string
	if m.statusText != "" {
		if m.isError {
			right += errorTextStyle.Render(m.statusText)
		} else {
			right += statusTextStyle.Render(m.statusText)
		}
	}
	if m.username != "" {
		right += userStyle.Render(m.username)
	} else {
		right += statusTextStyle.Render("not logged in")
	}

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	mid := barStyle.Width(gap).Render("")
	return lipgloss.JoinHorizontal(lipgloss.Top, left, mid, right)
}
