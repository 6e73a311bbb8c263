package reply

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/wpnews/internal/news"
	"github.com/fragmede/wpnews/internal/render"
	"github.com/fragmede/wpnews/internal/thread"
	"github.com/fragmede/wpnews/internal/ui/actions"
	"github.com/fragmede/wpnews/internal/ui/messages"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#21759B")).Bold(true)
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#828282"))
	quoteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#828282")).Italic(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
)

// Model is the comment composer. The text is kept in the session as the
// draft so it survives closing the composer.
type Model struct {
	textarea   textarea.Model
	session    *thread.Session
	err        string
	submitting bool
	width      int
	height     int
}

// New opens a composer on session. A non-nil target makes it a reply.
func New(session *thread.Session, target *news.Comment) Model {
	if target != nil {
		session.SetReplyTarget(target)
	}

	ta := textarea.New()
	ta.Placeholder = "Write your comment..."
	ta.SetValue(session.Draft())
	ta.Focus()
	ta.SetWidth(80)
	ta.SetHeight(10)

	return Model{textarea: ta, session: session}
}

// SetSize sets the viewport dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.textarea.SetWidth(min(w-4, 100))
	m.textarea.SetHeight(max(h-10, 5))
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+s":
			text := strings.TrimSpace(m.textarea.Value())
			if text == "" {
				m.err = "Comment cannot be empty"
				return m, nil
			}
			m.submitting = true
			m.err = ""
			m.session.SetDraft(text)
			return m, actions.PostCommentCmd(m.session, text)
		case "ctrl+x":
			m.session.SetReplyTarget(nil)
			return m, nil
		}
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		m.session.SetDraft(m.textarea.Value())
		return m, cmd

	case messages.CommentPostedMsg:
		m.submitting = false
		if msg.Err == nil {
			m.textarea.Reset()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// View renders the composer.
func (m Model) View() string {
	var sb strings.Builder

	if target, ok := m.session.ReplyTarget(); ok {
		sb.WriteString(titleStyle.Render("Reply to " + target.Author))
		sb.WriteString("\n")
		quote := render.HTMLToText(target.Body, min(m.width-4, 100))
		if lines := strings.Split(quote, "\n"); len(lines) > 3 {
			quote = strings.Join(lines[:3], "\n") + " …"
		}
		sb.WriteString(quoteStyle.Render(quote))
	} else {
		sb.WriteString(titleStyle.Render("New comment"))
	}
	sb.WriteString("\n\n")
	sb.WriteString(m.textarea.View())
	sb.WriteString("\n\n")

	if m.err != "" {
		sb.WriteString(errorStyle.Render(m.err))
		sb.WriteString("\n")
	}
	if m.submitting {
		sb.WriteString("Posting...")
	} else {
		sb.WriteString(hintStyle.Render("Ctrl+S to post | Ctrl+X top-level comment | Esc to close (draft is kept)"))
	}

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, sb.String())
}
