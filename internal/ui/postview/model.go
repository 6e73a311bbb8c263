package postview

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/wpnews/internal/news"
	"github.com/fragmede/wpnews/internal/render"
	"github.com/fragmede/wpnews/internal/thread"
	"github.com/fragmede/wpnews/internal/ui/actions"
	"github.com/fragmede/wpnews/internal/ui/messages"
)

var (
	depthColors = []lipgloss.Color{
		"#21759B", "#828282", "#00BFFF", "#32CD32", "#FFD700", "#FF69B4", "#9370DB", "#20B2AA",
	}

	commentAuthorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#21759B")).Bold(true)
	commentMetaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	commentSelStyle    = lipgloss.NewStyle().Background(lipgloss.Color("#333333"))
	replyBadgeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#000")).Background(lipgloss.Color("#21759B")).Bold(true)
	postHeaderStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Padding(0, 1)
	postMetaStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#828282")).Padding(0, 1)
	separatorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
)

const scrollStep = 3

type commentOffset struct {
	startLine int
	endLine   int
}

// Model shows one post with its comment thread.
type Model struct {
	viewport    viewport.Model
	item        news.Item
	session     *thread.Session
	comments    []thread.FlatComment
	offsets     []commentOffset
	bodyLines   int
	selectedIdx int
	collapse    thread.CollapseState
	width       int
	height      int
}

// New creates a view of item backed by session.
func New(item news.Item, session *thread.Session) Model {
	return Model{
		viewport: viewport.New(0, 0),
		item:     item,
		session:  session,
		collapse: make(thread.CollapseState),
	}
}

// Load starts loading the thread of the post.
func (m Model) Load() tea.Cmd {
	return actions.LoadThreadCmd(m.session, m.item.ID)
}

// Session returns the comment thread shown by the view.
func (m Model) Session() *thread.Session {
	return m.session
}

// Item returns the post shown by the view.
func (m Model) Item() news.Item {
	return m.item
}

// SetSize updates viewport dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = w
	m.resizeViewport()
	m.Rebuild()
}

func (m *Model) resizeViewport() {
	headerLines := strings.Count(m.renderHeader(), "\n") + 1
	m.viewport.Height = m.height - headerLines
	if m.viewport.Height < 1 {
		m.viewport.Height = 1
	}
}

// Rebuild re-reads the session and redraws the thread.
func (m *Model) Rebuild() {
	if m.session == nil {
		m.comments = nil
	} else {
		m.comments = m.session.Forest().Flatten(m.collapse)
	}
	if m.selectedIdx >= len(m.comments) {
		m.selectedIdx = len(m.comments) - 1
	}
	if m.selectedIdx < 0 {
		m.selectedIdx = 0
	}
	m.resizeViewport()
	m.rebuildContent()
}

func (m Model) selected() (news.Comment, bool) {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.comments) {
		return news.Comment{}, false
	}
	return m.comments[m.selectedIdx].Comment, true
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.ThreadLoadedMsg:
		if msg.ItemID == m.item.ID {
			m.Rebuild()
		}
		return m, nil

	case messages.StateChangedMsg:
		m.Rebuild()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if m.selectedIdx >= 0 && m.selectedIdx < len(m.offsets) {
				off := m.offsets[m.selectedIdx]
				if off.endLine >= m.viewport.YOffset+m.viewport.Height {
					m.viewport.SetYOffset(m.viewport.YOffset + scrollStep)
					return m, nil
				}
			}
			if m.selectedIdx < len(m.comments)-1 {
				m.selectedIdx++
				m.rebuildContent()
				m.scrollToCursor()
			}
			return m, nil
		case "k", "up":
			if m.selectedIdx >= 0 && m.selectedIdx < len(m.offsets) {
				off := m.offsets[m.selectedIdx]
				if off.startLine < m.viewport.YOffset {
					m.viewport.SetYOffset(max(m.viewport.YOffset-scrollStep, off.startLine))
					return m, nil
				}
			}
			if m.selectedIdx > 0 {
				m.selectedIdx--
				m.rebuildContent()
				m.scrollToCursor()
			}
			return m, nil
		case " ":
			if c, ok := m.selected(); ok {
				m.collapse[c.ID] = !m.collapse[c.ID]
				m.Rebuild()
			}
			return m, nil
		case "[":
			if idx := thread.FindParentIndex(m.comments, m.selectedIdx); idx >= 0 {
				m.selectedIdx = idx
				m.rebuildContent()
				m.scrollToCursor()
			}
			return m, nil
		case "]":
			if idx := thread.FindNextSiblingIndex(m.comments, m.selectedIdx); idx >= 0 {
				m.selectedIdx = idx
				m.rebuildContent()
				m.scrollToCursor()
			}
			return m, nil
		case "g", "home":
			m.selectedIdx = 0
			m.rebuildContent()
			m.viewport.GotoTop()
			return m, nil
		case "G", "end":
			if len(m.comments) > 0 {
				m.selectedIdx = len(m.comments) - 1
				m.rebuildContent()
				m.viewport.GotoBottom()
			}
			return m, nil
		case "c":
			sess := m.session
			return m, func() tea.Msg { return messages.OpenReplyMsg{Session: sess} }
		case "R":
			c, ok := m.selected()
			if !ok {
				return m, nil
			}
			sess := m.session
			return m, func() tea.Msg { return messages.OpenReplyMsg{Session: sess, Target: &c} }
		case "x":
			if m.session != nil {
				m.session.SetReplyTarget(nil)
				m.rebuildContent()
			}
			return m, nil
		case "ctrl+r":
			sess := m.session
			return m, func() tea.Msg { return messages.ReloadCommentsMsg{Session: sess} }
		case "o":
			if m.item.Link != "" {
				link := m.item.Link
				return m, func() tea.Msg { return messages.OpenURLMsg{URL: link} }
			}
			return m, nil
		case "ctrl+d", "pgdown":
			m.viewport.HalfViewDown()
			return m, nil
		case "ctrl+u", "pgup":
			m.viewport.HalfViewUp()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the post view.
func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), m.viewport.View())
}

func (m *Model) rebuildContent() {
	availWidth := max(m.width-4, 20)

	var sb strings.Builder
	body := render.HTMLToText(m.item.Body, availWidth)
	if body != "" {
		sb.WriteString(body)
		sb.WriteString("\n\n")
	}
	sb.WriteString(separatorStyle.Render(strings.Repeat("─", max(m.width, 1))))
	sb.WriteString("\n")
	m.bodyLines = strings.Count(sb.String(), "\n")

	if len(m.comments) == 0 {
		m.offsets = nil
		if m.session != nil && m.session.Loading() {
			sb.WriteString("  Loading comments...")
		} else {
			sb.WriteString("  No comments yet.")
		}
		m.viewport.SetContent(sb.String())
		return
	}

	var target int64
	if m.session != nil {
		if t, ok := m.session.ReplyTarget(); ok {
			target = t.ID
		}
	}

	m.offsets = make([]commentOffset, len(m.comments))
	lineCount := m.bodyLines
	for i, fc := range m.comments {
		startLine := lineCount
		indent := min(fc.Depth*2, 30)
		indentStr := strings.Repeat(" ", indent)

		barColor := depthColors[fc.Depth%len(depthColors)]
		selected := i == m.selectedIdx
		if selected {
			barColor = depthColors[0]
		}
		bar := lipgloss.NewStyle().Foreground(barColor).Render("│")

		header := commentAuthorStyle.Render(fc.Comment.Author)
		header += " " + commentMetaStyle.Render(render.TimeAgo(fc.Comment.PostedAt))
		if fc.Comment.ID == target {
			header += " " + replyBadgeStyle.Render(" replying ")
		}
		if fc.IsCollapsed {
			header += " " + commentMetaStyle.Render(fmt.Sprintf("[+%d]", fc.ChildCount))
		}

		headerLine := indentStr + bar + " " + header
		if selected {
			headerLine = commentSelStyle.Render(headerLine)
		}
		sb.WriteString(headerLine + "\n")
		lineCount++

		if !fc.IsCollapsed {
			text := render.HTMLToText(fc.Comment.Body, max(availWidth-indent-4, 20))
			for _, line := range strings.Split(text, "\n") {
				bodyLine := indentStr + bar + " " + line
				if selected {
					bodyLine = commentSelStyle.Render(bodyLine)
				}
				sb.WriteString(bodyLine + "\n")
				lineCount++
			}
		}
		sb.WriteString("\n")
		lineCount++

		m.offsets[i] = commentOffset{startLine: startLine, endLine: lineCount - 1}
	}

	m.viewport.SetContent(sb.String())
}

func (m *Model) scrollToCursor() {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.offsets) {
		return
	}
	off := m.offsets[m.selectedIdx]
	if off.startLine < m.viewport.YOffset || off.startLine >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(off.startLine)
	}
}

func (m Model) renderHeader() string {
	parts := []string{postHeaderStyle.Render(m.item.Title)}

	meta := render.TimeAgo(m.item.PublishedAt)
	if m.item.Author != "" {
		meta = "by " + m.item.Author + " | " + meta
	}
	if m.session != nil {
		meta += fmt.Sprintf(" | %d comments", m.session.Forest().Len())
	}
	if u, err := url.Parse(m.item.Link); err == nil && u.Host != "" {
		meta += " | " + u.Host
	}
	parts = append(parts, postMetaStyle.Render(meta))

	hint := commentMetaStyle.Render("j/k:move  [:parent  ]:sibling  space:collapse  c:comment  R:reply  x:no reply  ctrl+r:reload  o:open")
	parts = append(parts, hint)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
