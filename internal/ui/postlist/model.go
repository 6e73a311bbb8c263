package postlist

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fragmede/wpnews/internal/news"
	"github.com/fragmede/wpnews/internal/ui/messages"
)

// loadAhead is how close to the end the cursor gets before the next page
// is requested.
const loadAhead = 3

// Model is the post list view.
type Model struct {
	list    list.Model
	title   string
	count   int
	loading bool
	hasMore bool
	width   int
	height  int
}

// New creates a new post list model.
func New(title string) Model {
	l := list.New(nil, Delegate{}, 0, 0)
	l.Title = title
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)

	return Model{list: l, title: title, hasMore: true}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.list.SetSize(w, h)
}

// SetPosts replaces the shown posts, keeping the cursor where it was.
func (m *Model) SetPosts(items []news.Item, loading, hasMore bool) {
	idx := m.list.Index()
	li := make([]list.Item, 0, len(items))
	for i, it := range items {
		li = append(li, PostItem{Item: it, Index: i})
	}
	m.list.SetItems(li)
	if idx < len(li) {
		m.list.Select(idx)
	}
	m.count = len(items)
	m.loading = loading
	m.hasMore = hasMore

	switch {
	case loading:
		m.list.Title = m.title + " (loading...)"
	case !hasMore && len(items) > 0:
		m.list.Title = m.title + " (end)"
	default:
		m.list.Title = m.title
	}
}

// Selected returns the post under the cursor.
func (m Model) Selected() (news.Item, bool) {
	if item, ok := m.list.SelectedItem().(PostItem); ok {
		return item.Item, true
	}
	return news.Item{}, false
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch msg.String() {
		case "enter":
			if item, ok := m.Selected(); ok {
				return m, func() tea.Msg { return messages.SelectPostMsg{Item: item} }
			}
			return m, nil
		case "o":
			if item, ok := m.Selected(); ok && item.Link != "" {
				return m, func() tea.Msg { return messages.OpenURLMsg{URL: item.Link} }
			}
			return m, nil
		case "r":
			return m, func() tea.Msg { return messages.RefreshMsg{} }
		case "n":
			return m, func() tea.Msg { return messages.LoadMoreMsg{} }
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	if m.nearEnd() {
		return m, tea.Batch(cmd, func() tea.Msg { return messages.LoadMoreMsg{} })
	}
	return m, cmd
}

func (m Model) nearEnd() bool {
	if m.loading || !m.hasMore || m.count == 0 || m.list.FilterState() != list.Unfiltered {
		return false
	}
	return m.list.Index() >= m.count-loadAhead
}

// View renders the post list.
func (m Model) View() string {
	return m.list.View()
}

// Filtering reports whether the filter input has focus.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}
