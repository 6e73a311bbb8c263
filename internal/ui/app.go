package ui

import (
	"context"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/wpnews/internal/config"
	"github.com/fragmede/wpnews/internal/controller"
	"github.com/fragmede/wpnews/internal/feed"
	"github.com/fragmede/wpnews/internal/news"
	"github.com/fragmede/wpnews/internal/thread"
	"github.com/fragmede/wpnews/internal/ui/actions"
	"github.com/fragmede/wpnews/internal/ui/messages"
	"github.com/fragmede/wpnews/internal/ui/postlist"
	"github.com/fragmede/wpnews/internal/ui/postview"
	"github.com/fragmede/wpnews/internal/ui/reply"
	"github.com/fragmede/wpnews/internal/ui/statusbar"
)

// ViewType identifies the active view.
type ViewType int

const (
	ViewPostList ViewType = iota
	ViewPostDetail
	ViewReply
)

type pane int

const (
	listPane pane = iota
	detailPane
)

// Options configure the starting state of the app.
type Options struct {
	SiteName string
	Username string
	// PendingID is a post to open once it appears in the feed.
	PendingID int64
	// Layout forces a layout instead of following the terminal width.
	Layout *news.LayoutMode
	// OpenURL opens links; defaults to the system browser.
	OpenURL func(string) error
}

// Bridge delivers controller callbacks into the running program.
type Bridge struct {
	program atomic.Pointer[tea.Program]
}

// SetProgram connects the bridge to p.
func (b *Bridge) SetProgram(p *tea.Program) {
	b.program.Store(p)
}

// send never blocks the caller, which may be the program's own event loop.
func (b *Bridge) send(msg tea.Msg) {
	if p := b.program.Load(); p != nil {
		go p.Send(msg)
	}
}

// NavigateTo opens the detail view of a post.
func (b *Bridge) NavigateTo(view news.ViewID, payload any) {
	if item, ok := payload.(news.Item); ok && view == news.ViewPostDetail {
		b.send(messages.OpenPostMsg{Item: item})
	}
}

// Notify shows message in the status bar. Everything but a posted
// comment is a failure.
func (b *Bridge) Notify(message string) {
	b.send(messages.StatusMsg{Text: message, IsError: message != news.MsgCommentPosted})
}

// App is the root Bubble Tea model.
type App struct {
	// View state
	activeView    ViewType
	previousViews []ViewType
	focus         pane

	// Child models
	postList      postlist.Model
	postView      postview.Model
	inline        postview.Model
	inlineSession *thread.Session
	replyForm     reply.Model
	statusBar     statusbar.Model

	// Shared state
	cfg         config.Config
	source      news.ContentSource
	ctrl        *controller.Controller
	bridge      *Bridge
	openURL     func(string) error
	fixedLayout bool

	// Dimensions
	width  int
	height int
}

// NewApp creates the root application model.
func NewApp(cfg config.Config, source news.ContentSource, opts Options) *App {
	bridge := &Bridge{}
	ctrl := controller.New(source, bridge, bridge, controller.Options{
		Feed: feed.Options{PageSize: cfg.PageSize, PrefetchPages: cfg.PrefetchPages},
	})
	ctrl.OnUpdate(func() { bridge.send(messages.StateChangedMsg{}) })

	mode := news.Compact
	if opts.Layout != nil {
		mode = *opts.Layout
	}
	ctrl.Initialize(context.Background(), opts.PendingID, mode)

	openURL := opts.OpenURL
	if openURL == nil {
		openURL = actions.OpenBrowser
	}

	title := opts.SiteName
	if title == "" {
		title = "Posts"
	}
	sb := statusbar.New(title)
	sb.SetUser(opts.Username)
	sb.SetLayout(mode)

	return &App{
		activeView:  ViewPostList,
		postList:    postlist.New(title),
		statusBar:   sb,
		cfg:         cfg,
		source:      source,
		ctrl:        ctrl,
		bridge:      bridge,
		openURL:     openURL,
		fixedLayout: opts.Layout != nil,
	}
}

// SetProgram connects controller callbacks to p.
func (a *App) SetProgram(p *tea.Program) {
	a.bridge.SetProgram(p)
}

// Controller exposes the feed controller driving the app.
func (a *App) Controller() *controller.Controller {
	return a.ctrl
}

// Init loads the first page.
func (a *App) Init() tea.Cmd {
	return tea.Batch(actions.LoadMoreCmd(a.ctrl), a.statusBar.SetLoading(true))
}

// LayoutFor picks the layout for a terminal width.
func LayoutFor(width, wideMinWidth int) news.LayoutMode {
	if wideMinWidth > 0 && width >= wideMinWidth {
		return news.Wide
	}
	return news.Compact
}

// Update handles all messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if !a.fixedLayout {
			a.setLayout(LayoutFor(msg.Width, a.cfg.WideMinWidth))
		}
		a.resize()
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.activeView == ViewReply {
			if key.Matches(msg, Keys.Back) {
				return a, a.goBack()
			}
			break
		}
		if a.activeView == ViewPostList && a.postList.Filtering() {
			break
		}
		switch {
		case key.Matches(msg, Keys.Quit):
			if a.activeView == ViewPostList {
				return a, tea.Quit
			}
			return a, a.goBack()
		case key.Matches(msg, Keys.Back):
			if a.activeView == ViewPostList && a.focus == detailPane {
				a.focus = listPane
				return a, nil
			}
			return a, a.goBack()
		case key.Matches(msg, Keys.SwitchPane):
			if a.activeView == ViewPostList && a.ctrl.Layout() == news.Wide && a.inlineSession != nil {
				if a.focus == listPane {
					a.focus = detailPane
				} else {
					a.focus = listPane
				}
			}
			return a, nil
		case key.Matches(msg, Keys.CycleLayout):
			a.fixedLayout = true
			if a.ctrl.Layout() == news.Wide {
				a.setLayout(news.Compact)
			} else {
				a.setLayout(news.Wide)
			}
			a.resize()
			return a, nil
		}

	case messages.SelectPostMsg:
		if a.ctrl.Layout() == news.Wide {
			a.focus = detailPane
		}
		return a, actions.SelectCmd(a.ctrl, msg.Item)

	case messages.OpenPostMsg:
		a.pushView(ViewPostDetail)
		a.postView = postview.New(msg.Item, thread.NewSession(a.source, a.bridge))
		a.postView.SetSize(a.width, a.contentHeight())
		return a, a.postView.Load()

	case messages.OpenReplyMsg:
		if msg.Session == nil {
			return a, nil
		}
		a.pushView(ViewReply)
		a.replyForm = reply.New(msg.Session, msg.Target)
		a.replyForm.SetSize(a.width, a.contentHeight())
		return a, nil

	case messages.CommentPostedMsg:
		if a.activeView == ViewReply {
			a.replyForm, _ = a.replyForm.Update(msg)
			if msg.Err == nil {
				a.goBack()
			}
		}
		a.rebuildThreads()
		return a, nil

	case messages.ReloadCommentsMsg:
		if msg.Session == nil {
			return a, nil
		}
		if msg.Session == a.ctrl.Session() {
			return a, actions.RefreshCommentsCmd(a.ctrl)
		}
		return a, actions.LoadThreadCmd(msg.Session, msg.Session.ItemID())

	case messages.LoadMoreMsg:
		if a.ctrl.Loading() || !a.ctrl.HasMore() {
			return a, nil
		}
		return a, tea.Batch(actions.LoadMoreCmd(a.ctrl), a.statusBar.SetLoading(true))

	case messages.RefreshMsg:
		return a, tea.Batch(actions.RefreshCmd(a.ctrl), a.statusBar.SetLoading(true))

	case messages.OpenURLMsg:
		return a, actions.OpenURLCmd(msg.URL, a.openURL)

	case messages.StatusMsg:
		a.statusBar.SetStatus(msg.Text, msg.IsError)
		return a, nil

	case messages.StateChangedMsg:
		return a, a.syncFromController()

	case messages.ThreadLoadedMsg:
		a.rebuildThreads()
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.statusBar, cmd = a.statusBar.Update(msg)
		return a, cmd
	}

	// Route to active view.
	var cmd tea.Cmd
	switch a.activeView {
	case ViewPostList:
		if a.focus == detailPane && a.inlineSession != nil {
			a.inline, cmd = a.inline.Update(msg)
		} else {
			a.postList, cmd = a.postList.Update(msg)
		}
		cmds = append(cmds, cmd)
	case ViewPostDetail:
		a.postView, cmd = a.postView.Update(msg)
		cmds = append(cmds, cmd)
	case ViewReply:
		a.replyForm, cmd = a.replyForm.Update(msg)
		cmds = append(cmds, cmd)
	}

	return a, tea.Batch(cmds...)
}

// View renders the application.
func (a *App) View() string {
	var content string
	switch a.activeView {
	case ViewPostList:
		content = a.postList.View()
		if a.ctrl.Layout() == news.Wide {
			content = lipgloss.JoinHorizontal(lipgloss.Top, content, a.detailPaneView())
		}
	case ViewPostDetail:
		content = a.postView.View()
	case ViewReply:
		content = a.replyForm.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, content, a.statusBar.View())
}

func (a *App) detailPaneView() string {
	style := paneStyle
	if a.focus == detailPane {
		style = focusedPaneStyle
	}
	w, h := a.detailSize()
	style = style.Width(w).Height(h)
	if a.inlineSession == nil {
		return style.Render(placeholderStyle.Render("Select a post to read it here."))
	}
	return style.Render(a.inline.View())
}

func (a *App) setLayout(mode news.LayoutMode) {
	if mode != a.ctrl.Layout() {
		a.ctrl.OnLayoutModeChanged(mode)
	}
	a.statusBar.SetLayout(mode)
	if mode == news.Compact {
		a.focus = listPane
	}
}

func (a *App) contentHeight() int {
	return max(a.height-1, 1)
}

func (a *App) listWidth() int {
	if a.ctrl.Layout() == news.Wide {
		return a.width * 2 / 5
	}
	return a.width
}

func (a *App) detailSize() (int, int) {
	return max(a.width-a.listWidth()-2, 10), a.contentHeight()
}

func (a *App) resize() {
	h := a.contentHeight()
	a.postList.SetSize(a.listWidth(), h)
	a.statusBar.SetSize(a.width)
	if a.inlineSession != nil {
		w, dh := a.detailSize()
		a.inline.SetSize(w, dh)
	}
	switch a.activeView {
	case ViewPostDetail:
		a.postView.SetSize(a.width, h)
	case ViewReply:
		a.replyForm.SetSize(a.width, h)
	}
}

// syncFromController copies controller state into the views.
func (a *App) syncFromController() tea.Cmd {
	loading := a.ctrl.Loading()
	a.postList.SetPosts(a.ctrl.Items(), loading, a.ctrl.HasMore())
	cmd := a.statusBar.SetLoading(loading)

	if sess := a.ctrl.Session(); sess != a.inlineSession {
		a.inlineSession = sess
		if sess != nil {
			item, _ := a.ctrl.Selected()
			a.inline = postview.New(item, sess)
			w, h := a.detailSize()
			a.inline.SetSize(w, h)
		}
	}
	a.rebuildThreads()
	return cmd
}

func (a *App) rebuildThreads() {
	if a.inlineSession != nil {
		a.inline.Rebuild()
	}
	if a.activeView == ViewPostDetail || len(a.previousViews) > 0 {
		a.postView.Rebuild()
	}
}

func (a *App) pushView(v ViewType) {
	a.previousViews = append(a.previousViews, a.activeView)
	a.activeView = v
}

func (a *App) goBack() tea.Cmd {
	if len(a.previousViews) > 0 {
		a.activeView = a.previousViews[len(a.previousViews)-1]
		a.previousViews = a.previousViews[:len(a.previousViews)-1]
	}
	return nil
}
