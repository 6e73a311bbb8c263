package ui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fragmede/wpnews/internal/config"
	"github.com/fragmede/wpnews/internal/news"
	"github.com/fragmede/wpnews/internal/ui/messages"
)

type stubSource struct{}

func (stubSource) FetchPage(context.Context, news.Cursor) (news.Page, error) {
	return news.Page{Items: []news.Item{{ID: 1, Title: "one"}}, IsLast: true}, nil
}

func (stubSource) FetchComments(_ context.Context, itemID int64) ([]news.Comment, error) {
	return []news.Comment{{ID: 10, ItemID: itemID, Body: "<p>hi</p>"}}, nil
}

func (stubSource) PostComment(context.Context, int64, string, int64) (news.Comment, error) {
	return news.Comment{}, news.ErrNotAuthenticated
}

func (stubSource) IsAuthenticated(context.Context) bool { return false }

func newTestApp(opts Options) *App {
	cfg := config.Default()
	cfg.SiteURL = "https://example.com"
	return NewApp(cfg, stubSource{}, opts)
}

func TestLayoutFor(t *testing.T) {
	if LayoutFor(119, 120) != news.Compact || LayoutFor(120, 120) != news.Wide {
		t.Fatal("threshold should switch at the configured width")
	}
	if LayoutFor(500, 0) != news.Compact {
		t.Fatal("zero threshold disables wide layout")
	}
}

func TestWindowSizeSwitchesLayout(t *testing.T) {
	a := newTestApp(Options{})
	a.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
	if a.Controller().Layout() != news.Wide {
		t.Fatal("wide terminal should use the wide layout")
	}
	a.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	if a.Controller().Layout() != news.Compact {
		t.Fatal("narrow terminal should use the compact layout")
	}
}

func TestForcedLayoutIgnoresWidth(t *testing.T) {
	wide := news.Wide
	a := newTestApp(Options{Layout: &wide})
	a.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	if a.Controller().Layout() != news.Wide {
		t.Fatal("forced layout should not follow the terminal width")
	}
}

func TestBridgeWithoutProgramDropsMessages(t *testing.T) {
	b := &Bridge{}
	b.Notify("hello")
	b.NavigateTo(news.ViewPostDetail, news.Item{ID: 1})
}

func TestStatusMessageShown(t *testing.T) {
	a := newTestApp(Options{})
	a.Update(messages.StatusMsg{Text: news.MsgLoadFailed, IsError: true})
	if a.statusBar.Status() != news.MsgLoadFailed {
		t.Fatalf("status = %q", a.statusBar.Status())
	}
}

func TestStateChangedShowsInlineThread(t *testing.T) {
	wide := news.Wide
	a := newTestApp(Options{Layout: &wide})
	a.Update(tea.WindowSizeMsg{Width: 160, Height: 40})

	a.Controller().SelectItem(context.Background(), news.Item{ID: 5, Title: "five"})
	a.Update(messages.StateChangedMsg{})
	if a.inlineSession == nil || a.inlineSession != a.Controller().Session() {
		t.Fatal("inline pane should follow the controller session")
	}
	if a.inline.Item().ID != 5 {
		t.Fatalf("inline item = %d", a.inline.Item().ID)
	}
}

func TestOpenPostPushesDetailView(t *testing.T) {
	a := newTestApp(Options{})
	_, cmd := a.Update(messages.OpenPostMsg{Item: news.Item{ID: 3}})
	if a.activeView != ViewPostDetail || cmd == nil {
		t.Fatalf("view = %v cmd = %v", a.activeView, cmd)
	}
	if a.postView.Session() == a.Controller().Session() {
		t.Fatal("detail view should own its session")
	}
	a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if a.activeView != ViewPostList {
		t.Fatalf("view after esc = %v", a.activeView)
	}
}

func TestLoadMoreSkippedWhenExhausted(t *testing.T) {
	a := newTestApp(Options{})
	if err := a.Controller().LoadMore(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, cmd := a.Update(messages.LoadMoreMsg{}); cmd != nil {
		t.Fatal("exhausted feed should not fetch again")
	}
}
