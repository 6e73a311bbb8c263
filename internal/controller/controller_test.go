package controller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fragmede/wpnews/internal/feed"
	"github.com/fragmede/wpnews/internal/news"
)

type stubSource struct {
	mu       sync.Mutex
	pages    map[news.Cursor]news.Page
	pageErr  error
	comments map[int64][]news.Comment
	fetched  []int64
}

func (s *stubSource) FetchPage(_ context.Context, cursor news.Cursor) (news.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pageErr != nil {
		return news.Page{}, s.pageErr
	}
	return s.pages[cursor], nil
}

func (s *stubSource) FetchComments(_ context.Context, itemID int64) ([]news.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetched = append(s.fetched, itemID)
	return s.comments[itemID], nil
}

func (s *stubSource) PostComment(context.Context, int64, string, int64) (news.Comment, error) {
	return news.Comment{}, errors.New("not implemented")
}

func (s *stubSource) IsAuthenticated(context.Context) bool { return false }

type navCall struct {
	view news.ViewID
	item news.Item
}

type stubNav struct{ calls []navCall }

func (n *stubNav) NavigateTo(view news.ViewID, payload any) {
	n.calls = append(n.calls, navCall{view, payload.(news.Item)})
}

type recordSink struct{ msgs []string }

func (r *recordSink) Notify(m string) { r.msgs = append(r.msgs, m) }

func page(next news.Cursor, last bool, ids ...int64) news.Page {
	p := news.Page{Next: next, IsLast: last}
	for _, id := range ids {
		p.Items = append(p.Items, news.Item{ID: id, Title: "post"})
	}
	return p
}

func newSource() *stubSource {
	return &stubSource{
		pages: map[news.Cursor]news.Page{
			"":  page("2", false, 10, 20),
			"2": page("3", false, 30, 40),
			"3": page("", true, 50),
		},
		comments: map[int64][]news.Comment{
			30: {{ID: 1, ItemID: 30, PostedAt: time.Unix(1, 0)}},
			40: {{ID: 2, ItemID: 40, PostedAt: time.Unix(1, 0)}, {ID: 3, ItemID: 40, ParentID: 2, PostedAt: time.Unix(2, 0)}},
		},
	}
}

func TestDeepLinkResolvesOnLaterPage(t *testing.T) {
	src, nav := newSource(), &stubNav{}
	c := New(src, nav, &recordSink{}, Options{})
	c.Initialize(context.Background(), 30, news.Compact)

	_ = c.LoadMore(context.Background())
	if st, _ := c.DeepLink(); st != DeepLinkPending {
		t.Fatalf("state after page 1 = %v", st)
	}
	if len(nav.calls) != 0 {
		t.Fatal("nothing should be selected yet")
	}

	_ = c.LoadMore(context.Background())
	if st, _ := c.DeepLink(); st != DeepLinkResolved {
		t.Fatalf("state after page 2 = %v", st)
	}
	if len(nav.calls) != 1 || nav.calls[0].item.ID != 30 || nav.calls[0].view != news.ViewPostDetail {
		t.Fatalf("nav calls = %+v", nav.calls)
	}

	_ = c.LoadMore(context.Background())
	if len(nav.calls) != 1 {
		t.Fatal("resolved deep link must not select again")
	}
}

func TestDeepLinkAbandonedWhenFeedEnds(t *testing.T) {
	src, nav := newSource(), &stubNav{}
	c := New(src, nav, &recordSink{}, Options{})
	c.Initialize(context.Background(), 999, news.Wide)

	for i := 0; i < 3; i++ {
		_ = c.LoadMore(context.Background())
	}
	if st, _ := c.DeepLink(); st != DeepLinkAbandoned {
		t.Fatalf("state = %v", st)
	}
	if _, ok := c.Selected(); ok || len(nav.calls) != 0 {
		t.Fatal("nothing should be selected")
	}
}

func TestNoDeepLinkNeverSelects(t *testing.T) {
	src, nav := newSource(), &stubNav{}
	c := New(src, nav, &recordSink{}, Options{})
	c.Initialize(context.Background(), 0, news.Compact)
	_ = c.LoadMore(context.Background())
	if st, _ := c.DeepLink(); st != DeepLinkNone || len(nav.calls) != 0 {
		t.Fatalf("state %v nav %v", st, nav.calls)
	}
}

func TestInitializeKeepsFeed(t *testing.T) {
	c := New(newSource(), &stubNav{}, &recordSink{}, Options{})
	c.Initialize(context.Background(), 0, news.Compact)
	f := c.Feed()
	_ = c.LoadMore(context.Background())
	c.Initialize(context.Background(), 0, news.Wide)
	if c.Feed() != f {
		t.Fatal("re-initialization must keep the feed")
	}
	if len(c.Items()) != 2 {
		t.Fatalf("items = %d", len(c.Items()))
	}
}

func TestReinitializeResolvesAgainstLoadedItems(t *testing.T) {
	nav := &stubNav{}
	c := New(newSource(), nav, &recordSink{}, Options{})
	c.Initialize(context.Background(), 0, news.Compact)
	_ = c.LoadMore(context.Background())

	c.Initialize(context.Background(), 20, news.Compact)
	if st, _ := c.DeepLink(); st != DeepLinkResolved {
		t.Fatalf("state = %v", st)
	}
	if len(nav.calls) != 1 || nav.calls[0].item.ID != 20 {
		t.Fatalf("nav = %+v", nav.calls)
	}
}

func TestReinitializeWithoutDeepLinkClearsPending(t *testing.T) {
	nav := &stubNav{}
	c := New(newSource(), nav, &recordSink{}, Options{})
	c.Initialize(context.Background(), 99, news.Compact)
	c.Initialize(context.Background(), 0, news.Compact)
	if st, id := c.DeepLink(); st != DeepLinkNone || id != 0 {
		t.Fatalf("state %v id %d", st, id)
	}

	c.Initialize(context.Background(), 10, news.Compact)
	c.Initialize(context.Background(), 0, news.Compact)
	_ = c.LoadMore(context.Background())
	if len(nav.calls) != 0 {
		t.Fatalf("dropped deep link must not select: %+v", nav.calls)
	}
}

func TestWideSelectReplacesSession(t *testing.T) {
	src, nav := newSource(), &stubNav{}
	c := New(src, nav, &recordSink{}, Options{})
	c.Initialize(context.Background(), 0, news.Wide)

	c.SelectItem(context.Background(), news.Item{ID: 30})
	first := c.Session()
	first.SetDraft("half written")
	first.SetReplyTarget(&news.Comment{ID: 1})

	c.SelectItem(context.Background(), news.Item{ID: 40})
	second := c.Session()
	if first == second {
		t.Fatal("expected a new session")
	}
	if first.Draft() != "" || first.Forest() != nil {
		t.Fatal("old session should be cleared")
	}
	if second.ItemID() != 40 || second.Forest().Len() != 2 {
		t.Fatalf("new session item %d len %d", second.ItemID(), second.Forest().Len())
	}
	if _, ok := second.ReplyTarget(); ok || second.Draft() != "" {
		t.Fatal("new session should start empty")
	}
	if sel, _ := c.Selected(); sel.ID != 40 {
		t.Fatalf("selected = %d", sel.ID)
	}
	if len(nav.calls) != 0 {
		t.Fatal("wide selection must not navigate")
	}
}

func TestCompactSelectOnlyNavigates(t *testing.T) {
	src, nav := newSource(), &stubNav{}
	c := New(src, nav, &recordSink{}, Options{})
	c.Initialize(context.Background(), 0, news.Compact)

	c.SelectItem(context.Background(), news.Item{ID: 30})
	if len(nav.calls) != 1 {
		t.Fatalf("nav calls = %d", len(nav.calls))
	}
	if c.Session() != nil || len(src.fetched) != 0 {
		t.Fatal("compact selection must not touch the inline thread")
	}
	if _, ok := c.Selected(); ok {
		t.Fatal("compact selection must not set the inline selection")
	}
}

func TestLayoutChangeDoesNotReselect(t *testing.T) {
	src, nav := newSource(), &stubNav{}
	c := New(src, nav, &recordSink{}, Options{})
	c.Initialize(context.Background(), 0, news.Wide)
	c.SelectItem(context.Background(), news.Item{ID: 30})
	sess := c.Session()

	c.OnLayoutModeChanged(news.Compact)
	if c.Layout() != news.Compact || c.Session() != sess || len(src.fetched) != 1 {
		t.Fatal("layout change should only change the mode")
	}
	c.SelectItem(context.Background(), news.Item{ID: 40})
	if len(nav.calls) != 1 {
		t.Fatal("selection after switching to compact should navigate")
	}
}

func TestSwitchToWideSelectsInline(t *testing.T) {
	src, nav := newSource(), &stubNav{}
	c := New(src, nav, &recordSink{}, Options{})
	c.Initialize(context.Background(), 0, news.Compact)
	c.SelectItem(context.Background(), news.Item{ID: 30})

	c.OnLayoutModeChanged(news.Wide)
	if len(nav.calls) != 1 || c.Session() != nil || len(src.fetched) != 0 {
		t.Fatal("layout change should leave the issued navigation alone")
	}

	c.SelectItem(context.Background(), news.Item{ID: 40})
	if len(nav.calls) != 1 {
		t.Fatal("wide selection must not navigate")
	}
	sess := c.Session()
	if sess == nil || sess.ItemID() != 40 || sess.Forest().Len() != 2 {
		t.Fatal("wide selection should load a new inline session")
	}
}

func TestRefreshFailureNotifiesOnce(t *testing.T) {
	src, sink := newSource(), &recordSink{}
	c := New(src, &stubNav{}, sink, Options{})
	c.Initialize(context.Background(), 0, news.Compact)
	_ = c.LoadMore(context.Background())

	src.pageErr = errors.New("offline")
	if err := c.Refresh(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if len(sink.msgs) != 1 || sink.msgs[0] != news.MsgRefreshFailed {
		t.Fatalf("msgs = %v", sink.msgs)
	}
	if len(c.Items()) != 2 {
		t.Fatal("items should be kept")
	}
}

func TestRefreshOnEmptyFeedIsSilent(t *testing.T) {
	sink := &recordSink{}
	c := New(newSource(), &stubNav{}, sink, Options{})
	c.Initialize(context.Background(), 0, news.Compact)
	if err := c.Refresh(context.Background()); !news.IsSkip(err) {
		t.Fatalf("err = %v", err)
	}
	if len(sink.msgs) != 0 {
		t.Fatalf("msgs = %v", sink.msgs)
	}
}

func TestLoadMoreFailureNotifies(t *testing.T) {
	src, sink := newSource(), &recordSink{}
	src.pageErr = errors.New("offline")
	c := New(src, &stubNav{}, sink, Options{})
	c.Initialize(context.Background(), 0, news.Compact)
	_ = c.LoadMore(context.Background())
	if len(sink.msgs) != 1 || sink.msgs[0] != news.MsgLoadFailed {
		t.Fatalf("msgs = %v", sink.msgs)
	}
}

func TestDeepLinkRescansAfterRefresh(t *testing.T) {
	src, nav := newSource(), &stubNav{}
	c := New(src, nav, &recordSink{}, Options{Feed: feed.Options{}})
	c.Initialize(context.Background(), 77, news.Compact)
	_ = c.LoadMore(context.Background())

	src.mu.Lock()
	src.pages[""] = page("2", false, 77, 10)
	src.mu.Unlock()
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if st, _ := c.DeepLink(); st != DeepLinkResolved || len(nav.calls) != 1 {
		t.Fatalf("state %v nav %v", st, nav.calls)
	}
}
