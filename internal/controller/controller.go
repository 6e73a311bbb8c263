// Package controller ties the post feed, deep-link resolution, layout and
// the inline comment thread together.
package controller

import (
	"context"
	"log"
	"sync"

	"github.com/fragmede/wpnews/internal/feed"
	"github.com/fragmede/wpnews/internal/news"
	"github.com/fragmede/wpnews/internal/thread"
)

// DeepLinkState tracks a post ID requested at startup.
type DeepLinkState int

const (
	DeepLinkNone DeepLinkState = iota
	DeepLinkPending
	DeepLinkResolved
	DeepLinkAbandoned
)

func (s DeepLinkState) String() string {
	switch s {
	case DeepLinkPending:
		return "pending"
	case DeepLinkResolved:
		return "resolved"
	case DeepLinkAbandoned:
		return "abandoned"
	default:
		return "none"
	}
}

type Options struct {
	Feed feed.Options
}

// Controller owns the feed and, in Wide layout, the comment thread of the
// selected post.
type Controller struct {
	source news.ContentSource
	nav    news.Navigator
	sink   news.NotificationSink
	opts   Options

	mu        sync.Mutex
	feed      *feed.Feed
	layout    news.LayoutMode
	linkState DeepLinkState
	linkID    int64
	scanEpoch uint64
	scanFrom  int
	selected  *news.Item
	session   *thread.Session
	onUpdate  []func()
}

func New(source news.ContentSource, nav news.Navigator, sink news.NotificationSink, opts Options) *Controller {
	return &Controller{source: source, nav: nav, sink: sink, opts: opts}
}

// Initialize records the starting layout and an optional post to open once
// it shows up in the feed (0 for none). The feed is created on the first
// call only.
func (c *Controller) Initialize(ctx context.Context, pendingID int64, mode news.LayoutMode) {
	c.mu.Lock()
	c.layout = mode
	switch {
	case pendingID != 0:
		c.linkState = DeepLinkPending
		c.linkID = pendingID
	case c.linkState == DeepLinkPending:
		c.linkState = DeepLinkNone
		c.linkID = 0
	}
	created := false
	if c.feed == nil {
		c.feed = feed.New(c.source, c.opts.Feed)
		c.feed.OnSettled(c.OnFeedSettled)
		c.feed.OnLoadFailed(c.onLoadFailed)
		created = true
	}
	f := c.feed
	c.scanFrom = 0
	c.scanEpoch = f.Epoch()
	c.mu.Unlock()

	if !created && pendingID != 0 && f.Len() > 0 {
		c.OnFeedSettled(ctx, feed.Settle{Epoch: f.Epoch(), Total: f.Len(), HasMore: f.HasMore()})
	}
}

// OnFeedSettled resolves a pending deep link against the items added since
// the previous settle.
func (c *Controller) OnFeedSettled(ctx context.Context, s feed.Settle) {
	c.mu.Lock()
	if c.linkState != DeepLinkPending || c.feed == nil {
		c.mu.Unlock()
		c.changed()
		return
	}
	if s.Epoch != c.scanEpoch {
		c.scanEpoch = s.Epoch
		c.scanFrom = 0
	}
	fresh := c.feed.ItemsFrom(c.scanFrom)
	c.scanFrom += len(fresh)
	id := c.linkID

	var match *news.Item
	for i := range fresh {
		if fresh[i].ID == id {
			match = &fresh[i]
			break
		}
	}
	switch {
	case match != nil:
		c.linkState = DeepLinkResolved
	case !s.HasMore:
		c.linkState = DeepLinkAbandoned
		log.Printf("controller: post %d not found in feed, giving up", id)
	}
	c.mu.Unlock()

	if match != nil {
		c.SelectItem(ctx, *match)
		return
	}
	c.changed()
}

// SelectItem opens item. Compact layout navigates to a detail view; Wide
// layout replaces the inline thread and loads its comments.
func (c *Controller) SelectItem(ctx context.Context, item news.Item) {
	c.mu.Lock()
	mode := c.layout
	if mode == news.Compact {
		c.mu.Unlock()
		c.nav.NavigateTo(news.ViewPostDetail, item)
		return
	}
	old := c.session
	sel := item
	c.selected = &sel
	sess := thread.NewSession(c.source, c.sink)
	c.session = sess
	c.mu.Unlock()

	if old != nil {
		old.Clear()
	}
	c.changed()
	_ = sess.Load(ctx, item.ID)
	c.changed()
}

// OnLayoutModeChanged switches layout. Nothing else is touched.
func (c *Controller) OnLayoutModeChanged(mode news.LayoutMode) {
	c.mu.Lock()
	c.layout = mode
	c.mu.Unlock()
	c.changed()
}

// LoadMore fetches the next page of the feed.
func (c *Controller) LoadMore(ctx context.Context) error {
	f := c.Feed()
	if f == nil {
		return news.ErrEmptyFeed
	}
	c.changed()
	return f.LoadMore(ctx)
}

// Refresh reloads the feed from the start.
func (c *Controller) Refresh(ctx context.Context) error {
	f := c.Feed()
	if f == nil {
		return news.ErrEmptyFeed
	}
	return f.Refresh(ctx)
}

// RefreshComments reloads the inline thread of the selected post.
func (c *Controller) RefreshComments(ctx context.Context) error {
	sess := c.Session()
	if sess == nil {
		return nil
	}
	err := sess.Reload(ctx)
	c.changed()
	return err
}

func (c *Controller) onLoadFailed(op feed.Op, _ error) {
	if op == feed.OpRefresh {
		c.sink.Notify(news.MsgRefreshFailed)
	} else {
		c.sink.Notify(news.MsgLoadFailed)
	}
	c.changed()
}

// OnUpdate registers fn to run whenever observable state may have changed.
func (c *Controller) OnUpdate(fn func()) {
	c.mu.Lock()
	c.onUpdate = append(c.onUpdate, fn)
	c.mu.Unlock()
}

func (c *Controller) changed() {
	c.mu.Lock()
	fns := append([]func(){}, c.onUpdate...)
	c.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (c *Controller) Feed() *feed.Feed {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.feed
}

func (c *Controller) Items() []news.Item {
	if f := c.Feed(); f != nil {
		return f.Items()
	}
	return nil
}

func (c *Controller) Loading() bool {
	f := c.Feed()
	return f != nil && f.Loading()
}

func (c *Controller) HasMore() bool {
	f := c.Feed()
	return f != nil && f.HasMore()
}

func (c *Controller) Layout() news.LayoutMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.layout
}

func (c *Controller) DeepLink() (DeepLinkState, int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.linkState, c.linkID
}

// Selected returns the post shown inline in Wide layout.
func (c *Controller) Selected() (news.Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return news.Item{}, false
	}
	return *c.selected, true
}

// Session returns the inline comment thread, or nil before any Wide
// selection.
func (c *Controller) Session() *thread.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}
