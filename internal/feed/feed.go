// Package feed holds the incrementally loaded post collection.
package feed

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/fragmede/wpnews/internal/news"
)

// Op identifies which operation a failure came from.
type Op int

const (
	OpLoadMore Op = iota
	OpRefresh
)

func (o Op) String() string {
	if o == OpRefresh {
		return "refresh"
	}
	return "load more"
}

// Settle describes the feed after a load has finished.
// Epoch changes whenever Refresh replaced the whole sequence.
type Settle struct {
	Epoch   uint64
	Total   int
	HasMore bool
}

type Options struct {
	// PageSize is the expected page length. A shorter page ends the feed.
	// Zero disables that check.
	PageSize int
	// PrefetchPages is how many pages one LoadMore fetches back to back.
	PrefetchPages int
}

// Feed is an ordered, de-duplicated sequence of items fetched page by page.
// At most one fetch is in flight.
type Feed struct {
	source news.PageSource
	opts   Options

	mu      sync.Mutex
	items   []news.Item
	seen    map[int64]struct{}
	cursor  news.Cursor
	hasMore bool
	loading bool
	epoch   uint64

	pageLoaded []func(n int)
	settled    []func(ctx context.Context, s Settle)
	failed     []func(op Op, err error)
}

func New(source news.PageSource, opts Options) *Feed {
	if opts.PrefetchPages < 1 {
		opts.PrefetchPages = 1
	}
	return &Feed{
		source:  source,
		opts:    opts,
		seen:    make(map[int64]struct{}),
		hasMore: true,
	}
}

// OnPageLoaded registers fn to run after each appended page with the
// number of items it added.
func (f *Feed) OnPageLoaded(fn func(n int)) {
	f.mu.Lock()
	f.pageLoaded = append(f.pageLoaded, fn)
	f.mu.Unlock()
}

// OnSettled registers fn to run once a load or refresh has finished and
// no further page is scheduled.
func (f *Feed) OnSettled(fn func(ctx context.Context, s Settle)) {
	f.mu.Lock()
	f.settled = append(f.settled, fn)
	f.mu.Unlock()
}

// OnLoadFailed registers fn to run when a fetch fails.
func (f *Feed) OnLoadFailed(fn func(op Op, err error)) {
	f.mu.Lock()
	f.failed = append(f.failed, fn)
	f.mu.Unlock()
}

// LoadMore fetches the next page(s) and appends them.
// It returns news.ErrBusy or news.ErrExhausted without fetching when a
// fetch is running or the collection has no more pages.
func (f *Feed) LoadMore(ctx context.Context) error {
	f.mu.Lock()
	if f.loading {
		f.mu.Unlock()
		return news.ErrBusy
	}
	if !f.hasMore {
		f.mu.Unlock()
		return news.ErrExhausted
	}
	f.loading = true
	f.mu.Unlock()

	appendedAny := false
	for i := 0; i < f.opts.PrefetchPages; i++ {
		f.mu.Lock()
		cursor := f.cursor
		f.mu.Unlock()

		page, err := f.source.FetchPage(ctx, cursor)
		if err != nil {
			log.Printf("feed: load more from %q: %v", cursor, err)
			f.mu.Lock()
			f.loading = false
			f.mu.Unlock()
			f.emitFailed(OpLoadMore, err)
			if appendedAny {
				f.emitSettled(ctx)
			}
			return fmt.Errorf("loading page: %w", err)
		}

		f.mu.Lock()
		added := f.appendLocked(page.Items)
		f.cursor = page.Next
		f.hasMore = f.pageHasMore(page)
		last := !f.hasMore || i == f.opts.PrefetchPages-1
		if last {
			f.loading = false
		}
		f.mu.Unlock()

		appendedAny = true
		f.emitPageLoaded(added)
		if last {
			break
		}
	}
	f.emitSettled(ctx)
	return nil
}

// Refresh re-fetches from the start and replaces the sequence in one step.
// It returns news.ErrBusy or news.ErrEmptyFeed without fetching when a
// fetch is running or nothing has been loaded yet. On failure the current
// items are kept.
func (f *Feed) Refresh(ctx context.Context) error {
	f.mu.Lock()
	if f.loading {
		f.mu.Unlock()
		return news.ErrBusy
	}
	if len(f.items) == 0 {
		f.mu.Unlock()
		return news.ErrEmptyFeed
	}
	f.loading = true
	f.mu.Unlock()

	var (
		items   []news.Item
		seen    = make(map[int64]struct{})
		cursor  news.Cursor
		hasMore = true
		counts  []int
	)
	for i := 0; i < f.opts.PrefetchPages && hasMore; i++ {
		page, err := f.source.FetchPage(ctx, cursor)
		if err != nil {
			log.Printf("feed: refresh: %v", err)
			f.mu.Lock()
			f.loading = false
			f.mu.Unlock()
			f.emitFailed(OpRefresh, err)
			return fmt.Errorf("refreshing feed: %w", err)
		}
		n := 0
		for _, it := range page.Items {
			if _, dup := seen[it.ID]; dup {
				continue
			}
			seen[it.ID] = struct{}{}
			items = append(items, it)
			n++
		}
		counts = append(counts, n)
		cursor = page.Next
		hasMore = f.pageHasMore(page)
	}

	f.mu.Lock()
	f.items = items
	f.seen = seen
	f.cursor = cursor
	f.hasMore = hasMore
	f.epoch++
	f.loading = false
	f.mu.Unlock()

	for _, n := range counts {
		f.emitPageLoaded(n)
	}
	f.emitSettled(ctx)
	return nil
}

func (f *Feed) pageHasMore(p news.Page) bool {
	if p.IsLast || len(p.Items) == 0 {
		return false
	}
	if f.opts.PageSize > 0 && len(p.Items) < f.opts.PageSize {
		return false
	}
	return true
}

func (f *Feed) appendLocked(items []news.Item) int {
	n := 0
	for _, it := range items {
		if _, dup := f.seen[it.ID]; dup {
			continue
		}
		f.seen[it.ID] = struct{}{}
		f.items = append(f.items, it)
		n++
	}
	return n
}

func (f *Feed) emitPageLoaded(n int) {
	f.mu.Lock()
	fns := append([]func(int){}, f.pageLoaded...)
	f.mu.Unlock()
	for _, fn := range fns {
		fn(n)
	}
}

func (f *Feed) emitSettled(ctx context.Context) {
	f.mu.Lock()
	s := Settle{Epoch: f.epoch, Total: len(f.items), HasMore: f.hasMore}
	fns := append([]func(context.Context, Settle){}, f.settled...)
	f.mu.Unlock()
	for _, fn := range fns {
		fn(ctx, s)
	}
}

func (f *Feed) emitFailed(op Op, err error) {
	f.mu.Lock()
	fns := append([]func(Op, error){}, f.failed...)
	f.mu.Unlock()
	for _, fn := range fns {
		fn(op, err)
	}
}

// Items returns a copy of the loaded items in fetch order.
func (f *Feed) Items() []news.Item {
	return f.ItemsFrom(0)
}

// ItemsFrom returns a copy of the items starting at index i.
func (f *Feed) ItemsFrom(i int) []news.Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i < 0 {
		i = 0
	}
	if i >= len(f.items) {
		return nil
	}
	out := make([]news.Item, len(f.items)-i)
	copy(out, f.items[i:])
	return out
}

func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

func (f *Feed) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

func (f *Feed) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasMore
}

func (f *Feed) Epoch() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.epoch
}
