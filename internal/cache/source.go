package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/fragmede/wpnews/internal/news"
)

// Source serves comment lists from the cache while they are fresh and
// writes fetched posts through to it. Fetch errors are never hidden behind
// stale data.
type Source struct {
	next news.ContentSource
	db   *DB
	ttl  time.Duration
}

// NewSource wraps next. A ttl of 0 disables comment caching.
func NewSource(next news.ContentSource, db *DB, ttl time.Duration) *Source {
	return &Source{next: next, db: db, ttl: ttl}
}

func (s *Source) FetchPage(ctx context.Context, cursor news.Cursor) (news.Page, error) {
	page, err := s.next.FetchPage(ctx, cursor)
	if err != nil {
		return page, err
	}
	if err := s.db.PutItems(page.Items); err != nil {
		log.Printf("cache: storing page %q: %v", cursor, err)
	}
	return page, nil
}

func (s *Source) FetchComments(ctx context.Context, itemID int64) ([]news.Comment, error) {
	if s.ttl > 0 {
		cached, ok, err := s.db.GetComments(itemID, s.ttl)
		if err != nil {
			log.Printf("cache: reading comments of %d: %v", itemID, err)
		} else if ok {
			return cached, nil
		}
	}

	comments, err := s.next.FetchComments(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if s.ttl > 0 {
		if err := s.db.PutComments(itemID, comments); err != nil {
			log.Printf("cache: storing comments of %d: %v", itemID, err)
		}
	}
	return comments, nil
}

func (s *Source) PostComment(ctx context.Context, itemID int64, body string, replyToID int64) (news.Comment, error) {
	c, err := s.next.PostComment(ctx, itemID, body, replyToID)
	if err != nil {
		return c, err
	}
	if err := s.db.InvalidateComments(itemID); err != nil {
		log.Printf("cache: invalidating comments of %d: %v", itemID, err)
	}
	return c, nil
}

func (s *Source) IsAuthenticated(ctx context.Context) bool {
	return s.next.IsAuthenticated(ctx)
}

// Item returns a previously fetched post.
func (s *Source) Item(id int64) (news.Item, bool) {
	it, _, err := s.db.GetItem(id, 0)
	if err != nil || it == nil {
		return news.Item{}, false
	}
	return *it, true
}

type postGetter interface {
	GetPost(ctx context.Context, id int64) (news.Item, error)
}

// Post returns post id from the cache, asking the wrapped source for it
// when it has not been seen yet.
func (s *Source) Post(ctx context.Context, id int64) (news.Item, error) {
	if it, ok := s.Item(id); ok {
		return it, nil
	}
	pg, ok := s.next.(postGetter)
	if !ok {
		return news.Item{}, fmt.Errorf("post %d is not cached", id)
	}
	it, err := pg.GetPost(ctx, id)
	if err != nil {
		return news.Item{}, err
	}
	if err := s.db.PutItems([]news.Item{it}); err != nil {
		log.Printf("cache: storing post %d: %v", id, err)
	}
	return it, nil
}
