package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/fragmede/wpnews/internal/news"
	"golang.org/x/sync/errgroup"
)

// FetchComments fetches every approved comment of a post. The first page
// reports how many pages exist; the rest are fetched concurrently.
func (c *Client) FetchComments(ctx context.Context, itemID int64) ([]news.Comment, error) {
	first, total, err := c.commentPage(ctx, itemID, 1)
	if err != nil {
		return nil, err
	}

	pages := make([][]Comment, max(total, 1))
	pages[0] = first
	if total > 1 {
		var mu sync.Mutex
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(c.maxConcurrent)
		for p := 2; p <= total; p++ {
			p := p
			g.Go(func() error {
				list, _, err := c.commentPage(gctx, itemID, p)
				if err != nil {
					return err
				}
				mu.Lock()
				pages[p-1] = list
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	var out []news.Comment
	for _, list := range pages {
		for _, cm := range list {
			out = append(out, cm.ToComment())
		}
	}
	return out, nil
}

func (c *Client) commentPage(ctx context.Context, itemID int64, page int) ([]Comment, int, error) {
	q := url.Values{
		"post":     {strconv.FormatInt(itemID, 10)},
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(commentsPerPage)},
		"orderby":  {"date_gmt"},
		"order":    {"asc"},
	}
	var list []Comment
	hdr, err := c.get(ctx, "/comments", q, &list)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching comments of %d page %d: %w", itemID, page, err)
	}
	return list, totalPages(hdr), nil
}

// ErrNoComment is returned when the site accepts a comment but does not
// return it.
var ErrNoComment = errors.New("site returned no created comment")

// PostComment creates a comment on itemID, as a reply to replyToID when it
// is non-zero.
func (c *Client) PostComment(ctx context.Context, itemID int64, body string, replyToID int64) (news.Comment, error) {
	if !c.IsAuthenticated(ctx) {
		return news.Comment{}, news.ErrNotAuthenticated
	}
	var created Comment
	err := c.post(ctx, "/comments", newComment{Post: itemID, Content: body, Parent: replyToID}, &created)
	if err != nil {
		return news.Comment{}, fmt.Errorf("posting comment on %d: %w", itemID, err)
	}
	if created.ID == 0 {
		return news.Comment{}, fmt.Errorf("posting comment on %d: %w", itemID, ErrNoComment)
	}
	return created.ToComment(), nil
}
