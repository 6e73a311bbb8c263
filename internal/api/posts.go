package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fragmede/wpnews/internal/news"
)

// FetchPage fetches one page of posts, newest first. The cursor is the
// 1-based page number; the empty cursor is page 1.
func (c *Client) FetchPage(ctx context.Context, cursor news.Cursor) (news.Page, error) {
	page := 1
	if cursor != "" {
		n, err := strconv.Atoi(string(cursor))
		if err != nil || n < 1 {
			return news.Page{}, fmt.Errorf("invalid cursor %q", cursor)
		}
		page = n
	}

	q := url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(c.pageSize)},
		"_embed":   {"author"},
	}
	var posts []Post
	hdr, err := c.get(ctx, "/posts", q, &posts)
	if err != nil {
		var apiErr *Error
		// Asking past the end is how a shrinking collection shows up.
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest && apiErr.Code == "rest_post_invalid_page_number" {
			return news.Page{IsLast: true}, nil
		}
		return news.Page{}, fmt.Errorf("fetching posts page %d: %w", page, err)
	}

	items := make([]news.Item, 0, len(posts))
	for _, p := range posts {
		items = append(items, p.ToItem())
	}

	isLast := len(posts) == 0
	if total := totalPages(hdr); total > 0 && page >= total {
		isLast = true
	}
	return news.Page{
		Items:  items,
		Next:   news.Cursor(strconv.Itoa(page + 1)),
		IsLast: isLast,
	}, nil
}

// GetPost fetches a single post by ID.
func (c *Client) GetPost(ctx context.Context, id int64) (news.Item, error) {
	var p Post
	if _, err := c.get(ctx, fmt.Sprintf("/posts/%d", id), url.Values{"_embed": {"author"}}, &p); err != nil {
		return news.Item{}, fmt.Errorf("fetching post %d: %w", id, err)
	}
	return p.ToItem(), nil
}
