package api

import (
	"strings"
	"time"

	"github.com/fragmede/wpnews/internal/news"
	"github.com/fragmede/wpnews/internal/render"
)

// wpDateLayout is the format of the *_gmt date fields.
const wpDateLayout = "2006-01-02T15:04:05"

type rendered struct {
	Rendered string `json:"rendered"`
}

// Post is a WordPress post as returned by /wp/v2/posts.
type Post struct {
	ID       int64    `json:"id"`
	DateGMT  string   `json:"date_gmt"`
	Link     string   `json:"link"`
	Title    rendered `json:"title"`
	Content  rendered `json:"content"`
	Excerpt  rendered `json:"excerpt"`
	Author   int64    `json:"author"`
	Embedded struct {
		Author []struct {
			Name string `json:"name"`
		} `json:"author"`
	} `json:"_embedded"`
}

// Comment is a WordPress comment as returned by /wp/v2/comments.
type Comment struct {
	ID         int64    `json:"id"`
	Post       int64    `json:"post"`
	Parent     int64    `json:"parent"`
	AuthorName string   `json:"author_name"`
	DateGMT    string   `json:"date_gmt"`
	Content    rendered `json:"content"`
}

type newComment struct {
	Post    int64  `json:"post"`
	Content string `json:"content"`
	Parent  int64  `json:"parent,omitempty"`
}

// User is the subset of /wp/v2/users/me we use.
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func parseDate(s string) time.Time {
	t, err := time.ParseInLocation(wpDateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ToItem converts p to the feed's item type. The body stays HTML.
func (p Post) ToItem() news.Item {
	it := news.Item{
		ID:          p.ID,
		Title:       render.Title(p.Title.Rendered),
		Link:        p.Link,
		Body:        p.Content.Rendered,
		Excerpt:     strings.TrimSpace(render.HTMLToText(p.Excerpt.Rendered, 0)),
		PublishedAt: parseDate(p.DateGMT),
	}
	if len(p.Embedded.Author) > 0 {
		it.Author = p.Embedded.Author[0].Name
	}
	return it
}

// ToComment converts c to the thread's comment type. The body stays HTML.
func (c Comment) ToComment() news.Comment {
	return news.Comment{
		ID:       c.ID,
		ItemID:   c.Post,
		ParentID: c.Parent,
		Author:   c.AuthorName,
		Body:     c.Content.Rendered,
		PostedAt: parseDate(c.DateGMT),
	}
}
