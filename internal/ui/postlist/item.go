package postlist

import (
	"net/url"
	"strings"

	"github.com/fragmede/wpnews/internal/news"
	"github.com/fragmede/wpnews/internal/render"
)

// PostItem wraps a feed item for the bubbles list.
type PostItem struct {
	news.Item
	Index int
}

func (p PostItem) Title() string {
	if p.Item.Title != "" {
		return p.Item.Title
	}
	return "(untitled)"
}

func (p PostItem) Description() string {
	parts := make([]string, 0, 3)
	if p.Item.Author != "" {
		parts = append(parts, "by "+p.Item.Author)
	}
	if ago := render.TimeAgo(p.Item.PublishedAt); ago != "" {
		parts = append(parts, ago)
	}
	desc := strings.Join(parts, " | ")

	if p.Item.Link != "" {
		if u, err := url.Parse(p.Item.Link); err == nil && u.Host != "" {
			desc += "  (" + u.Host + ")"
		}
	}
	return desc
}

func (p PostItem) FilterValue() string {
	return p.Item.Title + " " + p.Item.Author
}
