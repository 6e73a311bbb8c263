package news

import (
	"context"
	"time"
)

// Item is one entry of the remote collection.
type Item struct {
	ID          int64
	Title       string
	Link        string
	Body        string
	Excerpt     string
	Author      string
	PublishedAt time.Time
}

// Cursor is an opaque position in the remote collection. The zero value
// addresses the first page.
type Cursor string

// Page is one fetched slice of the collection.
type Page struct {
	Items  []Item
	Next   Cursor
	IsLast bool
}

// Comment belongs to an Item. ParentID is 0 for top-level comments.
type Comment struct {
	ID       int64
	ItemID   int64
	ParentID int64
	Author   string
	Body     string
	PostedAt time.Time
}

// LayoutMode tells the controller how much screen it has.
type LayoutMode int

const (
	Compact LayoutMode = iota
	Wide
)

func (m LayoutMode) String() string {
	if m == Wide {
		return "wide"
	}
	return "compact"
}

// ViewID names a destination for Navigator.
type ViewID string

const ViewPostDetail ViewID = "post-detail"

// PageSource fetches pages of the collection.
type PageSource interface {
	FetchPage(ctx context.Context, cursor Cursor) (Page, error)
}

// CommentSource reads and writes comments for a single item.
type CommentSource interface {
	FetchComments(ctx context.Context, itemID int64) ([]Comment, error)
	PostComment(ctx context.Context, itemID int64, body string, replyToID int64) (Comment, error)
	IsAuthenticated(ctx context.Context) bool
}

// ContentSource is everything the controller needs from the backend.
type ContentSource interface {
	PageSource
	CommentSource
}

// Navigator pushes a separate view, used in Compact layout.
type Navigator interface {
	NavigateTo(view ViewID, payload any)
}

// NotificationSink shows a transient user-facing message.
type NotificationSink interface {
	Notify(message string)
}

// NotifyFunc adapts a function to NotificationSink.
type NotifyFunc func(message string)

func (f NotifyFunc) Notify(message string) { f(message) }

// NavigateFunc adapts a function to Navigator.
type NavigateFunc func(view ViewID, payload any)

func (f NavigateFunc) NavigateTo(view ViewID, payload any) { f(view, payload) }

// User-facing notification texts.
const (
	MsgLoadFailed         = "Loading posts failed"
	MsgRefreshFailed      = "Refresh failed"
	MsgCommentsLoadFailed = "Loading comments failed"
	MsgCommentPosted      = "Comment posted"
	MsgCommentFailed      = "Something went wrong posting your comment"
	MsgLoginRequired      = "You have to log in first"
)
