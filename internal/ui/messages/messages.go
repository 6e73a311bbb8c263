package messages

import (
	"github.com/fragmede/wpnews/internal/news"
	"github.com/fragmede/wpnews/internal/thread"
)

// View transition messages.
type (
	OpenPostMsg   struct{ Item news.Item }
	SelectPostMsg struct{ Item news.Item }
	OpenURLMsg    struct{ URL string }
)

// OpenReplyMsg opens the composer for a comment on the session's post,
// replying to Target when it is set.
type OpenReplyMsg struct {
	Session *thread.Session
	Target  *news.Comment
}

// Feed requests.
type (
	LoadMoreMsg       struct{}
	RefreshMsg        struct{}
	ReloadCommentsMsg struct{ Session *thread.Session }
)

// Data messages.
type (
	// StateChangedMsg asks views to re-read controller state.
	StateChangedMsg struct{}

	ThreadLoadedMsg struct {
		ItemID int64
		Err    error
	}

	CommentPostedMsg struct {
		ItemID int64
		Err    error
	}

	StatusMsg struct {
		Text    string
		IsError bool
	}
)
