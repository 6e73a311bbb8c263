// Package actions turns controller and thread operations into tea.Cmds.
package actions

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fragmede/wpnews/internal/news"
	"github.com/fragmede/wpnews/internal/thread"
	"github.com/fragmede/wpnews/internal/ui/messages"
)

const (
	feedTimeout   = 20 * time.Second
	threadTimeout = 30 * time.Second
)

// Controller is the part of controller.Controller the UI drives.
type Controller interface {
	LoadMore(ctx context.Context) error
	Refresh(ctx context.Context) error
	SelectItem(ctx context.Context, item news.Item)
	RefreshComments(ctx context.Context) error
}

// LoadMoreCmd fetches the next page. Failures are reported by the
// controller through its notification sink.
func LoadMoreCmd(c Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), feedTimeout)
		defer cancel()
		_ = c.LoadMore(ctx)
		return messages.StateChangedMsg{}
	}
}

func RefreshCmd(c Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), feedTimeout)
		defer cancel()
		_ = c.Refresh(ctx)
		return messages.StateChangedMsg{}
	}
}

func SelectCmd(c Controller, item news.Item) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), threadTimeout)
		defer cancel()
		c.SelectItem(ctx, item)
		return messages.StateChangedMsg{}
	}
}

func RefreshCommentsCmd(c Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), threadTimeout)
		defer cancel()
		_ = c.RefreshComments(ctx)
		return messages.StateChangedMsg{}
	}
}

// LoadThreadCmd loads itemID into a view-owned session.
func LoadThreadCmd(s *thread.Session, itemID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), threadTimeout)
		defer cancel()
		err := s.Load(ctx, itemID)
		return messages.ThreadLoadedMsg{ItemID: itemID, Err: err}
	}
}

// PostCommentCmd posts text through s. The session reports the outcome to
// the user itself.
func PostCommentCmd(s *thread.Session, text string) tea.Cmd {
	itemID := s.ItemID()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), threadTimeout)
		defer cancel()
		err := s.PostComment(ctx, text)
		return messages.CommentPostedMsg{ItemID: itemID, Err: err}
	}
}

// OpenURLCmd opens url with openFn after validating it.
func OpenURLCmd(url string, openFn func(string) error) tea.Cmd {
	return func() tea.Msg {
		valid, err := ValidateURL(url)
		if err != nil {
			return messages.StatusMsg{Text: err.Error(), IsError: true}
		}
		if err := openFn(valid); err != nil {
			return messages.StatusMsg{Text: "Could not open browser", IsError: true}
		}
		return messages.StatusMsg{Text: "Opened " + valid}
	}
}
