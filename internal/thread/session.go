// Package thread manages the comment thread of a single post.
package thread

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/fragmede/wpnews/internal/news"
)

// Session holds the loaded comment forest of one item together with the
// reply target and draft of the comment being written.
type Session struct {
	source news.CommentSource
	sink   news.NotificationSink

	mu          sync.Mutex
	itemID      int64
	forest      Forest
	replyTarget *news.Comment
	draft       string
	loading     bool
	gen         uint64
}

func NewSession(source news.CommentSource, sink news.NotificationSink) *Session {
	return &Session{source: source, sink: sink}
}

// Load fetches the comments of itemID and replaces the forest. A response
// that arrives after a newer Load or Clear is dropped with news.ErrStale.
func (s *Session) Load(ctx context.Context, itemID int64) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.itemID = itemID
	s.replyTarget = nil
	s.forest = nil
	s.loading = true
	s.mu.Unlock()

	comments, err := s.source.FetchComments(ctx, itemID)

	s.mu.Lock()
	if s.gen != gen || s.itemID != itemID {
		s.mu.Unlock()
		return news.ErrStale
	}
	s.loading = false
	if err != nil {
		s.mu.Unlock()
		log.Printf("thread: loading comments for %d: %v", itemID, err)
		s.sink.Notify(news.MsgCommentsLoadFailed)
		return fmt.Errorf("loading comments for %d: %w", itemID, err)
	}
	s.forest = Build(comments)
	s.mu.Unlock()
	return nil
}

// Reload loads the current item again.
func (s *Session) Reload(ctx context.Context) error {
	s.mu.Lock()
	id := s.itemID
	s.mu.Unlock()
	if id == 0 {
		return nil
	}
	return s.Load(ctx, id)
}

// PostComment submits text as a comment on the current item, replying to
// the reply target if one is set.
func (s *Session) PostComment(ctx context.Context, text string) error {
	if !s.source.IsAuthenticated(ctx) {
		s.sink.Notify(news.MsgLoginRequired)
		return news.ErrNotAuthenticated
	}

	s.mu.Lock()
	itemID, gen := s.itemID, s.gen
	var replyTo int64
	if s.replyTarget != nil {
		replyTo = s.replyTarget.ID
	}
	s.mu.Unlock()

	if _, err := s.source.PostComment(ctx, itemID, text, replyTo); err != nil {
		log.Printf("thread: posting comment on %d: %v", itemID, err)
		s.sink.Notify(news.MsgCommentFailed)
		return fmt.Errorf("posting comment on %d: %w", itemID, err)
	}

	s.mu.Lock()
	current := s.gen == gen
	if current {
		s.draft = ""
		s.replyTarget = nil
	}
	s.mu.Unlock()

	s.sink.Notify(news.MsgCommentPosted)
	if !current {
		return nil
	}
	if err := s.Load(ctx, itemID); err != nil && !errors.Is(err, news.ErrStale) {
		return err
	}
	return nil
}

// Clear drops everything the session holds. Loads still in flight become
// stale.
func (s *Session) Clear() {
	s.mu.Lock()
	s.gen++
	s.itemID = 0
	s.forest = nil
	s.replyTarget = nil
	s.draft = ""
	s.loading = false
	s.mu.Unlock()
}

// SetReplyTarget selects the comment the next post replies to. nil resets
// to a top-level comment.
func (s *Session) SetReplyTarget(c *news.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c == nil {
		s.replyTarget = nil
		return
	}
	cp := *c
	s.replyTarget = &cp
}

func (s *Session) ReplyTarget() (news.Comment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.replyTarget == nil {
		return news.Comment{}, false
	}
	return *s.replyTarget, true
}

func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	s.draft = text
	s.mu.Unlock()
}

func (s *Session) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

func (s *Session) ItemID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.itemID
}

func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Forest returns the loaded forest. Callers must not modify it.
func (s *Session) Forest() Forest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forest
}
