package thread

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fragmede/wpnews/internal/news"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func at(min int) time.Time { return t0.Add(time.Duration(min) * time.Minute) }

type post struct {
	itemID  int64
	body    string
	replyTo int64
}

type stubComments struct {
	mu       sync.Mutex
	byItem   map[int64][]news.Comment
	fetchErr error
	postErr  error
	authed   bool
	fetches  int
	posts    []post
	hold     map[int64]chan struct{}
}

func (s *stubComments) FetchComments(_ context.Context, itemID int64) ([]news.Comment, error) {
	s.mu.Lock()
	s.fetches++
	hold := s.hold[itemID]
	s.mu.Unlock()
	if hold != nil {
		<-hold
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return append([]news.Comment(nil), s.byItem[itemID]...), nil
}

func (s *stubComments) PostComment(_ context.Context, itemID int64, body string, replyTo int64) (news.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append(s.posts, post{itemID, body, replyTo})
	if s.postErr != nil {
		return news.Comment{}, s.postErr
	}
	c := news.Comment{ID: 1000 + int64(len(s.posts)), ItemID: itemID, ParentID: replyTo, Body: body, PostedAt: at(99)}
	s.byItem[itemID] = append(s.byItem[itemID], c)
	return c, nil
}

func (s *stubComments) IsAuthenticated(context.Context) bool { return s.authed }

type recordSink struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recordSink) Notify(m string) {
	r.mu.Lock()
	r.msgs = append(r.msgs, m)
	r.mu.Unlock()
}

func (r *recordSink) count(m string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, got := range r.msgs {
		if got == m {
			n++
		}
	}
	return n
}

func sampleComments() []news.Comment {
	return []news.Comment{
		{ID: 1, ParentID: 0, PostedAt: at(0)},
		{ID: 2, ParentID: 1, PostedAt: at(5)},
		{ID: 3, ParentID: 0, PostedAt: at(1)},
		{ID: 4, ParentID: 1, PostedAt: at(2)},
	}
}

func TestBuildOrdersForest(t *testing.T) {
	f := Build(sampleComments())
	if len(f) != 2 || f[0].Comment.ID != 1 || f[1].Comment.ID != 3 {
		t.Fatalf("roots = %+v", f)
	}
	kids := f[0].Children
	if len(kids) != 2 || kids[0].Comment.ID != 4 || kids[1].Comment.ID != 2 {
		t.Fatalf("children of 1 = %+v", kids)
	}
	if len(f[1].Children) != 0 {
		t.Fatal("3 should have no children")
	}
	if f.Len() != 4 {
		t.Fatalf("len = %d", f.Len())
	}
}

func TestBuildBreaksTiesByID(t *testing.T) {
	f := Build([]news.Comment{
		{ID: 9, PostedAt: at(0)},
		{ID: 7, PostedAt: at(0)},
	})
	if f[0].Comment.ID != 7 || f[1].Comment.ID != 9 {
		t.Fatalf("order = %d, %d", f[0].Comment.ID, f[1].Comment.ID)
	}
}

func TestBuildPromotesOrphans(t *testing.T) {
	f := Build([]news.Comment{{ID: 5, ParentID: 42, PostedAt: at(0)}})
	if len(f) != 1 || f[0].Comment.ID != 5 {
		t.Fatalf("orphan not kept: %+v", f)
	}
}

func TestBuildBreaksParentLoops(t *testing.T) {
	f := Build([]news.Comment{
		{ID: 5, ParentID: 3, PostedAt: at(0)},
		{ID: 3, ParentID: 5, PostedAt: at(1)},
		{ID: 8, ParentID: 5, PostedAt: at(2)},
	})
	if f.Len() != 3 {
		t.Fatalf("comments lost, len %d", f.Len())
	}
	if len(f) != 1 || f[0].Comment.ID != 3 {
		t.Fatalf("roots = %+v", f)
	}
	if kids := f[0].Children; len(kids) != 1 || kids[0].Comment.ID != 5 || len(kids[0].Children) != 1 {
		t.Fatalf("children of 3 = %+v", kids)
	}
}

func TestFlattenDepthAndCollapse(t *testing.T) {
	f := Build(sampleComments())
	flat := f.Flatten(nil)
	wantIDs := []int64{1, 4, 2, 3}
	wantDepth := []int{0, 1, 1, 0}
	for i, fc := range flat {
		if fc.Comment.ID != wantIDs[i] || fc.Depth != wantDepth[i] {
			t.Fatalf("flat[%d] = id %d depth %d", i, fc.Comment.ID, fc.Depth)
		}
	}
	if flat[0].ChildCount != 2 {
		t.Fatalf("child count = %d", flat[0].ChildCount)
	}
	if FindParentIndex(flat, 2) != 0 {
		t.Fatal("parent of comment 2 should be at index 0")
	}
	if FindNextSiblingIndex(flat, 0) != 3 {
		t.Fatal("next sibling of comment 1 should be at index 3")
	}

	collapsed := f.Flatten(CollapseState{1: true})
	if len(collapsed) != 2 || !collapsed[0].IsCollapsed || collapsed[0].ChildCount != 2 {
		t.Fatalf("collapsed = %+v", collapsed)
	}
}

func TestLoadBuildsForestAndResetsReplyTarget(t *testing.T) {
	src := &stubComments{byItem: map[int64][]news.Comment{7: sampleComments()}}
	s := NewSession(src, &recordSink{})
	s.SetReplyTarget(&news.Comment{ID: 99})

	if err := s.Load(context.Background(), 7); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := s.ReplyTarget(); ok {
		t.Fatal("reply target should be reset by load")
	}
	if s.Forest().Len() != 4 || s.Loading() {
		t.Fatalf("forest len %d loading %v", s.Forest().Len(), s.Loading())
	}
}

func TestLoadFailureLeavesEmptyView(t *testing.T) {
	src := &stubComments{byItem: map[int64][]news.Comment{}, fetchErr: errors.New("down")}
	sink := &recordSink{}
	s := NewSession(src, sink)

	if err := s.Load(context.Background(), 7); err == nil {
		t.Fatal("expected error")
	}
	if s.Loading() || s.Forest() != nil {
		t.Fatal("view should be empty and idle")
	}
	if sink.count(news.MsgCommentsLoadFailed) != 1 {
		t.Fatalf("msgs = %v", sink.msgs)
	}
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	hold := make(chan struct{})
	src := &stubComments{
		byItem: map[int64][]news.Comment{
			1: {{ID: 10, PostedAt: at(0)}},
			2: {{ID: 20, PostedAt: at(0)}, {ID: 21, PostedAt: at(1)}},
		},
		hold: map[int64]chan struct{}{1: hold},
	}
	s := NewSession(src, &recordSink{})

	first := make(chan error, 1)
	go func() { first <- s.Load(context.Background(), 1) }()
	for {
		src.mu.Lock()
		n := src.fetches
		src.mu.Unlock()
		if n == 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	if err := s.Load(context.Background(), 2); err != nil {
		t.Fatalf("second load: %v", err)
	}
	close(hold)
	if err := <-first; !errors.Is(err, news.ErrStale) {
		t.Fatalf("first load err = %v", err)
	}
	if s.ItemID() != 2 || s.Forest().Len() != 2 {
		t.Fatalf("item %d forest %d", s.ItemID(), s.Forest().Len())
	}
}

func TestClearMakesInflightLoadStale(t *testing.T) {
	hold := make(chan struct{})
	src := &stubComments{
		byItem: map[int64][]news.Comment{1: {{ID: 10, PostedAt: at(0)}}},
		hold:   map[int64]chan struct{}{1: hold},
	}
	s := NewSession(src, &recordSink{})
	done := make(chan error, 1)
	go func() { done <- s.Load(context.Background(), 1) }()
	for s.ItemID() != 1 {
		time.Sleep(time.Millisecond)
	}
	s.Clear()
	close(hold)
	if err := <-done; !errors.Is(err, news.ErrStale) {
		t.Fatalf("err = %v", err)
	}
	if s.Forest() != nil || s.Loading() {
		t.Fatal("cleared session should stay empty")
	}
}

func TestPostRequiresLogin(t *testing.T) {
	src := &stubComments{byItem: map[int64][]news.Comment{}}
	sink := &recordSink{}
	s := NewSession(src, sink)

	err := s.PostComment(context.Background(), "hi")
	if !errors.Is(err, news.ErrNotAuthenticated) {
		t.Fatalf("err = %v", err)
	}
	if len(src.posts) != 0 {
		t.Fatal("no request should be made when logged out")
	}
	if sink.count(news.MsgLoginRequired) != 1 {
		t.Fatalf("msgs = %v", sink.msgs)
	}
}

func TestPostSuccessReloadsAndClearsDraft(t *testing.T) {
	src := &stubComments{authed: true, byItem: map[int64][]news.Comment{7: sampleComments()}}
	sink := &recordSink{}
	s := NewSession(src, sink)
	_ = s.Load(context.Background(), 7)

	target, _ := s.Forest().Find(2)
	s.SetReplyTarget(&target)
	s.SetDraft("nice")

	if err := s.PostComment(context.Background(), "nice"); err != nil {
		t.Fatalf("post: %v", err)
	}
	if src.posts[0].replyTo != 2 || src.posts[0].itemID != 7 {
		t.Fatalf("post = %+v", src.posts[0])
	}
	if s.Draft() != "" {
		t.Fatal("draft should be cleared")
	}
	if _, ok := s.ReplyTarget(); ok {
		t.Fatal("reply target should be cleared")
	}
	if s.Forest().Len() != 5 {
		t.Fatalf("forest should include the new comment, len %d", s.Forest().Len())
	}
	if sink.count(news.MsgCommentPosted) != 1 {
		t.Fatalf("msgs = %v", sink.msgs)
	}
}

func TestPostFailureKeepsState(t *testing.T) {
	src := &stubComments{authed: true, postErr: errors.New("500"), byItem: map[int64][]news.Comment{7: sampleComments()}}
	sink := &recordSink{}
	s := NewSession(src, sink)
	_ = s.Load(context.Background(), 7)
	target, _ := s.Forest().Find(1)
	s.SetReplyTarget(&target)
	s.SetDraft("draft")

	if err := s.PostComment(context.Background(), "draft"); err == nil {
		t.Fatal("expected error")
	}
	if s.Draft() != "draft" {
		t.Fatal("draft should be kept")
	}
	if rt, ok := s.ReplyTarget(); !ok || rt.ID != 1 {
		t.Fatal("reply target should be kept")
	}
	if src.fetches != 1 {
		t.Fatalf("no reload expected, fetches=%d", src.fetches)
	}
	if sink.count(news.MsgCommentFailed) != 1 {
		t.Fatalf("msgs = %v", sink.msgs)
	}
}

func TestEmptyPostIsPassedThrough(t *testing.T) {
	src := &stubComments{authed: true, byItem: map[int64][]news.Comment{7: nil}}
	s := NewSession(src, &recordSink{})
	_ = s.Load(context.Background(), 7)
	if err := s.PostComment(context.Background(), ""); err != nil {
		t.Fatalf("post: %v", err)
	}
	if len(src.posts) != 1 || src.posts[0].body != "" {
		t.Fatalf("posts = %+v", src.posts)
	}
}
