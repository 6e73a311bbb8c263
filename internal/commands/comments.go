package commands

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fragmede/wpnews/internal/news"
	"github.com/fragmede/wpnews/internal/render"
	"github.com/fragmede/wpnews/internal/thread"
)

const commentWidth = 80

// printSink is a news.NotificationSink writing to w.
type printSink struct {
	w io.Writer
}

func (s printSink) Notify(message string) {
	_, _ = color.New(color.FgYellow).Fprintln(s.w, message)
}

func parsePostID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid post ID %q", arg)
	}
	return id, nil
}

func addComments(topLevel *cobra.Command, ro *rootOptions) {
	cmd := &cobra.Command{
		Use:   "comments POST_ID",
		Short: "Print the comment thread of a post.",
		Example: `
wpnews comments 1234
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePostID(args[0])
			if err != nil {
				return err
			}
			cfg, err := ro.Config()
			if err != nil {
				return err
			}
			b, err := openBackend(ctxOf(cmd), cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			if post, err := b.source.Post(ctxOf(cmd), id); err != nil {
				log.Printf("looking up post %d: %v", id, err)
			} else {
				printPostHeader(cmd.OutOrStdout(), post)
			}

			sess := thread.NewSession(b.source, printSink{w: cmd.ErrOrStderr()})
			if err := sess.Load(ctxOf(cmd), id); err != nil {
				return err
			}
			printThread(cmd.OutOrStdout(), sess.Forest())
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func addReply(topLevel *cobra.Command, ro *rootOptions) {
	var parent int64
	cmd := &cobra.Command{
		Use:   "reply POST_ID MESSAGE...",
		Short: "Post a comment, optionally as a reply to another comment.",
		Example: `
wpnews reply 1234 "Great write-up"
wpnews reply 1234 --parent 88 "I disagree"
`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePostID(args[0])
			if err != nil {
				return err
			}
			text := strings.TrimSpace(strings.Join(args[1:], " "))
			if text == "" {
				return fmt.Errorf("comment cannot be empty")
			}
			cfg, err := ro.Config()
			if err != nil {
				return err
			}
			b, err := openBackend(ctxOf(cmd), cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			sess := thread.NewSession(b.source, printSink{w: cmd.ErrOrStderr()})
			return reply(ctxOf(cmd), sess, id, parent, text)
		},
	}
	cmd.Flags().Int64Var(&parent, "parent", 0, "ID of the comment to reply to.")
	topLevel.AddCommand(cmd)
}

func reply(ctx context.Context, sess *thread.Session, postID, parent int64, text string) error {
	if err := sess.Load(ctx, postID); err != nil {
		return err
	}
	if parent != 0 {
		target, ok := sess.Forest().Find(parent)
		if !ok {
			return fmt.Errorf("comment %d not found on post %d", parent, postID)
		}
		sess.SetReplyTarget(&target)
	}
	sess.SetDraft(text)
	return sess.PostComment(ctx, text)
}

func printPostHeader(out io.Writer, post news.Item) {
	_, _ = color.New(color.Bold).Fprintln(out, post.Title)
	meta := render.TimeAgo(post.PublishedAt)
	if post.Author != "" {
		meta = "by " + post.Author + " | " + meta
	}
	if post.Link != "" {
		meta += " | " + post.Link
	}
	_, _ = color.New(color.Faint).Fprintln(out, meta)
	_, _ = fmt.Fprintln(out)
}

func printThread(out io.Writer, forest thread.Forest) {
	flat := forest.Flatten(nil)
	if len(flat) == 0 {
		_, _ = fmt.Fprintln(out, "No comments yet.")
		return
	}
	author := color.New(color.Bold, color.FgCyan)
	faint := color.New(color.Faint)
	for _, fc := range flat {
		printComment(out, fc, author, faint)
	}
}

func printComment(out io.Writer, fc thread.FlatComment, author, faint *color.Color) {
	indent := strings.Repeat("  ", fc.Depth)
	name := fc.Comment.Author
	if name == "" {
		name = "anonymous"
	}
	_, _ = fmt.Fprintf(out, "%s%s %s\n", indent, author.Sprint(name),
		faint.Sprintf("%s #%d", render.TimeAgo(fc.Comment.PostedAt), fc.Comment.ID))
	body := render.HTMLToText(fc.Comment.Body, max(commentWidth-len(indent), 20))
	for _, line := range strings.Split(body, "\n") {
		_, _ = fmt.Fprintf(out, "%s%s\n", indent, line)
	}
	_, _ = fmt.Fprintln(out)
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
