package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/fragmede/wpnews/internal/feed"
	"github.com/fragmede/wpnews/internal/news"
	"github.com/fragmede/wpnews/internal/render"
)

func addList(topLevel *cobra.Command, ro *rootOptions) {
	pages := 1
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the newest posts.",
		Example: `
wpnews list
wpnews list --pages 3
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ro.Config()
			if err != nil {
				return err
			}
			b, err := openBackend(ctxOf(cmd), cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			f := feed.New(b.source, feed.Options{PageSize: cfg.PageSize, PrefetchPages: pages})
			return listPosts(ctxOf(cmd), f, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVarP(&pages, "pages", "p", 1, "Number of pages to fetch.")
	topLevel.AddCommand(cmd)
}

func listPosts(ctx context.Context, f *feed.Feed, out io.Writer) error {
	if err := f.LoadMore(ctx); err != nil && !news.IsSkip(err) {
		return err
	}

	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 70
	tbl.AddRow(bold.Sprint("ID"), bold.Sprint("Published"), bold.Sprint("Author"), bold.Sprint("Title"))
	for _, it := range f.Items() {
		tbl.AddRow(it.ID, render.TimeAgo(it.PublishedAt), it.Author, it.Title)
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(out, tbl)

	if f.HasMore() {
		_, _ = fmt.Fprintln(out, color.New(color.Faint).Sprint("more posts available, use --pages"))
	}
	return nil
}
