package commands

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/fragmede/wpnews/internal/news"
	"github.com/fragmede/wpnews/internal/ui"
)

type uiOptions struct {
	PostID int64
	Layout string
}

func (o *uiOptions) AddFlags(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&o.PostID, "post", 0, "Open this post once it shows up in the feed.")
	cmd.Flags().StringVar(&o.Layout, "layout", "auto", "Layout. One of 'auto', 'compact' or 'wide'.")
}

// parseLayout returns the forced layout, or nil to follow the terminal width.
func parseLayout(s string) (*news.LayoutMode, error) {
	var mode news.LayoutMode
	switch strings.ToLower(s) {
	case "", "auto":
		return nil, nil
	case "compact":
		mode = news.Compact
	case "wide":
		mode = news.Wide
	default:
		return nil, fmt.Errorf("unknown layout %q, want auto, compact or wide", s)
	}
	return &mode, nil
}

func siteName(siteURL string) string {
	if u, err := url.Parse(siteURL); err == nil && u.Host != "" {
		return u.Host
	}
	return siteURL
}

func runUI(ctx context.Context, ro *rootOptions, uo *uiOptions) error {
	cfg, err := ro.Config()
	if err != nil {
		return err
	}
	if uo.PostID != 0 {
		cfg.PostID = uo.PostID
	}
	layout, err := parseLayout(uo.Layout)
	if err != nil {
		return err
	}

	if cfg.LogPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0o755); err != nil {
			return fmt.Errorf("creating log dir: %w", err)
		}
		f, err := tea.LogToFile(cfg.LogPath, "wpnews")
		if err != nil {
			return fmt.Errorf("opening log: %w", err)
		}
		defer f.Close()
	}

	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	app := ui.NewApp(cfg, b.source, ui.Options{
		SiteName:  siteName(cfg.SiteURL),
		Username:  b.auth.DisplayName(),
		PendingID: cfg.PostID,
		Layout:    layout,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	app.SetProgram(p)
	if _, err := p.Run(); err != nil {
		return err
	}
	log.Printf("wpnews exited")
	return nil
}
