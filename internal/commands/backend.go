package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fragmede/wpnews/internal/api"
	"github.com/fragmede/wpnews/internal/auth"
	"github.com/fragmede/wpnews/internal/cache"
	"github.com/fragmede/wpnews/internal/config"
)

// backend is the content source stack shared by the TUI and the plain
// subcommands: a REST client behind the local cache.
type backend struct {
	db     *cache.DB
	auth   *auth.Session
	source *cache.Source
}

func openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	if cfg.DBPath != cache.MemoryPath {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating cache dir: %w", err)
		}
	}
	db, err := cache.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	sess := auth.NewSession(cfg.SiteURL)
	if cfg.HasCredentials() {
		if err := sess.Login(ctx, cfg.Username, cfg.AppPassword); err != nil {
			log.Printf("login as %s failed: %v", cfg.Username, err)
		}
	}

	client := api.NewClient(cfg.SiteURL, api.Options{
		PageSize:      cfg.PageSize,
		MaxConcurrent: cfg.MaxConcurrent,
		Timeout:       cfg.RequestTimeout,
		Credentials:   sess,
	})

	return &backend{
		db:     db,
		auth:   sess,
		source: cache.NewSource(client, db, cfg.CommentTTL),
	}, nil
}

func (b *backend) Close() error {
	return b.db.Close()
}
