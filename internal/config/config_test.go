package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"WPNEWS_SITE_URL", "WPNEWS_USERNAME", "WPNEWS_APP_PASSWORD", "WPNEWS_DB_PATH",
		"WPNEWS_LOG_PATH", "WPNEWS_PAGE_SIZE", "WPNEWS_PREFETCH_PAGES", "WPNEWS_WIDE_MIN_WIDTH",
		"WPNEWS_POST_ID", "WPNEWS_COMMENT_TTL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadFromEnv_UsesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("WPNEWS_SITE_URL", "https://news.example.com/")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv returned error: %v", err)
	}
	if cfg.SiteURL != "https://news.example.com" {
		t.Fatalf("unexpected site URL: %s", cfg.SiteURL)
	}
	if cfg.DBPath != ":memory:" {
		t.Fatalf("unexpected DB path: %s", cfg.DBPath)
	}
	if cfg.PageSize != 10 || cfg.PrefetchPages != 1 || cfg.PostID != 0 {
		t.Fatalf("unexpected paging defaults: %+v", cfg)
	}
	if cfg.HasCredentials() {
		t.Fatal("no credentials expected")
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("WPNEWS_SITE_URL", "https://news.example.com")
	t.Setenv("WPNEWS_USERNAME", "ann")
	t.Setenv("WPNEWS_APP_PASSWORD", "abcd efgh")
	t.Setenv("WPNEWS_PAGE_SIZE", "25")
	t.Setenv("WPNEWS_PREFETCH_PAGES", "2")
	t.Setenv("WPNEWS_POST_ID", "1234")
	t.Setenv("WPNEWS_COMMENT_TTL", "30s")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv returned error: %v", err)
	}
	if cfg.PageSize != 25 || cfg.PrefetchPages != 2 || cfg.PostID != 1234 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.CommentTTL != 30*time.Second || !cfg.HasCredentials() {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadFromEnv_MissingSite(t *testing.T) {
	clearEnv(t)
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("expected error for missing site URL")
	}
}

func TestLoadFromEnv_BadInteger(t *testing.T) {
	clearEnv(t)
	t.Setenv("WPNEWS_SITE_URL", "https://news.example.com")
	t.Setenv("WPNEWS_PAGE_SIZE", "lots")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("expected error for bad page size")
	}
}

func TestValidate_HalfCredentials(t *testing.T) {
	cfg := Default()
	cfg.SiteURL = "https://news.example.com"
	cfg.Username = "ann"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error")
	}
}
