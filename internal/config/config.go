package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	SiteURL        string
	Username       string
	AppPassword    string
	CacheDir       string
	DBPath         string
	LogPath        string
	PostID         int64
	PageSize       int
	PrefetchPages  int
	MaxConcurrent  int
	CommentTTL     time.Duration
	RequestTimeout time.Duration
	// WideMinWidth is the terminal width from which the list and the
	// selected post are shown side by side.
	WideMinWidth int
}

func Default() Config {
	cacheDir := filepath.Join(userConfigDir(), "wpnews")
	return Config{
		CacheDir:       cacheDir,
		DBPath:         ":memory:",
		LogPath:        filepath.Join(cacheDir, "debug.log"),
		PageSize:       10,
		PrefetchPages:  1,
		MaxConcurrent:  4,
		CommentTTL:     2 * time.Minute,
		RequestTimeout: 10 * time.Second,
		WideMinWidth:   120,
	}
}

// LoadFromEnv applies WPNEWS_* environment overrides to Default and
// validates the result.
func LoadFromEnv() (Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv is LoadFromEnv without validation, for callers that apply
// further overrides first.
func FromEnv() (Config, error) {
	cfg := Default()

	if v := os.Getenv("WPNEWS_SITE_URL"); v != "" {
		cfg.SiteURL = strings.TrimRight(v, "/")
	}
	cfg.Username = os.Getenv("WPNEWS_USERNAME")
	cfg.AppPassword = os.Getenv("WPNEWS_APP_PASSWORD")
	if v := os.Getenv("WPNEWS_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("WPNEWS_LOG_PATH"); v != "" {
		cfg.LogPath = v
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"WPNEWS_PAGE_SIZE", &cfg.PageSize},
		{"WPNEWS_PREFETCH_PAGES", &cfg.PrefetchPages},
		{"WPNEWS_WIDE_MIN_WIDTH", &cfg.WideMinWidth},
	}
	for _, e := range ints {
		v := os.Getenv(e.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s must be an integer: %s", e.name, v)
		}
		*e.dst = n
	}

	if v := os.Getenv("WPNEWS_POST_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("WPNEWS_POST_ID must be an integer: %s", v)
		}
		cfg.PostID = id
	}
	if v := os.Getenv("WPNEWS_COMMENT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("WPNEWS_COMMENT_TTL: %w", err)
		}
		cfg.CommentTTL = d
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.SiteURL == "" {
		return errors.New("WPNEWS_SITE_URL is required")
	}
	if !strings.HasPrefix(c.SiteURL, "http://") && !strings.HasPrefix(c.SiteURL, "https://") {
		return fmt.Errorf("SiteURL must be an http(s) URL: %s", c.SiteURL)
	}
	if (c.Username == "") != (c.AppPassword == "") {
		return errors.New("WPNEWS_USERNAME and WPNEWS_APP_PASSWORD must be set together")
	}
	if c.PageSize < 1 || c.PageSize > 100 {
		return fmt.Errorf("PageSize must be between 1 and 100: %d", c.PageSize)
	}
	if c.PrefetchPages < 1 {
		return fmt.Errorf("PrefetchPages must be at least 1: %d", c.PrefetchPages)
	}
	if c.PostID < 0 {
		return fmt.Errorf("PostID must not be negative: %d", c.PostID)
	}
	if c.DBPath == "" {
		return errors.New("DBPath is required")
	}
	return nil
}

// HasCredentials reports whether a login should be attempted.
func (c Config) HasCredentials() bool {
	return c.Username != "" && c.AppPassword != ""
}

func userConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}
