package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/fragmede/wpnews/internal/config"
)

// rootOptions are shared by every subcommand.
type rootOptions struct {
	Site   string
	DBPath string
}

func (o *rootOptions) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&o.Site, "site", "", "WordPress site URL. Overrides WPNEWS_SITE_URL.")
	cmd.PersistentFlags().StringVar(&o.DBPath, "db", "", "Cache database path. Overrides WPNEWS_DB_PATH.")
}

// Config loads the environment configuration and applies the flags.
func (o *rootOptions) Config() (config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return config.Config{}, err
	}
	if o.Site != "" {
		cfg.SiteURL = strings.TrimRight(o.Site, "/")
	}
	if o.DBPath != "" {
		cfg.DBPath = o.DBPath
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
