// Package commands wires the wpnews command line.
package commands

import (
	"github.com/spf13/cobra"
)

func New() *cobra.Command {
	ro := &rootOptions{}
	uo := &uiOptions{}

	cmd := &cobra.Command{
		Use:   "wpnews",
		Short: "Read and discuss the posts of a WordPress site in the terminal.",
		Example: `
WPNEWS_SITE_URL=https://example.com wpnews
wpnews --site https://example.com --post 1234 --layout wide
`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUI(ctxOf(cmd), ro, uo)
		},
	}

	ro.AddFlags(cmd)
	uo.AddFlags(cmd)
	AddCommands(cmd, ro)
	return cmd
}

func AddCommands(topLevel *cobra.Command, ro *rootOptions) {
	addList(topLevel, ro)
	addComments(topLevel, ro)
	addReply(topLevel, ro)
	addVersion(topLevel)
}
