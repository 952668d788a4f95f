package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/eringen/docket"
)

// cli holds the state shared by subcommands.
type cli struct {
	contentDir string
	cfg        docket.SiteConfig
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "docket",
		Short: "Blog server for a directory of Markdown files",
		Long: `docket serves a blog from content/posts/<category>/<slug>.md files.

Example usage:
  docket new myblog              # Create a starter site
  docket serve                   # Run the server
  docket build --out dist        # Write feeds, sitemap and OG images
  docket posts --tag go          # List indexed posts`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.contentDir, "content", "", "content root (overrides DOCKET_CONTENT_DIR)")

	root.AddCommand(
		newServeCmd(c),
		newBuildCmd(c),
		newPostsCmd(c),
		newNewCmd(),
		newVersionCmd(),
	)
	return root
}

// load reads the configuration from the environment and builds the
// logger. Commands that need neither skip it.
func (c *cli) load(cmd *cobra.Command) error {
	cfg, err := docket.LoadConfig()
	if err != nil {
		return err
	}
	if c.contentDir != "" {
		cfg.ContentDir = c.contentDir
	}
	c.cfg = cfg
	c.logger = docket.NewLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	return nil
}
