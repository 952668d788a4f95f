package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/docket"
)

func newBuildCmd(c *cli) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Write feeds, sitemap and Open Graph images to a directory",
		Long: `Write feed.xml, atom.xml, sitemap.xml and og/<slug>.png for every post.

Examples:
  docket build                   # Write to ./dist
  docket build --out public/gen  # Write to another directory`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.load(cmd); err != nil {
				return err
			}
			c.cfg.DisableWatch = true

			app := docket.New(c.cfg, docket.DefaultViews(), docket.WithLogger(c.logger))
			defer app.Close()

			start := time.Now()
			res, err := app.Export(cmd.Context(), out)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, f := range res.Feeds {
				fmt.Fprintf(w, "  wrote %s\n", f)
			}
			fmt.Fprintf(w, "  wrote %d og images\n", res.Images)
			fmt.Fprintf(w, "done in %s\n", time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "dist", "output directory")
	return cmd
}
