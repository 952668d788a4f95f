package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/eringen/docket/content"
	"github.com/eringen/docket/slug"
)

type postRow struct {
	Date     string   `json:"date"`
	Category string   `json:"category"`
	Slug     string   `json:"slug"`
	Title    string   `json:"title"`
	Tags     []string `json:"tags"`
	URL      string   `json:"url"`
}

func newPostsCmd(c *cli) *cobra.Command {
	var category, tag string
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:     "posts",
		Aliases: []string{"ls"},
		Short:   "List indexed posts, newest first",
		Long: `List the posts docket would serve. Drafts without a title or date
are left out.

Examples:
  docket posts                   # All posts
  docket posts --category law    # One category
  docket posts --tag go --json   # Posts tagged "go" as JSON`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.load(cmd); err != nil {
				return err
			}
			repo := content.NewRepository(c.cfg.ContentDir,
				content.WithDefaultAuthor(c.cfg.DefaultAuthor()),
				content.WithLogger(c.logger),
			)
			posts := repo.ListPosts(cmd.Context())
			if category != "" {
				posts = content.FilterByCategory(posts, content.NormalizeCategory(category))
			}
			if tag != "" {
				posts = content.FilterByTag(posts, slug.Slugify(tag))
			}

			rows := make([]postRow, 0, len(posts))
			for _, p := range posts {
				rows = append(rows, postRow{
					Date:     p.Published.Format("2006-01-02"),
					Category: p.Category,
					Slug:     p.Slug,
					Title:    p.Title,
					Tags:     p.Tags,
					URL:      p.Link(),
				})
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tCATEGORY\tSLUG\tTITLE")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Date, r.Category, r.Slug, r.Title)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only posts in this category")
	cmd.Flags().StringVar(&tag, "tag", "", "only posts with this tag")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}
