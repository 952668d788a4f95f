package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/docket/scaffold"
)

func newNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new <dir>",
		Short: "Create a starter site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Creating new docket site: %s\n\n", dir)

			files, err := scaffold.Create(dir, scaffold.NewData(dir, time.Now()))
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintf(w, "  created %s\n", f)
			}

			fmt.Fprintln(w)
			fmt.Fprintln(w, "Done! Next steps:")
			fmt.Fprintln(w)
			fmt.Fprintf(w, "  cd %s\n", dir)
			fmt.Fprintln(w, "  cp .env.example .env")
			fmt.Fprintln(w, "  docket serve")
			return nil
		},
	}
}
