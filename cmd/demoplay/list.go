// cmd/demoplay/list.go
package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newListCommand(opts *sourceOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available scenarios by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := opts.open()
			if err != nil {
				return err
			}
			groups, err := src.catalog.Grouped(cmd.Context())
			if err != nil {
				return err
			}
			if len(groups) == 0 {
				fmt.Println("No scenarios found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, g := range groups {
				fmt.Fprintf(w, "%s\n", g.Category)
				for _, sc := range g.Scenarios {
					fmt.Fprintf(w, "  %s\t%s\t%s\n", sc.ID, sc.Title, sc.Description)
				}
			}
			return w.Flush()
		},
	}
}
