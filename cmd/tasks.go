package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"manuscript_editor/generator"
)

func NewTasksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List the editorial tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tROLE\tMODEL")
			for _, t := range generator.Catalog() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Label, t.Model)
			}
			return tw.Flush()
		},
	}
}
