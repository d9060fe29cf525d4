package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewExtractCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "extract FILE",
		Short: "Extract journal rules from a text file or an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			text, err := rt.resolveRules(cmd.Context(), "", args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
}
