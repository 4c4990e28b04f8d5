package cmd

import (
	"fmt"

	"github.com/rzbill/cse/pkg/version"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the cse version information",
		Long:  `Display version, build and supported schema generations of the cse binary.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "text" {
				fmt.Fprintln(cmd.OutOrStdout(), version.Info())
				return nil
			}
			return writeDocument(cmd.OutOrStdout(), version.Map(), output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, json, yaml)")
	return cmd
}
