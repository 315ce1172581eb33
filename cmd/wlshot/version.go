package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd(r *root) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(r.stdout, "wlshot version %s\n", version)
			if commit != "" {
				fmt.Fprintf(r.stdout, "commit: %s\n", commit)
			}
			if date != "" {
				fmt.Fprintf(r.stdout, "built: %s\n", date)
			}
			return nil
		},
	}
}
