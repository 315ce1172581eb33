package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd(r *root) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or persist the effective configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "print",
		Short: "Print the effective configuration in rc format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(r.stdout, r.config.String())
			return nil
		},
	}, &cobra.Command{
		Use:   "save",
		Short: "Write the effective configuration to the rc file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := r.loader().Save(r.config)
			if err != nil {
				return err
			}
			fmt.Fprintf(r.stderr, "Configuration saved to %s\n", path)
			return nil
		},
	})
	return cmd
}
