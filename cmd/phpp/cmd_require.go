package main

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "require <name> [version]",
		Short: "Add a package to composer.json and install it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			o, err := newOrchestrator()
			if err != nil {
				return err
			}
			var constraint string
			if len(args) > 1 {
				constraint = args[1]
			}
			return o.Require(args[0], constraint)
		},
	}
	argparser.AddCommand(cmd)
}
